package userservice

import (
	"context"
	"errors"
	"jsonstore/internal/models"
	"log/slog"
	"strings"
	"time"
)

const pkg = "userService/"

type UserService struct {
	log          *slog.Logger
	userAdder    UserAdder
	userProvider UserProvider
	emailUpdater EmailUpdater
}

func New(
	log *slog.Logger,
	userAdder UserAdder,
	userProvider UserProvider,
	emailUpdater EmailUpdater) *UserService {
	return &UserService{
		log:          log,
		userAdder:    userAdder,
		userProvider: userProvider,
		emailUpdater: emailUpdater,
	}
}

func (u *UserService) AddUser(ctx context.Context, user models.User) error {
	op := pkg + "AddUser"

	log := u.log.With(slog.String("op", op))

	log.Debug("attempting to add user")

	err := u.userAdder.AddUser(ctx, user)
	if err != nil {
		var uce *models.UniqueConstraintError
		if errors.As(err, &uce) {
			log.Warn("user already exists", slog.String("constraint", uce.Constraint))
			return uniqueError(uce)
		}
		log.Error("failed to add user", slog.String("error", err.Error()))
		return models.ErrInternal
	}

	log.Debug("user added successfully")

	return nil
}

func (u *UserService) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	op := pkg + "UserByUsername"

	log := u.log.With(slog.String("op", op))

	log.Debug("attempting to get user by username")

	user, err := u.userProvider.UserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			log.Warn("failed to get user by username", slog.String("error", models.ErrUserNotFound.Error()))
			return nil, models.ErrUserNotFound
		}
		log.Error("failed to get user by username", slog.String("error", err.Error()))
		return nil, models.ErrInternal
	}

	log.Debug("user found successfully")

	return user, nil
}

func (u *UserService) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	op := pkg + "UserByEmail"

	log := u.log.With(slog.String("op", op))

	log.Debug("attempting to get user by email")

	user, err := u.userProvider.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			log.Debug("no user with this email")
			return nil, models.ErrUserNotFound
		}
		log.Error("failed to get user by email", slog.String("error", err.Error()))
		return nil, models.ErrInternal
	}

	log.Debug("user found successfully")

	return user, nil
}

func (u *UserService) UpdateEmail(ctx context.Context, id string, email string, verifiedAt time.Time) (*models.User, error) {
	op := pkg + "UpdateEmail"

	log := u.log.With(slog.String("op", op))

	log.Debug("attempting to update email", slog.String("user_id", id))

	user, err := u.emailUpdater.UpdateEmail(ctx, id, email, verifiedAt)
	if err != nil {
		var uce *models.UniqueConstraintError
		switch {
		case errors.Is(err, models.ErrUserNotFound):
			log.Warn("failed to update email", slog.String("error", err.Error()))
			return nil, models.ErrUserNotFound
		case errors.As(err, &uce):
			log.Warn("email already in use", slog.String("constraint", uce.Constraint))
			return nil, models.ErrEmailInUse
		}
		log.Error("failed to update email", slog.String("error", err.Error()))
		return nil, models.ErrInternal
	}

	log.Debug("email updated successfully")

	return user, nil
}

func uniqueError(uce *models.UniqueConstraintError) error {
	if strings.Contains(uce.Constraint, "email") {
		return models.ErrEmailInUse
	}
	return models.ErrUserExists
}
