package userrepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"jsonstore/internal/entities"
	"jsonstore/internal/models"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const pkg = "userRepo/"

const columns = `
	u.id AS id,
	u.username AS username,
	u.email AS email,
	u.name AS name,
	u.pass_hash AS pass_hash,
	u.disabled AS disabled,
	u.roles AS roles,
	u.email_verified AS email_verified,
	u.created_at AS created_at`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *repository {
	return &repository{db: db}
}

func (r *repository) AddUser(ctx context.Context, user models.User) error {
	op := pkg + "AddUser"

	var verified sql.NullTime
	if user.EmailVerified != nil {
		verified = sql.NullTime{Time: *user.EmailVerified, Valid: true}
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users(id, username, email, name, pass_hash, disabled, roles, email_verified, created_at)
		VALUES($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		user.ID, user.Username, user.Email, user.Name, user.PassHash, user.Disabled, pq.Array(user.Roles), verified, user.CreatedAt)
	if err != nil {
		return fmt.Errorf("%s: %w", op, uniqueOr(err))
	}

	return nil
}

func (r *repository) UserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.userBy(ctx, pkg+"UserByUsername", `u.username = $1`, username)
}

func (r *repository) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.userBy(ctx, pkg+"UserByEmail", `lower(u.email) = lower($1)`, email)
}

// UpdateEmail sets the address of user id and records when it was verified.
func (r *repository) UpdateEmail(ctx context.Context, id string, email string, verifiedAt time.Time) (*models.User, error) {
	op := pkg + "UpdateEmail"

	rawUser := entities.User{}

	err := r.db.GetContext(ctx, &rawUser,
		`UPDATE users
		SET email = $2, email_verified = $3
		WHERE id = $1
		RETURNING id, username, email, name, pass_hash, disabled, roles, email_verified, created_at`,
		id, email, verifiedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrUserNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, uniqueOr(err))
	}

	return toModel(rawUser), nil
}

func (r *repository) userBy(ctx context.Context, op string, where string, arg any) (*models.User, error) {
	rawUser := entities.User{}

	err := r.db.GetContext(ctx, &rawUser,
		`SELECT`+columns+`
		FROM users u
		WHERE `+where, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, models.ErrUserNotFound
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return toModel(rawUser), nil
}

func toModel(rawUser entities.User) *models.User {
	user := &models.User{
		ID:        rawUser.ID,
		Username:  rawUser.Username,
		Email:     rawUser.Email,
		Name:      rawUser.Name,
		PassHash:  rawUser.PassHash,
		Disabled:  rawUser.Disabled,
		Roles:     rawUser.Roles,
		CreatedAt: rawUser.CreatedAt,
	}
	if rawUser.EmailVerified.Valid {
		verified := rawUser.EmailVerified.Time
		user.EmailVerified = &verified
	}
	return user
}

func uniqueOr(err error) error {
	if pgErr, ok := err.(*pq.Error); ok {
		if pgErr.Code == "23505" {
			return &models.UniqueConstraintError{
				Constraint: pgErr.Constraint,
				Err:        models.ErrUNIQUEConstraintFailed,
			}
		}
	}
	return err
}
