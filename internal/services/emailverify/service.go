package emailverifyservice

import (
	"context"
	"errors"
	"fmt"
	"jsonstore/internal/mailer"
	"jsonstore/internal/models"
	"jsonstore/internal/validator"
	"log/slog"
	"net/url"
	"strings"
	"time"

	uuid "github.com/satori/go.uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	pkg         = "emailVerifyService/"
	defaultRole = "user"
)

type Config struct {
	BaseURL            string
	VerifyPath         string
	PublicRegistration bool
}

type EmailVerifyService struct {
	log          *slog.Logger
	cfg          Config
	signer       TokenSigner
	tokens       TokenRegistry
	userAdder    UserAdder
	userProvider UserProvider
	emailUpdater EmailUpdater
	mail         Mailer
	now          func() time.Time
}

func New(
	log *slog.Logger,
	cfg Config,
	signer TokenSigner,
	tokens TokenRegistry,
	userAdder UserAdder,
	userProvider UserProvider,
	emailUpdater EmailUpdater,
	mail Mailer,
) *EmailVerifyService {
	return &EmailVerifyService{
		log:          log,
		cfg:          cfg,
		signer:       signer,
		tokens:       tokens,
		userAdder:    userAdder,
		userProvider: userProvider,
		emailUpdater: emailUpdater,
		mail:         mail,
		now:          time.Now,
	}
}

func (s *EmailVerifyService) PublicKey() (string, error) {
	op := pkg + "PublicKey"

	log := s.log.With(slog.String("op", op))

	key, err := s.signer.PublicKeyPEM()
	if err != nil {
		log.Error("failed to encode public key", slog.String("error", err.Error()))
		return "", fmt.Errorf("%s: %w", op, models.ErrInternal)
	}

	return key, nil
}

// SendEmail mails a registration link to email. An address that already
// belongs to a user is silently skipped so callers cannot probe for accounts.
func (s *EmailVerifyService) SendEmail(ctx context.Context, email string) error {
	op := pkg + "SendEmail"

	log := s.log.With(slog.String("op", op))

	log.Debug("attempting to send verification email")

	if !s.cfg.PublicRegistration {
		log.Warn("public registration is disabled")
		return fmt.Errorf("%s: %w", op, models.ErrRegistrationDisabled)
	}

	if err := checkEmail(email); err != nil {
		log.Warn("invalid email address")
		return err
	}

	owner, err := s.emailOwner(ctx, email)
	if err != nil {
		log.Error("failed to look up email owner", slog.String("error", err.Error()))
		return fmt.Errorf("%s: %w", op, models.ErrInternal)
	}
	if owner != nil {
		log.Debug("email already in use, skipping")
		return nil
	}

	token, err := s.issue(email, "")
	if err != nil {
		log.Error("failed to issue token", slog.String("error", err.Error()))
		return fmt.Errorf("%s: %w", op, models.ErrInternal)
	}

	if err := s.send(ctx, email, token); err != nil {
		log.Error("failed to send email", slog.String("error", err.Error()))
		return fmt.Errorf("%s: %w", op, models.ErrInternal)
	}

	log.Debug("verification email sent")

	return nil
}

// SendUserEmail issues a token like CreateToken and mails it to email.
func (s *EmailVerifyService) SendUserEmail(ctx context.Context, email, username string) error {
	op := pkg + "SendUserEmail"

	log := s.log.With(slog.String("op", op))

	token, err := s.CreateToken(ctx, email, username)
	if err != nil {
		return err
	}

	if err := s.send(ctx, email, token); err != nil {
		log.Error("failed to send email", slog.String("error", err.Error()))
		return fmt.Errorf("%s: %w", op, models.ErrInternal)
	}

	log.Debug("verification email sent")

	return nil
}

// CreateToken issues a registration token when username is empty, or a token
// that moves username to email otherwise.
func (s *EmailVerifyService) CreateToken(ctx context.Context, email, username string) (*models.VerificationToken, error) {
	op := pkg + "CreateToken"

	log := s.log.With(slog.String("op", op))

	log.Debug("attempting to create verification token")

	if err := checkEmail(email); err != nil {
		log.Warn("invalid email address")
		return nil, err
	}

	var user *models.User
	if username == "" {
		if !s.cfg.PublicRegistration {
			log.Warn("public registration is disabled")
			return nil, fmt.Errorf("%s: %w", op, models.ErrRegistrationDisabled)
		}
	} else {
		u, err := s.userProvider.UserByUsername(ctx, username)
		if err != nil {
			log.Warn("failed to get user", slog.String("error", err.Error()))
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		user = u
	}

	owner, err := s.emailOwner(ctx, email)
	if err != nil {
		log.Error("failed to look up email owner", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, models.ErrInternal)
	}
	if owner != nil && (user == nil || owner.ID != user.ID) {
		log.Warn("email already in use")
		return nil, fmt.Errorf("%s: %w", op, models.ErrEmailInUse)
	}

	token, err := s.issue(email, username)
	if err != nil {
		log.Error("failed to issue token", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, models.ErrInternal)
	}

	log.Debug("verification token created")

	return token, nil
}

func (s *EmailVerifyService) Verify(raw string) (*models.TokenIntrospection, error) {
	op := pkg + "Verify"

	log := s.log.With(slog.String("op", op))

	res, err := s.signer.Introspect(raw)
	if err != nil {
		log.Warn("token rejected", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, models.ErrInvalidToken)
	}

	return res, nil
}

// Register creates a disabled account for the email address named by a
// registration token. Each token creates at most one account.
func (s *EmailVerifyService) Register(ctx context.Context, raw string, user models.User, password string) (*models.User, error) {
	op := pkg + "Register"

	log := s.log.With(slog.String("op", op))

	log.Debug("attempting to register user")

	claims, err := s.verify(raw)
	if err != nil {
		log.Warn("token rejected", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if claims.Username != "" {
		log.Warn("token belongs to an existing user")
		return nil, fmt.Errorf("%s: %w", op, models.ErrWrongTokenKind)
	}

	if !s.cfg.PublicRegistration {
		log.Warn("public registration is disabled")
		return nil, fmt.Errorf("%s: %w", op, models.ErrRegistrationDisabled)
	}

	used, err := s.tokens.IsUsed(ctx, claims.ID)
	if err != nil {
		log.Error("failed to check token", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, models.ErrInternal)
	}
	if used {
		log.Warn("token already used")
		return nil, fmt.Errorf("%s: %w", op, models.ErrTokenUsed)
	}

	verified := claims.IssuedAt
	newUser := models.User{
		ID:            uuid.NewV4().String(),
		Username:      user.Username,
		Email:         claims.Subject,
		Name:          user.Name,
		Disabled:      true,
		Roles:         []string{defaultRole},
		EmailVerified: &verified,
		CreatedAt:     s.now().UTC(),
	}

	if err := validateUser(newUser, password); err != nil {
		var vErr *models.ValidationError
		if errors.As(err, &vErr) {
			log.Warn("user validation failed", slog.String("error", err.Error()))
			return nil, fmt.Errorf("%s: %w", op, vErr.WithPrefix("user"))
		}
		log.Error("failed to validate user", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, models.ErrInternal)
	}

	newUser.PassHash, err = bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		log.Error("failed to generate password hash", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, models.ErrInternal)
	}

	reserved, err := s.tokens.Reserve(ctx, claims.ID)
	if err != nil {
		log.Error("failed to reserve token", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, models.ErrInternal)
	}
	if !reserved {
		log.Warn("token already used")
		return nil, fmt.Errorf("%s: %w", op, models.ErrTokenUsed)
	}

	if err := s.userAdder.AddUser(ctx, newUser); err != nil {
		s.release(ctx, log, claims.ID)
		log.Warn("failed to add user", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Debug("user registered successfully", slog.String("user_id", newUser.ID))

	return &newUser, nil
}

// UpdateEmail moves the user named by the token to the token's email address
// and marks it verified. A token that was already used returns the user as is.
func (s *EmailVerifyService) UpdateEmail(ctx context.Context, raw string) (*models.User, error) {
	op := pkg + "UpdateEmail"

	log := s.log.With(slog.String("op", op))

	log.Debug("attempting to update email")

	claims, err := s.verify(raw)
	if err != nil {
		log.Warn("token rejected", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if claims.Username == "" {
		log.Warn("token is not bound to a user")
		return nil, fmt.Errorf("%s: %w", op, models.ErrWrongTokenKind)
	}

	user, err := s.userProvider.UserByUsername(ctx, claims.Username)
	if err != nil {
		log.Warn("failed to get user", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	owner, err := s.emailOwner(ctx, claims.Subject)
	if err != nil {
		log.Error("failed to look up email owner", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, models.ErrInternal)
	}
	if owner != nil && owner.ID != user.ID {
		log.Warn("email already in use")
		return nil, fmt.Errorf("%s: %w", op, models.ErrEmailInUse)
	}

	reserved, err := s.tokens.Reserve(ctx, claims.ID)
	if err != nil {
		log.Error("failed to reserve token", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, models.ErrInternal)
	}
	if !reserved {
		log.Debug("token already used, user unchanged")
		return user, nil
	}

	verifiedAt := claims.IssuedAt
	if user.EmailVerified != nil && user.EmailVerified.After(verifiedAt) {
		verifiedAt = *user.EmailVerified
	}

	updated, err := s.emailUpdater.UpdateEmail(ctx, user.ID, claims.Subject, verifiedAt)
	if err != nil {
		s.release(ctx, log, claims.ID)
		log.Warn("failed to update email", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Debug("email updated successfully", slog.String("user_id", updated.ID))

	return updated, nil
}

func (s *EmailVerifyService) verify(raw string) (*models.TokenClaims, error) {
	claims, err := s.signer.Verify(raw, models.TokenTypeEmailVerify)
	if err != nil {
		return nil, errors.Join(models.ErrInvalidToken, err)
	}
	return claims, nil
}

func (s *EmailVerifyService) issue(email, username string) (*models.VerificationToken, error) {
	raw, claims, err := s.signer.Issue(email, models.TokenTypeEmailVerify, username)
	if err != nil {
		return nil, err
	}

	relative := s.cfg.VerifyPath + "?token=" + url.QueryEscape(raw)

	return &models.VerificationToken{
		Token:       raw,
		Expiry:      claims.ExpiresAt,
		RelativeURL: relative,
		FullURL:     strings.TrimRight(s.cfg.BaseURL, "/") + relative,
	}, nil
}

func (s *EmailVerifyService) send(ctx context.Context, email string, token *models.VerificationToken) error {
	return s.mail.Send(ctx, mailer.Message{
		To:      email,
		Subject: "Verify your email address",
		Body: fmt.Sprintf("Follow this link to verify your email address: %s\nThe link expires at %s.",
			token.FullURL, token.Expiry.UTC().Format(time.RFC1123)),
	})
}

// emailOwner returns the user registered with email, or nil.
func (s *EmailVerifyService) emailOwner(ctx context.Context, email string) (*models.User, error) {
	owner, err := s.userProvider.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, models.ErrUserNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return owner, nil
}

func (s *EmailVerifyService) release(ctx context.Context, log *slog.Logger, id string) {
	if err := s.tokens.Release(ctx, id); err != nil {
		log.Error("failed to release token", slog.String("error", err.Error()))
	}
}

func checkEmail(email string) error {
	if validator.IsValidEmail(email) {
		return nil
	}
	return &models.ValidationError{Messages: []models.ValidationMessage{
		{Property: "emailAddress", Message: "must be a valid email address"},
	}}
}

func validateUser(user models.User, password string) error {
	var messages []models.ValidationMessage

	if err := validator.Struct(user); err != nil {
		var vErr *models.ValidationError
		if !errors.As(err, &vErr) {
			return err
		}
		messages = append(messages, vErr.Messages...)
	}

	if user.Username != "" && !validator.IsValidUsername(user.Username) {
		messages = append(messages, models.ValidationMessage{
			Property: "username",
			Message:  "may only contain letters, digits and _ . @ -",
		})
	}

	if !validator.IsValidPassword(password) {
		messages = append(messages, models.ValidationMessage{
			Property: "password",
			Message:  "must be between 8 and 255 characters",
		})
	}

	if len(messages) > 0 {
		return &models.ValidationError{Messages: messages}
	}
	return nil
}
