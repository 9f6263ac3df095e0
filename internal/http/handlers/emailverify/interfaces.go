package emailverify

import (
	"context"
	"jsonstore/internal/models"
)

const pkg = "emailVerifyHandler/"

type PublicKeyProvider interface {
	PublicKey() (string, error)
}

type EmailSender interface {
	SendEmail(ctx context.Context, email string) error
	SendUserEmail(ctx context.Context, email, username string) error
}

type TokenCreator interface {
	CreateToken(ctx context.Context, email, username string) (*models.VerificationToken, error)
}

type TokenVerifier interface {
	Verify(raw string) (*models.TokenIntrospection, error)
}

type Registrar interface {
	Register(ctx context.Context, raw string, user models.User, password string) (*models.User, error)
}

type EmailUpdater interface {
	UpdateEmail(ctx context.Context, raw string) (*models.User, error)
}
