package emailverifyservice

import (
	"context"
	"jsonstore/internal/mailer"
	"jsonstore/internal/models"
	"time"
)

type TokenSigner interface {
	Issue(subject, purpose, username string) (string, *models.TokenClaims, error)
	Verify(raw, purpose string) (*models.TokenClaims, error)
	Introspect(raw string) (*models.TokenIntrospection, error)
	PublicKeyPEM() (string, error)
}

type TokenRegistry interface {
	Reserve(ctx context.Context, id string) (bool, error)
	Release(ctx context.Context, id string) error
	IsUsed(ctx context.Context, id string) (bool, error)
}

type UserAdder interface {
	AddUser(ctx context.Context, user models.User) error
}

type UserProvider interface {
	UserByUsername(ctx context.Context, username string) (*models.User, error)
	UserByEmail(ctx context.Context, email string) (*models.User, error)
}

type EmailUpdater interface {
	UpdateEmail(ctx context.Context, id string, email string, verifiedAt time.Time) (*models.User, error)
}

type Mailer interface {
	Send(ctx context.Context, msg mailer.Message) error
}
