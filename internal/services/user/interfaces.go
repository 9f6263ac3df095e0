package userservice

import (
	"context"
	"jsonstore/internal/models"
	"time"
)

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
