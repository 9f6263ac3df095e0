package server

import (
	"context"
	"jsonstore/internal/jsondoc"
	"jsonstore/internal/models"
	"jsonstore/internal/rql"
)

type StoreService interface {
	ItemByXID(ctx context.Context, xid string) (*models.JSONStoreItem, error)
	CreateItem(ctx context.Context, item *models.JSONStoreItem) (*models.JSONStoreItem, error)
	UpdateItem(ctx context.Context, xid string, item *models.JSONStoreItem, replaceData bool) (*models.JSONStoreItem, error)
	DeleteItem(ctx context.Context, xid string) (*models.JSONStoreItem, error)
	Data(ctx context.Context, xid string, pointer string) (*jsondoc.Value, error)
	SetData(ctx context.Context, xid string, pointer string, value *jsondoc.Value) (*jsondoc.Value, error)
	DeleteData(ctx context.Context, xid string, pointer string) (*jsondoc.Value, error)
	Query(ctx context.Context, xid string, pointer string, rawQuery string) (*rql.Result, error)
}

type EmailVerifyService interface {
	PublicKey() (string, error)
	SendEmail(ctx context.Context, email string) error
	SendUserEmail(ctx context.Context, email, username string) error
	CreateToken(ctx context.Context, email, username string) (*models.VerificationToken, error)
	Verify(raw string) (*models.TokenIntrospection, error)
	Register(ctx context.Context, raw string, user models.User, password string) (*models.User, error)
	UpdateEmail(ctx context.Context, raw string) (*models.User, error)
}
