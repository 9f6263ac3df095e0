package store

import (
	"context"
	"jsonstore/internal/models"
)

const pkg = "storeHandler/"

type ItemProvider interface {
	ItemByXID(ctx context.Context, xid string) (*models.JSONStoreItem, error)
}

type ItemCreator interface {
	CreateItem(ctx context.Context, item *models.JSONStoreItem) (*models.JSONStoreItem, error)
}

type ItemUpdater interface {
	UpdateItem(ctx context.Context, xid string, item *models.JSONStoreItem, replaceData bool) (*models.JSONStoreItem, error)
}

type ItemDeleter interface {
	DeleteItem(ctx context.Context, xid string) (*models.JSONStoreItem, error)
}
