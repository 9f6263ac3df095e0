package jsonstoreservice

import (
	"context"
	"jsonstore/internal/jsondoc"
	"jsonstore/internal/models"
)

type ItemRepository interface {
	Create(ctx context.Context, item *models.JSONStoreItem) (*models.JSONStoreItem, error)
	ItemByXID(ctx context.Context, xid string) (*models.JSONStoreItem, error)
	Update(ctx context.Context, xid string, item *models.JSONStoreItem, replaceData bool) (*models.JSONStoreItem, error)
	Delete(ctx context.Context, xid string) (*models.JSONStoreItem, error)
	ModifyData(ctx context.Context, xid string, fn func(data *jsondoc.Value) (*jsondoc.Value, error)) (*models.JSONStoreItem, error)
}

type Cache interface {
	Get(ctx context.Context, xid string) (*models.JSONStoreItem, error)
	Put(ctx context.Context, item *models.JSONStoreItem) (bool, error)
	Tombstone(ctx context.Context, xid string, version int64) error
	Del(ctx context.Context, xid string) error
}
