package data

import (
	"context"
	"jsonstore/internal/jsondoc"
)

const pkg = "dataHandler/"

type DataProvider interface {
	Data(ctx context.Context, xid string, pointer string) (*jsondoc.Value, error)
}

type DataSetter interface {
	SetData(ctx context.Context, xid string, pointer string, value *jsondoc.Value) (*jsondoc.Value, error)
}

type DataDeleter interface {
	DeleteData(ctx context.Context, xid string, pointer string) (*jsondoc.Value, error)
}
