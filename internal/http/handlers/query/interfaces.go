package query

import (
	"context"
	"jsonstore/internal/rql"
)

const pkg = "queryHandler/"

type Querier interface {
	Query(ctx context.Context, xid string, pointer string, rawQuery string) (*rql.Result, error)
}
