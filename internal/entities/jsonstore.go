package entities

import (
	"database/sql"

	"github.com/lib/pq"
)

type JSONStoreItem struct {
	ID             int64          `db:"id"`
	XID            string         `db:"xid"`
	Name           string         `db:"name"`
	ReadPermission pq.StringArray `db:"read_permission"`
	EditPermission pq.StringArray `db:"edit_permission"`
	JSONData       sql.NullString `db:"json_data"`
	Version        int64          `db:"version"`
}
