package entities

import (
	"database/sql"
	"time"

	"github.com/lib/pq"
)

type User struct {
	ID            string         `db:"id"`
	Username      string         `db:"username"`
	Email         string         `db:"email"`
	Name          string         `db:"name"`
	PassHash      []byte         `db:"pass_hash"`
	Disabled      bool           `db:"disabled"`
	Roles         pq.StringArray `db:"roles"`
	EmailVerified sql.NullTime   `db:"email_verified"`
	CreatedAt     time.Time      `db:"created_at"`
}
