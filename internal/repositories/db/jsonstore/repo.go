package jsonstorerepo

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"jsonstore/internal/entities"
	"jsonstore/internal/jsondoc"
	"jsonstore/internal/models"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

const pkg = "jsonStoreRepo/"

const columns = `
	j.id AS id,
	j.xid AS xid,
	j.name AS name,
	j.read_permission AS read_permission,
	j.edit_permission AS edit_permission,
	j.json_data AS json_data,
	j.version AS version`

const returning = `RETURNING id, xid, name, read_permission, edit_permission, json_data, version`

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *repository {
	return &repository{db: db}
}

func (r *repository) Create(ctx context.Context, item *models.JSONStoreItem) (*models.JSONStoreItem, error) {
	op := pkg + "Create"

	raw := entities.JSONStoreItem{}

	err := r.db.GetContext(ctx, &raw,
		`INSERT INTO json_data (xid, name, read_permission, edit_permission, json_data, version)
		VALUES ($1, $2, $3, $4, $5, nextval('json_data_version_seq'))
		`+returning,
		item.XID, item.Name, pq.Array(permissions(item.ReadPermission)), pq.Array(permissions(item.EditPermission)), dataArg(item.JSONData))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, uniqueOr(err))
	}

	return toModel(raw)
}

func (r *repository) ItemByXID(ctx context.Context, xid string) (*models.JSONStoreItem, error) {
	op := pkg + "ItemByXID"

	raw := entities.JSONStoreItem{}

	err := r.db.GetContext(ctx, &raw,
		`SELECT`+columns+`
		FROM json_data j
		WHERE j.xid = $1`, xid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrItemNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return toModel(raw)
}

// Update replaces the metadata of the item stored under xid, which may rename
// it. The payload is only replaced when replaceData is set.
func (r *repository) Update(ctx context.Context, xid string, item *models.JSONStoreItem, replaceData bool) (*models.JSONStoreItem, error) {
	op := pkg + "Update"

	raw := entities.JSONStoreItem{}

	query := `UPDATE json_data
		SET xid = $2, name = $3, read_permission = $4, edit_permission = $5, version = nextval('json_data_version_seq')
		WHERE xid = $1
		` + returning
	args := []any{xid, item.XID, item.Name, pq.Array(permissions(item.ReadPermission)), pq.Array(permissions(item.EditPermission))}

	if replaceData {
		query = `UPDATE json_data
		SET xid = $2, name = $3, read_permission = $4, edit_permission = $5, json_data = $6, version = nextval('json_data_version_seq')
		WHERE xid = $1
		` + returning
		args = append(args, dataArg(item.JSONData))
	}

	err := r.db.GetContext(ctx, &raw, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrItemNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, uniqueOr(err))
	}

	return toModel(raw)
}

// Delete removes the item and returns the row as it was.
func (r *repository) Delete(ctx context.Context, xid string) (*models.JSONStoreItem, error) {
	op := pkg + "Delete"

	raw := entities.JSONStoreItem{}

	err := r.db.GetContext(ctx, &raw,
		`DELETE FROM json_data
		WHERE xid = $1
		`+returning, xid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrItemNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return toModel(raw)
}

// ModifyData runs fn on the payload of xid while holding the row lock and
// stores the root it returns. Nothing is written when fn fails.
func (r *repository) ModifyData(ctx context.Context, xid string, fn func(data *jsondoc.Value) (*jsondoc.Value, error)) (*models.JSONStoreItem, error) {
	op := pkg + "ModifyData"

	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("%s: begin tx: %w", op, err)
	}

	defer func() {
		_ = tx.Rollback()
	}()

	raw := entities.JSONStoreItem{}

	err = tx.GetContext(ctx, &raw,
		`SELECT`+columns+`
		FROM json_data j
		WHERE j.xid = $1
		FOR UPDATE`, xid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, models.ErrItemNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	item, err := toModel(raw)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	root, err := fn(item.JSONData)
	if err != nil {
		return nil, err
	}

	err = tx.GetContext(ctx, &item.Version,
		`UPDATE json_data
		SET json_data = $2, version = nextval('json_data_version_seq')
		WHERE id = $1
		RETURNING version`, item.ID, dataArg(root))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	if err = tx.Commit(); err != nil {
		return nil, fmt.Errorf("%s: commit: %w", op, err)
	}

	item.JSONData = root

	return item, nil
}

func toModel(raw entities.JSONStoreItem) (*models.JSONStoreItem, error) {
	item := &models.JSONStoreItem{
		ID:             raw.ID,
		XID:            raw.XID,
		Name:           raw.Name,
		ReadPermission: permissions(raw.ReadPermission),
		EditPermission: permissions(raw.EditPermission),
		Version:        raw.Version,
	}

	if raw.JSONData.Valid {
		data, err := jsondoc.Parse([]byte(raw.JSONData.String))
		if err != nil {
			return nil, fmt.Errorf("decode json_data of %q: %w", raw.XID, err)
		}
		item.JSONData = data
	}

	return item, nil
}

func permissions(p []string) []string {
	if p == nil {
		return []string{}
	}
	return p
}

// dataArg maps an absent payload to SQL NULL.
func dataArg(v *jsondoc.Value) any {
	if v == nil {
		return nil
	}
	return v.String()
}

func uniqueOr(err error) error {
	var pgErr *pq.Error
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return &models.UniqueConstraintError{
			Constraint: pgErr.Constraint,
			Err:        models.ErrUNIQUEConstraintFailed,
		}
	}
	return err
}
