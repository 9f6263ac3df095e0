package jsonstoreservice

import (
	"context"
	"errors"
	"fmt"
	"jsonstore/internal/jsondoc"
	"jsonstore/internal/models"
	"jsonstore/internal/rql"
	"jsonstore/internal/validator"
	"log/slog"

	uuid "github.com/satori/go.uuid"
)

const pkg = "jsonStoreService/"

type JSONStoreService struct {
	log   *slog.Logger
	repo  ItemRepository
	cache Cache
}

func New(
	log *slog.Logger,
	repo ItemRepository,
	cache Cache,
) *JSONStoreService {
	return &JSONStoreService{
		log:   log,
		repo:  repo,
		cache: cache,
	}
}

func (s *JSONStoreService) CreateItem(ctx context.Context, item *models.JSONStoreItem) (*models.JSONStoreItem, error) {
	op := pkg + "CreateItem"

	log := s.log.With(slog.String("op", op))

	log.Debug("attempting to create item", slog.String("xid", item.XID))

	if item.XID == "" {
		item.XID = uuid.NewV4().String()
	}

	if err := validator.Struct(item); err != nil {
		log.Warn("invalid item", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	created, err := s.repo.Create(ctx, item)
	if err != nil {
		var uce *models.UniqueConstraintError
		if errors.As(err, &uce) {
			log.Warn("xid already in use", slog.String("xid", item.XID), slog.String("constraint", uce.Constraint))
			return nil, fmt.Errorf("%s: %w", op, models.ErrXIDExists)
		}
		log.Error("failed to create item", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, models.ErrInternal)
	}

	s.refreshCache(ctx, log, created)

	log.Debug("item created successfully", slog.String("xid", created.XID))

	return created, nil
}

func (s *JSONStoreService) ItemByXID(ctx context.Context, xid string) (*models.JSONStoreItem, error) {
	op := pkg + "ItemByXID"

	log := s.log.With(slog.String("op", op))

	log.Debug("attempting to get item", slog.String("xid", xid))

	item, err := s.item(ctx, log, xid)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Debug("item found successfully")

	return item, nil
}

// UpdateItem replaces the metadata of xid. The payload is only replaced when
// replaceData is set, in which case a nil JSONData clears it.
func (s *JSONStoreService) UpdateItem(ctx context.Context, xid string, item *models.JSONStoreItem, replaceData bool) (*models.JSONStoreItem, error) {
	op := pkg + "UpdateItem"

	log := s.log.With(slog.String("op", op))

	log.Debug("attempting to update item", slog.String("xid", xid), slog.Bool("replace_data", replaceData))

	if item.XID == "" {
		item.XID = xid
	}

	if err := validator.Struct(item); err != nil {
		log.Warn("invalid item", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	updated, err := s.repo.Update(ctx, xid, item, replaceData)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, s.repoError(log, "failed to update item", err))
	}

	if updated.XID != xid {
		s.tombstone(ctx, log, xid, updated.Version)
	}
	s.refreshCache(ctx, log, updated)

	log.Debug("item updated successfully", slog.String("xid", updated.XID))

	return updated, nil
}

// DeleteItem removes xid and returns the item as it was.
func (s *JSONStoreService) DeleteItem(ctx context.Context, xid string) (*models.JSONStoreItem, error) {
	op := pkg + "DeleteItem"

	log := s.log.With(slog.String("op", op))

	log.Debug("attempting to delete item", slog.String("xid", xid))

	deleted, err := s.repo.Delete(ctx, xid)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, s.repoError(log, "failed to delete item", err))
	}

	s.tombstone(ctx, log, xid, deleted.Version)

	log.Debug("item deleted successfully")

	return deleted, nil
}

func (s *JSONStoreService) Data(ctx context.Context, xid string, pointer string) (*jsondoc.Value, error) {
	op := pkg + "Data"

	log := s.log.With(slog.String("op", op))

	log.Debug("attempting to get data", slog.String("xid", xid), slog.String("pointer", pointer))

	value, err := s.data(ctx, log, xid, pointer)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	log.Debug("data found successfully")

	return value, nil
}

// SetData writes value at pointer and returns what was written.
func (s *JSONStoreService) SetData(ctx context.Context, xid string, pointer string, value *jsondoc.Value) (*jsondoc.Value, error) {
	op := pkg + "SetData"

	log := s.log.With(slog.String("op", op))

	log.Debug("attempting to set data", slog.String("xid", xid), slog.String("pointer", pointer))

	p, err := parsePointer(log, pointer)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	updated, err := s.repo.ModifyData(ctx, xid, func(data *jsondoc.Value) (*jsondoc.Value, error) {
		return jsondoc.Write(data, p, value)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, s.repoError(log, "failed to set data", err))
	}

	s.refreshCache(ctx, log, updated)

	log.Debug("data set successfully")

	return value, nil
}

// DeleteData removes the value at pointer and returns it. Deleting the root
// of an item without payload succeeds and returns nil.
func (s *JSONStoreService) DeleteData(ctx context.Context, xid string, pointer string) (*jsondoc.Value, error) {
	op := pkg + "DeleteData"

	log := s.log.With(slog.String("op", op))

	log.Debug("attempting to delete data", slog.String("xid", xid), slog.String("pointer", pointer))

	p, err := parsePointer(log, pointer)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var removed *jsondoc.Value

	updated, err := s.repo.ModifyData(ctx, xid, func(data *jsondoc.Value) (*jsondoc.Value, error) {
		root, value, err := jsondoc.Delete(data, p)
		removed = value
		return root, err
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, s.repoError(log, "failed to delete data", err))
	}

	s.refreshCache(ctx, log, updated)

	log.Debug("data deleted successfully", slog.Bool("removed", removed != nil))

	return removed, nil
}

// Query applies an RQL expression to the array or object at pointer.
func (s *JSONStoreService) Query(ctx context.Context, xid string, pointer string, rawQuery string) (*rql.Result, error) {
	op := pkg + "Query"

	log := s.log.With(slog.String("op", op))

	log.Debug("attempting to query data", slog.String("xid", xid), slog.String("pointer", pointer), slog.String("rql", rawQuery))

	q, err := rql.Parse(rawQuery)
	if err != nil {
		log.Warn("invalid query", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%s: %w: %v", op, models.ErrInvalidQuery, err)
	}

	target, err := s.data(ctx, log, xid, pointer)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	res, err := q.Apply(target)
	if err != nil {
		log.Warn("query target is not a collection", slog.String("kind", target.Kind().String()))
		return nil, fmt.Errorf("%s: %w", op, models.ErrNotCollection)
	}

	log.Debug("query applied successfully", slog.Int("total", res.Total), slog.Int("returned", len(res.Items)))

	return res, nil
}

func (s *JSONStoreService) data(ctx context.Context, log *slog.Logger, xid string, pointer string) (*jsondoc.Value, error) {
	p, err := parsePointer(log, pointer)
	if err != nil {
		return nil, err
	}

	item, err := s.item(ctx, log, xid)
	if err != nil {
		return nil, err
	}

	value, err := jsondoc.Resolve(item.JSONData, p)
	if err != nil {
		log.Warn("no data at pointer", slog.String("error", err.Error()))
		return nil, models.ErrDataNotFound
	}

	return value, nil
}

// item reads through the cache. Cache failures only cost a database read.
func (s *JSONStoreService) item(ctx context.Context, log *slog.Logger, xid string) (*models.JSONStoreItem, error) {
	cached, err := s.cache.Get(ctx, xid)
	if err != nil {
		log.Warn("failed to read item cache", slog.String("error", err.Error()))
	}
	if cached != nil {
		return cached, nil
	}

	item, err := s.repo.ItemByXID(ctx, xid)
	if err != nil {
		return nil, s.repoError(log, "failed to get item", err)
	}

	if _, err := s.cache.Put(ctx, item); err != nil {
		log.Warn("failed to cache item", slog.String("error", err.Error()))
	}

	return item, nil
}

func (s *JSONStoreService) refreshCache(ctx context.Context, log *slog.Logger, item *models.JSONStoreItem) {
	if _, err := s.cache.Put(ctx, item); err != nil {
		log.Warn("failed to cache item, evicting", slog.String("error", err.Error()))
		if err := s.cache.Del(ctx, item.XID); err != nil {
			log.Error("failed to evict item", slog.String("xid", item.XID), slog.String("error", err.Error()))
		}
	}
}

func (s *JSONStoreService) tombstone(ctx context.Context, log *slog.Logger, xid string, version int64) {
	if err := s.cache.Tombstone(ctx, xid, version); err != nil {
		log.Warn("failed to tombstone item, evicting", slog.String("error", err.Error()))
		if err := s.cache.Del(ctx, xid); err != nil {
			log.Error("failed to evict item", slog.String("xid", xid), slog.String("error", err.Error()))
		}
	}
}

// repoError maps repository failures onto the service error set.
func (s *JSONStoreService) repoError(log *slog.Logger, msg string, err error) error {
	var uce *models.UniqueConstraintError
	switch {
	case errors.Is(err, models.ErrItemNotFound):
		log.Warn(msg, slog.String("error", err.Error()))
		return models.ErrItemNotFound
	case errors.Is(err, jsondoc.ErrNotFound):
		log.Warn(msg, slog.String("error", err.Error()))
		return models.ErrDataNotFound
	case errors.As(err, &uce):
		log.Warn(msg, slog.String("constraint", uce.Constraint))
		return models.ErrXIDExists
	}
	log.Error(msg, slog.String("error", err.Error()))
	return models.ErrInternal
}

func parsePointer(log *slog.Logger, pointer string) (jsondoc.Pointer, error) {
	p, err := jsondoc.ParsePointer(pointer)
	if err != nil {
		log.Warn("invalid pointer", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: %v", models.ErrInvalidPointer, err)
	}
	return p, nil
}
