package cachejsonstorerepo

import (
	"context"
	"encoding/json"
	"fmt"
	"jsonstore/internal/jsondoc"
	"jsonstore/internal/models"
	cacherepo "jsonstore/internal/repositories/cache"
	"strconv"
	"time"
)

const (
	pkg       = "cacheJSONStoreRepo/"
	keyPrefix = "jsonstore:item:"

	fieldVersion = "v"
	fieldData    = "d"
)

// storeIfNewer writes an entry only when its version is newer than the cached
// one. A tombstone (ARGV[4] == "1") also replaces an entry of equal version,
// so the copy of a deleted row can not outlive the delete.
const storeIfNewer = `
local cur = redis.call('HGET', KEYS[1], 'v')
if cur then
	cur = tonumber(cur)
	local incoming = tonumber(ARGV[1])
	if cur > incoming or (cur == incoming and ARGV[4] ~= '1') then
		return 0
	end
end
redis.call('HSET', KEYS[1], 'v', ARGV[1], 'd', ARGV[2])
redis.call('PEXPIRE', KEYS[1], ARGV[3])
return 1
`

type entry struct {
	ID             int64    `json:"id"`
	XID            string   `json:"xid"`
	Name           string   `json:"name"`
	ReadPermission []string `json:"readPermission"`
	EditPermission []string `json:"editPermission"`
	HasData        bool     `json:"hasData"`
	Data           string   `json:"data,omitempty"`
}

type repository struct {
	cache   cacherepo.Cache
	itemTTL time.Duration
}

func New(cache cacherepo.Cache, itemTTL time.Duration) *repository {
	return &repository{
		cache:   cache,
		itemTTL: itemTTL,
	}
}

func key(xid string) string {
	return keyPrefix + xid
}

// Get returns the cached item or nil on a miss. A tombstone is a miss.
func (r *repository) Get(ctx context.Context, xid string) (*models.JSONStoreItem, error) {
	op := pkg + "Get"

	fields, err := r.cache.HGetAll(ctx, key(xid)).Result()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	raw, ok := fields[fieldData]
	if !ok || raw == "" {
		return nil, nil
	}

	version, err := strconv.ParseInt(fields[fieldVersion], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%s: bad version: %w", op, err)
	}

	var e entry
	if err := json.Unmarshal([]byte(raw), &e); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	item := &models.JSONStoreItem{
		ID:             e.ID,
		XID:            e.XID,
		Name:           e.Name,
		ReadPermission: e.ReadPermission,
		EditPermission: e.EditPermission,
		Version:        version,
	}
	if e.HasData {
		if item.JSONData, err = jsondoc.Parse([]byte(e.Data)); err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
	}

	return item, nil
}

// Put caches item unless a newer version, or a tombstone of the same
// version, is already there.
func (r *repository) Put(ctx context.Context, item *models.JSONStoreItem) (bool, error) {
	op := pkg + "Put"

	e := entry{
		ID:             item.ID,
		XID:            item.XID,
		Name:           item.Name,
		ReadPermission: item.ReadPermission,
		EditPermission: item.EditPermission,
	}
	if item.JSONData != nil {
		e.HasData = true
		e.Data = item.JSONData.String()
	}

	raw, err := json.Marshal(e)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return r.store(ctx, op, item.XID, item.Version, string(raw), false)
}

// Tombstone marks xid as deleted at version.
func (r *repository) Tombstone(ctx context.Context, xid string, version int64) error {
	op := pkg + "Tombstone"

	_, err := r.store(ctx, op, xid, version, "", true)
	return err
}

func (r *repository) Del(ctx context.Context, xid string) error {
	op := pkg + "Del"

	if err := r.cache.Del(ctx, key(xid)).Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	return nil
}

func (r *repository) store(ctx context.Context, op, xid string, version int64, data string, tombstone bool) (bool, error) {
	flag := "0"
	if tombstone {
		flag = "1"
	}

	res, err := r.cache.Eval(ctx, storeIfNewer, []string{key(xid)},
		version, data, r.itemTTL.Milliseconds(), flag).Result()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	stored, _ := res.(int64)
	return stored == 1, nil
}
