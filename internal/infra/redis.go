package infra

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// NewRedis creates and validates a go-redis client connection.
func NewRedis(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}

	rdb := redis.NewClient(opts)

	// Validate connectivity at startup
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}

	return rdb, nil
}

// CacheSnapshots is the read-through cache for product snapshots.
// A nil receiver or nil client behaves as an always-miss cache.
type CacheSnapshots struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewCacheSnapshots(rdb *redis.Client, ttl time.Duration) *CacheSnapshots {
	return &CacheSnapshots{rdb: rdb, ttl: ttl}
}

func claveSnapshot(id uuid.UUID) string { return "snapshot:producto:" + id.String() }

// Obtener decodes the cached snapshot into dest and reports whether it was found.
func (c *CacheSnapshots) Obtener(ctx context.Context, id uuid.UUID, dest any) bool {
	if c == nil || c.rdb == nil {
		return false
	}
	b, err := c.rdb.Get(ctx, claveSnapshot(id)).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(b, dest) == nil
}

// Guardar stores a snapshot; failures are logged and otherwise ignored.
func (c *CacheSnapshots) Guardar(ctx context.Context, id uuid.UUID, v any) {
	if c == nil || c.rdb == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, claveSnapshot(id), b, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("producto_id", id.String()).Msg("snapshot cache: set failed")
	}
}

// Invalidar drops the snapshots of the given products. Called after commit.
func (c *CacheSnapshots) Invalidar(ctx context.Context, ids ...uuid.UUID) {
	if c == nil || c.rdb == nil || len(ids) == 0 {
		return
	}
	claves := make([]string, 0, len(ids))
	for _, id := range ids {
		claves = append(claves, claveSnapshot(id))
	}
	if err := c.rdb.Del(ctx, claves...).Err(); err != nil {
		log.Warn().Err(err).Strs("claves", claves).Msg("snapshot cache: invalidation failed")
	}
}
