package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/tessro/bhajan/internal/config"
	"github.com/tessro/bhajan/internal/core"
)

// Store is the byte cache behind Cached. Get reports a miss with ok=false.
type Store interface {
	Get(ctx context.Context, key string) (val []byte, ok bool, err error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
}

// RedisStore is a Store on a redis client.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to redis and checks the connection.
func NewRedisStore(ctx context.Context, cfg config.CacheConfig) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("connect to redis at %s: %w", cfg.RedisAddr, err)
	}
	return &RedisStore{client: client}, nil
}

// Get implements Store.
func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := s.client.Get(ctx, key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

// Set implements Store.
func (s *RedisStore) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	return s.client.Set(ctx, key, val, ttl).Err()
}

// Close closes the redis connection.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

// Cached is a read-through cache in front of another Source. Cache
// failures are logged and fall through to the wrapped source.
type Cached struct {
	source Source
	store  Store
	ttl    time.Duration
	prefix string
	logger *zap.Logger
}

// DefaultPrefix namespaces catalog entries in a shared store.
const DefaultPrefix = "catalog"

const keyRoot = "bhajan"

// NewCached wraps source. Keys have the form bhajan:<prefix>:<kind>:<id>;
// a prefix that already carries the root or separators is trimmed to fit.
func NewCached(source Source, store Store, ttl time.Duration, prefix string, logger *zap.Logger) *Cached {
	if logger == nil {
		logger = zap.NewNop()
	}
	prefix = strings.Trim(strings.TrimPrefix(prefix, keyRoot+":"), ":")
	return &Cached{source: source, store: store, ttl: ttl, prefix: prefix, logger: logger}
}

func (c *Cached) key(kind, id string) string {
	return fmt.Sprintf("%s:%s:%s:%s", keyRoot, c.prefix, kind, id)
}

// cachedCall serves key from the store or fills it from load.
func cachedCall[T any](ctx context.Context, c *Cached, key string, load func() (T, error)) (T, error) {
	if data, ok, err := c.store.Get(ctx, key); err != nil {
		c.logger.Warn("catalog cache read failed", zap.String("key", key), zap.Error(err))
	} else if ok {
		var v T
		if err := json.Unmarshal(data, &v); err == nil {
			return v, nil
		}
		c.logger.Warn("catalog cache entry corrupt", zap.String("key", key))
	}

	v, err := load()
	if err != nil {
		return v, err
	}

	if data, err := json.Marshal(v); err == nil {
		if err := c.store.Set(ctx, key, data, c.ttl); err != nil {
			c.logger.Warn("catalog cache write failed", zap.String("key", key), zap.Error(err))
		}
	}
	return v, nil
}

// PlaylistTracks implements Source.
func (c *Cached) PlaylistTracks(ctx context.Context, id string) ([]core.Track, error) {
	return cachedCall(ctx, c, c.key("playlist", id), func() ([]core.Track, error) {
		return c.source.PlaylistTracks(ctx, id)
	})
}

// ArtistTracks implements Source.
func (c *Cached) ArtistTracks(ctx context.Context, id string) ([]core.Track, error) {
	return cachedCall(ctx, c, c.key("artist", id), func() ([]core.Track, error) {
		return c.source.ArtistTracks(ctx, id)
	})
}

// Search implements Source.
func (c *Cached) Search(ctx context.Context, query string) ([]core.Track, error) {
	return cachedCall(ctx, c, c.key("search", query), func() ([]core.Track, error) {
		return c.source.Search(ctx, query)
	})
}

// Playlists implements Source.
func (c *Cached) Playlists(ctx context.Context) ([]Playlist, error) {
	return cachedCall(ctx, c, c.key("playlists", "all"), func() ([]Playlist, error) {
		return c.source.Playlists(ctx)
	})
}

// Ensure Cached implements Source
var _ Source = (*Cached)(nil)
