package doctors

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/docconnect/platform/pkg/logging"
)

// Directory is the read surface of the doctor catalog.
type Directory interface {
	Search(ctx context.Context, filter SearchFilter) ([]Doctor, error)
	GetByID(ctx context.Context, id int64) (*Doctor, error)
	Facets(ctx context.Context) (*Facets, error)
	ResolveForIdentity(ctx context.Context, userID int64, displayName string) (*Doctor, error)
}

// CachedDirectory is a read-through Redis cache in front of a Directory.
// Cache failures are logged and the request falls through to the inner store.
type CachedDirectory struct {
	inner  Directory
	redis  *redis.Client
	ttl    time.Duration
	logger *logging.Logger
}

// NewCachedDirectory wraps inner with a Redis cache.
func NewCachedDirectory(inner Directory, client *redis.Client, ttl time.Duration, logger *logging.Logger) *CachedDirectory {
	if inner == nil {
		panic("doctors: inner directory required")
	}
	if client == nil {
		panic("doctors: redis client required")
	}
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &CachedDirectory{inner: inner, redis: client, ttl: ttl, logger: logger}
}

// Search serves directory listings from cache when possible.
func (c *CachedDirectory) Search(ctx context.Context, filter SearchFilter) ([]Doctor, error) {
	key := searchKey(filter)
	if data, err := c.redis.Get(ctx, key).Bytes(); err == nil {
		var cached []Doctor
		if err := json.Unmarshal(data, &cached); err == nil {
			return cached, nil
		}
		c.logger.Warn("doctor cache entry corrupt", "key", key)
	} else if err != redis.Nil {
		c.logger.Warn("doctor cache read failed", "key", key, "error", err)
	}

	docs, err := c.inner.Search(ctx, filter)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(docs); err == nil {
		if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.logger.Warn("doctor cache write failed", "key", key, "error", err)
		}
	}
	return docs, nil
}

// GetByID is not cached; profile lookups are cheap single-row reads.
func (c *CachedDirectory) GetByID(ctx context.Context, id int64) (*Doctor, error) {
	return c.inner.GetByID(ctx, id)
}

// Facets serves the filter facets from cache when possible.
func (c *CachedDirectory) Facets(ctx context.Context) (*Facets, error) {
	const key = "doctors:facets"
	if data, err := c.redis.Get(ctx, key).Bytes(); err == nil {
		var cached Facets
		if err := json.Unmarshal(data, &cached); err == nil {
			return &cached, nil
		}
	} else if err != redis.Nil {
		c.logger.Warn("doctor cache read failed", "key", key, "error", err)
	}

	facets, err := c.inner.Facets(ctx)
	if err != nil {
		return nil, err
	}
	if data, err := json.Marshal(facets); err == nil {
		if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
			c.logger.Warn("doctor cache write failed", "key", key, "error", err)
		}
	}
	return facets, nil
}

// ResolveForIdentity is never cached; it feeds authorization decisions.
func (c *CachedDirectory) ResolveForIdentity(ctx context.Context, userID int64, displayName string) (*Doctor, error) {
	return c.inner.ResolveForIdentity(ctx, userID, displayName)
}

func searchKey(filter SearchFilter) string {
	norm := func(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
	return fmt.Sprintf("doctors:search:%s|%s|%s", norm(filter.Query), norm(filter.Specialty), norm(filter.Location))
}
