package cache

import (
	"container/list"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/qbic/datamanager/internal/domain/measurement"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultOrganisationCacheSize bounds the in-memory organisation cache
const DefaultOrganisationCacheSize = 50

// OrganisationCache caches organisations resolved from the ROR registry,
// keyed by ROR id
type OrganisationCache interface {
	// Get returns the cached organisation and whether it was found
	Get(ctx context.Context, rorID string) (measurement.Organisation, bool)
	// Set stores an organisation
	Set(ctx context.Context, rorID string, org measurement.Organisation)
}

// OrganisationCacheOptions configures NewOrganisationCache
type OrganisationCacheOptions struct {
	TTL       time.Duration
	LocalSize int
}

// InMemoryOrganisationCache keeps the most recently used organisations and
// evicts the least recently used one when full
type InMemoryOrganisationCache struct {
	mu      sync.Mutex
	maxSize int
	order   *list.List
	items   map[string]*list.Element
}

type organisationItem struct {
	rorID string
	org   measurement.Organisation
}

// NewInMemoryOrganisationCache creates a cache holding up to maxSize entries
func NewInMemoryOrganisationCache(maxSize int) *InMemoryOrganisationCache {
	if maxSize <= 0 {
		maxSize = DefaultOrganisationCacheSize
	}
	return &InMemoryOrganisationCache{
		maxSize: maxSize,
		order:   list.New(),
		items:   make(map[string]*list.Element),
	}
}

// Get returns the cached organisation
func (c *InMemoryOrganisationCache) Get(ctx context.Context, rorID string) (measurement.Organisation, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	el, ok := c.items[rorID]
	if !ok {
		return measurement.Organisation{}, false
	}
	c.order.MoveToFront(el)
	return el.Value.(*organisationItem).org, true
}

// Set stores an organisation, evicting the least recently used entry when full
func (c *InMemoryOrganisationCache) Set(ctx context.Context, rorID string, org measurement.Organisation) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if el, ok := c.items[rorID]; ok {
		el.Value.(*organisationItem).org = org
		c.order.MoveToFront(el)
		return
	}
	c.items[rorID] = c.order.PushFront(&organisationItem{rorID: rorID, org: org})
	if c.order.Len() > c.maxSize {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.items, oldest.Value.(*organisationItem).rorID)
	}
}

// Len returns the number of cached organisations
func (c *InMemoryOrganisationCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.order.Len()
}

// RedisOrganisationCache stores organisations as JSON with a TTL
type RedisOrganisationCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisOrganisationCache creates a Redis organisation cache
func NewRedisOrganisationCache(client *redis.Client, ttl time.Duration) *RedisOrganisationCache {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisOrganisationCache{client: client, ttl: ttl}
}

func organisationKey(rorID string) string {
	return "dm:organisation:" + rorID
}

// Lookup returns the organisation stored under the ROR id. A missing key
// yields found=false and no error.
func (c *RedisOrganisationCache) Lookup(ctx context.Context, rorID string) (measurement.Organisation, bool, error) {
	raw, err := c.client.Get(ctx, organisationKey(rorID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return measurement.Organisation{}, false, nil
	}
	if err != nil {
		return measurement.Organisation{}, false, fmt.Errorf("failed to read organisation %s: %w", rorID, err)
	}
	var org measurement.Organisation
	if err := json.Unmarshal(raw, &org); err != nil {
		return measurement.Organisation{}, false, fmt.Errorf("failed to decode organisation %s: %w", rorID, err)
	}
	return org, true, nil
}

// Store writes the organisation with the cache TTL
func (c *RedisOrganisationCache) Store(ctx context.Context, rorID string, org measurement.Organisation) error {
	raw, err := json.Marshal(org)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, organisationKey(rorID), raw, c.ttl).Err()
}

// TieredOrganisationCache reads the local cache first, then Redis. Redis
// errors are logged and treated as misses.
type TieredOrganisationCache struct {
	local  *InMemoryOrganisationCache
	remote *RedisOrganisationCache
	logger *zap.Logger
}

// NewTieredOrganisationCache creates a two level organisation cache
func NewTieredOrganisationCache(local *InMemoryOrganisationCache, remote *RedisOrganisationCache, logger *zap.Logger) *TieredOrganisationCache {
	return &TieredOrganisationCache{local: local, remote: remote, logger: logger}
}

// Get returns the organisation from the first level holding it
func (c *TieredOrganisationCache) Get(ctx context.Context, rorID string) (measurement.Organisation, bool) {
	if org, ok := c.local.Get(ctx, rorID); ok {
		return org, true
	}
	org, ok, err := c.remote.Lookup(ctx, rorID)
	if err != nil {
		c.logger.Warn("organisation cache lookup failed", zap.String("ror_id", rorID), zap.Error(err))
		return measurement.Organisation{}, false
	}
	if ok {
		c.local.Set(ctx, rorID, org)
	}
	return org, ok
}

// Set stores the organisation in both levels
func (c *TieredOrganisationCache) Set(ctx context.Context, rorID string, org measurement.Organisation) {
	c.local.Set(ctx, rorID, org)
	if err := c.remote.Store(ctx, rorID, org); err != nil {
		c.logger.Warn("organisation cache write failed", zap.String("ror_id", rorID), zap.Error(err))
	}
}

var (
	_ OrganisationCache = (*InMemoryOrganisationCache)(nil)
	_ OrganisationCache = (*TieredOrganisationCache)(nil)
)
