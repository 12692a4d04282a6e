package data

import (
	"context"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
)

// MemoryCache implements DataCache using in-memory storage
type MemoryCache struct {
	cache map[string]*Table
	mutex sync.RWMutex
}

// NewMemoryCache creates a new in-memory cache
func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		cache: make(map[string]*Table),
	}
}

// Get retrieves a copy of the table if cached
func (c *MemoryCache) Get(_ context.Context, key string) (*Table, bool) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	table, exists := c.cache[key]
	if !exists {
		return nil, false
	}
	return table.Clone(), true
}

// Set stores a copy of the table
func (c *MemoryCache) Set(_ context.Context, key string, table *Table) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.cache[key] = table.Clone()
}

// Clear removes all cached data
func (c *MemoryCache) Clear(_ context.Context) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.cache = make(map[string]*Table)
}

// Size returns the number of cached entries
func (c *MemoryCache) Size(_ context.Context) int {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	return len(c.cache)
}

// CachedProvider wraps another DataProvider with caching functionality
type CachedProvider struct {
	provider DataProvider
	cache    DataCache
}

// NewCachedProvider creates a new cached data provider
func NewCachedProvider(provider DataProvider) *CachedProvider {
	return NewCachedProviderWithCache(provider, NewMemoryCache())
}

// NewCachedProviderWithCache creates a new cached data provider with custom cache
func NewCachedProviderWithCache(provider DataProvider, cache DataCache) *CachedProvider {
	return &CachedProvider{
		provider: provider,
		cache:    cache,
	}
}

// GetName returns the name of the underlying provider with cache indication
func (p *CachedProvider) GetName() string {
	return "Cached " + p.provider.GetName()
}

// LoadTable loads a table, consulting the cache first
func (p *CachedProvider) LoadTable(ctx context.Context, source string) (*Table, error) {
	if cached, exists := p.cache.Get(ctx, source); exists {
		log.Debug().Str("source", filepath.Base(source)).Msg("📦 Cache hit")
		return cached, nil
	}

	log.Info().Str("source", filepath.Base(source)).Msg("🔄 Loading historical data")
	table, err := p.provider.LoadTable(ctx, source)
	if err != nil {
		log.Error().Err(err).Str("source", filepath.Base(source)).Msg("❌ Failed to load data")
		return nil, err
	}

	p.cache.Set(ctx, source, table)

	log.Info().Str("source", filepath.Base(source)).Int("records", table.Len()).Msg("✅ Loaded and cached data")
	return table, nil
}

// GetCache returns the underlying cache for external management
func (p *CachedProvider) GetCache() DataCache {
	return p.cache
}
