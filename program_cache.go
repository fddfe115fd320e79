package statedef

import lru "github.com/hashicorp/golang-lru/v2"

// ProgramCache stores compiled expression programs keyed by engine and
// source.
type ProgramCache interface {
	Get(key string) (any, bool)
	Set(key string, value any)
}

// LRUProgramCache is a bounded ProgramCache safe for concurrent use.
type LRUProgramCache struct {
	cache *lru.Cache[string, any]
}

// NewLRUProgramCache builds a cache holding at most size programs. A size
// below one falls back to DefaultProgramCacheSize.
func NewLRUProgramCache(size int) *LRUProgramCache {
	if size < 1 {
		size = DefaultProgramCacheSize
	}
	cache, err := lru.New[string, any](size)
	if err != nil {
		// lru.New only fails on a non-positive size.
		panic(err)
	}
	return &LRUProgramCache{cache: cache}
}

// Get implements ProgramCache.
func (c *LRUProgramCache) Get(key string) (any, bool) {
	if c == nil || c.cache == nil {
		return nil, false
	}
	return c.cache.Get(key)
}

// Set implements ProgramCache.
func (c *LRUProgramCache) Set(key string, value any) {
	if c == nil || c.cache == nil {
		return
	}
	c.cache.Add(key, value)
}

// Len returns the number of cached programs.
func (c *LRUProgramCache) Len() int {
	if c == nil || c.cache == nil {
		return 0
	}
	return c.cache.Len()
}

func programKey(engine, source string) string {
	return engine + ":" + source
}
