package statedef

import "testing"

func TestLRUProgramCacheEvictsOldest(t *testing.T) {
	cache := NewLRUProgramCache(2)
	cache.Set("a", 1)
	cache.Set("b", 2)
	if _, ok := cache.Get("a"); !ok {
		t.Fatalf("expected a to be cached")
	}
	cache.Set("c", 3)

	if _, ok := cache.Get("b"); ok {
		t.Fatalf("expected b to be evicted as least recently used")
	}
	if value, ok := cache.Get("a"); !ok || value != 1 {
		t.Fatalf("expected a to survive, got %v %v", value, ok)
	}
	if cache.Len() != 2 {
		t.Fatalf("expected 2 entries, got %d", cache.Len())
	}
}

func TestLRUProgramCacheDefaultsSize(t *testing.T) {
	cache := NewLRUProgramCache(0)
	for i := 0; i < DefaultProgramCacheSize+10; i++ {
		cache.Set(programKey(EngineExpr, string(rune('a'+i%26))+string(rune(i))), i)
	}
	if cache.Len() != DefaultProgramCacheSize {
		t.Fatalf("expected %d entries, got %d", DefaultProgramCacheSize, cache.Len())
	}
	var nilCache *LRUProgramCache
	if _, ok := nilCache.Get("x"); ok || nilCache.Len() != 0 {
		t.Fatalf("nil cache should be empty")
	}
	nilCache.Set("x", 1)
}

func TestStoresShareProgramCache(t *testing.T) {
	cache := NewLRUProgramCache(8)
	first := MustNew(Definitions{"n": 1, "v": Expr("n + 1")}, WithProgramCache(cache))
	second := MustNew(Definitions{"n": 5, "v": Expr("n + 1")}, WithProgramCache(cache))

	assertValue(t, first, "v", 2)
	assertValue(t, second, "v", 6)
	if cache.Len() != 1 {
		t.Fatalf("expected one shared program, got %d", cache.Len())
	}
}
