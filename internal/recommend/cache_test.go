package recommend

import (
	"context"
	"testing"
)

func TestCacheKeyIsStablePerRequest(t *testing.T) {
	a := cacheKey(Request{Course: "알고리즘", Grade: "A", TargetType: "전공"})
	b := cacheKey(Request{Course: "알고리즘", Grade: "A", TargetType: "전공"})
	if a != b {
		t.Fatal("same request must produce the same key")
	}
	c := cacheKey(Request{Course: "알고리즘", Grade: "A", TargetType: "교양"})
	if a == c {
		t.Fatal("different targetType must produce a different key")
	}
}

func TestNilCacheIsAMiss(t *testing.T) {
	var cache *Cache
	if _, ok := cache.Get(context.Background(), Request{}); ok {
		t.Fatal("nil cache must behave as a miss")
	}
	// Set on a nil cache must be a no-op, not a panic.
	cache.Set(context.Background(), Request{}, Response{})
}
