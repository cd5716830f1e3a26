package server

import (
	"fmt"
	"testing"

	"travelchat/backend/internal/store"
)

func TestCacheKeyStableAcrossCalls(t *testing.T) {
	cache := newResponseCache()
	conv := int64(7)
	tours := []store.Tour{{Name: "다낭 패밀리 투어"}, {Name: "다낭 래프팅 투어"}}

	a := cache.Key("  패밀리 투어 얼마에요?  ", nil, tours, &conv)
	b := cache.Key("패밀리 투어 얼마에요?", nil, tours, &conv)
	if a != b {
		t.Fatal("key must ignore surrounding whitespace and case of the message")
	}
}

func TestCacheKeySeparatesConversations(t *testing.T) {
	cache := newResponseCache()
	convA, convB := int64(1), int64(2)

	a := cache.Key("얼마에요?", nil, nil, &convA)
	b := cache.Key("얼마에요?", nil, nil, &convB)
	c := cache.Key("얼마에요?", nil, nil, nil)
	if a == b || a == c {
		t.Fatal("conversations must not share cache entries")
	}
}

func TestCacheKeyDependsOnResults(t *testing.T) {
	cache := newResponseCache()

	a := cache.Key("투어 알려줘", nil, []store.Tour{{Name: "다낭 패밀리 투어"}}, nil)
	b := cache.Key("투어 알려줘", nil, []store.Tour{{Name: "다낭 래프팅 투어"}}, nil)
	if a == b {
		t.Fatal("different result sets must produce different keys")
	}
}

func TestCacheGetPut(t *testing.T) {
	cache := newResponseCache()

	if _, ok := cache.Get("missing"); ok {
		t.Fatal("expected miss for unknown key")
	}
	cache.Put("k", "답변")
	got, ok := cache.Get("k")
	if !ok || got != "답변" {
		t.Fatalf("expected cached answer, got %q/%v", got, ok)
	}

	// Overwriting must not duplicate the insertion-order entry.
	cache.Put("k", "새 답변")
	got, _ = cache.Get("k")
	if got != "새 답변" {
		t.Fatalf("expected overwrite, got %q", got)
	}
	if cache.Len() != 1 {
		t.Fatalf("expected one entry, got %d", cache.Len())
	}
}

func TestCacheEvictsOldestTwenty(t *testing.T) {
	cache := newResponseCache()

	for i := 0; i < responseCacheMax+1; i++ {
		cache.Put(fmt.Sprintf("key-%03d", i), "답변")
	}

	if cache.Len() != responseCacheMax+1-responseCacheEvict {
		t.Fatalf("expected %d entries after eviction, got %d", responseCacheMax+1-responseCacheEvict, cache.Len())
	}
	if _, ok := cache.Get("key-000"); ok {
		t.Fatal("expected the oldest entry evicted")
	}
	if _, ok := cache.Get(fmt.Sprintf("key-%03d", responseCacheEvict)); !ok {
		t.Fatal("expected entries past the eviction window kept")
	}
	if _, ok := cache.Get(fmt.Sprintf("key-%03d", responseCacheMax)); !ok {
		t.Fatal("expected the newest entry kept")
	}
}
