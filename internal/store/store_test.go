package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

type failingQuerier struct{}

func (failingQuerier) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("connection refused")
}

func TestCacheKeyIgnoresTermOrder(t *testing.T) {
	a := cacheKey("tours", []string{"다낭", "래프팅"})
	b := cacheKey("tours", []string{"래프팅", "다낭"})
	if a != b {
		t.Fatal("cache key must not depend on term order")
	}
	if a == cacheKey("hotels", []string{"다낭", "래프팅"}) {
		t.Fatal("cache key must depend on the table")
	}
}

func TestSearchPatterns(t *testing.T) {
	patterns := searchPatterns([]string{"다낭", " Rafting ", "", "  "})
	want := []string{"%다낭%", "%rafting%"}
	if len(patterns) != len(want) {
		t.Fatalf("expected %d patterns, got %v", len(want), patterns)
	}
	for i := range want {
		if patterns[i] != want[i] {
			t.Fatalf("pattern %d: expected %q, got %q", i, want[i], patterns[i])
		}
	}
}

func TestHasSearchTerms(t *testing.T) {
	if hasSearchTerms(nil) || hasSearchTerms([]string{"", "  "}) {
		t.Fatal("blank term lists must count as empty")
	}
	if !hasSearchTerms([]string{"", "다낭"}) {
		t.Fatal("a non-blank term must count")
	}
}

func TestAvailableRegionsFallsBackOnError(t *testing.T) {
	s := New(failingQuerier{}, "다낭", zerolog.Nop())

	regions := s.AvailableRegions(context.Background())
	if len(regions) != 1 || regions[0] != "다낭" {
		t.Fatalf("expected fallback region, got %v", regions)
	}
}

func TestCacheExpiry(t *testing.T) {
	s := New(failingQuerier{}, "다낭", zerolog.Nop())
	current := time.Now()
	s.now = func() time.Time { return current }

	s.cachePut("k", []Hotel{{Name: "다낭 비치 리조트"}})
	if _, ok := s.cacheGet("k"); !ok {
		t.Fatal("expected fresh entry to be served")
	}

	current = current.Add(cacheTTL)
	if _, ok := s.cacheGet("k"); ok {
		t.Fatal("expected entry to expire after the TTL")
	}
}

func TestCacheEviction(t *testing.T) {
	s := New(failingQuerier{}, "다낭", zerolog.Nop())
	current := time.Now()
	s.now = func() time.Time { return current }

	for i := 0; i < cacheMaxEntries+1; i++ {
		current = current.Add(time.Second)
		s.cachePut(cacheKey("tours", []string{string(rune('a' + i))}), []Tour{})
	}

	if len(s.cache) != cacheMaxEntries+1-cacheEvictCount {
		t.Fatalf("expected %d entries after eviction, got %d", cacheMaxEntries+1-cacheEvictCount, len(s.cache))
	}
}
