// Package store reads the hotel and tour catalog from Postgres. Results are
// cached in memory for a short window because the resolver issues the same
// keyword searches repeatedly within a conversation.
package store

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
)

const (
	cacheTTL        = 5 * time.Minute
	cacheMaxEntries = 50
	cacheEvictCount = 10
)

type Hotel struct {
	Name           string
	Region         string
	AdultPrice     *string
	ChildPrice     *string
	PromotionStart *string
	PromotionEnd   *string
	Unlimited      bool
	ChildCriteria  *string
	Description    *string
}

type Tour struct {
	Name           string
	Region         string
	Description    string
	Duration       string
	AdultPrice     string
	ChildPrice     string
	InfantPrice    string
	ChildCriteria  string
	InfantCriteria string
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

type cacheEntry struct {
	data     any
	cachedAt time.Time
}

type Store struct {
	db             querier
	log            zerolog.Logger
	fallbackRegion string

	mu    sync.Mutex
	cache map[string]cacheEntry
	now   func() time.Time
}

func New(db querier, fallbackRegion string, log zerolog.Logger) *Store {
	return &Store{
		db:             db,
		log:            log,
		fallbackRegion: fallbackRegion,
		cache:          make(map[string]cacheEntry),
		now:            time.Now,
	}
}

const hotelColumns = `hotel_name, hotel_region, adult_price, child_price,
       TO_CHAR(promotion_start, 'YYYY-MM-DD'),
       TO_CHAR(promotion_end, 'YYYY-MM-DD'),
       COALESCE(is_unlimited, FALSE), child_criteria, description`

const tourColumns = `tour_name, tour_region, COALESCE(description, ''), COALESCE(duration, ''),
       COALESCE(adult_price, ''), COALESCE(child_price, ''), COALESCE(infant_price, ''),
       COALESCE(child_criteria, ''), COALESCE(infant_criteria, '')`

// SearchHotels returns active hotels whose name, region or description
// matches any of the terms. Blank terms mean "everything": the ten first
// hotels by region and name.
func (s *Store) SearchHotels(ctx context.Context, terms []string) ([]Hotel, error) {
	key := cacheKey("hotels", terms)
	if cached, ok := s.cacheGet(key); ok {
		return cached.([]Hotel), nil
	}

	var rows pgx.Rows
	var err error
	if hasSearchTerms(terms) {
		rows, err = s.db.Query(ctx,
			`SELECT `+hotelColumns+`
			 FROM hotels
			 WHERE is_active = TRUE
			   AND (LOWER(hotel_name) LIKE ANY($1)
			        OR LOWER(hotel_region) LIKE ANY($1)
			        OR LOWER(description) LIKE ANY($1))
			 ORDER BY hotel_region, hotel_name
			 LIMIT 10`,
			searchPatterns(terms),
		)
	} else {
		rows, err = s.db.Query(ctx,
			`SELECT `+hotelColumns+`
			 FROM hotels
			 WHERE is_active = TRUE
			 ORDER BY hotel_region, hotel_name
			 LIMIT 10`,
		)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	hotels := make([]Hotel, 0, 10)
	for rows.Next() {
		var h Hotel
		if err := rows.Scan(
			&h.Name, &h.Region, &h.AdultPrice, &h.ChildPrice,
			&h.PromotionStart, &h.PromotionEnd,
			&h.Unlimited, &h.ChildCriteria, &h.Description,
		); err != nil {
			return nil, err
		}
		hotels = append(hotels, h)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	s.cachePut(key, hotels)
	return hotels, nil
}

// SearchTours mirrors SearchHotels for the tour catalog.
func (s *Store) SearchTours(ctx context.Context, terms []string) ([]Tour, error) {
	key := cacheKey("tours", terms)
	if cached, ok := s.cacheGet(key); ok {
		return cached.([]Tour), nil
	}

	var rows pgx.Rows
	var err error
	if hasSearchTerms(terms) {
		rows, err = s.db.Query(ctx,
			`SELECT `+tourColumns+`
			 FROM tours
			 WHERE is_active = TRUE
			   AND (LOWER(tour_name) LIKE ANY($1)
			        OR LOWER(tour_region) LIKE ANY($1)
			        OR LOWER(description) LIKE ANY($1))
			 ORDER BY tour_region, tour_name
			 LIMIT 10`,
			searchPatterns(terms),
		)
	} else {
		rows, err = s.db.Query(ctx,
			`SELECT `+tourColumns+`
			 FROM tours
			 WHERE is_active = TRUE
			 ORDER BY tour_region, tour_name
			 LIMIT 10`,
		)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tours := make([]Tour, 0, 10)
	for rows.Next() {
		var t Tour
		if err := rows.Scan(
			&t.Name, &t.Region, &t.Description, &t.Duration,
			&t.AdultPrice, &t.ChildPrice, &t.InfantPrice,
			&t.ChildCriteria, &t.InfantCriteria,
		); err != nil {
			return nil, err
		}
		tours = append(tours, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	s.cachePut(key, tours)
	return tours, nil
}

// AvailableRegions returns the sorted set of regions that currently have an
// active hotel or tour. On query failure it falls back to the configured
// default region so keyword extraction keeps working.
func (s *Store) AvailableRegions(ctx context.Context) []string {
	key := cacheKey("regions", nil)
	if cached, ok := s.cacheGet(key); ok {
		return cached.([]string)
	}

	rows, err := s.db.Query(ctx,
		`SELECT DISTINCT hotel_region FROM hotels WHERE is_active = TRUE
		 UNION
		 SELECT DISTINCT tour_region FROM tours WHERE is_active = TRUE
		 ORDER BY 1`,
	)
	if err != nil {
		s.log.Warn().Err(err).Msg("region lookup failed, using fallback region")
		return []string{s.fallbackRegion}
	}
	defer rows.Close()

	regions := make([]string, 0, 8)
	for rows.Next() {
		var region string
		if err := rows.Scan(&region); err != nil {
			s.log.Warn().Err(err).Msg("region scan failed, using fallback region")
			return []string{s.fallbackRegion}
		}
		if strings.TrimSpace(region) != "" {
			regions = append(regions, region)
		}
	}
	if err := rows.Err(); err != nil {
		s.log.Warn().Err(err).Msg("region lookup failed, using fallback region")
		return []string{s.fallbackRegion}
	}
	if len(regions) == 0 {
		return []string{s.fallbackRegion}
	}

	s.cachePut(key, regions)
	return regions
}

func (s *Store) cacheGet(key string) (any, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.cache[key]
	if !ok {
		return nil, false
	}
	if s.now().Sub(entry.cachedAt) >= cacheTTL {
		delete(s.cache, key)
		return nil, false
	}
	return entry.data, true
}

func (s *Store) cachePut(key string, data any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.cache[key] = cacheEntry{data: data, cachedAt: s.now()}
	if len(s.cache) <= cacheMaxEntries {
		return
	}

	type aged struct {
		key string
		at  time.Time
	}
	entries := make([]aged, 0, len(s.cache))
	for k, v := range s.cache {
		entries = append(entries, aged{key: k, at: v.cachedAt})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].at.Before(entries[j].at) })
	for i := 0; i < cacheEvictCount && i < len(entries); i++ {
		delete(s.cache, entries[i].key)
	}
}

func hasSearchTerms(terms []string) bool {
	for _, term := range terms {
		if strings.TrimSpace(term) != "" {
			return true
		}
	}
	return false
}

func searchPatterns(terms []string) []string {
	patterns := make([]string, 0, len(terms))
	for _, term := range terms {
		trimmed := strings.TrimSpace(term)
		if trimmed == "" {
			continue
		}
		patterns = append(patterns, "%"+strings.ToLower(trimmed)+"%")
	}
	return patterns
}

func cacheKey(table string, terms []string) string {
	sorted := make([]string, len(terms))
	copy(sorted, terms)
	sort.Strings(sorted)
	sum := sha256.Sum256([]byte(table + ":" + strings.Join(sorted, ",")))
	return hex.EncodeToString(sum[:])
}
