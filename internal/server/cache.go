package server

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"strings"
	"sync"

	"travelchat/backend/internal/store"
)

const (
	responseCacheMax   = 100
	responseCacheEvict = 20
)

// responseCache stores generated answers keyed by a digest of the question
// and the records it was answered from. Entries are evicted in insertion
// order, twenty at a time, once the cache exceeds a hundred entries.
type responseCache struct {
	mu      sync.Mutex
	entries map[string]string
	order   []string
}

func newResponseCache() *responseCache {
	return &responseCache{entries: make(map[string]string)}
}

// Key digests the normalized message, the result counts, the first two
// record names of each kind and the conversation id. The fields are marshaled
// as a map so the digest does not depend on field ordering.
func (rc *responseCache) Key(message string, hotels []store.Hotel, tours []store.Tour, conversationID *int64) string {
	hotelNames := make([]string, 0, 2)
	for _, hotel := range hotels {
		hotelNames = append(hotelNames, hotel.Name)
		if len(hotelNames) == 2 {
			break
		}
	}
	tourNames := make([]string, 0, 2)
	for _, tour := range tours {
		tourNames = append(tourNames, tour.Name)
		if len(tourNames) == 2 {
			break
		}
	}

	payload := map[string]any{
		"message":         strings.ToLower(strings.TrimSpace(message)),
		"hotel_count":     len(hotels),
		"tour_count":      len(tours),
		"hotel_names":     hotelNames,
		"tour_names":      tourNames,
		"conversation_id": conversationID,
	}
	raw, _ := json.Marshal(payload)
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}

func (rc *responseCache) Get(key string) (string, bool) {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	response, ok := rc.entries[key]
	return response, ok
}

func (rc *responseCache) Put(key, response string) {
	rc.mu.Lock()
	defer rc.mu.Unlock()

	if _, exists := rc.entries[key]; !exists {
		rc.order = append(rc.order, key)
	}
	rc.entries[key] = response

	if len(rc.entries) <= responseCacheMax {
		return
	}
	evicted := rc.order[:responseCacheEvict]
	rc.order = rc.order[responseCacheEvict:]
	for _, old := range evicted {
		delete(rc.entries, old)
	}
}

func (rc *responseCache) Len() int {
	rc.mu.Lock()
	defer rc.mu.Unlock()
	return len(rc.entries)
}
