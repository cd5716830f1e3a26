package server

import (
	"strings"
	"sync"

	"travelchat/backend/internal/lexicon"
	"travelchat/backend/internal/store"
)

const contextTurnLimit = 10

type conversationTurn struct {
	User      string
	Assistant string
}

// conversationState is the per-conversation memory: the last ten turns, the
// current topic, the sticky tour subtype and the records last shown to the
// customer.
type conversationState struct {
	Turns           []conversationTurn
	Topic           string // "", "tour" or "hotel"
	Subtype         string
	MentionedHotels []store.Hotel
	MentionedTours  []store.Tour
	Greeted         bool
}

func (s *conversationState) clone() *conversationState {
	if s == nil {
		return nil
	}
	copied := &conversationState{
		Turns:           append([]conversationTurn(nil), s.Turns...),
		Topic:           s.Topic,
		Subtype:         s.Subtype,
		MentionedHotels: append([]store.Hotel(nil), s.MentionedHotels...),
		MentionedTours:  append([]store.Tour(nil), s.MentionedTours...),
		Greeted:         s.Greeted,
	}
	return copied
}

type contextStore struct {
	lex *lexicon.Lexicon

	mu     sync.Mutex
	states map[int64]*conversationState
}

func newContextStore(lex *lexicon.Lexicon) *contextStore {
	return &contextStore{
		lex:    lex,
		states: make(map[int64]*conversationState),
	}
}

// Snapshot returns a copy of the conversation state, so readers never see
// concurrent mutation. ok is false when the conversation has no history yet.
func (c *contextStore) Snapshot(conversationID int64) (*conversationState, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	state, ok := c.states[conversationID]
	if !ok {
		return &conversationState{}, false
	}
	return state.clone(), true
}

// Update appends the finished turn and refreshes topic, subtype and mentioned
// records. Tours win over hotels when both are present, and the subtype is
// read from the first tour name carrying a known tag.
func (c *contextStore) Update(conversationID int64, userMessage, assistantReply string, hotels []store.Hotel, tours []store.Tour) {
	c.mu.Lock()
	defer c.mu.Unlock()

	state, ok := c.states[conversationID]
	if !ok {
		state = &conversationState{}
		c.states[conversationID] = state
	}

	state.Turns = append(state.Turns, conversationTurn{User: userMessage, Assistant: assistantReply})
	if len(state.Turns) > contextTurnLimit {
		state.Turns = state.Turns[len(state.Turns)-contextTurnLimit:]
	}

	if len(tours) > 0 {
		state.Topic = "tour"
		state.MentionedTours = append([]store.Tour(nil), tours...)
		for _, tour := range tours {
			if subtype := c.lex.SubtypeIn(strings.ToLower(tour.Name)); subtype != "" {
				state.Subtype = subtype
				break
			}
		}
	} else if len(hotels) > 0 {
		state.Topic = "hotel"
		state.MentionedHotels = append([]store.Hotel(nil), hotels...)
	}
}

// ClearTopic drops the remembered topic, used when the customer explicitly
// switches to another tour family.
func (c *contextStore) ClearTopic(conversationID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if state, ok := c.states[conversationID]; ok {
		state.Topic = ""
		state.Subtype = ""
	}
}

func (c *contextStore) MarkGreeted(conversationID int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	state, ok := c.states[conversationID]
	if !ok {
		state = &conversationState{}
		c.states[conversationID] = state
	}
	state.Greeted = true
}

// searchSnapshot is the process-wide memory of the last non-empty search.
// It is shared across conversations on purpose: the original service behaved
// this way and single-operator deployments rely on it for quick follow-ups.
type searchSnapshot struct {
	mu     sync.Mutex
	hotels []store.Hotel
	tours  []store.Tour
}

func (s *searchSnapshot) Get() ([]store.Hotel, []store.Tour) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]store.Hotel(nil), s.hotels...), append([]store.Tour(nil), s.tours...)
}

func (s *searchSnapshot) Set(hotels []store.Hotel, tours []store.Tour) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hotels = append([]store.Hotel(nil), hotels...)
	s.tours = append([]store.Tour(nil), tours...)
}

func (s *searchSnapshot) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hotels = nil
	s.tours = nil
}

func (s *searchSnapshot) Empty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.hotels) == 0 && len(s.tours) == 0
}
