package server

import (
	"context"
	"strings"

	"github.com/rs/zerolog"

	"travelchat/backend/internal/lexicon"
	"travelchat/backend/internal/store"
)

// resolution is what a contextual search produced: the matched records, the
// keyword list after context injection, and the tour subtype the conversation
// is pinned to (explicit or sticky).
type resolution struct {
	Hotels   []store.Hotel
	Tours    []store.Tour
	Keywords []string
	Subtype  string
}

// searchResolver runs the catalog search with conversation context applied:
// explicit subtype switches reset old context, price follow-ups reuse the
// last results, and sticky subtype plus recent regions are injected into the
// keyword list before dispatching on intent.
type searchResolver struct {
	records  RecordStore
	contexts *contextStore
	snapshot *searchSnapshot
	lex      *lexicon.Lexicon
	log      zerolog.Logger
}

func (r *searchResolver) Resolve(ctx context.Context, keywords []string, intent Intent, conversationID *int64) resolution {
	keywords = append([]string(nil), keywords...)

	explicitSubtype := ""
	for _, keyword := range keywords {
		if tag := r.lex.SubtypeIn(strings.ToLower(keyword)); tag != "" {
			explicitSubtype = tag
			break
		}
	}

	// An explicit mention of another tour family invalidates everything the
	// previous turns accumulated.
	if explicitSubtype != "" {
		r.log.Debug().Str("subtype", explicitSubtype).Msg("explicit tour subtype, clearing previous context")
		r.snapshot.Clear()
		if conversationID != nil {
			r.contexts.ClearTopic(*conversationID)
		}
	}

	if intent == IntentPrice && explicitSubtype == "" && !r.snapshot.Empty() {
		hotels, tours := r.snapshot.Get()
		r.log.Debug().Msg("price follow-up, reusing previous search results")
		return resolution{Hotels: hotels, Tours: tours, Keywords: keywords, Subtype: r.stickySubtype(conversationID)}
	}

	effectiveSubtype := explicitSubtype

	var state *conversationState
	hasState := false
	if conversationID != nil {
		state, hasState = r.contexts.Snapshot(*conversationID)
	}

	if hasState && explicitSubtype == "" && state.Subtype != "" {
		keywords = append(keywords, state.Subtype)
		effectiveSubtype = state.Subtype
		r.log.Debug().Str("subtype", state.Subtype).Msg("injected sticky subtype from conversation")
	} else if hasState && explicitSubtype == "" && len(state.Turns) > 0 {
		var historySubtype string
		keywords, historySubtype = r.injectHistory(ctx, keywords, state)
		if historySubtype != "" {
			effectiveSubtype = historySubtype
		}
	}

	var hotels []store.Hotel
	var tours []store.Tour
	switch intent {
	case IntentHotel:
		hotels = r.searchHotels(ctx, keywords)
	case IntentTour:
		tours = r.searchTours(ctx, keywords)
	default: // general and price
		if !hasSearchTerms(keywords) {
			if !r.snapshot.Empty() {
				hotels, tours = r.snapshot.Get()
				r.log.Debug().Msg("empty keywords, reusing previous search results")
			} else {
				hotels = r.searchHotels(ctx, []string{""})
				tours = r.searchTours(ctx, []string{""})
			}
		} else {
			hotels = r.searchHotels(ctx, keywords)
			tours = r.searchTours(ctx, keywords)
		}
	}

	if effectiveSubtype != "" && len(tours) > 0 {
		filtered := make([]store.Tour, 0, len(tours))
		for _, tour := range tours {
			if strings.Contains(strings.ToLower(tour.Name), effectiveSubtype) {
				filtered = append(filtered, tour)
			}
		}
		tours = filtered
		r.log.Debug().Str("subtype", effectiveSubtype).Int("tours", len(tours)).Msg("filtered tours by subtype")
	}

	if len(hotels) > 0 || len(tours) > 0 {
		r.snapshot.Set(hotels, tours)
	}

	return resolution{Hotels: hotels, Tours: tours, Keywords: keywords, Subtype: effectiveSubtype}
}

// injectHistory pulls the most recent region and tour subtype mentioned in
// the last three turns into the keyword list, so elliptical follow-ups keep
// searching the same slice of the catalog. A recovered subtype is also
// returned so the result filter honors it.
func (r *searchResolver) injectHistory(ctx context.Context, keywords []string, state *conversationState) ([]string, string) {
	turns := state.Turns
	if len(turns) > 3 {
		turns = turns[len(turns)-3:]
	}

	regions := r.records.AvailableRegions(ctx)
	var historicalRegion, historicalSubtype string
	for _, turn := range turns {
		if historicalRegion == "" {
			for _, region := range regions {
				if strings.Contains(turn.User, region) && !containsExact(keywords, region) {
					historicalRegion = region
					break
				}
			}
		}
		if historicalSubtype == "" {
			combined := strings.ToLower(turn.User + " " + turn.Assistant)
			if tag := r.lex.SubtypeIn(combined); tag != "" && !containsExact(keywords, tag) {
				historicalSubtype = tag
			}
		}
	}

	if historicalRegion != "" {
		keywords = append(keywords, historicalRegion)
		r.log.Debug().Str("region", historicalRegion).Msg("injected region from history")
	}
	if historicalSubtype != "" {
		keywords = append(keywords, historicalSubtype)
		r.log.Debug().Str("subtype", historicalSubtype).Msg("injected subtype from history")
	}
	return keywords, historicalSubtype
}

func (r *searchResolver) searchHotels(ctx context.Context, keywords []string) []store.Hotel {
	hotels, err := r.records.SearchHotels(ctx, keywords)
	if err != nil {
		r.log.Warn().Err(err).Msg("hotel search failed")
		return nil
	}
	return hotels
}

func (r *searchResolver) searchTours(ctx context.Context, keywords []string) []store.Tour {
	tours, err := r.records.SearchTours(ctx, keywords)
	if err != nil {
		r.log.Warn().Err(err).Msg("tour search failed")
		return nil
	}
	return tours
}

func (r *searchResolver) stickySubtype(conversationID *int64) string {
	if conversationID == nil {
		return ""
	}
	state, ok := r.contexts.Snapshot(*conversationID)
	if !ok {
		return ""
	}
	return state.Subtype
}
