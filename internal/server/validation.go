package server

import (
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/rs/zerolog"

	"travelchat/backend/internal/lexicon"
	"travelchat/backend/internal/store"
)

const validationHistoryLimit = 100

const (
	validationStatusGood    = "good"
	validationStatusWarning = "warning"
	validationStatusPoor    = "poor"
)

// validationReport is one scored aspect of an answer.
type validationReport struct {
	Score  int      `json:"score"`
	Issues []string `json:"issues,omitempty"`
}

// validationRecord is the stored outcome of checking one answer. The engine
// keeps the most recent hundred.
type validationRecord struct {
	Timestamp      time.Time        `json:"timestamp"`
	ConversationID *int64           `json:"conversation_id,omitempty"`
	Message        string           `json:"message"`
	Keywords       []string         `json:"keywords"`
	Intent         Intent           `json:"intent"`
	HotelsFound    int              `json:"hotels_found"`
	ToursFound     int              `json:"tours_found"`
	ResponseLength int              `json:"response_length"`
	IntentCheck    validationReport `json:"intent_check"`
	Continuity     validationReport `json:"continuity_check"`
	Quality        validationReport `json:"quality_check"`
	Overall        int              `json:"overall_score"`
	Status         string           `json:"status"`
}

// validationEngine scores every generated answer against the question, the
// search results and the conversation so far. Scores are diagnostic only and
// never change the answer sent to the user.
type validationEngine struct {
	lex      *lexicon.Lexicon
	contexts *contextStore
	log      zerolog.Logger

	mu      sync.Mutex
	history []validationRecord
}

func newValidationEngine(lex *lexicon.Lexicon, contexts *contextStore, log zerolog.Logger) *validationEngine {
	return &validationEngine{lex: lex, contexts: contexts, log: log}
}

func (ve *validationEngine) Evaluate(message, response string, keywords []string, intent Intent, hotels []store.Hotel, tours []store.Tour, conversationID *int64) validationRecord {
	record := validationRecord{
		Timestamp:      time.Now().UTC(),
		ConversationID: conversationID,
		Message:        summarizeMessage(message),
		Keywords:       keywords,
		Intent:         intent,
		HotelsFound:    len(hotels),
		ToursFound:     len(tours),
		ResponseLength: len([]rune(response)),
	}
	record.IntentCheck = ve.checkIntent(message, keywords, intent, hotels, tours)
	record.Continuity = ve.checkContinuity(message, hotels, tours, conversationID)
	record.Quality = ve.checkQuality(message, response, len(hotels)+len(tours))
	record.Overall = (record.IntentCheck.Score + record.Continuity.Score + record.Quality.Score) / 3
	switch {
	case record.Overall >= 80:
		record.Status = validationStatusGood
	case record.Overall >= 60:
		record.Status = validationStatusWarning
	default:
		record.Status = validationStatusPoor
	}

	ve.mu.Lock()
	ve.history = append(ve.history, record)
	if len(ve.history) > validationHistoryLimit {
		ve.history = ve.history[len(ve.history)-validationHistoryLimit:]
	}
	ve.mu.Unlock()

	event := ve.log.Debug()
	if record.Status == validationStatusPoor {
		event = ve.log.Warn()
	}
	event.
		Int("overall", record.Overall).
		Str("status", record.Status).
		Str("intent", string(intent)).
		Int("hotels", record.HotelsFound).
		Int("tours", record.ToursFound).
		Msg("response validated")
	return record
}

// Recent returns a copy of the stored records, oldest first.
func (ve *validationEngine) Recent() []validationRecord {
	ve.mu.Lock()
	defer ve.mu.Unlock()
	out := make([]validationRecord, len(ve.history))
	copy(out, ve.history)
	return out
}

func (ve *validationEngine) checkIntent(message string, keywords []string, intent Intent, hotels []store.Hotel, tours []store.Tour) validationReport {
	report := validationReport{}
	lowered := strings.ToLower(message)

	if intent == IntentPrice {
		if containsAnyKeyword(lowered, ve.lex.PriceIndicators) {
			report.Score += 30
		} else {
			report.Issues = append(report.Issues, "price intent without a price expression in the question")
		}
	}

	if intent == IntentTour || intent == IntentHotel {
		if containsAnyKeyword(lowered, []string{"투어", "여행", "관광", "호텔", "숙박"}) {
			report.Score += 25
		} else {
			report.Issues = append(report.Issues, "travel intent without travel wording in the question")
		}
	}

	if (intent == IntentHotel && len(hotels) > 0) || (intent == IntentTour && len(tours) > 0) {
		report.Score += 25
	}

	switch {
	case len(keywords) == 0 && !isGreeting(ve.lex, message):
		report.Issues = append(report.Issues, "no keywords extracted from a non-greeting question")
	case len(keywords) > 7:
		report.Issues = append(report.Issues, "keyword extraction too broad")
	default:
		report.Score += 20
	}

	if report.Score > 100 {
		report.Score = 100
	}
	return report
}

func (ve *validationEngine) checkContinuity(message string, hotels []store.Hotel, tours []store.Tour, conversationID *int64) validationReport {
	if conversationID == nil {
		return validationReport{Score: 100}
	}
	state, ok := ve.contexts.Snapshot(*conversationID)
	if !ok || len(state.Turns) == 0 {
		return validationReport{Score: 100}
	}

	report := validationReport{}
	lowered := strings.ToLower(message)
	results := len(hotels) + len(tours)

	if state.Subtype != "" && containsAnyKeyword(lowered, ve.lex.FollowUpWords) {
		if results > 0 {
			report.Score += 50
		} else {
			report.Issues = append(report.Issues, "follow-up about "+state.Subtype+" found no records")
		}
	} else {
		report.Score += 30
	}

	switch {
	case state.Topic == "hotel" && len(hotels) > 0,
		state.Topic == "tour" && len(tours) > 0,
		state.Topic != "" && results == 0:
		report.Score += 30
	case state.Topic == "":
		report.Score += 20
	default:
		report.Issues = append(report.Issues, "results drifted away from the conversation topic")
	}

	if report.Score > 100 {
		report.Score = 100
	}
	return report
}

func (ve *validationEngine) checkQuality(message, response string, results int) validationReport {
	report := validationReport{}
	length := len([]rune(response))

	if length >= 20 && length <= 500 {
		report.Score += 20
	} else if length < 20 {
		report.Issues = append(report.Issues, "answer too short")
	} else {
		report.Issues = append(report.Issues, "answer too long")
	}

	if results > 0 {
		if containsAnyKeyword(response, ve.lex.DataIndicators) {
			report.Score += 30
		} else {
			report.Issues = append(report.Issues, "records were found but the answer cites none of them")
		}
	} else if strings.Contains(response, "찾을 수 없") || strings.Contains(response, "확인할 수 없") {
		report.Score += 25
	}

	if strings.Contains(message, "얼마") || strings.Contains(message, "가격") {
		if strings.Contains(response, "원") && containsDigit(response) {
			report.Score += 25
		} else {
			report.Issues = append(report.Issues, "price question answered without a concrete figure")
		}
	} else {
		report.Score += 25
	}

	if report.Score > 100 {
		report.Score = 100
	}
	return report
}

func summarizeMessage(message string) string {
	runes := []rune(strings.TrimSpace(message))
	if len(runes) <= 80 {
		return string(runes)
	}
	return string(runes[:80]) + "…"
}

func containsDigit(s string) bool {
	for _, r := range s {
		if unicode.IsDigit(r) {
			return true
		}
	}
	return false
}
