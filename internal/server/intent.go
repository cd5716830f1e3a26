package server

import (
	"strings"

	"travelchat/backend/internal/lexicon"
)

type Intent string

const (
	IntentGeneral Intent = "general"
	IntentTour    Intent = "tour"
	IntentHotel   Intent = "hotel"
	IntentPrice   Intent = "price"
)

// classifyIntent walks the lexicon's rules in order and returns the first
// intent whose phrase list matches the lowered message. Package-list
// questions rank above tour/hotel/price so "어떤 패키지 있어요?" stays general.
func classifyIntent(lex *lexicon.Lexicon, message string) Intent {
	lowered := strings.ToLower(message)
	for _, rule := range lex.IntentRules {
		if containsAnyKeyword(lowered, rule.Phrases) {
			return Intent(rule.Intent)
		}
	}
	return IntentGeneral
}
