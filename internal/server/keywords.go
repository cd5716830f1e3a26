package server

import (
	"context"
	"regexp"
	"strings"

	"travelchat/backend/internal/lexicon"
)

const maxKeywords = 10

var (
	hangulWordPattern = regexp.MustCompile(`[가-힣]{2,}`)
	latinWordPattern  = regexp.MustCompile(`[a-zA-Z]{2,}`)
)

// keywordExtractor turns a user message into at most ten search keywords:
// known regions, catalog vocabulary, remaining Hangul/Latin tokens, then a
// bounded synonym expansion.
type keywordExtractor struct {
	records RecordStore
	lex     *lexicon.Lexicon
}

func (e *keywordExtractor) Extract(ctx context.Context, message string) []string {
	if strings.TrimSpace(message) == "" {
		return []string{}
	}

	keywords := make([]string, 0, maxKeywords)

	for _, region := range e.records.AvailableRegions(ctx) {
		if strings.Contains(message, region) {
			keywords = append(keywords, region)
		}
	}
	for _, keyword := range e.lex.HotelKeywords {
		if strings.Contains(message, keyword) {
			keywords = append(keywords, keyword)
		}
	}
	for _, keyword := range e.lex.TourKeywords {
		if strings.Contains(message, keyword) {
			keywords = append(keywords, keyword)
		}
	}
	for _, keyword := range e.lex.PriceKeywords {
		if strings.Contains(message, keyword) {
			keywords = append(keywords, keyword)
		}
	}

	for _, word := range hangulWordPattern.FindAllString(message, -1) {
		if !containsExact(keywords, word) {
			keywords = append(keywords, word)
		}
	}
	for _, word := range latinWordPattern.FindAllString(message, -1) {
		if !containsFold(keywords, word) {
			keywords = append(keywords, word)
		}
	}

	expanded := make([]string, 0, len(keywords)*4)
	for _, keyword := range keywords {
		expanded = append(expanded, keyword)
		synonyms := e.lex.SynonymsFor(keyword)
		if len(synonyms) > 3 {
			synonyms = synonyms[:3]
		}
		expanded = append(expanded, synonyms...)
	}

	unique := make([]string, 0, maxKeywords)
	for _, keyword := range expanded {
		if strings.TrimSpace(keyword) == "" {
			continue
		}
		if !containsExact(unique, keyword) {
			unique = append(unique, keyword)
		}
		if len(unique) == maxKeywords {
			break
		}
	}
	return unique
}

func isGreeting(lex *lexicon.Lexicon, message string) bool {
	lowered := strings.ToLower(strings.TrimSpace(message))
	return containsAnyKeyword(lowered, lex.Greetings)
}
