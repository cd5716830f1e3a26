package server

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"travelchat/backend/internal/lexicon"
)

var (
	adultLinePattern     = regexp.MustCompile(`성인\s*\d+\s*명\s*:`)
	numberedListPattern  = regexp.MustCompile(`([^\n])(\d+\.\s)`)
	parenListPattern     = regexp.MustCompile(`([^\n])(\d+\)\s)`)
	boldHeadingPattern   = regexp.MustCompile(`([^\n])(\*\*[^*\n]+\*\*:)`)
	dashItemPattern      = regexp.MustCompile(`\s-\s`)
	excessNewlinePattern = regexp.MustCompile(`\n{3,}`)
)

// responseSanitizer normalizes generated answers before they reach the user:
// it scopes child-only questions, strips price lines that belong to another
// tour variant, removes promotional boilerplate and tidies list layout. Every
// pass leaves an already-clean answer unchanged, so sanitizing twice is a
// no-op.
type responseSanitizer struct {
	lex *lexicon.Lexicon
	log zerolog.Logger
}

func newResponseSanitizer(lex *lexicon.Lexicon, log zerolog.Logger) *responseSanitizer {
	return &responseSanitizer{lex: lex, log: log}
}

func (rs *responseSanitizer) Sanitize(response, userMessage string, state *conversationState) string {
	if strings.TrimSpace(response) == "" {
		return response
	}

	cleaned := response
	cleaned = rs.scopeChildOnly(cleaned, userMessage)
	cleaned = rs.stripForeignVariantPrices(cleaned, state)
	cleaned = rs.stripForbiddenPhrases(cleaned, userMessage)
	cleaned = normalizeLayout(cleaned)

	if cleaned != response {
		rs.log.Debug().
			Int("before_len", len(response)).
			Int("after_len", len(cleaned)).
			Msg("response sanitized")
	}
	return cleaned
}

// scopeChildOnly drops adult pricing lines when the question asks about
// children without mentioning adults.
func (rs *responseSanitizer) scopeChildOnly(response, userMessage string) string {
	lowered := strings.ToLower(userMessage)
	if !containsAnyKeyword(lowered, rs.lex.ChildScopeWords) {
		return response
	}
	if containsAnyKeyword(lowered, rs.lex.AdultScopeWords) {
		return response
	}

	lines := strings.Split(response, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if adultLinePattern.MatchString(line) {
			continue
		}
		if containsAnyKeyword(line, rs.lex.AdultLineMarkers) {
			continue
		}
		if strings.Contains(line, "성인") || strings.Contains(line, "총합") || strings.Contains(line, "총 가격") {
			continue
		}
		kept = append(kept, line)
	}
	return strings.Join(kept, "\n")
}

// stripForeignVariantPrices removes price figures known to belong to a tour
// variant other than the one the conversation is about. If nothing remains
// afterwards, a short re-confirmation message replaces the answer.
func (rs *responseSanitizer) stripForeignVariantPrices(response string, state *conversationState) string {
	if state == nil || state.Subtype == "" {
		return response
	}

	var foreign []string
	for subtype, tokens := range rs.lex.SubtypePriceTokens {
		if subtype == state.Subtype {
			continue
		}
		foreign = append(foreign, tokens...)
	}
	if len(foreign) == 0 {
		return response
	}

	lines := strings.Split(response, "\n")
	kept := lines[:0]
	removed := false
	for _, line := range lines {
		if containsAnyKeyword(line, foreign) {
			removed = true
			continue
		}
		kept = append(kept, line)
	}
	if !removed {
		return response
	}

	remaining := strings.TrimSpace(strings.Join(kept, "\n"))
	if remaining == "" {
		return fmt.Sprintf("죄송합니다. %s 투어 관련 정확한 정보를 다시 확인하여 안내해드리겠습니다.", state.Subtype)
	}
	return remaining
}

// stripForbiddenPhrases removes promotional and speculative boilerplate. A
// price question that also narrows down who is traveling keeps its phrasing
// intact so the allowlisted expressions survive.
func (rs *responseSanitizer) stripForbiddenPhrases(response, userMessage string) string {
	lowered := strings.ToLower(userMessage)
	priceQuestion := containsAnyKeyword(lowered, rs.lex.PriceQuestionWords)
	scopedQuestion := containsAnyKeyword(lowered, rs.lex.ChildWords) ||
		containsAnyKeyword(lowered, rs.lex.AdultWords) ||
		containsAnyKeyword(lowered, rs.lex.PeopleCountWords)

	cleaned := response
	for _, phrase := range rs.lex.ForbiddenPhrases {
		if priceQuestion && scopedQuestion && containsFold(rs.lex.PriceAllowedPhrases, phrase) {
			continue
		}
		cleaned = strings.ReplaceAll(cleaned, phrase, "")
	}
	// Dangling punctuation is only tidied when a removal touched the answer,
	// so list markers added by later passes survive a re-sanitize untouched.
	if cleaned == response {
		return response
	}

	for strings.Contains(cleaned, "  ") {
		cleaned = strings.ReplaceAll(cleaned, "  ", " ")
	}
	cleaned = strings.ReplaceAll(cleaned, " :", ":")

	lines := strings.Split(cleaned, "\n")
	for i, line := range lines {
		trimmed := strings.TrimLeft(line, ":, ")
		if strings.HasPrefix(trimmed, "-") && !strings.HasPrefix(trimmed, "- ") {
			trimmed = strings.TrimLeft(trimmed, ":-, ")
		}
		lines[i] = trimmed
	}
	return strings.Join(lines, "\n")
}

// normalizeLayout puts numbered items, bold headings and dash bullets on
// their own lines and collapses repeated whitespace and dots.
func normalizeLayout(response string) string {
	cleaned := response
	cleaned = numberedListPattern.ReplaceAllString(cleaned, "$1\n$2")
	cleaned = parenListPattern.ReplaceAllString(cleaned, "$1\n$2")
	cleaned = boldHeadingPattern.ReplaceAllString(cleaned, "$1\n$2")
	cleaned = dashItemPattern.ReplaceAllString(cleaned, "\n- ")
	cleaned = excessNewlinePattern.ReplaceAllString(cleaned, "\n\n")
	for strings.Contains(cleaned, "..") {
		cleaned = strings.ReplaceAll(cleaned, "..", ".")
	}
	for strings.Contains(cleaned, "  ") {
		cleaned = strings.ReplaceAll(cleaned, "  ", " ")
	}
	return strings.TrimSpace(cleaned)
}
