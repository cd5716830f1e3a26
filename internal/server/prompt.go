package server

import (
	"fmt"
	"sort"
	"strings"

	"travelchat/backend/internal/lexicon"
	"travelchat/backend/internal/store"
)

func buildSystemPrompt() string {
	return strings.Join([]string{
		"당신은 베트남 여행 전문 상담사입니다.",
		"아래 제공된 투어와 호텔 정보만 사용해서 답변하세요.",
		"제공되지 않은 정보는 추측하지 말고 확인이 필요하다고 안내하세요.",
		"가격은 제공된 금액 그대로 전달하고, 임의로 할인이나 조건을 만들지 마세요.",
		"답변은 한국어로, 간결하고 친절하게 작성하세요.",
	}, "\n")
}

// buildUserPrompt assembles the question, recent conversation turns and the
// matched records into a single prompt.
func buildUserPrompt(lex *lexicon.Lexicon, message string, state *conversationState, hotels []store.Hotel, tours []store.Tour) string {
	var b strings.Builder

	if state != nil {
		if state.Subtype != "" {
			fmt.Fprintf(&b, "현재 상담 중인 투어: %s\n\n", state.Subtype)
		}
		if len(state.Turns) > 0 {
			b.WriteString("이전 대화:\n")
			turns := state.Turns
			if len(turns) > 3 {
				turns = turns[len(turns)-3:]
			}
			for _, turn := range turns {
				fmt.Fprintf(&b, "손님: %s\n", turn.User)
				fmt.Fprintf(&b, "상담사: %s\n", turn.Assistant)
			}
			b.WriteString("\n")
		}
	}

	if len(hotels) > 0 {
		b.WriteString("호텔 정보:\n")
		shown := hotels
		if len(shown) > 3 {
			shown = shown[:3]
		}
		for _, hotel := range shown {
			b.WriteString(formatHotelInfo(hotel))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	if len(tours) > 0 {
		b.WriteString("투어 정보:\n")
		for _, tour := range tours {
			b.WriteString(formatTourInfo(lex, tour, message))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "손님 질문: %s", strings.TrimSpace(message))
	return b.String()
}

// buildPricePrompt is the short variant used when the question only asks for
// a price on records already in play.
func buildPricePrompt(lex *lexicon.Lexicon, message string, state *conversationState, tours []store.Tour) string {
	var b strings.Builder
	if state != nil && state.Subtype != "" {
		fmt.Fprintf(&b, "현재 상담 중인 투어: %s\n\n", state.Subtype)
	}
	if len(tours) > 0 {
		b.WriteString("투어 가격 정보:\n")
		for _, tour := range tours {
			b.WriteString(formatTourInfo(lex, tour, message))
			b.WriteString("\n")
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "손님 질문: %s\n", strings.TrimSpace(message))
	b.WriteString("위 가격 정보만 사용해서 질문에 해당하는 금액을 정확히 답변하세요.")
	return b.String()
}

func formatHotelInfo(hotel store.Hotel) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🏨 %s (%s)\n", hotel.Name, hotel.Region)
	if hotel.Unlimited {
		b.WriteString("프로모션: 무제한\n")
	} else if hotel.PromotionStart != nil && hotel.PromotionEnd != nil {
		fmt.Fprintf(&b, "프로모션: %s ~ %s\n", *hotel.PromotionStart, *hotel.PromotionEnd)
	}
	if hotel.AdultPrice != nil && *hotel.AdultPrice != "" {
		fmt.Fprintf(&b, "💰 성인가격: %s\n", *hotel.AdultPrice)
	}
	if hotel.ChildPrice != nil && *hotel.ChildPrice != "" {
		fmt.Fprintf(&b, "👶 아동가격: %s\n", *hotel.ChildPrice)
	}
	if hotel.ChildCriteria != nil && *hotel.ChildCriteria != "" {
		fmt.Fprintf(&b, "📏 아동기준: %s\n", *hotel.ChildCriteria)
	}
	if hotel.Description != nil && *hotel.Description != "" {
		fmt.Fprintf(&b, "%s\n", truncateRunes(*hotel.Description, 100))
	}
	return b.String()
}

func formatTourInfo(lex *lexicon.Lexicon, tour store.Tour, message string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🚌 %s (%s)\n", tour.Name, tour.Region)
	if tour.Duration != "" {
		fmt.Fprintf(&b, "기간: %s\n", tour.Duration)
	}
	if tour.AdultPrice != "" {
		fmt.Fprintf(&b, "💰 성인가격: %s\n", tour.AdultPrice)
	}
	if tour.ChildPrice != "" {
		fmt.Fprintf(&b, "👶 아동가격: %s\n", tour.ChildPrice)
	}
	if tour.InfantPrice != "" {
		fmt.Fprintf(&b, "🍼 유아가격: %s\n", tour.InfantPrice)
	}
	if tour.ChildCriteria != "" {
		fmt.Fprintf(&b, "📏 아동기준: %s\n", tour.ChildCriteria)
	}
	if tour.InfantCriteria != "" {
		fmt.Fprintf(&b, "📏 유아기준: %s\n", tour.InfantCriteria)
	}
	if tour.Description != "" {
		if relevant := extractRelevantDescription(lex, tour.Description, message); relevant != "" {
			fmt.Fprintf(&b, "%s\n", relevant)
		}
	}
	return b.String()
}

// extractRelevantDescription pulls the description lines matching what the
// question asks about. When no line matches it falls back to the opening of
// the description. The result is capped at five hundred runes.
func extractRelevantDescription(lex *lexicon.Lexicon, description, message string) string {
	lowered := strings.ToLower(message)

	queryTypes := make([]string, 0, len(lex.DescriptionQueryTypes))
	for queryType := range lex.DescriptionQueryTypes {
		queryTypes = append(queryTypes, queryType)
	}
	sort.Strings(queryTypes)

	var wanted []string
	seen := make(map[string]struct{})
	for _, queryType := range queryTypes {
		markers := lex.DescriptionQueryTypes[queryType]
		if !containsAnyKeyword(lowered, markers) {
			continue
		}
		for _, line := range strings.Split(description, "\n") {
			if !containsAnyKeyword(strings.ToLower(line), markers) {
				continue
			}
			trimmed := strings.TrimSpace(line)
			if _, dup := seen[trimmed]; dup {
				continue
			}
			seen[trimmed] = struct{}{}
			wanted = append(wanted, trimmed)
		}
	}

	var result string
	if len(wanted) > 0 {
		result = strings.Join(wanted, "\n")
	} else {
		result = truncateRunes(description, 300)
	}
	return truncateRunes(result, 500)
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
