package server

import (
	"fmt"
	"strings"

	"travelchat/backend/internal/lexicon"
	"travelchat/backend/internal/store"
)

const greetingReply = "네, 안녕하세요! 어떤 도움이 필요하신가요?"

// welcomeWithPackages is the first-contact greeting. It lists the available
// tour packages so the user knows what to ask about.
func welcomeWithPackages(tours []store.Tour) string {
	var b strings.Builder
	b.WriteString("안녕하세요! 😊 여행 상담사입니다.\n")
	b.WriteString("투어와 호텔 상담을 도와드리고 있습니다.\n")
	if len(tours) > 0 {
		b.WriteString("\n🎯 **투어 패키지:**\n")
		for _, tour := range tours {
			fmt.Fprintf(&b, "• %s\n", tour.Name)
		}
	}
	b.WriteString("\n궁금하신 상품을 말씀해 주세요!")
	return b.String()
}

// clarificationResponse asks which tour the user means when the question is
// too ambiguous to search with.
func clarificationResponse(lex *lexicon.Lexicon, tours []store.Tour) string {
	var b strings.Builder
	b.WriteString("어떤 투어에 대해 문의하시는 건가요? 🤔\n\n")
	if len(tours) > 0 {
		b.WriteString("현재 안내 가능한 투어:\n")
		for _, tour := range tours {
			fmt.Fprintf(&b, "• %s\n", tour.Name)
		}
	} else {
		b.WriteString("예를 들어 이런 투어가 있습니다:\n")
		for _, tag := range lex.SubtypeTags {
			fmt.Fprintf(&b, "• %s 투어\n", tag)
		}
	}
	b.WriteString("\n투어 이름을 말씀해 주시면 바로 안내해 드리겠습니다.")
	return b.String()
}

// noResultGuidance steers the user toward something searchable when the
// catalog returned nothing.
func noResultGuidance(message string, regions []string) string {
	lowered := strings.ToLower(message)
	shown := regions
	if len(shown) > 3 {
		shown = shown[:3]
	}
	regionList := strings.Join(shown, ", ")

	switch {
	case strings.Contains(lowered, "여행지") || strings.Contains(lowered, "어디"):
		if regionList != "" {
			return fmt.Sprintf("현재 %s 지역의 투어와 호텔을 안내해 드리고 있습니다. 어느 지역이 궁금하신가요?", regionList)
		}
	case strings.Contains(lowered, "투어"):
		if regionList != "" {
			return fmt.Sprintf("해당 투어를 찾을 수 없습니다. 현재 %s 지역의 투어를 안내해 드릴 수 있습니다. 지역이나 투어 이름을 다시 말씀해 주세요.", regionList)
		}
	case strings.Contains(lowered, "호텔") || strings.Contains(lowered, "숙박"):
		if regionList != "" {
			return fmt.Sprintf("해당 호텔을 찾을 수 없습니다. 현재 %s 지역의 호텔을 안내해 드릴 수 있습니다. 지역을 다시 말씀해 주세요.", regionList)
		}
	}
	return "죄송합니다. 해당 검색 조건에 맞는 상품을 찾을 수 없습니다. 지역이나 상품 이름을 조금 더 구체적으로 말씀해 주세요."
}

// generationFallback returns the canned answer matching the classified
// generation failure. Records in play are woven in when available so the
// user still gets something useful.
func generationFallback(reason string, err error, hotels []store.Hotel, tours []store.Tour) string {
	switch reason {
	case GenerationRateLimited:
		if len(hotels) > 0 {
			names := recordNameList(hotelNames(hotels), 2)
			return fmt.Sprintf("%s 등의 호텔이 있습니다. 자세한 정보는 잠시 후 다시 문의해 주세요.", names)
		}
		if len(tours) > 0 {
			names := recordNameList(tourNames(tours), 2)
			return fmt.Sprintf("%s 등의 투어가 있습니다. 자세한 정보는 잠시 후 다시 문의해 주세요.", names)
		}
		return "죄송합니다. 현재 서비스 이용량이 많아 답변이 지연되고 있습니다. 잠시 후 다시 문의해 주세요."
	case GenerationInvalidRequest:
		if len(tours) > 0 {
			var b strings.Builder
			b.WriteString("요청하신 투어 정보입니다:\n")
			for _, tour := range tours {
				fmt.Fprintf(&b, "• %s", tour.Name)
				if tour.AdultPrice != "" {
					fmt.Fprintf(&b, " (성인 %s)", tour.AdultPrice)
				}
				b.WriteString("\n")
			}
			b.WriteString("자세한 가격과 일정은 추가로 문의해 주세요.")
			return b.String()
		}
		return "죄송합니다. 질문을 처리하지 못했습니다. 조금 다르게 다시 질문해 주시겠어요?"
	default:
		detail := ""
		if err != nil {
			detail = fmt.Sprintf(" (%v)", err)
		}
		return "죄송합니다. 일시적인 오류로 답변을 드리지 못했습니다. 잠시 후 다시 시도해 주세요." + detail
	}
}

// needMoreInfoResponse is returned when sanitizing stripped almost the whole
// answer, which means the question was too underspecified to answer safely.
func needMoreInfoResponse(lex *lexicon.Lexicon, message string, state *conversationState) string {
	lowered := strings.ToLower(message)

	var bullets []string
	switch {
	case containsAnyKeyword(lowered, lex.ChildScopeWords):
		bullets = []string{
			"아이의 나이 (예: 5살, 7살)",
			"함께 가는 인원 구성 (예: 성인 2명, 아이 1명)",
			"원하시는 투어 이름",
		}
	case state != nil && state.Subtype != "":
		bullets = []string{
			fmt.Sprintf("%s 투어의 어떤 정보가 필요하신지 (가격, 일정, 포함 사항)", state.Subtype),
			"인원 구성 (성인/아동 몇 명인지)",
		}
	default:
		bullets = []string{
			"원하시는 지역이나 투어 이름",
			"인원 구성 (성인/아동 몇 명인지)",
			"원하시는 정보 종류 (가격, 일정, 포함 사항)",
		}
	}
	if containsAnyKeyword(lowered, lex.PriceQuestionWords) {
		bullets = append(bullets, "가격은 인원 구성에 따라 달라지니 인원을 함께 알려주세요")
	}

	var b strings.Builder
	b.WriteString("죄송합니다. 더 정확한 답변을 위해 추가 정보가 필요합니다.\n\n")
	for _, bullet := range bullets {
		fmt.Fprintf(&b, "• %s\n", bullet)
	}
	b.WriteString("\n이렇게 질문해 주시면 정확하게 안내해 드리겠습니다.")
	return b.String()
}

func hotelNames(hotels []store.Hotel) []string {
	names := make([]string, 0, len(hotels))
	for _, hotel := range hotels {
		names = append(names, hotel.Name)
	}
	return names
}

func tourNames(tours []store.Tour) []string {
	names := make([]string, 0, len(tours))
	for _, tour := range tours {
		names = append(names, tour.Name)
	}
	return names
}

func recordNameList(names []string, limit int) string {
	if len(names) > limit {
		names = names[:limit]
	}
	return strings.Join(names, ", ")
}
