package server

import (
	"strings"
	"testing"

	"travelchat/backend/internal/lexicon"
	"travelchat/backend/internal/store"
)

func TestExtractRelevantDescriptionPicksMatchingLines(t *testing.T) {
	lex := lexicon.Default()
	description := "가격: 성인 450,000원\n일정: 바나힐, 대리석산\n포함: 전용차량, 가이드"

	got := extractRelevantDescription(lex, description, "일정이 어떻게 되나요?")
	if !strings.Contains(got, "일정: 바나힐") {
		t.Fatalf("expected the schedule line, got %q", got)
	}
	if strings.Contains(got, "전용차량") {
		t.Fatalf("expected unrelated lines dropped, got %q", got)
	}
}

func TestExtractRelevantDescriptionFallsBackToHead(t *testing.T) {
	lex := lexicon.Default()
	description := "바다가 보이는 숙소입니다.\n조용한 분위기입니다."

	got := extractRelevantDescription(lex, description, "분위기 어때요?")
	if !strings.Contains(got, "바다가 보이는") {
		t.Fatalf("expected the head of the description, got %q", got)
	}
}

func TestExtractRelevantDescriptionCapped(t *testing.T) {
	lex := lexicon.Default()
	long := strings.Repeat("가격 안내 ", 200)

	got := extractRelevantDescription(lex, long, "가격 알려줘")
	if runes := len([]rune(got)); runes > 503 {
		t.Fatalf("expected the result capped near 500 runes, got %d", runes)
	}
}

func TestBuildUserPromptIncludesContextAndRecords(t *testing.T) {
	lex := lexicon.Default()
	state := &conversationState{
		Subtype: "패밀리",
		Turns: []conversationTurn{
			{User: "패밀리 투어 알려줘", Assistant: "안내드립니다"},
		},
	}
	tours := []store.Tour{{Name: "다낭 패밀리 투어", Region: "다낭", AdultPrice: "450,000원"}}

	prompt := buildUserPrompt(lex, "얼마에요?", state, nil, tours)
	for _, want := range []string{"패밀리", "이전 대화", "다낭 패밀리 투어", "450,000원", "얼마에요?"} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("expected %q in the prompt, got:\n%s", want, prompt)
		}
	}
}

func TestFormatTourInfoSkipsEmptyFields(t *testing.T) {
	lex := lexicon.Default()
	tour := store.Tour{Name: "다낭 래프팅 투어", Region: "다낭", AdultPrice: "$49"}

	got := formatTourInfo(lex, tour, "래프팅 얼마에요?")
	if !strings.Contains(got, "성인가격: $49") {
		t.Fatalf("expected the adult price line, got %q", got)
	}
	if strings.Contains(got, "유아가격") || strings.Contains(got, "기간:") {
		t.Fatalf("expected empty fields omitted, got %q", got)
	}
}
