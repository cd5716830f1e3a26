package server

import (
	"context"
	"testing"

	"travelchat/backend/internal/lexicon"
)

func TestExtractEmptyMessage(t *testing.T) {
	e := &keywordExtractor{records: sampleCatalog(), lex: lexicon.Default()}
	if got := e.Extract(context.Background(), "   "); len(got) != 0 {
		t.Fatalf("expected no keywords, got %v", got)
	}
}

func TestExtractRegionsAndVocabulary(t *testing.T) {
	e := &keywordExtractor{records: sampleCatalog(), lex: lexicon.Default()}

	keywords := e.Extract(context.Background(), "다낭 패밀리 투어 가격 알려줘")
	if len(keywords) > maxKeywords {
		t.Fatalf("expected at most %d keywords, got %d: %v", maxKeywords, len(keywords), keywords)
	}
	for _, want := range []string{"다낭", "패밀리", "투어", "가격"} {
		if !containsExact(keywords, want) {
			t.Fatalf("expected %q among keywords %v", want, keywords)
		}
	}
}

func TestExtractDeduplicates(t *testing.T) {
	e := &keywordExtractor{records: sampleCatalog(), lex: lexicon.Default()}

	keywords := e.Extract(context.Background(), "투어 투어 투어")
	count := 0
	for _, keyword := range keywords {
		if keyword == "투어" {
			count++
		}
	}
	if count != 1 {
		t.Fatalf("expected 투어 exactly once, got %v", keywords)
	}
}

func TestExtractExpandsSynonyms(t *testing.T) {
	e := &keywordExtractor{records: sampleCatalog(), lex: lexicon.Default()}

	keywords := e.Extract(context.Background(), "래프팅 예약")
	if !containsExact(keywords, "rafting") {
		t.Fatalf("expected the synonym rafting among %v", keywords)
	}
}

func TestExtractCapsAtTen(t *testing.T) {
	e := &keywordExtractor{records: sampleCatalog(), lex: lexicon.Default()}

	keywords := e.Extract(context.Background(), "다낭 호이안 패밀리 골프 래프팅 바나힐 투어 호텔 가격 일정 체험 관광")
	if len(keywords) != maxKeywords {
		t.Fatalf("expected exactly %d keywords, got %d: %v", maxKeywords, len(keywords), keywords)
	}
}

func TestIsGreeting(t *testing.T) {
	lex := lexicon.Default()
	if !isGreeting(lex, "안녕하세요!") {
		t.Fatal("expected greeting")
	}
	if !isGreeting(lex, "Hello") {
		t.Fatal("expected lowered Latin greeting to match")
	}
	if isGreeting(lex, "다낭 투어 알려줘") {
		t.Fatal("expected non-greeting")
	}
}
