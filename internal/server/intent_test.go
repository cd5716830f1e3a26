package server

import (
	"testing"

	"travelchat/backend/internal/lexicon"
)

func TestClassifyIntent(t *testing.T) {
	lex := lexicon.Default()

	cases := []struct {
		message string
		want    Intent
	}{
		{"어떤 패키지가 있어요?", IntentGeneral},
		{"투어 추천해 주세요", IntentTour},
		{"다낭 관광 코스 알려줘", IntentTour},
		{"호텔 예약하고 싶어요", IntentHotel},
		{"리조트 조식 포함인가요?", IntentHotel},
		{"얼마에요?", IntentPrice},
		{"성인 2명이면 비용이 어떻게 되나요?", IntentPrice},
		{"음", IntentGeneral},
	}
	for _, tc := range cases {
		if got := classifyIntent(lex, tc.message); got != tc.want {
			t.Fatalf("classifyIntent(%q) = %q, want %q", tc.message, got, tc.want)
		}
	}
}

func TestClassifyIntentRuleOrder(t *testing.T) {
	lex := lexicon.Default()

	// Package-list questions stay general even though 투어/가격 words appear.
	if got := classifyIntent(lex, "무슨 패키지 투어가 있어요?"); got != IntentGeneral {
		t.Fatalf("expected general, got %q", got)
	}
	// Tour wording outranks price wording.
	if got := classifyIntent(lex, "투어 가격 알려줘"); got != IntentTour {
		t.Fatalf("expected tour, got %q", got)
	}
}
