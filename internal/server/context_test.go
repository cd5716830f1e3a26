package server

import (
	"fmt"
	"testing"

	"travelchat/backend/internal/lexicon"
	"travelchat/backend/internal/store"
)

func TestContextKeepsLastTenTurns(t *testing.T) {
	contexts := newContextStore(lexicon.Default())

	for i := 1; i <= 12; i++ {
		contexts.Update(1, fmt.Sprintf("질문 %d", i), fmt.Sprintf("답변 %d", i), nil, nil)
	}

	state, ok := contexts.Snapshot(1)
	if !ok {
		t.Fatal("expected conversation state")
	}
	if len(state.Turns) != contextTurnLimit {
		t.Fatalf("expected %d turns, got %d", contextTurnLimit, len(state.Turns))
	}
	if state.Turns[0].User != "질문 3" {
		t.Fatalf("expected oldest turns dropped first, got %q", state.Turns[0].User)
	}
	if state.Turns[len(state.Turns)-1].User != "질문 12" {
		t.Fatalf("expected latest turn kept, got %q", state.Turns[len(state.Turns)-1].User)
	}
}

func TestContextSubtypeFromTourName(t *testing.T) {
	contexts := newContextStore(lexicon.Default())

	contexts.Update(1, "패밀리 투어 알려줘", "안내드립니다", nil, []store.Tour{{Name: "다낭 패밀리 투어"}})

	state, _ := contexts.Snapshot(1)
	if state.Topic != "tour" {
		t.Fatalf("expected tour topic, got %q", state.Topic)
	}
	if state.Subtype != "패밀리" {
		t.Fatalf("expected sticky subtype 패밀리, got %q", state.Subtype)
	}

	// Subtype survives turns without results.
	contexts.Update(1, "얼마에요?", "450,000원입니다", nil, nil)
	state, _ = contexts.Snapshot(1)
	if state.Subtype != "패밀리" {
		t.Fatalf("expected subtype to stick, got %q", state.Subtype)
	}
}

func TestContextToursOutrankHotels(t *testing.T) {
	contexts := newContextStore(lexicon.Default())

	contexts.Update(1, "다낭 알려줘", "안내드립니다",
		[]store.Hotel{{Name: "다낭 비치 리조트"}},
		[]store.Tour{{Name: "다낭 래프팅 투어"}},
	)

	state, _ := contexts.Snapshot(1)
	if state.Topic != "tour" {
		t.Fatalf("expected tours to win the topic, got %q", state.Topic)
	}
	if state.Subtype != "래프팅" {
		t.Fatalf("expected subtype 래프팅, got %q", state.Subtype)
	}
}

func TestClearTopicDropsSubtype(t *testing.T) {
	contexts := newContextStore(lexicon.Default())
	contexts.Update(1, "패밀리 투어", "안내", nil, []store.Tour{{Name: "다낭 패밀리 투어"}})

	contexts.ClearTopic(1)

	state, _ := contexts.Snapshot(1)
	if state.Topic != "" || state.Subtype != "" {
		t.Fatalf("expected topic and subtype cleared, got %q/%q", state.Topic, state.Subtype)
	}
	if len(state.Turns) != 1 {
		t.Fatal("clearing the topic must not drop the turn history")
	}
}

func TestSnapshotReturnsCopy(t *testing.T) {
	contexts := newContextStore(lexicon.Default())
	contexts.Update(1, "질문", "답변", nil, []store.Tour{{Name: "다낭 패밀리 투어"}})

	state, _ := contexts.Snapshot(1)
	state.Subtype = "골프"
	state.Turns[0].User = "변조"

	fresh, _ := contexts.Snapshot(1)
	if fresh.Subtype != "패밀리" || fresh.Turns[0].User != "질문" {
		t.Fatal("mutating a snapshot must not affect the stored state")
	}
}

func TestSnapshotUnknownConversation(t *testing.T) {
	contexts := newContextStore(lexicon.Default())
	state, ok := contexts.Snapshot(99)
	if ok {
		t.Fatal("expected ok=false for unknown conversation")
	}
	if state == nil || len(state.Turns) != 0 {
		t.Fatal("expected a usable empty state")
	}
}

func TestSearchSnapshotSharedAndCopied(t *testing.T) {
	snapshot := &searchSnapshot{}
	if !snapshot.Empty() {
		t.Fatal("expected fresh snapshot to be empty")
	}

	snapshot.Set(nil, []store.Tour{{Name: "다낭 래프팅 투어"}})
	if snapshot.Empty() {
		t.Fatal("expected snapshot to hold results")
	}

	_, tours := snapshot.Get()
	tours[0].Name = "변조"
	_, fresh := snapshot.Get()
	if fresh[0].Name != "다낭 래프팅 투어" {
		t.Fatal("Get must return a copy")
	}

	snapshot.Clear()
	if !snapshot.Empty() {
		t.Fatal("expected snapshot to be empty after Clear")
	}
}
