package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func chatClientFor(t *testing.T, handler http.HandlerFunc) *OpenAIChatClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := testConfig()
	cfg.OpenAIAPIKey = "test-key"
	cfg.OpenAIBaseURL = srv.URL
	cfg.OpenAIModel = "gpt-4o-mini"
	return NewOpenAIChatClient(cfg)
}

func TestChatClientReturnsAnswer(t *testing.T) {
	client := chatClientFor(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"choices":[{"message":{"content":"패밀리 투어는 450,000원입니다."}}]}`))
	})

	answer, err := client.Complete(context.Background(), "시스템", "얼마에요?")
	if err != nil {
		t.Fatalf("Complete failed: %v", err)
	}
	if answer != "패밀리 투어는 450,000원입니다." {
		t.Fatalf("unexpected answer %q", answer)
	}
}

func TestChatClientClassifiesRateLimit(t *testing.T) {
	client := chatClientFor(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		w.Write([]byte(`{"error":{"message":"Rate limit reached"}}`))
	})

	_, err := client.Complete(context.Background(), "", "얼마에요?")
	if err == nil {
		t.Fatal("expected an error")
	}
	if got := GenerationReason(err); got != GenerationRateLimited {
		t.Fatalf("expected rate_limited, got %q", got)
	}
}

func TestChatClientClassifiesQuotaBodyAsRateLimit(t *testing.T) {
	client := chatClientFor(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"error":{"message":"You exceeded your current quota"}}`))
	})

	_, err := client.Complete(context.Background(), "", "얼마에요?")
	if got := GenerationReason(err); got != GenerationRateLimited {
		t.Fatalf("expected rate_limited for quota errors, got %q", got)
	}
}

func TestChatClientClassifiesBadRequest(t *testing.T) {
	client := chatClientFor(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":{"message":"Invalid request"}}`))
	})

	_, err := client.Complete(context.Background(), "", "얼마에요?")
	if got := GenerationReason(err); got != GenerationInvalidRequest {
		t.Fatalf("expected invalid_request, got %q", got)
	}
}

func TestChatClientEmptyChoices(t *testing.T) {
	client := chatClientFor(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"choices":[]}`))
	})

	_, err := client.Complete(context.Background(), "", "얼마에요?")
	if err == nil {
		t.Fatal("expected an error for a response without choices")
	}
	if got := GenerationReason(err); got != GenerationUnknown {
		t.Fatalf("expected unknown, got %q", got)
	}
}

func TestChatClientRejectsMissingKey(t *testing.T) {
	client := NewOpenAIChatClient(testConfig())
	_, err := client.Complete(context.Background(), "", "얼마에요?")
	if err == nil {
		t.Fatal("expected an error without an API key")
	}
	if got := GenerationReason(err); got != GenerationInvalidRequest {
		t.Fatalf("expected invalid_request, got %q", got)
	}
}

func TestGenerationReasonPlainError(t *testing.T) {
	if got := GenerationReason(context.DeadlineExceeded); got != GenerationUnknown {
		t.Fatalf("expected unknown for unclassified errors, got %q", got)
	}
}

func TestMockClientAnswersPriceQuestions(t *testing.T) {
	var mock MockAIClient

	answer, err := mock.Complete(context.Background(), "", "패밀리 투어 가격 알려줘")
	if err != nil {
		t.Fatalf("mock failed: %v", err)
	}
	if answer == "" || !containsAnyKeyword(answer, []string{"원"}) {
		t.Fatalf("expected a priced answer, got %q", answer)
	}
}
