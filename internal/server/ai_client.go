package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"travelchat/backend/internal/config"
)

// Generation failure reasons. Callers key their fallback answer off these.
const (
	GenerationRateLimited    = "rate_limited"
	GenerationInvalidRequest = "invalid_request"
	GenerationUnknown        = "unknown"
)

// GenerationError classifies a failed completion so the caller can pick an
// appropriate canned answer instead of surfacing the raw transport error.
type GenerationError struct {
	Reason string
	Err    error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation failed (%s): %v", e.Reason, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// GenerationReason returns the classified failure reason of err, or
// GenerationUnknown when err carries no classification.
func GenerationReason(err error) string {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr.Reason
	}
	return GenerationUnknown
}

type AIClient interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// OpenAIChatClient calls the OpenAI chat completions API.
type OpenAIChatClient struct {
	apiKey     string
	baseURL    string
	model      string
	maxTokens  int
	httpClient *http.Client
}

func NewOpenAIChatClient(cfg config.Config) *OpenAIChatClient {
	timeoutSeconds := cfg.AITimeoutSeconds
	if timeoutSeconds <= 0 {
		timeoutSeconds = 20
	}
	return &OpenAIChatClient{
		apiKey:    strings.TrimSpace(cfg.OpenAIAPIKey),
		baseURL:   strings.TrimRight(strings.TrimSpace(cfg.OpenAIBaseURL), "/"),
		model:     strings.TrimSpace(cfg.OpenAIModel),
		maxTokens: cfg.AIMaxOutputTokens,
		httpClient: &http.Client{
			Timeout: time.Duration(timeoutSeconds) * time.Second,
		},
	}
}

func (c *OpenAIChatClient) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if c.apiKey == "" {
		return "", &GenerationError{Reason: GenerationInvalidRequest, Err: errors.New("OPENAI_API_KEY is not configured")}
	}
	if c.baseURL == "" {
		return "", &GenerationError{Reason: GenerationInvalidRequest, Err: errors.New("OPENAI_BASE_URL is not configured")}
	}
	if c.model == "" {
		return "", &GenerationError{Reason: GenerationInvalidRequest, Err: errors.New("OPENAI_MODEL is not configured")}
	}
	if strings.TrimSpace(userPrompt) == "" {
		return "", &GenerationError{Reason: GenerationInvalidRequest, Err: errors.New("user prompt is empty")}
	}

	maxTokens := c.maxTokens
	if maxTokens <= 0 {
		maxTokens = 500
	}

	type chatMessage struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}
	messages := make([]chatMessage, 0, 2)
	if strings.TrimSpace(systemPrompt) != "" {
		messages = append(messages, chatMessage{Role: "system", Content: strings.TrimSpace(systemPrompt)})
	}
	messages = append(messages, chatMessage{Role: "user", Content: strings.TrimSpace(userPrompt)})

	payload := map[string]any{
		"model":       c.model,
		"messages":    messages,
		"max_tokens":  maxTokens,
		"temperature": 0.7,
	}
	bodyRaw, err := json.Marshal(payload)
	if err != nil {
		return "", &GenerationError{Reason: GenerationUnknown, Err: err}
	}

	request, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		c.baseURL+"/chat/completions",
		bytes.NewReader(bodyRaw),
	)
	if err != nil {
		return "", &GenerationError{Reason: GenerationUnknown, Err: err}
	}
	request.Header.Set("Authorization", "Bearer "+c.apiKey)
	request.Header.Set("Content-Type", "application/json")

	response, err := c.httpClient.Do(request)
	if err != nil {
		return "", &GenerationError{Reason: GenerationUnknown, Err: err}
	}
	defer response.Body.Close()

	responseBody, err := io.ReadAll(response.Body)
	if err != nil {
		return "", &GenerationError{Reason: GenerationUnknown, Err: err}
	}

	if response.StatusCode < 200 || response.StatusCode >= 300 {
		bodyText := strings.TrimSpace(string(responseBody))
		apiErr := fmt.Errorf("openai chat error (%d): %s", response.StatusCode, bodyText)
		return "", &GenerationError{Reason: classifyAPIFailure(response.StatusCode, bodyText), Err: apiErr}
	}

	var parsed struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(responseBody, &parsed); err != nil {
		return "", &GenerationError{Reason: GenerationUnknown, Err: err}
	}
	if len(parsed.Choices) == 0 {
		return "", &GenerationError{Reason: GenerationUnknown, Err: errors.New("openai chat response has no choices")}
	}
	answer := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if answer == "" {
		return "", &GenerationError{Reason: GenerationUnknown, Err: errors.New("openai chat answer is empty")}
	}
	return answer, nil
}

func classifyAPIFailure(statusCode int, body string) string {
	lowered := strings.ToLower(body)
	switch {
	case statusCode == http.StatusTooManyRequests,
		strings.Contains(lowered, "quota"),
		strings.Contains(lowered, "rate limit"):
		return GenerationRateLimited
	case statusCode == http.StatusBadRequest,
		strings.Contains(lowered, "invalid"):
		return GenerationInvalidRequest
	default:
		return GenerationUnknown
	}
}

// MockAIClient answers without calling any external service. It is used in
// tests and when no API key is configured.
type MockAIClient struct{}

func (MockAIClient) Complete(_ context.Context, _, userPrompt string) (string, error) {
	question := strings.TrimSpace(userPrompt)
	lowered := strings.ToLower(question)

	if strings.Contains(lowered, "얼마") || strings.Contains(lowered, "가격") {
		return "문의하신 상품의 가격은 성인 1명 기준 450,000원입니다. 자세한 조건은 예약 시 안내해 드립니다.", nil
	}
	return "문의하신 조건에 맞는 투어와 호텔 정보를 안내해 드립니다. 원하시는 상품을 말씀해 주시면 가격과 일정을 확인해 드리겠습니다.", nil
}
