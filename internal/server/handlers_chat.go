package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"travelchat/backend/internal/store"
)

const nearEmptyResponseRunes = 10

type chatRequest struct {
	Message        string `json:"message"`
	ConversationID *int64 `json:"conversation_id"`
}

type chatReply struct {
	Response    string   `json:"response"`
	Intent      Intent   `json:"intent"`
	Keywords    []string `json:"keywords"`
	ToursFound  int      `json:"tours_found"`
	HotelsFound int      `json:"hotels_found"`
	ErrorType   string   `json:"error_type,omitempty"`
}

func (a *App) chat(c *gin.Context) {
	var req chatRequest
	if !mustJSON(c, &req) {
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(c, http.StatusBadRequest, "message is required")
		return
	}

	reply := a.processMessage(c.Request.Context(), req.Message, req.ConversationID)
	c.JSON(http.StatusOK, reply)
}

// processMessage runs the full answer pipeline: keyword extraction, intent
// classification, contextual search, generation (or a cached or canned
// answer), sanitizing, context update and self-validation.
func (a *App) processMessage(ctx context.Context, message string, conversationID *int64) chatReply {
	message = strings.TrimSpace(message)

	keywords := a.keywords.Extract(ctx, message)
	intent := classifyIntent(a.lex, message)
	res := a.resolver.Resolve(ctx, keywords, intent, conversationID)

	// The sanitizer and the prompts need the state as it was before this
	// turn; the update with this turn's reply happens after generation.
	var priorState *conversationState
	if conversationID != nil {
		priorState, _ = a.contexts.Snapshot(*conversationID)
	}
	if priorState != nil && res.Subtype != "" {
		priorState.Subtype = res.Subtype
	}

	a.log.Info().
		Str("intent", string(intent)).
		Strs("keywords", res.Keywords).
		Int("hotels", len(res.Hotels)).
		Int("tours", len(res.Tours)).
		Msg("message resolved")

	if isGreeting(a.lex, message) {
		return a.greet(ctx, message, conversationID, intent, res)
	}

	if done, reply := a.answerWithoutGeneration(ctx, message, conversationID, intent, res, priorState); done {
		return reply
	}

	response, errorType := a.generate(ctx, message, intent, res, priorState, conversationID)

	sanitized := a.sanitizer.Sanitize(response, message, priorState)
	if conversationID != nil {
		a.contexts.Update(*conversationID, message, sanitized, res.Hotels, res.Tours)
	}

	if len([]rune(strings.TrimSpace(sanitized))) < nearEmptyResponseRunes {
		return chatReply{
			Response:    needMoreInfoResponse(a.lex, message, priorState),
			Intent:      intent,
			Keywords:    res.Keywords,
			ToursFound:  len(res.Tours),
			HotelsFound: len(res.Hotels),
			ErrorType:   "need_more_info",
		}
	}

	a.validation.Evaluate(message, sanitized, res.Keywords, intent, res.Hotels, res.Tours, conversationID)

	return chatReply{
		Response:    sanitized,
		Intent:      intent,
		Keywords:    res.Keywords,
		ToursFound:  len(res.Tours),
		HotelsFound: len(res.Hotels),
		ErrorType:   errorType,
	}
}

// greet answers a greeting without calling the generator. First contact in a
// conversation gets the package listing, later greetings a short reply.
func (a *App) greet(ctx context.Context, message string, conversationID *int64, intent Intent, res resolution) chatReply {
	response := greetingReply
	if conversationID != nil {
		state, ok := a.contexts.Snapshot(*conversationID)
		if !ok || !state.Greeted {
			tours, err := a.records.SearchTours(ctx, []string{""})
			if err != nil {
				a.log.Warn().Err(err).Msg("tour listing for greeting failed")
			}
			response = welcomeWithPackages(tours)
			a.contexts.MarkGreeted(*conversationID)
		}
		a.contexts.Update(*conversationID, message, response, nil, nil)
	}
	return chatReply{
		Response:    response,
		Intent:      intent,
		Keywords:    res.Keywords,
		ToursFound:  len(res.Tours),
		HotelsFound: len(res.Hotels),
	}
}

// answerWithoutGeneration handles the turns that never reach the generator:
// direct catalog listings for bare information requests, and the no-result
// branches (clarification or region guidance).
func (a *App) answerWithoutGeneration(ctx context.Context, message string, conversationID *int64, intent Intent, res resolution, priorState *conversationState) (bool, chatReply) {
	reply := chatReply{
		Intent:      intent,
		Keywords:    res.Keywords,
		ToursFound:  len(res.Tours),
		HotelsFound: len(res.Hotels),
	}
	lowered := strings.ToLower(message)
	hasHistory := priorState != nil && len(priorState.Turns) > 0

	// A bare "what tours do you have" style question gets the catalog
	// directly, without burning a generation call.
	if len(res.Tours) > 0 && !hasHistory && a.lex.SubtypeIn(lowered) == "" &&
		containsAnyKeyword(lowered, a.lex.InfoRequestWords) && !containsAnyKeyword(lowered, a.lex.PriceQuestionWords) {
		reply.Response = tourListing(res.Tours)
		if conversationID != nil {
			a.contexts.Update(*conversationID, message, reply.Response, res.Hotels, res.Tours)
		}
		a.validation.Evaluate(message, reply.Response, res.Keywords, intent, res.Hotels, res.Tours, conversationID)
		return true, reply
	}

	if len(res.Hotels) > 0 || len(res.Tours) > 0 {
		return false, reply
	}

	// Nothing matched. An ambiguous question with no history is asked to
	// clarify; everything else gets region guidance.
	if !hasHistory && containsAnyKeyword(lowered, a.lex.AmbiguousWords) {
		tours, err := a.records.SearchTours(ctx, []string{""})
		if err != nil {
			a.log.Warn().Err(err).Msg("tour listing for clarification failed")
		}
		reply.Response = clarificationResponse(a.lex, tours)
		reply.ErrorType = "clarification"
		return true, reply
	}

	reply.Response = noResultGuidance(message, a.records.AvailableRegions(ctx))
	if conversationID != nil {
		a.contexts.Update(*conversationID, message, reply.Response, nil, nil)
	}
	a.validation.Evaluate(message, reply.Response, res.Keywords, intent, res.Hotels, res.Tours, conversationID)
	return true, reply
}

// generate produces the answer text, consulting the response cache first and
// falling back to a canned answer when the generator fails. errorType is
// empty on the happy path.
func (a *App) generate(ctx context.Context, message string, intent Intent, res resolution, priorState *conversationState, conversationID *int64) (string, string) {
	cacheKey := a.cache.Key(message, res.Hotels, res.Tours, conversationID)
	if cached, ok := a.cache.Get(cacheKey); ok {
		a.log.Debug().Msg("answer served from cache")
		return cached, ""
	}

	var userPrompt string
	if intent == IntentPrice && len(res.Tours) > 0 {
		userPrompt = buildPricePrompt(a.lex, message, priorState, res.Tours)
	} else {
		userPrompt = buildUserPrompt(a.lex, message, priorState, res.Hotels, res.Tours)
	}

	timeout := time.Duration(a.cfg.AITimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	genCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	answer, err := a.ai.Complete(genCtx, buildSystemPrompt(), userPrompt)
	if err != nil {
		reason := GenerationReason(err)
		a.log.Error().Err(err).Str("reason", reason).Msg("generation failed")
		return generationFallback(reason, err, res.Hotels, res.Tours), reason
	}

	a.cache.Put(cacheKey, answer)
	return answer, ""
}

func tourListing(tours []store.Tour) string {
	var b strings.Builder
	b.WriteString("현재 안내 가능한 투어입니다:\n\n")
	for _, tour := range tours {
		b.WriteString("• ")
		b.WriteString(tour.Name)
		if tour.AdultPrice != "" {
			b.WriteString(" - 성인 ")
			b.WriteString(tour.AdultPrice)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n자세한 내용이 궁금한 투어를 말씀해 주세요!")
	return b.String()
}
