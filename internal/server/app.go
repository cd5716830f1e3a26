package server

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"travelchat/backend/internal/config"
	"travelchat/backend/internal/lexicon"
	"travelchat/backend/internal/store"
)

// RecordStore is the catalog the resolver searches. *store.Store implements
// it; tests substitute an in-memory fake.
type RecordStore interface {
	SearchHotels(ctx context.Context, terms []string) ([]store.Hotel, error)
	SearchTours(ctx context.Context, terms []string) ([]store.Tour, error)
	AvailableRegions(ctx context.Context) []string
}

type App struct {
	cfg     config.Config
	lex     *lexicon.Lexicon
	records RecordStore
	ai      AIClient
	log     zerolog.Logger

	keywords   *keywordExtractor
	contexts   *contextStore
	snapshot   *searchSnapshot
	resolver   *searchResolver
	cache      *responseCache
	sanitizer  *responseSanitizer
	validation *validationEngine
}

func New(cfg config.Config, records RecordStore, ai AIClient, lex *lexicon.Lexicon, log zerolog.Logger) *App {
	contexts := newContextStore(lex)
	snapshot := &searchSnapshot{}

	return &App{
		cfg:      cfg,
		lex:      lex,
		records:  records,
		ai:       ai,
		log:      log,
		keywords: &keywordExtractor{records: records, lex: lex},
		contexts: contexts,
		snapshot: snapshot,
		resolver: &searchResolver{
			records:  records,
			contexts: contexts,
			snapshot: snapshot,
			lex:      lex,
			log:      log,
		},
		cache:      newResponseCache(),
		sanitizer:  newResponseSanitizer(lex, log),
		validation: newValidationEngine(lex, contexts, log),
	}
}

func (a *App) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(a.requestLogger())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     a.cfg.CORSAllowOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	router.GET("/", a.root)
	router.GET("/health", a.health)
	router.POST("/chat", a.chat)

	return router
}

func (a *App) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Travel AI Service is running",
		"service": a.cfg.AppName,
	})
}

func (a *App) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "travelchat-ai",
	})
}

// requestLogger tags every request with an id and logs the outcome.
func (a *App) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader("X-Request-ID"))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header("X-Request-ID", requestID)

		start := time.Now()
		c.Next()

		a.log.Info().
			Str("request_id", requestID).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("elapsed", time.Since(start)).
			Msg("request handled")
	}
}

func writeError(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}

func mustJSON(c *gin.Context, payload any) bool {
	if err := c.ShouldBindJSON(payload); err != nil {
		writeError(c, http.StatusBadRequest, "Invalid request payload")
		return false
	}
	return true
}

func containsAnyKeyword(text string, keywords []string) bool {
	for _, keyword := range keywords {
		if keyword != "" && strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}

func hasSearchTerms(terms []string) bool {
	for _, term := range terms {
		if strings.TrimSpace(term) != "" {
			return true
		}
	}
	return false
}

func containsExact(list []string, value string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}

func containsFold(list []string, value string) bool {
	for _, item := range list {
		if strings.EqualFold(item, value) {
			return true
		}
	}
	return false
}
