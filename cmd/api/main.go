package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"travelchat/backend/internal/config"
	"travelchat/backend/internal/db"
	"travelchat/backend/internal/lexicon"
	"travelchat/backend/internal/logging"
	"travelchat/backend/internal/server"
	"travelchat/backend/internal/store"
)

func main() {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		fatal("invalid config: " + err.Error())
	}

	log := logging.New(cfg.LogLevel, cfg.AppEnv, "travelchat-api")

	lex, err := lexicon.Load(cfg.LexiconPath)
	if err != nil {
		log.Fatal().Err(err).Msg("lexicon load failed")
	}

	ctx := context.Background()
	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("database connect failed")
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("database ping failed")
	}

	records := store.New(pool, lex.DefaultRegion, log)

	var ai server.AIClient
	if cfg.OpenAIAPIKey != "" {
		ai = server.NewOpenAIChatClient(cfg)
	} else {
		log.Warn().Msg("OPENAI_API_KEY not set, using mock answers")
		ai = server.MockAIClient{}
	}

	app := server.New(cfg, records, ai, lex, log)
	httpServer := &http.Server{
		Addr:              ":" + cfg.AppPort,
		Handler:           app.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.AppPort).Msg("travelchat api listening")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

func fatal(msg string) {
	os.Stderr.WriteString(msg + "\n")
	os.Exit(1)
}
