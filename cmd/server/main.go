package main

import (
	"mailtriage/internal/classify"
	"mailtriage/internal/config"
	"mailtriage/internal/mailbox"
	"mailtriage/internal/server"
	"mailtriage/internal/store"
	"mailtriage/internal/sync"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Setup logger
	logger := cfg.SetupLogger()

	if !cfg.HasMailboxCredentials() {
		logger.Warn().Msg("EMAIL_USER/EMAIL_PASS not set, sync and reply endpoints will fail closed")
	}
	if cfg.OpenAIKey == "" {
		logger.Info().Msg("OPENAI_API_KEY not set, classification uses keyword fallback")
	}

	// Open the local message store
	st, err := store.New(cfg.DatabasePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to open message store")
	}
	logger.Info().Str("path", cfg.DatabasePath).Msg("Message store ready")

	// Wire the ingestion pipeline
	classifier := classify.New(cfg.OpenAIKey, cfg.OpenAITimeout, logger)
	fetcher := mailbox.NewFetcher(cfg, logger)
	sender := mailbox.NewSender(cfg)
	orchestrator := sync.New(fetcher, classifier, st, cfg, logger)

	// Create and initialize server
	srv := server.New(cfg, st, orchestrator, sender, logger)
	srv.Initialize()

	// Start server
	if err := srv.Start(); err != nil {
		logger.Fatal().Err(err).Msg("Server failed to start")
	}
}
