// Package sync composes the mail fetcher, classifier and store into the
// ingestion pipeline run by the sync endpoint.
package sync

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"mailtriage/internal/classify"
	"mailtriage/internal/config"
	"mailtriage/internal/models"
	"mailtriage/internal/store"
)

// Fetcher retrieves a bounded batch of recent mailbox messages
type Fetcher interface {
	FetchRecent(ctx context.Context, limit int) ([]models.RawMessage, error)
}

// Classifier produces a classification for a message; it never fails
type Classifier interface {
	Classify(ctx context.Context, subject, body string) classify.Result
}

// Orchestrator runs the fetch → classify → store pipeline
type Orchestrator struct {
	fetcher    Fetcher
	classifier Classifier
	store      *store.Store
	limit      int
	keywords   []string
	logger     zerolog.Logger
}

// New creates an orchestrator wired to the given components
func New(fetcher Fetcher, classifier Classifier, st *store.Store, cfg *config.Config, logger zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		fetcher:    fetcher,
		classifier: classifier,
		store:      st,
		limit:      cfg.FetchLimit,
		keywords:   cfg.SupportKeywords,
		logger:     logger,
	}
}

// Sync ingests previously-unseen messages from the mailbox and returns
// the number newly stored. Messages already present are skipped without
// re-classification; fetch errors propagate unchanged.
func (o *Orchestrator) Sync(ctx context.Context) (int, error) {
	batch, err := o.fetcher.FetchRecent(ctx, o.limit)
	if err != nil {
		return 0, err
	}

	ingested := 0
	for _, raw := range batch {
		if !o.isSupportMessage(raw) {
			continue
		}

		exists, err := o.store.Exists(ctx, raw.ID)
		if err != nil {
			return ingested, err
		}
		if exists {
			continue
		}

		result := o.classifier.Classify(ctx, raw.Subject, raw.Body)
		info, err := json.Marshal(classify.ExtractKeyInfo(raw.Subject, raw.Body))
		if err != nil {
			info = []byte("[]")
		}

		receivedAt := raw.SentDate.UTC()
		if raw.SentDate.IsZero() {
			receivedAt = time.Now().UTC()
		}

		msg := &models.Message{
			ID:             raw.ID,
			Sender:         raw.Sender,
			Subject:        raw.Subject,
			Body:           raw.Body,
			Sentiment:      result.Sentiment,
			Priority:       result.Priority,
			ExtractedInfo:  string(info),
			SuggestedReply: result.SuggestedReply,
			Responded:      false,
			ReceivedAt:     receivedAt,
		}

		if err := o.store.Upsert(ctx, msg); err != nil {
			return ingested, err
		}
		ingested++

		o.logger.Debug().
			Str("id", msg.ID).
			Str("sentiment", msg.Sentiment).
			Str("priority", msg.Priority).
			Msg("Message ingested")
	}

	o.logger.Info().Int("fetched", len(batch)).Int("ingested", ingested).Msg("Sync complete")
	return ingested, nil
}

// isSupportMessage applies the configured support-keyword prefilter.
// An empty keyword list admits everything.
func (o *Orchestrator) isSupportMessage(raw models.RawMessage) bool {
	if len(o.keywords) == 0 {
		return true
	}
	text := strings.ToLower(raw.Subject + " " + raw.Body)
	for _, keyword := range o.keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}
