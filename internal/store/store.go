// Package store implements the single-table message persistence layer
// backed by a local SQLite file.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"mailtriage/internal/models"
	_ "modernc.org/sqlite" // pure Go SQLite driver
)

// ErrNotFound is returned when a referenced message id is absent
var ErrNotFound = errors.New("message not found")

const schema = `
CREATE TABLE IF NOT EXISTS messages (
	id              TEXT PRIMARY KEY,
	sender          TEXT NOT NULL,
	subject         TEXT NOT NULL,
	body            TEXT NOT NULL,
	sentiment       TEXT NOT NULL,
	priority        TEXT NOT NULL,
	extracted_info  TEXT NOT NULL DEFAULT '[]',
	suggested_reply TEXT NOT NULL,
	responded       INTEGER NOT NULL DEFAULT 0,
	received_at     TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_messages_received_at ON messages (received_at DESC);
`

// Store provides access to the messages table
type Store struct {
	db *sqlx.DB
}

// New opens (creating if needed) the SQLite database at path and
// ensures the schema exists
func New(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("DATABASE_PATH not set")
	}

	db, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite serializes writers; a single connection avoids lock contention
	db.SetMaxOpenConns(1)
	db.SetConnMaxLifetime(time.Hour)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// NewWithDB wraps an existing database handle (used in tests)
func NewWithDB(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying handle for health checks
func (s *Store) DB() *sqlx.DB {
	return s.db
}

// Close closes the underlying database handle
func (s *Store) Close() error {
	return s.db.Close()
}

// Filter narrows List results; empty fields match everything
type Filter struct {
	Sentiment string
	Priority  string
}

// Upsert inserts a message or, if the id is already present, updates its
// mutable fields. The original received_at is preserved on update.
func (s *Store) Upsert(ctx context.Context, msg *models.Message) error {
	const query = `
		INSERT INTO messages (id, sender, subject, body, sentiment, priority,
		                      extracted_info, suggested_reply, responded, received_at)
		VALUES (:id, :sender, :subject, :body, :sentiment, :priority,
		        :extracted_info, :suggested_reply, :responded, :received_at)
		ON CONFLICT (id) DO UPDATE SET
			sender          = excluded.sender,
			subject         = excluded.subject,
			body            = excluded.body,
			sentiment       = excluded.sentiment,
			priority        = excluded.priority,
			extracted_info  = excluded.extracted_info,
			suggested_reply = excluded.suggested_reply,
			responded       = excluded.responded`

	if _, err := s.db.NamedExecContext(ctx, query, msg); err != nil {
		return fmt.Errorf("failed to upsert message %s: %w", msg.ID, err)
	}
	return nil
}

// Exists reports whether a message id is already stored
func (s *Store) Exists(ctx context.Context, id string) (bool, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, "SELECT COUNT(1) FROM messages WHERE id = ?", id); err != nil {
		return false, fmt.Errorf("failed to check message %s: %w", id, err)
	}
	return count > 0, nil
}

// Get returns a single message by id, or ErrNotFound
func (s *Store) Get(ctx context.Context, id string) (*models.Message, error) {
	var msg models.Message
	err := s.db.GetContext(ctx, &msg, "SELECT * FROM messages WHERE id = ?", id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get message %s: %w", id, err)
	}
	return &msg, nil
}

// List returns stored messages matching the filter, newest first
func (s *Store) List(ctx context.Context, filter Filter) ([]models.Message, error) {
	query := "SELECT * FROM messages"
	var conditions []string
	var args []interface{}

	if filter.Sentiment != "" {
		conditions = append(conditions, "sentiment = ?")
		args = append(args, filter.Sentiment)
	}
	if filter.Priority != "" {
		conditions = append(conditions, "priority = ?")
		args = append(args, filter.Priority)
	}
	for i, cond := range conditions {
		if i == 0 {
			query += " WHERE " + cond
		} else {
			query += " AND " + cond
		}
	}
	query += " ORDER BY received_at DESC"

	messages := []models.Message{}
	if err := s.db.SelectContext(ctx, &messages, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list messages: %w", err)
	}
	return messages, nil
}

// MarkResponded flags a message as replied to. The transition is one-way
// and idempotent; an unknown id returns ErrNotFound.
func (s *Store) MarkResponded(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "UPDATE messages SET responded = 1 WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to mark message %s responded: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Stats holds aggregate counts for the dashboard charts
type Stats struct {
	Total     int
	Sentiment map[string]int
	Priority  map[string]int
	Responded int
}

// Stats returns sentiment/priority/responded distributions across all
// stored messages
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	stats := &Stats{
		Sentiment: make(map[string]int),
		Priority:  make(map[string]int),
	}

	type bucket struct {
		Key   string `db:"key"`
		Count int    `db:"count"`
	}

	var sentiments []bucket
	if err := s.db.SelectContext(ctx, &sentiments,
		"SELECT sentiment AS key, COUNT(1) AS count FROM messages GROUP BY sentiment"); err != nil {
		return nil, fmt.Errorf("failed to aggregate sentiment: %w", err)
	}
	for _, b := range sentiments {
		stats.Sentiment[b.Key] = b.Count
		stats.Total += b.Count
	}

	var priorities []bucket
	if err := s.db.SelectContext(ctx, &priorities,
		"SELECT priority AS key, COUNT(1) AS count FROM messages GROUP BY priority"); err != nil {
		return nil, fmt.Errorf("failed to aggregate priority: %w", err)
	}
	for _, b := range priorities {
		stats.Priority[b.Key] = b.Count
	}

	if err := s.db.GetContext(ctx, &stats.Responded,
		"SELECT COUNT(1) FROM messages WHERE responded = 1"); err != nil {
		return nil, fmt.Errorf("failed to count responded: %w", err)
	}

	return stats, nil
}
