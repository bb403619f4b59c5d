package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mailtriage/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	st, err := New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func testMessage(id string, receivedAt time.Time) *models.Message {
	return &models.Message{
		ID:             id,
		Sender:         "customer@example.com",
		Subject:        "Help with my account",
		Body:           "I cannot log in",
		Sentiment:      models.SentimentNegative,
		Priority:       models.PriorityNormal,
		ExtractedInfo:  `["Request Type: Account Access"]`,
		SuggestedReply: "We are looking into it.",
		Responded:      false,
		ReceivedAt:     receivedAt,
	}
}

func TestNew_EmptyPath(t *testing.T) {
	st, err := New("")
	assert.Error(t, err)
	assert.Nil(t, st)
	assert.Contains(t, err.Error(), "DATABASE_PATH not set")
}

func TestUpsert_InsertAndGet(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	receivedAt := time.Now().UTC().Truncate(time.Second)
	msg := testMessage("<m1@mail>", receivedAt)
	require.NoError(t, st.Upsert(ctx, msg))

	got, err := st.Get(ctx, "<m1@mail>")
	require.NoError(t, err)
	assert.Equal(t, msg.Sender, got.Sender)
	assert.Equal(t, msg.Subject, got.Subject)
	assert.Equal(t, msg.Body, got.Body)
	assert.Equal(t, msg.Sentiment, got.Sentiment)
	assert.Equal(t, msg.Priority, got.Priority)
	assert.Equal(t, msg.ExtractedInfo, got.ExtractedInfo)
	assert.Equal(t, msg.SuggestedReply, got.SuggestedReply)
	assert.False(t, got.Responded)
	assert.WithinDuration(t, receivedAt, got.ReceivedAt, time.Second)
}

func TestUpsert_UpdatePreservesReceivedAt(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	original := time.Now().UTC().Add(-24 * time.Hour).Truncate(time.Second)
	msg := testMessage("<m1@mail>", original)
	require.NoError(t, st.Upsert(ctx, msg))

	// Re-ingest with new classification and a later timestamp
	updated := testMessage("<m1@mail>", time.Now().UTC())
	updated.Sentiment = models.SentimentNeutral
	updated.Priority = models.PriorityUrgent
	updated.SuggestedReply = "Escalated."
	require.NoError(t, st.Upsert(ctx, updated))

	got, err := st.Get(ctx, "<m1@mail>")
	require.NoError(t, err)
	assert.Equal(t, models.SentimentNeutral, got.Sentiment)
	assert.Equal(t, models.PriorityUrgent, got.Priority)
	assert.Equal(t, "Escalated.", got.SuggestedReply)
	assert.WithinDuration(t, original, got.ReceivedAt, time.Second, "received_at must keep the first-insert value")
}

func TestUpsert_Idempotent(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	msg := testMessage("<m1@mail>", time.Now().UTC().Truncate(time.Second))
	require.NoError(t, st.Upsert(ctx, msg))
	first, err := st.Get(ctx, "<m1@mail>")
	require.NoError(t, err)

	require.NoError(t, st.Upsert(ctx, msg))
	second, err := st.Get(ctx, "<m1@mail>")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGet_NotFound(t *testing.T) {
	st := newTestStore(t)

	got, err := st.Get(context.Background(), "<missing@mail>")
	assert.Nil(t, got)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestExists(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	exists, err := st.Exists(ctx, "<m1@mail>")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, st.Upsert(ctx, testMessage("<m1@mail>", time.Now().UTC())))

	exists, err = st.Exists(ctx, "<m1@mail>")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestList_OrderingAndFilters(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)

	oldest := testMessage("<old@mail>", now.Add(-2*time.Hour))
	oldest.Sentiment = models.SentimentPositive

	middle := testMessage("<mid@mail>", now.Add(-time.Hour))
	middle.Priority = models.PriorityUrgent

	newest := testMessage("<new@mail>", now)
	newest.Sentiment = models.SentimentNeutral
	newest.Priority = models.PriorityUrgent

	for _, msg := range []*models.Message{oldest, middle, newest} {
		require.NoError(t, st.Upsert(ctx, msg))
	}

	t.Run("all messages newest first", func(t *testing.T) {
		all, err := st.List(ctx, Filter{})
		require.NoError(t, err)
		require.Len(t, all, 3)
		assert.Equal(t, "<new@mail>", all[0].ID)
		assert.Equal(t, "<mid@mail>", all[1].ID)
		assert.Equal(t, "<old@mail>", all[2].ID)
	})

	t.Run("filter by priority", func(t *testing.T) {
		urgent, err := st.List(ctx, Filter{Priority: models.PriorityUrgent})
		require.NoError(t, err)
		require.Len(t, urgent, 2)
		assert.Equal(t, "<new@mail>", urgent[0].ID)
		assert.Equal(t, "<mid@mail>", urgent[1].ID)
	})

	t.Run("filter by sentiment", func(t *testing.T) {
		positive, err := st.List(ctx, Filter{Sentiment: models.SentimentPositive})
		require.NoError(t, err)
		require.Len(t, positive, 1)
		assert.Equal(t, "<old@mail>", positive[0].ID)
	})

	t.Run("combined filter", func(t *testing.T) {
		matched, err := st.List(ctx, Filter{Sentiment: models.SentimentNeutral, Priority: models.PriorityUrgent})
		require.NoError(t, err)
		require.Len(t, matched, 1)
		assert.Equal(t, "<new@mail>", matched[0].ID)
	})

	t.Run("no matches yields empty slice", func(t *testing.T) {
		none, err := st.List(ctx, Filter{Sentiment: models.SentimentNegative, Priority: models.PriorityNormal})
		require.NoError(t, err)
		assert.NotNil(t, none)
		assert.Empty(t, none)
	})
}

func TestMarkResponded(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	t.Run("unknown id returns ErrNotFound", func(t *testing.T) {
		assert.ErrorIs(t, st.MarkResponded(ctx, "<missing@mail>"), ErrNotFound)
	})

	t.Run("sets and keeps the flag", func(t *testing.T) {
		require.NoError(t, st.Upsert(ctx, testMessage("<m1@mail>", time.Now().UTC())))

		require.NoError(t, st.MarkResponded(ctx, "<m1@mail>"))
		got, err := st.Get(ctx, "<m1@mail>")
		require.NoError(t, err)
		assert.True(t, got.Responded)

		// Second call is a no-op, not an error
		require.NoError(t, st.MarkResponded(ctx, "<m1@mail>"))
		got, err = st.Get(ctx, "<m1@mail>")
		require.NoError(t, err)
		assert.True(t, got.Responded)
	})
}

func TestStats(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	now := time.Now().UTC()

	urgentNegative := testMessage("<a@mail>", now)
	urgentNegative.Priority = models.PriorityUrgent

	normalPositive := testMessage("<b@mail>", now)
	normalPositive.Sentiment = models.SentimentPositive

	normalNeutral := testMessage("<c@mail>", now)
	normalNeutral.Sentiment = models.SentimentNeutral

	for _, msg := range []*models.Message{urgentNegative, normalPositive, normalNeutral} {
		require.NoError(t, st.Upsert(ctx, msg))
	}
	require.NoError(t, st.MarkResponded(ctx, "<b@mail>"))

	stats, err := st.Stats(ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, stats.Total)
	assert.Equal(t, 1, stats.Sentiment[models.SentimentNegative])
	assert.Equal(t, 1, stats.Sentiment[models.SentimentPositive])
	assert.Equal(t, 1, stats.Sentiment[models.SentimentNeutral])
	assert.Equal(t, 1, stats.Priority[models.PriorityUrgent])
	assert.Equal(t, 2, stats.Priority[models.PriorityNormal])
	assert.Equal(t, 1, stats.Responded)
}

func TestStore_QueryFailures(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = mockDB.Close() }()

	st := NewWithDB(sqlx.NewDb(mockDB, "sqlmock"))
	ctx := context.Background()

	t.Run("list failure is wrapped", func(t *testing.T) {
		mock.ExpectQuery("SELECT \\* FROM messages").WillReturnError(assert.AnError)

		messages, err := st.List(ctx, Filter{})
		assert.Nil(t, messages)
		assert.ErrorContains(t, err, "failed to list messages")
	})

	t.Run("mark responded failure is wrapped", func(t *testing.T) {
		mock.ExpectExec("UPDATE messages SET responded").WillReturnError(assert.AnError)

		err := st.MarkResponded(ctx, "<m1@mail>")
		assert.ErrorContains(t, err, "failed to mark message")
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
