package models

import "time"

// Sentiment classification values
const (
	SentimentPositive = "positive"
	SentimentNegative = "negative"
	SentimentNeutral  = "neutral"
)

// Priority classification values
const (
	PriorityUrgent = "urgent"
	PriorityNormal = "normal"
)

// ValidSentiment reports whether s is one of the known sentiment values
func ValidSentiment(s string) bool {
	return s == SentimentPositive || s == SentimentNegative || s == SentimentNeutral
}

// ValidPriority reports whether p is one of the known priority values
func ValidPriority(p string) bool {
	return p == PriorityUrgent || p == PriorityNormal
}

// Message represents a classified email message
type Message struct {
	ID             string    `db:"id" json:"id"`
	Sender         string    `db:"sender" json:"sender"`
	Subject        string    `db:"subject" json:"subject"`
	Body           string    `db:"body" json:"body"`
	Sentiment      string    `db:"sentiment" json:"sentiment"`
	Priority       string    `db:"priority" json:"priority"`
	ExtractedInfo  string    `db:"extracted_info" json:"extracted_info"` // JSON array of key facts
	SuggestedReply string    `db:"suggested_reply" json:"suggested_reply"`
	Responded      bool      `db:"responded" json:"responded"`
	ReceivedAt     time.Time `db:"received_at" json:"received_at"`
}

// RawMessage represents an email as retrieved from the mailbox,
// before classification
type RawMessage struct {
	ID       string    `json:"id"`
	Sender   string    `json:"sender"`
	Subject  string    `json:"subject"`
	Body     string    `json:"body"`
	SentDate time.Time `json:"sent_date"`
}
