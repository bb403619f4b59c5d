package models

import "time"

// HealthResponse represents a basic health check response
// @Description Health check response
type HealthResponse struct {
	Status    string    `json:"status" example:"healthy"`                 // Health status
	Timestamp time.Time `json:"timestamp" example:"2023-01-01T00:00:00Z"` // Timestamp of the check
	Version   string    `json:"version" example:"1.0.0"`                  // Application version
}

// DBHealthResponse represents a database health check response
// @Description Database health check response
type DBHealthResponse struct {
	Status    string        `json:"status" example:"healthy"`                   // Health status
	Timestamp time.Time     `json:"timestamp" example:"2023-01-01T00:00:00Z"`   // Timestamp of the check
	Connected bool          `json:"connected" example:"true"`                   // Database connection status
	Latency   time.Duration `json:"latency" swaggertype:"string" example:"1ms"` // Database ping latency
	Error     string        `json:"error,omitempty" example:""`                 // Error message if any
}

// SyncResponse represents the result of a mailbox sync
// @Description Mailbox sync result
type SyncResponse struct {
	Ingested int    `json:"ingested" example:"2"`       // Number of newly ingested messages
	Error    string `json:"error,omitempty" example:""` // Error message if any
}

// MessageListResponse represents a list of stored messages
// @Description List of stored messages
type MessageListResponse struct {
	Messages []Message `json:"messages"`                   // Stored messages, newest first
	Total    int       `json:"total" example:"10"`         // Number of messages returned
	Error    string    `json:"error,omitempty" example:""` // Error message if any
}

// SendReplyRequest represents a request to send a reply for a message
// @Description Send reply request payload
type SendReplyRequest struct {
	Body string `json:"body,omitempty"` // Reply text; stored suggested reply is used when empty
}

// SendReplyResponse represents the result of sending a reply
// @Description Send reply result
type SendReplyResponse struct {
	Success bool   `json:"success" example:"true"`     // Whether the reply was sent
	Message string `json:"message,omitempty"`          // Human-readable status
	Error   string `json:"error,omitempty" example:""` // Error message if any
}

// AnalyticsResponse represents aggregate counts for the dashboard charts
// @Description Sentiment/priority/responded distributions
type AnalyticsResponse struct {
	Total     int            `json:"total" example:"10"` // Total stored messages
	Sentiment map[string]int `json:"sentiment"`          // Counts per sentiment value
	Priority  map[string]int `json:"priority"`           // Counts per priority value
	Responded int            `json:"responded"`          // Messages already replied to
	Pending   int            `json:"pending"`            // Messages awaiting a reply
	Error     string         `json:"error,omitempty" example:""`
}

// ErrorResponse represents a structured API error
// @Description Structured API error
type ErrorResponse struct {
	Error string `json:"error" example:"message not found"` // Error message
}
