package core

import "github.com/google/uuid"

// DefaultModel is used when the transport supplies no model.
const DefaultModel = "claude-sonnet-4-20250514"

// Config is the per-turn configuration bag supplied by the transport layer.
type Config struct {
	// UserID scopes memory and document access.
	UserID string `json:"user_id"`

	// ThreadID identifies the conversation.
	ThreadID string `json:"thread_id"`

	// Model selects the language model for this turn.
	Model string `json:"model"`

	// AlreadyIngested signals that a previously uploaded document is
	// already indexed, so the loop should prefer retrieve over
	// re-ingestion.
	AlreadyIngested bool `json:"already_ingested,omitempty"`

	// Context carries free-form hints from the transport.
	Context map[string]interface{} `json:"context,omitempty"`
}

// EnsureDefaults fills missing fields with usable values.
func (c *Config) EnsureDefaults() {
	if c.UserID == "" {
		c.UserID = "default_user"
	}
	if c.ThreadID == "" {
		c.ThreadID = uuid.New().String()
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
}
