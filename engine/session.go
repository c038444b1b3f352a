package engine

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/alfredlabs/alfred/core"
)

// Session is the conversation state for one turn: an ordered, append-only
// message sequence. Each loop iteration reads a snapshot and appends; no
// message is ever rewritten.
type Session struct {
	id       string
	messages []core.Message
}

// NewSession creates a session seeded with the inbound transcript.
func NewSession(history []core.Message) *Session {
	msgs := make([]core.Message, len(history))
	copy(msgs, history)
	return &Session{
		id:       uuid.New().String(),
		messages: msgs,
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// Messages returns a snapshot of the transcript.
func (s *Session) Messages() []core.Message {
	out := make([]core.Message, len(s.messages))
	copy(out, s.messages)
	return out
}

// AddAssistant appends the model's message, tool calls included.
func (s *Session) AddAssistant(content string, toolCalls []core.ToolCall) {
	s.messages = append(s.messages, core.Message{
		Role:      core.RoleAssistant,
		Content:   content,
		ToolCalls: toolCalls,
	})
}

// AddToolResult appends a tool's stringified result as a system message,
// the shape the next model step reads it back in.
func (s *Session) AddToolResult(name, result string) {
	s.messages = append(s.messages, core.Message{
		Role:    core.RoleSystem,
		Content: fmt.Sprintf("[Tool:%s] %s", name, result),
	})
}
