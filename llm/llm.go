// Package llm defines the language-model collaborator contract.
//
// The engine and the retrieval pipeline only ever talk to a Client; the
// concrete provider (Anthropic in cmd/alfred) lives behind this interface
// so loop behavior is testable with scripted responses.
package llm

import (
	"context"

	"github.com/alfredlabs/alfred/core"
)

// Request is one model invocation: a system prompt, the full message
// history, and the tool schemas the model may call.
type Request struct {
	Model     string
	System    string
	Messages  []core.Message
	Tools     []core.ToolDefinition
	MaxTokens int64
}

// Response is the raw model message: free text plus zero or more requested
// tool calls. Callers downstream honor only the first call.
type Response struct {
	Content   string
	ToolCalls []core.ToolCall
}

// Client invokes the model once. Implementations must be safe for
// concurrent use across turns.
type Client interface {
	Invoke(ctx context.Context, req *Request) (*Response, error)
}

// UserMessage wraps a single user turn as a message slice, the common
// shape for one-shot classifier and grader calls.
func UserMessage(content string) []core.Message {
	return []core.Message{{Role: core.RoleUser, Content: content}}
}
