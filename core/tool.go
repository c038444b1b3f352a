package core

import (
	"context"
	"encoding/json"
)

// ToolDefinition describes one tool to the model.
type ToolDefinition struct {
	// Name uniquely identifies the tool in the registry.
	Name string

	// Description is shown to the model. Registration defaults an empty
	// description rather than sending a tool with no description.
	Description string

	// InputSchema is a JSON Schema object describing the arguments.
	InputSchema map[string]interface{}

	// Blocking marks tools whose handlers perform network I/O. Every tool
	// is awaited to completion either way; the flag lets callers reason
	// about latency.
	Blocking bool
}

// ToolParams carries the execution context for one tool invocation.
type ToolParams struct {
	// UserID is the owner of the current turn.
	UserID string

	// Input is the argument payload from the model. A payload that fails
	// to parse is degraded to an empty object before it gets here.
	Input json.RawMessage

	// LastUserMessage is the most recent user-authored message content.
	// The retrieve tool builds its question from this, never from Input,
	// so retrieval stays grounded in the user's literal question.
	LastUserMessage string
}

// ToolResult is the stringified outcome of a tool invocation. Transient
// failures inside a tool are reported here as descriptive text, not as
// errors, so the turn continues.
type ToolResult struct {
	Content string
}

// Tool is the capability interface every registry entry implements.
// There is exactly one conforming implementation per tool; any special
// argument-sourcing rule (see ToolParams.LastUserMessage) is part of the
// implementation's contract, not a dispatcher special case.
type Tool interface {
	Definition() ToolDefinition
	Execute(ctx context.Context, params *ToolParams) (*ToolResult, error)
}

// FuncTool adapts a plain function into a Tool.
type FuncTool struct {
	def ToolDefinition
	fn  func(ctx context.Context, params *ToolParams) (*ToolResult, error)
}

// NewFuncTool creates a Tool from a definition and a handler function.
func NewFuncTool(def ToolDefinition, fn func(ctx context.Context, params *ToolParams) (*ToolResult, error)) *FuncTool {
	return &FuncTool{def: def, fn: fn}
}

func (t *FuncTool) Definition() ToolDefinition {
	return t.def
}

func (t *FuncTool) Execute(ctx context.Context, params *ToolParams) (*ToolResult, error) {
	return t.fn(ctx, params)
}
