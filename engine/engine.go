// Package engine drives the agent turn loop: load memories, ask the model
// for the next action, execute at most one requested tool, fold the
// result back into the conversation, and repeat until the model answers
// with no pending tool call.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/alfredlabs/alfred/core"
	"github.com/alfredlabs/alfred/llm"
	"github.com/alfredlabs/alfred/memory"
)

// DefaultMaxIterations caps loop iterations per turn. A model that keeps
// requesting tools past the cap fails the turn with
// ErrIterationsExhausted rather than spinning forever.
const DefaultMaxIterations = 10

// ErrIterationsExhausted reports a turn that hit the iteration cap.
var ErrIterationsExhausted = errors.New("exceeded maximum loop iterations")

// Engine runs agent turns.
type Engine struct {
	llm           llm.Client
	registry      *Registry
	loader        *memory.Loader
	maxIterations int
	maxTokens     int64
	now           func() time.Time
}

// Option configures the engine.
type Option func(*Engine)

// WithMaxIterations overrides the per-turn iteration cap.
func WithMaxIterations(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.maxIterations = n
		}
	}
}

// WithMaxTokens sets the response token limit passed to the model.
func WithMaxTokens(n int64) Option {
	return func(e *Engine) {
		e.maxTokens = n
	}
}

// New creates an engine over the given model client, tool registry, and
// memory loader.
func New(client llm.Client, registry *Registry, loader *memory.Loader, opts ...Option) *Engine {
	e := &Engine{
		llm:           client,
		registry:      registry,
		loader:        loader,
		maxIterations: DefaultMaxIterations,
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ChatResponse is the outbound turn contract: a single assistant message,
// even when the turn failed internally.
type ChatResponse struct {
	Messages []core.Message `json:"messages"`
}

// StepResult is one model invocation's outcome plus the memory snapshot
// it was prompted with.
type StepResult struct {
	Message  *llm.Response
	Memories *memory.Loaded
}

// ProcessChat runs one full turn. It always returns a well-formed
// response shape: loop-structural failures (unknown tool, loader failure,
// model errors, iteration exhaustion) are logged and converted into an
// apologetic assistant message, never propagated to the transport.
func (e *Engine) ProcessChat(ctx context.Context, messages []core.Message, config *core.Config) *ChatResponse {
	cfg := core.Config{}
	if config != nil {
		cfg = *config
	}
	cfg.EnsureDefaults()

	final, err := e.runTurn(ctx, messages, &cfg)
	if err != nil {
		log.Printf("[ENGINE] Turn failed for %s: %v", cfg.UserID, err)
		final = fmt.Sprintf("I encountered an error: %v", err)
	}
	return &ChatResponse{Messages: []core.Message{{
		Role:    core.RoleAssistant,
		Content: final,
	}}}
}

// runTurn is the turn state machine. Each iteration asks the model for
// the next action; a response with no tool calls is terminal. When a
// response carries several tool calls, only the first is executed and the
// remainder are dropped for that iteration — first-wins is policy here,
// not an accident.
func (e *Engine) runTurn(ctx context.Context, messages []core.Message, cfg *core.Config) (string, error) {
	session := NewSession(messages)

	// Memories are loaded once per turn. Tool results appended during the
	// loop are visible to the model through the transcript, so re-querying
	// the index between iterations would only add latency.
	loaded, err := e.loader.Load(ctx, cfg.UserID, core.BufferString(session.Messages()))
	if err != nil {
		return "", err
	}

	for iteration := 0; ; iteration++ {
		if iteration >= e.maxIterations {
			return "", fmt.Errorf("%w (%d)", ErrIterationsExhausted, e.maxIterations)
		}

		step, err := e.Step(ctx, session, cfg, loaded)
		if err != nil {
			return "", err
		}

		if len(step.Message.ToolCalls) == 0 {
			return step.Message.Content, nil
		}

		call := step.Message.ToolCalls[0]
		if dropped := len(step.Message.ToolCalls) - 1; dropped > 0 {
			log.Printf("[ENGINE] Dropping %d extra tool calls this iteration", dropped)
		}

		session.AddAssistant(step.Message.Content, step.Message.ToolCalls)
		result, err := e.executeTool(ctx, session, cfg, call)
		if err != nil {
			return "", err
		}
		session.AddToolResult(call.Name, result)
	}
}

// Step performs one model invocation: render the system prompt from the
// turn's memory snapshot, bind the full tool schema, and return the raw
// model message. It has no side effects on the session.
func (e *Engine) Step(ctx context.Context, session *Session, cfg *core.Config, loaded *memory.Loaded) (*StepResult, error) {
	resp, err := e.llm.Invoke(ctx, &llm.Request{
		Model:     cfg.Model,
		System:    buildSystemPrompt(loaded, e.now().UTC(), cfg),
		Messages:  session.Messages(),
		Tools:     e.registry.Definitions(),
		MaxTokens: e.maxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("model call: %w", err)
	}

	for _, call := range resp.ToolCalls {
		log.Printf("[ENGINE] Tool call requested: %s %s", call.Name, call.Arguments)
	}
	return &StepResult{Message: resp, Memories: loaded}, nil
}

// executeTool looks up and runs one tool call. A malformed argument
// payload degrades to an empty argument set; an unknown tool name is
// fatal for the turn.
func (e *Engine) executeTool(ctx context.Context, session *Session, cfg *core.Config, call core.ToolCall) (string, error) {
	tool, ok := e.registry.Get(call.Name)
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownTool, call.Name)
	}

	input := call.Arguments
	if len(input) == 0 || !json.Valid(input) {
		log.Printf("[ENGINE] Malformed arguments for %s, using empty set", call.Name)
		input = json.RawMessage("{}")
	}

	result, err := tool.Execute(ctx, &core.ToolParams{
		UserID:          cfg.UserID,
		Input:           input,
		LastUserMessage: core.LastUserMessage(session.Messages()),
	})
	if err != nil {
		return "", fmt.Errorf("tool %s: %w", call.Name, err)
	}
	if result == nil {
		return "", nil
	}
	return result.Content, nil
}
