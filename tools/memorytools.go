package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/alfredlabs/alfred/core"
	"github.com/alfredlabs/alfred/memory"
)

// NewSaveRecallTool persists one recall memory for the current user and
// echoes the stored text back.
func NewSaveRecallTool(recall *memory.Recall) core.Tool {
	def := core.ToolDefinition{
		Name:        "save_recall_memory",
		Description: "Save a memory to the database for later semantic retrieval.",
		InputSchema: ObjectSchema(map[string]interface{}{
			"memory": StringProperty("The memory text to be stored."),
		}, "memory"),
	}
	return core.NewFuncTool(def, func(ctx context.Context, params *core.ToolParams) (*core.ToolResult, error) {
		var args struct {
			Memory string `json:"memory"`
		}
		if err := json.Unmarshal(params.Input, &args); err != nil {
			return nil, fmt.Errorf("decode save_recall_memory arguments: %w", err)
		}
		stored, err := recall.Save(ctx, params.UserID, args.Memory)
		if err != nil {
			return nil, err
		}
		return &core.ToolResult{Content: stored}, nil
	})
}

// NewSearchMemoryTool searches the current user's recall memories.
func NewSearchMemoryTool(recall *memory.Recall) core.Tool {
	def := core.ToolDefinition{
		Name:        "search_memory",
		Description: "Search the database for memories relevant to a query.",
		InputSchema: ObjectSchema(map[string]interface{}{
			"query": StringProperty("The query to search memories for."),
			"top_k": IntegerProperty("Maximum number of memories to return."),
		}, "query"),
	}
	return core.NewFuncTool(def, func(ctx context.Context, params *core.ToolParams) (*core.ToolResult, error) {
		var args struct {
			Query string `json:"query"`
			TopK  int    `json:"top_k"`
		}
		if err := json.Unmarshal(params.Input, &args); err != nil {
			return nil, fmt.Errorf("decode search_memory arguments: %w", err)
		}
		memories, err := recall.Search(ctx, params.UserID, args.Query, args.TopK)
		if err != nil {
			return nil, err
		}
		out, err := json.Marshal(memories)
		if err != nil {
			return nil, fmt.Errorf("encode search_memory results: %w", err)
		}
		return &core.ToolResult{Content: string(out)}, nil
	})
}

// NewStoreCoreTool inserts or replaces one core-memory fact. An index
// outside the current list reports "Error: Index out of bounds." as the
// tool result, leaving the record unchanged.
func NewStoreCoreTool(store *memory.CoreStore) core.Tool {
	def := core.ToolDefinition{
		Name:        "store_core_memory",
		Description: "Store a core memory about the user. Omit index to insert a new memory at the front; pass an index to replace an existing one.",
		InputSchema: ObjectSchema(map[string]interface{}{
			"memory": StringProperty("The memory text to store."),
			"index":  IntegerProperty("Optional position of an existing memory to replace."),
		}, "memory"),
	}
	return core.NewFuncTool(def, func(ctx context.Context, params *core.ToolParams) (*core.ToolResult, error) {
		var args struct {
			Memory string `json:"memory"`
			Index  *int   `json:"index"`
		}
		if err := json.Unmarshal(params.Input, &args); err != nil {
			return nil, fmt.Errorf("decode store_core_memory arguments: %w", err)
		}
		result, err := store.Store(ctx, params.UserID, args.Memory, args.Index)
		if err != nil {
			return nil, err
		}
		return &core.ToolResult{Content: result}, nil
	})
}
