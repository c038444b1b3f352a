package tools

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/alfredlabs/alfred/core"
	"github.com/alfredlabs/alfred/rag"
)

// NoRouteResult is returned when the router matched no data source and
// the pipeline ended without generating.
const NoRouteResult = "No data source matched this question."

// NewRetrieveTool answers document questions through the retrieval
// pipeline. The question is always the user's last message, never the
// model-provided arguments, so retrieval stays grounded in what the user
// literally asked.
func NewRetrieveTool(pipeline *rag.Pipeline) core.Tool {
	def := core.ToolDefinition{
		Name:        "retrieve",
		Description: "Answer questions about uploaded documents, reports, or data files using retrieval-augmented generation.",
		InputSchema: ObjectSchema(map[string]interface{}{
			"query": StringProperty("Ignored; the user's last message is used as the question."),
		}),
		Blocking: true,
	}
	return core.NewFuncTool(def, func(ctx context.Context, params *core.ToolParams) (*core.ToolResult, error) {
		question := strings.TrimSpace(params.LastUserMessage)
		if question == "" {
			return &core.ToolResult{Content: NoRouteResult}, nil
		}

		state, err := pipeline.Run(ctx, question)
		if err != nil {
			return nil, fmt.Errorf("retrieval pipeline: %w", err)
		}
		if state.Generation == "" {
			return &core.ToolResult{Content: NoRouteResult}, nil
		}

		content := state.Generation
		if !state.Grounded && len(state.Documents) > 0 {
			log.Printf("[RAG] Returning generation flagged as ungrounded")
			content += "\n\n(This answer could not be fully verified against the retrieved sources.)"
		}
		return &core.ToolResult{Content: content}, nil
	})
}
