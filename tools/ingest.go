package tools

import (
	"context"
	"fmt"

	"github.com/alfredlabs/alfred/core"
	"github.com/alfredlabs/alfred/rag"
)

// NewIngestTool indexes the documents in the docs directory so the
// retrieve tool can answer questions about them. Ingestion problems are
// reported in the result text; only a missing docs directory is an error.
func NewIngestTool(ingestor *rag.Ingestor) core.Tool {
	def := core.ToolDefinition{
		Name:        "ingest_data",
		Description: "Index uploaded documents (.pdf, .txt, .md, .csv) for retrieval. Run this after a file upload before using the retrieve tool.",
		InputSchema: ObjectSchema(map[string]interface{}{
			"command": StringProperty("Ingestion command; 'load_docs' indexes all uploaded files."),
		}),
		Blocking: true,
	}
	return core.NewFuncTool(def, func(ctx context.Context, params *core.ToolParams) (*core.ToolResult, error) {
		summary, err := ingestor.IngestDir(ctx)
		if err != nil {
			return nil, fmt.Errorf("ingest documents: %w", err)
		}
		return &core.ToolResult{Content: summary}, nil
	})
}
