package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/alfredlabs/alfred/core"
	"github.com/alfredlabs/alfred/rag"
)

// NewWebSearchTool searches the web directly, outside the retrieval
// pipeline. Provider failures degrade to an "Error: ..." result so the
// turn continues.
func NewWebSearchTool(search rag.WebSearcher) core.Tool {
	def := core.ToolDefinition{
		Name:        "web_search",
		Description: "Search the web for up-to-date information on a topic.",
		InputSchema: ObjectSchema(map[string]interface{}{
			"query":       StringProperty("The search query."),
			"max_results": IntegerProperty("Maximum number of results to return. Default is 3."),
		}, "query"),
		Blocking: true,
	}
	return core.NewFuncTool(def, func(ctx context.Context, params *core.ToolParams) (*core.ToolResult, error) {
		var args struct {
			Query      string `json:"query"`
			MaxResults int    `json:"max_results"`
		}
		if err := json.Unmarshal(params.Input, &args); err != nil {
			return nil, fmt.Errorf("decode web_search arguments: %w", err)
		}

		results, err := search.Search(ctx, args.Query, args.MaxResults)
		if err != nil {
			return &core.ToolResult{Content: fmt.Sprintf("Error: %v", err)}, nil
		}
		if len(results) == 0 {
			return &core.ToolResult{Content: "No results found."}, nil
		}

		var b strings.Builder
		for i, r := range results {
			if i > 0 {
				b.WriteString("\n\n")
			}
			if r.Title != "" {
				fmt.Fprintf(&b, "%s\n", r.Title)
			}
			b.WriteString(r.Content)
			if r.URL != "" {
				fmt.Fprintf(&b, "\n(%s)", r.URL)
			}
		}
		return &core.ToolResult{Content: b.String()}, nil
	})
}
