// Package tools implements the agent's tool surface: memory persistence,
// document retrieval, web search, and a set of utility tools.
package tools

import (
	"github.com/alfredlabs/alfred/core"
	"github.com/alfredlabs/alfred/memory"
	"github.com/alfredlabs/alfred/rag"
)

// Deps holds the collaborators the tool set is built from. Nil entries
// simply omit the tools that need them, so a deployment without a search
// key still gets the rest of the set.
type Deps struct {
	Core     *memory.CoreStore
	Recall   *memory.Recall
	Pipeline *rag.Pipeline
	Ingestor *rag.Ingestor
	Search   rag.WebSearcher
	Weather  *WeatherClient
	News     *NewsClient
}

// AlfredTools assembles the full tool set for the agent.
func AlfredTools(deps Deps) []core.Tool {
	var out []core.Tool
	if deps.Core != nil {
		out = append(out, NewStoreCoreTool(deps.Core))
	}
	if deps.Recall != nil {
		out = append(out, NewSaveRecallTool(deps.Recall), NewSearchMemoryTool(deps.Recall))
	}
	if deps.Pipeline != nil {
		out = append(out, NewRetrieveTool(deps.Pipeline))
	}
	if deps.Ingestor != nil {
		out = append(out, NewIngestTool(deps.Ingestor))
	}
	if deps.Search != nil {
		out = append(out, NewWebSearchTool(deps.Search))
	}
	if deps.Weather != nil {
		out = append(out, NewMETARTool(deps.Weather), NewTAFTool(deps.Weather))
	}
	if deps.News != nil {
		out = append(out, NewNewsTool(deps.News))
	}
	out = append(out,
		NewCalculatorTool(),
		NewUnitConverterTool(),
		NewDateTool(),
	)
	return out
}
