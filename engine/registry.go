package engine

import (
	"errors"
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"github.com/alfredlabs/alfred/core"
)

// ErrUnknownTool reports a model-requested tool name with no registry
// entry. The loop fails closed on it; the turn ends with the generic
// apology.
var ErrUnknownTool = errors.New("unknown tool")

// DefaultToolDescription replaces an empty tool description; the model
// never sees a tool without one.
const DefaultToolDescription = "No description provided."

// Registry maps tool names to handlers. Uniqueness and schema validity
// are enforced at registration, not discovered at call time.
type Registry struct {
	tools map[string]registered
	order []string
}

type registered struct {
	tool core.Tool
	def  core.ToolDefinition
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tools: make(map[string]registered)}
}

// Register validates and adds one tool. Empty names, duplicate names, and
// argument schemas that are not valid JSON Schema are rejected here.
func (r *Registry) Register(tool core.Tool) error {
	def := tool.Definition()
	if def.Name == "" {
		return fmt.Errorf("tool has empty name")
	}
	if _, exists := r.tools[def.Name]; exists {
		return fmt.Errorf("duplicate tool name %q", def.Name)
	}
	if def.Description == "" {
		def.Description = DefaultToolDescription
	}
	if def.InputSchema != nil {
		if _, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(def.InputSchema)); err != nil {
			return fmt.Errorf("tool %q has invalid schema: %w", def.Name, err)
		}
	}

	r.tools[def.Name] = registered{tool: tool, def: def}
	r.order = append(r.order, def.Name)
	return nil
}

// MustRegister registers tools and panics on the first failure. Intended
// for wiring code where a bad registration is a programming error.
func (r *Registry) MustRegister(tools ...core.Tool) {
	for _, t := range tools {
		if err := r.Register(t); err != nil {
			panic(err)
		}
	}
}

// Get returns the handler for an exact tool name.
func (r *Registry) Get(name string) (core.Tool, bool) {
	entry, ok := r.tools[name]
	if !ok {
		return nil, false
	}
	return entry.tool, true
}

// Definitions returns all tool definitions in registration order, with
// defaulted descriptions applied.
func (r *Registry) Definitions() []core.ToolDefinition {
	defs := make([]core.ToolDefinition, 0, len(r.order))
	for _, name := range r.order {
		defs = append(defs, r.tools[name].def)
	}
	return defs
}
