package anthropicllm

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/alfredlabs/alfred/core"
)

func TestToAPIToolsRequiredFromGoSchema(t *testing.T) {
	defs := []core.ToolDefinition{{
		Name: "lookup",
		InputSchema: map[string]interface{}{
			"type": "object",
			"properties": map[string]interface{}{
				"query": map[string]interface{}{"type": "string"},
			},
			"required": []string{"query"},
		},
	}}

	tools := toAPITools(defs)
	if len(tools) != 1 {
		t.Fatalf("got %d tools, want 1", len(tools))
	}
	got := tools[0].OfTool.InputSchema.Required
	if !reflect.DeepEqual(got, []string{"query"}) {
		t.Errorf("required = %v, want [query]", got)
	}
}

func TestToAPIToolsRequiredFromDecodedSchema(t *testing.T) {
	// A schema that round-tripped through JSON carries []interface{}
	// for "required", not []string.
	raw := `{
		"type": "object",
		"properties": {"city": {"type": "string"}, "days": {"type": "integer"}},
		"required": ["city", "days"]
	}`
	var schema map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &schema); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	tools := toAPITools([]core.ToolDefinition{{Name: "forecast", InputSchema: schema}})
	got := tools[0].OfTool.InputSchema.Required
	if !reflect.DeepEqual(got, []string{"city", "days"}) {
		t.Errorf("required = %v, want [city days]", got)
	}
}

func TestToAPIToolsNoRequired(t *testing.T) {
	tools := toAPITools([]core.ToolDefinition{{
		Name:        "ping",
		InputSchema: map[string]interface{}{"type": "object"},
	}})
	if got := tools[0].OfTool.InputSchema.Required; len(got) != 0 {
		t.Errorf("required = %v, want empty", got)
	}
}
