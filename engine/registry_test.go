package engine

import (
	"context"
	"testing"

	"github.com/alfredlabs/alfred/core"
)

func stubTool(def core.ToolDefinition) core.Tool {
	return core.NewFuncTool(def, func(ctx context.Context, params *core.ToolParams) (*core.ToolResult, error) {
		return &core.ToolResult{}, nil
	})
}

func TestRegisterRejectsEmptyName(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(stubTool(core.ToolDefinition{})); err == nil {
		t.Fatal("expected error for empty name")
	}
}

func TestRegisterRejectsDuplicateName(t *testing.T) {
	r := NewRegistry()
	def := core.ToolDefinition{Name: "alpha"}
	if err := r.Register(stubTool(def)); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := r.Register(stubTool(def)); err == nil {
		t.Fatal("expected error for duplicate name")
	}
}

func TestRegisterRejectsInvalidSchema(t *testing.T) {
	r := NewRegistry()
	def := core.ToolDefinition{
		Name:        "alpha",
		InputSchema: map[string]interface{}{"type": 42},
	}
	if err := r.Register(stubTool(def)); err == nil {
		t.Fatal("expected error for invalid schema")
	}
}

func TestRegisterDefaultsDescription(t *testing.T) {
	r := NewRegistry()
	if err := r.Register(stubTool(core.ToolDefinition{Name: "alpha"})); err != nil {
		t.Fatalf("register: %v", err)
	}
	defs := r.Definitions()
	if len(defs) != 1 {
		t.Fatalf("got %d definitions, want 1", len(defs))
	}
	if defs[0].Description != DefaultToolDescription {
		t.Errorf("description = %q, want default", defs[0].Description)
	}
}

func TestDefinitionsKeepRegistrationOrder(t *testing.T) {
	r := NewRegistry()
	for _, name := range []string{"charlie", "alpha", "bravo"} {
		if err := r.Register(stubTool(core.ToolDefinition{Name: name})); err != nil {
			t.Fatalf("register %s: %v", name, err)
		}
	}
	defs := r.Definitions()
	want := []string{"charlie", "alpha", "bravo"}
	for i, def := range defs {
		if def.Name != want[i] {
			t.Errorf("defs[%d] = %q, want %q", i, def.Name, want[i])
		}
	}
}
