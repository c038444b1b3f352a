package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/alfredlabs/alfred/core"
)

var exprTokens = regexp.MustCompile(`\d+\.?\d*|[+\-*/]`)

// evaluate computes a basic expression with +, -, *, / strictly
// left-to-right, no precedence. Problems come back as "Error ..." strings
// for the model to read, not as Go errors.
func evaluate(expression string) string {
	stripped := strings.ReplaceAll(expression, " ", "")
	tokens := exprTokens.FindAllString(stripped, -1)
	if len(tokens) == 0 || len(tokens)%2 == 0 {
		return fmt.Sprintf("Error evaluating expression: invalid expression %q", expression)
	}

	result, err := strconv.ParseFloat(tokens[0], 64)
	if err != nil {
		return fmt.Sprintf("Error evaluating expression: %v", err)
	}
	for i := 1; i < len(tokens); i += 2 {
		op := tokens[i]
		if !strings.ContainsAny(op, "+-*/") || len(op) != 1 {
			return fmt.Sprintf("Error evaluating expression: unsupported token %q", op)
		}
		number, err := strconv.ParseFloat(tokens[i+1], 64)
		if err != nil {
			return fmt.Sprintf("Error evaluating expression: %v", err)
		}
		switch op {
		case "+":
			result += number
		case "-":
			result -= number
		case "*":
			result *= number
		case "/":
			if number == 0 {
				return "Error: Division by zero is not allowed."
			}
			result /= number
		}
	}
	return strconv.FormatFloat(result, 'f', -1, 64)
}

// NewCalculatorTool evaluates basic arithmetic expressions.
func NewCalculatorTool() core.Tool {
	def := core.ToolDefinition{
		Name:        "calculate",
		Description: "Evaluate a basic mathematical expression with +, -, *, /. Operations are applied left to right.",
		InputSchema: ObjectSchema(map[string]interface{}{
			"expression": StringProperty("The mathematical expression to evaluate, e.g. '3 + 5 * 2 - 4 / 2'."),
		}, "expression"),
	}
	return core.NewFuncTool(def, func(ctx context.Context, params *core.ToolParams) (*core.ToolResult, error) {
		var args struct {
			Expression string `json:"expression"`
		}
		if err := json.Unmarshal(params.Input, &args); err != nil {
			return nil, fmt.Errorf("decode calculate arguments: %w", err)
		}
		return &core.ToolResult{Content: evaluate(args.Expression)}, nil
	})
}
