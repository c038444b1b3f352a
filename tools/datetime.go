package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/alfredlabs/alfred/core"
)

const dateLayout = "2006-01-02"

// shiftDate adds days to a YYYY-MM-DD date. Negative values subtract.
func shiftDate(dateStr string, days int) string {
	date, err := time.Parse(dateLayout, dateStr)
	if err != nil {
		return fmt.Sprintf("Error: Invalid date format or value. Details - %v", err)
	}
	return date.AddDate(0, 0, days).Format(dateLayout)
}

// NewDateTool performs simple date arithmetic.
func NewDateTool() core.Tool {
	def := core.ToolDefinition{
		Name:        "date_time_tool",
		Description: "Add or subtract days from a given date in YYYY-MM-DD format.",
		InputSchema: ObjectSchema(map[string]interface{}{
			"date_str":    StringProperty("The input date in YYYY-MM-DD format."),
			"days_to_add": IntegerProperty("Number of days to add; negative to subtract."),
		}, "date_str"),
	}
	return core.NewFuncTool(def, func(ctx context.Context, params *core.ToolParams) (*core.ToolResult, error) {
		var args struct {
			DateStr   string `json:"date_str"`
			DaysToAdd int    `json:"days_to_add"`
		}
		if err := json.Unmarshal(params.Input, &args); err != nil {
			return nil, fmt.Errorf("decode date_time_tool arguments: %w", err)
		}
		return &core.ToolResult{Content: shiftDate(args.DateStr, args.DaysToAdd)}, nil
	})
}
