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

// jp5PoundsPerGallon is the planning weight of JP-5 jet fuel.
const jp5PoundsPerGallon = 6.8

// conversionFactors maps "<from>_to_<to>" keys to multipliers.
// Temperature is handled separately because it is affine, not linear.
var conversionFactors = map[string]float64{
	"meters_to_feet":      3.28084,
	"feet_to_meters":      0.3048,
	"miles_to_km":         1.60934,
	"km_to_miles":         0.621371,
	"nautical_to_statute": 1.15078,
	"statute_to_nautical": 0.868976,
	"kg_to_pounds":        2.20462,
	"pounds_to_kg":        0.453592,
	"liters_to_gallons":   0.264172,
	"gallons_to_liters":   3.78541,
	"pounds_to_gallons":   1 / jp5PoundsPerGallon,
	"gallons_to_pounds":   jp5PoundsPerGallon,
}

var unitAliases = map[string]string{
	"miles": "miles", "mi": "miles",
	"nautical miles": "nautical", "nm": "nautical",
	"statute miles": "statute", "statute": "statute",
	"kilometers": "km", "km": "km",
	"meters": "meters", "m": "meters",
	"feet": "feet", "ft": "feet",
	"pounds": "pounds", "lbs": "pounds",
	"kg": "kg", "kilograms": "kg",
	"celsius": "celsius", "c": "celsius",
	"fahrenheit": "fahrenheit", "f": "fahrenheit",
	"liters": "liters", "l": "liters",
	"gallons": "gallons", "gal": "gallons",
}

var (
	fillerWords = regexp.MustCompile(`\b(?:of|for|the|fuel|jet fuel)\b`)
	convertExpr = regexp.MustCompile(`(convert|change|what is)?\s*([\d,.kK]+)\s*([a-zA-Z\s]+?)\s*(to|in)\s*([a-zA-Z\s]+)`)
)

// convertUnits parses a free-form conversion query and applies the
// matching factor. Unparseable or unsupported queries come back as
// "Error: ..." strings.
func convertUnits(query string) string {
	query = strings.TrimSpace(fillerWords.ReplaceAllString(strings.ToLower(query), ""))

	m := convertExpr.FindStringSubmatch(query)
	if m == nil {
		return "Error: Could not parse input. Example: 'convert 15k lbs to kg'."
	}

	raw := strings.ReplaceAll(strings.ToLower(m[2]), "k", "000")
	raw = strings.ReplaceAll(raw, ",", "")
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Sprintf("Error: invalid value %q", m[2])
	}

	fromUnit := canonicalUnit(m[3])
	toUnit := canonicalUnit(m[5])

	var result float64
	switch {
	case fromUnit == "celsius" && toUnit == "fahrenheit":
		result = value*9/5 + 32
	case fromUnit == "fahrenheit" && toUnit == "celsius":
		result = (value - 32) * 5 / 9
	default:
		factor, ok := conversionFactors[fromUnit+"_to_"+toUnit]
		if !ok {
			return fmt.Sprintf("Error: Unsupported conversion from %s to %s.", fromUnit, toUnit)
		}
		result = value * factor
	}

	return fmt.Sprintf("%s %s = %s %s",
		groupThousands(strconv.FormatFloat(value, 'f', -1, 64)), fromUnit,
		groupThousands(strconv.FormatFloat(result, 'f', 2, 64)), toUnit)
}

func canonicalUnit(raw string) string {
	unit := strings.TrimSpace(strings.ToLower(raw))
	if canonical, ok := unitAliases[unit]; ok {
		return canonical
	}
	return unit
}

// groupThousands inserts commas into the integer part of a formatted
// number.
func groupThousands(s string) string {
	intPart, frac, _ := strings.Cut(s, ".")
	neg := strings.HasPrefix(intPart, "-")
	if neg {
		intPart = intPart[1:]
	}

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}

	out := b.String()
	if neg {
		out = "-" + out
	}
	if frac != "" {
		out += "." + frac
	}
	return out
}

// NewUnitConverterTool converts weights, temperatures, distances, volumes,
// and JP-5 fuel quantities.
func NewUnitConverterTool() core.Tool {
	def := core.ToolDefinition{
		Name:        "unit_converter",
		Description: "Convert units like weight, temperature, distance, volume, and aviation fuel (JP-5, 6.8 lbs/gal). Example: 'convert 15k lbs to kg'.",
		InputSchema: ObjectSchema(map[string]interface{}{
			"query": StringProperty("Conversion query, e.g. 'convert 500 miles to km' or '16k lbs of fuel to gallons'."),
		}, "query"),
	}
	return core.NewFuncTool(def, func(ctx context.Context, params *core.ToolParams) (*core.ToolResult, error) {
		var args struct {
			Query string `json:"query"`
		}
		if err := json.Unmarshal(params.Input, &args); err != nil {
			return nil, fmt.Errorf("decode unit_converter arguments: %w", err)
		}
		return &core.ToolResult{Content: convertUnits(args.Query)}, nil
	})
}
