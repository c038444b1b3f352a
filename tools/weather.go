package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/alfredlabs/alfred/core"
)

// DefaultWeatherEndpoint is the Aviation Weather data server.
const DefaultWeatherEndpoint = "https://aviationweather.gov/api/data/dataserver"

// WeatherClient fetches METAR and TAF reports per station. Failures are
// reported per station in the result map, never as a tool error: one bad
// station must not hide the others.
type WeatherClient struct {
	endpoint string
	client   *http.Client
}

// NewWeatherClient creates a client against the public data server.
func NewWeatherClient() *WeatherClient {
	return NewWeatherClientWithEndpoint(DefaultWeatherEndpoint)
}

// NewWeatherClientWithEndpoint is used by tests to point at a fake server.
func NewWeatherClientWithEndpoint(endpoint string) *WeatherClient {
	return &WeatherClient{
		endpoint: endpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

// fetch retrieves one report type for each station. The value is the raw
// XML body on success, or an "Error: ..." string for that station.
func (c *WeatherClient) fetch(ctx context.Context, dataSource string, stations []string, hoursBeforeNow int) map[string]string {
	if hoursBeforeNow <= 0 {
		hoursBeforeNow = 1
	}
	results := make(map[string]string, len(stations))
	for _, station := range stations {
		q := url.Values{}
		q.Set("requestType", "retrieve")
		q.Set("dataSource", dataSource)
		q.Set("format", "xml")
		q.Set("hoursBeforeNow", strconv.Itoa(hoursBeforeNow))
		q.Set("stationString", station)

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+q.Encode(), nil)
		if err != nil {
			results[station] = fmt.Sprintf("Error: %v", err)
			continue
		}
		resp, err := c.client.Do(req)
		if err != nil {
			results[station] = fmt.Sprintf("Error: %v", err)
			continue
		}
		body, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			results[station] = fmt.Sprintf("Error: HTTP %d", resp.StatusCode)
			continue
		}
		if readErr != nil {
			results[station] = fmt.Sprintf("Error: %v", readErr)
			continue
		}
		results[station] = string(body)
	}
	return results
}

type weatherArgs struct {
	Stations       []string `json:"stations"`
	HoursBeforeNow int      `json:"hours_before_now"`
}

func weatherTool(c *WeatherClient, name, description, dataSource string) core.Tool {
	def := core.ToolDefinition{
		Name:        name,
		Description: description,
		InputSchema: ObjectSchema(map[string]interface{}{
			"stations":         StringArrayProperty("ICAO airport codes, e.g. [\"KJFK\", \"KDCA\"]."),
			"hours_before_now": IntegerProperty("Time range in hours for retrieving reports. Default is 1."),
		}, "stations"),
		Blocking: true,
	}
	return core.NewFuncTool(def, func(ctx context.Context, params *core.ToolParams) (*core.ToolResult, error) {
		var args weatherArgs
		if err := json.Unmarshal(params.Input, &args); err != nil {
			return nil, fmt.Errorf("decode %s arguments: %w", name, err)
		}
		results := c.fetch(ctx, dataSource, args.Stations, args.HoursBeforeNow)
		out, err := json.Marshal(results)
		if err != nil {
			return nil, fmt.Errorf("encode %s results: %w", name, err)
		}
		return &core.ToolResult{Content: string(out)}, nil
	})
}

// NewMETARTool fetches current METAR observations for a list of airports.
func NewMETARTool(c *WeatherClient) core.Tool {
	return weatherTool(c, "get_metar_data",
		"Fetch METAR weather observations for one or more airports by ICAO code.",
		"metars")
}

// NewTAFTool fetches Terminal Aerodrome Forecasts for a list of airports.
func NewTAFTool(c *WeatherClient) core.Tool {
	return weatherTool(c, "get_taf_data",
		"Fetch TAF (Terminal Aerodrome Forecast) data for one or more airports by ICAO code.",
		"tafs")
}
