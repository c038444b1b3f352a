package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/alfredlabs/alfred/core"
)

// DefaultNewsEndpoint is the newsdata.io latest-news API.
const DefaultNewsEndpoint = "https://newsdata.io/api/1/latest"

// NewsClient fetches news articles from newsdata.io. HTTP and transport
// failures come back as an error JSON object in the tool result, so the
// turn keeps going when the provider is down.
type NewsClient struct {
	apiKey   string
	endpoint string
	client   *http.Client
}

// NewNewsClient creates a client for the public API.
func NewNewsClient(apiKey string) *NewsClient {
	return NewNewsClientWithEndpoint(apiKey, DefaultNewsEndpoint)
}

// NewNewsClientWithEndpoint is used by tests to point at a fake server.
func NewNewsClientWithEndpoint(apiKey, endpoint string) *NewsClient {
	return &NewsClient{
		apiKey:   apiKey,
		endpoint: endpoint,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *NewsClient) fetch(ctx context.Context, query, language, category, country string) string {
	q := url.Values{}
	q.Set("apikey", c.apiKey)
	q.Set("q", query)
	if language == "" {
		language = "en"
	}
	q.Set("language", language)
	if category != "" {
		q.Set("category", category)
	}
	if country != "" {
		q.Set("country", country)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint+"?"+q.Encode(), nil)
	if err != nil {
		return newsError("Request Error: %v", err)
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return newsError("Request Error: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return newsError("HTTP Error: %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return newsError("Request Error: %v", err)
	}
	return string(body)
}

func newsError(format string, args ...interface{}) string {
	out, _ := json.Marshal(map[string]string{"error": fmt.Sprintf(format, args...)})
	return string(out)
}

type newsArgs struct {
	Query    string `json:"query"`
	Language string `json:"language"`
	Category string `json:"category"`
	Country  string `json:"country"`
}

// NewNewsTool searches the latest news articles.
func NewNewsTool(c *NewsClient) core.Tool {
	def := core.ToolDefinition{
		Name:        "fetch_latest_news",
		Description: "Fetch the latest news articles matching a keyword query, with optional language, category, and country filters.",
		InputSchema: ObjectSchema(map[string]interface{}{
			"query":    StringProperty("Keywords to search for in articles."),
			"language": StringProperty("Language filter, default 'en'."),
			"category": StringProperty("Optional category filter, e.g. 'business' or 'technology'."),
			"country":  StringProperty("Optional country filter, e.g. 'us'."),
		}, "query"),
		Blocking: true,
	}
	return core.NewFuncTool(def, func(ctx context.Context, params *core.ToolParams) (*core.ToolResult, error) {
		var args newsArgs
		if err := json.Unmarshal(params.Input, &args); err != nil {
			return nil, fmt.Errorf("decode fetch_latest_news arguments: %w", err)
		}
		return &core.ToolResult{
			Content: c.fetch(ctx, args.Query, args.Language, args.Category, args.Country),
		}, nil
	})
}
