package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
	"unicode/utf8"
)

// Client calls the EXAONE text-generation API to extract document metadata.
type Client struct {
	apiKey     string
	baseURL    string
	model      string
	maxChars   int
	httpClient *http.Client

	// Stats collects call latencies for the /stats/llm endpoint.
	Stats *Stats
}

func NewClient(apiKey, baseURL, model string, maxChars int) *Client {
	if maxChars <= 0 {
		maxChars = 1500
	}
	return &Client{
		apiKey:   apiKey,
		baseURL:  baseURL,
		model:    model,
		maxChars: maxChars,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		Stats: NewStats(time.Hour),
	}
}

// Model returns the configured model name.
func (c *Client) Model() string {
	return c.model
}

type generationRequest struct {
	Model       string  `json:"model"`
	Query       string  `json:"query"`
	Temperature float64 `json:"temperature"`
	MaxTokens   int     `json:"max_tokens"`
	TopP        float64 `json:"top_p"`
}

// Extract submits the document text and recovers validated metadata from the
// streamed response. Text beyond maxChars is dropped before the prompt is
// built; this bounds cost and latency, not correctness.
func (c *Client) Extract(ctx context.Context, text string) (*Metadata, error) {
	if c.apiKey == "" {
		return nil, ErrMissingCredential
	}

	if utf8.RuneCountInString(text) > c.maxChars {
		runes := []rune(text)
		text = string(runes[:c.maxChars])
	}

	reqBody := generationRequest{
		Model:       c.model,
		Query:       BuildPrompt(text),
		Temperature: 0.1,
		MaxTokens:   500,
		TopP:        0.9,
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/chatexaone/text-generation", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json; charset=utf-8")
	httpReq.Header.Set("x-api-key", c.apiKey)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("generation api: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, &UpstreamError{Status: resp.StatusCode, Message: string(msg)}
	}

	answer, err := ReassembleStream(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read stream: %w", err)
	}
	c.Stats.Record(time.Since(start).Milliseconds())

	return ParseMetadata(answer)
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
