package notion

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const (
	notionVersion = "2022-06-28"
	pageSize      = 100

	// Error codes from the Notion error taxonomy. Classification goes by
	// code, not by HTTP status.
	CodeObjectNotFound = "object_not_found"
	CodeUnauthorized   = "unauthorized"
	CodeRateLimited    = "rate_limited"
)

// APIError is a classified error returned by the Notion API.
type APIError struct {
	Status  int    `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("notion api %s (status %d): %s", e.Code, e.Status, e.Message)
}

// PageContent is a page plus its full ordered root block list.
type PageContent struct {
	Page   *Page   `json:"page"`
	Blocks []Block `json:"blocks"`
}

// Client talks to the Notion REST API. It holds no per-document state and is
// safe for concurrent use. Requests are throttled client-side to stay inside
// Notion's ~3 req/s allowance.
type Client struct {
	baseURL    string
	apiKey     string
	maxPages   int
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewClient(baseURL, apiKey string, timeout time.Duration, maxPages int) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	if maxPages <= 0 {
		maxPages = 1000
	}
	return &Client{
		baseURL:  baseURL,
		apiKey:   apiKey,
		maxPages: maxPages,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		limiter: rate.NewLimiter(rate.Limit(3), 3),
	}
}

// GetPage retrieves document-level metadata (title property, timestamps).
func (c *Client) GetPage(ctx context.Context, pageID string) (*Page, error) {
	var page Page
	if err := c.get(ctx, "/v1/pages/"+url.PathEscape(pageID), &page); err != nil {
		return nil, err
	}
	return &page, nil
}

type blockListResponse struct {
	Results    []Block `json:"results"`
	NextCursor string  `json:"next_cursor"`
	HasMore    bool    `json:"has_more"`
}

// ListBlocks retrieves the full root block list of a page, following the
// pagination cursor until the API stops returning one. Pages are accumulated
// in request order; an empty page contributes nothing. The loop is capped at
// maxPages in case the upstream never clears the cursor.
func (c *Client) ListBlocks(ctx context.Context, pageID string) ([]Block, error) {
	var blocks []Block
	cursor := ""
	for page := 0; page < c.maxPages; page++ {
		path := fmt.Sprintf("/v1/blocks/%s/children?page_size=%d", url.PathEscape(pageID), pageSize)
		if cursor != "" {
			path += "&start_cursor=" + url.QueryEscape(cursor)
		}

		var resp blockListResponse
		if err := c.get(ctx, path, &resp); err != nil {
			return nil, err
		}
		blocks = append(blocks, resp.Results...)

		if resp.NextCursor == "" {
			break
		}
		cursor = resp.NextCursor
	}
	return blocks, nil
}

// FetchPage retrieves a page's metadata and its complete block list.
func (c *Client) FetchPage(ctx context.Context, pageID string) (*PageContent, error) {
	page, err := c.GetPage(ctx, pageID)
	if err != nil {
		return nil, err
	}
	blocks, err := c.ListBlocks(ctx, pageID)
	if err != nil {
		return nil, err
	}
	return &PageContent{Page: page, Blocks: blocks}, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Notion-Version", notionVersion)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("notion api: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return classifyError(resp.StatusCode, body)
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func classifyError(status int, body []byte) error {
	var apiErr APIError
	if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Code != "" {
		if apiErr.Status == 0 {
			apiErr.Status = status
		}
		return &apiErr
	}
	return &APIError{
		Status:  status,
		Code:    "unknown",
		Message: string(body),
	}
}

// Close releases idle connections.
func (c *Client) Close() {
	c.httpClient.CloseIdleConnections()
}
