package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/arai-works/contextd/internal/config"
	"github.com/arai-works/contextd/internal/extract"
	"github.com/arai-works/contextd/internal/notion"
	"github.com/arai-works/contextd/internal/pipeline"
	"github.com/arai-works/contextd/internal/store"
)

const testPageID = "1234567890abcdef1234567890abcdef"

func newTestServer(t *testing.T, cfg config.Config) (*Server, *store.Store) {
	t.Helper()

	ns := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/v1/pages/"+testPageID:
			fmt.Fprint(w, `{"id":"`+testPageID+`","properties":{"title":{"type":"title","title":[{"plain_text":"My Page"}]}}}`)
		case r.URL.Path == "/v1/blocks/"+testPageID+"/children":
			fmt.Fprint(w, `{"results":[{"id":"b1","type":"paragraph","paragraph":{"rich_text":[{"plain_text":"Hello world"}]}}],"next_cursor":"","has_more":false}`)
		default:
			w.WriteHeader(http.StatusNotFound)
			fmt.Fprint(w, `{"object":"error","status":404,"code":"object_not_found","message":"no such page"}`)
		}
	}))
	t.Cleanup(ns.Close)

	es := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"result_code":200,"data":{"answer":"{\"title\":\"Hello\",\"summary\":\"A greeting\",\"topics\":[\"greeting\"]}"}}`)
	}))
	t.Cleanup(es.Close)

	st, err := store.Open(t.TempDir())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	nc := notion.NewClient(ns.URL, "notion-key", 5*time.Second, 10)
	llm := extract.NewClient("exaone-key", es.URL, "32b", 1500)
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	orch := pipeline.NewOrchestrator(nc, llm, st, log)

	cfg.NotionAPIKey = "notion-key"
	cfg.ExaoneAPIKey = "exaone-key"
	return NewServer(orch, llm, log, cfg), st
}

func doJSON(t *testing.T, srv *Server, method, path string, body any) (*httptest.ResponseRecorder, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, reader)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)

	var decoded map[string]any
	if err := json.Unmarshal(rr.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("response is not json (%s %s): %v\n%s", method, path, err, rr.Body.String())
	}
	return rr, decoded
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, config.Config{})
	rr, body := doJSON(t, srv, http.MethodGet, "/health", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if body["success"] != true || body["status"] != "ok" {
		t.Errorf("unexpected health payload: %v", body)
	}
	if body["notionConfigured"] != true {
		t.Errorf("expected notionConfigured true")
	}
}

func TestResolveDocument(t *testing.T) {
	srv, _ := newTestServer(t, config.Config{})

	rr, body := doJSON(t, srv, http.MethodPost, "/document/resolve",
		map[string]string{"url": "https://notion.so/My-Page-" + testPageID})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", rr.Code, body)
	}
	if body["pageId"] != testPageID || body["type"] != "page" {
		t.Errorf("unexpected payload: %v", body)
	}

	rr, body = doJSON(t, srv, http.MethodPost, "/document/resolve",
		map[string]string{"url": "https://example.com/nope"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
	if body["success"] != false {
		t.Errorf("expected success=false, got %v", body)
	}
}

func TestFetchDocument(t *testing.T) {
	srv, _ := newTestServer(t, config.Config{})

	rr, body := doJSON(t, srv, http.MethodPost, "/document/fetch",
		map[string]string{"pageId": testPageID})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", rr.Code, body)
	}
	page, ok := body["page"].(map[string]any)
	if !ok || page["title"] != "My Page" {
		t.Errorf("unexpected page payload: %v", body["page"])
	}
	blocks, ok := body["blocks"].([]any)
	if !ok || len(blocks) != 1 {
		t.Errorf("unexpected blocks payload: %v", body["blocks"])
	}

	rr, _ = doJSON(t, srv, http.MethodPost, "/document/fetch",
		map[string]string{"pageId": "feedfeedfeedfeedfeedfeedfeedfeed"})
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown page, got %d", rr.Code)
	}
}

func TestExtractMetadata_EndToEnd(t *testing.T) {
	srv, st := newTestServer(t, config.Config{})

	rr, body := doJSON(t, srv, http.MethodPost, "/metadata/extract",
		map[string]string{"documentUrl": "https://notion.so/My-Page-" + testPageID})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %v", rr.Code, body)
	}
	if body["title"] != "Hello" || body["summary"] != "A greeting" {
		t.Errorf("unexpected metadata: %v", body)
	}
	contextID, _ := body["contextId"].(string)
	if contextID == "" {
		t.Fatal("expected a contextId")
	}
	if _, ok := body["processingTimeMs"]; !ok {
		t.Error("expected processingTimeMs in payload")
	}

	rec, err := st.GetByID(context.Background(), contextID)
	if err != nil {
		t.Fatalf("record not persisted: %v", err)
	}
	if rec.ExtractedText != "Hello world" {
		t.Errorf("unexpected extracted text %q", rec.ExtractedText)
	}
}

func TestExtractMetadata_InvalidURL(t *testing.T) {
	srv, _ := newTestServer(t, config.Config{})
	rr, _ := doJSON(t, srv, http.MethodPost, "/metadata/extract",
		map[string]string{"documentUrl": "not a url"})
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}
}

func TestRecordsLifecycle(t *testing.T) {
	srv, st := newTestServer(t, config.Config{})
	ctx := context.Background()

	for i, title := range []string{"Alpha Notes", "Beta Plan", "Gamma Retro"} {
		err := st.Save(ctx, store.Record{
			ID:        fmt.Sprintf("r%d", i+1),
			Title:     title,
			Summary:   "summary",
			Topics:    []string{"t"},
			SourceURL: "https://notion.so/x",
			CreatedAt: time.Now().Add(time.Duration(i) * time.Minute),
		})
		if err != nil {
			t.Fatalf("seed record: %v", err)
		}
	}

	rr, body := doJSON(t, srv, http.MethodGet, "/records?limit=2&offset=0", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	records := body["records"].([]any)
	if len(records) != 2 {
		t.Errorf("expected 2 records, got %d", len(records))
	}
	pagination := body["pagination"].(map[string]any)
	if pagination["hasSearch"] != false {
		t.Errorf("expected hasSearch=false, got %v", pagination)
	}

	rr, body = doJSON(t, srv, http.MethodGet, "/records?search=beta", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	records = body["records"].([]any)
	if len(records) != 1 {
		t.Fatalf("expected 1 search hit, got %d", len(records))
	}

	rr, body = doJSON(t, srv, http.MethodGet, "/records/r1", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	record := body["record"].(map[string]any)
	if record["title"] != "Alpha Notes" {
		t.Errorf("unexpected record: %v", record)
	}

	rr, _ = doJSON(t, srv, http.MethodGet, "/records/unknown", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}

	rr, _ = doJSON(t, srv, http.MethodDelete, "/records/r1", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	rr, _ = doJSON(t, srv, http.MethodDelete, "/records/r1", nil)
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 on repeat delete, got %d", rr.Code)
	}

	rr, body = doJSON(t, srv, http.MethodGet, "/records/stats", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if body["totalRecords"] != float64(2) {
		t.Errorf("expected totalRecords 2, got %v", body["totalRecords"])
	}

	rr, body = doJSON(t, srv, http.MethodDelete, "/records", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if body["deletedCount"] != float64(2) {
		t.Errorf("expected deletedCount 2, got %v", body["deletedCount"])
	}
}

func TestAuthMiddleware_WhenConfigured(t *testing.T) {
	srv, _ := newTestServer(t, config.Config{APIKey: "sekrit"})

	req := httptest.NewRequest(http.MethodGet, "/records", nil)
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/records", nil)
	req.Header.Set("Authorization", "Bearer wrong")
	rr = httptest.NewRecorder()
	srv.ServeHTTP(rr, req)
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with bad token, got %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/records", nil)
	req.Header.Set("Authorization", "Bearer sekrit")
	rr = httptest.NewRecorder()
	srv.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200 with valid token, got %d", rr.Code)
	}

	// Health stays public.
	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	rr = httptest.NewRecorder()
	srv.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected public health endpoint, got %d", rr.Code)
	}
}

func TestClientLogSink(t *testing.T) {
	srv, _ := newTestServer(t, config.Config{})
	rr, body := doJSON(t, srv, http.MethodPost, "/logs",
		map[string]any{"level": "info", "message": "dashboard loaded"})
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	if body["success"] != true {
		t.Errorf("expected success envelope, got %v", body)
	}
}
