package api

import (
	"encoding/json"
	"net/http"

	"github.com/arai-works/contextd/internal/notion"
	"github.com/arai-works/contextd/internal/pipeline"
)

func (s *Server) handleResolveDocument(w http.ResponseWriter, r *http.Request) {
	var req struct {
		URL string `json:"url"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.URL == "" {
		jsonError(w, "url is required", http.StatusBadRequest)
		return
	}

	ref, err := notion.ResolvePageURL(req.URL)
	if err != nil {
		jsonError(w, "not a valid Notion URL", http.StatusBadRequest)
		return
	}

	jsonOK(w, map[string]any{
		"pageId": ref.PageID,
		"type":   ref.Kind,
	})
}

func (s *Server) handleFetchDocument(w http.ResponseWriter, r *http.Request) {
	var req struct {
		PageID string `json:"pageId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.PageID == "" {
		jsonError(w, "pageId is required", http.StatusBadRequest)
		return
	}

	content, err := s.orchestrator.NotionClient().FetchPage(r.Context(), req.PageID)
	if err != nil {
		perr := pipeline.Classify(err)
		jsonError(w, perr.Message, perr.HTTPStatus())
		return
	}

	jsonOK(w, map[string]any{
		"page":   content.Page,
		"blocks": content.Blocks,
	})
}
