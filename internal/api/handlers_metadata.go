package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/arai-works/contextd/internal/pipeline"
)

func (s *Server) handleExtractMetadata(w http.ResponseWriter, r *http.Request) {
	var req struct {
		DocumentURL string `json:"documentUrl"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		jsonError(w, "invalid request body: "+err.Error(), http.StatusBadRequest)
		return
	}
	if req.DocumentURL == "" {
		jsonError(w, "documentUrl is required", http.StatusBadRequest)
		return
	}

	result, err := s.orchestrator.Ingest(r.Context(), req.DocumentURL)
	if err != nil {
		jsonError(w, pipelineMessage(err), pipelineStatus(err))
		return
	}

	payload := map[string]any{
		"title":            result.Metadata.Title,
		"summary":          result.Metadata.Summary,
		"topics":           result.Metadata.Topics,
		"processingTimeMs": result.ProcessingTimeMs,
	}
	if result.ContextID != "" {
		payload["contextId"] = result.ContextID
	}
	jsonOK(w, payload)
}

func (s *Server) handleLLMStats(w http.ResponseWriter, r *http.Request) {
	jsonOK(w, map[string]any{
		"model": s.llm.Model(),
		"stats": s.llm.Stats.Snapshot(),
	})
}

// handleClientLog accepts structured log entries from the dashboard and
// forwards them to the server log.
func (s *Server) handleClientLog(w http.ResponseWriter, r *http.Request) {
	var entry map[string]any
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		jsonError(w, "invalid log entry: "+err.Error(), http.StatusBadRequest)
		return
	}
	s.log.Info("client log", "entry", entry)
	jsonOK(w, map[string]any{})
}

func pipelineStatus(err error) int {
	var perr *pipeline.Error
	if errors.As(err, &perr) {
		return perr.HTTPStatus()
	}
	return http.StatusInternalServerError
}

func pipelineMessage(err error) string {
	var perr *pipeline.Error
	if errors.As(err, &perr) && perr.Message != "" {
		return perr.Message
	}
	return "ingestion failed"
}
