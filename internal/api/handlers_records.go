package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/arai-works/contextd/internal/store"
)

func (s *Server) handleListRecords(w http.ResponseWriter, r *http.Request) {
	limit := queryInt(r, "limit", 50)
	offset := queryInt(r, "offset", 0)
	search := r.URL.Query().Get("search")

	var (
		records []store.Record
		err     error
	)
	if search != "" {
		records, err = s.orchestrator.Store().Search(r.Context(), search, limit)
	} else {
		records, err = s.orchestrator.Store().List(r.Context(), limit, offset)
	}
	if err != nil {
		s.log.Error("list records failed", "error", err)
		jsonError(w, "failed to list records", http.StatusInternalServerError)
		return
	}

	jsonOK(w, map[string]any{
		"records": records,
		"pagination": map[string]any{
			"limit":     limit,
			"offset":    offset,
			"hasSearch": search != "",
		},
	})
}

func (s *Server) handleGetRecord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	rec, err := s.orchestrator.Store().GetByID(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		jsonError(w, "record not found", http.StatusNotFound)
		return
	}
	if err != nil {
		s.log.Error("get record failed", "id", id, "error", err)
		jsonError(w, "failed to load record", http.StatusInternalServerError)
		return
	}
	jsonOK(w, map[string]any{"record": rec})
}

func (s *Server) handleDeleteRecord(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	deleted, err := s.orchestrator.Store().Delete(r.Context(), id)
	if err != nil {
		s.log.Error("delete record failed", "id", id, "error", err)
		jsonError(w, "failed to delete record", http.StatusInternalServerError)
		return
	}
	if !deleted {
		jsonError(w, "record not found", http.StatusNotFound)
		return
	}
	jsonOK(w, map[string]any{})
}

func (s *Server) handleClearRecords(w http.ResponseWriter, r *http.Request) {
	count, err := s.orchestrator.Store().ClearAll(r.Context())
	if err != nil {
		s.log.Error("clear records failed", "error", err)
		jsonError(w, "failed to clear records", http.StatusInternalServerError)
		return
	}
	jsonOK(w, map[string]any{"deletedCount": count})
}

func (s *Server) handleRecordStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.orchestrator.Store().GetStats(r.Context())
	if err != nil {
		s.log.Error("record stats failed", "error", err)
		jsonError(w, "failed to load stats", http.StatusInternalServerError)
		return
	}
	jsonOK(w, map[string]any{
		"totalRecords":  stats.TotalRecords,
		"recentRecords": stats.RecentRecords,
		"dbPath":        stats.DBPath,
	})
}

func queryInt(r *http.Request, key string, fallback int) int {
	if v := r.URL.Query().Get(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return fallback
}
