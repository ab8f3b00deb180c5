package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/arai-works/contextd/internal/config"
	"github.com/arai-works/contextd/internal/extract"
	"github.com/arai-works/contextd/internal/pipeline"
)

// Server is the HTTP API for the context extraction service.
type Server struct {
	router       chi.Router
	orchestrator *pipeline.Orchestrator
	llm          *extract.Client
	log          *slog.Logger
	cfg          config.Config
}

// NewServer creates and configures the HTTP server.
func NewServer(orch *pipeline.Orchestrator, llm *extract.Client, log *slog.Logger, cfg config.Config) *Server {
	s := &Server{
		orchestrator: orch,
		llm:          llm,
		log:          log,
		cfg:          cfg,
	}
	s.setupRoutes()
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) setupRoutes() {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(RequestLogger(s.log))

	// Public endpoints.
	r.Get("/health", s.handleHealth)
	r.Post("/logs", s.handleClientLog)

	r.Group(func(r chi.Router) {
		// Auth is opt-in: without a configured key the service runs open,
		// which matches local single-user use.
		if s.cfg.APIKey != "" {
			r.Use(AuthMiddleware(s.cfg.APIKey, s.log))
		}

		r.Post("/document/resolve", s.handleResolveDocument)
		r.Post("/document/fetch", s.handleFetchDocument)
		r.Post("/metadata/extract", s.handleExtractMetadata)

		r.Get("/records", s.handleListRecords)
		r.Get("/records/stats", s.handleRecordStats)
		r.Get("/records/{id}", s.handleGetRecord)
		r.Delete("/records/{id}", s.handleDeleteRecord)
		r.Delete("/records", s.handleClearRecords)

		r.Get("/stats/llm", s.handleLLMStats)
	})

	s.router = r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	jsonOK(w, map[string]any{
		"status":               "ok",
		"timestamp":            time.Now().UTC().Format(time.RFC3339),
		"notionConfigured":     s.cfg.NotionAPIKey != "",
		"generationConfigured": s.cfg.ExaoneAPIKey != "",
	})
}
