package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/arai-works/contextd/internal/extract"
	"github.com/arai-works/contextd/internal/notion"
	"github.com/arai-works/contextd/internal/store"
)

// State is one phase of an ingestion run. Runs move strictly forward; any
// state can transition to failed, and no state is re-entered.
type State string

const (
	StateValidating State = "validating"
	StateFetching   State = "fetching"
	StateFlattening State = "flattening"
	StateExtracting State = "extracting_metadata"
	StatePersisting State = "persisting"
	StateDone       State = "done"
)

// Result is a completed ingestion. ContextID is empty when extraction
// succeeded but persistence did not.
type Result struct {
	Metadata         *extract.Metadata
	ContextID        string
	SourceURL        string
	ProcessingTimeMs int64
}

// Orchestrator sequences one ingestion: resolve, fetch, flatten, extract,
// persist. Each request is independent; the only shared state is the store.
type Orchestrator struct {
	notion *notion.Client
	llm    *extract.Client
	store  *store.Store
	log    *slog.Logger
}

func NewOrchestrator(nc *notion.Client, llm *extract.Client, st *store.Store, log *slog.Logger) *Orchestrator {
	return &Orchestrator{
		notion: nc,
		llm:    llm,
		store:  st,
		log:    log,
	}
}

// Ingest runs the full pipeline for one document URL. Failures before
// persistence abort the run with a classified *Error. A persistence failure
// is non-fatal: the extracted metadata is still returned, without a record
// id, and the storage error is only logged.
func (o *Orchestrator) Ingest(ctx context.Context, rawURL string) (*Result, error) {
	start := time.Now()

	ref, err := notion.ResolvePageURL(rawURL)
	if err != nil {
		return nil, o.fail(StateValidating, rawURL, err)
	}

	content, err := o.notion.FetchPage(ctx, ref.PageID)
	if err != nil {
		return nil, o.fail(StateFetching, rawURL, err)
	}

	text := notion.FlattenBlocks(content.Blocks)

	meta, err := o.llm.Extract(ctx, text)
	if err != nil {
		return nil, o.fail(StateExtracting, rawURL, err)
	}

	elapsed := time.Since(start).Milliseconds()
	rec := store.Record{
		ID:               uuid.New().String(),
		Title:            meta.Title,
		Summary:          meta.Summary,
		Topics:           meta.Topics,
		SourceURL:        rawURL,
		ExtractedText:    text,
		CreatedAt:        time.Now(),
		ProcessingTimeMs: elapsed,
	}

	result := &Result{
		Metadata:  meta,
		SourceURL: rawURL,
	}
	if err := o.store.Save(ctx, rec); err != nil {
		// A storage outage must not block the user-visible result.
		o.log.Error("storage failure, returning metadata without record",
			"state", string(StatePersisting), "url", rawURL, "error", err)
	} else {
		result.ContextID = rec.ID
	}

	result.ProcessingTimeMs = time.Since(start).Milliseconds()
	o.log.Info("ingestion complete",
		"state", string(StateDone),
		"page_id", ref.PageID,
		"blocks", len(content.Blocks),
		"context_id", result.ContextID,
		"processing_ms", result.ProcessingTimeMs,
	)
	return result, nil
}

// Store exposes the record store for direct use by API handlers.
func (o *Orchestrator) Store() *store.Store {
	return o.store
}

// NotionClient exposes the Notion client for the document endpoints.
func (o *Orchestrator) NotionClient() *notion.Client {
	return o.notion
}

func (o *Orchestrator) fail(state State, rawURL string, err error) error {
	perr := Classify(err)
	o.log.Error("ingestion failed",
		"state", string(state),
		"kind", string(perr.Kind),
		"url", rawURL,
		"error", err,
	)
	return perr
}
