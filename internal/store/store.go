package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// ErrNotFound is returned when no record exists with the requested id.
var ErrNotFound = errors.New("record not found")

// Record is one persisted extraction result. Records are inserted once and
// never updated; only insert and delete exist.
type Record struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Summary          string    `json:"summary"`
	Topics           []string  `json:"topics"`
	SourceURL        string    `json:"sourceUrl"`
	ExtractedText    string    `json:"extractedText,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
	ProcessingTimeMs int64     `json:"processingTimeMs"`
}

// Stats summarizes the record set.
type Stats struct {
	TotalRecords  int64  `json:"totalRecords"`
	RecentRecords int64  `json:"recentRecords"`
	DBPath        string `json:"dbPath"`
}

// Store is the SQLite-backed context record store.
type Store struct {
	db   *sql.DB
	path string
}

const schema = `
CREATE TABLE IF NOT EXISTS contexts (
	id                 TEXT PRIMARY KEY,
	title              TEXT NOT NULL,
	summary            TEXT NOT NULL,
	topics             TEXT NOT NULL,
	source_url         TEXT NOT NULL,
	extracted_text     TEXT NOT NULL,
	created_at         TEXT NOT NULL,
	processing_time_ms INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_contexts_created_at ON contexts(created_at);
CREATE INDEX IF NOT EXISTS idx_contexts_title ON contexts(title);
CREATE INDEX IF NOT EXISTS idx_contexts_source_url ON contexts(source_url);
`

// Open opens (creating if needed) the store under dataDir.
func Open(dataDir string) (*Store, error) {
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	dbPath := filepath.Join(dataDir, "contextd.db")

	// WAL mode so concurrent ingestion requests don't serialize on the file.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &Store{db: db, path: dbPath}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Save inserts a new record. The id is caller-supplied; a collision is a
// programming error surfaced as a constraint violation.
func (s *Store) Save(ctx context.Context, rec Record) error {
	topics, err := json.Marshal(topicsOrEmpty(rec.Topics))
	if err != nil {
		return fmt.Errorf("marshal topics: %w", err)
	}
	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO contexts (id, title, summary, topics, source_url, extracted_text, created_at, processing_time_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.Title, rec.Summary, string(topics), rec.SourceURL,
		rec.ExtractedText, formatTime(createdAt), rec.ProcessingTimeMs,
	)
	if err != nil {
		return fmt.Errorf("insert record %s: %w", rec.ID, err)
	}
	return nil
}

// List returns records ordered most recent first.
func (s *Store) List(ctx context.Context, limit, offset int) ([]Record, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, summary, topics, source_url, created_at, processing_time_ms
		FROM contexts
		ORDER BY created_at DESC
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// Search matches query case-insensitively against title or summary,
// most recent first.
func (s *Store) Search(ctx context.Context, query string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	pattern := "%" + query + "%"
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, summary, topics, source_url, created_at, processing_time_ms
		FROM contexts
		WHERE title LIKE ? OR summary LIKE ?
		ORDER BY created_at DESC
		LIMIT ?`, pattern, pattern, limit)
	if err != nil {
		return nil, fmt.Errorf("search records: %w", err)
	}
	defer rows.Close()
	return scanRecords(rows)
}

// GetByID returns one record including its extracted text.
func (s *Store) GetByID(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, title, summary, topics, source_url, extracted_text, created_at, processing_time_ms
		FROM contexts
		WHERE id = ?`, id)

	var rec Record
	var topics, createdAt string
	err := row.Scan(&rec.ID, &rec.Title, &rec.Summary, &topics, &rec.SourceURL,
		&rec.ExtractedText, &createdAt, &rec.ProcessingTimeMs)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get record %s: %w", id, err)
	}
	rec.Topics = parseTopics(topics)
	rec.CreatedAt = parseTime(createdAt)
	return &rec, nil
}

// Delete removes one record. The bool reports whether a row was removed, so
// deleting an unknown id is "not found" rather than an error.
func (s *Store) Delete(ctx context.Context, id string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM contexts WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete record %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete record %s: %w", id, err)
	}
	return n > 0, nil
}

// ClearAll removes every record and reports how many were removed. The count
// is before minus after, which stays correct under concurrent writers.
func (s *Store) ClearAll(ctx context.Context) (int64, error) {
	before, err := s.count(ctx)
	if err != nil {
		return 0, err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM contexts`); err != nil {
		return 0, fmt.Errorf("clear records: %w", err)
	}
	after, err := s.count(ctx)
	if err != nil {
		return 0, err
	}
	return before - after, nil
}

// GetStats returns the total count and the count created in the last 7 days.
func (s *Store) GetStats(ctx context.Context) (Stats, error) {
	total, err := s.count(ctx)
	if err != nil {
		return Stats{}, err
	}

	cutoff := formatTime(time.Now().AddDate(0, 0, -7))
	var recent int64
	err = s.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM contexts WHERE created_at >= ?`, cutoff).Scan(&recent)
	if err != nil {
		return Stats{}, fmt.Errorf("count recent records: %w", err)
	}

	return Stats{TotalRecords: total, RecentRecords: recent, DBPath: s.path}, nil
}

func (s *Store) count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM contexts`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count records: %w", err)
	}
	return n, nil
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	records := []Record{}
	for rows.Next() {
		var rec Record
		var topics, createdAt string
		if err := rows.Scan(&rec.ID, &rec.Title, &rec.Summary, &topics,
			&rec.SourceURL, &createdAt, &rec.ProcessingTimeMs); err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		rec.Topics = parseTopics(topics)
		rec.CreatedAt = parseTime(createdAt)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return records, nil
}

func topicsOrEmpty(topics []string) []string {
	if topics == nil {
		return []string{}
	}
	return topics
}

func parseTopics(raw string) []string {
	var topics []string
	if err := json.Unmarshal([]byte(raw), &topics); err != nil || topics == nil {
		return []string{}
	}
	return topics
}

// Timestamps are stored as fixed-width RFC 3339 UTC strings so lexical
// order matches chronological order. RFC3339Nano would trim trailing zeros
// and break that property.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}
