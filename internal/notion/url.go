package notion

import (
	"errors"
	"regexp"
	"strings"
)

// DocKind distinguishes plain pages from database (collection view) links.
type DocKind string

const (
	KindPage     DocKind = "page"
	KindDatabase DocKind = "database"
)

// DocumentRef identifies one Notion document after URL resolution.
type DocumentRef struct {
	PageID string  `json:"pageId"`
	Kind   DocKind `json:"type"`
}

// ErrInvalidURL is returned when a link does not match any known Notion shape.
var ErrInvalidURL = errors.New("not a recognized document URL")

// A Notion id is 32 hex chars, with or without UUID hyphenation. The path may
// carry a workspace segment and a human-readable slug prefix before the id.
var (
	pagePattern = regexp.MustCompile(
		`^https?://(www\.)?notion\.so/([a-zA-Z0-9-]+/)?([a-zA-Z0-9-]*-)?([a-f0-9]{32}|[a-f0-9]{8}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{12})(\?.*)?$`)
	databasePattern = regexp.MustCompile(
		`^https?://(www\.)?notion\.so/([a-zA-Z0-9-]+/)?([a-zA-Z0-9-]*-)?([a-f0-9]{32}|[a-f0-9]{8}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{12})\?.*v=([a-f0-9]{32}).*$`)
)

// ResolvePageURL extracts the canonical page id from a Notion URL.
// It never touches the network. The database pattern is tried first because
// it is the more specific of the two (a view id in the query string).
func ResolvePageURL(rawURL string) (DocumentRef, error) {
	u := strings.TrimSpace(rawURL)
	if u == "" {
		return DocumentRef{}, ErrInvalidURL
	}

	if m := databasePattern.FindStringSubmatch(u); m != nil {
		return DocumentRef{PageID: canonicalID(m[4]), Kind: KindDatabase}, nil
	}
	if m := pagePattern.FindStringSubmatch(u); m != nil {
		return DocumentRef{PageID: canonicalID(m[4]), Kind: KindPage}, nil
	}
	return DocumentRef{}, ErrInvalidURL
}

func canonicalID(id string) string {
	return strings.ToLower(strings.ReplaceAll(id, "-", ""))
}
