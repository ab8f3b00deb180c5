package extract

import (
	"encoding/json"
	"strings"
)

// Metadata is the validated result of an extraction run.
type Metadata struct {
	Title   string   `json:"title"`
	Summary string   `json:"summary"`
	Topics  []string `json:"topics"`
}

// Valid reports whether all schema constraints hold: non-empty title and
// summary, and a topics array (possibly empty, but present).
func (m *Metadata) Valid() bool {
	return m != nil &&
		strings.TrimSpace(m.Title) != "" &&
		strings.TrimSpace(m.Summary) != "" &&
		m.Topics != nil
}

// ParseMetadata recovers a Metadata object from free-form generation output.
// The model is asked for JSON-only output but does not reliably comply, so
// this is best-effort recovery: every balanced brace-delimited substring is
// tried as a candidate, and the first one that parses and satisfies the
// schema wins.
func ParseMetadata(answer string) (*Metadata, error) {
	for _, candidate := range JSONCandidates(answer) {
		var m Metadata
		if err := json.Unmarshal([]byte(candidate), &m); err != nil {
			continue
		}
		if m.Valid() {
			return &m, nil
		}
	}
	return nil, ErrUnparsable
}

// JSONCandidates returns every top-level balanced {...} substring of s, in
// order of appearance. Braces inside JSON string literals do not count
// toward the balance.
func JSONCandidates(s string) []string {
	var candidates []string

	depth := 0
	start := -1
	inString := false
	escaped := false

	for i, r := range s {
		if inString {
			switch {
			case escaped:
				escaped = false
			case r == '\\':
				escaped = true
			case r == '"':
				inString = false
			}
			continue
		}

		switch r {
		case '"':
			if depth > 0 {
				inString = true
			}
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth > 0 {
				depth--
				if depth == 0 {
					candidates = append(candidates, s[start:i+1])
					start = -1
				}
			}
		}
	}
	return candidates
}
