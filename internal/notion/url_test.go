package notion

import (
	"errors"
	"testing"
)

func TestResolvePageURL_PlainPage(t *testing.T) {
	tests := []struct {
		name   string
		url    string
		wantID string
	}{
		{
			name:   "bare id",
			url:    "https://notion.so/1234567890abcdef1234567890abcdef",
			wantID: "1234567890abcdef1234567890abcdef",
		},
		{
			name:   "slug prefix",
			url:    "https://notion.so/My-Page-1234567890abcdef1234567890abcdef",
			wantID: "1234567890abcdef1234567890abcdef",
		},
		{
			name:   "www and workspace segment",
			url:    "https://www.notion.so/acme/Roadmap-1234567890abcdef1234567890abcdef",
			wantID: "1234567890abcdef1234567890abcdef",
		},
		{
			name:   "hyphenated uuid form",
			url:    "https://notion.so/12345678-90ab-cdef-1234-567890abcdef",
			wantID: "1234567890abcdef1234567890abcdef",
		},
		{
			name:   "http scheme",
			url:    "http://notion.so/1234567890abcdef1234567890abcdef",
			wantID: "1234567890abcdef1234567890abcdef",
		},
		{
			name:   "leading and trailing whitespace",
			url:    "  https://notion.so/1234567890abcdef1234567890abcdef  ",
			wantID: "1234567890abcdef1234567890abcdef",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ref, err := ResolvePageURL(tt.url)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if ref.PageID != tt.wantID {
				t.Errorf("expected id %q, got %q", tt.wantID, ref.PageID)
			}
			if ref.Kind != KindPage {
				t.Errorf("expected kind %q, got %q", KindPage, ref.Kind)
			}
		})
	}
}

func TestResolvePageURL_HyphenationIsCanonical(t *testing.T) {
	plain, err := ResolvePageURL("https://notion.so/1234567890abcdef1234567890abcdef")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	hyphenated, err := ResolvePageURL("https://notion.so/12345678-90ab-cdef-1234-567890abcdef")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if plain.PageID != hyphenated.PageID {
		t.Errorf("ids differ by hyphenation: %q vs %q", plain.PageID, hyphenated.PageID)
	}
}

func TestResolvePageURL_DatabaseView(t *testing.T) {
	url := "https://notion.so/acme/Tasks-1234567890abcdef1234567890abcdef?v=fedcba0987654321fedcba0987654321"
	ref, err := ResolvePageURL(url)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ref.Kind != KindDatabase {
		t.Errorf("expected kind %q, got %q", KindDatabase, ref.Kind)
	}
	if ref.PageID != "1234567890abcdef1234567890abcdef" {
		t.Errorf("unexpected id %q", ref.PageID)
	}
}

func TestResolvePageURL_Invalid(t *testing.T) {
	tests := []struct {
		name string
		url  string
	}{
		{"empty", ""},
		{"whitespace only", "   "},
		{"wrong host", "https://example.com/1234567890abcdef1234567890abcdef"},
		{"id too short", "https://notion.so/1234567890abcdef"},
		{"non-hex id", "https://notion.so/zzzz567890abcdef1234567890abcdef"},
		{"not a url", "just some text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ResolvePageURL(tt.url)
			if !errors.Is(err, ErrInvalidURL) {
				t.Errorf("expected ErrInvalidURL, got %v", err)
			}
		})
	}
}
