package notion

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Block types we render. Anything else decodes as an opaque block with no
// text payload and is skipped by the flattener.
const (
	TypeParagraph    = "paragraph"
	TypeHeading1     = "heading_1"
	TypeHeading2     = "heading_2"
	TypeHeading3     = "heading_3"
	TypeQuote        = "quote"
	TypeCallout      = "callout"
	TypeBulletedItem = "bulleted_list_item"
	TypeNumberedItem = "numbered_list_item"
	TypeToDo         = "to_do"
	TypeToggle       = "toggle"
	TypeCode         = "code"
	TypeDivider      = "divider"
	TypeTable        = "table"
)

// RichTextSpan is one run of text inside a block.
type RichTextSpan struct {
	PlainText string `json:"plain_text"`
}

// Block is the narrow schema we keep from the Notion block object. The API
// nests the payload under a key named after the block type; UnmarshalJSON
// lifts the fields we care about out of that envelope.
type Block struct {
	ID          string         `json:"id"`
	Type        string         `json:"type"`
	HasChildren bool           `json:"has_children,omitempty"`
	RichText    []RichTextSpan `json:"rich_text,omitempty"`
	Checked     bool           `json:"checked,omitempty"`
	Language    string         `json:"language,omitempty"`
}

type blockPayload struct {
	RichText []RichTextSpan `json:"rich_text"`
	Checked  bool           `json:"checked"`
	Language string         `json:"language"`
}

func (b *Block) UnmarshalJSON(data []byte) error {
	var envelope struct {
		ID          string `json:"id"`
		Type        string `json:"type"`
		HasChildren bool   `json:"has_children"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return err
	}

	b.ID = envelope.ID
	b.Type = envelope.Type
	b.HasChildren = envelope.HasChildren
	b.RichText = nil
	b.Checked = false
	b.Language = ""

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	raw, ok := fields[envelope.Type]
	if !ok {
		return nil
	}

	// A payload we cannot decode is treated as an empty one, not an error;
	// the block still participates in ordering.
	var payload blockPayload
	if err := json.Unmarshal(raw, &payload); err == nil {
		b.RichText = payload.RichText
		b.Checked = payload.Checked
		b.Language = payload.Language
	}
	return nil
}

type pageProperty struct {
	Type  string         `json:"type"`
	Title []RichTextSpan `json:"title"`
}

// Page is the document-level metadata kept from the Notion page object.
type Page struct {
	ID             string `json:"id"`
	URL            string `json:"url,omitempty"`
	Title          string `json:"title"`
	CreatedTime    string `json:"created_time,omitempty"`
	LastEditedTime string `json:"last_edited_time,omitempty"`
}

func (p *Page) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID             string                  `json:"id"`
		URL            string                  `json:"url"`
		CreatedTime    string                  `json:"created_time"`
		LastEditedTime string                  `json:"last_edited_time"`
		Properties     map[string]pageProperty `json:"properties"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	p.ID = raw.ID
	p.URL = raw.URL
	p.CreatedTime = raw.CreatedTime
	p.LastEditedTime = raw.LastEditedTime
	p.Title = titleFromProperties(raw.ID, raw.Properties)
	return nil
}

func titleFromProperties(pageID string, props map[string]pageProperty) string {
	for _, prop := range props {
		if prop.Type == "title" && len(prop.Title) > 0 {
			return plainText(prop.Title)
		}
	}
	return fmt.Sprintf("Untitled (%s)", pageID)
}

func plainText(spans []RichTextSpan) string {
	var sb strings.Builder
	for _, s := range spans {
		sb.WriteString(s.PlainText)
	}
	return sb.String()
}
