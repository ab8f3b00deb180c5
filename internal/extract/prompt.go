package extract

import "fmt"

const extractionPrompt = `Analyze the following document and extract its metadata as a complete JSON object.

Document content:
%s

Respond with this exact JSON structure. Output ONLY the JSON, with no other explanation:

{
  "title": "the document's exact title",
  "summary": "a detailed 2-3 sentence summary of the main content",
  "topics": ["topic1", "topic2", "topic3"]
}

Important: respond with complete JSON only.`

// BuildPrompt embeds the (already truncated) document text into the metadata
// extraction instruction.
func BuildPrompt(content string) string {
	return fmt.Sprintf(extractionPrompt, content)
}
