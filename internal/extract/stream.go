package extract

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"
)

// The generation endpoint streams newline-delimited JSON fragments of the
// shape {"result_code": 200, "data": {"answer": "..."}}. Fragments sometimes
// arrive glued together on one line ("}{" with no separator) and individual
// fragments can be malformed; both are handled here, in arrival order.

type streamFragment struct {
	ResultCode int `json:"result_code"`
	Data       struct {
		Answer string `json:"answer"`
	} `json:"data"`
}

const successResultCode = 200

// ReassembleStream folds the streamed body into one candidate answer by
// concatenating the answer field of every successful fragment. Malformed
// fragments are skipped, not fatal.
func ReassembleStream(r io.Reader) (string, error) {
	var full strings.Builder

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 4<<20)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		for _, part := range splitGluedFragments(line) {
			var frag streamFragment
			if err := json.Unmarshal([]byte(part), &frag); err != nil {
				continue
			}
			if frag.ResultCode == successResultCode {
				full.WriteString(frag.Data.Answer)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return full.String(), err
	}
	return full.String(), nil
}

// splitGluedFragments splits a line on "}{" boundaries so each piece is an
// independent JSON object again. A "}{" inside a JSON string would be split
// too; that fragment then fails to parse and is skipped, which matches how
// the upstream actually delimits its stream.
func splitGluedFragments(line string) []string {
	if !strings.Contains(line, "}{") {
		return []string{line}
	}
	parts := strings.Split(line, "}{")
	out := make([]string, len(parts))
	for i, p := range parts {
		if i > 0 {
			p = "{" + p
		}
		if i < len(parts)-1 {
			p = p + "}"
		}
		out[i] = p
	}
	return out
}
