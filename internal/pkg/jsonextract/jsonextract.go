// Package jsonextract pulls a JSON object out of raw model output.
// Models often wrap the document in prose or a fenced code block; this
// is a best-effort cleanup, not a parser.
package jsonextract

import (
	"regexp"
	"strings"
)

var fencedJSON = regexp.MustCompile("```json\\s*([\\s\\S]*?)\\s*```")

// Extract returns the JSON object embedded in raw: the body of a
// ```json fenced block when present, otherwise the substring from the
// first '{' to the last '}'. When neither pattern is found the input
// is returned unchanged and the caller's parse will fail downstream.
func Extract(raw string) string {
	if m := fencedJSON.FindStringSubmatch(raw); m != nil {
		return strings.TrimSpace(m[1])
	}

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start != -1 && end > start {
		return raw[start : end+1]
	}

	return raw
}
