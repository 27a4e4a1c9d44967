package hybrid

import (
	"encoding/json"
	"fmt"
	"html"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	scriptPattern = regexp.MustCompile(`(?is)<(script|style)[^>]*>.*?</(script|style)>`)
	tagPattern    = regexp.MustCompile(`(?s)<[^>]*>`)
	spacePattern  = regexp.MustCompile(`[ \t]+`)
	blankPattern  = regexp.MustCompile(`\n{3,}`)
)

// extractText converts raw bytes into analyzable plain text for the given
// normalized MIME type. Content that is not valid UTF-8 is rejected with
// ErrCorruptContent.
func extractText(content []byte, mimeType string) (string, error) {
	if !utf8.Valid(content) {
		return "", fmt.Errorf("%w: invalid utf-8 (%s)", ErrCorruptContent, mimeType)
	}
	text := string(content)

	switch mimeType {
	case "text/html":
		return stripHTML(text), nil
	case "application/json":
		if !json.Valid(content) {
			return "", fmt.Errorf("%w: malformed json", ErrCorruptContent)
		}
		return text, nil
	default:
		return text, nil
	}
}

// stripHTML removes markup and collapses the remaining whitespace so the
// rule-based pass sees readable text.
func stripHTML(s string) string {
	s = scriptPattern.ReplaceAllString(s, " ")
	s = tagPattern.ReplaceAllString(s, " ")
	s = html.UnescapeString(s)
	s = spacePattern.ReplaceAllString(s, " ")

	// Normalize line structure: trim each line, drop runs of blanks.
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	s = strings.Join(lines, "\n")
	s = blankPattern.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}
