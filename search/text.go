package search

import (
	"strings"

	"github.com/tamylaa/content-skimmer/core"
)

// Stop words excluded from index and query tokens
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "to": true, "of": true, "and": true, "in": true, "that": true,
	"have": true, "it": true, "for": true, "not": true, "on": true, "with": true,
	"as": true, "you": true, "do": true, "at": true, "this": true, "but": true,
	"by": true, "from": true,
}

// Tokenize splits text into search tokens: lowercased, punctuation trimmed,
// stop words removed. Every engine indexes and queries through this so the
// same text always produces the same tokens.
func Tokenize(text string) []string {
	words := strings.Fields(text)
	tokens := make([]string, 0, len(words))

	for _, word := range words {
		cleaned := strings.ToLower(strings.Trim(word, ".,!?;:'\"-()[]{}"))
		if cleaned != "" && !stopWords[cleaned] {
			tokens = append(tokens, cleaned)
		}
	}

	return tokens
}

// TokenSet returns the unique tokens of text.
func TokenSet(text string) map[string]bool {
	tokens := Tokenize(text)
	set := make(map[string]bool, len(tokens))
	for _, token := range tokens {
		set[token] = true
	}
	return set
}

// DocumentText concatenates the searchable fields of a document into the
// text engines tokenize for indexing.
func DocumentText(doc *core.SearchDocument) string {
	parts := make([]string, 0, 3+len(doc.Entities)+len(doc.Topics))
	parts = append(parts, doc.Title, doc.Summary, doc.Filename)
	parts = append(parts, doc.Entities...)
	parts = append(parts, doc.Topics...)
	return strings.Join(parts, " ")
}
