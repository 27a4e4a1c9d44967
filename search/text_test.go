package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/tamylaa/content-skimmer/core"
)

func TestTokenize(t *testing.T) {
	t.Run("lowercases and trims punctuation", func(t *testing.T) {
		tokens := Tokenize("Quarterly Report, (Final)!")
		assert.Equal(t, []string{"quarterly", "report", "final"}, tokens)
	})

	t.Run("drops stop words", func(t *testing.T) {
		tokens := Tokenize("the report of the quarter")
		assert.Equal(t, []string{"report", "quarter"}, tokens)
	})

	t.Run("keeps duplicates", func(t *testing.T) {
		tokens := Tokenize("revenue revenue revenue")
		assert.Len(t, tokens, 3)
	})

	t.Run("empty input", func(t *testing.T) {
		assert.Empty(t, Tokenize(""))
		assert.Empty(t, Tokenize("   "))
	})

	t.Run("only stop words", func(t *testing.T) {
		assert.Empty(t, Tokenize("the a an of"))
	})
}

func TestTokenSet(t *testing.T) {
	set := TokenSet("Revenue revenue grew; revenue!")
	assert.Equal(t, map[string]bool{"revenue": true, "grew": true}, set)
}

func TestDocumentText(t *testing.T) {
	doc := &core.SearchDocument{
		ID:       "f-1",
		Title:    "report.pdf",
		Summary:  "Quarterly revenue grew",
		Entities: []string{"Acme Corp"},
		Topics:   []string{"finance"},
		Filename: "report.pdf",
	}

	text := DocumentText(doc)

	assert.Contains(t, text, "report.pdf")
	assert.Contains(t, text, "Quarterly revenue grew")
	assert.Contains(t, text, "Acme Corp")
	assert.Contains(t, text, "finance")
}

func TestFiltersMatch(t *testing.T) {
	doc := &core.SearchDocument{
		ID:       "f-1",
		UserID:   "u-1",
		MimeType: "text/plain",
	}

	tests := []struct {
		name    string
		filters Filters
		want    bool
	}{
		{"empty filters match everything", Filters{}, true},
		{"matching user", Filters{UserID: "u-1"}, true},
		{"other user", Filters{UserID: "u-2"}, false},
		{"matching mime type", Filters{MimeType: "text/plain"}, true},
		{"other mime type", Filters{MimeType: "application/pdf"}, false},
		{"both applied", Filters{UserID: "u-1", MimeType: "text/plain"}, true},
		{"one of two fails", Filters{UserID: "u-1", MimeType: "application/pdf"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.filters.Match(doc))
		})
	}
}

func TestDocumentSerializationRoundTrip(t *testing.T) {
	uploaded := time.Date(2026, 2, 10, 9, 30, 0, 0, time.UTC)
	analyzed := time.Date(2026, 2, 11, 14, 45, 0, 0, time.UTC)
	doc := &core.SearchDocument{
		ID:           "f-1",
		Title:        "report.pdf",
		Summary:      "Quarterly revenue grew 12%",
		Entities:     []string{"Acme Corp", "Jane Smith"},
		Topics:       []string{"finance", "revenue"},
		UserID:       "u-1",
		Filename:     "report.pdf",
		MimeType:     "application/pdf",
		UploadedAt:   uploaded,
		LastAnalyzed: analyzed,
	}

	data := MarshalDocument(doc)
	got, err := UnmarshalDocument(data)

	assert.NoError(t, err)
	assert.Equal(t, doc.ID, got.ID)
	assert.Equal(t, doc.Title, got.Title)
	assert.Equal(t, doc.Summary, got.Summary)
	assert.Equal(t, doc.Entities, got.Entities)
	assert.Equal(t, doc.Topics, got.Topics)
	assert.Equal(t, doc.UserID, got.UserID)
	assert.Equal(t, doc.Filename, got.Filename)
	assert.Equal(t, doc.MimeType, got.MimeType)
	assert.WithinDuration(t, uploaded, got.UploadedAt, time.Microsecond)
	assert.WithinDuration(t, analyzed, got.LastAnalyzed, time.Microsecond)
}

func TestDocumentSerializationEmptySlices(t *testing.T) {
	doc := &core.SearchDocument{ID: "f-2", Title: "empty.txt"}

	got, err := UnmarshalDocument(MarshalDocument(doc))

	assert.NoError(t, err)
	assert.Equal(t, "f-2", got.ID)
	assert.Empty(t, got.Entities)
	assert.Empty(t, got.Topics)
}

func TestDocumentSerializationTruncated(t *testing.T) {
	doc := &core.SearchDocument{
		ID:      "f-3",
		Title:   "report.pdf",
		Summary: "A summary long enough to truncate",
	}
	data := MarshalDocument(doc)

	_, err := UnmarshalDocument(data[:len(data)/2])

	assert.Error(t, err)
}
