// Copyright 2026 Tamyla
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package hybrid

import (
	"math"
	"regexp"
	"sort"
	"strings"

	"github.com/tamylaa/content-skimmer/core"
)

const (
	maxSummaryChars = 240
	maxEntities     = 16
	maxTopics       = 8
)

// Stop words filtered out of topic candidates and used for the language
// heuristic.
var stopWords = map[string]bool{
	"the": true, "a": true, "an": true, "be": true, "is": true, "are": true,
	"was": true, "were": true, "to": true, "of": true, "and": true, "in": true,
	"that": true, "have": true, "has": true, "it": true, "for": true,
	"not": true, "on": true, "with": true, "as": true, "you": true,
	"do": true, "at": true, "this": true, "but": true, "by": true,
	"from": true, "they": true, "we": true, "or": true, "will": true,
	"would": true, "there": true, "their": true, "what": true, "so": true,
	"if": true, "about": true, "which": true, "when": true, "can": true,
	"all": true, "its": true, "into": true, "than": true, "them": true,
	"these": true, "more": true, "been": true, "also": true, "our": true,
}

var positiveWords = map[string]bool{
	"good": true, "great": true, "excellent": true, "positive": true,
	"success": true, "successful": true, "improve": true, "improved": true,
	"growth": true, "profit": true, "win": true, "benefit": true,
	"strong": true, "effective": true, "efficient": true, "happy": true,
	"love": true, "best": true, "innovative": true, "opportunity": true,
}

var negativeWords = map[string]bool{
	"bad": true, "poor": true, "negative": true, "fail": true,
	"failure": true, "failed": true, "loss": true, "decline": true,
	"risk": true, "problem": true, "issue": true, "weak": true,
	"worse": true, "worst": true, "concern": true, "critical": true,
	"error": true, "defect": true, "delay": true, "hate": true,
}

// Entity extraction patterns in emission order.
var (
	emailPattern = regexp.MustCompile(`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`)
	urlPattern   = regexp.MustCompile(`https?://[^\s<>"')]+`)
	datePattern  = regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}\b`)
	moneyPattern = regexp.MustCompile(`[$€£]\s?\d+(?:[.,]\d+)*(?:\s?(?:million|billion|thousand))?`)
	namePattern  = regexp.MustCompile(`\b[A-Z][a-zA-Z0-9'&-]*(?: [A-Z][a-zA-Z0-9'&-]*)*\b`)
)

// analyzeRules runs the deterministic rule-based pass over extracted text.
// It never fails; empty text yields an empty but valid result.
func analyzeRules(text string) *core.AnalysisResult {
	sentences := splitSentences(text)
	tokens := tokenizeAndFilter(text)
	words := strings.Fields(text)

	return &core.AnalysisResult{
		Summary:  summarize(sentences),
		Entities: extractEntities(text),
		Topics:   extractTopics(tokens),
		Enrichment: map[string]any{
			"wordCount":        len(words),
			"sentenceCount":    len(sentences),
			"language":         detectLanguage(words),
			"sentimentScore":   sentimentScore(tokens),
			"readabilityScore": readabilityScore(words, sentences),
		},
		Status: core.AnalysisStatusCompleted,
	}
}

// splitSentences breaks text into sentences on terminal punctuation.
func splitSentences(text string) []string {
	var sentences []string
	var current strings.Builder

	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		current.WriteRune(r)
		if r == '.' || r == '!' || r == '?' {
			// Consume the whole punctuation run before splitting.
			for i+1 < len(runes) && (runes[i+1] == '.' || runes[i+1] == '!' || runes[i+1] == '?') {
				i++
				current.WriteRune(runes[i])
			}
			if s := strings.TrimSpace(current.String()); s != "" {
				sentences = append(sentences, s)
			}
			current.Reset()
		}
	}
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}
	return sentences
}

// summarize joins leading sentences up to the summary length cap.
func summarize(sentences []string) string {
	if len(sentences) == 0 {
		return ""
	}

	var b strings.Builder
	for _, s := range sentences {
		if b.Len() > 0 && b.Len()+len(s)+1 > maxSummaryChars {
			break
		}
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(s)
	}

	summary := b.String()
	if len(summary) > maxSummaryChars {
		summary = strings.TrimSpace(summary[:maxSummaryChars])
	}
	return summary
}

// tokenizeAndFilter splits text into words, lowercases, trims punctuation,
// and removes stop words and short or numeric tokens.
func tokenizeAndFilter(text string) []string {
	words := strings.Fields(text)
	filtered := make([]string, 0, len(words))

	for _, word := range words {
		cleaned := strings.ToLower(strings.Trim(word, ".,!?;:'\"-()[]{}"))
		if len(cleaned) < 3 || stopWords[cleaned] || isNumeric(cleaned) {
			continue
		}
		filtered = append(filtered, cleaned)
	}
	return filtered
}

func isNumeric(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

// extractEntities collects emails, URLs, ISO dates, money amounts and
// capitalized name phrases, in that category order, deduplicated and in
// first-appearance order within each category.
func extractEntities(text string) []string {
	seen := make(map[string]bool)
	entities := make([]string, 0, maxEntities)

	add := func(matches []string) {
		for _, m := range matches {
			m = strings.TrimSpace(m)
			if m == "" || seen[m] || len(entities) >= maxEntities {
				continue
			}
			seen[m] = true
			entities = append(entities, m)
		}
	}

	add(emailPattern.FindAllString(text, -1))
	add(urlPattern.FindAllString(text, -1))
	add(datePattern.FindAllString(text, -1))
	add(moneyPattern.FindAllString(text, -1))
	add(namePhrases(text))

	return entities
}

// namePhrases extracts capitalized word sequences, dropping single words
// that merely start a sentence or are capitalized stop words.
func namePhrases(text string) []string {
	starts := sentenceStarts(text)
	matches := namePattern.FindAllStringIndex(text, -1)

	phrases := make([]string, 0, len(matches))
	for _, span := range matches {
		phrase := text[span[0]:span[1]]
		if !strings.Contains(phrase, " ") {
			if starts[span[0]] || stopWords[strings.ToLower(phrase)] {
				continue
			}
		}
		phrases = append(phrases, phrase)
	}
	return phrases
}

// sentenceStarts returns the byte offsets where sentences begin.
func sentenceStarts(text string) map[int]bool {
	starts := map[int]bool{}
	expectStart := true
	for i, r := range text {
		switch {
		case r == '.' || r == '!' || r == '?' || r == '\n':
			expectStart = true
		case r == ' ' || r == '\t' || r == '\r':
			// Whitespace keeps the pending start.
		default:
			if expectStart {
				starts[i] = true
				expectStart = false
			}
		}
	}
	return starts
}

// extractTopics ranks keyword candidates by frequency, breaking ties
// lexicographically for deterministic output.
func extractTopics(tokens []string) []string {
	counts := make(map[string]int)
	for _, tok := range tokens {
		counts[tok]++
	}

	type freq struct {
		word  string
		count int
	}
	ranked := make([]freq, 0, len(counts))
	for word, count := range counts {
		if count >= 2 {
			ranked = append(ranked, freq{word, count})
		}
	}
	// With little repetition, fall back to single mentions so short files
	// still get topics.
	if len(ranked) == 0 {
		for word, count := range counts {
			ranked = append(ranked, freq{word, count})
		}
	}

	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].count != ranked[j].count {
			return ranked[i].count > ranked[j].count
		}
		return ranked[i].word < ranked[j].word
	})

	n := len(ranked)
	if n > maxTopics {
		n = maxTopics
	}
	topics := make([]string, n)
	for i := 0; i < n; i++ {
		topics[i] = ranked[i].word
	}
	return topics
}

// detectLanguage guesses the language from stop-word density. Only English
// is recognized; everything else reports "unknown".
func detectLanguage(words []string) string {
	if len(words) == 0 {
		return "unknown"
	}
	hits := 0
	for _, w := range words {
		if stopWords[strings.ToLower(strings.Trim(w, ".,!?;:'\""))] {
			hits++
		}
	}
	if float64(hits)/float64(len(words)) >= 0.1 {
		return "en"
	}
	return "unknown"
}

// sentimentScore computes a naive lexicon score in [-1, 1].
func sentimentScore(tokens []string) float64 {
	var pos, neg int
	for _, tok := range tokens {
		if positiveWords[tok] {
			pos++
		}
		if negativeWords[tok] {
			neg++
		}
	}
	total := pos + neg
	if total == 0 {
		return 0
	}
	score := float64(pos-neg) / float64(total)
	return math.Round(score*100) / 100
}

// readabilityScore computes the Flesch reading ease, clamped to [0, 100].
func readabilityScore(words, sentences []string) float64 {
	if len(words) == 0 || len(sentences) == 0 {
		return 0
	}

	syllables := 0
	for _, w := range words {
		syllables += countSyllables(w)
	}

	wordsPerSentence := float64(len(words)) / float64(len(sentences))
	syllablesPerWord := float64(syllables) / float64(len(words))
	score := 206.835 - 1.015*wordsPerSentence - 84.6*syllablesPerWord

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return math.Round(score*10) / 10
}

// countSyllables approximates syllables by counting vowel groups.
func countSyllables(word string) int {
	word = strings.ToLower(word)
	count := 0
	prevVowel := false
	for _, r := range word {
		vowel := strings.ContainsRune("aeiouy", r)
		if vowel && !prevVowel {
			count++
		}
		prevVowel = vowel
	}
	if count < 1 {
		count = 1
	}
	return count
}
