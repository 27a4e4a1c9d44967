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
	"context"
	"encoding/json"
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/tmc/langchaingo/llms"
)

const analysisResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "summary": {
      "type": "string"
    },
    "entities": {
      "type": "array",
      "items": {"type": "string"}
    },
    "topics": {
      "type": "array",
      "items": {"type": "string"}
    },
    "language": {
      "type": "string"
    }
  },
  "required": ["summary", "entities", "topics"],
  "additionalProperties": false
}`

const analysisPromptTemplate = `Analyze the given document and return the analysis as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- The summary is 1-3 sentences capturing what the document is about.
- Entities are proper nouns actually mentioned in the text: people, organizations, places, products.
- Topics are lowercase, 1-2 words each, naming the subjects the document covers.
- Language is the two-letter ISO 639-1 code of the document's language.
- Include only information present in the text. Do not hallucinate.
- If no entities or topics can be identified, return empty arrays.
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.

Example:
Input: "Acme Corp reported record revenue of $12 million in 2025, driven by strong cloud sales."
Output:
{
  "summary": "Acme Corp reported record revenue of $12 million in 2025, driven by cloud sales.",
  "entities": ["Acme Corp"],
  "topics": ["revenue", "cloud sales"],
  "language": "en"
}`

// modelAnalysis matches the JSON structure expected from the model.
type modelAnalysis struct {
	Summary  string   `json:"summary"`
	Entities []string `json:"entities"`
	Topics   []string `json:"topics"`
	Language string   `json:"language"`
}

// buildSystemPrompt creates the system prompt with the response schema
// embedded.
func buildSystemPrompt() string {
	return strings.Replace(analysisPromptTemplate, "%s", analysisResponseSchema, 1)
}

// analyzeRemote asks the model for an analysis of the text.
// Malformed JSON responses are retried up to 3 times; transport errors are
// returned immediately.
func (p *Provider) analyzeRemote(ctx context.Context, text string) (*modelAnalysis, error) {
	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(buildSystemPrompt()),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(truncateRunes(text, p.config.MaxPromptChars)),
			},
		},
	}

	var result modelAnalysis
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		response, err := p.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			p.logger.Error("failed to generate content", "attempt", attempt+1, "err", err)
			return nil, err
		}

		if len(response.Choices) < 1 {
			return nil, errors.New("no choices returned from model")
		}

		choice := response.Choices[0]

		// Strip markdown code fences if present
		responseText := strings.TrimSpace(choice.Content)
		responseText = strings.TrimPrefix(responseText, "```json")
		responseText = strings.TrimPrefix(responseText, "```")
		responseText = strings.TrimSuffix(responseText, "```")
		responseText = strings.TrimSpace(responseText)

		// Try to repair common JSON issues
		responseText = repairJSON(responseText)

		if err := json.Unmarshal([]byte(responseText), &result); err != nil {
			lastErr = err
			p.logger.Warn("error parsing model response",
				"attempt", attempt+1,
				"response", responseText,
				"err", err)
			continue
		}

		lastErr = nil
		break
	}

	if lastErr != nil {
		p.logger.Error("failed to parse model response after retries", "err", lastErr)
		return nil, lastErr
	}
	return &result, nil
}

// truncateRunes shortens s to at most max bytes without splitting a rune.
func truncateRunes(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}
