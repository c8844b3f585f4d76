package openai

import (
	"fmt"
	"strings"

	"github.com/kenvexar/discord-obsidian-memo-bot/ai"
)

const enrichmentResponseSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "properties": {
    "summary": {
      "type": "string"
    },
    "tags": {
      "type": "array",
      "items": {
        "type": "string",
        "pattern": "^[a-z0-9]+(-[a-z0-9]+)*$"
      },
      "maxItems": 5
    },
    "category": {
      "type": "string"
    },
    "confidence": {
      "type": "number",
      "minimum": 0,
      "maximum": 1
    },
    "reasoning": {
      "type": "string"
    }
  },
  "required": ["summary", "tags", "category", "confidence"],
  "additionalProperties": false
}`

const enrichmentPromptTemplate = `Analyze the given note text and return structured metadata as JSON.

Output ONLY valid JSON which complies with the schema given below. Do not include any preamble, explanation,
greeting, or acknowledgment. Start your response directly with the opening brace { and end with the closing
brace }. Your output must exactly follow this schema:

%s

Rules:
- summary: at most three short sentences capturing the key points of the text.
- tags: up to 5 lowercase keywords, no '#' prefix, hyphenate multi-word tags.
- category: exactly one of the listed values: %s.
- confidence: how certain you are of the category, from 0 (guessing) to 1 (certain).
- reasoning: one sentence explaining the category choice. Optional.
- Base everything on the text alone. Do not hallucinate.
- The JSON must parse without errors; no trailing commas, no extra keys, and no extraneous text outside the object.

Example:
Input: "1500 lunch with the team"
Output:
{
  "summary": "Spent 1500 on lunch with the team.",
  "tags": ["lunch", "expense"],
  "category": "finance",
  "confidence": 0.9,
  "reasoning": "An amount followed by a purchase description is an expense record."
}

Example (informal, no punctuation):
Input: "need to finish the report by friday"
Output:
{
  "summary": "The report must be finished by Friday.",
  "tags": ["report", "deadline"],
  "category": "task",
  "confidence": 0.85,
  "reasoning": "An obligation with a deadline is a task."
}`

// buildSystemPrompt creates the system prompt with the category list
// embedded.
func buildSystemPrompt() string {
	return fmt.Sprintf(enrichmentPromptTemplate,
		enrichmentResponseSchema,
		strings.Join(ai.Categories, ", "))
}

// buildUserPrompt wraps the content text, folding the source channel in
// as a classification hint when present.
func buildUserPrompt(text, sourceContext string) string {
	if sourceContext == "" {
		return text
	}
	return fmt.Sprintf("Channel hint: %s\n\n%s", sourceContext, text)
}
