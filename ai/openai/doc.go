// Package openai implements the ai.Enricher interface against
// OpenAI-compatible chat APIs (OpenAI, Ollama, LocalAI, vLLM).
//
// A single JSON-mode chat completion turns raw content text into the
// structured enrichment shape. Responses are defensively parsed: markdown
// code fences are stripped and common JSON defects of small local models
// are repaired before unmarshaling. A response that still cannot be
// parsed is a validation error, not a pipeline bug.
package openai
