// Copyright 2025 kenvexar
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


package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"golang.org/x/sync/semaphore"

	"github.com/kenvexar/discord-obsidian-memo-bot/ai"
	"github.com/kenvexar/discord-obsidian-memo-bot/core"
)

// Enricher implements ai.Enricher using OpenAI-compatible chat APIs.
type Enricher struct {
	client  llms.Model
	timeout time.Duration
	gate    *semaphore.Weighted
	logger  *slog.Logger
}

var _ ai.Enricher = (*Enricher)(nil)

// enrichment is an internal type used for JSON unmarshaling.
// It matches the structure requested from the LLM.
type enrichment struct {
	Summary    string   `json:"summary"`
	Tags       []string `json:"tags"`
	Category   string   `json:"category"`
	Confidence float64  `json:"confidence"`
	Reasoning  string   `json:"reasoning"`
}

// NewEnricher creates an enricher backed by an OpenAI-compatible chat
// API. The config is validated and normalized before use.
//
// Returns ai.Enricher interface to enforce abstraction.
func NewEnricher(config *ai.Config) (ai.Enricher, error) {
	return newEnricher(config)
}

// newEnricher is an internal constructor that returns the concrete type.
func newEnricher(config *ai.Config) (*Enricher, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.Host),
		openai.WithToken(config.Token),
		openai.WithModel(config.Model),
	)
	if err != nil {
		return nil, err
	}

	return &Enricher{
		client:  client,
		timeout: config.Timeout,
		gate:    semaphore.NewWeighted(int64(config.MaxInFlight)),
		logger:  slog.Default().With("component", "openai-enricher"),
	}, nil
}

// Enrich sends a single enrichment request and parses the response.
// It performs no retries; retry policy lives with the caller.
func (e *Enricher) Enrich(ctx context.Context, text, sourceContext string) (*core.EnrichmentResult, error) {
	text = core.NormalizeText(text)
	if text == "" {
		return nil, &ai.ValidationError{Err: core.ErrEmptyContent}
	}

	// The gate bounds simultaneous in-flight calls; request *rate* is
	// governed separately by the pipeline's limiter.
	if err := e.gate.Acquire(ctx, 1); err != nil {
		return nil, &ai.TransientError{Err: err}
	}
	defer e.gate.Release(1)

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	content := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(buildSystemPrompt())},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(buildUserPrompt(text, sourceContext))},
		},
	}

	response, err := e.client.GenerateContent(callCtx, content,
		llms.WithTemperature(0.0),
		llms.WithJSONMode())
	if err != nil {
		mapped := mapBackendError(err)
		e.logger.Error("failed to generate content", "err", err)
		return nil, mapped
	}

	if len(response.Choices) < 1 {
		return nil, &ai.ValidationError{Err: errors.New("no choices returned from model")}
	}

	parsed, err := parseEnrichment(response.Choices[0].Content)
	if err != nil {
		e.logger.Warn("error parsing enrichment response",
			"response", response.Choices[0].Content,
			"err", err)
		return nil, &ai.ValidationError{Err: err}
	}

	result := &core.EnrichmentResult{
		Summary:    strings.TrimSpace(parsed.Summary),
		Tags:       normalizeTags(parsed.Tags),
		Category:   normalizeCategory(parsed.Category),
		Confidence: clamp01(parsed.Confidence),
		Reasoning:  strings.TrimSpace(parsed.Reasoning),
		ComputedAt: time.Now().UTC(),
	}

	e.logger.Debug("content enriched",
		"category", result.Category,
		"confidence", result.Confidence,
		"tags", len(result.Tags))

	return result, nil
}

// parseEnrichment decodes the model output, stripping markdown code
// fences and repairing common JSON defects first.
func parseEnrichment(raw string) (*enrichment, error) {
	text := strings.TrimSpace(raw)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	text = strings.TrimSpace(text)
	text = repairJSON(text)

	var result enrichment
	if err := json.Unmarshal([]byte(text), &result); err != nil {
		return nil, fmt.Errorf("unparseable enrichment response: %w", err)
	}
	return &result, nil
}

// mapBackendError converts a langchaingo transport error into the typed
// taxonomy. Timeouts and cancellations are transient; backend-reported
// limits are quota errors; rejected requests are validation errors.
func mapBackendError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return &ai.TransientError{Err: err}
	}
	if errors.Is(err, context.Canceled) {
		return &ai.TransientError{Err: err}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "429"),
		strings.Contains(msg, "quota"),
		strings.Contains(msg, "rate limit"):
		return &ai.QuotaError{Err: err}
	case strings.Contains(msg, "400"),
		strings.Contains(msg, "invalid request"),
		strings.Contains(msg, "context length"):
		return &ai.ValidationError{Err: err}
	default:
		return &ai.TransientError{Err: err}
	}
}

// normalizeTags lowercases tags, strips leading '#', drops empties and
// deduplicates while preserving order.
func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	normalized := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		tag = strings.TrimPrefix(tag, "#")
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		normalized = append(normalized, tag)
	}
	return normalized
}

// normalizeCategory lowercases the category and maps unknown values to
// "other" so downstream folder mapping always sees a known value.
func normalizeCategory(category string) string {
	category = strings.ToLower(strings.TrimSpace(category))
	if !ai.IsKnownCategory(category) {
		return "other"
	}
	return category
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
