package ai

import (
	"context"

	"github.com/kenvexar/discord-obsidian-memo-bot/core"
)

// Enricher produces AI-derived metadata for a piece of content.
// Implementations must be thread-safe for concurrent use up to their
// configured in-flight limit, must enforce a per-call timeout, and must
// not retry internally; retry policy belongs to the caller.
type Enricher interface {
	// Enrich analyzes text and returns a summary, tags, a category and a
	// confidence score. The sourceContext is the logical channel the
	// content arrived on and is folded into the prompt as a hint only.
	//
	// Failures are reported through the typed errors of this package:
	// TransientError for network faults and timeouts, QuotaError for
	// backend-reported limits, ValidationError for rejected input or an
	// unparseable response.
	Enrich(ctx context.Context, text, sourceContext string) (*core.EnrichmentResult, error)
}
