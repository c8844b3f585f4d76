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


package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"golang.org/x/sync/singleflight"

	"github.com/kenvexar/discord-obsidian-memo-bot/ai"
	"github.com/kenvexar/discord-obsidian-memo-bot/cache"
	"github.com/kenvexar/discord-obsidian-memo-bot/classify"
	"github.com/kenvexar/discord-obsidian-memo-bot/core"
	"github.com/kenvexar/discord-obsidian-memo-bot/ratelimit"
	"github.com/kenvexar/discord-obsidian-memo-bot/retry"
	"github.com/kenvexar/discord-obsidian-memo-bot/vault"
)

// DefaultMaxDeferralWait bounds the total time one item may spend
// waiting on the local rate limiter before proceeding without
// enrichment.
const DefaultMaxDeferralWait = 30 * time.Second

// DefaultMaxTextLength is the largest text, in runes, sent for
// enrichment. Longer items still get a note, just without AI fields.
const DefaultMaxTextLength = 8000

// quotaDeferrals bounds how many backend quota deferrals one item will
// honor before degrading.
const quotaDeferrals = 2

// Pipeline composes the fingerprint cache, rate limiter, enricher, retry
// policy, classifier, and note writer into the ingest -> enrich ->
// classify -> persist flow. It is the single entry point used by the
// chat-platform layer.
type Pipeline struct {
	cache      *cache.Cache
	limiter    *ratelimit.DualLimiter
	enricher   ai.Enricher
	classifier *classify.Classifier
	writer     *vault.Writer

	retryPolicy     retry.Policy
	maxDeferralWait time.Duration
	maxTextLength   int

	group  singleflight.Group
	pool   *ants.Pool
	stats  counters
	closed atomic.Bool
	logger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithCache sets the fingerprint cache.
// Default is cache.New with the package defaults.
func WithCache(c *cache.Cache) Option {
	return func(p *Pipeline) error {
		if c != nil {
			p.cache = c
		}
		return nil
	}
}

// WithLimiter sets the shared rate limiter.
// Default allows 15 requests per minute and 1500 per day.
func WithLimiter(l *ratelimit.DualLimiter) Option {
	return func(p *Pipeline) error {
		if l != nil {
			p.limiter = l
		}
		return nil
	}
}

// WithRetryPolicy sets the enrichment retry policy. The policy's
// Retryable function is always overridden to retry transient errors
// only.
func WithRetryPolicy(policy retry.Policy) Option {
	return func(p *Pipeline) error {
		p.retryPolicy = policy
		return nil
	}
}

// WithMaxDeferralWait bounds the total rate-limit wait per item.
func WithMaxDeferralWait(d time.Duration) Option {
	return func(p *Pipeline) error {
		if d > 0 {
			p.maxDeferralWait = d
		}
		return nil
	}
}

// WithMaxTextLength sets the largest text sent for enrichment.
func WithMaxTextLength(n int) Option {
	return func(p *Pipeline) error {
		if n > 0 {
			p.maxTextLength = n
		}
		return nil
	}
}

// WithPoolSize sets the worker pool size for async processing.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		if p.pool != nil {
			p.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// New creates a pipeline. Enricher, classifier, and writer are required;
// everything else has defaults.
func New(enricher ai.Enricher, classifier *classify.Classifier, writer *vault.Writer, opts ...Option) (*Pipeline, error) {
	if enricher == nil {
		return nil, ErrEnricherRequired
	}
	if classifier == nil {
		return nil, ErrClassifierRequired
	}
	if writer == nil {
		return nil, ErrWriterRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		cache:           cache.New(0, 0),
		limiter:         ratelimit.NewDualLimiter(15, 1500),
		enricher:        enricher,
		classifier:      classifier,
		writer:          writer,
		retryPolicy:     retry.DefaultPolicy(),
		maxDeferralWait: DefaultMaxDeferralWait,
		maxTextLength:   DefaultMaxTextLength,
		pool:            pool,
		logger:          slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	// Retry only transient failures; validation and quota errors take
	// their own paths.
	p.retryPolicy.Retryable = ai.IsTransient

	return p, nil
}

// Process runs one content item through the full state machine and
// returns its terminal outcome. Every failure below the orchestrator is
// converted into the outcome; nothing escapes to the caller as a panic
// or unhandled error.
func (p *Pipeline) Process(ctx context.Context, item *core.ContentItem) core.PipelineOutcome {
	p.stats.total.Add(1)

	if p.closed.Load() {
		return p.failed(ErrPipelineClosed)
	}

	// Received: reject malformed input before spending any budget.
	if err := core.ValidateContentItem(item); err != nil {
		p.logger.Warn("content item rejected", "id", itemID(item), "err", err)
		return p.failed(err)
	}

	fingerprint := item.Fingerprint()

	// CacheLookup / Enriching: terminal enrichment failures leave
	// enrichment nil and the item continues on the degraded path.
	enrichment, enrichErr := p.obtainEnrichment(ctx, fingerprint, item)
	if enrichErr != nil {
		p.logger.Warn("proceeding without enrichment",
			"id", item.ID,
			"fingerprint", fingerprint,
			"reason", enrichErr)
	}

	// Classifying: never fails, there is always a fallback folder.
	decision := p.classifier.Classify(item.Text, enrichment)

	// Writing.
	record, err := p.writer.Write(ctx, item, enrichment, decision)
	switch {
	case err == nil:
		if enrichment != nil {
			p.stats.completed.Add(1)
			return core.PipelineOutcome{Status: core.StatusCompleted, Note: record}
		}
		p.stats.degraded.Add(1)
		return core.PipelineOutcome{Status: core.StatusDegraded, Note: record}

	case errors.Is(err, vault.ErrDuplicate):
		// Idempotence short-circuit: the item was already handled.
		p.stats.completed.Add(1)
		return core.PipelineOutcome{Status: core.StatusCompleted, Note: record}

	default:
		p.logger.Error("note write failed",
			"id", item.ID,
			"folder", decision.TargetFolder,
			"err", err)
		return p.failed(err)
	}
}

// Submit schedules an item for asynchronous processing on the worker
// pool. The callback, when non-nil, receives the terminal outcome.
// Returns ErrPipelineClosed after Release.
func (p *Pipeline) Submit(ctx context.Context, item *core.ContentItem, callback func(core.PipelineOutcome)) error {
	if p.closed.Load() {
		return ErrPipelineClosed
	}
	return p.pool.Submit(func() {
		outcome := p.Process(ctx, item)
		if outcome.Status == core.StatusFailed {
			p.logger.Error("async item failed", "id", itemID(item), "err", outcome.Err)
		}
		if callback != nil {
			callback(outcome)
		}
	})
}

// Stats returns a snapshot of the pipeline counters.
func (p *Pipeline) Stats() Stats {
	return p.stats.snapshot()
}

// Release stops accepting new items and releases the worker pool.
// In-flight items run to completion or to their own timeouts; the atomic
// note write guarantees no half-written note becomes visible.
func (p *Pipeline) Release() {
	p.closed.Store(true)
	if p.pool != nil {
		p.pool.Release()
	}
}

// obtainEnrichment returns the enrichment result for a fingerprint,
// consulting the cache first. Concurrent callers for the same
// fingerprint share one flight, so identical items never spend the AI
// budget twice. A nil result with a non-nil error means "proceed
// degraded".
func (p *Pipeline) obtainEnrichment(ctx context.Context, fingerprint core.Fingerprint, item *core.ContentItem) (*core.EnrichmentResult, error) {
	if len([]rune(item.Text)) > p.maxTextLength {
		return nil, errTextTooLong
	}

	v, err, _ := p.group.Do(string(fingerprint), func() (any, error) {
		if result, ok := p.cache.Get(fingerprint); ok {
			p.stats.cacheHits.Add(1)
			return result, nil
		}

		result, err := p.enrich(ctx, item)
		if err != nil {
			return nil, err
		}

		p.cache.Put(fingerprint, result)
		return result, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*core.EnrichmentResult), nil
}

// enrich acquires rate-limit budget and calls the enricher under the
// retry policy, honoring bounded deferrals for local and backend limits.
func (p *Pipeline) enrich(ctx context.Context, item *core.ContentItem) (*core.EnrichmentResult, error) {
	deadline := time.Now().Add(p.maxDeferralWait)

	if err := p.acquireBudget(ctx, deadline); err != nil {
		return nil, err
	}

	for deferral := 0; ; deferral++ {
		result, err := retry.Do(ctx, p.retryPolicy, func(ctx context.Context) (*core.EnrichmentResult, error) {
			return p.enricher.Enrich(ctx, item.Text, item.SourceContext)
		})
		if err == nil {
			return result, nil
		}

		// Backend-reported quota: defer for the suggested interval
		// rather than retrying blindly, within the remaining budget.
		if ai.IsQuota(err) && deferral < quotaDeferrals {
			wait := ai.QuotaRetryAfter(err)
			if wait <= 0 {
				wait = time.Second
			}
			if time.Now().Add(wait).After(deadline) {
				return nil, err
			}
			if sleepErr := sleepCtx(ctx, wait); sleepErr != nil {
				return nil, sleepErr
			}
			if acquireErr := p.acquireBudget(ctx, deadline); acquireErr != nil {
				return nil, acquireErr
			}
			continue
		}

		return nil, err
	}
}

// acquireBudget waits for the local rate limiter, bounded by the
// deferral deadline.
func (p *Pipeline) acquireBudget(ctx context.Context, deadline time.Time) error {
	for {
		decision := p.limiter.Acquire()
		if decision.Allowed {
			return nil
		}
		if time.Now().Add(decision.RetryAfter).After(deadline) {
			return errDeferralExceeded
		}
		if err := sleepCtx(ctx, decision.RetryAfter); err != nil {
			return err
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (p *Pipeline) failed(err error) core.PipelineOutcome {
	p.stats.failed.Add(1)
	return core.PipelineOutcome{Status: core.StatusFailed, Err: err}
}

func itemID(item *core.ContentItem) string {
	if item == nil {
		return ""
	}
	return item.ID
}
