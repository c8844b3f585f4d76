// Package ai defines the enrichment abstraction used by the pipeline.
//
// The Enricher interface hides the concrete AI backend behind a single
// call that turns raw content text into structured metadata (summary,
// tags, category, confidence). Failures are reported through the typed
// errors of this package so callers can decide between retrying,
// deferring, and degrading.
//
// Concrete implementations live in subpackages: openai for
// OpenAI-compatible chat APIs, mock for tests.
package ai
