// Package pipeline orchestrates the content enrichment and persistence
// flow: ingest -> cache lookup -> rate-limited AI enrichment with retry
// -> folder classification -> atomic note write.
//
// Items are independent units of work processed concurrently; the only
// globally shared mutable state is the rate limiter and the fingerprint
// cache. Per-fingerprint single-flighting plus the persistent index
// guarantee at-most-one AI invocation and at-most-one note per logical
// content item within a running process. Enrichment failures degrade the
// item to a note without AI fields rather than failing the ingestion.
package pipeline
