// Package mock provides a test double for the ai.Enricher interface.
//
// The mock returns deterministic results derived from the input text and
// supports behavior injection through a function field, so tests can
// simulate transient failures, quota errors, and slow backends without
// a real AI service.
package mock
