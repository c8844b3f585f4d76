// Package vault renders and persists Markdown notes into the external
// note vault.
//
// A note is created at most once per content fingerprint, enforced by a
// persistent fingerprint index consulted under a per-fingerprint lock.
// Documents are written to a temporary file and atomically renamed into
// place, so the vault never observes a half-written note.
package vault
