// Package storage defines the persistent fingerprint index consulted by
// the note writer before every write.
//
// Interfaces live here; the BadgerDB-backed implementation lives in the
// badger subpackage. Index entries are serialized with the MUS binary
// format.
package storage
