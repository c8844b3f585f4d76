// Package classify decides which vault folder a note belongs in.
//
// The decision is deterministic and never fails: a confidence-gated
// category table first, then an ordered list of regex heuristics against
// the raw text, then a catch-all folder. Table, heuristics, and threshold
// are configuration loadable from YAML.
package classify
