// Package mask redacts sensitive fields from structured log payloads.
//
// Payloads are modelled as Value trees. A Classifier decides by field name
// whether a value is sensitive, and an Engine walks a tree replacing those
// values with a partially visible form produced by MaskValue. The Policy that
// drives both is immutable; State holds the current engine and swaps it
// atomically when Initialize or Reset re-reads the environment.
//
// Only field names are inspected. Secrets embedded in free text or in the
// values of non-sensitive fields are not detected.
package mask
