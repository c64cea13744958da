// Package errs defines the typed errors shared by the domain model and the
// application layer. Every type pairs a sentinel (ErrObjectNotFound,
// ErrValueIsInvalid, ErrValueIsOutOfRange, ErrValueIsRequired,
// ErrVersionIsInvalid) with a struct carrying the offending parameter and an
// optional cause, so callers classify failures with errors.Is and the HTTP
// layer maps them onto response codes without string matching.
//
// Construct instances through the New* functions; each type also has a
// *WithCause variant that records the underlying error. Messages are
// flattened to a single line so they stay intact in log records and response
// payloads.
package errs
