// Package errs provides standardized error types for the dispatch application.
// It implements a consistent pattern for error creation, formatting, and
// unwrapping used throughout the codebase.
//
// Each error type follows the same shape:
//   - A sentinel error variable (e.g. ErrValueIsRequired) for errors.Is
//     classification
//   - A struct type carrying the offending parameter and an optional cause
//   - Constructor functions with and without cause
//   - Error() for formatting and Unwrap() for chain traversal
//
// ObjectNotFoundError additionally carries the looked-up id so repository
// misses read naturally in logs and API error mapping.
package errs
