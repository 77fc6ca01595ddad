// Package errors provides foundational, type-safe error primitives used across exportcfg.
//
// This package contains classified error types and helpers for robust error handling,
// including a fluent builder API for constructing ClassifiedError values with context.
//
// Key features:
//   - ErrorCategory: Broad error classification (invalid_option, unknown_capability, filesystem, etc.)
//   - ErrorSeverity: Impact level (fatal, error, warning, info)
//   - RetryStrategy: Retry behavior; configuration resolution never retries
//   - ClassifiedError: Structured error with category, severity, and context
//   - ErrorBuilder: Fluent API for creating classified errors
//   - CLI adapter mapping categories to process exit codes
//
// Example usage:
//
//	err := errors.InvalidOption("adapter.fallback", "").
//		WithContext("reason", "must not be empty").
//		Build()
//
//	if errors.Is(err, errors.ErrInvalidOption) { ... }
package errors
