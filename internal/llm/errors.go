package llm

import "errors"

// Sentinel errors for upstream failure classes the API layer maps to
// distinct status codes. Provider adapters wrap these with %w so
// callers can use errors.Is.
var (
	// ErrRateLimited indicates the reasoning service rejected the
	// request with a rate limit (HTTP 429). Not retried automatically.
	ErrRateLimited = errors.New("reasoning service rate limited")

	// ErrQuotaExhausted indicates the account is out of credit
	// (HTTP 402, or the provider's insufficient_quota error code).
	ErrQuotaExhausted = errors.New("reasoning service quota exhausted")
)

// IsRateLimited reports whether err is a rate-limit failure.
func IsRateLimited(err error) bool { return errors.Is(err, ErrRateLimited) }

// IsQuotaExhausted reports whether err is a quota failure.
func IsQuotaExhausted(err error) bool { return errors.Is(err, ErrQuotaExhausted) }
