// Package retry provides bounded retry with error-aware backoff delays.
//
// The fetch path retries rate-limit, server and network failures with fixed
// delays that differ by failure mode, while client errors fail immediately.
// Attempts are strictly bounded: a sustained rate limit exhausts the attempt
// budget rather than waiting forever.
package retry
