package ratelimit

import "context"

// RateLimiter bounds outbound RPC throughput per scope (e.g. receipt
// polling vs. contract reads).
type RateLimiter interface {
	Allow(ctx context.Context, scope string) (bool, error)
	Wait(ctx context.Context, scope string) error
}
