// Kunhua Huang 2026

package interceptor

import (
	"context"

	"github.com/ecstasoy/cipherecho/pkg/protocol"
)

type Limiter interface {
	Wait(ctx context.Context) error
}

// RateLimit delays each frame until limiter hands out a token. Frames are
// never dropped; a session whose ctx ends while waiting gets the ctx error.
func RateLimit(limiter Limiter) Interceptor {
	return func(ctx context.Context, req protocol.Frame, invoker Invoker) (protocol.Frame, error) {
		if err := limiter.Wait(ctx); err != nil {
			return protocol.Frame{}, err
		}
		return invoker(ctx, req)
	}
}
