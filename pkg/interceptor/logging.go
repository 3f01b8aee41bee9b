// Kunhua Huang 2026

package interceptor

import (
	"context"
	"time"

	"github.com/ecstasoy/cipherecho/pkg/logger"
	"github.com/ecstasoy/cipherecho/pkg/protocol"
)

type Logger interface {
	Infof(format string, args ...any)
	Errorf(format string, args ...any)
}

func Logging(log Logger) Interceptor {
	if log == nil {
		log = logger.Global()
	}

	return func(ctx context.Context, req protocol.Frame, invoker Invoker) (protocol.Frame, error) {
		start := time.Now()

		log.Infof("→ frame key=%s len=%d", req.Key, req.Len())

		resp, err := invoker(ctx, req)

		duration := time.Since(start)

		if err != nil {
			log.Errorf("✗ frame key=%s failed in %v: %v", req.Key, duration, err)
		} else {
			log.Infof("✓ frame key=%s replied %d bytes in %v", req.Key, resp.Len(), duration)
		}

		return resp, err
	}
}
