// Kunhua Huang 2026

package interceptor

import (
	"context"
	"fmt"
	"runtime/debug"

	"github.com/ecstasoy/cipherecho/pkg/protocol"
)

// Recovery converts a panic in the rest of the chain into an error, which
// ends the offending session instead of the process.
func Recovery() Interceptor {
	return func(ctx context.Context, req protocol.Frame, invoker Invoker) (resp protocol.Frame, err error) {
		defer func() {
			if r := recover(); r != nil {
				stack := debug.Stack()
				err = fmt.Errorf("panic recovered: %v\nstack:\n%s", r, stack)
				resp = protocol.Frame{}
			}
		}()

		return invoker(ctx, req)
	}
}
