// Kunhua Huang 2026

package interceptor

import (
	"context"

	"github.com/ecstasoy/cipherecho/pkg/protocol"
)

// Invoker turns a decoded request frame into the reply frame.
type Invoker func(ctx context.Context, req protocol.Frame) (protocol.Frame, error)

type Interceptor func(ctx context.Context, req protocol.Frame, invoker Invoker) (protocol.Frame, error)

type Chain struct {
	interceptors []Interceptor
}

func NewChain(interceptor ...Interceptor) *Chain {
	return &Chain{interceptors: interceptor}
}

func (ic *Chain) Intercept(ctx context.Context, req protocol.Frame, invoker Invoker) (protocol.Frame, error) {
	if len(ic.interceptors) == 0 {
		return invoker(ctx, req)
	}

	return ic.Then(invoker)(ctx, req)
}

// Then wraps invoker with every interceptor, the first added being outermost.
func (ic *Chain) Then(invoker Invoker) Invoker {
	for i := len(ic.interceptors) - 1; i >= 0; i-- {
		next := invoker
		interceptor := ic.interceptors[i]

		invoker = func(ctx context.Context, req protocol.Frame) (protocol.Frame, error) {
			return interceptor(ctx, req, next)
		}
	}

	return invoker
}
