// Kunhua Huang 2025

package transport

import (
	"context"
	"net"
)

// ClientTransport is one outbound stream connection carrying whole frames:
// each Send is one write, each Receive one read.
type ClientTransport interface {
	Dial(ctx context.Context, addr string) error
	Send(ctx context.Context, data []byte) error
	Receive(ctx context.Context) ([]byte, error)
	Close() error
	IsConnected() bool
	LocalAddr() net.Addr
	RemoteAddr() net.Addr
}

type ServerTransport interface {
	Listen(ctx context.Context, addr string) error
	Serve(ctx context.Context, handler Handler) error
	Shutdown(ctx context.Context) error
	Close() error
	Addr() net.Addr
}

// Handler turns the bytes of one read into the reply for one write. payload
// is only valid for the duration of the call. Returning an error ends the
// session that produced the payload.
type Handler func(ctx context.Context, payload []byte) ([]byte, error)
