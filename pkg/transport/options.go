package transport

import (
	"time"

	"github.com/ecstasoy/cipherecho/pkg/logger"
	"github.com/ecstasoy/cipherecho/pkg/protocol"
)

// ------------------- Client Options -------------------

// A zero ReadTimeout or WriteTimeout means the call blocks until the peer acts.
type ClientOptions struct {
	DialTimeout     time.Duration
	KeepAlive       bool
	KeepAlivePeriod time.Duration
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	BufferSize      int
}

func DefaultClientOptions() *ClientOptions {
	return &ClientOptions{
		DialTimeout:     5 * time.Second,
		KeepAlive:       true,
		KeepAlivePeriod: 30 * time.Second,
		BufferSize:      protocol.MaxFrameSize,
	}
}

type ClientOption func(*ClientOptions)

func WithDialTimeout(timeout time.Duration) ClientOption {
	return func(opts *ClientOptions) {
		opts.DialTimeout = timeout
	}
}

func WithReadTimeout(timeout time.Duration) ClientOption {
	return func(opts *ClientOptions) {
		opts.ReadTimeout = timeout
	}
}

func WithWriteTimeout(timeout time.Duration) ClientOption {
	return func(opts *ClientOptions) {
		opts.WriteTimeout = timeout
	}
}

func WithKeepAlive(keepAlive bool, period time.Duration) ClientOption {
	return func(opts *ClientOptions) {
		opts.KeepAlive = keepAlive
		opts.KeepAlivePeriod = period
	}
}

func WithBufferSize(size int) ClientOption {
	return func(opts *ClientOptions) {
		if size > 0 {
			opts.BufferSize = size
		}
	}
}

// ------------------- Server Options -------------------

type ServerOptions struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	BufferSize     int
	MaxConnections int
	ReusePort      bool
	// AcceptBackoff is the pause after a failed accept before trying again.
	AcceptBackoff time.Duration
	Logger        *logger.Logger
}

func DefaultServerOptions() *ServerOptions {
	return &ServerOptions{
		BufferSize:     protocol.MaxFrameSize,
		MaxConnections: 0,
		AcceptBackoff:  10 * time.Millisecond,
	}
}

type ServerOption func(*ServerOptions)

func WithServerTimeout(read, write time.Duration) ServerOption {
	return func(opts *ServerOptions) {
		opts.ReadTimeout = read
		opts.WriteTimeout = write
	}
}

func WithServerBufferSize(size int) ServerOption {
	return func(opts *ServerOptions) {
		if size > 0 {
			opts.BufferSize = size
		}
	}
}

func WithMaxConnections(n int) ServerOption {
	return func(opts *ServerOptions) {
		opts.MaxConnections = n
	}
}

func WithReusePort(enable bool) ServerOption {
	return func(opts *ServerOptions) {
		opts.ReusePort = enable
	}
}

func WithAcceptBackoff(d time.Duration) ServerOption {
	return func(opts *ServerOptions) {
		opts.AcceptBackoff = d
	}
}

func WithServerLogger(l *logger.Logger) ServerOption {
	return func(opts *ServerOptions) {
		opts.Logger = l
	}
}
