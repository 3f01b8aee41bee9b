// Kunhua Huang 2026

package server

import (
	"time"

	"github.com/ecstasoy/cipherecho/pkg/interceptor"
	"github.com/ecstasoy/cipherecho/pkg/logger"
)

type serverOptions struct {
	address        string
	readTimeout    time.Duration
	writeTimeout   time.Duration
	maxConnections int
	reusePort      bool
	frameRate      int64
	frameBurst     int64
	logger         *logger.Logger
	interceptors   []interceptor.Interceptor
}

func defaultServerOptions() *serverOptions {
	return &serverOptions{
		address:        "127.0.0.1:8080",
		readTimeout:    0,
		writeTimeout:   0,
		maxConnections: 0,
	}
}

type Option func(*serverOptions)

func WithAddress(addr string) Option {
	return func(o *serverOptions) {
		o.address = addr
	}
}

// WithTimeout sets per-read and per-write deadlines on sessions. Zero leaves
// the call unbounded.
func WithTimeout(read, write time.Duration) Option {
	return func(o *serverOptions) {
		o.readTimeout = read
		o.writeTimeout = write
	}
}

func WithMaxConnections(n int) Option {
	return func(o *serverOptions) {
		o.maxConnections = n
	}
}

func WithReusePort(enable bool) Option {
	return func(o *serverOptions) {
		o.reusePort = enable
	}
}

// WithFrameRate throttles frame handling across all sessions to rate frames
// per second with bursts of up to burst frames. Zero rate disables it.
func WithFrameRate(rate, burst int64) Option {
	return func(o *serverOptions) {
		o.frameRate = rate
		o.frameBurst = burst
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(o *serverOptions) {
		o.logger = l
	}
}

// WithInterceptors replaces the default Recovery, Logging, Metrics chain.
// The WithFrameRate limiter, if any, still runs outside of them.
func WithInterceptors(interceptors ...interceptor.Interceptor) Option {
	return func(o *serverOptions) {
		o.interceptors = interceptors
	}
}
