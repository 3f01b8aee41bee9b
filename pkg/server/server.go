// Kunhua Huang 2026

package server

import (
	"context"
	"fmt"

	"github.com/ecstasoy/cipherecho/pkg/cipher"
	"github.com/ecstasoy/cipherecho/pkg/interceptor"
	"github.com/ecstasoy/cipherecho/pkg/logger"
	"github.com/ecstasoy/cipherecho/pkg/protocol"
	"github.com/ecstasoy/cipherecho/pkg/ratelimiter"
	"github.com/ecstasoy/cipherecho/pkg/transport"
	"github.com/ecstasoy/cipherecho/pkg/transport/tcp"
)

type Server struct {
	opts      *serverOptions
	log       *logger.Logger
	transport *tcp.Server
	invoke    interceptor.Invoker
}

// NewServer builds a server from opts. It fails only when WithFrameRate is
// given a non-positive burst.
func NewServer(opts ...Option) (*Server, error) {
	options := defaultServerOptions()
	for _, o := range opts {
		o(options)
	}

	log := options.logger
	if log == nil {
		log = logger.Global()
	}

	interceptors := options.interceptors
	if interceptors == nil {
		interceptors = []interceptor.Interceptor{
			interceptor.Recovery(),
			interceptor.Logging(log.WithPrefix("SERVER")),
			interceptor.Metrics(),
		}
	}

	if options.frameRate > 0 {
		limiter, err := ratelimiter.NewTokenBucket(options.frameRate, options.frameBurst)
		if err != nil {
			return nil, fmt.Errorf("frame rate: %w", err)
		}
		interceptors = append([]interceptor.Interceptor{interceptor.RateLimit(limiter)}, interceptors...)
	}

	return &Server{
		opts: options,
		log:  log,
		transport: tcp.NewServer(
			transport.WithServerTimeout(options.readTimeout, options.writeTimeout),
			transport.WithMaxConnections(options.maxConnections),
			transport.WithReusePort(options.reusePort),
			transport.WithServerLogger(log),
		),
		invoke: interceptor.NewChain(interceptors...).Then(reply),
	}, nil
}

// Start listens on the configured address and runs the accept loop until ctx
// is done. It returns nil on a clean stop.
func (s *Server) Start(ctx context.Context) error {
	if err := s.Listen(ctx); err != nil {
		return err
	}
	return s.Serve(ctx)
}

func (s *Server) Listen(ctx context.Context) error {
	if err := s.transport.Listen(ctx, s.opts.address); err != nil {
		return fmt.Errorf("failed to listen tcp transport: %w", err)
	}
	return nil
}

func (s *Server) Serve(ctx context.Context) error {
	return s.transport.Serve(ctx, s.handle)
}

func (s *Server) handle(ctx context.Context, payload []byte) ([]byte, error) {
	return s.HandleFrame(ctx, payload, len(payload))
}

// HandleFrame decodes the first n bytes of payload as a frame, reverses the
// transform on its message and encodes the reply frame <key>|<plaintext>.
func (s *Server) HandleFrame(ctx context.Context, payload []byte, n int) ([]byte, error) {
	req, err := protocol.DecodeFrame(payload, n)
	if err != nil {
		return nil, err
	}

	resp, err := s.invoke(ctx, req)
	if err != nil {
		return nil, err
	}

	return resp.Bytes()
}

// reply is the innermost invoker: it recovers the plaintext for req's key.
func reply(_ context.Context, req protocol.Frame) (protocol.Frame, error) {
	plain, err := cipher.Decode(req.Key, req.Message)
	if err != nil {
		return protocol.Frame{}, err
	}
	return protocol.NewFrame(req.Key, plain), nil
}

// Shutdown waits for in-flight sessions, force-closing them once ctx ends.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.transport.Shutdown(ctx)
}

func (s *Server) Stop() error {
	return s.transport.Close()
}

func (s *Server) Addr() string {
	if s.transport.Addr() != nil {
		return s.transport.Addr().String()
	}
	return ""
}

func (s *Server) Stats() tcp.ServerStats {
	return s.transport.Stats()
}
