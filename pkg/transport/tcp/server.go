// Kunhua Huang 2026

package tcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/net/netutil"

	"github.com/ecstasoy/cipherecho/pkg/logger"
	"github.com/ecstasoy/cipherecho/pkg/protocol"
	"github.com/ecstasoy/cipherecho/pkg/transport"
)

// Server is the session dispatcher: one accept loop, one goroutine per
// accepted connection. Sessions share nothing but the logger.
type Server struct {
	address  string
	opts     *transport.ServerOptions
	log      *logger.Logger
	listener net.Listener
	mu       sync.RWMutex
	serving  bool
	closed   bool

	// supervised session set
	wg     sync.WaitGroup
	conns  sync.Map // session id -> net.Conn
	nextID atomic.Int64

	activeConnections atomic.Int64
	totalConnections  atomic.Int64
}

var _ transport.ServerTransport = (*Server)(nil)

func NewServer(options ...transport.ServerOption) *Server {
	opts := transport.DefaultServerOptions()

	for _, o := range options {
		o(opts)
	}

	log := opts.Logger
	if log == nil {
		log = logger.Global()
	}

	return &Server{
		opts: opts,
		log:  log.WithPrefix("SERVER"),
	}
}

func (s *Server) Listen(ctx context.Context, addr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener != nil {
		return protocol.Wrap(protocol.ErrorCodeTransportSetup, nil, "already listening on %s", s.address)
	}

	lc := net.ListenConfig{
		Control: listenControl(s.opts.ReusePort),
	}

	listener, err := lc.Listen(ctx, "tcp", addr)
	if err != nil {
		return protocol.Wrap(protocol.ErrorCodeTransportSetup, err, "listen on %s", addr)
	}

	s.address = listener.Addr().String()

	if s.opts.MaxConnections > 0 {
		listener = netutil.LimitListener(listener, s.opts.MaxConnections)
	}
	s.listener = listener

	s.log.Infof("Server listening on %s", s.address)

	return nil
}

// Serve runs the accept loop until ctx is done or the server is closed. The
// loop checks ctx between accepts; a watcher goroutine closes the listener
// when ctx ends so a blocked Accept returns at once. Sessions already running
// are not cancelled and keep serving until their peer disconnects.
func (s *Server) Serve(ctx context.Context, handler transport.Handler) error {
	s.mu.Lock()

	if s.listener == nil {
		s.mu.Unlock()
		return fmt.Errorf("not listening")
	}

	if s.serving {
		s.mu.Unlock()
		return fmt.Errorf("already serving on %s", s.address)
	}

	s.serving = true
	listener := s.listener
	s.mu.Unlock()

	stop := make(chan struct{})
	defer close(stop)
	go func() {
		select {
		case <-ctx.Done():
			_ = listener.Close()
		case <-stop:
		}
	}()

	sessionCtx := context.WithoutCancel(ctx)

	for ctx.Err() == nil {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil || s.isClosed() || errors.Is(err, net.ErrClosed) {
				break
			}

			acceptErrorsTotal.Inc()
			s.log.Errorf("Accept error: %v", err)
			time.Sleep(s.opts.AcceptBackoff)
			continue
		}

		id := fmt.Sprintf("conn_%d", s.nextID.Add(1))

		// Close flips closed under mu before it closes conns and waits, so a
		// session registered here is always seen by closeAll and wg.Wait.
		s.mu.RLock()
		if s.closed {
			s.mu.RUnlock()
			_ = conn.Close()
			break
		}
		s.conns.Store(id, conn)
		s.wg.Add(1)
		s.mu.RUnlock()

		s.activeConnections.Add(1)
		s.totalConnections.Add(1)
		connectionsTotal.Inc()
		connectionsActive.Inc()

		go s.handleConnection(sessionCtx, id, conn, handler)
	}

	s.log.Infof("Accept loop stopped")

	return nil
}

func (s *Server) handleConnection(ctx context.Context, id string, conn net.Conn, handler transport.Handler) {
	log := s.log.WithPrefix(id)
	reason := "peer_closed"

	defer func() {
		sessionEndsTotal.WithLabelValues(reason).Inc()
		s.closeConnection(id, conn)
	}()

	log.Infof("Client connected from %s", conn.RemoteAddr())

	if tcpConn, ok := conn.(*net.TCPConn); ok {
		if err := tcpConn.SetNoDelay(true); err != nil {
			log.Warnf("set no delay failed: %v", err)
		}
	}

	buf := make([]byte, s.opts.BufferSize)

	for {
		if s.opts.ReadTimeout > 0 {
			if err := conn.SetReadDeadline(time.Now().Add(s.opts.ReadTimeout)); err != nil {
				log.Errorf("set read deadline failed: %v", err)
				reason = "read_error"
				return
			}
		}

		n, err := conn.Read(buf)
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, net.ErrClosed) {
				log.Infof("Client disconnected")
				return
			}
			log.Errorf("Could not read from client: %v", err)
			reason = "read_error"
			return
		}
		if n == 0 {
			log.Infof("Client disconnected")
			return
		}

		log.Debugf("Payload: %q", buf[:n])

		reply, err := handler(ctx, buf[:n])
		if err != nil {
			log.Errorf("Dropping session: %v", err)
			reason = "handler_error"
			return
		}

		if s.opts.WriteTimeout > 0 {
			if err := conn.SetWriteDeadline(time.Now().Add(s.opts.WriteTimeout)); err != nil {
				log.Errorf("set write deadline failed: %v", err)
				reason = "write_error"
				return
			}
		}

		if err := writeFull(conn, reply); err != nil {
			log.Errorf("Error sending response: %v", protocol.Wrap(protocol.ErrorCodeSend, err, "reply of %d bytes", len(reply)))
			reason = "write_error"
			return
		}
	}
}

func (s *Server) closeConnection(id string, conn net.Conn) {
	if err := conn.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
		s.log.Warnf("close %s failed: %v", id, err)
	}

	s.conns.Delete(id)
	s.activeConnections.Add(-1)
	connectionsActive.Dec()

	s.wg.Done()
}

// Shutdown waits for in-flight sessions to finish. If ctx ends first the
// remaining connections are closed and ctx's error is returned. Shutdown does
// not stop the accept loop; cancel the context given to Serve and wait for
// Serve to return before calling it.
func (s *Server) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		s.log.Warnf("Grace period exceeded, closing %d sessions", s.activeConnections.Load())
		s.closeAll()
		<-done
		return ctx.Err()
	}
}

// Close stops accepting, closes every live session and waits for them to exit.
func (s *Server) Close() error {
	s.mu.Lock()

	if s.closed {
		s.mu.Unlock()
		return nil
	}

	s.closed = true
	listener := s.listener
	s.mu.Unlock()

	var err error
	if listener != nil {
		if cerr := listener.Close(); cerr != nil && !errors.Is(cerr, net.ErrClosed) {
			err = fmt.Errorf("close listener failed: %w", cerr)
		}
	}

	s.closeAll()
	s.wg.Wait()

	return err
}

func (s *Server) closeAll() {
	s.conns.Range(func(key, value any) bool {
		if conn, ok := value.(net.Conn); ok {
			_ = conn.Close()
		}
		return true
	})
}

func (s *Server) isClosed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}

func (s *Server) Addr() net.Addr {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.listener != nil {
		return s.listener.Addr()
	}
	return nil
}

func (s *Server) Stats() ServerStats {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return ServerStats{
		ActiveConnections: s.activeConnections.Load(),
		TotalConnections:  s.totalConnections.Load(),
		Address:           s.address,
	}
}

type ServerStats struct {
	ActiveConnections int64
	TotalConnections  int64
	Address           string
}
