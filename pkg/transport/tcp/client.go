//Kunhua Huang 2026

package tcp

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	"github.com/ecstasoy/cipherecho/pkg/protocol"
	"github.com/ecstasoy/cipherecho/pkg/transport"
)

type Client struct {
	address   string
	opts      *transport.ClientOptions
	conn      net.Conn
	connected bool
	buf       []byte
	mu        sync.RWMutex // protects connected and conn
	ioMu      sync.Mutex   // serializes Send/Receive and guards buf
}

var _ transport.ClientTransport = (*Client)(nil)

func NewClient(address string, options ...transport.ClientOption) *Client {
	opts := transport.DefaultClientOptions()

	for _, o := range options {
		o(opts)
	}

	return &Client{
		address: address,
		opts:    opts,
		buf:     make([]byte, opts.BufferSize),
	}
}

// NewClientFromConn wraps an already established connection, e.g. one end
// of net.Pipe.
func NewClientFromConn(conn net.Conn, options ...transport.ClientOption) *Client {
	c := NewClient(conn.RemoteAddr().String(), options...)
	c.conn = conn
	c.connected = true
	return c
}

func (c *Client) Dial(ctx context.Context, address string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.connected {
		return protocol.Wrap(protocol.ErrorCodeTransportSetup, nil, "already connected to %s", c.conn.RemoteAddr())
	}

	addr := address
	if addr == "" {
		addr = c.address
	}

	dialer := &net.Dialer{
		Timeout:   c.opts.DialTimeout,
		KeepAlive: c.opts.KeepAlivePeriod,
	}
	if !c.opts.KeepAlive {
		dialer.KeepAlive = -1
	}

	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return protocol.Wrap(protocol.ErrorCodeTransportSetup, err, "error connecting to server at %s", addr)
	}

	if tcpConn, ok := conn.(*net.TCPConn); ok {
		if err := tcpConn.SetNoDelay(true); err != nil {
			_ = conn.Close()
			return protocol.Wrap(protocol.ErrorCodeTransportSetup, err, "set no delay")
		}
	}

	c.conn = conn
	c.connected = true
	c.address = addr

	return nil
}

// Send writes data in full. A short write or a write error is a SendError.
func (c *Client) Send(ctx context.Context, data []byte) error {
	conn, err := c.current()
	if err != nil {
		return protocol.Wrap(protocol.ErrorCodeSend, err, "send")
	}

	c.ioMu.Lock()
	defer c.ioMu.Unlock()

	if err := c.applyDeadline(ctx, conn.SetWriteDeadline, c.opts.WriteTimeout); err != nil {
		return protocol.Wrap(protocol.ErrorCodeSend, err, "set write deadline")
	}
	defer conn.SetWriteDeadline(time.Time{})

	if err := writeFull(conn, data); err != nil {
		return protocol.Wrap(protocol.ErrorCodeSend, err, "could not send %d bytes", len(data))
	}

	return nil
}

// Receive performs exactly one read and returns a copy of the bytes it
// produced. A peer close is reported as a ReceiveError wrapping io.EOF.
func (c *Client) Receive(ctx context.Context) ([]byte, error) {
	conn, err := c.current()
	if err != nil {
		return nil, protocol.Wrap(protocol.ErrorCodeReceive, err, "receive")
	}

	c.ioMu.Lock()
	defer c.ioMu.Unlock()

	if err := c.applyDeadline(ctx, conn.SetReadDeadline, c.opts.ReadTimeout); err != nil {
		return nil, protocol.Wrap(protocol.ErrorCodeReceive, err, "set read deadline")
	}

	// A cancelled context unblocks the read by expiring the deadline. The
	// deadline is cleared only once that callback can no longer run.
	fired := make(chan struct{})
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetReadDeadline(time.Now())
		close(fired)
	})
	defer func() {
		if !stop() {
			<-fired
		}
		_ = conn.SetReadDeadline(time.Time{})
	}()

	n, err := conn.Read(c.buf)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = errors.Join(ctxErr, err)
		}
		return nil, protocol.Wrap(protocol.ErrorCodeReceive, err, "bytes not received")
	}
	if n == 0 {
		return nil, protocol.Wrap(protocol.ErrorCodeReceive, io.EOF, "bytes not received")
	}

	reply := make([]byte, n)
	copy(reply, c.buf[:n])

	return reply, nil
}

func (c *Client) applyDeadline(ctx context.Context, set func(time.Time) error, timeout time.Duration) error {
	if deadline, ok := ctx.Deadline(); ok {
		return set(deadline)
	}
	if timeout > 0 {
		return set(time.Now().Add(timeout))
	}
	return nil
}

func (c *Client) current() (net.Conn, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if !c.connected || c.conn == nil {
		return nil, fmt.Errorf("not connected, call Dial() first")
	}
	return c.conn, nil
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.connected {
		return nil
	}

	c.connected = false

	if c.conn != nil {
		if err := c.conn.Close(); err != nil {
			return fmt.Errorf("close connection failed: %w", err)
		}
	}

	return nil
}

func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

func (c *Client) LocalAddr() net.Addr {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.conn != nil {
		return c.conn.LocalAddr()
	}

	return nil
}

func (c *Client) RemoteAddr() net.Addr {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.conn != nil {
		return c.conn.RemoteAddr()
	}

	return nil
}

func writeFull(w io.Writer, b []byte) error {
	for len(b) > 0 {
		n, err := w.Write(b)
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
		b = b[n:]
	}
	return nil
}
