package client

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ecstasoy/cipherecho/pkg/cipher"
	"github.com/ecstasoy/cipherecho/pkg/logger"
	"github.com/ecstasoy/cipherecho/pkg/protocol"
	"github.com/ecstasoy/cipherecho/pkg/transport"
	"github.com/ecstasoy/cipherecho/pkg/transport/tcp"
)

type State int32

const (
	StateConnecting State = iota
	StateSending
	StateAwaitingReply
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "Connecting"
	case StateSending:
		return "Sending"
	case StateAwaitingReply:
		return "AwaitingReply"
	case StateClosed:
		return "Closed"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Session drives one connection: frame and send, then wait for one reply,
// optionally several rounds in a row.
type Session struct {
	opts      *sessionOptions
	key       cipher.Key
	log       *logger.Logger
	transport transport.ClientTransport
	state     atomic.Int32
}

// Round is the outcome of one send/await cycle.
type Round struct {
	Index int
	Reply []byte
	Err   error
}

func NewSession(key string, opts ...Option) (*Session, error) {
	k, err := cipher.NewKey(key)
	if err != nil {
		return nil, err
	}

	options := defaultOptions()
	for _, o := range opts {
		o(options)
	}

	log := options.logger
	if log == nil {
		log = logger.Global()
	}

	return &Session{
		opts:      options,
		key:       k,
		log:       log.WithPrefix("CLIENT"),
		transport: options.transport,
	}, nil
}

func (s *Session) State() State {
	return State(s.state.Load())
}

func (s *Session) setState(st State) {
	s.state.Store(int32(st))
}

// Connect opens the transport to addr. It is a no-op for a session built
// around an already connected transport.
func (s *Session) Connect(ctx context.Context, addr string) error {
	s.setState(StateConnecting)

	if s.transport == nil {
		s.transport = tcp.NewClient(addr, s.opts.transportOpts...)
	}
	if s.transport.IsConnected() {
		return nil
	}

	if err := s.transport.Dial(ctx, addr); err != nil {
		return err
	}

	s.log.Infof("Connected to server %s", s.transport.RemoteAddr())
	return nil
}

func (s *Session) SendFrame(ctx context.Context, frame []byte) error {
	if s.transport == nil {
		return protocol.Wrap(protocol.ErrorCodeSend, nil, "session is not connected")
	}

	s.setState(StateSending)
	return s.transport.Send(ctx, frame)
}

// AwaitReply blocks for one read and returns the reply bytes unmodified.
func (s *Session) AwaitReply(ctx context.Context) ([]byte, error) {
	if s.transport == nil {
		return nil, protocol.Wrap(protocol.ErrorCodeReceive, nil, "session is not connected")
	}

	s.setState(StateAwaitingReply)
	return s.transport.Receive(ctx)
}

// Exchange transforms message with the session key, frames it as
// <key>|<cipher text>, sends it and waits for the reply.
func (s *Session) Exchange(ctx context.Context, message string) ([]byte, error) {
	frame, err := protocol.EncodeFrame(s.key.String(), s.key.Encode(message))
	if err != nil {
		return nil, err
	}

	if err := s.SendFrame(ctx, frame); err != nil {
		return nil, err
	}

	return s.AwaitReply(ctx)
}

// Run performs the configured number of rounds. A failed round is logged and
// recorded but does not stop the rounds after it; only ctx ending does.
func (s *Session) Run(ctx context.Context, message string) ([]Round, error) {
	rounds := make([]Round, 0, s.opts.rounds)

	for i := 0; i < s.opts.rounds; i++ {
		if i > 0 && s.opts.roundDelay > 0 {
			s.log.Debugf("Sleeping for %v", s.opts.roundDelay)
			if err := sleep(ctx, s.opts.roundDelay); err != nil {
				return rounds, err
			}
		}
		if err := ctx.Err(); err != nil {
			return rounds, err
		}

		reply, err := s.Exchange(ctx, message)
		if err != nil {
			s.log.Errorf("Round %d failed: %v", i+1, err)
		} else {
			s.log.Infof("Message from server: %s", reply)
		}

		rounds = append(rounds, Round{Index: i, Reply: reply, Err: err})
	}

	return rounds, nil
}

func (s *Session) Close() error {
	s.setState(StateClosed)

	if s.transport == nil {
		return nil
	}
	return s.transport.Close()
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()

	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
