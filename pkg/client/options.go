package client

import (
	"time"

	"github.com/ecstasoy/cipherecho/pkg/logger"
	"github.com/ecstasoy/cipherecho/pkg/transport"
)

type sessionOptions struct {
	rounds     int
	roundDelay time.Duration
	logger     *logger.Logger

	transport     transport.ClientTransport
	transportOpts []transport.ClientOption
}

func defaultOptions() *sessionOptions {
	return &sessionOptions{
		rounds:     3,
		roundDelay: 2 * time.Second,
	}
}

type Option func(*sessionOptions)

// WithRounds sets how many send/await cycles Run performs.
func WithRounds(n int) Option {
	return func(o *sessionOptions) {
		o.rounds = n
	}
}

// WithRoundDelay sets the pause between rounds. Zero disables it.
func WithRoundDelay(d time.Duration) Option {
	return func(o *sessionOptions) {
		o.roundDelay = d
	}
}

func WithLogger(l *logger.Logger) Option {
	return func(o *sessionOptions) {
		o.logger = l
	}
}

// WithTransport makes the session use t instead of dialing a TCP client.
func WithTransport(t transport.ClientTransport) Option {
	return func(o *sessionOptions) {
		o.transport = t
	}
}

func WithTransportOptions(opts ...transport.ClientOption) Option {
	return func(o *sessionOptions) {
		o.transportOpts = append(o.transportOpts, opts...)
	}
}
