// Kunhua Huang 2026

// Package shutdown holds the stop signal observed by the accept loop.
//
// A Flag starts in the running state and is flipped to stopped exactly once.
// It is passed explicitly to whatever needs it, so independent listeners (and
// tests) can each own one.
package shutdown

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
)

type Flag struct {
	running atomic.Bool
	once    sync.Once
	done    chan struct{}

	forceOnce sync.Once
	forced    chan struct{}
}

func NewFlag() *Flag {
	f := &Flag{done: make(chan struct{}), forced: make(chan struct{})}
	f.running.Store(true)
	return f
}

func (f *Flag) Running() bool {
	return f.running.Load()
}

// Stop flips the flag. Only the first call has an effect; it reports true.
func (f *Flag) Stop() bool {
	stopped := false
	f.once.Do(func() {
		f.running.Store(false)
		close(f.done)
		stopped = true
	})
	return stopped
}

// Done is closed when the flag is stopped.
func (f *Flag) Done() <-chan struct{} {
	return f.done
}

// Force stops the flag if needed and asks whoever is draining sessions to
// stop waiting.
func (f *Flag) Force() {
	f.Stop()
	f.forceOnce.Do(func() { close(f.forced) })
}

// Forced is closed by Force.
func (f *Flag) Forced() <-chan struct{} {
	return f.forced
}

// Context returns a child of parent that is cancelled when the flag stops.
func (f *Flag) Context(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	go func() {
		select {
		case <-f.done:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

type Logger interface {
	Infof(format string, args ...any)
}

// InstallSignalHandler stops flag on the first SIGINT or SIGTERM and forces it
// on the second. After that, signal delivery is stopped and a third signal
// gets the default behaviour. The returned func stops delivery early.
func InstallSignalHandler(flag *Flag, log Logger) (release func()) {
	return installFor(flag, log, os.Interrupt, syscall.SIGTERM)
}

func installFor(flag *Flag, log Logger, sigs ...os.Signal) func() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, sigs...)

	quit := make(chan struct{})
	var once sync.Once

	release := func() {
		once.Do(func() {
			signal.Stop(ch)
			close(quit)
		})
	}

	go func() {
		for i := 0; i < 2; i++ {
			select {
			case sig := <-ch:
				if i == 0 {
					if log != nil {
						log.Infof("Signal received: %v", sig)
					}
					flag.Stop()
					continue
				}
				if log != nil {
					log.Infof("Second signal received: %v, not waiting for sessions", sig)
				}
				flag.Force()
				release()
			case <-quit:
				return
			}
		}
	}()

	return release
}
