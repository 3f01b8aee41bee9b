//go:build unix

package shutdown

import (
	"sync"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingLogger struct {
	mu    sync.Mutex
	lines []string
}

func (r *recordingLogger) Infof(format string, args ...any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lines = append(r.lines, format)
}

func TestSignalStopsFlag(t *testing.T) {
	f := NewFlag()
	log := &recordingLogger{}
	release := installFor(f, log, syscall.SIGUSR1)
	defer release()

	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGUSR1))

	select {
	case <-f.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("signal did not stop the flag")
	}

	log.mu.Lock()
	defer log.mu.Unlock()
	assert.Len(t, log.lines, 1)
}

func TestSecondSignalForcesFlag(t *testing.T) {
	f := NewFlag()
	log := &recordingLogger{}
	release := installFor(f, log, syscall.SIGUSR2)
	defer release()

	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGUSR2))
	select {
	case <-f.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("first signal did not stop the flag")
	}

	select {
	case <-f.Forced():
		t.Fatal("first signal must not force")
	default:
	}

	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGUSR2))
	select {
	case <-f.Forced():
	case <-time.After(2 * time.Second):
		t.Fatal("second signal did not force the flag")
	}

	log.mu.Lock()
	defer log.mu.Unlock()
	assert.Len(t, log.lines, 2)
}
