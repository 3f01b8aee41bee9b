//go:build unix

package main

import (
	"net"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freePort(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	_, port, err := net.SplitHostPort(ln.Addr().String())
	require.NoError(t, err)
	require.NoError(t, ln.Close())
	return port
}

// startRun runs the server binary's entry point and waits until it accepts.
func startRun(t *testing.T, args ...string) (addr string, code <-chan int) {
	t.Helper()

	port := freePort(t)
	addr = net.JoinHostPort("127.0.0.1", port)

	done := make(chan int, 1)
	go func() { done <- run(append(args, "127.0.0.1", port)) }()

	require.Eventually(t, func() bool {
		conn, err := net.DialTimeout("tcp", addr, 50*time.Millisecond)
		if err != nil {
			return false
		}
		_ = conn.Close()
		return true
	}, 2*time.Second, 10*time.Millisecond)

	return addr, done
}

func waitExit(t *testing.T, code <-chan int, within time.Duration) int {
	t.Helper()
	select {
	case c := <-code:
		return c
	case <-time.After(within):
		t.Fatal("server did not exit")
		return -1
	}
}

func TestSignalWhileIdleExitsZero(t *testing.T) {
	_, code := startRun(t, "--log-level", "none", "--grace", "200ms")

	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGINT))

	assert.Equal(t, 0, waitExit(t, code, 3*time.Second))
}

func TestSecondSignalCutsGraceShort(t *testing.T) {
	addr, code := startRun(t, "--log-level", "none", "--grace", "1m")

	held, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer held.Close()

	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGINT))

	require.Eventually(t, func() bool {
		conn, err := net.DialTimeout("tcp", addr, 50*time.Millisecond)
		if err != nil {
			return true
		}
		_ = conn.Close()
		return false
	}, 2*time.Second, 10*time.Millisecond)

	select {
	case <-code:
		t.Fatal("server exited while a session was still open")
	case <-time.After(100 * time.Millisecond):
	}

	require.NoError(t, syscall.Kill(syscall.Getpid(), syscall.SIGINT))

	assert.Equal(t, 0, waitExit(t, code, 3*time.Second))
}
