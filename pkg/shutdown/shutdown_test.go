package shutdown

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFlagStartsRunning(t *testing.T) {
	f := NewFlag()
	assert.True(t, f.Running())

	select {
	case <-f.Done():
		t.Fatal("done closed before stop")
	default:
	}
}

func TestStopOnlyOnce(t *testing.T) {
	f := NewFlag()

	var wg sync.WaitGroup
	results := make(chan bool, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- f.Stop()
		}()
	}
	wg.Wait()
	close(results)

	firsts := 0
	for r := range results {
		if r {
			firsts++
		}
	}
	assert.Equal(t, 1, firsts)
	assert.False(t, f.Running())
	<-f.Done()
}

func TestContextCancelledOnStop(t *testing.T) {
	f := NewFlag()
	ctx, cancel := f.Context(context.Background())
	defer cancel()

	f.Stop()

	select {
	case <-ctx.Done():
	case <-time.After(time.Second):
		t.Fatal("context not cancelled")
	}
}

func TestIndependentFlags(t *testing.T) {
	a, b := NewFlag(), NewFlag()
	a.Stop()
	assert.False(t, a.Running())
	assert.True(t, b.Running())
}

func TestReleaseIsIdempotent(t *testing.T) {
	f := NewFlag()
	release := InstallSignalHandler(f, nil)
	release()
	release()
	assert.True(t, f.Running())
}

func TestForceStopsAndCloses(t *testing.T) {
	f := NewFlag()
	f.Force()
	f.Force()

	assert.False(t, f.Running())
	select {
	case <-f.Forced():
	default:
		t.Fatal("Forced not closed")
	}
	select {
	case <-f.Done():
	default:
		t.Fatal("Done not closed")
	}
}
