package osa

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingSet_AddRemove(t *testing.T) {
	p := NewPendingSet()
	assert.Equal(t, 0, p.Len())

	p.Add("a")
	p.Add("b")
	assert.Equal(t, 2, p.Len())

	p.Remove("a")
	assert.Equal(t, 1, p.Len())

	// Removing an unknown token is a no-op.
	p.Remove("missing")
	assert.Equal(t, 1, p.Len())
}

func TestPendingSet_WaitOnEmptySet(t *testing.T) {
	p := NewPendingSet()
	require.NoError(t, p.Wait(context.Background()))
}

func TestPendingSet_WaitBlocksUntilDrained(t *testing.T) {
	p := NewPendingSet()
	p.Add("a")
	p.Add("b")

	done := make(chan error, 1)
	go func() {
		done <- p.Wait(context.Background())
	}()

	select {
	case <-done:
		t.Fatal("Wait returned while tokens were still pending")
	case <-time.After(30 * time.Millisecond):
	}

	p.Remove("a")
	p.Remove("b")

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after drain")
	}
}

func TestPendingSet_WaitContextCancelled(t *testing.T) {
	p := NewPendingSet()
	p.Add("stuck")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	err := p.Wait(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, p.Len())
}

func TestPendingSet_ConcurrentInsertRemove(t *testing.T) {
	p := NewPendingSet()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			token := fmt.Sprintf("token-%d", n)
			p.Add(token)
			p.Remove(token)
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 0, p.Len())
	require.NoError(t, p.Wait(context.Background()))
}
