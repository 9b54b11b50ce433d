package feature

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkspaceStoreIsReused(t *testing.T) {
	ws := NewWorkspaces(time.Minute).For("s1")
	a := StoreFor[item](ws, "orders", nil)
	b := StoreFor[item](ws, "orders", nil)
	assert.Same(t, a, b)
}

func TestWorkspacesDropAndTTL(t *testing.T) {
	now := time.Unix(1700000000, 0)
	registry := NewWorkspaces(time.Minute)
	registry.now = func() time.Time { return now }

	first := registry.For("s1")
	assert.Same(t, first, registry.For("s1"))

	registry.Drop("s1")
	assert.NotSame(t, first, registry.For("s1"))

	registry.For("s2")
	now = now.Add(2 * time.Minute)
	assert.Equal(t, 2, registry.Sweep())
	assert.Zero(t, registry.Len())

	stale := registry.For("s3")
	now = now.Add(2 * time.Minute)
	assert.NotSame(t, stale, registry.For("s3"), "idle workspace must be recreated")
}

func TestWorkspaceDoCoalesces(t *testing.T) {
	ws := NewWorkspaces(time.Minute).For("s1")
	var calls atomic.Int32
	release := make(chan struct{})

	var wg sync.WaitGroup
	for i := 0; i < 5; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = ws.Do(context.Background(), "orders|", func(context.Context) error {
				calls.Add(1)
				<-release
				return nil
			})
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()
	assert.Equal(t, int32(1), calls.Load())
}

func TestWorkspaceDoHonoursCancellation(t *testing.T) {
	ws := NewWorkspaces(time.Minute).For("s1")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	block := make(chan struct{})
	defer close(block)
	err := ws.Do(ctx, "k", func(context.Context) error {
		<-block
		return nil
	})
	require.ErrorIs(t, err, context.Canceled)
}
