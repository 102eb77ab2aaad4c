package events

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockEventPublisher_ConcurrentPublish(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	publisher := NewMockEventPublisher(logger)
	ctx := context.Background()

	const goroutines = 16
	const perGoroutine = 25

	var wg sync.WaitGroup
	for g := 0; g < goroutines; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perGoroutine; i++ {
				err := publisher.PublishGameEvent(ctx, NewLevelUpEvent(1, 1, 2, 100))
				assert.NoError(t, err)
			}
		}()
	}
	wg.Wait()

	published := publisher.GetPublishedEvents()
	require.Len(t, published, goroutines*perGoroutine)
	for _, e := range published {
		assert.Equal(t, EventLevelUp, e.Type)
	}

	// The snapshot is detached from later publishes.
	require.NoError(t, publisher.PublishGameEvent(ctx, NewLevelUpEvent(2, 1, 2, 100)))
	assert.Len(t, published, goroutines*perGoroutine)

	publisher.ClearEvents()
	assert.Empty(t, publisher.GetPublishedEvents())
}
