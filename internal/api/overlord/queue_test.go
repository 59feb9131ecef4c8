package overlord

import (
	"context"
	"testing"
	"testing/synctest"

	"github.com/stretchr/testify/require"
)

func TestQueue_FIFO(t *testing.T) {
	t.Parallel()

	q := newQueue()
	q.Push(update{name: "a", value: 1})
	q.Push(update{name: "b", value: 2})
	q.Push(update{name: "a", value: 3})

	for _, want := range []update{{"a", 1}, {"b", 2}, {"a", 3}} {
		got, ok := q.Pop(context.Background())
		require.True(t, ok)
		require.Equal(t, want, got)
	}
}

// TestQueue_CloseDrains delivers queued items before reporting closure.
func TestQueue_CloseDrains(t *testing.T) {
	t.Parallel()

	q := newQueue()
	q.Push(update{name: "a", value: true})
	q.Close()
	q.Push(update{name: "b", value: false})

	got, ok := q.Pop(context.Background())
	require.True(t, ok)
	require.Equal(t, "a", got.name)

	_, ok = q.Pop(context.Background())
	require.False(t, ok)
}

// TestQueue_PopWaits blocks until an item arrives or the queue closes.
func TestQueue_PopWaits(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		q := newQueue()
		results := make(chan bool, 2)

		go func() {
			_, ok := q.Pop(context.Background())
			results <- ok
			_, ok = q.Pop(context.Background())
			results <- ok
		}()

		synctest.Wait()
		require.Empty(t, results)

		q.Push(update{name: "a"})
		synctest.Wait()
		require.True(t, <-results)

		q.Close()
		synctest.Wait()
		require.False(t, <-results)
	})
}

// TestQueue_PopCancelled returns when the context ends.
func TestQueue_PopCancelled(t *testing.T) {
	t.Parallel()

	synctest.Test(t, func(t *testing.T) {
		q := newQueue()
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan bool)

		go func() {
			_, ok := q.Pop(ctx)
			done <- ok
		}()

		synctest.Wait()
		cancel()
		require.False(t, <-done)
	})
}
