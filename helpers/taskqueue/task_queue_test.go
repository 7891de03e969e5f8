package taskqueue

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestQueueIsFIFO(t *testing.T) {
	ctx := context.Background()
	q := New[int]()

	for i := 0; i < 100; i++ {
		q.Push(ctx, i)
	}
	require.Equal(t, 100, q.Len(ctx))

	for i := 0; i < 100; i++ {
		item, ok := q.Pop(ctx)
		require.True(t, ok)
		require.Equal(t, i, item)
	}
}

func TestPopBlocksUntilPush(t *testing.T) {
	ctx := context.Background()
	q := New[string]()

	resultCh := make(chan string)
	go func() {
		item, ok := q.Pop(ctx)
		require.True(t, ok)
		resultCh <- item
	}()

	time.Sleep(10 * time.Millisecond)
	q.Push(ctx, "hello")

	select {
	case item := <-resultCh:
		require.Equal(t, "hello", item)
	case <-time.After(time.Second):
		t.Fatal("Pop did not wake up")
	}
}

func TestPopReturnsOnContextCancel(t *testing.T) {
	ctx, cancelFn := context.WithCancel(context.Background())
	q := New[int]()

	doneCh := make(chan struct{})
	go func() {
		defer close(doneCh)
		_, ok := q.Pop(ctx)
		require.False(t, ok)
	}()

	cancelFn()
	select {
	case <-doneCh:
	case <-time.After(time.Second):
		t.Fatal("Pop did not return on cancellation")
	}
}
