package utils

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

func TestFIFOPreservesOrder(t *testing.T) {
	f := NewFIFO[int]()
	for i := 0; i < 100; i++ {
		f.Push(i)
	}

	ctx := context.Background()
	for i := 0; i < 100; i++ {
		v, ok := f.Pop(ctx)
		require.True(t, ok)
		require.Equal(t, i, v)
	}
	assert.Equal(t, 0, f.Len())
}

// -----------------------------------------------------------------------------

func TestFIFOPopBlocksUntilPush(t *testing.T) {
	f := NewFIFO[string]()

	done := make(chan string, 1)
	go func() {
		v, _ := f.Pop(context.Background())
		done <- v
	}()

	select {
	case <-done:
		t.Fatal("Pop returned before anything was pushed")
	case <-time.After(20 * time.Millisecond):
	}

	f.Push("hello")
	select {
	case v := <-done:
		assert.Equal(t, "hello", v)
	case <-time.After(time.Second):
		t.Fatal("Pop never woke up")
	}
}

// -----------------------------------------------------------------------------

func TestFIFOPopHonorsContextCancel(t *testing.T) {
	f := NewFIFO[int]()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan bool, 1)
	go func() {
		_, ok := f.Pop(ctx)
		done <- ok
	}()

	cancel()
	select {
	case ok := <-done:
		assert.False(t, ok)
	case <-time.After(time.Second):
		t.Fatal("Pop ignored cancellation")
	}
}

// -----------------------------------------------------------------------------

func TestFIFOConcurrentProducersLoseNothing(t *testing.T) {
	f := NewFIFO[int]()

	const producers = 8
	const perProducer = 500

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				f.Push(base + i)
			}
		}(p * perProducer)
	}
	wg.Wait()

	seen := make(map[int]bool)
	ctx := context.Background()
	for i := 0; i < producers*perProducer; i++ {
		v, ok := f.Pop(ctx)
		require.True(t, ok)
		seen[v] = true
	}
	assert.Len(t, seen, producers*perProducer)
}

// -----------------------------------------------------------------------------

func TestFIFOClear(t *testing.T) {
	f := NewFIFO[int]()
	f.Push(1)
	f.Push(2)
	f.Clear()
	assert.Equal(t, 0, f.Len())
}
