package db

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

// Lazy holds a resource that is opened on first use and reused afterwards.
// Concurrent callers that arrive while the first open is in flight wait for
// that same attempt. A failed open is not cached; the next caller retries.
type Lazy[T any] struct {
	open    func(ctx context.Context) (T, error)
	timeout time.Duration

	group singleflight.Group

	mu    sync.RWMutex
	value T
	ready bool
}

func NewLazy[T any](timeout time.Duration, open func(ctx context.Context) (T, error)) *Lazy[T] {
	return &Lazy[T]{open: open, timeout: timeout}
}

func (l *Lazy[T]) Get(ctx context.Context) (T, error) {
	if v, ok := l.loaded(); ok {
		return v, nil
	}

	ch := l.group.DoChan("open", func() (any, error) {
		if v, ok := l.loaded(); ok {
			return v, nil
		}

		// the attempt outlives any single caller's cancellation
		octx := context.WithoutCancel(ctx)
		if l.timeout > 0 {
			var cancel context.CancelFunc
			octx, cancel = context.WithTimeout(octx, l.timeout)
			defer cancel()
		}

		v, err := l.open(octx)
		if err != nil {
			return v, err
		}

		l.mu.Lock()
		l.value = v
		l.ready = true
		l.mu.Unlock()

		return v, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			var zero T
			return zero, res.Err
		}
		return res.Val.(T), nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Peek returns the resource only if it has already been opened.
func (l *Lazy[T]) Peek() (T, bool) {
	return l.loaded()
}

func (l *Lazy[T]) loaded() (T, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.value, l.ready
}
