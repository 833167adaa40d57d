package async

import (
	"context"
	"errors"
	"time"
)

// ErrTimeout is returned by AwaitWithTimeout when the deadline elapses
// before the function completes.
var ErrTimeout = errors.New("async: await timed out")

// ExecFuture represents the result of an asynchronous computation that only
// returns an error. The single write to err happens before done is closed.
type ExecFuture struct {
	err  error
	done chan struct{}
}

// Await waits for the asynchronous function to complete and returns its
// error.
func (f *ExecFuture) Await() error {
	<-f.done
	return f.err
}

// AwaitWithTimeout waits for completion up to the given timeout. If the
// timeout elapses first, ErrTimeout is returned and the function keeps
// running.
func (f *ExecFuture) AwaitWithTimeout(timeout time.Duration) error {
	select {
	case <-f.done:
		return f.err
	case <-time.After(timeout):
		return ErrTimeout
	}
}

// IsComplete checks completion without blocking.
func (f *ExecFuture) IsComplete() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Exec runs fn(ctx, param) on its own goroutine and returns a future for
// its error.
func Exec[T any](ctx context.Context, param T, fn func(context.Context, T) error) *ExecFuture {
	f := &ExecFuture{done: make(chan struct{})}

	go func() {
		defer close(f.done)

		// Early exit prevents goroutine leak when context is pre-canceled
		select {
		case <-ctx.Done():
			f.err = ctx.Err()
			return
		default:
		}

		f.err = fn(ctx, param)
	}()

	return f
}
