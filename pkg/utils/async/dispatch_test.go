package async_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/tagwatch/pkg/utils/async"
)

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// notifyHandler signals on every record so tests can wait for async logs
type notifyHandler struct {
	slog.Handler
	written chan struct{}
}

func (h *notifyHandler) Handle(ctx context.Context, r slog.Record) error {
	err := h.Handler.Handle(ctx, r)
	select {
	case h.written <- struct{}{}:
	default:
	}
	return err
}

func newLoggedContext() (context.Context, *lockedBuffer, chan struct{}) {
	buf := &lockedBuffer{}
	written := make(chan struct{}, 1)
	h := &notifyHandler{
		Handler: slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelError}),
		written: written,
	}
	return ctxlog.With(context.Background(), slog.New(h)), buf, written
}

func waitFor(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(time.Second):
		t.Fatal("timed out")
	}
}

func TestDispatch(t *testing.T) {
	t.Run("runs handler in background", func(t *testing.T) {
		done := make(chan struct{})
		async.Dispatch(context.Background(), func(ctx context.Context) error {
			close(done)
			return nil
		})
		waitFor(t, done)
	})

	t.Run("returned error is logged", func(t *testing.T) {
		ctx, buf, written := newLoggedContext()
		async.Dispatch(ctx, func(ctx context.Context) error {
			return errors.New("slack unavailable")
		})
		waitFor(t, written)
		gt.String(t, buf.String()).Contains("error in async handler")
		gt.String(t, buf.String()).Contains("slack unavailable")
	})

	t.Run("panic is recovered with stack", func(t *testing.T) {
		ctx, buf, written := newLoggedContext()
		async.Dispatch(ctx, func(ctx context.Context) error {
			panic("notify exploded")
		})
		waitFor(t, written)
		gt.String(t, buf.String()).Contains("panic in async handler")
		gt.String(t, buf.String()).Contains("notify exploded")
		gt.String(t, buf.String()).Contains("dispatch_test.go")
	})

	t.Run("handler outlives caller cancellation", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		var errAfterCancel error
		async.Dispatch(ctx, func(newCtx context.Context) error {
			defer close(done)
			cancel()
			errAfterCancel = newCtx.Err()
			return nil
		})
		waitFor(t, done)
		gt.NoError(t, errAfterCancel)
	})
}
