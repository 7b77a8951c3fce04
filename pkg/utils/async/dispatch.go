package async

import (
	"context"
	"runtime/debug"

	"github.com/m-mizutani/ctxlog"

	"github.com/m-mizutani/tagwatch/pkg/utils/errutil"
)

// Dispatch runs handler in a new goroutine. The handler gets a context detached
// from ctx cancellation that keeps the ctx logger. Panics are recovered and
// returned errors go through errutil.Handle.
func Dispatch(ctx context.Context, handler func(ctx context.Context) error) {
	newCtx := newBackgroundContext(ctx)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				ctxlog.From(newCtx).Error("panic in async handler",
					"recover", r,
					"stack", string(debug.Stack()))
			}
		}()

		if err := handler(newCtx); err != nil {
			errutil.Handle(newCtx, "error in async handler", err)
		}
	}()
}

func newBackgroundContext(ctx context.Context) context.Context {
	return ctxlog.With(context.WithoutCancel(ctx), ctxlog.From(ctx))
}
