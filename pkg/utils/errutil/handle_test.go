package errutil_test

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/tagwatch/pkg/utils/errutil"
)

func TestHandle(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	ctx := ctxlog.With(context.Background(), logger)

	t.Run("logs error", func(t *testing.T) {
		buf.Reset()
		errutil.Handle(ctx, "notification failed", errors.New("boom"))
		gt.String(t, buf.String()).Contains("notification failed")
		gt.String(t, buf.String()).Contains("boom")
	})

	t.Run("nil error is ignored", func(t *testing.T) {
		buf.Reset()
		errutil.Handle(ctx, "nothing", nil)
		gt.Value(t, buf.Len()).Equal(0)
	})
}
