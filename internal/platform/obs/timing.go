package obs

import (
	"context"
	"time"
)

type ctxKey string

const (
	RequestIDKey ctxKey = "req_id"
	RunIDKey     ctxKey = "run_id"
)

// Time logs the duration of the named operation once the returned func is called.
//
//	defer obs.Time(ctx, "amadeus.Quote")(&err)
func Time(ctx context.Context, name string) func(errp *error) {
	start := time.Now()
	logger := Logger(ctx)

	return func(errp *error) {
		dur := time.Since(start)

		attrs := []any{"op", name, "dur_ms", dur.Milliseconds()}

		if errp != nil && *errp != nil {
			logger.DebugContext(ctx, "op failed", append(attrs, "err", *errp)...)
			return
		}
		logger.DebugContext(ctx, "op done", attrs...)
	}
}
