package middleware

import (
	"context"
	"strconv"
	"time"

	"github.com/droplink-labs/backend/internal/common"
	"github.com/droplink-labs/backend/pkg/router"
	"github.com/droplink-labs/backend/pkg/xcontext"
)

func WithStartTime() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		return xcontext.WithStartTime(ctx, time.Now()), nil
	}
}

func Prometheus() router.CloserFunc {
	return func(ctx context.Context) {
		path := xcontext.HTTPRequest(ctx).URL.Path
		code := strconv.Itoa(int(ErrorCode(ctx)))
		latency := time.Since(xcontext.StartTime(ctx))

		common.PromCounters[common.HTTPRequestTotal].
			WithLabelValues(path, code).Inc()
		common.PromHistograms[common.HTTPRequestDurationSeconds].
			WithLabelValues(path, code).Observe(latency.Seconds())
	}
}
