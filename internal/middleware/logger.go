package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/droplink-labs/backend/pkg/errorx"
	"github.com/droplink-labs/backend/pkg/router"
	"github.com/droplink-labs/backend/pkg/xcontext"
)

func Logger() router.CloserFunc {
	return func(ctx context.Context) {
		req := xcontext.HTTPRequest(ctx)
		latency := time.Since(xcontext.StartTime(ctx))

		if err := xcontext.Error(ctx); err != nil {
			xcontext.Logger(ctx).Errorf("%s %s | %s | %v",
				req.Method, req.URL.Path, latency, err)
			return
		}

		xcontext.Logger(ctx).Infof("%s %s | %s", req.Method, req.URL.Path, latency)
	}
}

// ErrorCode extracts the response code the request finished with.
func ErrorCode(ctx context.Context) errorx.Code {
	if err := xcontext.Error(ctx); err != nil {
		var errx errorx.Error
		if errors.As(err, &errx) {
			return errx.Code
		}

		return errorx.Unknown.Code
	}

	return 0
}
