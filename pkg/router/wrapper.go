package router

import (
	"context"
	"net/http"

	"github.com/droplink-labs/backend/pkg/errorx"
	"github.com/droplink-labs/backend/pkg/xcontext"
	"github.com/gin-gonic/gin"
)

func wrapHandler[Request, Response any](
	router *Router,
	method string,
	handler HandlerFunc[Request, Response],
) gin.HandlerFunc {
	// Middleware chains are frozen at registration time.
	befores := router.befores
	afters := router.afters
	closers := router.closers

	return func(ginCtx *gin.Context) {
		ctx := context.Context(ginCtx.Request.Context())
		ctx = xcontext.WithConfigs(ctx, router.cfg)
		ctx = xcontext.WithLogger(ctx, router.logger)
		ctx = xcontext.WithDB(ctx, router.db)
		ctx = xcontext.WithHTTPRequest(ctx, ginCtx.Request)
		ctx = xcontext.WithHTTPWriter(ctx, ginCtx.Writer)

		ctx = func() context.Context {
			for _, m := range befores {
				next, err := m(ctx)
				if err != nil {
					return xcontext.WithError(ctx, err)
				}
				ctx = next
			}

			var req Request
			var err error
			switch method {
			case http.MethodGet:
				err = ginCtx.ShouldBindQuery(&req)
			default:
				err = ginCtx.ShouldBindJSON(&req)
			}
			if err != nil {
				return xcontext.WithError(ctx,
					errorx.New(errorx.BadRequest, "Cannot bind the request"))
			}

			resp, err := handler(ctx, &req)
			if err != nil {
				return xcontext.WithError(ctx, err)
			}

			return xcontext.WithResponse(ctx, resp)
		}()

		for _, m := range afters {
			next, err := m(ctx)
			if err != nil {
				ctx = xcontext.WithError(ctx, err)
				break
			}
			ctx = next
		}

		for _, closer := range closers {
			closer(ctx)
		}

		if err := xcontext.Error(ctx); err != nil {
			ginCtx.JSON(http.StatusOK, newErrorResponse(err))
		} else {
			ginCtx.JSON(http.StatusOK, newResponse(xcontext.Response(ctx)))
		}
	}
}
