package router

import (
	"context"
	"net/http"

	"github.com/droplink-labs/backend/config"
	"github.com/droplink-labs/backend/pkg/logger"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type HandlerFunc[Request, Response any] func(ctx context.Context, req *Request) (*Response, error)

// MiddlewareFunc runs before the handler. It can derive a new context for the
// rest of the chain or abort the request by returning an error.
type MiddlewareFunc func(ctx context.Context) (context.Context, error)

// CloserFunc runs after the response is determined, regardless of the
// outcome. It can read the response or error through xcontext.
type CloserFunc func(ctx context.Context)

type Router struct {
	engine *gin.Engine

	db     *gorm.DB
	cfg    config.Configs
	logger logger.Logger

	befores []MiddlewareFunc
	afters  []MiddlewareFunc
	closers []CloserFunc
}

func New(db *gorm.DB, cfg config.Configs, logger logger.Logger) *Router {
	gin.SetMode(gin.ReleaseMode)
	return &Router{
		engine: gin.New(),
		db:     db,
		cfg:    cfg,
		logger: logger,
	}
}

// Branch returns a router sharing the same engine but with an independent
// middleware chain. Routes registered on the branch see the branch's chain
// only.
func (r *Router) Branch() *Router {
	clone := *r
	clone.befores = append([]MiddlewareFunc{}, r.befores...)
	clone.afters = append([]MiddlewareFunc{}, r.afters...)
	clone.closers = append([]CloserFunc{}, r.closers...)
	return &clone
}

func (r *Router) Before(middleware MiddlewareFunc) {
	r.befores = append(r.befores, middleware)
}

func (r *Router) After(middleware MiddlewareFunc) {
	r.afters = append(r.afters, middleware)
}

func (r *Router) AddCloser(closer CloserFunc) {
	r.closers = append(r.closers, closer)
}

func (r *Router) Static(relativePath, root string) {
	r.engine.Static(relativePath, root)
}

func (r *Router) Handler() http.Handler {
	return r.engine
}

func GET[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.engine.GET(pattern, wrapHandler(r, http.MethodGet, handler))
}

func POST[Request, Response any](r *Router, pattern string, handler HandlerFunc[Request, Response]) {
	r.engine.POST(pattern, wrapHandler(r, http.MethodPost, handler))
}
