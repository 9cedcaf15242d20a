package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"github.com/rs/zerolog"

	"github.com/maxviazov/pr-insights-service/internal/service"
)

// Options tunes the middleware stack built by NewRouter.
type Options struct {
	RequestTimeout time.Duration
	Logger         zerolog.Logger
}

// Register mounts all public routes on the given engine.
func Register(r *gin.Engine, repo Pinger, prSvc service.PullRequestService) {
	h := NewHealthHandler(repo)

	// Health probes
	r.GET("/live", h.Liveness)
	r.GET("/ready", h.Readiness)

	prs := NewPullRequestHandler(prSvc)
	for _, prefix := range []string{V1Prefix, APIV1Prefix} {
		api := r.Group(prefix)
		{
			health := api.Group("/health")
			{
				health.GET("/live", h.Liveness)
				health.GET("/ready", h.Readiness)
			}
			prs.Register(api)
		}
	}
}

// NewRouter builds a gin engine with recovery, request id, access log and timeout middleware.
func NewRouter(repo Pinger, prSvc service.PullRequestService, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestID(), AccessLog(opts.Logger), Timeout(opts.RequestTimeout))
	Register(r, repo, prSvc)
	return r
}

// WithCORS wraps h with a CORS policy. An empty origin list leaves h untouched.
func WithCORS(h http.Handler, allowedOrigins []string) http.Handler {
	if len(allowedOrigins) == 0 {
		return h
	}
	return cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "Authorization", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         600,
	}).Handler(h)
}
