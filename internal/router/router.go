// Package router wires the analyzer server's routes and middleware.
package router

import (
	"net/http"
	"time"

	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/analysis/handler"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/analytics"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/internal/auth/apikey"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/health"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/metrics"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/middleware"
	"github.com/Adithya-Monish-Kumar-K/text-analyzer/pkg/ratelimit"
)

// Deps are the pieces the router serves. Analytics, Keys, Limiter and
// Metrics are optional.
type Deps struct {
	Analysis       *handler.Handler
	Analytics      *analytics.Handler
	Health         *health.Checker
	Keys           apikey.Validator
	Limiter        *ratelimit.Limiter
	Metrics        *metrics.Metrics
	CORS           middleware.CORSConfig
	RequestTimeout time.Duration
}

// New builds the server handler.
//
// Route table:
//
//	POST   /api/v1/analyze
//	GET    /api/v1/reports
//	GET    /api/v1/reports/{id}
//	GET    /api/v1/vocabulary
//	POST   /api/v1/vocabulary/{kind}
//	GET    /api/v1/cache/stats
//	POST   /api/v1/cache/invalidate
//	GET    /api/v1/analytics
//	GET    /api/v1/analytics/snapshots
//	GET    /health/live
//	GET    /health/ready
//
// Middleware, outermost first:
//
//	RequestID → CORS → Metrics → Auth → RateLimit → Timeout → mux
func New(d Deps) http.Handler {
	mux := http.NewServeMux()

	mux.Handle("GET /health/live", d.Health.LiveHandler())
	mux.Handle("GET /health/ready", d.Health.ReadyHandler())

	d.Analysis.Register(mux)

	if d.Analytics != nil {
		mux.HandleFunc("GET /api/v1/analytics", d.Analytics.Stats)
		mux.HandleFunc("GET /api/v1/analytics/snapshots", d.Analytics.Snapshots)
	}

	mws := []func(http.Handler) http.Handler{
		middleware.RequestID,
		middleware.CORS(d.CORS),
	}
	if d.Metrics != nil {
		mws = append(mws, middleware.Metrics(d.Metrics))
	}
	if d.Keys != nil {
		mws = append(mws, apikey.Middleware(d.Keys))
	}
	if d.Limiter != nil {
		mws = append(mws, middleware.RateLimit(d.Limiter))
	}
	mws = append(mws, middleware.Timeout(d.RequestTimeout))

	return middleware.Chain(mux, mws...)
}
