// handlers/router.go
package handlers

import (
	"net/http"

	"github.com/gewnthar/fundscout/config"
	"github.com/gewnthar/fundscout/logger"
)

// RouterDeps are the pieces the HTTP surface is built from. Admin and
// Metrics are optional.
type RouterDeps struct {
	Proposals *ProposalHandler
	Admin     *AdminHandler
	Health    http.HandlerFunc
	Metrics   http.Handler
	API       config.APIConfig
	Log       logger.Logger
}

// NewRouter wires the routes and wraps them in logging, CORS and the
// per-client rate limit, outermost first.
func NewRouter(deps RouterDeps) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/proposals", deps.Proposals.GetProposals)
	mux.HandleFunc("GET /api/health", deps.Health)
	if deps.Admin != nil {
		mux.HandleFunc("POST /api/admin/ingest", deps.Admin.TriggerIngest)
	}
	if deps.Metrics != nil {
		mux.Handle("GET /metrics", deps.Metrics)
	}

	limiter := NewRateLimiter(deps.API.RateLimit, deps.API.RateWindow, deps.API.ProxyPrefixes)
	var h http.Handler = mux
	h = limiter.Middleware(h)
	h = CORS(deps.API.CORSOrigins)(h)
	h = RequestLogger(deps.Log, deps.API.ProxyPrefixes)(h)
	return h
}
