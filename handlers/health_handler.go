// handlers/health_handler.go
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gewnthar/fundscout/logger"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler reports service health, including store reachability.
func HealthHandler(db Pinger, log logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			log.Warn("Health check failed", logger.Error(err))
			respondWithJSON(w, http.StatusServiceUnavailable, map[string]string{
				"status":  "error",
				"message": "database connection error",
			})
			return
		}
		respondWithJSON(w, http.StatusOK, map[string]string{
			"status":  "ok",
			"message": "fundscout is healthy",
		})
	}
}
