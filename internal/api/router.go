package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/wonny/valuequant/backend/internal/api/handlers"
	"github.com/wonny/valuequant/backend/pkg/logger"
)

// ServiceName is reported by the health endpoint
const ServiceName = "valuequant-api"

// NewRouter creates and configures the HTTP router. Either handler may be nil.
// ⭐ SSOT: 라우팅 설정은 이 함수에서만
func NewRouter(strategyHandler *handlers.StrategyHandler, schedulerHandler *handlers.SchedulerHandler, log *logger.Logger) http.Handler {
	r := mux.NewRouter()

	// Health check
	r.HandleFunc("/health", handlers.Health(ServiceName, time.Now())).Methods("GET")

	api := r.PathPrefix("/api").Subrouter()

	// Strategy endpoints
	if strategyHandler != nil {
		api.HandleFunc("/strategies/{strategy}", strategyHandler.Rank).Methods("GET")
		api.HandleFunc("/runs/{strategy}/latest", strategyHandler.LatestRun).Methods("GET")
	}

	if schedulerHandler != nil {
		api.HandleFunc("/scheduler/jobs", schedulerHandler.ListJobs).Methods("GET")
	}

	r.Use(loggingMiddleware(log))
	r.Use(recoveryMiddleware(log))

	return r
}

// statusRecorder captures the response status for logging
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			log.WithFields(logger.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"duration": time.Since(start),
			}).Debug("HTTP request")
		})
	}
}

// recoveryMiddleware recovers from panics
func recoveryMiddleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					log.WithFields(logger.Fields{
						"error": err,
						"path":  r.URL.Path,
					}).Error("Panic recovered")

					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"error": "Internal server error",
					})
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}
