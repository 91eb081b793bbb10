package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/paystream/ledger/internal/host"
	"github.com/paystream/ledger/internal/models"
)

// CallerIdentity records the gateway-verified caller address from header on
// the request context, where the auth collaborator checks it.
func CallerIdentity(header string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if caller := r.Header.Get(header); caller != "" {
				r = r.WithContext(host.WithCaller(r.Context(), models.Address(caller)))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequestLogger logs one line per request with status, duration and the chi
// request id.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration_ms", time.Since(start).Milliseconds(),
				"request_id", middleware.GetReqID(r.Context()),
			)
		})
	}
}
