package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/simpletech310/CommonGround-sub005/pkg/config"

	"github.com/go-chi/chi/v5/middleware"
)

// Logger returns the request logging middleware. Production writes one JSON
// line per request; development uses chi's standard colored logger.
func Logger(cfg *config.Config) func(http.Handler) http.Handler {
	if !cfg.IsProduction() {
		return middleware.Logger
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			viewerInfo := "anonymous"
			if viewer, ok := GetViewerFromContext(r.Context()); ok && viewer != nil {
				viewerInfo = viewer.ID
			}

			fmt.Printf(`{"time":"%s","method":"%s","path":"%s","status":%d,"duration":"%s","viewer":"%s","ip":"%s"}`+"\n",
				time.Now().Format(time.RFC3339),
				r.Method,
				r.URL.Path,
				ww.Status(),
				time.Since(start),
				viewerInfo,
				getClientIP(r),
			)
		})
	}
}

// getClientIP resolves the client address behind proxies
func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}
