package server

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/hiernet/pkg/observability"
)

// requestLogger logs every request after it completed and reports it to hooks.
func requestLogger(logger *log.Logger, hooks observability.HTTPHooks) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

			ww := chimiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			duration := time.Since(start)
			hooks.OnResponse(r.Context(), r.Method, r.URL.Path, status, duration)

			logf := logger.Info
			if status >= http.StatusInternalServerError {
				logf = logger.Error
			}
			logf("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", duration,
				"request_id", chimiddleware.GetReqID(r.Context()),
			)
		})
	}
}
