package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/opulent-living/property-service/internal/platform/logger"
)

// RequestLogger logs each request through a child logger that carries the
// request id, method and path.
func RequestLogger(log *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			reqLog := log.With("request_id", chimw.GetReqID(r.Context()), "method", r.Method, "path", r.URL.Path)
			if reqLog.Enabled("debug") {
				reqLog.Debug("HTTP request", "remote_addr", r.RemoteAddr, "user_agent", r.UserAgent())
			}

			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := statusOf(ww)
			duration := time.Since(start)
			if status >= http.StatusInternalServerError {
				reqLog.Error("HTTP request failed", "status", status, "duration", duration)
				return
			}
			reqLog.Info("HTTP request completed", "status", status, "bytes", ww.BytesWritten(), "duration", duration)
		})
	}
}

// statusOf treats a handler that never wrote as 200, like net/http does.
func statusOf(ww chimw.WrapResponseWriter) int {
	if ww.Status() == 0 {
		return http.StatusOK
	}
	return ww.Status()
}
