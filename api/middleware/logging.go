package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/cableflow/cableflow-backend/pkg/logger"
)

// Logging emits one http.request entry per call, after the handler ran, so
// the entry carries the matched route and the user resolved by Auth.
func Logging(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if logg == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			carrier := &logContext{}
			ctx := withLogContext(r.Context(), carrier)

			next.ServeHTTP(ww, r.WithContext(ctx))

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fields := map[string]any{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status":      status,
				"bytes":       ww.BytesWritten(),
				"duration_ms": time.Since(start).Milliseconds(),
			}
			if rctx := chi.RouteContext(r.Context()); rctx != nil && rctx.RoutePattern() != "" {
				fields["route"] = rctx.RoutePattern()
			}
			entryCtx := ctx
			if carrier.ctx != nil {
				entryCtx = carrier.ctx
			}
			entryCtx = logg.WithFields(entryCtx, fields)

			switch {
			case status >= http.StatusInternalServerError:
				logg.Error(entryCtx, "http.request", fmt.Errorf("status %d", status))
			case status >= http.StatusBadRequest:
				logg.Warn(entryCtx, "http.request")
			default:
				logg.Info(entryCtx, "http.request")
			}
		})
	}
}
