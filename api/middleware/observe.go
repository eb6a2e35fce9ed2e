package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/gsindri/kaupa-skil-sub004/pkg/logger"
	"github.com/gsindri/kaupa-skil-sub004/pkg/metrics"
)

type outcome struct {
	status  int
	bytes   int
	elapsed time.Duration
	route   string
}

// observe runs next and reports what it wrote. A handler that writes nothing
// counts as 200, which is what net/http sends.
func observe(w http.ResponseWriter, r *http.Request, next http.Handler) outcome {
	ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
	start := time.Now()
	next.ServeHTTP(ww, r)

	out := outcome{status: ww.Status(), bytes: ww.BytesWritten(), elapsed: time.Since(start)}
	if out.status == 0 {
		out.status = http.StatusOK
	}
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		out.route = rctx.RoutePattern()
	}
	return out
}

// Logging writes one access line per request. Server errors log at warn so
// they stand out; the error itself is logged where it is rendered.
func Logging(logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if logg == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := logg.WithFields(r.Context(), map[string]any{
				"method": r.Method,
				"path":   r.URL.Path,
			})
			r = r.WithContext(ctx)
			out := observe(w, r, next)

			ctx = logg.WithFields(ctx, map[string]any{
				"status":      out.status,
				"bytes":       out.bytes,
				"duration_ms": out.elapsed.Milliseconds(),
				"route":       out.route,
			})
			if out.status >= http.StatusInternalServerError {
				logg.Warn(ctx, "request.complete")
				return
			}
			logg.Info(ctx, "request.complete")
		})
	}
}

// Metrics labels requests by chi route pattern, never the raw path.
func Metrics(m *metrics.HTTPMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if m == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			out := observe(w, r, next)
			m.Observe(r.Method, out.route, out.status, out.elapsed)
		})
	}
}
