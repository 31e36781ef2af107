package transport

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/trademate/supportdesk/pkg/debug"
)

// Logging returns middleware that emits one structured log entry per
// request with method, path, status, size, duration, and request ID.
// Server errors are logged at error level, client errors at warn, and
// everything else at info.
func Logging(logger *slog.Logger) Middleware {
	if logger == nil {
		logger = slog.Default()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := newStatusRecorder(w)

			next.ServeHTTP(rec, r)

			attrs := []slog.Attr{
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.Int("status", rec.status),
				slog.Int("bytes", rec.bytes),
				slog.Duration("duration", time.Since(start)),
				slog.String("request_id", RequestIDFromContext(r.Context())),
			}

			level := slog.LevelInfo
			switch {
			case rec.status >= 500:
				level = slog.LevelError
			case rec.status >= 400:
				level = slog.LevelWarn
			}
			logger.LogAttrs(r.Context(), level, "request completed", attrs...)
			debug.Log("transport", "request headers", "path", r.URL.Path, "user_agent", r.UserAgent())
		})
	}
}
