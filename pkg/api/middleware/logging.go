package middleware

import (
	"net/http"
	"time"

	"github.com/dd0wney/nodelyzer/pkg/logging"
)

// Logging attaches a request scoped logger to the context and logs each
// request once it completes. Server errors log at error level.
func Logging(logger logging.Logger) func(http.Handler) http.Handler {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			reqLogger := logger
			if id := GetRequestID(r); id != "" {
				reqLogger = logger.With(logging.RequestID(id))
			}
			rec := newStatusRecorder(w)
			next.ServeHTTP(rec, r.WithContext(logging.WithContext(r.Context(), reqLogger)))

			fields := []logging.Field{
				logging.String("method", r.Method),
				logging.Path(r.URL.Path),
				logging.Int("status", rec.statusCode),
				logging.Int("bytes", rec.bytesWritten),
				logging.Latency(time.Since(start)),
			}
			switch {
			case rec.statusCode >= http.StatusInternalServerError:
				reqLogger.Error("http request", fields...)
			case rec.statusCode >= http.StatusBadRequest:
				reqLogger.Warn("http request", fields...)
			default:
				reqLogger.Info("http request", fields...)
			}
		})
	}
}
