package middleware

import (
	"log"
	"net/http"
	"time"
)

// statusWriter captures the status code and bytes written
type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int64
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.bytes += int64(n)
	return n, err
}

// LoggingMiddleware logs one line per request. Owner comes from the
// auth middleware, so mount this after APIKeyAuth.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(sw, r)

		log.Printf(
			"method=%s path=%s status=%d duration=%s bytes=%d ip=%s owner=%s user_agent=%s",
			r.Method,
			r.URL.Path,
			sw.status,
			time.Since(start),
			sw.bytes,
			r.RemoteAddr,
			GetOwnerFromContext(r.Context()),
			r.UserAgent(),
		)
	})
}
