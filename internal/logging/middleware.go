package logging

import (
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// statusRecorder remembers the status code and body size of a response.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

func (sr *statusRecorder) Write(b []byte) (int, error) {
	n, err := sr.ResponseWriter.Write(b)
	sr.bytes += n
	return n, err
}

// unlogged paths are scraped or probed too often to be worth a line.
var unlogged = map[string]bool{
	"/health":  true,
	"/metrics": true,
}

// requestLevel picks the level for a finished request. Successful poll
// requests arrive from every client on each tick, so they drop to debug.
func requestLevel(path string, status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	case strings.HasSuffix(path, "/poll"):
		return slog.LevelDebug
	default:
		return slog.LevelInfo
	}
}

// RequestLogger is middleware that logs each API request with its caller.
func RequestLogger(logger *slog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if unlogged[r.URL.Path] {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sr, r)

		logger.Log(r.Context(), requestLevel(r.URL.Path, sr.status), "request",
			"method", r.Method,
			"path", r.URL.Path,
			"query", r.URL.RawQuery,
			"status", sr.status,
			"bytes", sr.bytes,
			"duration", time.Since(start).String(),
			"ip", r.RemoteAddr,
			"user_id", r.Header.Get("X-User-Id"),
		)
	})
}
