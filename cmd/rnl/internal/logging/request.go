package logging

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/rafaelsantos01/react-nextjs-logger/cmd/rnl/internal/constants"
)

// Context key for request ID
type contextKey string

const requestIDKey contextKey = constants.ContextKeyRequestID

// SetRequestID sets the request ID in the context
func SetRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// GetRequestID gets the request ID from the context
func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey).(string); ok {
		return id
	}
	return ""
}

// RequestLoggerConfig holds configuration for request logging middleware
type RequestLoggerConfig struct {
	Logger *Logger

	// SkipPaths are paths that should not be logged
	SkipPaths []string

	// LogHeaders adds request headers to the debug record. They pass
	// through the logger's redactor like any other data.
	LogHeaders bool
}

// RequestLogger is middleware for logging HTTP requests
type RequestLogger struct {
	config    RequestLoggerConfig
	skipPaths map[string]bool
}

// NewRequestLogger creates a new request logging middleware
func NewRequestLogger(config RequestLoggerConfig) *RequestLogger {
	if config.Logger == nil {
		config.Logger = GetLogger()
	}
	skipPaths := make(map[string]bool)
	for _, path := range config.SkipPaths {
		skipPaths[path] = true
	}

	return &RequestLogger{
		config:    config,
		skipPaths: skipPaths,
	}
}

// Middleware logs "Request: METHOD URL" on arrival and
// "Response: STATUS METHOD URL" on completion. The request ID is taken from
// X-Request-ID or generated, echoed in the response and stored in the
// request context.
func (rl *RequestLogger) Middleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(constants.HeaderRequestID)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		w.Header().Set(constants.HeaderRequestID, requestID)
		ctx := SetRequestID(r.Context(), requestID)
		r = r.WithContext(ctx)

		if rl.skipPaths[r.URL.Path] {
			next(w, r)
			return
		}

		start := time.Now()
		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		logger := rl.config.Logger.WithContext(ctx)
		url := r.URL.RequestURI()

		if logger.Level().Enabled(LevelDebug) {
			debugFields := map[string]any{
				"method": r.Method,
				"path":   r.URL.Path,
				"query":  r.URL.RawQuery,
			}
			if rl.config.LogHeaders {
				headers := make(map[string]string, len(r.Header))
				for key, values := range r.Header {
					if len(values) > 0 {
						headers[key] = values[0]
					}
				}
				debugFields["headers"] = headers
			}
			logger.Log(LevelDebug, "Request: "+r.Method+" "+url, debugFields)
		}

		next(rw, r)

		level := LevelInfo
		if rw.statusCode >= http.StatusInternalServerError {
			level = LevelError
		} else if rw.statusCode >= http.StatusBadRequest {
			level = LevelWarn
		}

		logger.Log(level, fmt.Sprintf("Response: %d %s %s", rw.statusCode, r.Method, url), map[string]any{
			"status":      rw.statusCode,
			"duration_ms": time.Since(start).Milliseconds(),
			"bytes":       rw.bytesWritten,
			"remote_addr": r.RemoteAddr,
			"user_agent":  r.UserAgent(),
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture status code and bytes
type responseWriter struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.bytesWritten += n
	return n, err
}

func (rw *responseWriter) Unwrap() http.ResponseWriter {
	return rw.ResponseWriter
}
