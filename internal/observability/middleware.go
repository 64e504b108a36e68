package observability

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/google/uuid"
)

const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

func RequestIDFromContext(ctx context.Context) string {
	value, _ := ctx.Value(requestIDKey{}).(string)
	return value
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.statusCode = status
	r.ResponseWriter.WriteHeader(status)
}

// RequestIDMiddleware reuses an inbound X-Request-ID or generates a UUIDv7.
func RequestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := strings.TrimSpace(r.Header.Get(RequestIDHeader))
		if requestID == "" {
			if id, err := uuid.NewV7(); err == nil {
				requestID = id.String()
			} else {
				requestID = uuid.NewString()
			}
		}

		w.Header().Set(RequestIDHeader, requestID)
		next.ServeHTTP(w, r.WithContext(WithRequestID(r.Context(), requestID)))
	})
}

// RequestLoggingMiddleware logs one line per request at a level derived from
// the response status.
func RequestLoggingMiddleware(logger *Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(recorder, r)

		fields := map[string]any{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      recorder.statusCode,
			"duration_ms": time.Since(start).Milliseconds(),
			"ip":          ClientIP(r),
			"request_id":  RequestIDFromContext(r.Context()),
		}
		switch {
		case recorder.statusCode >= http.StatusInternalServerError:
			logger.Error("http_request", fields)
		case recorder.statusCode >= http.StatusBadRequest:
			logger.Warn("http_request", fields)
		default:
			logger.Info("http_request", fields)
		}
	})
}

// RecoverMiddleware turns a panic into the generic 500 body and reports it
// with the request id and stack.
func RecoverMiddleware(logger *Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			ctx := r.Context()
			captureWithScope(ctx, map[string]string{"path": r.URL.Path}, func(hub *sentry.Hub) {
				hub.Scope().SetExtra("stack", string(debug.Stack()))
				hub.CaptureException(fmt.Errorf("panic: %v", rec))
			})
			logger.Error("panic_recovered", map[string]any{
				"path":       r.URL.Path,
				"method":     r.Method,
				"panic":      fmt.Sprint(rec),
				"request_id": RequestIDFromContext(ctx),
			})

			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = w.Write([]byte("Internal server error"))
		}()

		next.ServeHTTP(w, r)
	})
}

func ClientIP(r *http.Request) string {
	xForwardedFor := strings.TrimSpace(r.Header.Get("X-Forwarded-For"))
	if xForwardedFor != "" {
		ip, _, _ := strings.Cut(xForwardedFor, ",")
		if ip = strings.TrimSpace(ip); ip != "" {
			return ip
		}
	}

	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}

	return "unknown"
}
