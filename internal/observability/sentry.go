package observability

import (
	"context"
	"time"

	"github.com/getsentry/sentry-go"
)

type SentryConfig struct {
	DSN         string
	Environment string
	Release     string
}

// InitSentry is a no-op without a DSN. Request bodies are dropped from events
// because they carry the CPF.
func InitSentry(cfg SentryConfig) error {
	if cfg.DSN == "" {
		return nil
	}

	return sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.DSN,
		Environment:      cfg.Environment,
		Release:          cfg.Release,
		AttachStacktrace: true,
		SendDefaultPII:   false,
		BeforeSend:       scrubEvent,
	})
}

func scrubEvent(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	if event.Request != nil {
		event.Request.Data = ""
		event.Request.Cookies = ""
	}
	return event
}

func FlushSentry() {
	sentry.Flush(2 * time.Second)
}

// CaptureError reports err with the request id attached, if any.
func CaptureError(ctx context.Context, err error, tags map[string]string) {
	captureWithScope(ctx, tags, func(hub *sentry.Hub) {
		hub.CaptureException(err)
	})
}

func captureWithScope(ctx context.Context, tags map[string]string, capture func(hub *sentry.Hub)) {
	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub()
	}

	hub.WithScope(func(scope *sentry.Scope) {
		if requestID := RequestIDFromContext(ctx); requestID != "" {
			scope.SetTag("request_id", requestID)
		}
		for key, value := range tags {
			scope.SetTag(key, value)
		}
		capture(hub)
	})
}
