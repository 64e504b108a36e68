package observability

import (
	"testing"

	"github.com/getsentry/sentry-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitSentry_NoDSN(t *testing.T) {
	assert.NoError(t, InitSentry(SentryConfig{Environment: "test"}))
}

func TestScrubEvent_DropsRequestBody(t *testing.T) {
	event := &sentry.Event{Request: &sentry.Request{
		URL:     "https://bridge.local/auth/signin",
		Data:    `{"cpf":"12345678900"}`,
		Cookies: "session=abc",
	}}

	scrubbed := scrubEvent(event, nil)

	require.NotNil(t, scrubbed)
	assert.Empty(t, scrubbed.Request.Data)
	assert.Empty(t, scrubbed.Request.Cookies)
	assert.Equal(t, "https://bridge.local/auth/signin", scrubbed.Request.URL)
}

func TestScrubEvent_WithoutRequest(t *testing.T) {
	event := &sentry.Event{Message: "panic in request"}

	assert.Same(t, event, scrubEvent(event, nil))
}
