package telemetry

import (
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"

	"github.com/havenops/stockledger/pkg/config"
)

const redacted = "[redacted]"

// credentialHeaders never leave the process in crash reports.
var credentialHeaders = []string{"Authorization", "Cookie", "Proxy-Authorization"}

// SetupSentry initializes the Sentry SDK. No-ops if DSN is empty.
func SetupSentry(cfg *config.Config) error {
	if cfg.SentryDSN == "" {
		return nil
	}
	if err := sentry.Init(sentryOptions(cfg)); err != nil {
		return fmt.Errorf("sentry init: %w", err)
	}
	return nil
}

func sentryOptions(cfg *config.Config) sentry.ClientOptions {
	rate := 0.2
	if cfg.Environment != config.EnvProduction {
		rate = 1.0
	}
	return sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      cfg.Environment,
		Release:          cfg.ServiceName + "@" + cfg.ServiceVersion,
		ServerName:       cfg.ServiceName,
		TracesSampleRate: rate,
		BeforeSend:       scrubCredentials,
	}
}

// scrubCredentials strips session cookies and bearer tokens from captured requests.
func scrubCredentials(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
	if event == nil || event.Request == nil {
		return event
	}
	for _, h := range credentialHeaders {
		if _, ok := event.Request.Headers[h]; ok {
			event.Request.Headers[h] = redacted
		}
	}
	if event.Request.Cookies != "" {
		event.Request.Cookies = redacted
	}
	return event
}

// SentryFlush flushes buffered events before process exit.
func SentryFlush() {
	sentry.Flush(2 * time.Second)
}

// SentryMiddleware captures panics and re-panics so the outer Recovery
// middleware still writes the 500 envelope.
func SentryMiddleware() func(http.Handler) http.Handler {
	h := sentryhttp.New(sentryhttp.Options{Repanic: true, Timeout: 2 * time.Second})
	return h.Handle
}
