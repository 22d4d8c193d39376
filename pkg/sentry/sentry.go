package sentry

import (
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/go-faster/errors"
)

type SentryInfoData map[string]interface{}

type Level = sentry.Level

const (
	LevelWarning = sentry.LevelWarning
	LevelError   = sentry.LevelError
)

var inited = false

// Init enables reporting. An empty dsn leaves Send a no-op.
func Init(dsn string) error {
	if dsn == "" {
		return nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              dsn,
		TracesSampleRate: 1.0,
	})
	if err != nil {
		return errors.Wrap(err, "failed to sentry init")
	}
	inited = true
	return nil
}

func Flush() {
	if inited {
		sentry.Flush(2 * time.Second)
	}
}

func Send(title string, data SentryInfoData, logLevel Level) {
	if !inited {
		return
	}

	go func(localHub *sentry.Hub) {
		localHub.ConfigureScope(func(scope *sentry.Scope) {
			scope.SetLevel(logLevel)
			scope.SetExtras(data)
		})
		localHub.CaptureMessage(title)
	}(sentry.CurrentHub().Clone())
}
