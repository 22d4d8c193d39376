package app

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLogger(t *testing.T) {
	log := Logger("DEBUG")
	require.True(t, log.Core().Enabled(zap.DebugLevel))
	log = Logger("warn")
	require.False(t, log.Core().Enabled(zap.InfoLevel))
	require.Panics(t, func() { Logger("loud") })
}

func TestServe_Shutdown(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	srv := &http.Server{Addr: "127.0.0.1:0", Handler: http.NotFoundHandler()}
	done := make(chan error, 1)
	go func() {
		done <- Serve(ctx, zap.NewNop(), srv)
	}()
	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case err := <-done:
		require.Nil(t, err)
	case <-time.After(shutdownTimeout + time.Second):
		t.Fatal("server did not stop")
	}
}
