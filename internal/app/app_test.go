package app

import (
	"context"
	"fmt"
	"io"
	"net"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/Schera-ole/qasandbox/internal/config"
	internalerrors "github.com/Schera-ole/qasandbox/internal/errors"
)

func testConfig() *config.ServerConfig {
	return &config.ServerConfig{
		Address:      "127.0.0.1:0",
		OTLPProtocol: config.OTLPProtocolHTTP,
		OTLPInterval: 15 * time.Second,
		ServiceName:  "qa-sandbox",
	}
}

func TestNew_OptionalComponents(t *testing.T) {
	a, err := New(context.Background(), testConfig(), zap.NewNop())
	require.NoError(t, err)
	assert.Nil(t, a.Monitor)
	assert.Nil(t, a.Exporter)
	assert.NotNil(t, a.Handler())

	cfg := testConfig()
	cfg.MonitorInterval = time.Second
	a, err = New(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.NotNil(t, a.Monitor)
}

func TestNew_InvalidProtocol(t *testing.T) {
	cfg := testConfig()
	cfg.OTLPEndpoint = "localhost:4317"
	cfg.OTLPProtocol = "carrier-pigeon"

	_, err := New(context.Background(), cfg, zap.NewNop())
	assert.ErrorIs(t, err, internalerrors.ErrUnsupportedProtocol)
}

func TestApp_ServeAndShutdown(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	cfg := testConfig()
	cfg.MonitorInterval = 50 * time.Millisecond

	a, err := New(context.Background(), cfg, zap.New(core))
	require.NoError(t, err)

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	baseURL := fmt.Sprintf("http://%s", listener.Addr().String())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- a.Serve(ctx, listener)
	}()

	resp, err := http.Get(baseURL + "/status?code=404")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "HTTP 404 recorded", string(body))

	// the generator refreshes uptime even while idle
	assert.Eventually(t, func() bool {
		uptime, err := a.Storage.GaugeValue(config.UptimeMetric)
		return err == nil && uptime > 0
	}, 3*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("app did not shut down")
	}

	assert.Equal(t, 1, logs.FilterMessage("shutdown complete").Len())
	assert.GreaterOrEqual(t, logs.FilterMessage("resource").Len(), 1)

	count, err := a.Storage.CounterValue(config.HTTPCodesMetric, "404")
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestApp_RunListenError(t *testing.T) {
	cfg := testConfig()
	cfg.Address = "256.0.0.1:99999"

	a, err := New(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.Error(t, a.Run(context.Background()))
}
