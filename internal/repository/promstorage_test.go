package repository

import (
	"bytes"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Schera-ole/qasandbox/internal/config"
	internalerrors "github.com/Schera-ole/qasandbox/internal/errors"
)

func newSandboxStorage(t *testing.T) *PromStorage {
	t.Helper()
	storage, err := NewSandboxStorage()
	require.NoError(t, err)
	return storage
}

func TestNewPromStorage(t *testing.T) {
	storage := NewPromStorage()
	assert.NotNil(t, storage)
	assert.NotNil(t, storage.registry)
	assert.NotNil(t, storage.counters)
	assert.NotNil(t, storage.gauges)
	assert.Empty(t, storage.Descriptors())
}

func TestNewSandboxStorage_PresetSeries(t *testing.T) {
	storage := newSandboxStorage(t)

	for _, code := range config.StatusCodes {
		val, err := storage.CounterValue(config.HTTPCodesMetric, code)
		require.NoError(t, err, code)
		assert.Equal(t, int64(0), val, code)
	}
	for _, action := range config.UserActions {
		val, err := storage.CounterValue(config.UserActionsMetric, action)
		require.NoError(t, err, action)
		assert.Equal(t, int64(0), val, action)
	}

	var out bytes.Buffer
	require.NoError(t, storage.Export(&out))
	exposition := out.String()
	for _, code := range config.StatusCodes {
		assert.Contains(t, exposition, fmt.Sprintf(`app_http_codes_total{code="%s"} 0`, code))
	}
	for _, action := range config.UserActions {
		assert.Contains(t, exposition, fmt.Sprintf(`business_user_actions_total{action="%s"} 0`, action))
	}
	assert.Contains(t, exposition, "app_uptime_seconds 0")
	assert.Contains(t, exposition, "# TYPE app_http_codes_total counter")
	assert.Contains(t, exposition, "# TYPE app_uptime_seconds gauge")
}

func TestPromStorage_Increment(t *testing.T) {
	storage := newSandboxStorage(t)

	storage.Increment(config.HTTPCodesMetric, "404")
	storage.Increment(config.HTTPCodesMetric, "404")
	storage.Increment(config.UserActionsMetric, "login")

	val, err := storage.CounterValue(config.HTTPCodesMetric, "404")
	require.NoError(t, err)
	assert.Equal(t, int64(2), val)

	val, err = storage.CounterValue(config.UserActionsMetric, "login")
	require.NoError(t, err)
	assert.Equal(t, int64(1), val)

	total, err := storage.CounterTotal(config.HTTPCodesMetric)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
}

func TestPromStorage_IncrementUnknownLabel(t *testing.T) {
	storage := newSandboxStorage(t)

	_, err := storage.CounterValue(config.UserActionsMetric, "buy_coffee")
	assert.ErrorIs(t, err, internalerrors.ErrMetricNotFound)

	storage.Increment(config.UserActionsMetric, "buy_coffee")
	storage.Increment(config.HTTPCodesMetric, "abc")
	storage.Increment(config.HTTPCodesMetric, "bad\xffvalue")

	val, err := storage.CounterValue(config.UserActionsMetric, "buy_coffee")
	require.NoError(t, err)
	assert.Equal(t, int64(1), val)

	val, err = storage.CounterValue(config.HTTPCodesMetric, "abc")
	require.NoError(t, err)
	assert.Equal(t, int64(1), val)

	val, err = storage.CounterValue(config.HTTPCodesMetric, "bad�value")
	require.NoError(t, err)
	assert.Equal(t, int64(1), val)
}

func TestPromStorage_IncrementUndeclaredMetric(t *testing.T) {
	storage := newSandboxStorage(t)

	assert.NotPanics(t, func() {
		storage.Increment("unknown_total", "x")
		storage.SetGauge("unknown_gauge", 1)
	})

	_, err := storage.CounterTotal("unknown_total")
	assert.ErrorIs(t, err, internalerrors.ErrMetricNotFound)
	_, err = storage.GaugeValue("unknown_gauge")
	assert.ErrorIs(t, err, internalerrors.ErrMetricNotFound)
}

func TestPromStorage_ConcurrentIncrement(t *testing.T) {
	storage := newSandboxStorage(t)

	const (
		workers   = 16
		perWorker = 500
	)
	before, err := storage.CounterValue(config.HTTPCodesMetric, "500")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range workers {
		wg.Go(func() {
			for range perWorker {
				storage.Increment(config.HTTPCodesMetric, "500")
			}
		})
	}
	wg.Wait()

	after, err := storage.CounterValue(config.HTTPCodesMetric, "500")
	require.NoError(t, err)
	assert.Equal(t, before+workers*perWorker, after)
}

func TestPromStorage_SetGauge(t *testing.T) {
	storage := newSandboxStorage(t)

	storage.SetGauge(config.UptimeMetric, 12.5)
	storage.SetGauge(config.UptimeMetric, 3)

	val, err := storage.GaugeValue(config.UptimeMetric)
	require.NoError(t, err)
	assert.Equal(t, 3.0, val)
}

func TestPromStorage_TypeMismatch(t *testing.T) {
	storage := newSandboxStorage(t)

	_, err := storage.GaugeValue(config.HTTPCodesMetric)
	assert.ErrorIs(t, err, internalerrors.ErrUnknownMetricType)

	_, err = storage.CounterValue(config.UptimeMetric, "")
	assert.ErrorIs(t, err, internalerrors.ErrUnknownMetricType)
}

func TestPromStorage_DeclareTwice(t *testing.T) {
	storage := NewPromStorage()

	require.NoError(t, storage.DeclareCounter("jobs_total", "Jobs", "queue"))
	err := storage.DeclareCounter("jobs_total", "Jobs", "queue")
	assert.ErrorIs(t, err, internalerrors.ErrMetricAlreadyDeclared)
	err = storage.DeclareGauge("jobs_total", "Jobs")
	assert.ErrorIs(t, err, internalerrors.ErrMetricAlreadyDeclared)

	// declared without presets: readable as an empty counter
	total, err := storage.CounterTotal("jobs_total")
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
}

func TestPromStorage_ExportDeterministic(t *testing.T) {
	storage := newSandboxStorage(t)
	storage.Increment(config.UserActionsMetric, "zzz")
	storage.Increment(config.UserActionsMetric, "aaa")
	storage.SetGauge(config.UptimeMetric, 42)

	var first, second bytes.Buffer
	require.NoError(t, storage.Export(&first))
	require.NoError(t, storage.Export(&second))
	assert.Equal(t, first.String(), second.String())

	exposition := first.String()
	assert.Less(t, strings.Index(exposition, "app_http_codes_total"), strings.Index(exposition, "app_uptime_seconds"))
	assert.Less(t, strings.Index(exposition, `action="aaa"`), strings.Index(exposition, `action="zzz"`))
	assert.Contains(t, exposition, "app_uptime_seconds 42")
	assert.True(t, strings.HasPrefix(storage.ExportContentType(), "text/plain"))
}

func TestPromStorage_Series(t *testing.T) {
	storage := newSandboxStorage(t)
	storage.Increment(config.HTTPCodesMetric, "201")
	storage.SetGauge(config.UptimeMetric, 7)

	series, err := storage.Series()
	require.NoError(t, err)
	assert.Len(t, series, len(config.StatusCodes)+len(config.UserActions)+1)

	foundCode := false
	foundUptime := false
	for _, s := range series {
		if s.Name == config.HTTPCodesMetric && s.LabelValue == "201" {
			foundCode = true
			assert.Equal(t, config.CounterType, s.Type)
			assert.Equal(t, config.CodeLabel, s.LabelKey)
			assert.Equal(t, 1.0, s.Value)
		}
		if s.Name == config.UptimeMetric {
			foundUptime = true
			assert.Equal(t, config.GaugeType, s.Type)
			assert.Empty(t, s.LabelKey)
			assert.Equal(t, 7.0, s.Value)
		}
	}
	assert.True(t, foundCode)
	assert.True(t, foundUptime)

	descriptors := storage.Descriptors()
	require.Len(t, descriptors, 3)
	assert.Equal(t, config.HTTPCodesMetric, descriptors[0].Name)
	assert.Equal(t, config.ActionLabel, descriptors[1].LabelKey)
	assert.Equal(t, config.GaugeType, descriptors[2].Type)
}
