package obs

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestDomainMetricsRecordOutcomes(t *testing.T) {
	MustRegisterDomainMetrics("toko_test", ParseBucketsCSV("1, 5,bogus,-3,10"), prometheus.NewRegistry())

	before := testutil.ToFloat64(CartCalculationsTotal.WithLabelValues("ok"))
	ObserveCalculation("ok", 2.5)
	require.Equal(t, before+1, testutil.ToFloat64(CartCalculationsTotal.WithLabelValues("ok")))

	recalcs := testutil.ToFloat64(CartRecalculationsTotal)
	ObserveRecalculation()
	require.Equal(t, recalcs+1, testutil.ToFloat64(CartRecalculationsTotal))

	ObserveRemediation("stock")
	require.GreaterOrEqual(t, testutil.ToFloat64(CartRemediationsTotal.WithLabelValues("stock")), float64(1))

	ObserveCacheLookup("products", "hit")
	require.GreaterOrEqual(t, testutil.ToFloat64(CatalogCacheTotal.WithLabelValues("products", "hit")), float64(1))
}

func TestParseBucketsCSV(t *testing.T) {
	require.Nil(t, ParseBucketsCSV("  "))
	require.Equal(t, []float64{1, 5, 10}, ParseBucketsCSV("1, 5,bogus,-3,10"))
	require.Equal(t, []float64{2.5, 50}, ParseBucketsCSV("50,2.5,,50"))
}

func TestDurationMillis(t *testing.T) {
	require.InDelta(t, 1500.0, DurationMillis(1500*time.Millisecond), 1e-9)
}

func TestNewLoggerToWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	logger := CartLogger(NewLoggerTo(&buf, "json", "debug"), "token-1")
	logger.Info().Str("processor", "product").Msg("processed")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "token-1", entry["cart_token"])
	require.Equal(t, "product", entry["processor"])
	require.Equal(t, "processed", entry["message"])
}

func TestInitTracerNone(t *testing.T) {
	shutdown, err := InitTracer(context.Background(), TracingConfig{Exporter: "none"})
	require.NoError(t, err)
	require.NoError(t, shutdown(context.Background()))

	_, err = InitTracer(context.Background(), TracingConfig{Exporter: "zipkin"})
	require.Error(t, err)
}

func TestTruncateSQL(t *testing.T) {
	require.Equal(t, "SELECT 1 FROM products", truncateSQL("  SELECT 1\n\tFROM products "))
}
