package telemetry

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type okHandler struct{}

func (*okHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestDisabledLeavesHandlerAlone(t *testing.T) {
	tel, err := Setup(context.Background(), "spycat", "")
	require.NoError(t, err)
	assert.False(t, tel.Enabled())

	h := &okHandler{}
	assert.Same(t, h, tel.Handler(h, "spycat"))
	assert.NoError(t, tel.Shutdown(context.Background()))
}

func TestHandlerRecordsSpansAndMetrics(t *testing.T) {
	spans := tracetest.NewSpanRecorder()
	reader := sdkmetric.NewManualReader()
	tel := &Telemetry{
		tp: sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(spans)),
		mp: sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)),
	}
	require.True(t, tel.Enabled())

	h := tel.Handler(&okHandler{}, "spycat")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/cats/", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, spans.Ended(), 1)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	assert.NotEmpty(t, rm.ScopeMetrics)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, tel.Shutdown(ctx))
}

func TestSetupWithEndpoint(t *testing.T) {
	for _, endpoint := range []string{"http://127.0.0.1:4317", "127.0.0.1:4317"} {
		tel, err := Setup(context.Background(), "spycat", endpoint)
		require.NoError(t, err, endpoint)
		assert.True(t, tel.Enabled())

		ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		_ = tel.Shutdown(ctx)
		cancel()
	}
}
