package observability_test

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"github.com/Sumatoshi-tech/javafmt/internal/observability"
)

func TestDiagnosticsServer_RoutesAreInstrumented(t *testing.T) {
	t.Parallel()

	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))

	t.Cleanup(func() { require.NoError(t, tp.Shutdown(context.Background())) })

	tracer := tp.Tracer("javafmt")

	var logBuf bytes.Buffer

	logger := slog.New(slog.NewTextHandler(&logBuf, nil))

	srv, err := observability.NewDiagnosticsServer("127.0.0.1:0", nil, tracer, logger)
	require.NoError(t, err)

	t.Cleanup(func() { require.NoError(t, srv.Close()) })

	resp, err := http.Get("http://" + srv.Addr() + "/healthz")
	require.NoError(t, err)

	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// The middleware should have produced a span and an access log line for
	// the /healthz request.
	require.Eventually(t, func() bool {
		return len(exporter.GetSpans()) >= 1
	}, time.Second, time.Millisecond*10)

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "GET /healthz", spans[0].Name)

	assert.Contains(t, logBuf.String(), "http.request")
	assert.Contains(t, logBuf.String(), "path=/healthz")
}

func TestDiagnosticsServer_NilTracerOrLoggerSkipsMiddleware(t *testing.T) {
	t.Parallel()

	srv, err := observability.NewDiagnosticsServer("127.0.0.1:0", nil, nil, nil)
	require.NoError(t, err)

	t.Cleanup(func() { require.NoError(t, srv.Close()) })

	resp, err := http.Get("http://" + srv.Addr() + "/readyz")
	require.NoError(t, err)

	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}
