package observability_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/Sumatoshi-tech/javafmt/internal/cachekey"
	"github.com/Sumatoshi-tech/javafmt/internal/observability"
)

func TestRegisterCacheMetrics_ReportsHitsAndMisses(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	meter := mp.Meter("javafmt-test")

	c := cachekey.New(4)
	key := cachekey.Compute([]byte("class X {}"), nil)
	c.Put(key, []byte("formatted"))
	_, _ = c.Get(key)
	_, _ = c.Get(cachekey.Compute([]byte("class Y {}"), nil))

	err := observability.RegisterCacheMetrics(meter, observability.NamedCacheProvider{
		Name:     "format-result",
		Provider: c,
	})
	require.NoError(t, err)

	rm := collectMetrics(t, reader)

	hits := findMetric(rm, "javafmt.cache.hits")
	require.NotNil(t, hits)

	misses := findMetric(rm, "javafmt.cache.misses")
	require.NotNil(t, misses)
}

func TestRegisterCacheMetrics_NoProvidersIsNoop(t *testing.T) {
	t.Parallel()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	meter := mp.Meter("javafmt-test")

	assert.NoError(t, observability.RegisterCacheMetrics(meter))
}
