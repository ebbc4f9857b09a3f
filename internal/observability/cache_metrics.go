package observability

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricCacheHits   = "javafmt.cache.hits"
	metricCacheMisses = "javafmt.cache.misses"
)

// CacheStatsProvider exposes cumulative cache hit/miss counters for OTel
// export — implemented by internal/cachekey.Cache.
type CacheStatsProvider interface {
	Stats() (hits, misses int64)
}

// NamedCacheProvider pairs a CacheStatsProvider with the label its
// counters should be reported under (e.g. "format-result").
type NamedCacheProvider struct {
	Name     string
	Provider CacheStatsProvider
}

// RegisterCacheMetrics registers observable gauges that report hit/miss
// counters for each given cache. A nil or empty providers list is a
// no-op.
func RegisterCacheMetrics(mt metric.Meter, providers ...NamedCacheProvider) error {
	if len(providers) == 0 {
		return nil
	}

	_, err := mt.Int64ObservableGauge(metricCacheHits,
		metric.WithDescription("Cache hit count"),
		metric.WithUnit("{hit}"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			for _, p := range providers {
				hits, _ := p.Provider.Stats()
				o.Observe(hits, metric.WithAttributes(attribute.String("cache", p.Name)))
			}

			return nil
		}),
	)
	if err != nil {
		return fmt.Errorf("create %s: %w", metricCacheHits, err)
	}

	_, err = mt.Int64ObservableGauge(metricCacheMisses,
		metric.WithDescription("Cache miss count"),
		metric.WithUnit("{miss}"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			for _, p := range providers {
				_, misses := p.Provider.Stats()
				o.Observe(misses, metric.WithAttributes(attribute.String("cache", p.Name)))
			}

			return nil
		}),
	)
	if err != nil {
		return fmt.Errorf("create %s: %w", metricCacheMisses, err)
	}

	return nil
}
