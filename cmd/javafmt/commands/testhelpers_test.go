package commands

import (
	"context"

	"github.com/Sumatoshi-tech/javafmt/internal/observability"
)

// noopObservabilityInit substitutes for observability.Init in command
// tests: no OTLP endpoint configured, so Init itself would already
// return no-op providers, but skipping it avoids any real network
// dialing attempt and keeps tests hermetic.
func noopObservabilityInit(_ observability.Config) (observability.Providers, error) {
	return observability.Providers{
		Shutdown: func(_ context.Context) error { return nil },
	}, nil
}
