package rules

import "github.com/Sumatoshi-tech/javafmt/internal/rule"

// RegisterAll registers every built-in rule with reg at its spec-default
// configuration. Rule discovery is explicit registration, never a
// host-controlled plugin runtime (spec.md 9): callers that need
// per-project overrides construct rules with their own parameters and
// call reg.Register directly instead of relying on this convenience.
func RegisterAll(reg *rule.Registry) error {
	builtins := []rule.Rule{
		NewIndentation(0, false),
		NewBraceStyle(BraceStyleSameLine),
		NewLineLength(0),
	}

	for _, ru := range builtins {
		if err := reg.Register(ru); err != nil {
			return err
		}
	}

	return nil
}
