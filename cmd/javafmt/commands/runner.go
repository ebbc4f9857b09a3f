// Package commands implements CLI command handlers for javafmt.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/Sumatoshi-tech/javafmt/internal/cachekey"
	"github.com/Sumatoshi-tech/javafmt/internal/config"
	"github.com/Sumatoshi-tech/javafmt/internal/discover"
	"github.com/Sumatoshi-tech/javafmt/internal/edit"
	"github.com/Sumatoshi-tech/javafmt/internal/observability"
	"github.com/Sumatoshi-tech/javafmt/internal/pipeline"
	"github.com/Sumatoshi-tech/javafmt/internal/rule"
	"github.com/Sumatoshi-tech/javafmt/internal/rules"
	"github.com/Sumatoshi-tech/javafmt/internal/scheduler"
	"github.com/Sumatoshi-tech/javafmt/internal/security"
	"github.com/Sumatoshi-tech/javafmt/pkg/version"
)

// Exit codes, per spec.md 6: 0 success/no violations, 1 violations found
// (check) or --fail-on-changes tripped (format), 2 processing/IO error,
// 3 invalid arguments or configuration.
const (
	ExitOK            = 0
	ExitViolations    = 1
	ExitProcessing    = 2
	ExitInvalidUsage  = 3
	defaultCacheItems = 4096
)

type observabilityInitFunc func(cfg observability.Config) (observability.Providers, error)

// initObservabilityDefault is the production observabilityInitFunc;
// commands substitute a fake in tests via newCheckCommandWithDeps /
// newFormatCommandWithDeps.
func initObservabilityDefault(cfg observability.Config) (observability.Providers, error) {
	return observability.Init(cfg)
}

// runner holds the flags and dependencies shared by the check and format
// subcommands. Both commands drive the same discover -> pipeline ->
// scheduler -> report pipeline; they differ only in rule.Mode, whether
// writes are enabled, and a couple of format-only flags.
type runner struct {
	mode pipeline.Mode

	configFile    string
	include       []string
	exclude       []string
	severity      string
	jsonOutput    bool
	failFast      bool
	maxViolations int
	dryRun        bool
	failOnChanges bool
	watch         bool
	schedule      string
	cacheDir      string
	metricsAddr   string
	maxFileSize   string
	memoryBudget  string
	silent        bool
	debugTrace    bool

	observabilityInit observabilityInitFunc
}

func newRunner(mode pipeline.Mode, otelInit observabilityInitFunc) *runner {
	return &runner{mode: mode, observabilityInit: otelInit}
}

// registerCommonFlags wires the flags spec.md 6 lists for every
// subcommand. Subcommand-specific flags (e.g. format's --fail-on-changes,
// check's --schedule) are registered separately by their constructors.
func (r *runner) registerCommonFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&r.configFile, "config", "", "Configuration file path (default: .javafmt.yaml in CWD or $HOME)")
	cmd.Flags().StringArrayVar(&r.include, "include", nil, "Glob a file must match to be processed (repeatable)")
	cmd.Flags().StringArrayVar(&r.exclude, "exclude", nil, "Glob that excludes a matching file (repeatable)")
	cmd.Flags().BoolVar(&r.failFast, "fail-fast", false, "Stop admitting new files after the first processing failure")
	cmd.Flags().IntVar(&r.maxViolations, "max-violations", 0, "Stop after this many violations have been reported (0 = unbounded)")
	cmd.Flags().StringVar(&r.severity, "severity", "info", "Minimum severity that counts toward the violation exit code: error, warn, info, debug")
	cmd.Flags().BoolVar(&r.jsonOutput, "json", false, "Emit the stable JSON report (one object per file) instead of the human report")
	cmd.Flags().BoolVar(&r.watch, "watch", false, "Re-run the batch whenever a watched file changes")
	cmd.Flags().StringVar(&r.cacheDir, "cache-dir", "", "Enable a content-hash result cache rooted at this directory")
	cmd.Flags().StringVar(&r.metricsAddr, "metrics-addr", "", "Expose Prometheus metrics and health endpoints at this address (e.g. :9090)")
	cmd.Flags().StringVar(&r.maxFileSize, "max-file-size", "", "Reject source files larger than this (humanize format, e.g. \"10MB\")")
	cmd.Flags().StringVar(&r.memoryBudget, "memory-budget", "", "Throttle admission once the process approaches this heap size (humanize format, e.g. \"512MB\")")
	cmd.Flags().BoolVar(&r.silent, "silent", false, "Suppress progress output")
	cmd.Flags().BoolVar(&r.debugTrace, "debug-trace", false, "Force 100% trace sampling for debugging")
}

func (r *runner) run(cmd *cobra.Command, args []string) (runErr error) {
	cfg, err := r.loadConfig()
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "invalid configuration: %v\n", err)
		return &exitError{code: ExitInvalidUsage}
	}

	threshold, err := severityThreshold(r.severity)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "invalid --severity: %v\n", err)
		return &exitError{code: ExitInvalidUsage}
	}

	providers, err := r.initObservability()
	if err != nil {
		return fmt.Errorf("init observability: %w", err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	defer func() {
		shutdownErr := providers.Shutdown(context.Background())
		if shutdownErr != nil && providers.Logger != nil {
			providers.Logger.Warn("observability shutdown failed", "error", shutdownErr)
		}
	}()

	if providers.Tracer != nil {
		var rootSpan trace.Span

		ctx, rootSpan = providers.Tracer.Start(ctx, "javafmt.run")

		defer func() {
			rootSpan.SetAttributes(
				attribute.Bool("error", runErr != nil),
				attribute.StringSlice("javafmt.roots", args),
			)
			rootSpan.End()
		}()
	}

	progressWriter := cmd.ErrOrStderr()

	cleanup, diagErr := r.startDiagnosticsServer(providers, progressWriter)
	if diagErr != nil {
		return diagErr
	}

	defer cleanup()

	batch, err := r.buildBatch(cfg, providers, progressWriter)
	if err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "%v\n", err)
		return &exitError{code: ExitInvalidUsage}
	}

	switch {
	case r.watch:
		return r.runWatch(ctx, batch, args, cmd.OutOrStdout(), progressWriter, threshold)
	case r.schedule != "":
		return r.runScheduled(ctx, batch, args, cmd.OutOrStdout(), progressWriter, threshold)
	}

	code, runErr2 := r.runOnce(ctx, batch, args, cmd.OutOrStdout(), threshold)
	if runErr2 != nil {
		return runErr2
	}

	if code != ExitOK {
		return &exitError{code: code}
	}

	return nil
}

func (r *runner) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfig(r.configFile)
	if err != nil {
		return nil, err
	}

	if len(r.include) > 0 {
		cfg.Discovery.Include = append(cfg.Discovery.Include, r.include...)
	}

	if len(r.exclude) > 0 {
		cfg.Discovery.Exclude = append(cfg.Discovery.Exclude, r.exclude...)
	}

	if r.maxViolations > 0 {
		cfg.Pipeline.MaxViolations = r.maxViolations
	}

	if r.failFast {
		cfg.Pipeline.FailFast = true
	}

	if r.maxFileSize != "" {
		parsed, err := humanize.ParseBytes(r.maxFileSize)
		if err != nil {
			return nil, fmt.Errorf("--max-file-size %q: %w", r.maxFileSize, err)
		}

		cfg.Security.MaxFileSizeBytes = int64(parsed)
	}

	if r.memoryBudget != "" {
		parsed, err := humanize.ParseBytes(r.memoryBudget)
		if err != nil {
			return nil, fmt.Errorf("--memory-budget %q: %w", r.memoryBudget, err)
		}

		cfg.Pipeline.MemoryBudgetBytes = int64(parsed)
	}

	return cfg, nil
}

func (r *runner) initObservability() (observability.Providers, error) {
	cfg := observability.DefaultConfig()
	cfg.ServiceVersion = version.Version
	cfg.OTLPEndpoint = os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT")
	cfg.OTLPHeaders = observability.ParseOTLPHeaders(os.Getenv("OTEL_EXPORTER_OTLP_HEADERS"))
	cfg.OTLPInsecure = os.Getenv("OTEL_EXPORTER_OTLP_INSECURE") == "true"
	cfg.Mode = observability.ModeCLI
	cfg.DebugTrace = r.debugTrace

	return r.observabilityInit(cfg)
}

func (r *runner) startDiagnosticsServer(providers observability.Providers, progressWriter io.Writer) (func(), error) {
	if r.metricsAddr == "" {
		return func() {}, nil
	}

	diagServer, err := observability.NewDiagnosticsServer(r.metricsAddr, providers.Meter, providers.Tracer, providers.Logger)
	if err != nil {
		return func() {}, fmt.Errorf("start diagnostics server: %w", err)
	}

	r.progressf(progressWriter, "metrics server listening on %s", diagServer.Addr())

	return func() { diagServer.Close() }, nil
}

func (r *runner) progressf(writer io.Writer, format string, args ...any) {
	if r.silent {
		return
	}

	_, _ = fmt.Fprintf(writer, "javafmt: "+format+"\n", args...)
}

// batch bundles everything runOnce/runWatch need to discover and process
// files without re-deriving them from cfg on every call — this is what
// lets --watch re-run cheaply.
type batch struct {
	walker       *discover.Walker
	cache        *cachekey.Cache
	enabledRules []string
	sched        *scheduler.Scheduler
	obs          *reportObserver
}

func (r *runner) buildBatch(cfg *config.Config, providers observability.Providers, progressWriter io.Writer) (*batch, error) {
	guardCfg := security.DefaultConfig()
	guardCfg.MaxSymlinkDepth = cfg.Security.MaxSymlinkDepth
	guardCfg.MaxRecursionDepth = cfg.Security.MaxRecursionDepth
	guardCfg.MaxFileSizeBytes = cfg.Security.MaxFileSizeBytes

	if len(cfg.Security.Extensions) > 0 {
		guardCfg.Extensions = cfg.Security.Extensions
	}

	guards := security.New(guardCfg)

	walker := discover.NewWalker(guards, cfg.Discovery.Include, cfg.Discovery.Exclude, cfg.Security.MaxRecursionDepth)

	reg := rule.NewRegistry()
	if err := rules.RegisterAll(reg); err != nil {
		return nil, fmt.Errorf("register rules: %w", err)
	}

	enabledSet := make(map[string]bool, len(cfg.Rules.Enabled))
	for _, id := range cfg.Rules.Enabled {
		enabledSet[id] = true
	}

	engine := rule.NewEngine(reg.Enabled(enabledSet))

	obs := newReportObserver(r.jsonOutput, progressWriter, r.silent)

	mode := r.mode
	if r.dryRun {
		mode = pipeline.ModeCheck
	}

	var pipeMetrics pipeline.Metrics
	if providers.Meter != nil {
		pm, err := observability.NewPipelineMetrics(providers.Meter)
		if err != nil {
			return nil, fmt.Errorf("register pipeline metrics: %w", err)
		}

		pipeMetrics = pm
	}

	pipe := pipeline.New(pipeline.Options{
		Guards:         guards,
		TargetVersion:  cfg.TargetVersion,
		Engine:         engine,
		Mode:           mode,
		EnabledRuleIDs: enabledSet,
		RuleParams:     cfg.Rules.Params,
		Observer:       obs,
		Metrics:        pipeMetrics,
	})

	// Scheduler runtime metrics (goroutines/threads) are already registered
	// by startDiagnosticsServer -> observability.NewDiagnosticsServer when
	// --metrics-addr is set; only the cache hit/miss gauges and the
	// files/duration/violations/inflight pipeline metrics above are this
	// function's concern.
	var cache *cachekey.Cache
	if r.cacheDir != "" {
		cache = cachekey.New(defaultCacheItems)

		if providers.Meter != nil {
			err := observability.RegisterCacheMetrics(providers.Meter, observability.NamedCacheProvider{Name: "format-result", Provider: cache})
			if err != nil {
				return nil, fmt.Errorf("register cache metrics: %w", err)
			}
		}
	}

	var monitor scheduler.MemoryMonitor
	if cfg.Pipeline.MemoryBudgetBytes > 0 {
		monitor = scheduler.NewProcessMemoryMonitor(uint64(cfg.Pipeline.MemoryBudgetBytes))
	}

	sched := scheduler.New(pipe, scheduler.Config{
		MaxConcurrency: int64(cfg.Pipeline.MaxConcurrency),
		Monitor:        monitor,
	})

	obs.sched = sched
	obs.failFast = cfg.Pipeline.FailFast
	obs.maxViolations = cfg.Pipeline.MaxViolations

	return &batch{
		walker:       walker,
		cache:        cache,
		enabledRules: cfg.Rules.Enabled,
		sched:        sched,
		obs:          obs,
	}, nil
}

func (r *runner) runOnce(ctx context.Context, b *batch, roots []string, out io.Writer, threshold edit.Severity) (int, error) {
	files, err := b.walker.Discover(roots)
	if err != nil {
		return ExitProcessing, fmt.Errorf("discover files: %w", err)
	}

	files = b.filterUnchanged(files, r, out)

	r.progressf(out, "discovered %d file(s)", len(files))

	b.obs.reset(out, threshold)

	result := b.sched.Run(ctx, files)

	b.rememberProcessed(files)

	r.progressf(out, "processed: success=%d error=%d skipped=%d", result.SuccessCount, result.ErrorCount, result.SkippedCount)

	return r.exitCode(result, b.obs), nil
}

// filterUnchanged drops files whose content, hashed together with the
// enabled rule set, matches the last run's cache entry (internal/cachekey)
// — a pure optimization: spec.md never requires it, but it shortens
// repeat --watch iterations where most files haven't changed.
func (b *batch) filterUnchanged(files []string, r *runner, out io.Writer) []string {
	if b.cache == nil {
		return files
	}

	kept := files[:0:0]
	skipped := 0

	for _, path := range files {
		source, err := os.ReadFile(path)
		if err != nil {
			kept = append(kept, path)
			continue
		}

		key := cachekey.Compute(source, b.enabledRules)
		if _, hit := b.cache.Get(key); hit {
			skipped++
			continue
		}

		kept = append(kept, path)
	}

	if skipped > 0 {
		r.progressf(out, "skipped %d unchanged file(s)", skipped)
	}

	return kept
}

// rememberProcessed marks every processed file's current content as seen,
// so the next filterUnchanged call (the next --watch iteration) skips it
// if it hasn't changed again.
func (b *batch) rememberProcessed(files []string) {
	if b.cache == nil {
		return
	}

	for _, path := range files {
		source, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		key := cachekey.Compute(source, b.enabledRules)
		b.cache.Put(key, []byte{1})
	}
}

func (r *runner) exitCode(result pipeline.BatchResult, obs *reportObserver) int {
	if r.mode == pipeline.ModeFormat && !r.dryRun {
		if r.failOnChanges && obs.anyChanged() {
			return ExitViolations
		}
	} else if obs.anyAtOrAboveThreshold() {
		return ExitViolations
	}

	if result.ErrorCount > 0 {
		return ExitProcessing
	}

	return ExitOK
}

// exitError carries a specific process exit code back to main without
// forcing cobra to print a generic error (SilenceErrors is set on the
// root command; main inspects this type directly).
type exitError struct {
	code int
}

func (e *exitError) Error() string { return fmt.Sprintf("exit %d", e.code) }

// IsExitError reports whether err is a plain exit-code signal that has
// already been fully reported (per-file reports and progress lines
// printed as the batch ran) — main should not also print it generically.
func IsExitError(err error) bool {
	_, ok := err.(*exitError)
	return ok
}

// ExitCode extracts the process exit code from an error returned by a
// subcommand's RunE, defaulting to ExitProcessing for any other error.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}

	if ee, ok := err.(*exitError); ok {
		return ee.code
	}

	return ExitProcessing
}

// severityThreshold maps spec.md 6's --severity levels to the minimum
// edit.Severity that should count toward the violation exit code.
// "debug" has no dedicated edit.Severity (the engine never emits one
// below Info), so it is treated the same as "info": every violation
// counts.
func severityThreshold(level string) (edit.Severity, error) {
	switch level {
	case "debug", "info":
		return edit.SeverityInfo, nil
	case "warn":
		return edit.SeverityWarning, nil
	case "error":
		return edit.SeverityError, nil
	default:
		return 0, fmt.Errorf("unknown severity level %q (want error, warn, info, or debug)", level)
	}
}
