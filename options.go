package pargrid

import "log/slog"

// EngineOption configures an Engine during creation.
//
// Example:
//
//	// Default: GOMAXPROCS workers, no logging
//	e := pargrid.NewEngine()
//
//	// Four workers with debug diagnostics on stderr
//	e := pargrid.NewEngine(
//	    pargrid.WithWorkers(4),
//	    pargrid.WithLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))),
//	    pargrid.WithVerbose(true),
//	)
type EngineOption func(*engineOptions)

// engineOptions holds optional configuration for Engine creation.
type engineOptions struct {
	workers int
	logger  *slog.Logger
	verbose bool
}

// defaultEngineOptions returns the default engine options.
func defaultEngineOptions() engineOptions {
	return engineOptions{
		workers: 0, // GOMAXPROCS
		logger:  nil,
	}
}

// WithWorkers sets the size of the engine's worker pool.
// Zero or negative selects runtime.GOMAXPROCS(0), the default.
// The size is fixed for the lifetime of the engine.
func WithWorkers(n int) EngineOption {
	return func(o *engineOptions) {
		o.workers = n
	}
}

// WithLogger sets the logger used for engine diagnostics.
// By default the engine produces no log output. Passing nil keeps the
// silent default.
func WithLogger(l *slog.Logger) EngineOption {
	return func(o *engineOptions) {
		o.logger = l
	}
}

// WithVerbose enables per-operation debug records: kernel generation
// details, the grain chosen for each call, tile counts and search outcomes.
// Records are emitted at slog.LevelDebug on the configured logger.
func WithVerbose(v bool) EngineOption {
	return func(o *engineOptions) {
		o.verbose = v
	}
}

// CallOption configures a single engine operation.
type CallOption func(*callOptions)

type callOptions struct {
	grain    int
	grainSet bool
}

// Grain sets the maximum tile edge length for one operation. Without it the
// engine chooses a grain from the domain size and worker count.
// A non-positive grain makes the operation fail with KindInvalidParameter.
func Grain(n int) CallOption {
	return func(o *callOptions) {
		o.grain = n
		o.grainSet = true
	}
}

func collectCallOptions(opts []CallOption) callOptions {
	var o callOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}
