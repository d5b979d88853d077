package engine

import "log/slog"

// ============================================================================
// ENGINE OPTIONS: Functional options for Analyze()
// ============================================================================

// Option configures engine behavior via functional options pattern.
type Option func(*config)

type config struct {
	Logger       *slog.Logger
	DefaultLimit int // ranked-list and chart size when the query names none
	ListCap      int // distinct values shown by a listing answer
}

const (
	defaultLimit   = 10
	defaultListCap = 50
)

// WithLogger sets the logger used for pass-by-pass debug tracing.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) {
		if logger != nil {
			c.Logger = logger
		}
	}
}

// WithDefaultLimit sets how many groups appear in ranked answers and charts
// when the query has no "top N".
func WithDefaultLimit(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.DefaultLimit = n
		}
	}
}

// WithListCap sets how many distinct values a listing answer shows.
func WithListCap(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.ListCap = n
		}
	}
}

// applyOptions creates a config from functional options.
func applyOptions(opts []Option) *config {
	cfg := &config{
		Logger:       slog.New(slog.DiscardHandler),
		DefaultLimit: defaultLimit,
		ListCap:      defaultListCap,
	}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}
