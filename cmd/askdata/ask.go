package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spektr-org/askdata/config"
	"github.com/spektr-org/askdata/dataset"
	"github.com/spektr-org/askdata/engine"
	"github.com/spektr-org/askdata/fallback"
	"github.com/spektr-org/askdata/intent"
	"github.com/spektr-org/askdata/schema"
)

// NewAskCommand creates the ask command.
func NewAskCommand() *cobra.Command {
	var data dataFlags

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Answer one question about a dataset",
		Long: `Answer one natural-language question about a dataset.

Examples:
  askdata ask -f sales.csv "total revenue by region"
  askdata ask -f sales.csv "top 5 products by quantity as a pie chart"
  askdata ask -s warehouse -o json "average order value in 2024"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg := getConfig(ctx)
			logger := getLogger(ctx)

			view, _, err := loadView(ctx, cfg, logger, &data)
			if err != nil {
				return err
			}
			a := newAnswerer(cfg, logger, view, cmd.OutOrStdout())
			_, err = a.ask(ctx, strings.Join(args, " "), nil)
			return err
		},
	}
	data.register(cmd)
	return cmd
}

// ============================================================================
// ANSWERER: engine first, fallback second
// ============================================================================

// answerer answers questions against one loaded dataset and renders them.
type answerer struct {
	cfg    *config.Config
	logger *slog.Logger
	view   dataset.View
	out    io.Writer

	// newFallback is replaceable in tests.
	newFallback func(fallback.Config) (generalAnswerer, error)
	sch         *schema.Config
}

// generalAnswerer is the part of fallback.Client the CLI uses.
type generalAnswerer interface {
	Answer(ctx context.Context, question string, sch *schema.Config) (string, error)
	Model() string
}

func newAnswerer(cfg *config.Config, logger *slog.Logger, view dataset.View, out io.Writer) *answerer {
	return &answerer{
		cfg:    cfg,
		logger: logger,
		view:   view,
		out:    out,
		newFallback: func(c fallback.Config) (generalAnswerer, error) {
			return fallback.New(c)
		},
	}
}

func (a *answerer) options() []engine.Option {
	return []engine.Option{
		engine.WithLogger(a.logger),
		engine.WithDefaultLimit(a.cfg.DefaultLimit),
		engine.WithListCap(a.cfg.ListCap),
	}
}

// schema discovers the dataset schema once. It returns nil when discovery
// fails, which only costs the fallback prompt its data summary.
func (a *answerer) schema() *schema.Config {
	if a.sch == nil {
		sch, err := schema.Discover(a.view)
		if err != nil {
			a.logger.Debug("schema discovery failed", slog.String("error", err.Error()))
			return nil
		}
		a.sch = sch
	}
	return a.sch
}

// ask answers query and renders the result. It returns the engine response,
// or nil when the question went to the fallback or was declined.
func (a *answerer) ask(ctx context.Context, query string, prev *intent.Context) (*engine.Response, error) {
	if resp := engine.AnalyzeView(query, a.view, prev, a.options()...); resp != nil {
		return resp, renderResponse(a.out, resp, a.cfg.Output)
	}

	client, err := a.newFallback(fallback.Config{
		APIKey:   a.cfg.Fallback.APIKey,
		Model:    a.cfg.Fallback.Model,
		Endpoint: a.cfg.Fallback.Endpoint,
		Logger:   a.logger,
	})
	if errors.Is(err, fallback.ErrNoAPIKey) {
		return nil, renderDeclined(a.out, a.cfg.Output)
	}
	if err != nil {
		return nil, fmt.Errorf("fallback: %w", err)
	}

	answer, err := client.Answer(ctx, query, a.schema())
	if err != nil {
		return nil, err
	}
	return nil, renderFallback(a.out, answer, client.Model(), a.cfg.Output)
}
