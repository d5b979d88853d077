package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/spektr-org/askdata/config"
	"github.com/spektr-org/askdata/dataset"
	"github.com/spektr-org/askdata/source"
)

// ============================================================================
// DATA SELECTION: --file or --source
// ============================================================================

// dataFlags selects the dataset a command works on.
type dataFlags struct {
	file     string
	sourceID string
	table    string
}

func (f *dataFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.file, "file", "f", "", "CSV, JSON or SQLite file to query")
	cmd.Flags().StringVarP(&f.sourceID, "source", "s", "", "Configured data source id")
	cmd.Flags().StringVar(&f.table, "table", "", "Table to read when --file is a SQLite database")
	cmd.MarkFlagsMutuallyExclusive("file", "source")
}

// errNoData is returned when neither --file nor --source picks a dataset.
var errNoData = errors.New("no dataset selected: pass --file or --source, or configure exactly one source")

// spec resolves the flags into a source spec.
func (f *dataFlags) spec(cfg *config.Config) (source.Spec, error) {
	switch {
	case f.file != "":
		return fileSpec(f.file, f.table)
	case f.sourceID != "":
		s, ok := cfg.Source(f.sourceID)
		if !ok {
			return source.Spec{}, fmt.Errorf("%q: %w", f.sourceID, source.ErrNotFound)
		}
		return s, nil
	case len(cfg.Sources) == 1:
		return cfg.Sources[0], nil
	default:
		return source.Spec{}, errNoData
	}
}

// fileSpec infers the source kind from the file extension.
func fileSpec(path, table string) (source.Spec, error) {
	id := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	spec := source.Spec{ID: id, Path: path, Table: table}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		spec.Kind = source.KindCSV
	case ".json":
		spec.Kind = source.KindJSON
	case ".db", ".sqlite", ".sqlite3":
		if table == "" {
			return source.Spec{}, fmt.Errorf("%s: --table is required for SQLite files", path)
		}
		spec.Kind = source.KindSQLite
	default:
		return source.Spec{}, fmt.Errorf("%s: %w: %q", path, source.ErrUnsupportedKind, filepath.Ext(path))
	}
	return spec, nil
}

// loadView opens the selected source, loads it fully and closes it again.
func loadView(ctx context.Context, cfg *config.Config, logger *slog.Logger, f *dataFlags) (dataset.View, string, error) {
	spec, err := f.spec(cfg)
	if err != nil {
		return nil, "", err
	}

	reg := source.NewRegistry(append(cfg.SourceOptions(), source.WithLogger(logger))...)
	defer func() { _ = reg.Close() }()

	if err := reg.OpenAll(ctx, []source.Spec{spec}); err != nil {
		return nil, "", err
	}
	view, err := reg.LoadView(ctx, spec.ID)
	if err != nil {
		return nil, "", err
	}
	logger.Debug("dataset ready",
		slog.String("source", spec.ID),
		slog.String("kind", string(spec.Kind)),
		slog.Int("rows", view.Len()),
		slog.Int("columns", len(view.Columns())))
	return view, spec.ID, nil
}
