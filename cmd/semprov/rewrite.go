package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/c360studio/semprov/rewrite"
	"github.com/c360studio/semprov/storage"
)

// rewriteOptions are the rewrite command's flags.
type rewriteOptions struct {
	mapPath  string
	workers  int
	dryRun   bool
	patterns []string
}

func rewriteCmd(flags *globalFlags) *cobra.Command {
	opts := rewriteOptions{}

	cmd := &cobra.Command{
		Use:   "rewrite [pattern...]",
		Short: "Rewrite object URIs in exported documents to their canonical form",
		Long: `Rewrite applies the map saved by ingest to every exported document
matching the given patterns (default: rewrite.patterns from the config).
Running it twice changes nothing the second time.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(flags)
			if err != nil {
				return err
			}
			opts.patterns = args

			ctx, cancel := signalContext()
			defer cancel()

			app := NewApp(cfg, logger)
			defer app.Shutdown()
			if err := app.Start(ctx); err != nil {
				return err
			}

			rep, err := app.Rewrite(ctx, opts)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "rewritten: %d  unchanged: %d  skipped: %d  failed: %d\n",
				rep.Rewritten, rep.Unchanged, rep.Skipped, rep.Failed())
			if rep.Failed() > 0 {
				return fmt.Errorf("%d documents could not be rewritten", rep.Failed())
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.mapPath, "map", "", "Rewrite map file (default: the configured map store)")
	cmd.Flags().IntVar(&opts.workers, "workers", 0, "Concurrent documents (default: rewrite.workers)")
	cmd.Flags().BoolVar(&opts.dryRun, "dry-run", false, "Count the documents that would change without writing them")
	return cmd
}

// Rewrite applies the rewrite map to the exported documents.
func (a *App) Rewrite(ctx context.Context, opts rewriteOptions) (*rewrite.Report, error) {
	var maps storage.MapStore = a.maps
	if opts.mapPath != "" {
		maps = storage.NewMapFile(opts.mapPath)
	}
	m, err := maps.LoadMap(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		a.logger.Warn("No rewrite map found, nothing to do")
		m = rewrite.Map{}
	} else if err != nil {
		return nil, err
	}

	patterns := opts.patterns
	if len(patterns) == 0 {
		patterns = a.cfg.Rewrite.Patterns
	}
	names, err := a.docs.List(ctx, patterns)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}

	workers := opts.workers
	if workers <= 0 {
		workers = a.cfg.Rewrite.Workers
	}
	engine := rewrite.NewEngine(m.Compress(),
		rewrite.WithWorkers(workers),
		rewrite.WithMinPrefix(a.cfg.Rewrite.MinPrefix),
		rewrite.WithDryRun(opts.dryRun),
		rewrite.WithLogger(a.logger),
		rewrite.WithCounter(rewrite.NewDocumentCounter(a.registry)))

	if prefix, ok := engine.Prefix(); ok {
		a.logger.Debug("Filtering documents by common prefix", "prefix", prefix)
	}
	a.logger.Info("Rewriting documents", "documents", len(names), "mappings", len(m), "dry_run", opts.dryRun)
	return engine.Run(ctx, a.docs, names)
}
