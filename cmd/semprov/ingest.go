package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/c360studio/semprov/export"
	"github.com/c360studio/semprov/graph"
	"github.com/c360studio/semprov/identity"
	"github.com/c360studio/semprov/ledger"
	"github.com/c360studio/semprov/record"
	"github.com/c360studio/semprov/rewrite"
	"github.com/c360studio/semprov/storage"
)

func ingestCmd(flags *globalFlags) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Build the provenance ledger from normalized records",
		Long: `Ingest reads every record selected by input.patterns, exports the
ledger documents, resolves post-sale citations into canonical objects and
saves the graph state and rewrite map for the rewrite command.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(flags)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("limit") {
				cfg.Input.Limit = limit
			}

			ctx, cancel := signalContext()
			defer cancel()

			app := NewApp(cfg, logger)
			defer app.Shutdown()
			if err := app.Start(ctx); err != nil {
				return err
			}
			_, err = app.Ingest(ctx)
			return err
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum records read per input file (0 = no limit)")
	return cmd
}

// IngestSummary reports what an ingest run did.
type IngestSummary struct {
	Records     int
	Skipped     int
	Documents   int
	Rewrites    int
	Diagnostics []graph.Diagnostic
}

// Ingest runs the main pass: records to ledger, export, post-sale
// resolution and persistence.
func (a *App) Ingest(ctx context.Context) (*IngestSummary, error) {
	cfg := a.cfg
	minter := identity.NewMinter(cfg.Project.URIBase, cfg.Project.Name)

	rc := ledger.NewRunContext(minter, a.logger)
	rc.Counters = ledger.NewCounters(a.registry)
	rc.Dealer = ledger.Dealer{Name: cfg.Dealer.Name, ShortName: cfg.Dealer.ShortName, ULAN: cfg.Dealer.ULAN}

	resolver, err := a.loadResolver()
	if err != nil {
		return nil, err
	}
	rc.Resolver = resolver

	if cfg.Input.Problematic != "" {
		problematic, err := ledger.LoadProblematic(cfg.Input.Problematic)
		if err != nil {
			return nil, err
		}
		rc.Problematic = problematic
	}

	builder, err := a.loadGraph(ctx, minter)
	if err != nil {
		return nil, err
	}
	rc.Graph = builder

	reader, err := record.NewReader(cfg.Input.Root, cfg.Input.Patterns, cfg.Input.Limit)
	if err != nil {
		return nil, err
	}
	a.logger.Info("Reading records", "files", len(reader.Files()))

	summary := &IngestSummary{}
	book := ledger.NewBook()
	err = reader.Each(ctx, func(rec *record.NormalizedSaleRecord) error {
		l, err := ledger.Process(rc, rec)
		if err != nil {
			var ce *ledger.ClassificationError
			if errors.As(err, &ce) {
				summary.Skipped++
				return nil
			}
			return err
		}
		book.Add(l)
		summary.Records++
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("read records: %w", err)
	}

	format, err := export.ParseFormat(cfg.Output.Format)
	if err != nil {
		return nil, err
	}
	exporter := export.NewExporter(a.docs,
		export.WithFormat(format),
		export.WithWorkers(cfg.Output.Workers),
		export.WithLogger(a.logger),
		export.WithCounter(export.NewDocumentCounter(a.registry)))
	names, err := exporter.Write(ctx, book)
	if err != nil {
		return nil, err
	}
	summary.Documents = len(names)

	res, err := builder.Finalize(graph.UnknownLotPolicy(cfg.PostSale.UnknownLot))
	if err != nil {
		return nil, fmt.Errorf("resolve post-sale graph: %w", err)
	}
	for _, d := range res.Diagnostics {
		a.logger.Debug("Post-sale link rejected", "diagnostic", d.String())
	}
	summary.Diagnostics = res.Diagnostics

	m, err := a.mergeMap(ctx, rewrite.Map(res.Rewrites))
	if err != nil {
		return nil, err
	}
	summary.Rewrites = len(m)

	// The map is only saved once the state it was derived from is durable.
	if err := a.state.Save(ctx, builder.State()); err != nil {
		return nil, err
	}
	if err := a.maps.SaveMap(ctx, m); err != nil {
		return nil, err
	}

	if cfg.PostSale.DOT != "" {
		if err := writeDOTFile(cfg.PostSale.DOT, res, cfg.PostSale.DOTMinSize, cfg.PostSale.DOTLimit); err != nil {
			return nil, err
		}
	}

	a.logger.Info("Ingest finished",
		"records", summary.Records,
		"skipped", summary.Skipped,
		"documents", summary.Documents,
		"rewrites", summary.Rewrites,
		"diagnostics", len(summary.Diagnostics))
	return summary, nil
}

func (a *App) loadResolver() (*identity.Resolver, error) {
	var groups [][]string
	var distinct []string
	var err error
	if path := a.cfg.Input.ObjectsSame; path != "" {
		if groups, err = identity.LoadEquivalences(path); err != nil {
			return nil, err
		}
	}
	if path := a.cfg.Input.ObjectsDifferent; path != "" {
		if distinct, err = identity.LoadDistinct(path); err != nil {
			return nil, err
		}
	}
	return identity.NewResolver(groups, distinct), nil
}

func (a *App) loadGraph(ctx context.Context, minter *identity.Minter) (*graph.Builder, error) {
	state, err := a.state.Load(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		a.logger.Debug("No graph state found, starting fresh")
		return graph.NewBuilder(minter, a.logger), nil
	}
	if err != nil {
		return nil, err
	}
	b, err := graph.Restore(state, minter, a.logger)
	if err != nil {
		return nil, fmt.Errorf("restore graph state: %w", err)
	}
	nodes, edges := b.Len()
	a.logger.Info("Restored graph state", "nodes", nodes, "edges", edges)
	return b, nil
}

// mergeMap folds this run's rewrites into the persisted map without saving
// it. Later runs win for a key they both map.
func (a *App) mergeMap(ctx context.Context, rewrites rewrite.Map) (rewrite.Map, error) {
	m, err := a.maps.LoadMap(ctx)
	if errors.Is(err, storage.ErrNotFound) {
		m = rewrite.Map{}
	} else if err != nil {
		return nil, err
	}
	m.Merge(rewrites)
	return m.Compress(), nil
}

func writeDOTFile(path string, res *graph.Result, minSize, limit int) error {
	var buf bytes.Buffer
	if err := graph.WriteDOT(&buf, res, minSize, limit); err != nil {
		return fmt.Errorf("render post-sale graph: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
