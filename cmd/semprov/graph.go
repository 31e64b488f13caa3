package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/c360studio/semprov/graph"
	"github.com/c360studio/semprov/identity"
	"github.com/c360studio/semprov/storage"
)

func graphCmd(flags *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "graph",
		Short: "Inspect the persisted post-sale graph",
	}
	cmd.AddCommand(graphDotCmd(flags))
	return cmd
}

func graphDotCmd(flags *globalFlags) *cobra.Command {
	var (
		out     string
		minSize int
		limit   int
	)

	cmd := &cobra.Command{
		Use:   "dot",
		Short: "Write the resolved post-sale components as Graphviz DOT",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := setup(flags)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("min-size") {
				minSize = cfg.PostSale.DOTMinSize
			}
			if !cmd.Flags().Changed("limit") {
				limit = cfg.PostSale.DOTLimit
			}

			state, err := storage.OpenState(cfg.State.Graph)
			if err != nil {
				return err
			}
			defer func() { _ = state.Close() }()

			ctx, cancel := signalContext()
			defer cancel()

			s, err := state.Load(ctx)
			if errors.Is(err, storage.ErrNotFound) {
				return fmt.Errorf("no graph state at %s, run ingest first", cfg.State.Graph)
			}
			if err != nil {
				return err
			}
			minter := identity.NewMinter(cfg.Project.URIBase, cfg.Project.Name)
			b, err := graph.Restore(s, minter, logger)
			if err != nil {
				return err
			}
			// Unknown lots are diagnostics here, never fatal.
			res, err := b.Finalize(graph.SkipUnknownLots)
			if err != nil {
				return err
			}

			if out == "" || out == "-" {
				return graph.WriteDOT(cmd.OutOrStdout(), res, minSize, limit)
			}
			if err := writeDOTFile(out, res, minSize, limit); err != nil {
				return err
			}
			logger.Info("Post-sale graph written", "path", out, "components", len(res.Components))
			return nil
		},
	}

	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default: stdout)")
	cmd.Flags().IntVar(&minSize, "min-size", 0, "Smallest component to include (default: post_sale.dot_min_size)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Maximum components to include (default: post_sale.dot_limit)")
	return cmd
}
