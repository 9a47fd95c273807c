package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nodemap/nodemap/pkg/cache"
	"github.com/nodemap/nodemap/pkg/graph"
	"github.com/nodemap/nodemap/pkg/layout"
)

// layoutCommand creates the "layout" command for computing node positions.
func (c *CLI) layoutCommand() *cobra.Command {
	var (
		output  string
		noCache bool
	)
	opts := c.Config.Layout

	cmd := &cobra.Command{
		Use:   "layout <document>",
		Short: "Compute node positions for a graph document",
		Long: `Compute node positions for a graph document.

Positions are derived from the topology with a layered left-to-right
layout: cycles are broken, nodes are assigned to ranks by longest path,
and crossings are reduced by barycenter sweeps. Equal topology always
produces equal positions, and results are cached locally.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd, args[0], opts, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().Float64Var(&opts.NodeWidth, "node-width", opts.NodeWidth, "node box width")
	cmd.Flags().Float64Var(&opts.NodeHeight, "node-height", opts.NodeHeight, "node box height")
	cmd.Flags().Float64Var(&opts.HGap, "h-gap", opts.HGap, "horizontal gap between ranks")
	cmd.Flags().Float64Var(&opts.VGap, "v-gap", opts.VGap, "vertical gap between nodes")

	return cmd
}

func (c *CLI) runLayout(cmd *cobra.Command, input string, opts layout.Options, output string, noCache bool) error {
	doc, err := c.openDocument(cmd, input)
	if err != nil {
		return err
	}

	store, err := c.newCache(cmd, noCache)
	if err != nil {
		return fmt.Errorf("initialize cache: %w", err)
	}
	defer store.Close()

	prog := newProgress(c.Logger)
	positions, cacheHit, err := computeLayout(cmd.Context(), store, doc, opts, c.Config.Cache.TTL())
	if err != nil {
		return fmt.Errorf("compute layout: %w", err)
	}
	prog.done("Layout computed")

	data, err := json.MarshalIndent(positions, "", "  ")
	if err != nil {
		return fmt.Errorf("encode positions: %w", err)
	}
	data = append(data, '\n')

	if output == "" {
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}

	printSuccess("Layout complete")
	printFile(output)
	printStats(len(doc.Nodes), len(doc.Edges), cacheHit)
	return nil
}

// computeLayout returns cached positions when the topology and geometry
// match a previous run, computing and storing them otherwise.
func computeLayout(ctx context.Context, store cache.Cache, doc graph.Document, opts layout.Options, ttl time.Duration) (map[string]graph.Point, bool, error) {
	key := cache.LayoutKey(cache.Hash(graph.Marshal(doc)), opts)

	if data, ok, err := store.Get(ctx, key); err == nil && ok {
		var positions map[string]graph.Point
		if err := json.Unmarshal(data, &positions); err == nil {
			return positions, true, nil
		}
		// Corrupt entry: drop it and recompute.
		_ = store.Delete(ctx, key)
	}

	positions := layout.New(opts).Compute(doc)

	if data, err := json.Marshal(positions); err == nil {
		_ = store.Set(ctx, key, data, ttl)
	}
	return positions, false, nil
}
