package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nodemap/nodemap/pkg/cache"
	"github.com/nodemap/nodemap/pkg/graph"
	"github.com/nodemap/nodemap/pkg/render"
)

// exportCommand creates the "export" command for rendering documents.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		output  string
		format  string
		noCache bool
	)

	cmd := &cobra.Command{
		Use:   "export <document>",
		Short: "Render a graph document as SVG or DOT",
		Long: `Render a graph document as an image.

Formats:
  svg   rendered in-process via Graphviz (default)
  dot   Graphviz DOT source, for processing with external tools

Rendered SVGs are cached by topology hash for faster repeated exports.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runExport(cmd, args[0], format, output, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: <document>.<format>)")
	cmd.Flags().StringVarP(&format, "format", "f", "svg", "output format: svg, dot")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runExport(cmd *cobra.Command, input, format, output string, noCache bool) error {
	doc, err := c.openDocument(cmd, input)
	if err != nil {
		return err
	}

	var data []byte
	var cacheHit bool

	switch strings.ToLower(format) {
	case "dot":
		data = []byte(render.ToDOT(doc))
	case "svg":
		store, err := c.newCache(cmd, noCache)
		if err != nil {
			return fmt.Errorf("initialize cache: %w", err)
		}
		defer store.Close()

		key := cache.ExportKey(cache.Hash(graph.Marshal(doc)), "svg", nil)
		if cached, ok, err := store.Get(cmd.Context(), key); err == nil && ok {
			data, cacheHit = cached, true
			break
		}

		prog := newProgress(c.Logger)
		data, err = render.RenderSVG(cmd.Context(), render.ToDOT(doc))
		if err != nil {
			return fmt.Errorf("render svg: %w", err)
		}
		prog.done("Rendered SVG")
		_ = store.Set(cmd.Context(), key, data, c.Config.Cache.TTL())
	default:
		return fmt.Errorf("unknown format %q (expected svg or dot)", format)
	}

	outputPath := output
	if outputPath == "" {
		outputPath = strings.TrimSuffix(input, ".json") + "." + strings.ToLower(format)
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("write output %s: %w", outputPath, err)
	}

	printSuccess("Export complete")
	printFile(outputPath)
	printStats(len(doc.Nodes), len(doc.Edges), cacheHit)
	return nil
}
