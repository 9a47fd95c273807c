package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nodemap/nodemap/pkg/graph"
	"github.com/nodemap/nodemap/pkg/session"
)

// infoCommand creates the "info" command for inspecting documents.
func (c *CLI) infoCommand() *cobra.Command {
	var showNodes bool

	cmd := &cobra.Command{
		Use:   "info <document>",
		Short: "Show summary information about a graph document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, cleanup, err := c.newGateway(cmd)
			if err != nil {
				return err
			}
			defer cleanup()

			sess := session.New(gw, session.Options{
				Logger: c.Logger,
				Layout: c.Config.Layout,
			})
			if err := sess.Open(cmd.Context(), args[0]); err != nil {
				return err
			}

			doc := sess.Document()
			b := sess.Binding()

			printKeyValue("Document", b.Name)
			if b.Path != "" {
				printKeyValue("Path", b.Path)
			}
			printKeyValue("Nodes", fmt.Sprintf("%d", len(doc.Nodes)))
			printKeyValue("Edges", fmt.Sprintf("%d", len(doc.Edges)))

			directed, undirected := countByDirection(doc.Edges)
			if undirected > 0 {
				printDetail("%d directed, %d undirected", directed, undirected)
			}

			tags := sess.Tags()
			printKeyValue("Tags", fmt.Sprintf("%d", len(tags)))
			for _, tag := range tags {
				printDetail("%s %s", tag.Color, tag.Name)
			}

			if showNodes {
				printNewline()
				for _, n := range doc.Nodes {
					label := n.Label
					if n.TagName != "" {
						label += " " + StyleDim.Render("["+n.TagName+"]")
					}
					printDetail("%s", label)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showNodes, "nodes", false, "list every node label")
	return cmd
}

func countByDirection(edges []graph.Edge) (directed, undirected int) {
	for _, e := range edges {
		if e.Directed {
			directed++
		} else {
			undirected++
		}
	}
	return directed, undirected
}
