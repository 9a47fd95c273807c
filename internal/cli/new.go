package cli

import (
	"github.com/spf13/cobra"

	"github.com/nodemap/nodemap/pkg/session"
)

// newCommand creates the "new" command for creating empty documents.
func (c *CLI) newCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "new <name>",
		Short: "Create an empty graph document",
		Long: `Create an empty graph document at the given location.

A document is a <name>_data directory holding <name>.json (the topology)
and a nodes/ directory with one markdown note per node.`,
		Args: cobra.ExactArgs(1),
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
			if err := sess.SaveAs(cmd.Context(), args[0]); err != nil {
				return err
			}

			b := sess.Binding()
			printSuccess("Created %s", b.Name)
			if b.BaseDir != "" {
				printFile(b.BaseDir)
			}
			printNewline()
			printNextStep("Inspect", appName+" info "+args[0])
			return nil
		},
	}
}
