package catalog

import (
	"fmt"

	"github.com/spf13/cobra"

	cat "github.com/arthur-debert/devup/pkg/catalog"
	"github.com/arthur-debert/devup/pkg/paths"
)

// NewCommand creates the catalog command
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "catalog",
		Short:   MsgShort,
		Long:    MsgLong,
		Example: MsgExample,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := paths.New()
			if err != nil {
				return err
			}
			c, err := cat.Load(p.CatalogPath())
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()

			fmt.Fprintln(out, "Tools:")
			for _, tool := range c.Tools {
				fmt.Fprintf(out, "  %-20s formula=%s apt=%s\n", tool.Name, tool.Formula, tool.Apt)
			}

			fmt.Fprintln(out, "Casks:")
			for _, cask := range c.Casks {
				fmt.Fprintf(out, "  %-20s cask=%s\n", cask.Name, cask.Cask)
			}

			fmt.Fprintf(out, "Runtime: %s (%d libraries)\n", c.Runtime.Interpreter, len(c.Runtime.Libraries))

			fmt.Fprintln(out, "Plugins:")
			for _, name := range c.PluginNames() {
				fmt.Fprintf(out, "  %s\n", name)
			}

			fmt.Fprintln(out, "Backup candidates:")
			for _, candidate := range c.BackupCandidates {
				fmt.Fprintf(out, "  %s\n", candidate)
			}

			return nil
		},
	}

	return cmd
}
