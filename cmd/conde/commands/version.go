package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *CLI) newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the application version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			info, err := c.app.Version(cmd.Context())
			if err != nil {
				return err
			}

			cmdo := cmd.OutOrStdout()
			_, _ = fmt.Fprintf(cmdo, "conde version %s (commit: %s, date: %s)\n", info.Version, info.Commit, info.Date)
			_, _ = fmt.Fprintf(cmdo, "recorded version: %s\n", info.Installed)
			return nil
		},
	}
}
