package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/conde/internal/app"
	"go.trai.ch/conde/internal/ui/output"
	"go.trai.ch/conde/internal/ui/style"
)

func (c *CLI) newCleanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Remove store packages that no environment uses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			removed, err := c.app.Clean(cmd.Context(), app.CleanOptions{DryRun: dryRun})
			if len(removed) > 0 {
				out := cmd.OutOrStdout()
				if werr := writePackages(out, style.New(output.Renderer(out)), removed); werr != nil && err == nil {
					err = werr
				}
			}
			return err
		},
	}

	cmd.Flags().BoolP("dry-run", "n", false, "List unused packages without removing them")

	return cmd
}
