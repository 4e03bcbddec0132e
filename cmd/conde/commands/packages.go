package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/conde/internal/app"
	"go.trai.ch/zerr"
)

var errManifestWithArgs = zerr.New("--manifest cannot be combined with package arguments")

func (c *CLI) newInstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install [package[@spec]...]",
		Short: "Install packages into the active environment",
		Example: `  conde install lodash
  conde install lodash@^4 @types/node@20
  conde install --manifest package.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			manifest, _ := cmd.Flags().GetString("manifest")
			if manifest == "" && len(args) == 0 {
				return cmd.Help()
			}
			if manifest != "" && len(args) > 0 {
				return errManifestWithArgs
			}

			_, err := c.app.Install(cmd.Context(), c.session(), app.InstallOptions{
				Packages: args,
				Manifest: manifest,
			})
			return err
		},
	}

	cmd.Flags().StringP("manifest", "m", "", "Install the dependencies of a package.json")

	return cmd
}

func (c *CLI) newUninstallCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "uninstall <package>",
		Short: "Remove a package from the active environment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Uninstall(cmd.Context(), c.session(), args[0])
		},
	}
}
