package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/conde/internal/app"
)

func (c *CLI) newCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <env>",
		Short: "Create a new environment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			node, _ := cmd.Flags().GetString("node")
			_, err := c.app.Create(cmd.Context(), args[0], app.CreateOptions{Node: node})
			return err
		},
	}

	cmd.Flags().String("node", "", "Node.js version to provision (e.g. 20, 20.11.0, lts)")

	return cmd
}

func (c *CLI) newActivateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "activate <env>",
		Short: "Print the shell script that activates an environment",
		Long:  "Print the shell script that activates an environment.\n\nUse it as: eval \"$(conde activate <env>)\"",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			act, err := c.app.Activate(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return writeActivate(cmd.OutOrStdout(), act)
		},
	}
}

func (c *CLI) newDeactivateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "deactivate",
		Short: "Print the shell script that leaves the active environment",
		Long:  "Print the shell script that leaves the active environment.\n\nUse it as: eval \"$(conde deactivate)\"",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			act, err := c.app.Deactivate(cmd.Context(), c.session())
			if err != nil || act == nil {
				return err
			}
			return writeDeactivate(cmd.OutOrStdout(), act, c.getenv("PATH"))
		},
	}
}

func (c *CLI) newRemoveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "remove <env>",
		Short: "Remove an environment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.app.Remove(cmd.Context(), c.session(), args[0])
		},
	}
}
