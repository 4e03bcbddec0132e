package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.trai.ch/conde/internal/core/domain"
	"go.trai.ch/conde/internal/ui/output"
	"go.trai.ch/conde/internal/ui/style"
)

func (c *CLI) newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "list [envs|packages]",
		Short:     "List environments or the packages of the active environment",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"envs", "packages"},
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 && args[0] == "packages" {
				return c.listPackages(cmd)
			}
			return c.listEnvs(cmd)
		},
	}
}

func (c *CLI) listEnvs(cmd *cobra.Command) error {
	envs, err := c.app.ListEnvs(cmd.Context(), c.session())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	st := style.New(output.Renderer(out))
	if len(envs) == 0 {
		_, err := fmt.Fprintln(out, st.Muted.Render("no environments, create one with: conde create <env>"))
		return err
	}

	width := 0
	for _, env := range envs {
		width = max(width, len(env.Name))
	}

	for _, env := range envs {
		// Pad before styling so escape sequences do not skew the columns.
		padded := fmt.Sprintf("%-*s", width, env.Name)
		marker, name := st.Idle.Render(style.Circle), st.Name.Render(padded)
		if env.Active {
			marker, name = st.Active.Render(style.Dot), st.Active.Render(padded)
		}

		runtime := st.Muted.Render("no runtime")
		if env.RuntimeVersion != "" {
			runtime = "node " + st.Version.Render(env.RuntimeVersion)
		}
		if _, err := fmt.Fprintf(out, "%s %s  %s\n", marker, name, runtime); err != nil {
			return err
		}
	}
	return nil
}

func (c *CLI) listPackages(cmd *cobra.Command) error {
	env, ids, err := c.app.ListPackages(cmd.Context(), c.session())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	st := style.New(output.Renderer(out))
	if len(ids) == 0 {
		_, err := fmt.Fprintln(out, st.Muted.Render("no packages installed in "+env))
		return err
	}
	return writePackages(out, st, ids)
}

func writePackages(w io.Writer, st style.Styles, ids []domain.PackageID) error {
	width := 0
	for _, id := range ids {
		width = max(width, len(id.Name))
	}
	for _, id := range ids {
		name := st.Name.Render(fmt.Sprintf("%-*s", width, id.Name))
		if _, err := fmt.Fprintf(w, "%s  %s\n", name, st.Version.Render(id.Version)); err != nil {
			return err
		}
	}
	return nil
}
