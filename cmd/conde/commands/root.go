// Package commands implements the CLI commands for the conde environment manager.
package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.trai.ch/conde/internal/app"
	"go.trai.ch/conde/internal/build"
	"go.trai.ch/conde/internal/core/domain"
	"go.trai.ch/conde/internal/core/ports"
)

// CLI represents the command line interface for conde.
type CLI struct {
	app     Application
	logger  ports.Logger
	getenv  func(string) string
	rootCmd *cobra.Command
}

// Application represents the application logic interface.
type Application interface {
	Create(ctx context.Context, name string, opts app.CreateOptions) (*domain.Environment, error)
	Activate(ctx context.Context, name string) (*domain.Activation, error)
	Deactivate(ctx context.Context, session domain.Session) (*domain.Activation, error)
	Install(ctx context.Context, session domain.Session, opts app.InstallOptions) ([]domain.PackageID, error)
	Uninstall(ctx context.Context, session domain.Session, name string) error
	ListEnvs(ctx context.Context, session domain.Session) ([]domain.Environment, error)
	ListPackages(ctx context.Context, session domain.Session) (string, []domain.PackageID, error)
	Clean(ctx context.Context, opts app.CleanOptions) ([]domain.PackageID, error)
	Remove(ctx context.Context, session domain.Session, name string) error
	Version(ctx context.Context) (*app.VersionInfo, error)
}

// Option configures a CLI.
type Option func(*CLI)

// WithLogger lets the --json and --verbose flags reconfigure l.
func WithLogger(l ports.Logger) Option {
	return func(c *CLI) { c.logger = l }
}

// WithEnv replaces the process environment lookup. Used for testing.
func WithEnv(getenv func(string) string) Option {
	return func(c *CLI) { c.getenv = getenv }
}

// New creates a new CLI instance with the given app.
func New(a Application, opts ...Option) *CLI {
	rootCmd := &cobra.Command{
		Use:           "conde",
		Short:         "Isolated Node.js runtime and package environments",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       build.Version,
	}

	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"{{.Name}} version {{.Version}} (commit: %s, date: %s)\n",
		build.Commit,
		build.Date,
	))
	rootCmd.InitDefaultVersionFlag()
	rootCmd.Flags().Lookup("version").Usage = "Print the application version"

	rootCmd.InitDefaultHelpFlag()
	rootCmd.Flags().Lookup("help").Usage = "Show help for command"

	c := &CLI{
		app:     a,
		getenv:  os.Getenv,
		rootCmd: rootCmd,
	}
	for _, opt := range opts {
		opt(c)
	}

	rootCmd.PersistentFlags().Bool("json", false, "Write logs as JSON")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Show debug output")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, _ []string) {
		jsonMode, _ := cmd.Flags().GetBool("json")
		verbose, _ := cmd.Flags().GetBool("verbose")
		c.configureLogger(jsonMode, verbose)
	}

	rootCmd.AddCommand(
		c.newCreateCmd(),
		c.newActivateCmd(),
		c.newDeactivateCmd(),
		c.newInstallCmd(),
		c.newUninstallCmd(),
		c.newListCmd(),
		c.newCleanCmd(),
		c.newRemoveCmd(),
		c.newVersionCmd(),
	)

	return c
}

func (c *CLI) configureLogger(jsonMode, verbose bool) {
	if l, ok := c.logger.(interface{ SetJSON(bool) }); ok {
		l.SetJSON(jsonMode)
	}
	if l, ok := c.logger.(interface{ SetVerbose(bool) }); ok {
		l.SetVerbose(verbose)
	}
}

// session reads the active environment of the invoking shell.
func (c *CLI) session() domain.Session {
	return domain.NewSession(c.getenv)
}

// Execute runs the root command with the given context.
func (c *CLI) Execute(ctx context.Context) error {
	c.rootCmd.SetContext(ctx)
	return c.rootCmd.Execute()
}

// SetArgs sets the arguments for the root command. Used for testing.
func (c *CLI) SetArgs(args []string) {
	c.rootCmd.SetArgs(args)
}

// SetOutput sets the output and error streams for the root command. Used for testing.
func (c *CLI) SetOutput(out, err io.Writer) {
	c.rootCmd.SetOut(out)
	c.rootCmd.SetErr(err)
}
