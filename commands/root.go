// Package commands holds the smartsrx command line: database generation,
// README maintenance, one-shot lookups and the lookup server.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/MolecularAI/smartsrx/config"
	"github.com/MolecularAI/smartsrx/logging"
)

// options is shared by every subcommand once the root pre-run has loaded it.
type options struct {
	envFile string
	verbose bool
	cfg     *config.Config
}

// NewRootCommand builds the smartsrx command tree.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "smartsrx",
		Short: "SMARTS-RX reactive function database tools",
		Long: `smartsrx builds the SMARTS-RX reactive function database from its source
table, keeps the README class table in sync, and serves lookups over HTTP.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load()
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			return logging.Close()
		},
	}

	root.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "environment file to load before reading configuration")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "verbose console logging")

	root.AddCommand(createJSONCmd(opts))
	root.AddCommand(updateReadmeCmd(opts))
	root.AddCommand(lookupCmd(opts))
	root.AddCommand(schemaCmd(opts))
	root.AddCommand(serveCmd(opts))

	return root
}

func (o *options) load() error {
	if err := config.LoadEnvFile(o.envFile); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	o.cfg = cfg

	logging.InitLoggerFromConfig(cfg, o.verbose)
	return nil
}

// Execute runs the command line with the process arguments.
func Execute() error {
	return NewRootCommand().Execute()
}
