package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/MolecularAI/smartsrx/config"
	"github.com/MolecularAI/smartsrx/export"
	"github.com/MolecularAI/smartsrx/readme"
	"github.com/MolecularAI/smartsrx/smartsparser"
)

// sourceFlags are the source table options shared by the file commands.
// Empty values fall back to the loaded configuration.
type sourceFlags struct {
	source     string
	separator  string
	pyproject  string
	noSkipHead bool
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.source, "source", "", "SMARTS-RX source table (default $SMARTSRX_SOURCE)")
	cmd.Flags().StringVar(&f.separator, "separator", "", "column separator: space, tab, comma, whitespace or a literal (default $SMARTSRX_SEPARATOR)")
	cmd.Flags().StringVar(&f.pyproject, "pyproject", "", "manifest holding the database version (default $SMARTSRX_PYPROJECT)")
	cmd.Flags().BoolVar(&f.noSkipHead, "no-skip-header", false, "treat the first line of the source as data")
}

func (f *sourceFlags) resolve(cfg *config.Config) (source, separator, pyproject string, skipHeader bool) {
	source, separator, pyproject, skipHeader = cfg.SourceFile, cfg.Separator, cfg.PyprojectFile, cfg.SkipHeader
	if f.source != "" {
		source = f.source
	}
	if f.separator != "" {
		separator = config.ParseSeparator(f.separator)
	}
	if f.pyproject != "" {
		pyproject = f.pyproject
	}
	if f.noSkipHead {
		skipHeader = false
	}
	return source, separator, pyproject, skipHeader
}

func (f *sourceFlags) parser(cfg *config.Config) *smartsparser.SmartsParser {
	source, separator, pyproject, skipHeader := f.resolve(cfg)
	return smartsparser.NewSmartsParser(source, separator, skipHeader, pyproject)
}

func createJSONCmd(opts *options) *cobra.Command {
	var (
		src          sourceFlags
		output       string
		schemaOutput string
	)

	cmd := &cobra.Command{
		Use:   "create-json",
		Short: "Generate smartsrx.json and its JSON schema from the source table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := src.parser(opts.cfg).Parse()
			if err != nil {
				return fmt.Errorf("failed to load source: %w", err)
			}

			if err := export.WriteSchema(schemaOutput); err != nil {
				return err
			}
			if err := export.WriteDatabase(output, db); err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), "Database created successfully!")
			return nil
		},
	}

	src.register(cmd)
	cmd.Flags().StringVarP(&output, "output", "o", export.DefaultDatabaseFile, "database output file")
	cmd.Flags().StringVar(&schemaOutput, "schema-output", export.DefaultSchemaFile, "schema output file")

	return cmd
}

func updateReadmeCmd(opts *options) *cobra.Command {
	var (
		src        sourceFlags
		readmePath string
	)

	cmd := &cobra.Command{
		Use:   "update-readme",
		Short: "Regenerate the class table in the README from the source table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			source, separator, pyproject, skipHeader := src.resolve(opts.cfg)

			n, err := readme.UpdateTable(readmePath, source, separator, skipHeader, smartsparser.LoadVersion(pyproject))
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "README updated with %d entries\n", n)
			return nil
		},
	}

	src.register(cmd)
	cmd.Flags().StringVar(&readmePath, "readme", "README.md", "README file to update")

	return cmd
}
