package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/MolecularAI/smartsrx/hierarchy"
	"github.com/MolecularAI/smartsrx/validation"
)

// queryLimits describes what validation.ValidateInput accepts.
const queryLimits = "128 characters of letters, digits, spaces and _ - . + ( ) ' ,"

// ErrNotFound is returned by lookup --type when no record has the key.
var ErrNotFound = errors.New("reactive function not found")

func lookupCmd(opts *options) *cobra.Command {
	var (
		src          sourceFlags
		specificType bool
	)

	cmd := &cobra.Command{
		Use:   "lookup QUERY",
		Short: "Print the reactive functions matching a category, subcategory or SMARTS-RX key",
		Long: `lookup prints every reactive function whose category, subcategory or
specific type equals QUERY. With --type only the SMARTS-RX key is searched
and a missing key is an error.

QUERY is limited to ` + queryLimits + `. Names using other characters,
such as '/', ':' or '--', cannot be looked up.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := args[0]
			if err := validation.NewDataValidator().ValidateInput(query); err != nil {
				return err
			}

			db, err := src.parser(opts.cfg).Parse()
			if err != nil {
				return fmt.Errorf("failed to load source: %w", err)
			}

			if specificType {
				fn, ok := db.SearchSpecificType(query)
				if !ok {
					return fmt.Errorf("%w: %s", ErrNotFound, query)
				}
				return writeJSON(cmd.OutOrStdout(), fn)
			}

			return writeJSON(cmd.OutOrStdout(), db.GetFunction(query))
		},
	}

	src.register(cmd)
	cmd.Flags().BoolVarP(&specificType, "type", "t", false, "look up a single SMARTS-RX key")

	return cmd
}

func schemaCmd(_ *options) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema of the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			schema, err := hierarchy.SchemaJSON()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(schema))
			return err
		},
	}
}

// writeJSON keeps SMARTS operators like & and > readable.
func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
