package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/loredb/internal/store"
)

// SchemaResult is the JSON payload of the schema command.
type SchemaResult struct {
	Version int    `json:"version"`
	SQL     string `json:"sql"`
}

// NewSchemaCommand creates the schema command.
func NewSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the SQL schema",
		Long: `Print the SQL script init applies. No database is opened.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			f := rootOpts.formatter(cmd)
			return f.Result(SchemaResult{
				Version: store.SchemaVersion(),
				SQL:     store.SchemaSQL(),
			}, store.SchemaSQL())
		},
	}

	return cmd
}
