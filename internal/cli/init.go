package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/loredb/internal/store"
)

// InitResult is the JSON payload of the init command.
type InitResult struct {
	Database      string `json:"database"`
	SchemaVersion int    `json:"schema_version"`
}

// NewInitCommand creates the init command.
func NewInitCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the database and apply the schema",
		Long: `Create the database if it does not exist and apply the LoreDB schema.

Running init against an initialized database is a no-op. Every other
command initializes on demand, so init is only needed to prepare a
database ahead of time or to check that an existing one is usable.

Example:
  loredb init --db ./lore.db
  loredb init --db sqlite:///var/lib/loredb/lore.db --format json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(rootOpts, cmd)
		},
	}

	return cmd
}

func runInit(opts *RootOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	st, cfg, err := openStore(cmd, opts, f)
	if err != nil {
		return err
	}
	defer closeStore(st, opts, f)

	result := InitResult{
		Database:      cfg.Database,
		SchemaVersion: store.SchemaVersion(),
	}
	return f.Result(result, fmt.Sprintf("Initialized %s (schema version %d)\n", result.Database, result.SchemaVersion))
}
