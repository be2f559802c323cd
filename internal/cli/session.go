package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/loredb/internal/config"
	"github.com/roach88/loredb/internal/store"
)

// openStore loads configuration, opens the database and applies the schema.
// Failures are reported through f and returned as ExitCommandError.
// The caller must close the returned store.
func openStore(cmd *cobra.Command, opts *RootOptions, f *OutputFormatter) (*store.Store, *config.Config, error) {
	cfg, err := config.Load(opts.ConfigFile)
	if err != nil {
		return nil, nil, f.Fail(ExitCommandError, ErrCodeConfig, "failed to load config", err)
	}
	if opts.Database != "" {
		cfg.Database = opts.Database
	}
	if cfg.File != "" {
		f.VerboseLog("Using config file %s", cfg.File)
	}

	logger := opts.logger(f.GetErrWriter())
	logger.Debug("opening database", "target", cfg.Database)

	st, err := store.OpenWithOptions(cfg.Database, cfg.StoreOptions(logger))
	if err != nil {
		return nil, nil, f.Fail(ExitCommandError, "", "failed to open database", err)
	}

	if err := st.Initialize(cmd.Context()); err != nil {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
		return nil, nil, f.Fail(ExitCommandError, "", "failed to initialize schema", err)
	}

	return st, cfg, nil
}

// closeStore closes st, logging rather than returning a close failure.
func closeStore(st *store.Store, opts *RootOptions, f *OutputFormatter) {
	if err := st.Close(); err != nil {
		opts.logger(f.GetErrWriter()).Error("error closing database", "error", err)
	}
}
