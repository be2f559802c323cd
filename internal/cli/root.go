package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/loredb/internal/record"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "json" | "text"
	Database   string // overrides the configured database when set
	ConfigFile string

	// IDs generates record IDs when --id is omitted.
	// If nil, defaults to UUIDv7Generator.
	IDs IDGenerator

	// Clock stamps records created by add commands.
	// If nil, defaults to record.SystemClock.
	Clock record.Clock
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the loredb CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "loredb",
		Short: "LoreDB - structured memory",
		Long: `LoreDB records entities (people, places, things) and the actions
that connect them in an embedded SQLite database.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return opts.formatter(cmd).Fail(ExitCommandError, ErrCodeInvalidInput,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats), nil)
			}
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.Database, "db", "", "database path or sqlite:// URL (overrides config)")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (default ./loredb.yaml)")

	cmd.AddCommand(NewInitCommand(opts))
	cmd.AddCommand(NewEntityCommand(opts))
	cmd.AddCommand(NewActionCommand(opts))
	cmd.AddCommand(NewImportCommand(opts))
	cmd.AddCommand(NewSchemaCommand(opts))

	return cmd
}

// Execute runs cmd and returns the process exit code.
// An ExitError has already been reported by the command that returned it,
// so only other errors (flag parsing, unknown commands) are printed here.
func Execute(cmd *cobra.Command, stderr io.Writer) int {
	err := cmd.Execute()
	if err == nil {
		return ExitSuccess
	}
	var exitErr *ExitError
	if !errors.As(err, &exitErr) {
		fmt.Fprintf(stderr, "loredb: %v\n", err)
	}
	return GetExitCode(err)
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// formatter builds the output formatter for a command invocation.
// Diagnostics go to stderr so JSON on stdout stays parseable.
func (o *RootOptions) formatter(cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    o.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   o.Verbose,
	}
}

// logger returns a text logger writing to w, at debug level when verbose.
func (o *RootOptions) logger(w io.Writer) *slog.Logger {
	logLevel := slog.LevelInfo
	if o.Verbose {
		logLevel = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: logLevel,
	}))
}

func (o *RootOptions) idGenerator() IDGenerator {
	if o.IDs == nil {
		return UUIDv7Generator{}
	}
	return o.IDs
}

func (o *RootOptions) clock() record.Clock {
	if o.Clock == nil {
		return record.SystemClock
	}
	return o.Clock
}
