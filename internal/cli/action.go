package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/loredb/internal/record"
)

// ActionAddOptions holds flags for the action add command.
type ActionAddOptions struct {
	*RootOptions
	ID         string
	Type       string
	Actor      string
	Object     string
	Properties string
}

// NewActionCommand creates the action command group.
func NewActionCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "action",
		Short: "Store and fetch actions",
	}

	cmd.AddCommand(newActionAddCommand(rootOpts))
	cmd.AddCommand(newActionGetCommand(rootOpts))

	return cmd
}

func newActionAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ActionAddOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Store a new action between two entities",
		Long: `Store a new action performed by one entity on another.

Both --actor and --object must name stored entities. When --id is omitted
a UUIDv7 is generated.

Example:
  loredb action add --type authored --actor ent_ada --object ent_notes
  loredb action add --type met --actor ent_ada --object ent_babbage --props '{"year":1833}'`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runActionAdd(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.ID, "id", "", "action ID (generated if empty)")
	cmd.Flags().StringVar(&opts.Type, "type", "", "action type, e.g. authored (required)")
	cmd.Flags().StringVar(&opts.Actor, "actor", "", "ID of the entity performing the action (required)")
	cmd.Flags().StringVar(&opts.Object, "object", "", "ID of the entity acted upon (required)")
	cmd.Flags().StringVar(&opts.Properties, "props", "{}", "properties as JSON")
	_ = cmd.MarkFlagRequired("type")
	_ = cmd.MarkFlagRequired("actor")
	_ = cmd.MarkFlagRequired("object")

	return cmd
}

func runActionAdd(opts *ActionAddOptions, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	props, err := parseAttrFlag("props", opts.Properties)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeInvalidInput, "invalid input", err)
	}

	id := opts.ID
	if id == "" {
		id = opts.idGenerator().Generate()
		f.VerboseLog("Generated action ID %s", id)
	}
	action := record.NewActionAt(opts.clock(), id, opts.Type, opts.Actor, opts.Object, props)

	st, _, err := openStore(cmd, opts.RootOptions, f)
	if err != nil {
		return err
	}
	defer closeStore(st, opts.RootOptions, f)

	if err := st.InsertAction(cmd.Context(), action); err != nil {
		return f.Fail(insertExitCode(err), "", fmt.Sprintf("failed to store action %s", id), err)
	}

	return f.Result(action, fmt.Sprintf("Stored action %s\n", id))
}

func newActionGetCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get <id>",
		Short: "Fetch an action by ID",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runActionGet(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runActionGet(opts *RootOptions, id string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	st, _, err := openStore(cmd, opts, f)
	if err != nil {
		return err
	}
	defer closeStore(st, opts, f)

	action, err := st.GetAction(cmd.Context(), id)
	if err != nil {
		return f.Fail(ExitFailure, "", fmt.Sprintf("failed to fetch action %s", id), err)
	}

	return f.Result(action, renderAction(action))
}
