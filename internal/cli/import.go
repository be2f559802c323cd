package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/roach88/loredb/internal/attr"
	"github.com/roach88/loredb/internal/record"
	"github.com/roach88/loredb/internal/store"
)

// ImportFile is the YAML document read by the import command.
//
//	entities:
//	  - id: ent_ada
//	    type: person
//	    name: Ada
//	    properties: {born: 1815}
//	actions:
//	  - type: authored
//	    actor: ent_ada
//	    object: ent_notes
type ImportFile struct {
	Entities []ImportEntity `yaml:"entities"`
	Actions  []ImportAction `yaml:"actions"`
}

// ImportEntity is one entity in an import file.
// ID is generated when empty. Timestamps default to the import time;
// LastUpdated defaults to FirstSeen.
type ImportEntity struct {
	ID          string `yaml:"id,omitempty"`
	Type        string `yaml:"type"`
	Name        string `yaml:"name"`
	Properties  any    `yaml:"properties,omitempty"`
	Metadata    any    `yaml:"metadata,omitempty"`
	FirstSeen   *int64 `yaml:"first_seen,omitempty"`
	LastUpdated *int64 `yaml:"last_updated,omitempty"`
}

// ImportAction is one action in an import file.
type ImportAction struct {
	ID         string `yaml:"id,omitempty"`
	Type       string `yaml:"type"`
	Actor      string `yaml:"actor"`
	Object     string `yaml:"object"`
	Properties any    `yaml:"properties,omitempty"`
	Timestamp  *int64 `yaml:"timestamp,omitempty"`
}

// ImportReport is the outcome of an import, one result per record.
type ImportReport struct {
	Stored  int            `json:"stored"`
	Failed  int            `json:"failed"`
	Results []ImportResult `json:"results"`
}

// ImportResult is the outcome of one imported record.
type ImportResult struct {
	Kind   string `json:"kind"` // "entity" | "action"
	ID     string `json:"id"`
	Status string `json:"status"` // "stored" | "failed"
	Code   string `json:"code,omitempty"`
	Error  string `json:"error,omitempty"`
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file.yaml>",
		Short: "Store entities and actions from a YAML file",
		Long: `Store every entity and action listed in a YAML file.

Entities are stored before actions so actions may reference entities from
the same file. Each record is stored on its own: a rejected record is
reported and does not undo records already stored. The command exits 1
if any record failed.

Example:
  loredb import --db ./lore.db ./people.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runImport(opts *RootOptions, path string, cmd *cobra.Command) error {
	f := opts.formatter(cmd)

	file, err := LoadImportFile(path)
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeInvalidInput, "invalid import file", err)
	}

	entities, actions, err := file.records(opts.clock(), opts.idGenerator())
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeInvalidInput, "invalid import file", err)
	}
	f.VerboseLog("Loaded %d entities and %d actions from %s", len(entities), len(actions), path)

	st, _, err := openStore(cmd, opts, f)
	if err != nil {
		return err
	}
	defer closeStore(st, opts, f)

	report := newImportReport(st.InsertBatch(cmd.Context(), entities, actions))
	if err := f.Result(report, report.text()); err != nil {
		return err
	}

	if report.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d of %d record(s) failed to import", report.Failed, len(report.Results)))
	}
	return nil
}

// LoadImportFile reads and parses an import file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadImportFile(path string) (*ImportFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read import file: %w", err)
	}

	// Reject unknown fields so "propertes:" is not silently dropped
	var file ImportFile
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("import file is empty")
		}
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := file.validate(); err != nil {
		return nil, err
	}
	return &file, nil
}

func (f *ImportFile) validate() error {
	if len(f.Entities) == 0 && len(f.Actions) == 0 {
		return errors.New("import file lists no entities or actions")
	}
	for i, e := range f.Entities {
		if e.Type == "" {
			return fmt.Errorf("entities[%d]: type is required", i)
		}
		if e.Name == "" {
			return fmt.Errorf("entities[%d]: name is required", i)
		}
	}
	for i, a := range f.Actions {
		if a.Type == "" {
			return fmt.Errorf("actions[%d]: type is required", i)
		}
		if a.Actor == "" || a.Object == "" {
			return fmt.Errorf("actions[%d]: actor and object are required", i)
		}
	}
	return nil
}

// records converts the file into records ready to insert.
// The clock is read once so every record in a file shares one timestamp.
func (f *ImportFile) records(clock record.Clock, ids IDGenerator) ([]record.Entity, []record.Action, error) {
	now := clock.Now().Unix()

	entities := make([]record.Entity, 0, len(f.Entities))
	for i, e := range f.Entities {
		props, err := toAttr(e.Properties)
		if err != nil {
			return nil, nil, fmt.Errorf("entities[%d].properties: %w", i, err)
		}
		meta, err := toAttr(e.Metadata)
		if err != nil {
			return nil, nil, fmt.Errorf("entities[%d].metadata: %w", i, err)
		}

		firstSeen := now
		if e.FirstSeen != nil {
			firstSeen = *e.FirstSeen
		}
		lastUpdated := firstSeen
		if e.LastUpdated != nil {
			lastUpdated = *e.LastUpdated
		}

		id := e.ID
		if id == "" {
			id = ids.Generate()
		}
		entities = append(entities, record.Entity{
			ID:          id,
			EntityType:  e.Type,
			Name:        e.Name,
			Properties:  props,
			FirstSeen:   firstSeen,
			LastUpdated: lastUpdated,
			Metadata:    meta,
		})
	}

	actions := make([]record.Action, 0, len(f.Actions))
	for i, a := range f.Actions {
		props, err := toAttr(a.Properties)
		if err != nil {
			return nil, nil, fmt.Errorf("actions[%d].properties: %w", i, err)
		}

		ts := now
		if a.Timestamp != nil {
			ts = *a.Timestamp
		}

		id := a.ID
		if id == "" {
			id = ids.Generate()
		}
		actions = append(actions, record.Action{
			ID:             id,
			ActionType:     a.Type,
			ActorEntityID:  a.Actor,
			ObjectEntityID: a.Object,
			Timestamp:      ts,
			Properties:     props,
		})
	}

	return entities, actions, nil
}

// toAttr converts a decoded YAML value. A missing value becomes {}.
func toAttr(v any) (attr.Value, error) {
	if v == nil {
		return attr.Object{}, nil
	}
	return attr.FromGo(v)
}

func newImportReport(batch store.BatchReport) ImportReport {
	report := ImportReport{Results: make([]ImportResult, 0, len(batch.Results))}
	for _, res := range batch.Results {
		r := ImportResult{Kind: string(res.Kind), ID: res.ID, Status: "stored"}
		if res.Err != nil {
			r.Status = "failed"
			r.Code = ErrorCode(res.Err)
			r.Error = res.Err.Error()
			report.Failed++
		} else {
			report.Stored++
		}
		report.Results = append(report.Results, r)
	}
	return report
}

func (r ImportReport) text() string {
	var b strings.Builder
	for _, res := range r.Results {
		if res.Error != "" {
			fmt.Fprintf(&b, "%-7s %-6s %s: [%s] %s\n", res.Status, res.Kind, res.ID, res.Code, res.Error)
			continue
		}
		fmt.Fprintf(&b, "%-7s %-6s %s\n", res.Status, res.Kind, res.ID)
	}
	fmt.Fprintf(&b, "Imported %d of %d record(s), %d failed\n", r.Stored, len(r.Results), r.Failed)
	return b.String()
}
