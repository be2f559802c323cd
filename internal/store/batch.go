package store

import (
	"context"

	"github.com/roach88/loredb/internal/record"
)

// RecordKind names the record kind in a batch result.
type RecordKind string

const (
	RecordEntity RecordKind = "entity"
	RecordAction RecordKind = "action"
)

// RecordResult is the outcome of inserting one record.
type RecordResult struct {
	Kind RecordKind
	ID   string
	Err  error // nil on success
}

// BatchReport lists one result per record, in insertion order.
type BatchReport struct {
	Results []RecordResult
}

// Succeeded returns the number of committed records.
func (r BatchReport) Succeeded() int {
	n := 0
	for _, res := range r.Results {
		if res.Err == nil {
			n++
		}
	}
	return n
}

// Failures returns the results that carry an error.
func (r BatchReport) Failures() []RecordResult {
	var failed []RecordResult
	for _, res := range r.Results {
		if res.Err != nil {
			failed = append(failed, res)
		}
	}
	return failed
}

// InsertBatch inserts entities, then actions, each as its own statement.
//
// A failing record does not stop the batch and does not affect records
// already committed; its error is reported in the matching RecordResult.
// Entities go first so actions in the same batch can reference them.
func (s *Store) InsertBatch(ctx context.Context, entities []record.Entity, actions []record.Action) BatchReport {
	report := BatchReport{Results: make([]RecordResult, 0, len(entities)+len(actions))}

	for _, e := range entities {
		report.Results = append(report.Results, RecordResult{
			Kind: RecordEntity,
			ID:   e.ID,
			Err:  s.InsertEntity(ctx, e),
		})
	}
	for _, a := range actions {
		report.Results = append(report.Results, RecordResult{
			Kind: RecordAction,
			ID:   a.ID,
			Err:  s.InsertAction(ctx, a),
		})
	}

	s.logger.Debug("batch inserted",
		"records", len(report.Results),
		"succeeded", report.Succeeded(),
		"failed", len(report.Results)-report.Succeeded(),
	)
	return report
}
