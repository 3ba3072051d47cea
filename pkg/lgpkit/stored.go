package lgpkit

import (
	"slices"
	"time"

	"lgpkit/internal/metric"
	"lgpkit/internal/model"
	"lgpkit/pkg/evolution"
)

// StoredSolution is a solution re-hydrated from the store. It carries the
// summaries of every run but not the executable programs.
type StoredSolution struct {
	record model.SolutionRecord
	result *storedResult
}

var _ evolution.Solution[float64] = (*StoredSolution)(nil)

func newStoredSolution(record model.SolutionRecord) *StoredSolution {
	record = record.Clone()
	result := &storedResult{
		outputShape: evolution.Shape(record.OutputShape),
		targetShape: evolution.Shape(record.TargetShape),
		runs:        make([]evolution.RunSummary, len(record.Runs)),
	}
	for i, run := range record.Runs {
		stats := make([]evolution.Statistics, len(run.Statistics))
		for j, s := range run.Statistics {
			stats[j] = evolution.NewStatistics(s.Data)
		}
		result.runs[i] = evolution.RunSummary{
			Run:         run.Run,
			HasBest:     run.HasBest,
			BestFitness: run.BestFitness,
			Program:     run.Program,
			Statistics:  stats,
		}
	}
	return &StoredSolution{record: record, result: result}
}

func (s *StoredSolution) Problem() string { return s.record.Problem }

func (s *StoredSolution) Result() evolution.Result[float64] { return s.result }

func (s *StoredSolution) ID() string { return s.record.ID }

func (s *StoredSolution) ProblemKey() string { return s.record.ProblemKey }

func (s *StoredSolution) Backend() string { return s.record.Backend }

func (s *StoredSolution) Fingerprint() string { return s.record.Fingerprint }

// CreatedAt parses the stored creation timestamp. The zero time is returned
// for records with an unparseable timestamp.
func (s *StoredSolution) CreatedAt() time.Time {
	t, err := time.Parse(time.RFC3339Nano, s.record.CreatedAtUTC)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Record returns a copy of the persisted form.
func (s *StoredSolution) Record() model.SolutionRecord { return s.record.Clone() }

type storedResult struct {
	outputShape evolution.Shape
	targetShape evolution.Shape
	runs        []evolution.RunSummary
}

func (r *storedResult) Runs() int { return len(r.runs) }

func (r *storedResult) Summary(run int) evolution.RunSummary {
	summary := r.runs[run]
	summary.Statistics = slices.Clone(summary.Statistics)
	return summary
}

func (r *storedResult) OutputShape() evolution.Shape { return r.outputShape }

func (r *storedResult) TargetShape() evolution.Shape { return r.targetShape }

func (r *storedResult) BestFitness() (float64, bool) {
	found := false
	var best float64
	for _, run := range r.runs {
		if !run.HasBest {
			continue
		}
		if !found || metric.Less(run.BestFitness, best) {
			best = run.BestFitness
		}
		found = true
	}
	return best, found
}
