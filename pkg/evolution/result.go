package evolution

import (
	"fmt"
	"iter"
	"slices"

	"lgpkit/internal/metric"
)

// Result is the shape-independent view of a finished training run.
type Result[D Scalar] interface {
	Runs() int
	Summary(run int) RunSummary
	OutputShape() Shape
	TargetShape() Shape
	BestFitness() (float64, bool)
}

// RunSummary describes one run of a training result without its program types.
type RunSummary struct {
	Run         int
	HasBest     bool
	BestFitness float64
	Program     string
	Statistics  []Statistics
}

// Evaluation holds what one run of the trainer produced.
type Evaluation[D Scalar, O Output[D]] struct {
	best       Program[D, O]
	statistics []Statistics
}

// NewEvaluation records the best program of a run and its statistics history.
// best may be nil when the run stopped before a program was scored.
func NewEvaluation[D Scalar, O Output[D]](best Program[D, O], statistics []Statistics) Evaluation[D, O] {
	return Evaluation[D, O]{
		best:       best,
		statistics: slices.Clone(statistics),
	}
}

func (e Evaluation[D, O]) Best() (Program[D, O], bool) {
	return e.best, e.best != nil
}

func (e Evaluation[D, O]) StatisticsLen() int { return len(e.statistics) }

func (e Evaluation[D, O]) StatisticsAt(i int) Statistics { return e.statistics[i] }

// Statistics yields the history in recording order.
func (e Evaluation[D, O]) Statistics() iter.Seq2[int, Statistics] {
	return func(yield func(int, Statistics) bool) {
		for i, s := range e.statistics {
			if !yield(i, s) {
				return
			}
		}
	}
}

// LastStatistics returns the final snapshot of the run.
func (e Evaluation[D, O]) LastStatistics() (Statistics, bool) {
	if len(e.statistics) == 0 {
		return Statistics{}, false
	}
	return e.statistics[len(e.statistics)-1], true
}

func (e Evaluation[D, O]) empty() bool {
	return e.best == nil && len(e.statistics) == 0
}

// TrainingResult is the frozen output of one training invocation.
// D is the dataset scalar, O the program output shape, T the target shape.
type TrainingResult[D Scalar, O Output[D], T Target[D]] struct {
	evaluations []Evaluation[D, O]
}

var _ Result[float64] = (*TrainingResult[float64, SingleOutput[float64], SingleTarget[float64]])(nil)

// NewTrainingResult fails with ErrInvalidResult when no evaluation carries a
// program or any statistics.
func NewTrainingResult[D Scalar, O Output[D], T Target[D]](evaluations ...Evaluation[D, O]) (*TrainingResult[D, O, T], error) {
	if len(evaluations) == 0 {
		return nil, fmt.Errorf("%w: no evaluations", ErrInvalidResult)
	}
	if !slices.ContainsFunc(evaluations, func(e Evaluation[D, O]) bool { return !e.empty() }) {
		return nil, fmt.Errorf("%w: no program and no statistics in %d evaluations", ErrInvalidResult, len(evaluations))
	}
	return &TrainingResult[D, O, T]{evaluations: slices.Clone(evaluations)}, nil
}

func (r *TrainingResult[D, O, T]) Runs() int { return len(r.evaluations) }

func (r *TrainingResult[D, O, T]) Evaluation(run int) Evaluation[D, O] { return r.evaluations[run] }

func (r *TrainingResult[D, O, T]) Evaluations() iter.Seq2[int, Evaluation[D, O]] {
	return func(yield func(int, Evaluation[D, O]) bool) {
		for i, e := range r.evaluations {
			if !yield(i, e) {
				return
			}
		}
	}
}

// Best returns the lowest-fitness program across all runs. Programs with a
// non-finite fitness only win when no run has a finite one.
func (r *TrainingResult[D, O, T]) Best() (Program[D, O], bool) {
	var best Program[D, O]
	for _, e := range r.evaluations {
		if e.best == nil {
			continue
		}
		if best == nil || metric.Less(e.best.Fitness(), best.Fitness()) {
			best = e.best
		}
	}
	return best, best != nil
}

func (r *TrainingResult[D, O, T]) BestFitness() (float64, bool) {
	best, ok := r.Best()
	if !ok {
		return 0, false
	}
	return best.Fitness(), true
}

// AverageBestFitness averages the best fitness of every run that produced a program.
func (r *TrainingResult[D, O, T]) AverageBestFitness() (float64, bool) {
	var sum float64
	var n int
	for _, e := range r.evaluations {
		if e.best == nil {
			continue
		}
		sum += e.best.Fitness()
		n++
	}
	if n == 0 {
		return 0, false
	}
	return sum / float64(n), true
}

func (r *TrainingResult[D, O, T]) OutputShape() Shape { return shapeOf[O]() }

func (r *TrainingResult[D, O, T]) TargetShape() Shape { return shapeOf[T]() }

func (r *TrainingResult[D, O, T]) Summary(run int) RunSummary {
	e := r.evaluations[run]
	summary := RunSummary{
		Run:        run,
		Statistics: slices.Clone(e.statistics),
	}
	if e.best != nil {
		summary.HasBest = true
		summary.BestFitness = e.best.Fitness()
		summary.Program = e.best.String()
	}
	return summary
}
