package evolution

import (
	"fmt"
	"strings"
)

// Solution names a training result with the problem it was produced for.
// Every backend that yields results over data type D can be consumed through it.
type Solution[D Scalar] interface {
	Problem() string
	Result() Result[D]
}

// TrainedSolution is the Solution produced directly from an in-process trainer.
type TrainedSolution[D Scalar, O Output[D], T Target[D]] struct {
	problem string
	result  *TrainingResult[D, O, T]
}

var _ Solution[float64] = (*TrainedSolution[float64, SingleOutput[float64], SingleTarget[float64]])(nil)

// NewSolution fails with ErrInvalidArgument when problem is blank or result is nil.
func NewSolution[D Scalar, O Output[D], T Target[D]](problem string, result *TrainingResult[D, O, T]) (*TrainedSolution[D, O, T], error) {
	if err := validate(problem, result == nil); err != nil {
		return nil, err
	}
	return &TrainedSolution[D, O, T]{problem: problem, result: result}, nil
}

func (s *TrainedSolution[D, O, T]) Problem() string { return s.problem }

func (s *TrainedSolution[D, O, T]) Result() Result[D] { return s.result }

// TrainingResult returns the typed result.
func (s *TrainedSolution[D, O, T]) TrainingResult() *TrainingResult[D, O, T] { return s.result }

// DatasetSolution also keeps the dataset the result was trained on.
type DatasetSolution[D Scalar, O Output[D], T Target[D]] struct {
	problem string
	result  *TrainingResult[D, O, T]
	dataset Dataset[D, T]
}

var _ Solution[float64] = (*DatasetSolution[float64, MultipleOutput[float64], MultipleTarget[float64]])(nil)

func NewDatasetSolution[D Scalar, O Output[D], T Target[D]](problem string, result *TrainingResult[D, O, T], dataset Dataset[D, T]) (*DatasetSolution[D, O, T], error) {
	if err := validate(problem, result == nil); err != nil {
		return nil, err
	}
	return &DatasetSolution[D, O, T]{problem: problem, result: result, dataset: dataset}, nil
}

func (s *DatasetSolution[D, O, T]) Problem() string { return s.problem }

func (s *DatasetSolution[D, O, T]) Result() Result[D] { return s.result }

func (s *DatasetSolution[D, O, T]) TrainingResult() *TrainingResult[D, O, T] { return s.result }

func (s *DatasetSolution[D, O, T]) Dataset() Dataset[D, T] { return s.dataset }

// ResultOf recovers the typed training result behind a solution, if it has one
// with exactly these output and target shapes.
func ResultOf[D Scalar, O Output[D], T Target[D]](s Solution[D]) (*TrainingResult[D, O, T], bool) {
	if s == nil {
		return nil, false
	}
	r, ok := s.Result().(*TrainingResult[D, O, T])
	return r, ok && r != nil
}

func validate(problem string, missingResult bool) error {
	if strings.TrimSpace(problem) == "" {
		return fmt.Errorf("%w: problem name must not be blank", ErrInvalidArgument)
	}
	if missingResult {
		return fmt.Errorf("%w: solution for %q has no training result", ErrInvalidArgument, problem)
	}
	return nil
}
