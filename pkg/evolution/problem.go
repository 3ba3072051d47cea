package evolution

import (
	"context"
	"fmt"
)

// Problem identifies what a trainer is asked to solve.
type Problem interface {
	Name() string
	Description() string
}

// Trainer is the boundary to a training engine: one call, one result.
type Trainer[D Scalar, O Output[D], T Target[D]] interface {
	Train(ctx context.Context, dataset Dataset[D, T]) (*TrainingResult[D, O, T], error)
}

// TrainerFunc adapts a function to the Trainer interface.
type TrainerFunc[D Scalar, O Output[D], T Target[D]] func(ctx context.Context, dataset Dataset[D, T]) (*TrainingResult[D, O, T], error)

func (f TrainerFunc[D, O, T]) Train(ctx context.Context, dataset Dataset[D, T]) (*TrainingResult[D, O, T], error) {
	return f(ctx, dataset)
}

// Solve trains on dataset and names the result after the problem.
func Solve[D Scalar, O Output[D], T Target[D]](ctx context.Context, problem Problem, trainer Trainer[D, O, T], dataset Dataset[D, T]) (*TrainedSolution[D, O, T], error) {
	if problem == nil || trainer == nil {
		return nil, fmt.Errorf("%w: a problem and a trainer are required before solving", ErrProblemNotInitialised)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result, err := trainer.Train(ctx, dataset)
	if err != nil {
		return nil, fmt.Errorf("train %s: %w", problem.Name(), err)
	}
	return NewSolution(problem.Name(), result)
}
