package storage

import (
	"context"

	"lgpkit/internal/model"
)

// ListFilter narrows ListSolutions. Zero values mean no filter and no limit.
type ListFilter struct {
	ProblemKey string
	Limit      int
}

// Store defines persistence operations for named training results.
type Store interface {
	Init(ctx context.Context) error
	SaveSolution(ctx context.Context, record model.SolutionRecord) error
	GetSolution(ctx context.Context, id string) (model.SolutionRecord, bool, error)
	// ListSolutions returns records newest first.
	ListSolutions(ctx context.Context, filter ListFilter) ([]model.SolutionRecord, error)
	DeleteSolution(ctx context.Context, id string) (bool, error)
}
