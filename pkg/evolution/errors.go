package evolution

import "errors"

var (
	// ErrInvalidArgument is returned when a solution or dataset is built from missing or blank inputs.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrInvalidResult is returned when a training result would carry neither a program nor statistics.
	ErrInvalidResult = errors.New("invalid training result")
	// ErrProblemNotInitialised is returned by Solve when the problem or its trainer is missing.
	ErrProblemNotInitialised = errors.New("problem not initialised")
)
