// Package evolution holds the result side of a program-synthesis run: the
// frozen TrainingResult a trainer produces and the Solution that names it.
//
// Types are parameterized by the dataset scalar D, the program output shape O
// and the target shape T. Mismatched shapes are rejected at compile time:
//
//	result, err := evolution.NewTrainingResult[float64, evolution.SingleOutput[float64], evolution.SingleTarget[float64]](runs...)
//	solution, err := evolution.NewSolution("x-squared-regression", result)
//
// Everything in this package is immutable after construction and safe for
// concurrent readers.
package evolution
