package evolution

import (
	"fmt"
	"strings"
)

type single = SingleOutput[float64]
type singleTarget = SingleTarget[float64]

// constProgram evaluates to c*x for the feature named "x".
type constProgram struct {
	c       float64
	fitness float64
}

func (p constProgram) Fitness() float64 { return p.fitness }

func (p constProgram) Output(sample Sample[float64]) single {
	x, _ := sample.Feature("x")
	return NewSingleOutput(p.c * x.Value)
}

func (p constProgram) String() string { return fmt.Sprintf("r[0] = %g * x", p.c) }

// registerProgram copies its inputs into a multiple output.
type registerProgram struct {
	fitness float64
}

func (p registerProgram) Fitness() float64 { return p.fitness }

func (p registerProgram) Output(sample Sample[float64]) MultipleOutput[float64] {
	return NewMultipleOutput(sample.Values()...)
}

func (p registerProgram) String() string { return strings.Repeat("r[0] = r[0] ^ r[1]\n", 2) }

func generationStats(n int) []Statistics {
	stats := make([]Statistics, n)
	for i := range stats {
		stats[i] = NewStatistics(map[string]any{
			"generation":        i,
			"bestFitness":       float64(n-i) / float64(n),
			"meanProgramSize":   30 + i,
			"selectionPressure": "tournament",
		})
	}
	return stats
}

func mustResult(evaluations ...Evaluation[float64, single]) *TrainingResult[float64, single, singleTarget] {
	r, err := NewTrainingResult[float64, single, singleTarget](evaluations...)
	if err != nil {
		panic(err)
	}
	return r
}
