package evolution

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTrainingResultRejectsEmpty(t *testing.T) {
	tests := []struct {
		name        string
		evaluations []Evaluation[float64, single]
	}{
		{"no evaluations", nil},
		{"empty evaluation", []Evaluation[float64, single]{NewEvaluation[float64, single](nil, nil)}},
		{"several empty evaluations", []Evaluation[float64, single]{
			NewEvaluation[float64, single](nil, nil),
			NewEvaluation[float64, single](nil, []Statistics{}),
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewTrainingResult[float64, single, singleTarget](tt.evaluations...)
			require.ErrorIs(t, err, ErrInvalidResult)
			assert.Nil(t, r)
		})
	}
}

func TestNewTrainingResultAcceptsProgramOrStatistics(t *testing.T) {
	_, err := NewTrainingResult[float64, single, singleTarget](NewEvaluation[float64, single](constProgram{}, nil))
	require.NoError(t, err)

	r, err := NewTrainingResult[float64, single, singleTarget](NewEvaluation[float64, single](nil, generationStats(4)))
	require.NoError(t, err)
	_, ok := r.Best()
	assert.False(t, ok)
	_, ok = r.BestFitness()
	assert.False(t, ok)
	_, ok = r.AverageBestFitness()
	assert.False(t, ok)
}

func TestTrainingResultBestAcrossRuns(t *testing.T) {
	r := mustResult(
		NewEvaluation[float64, single](constProgram{c: 1, fitness: 3}, generationStats(2)),
		NewEvaluation[float64, single](nil, generationStats(2)),
		NewEvaluation[float64, single](constProgram{c: 2, fitness: 1}, generationStats(2)),
	)

	require.Equal(t, 3, r.Runs())
	best, ok := r.Best()
	require.True(t, ok)
	assert.Equal(t, 1.0, best.Fitness())

	avg, ok := r.AverageBestFitness()
	require.True(t, ok)
	assert.Equal(t, 2.0, avg)

	assert.Equal(t, ShapeSingle, r.OutputShape())
	assert.Equal(t, ShapeSingle, r.TargetShape())

	summary := r.Summary(1)
	assert.False(t, summary.HasBest)
	assert.Len(t, summary.Statistics, 2)

	summary = r.Summary(2)
	assert.True(t, summary.HasBest)
	assert.Equal(t, "r[0] = 2 * x", summary.Program)
}

func TestTrainingResultIsFrozen(t *testing.T) {
	stats := generationStats(50)
	evaluations := []Evaluation[float64, single]{NewEvaluation[float64, single](constProgram{fitness: 0.5}, stats)}
	r := mustResult(evaluations...)

	stats[0] = NewStatistics(map[string]any{"tampered": true})
	evaluations[0] = NewEvaluation[float64, single](nil, nil)

	e := r.Evaluation(0)
	assert.Equal(t, 50, e.StatisticsLen())
	_, tampered := e.StatisticsAt(0).Get("tampered")
	assert.False(t, tampered)
	_, ok := e.Best()
	assert.True(t, ok)

	summary := r.Summary(0)
	summary.Statistics[1] = Statistics{}
	assert.Equal(t, 4, r.Evaluation(0).StatisticsAt(1).Len())
}

func TestEvaluationIterators(t *testing.T) {
	e := NewEvaluation[float64, single](constProgram{}, generationStats(5))

	var seen []int
	for i, s := range e.Statistics() {
		g, ok := s.Float("generation")
		require.True(t, ok)
		assert.Equal(t, float64(i), g)
		seen = append(seen, i)
		if i == 2 {
			break
		}
	}
	assert.Equal(t, []int{0, 1, 2}, seen)

	last, ok := e.LastStatistics()
	require.True(t, ok)
	g, _ := last.Float("generation")
	assert.Equal(t, 4.0, g)

	_, ok = NewEvaluation[float64, single](constProgram{}, nil).LastStatistics()
	assert.False(t, ok)
}

func TestStatisticsAccessors(t *testing.T) {
	source := map[string]any{"b": int32(2), "a": 1.5, "c": "text"}
	s := NewStatistics(source)
	source["d"] = 4

	assert.Equal(t, 3, s.Len())
	assert.Equal(t, []string{"a", "b", "c"}, s.Keys())

	v, ok := s.Float("b")
	require.True(t, ok)
	assert.Equal(t, 2.0, v)
	_, ok = s.Float("c")
	assert.False(t, ok)
	_, ok = s.Float("missing")
	assert.False(t, ok)

	var keys []string
	for k := range s.All() {
		keys = append(keys, k)
	}
	assert.Equal(t, []string{"a", "b", "c"}, keys)

	m := s.Map()
	m["a"] = 0.0
	v, _ = s.Float("a")
	assert.Equal(t, 1.5, v)

	assert.NotNil(t, Statistics{}.Map())
}

func TestMultipleShapes(t *testing.T) {
	target := NewMultipleTarget(1.0, 0.0)
	assert.True(t, target.Matches(NewMultipleOutput(1.0, 0.0)))
	assert.False(t, target.Matches(NewMultipleOutput(0.0, 1.0)))

	values := target.Values()
	values[0] = 9
	assert.Equal(t, 1.0, target.At(0))
	assert.Equal(t, 2, target.Len())
}

func TestNewDatasetRejectsMismatch(t *testing.T) {
	_, err := NewDataset([]Sample[float64]{NewSample[float64]()}, []singleTarget{})
	require.ErrorIs(t, err, ErrInvalidArgument)

	d, err := NewDataset([]Sample[float64]{}, []singleTarget{})
	require.NoError(t, err)
	assert.Equal(t, 0, d.NumFeatures())
	assert.Equal(t, ShapeSingle, d.TargetShape())
}

func TestStatisticsCompositeValuesAreFrozen(t *testing.T) {
	history := []float64{1, 2, 3}
	r := mustResult(NewEvaluation[float64, single](constProgram{fitness: 1}, []Statistics{
		NewStatistics(map[string]any{
			"fitnessHistory": history,
			"operators":      map[string]any{"crossover": []any{0.5, 0.25}},
		}),
	}))
	history[0] = 99

	v, ok := r.Evaluation(0).StatisticsAt(0).Get("fitnessHistory")
	require.True(t, ok)
	v.([]float64)[1] = -1

	for _, s := range r.Evaluation(0).Statistics() {
		for key, value := range s.All() {
			if key == "fitnessHistory" {
				value.([]float64)[2] = -2
			}
		}
		s.Map()["operators"].(map[string]any)["crossover"].([]any)[0] = 0.0
	}
	r.Summary(0).Statistics[0].Map()["fitnessHistory"].([]float64)[0] = -3

	got, _ := r.Evaluation(0).StatisticsAt(0).Get("fitnessHistory")
	assert.Equal(t, []float64{1, 2, 3}, got)
	operators, _ := r.Evaluation(0).StatisticsAt(0).Get("operators")
	assert.Equal(t, map[string]any{"crossover": []any{0.5, 0.25}}, operators)
}

func TestBestPrefersFiniteFitness(t *testing.T) {
	r := mustResult(
		NewEvaluation[float64, single](constProgram{c: 1, fitness: math.NaN()}, nil),
		NewEvaluation[float64, single](constProgram{c: 2, fitness: math.Inf(-1)}, nil),
		NewEvaluation[float64, single](constProgram{c: 3, fitness: 7}, nil),
		NewEvaluation[float64, single](constProgram{c: 4, fitness: math.Inf(1)}, nil),
	)
	best, ok := r.BestFitness()
	require.True(t, ok)
	assert.Equal(t, 7.0, best)

	diverged := mustResult(NewEvaluation[float64, single](constProgram{fitness: math.Inf(1)}, nil))
	best, ok = diverged.BestFitness()
	require.True(t, ok)
	assert.True(t, math.IsInf(best, 1))
}
