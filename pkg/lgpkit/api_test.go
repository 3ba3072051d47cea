package lgpkit

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lgpkit/internal/model"
	"lgpkit/internal/report"
	"lgpkit/internal/storage"
	"lgpkit/pkg/evolution"
)

type single = evolution.SingleOutput[float64]
type singleTarget = evolution.SingleTarget[float64]

type polyProgram struct {
	fitness float64
}

func (p polyProgram) Fitness() float64 { return p.fitness }

func (p polyProgram) Output(sample evolution.Sample[float64]) single {
	x, _ := sample.Feature("x")
	return evolution.NewSingleOutput(x.Value*x.Value + 5)
}

func (p polyProgram) String() string { return "r[0] = r[1] * r[1]\nr[0] = r[0] + 5.0" }

func newTestClient(t *testing.T) *Client {
	t.Helper()
	c, err := New(Options{
		StoreKind:   "memory",
		ExportsDir:  filepath.Join(t.TempDir(), "exports"),
		Compression: "zstd",
		Logger:      slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	require.NoError(t, err)
	require.NoError(t, c.Init(context.Background()))
	t.Cleanup(func() { _ = c.Close() })

	clock := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	c.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	return c
}

func stats(n int) []evolution.Statistics {
	out := make([]evolution.Statistics, n)
	for i := range out {
		out[i] = evolution.NewStatistics(map[string]any{
			"bestFitness":       float64(n - i),
			"meanProgramLength": 20 + i,
		})
	}
	return out
}

func trainedSolution(t *testing.T, problem string, fitness ...float64) *evolution.TrainedSolution[float64, single, singleTarget] {
	t.Helper()
	evaluations := make([]evolution.Evaluation[float64, single], 0, len(fitness))
	for _, f := range fitness {
		evaluations = append(evaluations, evolution.NewEvaluation[float64, single](polyProgram{fitness: f}, stats(3)))
	}
	r, err := evolution.NewTrainingResult[float64, single, singleTarget](evaluations...)
	require.NoError(t, err)
	s, err := evolution.NewSolution(problem, r)
	require.NoError(t, err)
	return s
}

func save(t *testing.T, c *Client, s evolution.Solution[float64]) SaveSummary {
	t.Helper()
	summary, err := Save(context.Background(), c, SaveRequest[float64]{Solution: s, Backend: "sequential"})
	require.NoError(t, err)
	return summary
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	c := newTestClient(t)
	s := trainedSolution(t, "SinPoly.", 0.5, 0.125)

	summary := save(t, c, s)
	assert.NotEmpty(t, summary.ID)
	assert.Equal(t, "sinpoly", summary.ProblemKey)
	assert.Len(t, summary.Fingerprint, 16)
	assert.Equal(t, 2, summary.Runs)
	assert.True(t, summary.HasBest)
	assert.Equal(t, 0.125, summary.BestFitness)
	assert.Equal(t, "2026-03-14T09:00:01.000000000Z", summary.CreatedAtUTC)

	loaded, ok, err := c.Load(context.Background(), summary.ID)
	require.NoError(t, err)
	require.True(t, ok)

	assert.Equal(t, "SinPoly.", loaded.Problem())
	assert.Equal(t, "sequential", loaded.Backend())
	assert.Equal(t, summary.Fingerprint, loaded.Fingerprint())
	assert.Equal(t, time.Date(2026, 3, 14, 9, 0, 1, 0, time.UTC), loaded.CreatedAt())

	result := loaded.Result()
	require.Equal(t, 2, result.Runs())
	assert.Equal(t, evolution.ShapeSingle, result.OutputShape())
	assert.Equal(t, evolution.ShapeSingle, result.TargetShape())
	best, ok := result.BestFitness()
	require.True(t, ok)
	assert.Equal(t, 0.125, best)

	for run := 0; run < 2; run++ {
		want := s.Result().Summary(run)
		got := result.Summary(run)
		assert.Equal(t, want.Program, got.Program)
		assert.Equal(t, want.BestFitness, got.BestFitness)
		require.Len(t, got.Statistics, len(want.Statistics))
		for i := range want.Statistics {
			assert.Equal(t, want.Statistics[i].Keys(), got.Statistics[i].Keys())
			w, _ := want.Statistics[i].Float("meanProgramLength")
			g, _ := got.Statistics[i].Float("meanProgramLength")
			assert.Equal(t, w, g)
		}
	}

	_, ok, err = c.Load(context.Background(), "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

type brokenSolution struct{}

func (brokenSolution) Problem() string                   { return "broken" }
func (brokenSolution) Result() evolution.Result[float64] { return nil }

func TestSaveRejectsMissingParts(t *testing.T) {
	c := newTestClient(t)

	_, err := Save[float64](context.Background(), c, SaveRequest[float64]{})
	require.ErrorIs(t, err, evolution.ErrInvalidArgument)

	_, err = Save[float64](context.Background(), c, SaveRequest[float64]{Solution: brokenSolution{}})
	require.ErrorIs(t, err, evolution.ErrInvalidArgument)
}

func TestSaveAcceptsEverySolutionVariant(t *testing.T) {
	c := newTestClient(t)
	trained := trainedSolution(t, "x-squared", 0.3)

	withData, err := evolution.NewDatasetSolution("x-squared", trained.TrainingResult(), evolution.Dataset[float64, singleTarget]{})
	require.NoError(t, err)

	first := save(t, c, trained)
	second := save(t, c, withData)
	stored, ok, err := c.Load(context.Background(), first.ID)
	require.NoError(t, err)
	require.True(t, ok)
	third := save(t, c, stored)

	assert.NotEqual(t, first.ID, second.ID)
	assert.NotEqual(t, first.ID, third.ID)
	assert.Equal(t, first.Fingerprint, second.Fingerprint)
	assert.Equal(t, first.Fingerprint, third.Fingerprint)

	other := save(t, c, trainedSolution(t, "x-squared", 0.4))
	assert.NotEqual(t, first.Fingerprint, other.Fingerprint)
}

func TestListFiltersByProblemNewestFirst(t *testing.T) {
	c := newTestClient(t)
	a := save(t, c, trainedSolution(t, "SinPoly.", 1))
	save(t, c, trainedSolution(t, "Full Adder", 2))
	b := save(t, c, trainedSolution(t, "sin_poly", 3))

	all, err := c.List(context.Background(), ListRequest{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	items, err := c.List(context.Background(), ListRequest{Problem: "SINPOLY"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, a.ID, items[0].ID)

	items, err = c.List(context.Background(), ListRequest{Problem: "sin poly"})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, b.ID, items[0].ID)
	assert.Equal(t, 3, items[0].Generations)

	limited, err := c.List(context.Background(), ListRequest{Limit: 1})
	require.NoError(t, err)
	require.Len(t, limited, 1)
	assert.Equal(t, b.ID, limited[0].ID)

	_, err = c.List(context.Background(), ListRequest{Limit: -1})
	assert.Error(t, err)
}

func TestCompare(t *testing.T) {
	c := newTestClient(t)
	worst := save(t, c, trainedSolution(t, "SinPoly.", 9))
	best := save(t, c, trainedSolution(t, "SinPoly.", 0.01, 4))
	save(t, c, trainedSolution(t, "Full Adder", 0))

	rows, err := c.Compare(context.Background(), CompareRequest{Problem: "SinPoly."})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, best.ID, rows[0].ID)
	assert.Equal(t, 1, rows[0].Rank)
	assert.Equal(t, worst.ID, rows[1].ID)

	rows, err = c.Compare(context.Background(), CompareRequest{IDs: []string{worst.ID, best.ID}})
	require.NoError(t, err)
	assert.Equal(t, best.ID, rows[0].ID)

	rows, err = c.Compare(context.Background(), CompareRequest{})
	require.NoError(t, err)
	assert.Len(t, rows, 3)

	_, err = c.Compare(context.Background(), CompareRequest{IDs: []string{"missing"}})
	require.ErrorIs(t, err, ErrNotFound)

	_, err = c.Compare(context.Background(), CompareRequest{IDs: []string{best.ID}, Problem: "SinPoly."})
	assert.Error(t, err)
}

func TestExportImportRoundTrip(t *testing.T) {
	c := newTestClient(t)
	original := save(t, c, trainedSolution(t, "SinPoly.", 0.5, 0.25))

	exported, err := c.Export(context.Background(), ExportRequest{ID: original.ID})
	require.NoError(t, err)
	assert.Equal(t, original.ID, exported.ID)
	assert.Equal(t, filepath.Join(c.exportsDir, original.ID), exported.Directory)

	imported, err := c.Import(context.Background(), exported.Directory)
	require.NoError(t, err)
	assert.NotEqual(t, original.ID, imported.ID)
	assert.Equal(t, original.Fingerprint, imported.Fingerprint)
	assert.Equal(t, original.BestFitness, imported.BestFitness)

	a, _, err := c.Load(context.Background(), original.ID)
	require.NoError(t, err)
	b, _, err := c.Load(context.Background(), imported.ID)
	require.NoError(t, err)
	assert.Equal(t, a.Problem(), b.Problem())
	assert.Equal(t, a.Backend(), b.Backend())
	require.Equal(t, a.Result().Runs(), b.Result().Runs())
	for run := 0; run < a.Result().Runs(); run++ {
		sa, sb := a.Result().Summary(run), b.Result().Summary(run)
		assert.Equal(t, sa.Program, sb.Program)
		assert.Equal(t, len(sa.Statistics), len(sb.Statistics))
	}
}

func TestExportLatest(t *testing.T) {
	c := newTestClient(t)
	_, err := c.Export(context.Background(), ExportRequest{Latest: true})
	assert.ErrorContains(t, err, "no solutions available")

	save(t, c, trainedSolution(t, "old", 1))
	latest := save(t, c, trainedSolution(t, "new", 1))

	out := t.TempDir()
	exported, err := c.Export(context.Background(), ExportRequest{Latest: true, OutDir: out})
	require.NoError(t, err)
	assert.Equal(t, latest.ID, exported.ID)
	for _, file := range []string{report.SolutionFile, report.StatisticsFile, report.ProgramsFile} {
		assert.FileExists(t, filepath.Join(out, latest.ID, file))
	}

	_, err = c.Export(context.Background(), ExportRequest{})
	assert.Error(t, err)
	_, err = c.Export(context.Background(), ExportRequest{ID: latest.ID, Latest: true})
	assert.Error(t, err)
	_, err = c.Export(context.Background(), ExportRequest{ID: "missing"})
	assert.ErrorIs(t, err, ErrNotFound)
}

func writeArtifact(t *testing.T, record model.SolutionRecord) string {
	t.Helper()
	data, err := json.Marshal(record)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), report.SolutionFile)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestImportValidates(t *testing.T) {
	c := newTestClient(t)
	valid := model.SolutionRecord{
		VersionedRecord: storage.CurrentVersion(),
		Problem:         "Full Adder",
		OutputShape:     "multiple",
		TargetShape:     "multiple",
		Runs:            []model.RunRecord{{Run: 0, HasBest: true, BestFitness: 0}},
	}

	tests := []struct {
		name   string
		mutate func(*model.SolutionRecord)
		want   error
	}{
		{"blank problem", func(r *model.SolutionRecord) { r.Problem = "  " }, evolution.ErrInvalidArgument},
		{"unknown shape", func(r *model.SolutionRecord) { r.OutputShape = "tensor" }, evolution.ErrInvalidArgument},
		{"no runs", func(r *model.SolutionRecord) { r.Runs = nil }, evolution.ErrInvalidResult},
		{"empty run", func(r *model.SolutionRecord) { r.Runs = []model.RunRecord{{Run: 0}} }, evolution.ErrInvalidResult},
		{"future version", func(r *model.SolutionRecord) { r.SchemaVersion = 99 }, storage.ErrVersionMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := valid.Clone()
			tt.mutate(&record)
			_, err := c.Import(context.Background(), writeArtifact(t, record))
			require.ErrorIs(t, err, tt.want)
		})
	}

	summary, err := c.Import(context.Background(), writeArtifact(t, valid))
	require.NoError(t, err)
	assert.Equal(t, "full-adder", summary.ProblemKey)

	_, err = c.Import(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestDelete(t *testing.T) {
	c := newTestClient(t)
	s := save(t, c, trainedSolution(t, "p", 1))

	deleted, err := c.Delete(context.Background(), s.ID)
	require.NoError(t, err)
	assert.True(t, deleted)

	deleted, err = c.Delete(context.Background(), s.ID)
	require.NoError(t, err)
	assert.False(t, deleted)
}

func TestNewRejectsBadOptions(t *testing.T) {
	_, err := New(Options{StoreKind: "memory", Compression: "brotli"})
	assert.Error(t, err)
	_, err = New(Options{StoreKind: "postgres"})
	assert.Error(t, err)
}

func TestStoredSolutionIsReadOnly(t *testing.T) {
	c := newTestClient(t)
	s := save(t, c, trainedSolution(t, "p", 1))
	loaded, _, err := c.Load(context.Background(), s.ID)
	require.NoError(t, err)

	summary := loaded.Result().Summary(0)
	summary.Statistics[0] = evolution.Statistics{}
	record := loaded.Record()
	record.Runs[0].Program = "tampered"

	assert.Equal(t, 2, loaded.Result().Summary(0).Statistics[0].Len())
	assert.NotEqual(t, "tampered", loaded.Result().Summary(0).Program)
	assert.Equal(t, polyProgram{}.String(), loaded.Record().Runs[0].Program)
}

func TestNonFiniteFitnessSurvivesSaveExportImport(t *testing.T) {
	c := newTestClient(t)
	r, err := evolution.NewTrainingResult[float64, single, singleTarget](
		evolution.NewEvaluation[float64, single](polyProgram{fitness: math.Inf(1)}, []evolution.Statistics{
			evolution.NewStatistics(map[string]any{"bestFitness": math.NaN(), "history": []float64{2, math.Inf(1)}}),
		}),
	)
	require.NoError(t, err)
	s, err := evolution.NewSolution("diverging-poly", r)
	require.NoError(t, err)

	saved := save(t, c, s)
	assert.True(t, saved.HasBest)
	assert.True(t, math.IsInf(saved.BestFitness, 1))

	loaded, ok, err := c.Load(context.Background(), saved.ID)
	require.NoError(t, err)
	require.True(t, ok)
	best, ok := loaded.Result().BestFitness()
	require.True(t, ok)
	assert.True(t, math.IsInf(best, 1))

	exported, err := c.Export(context.Background(), ExportRequest{ID: saved.ID})
	require.NoError(t, err)
	imported, err := c.Import(context.Background(), exported.Directory)
	require.NoError(t, err)
	assert.Equal(t, saved.Fingerprint, imported.Fingerprint)
	assert.True(t, math.IsInf(imported.BestFitness, 1))

	reloaded, _, err := c.Load(context.Background(), imported.ID)
	require.NoError(t, err)
	stat := reloaded.Result().Summary(0).Statistics[0]
	v, ok := stat.Float("bestFitness")
	require.True(t, ok)
	assert.True(t, math.IsNaN(v))
	history, _ := stat.Get("history")
	assert.Equal(t, []any{2.0, math.Inf(1)}, history)

	rows, err := c.Compare(context.Background(), CompareRequest{})
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}
