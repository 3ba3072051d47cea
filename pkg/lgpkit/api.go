package lgpkit

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"lgpkit/internal/hash"
	"lgpkit/internal/model"
	"lgpkit/internal/problemid"
	"lgpkit/internal/report"
	"lgpkit/internal/storage"
	"lgpkit/pkg/evolution"
)

type SaveRequest[D evolution.Scalar] struct {
	Solution evolution.Solution[D]
	// Backend names the trainer that produced the result, e.g. "sequential".
	Backend string
}

type SaveSummary struct {
	ID           string
	Problem      string
	ProblemKey   string
	Fingerprint  string
	Runs         int
	HasBest      bool
	BestFitness  float64
	CreatedAtUTC string
}

type ListRequest struct {
	Problem string
	Limit   int
}

type SolutionItem struct {
	ID           string
	Problem      string
	Backend      string
	OutputShape  string
	TargetShape  string
	Runs         int
	Generations  int
	HasBest      bool
	BestFitness  float64
	Fingerprint  string
	CreatedAtUTC string
}

type CompareRequest struct {
	IDs     []string
	Problem string
}

type ComparisonItem = report.Comparison

type ExportRequest struct {
	ID     string
	Latest bool
	OutDir string
}

type ExportSummary struct {
	ID        string
	Directory string
}

// Save persists any solution variant under a new id.
func Save[D evolution.Scalar](ctx context.Context, c *Client, req SaveRequest[D]) (SaveSummary, error) {
	if req.Solution == nil {
		return SaveSummary{}, fmt.Errorf("%w: solution is required", evolution.ErrInvalidArgument)
	}
	result := req.Solution.Result()
	if result == nil {
		return SaveSummary{}, fmt.Errorf("%w: solution has no result", evolution.ErrInvalidArgument)
	}

	record := model.SolutionRecord{
		VersionedRecord: storage.CurrentVersion(),
		Problem:         req.Solution.Problem(),
		Backend:         strings.TrimSpace(req.Backend),
		OutputShape:     string(result.OutputShape()),
		TargetShape:     string(result.TargetShape()),
		Runs:            make([]model.RunRecord, 0, result.Runs()),
	}
	for i := 0; i < result.Runs(); i++ {
		record.Runs = append(record.Runs, runRecord(result.Summary(i)))
	}
	return c.persist(ctx, record, "saved")
}

// Import stores a solution.json written by Export under a fresh id.
func (c *Client) Import(ctx context.Context, path string) (SaveSummary, error) {
	record, err := report.ReadSolutionArtifact(path)
	if err != nil {
		return SaveSummary{}, err
	}
	if record.VersionedRecord != storage.CurrentVersion() {
		return SaveSummary{}, fmt.Errorf("import %s: %w", path, storage.ErrVersionMismatch)
	}
	return c.persist(ctx, record, "imported")
}

func (c *Client) persist(ctx context.Context, record model.SolutionRecord, action string) (SaveSummary, error) {
	if err := validateRecord(record); err != nil {
		return SaveSummary{}, err
	}

	record.ID = uuid.NewString()
	record.ProblemKey = problemid.Normalize(record.Problem)
	record.CreatedAtUTC = c.timestamp()
	fingerprint, err := fingerprintOf(record)
	if err != nil {
		return SaveSummary{}, err
	}
	record.Fingerprint = fingerprint

	if err := c.store.SaveSolution(ctx, record); err != nil {
		c.logger.Error("save solution failed", "problem", record.Problem, "error", err)
		return SaveSummary{}, err
	}

	best, ok := record.BestFitness()
	c.logger.Info("solution "+action, "id", record.ID, "problem", record.Problem, "runs", len(record.Runs), "fingerprint", record.Fingerprint)
	return SaveSummary{
		ID:           record.ID,
		Problem:      record.Problem,
		ProblemKey:   record.ProblemKey,
		Fingerprint:  record.Fingerprint,
		Runs:         len(record.Runs),
		HasBest:      ok,
		BestFitness:  best,
		CreatedAtUTC: record.CreatedAtUTC,
	}, nil
}

func (c *Client) Load(ctx context.Context, id string) (*StoredSolution, bool, error) {
	record, ok, err := c.store.GetSolution(ctx, id)
	if err != nil || !ok {
		return nil, ok, err
	}
	return newStoredSolution(record), true, nil
}

// List returns stored solutions newest first, optionally for one problem.
func (c *Client) List(ctx context.Context, req ListRequest) ([]SolutionItem, error) {
	if req.Limit < 0 {
		return nil, errors.New("limit must be >= 0")
	}
	records, err := c.store.ListSolutions(ctx, storage.ListFilter{
		ProblemKey: problemid.Normalize(req.Problem),
		Limit:      req.Limit,
	})
	if err != nil {
		return nil, err
	}

	items := make([]SolutionItem, 0, len(records))
	for _, record := range records {
		best, ok := record.BestFitness()
		items = append(items, SolutionItem{
			ID:           record.ID,
			Problem:      record.Problem,
			Backend:      record.Backend,
			OutputShape:  record.OutputShape,
			TargetShape:  record.TargetShape,
			Runs:         len(record.Runs),
			Generations:  record.Generations(),
			HasBest:      ok,
			BestFitness:  best,
			Fingerprint:  record.Fingerprint,
			CreatedAtUTC: record.CreatedAtUTC,
		})
	}
	return items, nil
}

// Compare ranks the named solutions, or every solution of a problem, by best
// fitness. With neither ids nor problem it ranks everything stored.
func (c *Client) Compare(ctx context.Context, req CompareRequest) ([]ComparisonItem, error) {
	if len(req.IDs) > 0 && req.Problem != "" {
		return nil, errors.New("use either ids or problem")
	}

	var records []model.SolutionRecord
	if len(req.IDs) > 0 {
		records = make([]model.SolutionRecord, 0, len(req.IDs))
		for _, id := range req.IDs {
			record, ok, err := c.store.GetSolution(ctx, id)
			if err != nil {
				return nil, err
			}
			if !ok {
				return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
			}
			records = append(records, record)
		}
	} else {
		var err error
		records, err = c.store.ListSolutions(ctx, storage.ListFilter{ProblemKey: problemid.Normalize(req.Problem)})
		if err != nil {
			return nil, err
		}
	}
	return report.Compare(records), nil
}

func (c *Client) Export(ctx context.Context, req ExportRequest) (ExportSummary, error) {
	if req.ID != "" && req.Latest {
		return ExportSummary{}, errors.New("use either solution id or latest")
	}
	if req.ID == "" && !req.Latest {
		return ExportSummary{}, errors.New("export requires solution id or latest")
	}
	if req.OutDir == "" {
		req.OutDir = c.exportsDir
	}

	var record model.SolutionRecord
	if req.Latest {
		records, err := c.store.ListSolutions(ctx, storage.ListFilter{Limit: 1})
		if err != nil {
			return ExportSummary{}, err
		}
		if len(records) == 0 {
			return ExportSummary{}, errors.New("no solutions available to export")
		}
		record = records[0]
	} else {
		var ok bool
		var err error
		record, ok, err = c.store.GetSolution(ctx, req.ID)
		if err != nil {
			return ExportSummary{}, err
		}
		if !ok {
			return ExportSummary{}, fmt.Errorf("%w: %s", ErrNotFound, req.ID)
		}
	}

	dir, err := report.WriteSolutionArtifacts(req.OutDir, record)
	if err != nil {
		c.logger.Error("export failed", "id", record.ID, "error", err)
		return ExportSummary{}, err
	}
	c.logger.Info("solution exported", "id", record.ID, "dir", dir)
	return ExportSummary{ID: record.ID, Directory: filepath.Clean(dir)}, nil
}

func (c *Client) Delete(ctx context.Context, id string) (bool, error) {
	deleted, err := c.store.DeleteSolution(ctx, id)
	if err != nil {
		return false, err
	}
	if deleted {
		c.logger.Info("solution deleted", "id", id)
	}
	return deleted, nil
}

func runRecord(summary evolution.RunSummary) model.RunRecord {
	run := model.RunRecord{
		Run:         summary.Run,
		HasBest:     summary.HasBest,
		BestFitness: summary.BestFitness,
		Program:     summary.Program,
	}
	if len(summary.Statistics) > 0 {
		run.Statistics = make([]model.StatisticsRecord, len(summary.Statistics))
		for i, s := range summary.Statistics {
			run.Statistics[i] = model.StatisticsRecord{Generation: i, Data: s.Map()}
		}
	}
	return run
}

// validateRecord applies the solution invariants to a record from outside the
// evolution package.
func validateRecord(record model.SolutionRecord) error {
	if strings.TrimSpace(record.Problem) == "" {
		return fmt.Errorf("%w: problem name is blank", evolution.ErrInvalidArgument)
	}
	for _, shape := range []string{record.OutputShape, record.TargetShape} {
		switch evolution.Shape(shape) {
		case evolution.ShapeSingle, evolution.ShapeMultiple:
		default:
			return fmt.Errorf("%w: unknown shape %q", evolution.ErrInvalidArgument, shape)
		}
	}
	for _, run := range record.Runs {
		if run.HasBest || len(run.Statistics) > 0 {
			return nil
		}
	}
	return evolution.ErrInvalidResult
}

// fingerprintOf hashes the content of a record, ignoring identity and time,
// so that equal solutions share a fingerprint.
func fingerprintOf(record model.SolutionRecord) (string, error) {
	data, err := json.Marshal(struct {
		Problem     string            `json:"problem"`
		OutputShape string            `json:"output_shape"`
		TargetShape string            `json:"target_shape"`
		Runs        []model.RunRecord `json:"runs"`
	}{record.Problem, record.OutputShape, record.TargetShape, record.Runs})
	if err != nil {
		return "", fmt.Errorf("fingerprint solution: %w", err)
	}
	return hash.Fingerprint(data), nil
}
