// Package report writes solution artifacts to disk and ranks stored solutions.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"lgpkit/internal/model"
)

const (
	SolutionFile   = "solution.json"
	StatisticsFile = "statistics.csv"
	ProgramsFile   = "programs.txt"
)

// WriteSolutionArtifacts writes a record under baseDir/<id> and returns that directory.
func WriteSolutionArtifacts(baseDir string, record model.SolutionRecord) (string, error) {
	if strings.TrimSpace(record.ID) == "" {
		return "", fmt.Errorf("solution id is required")
	}

	dir := filepath.Join(baseDir, record.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}

	if err := writeJSON(filepath.Join(dir, SolutionFile), record); err != nil {
		return "", err
	}
	if err := writeStatisticsCSV(filepath.Join(dir, StatisticsFile), record.Runs); err != nil {
		return "", err
	}
	if err := writePrograms(filepath.Join(dir, ProgramsFile), record); err != nil {
		return "", err
	}
	return dir, nil
}

// ReadSolutionArtifact reads a solution.json written by WriteSolutionArtifacts.
// path may name the file or the directory holding it.
func ReadSolutionArtifact(path string) (model.SolutionRecord, error) {
	info, err := os.Stat(path)
	if err != nil {
		return model.SolutionRecord{}, err
	}
	if info.IsDir() {
		path = filepath.Join(path, SolutionFile)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return model.SolutionRecord{}, err
	}
	var record model.SolutionRecord
	if err := json.Unmarshal(data, &record); err != nil {
		return model.SolutionRecord{}, fmt.Errorf("parse %s: %w", path, err)
	}
	return record, nil
}

// StatisticsColumns is the union of metric keys across all runs, sorted.
func StatisticsColumns(runs []model.RunRecord) []string {
	seen := make(map[string]struct{})
	for _, run := range runs {
		for _, s := range run.Statistics {
			for key := range s.Data {
				seen[key] = struct{}{}
			}
		}
	}
	columns := make([]string, 0, len(seen))
	for key := range seen {
		columns = append(columns, key)
	}
	sort.Strings(columns)
	return columns
}

func writeStatisticsCSV(path string, runs []model.RunRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	columns := StatisticsColumns(runs)
	writer := csv.NewWriter(file)
	if err := writer.Write(append([]string{"run", "generation"}, columns...)); err != nil {
		return err
	}
	for _, run := range runs {
		for _, s := range run.Statistics {
			row := make([]string, 0, len(columns)+2)
			row = append(row, strconv.Itoa(run.Run), strconv.Itoa(s.Generation))
			for _, key := range columns {
				row = append(row, formatValue(s.Data[key]))
			}
			if err := writer.Write(row); err != nil {
				return err
			}
		}
	}
	writer.Flush()
	return writer.Error()
}

func writePrograms(path string, record model.SolutionRecord) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", record.Problem)
	for _, run := range record.Runs {
		if !run.HasBest {
			fmt.Fprintf(&b, "\n## run %d: no program\n", run.Run)
			continue
		}
		fmt.Fprintf(&b, "\n## run %d: best fitness %s\n", run.Run, strconv.FormatFloat(run.BestFitness, 'g', -1, 64))
		b.WriteString(run.Program)
		if !strings.HasSuffix(run.Program, "\n") {
			b.WriteByte('\n')
		}
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	default:
		return fmt.Sprint(x)
	}
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}
