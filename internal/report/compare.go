package report

import (
	"encoding/csv"
	"io"
	"sort"
	"strconv"

	"lgpkit/internal/metric"
	"lgpkit/internal/model"
)

// Comparison is one ranked row. Rank starts at 1.
type Comparison struct {
	Rank         int
	ID           string
	Problem      string
	Backend      string
	Runs         int
	Generations  int
	HasBest      bool
	BestFitness  float64
	CreatedAtUTC string
}

// Compare ranks records by best fitness, lowest first. Non-finite fitness
// ranks after every finite one and records without any program rank last.
// Ties break on creation time, then id.
func Compare(records []model.SolutionRecord) []Comparison {
	rows := make([]Comparison, 0, len(records))
	for _, record := range records {
		best, ok := record.BestFitness()
		rows = append(rows, Comparison{
			ID:           record.ID,
			Problem:      record.Problem,
			Backend:      record.Backend,
			Runs:         len(record.Runs),
			Generations:  record.Generations(),
			HasBest:      ok,
			BestFitness:  best,
			CreatedAtUTC: record.CreatedAtUTC,
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.HasBest != b.HasBest {
			return a.HasBest
		}
		if a.HasBest {
			if metric.Less(a.BestFitness, b.BestFitness) {
				return true
			}
			if metric.Less(b.BestFitness, a.BestFitness) {
				return false
			}
		}
		if a.CreatedAtUTC != b.CreatedAtUTC {
			return a.CreatedAtUTC < b.CreatedAtUTC
		}
		return a.ID < b.ID
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
	return rows
}

func WriteComparisonCSV(w io.Writer, rows []Comparison) error {
	writer := csv.NewWriter(w)
	if err := writer.Write([]string{"rank", "id", "problem", "backend", "runs", "generations", "best_fitness", "created_at_utc"}); err != nil {
		return err
	}
	for _, row := range rows {
		best := ""
		if row.HasBest {
			best = strconv.FormatFloat(row.BestFitness, 'f', -1, 64)
		}
		if err := writer.Write([]string{
			strconv.Itoa(row.Rank),
			row.ID,
			row.Problem,
			row.Backend,
			strconv.Itoa(row.Runs),
			strconv.Itoa(row.Generations),
			best,
			row.CreatedAtUTC,
		}); err != nil {
			return err
		}
	}
	writer.Flush()
	return writer.Error()
}
