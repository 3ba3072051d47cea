package model

import (
	"encoding/json"
	"fmt"

	"lgpkit/internal/metric"
)

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// SolutionRecord is the persisted form of a named training result.
type SolutionRecord struct {
	VersionedRecord
	ID           string      `json:"id"`
	Problem      string      `json:"problem"`
	ProblemKey   string      `json:"problem_key"`
	Backend      string      `json:"backend,omitempty"`
	OutputShape  string      `json:"output_shape"`
	TargetShape  string      `json:"target_shape"`
	Fingerprint  string      `json:"fingerprint"`
	CreatedAtUTC string      `json:"created_at_utc"`
	Runs         []RunRecord `json:"runs"`
}

type RunRecord struct {
	Run         int                `json:"run"`
	HasBest     bool               `json:"has_best"`
	BestFitness float64            `json:"best_fitness"`
	Program     string             `json:"program,omitempty"`
	Statistics  []StatisticsRecord `json:"statistics,omitempty"`
}

type StatisticsRecord struct {
	Generation int            `json:"generation"`
	Data       map[string]any `json:"data"`
}

// BestFitness is the best fitness across runs that produced a program.
// Finite values beat non-finite ones.
func (r SolutionRecord) BestFitness() (float64, bool) {
	var best float64
	found := false
	for _, run := range r.Runs {
		if !run.HasBest {
			continue
		}
		if !found || metric.Less(run.BestFitness, best) {
			best = run.BestFitness
		}
		found = true
	}
	return best, found
}

// Generations is the longest statistics history across runs.
func (r SolutionRecord) Generations() int {
	longest := 0
	for _, run := range r.Runs {
		if len(run.Statistics) > longest {
			longest = len(run.Statistics)
		}
	}
	return longest
}

// Clone deep-copies the record so stores never share slices or maps with callers.
func (r SolutionRecord) Clone() SolutionRecord {
	out := r
	if r.Runs == nil {
		return out
	}
	out.Runs = make([]RunRecord, len(r.Runs))
	for i, run := range r.Runs {
		copied := run
		if run.Statistics != nil {
			copied.Statistics = make([]StatisticsRecord, len(run.Statistics))
			for j, s := range run.Statistics {
				copied.Statistics[j] = StatisticsRecord{Generation: s.Generation, Data: metric.CloneMap(s.Data)}
			}
		}
		out.Runs[i] = copied
	}
	return out
}

type runRecordJSON RunRecord

// MarshalJSON writes a non-finite best fitness as "NaN", "+Inf" or "-Inf".
func (r RunRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		runRecordJSON
		BestFitness any `json:"best_fitness"`
	}{runRecordJSON(r), metric.EncodeFloat(r.BestFitness)})
}

func (r *RunRecord) UnmarshalJSON(data []byte) error {
	aux := struct {
		*runRecordJSON
		BestFitness any `json:"best_fitness"`
	}{runRecordJSON: (*runRecordJSON)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	best, ok := metric.DecodeFloat(aux.BestFitness)
	if !ok {
		return fmt.Errorf("run %d: invalid best_fitness %v", r.Run, aux.BestFitness)
	}
	r.BestFitness = best
	return nil
}

type statisticsRecordJSON StatisticsRecord

// MarshalJSON encodes non-finite metric values as tokens, at any depth.
func (s StatisticsRecord) MarshalJSON() ([]byte, error) {
	return json.Marshal(statisticsRecordJSON{Generation: s.Generation, Data: metric.EncodeJSONMap(s.Data)})
}

func (s *StatisticsRecord) UnmarshalJSON(data []byte) error {
	var aux statisticsRecordJSON
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	s.Generation = aux.Generation
	s.Data = metric.DecodeJSONMap(aux.Data)
	return nil
}
