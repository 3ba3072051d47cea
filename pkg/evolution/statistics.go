package evolution

import (
	"iter"
	"maps"
	"slices"

	"lgpkit/internal/metric"
)

// Statistics is a frozen set of named metrics, usually captured once per generation.
// Composite values such as fitness histories are deep-copied on the way in and out.
type Statistics struct {
	data map[string]any
}

func NewStatistics(data map[string]any) Statistics {
	return Statistics{data: metric.CloneMap(data)}
}

func (s Statistics) Len() int { return len(s.data) }

func (s Statistics) Get(key string) (any, bool) {
	v, ok := s.data[key]
	return metric.Clone(v), ok
}

// Float returns a metric coerced to float64. Non-numeric values report false.
func (s Statistics) Float(key string) (float64, bool) {
	v, ok := s.data[key]
	if !ok {
		return 0, false
	}
	return asFloat64(v)
}

// Keys returns the metric names in lexical order.
func (s Statistics) Keys() []string {
	return slices.Sorted(maps.Keys(s.data))
}

// All yields every metric in key order.
func (s Statistics) All() iter.Seq2[string, any] {
	return func(yield func(string, any) bool) {
		for _, key := range s.Keys() {
			if !yield(key, metric.Clone(s.data[key])) {
				return
			}
		}
	}
}

// Map returns a copy of the metrics for serialization.
func (s Statistics) Map() map[string]any {
	if s.data == nil {
		return map[string]any{}
	}
	return metric.CloneMap(s.data)
}

func asFloat64(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int8:
		return float64(x), true
	case int16:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case uint:
		return float64(x), true
	case uint8:
		return float64(x), true
	case uint16:
		return float64(x), true
	case uint32:
		return float64(x), true
	case uint64:
		return float64(x), true
	default:
		return 0, false
	}
}
