package evolution

import (
	"fmt"
	"iter"
	"slices"
)

// Feature is one named input value of a sample.
type Feature[D Scalar] struct {
	Name  string
	Value D
}

// Sample is one row of dataset inputs.
type Sample[D Scalar] struct {
	features []Feature[D]
}

func NewSample[D Scalar](features ...Feature[D]) Sample[D] {
	return Sample[D]{features: slices.Clone(features)}
}

func (s Sample[D]) Len() int { return len(s.features) }

func (s Sample[D]) At(i int) Feature[D] { return s.features[i] }

// Feature looks a feature up by name.
func (s Sample[D]) Feature(name string) (Feature[D], bool) {
	for _, f := range s.features {
		if f.Name == name {
			return f, true
		}
	}
	return Feature[D]{}, false
}

// Values returns the feature values in column order.
func (s Sample[D]) Values() []D {
	values := make([]D, len(s.features))
	for i, f := range s.features {
		values[i] = f.Value
	}
	return values
}

// Dataset pairs input samples with the targets a program is scored against.
type Dataset[D Scalar, T Target[D]] struct {
	inputs  []Sample[D]
	outputs []T
}

func NewDataset[D Scalar, T Target[D]](inputs []Sample[D], outputs []T) (Dataset[D, T], error) {
	if len(inputs) != len(outputs) {
		return Dataset[D, T]{}, fmt.Errorf("%w: dataset has %d samples but %d targets", ErrInvalidArgument, len(inputs), len(outputs))
	}
	return Dataset[D, T]{
		inputs:  slices.Clone(inputs),
		outputs: slices.Clone(outputs),
	}, nil
}

func (d Dataset[D, T]) NumSamples() int { return len(d.inputs) }

// NumFeatures reports the feature count of the first sample.
func (d Dataset[D, T]) NumFeatures() int {
	if len(d.inputs) == 0 {
		return 0
	}
	return d.inputs[0].Len()
}

func (d Dataset[D, T]) Sample(i int) Sample[D] { return d.inputs[i] }

func (d Dataset[D, T]) Target(i int) T { return d.outputs[i] }

// All yields each sample together with its target.
func (d Dataset[D, T]) All() iter.Seq2[Sample[D], T] {
	return func(yield func(Sample[D], T) bool) {
		for i := range d.inputs {
			if !yield(d.inputs[i], d.outputs[i]) {
				return
			}
		}
	}
}

func (d Dataset[D, T]) TargetShape() Shape { return shapeOf[T]() }
