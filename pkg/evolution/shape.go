package evolution

import "slices"

// Scalar constrains the primitive value type a dataset is built from.
type Scalar interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Shape names the arity of a program output or a target.
type Shape string

const (
	ShapeSingle   Shape = "single"
	ShapeMultiple Shape = "multiple"
)

// Output is the set of shapes a program may produce for one sample.
type Output[D Scalar] interface {
	SingleOutput[D] | MultipleOutput[D]
	Shape() Shape
}

// Target is the set of shapes an expected value may take.
type Target[D Scalar] interface {
	SingleTarget[D] | MultipleTarget[D]
	Shape() Shape
}

// SingleOutput is a program output made of one value.
type SingleOutput[D Scalar] struct {
	Value D
}

func NewSingleOutput[D Scalar](value D) SingleOutput[D] {
	return SingleOutput[D]{Value: value}
}

func (SingleOutput[D]) Shape() Shape { return ShapeSingle }

// MultipleOutput is a program output read from several registers.
type MultipleOutput[D Scalar] struct {
	values []D
}

func NewMultipleOutput[D Scalar](values ...D) MultipleOutput[D] {
	return MultipleOutput[D]{values: slices.Clone(values)}
}

func (MultipleOutput[D]) Shape() Shape { return ShapeMultiple }

func (o MultipleOutput[D]) Len() int { return len(o.values) }

func (o MultipleOutput[D]) At(i int) D { return o.values[i] }

// Values returns a copy of the output values.
func (o MultipleOutput[D]) Values() []D { return slices.Clone(o.values) }

// SingleTarget is an expected value made of one scalar.
type SingleTarget[D Scalar] struct {
	Value D
}

func NewSingleTarget[D Scalar](value D) SingleTarget[D] {
	return SingleTarget[D]{Value: value}
}

func (SingleTarget[D]) Shape() Shape { return ShapeSingle }

// MultipleTarget is an expected value made of several scalars.
type MultipleTarget[D Scalar] struct {
	values []D
}

func NewMultipleTarget[D Scalar](values ...D) MultipleTarget[D] {
	return MultipleTarget[D]{values: slices.Clone(values)}
}

func (MultipleTarget[D]) Shape() Shape { return ShapeMultiple }

func (t MultipleTarget[D]) Len() int { return len(t.values) }

func (t MultipleTarget[D]) At(i int) D { return t.values[i] }

// Values returns a copy of the target values.
func (t MultipleTarget[D]) Values() []D { return slices.Clone(t.values) }

// Matches reports whether a multiple output carries exactly the target values.
func (t MultipleTarget[D]) Matches(o MultipleOutput[D]) bool {
	return slices.Equal(t.values, o.values)
}

func shapeOf[S interface{ Shape() Shape }]() Shape {
	var zero S
	return zero.Shape()
}
