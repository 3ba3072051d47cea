package evolution

// Program is an evolved candidate as seen from outside the training engine.
// Fitness is an error measure: lower is better.
type Program[D Scalar, O Output[D]] interface {
	Fitness() float64
	Output(sample Sample[D]) O
	String() string
}
