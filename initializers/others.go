package initializers

import "math/rand"

// Xavier returns variance scaling by the average of the number of inputs and outputs.
func Xavier(src *rand.Rand) *varianceScaling {
	return VarianceScaling(src).Avg()
}

// Glorot returns the uniform initialization suited to tanh units: values drawn uniformly from
// ±sqrt(6 / (inputs + outputs)).
func Glorot(src *rand.Rand) *varianceScaling {
	return Xavier(src).Uniform()
}
