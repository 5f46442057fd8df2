package initializers

import (
	"math"
	"math/rand"

	cs "github.com/sharnoff/cascade"
)

type varianceScaling struct {
	src *rand.Rand

	// either: "in", "out", "avg"
	mode   string
	factor float64

	// whether values are drawn from a uniform distribution instead of a truncated normal
	uniform bool
}

const defaultVarianceMode string = "avg"

// VarianceScaling returns the variance scaling initializer, which has 3 modes and a user-defined
// scaling factor. The three modes can be set by In, Out, and Avg. It defaults to Avg, a factor
// of 1 and a truncated normal distribution.
//
// The variance of the values is factor / n, where n is the number of inputs, outputs, or their
// average, depending on the mode.
func VarianceScaling(src *rand.Rand) *varianceScaling {
	return &varianceScaling{src: src, mode: defaultVarianceMode, factor: 1}
}

// Factor sets the scaling factor to be used for the Initializer.
func (v *varianceScaling) Factor(f float64) *varianceScaling {
	v.factor = f
	return v
}

// In sets the scaling to be based on the number of input values to the Layer.
func (v *varianceScaling) In() *varianceScaling {
	v.mode = "in"
	return v
}

// Out sets the scaling to be based on the number of output values of the Layer.
func (v *varianceScaling) Out() *varianceScaling {
	v.mode = "out"
	return v
}

// Avg sets the scaling to be based on the average of the numbers of input and output values of
// the Layer.
func (v *varianceScaling) Avg() *varianceScaling {
	v.mode = "avg"
	return v
}

// Uniform sets the values to be drawn from a uniform distribution with the same variance: on the
// range ±sqrt(3 * factor / n).
func (v *varianceScaling) Uniform() *varianceScaling {
	v.uniform = true
	return v
}

// Scale returns n, the number the factor is divided by, for the given numbers of inputs and
// outputs.
func (v *varianceScaling) Scale(in, out int) float64 {
	switch v.mode {
	case "in":
		return float64(in)
	case "out":
		return float64(out)
	}

	// must be "avg"
	return float64(in+out) / 2
}

// Set is the implementation of cascade.Initializer
func (v *varianceScaling) Set(l *cs.Layer, vs []float64) {
	v.Fill(l.InputSize(), l.Size(), vs)
}

// Fill sets the values as Set would for a Layer with the given numbers of inputs and outputs.
func (v *varianceScaling) Fill(in, out int, vs []float64) {
	variance := v.factor / v.Scale(in, out)

	var gen RNG
	if v.uniform {
		bound := math.Sqrt(3 * variance)
		gen = Uniform(v.src).Bounds(-bound, bound)
	} else {
		gen = TruncNormal(v.src).SD(math.Sqrt(variance))
	}

	Fill(gen, vs)
}
