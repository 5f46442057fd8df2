package initializers

import (
	cs "github.com/sharnoff/cascade"
)

type random struct {
	RNG
}

// Random returns an Initializer that uses the provided RNG to generate the values. There is no
// scaling beyond that of the RNG.
func Random(g RNG) random {
	return random{g}
}

// Set is the implementation of cascade.Initializer
func (r random) Set(l *cs.Layer, vs []float64) {
	Fill(r.RNG, vs)
}

// Fill sets every value in vs from the RNG, in order.
func Fill(g RNG, vs []float64) {
	for i := range vs {
		vs[i] = g.Gen()
	}
}

type constant float64

// Zero returns an Initializer that sets every value to zero.
func Zero() constant {
	return Constant(0)
}

// Constant returns an Initializer that sets every value to v.
func Constant(v float64) constant {
	return constant(v)
}

// Set is the implementation of cascade.Initializer
func (c constant) Set(l *cs.Layer, vs []float64) {
	for i := range vs {
		vs[i] = float64(c)
	}
}
