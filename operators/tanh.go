package operators

import (
	"math"

	cs "github.com/sharnoff/cascade"
	"github.com/sharnoff/cascade/utils"
)

type tanh int8

// Tanh returns an Operator that performs an element-wise application of the tanh() function.
func Tanh() tanh {
	return tanh(0)
}

func (t tanh) TypeString() string {
	return "tanh"
}

func (t tanh) OutputShape(l *cs.Layer) ([]int, error) {
	return l.InputDims(), nil
}

func (t tanh) Init(l *cs.Layer) error {
	return nil
}

// elementwise operators do little work per value
const elemOpsPerThread int = 256

func (t tanh) Evaluate(l *cs.Layer, values []float64) {
	inputs := l.Inputs()

	f := func(i int) {
		values[i] = math.Tanh(inputs[i])
	}

	utils.MultiThread(0, len(values), f, elemOpsPerThread, 1)
}

// the derivative of tanh(x) is 1 - tanh(x)^2
func (t tanh) InputDeltas(l *cs.Layer, add func(int, float64)) {
	f := func(i int) {
		v := l.Value(i)
		add(i, l.Delta(i)*(1-v*v))
	}

	utils.MultiThread(0, l.Size(), f, elemOpsPerThread, 1)
}
