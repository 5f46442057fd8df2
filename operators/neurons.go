package operators

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	cs "github.com/sharnoff/cascade"
	"github.com/sharnoff/cascade/utils"
)

type neurons struct {
	size int

	wInit, bInit cs.Initializer

	// W has shape (inputs, size), so that the weights from a single input are contiguous
	W, B *cs.Param
}

// Neurons returns a fully-connected layer of the given size, which implements
// cascade.Adjustable. Weights and biases are zero unless initializers are given with
// WeightInit and BiasInit.
func Neurons(size int) *neurons {
	return &neurons{size: size}
}

// WeightInit sets the Initializer used for the weights, returning the same Operator.
func (n *neurons) WeightInit(i cs.Initializer) *neurons {
	n.wInit = i
	return n
}

// BiasInit sets the Initializer used for the biases, returning the same Operator.
func (n *neurons) BiasInit(i cs.Initializer) *neurons {
	n.bInit = i
	return n
}

func (n *neurons) TypeString() string {
	return "neurons"
}

func (n *neurons) OutputShape(l *cs.Layer) ([]int, error) {
	if n.size < 1 {
		return nil, errors.Errorf("Can't make neurons, size must be >= 1 (%d)", n.size)
	}

	return []int{n.size}, nil
}

func (n *neurons) Init(l *cs.Layer) error {
	n.W = cs.NewParam(l.Name()+" W", cs.Weight, l.InputSize(), n.size)
	n.B = cs.NewParam(l.Name()+" b", cs.Bias, n.size)

	if n.wInit != nil {
		n.wInit.Set(l, n.W.Values())
	}
	if n.bInit != nil {
		n.bInit.Set(l, n.B.Values())
	}

	return nil
}

// Weights returns the weights Param, with shape (inputs, size). It is nil before Init.
func (n *neurons) Weights() *cs.Param {
	return n.W
}

// Biases returns the biases Param, with shape (size). It is nil before Init.
func (n *neurons) Biases() *cs.Param {
	return n.B
}

func (n *neurons) Params() []*cs.Param {
	return []*cs.Param{n.W, n.B}
}

func (n *neurons) row(ws []float64, i int) []float64 {
	return ws[i*n.size : (i+1)*n.size]
}

func (n *neurons) Evaluate(l *cs.Layer, values []float64) {
	ws := n.W.Values()
	copy(values, n.B.Values())

	for i, x := range l.Inputs() {
		floats.AddScaled(values, x, n.row(ws, i))
	}
}

const neuronsOpsPerThread int = 32

func (n *neurons) InputDeltas(l *cs.Layer, add func(int, float64)) {
	ws, ds := n.W.Values(), l.Deltas()

	f := func(i int) {
		add(i, floats.Dot(n.row(ws, i), ds))
	}

	utils.MultiThread(0, l.InputSize(), f, neuronsOpsPerThread, 1)
}

func (n *neurons) AddGrads(l *cs.Layer) {
	inputs, ds := l.Inputs(), l.Deltas()

	f := func(i int) {
		floats.AddScaled(n.row(n.W.Grad, i), inputs[i], ds)
	}

	utils.MultiThread(0, len(inputs), f, neuronsOpsPerThread, 1)
	floats.Add(n.B.Grad, ds)
}
