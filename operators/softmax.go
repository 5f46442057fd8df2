package operators

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	cs "github.com/sharnoff/cascade"
)

type softmax int8

// Softmax returns the softmax function as a cascade.Classifier. Each sample has a single label:
// the index of its class.
func Softmax() softmax {
	return softmax(0)
}

func (t softmax) TypeString() string {
	return "softmax"
}

func (t softmax) OutputShape(l *cs.Layer) ([]int, error) {
	return l.InputDims(), nil
}

func (t softmax) Init(l *cs.Layer) error {
	return nil
}

func (t softmax) Evaluate(l *cs.Layer, values []float64) {
	inputs := l.Inputs()
	max := floats.Max(inputs)

	var sum float64
	for i := range values {
		values[i] = math.Exp(inputs[i] - max)
		sum += values[i]
	}

	floats.Scale(1/sum, values)
}

// InputDeltas applies the full Jacobian of the softmax. Network.Step does not use this; it
// starts from (outputs - targets) at the logits.
func (t softmax) InputDeltas(l *cs.Layer, add func(int, float64)) {
	values, ds := l.Values(), l.Deltas()
	dot := floats.Dot(values, ds)

	for i := range values {
		add(i, values[i]*(ds[i]-dot))
	}
}

func (t softmax) Targets(labels []int, size int) ([]float64, error) {
	if len(labels) != 1 {
		return nil, cs.SizeMismatchError{Expected: 1, Got: len(labels), Name: "softmax labels"}
	}

	ts := cs.OneHot(labels[0], size)
	if ts == nil {
		return nil, errors.Errorf("Label %d is out of range for %d classes", labels[0], size)
	}

	return ts, nil
}

// NLL returns -log(outs[class])
func (t softmax) NLL(outs, targets []float64) float64 {
	var sum float64
	for i := range outs {
		if targets[i] != 0 {
			sum -= targets[i] * math.Log(outs[i])
		}
	}

	return sum
}

func (t softmax) Correct(outs []float64, labels []int) bool {
	return cs.CorrectHighest(outs, labels)
}
