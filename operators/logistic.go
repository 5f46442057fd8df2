package operators

import (
	"math"

	"github.com/pkg/errors"

	cs "github.com/sharnoff/cascade"
	"github.com/sharnoff/cascade/utils"
)

type logistic int8

// Logistic returns an element-wise logistic (sigmoid) function as a cascade.Classifier, with
// one independent binary decision per output.
//
// Labels can be given two ways. A single label for more than one output is the index of the one
// output that should be 1; correctness is then decided by the largest output. Otherwise there
// must be one 0/1 label per output, and each output must round to its label.
func Logistic() logistic {
	return logistic(0)
}

func (t logistic) TypeString() string {
	return "logistic"
}

func (t logistic) OutputShape(l *cs.Layer) ([]int, error) {
	return l.InputDims(), nil
}

func (t logistic) Init(l *cs.Layer) error {
	return nil
}

func (t logistic) Evaluate(l *cs.Layer, values []float64) {
	inputs := l.Inputs()

	f := func(i int) {
		values[i] = 0.5 + 0.5*math.Tanh(0.5*inputs[i])
	}

	utils.MultiThread(0, len(values), f, elemOpsPerThread, 1)
}

func (t logistic) InputDeltas(l *cs.Layer, add func(int, float64)) {
	f := func(i int) {
		v := l.Value(i)
		add(i, l.Delta(i)*v*(1-v))
	}

	utils.MultiThread(0, l.Size(), f, elemOpsPerThread, 1)
}

func (t logistic) Targets(labels []int, size int) ([]float64, error) {
	if len(labels) == 1 && size > 1 {
		ts := cs.OneHot(labels[0], size)
		if ts == nil {
			return nil, errors.Errorf("Label %d is out of range for %d outputs", labels[0], size)
		}

		return ts, nil
	} else if len(labels) != size {
		return nil, cs.SizeMismatchError{Expected: size, Got: len(labels), Name: "logistic labels"}
	}

	ts := make([]float64, size)
	for i, y := range labels {
		if y != 0 && y != 1 {
			return nil, errors.Errorf("Label %d is %d, must be 0 or 1", i, y)
		}
		ts[i] = float64(y)
	}

	return ts, nil
}

// NLL returns the binary cross-entropy, summed over every output
func (t logistic) NLL(outs, targets []float64) float64 {
	var sum float64
	for i, o := range outs {
		if targets[i] != 0 {
			sum -= targets[i] * math.Log(o)
		}
		if targets[i] != 1 {
			sum -= (1 - targets[i]) * math.Log(1-o)
		}
	}

	return sum
}

func (t logistic) Correct(outs []float64, labels []int) bool {
	if len(labels) == 1 && len(outs) > 1 {
		return cs.CorrectHighest(outs, labels)
	} else if len(labels) != len(outs) {
		return false
	}

	return cs.CorrectRound(outs, labels)
}
