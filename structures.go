package cascade

import (
	"gorgonia.org/tensor"
)

// Network is the main structure used to map inputs to classifications. It is a linear chain of
// Layers, starting with a single input Layer and ending with a Classifier.
type Network struct {
	// a list of all of the Layers, stored such that their id is their index in this slice
	layers []*Layer

	// whether or not the network should panic when it encounters an error
	panicErrors bool

	err error

	cf  CostFunction
	opt Optimizer
	lr  HyperParameter

	// the Classifier of the final Layer, set at finalization
	cls Classifier

	// needDeltas[i] is whether or not the deltas of layers[i] must be calculated during
	// backpropagation: true only if some Layer at or before i is Adjustable.
	needDeltas []bool

	stat status
}

// Layers are the fundamental building blocks with which the Network is built. Each Layer has an
// Operator that determines how it computes its values from those of the Layer before it.
type Layer struct {
	// The name that will be used to print this Layer. Names are unique within a Network.
	name string

	// position in the chain; the input Layer has id 0
	id int

	// used for validation during setup
	host *Network

	// the Layer this receives input from. nil for the input Layer.
	input *Layer

	op Operator

	// type casting of the Operator; nil if not Adjustable
	adj Adjustable

	dims []int

	// the values (essentially outputs) of the Layer
	values []float64

	// the derivative of each value w.r.t. the cost of the current training sample. This will
	// be nil if deltas are never calculated for the Layer.
	deltas []float64
}

// ParamKind distinguishes weights from biases. Penalties only ever apply to weights.
type ParamKind int8

const (
	Weight ParamKind = iota // 0
	Bias   ParamKind = iota // 1
)

func (k ParamKind) String() string {
	if k == Bias {
		return "bias"
	}

	return "weight"
}

// Param is a trainable parameter tensor, along with the gradient accumulated for it during a
// minibatch.
type Param struct {
	Name string
	Kind ParamKind

	// Value holds float64 values. It is updated in place by the Optimizer.
	Value *tensor.Dense

	// Grad has the same length as Value. It is only meaningful during Network.Step.
	Grad []float64
}

// NewParam returns a zero-valued Param with the given dimensions.
func NewParam(name string, kind ParamKind, dims ...int) *Param {
	size := 1
	for _, d := range dims {
		size *= d
	}

	return &Param{
		Name:  name,
		Kind:  kind,
		Value: tensor.New(tensor.WithShape(dims...), tensor.WithBacking(make([]float64, size))),
		Grad:  make([]float64, size),
	}
}

// Values returns the backing slice of the Param's Value. It is NOT a copy.
func (p *Param) Values() []float64 {
	return p.Value.Float64s()
}

// Size returns the number of values in the Param.
func (p *Param) Size() int {
	return len(p.Grad)
}

// Batch is a minibatch of samples. Inputs and Labels are stored row-major: sample i occupies
// Inputs[i*InputSize : (i+1)*InputSize] and Labels[i*w : (i+1)*w], where w is the number of
// labels per sample.
type Batch struct {
	Inputs []float64
	Labels []int
	Size   int
}

// LabelWidth returns the number of labels per sample.
func (b Batch) LabelWidth() int {
	if b.Size == 0 {
		return 0
	}

	return len(b.Labels) / b.Size
}

// Sample returns the inputs and labels of sample i, given the number of inputs per sample. The
// returned slices are NOT copies.
func (b Batch) Sample(i, inputSize int) ([]float64, []int) {
	w := b.LabelWidth()
	return b.Inputs[i*inputSize : (i+1)*inputSize], b.Labels[i*w : (i+1)*w]
}
