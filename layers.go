package cascade

import (
	"fmt"
)

// String offers a universal method of gaining information about a Layer without printing all of
// its fields. String returns the Layer's name in quotes. Given a Layer that is nil, String will
// return:
//
//	<nil>
func (l *Layer) String() string {
	if l == nil {
		return "<nil>"
	}

	return fmt.Sprintf("%q", l.name)
}

// Name returns the name of the given Layer.
func (l *Layer) Name() string {
	return l.name
}

// ID returns the position of the Layer in its Network. The input Layer has id 0.
func (l *Layer) ID() int {
	return l.id
}

// IsInput returns whether or not the Layer is the input Layer, which has no Operator.
func (l *Layer) IsInput() bool {
	return l.input == nil
}

// Operator returns the Operator of the Layer, or nil if it is the input Layer.
func (l *Layer) Operator() Operator {
	return l.op
}

// Params returns the trainable parameters of the Layer, or nil if its Operator is not Adjustable.
func (l *Layer) Params() []*Param {
	if l.adj == nil {
		return nil
	}

	return l.adj.Params()
}

// Size returns the number of values the Layer produces.
func (l *Layer) Size() int {
	return len(l.values)
}

// Dims returns the dimensions of the values that the Layer produces. The returned slice is a
// copy, to allow changes to be made.
func (l *Layer) Dims() []int {
	return append([]int(nil), l.dims...)
}

// Value returns the value of the Layer at the given index. Value will allow panicking with
// index-out-of-bounds.
func (l *Layer) Value(index int) float64 {
	return l.values[index]
}

// Values returns the current values of the Layer. The returned slice is NOT a copy, and must not
// be modified.
func (l *Layer) Values() []float64 {
	return l.values
}

// Delta returns the derivative of the value at the given index w.r.t. the cost of the current
// training sample. Delta will panic if the deltas of the Layer are never calculated.
func (l *Layer) Delta(index int) float64 {
	return l.deltas[index]
}

// Deltas returns the deltas of the Layer. The returned slice is NOT a copy, and is nil if the
// deltas of the Layer are never calculated.
func (l *Layer) Deltas() []float64 {
	return l.deltas
}

// Input returns the Layer that this Layer receives input from, or nil for the input Layer.
func (l *Layer) Input() *Layer {
	return l.input
}

// InputSize returns the number of input values to the Layer. For the input Layer, this is zero.
func (l *Layer) InputSize() int {
	if l.input == nil {
		return 0
	}

	return l.input.Size()
}

// InputDims returns a copy of the dimensions of the input to the Layer.
func (l *Layer) InputDims() []int {
	if l.input == nil {
		return nil
	}

	return l.input.Dims()
}

// InputValue returns the input value at the given index. InputValue will panic if called on the
// input Layer.
func (l *Layer) InputValue(index int) float64 {
	return l.input.values[index]
}

// Inputs returns the values of the input to the Layer. The returned slice is NOT a copy, and
// must not be modified.
func (l *Layer) Inputs() []float64 {
	if l.input == nil {
		return nil
	}

	return l.input.values
}
