package cascade

// Operator is the interface for the transformation a Layer applies to the values of the Layer
// before it.
type Operator interface {
	// TypeString returns the string corresponding to the type of the Operator. For example: the
	// Operator "Tanh" should return "tanh", or something to that effect.
	TypeString() string

	// OutputShape returns the dimensions of the values of the host Layer, given the Layer that
	// it receives input from (available through l.Input()). The host Layer will not have any
	// values yet. OutputShape is called exactly once, before Init.
	//
	// Dimension disagreements should be reported by wrapping ErrDimensionMismatch.
	OutputShape(l *Layer) ([]int, error)

	// Init sets up the Operator for use with the given Layer, which now has its dimensions.
	// Operators with parameters should allocate and initialize them here. Init will always be
	// run before Evaluate or InputDeltas, and only once.
	Init(l *Layer) error

	// Evaluate should set the values of the Layer to reflect its inputs and parameters (if any).
	// arguments: host Layer, destination slice for its values
	//
	// Evaluate may assume that Init has returned successfully.
	Evaluate(l *Layer, values []float64)

	// InputDeltas should add to the deltas of the input Layer the derivative of the total cost
	// w.r.t. each input value, given the deltas of the host Layer (available through l.Delta()).
	//
	// 'add' adds the given float64 to the input delta at the given index. It is safe to call
	// concurrently for distinct indexes, but not for the same index.
	InputDeltas(l *Layer, add func(int, float64))
}

// Adjustable is the interface for Operators that have trainable parameters. Only the Params of
// Adjustable Operators are ever changed during training.
type Adjustable interface {
	Operator

	// Params returns the trainable parameters of the Operator. The result should be the same
	// set of Params every time, in the same order.
	Params() []*Param

	// AddGrads adds the derivative of the cost of the current sample w.r.t. each parameter to
	// the Grad of its Param, given the deltas of the host Layer. The Network resets and averages
	// the gradients; AddGrads should only ever add.
	AddGrads(l *Layer)
}

// Classifier is the interface for the final Operator of a Network. It defines the negative
// log-likelihood that is minimized and the zero-one error that is reported.
//
// Classifiers must be paired with a likelihood whose gradient w.r.t. the inputs of the
// Classifier (the logits) is exactly (outputs - targets). Network.Step relies on that when it
// starts backpropagation.
type Classifier interface {
	Operator

	// Targets converts the labels of a single sample into target outputs for a Classifier with
	// 'size' outputs. Labels that cannot be represented (an out of range class, for instance)
	// must return an error.
	Targets(labels []int, size int) ([]float64, error)

	// NLL returns the negative log-likelihood of the targets, given the outputs of the
	// Classifier. NaNs and Infs are allowed to propagate.
	NLL(outs, targets []float64) float64

	// Correct returns whether or not the outputs match the given labels.
	Correct(outs []float64, labels []int) bool
}

// Optimizer is the interface for applying gradients to parameters.
type Optimizer interface {
	// TypeString returns the string corresponding to the type of the Optimizer. For example: the
	// Optimizer "Adam" should return "adam", or something to that effect.
	TypeString() string

	// arguments: number of values, gradient of value at index, add to value at index,
	// learning rate
	//
	// number of values can be 0
	// adding to values is not thread-safe for repeated indexes
	Run(size int, grad func(int) float64, add func(int, float64), learningRate float64) error
}

// CostFunction converts the mean negative log-likelihood of a minibatch into the cost that is
// minimized, allowing penalties on parameters to be folded in.
type CostFunction interface {
	TypeString() string

	// Cost returns the total cost, given the mean negative log-likelihood of the minibatch and
	// every trainable parameter of the Network.
	Cost(nll float64, params []*Param) float64

	// Grad returns the gradient of the total cost w.r.t. the value of p at 'index', given the
	// gradient of the mean negative log-likelihood.
	Grad(p *Param, index int, grad float64) float64
}

// Penalty is a regularization term on the values of weights. Penalties are never applied to
// biases.
type Penalty interface {
	TypeString() string

	// Cost returns the value of the penalty for the given weights.
	Cost(ws []float64) float64

	// Penalize returns the gradient of a single weight, given its unpenalized gradient and
	// its value.
	Penalize(grad, w float64) float64
}

// Initializer dictates how the values of a Param will be set, given its host Layer and the
// slice to fill.
type Initializer interface {
	Set(l *Layer, vs []float64)
}

// HyperParameter is a value that may vary with the iteration of training, such as a learning
// rate.
type HyperParameter interface {
	TypeString() string

	// Value returns the value of the HyperParameter at the given iteration. Iterations start at
	// zero.
	Value(iter int) float64
}
