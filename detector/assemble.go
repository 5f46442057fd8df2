// Package detector assembles detection Networks from recognition models and trains them.
package detector

import (
	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	cs "github.com/sharnoff/cascade"
	"github.com/sharnoff/cascade/initializers"
	"github.com/sharnoff/cascade/operators"
)

// Names of the Layers built by Assemble
const (
	InputLayer      = "input"
	ConvPool1Layer  = "conv-pool-1"
	ConvPool2Layer  = "conv-pool-2"
	HiddenLayer     = "hidden"
	HiddenTanhLayer = "hidden-tanh"
	OutputLayer     = "output"
	ClassifierLayer = "classifier"
)

// Model is a detection Network along with what it was built from.
type Model struct {
	Net         *cs.Network
	Recognition *cs.RecognitionModel
	Head        cs.HeadSizes
}

// Stages are the derived sizes of the feature extractor.
type Stages struct {
	// Conv1 and Conv2 are the (rows, cols) of the output of each conv-pool stage
	Conv1, Conv2 [2]int
}

// HiddenInputs returns the number of inputs to the hidden layer, given the number of kernels in
// the second stage.
func (s Stages) HiddenInputs(kernels int) int {
	return kernels * s.Conv2[0] * s.Conv2[1]
}

// DerivedDims returns the output size of each conv-pool stage: a valid convolution followed by
// pooling that drops incomplete regions. Rows are pooled by pool[0] and columns by pool[1]. An
// error wrapping cascade.ErrDimensionMismatch is returned if either stage has no output.
func DerivedDims(img int, kernels, pool [2]int) (Stages, error) {
	var s Stages
	if pool[0] < 1 || pool[1] < 1 {
		return s, errors.Wrapf(cs.ErrDimensionMismatch, "pooling size must be >= 1 (%v)", pool)
	}

	stage := func(in, k int) ([2]int, error) {
		c := in - k + 1
		out := [2]int{c / pool[0], c / pool[1]}
		if c < 1 || out[0] < 1 || out[1] < 1 {
			return out, errors.Wrapf(cs.ErrDimensionMismatch, "%dx%d kernel with %v pooling over %dx%d input leaves no output", k, k, pool, in, in)
		}

		return out, nil
	}

	var err error
	if s.Conv1, err = stage(img, kernels[0]); err != nil {
		return s, errors.Wrapf(err, "first stage")
	}

	// the second stage may be rectangular if the pooling is
	c := [2]int{s.Conv1[0] - kernels[1] + 1, s.Conv1[1] - kernels[1] + 1}
	s.Conv2 = [2]int{c[0] / pool[0], c[1] / pool[1]}
	if c[0] < 1 || c[1] < 1 || s.Conv2[0] < 1 || s.Conv2[1] < 1 {
		return s, errors.Wrapf(cs.ErrDimensionMismatch, "second stage: %dx%d kernel with %v pooling over %dx%d input leaves no output",
			kernels[1], kernels[1], pool, s.Conv1[0], s.Conv1[1])
	}

	return s, nil
}

// Assemble builds the detection Network for the recognition model: the two frozen conv-pool
// stages, a tanh hidden layer and the classifier. Hidden weights are drawn from Glorot
// initialization seeded with 'seed'; hidden biases and the whole output layer start at zero.
//
// The returned Network still has to be finalized. The recognition model is never modified.
// Filter shapes that do not agree with the model's metadata give an error wrapping
// cascade.ErrDimensionMismatch.
func Assemble(m *cs.RecognitionModel, head cs.HeadSizes, cls cs.Classifier, seed int64) (*Model, error) {
	if m == nil {
		return nil, errors.Errorf("Can't assemble detector, recognition model is nil")
	} else if cls == nil {
		return nil, errors.Errorf("Can't assemble detector, Classifier is nil")
	} else if head.Hidden < 1 || head.Output < 1 {
		return nil, errors.Errorf("Can't assemble detector, head sizes must be >= 1 (%+v)", head)
	}

	if err := m.Check(); err != nil {
		return nil, errors.Wrapf(err, "Can't assemble detector, bad recognition model\n")
	}

	stages, err := DerivedDims(m.ImageDim, m.KernelDims, m.PoolSize)
	if err != nil {
		return nil, errors.Wrapf(err, "Can't assemble detector\n")
	}

	rng := initializers.NewRNG(seed)

	net := new(cs.Network)
	net.AddInput(InputLayer, 1, m.ImageDim, m.ImageDim)
	net.Add(ConvPool1Layer, operators.ConvPool(m.Conv1W, m.Conv1B, m.PoolSize))
	net.Add(ConvPool2Layer, operators.ConvPool(m.Conv2W, m.Conv2B, m.PoolSize))
	net.Add(HiddenLayer, operators.Neurons(head.Hidden).WeightInit(initializers.Glorot(rng)))
	net.Add(HiddenTanhLayer, operators.Tanh())
	net.Add(OutputLayer, operators.Neurons(head.Output))
	net.Add(ClassifierLayer, cls)

	if err := net.Error(); err != nil {
		return nil, errors.Wrapf(err, "Can't assemble detector\n")
	}

	klog.V(2).InfoS("assembled detector", "conv1", stages.Conv1, "conv2", stages.Conv2,
		"hidden_inputs", stages.HiddenInputs(m.KernelCounts[1]), "hidden", head.Hidden,
		"output", head.Output, "classifier", cls.TypeString())

	return &Model{Net: net, Recognition: m, Head: head}, nil
}

// Checkpoint returns the Checkpoint of the Model in its current state. Tensors are shared with
// the Model, not copied.
func (m *Model) Checkpoint(datasetPath string) (*cs.Checkpoint, error) {
	hidden := m.Net.Layer(HiddenLayer).Params()
	output := m.Net.Layer(OutputLayer).Params()
	if len(hidden) != 2 || len(output) != 2 {
		return nil, errors.Errorf("Can't make checkpoint, head layers have unexpected parameters")
	}

	r := m.Recognition
	return &cs.Checkpoint{
		DatasetPath:  datasetPath,
		ImageDim:     r.ImageDim,
		KernelDims:   r.KernelDims,
		KernelCounts: r.KernelCounts,
		HeadSizes:    m.Head,
		PoolSize:     r.PoolSize,
		Conv1W:       r.Conv1W,
		Conv1B:       r.Conv1B,
		Conv2W:       r.Conv2W,
		Conv2B:       r.Conv2B,
		HiddenW:      hidden[0].Value,
		HiddenB:      hidden[1].Value,
		OutputW:      output[0].Value,
		OutputB:      output[1].Value,
	}, nil
}
