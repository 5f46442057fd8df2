package cascade

import (
	"strings"

	"github.com/pkg/errors"
)

type status int8

const (
	initialized status = iota // 0
	finalized   status = iota // 1
)

// setError sets the Network's stored error to the error provided. If net.panicErrors is true,
// setError will additionally panic the error it is given.
func (net *Network) setError(e error) {
	net.err = e
	if net.panicErrors {
		panic(e)
	}
}

// PanicErrors sets the Network to panic on errors during construction, instead of only storing
// them to be returned by Error().
func (net *Network) PanicErrors() *Network {
	net.panicErrors = true
	return net
}

func (net *Network) checkName(name string) error {
	if name == "" {
		return errors.Errorf(`Name cannot be ""`)
	} else if strings.Contains(name, `"`) {
		return errors.Errorf(`Name %s contains illegal character: "`, name)
	} else if net.Layer(name) != nil {
		return errors.Errorf("Name %q is already taken", name)
	}

	return nil
}

// AddInput adds the input Layer to the Network, with the given dimensions. It must be the first
// Layer added. If AddInput fails, it will return nil and store the error, which can be retrieved
// through Error().
func (net *Network) AddInput(name string, dims ...int) *Layer {
	if net.err != nil {
		return nil
	} else if len(net.layers) != 0 {
		net.setError(errors.Errorf("Can't add input %q, Network already has an input", name))
		return nil
	} else if err := net.checkName(name); err != nil {
		net.setError(errors.Wrapf(err, "Can't add input Layer\n"))
		return nil
	}

	size, err := sizeOf(dims)
	if err != nil {
		net.setError(errors.Wrapf(err, "Can't add input %q\n", name))
		return nil
	}

	l := &Layer{
		name:   name,
		host:   net,
		dims:   append([]int(nil), dims...),
		values: make([]float64, size),
	}

	net.layers = append(net.layers, l)
	return l
}

// Add appends a new Layer with the given Operator to the end of the Network. Its dimensions are
// determined by the Operator from the current last Layer. If Add fails, it will return nil and
// store the error, which can be retrieved through Error(). Once an error has been stored, Add
// does nothing.
func (net *Network) Add(name string, op Operator) *Layer {
	if net.err != nil {
		return nil
	}

	l, err := net.add(name, op)
	if err != nil {
		net.setError(errors.Wrapf(err, "Can't add Layer %q\n", name))
		return nil
	}

	return l
}

func (net *Network) add(name string, op Operator) (*Layer, error) {
	if net.stat >= finalized {
		return nil, ErrNetFinalized
	} else if len(net.layers) == 0 {
		return nil, errors.Errorf("Network has no input Layer")
	} else if op == nil {
		return nil, NilArgError{"Operator"}
	} else if err := net.checkName(name); err != nil {
		return nil, err
	}

	l := &Layer{
		name:  name,
		id:    len(net.layers),
		host:  net,
		input: net.layers[len(net.layers)-1],
		op:    op,
	}

	dims, err := op.OutputShape(l)
	if err != nil {
		return nil, errors.Wrapf(err, "Getting output shape of %s failed\n", op.TypeString())
	}

	size, err := sizeOf(dims)
	if err != nil {
		return nil, errors.Wrapf(err, "Bad output shape from %s\n", op.TypeString())
	}

	l.dims = append([]int(nil), dims...)
	l.values = make([]float64, size)

	if err := op.Init(l); err != nil {
		return nil, errors.Wrapf(err, "Initializing Operator failed\n")
	}

	if adj, ok := op.(Adjustable); ok {
		l.adj = adj
	}

	net.layers = append(net.layers, l)
	return l, nil
}

func sizeOf(dims []int) (int, error) {
	if len(dims) == 0 {
		return 0, errors.Errorf("No dimensions given")
	}

	size := 1
	for i, d := range dims {
		if d < 1 {
			return 0, errors.Wrapf(ErrDimensionMismatch, "Dimension %d is %d, must be >= 1", i, d)
		}
		size *= d
	}

	return size, nil
}

// Finalize finishes the structure of the Network. The final Layer must have a Classifier as its
// Operator. After Finalize returns successfully, no more Layers may be added.
//
// If an error is returned, the Network has remained unchanged.
func (net *Network) Finalize(cf CostFunction, opt Optimizer, learningRate HyperParameter) error {
	if net.err != nil {
		return errors.Wrapf(net.err, "Can't finalize Network, construction failed\n")
	} else if net.stat >= finalized {
		return ErrNetFinalized
	} else if len(net.layers) < 2 {
		return errors.Errorf("Can't finalize Network, need at least one Layer after the input (have %d Layers)", len(net.layers))
	} else if cf == nil {
		return NilArgError{"CostFunction"}
	} else if opt == nil {
		return NilArgError{"Optimizer"}
	} else if learningRate == nil {
		return NilArgError{"HyperParameter"}
	}

	out := net.layers[len(net.layers)-1]
	cls, ok := out.op.(Classifier)
	if !ok {
		return errors.Wrapf(ErrNotClassifier, "Can't finalize Network, Operator of %v is %s", out, out.op.TypeString())
	}

	net.needDeltas = make([]bool, len(net.layers))
	adjustable := false
	for i, l := range net.layers {
		adjustable = adjustable || l.adj != nil
		net.needDeltas[i] = adjustable

		if adjustable {
			l.deltas = make([]float64, len(l.values))
		}
	}

	net.cf = cf
	net.opt = opt
	net.lr = learningRate
	net.cls = cls
	net.stat = finalized
	return nil
}
