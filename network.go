package cascade

// Layers returns the list of all Layers in the Network, sorted by ID such that Layers()[n] has
// id=n. The slice that Layers returns is a copy; it can be modified freely but will not update
// if more Layers are added to the Network.
func (net *Network) Layers() []*Layer {
	return append([]*Layer(nil), net.layers...)
}

// Layer returns the Layer with the given name, or nil if there is none.
func (net *Network) Layer(name string) *Layer {
	for _, l := range net.layers {
		if l.name == name {
			return l
		}
	}

	return nil
}

// Input returns the input Layer of the Network, or nil if it has not been added.
func (net *Network) Input() *Layer {
	if len(net.layers) == 0 {
		return nil
	}

	return net.layers[0]
}

// Output returns the final Layer of the Network, or nil if there are no Layers.
func (net *Network) Output() *Layer {
	if len(net.layers) == 0 {
		return nil
	}

	return net.layers[len(net.layers)-1]
}

// Classifier returns the Classifier of the Network's final Layer. It is nil until the Network
// has been finalized.
func (net *Network) Classifier() Classifier {
	return net.cls
}

// Trainable returns every trainable parameter in the Network, in Layer order. Only Adjustable
// Operators contribute Params.
func (net *Network) Trainable() []*Param {
	var ps []*Param
	for _, l := range net.layers {
		ps = append(ps, l.Params()...)
	}

	return ps
}

// InputSize returns the total number of expected input values to the Network. If the Network has
// not been finalized yet, InputSize will return -1.
func (net *Network) InputSize() int {
	if net.stat < finalized {
		return -1
	}

	return net.layers[0].Size()
}

// OutputSize returns the total number of output values of the Network. If the Network has not
// been finalized yet, OutputSize will return -1.
func (net *Network) OutputSize() int {
	if net.stat < finalized {
		return -1
	}

	return net.Output().Size()
}

// LearningRate returns the learning rate at the given iteration. It returns 0 if the Network has
// not been finalized.
func (net *Network) LearningRate(iter int) float64 {
	if net.stat < finalized {
		return 0
	}

	return net.lr.Value(iter)
}

// GetOutputs returns a copy of the Network's output values for the given inputs. There are
// several error conditions:
//
//	(0) If the Network has not been finalized: ErrNetNotFinalized,
//	(1) If the number of inputs doesn't match the total size: type SizeMismatchError,
//
// If PanicErrors() has been called, error conditions will be panicked, not returned.
func (net *Network) GetOutputs(inputs []float64) ([]float64, error) {
	if err := net.evaluate(inputs); err != nil {
		if net.panicErrors {
			panic(err)
		}

		return nil, err
	}

	return append([]float64(nil), net.Output().values...), nil
}

// Error returns any errors encountered while constructing the Network. It is nil if every Layer
// was added successfully.
func (net *Network) Error() error {
	return net.err
}
