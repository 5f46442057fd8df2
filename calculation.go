package cascade

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// evaluate sets the values of every Layer to reflect the given inputs
func (net *Network) evaluate(inputs []float64) error {
	if net.stat < finalized {
		return ErrNetNotFinalized
	} else if len(inputs) != net.layers[0].Size() {
		return SizeMismatchError{net.layers[0].Size(), len(inputs), "inputs"}
	}

	copy(net.layers[0].values, inputs)
	for _, l := range net.layers[1:] {
		l.op.Evaluate(l, l.values)
	}

	return nil
}

// backpropagate passes the deltas of the final Layer's input back through the Network, adding
// to the gradients of every Adjustable Layer along the way. Layers whose deltas are not needed
// are never visited.
func (net *Network) backpropagate() {
	// the Classifier's own deltas are never used; its input's are set directly
	for i := len(net.layers) - 2; i >= 1 && net.needDeltas[i]; i-- {
		l := net.layers[i]
		if l.adj != nil {
			l.adj.AddGrads(l)
		}

		if !net.needDeltas[i-1] {
			break
		}

		in := net.layers[i-1].deltas
		clear(in)
		l.op.InputDeltas(l, func(index int, d float64) {
			in[index] += d
		})
	}
}

func (net *Network) checkBatch(b Batch) error {
	if net.stat < finalized {
		return ErrNetNotFinalized
	} else if b.Size < 1 {
		return errors.Errorf("Batch is empty")
	} else if len(b.Inputs) != b.Size*net.InputSize() {
		return SizeMismatchError{b.Size * net.InputSize(), len(b.Inputs), "batch inputs"}
	} else if len(b.Labels) == 0 || len(b.Labels)%b.Size != 0 {
		return errors.Errorf("Batch has %d labels for %d samples", len(b.Labels), b.Size)
	}

	return nil
}

// Step performs one minibatch of gradient descent. For every sample the Network is evaluated,
// the Classifier's deltas (outputs - targets) are passed back through the trainable Layers, and
// the resulting gradients are averaged over the minibatch. The CostFunction then folds in any
// penalties, and the Optimizer applies the gradients to each Param with the learning rate at
// 'iter'.
//
// Step returns the cost of the minibatch before the update. NaNs and Infs are not detected.
func (net *Network) Step(b Batch, iter int) (float64, error) {
	if err := net.checkBatch(b); err != nil {
		return 0, errors.Wrapf(err, "Can't run training step %d\n", iter)
	}

	params := net.Trainable()
	for _, p := range params {
		clear(p.Grad)
	}

	out := net.Output()
	logits := net.layers[len(net.layers)-2]
	inSize := net.InputSize()

	var nll float64
	for s := 0; s < b.Size; s++ {
		inputs, labels := b.Sample(s, inSize)
		if err := net.evaluate(inputs); err != nil {
			return 0, errors.Wrapf(err, "Evaluating sample %d failed on step %d\n", s, iter)
		}

		targets, err := net.cls.Targets(labels, out.Size())
		if err != nil {
			return 0, errors.Wrapf(err, "Bad labels for sample %d on step %d\n", s, iter)
		}

		nll += net.cls.NLL(out.values, targets)

		if logits.deltas != nil {
			floats.SubTo(logits.deltas, out.values, targets)
			net.backpropagate()
		}
	}

	scale := 1 / float64(b.Size)
	nll *= scale
	for _, p := range params {
		floats.Scale(scale, p.Grad)
	}

	cost := net.cf.Cost(nll, params)
	lr := net.lr.Value(iter)

	for _, p := range params {
		p := p
		ws := p.Values()

		grad := func(i int) float64 {
			return net.cf.Grad(p, i, p.Grad[i])
		}

		add := func(i int, addend float64) {
			ws[i] += addend
		}

		if err := net.opt.Run(len(ws), grad, add, lr); err != nil {
			return 0, errors.Wrapf(err, "Running optimizer on %s failed on step %d\n", p.Name, iter)
		}
	}

	return cost, nil
}

// Errors returns the mean zero-one error of the Network on the given minibatch, as decided by its
// Classifier. It does not change any parameters.
func (net *Network) Errors(b Batch) (float64, error) {
	if err := net.checkBatch(b); err != nil {
		return 0, errors.Wrapf(err, "Can't get errors of batch\n")
	}

	inSize := net.InputSize()
	wrong := make([]float64, b.Size)
	for s := range wrong {
		inputs, labels := b.Sample(s, inSize)
		if err := net.evaluate(inputs); err != nil {
			return 0, errors.Wrapf(err, "Evaluating sample %d failed\n", s)
		}

		if !net.cls.Correct(net.Output().values, labels) {
			wrong[s] = 1
		}
	}

	return stat.Mean(wrong, nil), nil
}

// NLL returns the mean negative log-likelihood of the Network on the given minibatch, without
// any penalties. It does not change any parameters.
func (net *Network) NLL(b Batch) (float64, error) {
	if err := net.checkBatch(b); err != nil {
		return 0, errors.Wrapf(err, "Can't get NLL of batch\n")
	}

	inSize := net.InputSize()
	costs := make([]float64, b.Size)
	for s := range costs {
		inputs, labels := b.Sample(s, inSize)
		if err := net.evaluate(inputs); err != nil {
			return 0, errors.Wrapf(err, "Evaluating sample %d failed\n", s)
		}

		targets, err := net.cls.Targets(labels, net.OutputSize())
		if err != nil {
			return 0, errors.Wrapf(err, "Bad labels for sample %d\n", s)
		}

		costs[s] = net.cls.NLL(net.Output().values, targets)
	}

	return stat.Mean(costs, nil), nil
}
