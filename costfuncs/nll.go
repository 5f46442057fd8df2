package costfuncs

import (
	cs "github.com/sharnoff/cascade"
)

type nll int8

// NLL returns the plain negative log-likelihood cost, which implements cascade.CostFunction.
// The cost of a minibatch is its mean negative log-likelihood, with no penalties.
func NLL() nll {
	return nll(0)
}

// NegativeLog is a proxy for NLL
func NegativeLog() nll {
	return NLL()
}

func (c nll) TypeString() string {
	return "nll"
}

func (c nll) Cost(mean float64, params []*cs.Param) float64 {
	return mean
}

func (c nll) Grad(p *cs.Param, index int, grad float64) float64 {
	return grad
}

type regularized struct {
	pen cs.Penalty
}

// Regularized returns the negative log-likelihood plus a Penalty on every weight (never on
// biases), which implements cascade.CostFunction. Regularized will panic if the Penalty is
// nil.
func Regularized(pen cs.Penalty) *regularized {
	if pen == nil {
		panic("Penalty is nil")
	}

	return &regularized{pen}
}

func (c *regularized) TypeString() string {
	return "nll+" + c.pen.TypeString()
}

// Penalty returns the Penalty of the cost function.
func (c *regularized) Penalty() cs.Penalty {
	return c.pen
}

func (c *regularized) Cost(mean float64, params []*cs.Param) float64 {
	cost := mean
	for _, p := range params {
		if p.Kind == cs.Weight {
			cost += c.pen.Cost(p.Values())
		}
	}

	return cost
}

func (c *regularized) Grad(p *cs.Param, index int, grad float64) float64 {
	if p.Kind != cs.Weight {
		return grad
	}

	return c.pen.Penalize(grad, p.Values()[index])
}
