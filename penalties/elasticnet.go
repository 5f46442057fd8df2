package penalties

import (
	"gonum.org/v1/gonum/floats"
)

type elasticNet struct {
	α float64
	λ float64
}

// λ is a small value close to 0 where λ > 0,
// α is a value that controls the ratio between L1 and L2
// Regularization, where 0 ≤ α ≤ 1. α = 1 is functionally identical to L1 and α = 0 is equivalent to
// L2.
func ElasticNet(α, λ float64) *elasticNet {
	return &elasticNet{α, λ}
}

func (p *elasticNet) TypeString() string {
	return "elastic-net"
}

// Cost returns λ * ((1-α) Σw² + α Σ|w|)
func (p *elasticNet) Cost(ws []float64) float64 {
	return p.λ * ((1-p.α)*floats.Dot(ws, ws) + p.α*floats.Norm(ws, 1))
}

func (p *elasticNet) Penalize(grad, w float64) float64 {
	return grad + p.λ*((1-p.α)*2*w+p.α*sign(w))
}
