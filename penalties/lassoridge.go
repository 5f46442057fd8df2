package penalties

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// **********************************************
// L1 (Lasso)
// **********************************************

type l1 float64

// λ is a small value close to 0 where λ > 0
func L1(λ float64) *l1 {
	p := l1(λ)
	return &p
}

// λ is a small value close to 0 where λ > 0
func Lasso(λ float64) *l1 {
	return L1(λ)
}

func (p *l1) TypeString() string {
	return "l1"
}

// Cost returns λ * Σ|w|
func (p *l1) Cost(ws []float64) float64 {
	return float64(*p) * floats.Norm(ws, 1)
}

func (p *l1) Penalize(grad, w float64) float64 {
	λ := float64(*p)
	return grad + λ*sign(w)
}

// sign is math.Copysign(1, w), except that it is zero at zero
func sign(w float64) float64 {
	if w == 0 {
		return 0
	}

	return math.Copysign(1, w)
}

// **********************************************
// L2 (Ridge)
// **********************************************

type l2 float64

// λ is a small value close to 0 where λ > 0
func L2(λ float64) *l2 {
	p := l2(λ)
	return &p
}

// λ is a small value close to 0 where λ > 0
func Ridge(λ float64) *l2 {
	return L2(λ)
}

func (p *l2) TypeString() string {
	return "l2"
}

// Cost returns λ * Σw²
func (p *l2) Cost(ws []float64) float64 {
	return float64(*p) * floats.Dot(ws, ws)
}

func (p *l2) Penalize(grad, w float64) float64 {
	λ := float64(*p)
	return grad + 2*λ*w
}
