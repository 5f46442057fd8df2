package penalties

import (
	"math"
	"testing"
)

func TestPenalties(t *testing.T) {
	ws := []float64{-2, 0, 3}

	cases := []struct {
		name  string
		cost  float64
		grads []float64 // Penalize(1, w) for each w
		p     interface {
			Cost([]float64) float64
			Penalize(float64, float64) float64
		}
	}{
		{"l1", 0.5 * 5, []float64{1 - 0.5, 1, 1 + 0.5}, L1(0.5)},
		{"l2", 0.5 * 13, []float64{1 - 2, 1, 1 + 3}, L2(0.5)},
		{"elastic-net", 0.1 * (0.75*13 + 0.25*5), []float64{
			1 + 0.1*(0.75*2*-2-0.25),
			1,
			1 + 0.1*(0.75*2*3+0.25),
		}, ElasticNet(0.25, 0.1)},
	}

	for _, c := range cases {
		if got := c.p.Cost(ws); math.Abs(got-c.cost) > 1e-12 {
			t.Errorf("%s: Cost = %v, want %v", c.name, got, c.cost)
		}

		for i, w := range ws {
			if got := c.p.Penalize(1, w); math.Abs(got-c.grads[i]) > 1e-12 {
				t.Errorf("%s: Penalize(1, %v) = %v, want %v", c.name, w, got, c.grads[i])
			}
		}
	}
}

func TestElasticNetLimits(t *testing.T) {
	ws := []float64{1.5, -0.25, 4}

	if a, b := ElasticNet(1, 0.3).Cost(ws), L1(0.3).Cost(ws); math.Abs(a-b) > 1e-12 {
		t.Errorf("elastic-net with α = 1 costs %v, L1 costs %v", a, b)
	}
	if a, b := ElasticNet(0, 0.3).Cost(ws), L2(0.3).Cost(ws); math.Abs(a-b) > 1e-12 {
		t.Errorf("elastic-net with α = 0 costs %v, L2 costs %v", a, b)
	}
}
