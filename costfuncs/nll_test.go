package costfuncs

import (
	"testing"

	cs "github.com/sharnoff/cascade"
	"github.com/sharnoff/cascade/penalties"
)

func params() []*cs.Param {
	w := cs.NewParam("W", cs.Weight, 2)
	copy(w.Values(), []float64{1, -2})

	b := cs.NewParam("b", cs.Bias, 2)
	copy(b.Values(), []float64{10, 10})

	return []*cs.Param{w, b}
}

func TestNLL(t *testing.T) {
	ps := params()
	c := NLL()

	if got := c.Cost(0.75, ps); got != 0.75 {
		t.Errorf("Cost = %v, want 0.75", got)
	}
	if got := c.Grad(ps[0], 1, 0.3); got != 0.3 {
		t.Errorf("Grad = %v, want 0.3", got)
	}
}

func TestRegularizedOnlyWeights(t *testing.T) {
	ps := params()
	c := Regularized(penalties.L2(0.5))

	if c.TypeString() != "nll+l2" {
		t.Errorf("TypeString = %q", c.TypeString())
	}

	// 0.5 * (1 + 4); the biases are not penalized
	if got := c.Cost(1, ps); got != 3.5 {
		t.Errorf("Cost = %v, want 3.5", got)
	}

	if got := c.Grad(ps[0], 1, 0.25); got != 0.25+2*0.5*-2 {
		t.Errorf("weight Grad = %v, want %v", got, 0.25+2*0.5*-2)
	}
	if got := c.Grad(ps[1], 0, 0.25); got != 0.25 {
		t.Errorf("bias Grad = %v, want 0.25", got)
	}
}

func TestRegularizedNilPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Regularized(nil) did not panic")
		}
	}()

	Regularized(nil)
}
