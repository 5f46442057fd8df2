package hyperparams

import (
	"sort"
)

type step struct {
	Iter int
	Val  float64
}

type stepper []step

// Step returns a piecewise-constant HyperParameter, starting at 'base'. More steps can be added
// with Add.
func Step(base float64) *stepper {
	s := stepper{{0, base}}
	return &s
}

// Add adds a step to the HyperParameter: from iteration 'iter' onwards, its value is 'value'
// (until the next step). Steps may be added in any order.
func (s *stepper) Add(iter int, value float64) *stepper {
	*s = append(*s, step{iter, value})
	sort.SliceStable(*s, func(i, j int) bool {
		return (*s)[i].Iter < (*s)[j].Iter
	})
	return s
}

func (s *stepper) TypeString() string {
	return "step"
}

func (s *stepper) Value(iter int) float64 {
	sl := []step(*s)
	for i := 1; i < len(sl); i++ {
		if sl[i].Iter > iter {
			return sl[i-1].Val
		}
	}

	return sl[len(sl)-1].Val
}
