package cascade

import "testing"

func TestCorrect(t *testing.T) {
	cases := []struct {
		outs           []float64
		labels         []int
		round, highest bool
	}{
		{[]float64{0.1, 0.9}, []int{0, 1}, true, false},
		{[]float64{0.1, 0.9}, []int{1}, false, true},
		{[]float64{0.6, 0.6}, []int{0}, false, true},
		{[]float64{0.6, 0.6}, []int{1}, false, false},
		{[]float64{0.4, 0.2, 0.7}, []int{0, 0, 1}, true, false},
	}

	for i, c := range cases {
		if len(c.outs) == len(c.labels) {
			if got := CorrectRound(c.outs, c.labels); got != c.round {
				t.Errorf("case %d: CorrectRound = %v, want %v", i, got, c.round)
			}
		}
		if got := CorrectHighest(c.outs, c.labels); got != c.highest {
			t.Errorf("case %d: CorrectHighest = %v, want %v", i, got, c.highest)
		}
	}
}

func TestOneHot(t *testing.T) {
	if ts := OneHot(2, 4); len(ts) != 4 || ts[2] != 1 || ts[0]+ts[1]+ts[3] != 0 {
		t.Errorf("OneHot(2, 4) = %v", ts)
	}

	for _, c := range []int{-1, 4} {
		if ts := OneHot(c, 4); ts != nil {
			t.Errorf("OneHot(%d, 4) = %v, want nil", c, ts)
		}
	}
}
