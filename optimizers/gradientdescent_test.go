package optimizers

import "testing"

func TestGradientDescent(t *testing.T) {
	ws := []float64{1, -1, 0.5}
	gs := []float64{0.5, -2, 0}

	err := SGD().Run(len(ws), func(i int) float64 {
		return gs[i]
	}, func(i int, d float64) {
		ws[i] += d
	}, 0.1)
	if err != nil {
		t.Fatal(err)
	}

	want := []float64{0.95, -0.8, 0.5}
	for i := range ws {
		if d := ws[i] - want[i]; d > 1e-12 || d < -1e-12 {
			t.Errorf("value %d = %v, want %v", i, ws[i], want[i])
		}
	}
}
