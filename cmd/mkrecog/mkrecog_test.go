package main

import (
	"math"
	"testing"
)

func TestBuild(t *testing.T) {
	m, err := build(28, [2]int{5, 5}, [2]int{20, 50}, [2]int{2, 2}, 23455)
	if err != nil {
		t.Fatal(err)
	}

	if err := m.Check(); err != nil {
		t.Fatal(err)
	}

	// fan in 25, fan out 20 * 25 / 4
	b := math.Sqrt(6 / (25 + 125.0))
	for _, v := range m.Conv1W.Float64s() {
		if math.Abs(v) > b {
			t.Fatalf("conv1 weight %v outside ±%v", v, b)
		}
	}
	for _, v := range m.Conv2B.Float64s() {
		if v != 0 {
			t.Fatalf("conv2 bias is %v, want 0", v)
		}
	}

	if _, err := build(8, [2]int{5, 5}, [2]int{20, 50}, [2]int{2, 2}, 1); err == nil {
		t.Error("expected error for images too small for the kernels")
	}
}
