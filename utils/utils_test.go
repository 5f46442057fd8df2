package utils

import (
	"sync"
	"testing"
)

func TestMultiDimIndexPoint(t *testing.T) {
	m := NewMultiDim([]int{4, 3, 2})
	if m.Size() != 24 {
		t.Fatalf("Size() = %d, want 24", m.Size())
	}

	for i := 0; i < m.Size(); i++ {
		p := m.Point(i)
		if got := m.Index(p); got != i {
			t.Errorf("Index(Point(%d)) = %d (point %v)", i, got, p)
		}
	}

	if got := m.Index([]int{1, 2, 1}); got != 1+2*4+1*12 {
		t.Errorf("Index([1 2 1]) = %d, want %d", got, 1+2*4+1*12)
	}
}

func TestMultiDimIncrement(t *testing.T) {
	m := NewMultiDim([]int{2, 2})
	p := []int{0, 0}

	var visited int
	for ok := true; ok; ok = m.Increment(p) {
		visited++
	}

	if visited != 4 {
		t.Errorf("visited %d points, want 4", visited)
	}
}

func TestMultiThreadCoversRange(t *testing.T) {
	cases := []struct {
		start, end, ops, threads int
	}{
		{0, 0, 1, 1},
		{0, 1, 1, 1},
		{3, 100, 1, 1},
		{0, 1000, 7, 2},
		{10, 11, 64, 4},
	}

	for _, c := range cases {
		var mux sync.Mutex
		seen := make(map[int]int)

		MultiThread(c.start, c.end, func(i int) {
			mux.Lock()
			seen[i]++
			mux.Unlock()
		}, c.ops, c.threads)

		if len(seen) != c.end-c.start {
			t.Errorf("MultiThread(%d, %d): visited %d indexes, want %d", c.start, c.end, len(seen), c.end-c.start)
		}
		for i, n := range seen {
			if i < c.start || i >= c.end {
				t.Errorf("MultiThread(%d, %d): index %d out of range", c.start, c.end, i)
			}
			if n != 1 {
				t.Errorf("MultiThread(%d, %d): index %d visited %d times", c.start, c.end, i, n)
			}
		}
	}
}
