package records

import (
	"bytes"
	"io"
	"testing"

	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

func TestRoundTrip(t *testing.T) {
	weights := tensor.New(tensor.WithShape(2, 1, 2, 2), tensor.WithBacking([]float64{
		0.5, -1, 2.25, 3,
		-0.125, 7, 1e-9, -4,
	}))
	bias := tensor.New(tensor.WithShape(2), tensor.WithBacking([]float64{0.1, -0.2}))
	labels := tensor.New(tensor.WithShape(3), tensor.WithBacking([]int32{0, 3, 1}))

	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.String("data/faces.rec")
	w.Int(28)
	w.Int(-5)
	w.Pair([2]int{5, 3})
	w.None()
	w.Tensor(weights)
	w.Tensor(bias)
	w.Tensor(labels)
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	r := NewReader(&buf)

	if s, err := r.String(); err != nil || s != "data/faces.rec" {
		t.Fatalf("String() = %q, %v", s, err)
	}
	if v, err := r.Int(); err != nil || v != 28 {
		t.Fatalf("Int() = %d, %v", v, err)
	}
	if v, err := r.Int(); err != nil || v != -5 {
		t.Fatalf("Int() = %d, %v", v, err)
	}
	if p, err := r.Pair(); err != nil || p != [2]int{5, 3} {
		t.Fatalf("Pair() = %v, %v", p, err)
	}
	if err := r.None(); err != nil {
		t.Fatalf("None(): %v", err)
	}

	got, err := r.Tensor()
	if err != nil {
		t.Fatalf("Tensor(): %v", err)
	}
	if !got.Shape().Eq(weights.Shape()) {
		t.Errorf("weights shape = %v, want %v", got.Shape(), weights.Shape())
	}
	want := weights.Float64s()
	for i, v := range got.Float64s() {
		if v != want[i] {
			t.Errorf("weights[%d] = %v, want %v", i, v, want[i])
		}
	}

	got, err = r.Tensor()
	if err != nil {
		t.Fatalf("Tensor(): %v", err)
	}
	if got.Shape()[0] != 2 || got.Float64s()[1] != -0.2 {
		t.Errorf("bias = %v %v", got.Shape(), got.Float64s())
	}

	got, err = r.Tensor()
	if err != nil {
		t.Fatalf("Tensor(): %v", err)
	}
	if ints := got.Int32s(); len(ints) != 3 || ints[1] != 3 {
		t.Errorf("labels = %v", ints)
	}

	if r.Field() != 8 {
		t.Errorf("Field() = %d, want 8", r.Field())
	}

	if _, err = r.Int(); errors.Cause(err) != io.ErrUnexpectedEOF {
		t.Errorf("reading past the end: got %v, want unexpected EOF", err)
	}
}

func TestSkip(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.String("ignored")
	w.Tensor(tensor.New(tensor.WithShape(3), tensor.WithBacking([]float64{1, 2, 3})))
	w.None()
	w.Pair([2]int{1, 2})
	w.Int(7)
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}

	r := NewReader(&buf)
	for i := 0; i < 4; i++ {
		if err := r.Skip(); err != nil {
			t.Fatalf("Skip() #%d: %v", i, err)
		}
	}

	if v, err := r.Int(); err != nil || v != 7 {
		t.Errorf("Int() after skipping = %d, %v", v, err)
	}
}

func TestKindMismatch(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.Int(3)
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}

	_, err := NewReader(&buf).String()
	kerr, ok := err.(KindError)
	if !ok {
		t.Fatalf("got %T (%v), want KindError", err, err)
	}
	if kerr.Expected != String || kerr.Got != Int || kerr.Field != 0 {
		t.Errorf("unexpected KindError %+v", kerr)
	}
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestWriterErrorIsSticky(t *testing.T) {
	w := NewWriter(failingWriter{})
	w.String("abc")
	w.Int(1)

	if err := w.Flush(); err == nil {
		t.Fatal("Flush() returned nil for a failing writer")
	}

	w.Int(2)
	if err := w.Flush(); err == nil {
		t.Error("error was not sticky")
	}
}

func TestNilTensor(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	w.Tensor(nil)
	if err := w.Flush(); err == nil {
		t.Error("writing a nil tensor should fail")
	}
}
