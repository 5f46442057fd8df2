package cascade_test

import (
	"math"
	"testing"

	"github.com/pkg/errors"
	"gorgonia.org/tensor"

	cs "github.com/sharnoff/cascade"
	"github.com/sharnoff/cascade/costfuncs"
	"github.com/sharnoff/cascade/hyperparams"
	"github.com/sharnoff/cascade/initializers"
	"github.com/sharnoff/cascade/operators"
	"github.com/sharnoff/cascade/optimizers"
)

// recorder is an Optimizer that stores the gradients it is given without changing anything
type recorder struct {
	grads [][]float64
}

func (r *recorder) TypeString() string {
	return "recorder"
}

func (r *recorder) Run(size int, grad func(int) float64, add func(int, float64), learningRate float64) error {
	g := make([]float64, size)
	for i := range g {
		g[i] = grad(i)
	}

	r.grads = append(r.grads, g)
	return nil
}

func head(in, hidden, out int, cls cs.Classifier, seed int64) *cs.Network {
	rng := initializers.NewRNG(seed)

	net := new(cs.Network)
	net.AddInput("in", in)
	net.Add("hidden", operators.Neurons(hidden).WeightInit(initializers.Glorot(rng)))
	net.Add("hidden-tanh", operators.Tanh())
	net.Add("output", operators.Neurons(out).WeightInit(initializers.Glorot(rng)).BiasInit(initializers.Constant(0.1)))
	net.Add("cls", cls)
	return net
}

func TestFinalizeRequiresClassifier(t *testing.T) {
	net := new(cs.Network)
	net.AddInput("in", 3)
	net.Add("out", operators.Neurons(2))

	err := net.Finalize(costfuncs.NLL(), optimizers.SGD(), hyperparams.Constant(0.1))
	if errors.Cause(err) != cs.ErrNotClassifier {
		t.Fatalf("Finalize gave %v, want %v", err, cs.ErrNotClassifier)
	}

	if _, err := net.GetOutputs([]float64{1, 2, 3}); err != cs.ErrNetNotFinalized {
		t.Errorf("GetOutputs gave %v, want %v", err, cs.ErrNetNotFinalized)
	}
}

func TestAddStoresFirstError(t *testing.T) {
	net := new(cs.Network)
	net.AddInput("in", 3)
	if l := net.Add("in", operators.Tanh()); l != nil {
		t.Fatal("added a Layer with a duplicate name")
	}

	first := net.Error()
	if first == nil {
		t.Fatal("no error stored")
	}

	if l := net.Add("other", operators.Tanh()); l != nil {
		t.Error("Add succeeded after an error")
	}
	if net.Error() != first {
		t.Errorf("stored error changed to %v", net.Error())
	}

	err := net.Finalize(costfuncs.NLL(), optimizers.SGD(), hyperparams.Constant(0.1))
	if err == nil {
		t.Error("Finalize succeeded after an error")
	}
}

func TestStepUpdate(t *testing.T) {
	net := new(cs.Network)
	net.AddInput("in", 1)
	out := net.Add("out", operators.Neurons(1))
	net.Add("cls", operators.Logistic())
	if err := net.Finalize(costfuncs.NLL(), optimizers.SGD(), hyperparams.Constant(0.1)); err != nil {
		t.Fatal(err)
	}

	cost, err := net.Step(cs.Batch{Inputs: []float64{2}, Labels: []int{1}, Size: 1}, 0)
	if err != nil {
		t.Fatal(err)
	}

	if math.Abs(cost-math.Ln2) > 1e-12 {
		t.Errorf("cost = %v, want ln 2", cost)
	}

	// the output is 0.5, so the delta is -0.5 and the weight gradient is 2 * -0.5
	ps := out.Params()
	if w := ps[0].Values()[0]; math.Abs(w-0.1) > 1e-12 {
		t.Errorf("weight = %v, want 0.1", w)
	}
	if b := ps[1].Values()[0]; math.Abs(b-0.05) > 1e-12 {
		t.Errorf("bias = %v, want 0.05", b)
	}
}

func TestStepGradients(t *testing.T) {
	cases := []struct {
		name   string
		cls    cs.Classifier
		out    int
		labels []int
	}{
		{"softmax", operators.Softmax(), 3, []int{2, 0}},
		{"logistic", operators.Logistic(), 3, []int{1, 0, 1, 0, 0, 1}},
		{"logistic-index", operators.Logistic(), 3, []int{1, 2}},
	}

	for _, c := range cases {
		net := head(4, 5, c.out, c.cls, 7)
		rec := new(recorder)
		if err := net.Finalize(costfuncs.NLL(), rec, hyperparams.Constant(1)); err != nil {
			t.Fatalf("%s: %v", c.name, err)
		}

		b := cs.Batch{
			Inputs: []float64{0.5, -1, 0.25, 2, -0.75, 0.3, 1.5, -0.2},
			Labels: c.labels,
			Size:   2,
		}

		if _, err := net.Step(b, 0); err != nil {
			t.Fatalf("%s: %v", c.name, err)
		}

		params := net.Trainable()
		if len(rec.grads) != len(params) {
			t.Fatalf("%s: optimizer ran %d times for %d params", c.name, len(rec.grads), len(params))
		}

		const h = 1e-6
		for pi, p := range params {
			vs := p.Values()
			for i := range vs {
				orig := vs[i]

				vs[i] = orig + h
				plus, err := net.NLL(b)
				if err != nil {
					t.Fatal(err)
				}

				vs[i] = orig - h
				minus, _ := net.NLL(b)
				vs[i] = orig

				numeric := (plus - minus) / (2 * h)
				if got := rec.grads[pi][i]; math.Abs(got-numeric) > 1e-6 {
					t.Errorf("%s: %s[%d] gradient = %v, numerically %v", c.name, p.Name, i, got, numeric)
				}
			}
		}
	}
}

func TestStepLearnsSeparableData(t *testing.T) {
	net := head(2, 8, 2, operators.Softmax(), 23455)
	if err := net.Finalize(costfuncs.NLL(), optimizers.SGD(), hyperparams.Constant(0.5)); err != nil {
		t.Fatal(err)
	}

	b := cs.Batch{
		Inputs: []float64{1, 0, 0, 1, 2, 0.5, 0.5, 2},
		Labels: []int{0, 1, 0, 1},
		Size:   4,
	}

	before, err := net.NLL(b)
	if err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 500; i++ {
		if _, err := net.Step(b, i); err != nil {
			t.Fatal(err)
		}
	}

	after, _ := net.NLL(b)
	if !(after < before) || after > 0.2 {
		t.Errorf("NLL went from %v to %v", before, after)
	}

	if e, err := net.Errors(b); err != nil || e != 0 {
		t.Errorf("Errors() = %v, %v, want 0", e, err)
	}
}

func TestStepLeavesFrozenLayers(t *testing.T) {
	wBacking := []float64{1, 0, 0, -1, 0.5, 0.5, 0.5, 0.5}
	w := tensor.New(tensor.WithShape(2, 1, 2, 2), tensor.WithBacking(wBacking))
	b := tensor.New(tensor.WithShape(2), tensor.WithBacking([]float64{0.1, -0.1}))

	wantW := append([]float64(nil), wBacking...)
	wantB := append([]float64(nil), b.Float64s()...)

	net := new(cs.Network)
	net.AddInput("in", 1, 4, 4)
	conv := net.Add("conv", operators.ConvPool(w, b, [2]int{1, 1}))
	net.Add("out", operators.Neurons(2))
	net.Add("cls", operators.Softmax())
	if err := net.Finalize(costfuncs.NLL(), optimizers.SGD(), hyperparams.Constant(0.5)); err != nil {
		t.Fatal(err)
	}

	if n := len(net.Trainable()); n != 2 {
		t.Fatalf("%d trainable params, want 2", n)
	}
	if conv.Deltas() != nil {
		t.Error("frozen Layer has deltas")
	}

	inputs := make([]float64, 32)
	for i := range inputs {
		inputs[i] = float64(i%7) / 7
	}

	for i := 0; i < 10; i++ {
		if _, err := net.Step(cs.Batch{Inputs: inputs, Labels: []int{0, 1}, Size: 2}, i); err != nil {
			t.Fatal(err)
		}
	}

	for i, v := range w.Float64s() {
		if v != wantW[i] {
			t.Fatalf("conv weight %d changed from %v to %v", i, wantW[i], v)
		}
	}
	for i, v := range b.Float64s() {
		if v != wantB[i] {
			t.Fatalf("conv bias %d changed from %v to %v", i, wantB[i], v)
		}
	}
}

func TestStepBadBatch(t *testing.T) {
	net := head(2, 3, 2, operators.Softmax(), 1)
	if err := net.Finalize(costfuncs.NLL(), optimizers.SGD(), hyperparams.Constant(0.1)); err != nil {
		t.Fatal(err)
	}

	cases := []cs.Batch{
		{},
		{Inputs: []float64{1, 2, 3}, Labels: []int{0, 1}, Size: 2},
		{Inputs: []float64{1, 2}, Labels: []int{5}, Size: 1},
	}

	for i, b := range cases {
		if _, err := net.Step(b, 0); err == nil {
			t.Errorf("case %d: expected error", i)
		}
	}
}
