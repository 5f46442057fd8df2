package cascade

import (
	"math"
	"testing"

	"github.com/pkg/errors"
)

// fakeLearner returns validation errors from a list, in order, repeating the last one
type fakeLearner struct {
	valid []float64
	test  float64

	trained     []int
	validations int
	tests       int
}

func (l *fakeLearner) TrainBatch(index, iteration int) (float64, error) {
	l.trained = append(l.trained, iteration)
	return 1, nil
}

func (l *fakeLearner) ValidationError() (float64, error) {
	i := l.validations
	if i >= len(l.valid) {
		i = len(l.valid) - 1
	}

	l.validations++
	return l.valid[i], nil
}

func (l *fakeLearner) TestError() (float64, error) {
	l.tests++
	return l.test, nil
}

func TestLoopExhaustsEpochs(t *testing.T) {
	l := &fakeLearner{valid: []float64{0.5}, test: 0.25}
	out, err := Loop(l, BatchCounts{5, 1, 1}, 1, DefaultEarlyStopping(), nil)
	if err != nil {
		t.Fatal(err)
	}

	if out.Reason != StoppedByExhaustion {
		t.Errorf("stopped by %v, want %v", out.Reason, StoppedByExhaustion)
	}
	if out.State.Epoch != 1 || out.State.Iteration != 4 {
		t.Errorf("ended at epoch %d iteration %d, want 1 and 4", out.State.Epoch, out.State.Iteration)
	}
	if len(l.trained) != 5 {
		t.Errorf("trained %d minibatches, want 5", len(l.trained))
	}

	// frequency is min(5, 5000): validation only at the last minibatch
	if l.validations != 1 || l.tests != 1 {
		t.Errorf("%d validations and %d tests, want 1 and 1", l.validations, l.tests)
	}
	if out.State.BestValidationLoss != 0.5 || out.State.BestIteration != 4 || out.State.TestScore != 0.25 {
		t.Errorf("unexpected final state %+v", out.State)
	}
}

func TestLoopIterations(t *testing.T) {
	l := &fakeLearner{valid: []float64{0.5, 0.4, 0.3, 0.2}}

	var results []Result
	_, err := Loop(l, BatchCounts{3, 1, 1}, 4, DefaultEarlyStopping(), func(r Result) {
		results = append(results, r)
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(l.trained) != 12 {
		t.Fatalf("trained %d minibatches, want 12", len(l.trained))
	}
	for i, iter := range l.trained {
		if iter != i {
			t.Fatalf("minibatch %d trained as iteration %d", i, iter)
		}
	}

	for _, r := range results {
		if r.Iteration != (r.Epoch-1)*3+r.Minibatch {
			t.Errorf("result %+v: iteration does not match epoch and minibatch", r)
		}
	}
}

func TestLoopStopsOnPatience(t *testing.T) {
	es := DefaultEarlyStopping()
	es.Patience = 4

	l := &fakeLearner{valid: []float64{0.5}}
	out, err := Loop(l, BatchCounts{10, 1, 1}, 3, es, nil)
	if err != nil {
		t.Fatal(err)
	}

	// validates at iterations 1, 3; the improvement at 1 gives max(4, 2) = 4
	if out.Reason != StoppedByPatience {
		t.Errorf("stopped by %v, want %v", out.Reason, StoppedByPatience)
	}
	if out.State.Iteration != 4 || out.State.Patience != 4 {
		t.Errorf("stopped at iteration %d with patience %d, want 4 and 4", out.State.Iteration, out.State.Patience)
	}
	if l.validations != 2 || l.tests != 1 {
		t.Errorf("%d validations and %d tests, want 2 and 1", l.validations, l.tests)
	}
}

func TestLoopBestIsNonIncreasing(t *testing.T) {
	l := &fakeLearner{valid: []float64{0.5, 0.4, 0.45, 0.4, 0.1}, test: 0.3}

	var results []Result
	out, err := Loop(l, BatchCounts{2, 1, 1}, 5, DefaultEarlyStopping(), func(r Result) {
		results = append(results, r)
	})
	if err != nil {
		t.Fatal(err)
	}

	// only strict improvements are tested: 0.5, 0.4, 0.1
	if l.tests != 3 {
		t.Errorf("tested %d times, want 3", l.tests)
	}

	best := math.Inf(1)
	var tests int
	for _, r := range results {
		if r.IsTest {
			tests++
			continue
		}

		if r.Value < best {
			best = r.Value
		}
	}

	if tests != 3 {
		t.Errorf("got %d test results, want 3", tests)
	}
	if out.State.BestValidationLoss != best || best != 0.1 {
		t.Errorf("best validation loss = %v, want %v", out.State.BestValidationLoss, best)
	}
	if out.State.BestIteration != 9 {
		t.Errorf("best iteration = %d, want 9", out.State.BestIteration)
	}
}

func TestLoopExactlyAtValidatesOnce(t *testing.T) {
	es := DefaultEarlyStopping()
	es.Trigger = TriggerExactlyAt

	l := &fakeLearner{valid: []float64{0.9, 0.1}}
	out, err := Loop(l, BatchCounts{4, 1, 1}, 3, es, nil)
	if err != nil {
		t.Fatal(err)
	}

	if l.validations != 1 {
		t.Errorf("validated %d times, want 1", l.validations)
	}
	if out.State.BestValidationLoss != 0.9 || out.State.BestIteration != 3 {
		t.Errorf("unexpected final state %+v", out.State)
	}
}

func TestLoopRejectsEmptySplits(t *testing.T) {
	cases := []BatchCounts{
		{0, 1, 1},
		{1, 0, 1},
		{1, 1, 0},
	}

	for _, c := range cases {
		l := &fakeLearner{valid: []float64{0}}
		_, err := Loop(l, c, 1, DefaultEarlyStopping(), nil)
		if errors.Cause(err) != ErrNoBatches {
			t.Errorf("counts %+v: got error %v, want %v", c, err, ErrNoBatches)
		}
		if len(l.trained) != 0 {
			t.Errorf("counts %+v: trained before failing", c)
		}
	}
}

func TestEarlyStoppingExtend(t *testing.T) {
	es := DefaultEarlyStopping()

	cases := []struct {
		patience, iter, want int
	}{
		{10000, 6000, 12000},
		{10000, 50, 10000},
		{10000, 5000, 10000},
		{12000, 7000, 14000},
	}

	for _, c := range cases {
		if got := es.Extend(c.patience, c.iter); got != c.want {
			t.Errorf("Extend(%d, %d) = %d, want %d", c.patience, c.iter, got, c.want)
		}
	}
}

func TestEarlyStoppingFrequency(t *testing.T) {
	es := DefaultEarlyStopping()

	cases := []struct {
		patience, batches, want int
	}{
		{10000, 20, 20},
		{10000, 6000, 5000},
		{1, 20, 1},
		{3, 20, 1},
	}

	for _, c := range cases {
		es.Patience = c.patience
		if got := es.Frequency(c.batches); got != c.want {
			t.Errorf("Frequency(%d) with patience %d = %d, want %d", c.batches, c.patience, got, c.want)
		}
	}
}

func TestTrigger(t *testing.T) {
	var every, exact []int
	for i := 0; i < 20; i++ {
		if TriggerEveryMultiple.Fires(i, 5) {
			every = append(every, i)
		}
		if TriggerExactlyAt.Fires(i, 5) {
			exact = append(exact, i)
		}
	}

	if len(every) != 4 || every[0] != 4 || every[3] != 19 {
		t.Errorf("every-multiple fired at %v", every)
	}
	if len(exact) != 1 || exact[0] != 4 {
		t.Errorf("exactly-at fired at %v", exact)
	}

	for _, tr := range []ValidationTrigger{TriggerEveryMultiple, TriggerExactlyAt} {
		if got, err := ParseTrigger(tr.String()); err != nil || got != tr {
			t.Errorf("ParseTrigger(%q) = %v, %v", tr.String(), got, err)
		}
	}
	if got, err := ParseTrigger(""); err != nil || got != TriggerEveryMultiple {
		t.Errorf(`ParseTrigger("") = %v, %v`, got, err)
	}
	if _, err := ParseTrigger("sometimes"); err == nil {
		t.Error("expected error for unknown trigger")
	}
}

func TestNewBatchCounts(t *testing.T) {
	cases := []struct {
		train, valid, test, size int
		want                     BatchCounts
	}{
		{1000, 1001, 49, 50, BatchCounts{20, 20, 0}},
		{10, 10, 10, 1, BatchCounts{10, 10, 10}},
		{10, 10, 10, 0, BatchCounts{}},
	}

	for _, c := range cases {
		if got := NewBatchCounts(c.train, c.valid, c.test, c.size); got != c.want {
			t.Errorf("NewBatchCounts(%d, %d, %d, %d) = %+v, want %+v", c.train, c.valid, c.test, c.size, got, c.want)
		}
	}
}
