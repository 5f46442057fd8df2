package cascade

import (
	"math"
	"time"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Learner is the model and data that Loop trains. Minibatch indexes are always in the range
// given by the BatchCounts passed to Loop.
type Learner interface {
	// TrainBatch performs a single gradient step on the training minibatch at 'index', returning
	// its cost. 'iteration' is the global iteration, starting at zero.
	TrainBatch(index, iteration int) (float64, error)

	// ValidationError returns the mean zero-one error over every validation minibatch.
	ValidationError() (float64, error)

	// TestError returns the mean zero-one error over every test minibatch.
	TestError() (float64, error)
}

// ValidationTrigger decides on which iterations the validation error is measured, given the
// validation frequency.
type ValidationTrigger int8

const (
	// TriggerEveryMultiple validates whenever (iter+1) is a multiple of the frequency.
	TriggerEveryMultiple ValidationTrigger = iota // 0
	// TriggerExactlyAt validates only when (iter+1) equals the frequency, so at most once.
	TriggerExactlyAt ValidationTrigger = iota // 1
)

// Fires returns whether or not validation should happen after the given iteration.
func (t ValidationTrigger) Fires(iter, frequency int) bool {
	if t == TriggerExactlyAt {
		return iter+1 == frequency
	}

	return (iter+1)%frequency == 0
}

func (t ValidationTrigger) String() string {
	if t == TriggerExactlyAt {
		return "exactly-at"
	}

	return "every-multiple"
}

// ParseTrigger returns the ValidationTrigger with the given name, as given by its String method.
// The empty string gives the default, TriggerEveryMultiple.
func ParseTrigger(s string) (ValidationTrigger, error) {
	switch s {
	case "", TriggerEveryMultiple.String():
		return TriggerEveryMultiple, nil
	case TriggerExactlyAt.String():
		return TriggerExactlyAt, nil
	}

	return 0, errors.Errorf("Unknown validation trigger %q", s)
}

// EarlyStopping holds the parameters of patience-based early stopping.
type EarlyStopping struct {
	// Patience is the minimum number of iterations to run, regardless of validation results.
	Patience int

	// Increase is the factor the iteration is multiplied by when a significant improvement
	// extends the patience.
	Increase float64

	// Threshold is the relative improvement that counts as significant: a new validation loss
	// is significant if it is below best * Threshold.
	Threshold float64

	Trigger ValidationTrigger
}

// DefaultEarlyStopping returns a patience of 10000, an increase of 2, a threshold of 0.995 and
// validation at every multiple of the frequency.
func DefaultEarlyStopping() EarlyStopping {
	return EarlyStopping{
		Patience:  10000,
		Increase:  2,
		Threshold: 0.995,
		Trigger:   TriggerEveryMultiple,
	}
}

// Frequency returns the number of iterations between validations: the smaller of the number of
// training minibatches and half the patience, but never less than one.
func (es EarlyStopping) Frequency(trainBatches int) int {
	f := trainBatches
	if half := es.Patience / 2; half < f {
		f = half
	}

	if f < 1 {
		return 1
	}
	return f
}

// Extend returns the patience after a significant improvement at the given iteration.
func (es EarlyStopping) Extend(patience, iter int) int {
	if p := int(float64(iter) * es.Increase); p > patience {
		return p
	}

	return patience
}

// TrainingState is the progress of Loop.
type TrainingState struct {
	Epoch     int
	Iteration int
	Patience  int

	// BestValidationLoss is +Inf until the first validation. It never increases.
	BestValidationLoss float64
	// BestIteration is the iteration at which BestValidationLoss was measured.
	BestIteration int
	// TestScore is the test error measured at BestIteration.
	TestScore float64
}

// StopReason is why Loop stopped.
type StopReason int8

const (
	StoppedByExhaustion StopReason = iota // 0
	StoppedByPatience   StopReason = iota // 1
)

func (r StopReason) String() string {
	if r == StoppedByPatience {
		return "patience"
	}

	return "epochs exhausted"
}

// Outcome is the final result of Loop.
type Outcome struct {
	State   TrainingState
	Reason  StopReason
	Elapsed time.Duration
}

// Result is a wrapper for sending back the progress of training.
type Result struct {
	Epoch int
	// Minibatch is the index of the training minibatch, starting at zero.
	Minibatch int
	Iteration int

	// Value is the mean zero-one error, 0 → 1
	Value float64

	// The result is either from a test or a validation
	IsTest bool
}

// Check returns ErrNoBatches, wrapped with the name of the split, if any split has no complete
// minibatches.
func (c BatchCounts) Check() error {
	switch {
	case c.Train < 1:
		return errors.Wrapf(ErrNoBatches, "training split")
	case c.Valid < 1:
		return errors.Wrapf(ErrNoBatches, "validation split")
	case c.Test < 1:
		return errors.Wrapf(ErrNoBatches, "test split")
	}

	return nil
}

// statusFrequency is the number of iterations between progress logs
const statusFrequency int = 100

// Loop runs minibatch training with patience-based early stopping. Each epoch visits every
// training minibatch in order; validation happens when es.Trigger fires, and every new best
// validation loss is followed by a measurement of the test error. Training stops once the
// patience is no greater than the current iteration, or after 'epochs' epochs.
//
// update receives a Result for every validation and every test. It may be nil.
//
// Loop returns an error before training if any split has no minibatches.
func Loop(l Learner, counts BatchCounts, epochs int, es EarlyStopping, update func(Result)) (Outcome, error) {
	if err := counts.Check(); err != nil {
		return Outcome{}, errors.Wrapf(err, "Can't start training\n")
	} else if epochs < 1 {
		return Outcome{}, errors.Errorf("Can't start training, number of epochs must be >= 1 (%d)", epochs)
	} else if l == nil {
		return Outcome{}, NilArgError{"Learner"}
	}

	if update == nil {
		update = func(Result) {}
	}

	freq := es.Frequency(counts.Train)
	state := TrainingState{
		Patience:           es.Patience,
		BestValidationLoss: math.Inf(1),
	}

	klog.InfoS("training", "train_batches", counts.Train, "valid_batches", counts.Valid,
		"test_batches", counts.Test, "validation_frequency", freq, "patience", es.Patience)

	start := time.Now()
	reason := StoppedByExhaustion

epochs:
	for state.Epoch < epochs {
		state.Epoch++

		for index := 0; index < counts.Train; index++ {
			iter := (state.Epoch-1)*counts.Train + index
			state.Iteration = iter

			if iter%statusFrequency == 0 {
				klog.V(1).InfoS("training", "iter", iter)
			}

			if _, err := l.TrainBatch(index, iter); err != nil {
				return Outcome{}, errors.Wrapf(err, "Training failed on iteration %d\n", iter)
			}

			if es.Trigger.Fires(iter, freq) {
				if err := validate(l, es, &state, index, counts.Train, update); err != nil {
					return Outcome{}, err
				}
			}

			if state.Patience <= iter {
				reason = StoppedByPatience
				break epochs
			}
		}
	}

	out := Outcome{State: state, Reason: reason, Elapsed: time.Since(start)}

	klog.InfoS("optimization complete", "best_validation_error", state.BestValidationLoss*100,
		"iteration", state.BestIteration+1, "test_error", state.TestScore*100, "stopped_by", reason)
	klog.InfoS("training finished", "minutes", out.Elapsed.Minutes())

	return out, nil
}

// validate measures the validation error and, if it is a new best, the test error
func validate(l Learner, es EarlyStopping, state *TrainingState, index, batches int, update func(Result)) error {
	iter := state.Iteration

	loss, err := l.ValidationError()
	if err != nil {
		return errors.Wrapf(err, "Validation failed on iteration %d\n", iter)
	}

	klog.InfoS("validation", "epoch", state.Epoch, "minibatch", index+1, "batches", batches,
		"error", loss*100)
	update(Result{Epoch: state.Epoch, Minibatch: index, Iteration: iter, Value: loss})

	if !(loss < state.BestValidationLoss) {
		return nil
	}

	if loss < state.BestValidationLoss*es.Threshold {
		state.Patience = es.Extend(state.Patience, iter)
	}

	state.BestValidationLoss = loss
	state.BestIteration = iter

	if state.TestScore, err = l.TestError(); err != nil {
		return errors.Wrapf(err, "Testing failed on iteration %d\n", iter)
	}

	klog.InfoS("test of best model", "epoch", state.Epoch, "minibatch", index+1, "batches", batches,
		"error", state.TestScore*100)
	update(Result{Epoch: state.Epoch, Minibatch: index, Iteration: iter, Value: state.TestScore, IsTest: true})

	return nil
}
