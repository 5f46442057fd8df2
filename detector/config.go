package detector

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	cs "github.com/sharnoff/cascade"
	"github.com/sharnoff/cascade/costfuncs"
	"github.com/sharnoff/cascade/hyperparams"

	// registers the penalties available to Regularization
	_ "github.com/sharnoff/cascade/penalties"
)

// Regularization selects a Penalty on the weights of the head. An empty Kind (or "none") means
// no penalty. Alpha is only used by "elastic-net".
type Regularization struct {
	Kind   string  `json:"kind,omitempty"`
	Lambda float64 `json:"lambda,omitempty"`
	Alpha  float64 `json:"alpha,omitempty"`
}

// LRStep changes the learning rate to Rate from Iteration onwards.
type LRStep struct {
	Iteration int     `json:"iteration"`
	Rate      float64 `json:"rate"`
}

// Config is everything needed for a single run of detection training.
type Config struct {
	DatasetPath          string `json:"dataset"`
	RecognitionModelPath string `json:"recognition_model"`
	// DetectionModelPath is where the checkpoint is written. Empty means it is not written.
	DetectionModelPath string `json:"detection_model,omitempty"`

	LearningRate float64  `json:"learning_rate"`
	LRSteps      []LRStep `json:"lr_steps,omitempty"`
	Epochs       int      `json:"epochs"`
	BatchSize    int      `json:"batch_size"`

	HeadSizes  cs.HeadSizes `json:"head_sizes"`
	Classifier string       `json:"classifier"`
	Seed       int64        `json:"seed"`

	Regularization Regularization `json:"regularization,omitempty"`

	Patience             int     `json:"patience"`
	PatienceIncrease     float64 `json:"patience_increase"`
	ImprovementThreshold float64 `json:"improvement_threshold"`
	Trigger              string  `json:"validation_trigger,omitempty"`
}

// DefaultConfig returns the default configuration, with no paths set: a learning rate of 0.1,
// 10 epochs, minibatches of 50, a head of 500 hidden units and 4 logistic outputs, seed 23455,
// and the default early stopping.
func DefaultConfig() Config {
	es := cs.DefaultEarlyStopping()
	return Config{
		LearningRate:         0.1,
		Epochs:               10,
		BatchSize:            50,
		HeadSizes:            cs.HeadSizes{Hidden: 500, Output: 4},
		Classifier:           "logistic",
		Seed:                 23455,
		Patience:             es.Patience,
		PatienceIncrease:     es.Increase,
		ImprovementThreshold: es.Threshold,
		Trigger:              es.Trigger.String(),
	}
}

// LoadConfig reads a JSON Config from the file at path. Fields missing from the file keep their
// default values.
func LoadConfig(path string) (Config, error) {
	c := DefaultConfig()

	f, err := os.Open(path)
	if err != nil {
		return c, errors.Wrapf(err, "Can't load config, couldn't open %s\n", path)
	}
	defer f.Close()

	dec := json.NewDecoder(f)
	dec.DisallowUnknownFields()
	if err = dec.Decode(&c); err != nil {
		return c, errors.Wrapf(err, "Can't load config, failed to decode JSON from %s\n", path)
	}

	return c, nil
}

// Validate returns an error describing the first invalid field, if any.
func (c Config) Validate() error {
	if c.DatasetPath == "" {
		return errors.Errorf("Dataset path is empty")
	} else if c.RecognitionModelPath == "" {
		return errors.Errorf("Recognition model path is empty")
	}

	return c.checkTraining()
}

// checkTraining is Validate, without the input paths
func (c Config) checkTraining() error {
	switch {
	case !(c.LearningRate > 0):
		return errors.Errorf("Learning rate must be > 0 (%v)", c.LearningRate)
	case c.Epochs < 1:
		return errors.Errorf("Number of epochs must be >= 1 (%d)", c.Epochs)
	case c.BatchSize < 1:
		return errors.Errorf("Batch size must be >= 1 (%d)", c.BatchSize)
	case c.HeadSizes.Hidden < 1 || c.HeadSizes.Output < 1:
		return errors.Errorf("Head sizes must be >= 1 (%+v)", c.HeadSizes)
	case c.Patience < 1:
		return errors.Errorf("Patience must be >= 1 (%d)", c.Patience)
	case !(c.PatienceIncrease >= 1):
		return errors.Errorf("Patience increase must be >= 1 (%v)", c.PatienceIncrease)
	case !(c.ImprovementThreshold > 0 && c.ImprovementThreshold <= 1):
		return errors.Errorf("Improvement threshold must be in (0, 1] (%v)", c.ImprovementThreshold)
	}

	for i, s := range c.LRSteps {
		if s.Iteration < 0 || !(s.Rate > 0) {
			return errors.Errorf("Learning rate step %d is invalid (%+v)", i, s)
		}
	}

	if _, err := cs.NewClassifier(c.Classifier); err != nil {
		return err
	} else if _, err := cs.ParseTrigger(c.Trigger); err != nil {
		return err
	} else if _, err := c.CostFunction(); err != nil {
		return err
	}

	return nil
}

// EarlyStopping returns the early stopping parameters of the Config.
func (c Config) EarlyStopping() (cs.EarlyStopping, error) {
	t, err := cs.ParseTrigger(c.Trigger)
	if err != nil {
		return cs.EarlyStopping{}, err
	}

	return cs.EarlyStopping{
		Patience:  c.Patience,
		Increase:  c.PatienceIncrease,
		Threshold: c.ImprovementThreshold,
		Trigger:   t,
	}, nil
}

// CostFunction returns plain NLL, or NLL with the configured penalty.
func (c Config) CostFunction() (cs.CostFunction, error) {
	if c.Regularization.Kind == "" || c.Regularization.Kind == "none" {
		return costfuncs.NLL(), nil
	}

	p, err := cs.NewPenalty(c.Regularization.Kind, c.Regularization.Lambda, c.Regularization.Alpha)
	if err != nil {
		return nil, err
	}

	return costfuncs.Regularized(p), nil
}

// Schedule returns the learning rate: constant, or stepped if LRSteps is given.
func (c Config) Schedule() cs.HyperParameter {
	if len(c.LRSteps) == 0 {
		return hyperparams.Constant(c.LearningRate)
	}

	s := hyperparams.Step(c.LearningRate)
	for _, st := range c.LRSteps {
		s.Add(st.Iteration, st.Rate)
	}

	return s
}
