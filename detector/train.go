package detector

import (
	"encoding/json"
	"math"
	"os"
	"time"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/stat"
	"k8s.io/klog/v2"

	cs "github.com/sharnoff/cascade"
	"github.com/sharnoff/cascade/dataset"
	"github.com/sharnoff/cascade/optimizers"
)

// learner trains a finalized Network on the splits of a Dataset
type learner struct {
	net  *cs.Network
	data *dataset.Dataset
	size int
}

func (l *learner) TrainBatch(index, iteration int) (float64, error) {
	b, err := l.data.Train.Batch(index, l.size)
	if err != nil {
		return 0, err
	}

	return l.net.Step(b, iteration)
}

func (l *learner) ValidationError() (float64, error) {
	return l.meanError(l.data.Valid)
}

func (l *learner) TestError() (float64, error) {
	return l.meanError(l.data.Test)
}

// meanError returns the mean of the zero-one error of every minibatch in the split
func (l *learner) meanError(s *dataset.Split) (float64, error) {
	errs := make([]float64, s.BatchCount(l.size))
	for i := range errs {
		b, err := s.Batch(i, l.size)
		if err != nil {
			return 0, err
		}

		if errs[i], err = l.net.Errors(b); err != nil {
			return 0, errors.Wrapf(err, "Minibatch %d\n", i)
		}
	}

	return stat.Mean(errs, nil), nil
}

// Summary is the result of a single run of detection training.
type Summary struct {
	Config  Config
	State   cs.TrainingState
	Reason  cs.StopReason
	Elapsed time.Duration

	// Results are every validation and test measurement, in the order they were made
	Results []cs.Result

	// Model is the trained detector. It is not written with the Summary.
	Model *Model
}

// Run assembles a detector from the recognition model and trains it on the Dataset, as given by
// the Config. The paths of the Config are not read, but if DetectionModelPath is not empty, the
// checkpoint is written there once training finishes, along with the Summary as JSON at
// DetectionModelPath + ".json". If only writing fails, the Summary is returned with the error.
func Run(cfg Config, data *dataset.Dataset, rec *cs.RecognitionModel) (*Summary, error) {
	if err := cfg.checkTraining(); err != nil {
		return nil, errors.Wrapf(err, "Can't run detection training, invalid config\n")
	} else if data == nil {
		return nil, errors.Errorf("Can't run detection training, dataset is nil")
	} else if err := data.Check(); err != nil {
		return nil, errors.Wrapf(err, "Can't run detection training\n")
	} else if rec == nil {
		return nil, errors.Errorf("Can't run detection training, recognition model is nil")
	}

	if f, d := data.Train.Features(), rec.ImageDim; f != d*d {
		return nil, errors.Wrapf(cs.ErrDimensionMismatch, "Can't run detection training, samples have %d features but images are %dx%d", f, d, d)
	}

	cls, err := cs.NewClassifier(cfg.Classifier)
	if err != nil {
		return nil, errors.Wrapf(err, "Can't run detection training\n")
	}

	m, err := Assemble(rec, cfg.HeadSizes, cls, cfg.Seed)
	if err != nil {
		return nil, errors.Wrapf(err, "Can't run detection training\n")
	}

	cf, err := cfg.CostFunction()
	if err != nil {
		return nil, errors.Wrapf(err, "Can't run detection training\n")
	}

	if err = m.Net.Finalize(cf, optimizers.SGD(), cfg.Schedule()); err != nil {
		return nil, errors.Wrapf(err, "Can't run detection training, failed to finalize network\n")
	}

	es, err := cfg.EarlyStopping()
	if err != nil {
		return nil, errors.Wrapf(err, "Can't run detection training\n")
	}

	sum := &Summary{Config: cfg, Model: m}
	l := &learner{net: m.Net, data: data, size: cfg.BatchSize}

	out, err := cs.Loop(l, data.Counts(cfg.BatchSize), cfg.Epochs, es, func(r cs.Result) {
		sum.Results = append(sum.Results, r)
	})
	if err != nil {
		return nil, errors.Wrapf(err, "Detection training failed\n")
	}

	sum.State, sum.Reason, sum.Elapsed = out.State, out.Reason, out.Elapsed

	if cfg.DetectionModelPath != "" {
		if err = sum.save(cfg.DetectionModelPath); err != nil {
			return sum, err
		}
	}

	return sum, nil
}

// Train loads the dataset and recognition model named by the Config, then trains as Run does.
func Train(cfg Config) (*Summary, error) {
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "Can't train detector, invalid config\n")
	}

	data, err := dataset.Load(cfg.DatasetPath)
	if err != nil {
		return nil, errors.Wrapf(err, "Can't train detector\n")
	}

	rec, err := cs.LoadRecognitionModel(cfg.RecognitionModelPath)
	if err != nil {
		return nil, errors.Wrapf(err, "Can't train detector\n")
	}

	klog.InfoS("loaded inputs", "dataset", cfg.DatasetPath, "train", data.Train.Len(),
		"valid", data.Valid.Len(), "test", data.Test.Len(), "recognition_model", cfg.RecognitionModelPath)

	return Run(cfg, data, rec)
}

// save writes the checkpoint to path and the Summary to path + ".json"
func (s *Summary) save(path string) error {
	c, err := s.Model.Checkpoint(s.Config.DatasetPath)
	if err != nil {
		return err
	}

	if err = cs.WriteCheckpoint(path, c); err != nil {
		return err
	}

	f, err := os.Create(path + ".json")
	if err != nil {
		return errors.Wrapf(err, "Can't write summary, couldn't create %s.json\n", path)
	}

	enc := json.NewEncoder(f)
	enc.SetIndent("", "\t")
	if err = enc.Encode(s.document()); err != nil {
		f.Close()
		return errors.Wrapf(err, "Can't write summary to %s.json\n", path)
	}

	if err = f.Close(); err != nil {
		return errors.Wrapf(err, "Can't write summary, closing %s.json failed\n", path)
	}

	klog.InfoS("wrote detection model", "path", path)
	return nil
}

// summaryDoc is the JSON form of a Summary. NaN and infinite values are written as null.
type summaryDoc struct {
	Config         Config      `json:"config"`
	Epoch          int         `json:"epoch"`
	Iteration      int         `json:"iteration"`
	Patience       int         `json:"patience"`
	BestValidation *float64    `json:"best_validation_error"`
	BestIteration  int         `json:"best_iteration"`
	TestScore      *float64    `json:"test_error"`
	StoppedBy      string      `json:"stopped_by"`
	Seconds        float64     `json:"elapsed_seconds"`
	Results        []resultDoc `json:"results"`
}

type resultDoc struct {
	Epoch     int      `json:"epoch"`
	Minibatch int      `json:"minibatch"`
	Iteration int      `json:"iteration"`
	Value     *float64 `json:"value"`
	Test      bool     `json:"test,omitempty"`
}

func finite(f float64) *float64 {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}

	return &f
}

func (s *Summary) document() summaryDoc {
	d := summaryDoc{
		Config:         s.Config,
		Epoch:          s.State.Epoch,
		Iteration:      s.State.Iteration,
		Patience:       s.State.Patience,
		BestValidation: finite(s.State.BestValidationLoss),
		BestIteration:  s.State.BestIteration,
		TestScore:      finite(s.State.TestScore),
		StoppedBy:      s.Reason.String(),
		Seconds:        s.Elapsed.Seconds(),
		Results:        make([]resultDoc, len(s.Results)),
	}

	for i, r := range s.Results {
		d.Results[i] = resultDoc{
			Epoch:     r.Epoch,
			Minibatch: r.Minibatch,
			Iteration: r.Iteration,
			Value:     finite(r.Value),
			Test:      r.IsTest,
		}
	}

	return d
}
