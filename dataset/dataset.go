// Package dataset holds the train, validation and test splits used by detection training, and
// reads and writes them.
package dataset

import (
	"io"
	"math"
	"os"

	"github.com/pkg/errors"
	"gorgonia.org/tensor"

	cs "github.com/sharnoff/cascade"
	"github.com/sharnoff/cascade/records"
)

// Split is a set of samples. Inputs has shape (n, features) and holds float64; Labels has shape
// (n) or (n, width) and holds int.
type Split struct {
	Inputs *tensor.Dense
	Labels *tensor.Dense
}

// NewSplit returns a Split of n samples from row-major inputs and labels. The number of features
// and labels per sample are inferred from the lengths of the slices. The slices are used
// directly, not copied.
func NewSplit(inputs []float64, labels []int, n int) (*Split, error) {
	if n < 1 {
		return nil, errors.Errorf("Can't make split, must have at least one sample (%d)", n)
	} else if len(inputs) == 0 || len(inputs)%n != 0 {
		return nil, errors.Errorf("Can't make split, %d input values do not divide into %d samples", len(inputs), n)
	} else if len(labels) == 0 || len(labels)%n != 0 {
		return nil, errors.Errorf("Can't make split, %d labels do not divide into %d samples", len(labels), n)
	}

	labelShape := []int{n}
	if w := len(labels) / n; w != 1 {
		labelShape = append(labelShape, w)
	}

	s := &Split{
		Inputs: tensor.New(tensor.WithShape(n, len(inputs)/n), tensor.WithBacking(inputs)),
		Labels: tensor.New(tensor.WithShape(labelShape...), tensor.WithBacking(labels)),
	}
	return s, nil
}

func (s *Split) check() error {
	if s == nil || s.Inputs == nil || s.Labels == nil {
		return errors.Errorf("Split is incomplete")
	} else if s.Inputs.Dtype() != tensor.Float64 {
		return errors.Errorf("Inputs must be float64, have %v", s.Inputs.Dtype())
	} else if s.Labels.Dtype() != tensor.Int {
		return errors.Errorf("Labels must be int, have %v", s.Labels.Dtype())
	} else if d := s.Inputs.Dims(); d != 2 {
		return errors.Errorf("Inputs must have 2 dimensions, have %d", d)
	} else if d := s.Labels.Dims(); d != 1 && d != 2 {
		return errors.Errorf("Labels must have 1 or 2 dimensions, have %d", d)
	} else if s.Inputs.Shape()[0] != s.Labels.Shape()[0] {
		return errors.Errorf("Split has %d inputs but %d labels", s.Inputs.Shape()[0], s.Labels.Shape()[0])
	} else if s.Len() == 0 {
		return errors.Wrapf(cs.ErrNoBatches, "Split has no samples")
	}

	return nil
}

// Len returns the number of samples in the Split.
func (s *Split) Len() int {
	return s.Inputs.Shape()[0]
}

// Features returns the number of input values per sample.
func (s *Split) Features() int {
	return s.Inputs.Shape()[1]
}

// LabelWidth returns the number of labels per sample.
func (s *Split) LabelWidth() int {
	return s.Labels.Size() / s.Len()
}

// BatchCount returns the number of complete minibatches of the given size. Trailing samples that
// do not fill a minibatch are never used.
func (s *Split) BatchCount(size int) int {
	if size < 1 {
		return 0
	}

	return s.Len() / size
}

// Batch returns minibatch i, covering samples [i*size, (i+1)*size). The Batch shares memory with
// the Split.
func (s *Split) Batch(i, size int) (cs.Batch, error) {
	if size < 1 {
		return cs.Batch{}, errors.Errorf("Can't get batch, size must be >= 1 (%d)", size)
	} else if i < 0 || i >= s.BatchCount(size) {
		return cs.Batch{}, errors.Errorf("Batch %d is out of range (have %d of size %d)", i, s.BatchCount(size), size)
	}

	f, w := s.Features(), s.LabelWidth()
	return cs.Batch{
		Inputs: s.Inputs.Float64s()[i*size*f : (i+1)*size*f],
		Labels: s.Labels.Ints()[i*size*w : (i+1)*size*w],
		Size:   size,
	}, nil
}

// Dataset is the three splits used for training.
type Dataset struct {
	Train, Valid, Test *Split
}

func (d *Dataset) splits() ([]*Split, []string) {
	return []*Split{d.Train, d.Valid, d.Test}, []string{"train", "valid", "test"}
}

// Check returns an error if any split is malformed, or if the splits disagree on the number of
// features or labels per sample.
func (d *Dataset) Check() error {
	splits, names := d.splits()
	for i, s := range splits {
		if err := s.check(); err != nil {
			return errors.Wrapf(err, "Bad %s split\n", names[i])
		}
	}

	for i, s := range splits[1:] {
		if s.Features() != d.Train.Features() {
			return errors.Wrapf(cs.ErrDimensionMismatch, "%s split has %d features, train has %d", names[i+1], s.Features(), d.Train.Features())
		} else if s.LabelWidth() != d.Train.LabelWidth() {
			return errors.Wrapf(cs.ErrDimensionMismatch, "%s split has %d labels per sample, train has %d", names[i+1], s.LabelWidth(), d.Train.LabelWidth())
		}
	}

	return nil
}

// Counts returns the number of complete minibatches of the given size in each split.
func (d *Dataset) Counts(batchSize int) cs.BatchCounts {
	return cs.NewBatchCounts(d.Train.Len(), d.Valid.Len(), d.Test.Len(), batchSize)
}

// labelsOnDisk returns the labels as int32, the widest integer type that survives the npy
// encoding
func labelsOnDisk(labels *tensor.Dense) (*tensor.Dense, error) {
	ls := labels.Ints()
	out := make([]int32, len(ls))
	for i, l := range ls {
		if l > math.MaxInt32 || l < math.MinInt32 {
			return nil, errors.Errorf("Label %d (%d) does not fit in int32", i, l)
		}
		out[i] = int32(l)
	}

	return tensor.New(tensor.WithShape(labels.Shape().Clone()...), tensor.WithBacking(out)), nil
}

func labelsFromDisk(labels *tensor.Dense) (*tensor.Dense, error) {
	if labels.Dtype() != tensor.Int32 {
		return nil, errors.Errorf("Labels must be int32, have %v", labels.Dtype())
	}

	ls := labels.Int32s()
	out := make([]int, len(ls))
	for i, l := range ls {
		out[i] = int(l)
	}

	return tensor.New(tensor.WithShape(labels.Shape().Clone()...), tensor.WithBacking(out)), nil
}

// Read reads a Dataset from r. For each of train, valid and test, in order, there is an inputs
// tensor (float64) and a labels tensor (int32).
func Read(r io.Reader) (*Dataset, error) {
	rd := records.NewReader(r)
	d := new(Dataset)

	splits := []**Split{&d.Train, &d.Valid, &d.Test}
	_, names := d.splits()
	for i := range splits {
		s := new(Split)

		var err error
		var labels *tensor.Dense
		if s.Inputs, err = rd.Tensor(); err != nil {
			return nil, errors.Wrapf(err, "Can't read %s inputs\n", names[i])
		} else if labels, err = rd.Tensor(); err != nil {
			return nil, errors.Wrapf(err, "Can't read %s labels\n", names[i])
		} else if s.Labels, err = labelsFromDisk(labels); err != nil {
			return nil, errors.Wrapf(err, "Bad %s labels\n", names[i])
		}

		*splits[i] = s
	}

	if err := d.Check(); err != nil {
		return nil, errors.Wrapf(err, "Read malformed dataset\n")
	}

	return d, nil
}

// Load reads the Dataset stored in the file at path.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Can't load dataset, couldn't open %s\n", path)
	}
	defer f.Close()

	d, err := Read(f)
	if err != nil {
		return nil, errors.Wrapf(err, "Can't load dataset from %s\n", path)
	}

	return d, nil
}

// Write writes the Dataset to w, in the format read by Read.
func Write(w io.Writer, d *Dataset) error {
	if err := d.Check(); err != nil {
		return errors.Wrapf(err, "Can't write dataset\n")
	}

	wr := records.NewWriter(w)
	splits, names := d.splits()
	for i, s := range splits {
		labels, err := labelsOnDisk(s.Labels)
		if err != nil {
			return errors.Wrapf(err, "Can't write %s labels\n", names[i])
		}

		wr.Tensor(s.Inputs)
		wr.Tensor(labels)
	}

	if err := wr.Flush(); err != nil {
		return errors.Wrapf(err, "Can't write dataset\n")
	}

	return nil
}

// Save creates (or truncates) the file at path and writes the Dataset to it.
func Save(path string, d *Dataset) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "Can't save dataset, couldn't create %s\n", path)
	}

	if err = Write(f, d); err != nil {
		f.Close()
		return errors.Wrapf(err, "Can't save dataset to %s\n", path)
	}

	if err = f.Close(); err != nil {
		return errors.Wrapf(err, "Can't save dataset, closing %s failed\n", path)
	}

	return nil
}
