package cascade

import (
	"io"
	"os"

	"github.com/pkg/errors"
	"gorgonia.org/tensor"

	"github.com/sharnoff/cascade/records"
)

// RecognitionModel is the metadata and convolution filters of a trained recognition model. It is
// only ever read: the convolution Operators built from it keep references to its tensors, but
// never write to them.
type RecognitionModel struct {
	ImageDim     int
	KernelDims   [2]int
	KernelCounts [2]int
	PoolSize     [2]int

	// Conv1W has shape (KernelCounts[0], 1, KernelDims[0], KernelDims[0]), Conv1B has shape
	// (KernelCounts[0]). Conv2W has shape (KernelCounts[1], KernelCounts[0], KernelDims[1],
	// KernelDims[1]), Conv2B has shape (KernelCounts[1]).
	Conv1W, Conv1B *tensor.Dense
	Conv2W, Conv2B *tensor.Dense
}

// HeadSizes is the width of the hidden and output Layers of the detection head.
type HeadSizes struct {
	Hidden int `json:"hidden"`
	Output int `json:"output"`
}

// Checkpoint is everything that is written once detection training has finished: the
// recognition model the Network was built from, and the trained head.
type Checkpoint struct {
	DatasetPath  string
	ImageDim     int
	KernelDims   [2]int
	KernelCounts [2]int
	HeadSizes    HeadSizes
	PoolSize     [2]int

	Conv1W, Conv1B *tensor.Dense
	Conv2W, Conv2B *tensor.Dense

	// HiddenW has shape (n_in, Hidden), OutputW has shape (Hidden, Output)
	HiddenW, HiddenB *tensor.Dense
	OutputW, OutputB *tensor.Dense
}

// Recognition returns the recognition model stored in the Checkpoint. The tensors are shared,
// not copied.
func (c *Checkpoint) Recognition() *RecognitionModel {
	return &RecognitionModel{
		ImageDim:     c.ImageDim,
		KernelDims:   c.KernelDims,
		KernelCounts: c.KernelCounts,
		PoolSize:     c.PoolSize,
		Conv1W:       c.Conv1W,
		Conv1B:       c.Conv1B,
		Conv2W:       c.Conv2W,
		Conv2B:       c.Conv2B,
	}
}

func checkShape(name string, t *tensor.Dense, dims ...int) error {
	if t == nil {
		return NilArgError{name}
	}

	if !t.Shape().Eq(tensor.Shape(dims)) {
		return errors.Wrapf(ErrDimensionMismatch, "%s has shape %v, expected %v", name, t.Shape(), dims)
	}

	return nil
}

// Check returns an error wrapping ErrDimensionMismatch if the shapes of the filter tensors do not
// agree with the metadata of the model.
func (m *RecognitionModel) Check() error {
	k0, k1 := m.KernelCounts[0], m.KernelCounts[1]
	d0, d1 := m.KernelDims[0], m.KernelDims[1]

	if err := checkShape("conv1 W", m.Conv1W, k0, 1, d0, d0); err != nil {
		return err
	} else if err := checkShape("conv1 b", m.Conv1B, k0); err != nil {
		return err
	} else if err := checkShape("conv2 W", m.Conv2W, k1, k0, d1, d1); err != nil {
		return err
	} else if err := checkShape("conv2 b", m.Conv2B, k1); err != nil {
		return err
	}

	return nil
}

// ReadRecognitionModel reads a recognition model from r. The records are, in order: a placeholder,
// the image dimension, the kernel dimensions, the kernel counts, a placeholder, the pooling size,
// and the four filter tensors. The placeholders are skipped whatever their kind, so detection
// checkpoints (which store the dataset path and head sizes there) can be read as well.
func ReadRecognitionModel(r io.Reader) (*RecognitionModel, error) {
	rd := records.NewReader(r)
	m := new(RecognitionModel)

	var err error
	fail := func(what string) (*RecognitionModel, error) {
		return nil, errors.Wrapf(err, "Can't read recognition model, failed to read %s\n", what)
	}

	if err = rd.Skip(); err != nil {
		return fail("first placeholder")
	} else if m.ImageDim, err = rd.Int(); err != nil {
		return fail("image dimension")
	} else if m.KernelDims, err = rd.Pair(); err != nil {
		return fail("kernel dimensions")
	} else if m.KernelCounts, err = rd.Pair(); err != nil {
		return fail("kernel counts")
	} else if err = rd.Skip(); err != nil {
		return fail("second placeholder")
	} else if m.PoolSize, err = rd.Pair(); err != nil {
		return fail("pooling size")
	}

	ts := []**tensor.Dense{&m.Conv1W, &m.Conv1B, &m.Conv2W, &m.Conv2B}
	names := []string{"conv1 W", "conv1 b", "conv2 W", "conv2 b"}
	for i := range ts {
		if *ts[i], err = rd.Tensor(); err != nil {
			return fail(names[i])
		}
	}

	return m, nil
}

// LoadRecognitionModel reads a recognition model (or a detection checkpoint) from the file at
// the given path. See ReadRecognitionModel for the format.
func LoadRecognitionModel(path string) (*RecognitionModel, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Can't load recognition model, couldn't open %s\n", path)
	}
	defer f.Close()

	m, err := ReadRecognitionModel(f)
	if err != nil {
		return nil, errors.Wrapf(err, "Can't load recognition model from %s\n", path)
	}

	return m, nil
}

// WriteRecognitionModel writes the model to w, in the format read by ReadRecognitionModel. Both
// placeholders are written as empty records.
func WriteRecognitionModel(w io.Writer, m *RecognitionModel) error {
	wr := records.NewWriter(w)

	wr.None()
	wr.Int(m.ImageDim)
	wr.Pair(m.KernelDims)
	wr.Pair(m.KernelCounts)
	wr.None()
	wr.Pair(m.PoolSize)
	wr.Tensor(m.Conv1W)
	wr.Tensor(m.Conv1B)
	wr.Tensor(m.Conv2W)
	wr.Tensor(m.Conv2B)

	if err := wr.Flush(); err != nil {
		return errors.Wrapf(err, "Can't write recognition model\n")
	}

	return nil
}

// SaveRecognitionModel creates (or truncates) the file at path and writes the model to it.
func SaveRecognitionModel(path string, m *RecognitionModel) error {
	return create(path, "recognition model", func(w io.Writer) error {
		return WriteRecognitionModel(w, m)
	})
}

// EncodeCheckpoint writes the Checkpoint to w. The records are, in order: the dataset path, the
// image dimension, the kernel dimensions, the kernel counts, the head sizes, the pooling size,
// then the conv1, conv2, hidden and output tensors (each weights, then biases).
func EncodeCheckpoint(w io.Writer, c *Checkpoint) error {
	wr := records.NewWriter(w)

	wr.String(c.DatasetPath)
	wr.Int(c.ImageDim)
	wr.Pair(c.KernelDims)
	wr.Pair(c.KernelCounts)
	wr.Pair([2]int{c.HeadSizes.Hidden, c.HeadSizes.Output})
	wr.Pair(c.PoolSize)
	for _, t := range []*tensor.Dense{
		c.Conv1W, c.Conv1B, c.Conv2W, c.Conv2B,
		c.HiddenW, c.HiddenB, c.OutputW, c.OutputB,
	} {
		wr.Tensor(t)
	}

	if err := wr.Flush(); err != nil {
		return errors.Wrapf(err, "Can't write checkpoint\n")
	}

	return nil
}

// WriteCheckpoint creates (or truncates) the file at path and writes the Checkpoint to it. If
// writing fails part way through, the file is left as it is.
func WriteCheckpoint(path string, c *Checkpoint) error {
	return create(path, "checkpoint", func(w io.Writer) error {
		return EncodeCheckpoint(w, c)
	})
}

// DecodeCheckpoint reads a Checkpoint from r, in the format written by EncodeCheckpoint.
func DecodeCheckpoint(r io.Reader) (*Checkpoint, error) {
	rd := records.NewReader(r)
	c := new(Checkpoint)

	var err error
	fail := func(what string) (*Checkpoint, error) {
		return nil, errors.Wrapf(err, "Can't read checkpoint, failed to read %s\n", what)
	}

	var head [2]int
	if c.DatasetPath, err = rd.String(); err != nil {
		return fail("dataset path")
	} else if c.ImageDim, err = rd.Int(); err != nil {
		return fail("image dimension")
	} else if c.KernelDims, err = rd.Pair(); err != nil {
		return fail("kernel dimensions")
	} else if c.KernelCounts, err = rd.Pair(); err != nil {
		return fail("kernel counts")
	} else if head, err = rd.Pair(); err != nil {
		return fail("head sizes")
	} else if c.PoolSize, err = rd.Pair(); err != nil {
		return fail("pooling size")
	}
	c.HeadSizes = HeadSizes{head[0], head[1]}

	ts := []**tensor.Dense{
		&c.Conv1W, &c.Conv1B, &c.Conv2W, &c.Conv2B,
		&c.HiddenW, &c.HiddenB, &c.OutputW, &c.OutputB,
	}
	names := []string{
		"conv1 W", "conv1 b", "conv2 W", "conv2 b",
		"hidden W", "hidden b", "output W", "output b",
	}
	for i := range ts {
		if *ts[i], err = rd.Tensor(); err != nil {
			return fail(names[i])
		}
	}

	return c, nil
}

// ReadCheckpoint reads the Checkpoint stored in the file at path.
func ReadCheckpoint(path string) (*Checkpoint, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Can't read checkpoint, couldn't open %s\n", path)
	}
	defer f.Close()

	c, err := DecodeCheckpoint(f)
	if err != nil {
		return nil, errors.Wrapf(err, "Can't read checkpoint from %s\n", path)
	}

	return c, nil
}

func create(path, what string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "Can't save %s, couldn't create %s\n", what, path)
	}

	if err = write(f); err != nil {
		f.Close()
		return errors.Wrapf(err, "Can't save %s to %s\n", what, path)
	}

	if err = f.Close(); err != nil {
		return errors.Wrapf(err, "Can't save %s, closing %s failed\n", what, path)
	}

	return nil
}
