package operators

import (
	"math"

	"github.com/pkg/errors"
	"gorgonia.org/tensor"

	cs "github.com/sharnoff/cascade"
	"github.com/sharnoff/cascade/utils"
)

type convPool struct {
	// Weights has shape (kernels, channels, rows, cols), Biases has shape (kernels)
	Weights, Biases *tensor.Dense
	Pool            [2]int

	// Ins is {cols, rows, channels} of the input, Convs is {cols, rows} of the (unpooled)
	// convolution and Outs is {cols, rows, kernels} of the output
	Ins, Convs, Outs *utils.MultiDim

	// the position in Convs of the maximum of each pooling region, from the last evaluation
	argmax []int
}

// ConvPool returns a frozen convolution + max-pooling Operator built from existing filters,
// which implements cascade.Operator. It is not Adjustable: the tensors it is given are never
// written to.
//
// Inputs must have dimensions (channels, rows, cols). Each kernel is convolved ("valid" mode,
// with the kernel flipped) over every channel, the result is max-pooled in non-overlapping
// regions of pool[0] rows by pool[1] columns (trailing rows and columns that do not fill a region
// are ignored), and the output is tanh(pooled + bias). Output dimensions are
// (kernels, (rows-kr+1)/pool[0], (cols-kc+1)/pool[1]).
func ConvPool(weights, biases *tensor.Dense, pool [2]int) *convPool {
	return &convPool{Weights: weights, Biases: biases, Pool: pool}
}

func (c *convPool) TypeString() string {
	return "conv-pool"
}

func (c *convPool) OutputShape(l *cs.Layer) ([]int, error) {
	if c.Weights == nil {
		return nil, errors.Errorf("Can't make conv-pool, weights are nil")
	} else if c.Biases == nil {
		return nil, errors.Errorf("Can't make conv-pool, biases are nil")
	} else if c.Weights.Dtype() != tensor.Float64 || c.Biases.Dtype() != tensor.Float64 {
		return nil, errors.Errorf("Can't use conv-pool filters, must be float64 (have %v, %v)", c.Weights.Dtype(), c.Biases.Dtype())
	}

	in := l.InputDims()
	ws := c.Weights.Shape()
	if len(in) != 3 {
		return nil, errors.Wrapf(cs.ErrDimensionMismatch, "conv-pool input must have 3 dimensions (channels, rows, cols), has %v", in)
	} else if len(ws) != 4 {
		return nil, errors.Wrapf(cs.ErrDimensionMismatch, "conv-pool weights must have 4 dimensions, have shape %v", ws)
	} else if ws[1] != in[0] {
		return nil, errors.Wrapf(cs.ErrDimensionMismatch, "conv-pool weights expect %d channels, input has %d", ws[1], in[0])
	} else if bs := c.Biases.Shape(); len(bs) != 1 || bs[0] != ws[0] {
		return nil, errors.Wrapf(cs.ErrDimensionMismatch, "conv-pool biases have shape %v, expected (%d)", bs, ws[0])
	} else if c.Pool[0] < 1 || c.Pool[1] < 1 {
		return nil, errors.Errorf("Pooling size must be >= 1 (%v)", c.Pool)
	}

	rows, cols := (in[1]-ws[2]+1)/c.Pool[0], (in[2]-ws[3]+1)/c.Pool[1]
	if in[1]-ws[2]+1 < 1 || in[2]-ws[3]+1 < 1 || rows < 1 || cols < 1 {
		return nil, errors.Wrapf(cs.ErrDimensionMismatch, "%dx%d kernel with %v pooling over %dx%d input leaves no output",
			ws[2], ws[3], c.Pool, in[1], in[2])
	}

	return []int{ws[0], rows, cols}, nil
}

func (c *convPool) Init(l *cs.Layer) error {
	in, out := l.InputDims(), l.Dims()
	ws := c.Weights.Shape()

	c.Ins = utils.NewMultiDim([]int{in[2], in[1], in[0]})
	c.Convs = utils.NewMultiDim([]int{in[2] - ws[3] + 1, in[1] - ws[2] + 1})
	c.Outs = utils.NewMultiDim([]int{out[2], out[1], out[0]})
	c.argmax = make([]int, l.Size())
	return nil
}

// conv returns the convolution of kernel f at the given position of the convolution output
func (c *convPool) conv(inputs []float64, f, row, col int) float64 {
	ws := c.Weights.Float64s()
	shape := c.Weights.Shape()
	chans, kr, kc := shape[1], shape[2], shape[3]
	inRows, inCols := c.Ins.Dim(1), c.Ins.Dim(0)

	var sum float64
	for ch := 0; ch < chans; ch++ {
		kernel := ws[(f*chans+ch)*kr*kc : (f*chans+ch+1)*kr*kc]
		for i := 0; i < kr; i++ {
			in := inputs[(ch*inRows+row+i)*inCols+col:]
			k := kernel[(kr-1-i)*kc:]
			for j := 0; j < kc; j++ {
				sum += in[j] * k[kc-1-j]
			}
		}
	}

	return sum
}

// opsPerThread for conv-pool evaluation; each output covers a full pooling region
const convOpsPerThread int = 8

func (c *convPool) Evaluate(l *cs.Layer, values []float64) {
	inputs := l.Inputs()
	bs := c.Biases.Float64s()

	f := func(o int) {
		p := c.Outs.Point(o)
		x, y, k := p[0], p[1], p[2]

		best, at := math.Inf(-1), 0
		for py := 0; py < c.Pool[0]; py++ {
			for px := 0; px < c.Pool[1]; px++ {
				r, col := y*c.Pool[0]+py, x*c.Pool[1]+px

				// NaN wins, so that it propagates
				if v := c.conv(inputs, k, r, col); v > best || v != v {
					best, at = v, c.Convs.Index([]int{col, r})
					if v != v {
						break
					}
				}
			}
		}

		values[o] = math.Tanh(best + bs[k])
		c.argmax[o] = at
	}

	utils.MultiThread(0, len(values), f, convOpsPerThread, 1)
}

// InputDeltas passes deltas back through tanh, to the maximum of each pooling region, and then
// through the convolution. Pooling regions never overlap, but convolution windows do, so this is
// not run in parallel.
func (c *convPool) InputDeltas(l *cs.Layer, add func(int, float64)) {
	ws := c.Weights.Float64s()
	shape := c.Weights.Shape()
	chans, kr, kc := shape[1], shape[2], shape[3]

	for o := 0; o < l.Size(); o++ {
		v := l.Value(o)
		d := l.Delta(o) * (1 - v*v)
		if d == 0 {
			continue
		}

		k := c.Outs.Point(o)[2]
		pos := c.Convs.Point(c.argmax[o])
		col, row := pos[0], pos[1]

		for ch := 0; ch < chans; ch++ {
			kernel := ws[(k*chans+ch)*kr*kc : (k*chans+ch+1)*kr*kc]
			for i := 0; i < kr; i++ {
				for j := 0; j < kc; j++ {
					add(c.Ins.Index([]int{col + j, row + i, ch}), d*kernel[(kr-1-i)*kc+kc-1-j])
				}
			}
		}
	}
}
