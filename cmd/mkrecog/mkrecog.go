// Command mkrecog writes a recognition model with freshly initialized filters. The result can be
// given to detect in place of a trained recognition model, to try out the rest of the pipeline.
//
// Filters are drawn uniformly from ±sqrt(6 / (fan_in + fan_out)), where fan_in is the number of
// inputs to each output unit and fan_out is the number of units each input reaches after
// pooling. Biases are zero.
package main

import (
	"flag"
	"math"
	"os"

	"github.com/pkg/errors"
	"gorgonia.org/tensor"
	"k8s.io/klog/v2"

	cs "github.com/sharnoff/cascade"
	"github.com/sharnoff/cascade/detector"
	"github.com/sharnoff/cascade/initializers"
)

// filters returns the weights and biases of a stage with 'count' kernels of size k over 'channels'
// input channels
func filters(rng initializers.RNG, count, channels, k int) (*tensor.Dense, *tensor.Dense) {
	w := make([]float64, count*channels*k*k)
	initializers.Fill(rng, w)

	return tensor.New(tensor.WithShape(count, channels, k, k), tensor.WithBacking(w)),
		tensor.New(tensor.WithShape(count), tensor.WithBacking(make([]float64, count)))
}

func bound(count, channels, k int, pool [2]int) float64 {
	fanIn := float64(channels * k * k)
	fanOut := float64(count*k*k) / float64(pool[0]*pool[1])
	return math.Sqrt(6 / (fanIn + fanOut))
}

func build(img int, kernels, counts, pool [2]int, seed int64) (*cs.RecognitionModel, error) {
	if counts[0] < 1 || counts[1] < 1 {
		return nil, errors.Errorf("Kernel counts must be >= 1 (%v)", counts)
	}

	stages, err := detector.DerivedDims(img, kernels, pool)
	if err != nil {
		return nil, err
	}

	src := initializers.NewRNG(seed)
	m := &cs.RecognitionModel{
		ImageDim:     img,
		KernelDims:   kernels,
		KernelCounts: counts,
		PoolSize:     pool,
	}

	b := bound(counts[0], 1, kernels[0], pool)
	m.Conv1W, m.Conv1B = filters(initializers.Uniform(src).Bounds(-b, b), counts[0], 1, kernels[0])

	b = bound(counts[1], counts[0], kernels[1], pool)
	m.Conv2W, m.Conv2B = filters(initializers.Uniform(src).Bounds(-b, b), counts[1], counts[0], kernels[1])

	klog.V(1).InfoS("built recognition model", "conv1", stages.Conv1, "conv2", stages.Conv2,
		"hidden_inputs", stages.HiddenInputs(counts[1]))
	return m, nil
}

func main() {
	img := flag.Int("image", 28, "width and height of input images")
	var kernels, counts, pool [2]int
	flag.IntVar(&kernels[0], "kernel1", 5, "width of the first stage's kernels")
	flag.IntVar(&kernels[1], "kernel2", 5, "width of the second stage's kernels")
	flag.IntVar(&counts[0], "count1", 20, "number of kernels in the first stage")
	flag.IntVar(&counts[1], "count2", 50, "number of kernels in the second stage")
	flag.IntVar(&pool[0], "pool-rows", 2, "pooling size along rows")
	flag.IntVar(&pool[1], "pool-cols", 2, "pooling size along columns")
	seed := flag.Int64("seed", 23455, "seed for the filters")
	out := flag.String("out", "", "path of the recognition model to write")

	klog.InitFlags(nil)
	flag.Parse()
	defer klog.Flush()

	fail := func(err error) {
		klog.Errorf("%+v", err)
		klog.Flush()
		os.Exit(1)
	}

	if *out == "" {
		fail(errors.Errorf("No output path given"))
	}

	m, err := build(*img, kernels, counts, pool, *seed)
	if err != nil {
		fail(err)
	}

	if err = cs.SaveRecognitionModel(*out, m); err != nil {
		fail(err)
	}

	klog.InfoS("wrote recognition model", "path", *out)
}
