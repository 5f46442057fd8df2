// Command mkdataset converts train, validation and test CSV files into a single dataset file.
//
// Each line of the CSV files is a sample: its labels, then its input values. For example, with
// MNIST-style 28x28 images:
//
//	mkdataset -train train.csv -valid valid.csv -test test.csv -scale 255 -out data.rec
package main

import (
	"flag"
	"os"

	"github.com/pkg/errors"
	"k8s.io/klog/v2"

	"github.com/sharnoff/cascade/dataset"
)

func readSplit(path string, labels int, scale float64) (*dataset.Split, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "Couldn't open %s\n", path)
	}
	defer f.Close()

	s, err := dataset.ReadCSV(f, labels, scale)
	if err != nil {
		return nil, errors.Wrapf(err, "Couldn't read %s\n", path)
	}

	klog.V(1).InfoS("read split", "path", path, "samples", s.Len(), "features", s.Features())
	return s, nil
}

func run(paths [3]string, labels int, scale float64, out string) error {
	if out == "" {
		return errors.Errorf("No output path given")
	}

	var splits [3]*dataset.Split
	for i, p := range paths {
		if p == "" {
			return errors.Errorf("Missing path of split %d", i)
		}

		var err error
		if splits[i], err = readSplit(p, labels, scale); err != nil {
			return err
		}
	}

	d := &dataset.Dataset{Train: splits[0], Valid: splits[1], Test: splits[2]}
	if err := dataset.Save(out, d); err != nil {
		return err
	}

	klog.InfoS("wrote dataset", "path", out, "train", d.Train.Len(), "valid", d.Valid.Len(), "test", d.Test.Len())
	return nil
}

func main() {
	var paths [3]string
	flag.StringVar(&paths[0], "train", "", "CSV file of the training split")
	flag.StringVar(&paths[1], "valid", "", "CSV file of the validation split")
	flag.StringVar(&paths[2], "test", "", "CSV file of the test split")
	labels := flag.Int("labels", 1, "number of label columns at the start of each line")
	scale := flag.Float64("scale", 1, "every input value is divided by this")
	out := flag.String("out", "", "path of the dataset file to write")

	klog.InitFlags(nil)
	flag.Parse()
	defer klog.Flush()

	if err := run(paths, *labels, *scale, *out); err != nil {
		klog.Errorf("%+v", err)
		klog.Flush()
		os.Exit(1)
	}
}
