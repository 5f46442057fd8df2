// Command detect trains a detection head on top of the convolution filters of a recognition
// model, and optionally writes the trained detection model.
//
// Usage:
//
//	detect -dataset data.rec -recognition-model recog.rec -detection-model detect.rec
//
// With -config, a JSON Config is loaded first and any flags given override it.
package main

import (
	"flag"
	"fmt"
	"os"

	"k8s.io/klog/v2"

	"github.com/sharnoff/cascade/detector"
)

// bind registers the flags for every Config field on fs, with the current values of c as the
// defaults
func bind(fs *flag.FlagSet, c *detector.Config) *string {
	configPath := fs.String("config", "", "JSON config to load before applying flags")

	fs.StringVar(&c.DatasetPath, "dataset", c.DatasetPath, "path of the dataset file")
	fs.StringVar(&c.RecognitionModelPath, "recognition-model", c.RecognitionModelPath, "path of the recognition model")
	fs.StringVar(&c.DetectionModelPath, "detection-model", c.DetectionModelPath, "where to write the detection model; empty to not write it")

	fs.Float64Var(&c.LearningRate, "learning-rate", c.LearningRate, "learning rate of SGD")
	fs.IntVar(&c.Epochs, "epochs", c.Epochs, "maximum number of epochs")
	fs.IntVar(&c.BatchSize, "batch-size", c.BatchSize, "number of samples in each minibatch")

	fs.IntVar(&c.HeadSizes.Hidden, "hidden", c.HeadSizes.Hidden, "number of hidden units")
	fs.IntVar(&c.HeadSizes.Output, "outputs", c.HeadSizes.Output, "number of outputs")
	fs.StringVar(&c.Classifier, "classifier", c.Classifier, "output classifier: logistic or softmax")
	fs.Int64Var(&c.Seed, "seed", c.Seed, "seed for the initialization of the hidden weights")

	fs.StringVar(&c.Regularization.Kind, "regularization", c.Regularization.Kind, "penalty on head weights: l1, l2 or elastic-net")
	fs.Float64Var(&c.Regularization.Lambda, "lambda", c.Regularization.Lambda, "strength of the penalty")
	fs.Float64Var(&c.Regularization.Alpha, "alpha", c.Regularization.Alpha, "L1 ratio of elastic-net")

	fs.IntVar(&c.Patience, "patience", c.Patience, "minimum number of iterations")
	fs.Float64Var(&c.PatienceIncrease, "patience-increase", c.PatienceIncrease, "factor of patience extension on significant improvement")
	fs.Float64Var(&c.ImprovementThreshold, "improvement-threshold", c.ImprovementThreshold, "relative improvement that counts as significant")
	fs.StringVar(&c.Trigger, "validation-trigger", c.Trigger, "when to validate: every-multiple or exactly-at")

	klog.InitFlags(fs)
	return configPath
}

// config parses the command line twice: once to find -config, and once more on top of the
// loaded file so that flags take precedence
func config(args []string) (detector.Config, error) {
	c := detector.DefaultConfig()

	first := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	path := bind(first, &c)
	if err := first.Parse(args); err != nil {
		return c, err
	} else if *path == "" {
		return c, nil
	}

	c, err := detector.LoadConfig(*path)
	if err != nil {
		return c, err
	}

	second := flag.NewFlagSet(os.Args[0], flag.ContinueOnError)
	bind(second, &c)
	return c, second.Parse(args)
}

func main() {
	defer klog.Flush()

	cfg, err := config(os.Args[1:])
	if err == flag.ErrHelp {
		return
	} else if err != nil {
		klog.Errorf("%+v", err)
		klog.Flush()
		os.Exit(2)
	}

	sum, err := detector.Train(cfg)
	if err != nil {
		klog.Errorf("%+v", err)
		klog.Flush()
		os.Exit(1)
	}

	fmt.Printf("best validation error %f %% at iteration %d, with test error %f %%\n",
		sum.State.BestValidationLoss*100, sum.State.BestIteration+1, sum.State.TestScore*100)
	fmt.Printf("stopped by %s after %d epochs (%.2fm)\n", sum.Reason, sum.State.Epoch, sum.Elapsed.Minutes())
}
