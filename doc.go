// Package cascade trains the fully-connected head of a convolutional detector on top of the
// frozen filters of a previously trained recognition model.
//
// # Building Networks
//
// A Network is a linear chain of Layers, each of which has an Operator that determines its
// values and the backpropagation through it. Operators with trainable parameters implement
// Adjustable; the final Operator must be a Classifier. For brevity, cascade is abbreviated 'cs'.
//
//	net := new(cs.Network)
//	net.AddInput("input", 1, 28, 28)
//	net.Add("conv-pool-1", operators.ConvPool(rec.Conv1W, rec.Conv1B, rec.PoolSize))
//	net.Add("conv-pool-2", operators.ConvPool(rec.Conv2W, rec.Conv2B, rec.PoolSize))
//	net.Add("hidden", operators.Neurons(500).WeightInit(initializers.Glorot(rng)))
//	net.Add("hidden-tanh", operators.Tanh())
//	net.Add("output", operators.Neurons(4))
//	net.Add("classifier", operators.Logistic())
//
//	if net.Error() != nil {
//		return net.Error()
//	}
//
// Every Layer has dimensions; the input Layer's are given explicitly, all others are implied
// by their Operator from the Layer before them.
//
// The Network is finished by providing a cost function, an optimizer and a learning rate:
//
//	err := net.Finalize(costfuncs.NLL(), optimizers.SGD(), hyperparams.Constant(0.1))
//
// Only the Params of Adjustable Operators are ever given to the Optimizer, so Operators that
// are not Adjustable (ConvPool, for instance) are frozen for the lifetime of the Network.
//
// # Training
//
// Network.Step performs one minibatch of gradient descent and Network.Errors measures the
// zero-one error of a minibatch. Both take a Batch. The early-stopping loop, Loop, is
// independent of the Network: it drives anything that satisfies Learner, and keeps its
// progress in a TrainingState.
//
// # Saving and Loading
//
// Recognition models and detection checkpoints share a sequential record format (see the
// subpackage "records"). LoadRecognitionModel reads either of them; WriteCheckpoint and
// ReadCheckpoint handle the detection checkpoint.
package cascade
