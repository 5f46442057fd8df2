package cascade

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// CorrectRound returns whether or not every output rounds to its label. It assumes
// len(outs) == len(labels).
func CorrectRound(outs []float64, labels []int) bool {
	for i := range outs {
		// rounds to 0 if a number is < 0.5, 1 if > 0.5
		if int(math.Round(outs[i])) != labels[i] {
			return false
		}
	}

	return true
}

// CorrectHighest returns whether or not the largest output is at the index given by the single
// label. Ties go to the lowest index.
func CorrectHighest(outs []float64, labels []int) bool {
	return len(labels) == 1 && floats.MaxIdx(outs) == labels[0]
}

// OneHot returns a slice of the given size with a 1 at index 'class'. It returns nil if class is
// out of range.
func OneHot(class, size int) []float64 {
	if class < 0 || class >= size {
		return nil
	}

	t := make([]float64, size)
	t[class] = 1
	return t
}

// BatchCounts is the number of complete minibatches in each split of a dataset.
type BatchCounts struct {
	Train, Valid, Test int
}

// NewBatchCounts returns the number of complete minibatches of the given size in each split.
// Trailing samples that do not fill a minibatch are dropped: 1000 and 1001 samples at a batch
// size of 50 both give 20.
func NewBatchCounts(train, valid, test, batchSize int) BatchCounts {
	if batchSize < 1 {
		return BatchCounts{}
	}

	return BatchCounts{train / batchSize, valid / batchSize, test / batchSize}
}
