package cascade

import (
	"strconv"
)

// Error is a wrapper for specific types of errors for which there is no additional information
// necessary. These errors are defined as global variables, and can be compared against the
// result of errors.Cause().
type Error struct{ string }

func (err Error) Error() string {
	return err.string
}

// These are the global errors that may be returned or panicked.
var (
	ErrDimensionMismatch = Error{"Dimensions do not match"}
	ErrNoBatches         = Error{"Split has no complete minibatches"}
	ErrNetNotFinalized   = Error{"Network has not been finalized"}
	ErrNetFinalized      = Error{"Network has already been finalized"}
	ErrNotClassifier     = Error{"Final Operator is not a Classifier"}
	ErrRegisterWrongType = Error{"Type is not recognized"}
	ErrRegisterNilReturn = Error{"Function return is nil"}
)

// NilArgError documents errors resulting from certain arguments provided to a function being nil.
type NilArgError struct{ string }

func (err NilArgError) Error() string {
	return err.string + " is nil"
}

// SizeMismatchError results from a slice or tensor having a different length than expected.
// Name describes the value that was mis-sized.
type SizeMismatchError struct {
	Expected, Got int
	Name          string
}

func (err SizeMismatchError) Error() string {
	return "Size of " + err.Name + " does not match: expected " + strconv.Itoa(err.Expected) + ", got " + strconv.Itoa(err.Got)
}
