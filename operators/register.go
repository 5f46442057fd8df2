package operators

import (
	cs "github.com/sharnoff/cascade"
)

func init() {
	list := []interface{}{
		func() cs.Classifier { return Logistic() },
		func() cs.Classifier { return Softmax() },
	}

	if err := cs.RegisterAll(list); err != nil {
		panic(err)
	}
}
