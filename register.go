package cascade

import (
	"sort"

	"github.com/pkg/errors"
)

var (
	classifiers = make(map[string]func() Classifier)
	penalties   = make(map[string]func(lambda, alpha float64) Penalty)
)

// RegisterAll registers every constructor in the list, each under the TypeString of the value it
// returns. Constructors may have the types:
//
//	func() Classifier
//	func(lambda, alpha float64) Penalty
//
// Anything else gives ErrRegisterWrongType. Registration is intended to happen in the init
// functions of the packages that provide the types.
func RegisterAll(list []interface{}) error {
	for i, f := range list {
		var err error
		switch f := f.(type) {
		case func() Classifier:
			err = RegisterClassifier(f)
		case func(float64, float64) Penalty:
			err = RegisterPenalty(f)
		default:
			err = ErrRegisterWrongType
		}

		if err != nil {
			return errors.Wrapf(err, "Can't register item %d\n", i)
		}
	}

	return nil
}

// RegisterClassifier registers the constructor under the TypeString of the Classifier it
// returns. Registering the same name twice is an error.
func RegisterClassifier(f func() Classifier) error {
	c := f()
	if c == nil {
		return ErrRegisterNilReturn
	}

	name := c.TypeString()
	if _, ok := classifiers[name]; ok {
		return errors.Errorf("Classifier %q is already registered", name)
	}

	classifiers[name] = f
	return nil
}

// RegisterPenalty registers the constructor under the TypeString of the Penalty it returns.
// Penalties with a single parameter ignore alpha. Registering the same name twice is an error.
func RegisterPenalty(f func(lambda, alpha float64) Penalty) error {
	p := f(0, 0)
	if p == nil {
		return ErrRegisterNilReturn
	}

	name := p.TypeString()
	if _, ok := penalties[name]; ok {
		return errors.Errorf("Penalty %q is already registered", name)
	}

	penalties[name] = f
	return nil
}

// NewClassifier returns a new Classifier of the registered type with the given name.
func NewClassifier(name string) (Classifier, error) {
	f, ok := classifiers[name]
	if !ok {
		return nil, errors.Errorf("Unknown classifier %q (have %v)", name, Classifiers())
	}

	return f(), nil
}

// NewPenalty returns a new Penalty of the registered type with the given name.
func NewPenalty(name string, lambda, alpha float64) (Penalty, error) {
	f, ok := penalties[name]
	if !ok {
		return nil, errors.Errorf("Unknown penalty %q (have %v)", name, Penalties())
	}

	return f(lambda, alpha), nil
}

// Classifiers returns the names of every registered Classifier, sorted.
func Classifiers() []string {
	return sortedKeys(len(classifiers), func(add func(string)) {
		for k := range classifiers {
			add(k)
		}
	})
}

// Penalties returns the names of every registered Penalty, sorted.
func Penalties() []string {
	return sortedKeys(len(penalties), func(add func(string)) {
		for k := range penalties {
			add(k)
		}
	})
}

func sortedKeys(n int, each func(func(string))) []string {
	ks := make([]string, 0, n)
	each(func(k string) { ks = append(ks, k) })
	sort.Strings(ks)
	return ks
}
