package penalties

import cs "github.com/sharnoff/cascade"

func init() {
	list := []interface{}{
		func(λ, α float64) cs.Penalty { return ElasticNet(α, λ) },
		func(λ, α float64) cs.Penalty { return L1(λ) },
		func(λ, α float64) cs.Penalty { return L2(λ) },
	}

	if err := cs.RegisterAll(list); err != nil {
		panic(err)
	}
}
