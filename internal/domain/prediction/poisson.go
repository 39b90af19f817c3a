package prediction

import "math"

// poissonPMF returns P(X = k) for X ~ Poisson(lambda).
func poissonPMF(k int, lambda float64) float64 {
	if k < 0 || lambda < 0 {
		return 0
	}
	if lambda == 0 {
		if k == 0 {
			return 1
		}
		return 0
	}
	// exp(-λ + k·ln λ − ln k!) keeps intermediate terms in range for the
	// small k this engine uses.
	logPMF := -lambda + float64(k)*math.Log(lambda) - logFactorial(k)
	return math.Exp(logPMF)
}

func logFactorial(k int) float64 {
	out := 0.0
	for i := 2; i <= k; i++ {
		out += math.Log(float64(i))
	}
	return out
}
