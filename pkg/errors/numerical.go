package errors

import (
	"fmt"
	"math"
)

// CheckNumericalStability checks if payoff values contain NaN or Inf
// and returns a ComputationError if any is found.
func CheckNumericalStability(operation string, values []float64) error {
	var unstable []float64
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			unstable = append(unstable, v)
			if len(unstable) >= 10 {
				break
			}
		}
	}
	if len(unstable) > 0 {
		return NewComputationError(operation, "ranking function produced non-finite values", unstable)
	}
	return nil
}

// CheckScalar checks a single scalar value for numerical instability.
func CheckScalar(operation string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return NewComputationError(operation, "non-finite value", []float64{value})
	}
	return nil
}

// CheckLength returns a ComputationError when a ranking function returns a
// score vector whose length does not match the number of rows it was given.
func CheckLength(operation string, want, got int) error {
	if want != got {
		return NewComputationError(operation,
			fmt.Sprintf("ranking function returned %d scores for %d rows", got, want), nil)
	}
	return nil
}

// SafeDivide performs division with protection against division by zero.
// Returns 0 if denominator is zero or close to zero.
func SafeDivide(numerator, denominator float64) float64 {
	if math.Abs(denominator) < 1e-10 {
		return 0
	}
	return numerator / denominator
}
