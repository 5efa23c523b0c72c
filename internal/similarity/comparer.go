// Package similarity provides the embedding comparison capability used by the
// scoring engine. Implementations may run model inference remotely; callers
// treat the returned matrix as plain numeric data.
package similarity

import "context"

// Matrix holds pairwise similarity values in [0,1], len(a) rows by len(b)
// columns.
type Matrix [][]float64

// Zeros builds an all-zero matrix. Providers return this on partial internal
// failure so one bad comparison only depresses that pair's score instead of
// aborting the run.
func Zeros(rows, cols int) Matrix {
	m := make(Matrix, rows)
	for i := range m {
		m[i] = make([]float64, cols)
	}
	return m
}

// Mean returns the average cell value, 0 for an empty matrix.
func (m Matrix) Mean() float64 {
	sum, n := 0.0, 0
	for _, row := range m {
		for _, v := range row {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0.0
	}
	return sum / float64(n)
}

// Count returns how many cells satisfy pred.
func (m Matrix) Count(pred func(float64) bool) int {
	n := 0
	for _, row := range m {
		for _, v := range row {
			if pred(v) {
				n++
			}
		}
	}
	return n
}

// Comparer computes pairwise semantic similarity between two string lists.
//
// Contract: per-call soft failures degrade to an all-zero matrix with a nil
// error; a returned error means the capability itself is unusable (failed
// initialization, cancelled context) and the formation run must stop.
type Comparer interface {
	Compare(ctx context.Context, a, b []string) (Matrix, error)
}

// ComparerFunc adapts a function to the Comparer interface, for tests.
type ComparerFunc func(ctx context.Context, a, b []string) (Matrix, error)

func (f ComparerFunc) Compare(ctx context.Context, a, b []string) (Matrix, error) {
	return f(ctx, a, b)
}
