package utils

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// DistanceType defines the type of distance used in a function.
type DistanceType int

const (
	// Euclidean is DistanceType 0.
	Euclidean DistanceType = iota
	// SquaredEuclidean is DistanceType 1.
	SquaredEuclidean
)

// ComputeDistance computes the distance between two vectors stored in a slice of floats.
func ComputeDistance(p1, p2 []float64, distType DistanceType) (float64, error) {
	switch distType {
	case SquaredEuclidean:
		return SquaredEuclideanDistance(p1, p2)
	case Euclidean:
		return EuclideanDistance(p1, p2)
	default:
		return EuclideanDistance(p1, p2)
	}
}

// PairwiseDistance computes the pairwise distances between 2 sets of points.
// The result has one row per point of pts1 and one column per point of pts2.
func PairwiseDistance(pts1, pts2 [][]float64, distType DistanceType) (*mat.Dense, error) {
	m := len(pts1)
	n := len(pts2)
	if m == 0 || n == 0 {
		return nil, errors.Errorf("cannot compute pairwise distances between sets of size %d and %d", m, n)
	}
	distances := mat.NewDense(m, n, nil)

	for i := 0; i < m; i++ {
		for j := 0; j < n; j++ {
			d, err := ComputeDistance(pts1[i], pts2[j], distType)
			if err != nil {
				return nil, errors.Wrapf(err, "distance between point %d and point %d", i, j)
			}
			distances.Set(i, j, d)
		}
	}
	return distances, nil
}

// SquaredEuclideanDistance computes the squared euclidean distance between 2 vectors.
func SquaredEuclideanDistance(p1, p2 []float64) (float64, error) {
	if len(p1) != len(p2) {
		return -1, errors.Errorf("must have same length, got %d and %d", len(p1), len(p2))
	}
	diff := make([]float64, len(p1))
	floats.SubTo(diff, p1, p2)
	return floats.Dot(diff, diff), nil
}

// EuclideanDistance computes the euclidean distance between 2 vectors.
func EuclideanDistance(p1, p2 []float64) (float64, error) {
	distSquared, err := SquaredEuclideanDistance(p1, p2)
	if err != nil {
		return -1, err
	}
	return math.Sqrt(distSquared), nil
}
