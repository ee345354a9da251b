package transform

import (
	"math"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/stitch/utils"
)

// ErrPointCountMismatch is returned when two point sets that should be in correspondence differ in size.
var ErrPointCountMismatch = errors.New("sets of points p1 and p2 must have the same number of elements")

var machineEpsilon = math.Nextafter(1, 2) - 1

// PadHomogeneous appends a column of ones to pts, turning N points of dimension P into N
// homogeneous points of dimension P+1.
func PadHomogeneous(pts mat.Matrix) *mat.Dense {
	r, c := pts.Dims()
	padded := mat.NewDense(r, c+1, nil)
	padded.Slice(0, r, 0, c).(*mat.Dense).Copy(pts)
	for i := 0; i < r; i++ {
		padded.Set(i, c, 1)
	}
	return padded
}

// LeastSquares returns the minimum norm solution x of a*x = b in the least squares sense.
// Singular values of a below eps*max(rows, cols)*max(singular values) are treated as zero,
// so rank deficient systems are solved without error.
func LeastSquares(a, b mat.Matrix) (*mat.Dense, error) {
	m, n := a.Dims()
	bm, k := b.Dims()
	if m != bm {
		return nil, errors.Errorf("left and right hand sides differ in rows: %d and %d", m, bm)
	}
	mats, err := performSVD(a)
	if err != nil {
		return nil, err
	}
	values := mats.values
	cutoff := machineEpsilon * float64(utils.MaxInt(m, n)) * values[0]

	// x = V * S^+ * U^T * b
	var utb mat.Dense
	utb.Mul(mats.u.T(), b)
	for i, s := range values {
		inv := 0.
		if s > cutoff {
			inv = 1 / s
		}
		for j := 0; j < k; j++ {
			utb.Set(i, j, utb.At(i, j)*inv)
		}
	}
	x := mat.NewDense(n, k, nil)
	x.Mul(mats.v, &utb)
	return x, nil
}

type thinSVD struct {
	u      *mat.Dense
	v      *mat.Dense
	values []float64
}

// performSVD performs a thin SVD of m. Singular values are in decreasing order.
func performSVD(m mat.Matrix) (*thinSVD, error) {
	var svd mat.SVD
	if ok := svd.Factorize(m, mat.SVDThin); !ok {
		return nil, errors.New("singular value decomposition failed")
	}
	u, v := &mat.Dense{}, &mat.Dense{}
	svd.UTo(u)
	svd.VTo(v)
	return &thinSVD{u: u, v: v, values: svd.Values(nil)}, nil
}

// FitAffineMatrix fits the affine matrix H mapping p2 onto p1, such that pad(p2)*H is as close as
// possible to pad(p1) in the least squares sense. Points are the rows of p1 and p2, so for 2D
// points H is 3x3. The last column of H is always exactly (0, ..., 0, 1).
func FitAffineMatrix(p1, p2 *mat.Dense) (*mat.Dense, error) {
	r1, c1 := p1.Dims()
	r2, c2 := p2.Dims()
	if r1 != r2 {
		return nil, errors.Wrapf(ErrPointCountMismatch, "got %d and %d", r1, r2)
	}
	if p1.IsEmpty() || p2.IsEmpty() {
		return nil, errors.New("cannot fit an affine matrix without points")
	}
	if c1 != c2 {
		return nil, errors.Errorf("points must have the same dimension, got %d and %d", c1, c2)
	}
	h, err := LeastSquares(PadHomogeneous(p2), PadHomogeneous(p1))
	if err != nil {
		return nil, errors.Wrap(err, "cannot fit affine matrix")
	}
	forceAffineColumn(h)
	return h, nil
}

// forceAffineColumn overwrites the last column of h with (0, ..., 0, 1). The solver only
// recovers it up to numerical precision.
func forceAffineColumn(h *mat.Dense) {
	r, c := h.Dims()
	for i := 0; i < r-1; i++ {
		h.Set(i, c-1, 0)
	}
	h.Set(r-1, c-1, 1)
}

// ApplyAffine applies H to points given as the rows of pts and returns the transformed points,
// without their homogeneous coordinate.
func ApplyAffine(h, pts *mat.Dense) *mat.Dense {
	r, c := pts.Dims()
	var out mat.Dense
	out.Mul(PadHomogeneous(pts), h)
	return mat.DenseCopyOf(out.Slice(0, r, 0, c))
}

// ApplyAffinePoint applies a 3x3 H to a single 2D point. X is multiplied with the first row of H,
// so a point given as (row, column) comes back as (row, column).
func ApplyAffinePoint(h mat.Matrix, pt r2.Point) r2.Point {
	return r2.Point{
		X: pt.X*h.At(0, 0) + pt.Y*h.At(1, 0) + h.At(2, 0),
		Y: pt.X*h.At(0, 1) + pt.Y*h.At(1, 1) + h.At(2, 1),
	}
}
