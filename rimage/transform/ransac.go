package transform

import (
	"math"
	"math/rand"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/stitch/logging"
	"go.viam.com/stitch/utils"
	"go.viam.com/stitch/vision/keypoints"
)

// RANSACConfig stores the parameters of the robust affine estimation. Threshold is compared with
// the squared distance between a point and its transformed match, and SampleFraction is the
// fraction of all matches used to fit each candidate.
type RANSACConfig struct {
	Iterations     int     `json:"iterations"`
	Threshold      float64 `json:"threshold"`
	SampleFraction float64 `json:"sample_fraction"`
}

// DefaultRANSACConfig returns 200 iterations, a squared distance threshold of 20 and samples of
// 20% of the matches.
func DefaultRANSACConfig() *RANSACConfig {
	return &RANSACConfig{Iterations: 200, Threshold: 20, SampleFraction: 0.2}
}

// CheckValid checks if the RANSAC parameters are usable.
func (cfg *RANSACConfig) CheckValid() error {
	if cfg == nil {
		return errors.New("ransac config cannot be nil")
	}
	if cfg.Iterations < 0 {
		return errors.Errorf("number of iterations cannot be negative, got %d", cfg.Iterations)
	}
	if cfg.SampleFraction < 0 || cfg.SampleFraction > 1 {
		return errors.Errorf("sample fraction must be in [0, 1], got %v", cfg.SampleFraction)
	}
	return nil
}

// RANSACResult is the outcome of RANSAC. H maps the homogeneous (row, column, 1) points of the
// second image onto the first one. Mask tells, for every input match, if it is an inlier.
type RANSACResult struct {
	H       *mat.Dense
	Inliers keypoints.DescriptorMatches
	Mask    []bool
}

// Sampler draws k distinct indices in [0, n) uniformly at random.
type Sampler interface {
	Sample(n, k int) []int
}

// RandSampler is a Sampler backed by its own random source.
type RandSampler struct {
	rng *rand.Rand
}

// NewRandSampler returns a Sampler seeded with seed; the same seed always draws the same samples.
func NewRandSampler(seed int64) *RandSampler {
	//nolint:gosec
	return NewRandSamplerFromRand(rand.New(rand.NewSource(seed)))
}

// NewRandSamplerFromRand returns a Sampler drawing from rng.
func NewRandSamplerFromRand(rng *rand.Rand) *RandSampler {
	return &RandSampler{rng: rng}
}

// Sample returns the first k elements of a random permutation of [0, n).
func (s *RandSampler) Sample(n, k int) []int {
	return s.rng.Perm(n)[:k]
}

// RANSAC robustly estimates the affine matrix mapping the matched keypoints of the second set onto
// those of the first one.
//
// Each iteration fits a candidate on floor(SampleFraction*N) matches drawn from sampler and counts
// the matches whose squared distance to their transformed match is below Threshold. The mask of
// the first iteration reaching the highest count is kept, and H is refit on it. If no iteration
// finds an inlier, the mask stays empty and the refit on zero points gives a zero H whose last
// column is (0, 0, 1).
func RANSAC(
	kps1, kps2 keypoints.KeyPoints,
	matches keypoints.DescriptorMatches,
	cfg *RANSACConfig,
	sampler Sampler,
	logger logging.Logger,
) (*RANSACResult, error) {
	if err := cfg.CheckValid(); err != nil {
		return nil, err
	}
	n := len(matches)
	if n == 0 {
		logger.Warn("no matches to estimate an affine transform from")
		return &RANSACResult{H: zeroAffine(3), Inliers: keypoints.DescriptorMatches{}, Mask: []bool{}}, nil
	}
	matchedKps1, matchedKps2, err := keypoints.GetMatchingKeyPoints(matches, kps1, kps2)
	if err != nil {
		return nil, err
	}
	matched1 := PadHomogeneous(matchedKps1.ToDense())
	matched2 := PadHomogeneous(matchedKps2.ToDense())

	nSamples := int(math.Floor(cfg.SampleFraction * float64(n)))
	bestMask := make([]bool, n)
	bestCount := 0
	for iter := 0; iter < cfg.Iterations; iter++ {
		sample := sampler.Sample(n, nSamples)
		if err := checkSample(sample, n, nSamples); err != nil {
			return nil, err
		}
		h, err := fitAffineRows(matched1, matched2, sample)
		if err != nil {
			return nil, err
		}
		mask, err := inlierMask(h, matched1, matched2, cfg.Threshold)
		if err != nil {
			return nil, err
		}
		if count := lo.Count(mask, true); count > bestCount {
			logger.Debugw("better affine candidate", "iteration", iter, "inliers", count, "matches", n)
			bestMask, bestCount = mask, count
		}
	}
	if bestCount == 0 {
		logger.Warnw("no candidate found any inlier, refitting on an empty set",
			"iterations", cfg.Iterations, "matches", n, "threshold", cfg.Threshold)
	}

	inlierRows := lo.Filter(lo.Range(n), func(i, _ int) bool { return bestMask[i] })
	h, err := fitAffineRows(matched1, matched2, inlierRows)
	if err != nil {
		return nil, err
	}
	inliers := lo.Filter(matches, func(_ keypoints.DescriptorMatch, i int) bool { return bestMask[i] })
	return &RANSACResult{H: h, Inliers: inliers, Mask: bestMask}, nil
}

// checkSample ensures a sampler drew k distinct indices in [0, n).
func checkSample(sample []int, n, k int) error {
	if len(sample) != k {
		return errors.Errorf("sampler returned %d indices, expected %d", len(sample), k)
	}
	for _, idx := range sample {
		if idx < 0 || idx >= n {
			return errors.Errorf("sampler returned index %d out of range [0, %d)", idx, n)
		}
	}
	if len(lo.Uniq(sample)) != k {
		return errors.Errorf("sampler returned duplicate indices %v", sample)
	}
	return nil
}

// fitAffineRows fits an affine matrix on the given rows of the homogeneous point sets. Without
// rows the minimum norm solution is zero, so only the forced last column remains.
func fitAffineRows(matched1, matched2 *mat.Dense, rows []int) (*mat.Dense, error) {
	_, c := matched1.Dims()
	if len(rows) == 0 {
		return zeroAffine(c), nil
	}
	sub1 := mat.NewDense(len(rows), c, nil)
	sub2 := mat.NewDense(len(rows), c, nil)
	for i, row := range rows {
		sub1.SetRow(i, matched1.RawRowView(row))
		sub2.SetRow(i, matched2.RawRowView(row))
	}
	h, err := LeastSquares(sub2, sub1)
	if err != nil {
		return nil, errors.Wrap(err, "cannot fit affine candidate")
	}
	forceAffineColumn(h)
	return h, nil
}

func zeroAffine(size int) *mat.Dense {
	h := mat.NewDense(size, size, nil)
	forceAffineColumn(h)
	return h
}

// inlierMask marks the points of matched2 that h maps within a squared distance threshold of
// their counterpart in matched1.
func inlierMask(h, matched1, matched2 *mat.Dense, threshold float64) ([]bool, error) {
	var projected mat.Dense
	projected.Mul(matched2, h)
	n, _ := matched1.Dims()
	mask := make([]bool, n)
	for i := range mask {
		d, err := utils.SquaredEuclideanDistance(projected.RawRowView(i), matched1.RawRowView(i))
		if err != nil {
			return nil, err
		}
		mask[i] = d < threshold
	}
	return mask, nil
}
