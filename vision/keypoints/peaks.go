package keypoints

import (
	"image"
	"math"

	"gonum.org/v1/gonum/mat"

	"go.viam.com/stitch/utils"
)

// PeakConfig stores the parameters used to pick keypoints out of a corner response.
type PeakConfig struct {
	MinDistance   int     `json:"min_distance"`
	ThresholdAbs  float64 `json:"threshold_abs"`
	ThresholdRel  float64 `json:"threshold_rel"`
	ExcludeBorder int     `json:"exclude_border"`
}

// DefaultPeakConfig keeps peaks above 5% of the strongest response and at least 8 pixels away
// from the border, so a 16x16 patch fits around every keypoint.
func DefaultPeakConfig() *PeakConfig {
	return &PeakConfig{MinDistance: 1, ThresholdRel: 0.05, ExcludeBorder: 8}
}

// CornerPeaks returns the local maxima of response, in row-major order. A pixel is kept when it is
// at least ExcludeBorder pixels inside the image, strictly above the largest of the response
// minimum, ThresholdAbs and ThresholdRel*max(response), and is the maximum of its
// (2*MinDistance+1)^2 neighborhood. Within a plateau only the first pixel is kept.
func CornerPeaks(response *mat.Dense, cfg *PeakConfig) KeyPoints {
	if response.IsEmpty() {
		return KeyPoints{}
	}
	h, w := response.Dims()
	threshold := math.Max(mat.Min(response), cfg.ThresholdAbs)
	threshold = math.Max(threshold, cfg.ThresholdRel*mat.Max(response))
	dist := utils.MaxInt(cfg.MinDistance, 1)
	border := utils.MaxInt(cfg.ExcludeBorder, 0)

	peaks := KeyPoints{}
	for y := border; y < h-border; y++ {
		for x := border; x < w-border; x++ {
			v := response.At(y, x)
			if v <= threshold {
				continue
			}
			if isNeighborhoodMax(response, x, y, dist) {
				peaks = append(peaks, image.Point{x, y})
			}
		}
	}
	return peaks
}

// isNeighborhoodMax tells if (x, y) holds the maximum of its neighborhood. Ties are broken in
// favor of the pixel that comes first in row-major order.
func isNeighborhoodMax(response *mat.Dense, x, y, dist int) bool {
	h, w := response.Dims()
	v := response.At(y, x)
	for ny := utils.MaxInt(y-dist, 0); ny <= utils.MinInt(y+dist, h-1); ny++ {
		for nx := utils.MaxInt(x-dist, 0); nx <= utils.MinInt(x+dist, w-1); nx++ {
			n := response.At(ny, nx)
			if n > v {
				return false
			}
			before := ny < y || (ny == y && nx < x)
			if n == v && before {
				return false
			}
		}
	}
	return true
}
