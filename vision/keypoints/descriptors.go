package keypoints

import (
	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/mat"
)

type (
	// Descriptor is a numeric summary of the neighborhood of a keypoint.
	Descriptor []float64
	// Descriptors holds one Descriptor per keypoint, in keypoint order.
	Descriptors []Descriptor
)

// DescriptorFunc turns an image patch into a Descriptor with one value per patch element.
type DescriptorFunc interface {
	Describe(patch mat.Matrix) Descriptor
}

// DescriptorFuncOf adapts an ordinary function to a DescriptorFunc.
type DescriptorFuncOf func(patch mat.Matrix) Descriptor

// Describe calls f(patch).
func (f DescriptorFuncOf) Describe(patch mat.Matrix) Descriptor {
	return f(patch)
}

// SimpleDescriptorFunc is the DescriptorFunc of SimpleDescriptor.
var SimpleDescriptorFunc DescriptorFunc = DescriptorFuncOf(SimpleDescriptor)

// SimpleDescriptor normalizes the patch values to zero mean and unit standard deviation and
// flattens them row by row. The normalization makes the descriptor robust to changes in lighting.
// A uniform patch has a standard deviation of 0; it is divided by 1 instead and gives zeros.
func SimpleDescriptor(patch mat.Matrix) Descriptor {
	values := flatten(patch)
	if len(values) == 0 {
		return Descriptor{}
	}
	// errors are only returned for empty input
	avg, _ := stats.Mean(values)
	std, _ := stats.StandardDeviation(values)
	if std == 0 {
		std = 1
	}
	desc := make(Descriptor, len(values))
	for i, v := range values {
		desc[i] = (v - avg) / std
	}
	return desc
}

func flatten(m mat.Matrix) stats.Float64Data {
	r, c := m.Dims()
	values := make(stats.Float64Data, 0, r*c)
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			values = append(values, m.At(i, j))
		}
	}
	return values
}

// DescribeKeypoints computes one descriptor per keypoint with desc over the patchSize x patchSize
// patch around it. The patch spans [kp-patchSize/2, kp+(patchSize+1)/2) in both directions.
//
// There is no bounds check: ranges near the border are resolved like slice expressions that
// count a negative start from the end of the axis and clamp to its length, so keypoints too
// close to the border are described from a truncated, possibly empty, patch.
func DescribeKeypoints(img *mat.Dense, kps KeyPoints, desc DescriptorFunc, patchSize int) Descriptors {
	descs := make(Descriptors, 0, len(kps))
	for _, kp := range kps {
		descs = append(descs, desc.Describe(extractPatch(img, kp.Y, kp.X, patchSize)))
	}
	return descs
}

func extractPatch(img *mat.Dense, y, x, patchSize int) mat.Matrix {
	h, w := img.Dims()
	r0, r1 := resolveRange(y-patchSize/2, y+(patchSize+1)/2, h)
	c0, c1 := resolveRange(x-patchSize/2, x+(patchSize+1)/2, w)
	if r0 == r1 || c0 == c1 {
		return &mat.Dense{}
	}
	return img.Slice(r0, r1, c0, c1)
}

// resolveRange maps [start, stop) onto an axis of length n: negative bounds count from the end,
// bounds clamp to [0, n] and an inverted range becomes empty.
func resolveRange(start, stop, n int) (int, int) {
	clamp := func(i int) int {
		if i < 0 {
			i += n
			if i < 0 {
				return 0
			}
			return i
		}
		if i > n {
			return n
		}
		return i
	}
	start, stop = clamp(start), clamp(stop)
	if stop < start {
		stop = start
	}
	return start, stop
}
