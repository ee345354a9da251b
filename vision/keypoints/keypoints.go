// Package keypoints contains the detection, description and matching of keypoints in an image:
// - Harris corner response and peak selection
// - normalized patch descriptors
// - nearest neighbor descriptor matching
package keypoints

import (
	"image"

	"gonum.org/v1/gonum/mat"
)

type (
	// KeyPoint is an image.Point that contains coordinates of a kp. Y is the row and X the column.
	KeyPoint image.Point // keypoint type
	// KeyPoints is a slice of image.Point that contains several kps.
	KeyPoints []image.Point // set of keypoints type
)

// ToDense returns the keypoints as an N x 2 matrix whose rows are (row, column).
// It returns an empty matrix when there are no keypoints.
func (kps KeyPoints) ToDense() *mat.Dense {
	if len(kps) == 0 {
		return &mat.Dense{}
	}
	out := mat.NewDense(len(kps), 2, nil)
	for i, kp := range kps {
		out.Set(i, 0, float64(kp.Y))
		out.Set(i, 1, float64(kp.X))
	}
	return out
}
