package rimage

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// SobelGradients returns the first derivative of the image along columns (dx) and along rows
// (dy). Each derivative is the separable Sobel filter: a [1 2 1]/4 smoothing across the
// derivative direction followed by a [1 0 -1] difference along it, so a unit ramp has a gradient
// of 2 and a constant image has a gradient of exactly 0. The image is mirrored at its borders.
func SobelGradients(img *mat.Dense) (dx, dy *mat.Dense, err error) {
	smooth := []float64{0.25, 0.5, 0.25}
	diff := []float64{1, 0, -1}

	dx, err = separableConvolve(img, NewColumnKernel(smooth...), NewRowKernel(diff...))
	if err != nil {
		return nil, nil, errors.Wrap(err, "horizontal gradient")
	}
	dy, err = separableConvolve(img, NewRowKernel(smooth...), NewColumnKernel(diff...))
	if err != nil {
		return nil, nil, errors.Wrap(err, "vertical gradient")
	}
	return dx, dy, nil
}

func separableConvolve(img *mat.Dense, first, second *Kernel) (*mat.Dense, error) {
	tmp, err := ConvolveFloat64(img, first, BorderReflect)
	if err != nil {
		return nil, err
	}
	return ConvolveFloat64(tmp, second, BorderReflect)
}
