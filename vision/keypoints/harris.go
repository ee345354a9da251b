package keypoints

import (
	"image"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/stitch/rimage"
	"go.viam.com/stitch/utils"
)

// HarrisConfig stores the parameters of the Harris corner response.
type HarrisConfig struct {
	WindowSize int     `json:"window_size"`
	K          float64 `json:"k"`
}

// DefaultHarrisConfig returns a 3x3 window and k=0.04, a standard value.
func DefaultHarrisConfig() *HarrisConfig {
	return &HarrisConfig{WindowSize: 3, K: 0.04}
}

// HarrisCorners computes the Harris response R = det(M) - k*trace(M)^2 at every pixel of img,
// where M is the structure tensor summed over a WindowSize x WindowSize box. The box sum treats
// pixels outside of the image as zero. No threshold or normalization is applied.
func HarrisCorners(img *mat.Dense, cfg *HarrisConfig) (*mat.Dense, error) {
	if img.IsEmpty() {
		return nil, errors.New("cannot compute corner response of an empty image")
	}
	window, err := rimage.NewOnesKernel(cfg.WindowSize)
	if err != nil {
		return nil, errors.Wrap(err, "invalid harris window")
	}
	dx, dy, err := rimage.SobelGradients(img)
	if err != nil {
		return nil, err
	}
	var dxx, dyy, dxy mat.Dense
	dxx.MulElem(dx, dx)
	dyy.MulElem(dy, dy)
	dxy.MulElem(dx, dy)

	sxx, err := rimage.ConvolveFloat64(&dxx, window, rimage.BorderConstant)
	if err != nil {
		return nil, err
	}
	syy, err := rimage.ConvolveFloat64(&dyy, window, rimage.BorderConstant)
	if err != nil {
		return nil, err
	}
	sxy, err := rimage.ConvolveFloat64(&dxy, window, rimage.BorderConstant)
	if err != nil {
		return nil, err
	}

	h, w := img.Dims()
	response := mat.NewDense(h, w, nil)
	utils.ParallelForEachPixel(image.Point{w, h}, func(x, y int) {
		a, b, c := sxx.At(y, x), sxy.At(y, x), syy.At(y, x)
		det := a*c - b*b
		trace := a + c
		response.Set(y, x, det-cfg.K*trace*trace)
	})
	return response, nil
}
