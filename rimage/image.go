package rimage

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	_ "github.com/lmittmann/ppm" // register ppm
	"github.com/pkg/errors"
	_ "github.com/xfmoulet/qoi" // register qoi
	// register extra decoders for imaging.Open.
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
	"gonum.org/v1/gonum/mat"
)

// GrayFloat64FromImage converts an image to a row-major float64 intensity matrix with values
// in [0, 1]. Row 0 is the top of the image.
func GrayFloat64FromImage(img image.Image) *mat.Dense {
	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w == 0 || h == 0 {
		return &mat.Dense{}
	}
	out := mat.NewDense(h, w, nil)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			g := color.Gray16Model.Convert(img.At(bounds.Min.X+x, bounds.Min.Y+y)).(color.Gray16)
			out.Set(y, x, float64(g.Y)/0xffff)
		}
	}
	return out
}

// ReadImageFromFile decodes the image at path, applying its EXIF orientation if any.
func ReadImageFromFile(path string) (image.Image, error) {
	img, err := imaging.Open(path, imaging.AutoOrientation(true))
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read image %q", path)
	}
	if img.Bounds().Empty() {
		return nil, errors.Errorf("image %q is empty", path)
	}
	return img, nil
}
