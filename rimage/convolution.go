package rimage

import (
	"image"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/stitch/utils"
)

// BorderPad describes how values outside of the image are made up during filtering.
type BorderPad int

const (
	// BorderConstant pads with a constant fill value: 0 0 | a b c d | 0 0.
	BorderConstant BorderPad = iota
	// BorderReplicate repeats the edge value: a a | a b c d | d d.
	BorderReplicate
	// BorderReflect mirrors around the edge, repeating it: b a | a b c d | d c.
	BorderReflect
)

// kernelOrigin returns how many padding cells a kernel of the given length needs before and
// after a line. The output sample is aligned with kernel index length/2, so an even kernel
// reaches one cell further forward than backward.
func kernelOrigin(length int) (before, after int) {
	return (length - 1) / 2, length / 2
}

// borderIndex maps an out of range index i into [0, n) following the border rule.
// ok is false when the cell should be filled with the constant instead.
func borderIndex(i, n int, border BorderPad) (int, bool) {
	if i >= 0 && i < n {
		return i, true
	}
	switch border {
	case BorderReplicate:
		return utils.ClampInt(i, 0, n-1), true
	case BorderReflect:
		period := 2 * n
		i %= period
		if i < 0 {
			i += period
		}
		if i >= n {
			i = period - 1 - i
		}
		return i, true
	case BorderConstant:
		return 0, false
	default:
		return 0, false
	}
}

// PaddingFloat64 pads a float64 image so that a kernel of kernelSize can be slid over every
// original pixel. fill is only used with BorderConstant.
func PaddingFloat64(m *mat.Dense, kernelSize image.Point, border BorderPad, fill float64) (*mat.Dense, error) {
	h, w := m.Dims()
	if kernelSize.X < 1 || kernelSize.Y < 1 {
		return nil, errors.Errorf("invalid kernel size %v", kernelSize)
	}
	top, bottom := kernelOrigin(kernelSize.Y)
	left, right := kernelOrigin(kernelSize.X)
	padded := mat.NewDense(h+top+bottom, w+left+right, nil)
	ph, pw := padded.Dims()
	for py := 0; py < ph; py++ {
		y, yIn := borderIndex(py-top, h, border)
		for px := 0; px < pw; px++ {
			x, xIn := borderIndex(px-left, w, border)
			if !yIn || !xIn {
				padded.Set(py, px, fill)
				continue
			}
			padded.Set(py, px, m.At(y, x))
		}
	}
	return padded, nil
}

// ConvolveFloat64 convolves a float64 image with the kernel. The kernel is flipped, as in a true
// convolution, and the output has the shape of the input. There is no clamping in this case.
func ConvolveFloat64(m *mat.Dense, kernel *Kernel, border BorderPad) (*mat.Dense, error) {
	h, w := m.Dims()
	if h == 0 || w == 0 {
		return nil, errors.New("cannot convolve an empty image")
	}
	kernelSize := kernel.Size()
	padded, err := PaddingFloat64(m, kernelSize, border, 0)
	if err != nil {
		return nil, err
	}
	result := mat.NewDense(h, w, nil)
	utils.ParallelForEachPixel(image.Point{w, h}, func(x, y int) {
		sum := 0.
		for ky := 0; ky < kernelSize.Y; ky++ {
			for kx := 0; kx < kernelSize.X; kx++ {
				pixel := padded.At(y+kernelSize.Y-1-ky, x+kernelSize.X-1-kx)
				sum += pixel * kernel.At(kx, ky)
			}
		}
		result.Set(y, x, sum)
	})
	return result, nil
}
