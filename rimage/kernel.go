package rimage

import (
	"image"

	"github.com/pkg/errors"
)

// Kernel is a dense convolution matrix. Content is indexed [row][column].
type Kernel struct {
	Content [][]float64
	Width   int
	Height  int
}

// NewKernel returns a zero Kernel of the given size.
func NewKernel(width, height int) (*Kernel, error) {
	if width < 1 || height < 1 {
		return nil, errors.Errorf("kernel size must be positive, got %dx%d", width, height)
	}
	content := make([][]float64, height)
	for i := range content {
		content[i] = make([]float64, width)
	}
	return &Kernel{content, width, height}, nil
}

// NewOnesKernel returns a size x size Kernel where every element equals 1, i.e. a box window.
func NewOnesKernel(size int) (*Kernel, error) {
	k, err := NewKernel(size, size)
	if err != nil {
		return nil, err
	}
	for y := range k.Content {
		for x := range k.Content[y] {
			k.Content[y][x] = 1
		}
	}
	return k, nil
}

// NewRowKernel returns a 1-row Kernel applied along image columns.
func NewRowKernel(values ...float64) *Kernel {
	return &Kernel{[][]float64{append([]float64(nil), values...)}, len(values), 1}
}

// NewColumnKernel returns a 1-column Kernel applied along image rows.
func NewColumnKernel(values ...float64) *Kernel {
	content := make([][]float64, len(values))
	for i, v := range values {
		content[i] = []float64{v}
	}
	return &Kernel{content, 1, len(values)}
}

// At returns the kernel value at column x and row y.
func (k *Kernel) At(x, y int) float64 {
	return k.Content[y][x]
}

// Size returns the kernel size as an image.Point.
func (k *Kernel) Size() image.Point {
	return image.Point{k.Width, k.Height}
}

// Scale returns a copy of the kernel with every element multiplied by f.
func (k *Kernel) Scale(f float64) *Kernel {
	content := make([][]float64, k.Height)
	for y := range k.Content {
		content[y] = make([]float64, k.Width)
		for x := range k.Content[y] {
			content[y][x] = k.Content[y][x] * f
		}
	}
	return &Kernel{content, k.Width, k.Height}
}

// GetSobelX returns the Kernel responding to intensity changes along columns (vertical edges).
func GetSobelX() Kernel {
	return Kernel{
		[][]float64{
			{1, 0, -1},
			{2, 0, -2},
			{1, 0, -1},
		},
		3,
		3,
	}
}

// GetSobelY returns the Kernel responding to intensity changes along rows (horizontal edges).
func GetSobelY() Kernel {
	return Kernel{
		[][]float64{
			{1, 2, 1},
			{0, 0, 0},
			{-1, -2, -1},
		},
		3,
		3,
	}
}
