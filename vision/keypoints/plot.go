package keypoints

import (
	"image"

	"github.com/fogleman/gg"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
)

// PlotKeypoints plots keypoints on image.
func PlotKeypoints(img image.Image, kps KeyPoints, outName string) error {
	w, h := img.Bounds().Dx(), img.Bounds().Dy()

	dc := gg.NewContext(w, h)
	dc.DrawImage(img, 0, 0)

	// draw keypoints on image
	dc.SetRGBA(0, 0, 1, 0.5)
	for _, p := range kps {
		dc.DrawCircle(float64(p.X), float64(p.Y), float64(3.0))
		dc.Fill()
	}
	return dc.SavePNG(outName)
}

// PlotMatchedLines draws img1 and img2 side by side and joins every pair of matched keypoints with a line.
// kps1 and kps2 must be in match order, as returned by GetMatchingKeyPoints. Every match gets its own hue.
func PlotMatchedLines(img1, img2 image.Image, kps1, kps2 KeyPoints, outName string) error {
	if len(kps1) != len(kps2) {
		return errors.Errorf("got %d and %d matched keypoints", len(kps1), len(kps2))
	}
	w1, h1 := img1.Bounds().Dx(), img1.Bounds().Dy()
	w2, h2 := img2.Bounds().Dx(), img2.Bounds().Dy()
	h := h1
	if h2 > h {
		h = h2
	}

	dc := gg.NewContext(w1+w2, h)
	dc.DrawImage(img1, 0, 0)
	dc.DrawImage(img2, w1, 0)

	dc.SetLineWidth(1)
	for i := range kps1 {
		x1, y1 := float64(kps1[i].X), float64(kps1[i].Y)
		x2, y2 := float64(kps2[i].X+w1), float64(kps2[i].Y)
		dc.SetColor(matchColor(i, len(kps1)))
		dc.DrawLine(x1, y1, x2, y2)
		dc.Stroke()
		dc.SetRGBA(1, 0, 0, 0.8)
		dc.DrawCircle(x1, y1, 2)
		dc.DrawCircle(x2, y2, 2)
		dc.Fill()
	}
	return dc.SavePNG(outName)
}

func matchColor(i, n int) colorful.Color {
	return colorful.Hsv(360*float64(i)/float64(n), 0.9, 0.9)
}
