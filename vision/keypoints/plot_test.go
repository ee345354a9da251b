package keypoints

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/disintegration/imaging"
	"go.viam.com/test"
)

func TestPlotKeypoints(t *testing.T) {
	img := imaging.New(40, 30, color.Gray{100})
	out := filepath.Join(t.TempDir(), "kps.png")
	err := PlotKeypoints(img, KeyPoints{image.Point{10, 5}, image.Point{20, 20}}, out)
	test.That(t, err, test.ShouldBeNil)
	plotted, err := imaging.Open(out)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, plotted.Bounds().Dx(), test.ShouldEqual, 40)
	test.That(t, plotted.Bounds().Dy(), test.ShouldEqual, 30)
}

func TestPlotMatchedLines(t *testing.T) {
	img1 := imaging.New(40, 30, color.Gray{100})
	img2 := imaging.New(20, 50, color.Gray{200})
	out := filepath.Join(t.TempDir(), "matches.png")
	kps1 := KeyPoints{image.Point{10, 5}, image.Point{30, 20}}
	kps2 := KeyPoints{image.Point{3, 40}, image.Point{15, 2}}
	test.That(t, PlotMatchedLines(img1, img2, kps1, kps2, out), test.ShouldBeNil)
	plotted, err := imaging.Open(out)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, plotted.Bounds().Dx(), test.ShouldEqual, 60)
	test.That(t, plotted.Bounds().Dy(), test.ShouldEqual, 50)

	bad := filepath.Join(t.TempDir(), "bad.png")
	test.That(t, PlotMatchedLines(img1, img2, kps1, kps2[:1], bad), test.ShouldNotBeNil)
	_, err = os.Stat(bad)
	test.That(t, os.IsNotExist(err), test.ShouldBeTrue)
}

func TestMatchColor(t *testing.T) {
	first := matchColor(0, 3)
	test.That(t, first.R, test.ShouldAlmostEqual, 0.9)
	test.That(t, first.G, test.ShouldAlmostEqual, 0.09)
	test.That(t, first.B, test.ShouldAlmostEqual, 0.09)
	test.That(t, matchColor(1, 3), test.ShouldNotResemble, first)
	test.That(t, matchColor(2, 3), test.ShouldNotResemble, matchColor(1, 3))
}
