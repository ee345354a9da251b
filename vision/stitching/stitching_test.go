package stitching

import (
	"image"
	"testing"

	"go.viam.com/test"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/stitch/logging"
	"go.viam.com/stitch/rimage/transform"
)

// blockTexture returns a 4x4 pixel blocks texture with pseudo random intensities.
func blockTexture(h, w int) *mat.Dense {
	tex := mat.NewDense(h, w, nil)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			bx, by := uint32(x/4), uint32(y/4)
			v := bx*374761393 + by*668265263
			v = (v ^ (v >> 13)) * 1274126177
			v ^= v >> 16
			tex.Set(y, x, float64(v%256)/255)
		}
	}
	return tex
}

func TestAlignImagesTranslation(t *testing.T) {
	logger := logging.NewTestLogger(t)
	tex := blockTexture(80, 80)
	// pixel (r, c) of img2 is pixel (r+3, c+5) of img1
	img1 := mat.DenseCopyOf(tex.Slice(0, 64, 0, 64))
	img2 := mat.DenseCopyOf(tex.Slice(3, 67, 5, 69))

	cfg := DefaultConfig()
	cfg.Seed = 1
	alignment, err := AlignImages(img1, img2, cfg, nil, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(alignment.Descriptors1), test.ShouldEqual, len(alignment.KeyPoints1))
	test.That(t, len(alignment.Descriptors2), test.ShouldEqual, len(alignment.KeyPoints2))
	test.That(t, len(alignment.Mask), test.ShouldEqual, len(alignment.Matches))
	test.That(t, len(alignment.Inliers), test.ShouldBeGreaterThan, 50)

	expected := mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, 1, 0,
		3, 5, 1,
	})
	test.That(t, mat.EqualApprox(alignment.H, expected, 1e-6), test.ShouldBeTrue)

	kps1, kps2, err := alignment.InlierKeyPoints()
	test.That(t, err, test.ShouldBeNil)
	for i := range kps1 {
		test.That(t, kps1[i].Sub(kps2[i]), test.ShouldResemble, image.Point{5, 3})
	}

	t.Run("reproducible", func(t *testing.T) {
		again, err := AlignImages(img1, img2, cfg, transform.NewRandSampler(cfg.Seed), logger)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, again.Mask, test.ShouldResemble, alignment.Mask)
		test.That(t, mat.Equal(again.H, alignment.H), test.ShouldBeTrue)
	})
}

func TestAlignImagesErrors(t *testing.T) {
	logger := logging.NewTestLogger(t)
	tex := blockTexture(64, 64)

	_, err := AlignImages(&mat.Dense{}, tex, DefaultConfig(), nil, logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "first image")

	// a flat image has no corner to match against
	flat := mat.NewDense(64, 64, nil)
	_, err = AlignImages(tex, flat, DefaultConfig(), nil, logger)
	test.That(t, err, test.ShouldNotBeNil)

	cfg := DefaultConfig()
	cfg.Harris = nil
	_, err = AlignImages(tex, tex, cfg, nil, logger)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestAlignImagesStageLogs(t *testing.T) {
	logger, observed := logging.NewObservedTestLogger(t)
	tex := blockTexture(64, 64)
	_, err := AlignImages(tex, tex, DefaultConfig(), nil, logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, observed.FilterMessage("keypoints detected").Len(), test.ShouldEqual, 1)
	test.That(t, observed.FilterMessage("descriptors matched").Len(), test.ShouldEqual, 1)
	test.That(t, observed.FilterMessage("affine transform estimated").Len(), test.ShouldEqual, 1)
}

func TestDetectAndDescribe(t *testing.T) {
	kps, descs, err := detectAndDescribe(blockTexture(64, 64), DefaultConfig())
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(kps), test.ShouldBeGreaterThan, 0)
	test.That(t, len(descs), test.ShouldEqual, len(kps))
	for i, kp := range kps {
		test.That(t, kp.X, test.ShouldBeGreaterThanOrEqualTo, 8)
		test.That(t, kp.X, test.ShouldBeLessThan, 56)
		test.That(t, kp.Y, test.ShouldBeGreaterThanOrEqualTo, 8)
		test.That(t, kp.Y, test.ShouldBeLessThan, 56)
		test.That(t, len(descs[i]), test.ShouldEqual, 256)
	}
}
