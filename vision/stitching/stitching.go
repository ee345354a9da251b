package stitching

import (
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/stitch/logging"
	"go.viam.com/stitch/rimage/transform"
	"go.viam.com/stitch/vision/keypoints"
)

// Alignment holds the output of every stage of AlignImages.
type Alignment struct {
	KeyPoints1   keypoints.KeyPoints
	KeyPoints2   keypoints.KeyPoints
	Descriptors1 keypoints.Descriptors
	Descriptors2 keypoints.Descriptors
	Matches      keypoints.DescriptorMatches
	*transform.RANSACResult
}

// InlierKeyPoints returns the matched keypoints of both images kept by RANSAC, in match order.
func (a *Alignment) InlierKeyPoints() (keypoints.KeyPoints, keypoints.KeyPoints, error) {
	return keypoints.GetMatchingKeyPoints(a.Inliers, a.KeyPoints1, a.KeyPoints2)
}

// AlignImages estimates the affine transform mapping the (row, column) coordinates of img2 onto
// those of img1: corners are detected and described in both images, matched, and the transform is
// fit robustly on the matches. Both images are processed concurrently. If sampler is nil, RANSAC
// samples from a source seeded with cfg.Seed.
func AlignImages(img1, img2 *mat.Dense, cfg *Config, sampler transform.Sampler, logger logging.Logger) (*Alignment, error) {
	if err := cfg.Validate(""); err != nil {
		return nil, err
	}
	if sampler == nil {
		sampler = transform.NewRandSampler(cfg.Seed)
	}
	var (
		kps1, kps2   keypoints.KeyPoints
		desc1, desc2 keypoints.Descriptors
	)
	var group errgroup.Group
	group.Go(func() (err error) {
		kps1, desc1, err = detectAndDescribe(img1, cfg)
		return errors.Wrap(err, "first image")
	})
	group.Go(func() (err error) {
		kps2, desc2, err = detectAndDescribe(img2, cfg)
		return errors.Wrap(err, "second image")
	})
	if err := group.Wait(); err != nil {
		return nil, err
	}
	logger.Debugw("keypoints detected", "image1", len(kps1), "image2", len(kps2))

	matches, err := keypoints.MatchDescriptors(desc1, desc2, cfg.Matching)
	if err != nil {
		return nil, err
	}
	logger.Debugw("descriptors matched", "matches", len(matches))

	res, err := transform.RANSAC(kps1, kps2, matches, cfg.RANSAC, sampler, logger)
	if err != nil {
		return nil, err
	}
	logger.Debugw("affine transform estimated", "inliers", len(res.Inliers), "matches", len(matches))
	return &Alignment{
		KeyPoints1:   kps1,
		KeyPoints2:   kps2,
		Descriptors1: desc1,
		Descriptors2: desc2,
		Matches:      matches,
		RANSACResult: res,
	}, nil
}

func detectAndDescribe(img *mat.Dense, cfg *Config) (keypoints.KeyPoints, keypoints.Descriptors, error) {
	response, err := keypoints.HarrisCorners(img, cfg.Harris)
	if err != nil {
		return nil, nil, err
	}
	kps := keypoints.CornerPeaks(response, cfg.Peaks)
	descs := keypoints.DescribeKeypoints(img, kps, keypoints.SimpleDescriptorFunc, cfg.PatchSize)
	return kps, descs, nil
}
