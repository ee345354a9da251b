package keypoints

import (
	"image"
	"testing"

	"go.viam.com/test"
)

func TestMatchDescriptors(t *testing.T) {
	cfg := DefaultMatchingConfig()
	desc := Descriptors{{1, 0}, {0, 1}}
	matches, err := MatchDescriptors(desc, desc, cfg)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, matches, test.ShouldResemble, DescriptorMatches{{0, 0}, {1, 1}})

	t.Run("ambiguous match", func(t *testing.T) {
		desc2 := Descriptors{{1, 0}, {1, 0.1}, {0, 1}}
		matches, err := MatchDescriptors(desc, desc2, cfg)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, matches, test.ShouldResemble, DescriptorMatches{{1, 2}})
	})

	t.Run("gap is absolute", func(t *testing.T) {
		// ratio 0.5 but a gap of 0.3
		desc2 := Descriptors{{0.3, 0}, {0.6, 0}}
		matches, err := MatchDescriptors(Descriptors{{0, 0}}, desc2, cfg)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, matches, test.ShouldBeEmpty)
		matches, err = MatchDescriptors(Descriptors{{0, 0}}, desc2, &MatchingConfig{Threshold: 0.2})
		test.That(t, err, test.ShouldBeNil)
		test.That(t, matches, test.ShouldResemble, DescriptorMatches{{0, 0}})
	})

	t.Run("ties keep index order", func(t *testing.T) {
		desc2 := Descriptors{{5, 5}, {1, 0}, {0, 1}}
		matches, err := MatchDescriptors(Descriptors{{0, 0}}, desc2, &MatchingConfig{Threshold: -1})
		test.That(t, err, test.ShouldBeNil)
		test.That(t, matches, test.ShouldResemble, DescriptorMatches{{0, 1}})
		matches, err = MatchDescriptors(Descriptors{{0, 0}}, desc2, cfg)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, matches, test.ShouldBeEmpty)
	})

	t.Run("errors", func(t *testing.T) {
		_, err := MatchDescriptors(desc, Descriptors{{1, 0}}, cfg)
		test.That(t, err, test.ShouldNotBeNil)
		_, err = MatchDescriptors(desc, Descriptors{{1, 0}, {0, 1, 2}}, cfg)
		test.That(t, err, test.ShouldNotBeNil)
		matches, err := MatchDescriptors(Descriptors{}, Descriptors{{1, 0}}, cfg)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, matches, test.ShouldBeEmpty)
	})
}

func TestGetMatchingKeyPoints(t *testing.T) {
	kps1 := KeyPoints{image.Point{1, 1}, image.Point{2, 2}, image.Point{3, 3}}
	kps2 := KeyPoints{image.Point{10, 10}, image.Point{20, 20}}
	matches := DescriptorMatches{{Idx1: 2, Idx2: 0}, {Idx1: 0, Idx2: 1}}
	m1, m2, err := GetMatchingKeyPoints(matches, kps1, kps2)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, m1, test.ShouldResemble, KeyPoints{image.Point{3, 3}, image.Point{1, 1}})
	test.That(t, m2, test.ShouldResemble, KeyPoints{image.Point{10, 10}, image.Point{20, 20}})

	_, _, err = GetMatchingKeyPoints(DescriptorMatches{{Idx1: 0, Idx2: 2}}, kps1, kps2)
	test.That(t, err, test.ShouldNotBeNil)
}
