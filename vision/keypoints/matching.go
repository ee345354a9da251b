package keypoints

import (
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/stitch/utils"
)

// MatchingConfig contains the parameters for matching descriptors.
type MatchingConfig struct {
	// Threshold is the minimum gap between the second best and the best distance of a match.
	Threshold float64 `json:"threshold"`
}

// DefaultMatchingConfig returns a gap threshold of 0.5.
func DefaultMatchingConfig() *MatchingConfig {
	return &MatchingConfig{Threshold: 0.5}
}

// DescriptorMatch contains the index of a match in the first and second set of descriptors.
type DescriptorMatch struct {
	Idx1 int `json:"idx1"`
	Idx2 int `json:"idx2"`
}

// DescriptorMatches is an ordered list of matches.
type DescriptorMatches []DescriptorMatch

// MatchDescriptors pairs every descriptor of desc1 with its nearest neighbor in desc2, by
// euclidean distance. A pair is kept only if the second nearest neighbor is farther than the
// nearest one by more than cfg.Threshold; this is an absolute gap, not a ratio of distances.
// Equal distances keep their index order. Matches are ordered by their index in desc1.
func MatchDescriptors(desc1, desc2 Descriptors, cfg *MatchingConfig) (DescriptorMatches, error) {
	if len(desc1) == 0 {
		return DescriptorMatches{}, nil
	}
	if len(desc2) < 2 {
		return nil, errors.Errorf("need at least 2 descriptors to match against, got %d", len(desc2))
	}
	distances, err := utils.PairwiseDistance(desc1.floats(), desc2.floats(), utils.Euclidean)
	if err != nil {
		return nil, errors.Wrap(err, "cannot compare descriptors")
	}
	nRows, nCols := distances.Dims()
	matches := make(DescriptorMatches, 0, nRows)
	indices := make([]int, nCols)
	for i := 0; i < nRows; i++ {
		row := mat.Row(nil, i, distances)
		floats.ArgsortStable(row, indices)
		if row[1]-row[0] > cfg.Threshold {
			matches = append(matches, DescriptorMatch{Idx1: i, Idx2: indices[0]})
		}
	}
	return matches, nil
}

func (d Descriptors) floats() [][]float64 {
	out := make([][]float64, len(d))
	for i, desc := range d {
		out[i] = desc
	}
	return out
}

// GetMatchingKeyPoints takes the matches and the keypoints and returns the corresponding keypoints that are matched.
func GetMatchingKeyPoints(matches DescriptorMatches, kps1, kps2 KeyPoints) (KeyPoints, KeyPoints, error) {
	matchedKps1 := make(KeyPoints, len(matches))
	matchedKps2 := make(KeyPoints, len(matches))
	for i, match := range matches {
		if match.Idx1 < 0 || match.Idx1 >= len(kps1) {
			return nil, nil, errors.Errorf("match %d refers to keypoint %d of the first set, which has %d", i, match.Idx1, len(kps1))
		}
		if match.Idx2 < 0 || match.Idx2 >= len(kps2) {
			return nil, nil, errors.Errorf("match %d refers to keypoint %d of the second set, which has %d", i, match.Idx2, len(kps2))
		}
		matchedKps1[i] = kps1[match.Idx1]
		matchedKps2[i] = kps2[match.Idx2]
	}
	return matchedKps1, matchedKps2, nil
}
