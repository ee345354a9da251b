// Package stitching aligns two images of the same scene by estimating the affine transform
// between their corner features.
package stitching

import (
	"bytes"
	"encoding/json"
	"io"
	"path/filepath"

	"github.com/a8m/envsubst"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/utils"

	"go.viam.com/stitch/rimage/transform"
	"go.viam.com/stitch/vision/keypoints"
)

// DefaultPatchSize is the side of the square patch described around every keypoint.
const DefaultPatchSize = 16

// Config contains the parameters of every stage of the alignment.
type Config struct {
	Harris    *keypoints.HarrisConfig   `json:"harris"`
	Peaks     *keypoints.PeakConfig     `json:"peaks"`
	PatchSize int                       `json:"patch_size"`
	Matching  *keypoints.MatchingConfig `json:"matching"`
	RANSAC    *transform.RANSACConfig   `json:"ransac"`

	// Seed seeds the RANSAC sampler when none is given.
	Seed int64 `json:"seed"`
}

// DefaultConfig returns the default parameters of every stage.
func DefaultConfig() *Config {
	return &Config{
		Harris:    keypoints.DefaultHarrisConfig(),
		Peaks:     keypoints.DefaultPeakConfig(),
		PatchSize: DefaultPatchSize,
		Matching:  keypoints.DefaultMatchingConfig(),
		RANSAC:    transform.DefaultRANSACConfig(),
	}
}

// LoadConfig loads a Config from a json file, expanding environment variables referenced as
// ${VAR} beforehand. Stages missing from the file keep their defaults.
func LoadConfig(file string) (*Config, error) {
	buf, err := envsubst.ReadFile(filepath.Clean(file))
	if err != nil {
		return nil, err
	}
	return FromReader(file, bytes.NewReader(buf))
}

// FromReader reads a Config from r. originalPath is only used in error messages.
func FromReader(originalPath string, r io.Reader) (*Config, error) {
	config := DefaultConfig()
	jsonParser := json.NewDecoder(r)
	jsonParser.DisallowUnknownFields()
	if err := jsonParser.Decode(config); err != nil {
		return nil, errors.Wrapf(err, "cannot decode config %q", originalPath)
	}
	if err := config.Validate(originalPath); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate ensures all parts of the Config are valid. Every invalid field is reported.
func (config *Config) Validate(path string) error {
	var errs error
	if config.Harris == nil {
		errs = multierr.Append(errs, utils.NewConfigValidationFieldRequiredError(path, "harris"))
	} else if config.Harris.WindowSize < 1 {
		errs = multierr.Append(errs, utils.NewConfigValidationError(path, errors.New("harris.window_size should be >= 1")))
	}
	if config.Peaks == nil {
		errs = multierr.Append(errs, utils.NewConfigValidationFieldRequiredError(path, "peaks"))
	} else {
		if config.Peaks.MinDistance < 1 {
			errs = multierr.Append(errs, utils.NewConfigValidationError(path, errors.New("peaks.min_distance should be >= 1")))
		}
		if config.Peaks.ExcludeBorder < 0 {
			errs = multierr.Append(errs, utils.NewConfigValidationError(path, errors.New("peaks.exclude_border cannot be negative")))
		}
		if config.Peaks.ThresholdRel < 0 || config.Peaks.ThresholdRel > 1 {
			errs = multierr.Append(errs, utils.NewConfigValidationError(path, errors.New("peaks.threshold_rel should be in [0, 1]")))
		}
	}
	if config.PatchSize < 1 {
		errs = multierr.Append(errs, utils.NewConfigValidationError(path, errors.New("patch_size should be >= 1")))
	}
	if config.Matching == nil {
		errs = multierr.Append(errs, utils.NewConfigValidationFieldRequiredError(path, "matching"))
	}
	if config.RANSAC == nil {
		errs = multierr.Append(errs, utils.NewConfigValidationFieldRequiredError(path, "ransac"))
	} else if err := config.RANSAC.CheckValid(); err != nil {
		errs = multierr.Append(errs, utils.NewConfigValidationError(path, err))
	}
	return errs
}
