package main

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	"go.uber.org/zap/zapcore"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/stitch/logging"
	"go.viam.com/stitch/rimage"
	"go.viam.com/stitch/vision/keypoints"
	"go.viam.com/stitch/vision/stitching"
)

// alignOutput is the json result of the align command.
type alignOutput struct {
	H          [][]float64                 `json:"h"`
	KeyPoints1 int                         `json:"keypoints1"`
	KeyPoints2 int                         `json:"keypoints2"`
	Matches    int                         `json:"matches"`
	Inliers    keypoints.DescriptorMatches `json:"inliers"`
}

func alignAction(c *cli.Context) (err error) {
	if c.NArg() != 2 {
		return errors.Errorf("expected 2 images, got %d arguments", c.NArg())
	}
	logger := logging.NewLogger("stitch")
	if c.Bool(flagDebug) {
		logger = logging.NewDebugLogger("stitch")
		logging.GlobalLogLevel.SetLevel(zapcore.DebugLevel)
	}
	logging.ReplaceGlobal(logger)

	cfg := stitching.DefaultConfig()
	if path := c.String(flagConfig); path != "" {
		if cfg, err = stitching.LoadConfig(path); err != nil {
			return err
		}
	}
	if c.IsSet(flagSeed) {
		cfg.Seed = c.Int64(flagSeed)
	}

	img1, err := rimage.ReadImageFromFile(c.Args().Get(0))
	if err != nil {
		return err
	}
	img2, err := rimage.ReadImageFromFile(c.Args().Get(1))
	if err != nil {
		return err
	}
	alignment, err := stitching.AlignImages(
		rimage.GrayFloat64FromImage(img1),
		rimage.GrayFloat64FromImage(img2),
		cfg, nil, logger)
	if err != nil {
		return err
	}
	logger.Infow("images aligned", "matches", len(alignment.Matches), "inliers", len(alignment.Inliers))

	if plot := c.String(flagPlot); plot != "" {
		kps1, kps2, err := alignment.InlierKeyPoints()
		if err != nil {
			return err
		}
		if err := keypoints.PlotMatchedLines(img1, img2, kps1, kps2, plot); err != nil {
			return errors.Wrap(err, "cannot plot matches")
		}
	}

	out := c.App.Writer
	if path := c.String(flagOut); path != "" {
		//nolint:gosec
		f, err := os.Create(filepath.Clean(path))
		if err != nil {
			return err
		}
		defer func() {
			err = multierr.Combine(err, f.Close())
		}()
		out = f
	}
	return writeAlignment(out, alignment)
}

func writeAlignment(w io.Writer, alignment *stitching.Alignment) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(alignOutput{
		H:          denseRows(alignment.H),
		KeyPoints1: len(alignment.KeyPoints1),
		KeyPoints2: len(alignment.KeyPoints2),
		Matches:    len(alignment.Matches),
		Inliers:    alignment.Inliers,
	})
}

func denseRows(m mat.Matrix) [][]float64 {
	r, _ := m.Dims()
	rows := make([][]float64, r)
	for i := range rows {
		rows[i] = mat.Row(nil, i, m)
	}
	return rows
}
