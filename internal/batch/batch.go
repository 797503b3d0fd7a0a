// Package batch drives the pipeline over many images: discovering image
// files, running extraction with per-image skip-and-continue, and handing
// the surviving records to the exporter in one call.
package batch

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	apperrors "github.com/imageworks/imagesheet/internal/errors"
	"github.com/imageworks/imagesheet/internal/extractor"
	"github.com/imageworks/imagesheet/internal/logger"
	"github.com/imageworks/imagesheet/internal/xlsxout"
)

// Options configures a batch run. Explicit fields, no ambient globals.
type Options struct {
	// Recursive walks subdirectories during discovery.
	Recursive bool

	// Summary appends the aggregate-statistics sheet to the output.
	Summary bool
}

// FeatureSource is the extraction capability the batch loop depends on.
// The production binding is *extractor.Extractor.
type FeatureSource interface {
	ExtractAllFeatures(path string) (*extractor.FeatureRecord, error)
}

// imageExtensions lists the file extensions treated as images during
// discovery and input validation.
var imageExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".bmp":  true,
	".tiff": true,
	".gif":  true,
	".webp": true,
}

// IsImagePath reports whether path has a recognized image extension.
// Matching is case-insensitive.
func IsImagePath(path string) bool {
	return imageExtensions[strings.ToLower(filepath.Ext(path))]
}

// DiscoverImages finds image files in a directory.
//
// With recursive set, subdirectories are walked; otherwise only direct
// children are considered. Results are sorted so run order — and therefore
// output row order — is deterministic.
//
// Returns a validation-kind error when the directory contains no images.
func DiscoverImages(dir string, recursive bool) ([]string, error) {
	var paths []string

	if recursive {
		err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && IsImagePath(path) {
				paths = append(paths, path)
			}
			return nil
		})
		if err != nil {
			return nil, apperrors.NewValidationError(fmt.Sprintf("failed to walk directory %s", dir), err)
		}
	} else {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return nil, apperrors.NewValidationError(fmt.Sprintf("failed to read directory %s", dir), err)
		}
		for _, entry := range entries {
			if !entry.IsDir() && IsImagePath(entry.Name()) {
				paths = append(paths, filepath.Join(dir, entry.Name()))
			}
		}
	}

	if len(paths) == 0 {
		return nil, apperrors.NewValidationError(fmt.Sprintf("no image files found in %s", dir), nil)
	}

	sort.Strings(paths)
	return paths, nil
}

// Skipped describes one image dropped from a batch and why.
type Skipped struct {
	Path   string
	Reason string
}

// Result summarizes a completed batch run.
type Result struct {
	// Processed is the number of records written to the output document.
	Processed int

	// Skipped lists the images that failed extraction, in input order.
	Skipped []Skipped
}

// Run extracts features from every path and writes one output document.
//
// Extraction failures do not abort the batch: the offending image is
// logged with its reason, recorded in the result, and processing
// continues. Only when every image fails does Run return an error.
// Export errors propagate directly — there is no per-row recovery once
// export begins.
func Run(src FeatureSource, paths []string, outputPath string, opts Options) (*Result, error) {
	if len(paths) == 0 {
		return nil, apperrors.NewValidationError("no image paths to process", nil)
	}

	records := make([]*extractor.FeatureRecord, 0, len(paths))
	result := &Result{}

	for i, path := range paths {
		logger.WithFields(logrus.Fields{
			"image":    path,
			"progress": fmt.Sprintf("%d/%d", i+1, len(paths)),
		}).Debug("extracting features")

		rec, err := src.ExtractAllFeatures(path)
		if err != nil {
			logger.WithFields(logrus.Fields{
				"image":  path,
				"reason": err.Error(),
			}).Warn("skipping image")
			result.Skipped = append(result.Skipped, Skipped{Path: path, Reason: err.Error()})
			continue
		}
		records = append(records, rec)
	}

	if len(records) == 0 {
		return nil, apperrors.NewExtractionError("no images were successfully processed", nil)
	}

	var err error
	if opts.Summary {
		err = xlsxout.ExportWithSummary(records, outputPath)
	} else {
		err = xlsxout.ExportBatch(records, outputPath)
	}
	if err != nil {
		return nil, err
	}

	result.Processed = len(records)
	return result, nil
}

// RunSingle extracts one image and writes the two-column single-image
// document. Unlike Run, an extraction failure here is fatal — there is no
// batch to continue with.
func RunSingle(src FeatureSource, path, outputPath string) error {
	rec, err := src.ExtractAllFeatures(path)
	if err != nil {
		return err
	}
	return xlsxout.ExportSingle(rec, outputPath)
}
