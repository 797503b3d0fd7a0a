// Package extractor composes the per-image analysis sub-computations into
// one flat feature record per image.
package extractor

import (
	"fmt"

	apperrors "github.com/imageworks/imagesheet/internal/errors"
	"github.com/imageworks/imagesheet/internal/imaging"
	"github.com/imageworks/imagesheet/internal/ocr"
)

// dominantColorCount is the number of dominant colors in a record.
const dominantColorCount = 3

// TextRecognizer is the OCR capability the extractor depends on. The
// production binding is ocr.Recognizer; tests substitute stubs so feature
// extraction can be exercised without a Tesseract installation.
type TextRecognizer interface {
	RecognizeText(path string) (string, error)
}

// FeatureRecord is the flat set of features extracted from one image.
//
// A record is constructed atomically by one ExtractAllFeatures call and is
// never mutated afterwards. Field order here is the export column order.
type FeatureRecord struct {
	ImagePath      string           `json:"image_path"`
	ExtractedText  string           `json:"extracted_text"`
	Width          int              `json:"width"`
	Height         int              `json:"height"`
	Channels       int              `json:"channels"`
	FileSizeKB     float64          `json:"file_size_kb"`
	AspectRatio    float64          `json:"aspect_ratio"`
	TotalPixels    int              `json:"total_pixels"`
	AvgBrightness  float64          `json:"avg_brightness"`
	EdgeCount      int              `json:"edge_count"`
	DominantColor1 imaging.RGBColor `json:"dominant_color_1"`
	DominantColor2 imaging.RGBColor `json:"dominant_color_2"`
	DominantColor3 imaging.RGBColor `json:"dominant_color_3"`
}

// Extractor runs the full feature-extraction pipeline for single images.
type Extractor struct {
	recognizer TextRecognizer
}

// New creates an Extractor bound to the default Tesseract recognizer.
func New() *Extractor {
	return NewWithRecognizer(ocr.NewRecognizer())
}

// NewWithRecognizer creates an Extractor with a custom OCR capability.
func NewWithRecognizer(r TextRecognizer) *Extractor {
	return &Extractor{recognizer: r}
}

// ExtractAllFeatures decodes the image at path and computes its complete
// feature record: geometry, OCR text, average brightness, edge count, and
// the three dominant colors.
//
// Any sub-computation failure aborts the whole record with an
// extraction-kind error — there are no partial records. Degenerate but
// valid results (empty OCR text, zero edges) are not errors.
//
// The call is a pure function of the file at path: it reads the file,
// holds one decoded image transiently, and performs no writes.
func (e *Extractor) ExtractAllFeatures(path string) (*FeatureRecord, error) {
	img, err := imaging.LoadImage(path)
	if err != nil {
		return nil, err
	}

	geo, err := imaging.MeasureGeometry(img, path)
	if err != nil {
		return nil, err
	}

	text, err := e.recognizer.RecognizeText(path)
	if err != nil {
		return nil, apperrors.NewExtractionError(fmt.Sprintf("text extraction failed for %s", path), err)
	}

	colors, err := imaging.DominantColors(img, dominantColorCount, imaging.DominantColorSeed)
	if err != nil {
		return nil, err
	}

	return &FeatureRecord{
		ImagePath:      path,
		ExtractedText:  text,
		Width:          geo.Width,
		Height:         geo.Height,
		Channels:       geo.Channels,
		FileSizeKB:     geo.FileSizeKB,
		AspectRatio:    geo.AspectRatio,
		TotalPixels:    geo.TotalPixels,
		AvgBrightness:  imaging.AverageBrightness(img),
		EdgeCount:      imaging.CountEdges(img, imaging.EdgeThresholdLow, imaging.EdgeThresholdHigh),
		DominantColor1: colors[0].Color,
		DominantColor2: colors[1].Color,
		DominantColor3: colors[2].Color,
	}, nil
}
