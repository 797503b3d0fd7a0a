package ocr

import (
	"fmt"
	"image/png"
	"os"

	"github.com/anthonynsimon/bild/effect"
	"github.com/anthonynsimon/bild/transform"
	"github.com/disintegration/imaging"
)

// minRecognitionWidth is the width below which images are upscaled before
// recognition. Tesseract accuracy degrades sharply on small glyphs.
const minRecognitionWidth = 600

// prepareImage writes an OCR-friendly copy of the image at path to a
// temporary PNG file: grayscale conversion plus 2x upscaling when the
// image is narrower than minRecognitionWidth.
//
// Returns the temp file path and a cleanup function that removes it.
// Tesseract needs a file on disk, so the prepared image takes the same
// temp-file route the engine expects.
func prepareImage(path string) (string, func(), error) {
	img, err := imaging.Open(path)
	if err != nil {
		return "", nil, fmt.Errorf("failed to open image for preprocessing: %w", err)
	}

	prepared := effect.Grayscale(img)

	bounds := prepared.Bounds()
	if bounds.Dx() > 0 && bounds.Dx() < minRecognitionWidth {
		prepared = transform.Resize(prepared, bounds.Dx()*2, bounds.Dy()*2, transform.Linear)
	}

	tmpFile, err := os.CreateTemp("", "ocr-prep-*.png")
	if err != nil {
		return "", nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	if err := png.Encode(tmpFile, prepared); err != nil {
		tmpFile.Close()
		os.Remove(tmpPath)
		return "", nil, fmt.Errorf("failed to encode prepared image: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		os.Remove(tmpPath)
		return "", nil, err
	}

	return tmpPath, func() { os.Remove(tmpPath) }, nil
}
