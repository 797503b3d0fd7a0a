package ocr

import (
	"fmt"

	"github.com/otiai10/gosseract/v2"
)

// DefaultLanguage is the Tesseract language code used when none is set.
const DefaultLanguage = "eng"

// Recognizer extracts text from image files using Tesseract.
//
// The zero value is not usable; construct with NewRecognizer. A Recognizer
// is cheap and stateless between calls — each recognition creates and
// closes its own Tesseract client.
type Recognizer struct {
	// Language is the Tesseract language code (e.g. "eng"). The
	// corresponding language data must be installed on the system.
	Language string

	// Preprocess enables grayscale/upscale preparation before recognition.
	Preprocess bool
}

// NewRecognizer creates a Recognizer with English language data and
// preprocessing enabled.
func NewRecognizer() *Recognizer {
	return &Recognizer{
		Language:   DefaultLanguage,
		Preprocess: true,
	}
}

// RecognizeText performs OCR on the image file at path and returns the
// recognized text.
//
// The text is returned exactly as Tesseract produced it, including
// whitespace and newlines. An image without any recognizable text yields
// an empty string, not an error.
//
// Returns an error if the image cannot be read by the engine or Tesseract
// fails. When preprocessing is enabled and preparation fails, recognition
// falls back to the original file.
func (r *Recognizer) RecognizeText(path string) (string, error) {
	imagePath := path
	if r.Preprocess {
		prepared, cleanup, err := prepareImage(path)
		if err == nil {
			imagePath = prepared
			defer cleanup()
		}
	}

	client := gosseract.NewClient()
	defer client.Close()

	if err := client.SetLanguage(r.Language); err != nil {
		return "", fmt.Errorf("failed to set language: %w", err)
	}

	if err := client.SetImage(imagePath); err != nil {
		return "", fmt.Errorf("failed to set image: %w", err)
	}

	text, err := client.Text()
	if err != nil {
		return "", fmt.Errorf("OCR failed: %w", err)
	}

	return text, nil
}

// Version returns the Tesseract engine version, or an error if the engine
// is unavailable. Useful for setup diagnostics and test skips.
func Version() (string, error) {
	client := gosseract.NewClient()
	defer client.Close()

	v := client.Version()
	if v == "" {
		return "", fmt.Errorf("tesseract engine unavailable")
	}
	return v, nil
}
