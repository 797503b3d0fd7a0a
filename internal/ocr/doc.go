// Package ocr provides the text-recognition capability of the pipeline,
// backed by the Tesseract engine via gosseract/v2.
//
// # Prerequisites
//
// Tesseract and its language data must be installed on the system:
//   - Ubuntu/Debian: apt-get install tesseract-ocr tesseract-ocr-eng
//   - macOS: brew install tesseract
//
// # Preprocessing
//
// The recognizer optionally prepares images before recognition: grayscale
// conversion and upscaling of small inputs, both of which improve Tesseract
// accuracy on photographs and screenshots. Preprocessing never changes the
// contract — the recognized text is returned exactly as Tesseract produced
// it, with no trimming or normalization.
//
// # Error Handling
//
// Recognition errors (missing file, engine failure) are returned to the
// caller; an image containing no text is not an error and yields an empty
// string. Preprocessing failures fall back to recognizing the original
// file.
package ocr
