package imaging

import (
	"image"
	_ "image/gif"  // Register GIF format decoder
	_ "image/jpeg" // Register JPEG format decoder
	_ "image/png"  // Register PNG format decoder
	"math"
	"os"

	_ "golang.org/x/image/bmp"  // Register BMP format decoder
	_ "golang.org/x/image/tiff" // Register TIFF format decoder
	_ "golang.org/x/image/webp" // Register WebP format decoder

	apperrors "github.com/imageworks/imagesheet/internal/errors"
)

// LoadImage opens and decodes the image file at path.
//
// Parameters:
//   - path: Absolute or relative file path. Supported formats are JPEG,
//     PNG, GIF, BMP, TIFF, and WebP.
//
// Returns:
//   - image.Image: The decoded image. The concrete type depends on the
//     format and color model (e.g. *image.RGBA, *image.Gray, *image.YCbCr).
//   - error: An extraction-kind error if the file cannot be opened or is
//     not a valid image in a supported format.
//
// Each call reads the file from disk. The pipeline touches every image
// exactly once, so decoded images are not cached.
func LoadImage(path string) (image.Image, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, apperrors.NewExtractionError("failed to open image", err)
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		return nil, apperrors.NewExtractionError("failed to decode image", err)
	}

	return img, nil
}

// Geometry contains the basic measurements of a decoded image file.
type Geometry struct {
	// Width is the image width in pixels.
	Width int `json:"width"`

	// Height is the image height in pixels.
	Height int `json:"height"`

	// Channels is 1 for grayscale images and 3 for everything else.
	// Alpha is not distinguished.
	Channels int `json:"channels"`

	// FileSizeKB is the size of the file on disk in kilobytes,
	// rounded to two decimal places.
	FileSizeKB float64 `json:"file_size_kb"`

	// AspectRatio is width divided by height, rounded to two decimal places.
	AspectRatio float64 `json:"aspect_ratio"`

	// TotalPixels is width multiplied by height.
	TotalPixels int `json:"total_pixels"`
}

// MeasureGeometry computes the geometry of a decoded image together with
// the size of its backing file.
//
// Parameters:
//   - img: The decoded image.
//   - path: Path to the file img was decoded from, used for the size stat.
//
// Returns:
//   - *Geometry: The measurements.
//   - error: An extraction-kind error if the file cannot be stat'd or the
//     image has zero height. The zero-height guard exists so the aspect
//     ratio is never computed as Inf or NaN.
func MeasureGeometry(img image.Image, path string) (*Geometry, error) {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	if height == 0 {
		return nil, apperrors.NewExtractionError("image has zero height", nil)
	}

	stat, err := os.Stat(path)
	if err != nil {
		return nil, apperrors.NewExtractionError("failed to stat image file", err)
	}

	channels := 3
	switch img.(type) {
	case *image.Gray, *image.Gray16:
		channels = 1
	}

	return &Geometry{
		Width:       width,
		Height:      height,
		Channels:    channels,
		FileSizeKB:  math.Round(float64(stat.Size())/1024*100) / 100,
		AspectRatio: math.Round(float64(width)/float64(height)*100) / 100,
		TotalPixels: width * height,
	}, nil
}
