package imaging

import (
	"image"
	"math"
)

// AverageBrightness computes the mean luminance of an image.
//
// The image is converted to single-channel luminance using ITU-R BT.601
// weights (0.299 R + 0.587 G + 0.114 B) and the arithmetic mean is taken
// over all pixels.
//
// Returns a value in [0, 255], rounded to two decimal places. An image
// with no pixels yields 0.
func AverageBrightness(img image.Image) float64 {
	lum, width, height := luminanceMatrix(img)
	if width == 0 || height == 0 {
		return 0
	}

	var sum float64
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			sum += lum[y][x]
		}
	}

	mean := sum / float64(width*height) * 255.0
	return math.Round(mean*100) / 100
}

// luminanceMatrix converts an image to a row-major matrix of luminance
// values normalized to [0, 1], using ITU-R BT.601 weights.
func luminanceMatrix(img image.Image) ([][]float64, int, int) {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	lum := make([][]float64, height)
	for y := 0; y < height; y++ {
		lum[y] = make([]float64, width)
		for x := 0; x < width; x++ {
			r, g, b, _ := img.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			rf := float64(r>>8) / 255.0
			gf := float64(g>>8) / 255.0
			bf := float64(b>>8) / 255.0
			lum[y][x] = 0.299*rf + 0.587*gf + 0.114*bf
		}
	}
	return lum, width, height
}
