package imaging

import (
	"fmt"
	"image"
	"math/rand"
	"sort"
	"strings"

	"github.com/lucasb-eyer/go-colorful"

	apperrors "github.com/imageworks/imagesheet/internal/errors"
)

// DominantColorSeed is the random seed for dominant-color clustering.
// Fixed so identical images produce identical palettes across runs.
const DominantColorSeed int64 = 1

// kmeansMaxIterations bounds the clustering loop; solid-region images
// converge in two or three passes.
const kmeansMaxIterations = 25

// RGBColor represents an RGB color with 8-bit components.
type RGBColor struct {
	R uint8 `json:"r"` // Red component (0-255)
	G uint8 `json:"g"` // Green component (0-255)
	B uint8 `json:"b"` // Blue component (0-255)
}

// Hex returns the color in "#RRGGBB" format.
func (c RGBColor) Hex() string {
	col := colorful.Color{R: float64(c.R) / 255.0, G: float64(c.G) / 255.0, B: float64(c.B) / 255.0}
	return strings.ToUpper(col.Hex())
}

// String returns the color as "RGB(r, g, b)", the form written to the
// output spreadsheet.
func (c RGBColor) String() string {
	return fmt.Sprintf("RGB(%d, %d, %d)", c.R, c.G, c.B)
}

// DominantColor is one cluster centroid together with the number of pixels
// assigned to it.
type DominantColor struct {
	Color      RGBColor `json:"color"`
	Hex        string   `json:"hex"`
	Population int      `json:"population"` // Pixels assigned to this cluster
}

// DominantColors extracts the k most representative colors of an image by
// k-means clustering over its pixels in RGB space.
//
// Parameters:
//   - img: The source image to analyze.
//   - k: Number of clusters. Must be at least 1.
//   - seed: Random seed for centroid initialization. Pass DominantColorSeed
//     for the pipeline's reproducible default.
//
// Returns:
//   - []DominantColor: Exactly k centroids as integer RGB triples, sorted
//     by cluster population descending. Ties break by ascending cluster
//     label, which is stable for a given seed.
//   - error: An extraction-kind error if k < 1 or the image has no pixels.
//
// # Determinism
//
// Initial centroids are drawn from the pixel list by a rand.Rand seeded
// with the given seed, and iteration stops when assignments no longer
// change (or after a fixed iteration cap). The same image and seed always
// produce the same palette in the same order.
func DominantColors(img image.Image, k int, seed int64) ([]DominantColor, error) {
	if k < 1 {
		return nil, apperrors.NewExtractionError(fmt.Sprintf("invalid cluster count %d", k), nil)
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width == 0 || height == 0 {
		return nil, apperrors.NewExtractionError("image has no pixels to cluster", nil)
	}

	// Flatten pixels into RGB points
	pixels := make([]colorful.Color, 0, width*height)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, b, _ := img.At(x, y).RGBA()
			pixels = append(pixels, colorful.Color{
				R: float64(r>>8) / 255.0,
				G: float64(g>>8) / 255.0,
				B: float64(b>>8) / 255.0,
			})
		}
	}

	rng := rand.New(rand.NewSource(seed))
	centroids := make([]colorful.Color, k)
	for i := range centroids {
		centroids[i] = pixels[rng.Intn(len(pixels))]
	}

	assignments := make([]int, len(pixels))
	for i := range assignments {
		assignments[i] = -1
	}

	counts := make([]int, k)
	for iter := 0; iter < kmeansMaxIterations; iter++ {
		// Assignment step
		changed := false
		for i, p := range pixels {
			best := 0
			bestDist := p.DistanceRgb(centroids[0])
			for c := 1; c < k; c++ {
				if d := p.DistanceRgb(centroids[c]); d < bestDist {
					best = c
					bestDist = d
				}
			}
			if assignments[i] != best {
				assignments[i] = best
				changed = true
			}
		}
		if !changed {
			break
		}

		// Update step: move each centroid to the mean of its cluster.
		// Empty clusters keep their previous centroid.
		sumR := make([]float64, k)
		sumG := make([]float64, k)
		sumB := make([]float64, k)
		counts = make([]int, k)
		for i, p := range pixels {
			c := assignments[i]
			sumR[c] += p.R
			sumG[c] += p.G
			sumB[c] += p.B
			counts[c]++
		}
		for c := 0; c < k; c++ {
			if counts[c] == 0 {
				continue
			}
			n := float64(counts[c])
			centroids[c] = colorful.Color{R: sumR[c] / n, G: sumG[c] / n, B: sumB[c] / n}
		}
	}

	// Rank clusters by population, ties by label order
	labels := make([]int, k)
	for i := range labels {
		labels[i] = i
	}
	sort.SliceStable(labels, func(i, j int) bool {
		return counts[labels[i]] > counts[labels[j]]
	})

	result := make([]DominantColor, 0, k)
	for _, label := range labels {
		c := centroids[label]
		rgb := RGBColor{
			R: uint8(clamp(int(c.R*255.0+0.5), 0, 255)),
			G: uint8(clamp(int(c.G*255.0+0.5), 0, 255)),
			B: uint8(clamp(int(c.B*255.0+0.5), 0, 255)),
		}
		result = append(result, DominantColor{
			Color:      rgb,
			Hex:        rgb.Hex(),
			Population: counts[label],
		})
	}

	return result, nil
}
