// Package imaging provides the per-image analysis sub-computations of the
// feature extraction pipeline.
//
// Each function is pure and deterministic given a decoded image: geometry
// measurement, average brightness, Canny edge counting, and dominant-color
// clustering. All operations work with standard Go image.Image types.
//
// # Supported Formats
//
// LoadImage decodes JPEG, PNG, GIF, BMP, TIFF, and WebP files. The extra
// decoders are registered via golang.org/x/image blank imports.
//
// # Determinism
//
// Analysis results depend only on pixel data (and, for geometry, the file
// size on disk). Dominant-color clustering runs k-means from a fixed seed
// so identical input images always produce identical output:
//   - Luminance: ITU-R BT.601 weights (0.299 R + 0.587 G + 0.114 B)
//   - Edge thresholds: low=100, high=200 (EdgeThresholdLow/High)
//   - Clustering seed: 1 (DominantColorSeed)
//
// # Error Handling
//
// LoadImage and MeasureGeometry return extraction-kind errors (see the
// internal errors package) for unreadable files and degenerate geometry
// such as a zero-height image. Degenerate-but-valid analysis results — an
// image with no edges, a single-color image — are not errors.
package imaging
