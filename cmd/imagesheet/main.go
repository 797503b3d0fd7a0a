package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/imageworks/imagesheet/internal/batch"
	"github.com/imageworks/imagesheet/internal/extractor"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	GitCommit = "unknown"
)

var (
	imagePaths []string
	directory  string
	outputPath string
	recursive  bool
	summary    bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "imagesheet",
		Short: "Extract image features into a spreadsheet",
		Long: "A tool that extracts features from images (OCR text, geometry, brightness,\n" +
			"edge count, dominant colors) and writes them to an .xlsx document.",
		Run: run,
	}

	rootCmd.Flags().StringSliceVarP(&imagePaths, "image", "i", nil, "Path to image file(s), repeatable")
	rootCmd.Flags().StringVarP(&directory, "directory", "d", "", "Path to a directory containing images")
	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output .xlsx file path (required)")
	rootCmd.Flags().BoolVarP(&recursive, "recursive", "r", false, "Process subdirectories recursively (only with -d)")
	rootCmd.Flags().BoolVarP(&summary, "summary", "s", false, "Include a summary sheet (only for multiple images)")

	rootCmd.MarkFlagRequired("output")
	rootCmd.MarkFlagsMutuallyExclusive("image", "directory")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("imagesheet version %s (commit %s)\n", Version, GitCommit)
		},
	}

	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) {
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	cyan := color.New(color.FgCyan)

	if len(imagePaths) == 0 && directory == "" {
		red.Println("Error: provide either --image or --directory")
		os.Exit(1)
	}

	output, err := normalizeOutputPath(outputPath)
	if err != nil {
		red.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	opts := batch.Options{
		Recursive: recursive,
		Summary:   summary,
	}

	paths, err := resolveInputPaths(opts)
	if err != nil {
		red.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	ext := extractor.New()

	// Exactly one explicitly named image gets the two-column layout
	if len(imagePaths) == 1 && directory == "" {
		cyan.Printf("Processing image: %s\n", paths[0])
		if err := batch.RunSingle(ext, paths[0], output); err != nil {
			red.Printf("Error processing image: %v\n", err)
			os.Exit(1)
		}
		green.Printf("Spreadsheet saved: %s\n", output)
		return
	}

	cyan.Printf("Processing %d images...\n", len(paths))
	result, err := batch.Run(ext, paths, output, opts)
	if err != nil {
		red.Printf("Error: %v\n", err)
		os.Exit(1)
	}

	for _, skipped := range result.Skipped {
		fmt.Printf("  Warning: skipped %s: %s\n", skipped.Path, skipped.Reason)
	}
	green.Printf("Processed %d of %d images. Spreadsheet saved: %s\n",
		result.Processed, len(paths), output)
}

// resolveInputPaths turns the CLI flags into the ordered list of image
// paths to process.
func resolveInputPaths(opts batch.Options) ([]string, error) {
	if directory != "" {
		info, err := os.Stat(directory)
		if err != nil {
			return nil, fmt.Errorf("directory not found: %s", directory)
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("not a directory: %s", directory)
		}
		return batch.DiscoverImages(directory, opts.Recursive)
	}

	for _, path := range imagePaths {
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("file not found: %s", path)
		}
		if !batch.IsImagePath(path) {
			return nil, fmt.Errorf("not a valid image file: %s", path)
		}
	}
	return imagePaths, nil
}

// normalizeOutputPath appends .xlsx to bare output names and makes sure
// the destination directory exists.
func normalizeOutputPath(path string) (string, error) {
	lower := strings.ToLower(path)
	if !strings.HasSuffix(lower, ".xlsx") && !strings.HasSuffix(lower, ".xls") {
		path += ".xlsx"
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return "", fmt.Errorf("failed to create output directory %s: %w", dir, err)
		}
	}
	return path, nil
}
