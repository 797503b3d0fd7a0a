package batch

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	apperrors "github.com/imageworks/imagesheet/internal/errors"
	"github.com/imageworks/imagesheet/internal/extractor"
	"github.com/imageworks/imagesheet/internal/imaging"
)

// fakeSource fabricates records without decoding files; paths listed in
// fail produce an extraction error instead
type fakeSource struct {
	fail map[string]bool
}

func (f *fakeSource) ExtractAllFeatures(path string) (*extractor.FeatureRecord, error) {
	if f.fail[path] {
		return nil, apperrors.NewExtractionError("failed to decode image", nil)
	}
	return &extractor.FeatureRecord{
		ImagePath:      path,
		Width:          10,
		Height:         10,
		Channels:       3,
		FileSizeKB:     0.5,
		AspectRatio:    1,
		TotalPixels:    100,
		AvgBrightness:  100,
		EdgeCount:      5,
		DominantColor1: imaging.RGBColor{R: 1, G: 2, B: 3},
		DominantColor2: imaging.RGBColor{R: 4, G: 5, B: 6},
		DominantColor3: imaging.RGBColor{R: 7, G: 8, B: 9},
	}, nil
}

// touch creates an empty file at path, creating parent directories
func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir failed: %v", err)
	}
	if err := os.WriteFile(path, nil, 0644); err != nil {
		t.Fatalf("write failed: %v", err)
	}
}

func TestIsImagePath(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"photo.jpg", true},
		{"photo.JPEG", true},
		{"scan.TIFF", true},
		{"anim.webp", true},
		{"notes.txt", false},
		{"archive.tar.gz", false},
		{"noextension", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			if got := IsImagePath(tt.path); got != tt.want {
				t.Errorf("IsImagePath(%q): got %v, want %v", tt.path, got, tt.want)
			}
		})
	}
}

func TestDiscoverImages(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "b.png"))
	touch(t, filepath.Join(dir, "a.jpg"))
	touch(t, filepath.Join(dir, "notes.txt"))
	touch(t, filepath.Join(dir, "nested", "c.gif"))

	paths, err := DiscoverImages(dir, false)
	if err != nil {
		t.Fatalf("DiscoverImages failed: %v", err)
	}

	want := []string{filepath.Join(dir, "a.jpg"), filepath.Join(dir, "b.png")}
	if len(paths) != len(want) {
		t.Fatalf("path count: got %d (%v), want %d", len(paths), paths, len(want))
	}
	for i := range want {
		if paths[i] != want[i] {
			t.Errorf("path %d: got %s, want %s", i, paths[i], want[i])
		}
	}
}

func TestDiscoverImages_Recursive(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "a.jpg"))
	touch(t, filepath.Join(dir, "nested", "c.gif"))
	touch(t, filepath.Join(dir, "nested", "deep", "d.webp"))
	touch(t, filepath.Join(dir, "nested", "ignore.md"))

	paths, err := DiscoverImages(dir, true)
	if err != nil {
		t.Fatalf("DiscoverImages failed: %v", err)
	}
	if len(paths) != 3 {
		t.Errorf("path count: got %d (%v), want 3", len(paths), paths)
	}
}

func TestDiscoverImages_Empty(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "readme.md"))

	_, err := DiscoverImages(dir, false)
	if err == nil {
		t.Fatal("directory without images should be rejected")
	}
	if !apperrors.IsKind(err, apperrors.KindValidation) {
		t.Errorf("error kind: got %v, want validation", err)
	}
}

func TestRun_SkipAndContinue(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.xlsx")
	src := &fakeSource{fail: map[string]bool{"bad.png": true}}

	result, err := Run(src, []string{"a.png", "bad.png", "b.png"}, out, Options{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if result.Processed != 2 {
		t.Errorf("Processed: got %d, want 2", result.Processed)
	}
	if len(result.Skipped) != 1 || result.Skipped[0].Path != "bad.png" {
		t.Errorf("Skipped: got %+v, want one entry for bad.png", result.Skipped)
	}

	// The partial batch still produced a document with the two survivors
	f, err := excelize.OpenFile(out)
	if err != nil {
		t.Fatalf("failed to open output: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("Image Features")
	if err != nil {
		t.Fatalf("failed to read rows: %v", err)
	}
	if len(rows) != 3 { // header + 2 records
		t.Errorf("output rows: got %d, want 3", len(rows))
	}
}

func TestRun_AllFail(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.xlsx")
	src := &fakeSource{fail: map[string]bool{"a.png": true, "b.png": true}}

	_, err := Run(src, []string{"a.png", "b.png"}, out, Options{})
	if err == nil {
		t.Fatal("all-failing batch should be an error")
	}
	if !apperrors.IsKind(err, apperrors.KindExtraction) {
		t.Errorf("error kind: got %v, want extraction", err)
	}
	if _, statErr := os.Stat(out); !os.IsNotExist(statErr) {
		t.Error("no output document should exist when every image fails")
	}
}

func TestRun_WithSummary(t *testing.T) {
	out := filepath.Join(t.TempDir(), "out.xlsx")
	src := &fakeSource{}

	if _, err := Run(src, []string{"a.png", "b.png"}, out, Options{Summary: true}); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	f, err := excelize.OpenFile(out)
	if err != nil {
		t.Fatalf("failed to open output: %v", err)
	}
	defer f.Close()

	if idx, _ := f.GetSheetIndex("Summary"); idx < 0 {
		t.Error("summary sheet missing from output")
	}
}

func TestRun_NoPaths(t *testing.T) {
	_, err := Run(&fakeSource{}, nil, filepath.Join(t.TempDir(), "out.xlsx"), Options{})
	if err == nil {
		t.Fatal("empty path list should be rejected")
	}
	if !apperrors.IsKind(err, apperrors.KindValidation) {
		t.Errorf("error kind: got %v, want validation", err)
	}
}

func TestRunSingle(t *testing.T) {
	out := filepath.Join(t.TempDir(), "single.xlsx")

	if err := RunSingle(&fakeSource{}, "a.png", out); err != nil {
		t.Fatalf("RunSingle failed: %v", err)
	}

	f, err := excelize.OpenFile(out)
	if err != nil {
		t.Fatalf("failed to open output: %v", err)
	}
	defer f.Close()
	rows, err := f.GetRows("Image Features")
	if err != nil {
		t.Fatalf("failed to read rows: %v", err)
	}
	if len(rows) != 14 { // header + 13 fields
		t.Errorf("output rows: got %d, want 14", len(rows))
	}

	err = RunSingle(&fakeSource{fail: map[string]bool{"bad.png": true}}, "bad.png", out)
	if err == nil {
		t.Fatal("RunSingle should surface extraction failures")
	}
}
