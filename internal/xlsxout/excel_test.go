package xlsxout

import (
	"path/filepath"
	"strconv"
	"testing"

	"github.com/xuri/excelize/v2"

	apperrors "github.com/imageworks/imagesheet/internal/errors"
	"github.com/imageworks/imagesheet/internal/extractor"
	"github.com/imageworks/imagesheet/internal/imaging"
)

// makeRecord builds a fully populated record for export tests
func makeRecord(imagePath string) *extractor.FeatureRecord {
	return &extractor.FeatureRecord{
		ImagePath:      imagePath,
		ExtractedText:  "sample text",
		Width:          80,
		Height:         40,
		Channels:       3,
		FileSizeKB:     1.25,
		AspectRatio:    2,
		TotalPixels:    3200,
		AvgBrightness:  127.5,
		EdgeCount:      42,
		DominantColor1: imaging.RGBColor{R: 255, G: 0, B: 0},
		DominantColor2: imaging.RGBColor{R: 0, G: 255, B: 0},
		DominantColor3: imaging.RGBColor{R: 0, G: 0, B: 255},
	}
}

// readRows opens an exported document and returns one sheet's rows
func readRows(t *testing.T, path, sheet string) [][]string {
	t.Helper()

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("failed to open exported file: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		t.Fatalf("failed to read sheet %q: %v", sheet, err)
	}
	return rows
}

func parseFloat(t *testing.T, s string) float64 {
	t.Helper()
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		t.Fatalf("failed to parse %q as float: %v", s, err)
	}
	return v
}

func TestExportSingle_ReadBack(t *testing.T) {
	out := filepath.Join(t.TempDir(), "single.xlsx")
	rec := makeRecord("/images/cat.png")

	if err := ExportSingle(rec, out); err != nil {
		t.Fatalf("ExportSingle failed: %v", err)
	}

	rows := readRows(t, out, DataSheet)
	if len(rows) != len(fieldNames)+1 {
		t.Fatalf("row count: got %d, want %d", len(rows), len(fieldNames)+1)
	}

	if rows[0][0] != "Feature" || rows[0][1] != "Value" {
		t.Errorf("header: got %v, want [Feature Value]", rows[0])
	}

	// Field names appear in fixed order down column A
	for i, name := range fieldNames {
		if rows[i+1][0] != name {
			t.Errorf("row %d field: got %s, want %s", i+1, rows[i+1][0], name)
		}
	}

	// Spot-check values field-for-field
	checks := map[string]string{
		"image_path":       "/images/cat.png",
		"extracted_text":   "sample text",
		"width":            "80",
		"height":           "40",
		"total_pixels":     "3200",
		"edge_count":       "42",
		"dominant_color_1": "RGB(255, 0, 0)",
		"dominant_color_3": "RGB(0, 0, 255)",
	}
	for i, name := range fieldNames {
		want, ok := checks[name]
		if !ok {
			continue
		}
		if rows[i+1][1] != want {
			t.Errorf("%s value: got %q, want %q", name, rows[i+1][1], want)
		}
	}

	if got := parseFloat(t, rows[9][1]); got != 127.5 { // avg_brightness row
		t.Errorf("avg_brightness: got %v, want 127.5", got)
	}
}

func TestExportBatch_RowsAndOrder(t *testing.T) {
	out := filepath.Join(t.TempDir(), "batch.xlsx")
	records := []*extractor.FeatureRecord{
		makeRecord("/images/a.png"),
		makeRecord("/images/c.png"),
		makeRecord("/images/b.png"),
	}

	if err := ExportBatch(records, out); err != nil {
		t.Fatalf("ExportBatch failed: %v", err)
	}

	rows := readRows(t, out, DataSheet)
	if len(rows) != len(records)+1 {
		t.Fatalf("row count: got %d, want %d", len(rows), len(records)+1)
	}

	for i, name := range fieldNames {
		if rows[0][i] != name {
			t.Errorf("header column %d: got %s, want %s", i, rows[0][i], name)
		}
	}

	// Data rows preserve input order, not sorted order
	wantPaths := []string{"/images/a.png", "/images/c.png", "/images/b.png"}
	for i, want := range wantPaths {
		if rows[i+1][0] != want {
			t.Errorf("row %d image_path: got %s, want %s", i+1, rows[i+1][0], want)
		}
	}
}

func TestExportBatch_Empty(t *testing.T) {
	out := filepath.Join(t.TempDir(), "empty.xlsx")

	err := ExportBatch(nil, out)
	if err == nil {
		t.Fatal("empty batch should be rejected")
	}
	if !apperrors.IsKind(err, apperrors.KindValidation) {
		t.Errorf("error kind: got %v, want validation", err)
	}
}

func TestExportSingle_NilRecord(t *testing.T) {
	err := ExportSingle(nil, filepath.Join(t.TempDir(), "nil.xlsx"))
	if err == nil {
		t.Fatal("nil record should be rejected")
	}
	if !apperrors.IsKind(err, apperrors.KindValidation) {
		t.Errorf("error kind: got %v, want validation", err)
	}
}

func TestExportWithSummary_ConstantBatch(t *testing.T) {
	out := filepath.Join(t.TempDir(), "summary.xlsx")
	records := []*extractor.FeatureRecord{
		makeRecord("/images/a.png"),
		makeRecord("/images/b.png"),
		makeRecord("/images/c.png"),
		makeRecord("/images/d.png"),
	}

	if err := ExportWithSummary(records, out); err != nil {
		t.Fatalf("ExportWithSummary failed: %v", err)
	}

	// Data sheet still has all records
	if rows := readRows(t, out, DataSheet); len(rows) != len(records)+1 {
		t.Errorf("data row count: got %d, want %d", len(rows), len(records)+1)
	}

	rows := readRows(t, out, SummarySheet)
	if len(rows) != 5 { // header + count/mean/min/max
		t.Fatalf("summary row count: got %d, want 5", len(rows))
	}

	wantHeader := []string{"statistic", "width", "height", "file_size_kb", "avg_brightness", "edge_count"}
	for i, want := range wantHeader {
		if rows[0][i] != want {
			t.Errorf("summary header %d: got %s, want %s", i, rows[0][i], want)
		}
	}

	// Identical records: mean == min == max == the constant, count == N
	for col := 1; col < len(wantHeader); col++ {
		count := parseFloat(t, rows[1][col])
		mean := parseFloat(t, rows[2][col])
		min := parseFloat(t, rows[3][col])
		max := parseFloat(t, rows[4][col])

		if count != float64(len(records)) {
			t.Errorf("%s count: got %v, want %d", wantHeader[col], count, len(records))
		}
		if mean != min || min != max {
			t.Errorf("%s: mean/min/max not equal for constant batch: %v/%v/%v",
				wantHeader[col], mean, min, max)
		}
	}

	if got := parseFloat(t, rows[2][1]); got != 80 {
		t.Errorf("width mean: got %v, want 80", got)
	}
}

func TestExportBatch_Overwrite(t *testing.T) {
	out := filepath.Join(t.TempDir(), "overwrite.xlsx")
	records := []*extractor.FeatureRecord{makeRecord("/images/a.png"), makeRecord("/images/b.png")}

	if err := ExportBatch(records, out); err != nil {
		t.Fatalf("first export failed: %v", err)
	}
	first := readRows(t, out, DataSheet)

	if err := ExportBatch(records, out); err != nil {
		t.Fatalf("second export failed: %v", err)
	}
	second := readRows(t, out, DataSheet)

	if len(first) != len(second) {
		t.Fatalf("row count changed on overwrite: %d vs %d", len(first), len(second))
	}
	for i := range first {
		for j := range first[i] {
			if first[i][j] != second[i][j] {
				t.Errorf("cell (%d,%d) changed on overwrite: %q vs %q", i, j, first[i][j], second[i][j])
			}
		}
	}
}

func TestExport_UnwritablePath(t *testing.T) {
	out := filepath.Join(t.TempDir(), "no-such-dir", "out.xlsx")
	records := []*extractor.FeatureRecord{makeRecord("/images/a.png")}

	err := ExportBatch(records, out)
	if err == nil {
		t.Fatal("export into a missing directory should fail")
	}
	if !apperrors.IsKind(err, apperrors.KindExport) {
		t.Errorf("error kind: got %v, want export", err)
	}
}
