// Package xlsxout serializes feature records into .xlsx documents.
//
// Three operations cover the export contract: a two-column sheet for a
// single record, a row-per-record sheet for batches, and a batch sheet
// plus aggregate summary. Output is deterministic: fixed column order,
// stable sheet names, and a fresh document on every call. Files are
// written via a temporary file and renamed into place so a failed export
// never leaves a truncated document behind.
package xlsxout

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	apperrors "github.com/imageworks/imagesheet/internal/errors"
	"github.com/imageworks/imagesheet/internal/extractor"
)

// Stable sheet names, kept identical across runs for reproducible output.
const (
	DataSheet    = "Image Features"
	SummarySheet = "Summary"
)

// maxColumnWidth caps fitted column widths so long OCR text does not
// produce unusable sheets.
const maxColumnWidth = 50

// fieldNames is the fixed export column order. It mirrors the field order
// of extractor.FeatureRecord exactly.
var fieldNames = []string{
	"image_path",
	"extracted_text",
	"width",
	"height",
	"channels",
	"file_size_kb",
	"aspect_ratio",
	"total_pixels",
	"avg_brightness",
	"edge_count",
	"dominant_color_1",
	"dominant_color_2",
	"dominant_color_3",
}

// fieldValues returns a record's values in fieldNames order.
func fieldValues(rec *extractor.FeatureRecord) []interface{} {
	return []interface{}{
		rec.ImagePath,
		rec.ExtractedText,
		rec.Width,
		rec.Height,
		rec.Channels,
		rec.FileSizeKB,
		rec.AspectRatio,
		rec.TotalPixels,
		rec.AvgBrightness,
		rec.EdgeCount,
		rec.DominantColor1.String(),
		rec.DominantColor2.String(),
		rec.DominantColor3.String(),
	}
}

// ExportSingle writes one record to path as a two-column sheet
// (Feature | Value) with one row per field.
//
// Returns an export-kind error if the document cannot be written.
func ExportSingle(rec *extractor.FeatureRecord, path string) error {
	if rec == nil {
		return apperrors.NewValidationError("no record to export", nil)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", DataSheet); err != nil {
		return apperrors.NewExportError("failed to create data sheet", err)
	}

	if err := f.SetSheetRow(DataSheet, "A1", &[]interface{}{"Feature", "Value"}); err != nil {
		return apperrors.NewExportError("failed to write header row", err)
	}

	values := fieldValues(rec)
	for i, name := range fieldNames {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(DataSheet, cell, &[]interface{}{name, values[i]}); err != nil {
			return apperrors.NewExportError("failed to write record row", err)
		}
	}

	if err := styleHeader(f, DataSheet, 2); err != nil {
		return err
	}
	fitColumns(f, DataSheet, 2, len(fieldNames)+1)

	return saveAtomic(f, path)
}

// ExportBatch writes records to path as one sheet: a header row of field
// names followed by one row per record, in input order.
//
// Returns a validation-kind error when records is empty and an export-kind
// error when the document cannot be written.
func ExportBatch(records []*extractor.FeatureRecord, path string) error {
	f, err := buildBatchSheet(records)
	if err != nil {
		return err
	}
	defer f.Close()

	return saveAtomic(f, path)
}

// ExportWithSummary performs the batch export and appends a second sheet
// of aggregate statistics (count, mean, min, max) over the numeric fields
// width, height, file_size_kb, avg_brightness, and edge_count.
//
// Fails the same way as ExportBatch.
func ExportWithSummary(records []*extractor.FeatureRecord, path string) error {
	f, err := buildBatchSheet(records)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := appendSummarySheet(f, records); err != nil {
		return err
	}

	return saveAtomic(f, path)
}

// buildBatchSheet assembles the data sheet shared by ExportBatch and
// ExportWithSummary. The caller owns closing the returned file.
func buildBatchSheet(records []*extractor.FeatureRecord) (*excelize.File, error) {
	if len(records) == 0 {
		return nil, apperrors.NewValidationError("no records to export", nil)
	}

	f := excelize.NewFile()

	if err := f.SetSheetName("Sheet1", DataSheet); err != nil {
		f.Close()
		return nil, apperrors.NewExportError("failed to create data sheet", err)
	}

	header := make([]interface{}, len(fieldNames))
	for i, name := range fieldNames {
		header[i] = name
	}
	if err := f.SetSheetRow(DataSheet, "A1", &header); err != nil {
		f.Close()
		return nil, apperrors.NewExportError("failed to write header row", err)
	}

	for i, rec := range records {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := fieldValues(rec)
		if err := f.SetSheetRow(DataSheet, cell, &values); err != nil {
			f.Close()
			return nil, apperrors.NewExportError("failed to write record row", err)
		}
	}

	if err := styleHeader(f, DataSheet, len(fieldNames)); err != nil {
		f.Close()
		return nil, err
	}
	fitColumns(f, DataSheet, len(fieldNames), len(records)+1)

	return f, nil
}

// numericField pairs a summary column with its value accessor.
type numericField struct {
	name  string
	value func(*extractor.FeatureRecord) float64
}

var summaryFields = []numericField{
	{"width", func(r *extractor.FeatureRecord) float64 { return float64(r.Width) }},
	{"height", func(r *extractor.FeatureRecord) float64 { return float64(r.Height) }},
	{"file_size_kb", func(r *extractor.FeatureRecord) float64 { return r.FileSizeKB }},
	{"avg_brightness", func(r *extractor.FeatureRecord) float64 { return r.AvgBrightness }},
	{"edge_count", func(r *extractor.FeatureRecord) float64 { return float64(r.EdgeCount) }},
}

// appendSummarySheet adds the aggregate-statistics sheet after the data
// sheet. Rows are count/mean/min/max; columns are the numeric fields.
func appendSummarySheet(f *excelize.File, records []*extractor.FeatureRecord) error {
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return apperrors.NewExportError("failed to create summary sheet", err)
	}

	header := make([]interface{}, len(summaryFields)+1)
	header[0] = "statistic"
	for i, field := range summaryFields {
		header[i+1] = field.name
	}
	if err := f.SetSheetRow(SummarySheet, "A1", &header); err != nil {
		return apperrors.NewExportError("failed to write summary header", err)
	}

	n := float64(len(records))
	rows := []struct {
		label   string
		compute func(field numericField) float64
	}{
		{"count", func(numericField) float64 { return n }},
		{"mean", func(field numericField) float64 {
			var sum float64
			for _, rec := range records {
				sum += field.value(rec)
			}
			return math.Round(sum/n*100) / 100
		}},
		{"min", func(field numericField) float64 {
			min := field.value(records[0])
			for _, rec := range records[1:] {
				if v := field.value(rec); v < min {
					min = v
				}
			}
			return min
		}},
		{"max", func(field numericField) float64 {
			max := field.value(records[0])
			for _, rec := range records[1:] {
				if v := field.value(rec); v > max {
					max = v
				}
			}
			return max
		}},
	}

	for i, row := range rows {
		values := make([]interface{}, len(summaryFields)+1)
		values[0] = row.label
		for j, field := range summaryFields {
			values[j+1] = row.compute(field)
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(SummarySheet, cell, &values); err != nil {
			return apperrors.NewExportError("failed to write summary row", err)
		}
	}

	if err := styleHeader(f, SummarySheet, len(summaryFields)+1); err != nil {
		return err
	}
	fitColumns(f, SummarySheet, len(summaryFields)+1, len(rows)+1)

	return nil
}

// styleHeader applies the header style (blue fill, bold white font,
// centered) to the first row of a sheet.
func styleHeader(f *excelize.File, sheet string, columns int) error {
	styleID, err := f.NewStyle(&excelize.Style{
		Fill: excelize.Fill{Type: "pattern", Color: []string{"4472C4"}, Pattern: 1},
		Font: &excelize.Font{Bold: true, Color: "FFFFFF", Size: 11},
		Alignment: &excelize.Alignment{
			Horizontal: "center",
			Vertical:   "center",
		},
	})
	if err != nil {
		return apperrors.NewExportError("failed to create header style", err)
	}

	end, _ := excelize.CoordinatesToCellName(columns, 1)
	if err := f.SetCellStyle(sheet, "A1", end, styleID); err != nil {
		return apperrors.NewExportError("failed to style header row", err)
	}
	return nil
}

// fitColumns sizes each column to its longest cell value plus padding,
// capped at maxColumnWidth.
func fitColumns(f *excelize.File, sheet string, columns, rows int) {
	for col := 1; col <= columns; col++ {
		maxLen := 0
		for row := 1; row <= rows; row++ {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			value, err := f.GetCellValue(sheet, cell)
			if err != nil {
				continue
			}
			if len(value) > maxLen {
				maxLen = len(value)
			}
		}

		width := float64(maxLen + 2)
		if width > maxColumnWidth {
			width = maxColumnWidth
		}
		name, _ := excelize.ColumnNumberToName(col)
		// Width errors are cosmetic only
		_ = f.SetColWidth(sheet, name, name, width)
	}
}

// saveAtomic writes the workbook to a temporary file in the destination
// directory and renames it into place, overwriting any existing file.
func saveAtomic(f *excelize.File, path string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".imagesheet-*.xlsx")
	if err != nil {
		return apperrors.NewExportError(fmt.Sprintf("output path %s is not writable", path), err)
	}
	tmpPath := tmp.Name()

	if err := f.Write(tmp); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return apperrors.NewExportError("failed to write workbook", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return apperrors.NewExportError("failed to flush workbook", err)
	}

	if err := os.Chmod(tmpPath, 0644); err != nil {
		os.Remove(tmpPath)
		return apperrors.NewExportError("failed to set output permissions", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return apperrors.NewExportError(fmt.Sprintf("failed to move workbook into place at %s", path), err)
	}
	return nil
}
