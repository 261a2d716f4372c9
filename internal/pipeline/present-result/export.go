// internal/pipeline/present-result/export.go
package presentresult

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"churn-predictor/internal/models"
)

var csvHeader = []string{"Feature", "Value", "Prediction"}

// EncodeCSV writes the record in long form: one row per feature, each
// carrying the prediction text. Values use the shortest decimal that
// parses back to the same float64.
func EncodeCSV(record *models.ExportRecord) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, row := range record.Rows {
		line := []string{row.Feature, strconv.FormatFloat(row.Value, 'f', -1, 64), record.Prediction}
		if err := w.Write(line); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ParseExport reads back a file written by EncodeCSV.
func ParseExport(data []byte) (*models.ExportRecord, error) {
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = len(csvHeader)
	lines, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse export: %w", err)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("parse export: empty file")
	}
	for i, col := range csvHeader {
		if lines[0][i] != col {
			return nil, fmt.Errorf("parse export: header column %d is %q, want %q", i, lines[0][i], col)
		}
	}

	record := &models.ExportRecord{Rows: make([]models.ExportRow, 0, len(lines)-1)}
	for n, line := range lines[1:] {
		v, err := strconv.ParseFloat(line[1], 64)
		if err != nil {
			return nil, fmt.Errorf("parse export: row %d: %w", n+1, err)
		}
		if n == 0 {
			record.Prediction = line[2]
		} else if line[2] != record.Prediction {
			return nil, fmt.Errorf("parse export: row %d: prediction %q differs from %q", n+1, line[2], record.Prediction)
		}
		record.Rows = append(record.Rows, models.ExportRow{Feature: line[0], Value: v})
	}
	return record, nil
}
