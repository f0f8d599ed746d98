// Package extract implements the record extraction service: it turns a
// stored spreadsheet handle into candidate employee records.
package extract

import (
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/onboard-hub/backend/internal/models"
	"github.com/onboard-hub/backend/internal/services"
)

// FileSource resolves stored-file handles to local paths. Implemented
// by the storage package.
type FileSource interface {
	GetFilePath(id string) (string, error)
}

// CSVExtractor extracts employee records from CSV spreadsheets. The
// binary .xlsx/.xls formats are owned by an upstream conversion step;
// stored files that do not decode as CSV fail with an extraction error.
type CSVExtractor struct {
	source FileSource
}

// NewCSVExtractor creates an extractor reading from the given source.
func NewCSVExtractor(source FileSource) *CSVExtractor {
	return &CSVExtractor{source: source}
}

// Recognized header spellings, canonicalized to record fields.
var headerAliases = map[string]string{
	"name":          "name",
	"full name":     "name",
	"employee name": "name",
	"email":         "email",
	"email address": "email",
	"department":    "department",
	"dept":          "department",
	"role":          "role",
	"title":         "role",
	"job title":     "role",
	"manager":       "manager",
	"manager email": "manager",
	"start date":    "startDate",
	"startdate":     "startDate",
	"start":         "startDate",
}

// Extract reads the stored file and maps each data row to a candidate
// record. Per-row field problems are not errors here; the validation
// partitioner decides record validity. Only a file that cannot be read
// or parsed at all raises an ExtractionError.
func (e *CSVExtractor) Extract(ctx context.Context, fileID string) ([]models.Employee, error) {
	if err := ctx.Err(); err != nil {
		return nil, services.NewExtractionError(err)
	}

	path, err := e.source.GetFilePath(fileID)
	if err != nil {
		return nil, services.NewExtractionError(err)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, services.NewExtractionError(fmt.Errorf("reading stored file: %w", err))
	}

	records, err := parseCSV(raw)
	if err != nil {
		return nil, services.NewExtractionError(err)
	}
	return records, nil
}

func parseCSV(raw []byte) ([]models.Employee, error) {
	decoded, _, err := decodeToUTF8(raw)
	if err != nil {
		return nil, fmt.Errorf("encoding detection failed: %w", err)
	}

	reader := csv.NewReader(bytes.NewReader(decoded))
	// Rows with missing or extra columns are tolerated; field counts
	// are reconciled against the header below.
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty file: no header row found")
		}
		return nil, fmt.Errorf("reading header row: %w", err)
	}

	columns := mapHeader(header)
	if _, ok := columns["email"]; !ok {
		return nil, fmt.Errorf("header is missing a recognizable email column")
	}
	if _, ok := columns["name"]; !ok {
		return nil, fmt.Errorf("header is missing a recognizable name column")
	}

	var employees []models.Employee
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading row %d: %w", len(employees)+2, err)
		}
		if emptyRow(row) {
			continue
		}
		employees = append(employees, models.Employee{
			Name:       field(row, columns, "name"),
			Email:      field(row, columns, "email"),
			Department: field(row, columns, "department"),
			Role:       field(row, columns, "role"),
			Manager:    field(row, columns, "manager"),
			StartDate:  field(row, columns, "startDate"),
		})
	}

	return employees, nil
}

// mapHeader maps canonical field names to column indexes. The first
// occurrence of an alias wins.
func mapHeader(header []string) map[string]int {
	columns := make(map[string]int)
	for i, h := range header {
		key := strings.ToLower(strings.TrimSpace(h))
		canonical, ok := headerAliases[key]
		if !ok {
			continue
		}
		if _, taken := columns[canonical]; !taken {
			columns[canonical] = i
		}
	}
	return columns
}

func field(row []string, columns map[string]int, name string) string {
	idx, ok := columns[name]
	if !ok || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func emptyRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
