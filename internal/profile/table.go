// Package profile turns a raw questionnaire file into column profiles
// that the mapping layer can reason about.
package profile

import (
	"encoding/csv"
	"errors"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/rvachev/qforge/internal/errs"
	"github.com/rvachev/qforge/internal/model"
)

// Table is a parsed questionnaire: one header row plus data rows.
// Rows may be ragged; missing trailing cells read as empty.
type Table struct {
	Headers []string
	Rows    [][]string
}

// Cell returns the trimmed value at (row, col), or "" when the row is
// shorter than col.
func (t *Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) {
		return ""
	}
	r := t.Rows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return strings.TrimSpace(r[col])
}

// ReadTable decodes source bytes in the declared format.
func ReadTable(r io.Reader, format model.SourceFormat) (*Table, error) {
	switch format {
	case model.FormatCSV:
		return readCSV(r)
	case model.FormatXLSX:
		return readXLSX(r)
	default:
		return nil, errs.Newf(errs.CodeUnsupportedFormat, "unsupported questionnaire format %q (expected csv or xlsx)", format)
	}
}

// FormatForFilename derives the source format from a filename
// extension.
func FormatForFilename(name string) (model.SourceFormat, error) {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".csv"):
		return model.FormatCSV, nil
	case strings.HasSuffix(lower, ".xlsx"):
		return model.FormatXLSX, nil
	default:
		return "", errs.Newf(errs.CodeUnsupportedFormat, "unsupported questionnaire file %q (expected .csv or .xlsx)", name)
	}
}

func readCSV(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // rows may be ragged

	records, err := cr.ReadAll()
	if err != nil {
		return nil, errs.Wrap(errs.CodeParse, "malformed CSV", err)
	}
	if len(records) == 0 {
		return nil, errs.New(errs.CodeParse, "EMPTY_TABLE: CSV file is empty (missing header)")
	}

	t := &Table{Headers: records[0], Rows: records[1:]}
	if err := checkHeaders(t.Headers); err != nil {
		return nil, err
	}
	return t, nil
}

func readXLSX(r io.Reader) (*Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, errs.Wrap(errs.CodeParse, "malformed XLSX", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, errs.New(errs.CodeParse, "EMPTY_TABLE: workbook has no sheets")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, errs.Wrap(errs.CodeParse, "read XLSX sheet", err)
	}
	if len(rows) == 0 {
		return nil, errs.New(errs.CodeParse, "EMPTY_TABLE: sheet has no rows")
	}

	t := &Table{Headers: rows[0], Rows: rows[1:]}
	if err := checkHeaders(t.Headers); err != nil {
		return nil, err
	}
	return t, nil
}

// checkHeaders enforces unique, non-empty column refs so mapping is
// unambiguous.
func checkHeaders(headers []string) error {
	if len(headers) == 0 {
		return errs.New(errs.CodeParse, "EMPTY_TABLE: header row has no columns")
	}
	seen := make(map[string]bool, len(headers))
	for i, h := range headers {
		if strings.TrimSpace(h) == "" {
			return errs.Newf(errs.CodeParse, "header contains empty column name at index %d", i)
		}
		if seen[h] {
			return errs.Newf(errs.CodeParse, "header contains duplicate column name: %s", h)
		}
		seen[h] = true
	}
	return nil
}

// IsEmptyTable reports whether err is the zero-columns parse failure.
func IsEmptyTable(err error) bool {
	var e *errs.Err
	if errors.As(err, &e) {
		return e.Code == errs.CodeParse && strings.HasPrefix(e.Message, "EMPTY_TABLE")
	}
	return false
}
