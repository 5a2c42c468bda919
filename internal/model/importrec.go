package model

import "time"

// SourceFormat identifies the questionnaire file format.
type SourceFormat string

const (
	FormatCSV  SourceFormat = "csv"
	FormatXLSX SourceFormat = "xlsx"
)

// ImportStatus tracks the lifecycle of a questionnaire import.
type ImportStatus string

const (
	StatusImported ImportStatus = "imported" // parsed, mapping not yet confirmed
	StatusMapped   ImportStatus = "mapped"   // column map validated and saved
)

// ColumnProfile is an immutable snapshot of one source column,
// produced once per import.
type ColumnProfile struct {
	ColRef        string   `json:"col_ref"`
	Ordinal       int      `json:"ordinal"`
	Label         string   `json:"label"`
	NonEmptyCount int      `json:"non_empty_count"`
	Sample        []string `json:"sample"`
}

// ColumnMap assigns source columns to semantic roles. Question and
// Answer are required and must reference distinct columns; Notes is
// optional.
type ColumnMap struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Notes    string `json:"notes,omitempty"`
}

// IsComplete reports whether both required roles are assigned.
func (m ColumnMap) IsComplete() bool {
	return m.Question != "" && m.Answer != ""
}

// QuestionnaireImport records one parsed source file and its mapping
// state.
type QuestionnaireImport struct {
	ImportID       string       `json:"import_id"`
	SourceFilename string       `json:"source_filename"`
	SourceHash     string       `json:"source_hash"`
	ImportedAt     time.Time    `json:"imported_at"`
	Format         SourceFormat `json:"format"`
	Status         ImportStatus `json:"status"`
	ColumnMap      *ColumnMap   `json:"column_map,omitempty"`
}
