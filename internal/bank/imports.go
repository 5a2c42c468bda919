package bank

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rvachev/qforge/internal/errs"
	"github.com/rvachev/qforge/internal/mapping"
	"github.com/rvachev/qforge/internal/model"
)

type importRow struct {
	ImportID       string         `db:"import_id"`
	SourceFilename string         `db:"source_filename"`
	SourceHash     string         `db:"source_hash"`
	ImportedAt     string         `db:"imported_at"`
	Format         string         `db:"format"`
	Status         string         `db:"status"`
	ColumnMap      sql.NullString `db:"column_map"`
}

type columnRow struct {
	ImportID      string `db:"import_id"`
	ColRef        string `db:"col_ref"`
	Ordinal       int    `db:"ordinal"`
	Label         string `db:"label"`
	NonEmptyCount int    `db:"non_empty_count"`
	Sample        string `db:"sample"`
}

// RecordImport persists a freshly parsed questionnaire import with its
// column profiles. The returned import has status "imported" and no
// column map yet.
func (s *Store) RecordImport(ctx context.Context, sourceFilename, sourceHash string, format model.SourceFormat, profiles []model.ColumnProfile) (*model.QuestionnaireImport, error) {
	imp := &model.QuestionnaireImport{
		ImportID:       uuid.NewString(),
		SourceFilename: sourceFilename,
		SourceHash:     sourceHash,
		ImportedAt:     s.now(),
		Format:         format,
		Status:         model.StatusImported,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errs.Wrap(errs.CodeInternal, "begin import record", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO questionnaire_import (import_id, source_filename, source_hash, imported_at, format, status, column_map)
		VALUES (?, ?, ?, ?, ?, ?, NULL)`,
		imp.ImportID, imp.SourceFilename, imp.SourceHash,
		imp.ImportedAt.Format(time.RFC3339), string(imp.Format), string(imp.Status))
	if err != nil {
		return nil, errs.Wrap(errs.CodeInternal, "insert import", err)
	}

	for _, p := range profiles {
		sample, err := json.Marshal(p.Sample)
		if err != nil {
			return nil, errs.Wrap(errs.CodeInternal, "encode sample", err)
		}
		_, err = tx.ExecContext(ctx, `
			INSERT INTO import_column (import_id, col_ref, ordinal, label, non_empty_count, sample)
			VALUES (?, ?, ?, ?, ?, ?)`,
			imp.ImportID, p.ColRef, p.Ordinal, p.Label, p.NonEmptyCount, string(sample))
		if err != nil {
			return nil, errs.Wrap(errs.CodeInternal, "insert import column", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, errs.Wrap(errs.CodeInternal, "commit import record", err)
	}

	s.log.Info("questionnaire imported",
		zap.String("import_id", imp.ImportID),
		zap.String("source", imp.SourceFilename),
		zap.String("format", string(imp.Format)),
		zap.Int("columns", len(profiles)))
	return imp, nil
}

// GetImport loads one import record.
func (s *Store) GetImport(ctx context.Context, importID string) (*model.QuestionnaireImport, error) {
	var row importRow
	err := s.db.GetContext(ctx, &row,
		`SELECT import_id, source_filename, source_hash, imported_at, format, status, column_map
		 FROM questionnaire_import WHERE import_id = ?`, importID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.Newf(errs.CodeNotFound, "questionnaire import not found: %s", importID)
	}
	if err != nil {
		return nil, errs.Wrap(errs.CodeInternal, "load import", err)
	}
	return importFromRow(&row)
}

// ListImports returns all import records, oldest first.
func (s *Store) ListImports(ctx context.Context) ([]model.QuestionnaireImport, error) {
	var rows []importRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT import_id, source_filename, source_hash, imported_at, format, status, column_map
		 FROM questionnaire_import ORDER BY imported_at ASC, import_id ASC`)
	if err != nil {
		return nil, errs.Wrap(errs.CodeInternal, "list imports", err)
	}
	out := make([]model.QuestionnaireImport, 0, len(rows))
	for i := range rows {
		imp, err := importFromRow(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *imp)
	}
	return out, nil
}

// Columns returns the immutable column profiles captured when the
// import was recorded, in ordinal order.
func (s *Store) Columns(ctx context.Context, importID string) ([]model.ColumnProfile, error) {
	var rows []columnRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT import_id, col_ref, ordinal, label, non_empty_count, sample
		 FROM import_column WHERE import_id = ? ORDER BY ordinal ASC`, importID)
	if err != nil {
		return nil, errs.Wrap(errs.CodeInternal, "load import columns", err)
	}
	if len(rows) == 0 {
		if _, err := s.GetImport(ctx, importID); err != nil {
			return nil, err
		}
	}

	out := make([]model.ColumnProfile, 0, len(rows))
	for _, r := range rows {
		var sample []string
		if err := json.Unmarshal([]byte(r.Sample), &sample); err != nil {
			return nil, errs.Wrap(errs.CodeInternal, "decode sample", err)
		}
		out = append(out, model.ColumnProfile{
			ColRef:        r.ColRef,
			Ordinal:       r.Ordinal,
			Label:         r.Label,
			NonEmptyCount: r.NonEmptyCount,
			Sample:        sample,
		})
	}
	return out, nil
}

// SetColumnMap validates the map against the import's recorded
// profiles and persists it, flipping the import to "mapped". The save
// is rejected wholesale when validation fails: no partial commit.
func (s *Store) SetColumnMap(ctx context.Context, importID string, m model.ColumnMap) (*model.QuestionnaireImport, error) {
	profiles, err := s.Columns(ctx, importID)
	if err != nil {
		return nil, err
	}

	if v := mapping.Validate(m, profiles); !v.OK {
		return nil, errs.NewValidation(v.Issues...)
	}

	encoded, err := json.Marshal(m)
	if err != nil {
		return nil, errs.Wrap(errs.CodeInternal, "encode column map", err)
	}

	s.mu.Lock()
	res, err := s.db.ExecContext(ctx,
		`UPDATE questionnaire_import SET column_map = ?, status = ? WHERE import_id = ?`,
		string(encoded), string(model.StatusMapped), importID)
	s.mu.Unlock()
	if err != nil {
		return nil, errs.Wrap(errs.CodeInternal, "save column map", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil, errs.Newf(errs.CodeNotFound, "questionnaire import not found: %s", importID)
	}

	s.log.Info("column map saved",
		zap.String("import_id", importID),
		zap.String("question", m.Question),
		zap.String("answer", m.Answer))
	return s.GetImport(ctx, importID)
}

func importFromRow(r *importRow) (*model.QuestionnaireImport, error) {
	importedAt, err := time.Parse(time.RFC3339, r.ImportedAt)
	if err != nil {
		return nil, errs.Wrap(errs.CodeInternal, "decode imported_at", err)
	}
	imp := &model.QuestionnaireImport{
		ImportID:       r.ImportID,
		SourceFilename: r.SourceFilename,
		SourceHash:     r.SourceHash,
		ImportedAt:     importedAt,
		Format:         model.SourceFormat(r.Format),
		Status:         model.ImportStatus(r.Status),
	}
	if r.ColumnMap.Valid && r.ColumnMap.String != "" {
		var m model.ColumnMap
		if err := json.Unmarshal([]byte(r.ColumnMap.String), &m); err != nil {
			return nil, errs.Wrap(errs.CodeInternal, "decode column map", err)
		}
		imp.ColumnMap = &m
	}
	return imp, nil
}
