package export

import (
	"archive/zip"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/rvachev/qforge/internal/errs"
	"github.com/rvachev/qforge/internal/model"
	"github.com/rvachev/qforge/internal/profile"
)

// Fixed modification time for zip headers. Identical state must
// produce structurally identical archives, so wall-clock mtimes never
// leak into them.
var archiveEpoch = time.Date(1980, time.January, 1, 0, 0, 0, 0, time.UTC)

// Packager writes export archives.
type Packager struct {
	log *zap.Logger
	now func() time.Time
}

// NewPackager creates a packager.
func NewPackager(log *zap.Logger) *Packager {
	if log == nil {
		log = zap.NewNop()
	}
	return &Packager{
		log: log,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Pack serializes the mapped import, its source rows re-serialized
// under the confirmed mapping, and the answer bank snapshot into a
// single archive at dest. The write is all-or-nothing: on any failure
// the partial file is removed and no archive is left at dest.
func (p *Packager) Pack(ctx context.Context, imp *model.QuestionnaireImport, cmap model.ColumnMap, table *profile.Table, entries []model.AnswerBankEntry, dest string) (*ExportPack, error) {
	if !cmap.IsComplete() {
		return nil, errs.New(errs.CodeExportFailed, "column map is incomplete; map the import before exporting")
	}

	files, err := buildFiles(cmap, table, entries)
	if err != nil {
		return nil, err
	}

	manifest := &Manifest{
		ExportDate: p.now().Format(time.RFC3339),
		Version:    ManifestVersion,
		EntryCount: len(entries),
	}
	for _, f := range files {
		sum := sha256.Sum256(f.data)
		manifest.Files = append(manifest.Files, ManifestFile{
			Path:   f.name,
			SHA256: hex.EncodeToString(sum[:]),
			Size:   int64(len(f.data)),
		})
	}

	manifestBytes, err := manifest.Encode()
	if err != nil {
		return nil, errs.Wrap(errs.CodeExportFailed, "encode manifest", err)
	}
	files = append(files, archiveFile{name: "manifest.json", data: manifestBytes})
	sort.Slice(files, func(i, j int) bool { return files[i].name < files[j].name })

	archiveHash, err := p.writeArchive(ctx, dest, files)
	if err != nil {
		return nil, err
	}

	p.log.Info("export pack written",
		zap.String("zip_path", dest),
		zap.Int("file_count", len(files)),
		zap.Int("entry_count", len(entries)),
		zap.String("archive_sha256", archiveHash))

	return &ExportPack{
		ZipPath:         dest,
		ManifestVersion: ManifestVersion,
		FileCount:       len(files),
		ArchiveSHA256:   archiveHash,
		Manifest:        *manifest,
	}, nil
}

type archiveFile struct {
	name string
	data []byte
}

// buildFiles assembles the data files: the re-serialized questionnaire
// plus one JSON record per answer bank entry.
func buildFiles(cmap model.ColumnMap, table *profile.Table, entries []model.AnswerBankEntry) ([]archiveFile, error) {
	qIdx, aIdx, nIdx := -1, -1, -1
	for i, h := range table.Headers {
		switch h {
		case cmap.Question:
			qIdx = i
		case cmap.Answer:
			aIdx = i
		}
		if cmap.Notes != "" && h == cmap.Notes {
			nIdx = i
		}
	}
	if qIdx < 0 || aIdx < 0 {
		return nil, errs.New(errs.CodeExportFailed, "column map does not match the source table")
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := []string{"question", "answer"}
	if nIdx >= 0 {
		header = append(header, "notes")
	}
	if err := w.Write(header); err != nil {
		return nil, errs.Wrap(errs.CodeExportFailed, "serialize questionnaire", err)
	}
	for row := range table.Rows {
		rec := []string{table.Cell(row, qIdx), table.Cell(row, aIdx)}
		if nIdx >= 0 {
			rec = append(rec, table.Cell(row, nIdx))
		}
		if err := w.Write(rec); err != nil {
			return nil, errs.Wrap(errs.CodeExportFailed, "serialize questionnaire", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, errs.Wrap(errs.CodeExportFailed, "serialize questionnaire", err)
	}

	files := []archiveFile{{name: "questionnaire.csv", data: buf.Bytes()}}

	for i := range entries {
		data, err := json.MarshalIndent(&entries[i], "", "  ")
		if err != nil {
			return nil, errs.Wrap(errs.CodeExportFailed, "serialize entry", err)
		}
		files = append(files, archiveFile{
			name: fmt.Sprintf("entries/%s.json", entries[i].EntryID),
			data: data,
		})
	}
	return files, nil
}

// writeArchive writes the zip to dest via a .partial sibling, renaming
// into place only after a clean close. Returns the archive sha256.
func (p *Packager) writeArchive(ctx context.Context, dest string, files []archiveFile) (hash string, err error) {
	if dir := filepath.Dir(dest); dir != "." {
		if mkErr := os.MkdirAll(dir, 0o755); mkErr != nil {
			return "", errs.Wrap(errs.CodeExportFailed, "create export directory", mkErr)
		}
	}

	partial := dest + ".partial"
	f, err := os.Create(partial)
	if err != nil {
		return "", errs.Wrap(errs.CodeExportFailed, "create archive", err)
	}
	defer func() {
		if err != nil {
			_ = f.Close()
			_ = os.Remove(partial)
		}
	}()

	zw := zip.NewWriter(f)
	for _, af := range files {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return "", errs.Wrap(errs.CodeExportFailed, "export canceled", ctxErr)
		}
		hdr := &zip.FileHeader{
			Name:     af.name,
			Method:   zip.Deflate,
			Modified: archiveEpoch,
		}
		w, wErr := zw.CreateHeader(hdr)
		if wErr != nil {
			return "", errs.Wrap(errs.CodeExportFailed, "write archive entry", wErr)
		}
		if _, wErr := w.Write(af.data); wErr != nil {
			return "", errs.Wrap(errs.CodeExportFailed, "write archive entry", wErr)
		}
	}
	if err = zw.Close(); err != nil {
		return "", errs.Wrap(errs.CodeExportFailed, "finalize archive", err)
	}
	if err = f.Sync(); err != nil {
		return "", errs.Wrap(errs.CodeExportFailed, "flush archive", err)
	}
	if err = f.Close(); err != nil {
		return "", errs.Wrap(errs.CodeExportFailed, "close archive", err)
	}

	data, err := os.ReadFile(partial)
	if err != nil {
		return "", errs.Wrap(errs.CodeExportFailed, "hash archive", err)
	}
	sum := sha256.Sum256(data)

	if err = os.Rename(partial, dest); err != nil {
		_ = os.Remove(partial)
		return "", errs.Wrap(errs.CodeExportFailed, "move archive into place", err)
	}
	return hex.EncodeToString(sum[:]), nil
}
