// Package export bundles a mapped questionnaire import and the answer
// bank into a versioned, hash-verified zip archive.
package export

import (
	"encoding/json"

	"github.com/rvachev/qforge/internal/errs"
)

// ManifestVersion is the fixed version written into every manifest.
// Readers reject versions they do not know how to interpret.
const ManifestVersion = "1"

// ManifestFile describes one archived file.
type ManifestFile struct {
	Path   string `json:"path"`
	SHA256 string `json:"sha256"`
	Size   int64  `json:"size"`
}

// Manifest is the persisted artifact shape. It stays stable across
// versions for backward-compatible reads; consumers tolerate unknown
// future fields.
type Manifest struct {
	ExportDate string         `json:"export_date"` // ISO-8601
	Version    string         `json:"version"`
	EntryCount int            `json:"entry_count"`
	Files      []ManifestFile `json:"files"`
}

// Encode renders the manifest as indented JSON with a stable field
// order, so identical state produces identical bytes apart from the
// export date.
func (m *Manifest) Encode() ([]byte, error) {
	return json.MarshalIndent(m, "", "  ")
}

// ParseManifest decodes manifest bytes. Unknown fields are ignored
// (forward-compatible reads); an unknown version is rejected.
func ParseManifest(data []byte) (*Manifest, error) {
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, errs.Wrap(errs.CodeParse, "malformed export manifest", err)
	}
	if m.Version != ManifestVersion {
		return nil, errs.Newf(errs.CodeUnsupportedFormat, "unknown manifest version %q", m.Version)
	}
	return &m, nil
}

// ExportPack describes one completed export archive. Immutable after
// creation; the archive hash covers the full zip contents so a later
// re-open can verify integrity.
type ExportPack struct {
	ZipPath         string   `json:"zip_path"`
	ManifestVersion string   `json:"manifest_version"`
	FileCount       int      `json:"file_count"`
	ArchiveSHA256   string   `json:"archive_sha256"`
	Manifest        Manifest `json:"manifest"`
}
