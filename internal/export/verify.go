package export

import (
	"archive/zip"
	"crypto/sha256"
	"encoding/hex"
	"io"

	"github.com/rvachev/qforge/internal/errs"
)

// Verify re-opens an export archive and checks it against its own
// manifest: every listed file must exist and hash to its recorded
// sha256. Any tampering with packed bytes fails here.
func Verify(zipPath string) (*Manifest, error) {
	zr, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, errs.Wrap(errs.CodeExportFailed, "open archive", err)
	}
	defer func() { _ = zr.Close() }()

	byName := make(map[string]*zip.File, len(zr.File))
	for _, f := range zr.File {
		byName[f.Name] = f
	}

	mf, ok := byName["manifest.json"]
	if !ok {
		return nil, errs.New(errs.CodeExportFailed, "archive has no manifest.json")
	}
	manifestBytes, err := readZipFile(mf)
	if err != nil {
		return nil, err
	}
	manifest, err := ParseManifest(manifestBytes)
	if err != nil {
		return nil, err
	}

	for _, want := range manifest.Files {
		f, ok := byName[want.Path]
		if !ok {
			return nil, errs.Newf(errs.CodeExportFailed, "archive is missing %s", want.Path)
		}
		data, err := readZipFile(f)
		if err != nil {
			return nil, err
		}
		sum := sha256.Sum256(data)
		if hex.EncodeToString(sum[:]) != want.SHA256 {
			return nil, errs.Newf(errs.CodeExportFailed, "hash mismatch for %s", want.Path)
		}
		if int64(len(data)) != want.Size {
			return nil, errs.Newf(errs.CodeExportFailed, "size mismatch for %s", want.Path)
		}
	}
	return manifest, nil
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, errs.Wrap(errs.CodeExportFailed, "read archive entry", err)
	}
	defer func() { _ = rc.Close() }()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, errs.Wrap(errs.CodeExportFailed, "read archive entry", err)
	}
	return data, nil
}
