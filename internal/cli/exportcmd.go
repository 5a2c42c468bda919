package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rvachev/qforge/internal/export"
)

var (
	exportSource string
	exportOut    string
)

// exportCmd represents the export command
var exportCmd = &cobra.Command{
	Use:   "export <import-id>",
	Short: "Bundle a mapped import and the answer bank into a verified archive",
	Long: `Export writes a single zip archive containing the questionnaire
re-serialized under its confirmed mapping, every answer bank entry,
and a manifest with per-file hashes. The write is all-or-nothing: a
failed export leaves nothing at the target path.

Re-running export against unchanged state reproduces the same archive
contents apart from the export date.

Example:
  qforge export 7d3c... --file vendor-questionnaire.xlsx -o pack.zip`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

// verifyCmd represents the verify command
var verifyCmd = &cobra.Command{
	Use:   "verify <pack.zip>",
	Short: "Verify an export archive against its manifest",
	Args:  cobra.ExactArgs(1),
	RunE:  runVerify,
}

func init() {
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(verifyCmd)

	exportCmd.Flags().StringVar(&exportSource, "file", "", "path to the original questionnaire file (required)")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "export-pack.zip", "output archive path")
	_ = exportCmd.MarkFlagRequired("file")
}

func runExport(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	log := newLogger()
	defer func() { _ = log.Sync() }()

	store, db, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	imp, table, err := loadMappedImport(cmd, store, args[0], exportSource)
	if err != nil {
		return err
	}

	entries, err := store.Snapshot(cmd.Context())
	if err != nil {
		return err
	}

	pack, err := export.NewPackager(log).Pack(cmd.Context(), imp, *imp.ColumnMap, table, entries, exportOut)
	if err != nil {
		return err
	}

	fmt.Printf("✓ Export pack written: %s\n", pack.ZipPath)
	fmt.Printf("  manifest version: %s\n", pack.ManifestVersion)
	fmt.Printf("  files:            %d\n", pack.FileCount)
	fmt.Printf("  entries:          %d\n", pack.Manifest.EntryCount)
	fmt.Printf("  archive sha256:   %s\n", pack.ArchiveSHA256)
	return nil
}

func runVerify(cmd *cobra.Command, args []string) error {
	manifest, err := export.Verify(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("✓ Archive verifies: %s\n", args[0])
	fmt.Printf("  exported:  %s\n", manifest.ExportDate)
	fmt.Printf("  version:   %s\n", manifest.Version)
	fmt.Printf("  entries:   %d\n", manifest.EntryCount)
	fmt.Printf("  files:     %d\n", len(manifest.Files)+1)
	return nil
}
