package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rvachev/qforge/internal/bank"
	"github.com/rvachev/qforge/internal/mapping"
	"github.com/rvachev/qforge/internal/profile"
)

var (
	importApply  bool
	importSample int
)

// importCmd represents the import command
var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a questionnaire file and propose a column mapping",
	Long: `Import parses a CSV or XLSX questionnaire, profiles its columns and
proposes a question/answer/notes mapping from the column labels.

The proposal is best-effort and may be partial; confirm or edit it
with 'qforge map'. With --apply, a proposal that passes validation is
saved immediately.

Example:
  qforge import vendor-questionnaire.xlsx
  qforge import questions.csv --apply`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)

	importCmd.Flags().BoolVar(&importApply, "apply", false, "save the proposed mapping when it validates")
	importCmd.Flags().IntVar(&importSample, "sample", 0, "sample values kept per column (default from config)")
}

func runImport(cmd *cobra.Command, args []string) error {
	path := args[0]
	cfg := loadConfig()
	log := newLogger()
	defer func() { _ = log.Sync() }()

	format, err := profile.FormatForFilename(path)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read questionnaire: %w", err)
	}

	table, err := profile.ReadTable(bytes.NewReader(data), format)
	if err != nil {
		return err
	}

	sample := cfg.Profile.SampleSize
	if importSample > 0 {
		sample = importSample
	}
	profiles := profile.NewProfiler(sample).Profile(table)

	sourceHash, err := bank.FileHash(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("hash questionnaire: %w", err)
	}

	store, db, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	imp, err := store.RecordImport(cmd.Context(), filepath.Base(path), sourceHash, format, profiles)
	if err != nil {
		return err
	}

	fmt.Printf("Imported %s (%s)\n", imp.SourceFilename, imp.Format)
	fmt.Printf("  import id:   %s\n", imp.ImportID)
	fmt.Printf("  source hash: %s\n", imp.SourceHash)
	fmt.Printf("  columns:     %d, rows: %d\n\n", len(profiles), len(table.Rows))

	for _, p := range profiles {
		preview := strings.Join(p.Sample, " | ")
		if len(preview) > 60 {
			preview = preview[:60] + "…"
		}
		fmt.Printf("  [%d] %-30s %4d non-empty  %s\n", p.Ordinal, p.Label, p.NonEmptyCount, preview)
	}

	proposed := mapping.Infer(profiles)
	fmt.Printf("\nProposed mapping:\n")
	fmt.Printf("  question: %s\n", orUnset(proposed.Question))
	fmt.Printf("  answer:   %s\n", orUnset(proposed.Answer))
	fmt.Printf("  notes:    %s\n", orUnset(proposed.Notes))

	v := mapping.Validate(proposed, profiles)
	if !v.OK {
		fmt.Println("\nMapping is incomplete:")
		printIssues(v.Issues)
		fmt.Printf("\nEdit and save it with:\n  qforge map %s --question <col> --answer <col>\n", imp.ImportID)
		return nil
	}

	if importApply {
		if _, err := store.SetColumnMap(cmd.Context(), imp.ImportID, proposed); err != nil {
			return err
		}
		fmt.Println("\n✓ Mapping validated and saved; import is ready for review/export.")
		return nil
	}

	fmt.Printf("\nMapping validates. Save it with:\n  qforge map %s --question %q --answer %q\n",
		imp.ImportID, proposed.Question, proposed.Answer)
	return nil
}

func orUnset(s string) string {
	if s == "" {
		return "(unset)"
	}
	return s
}
