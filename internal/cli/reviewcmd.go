package cli

import (
	"bytes"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/rvachev/qforge/internal/bank"
	"github.com/rvachev/qforge/internal/errs"
	"github.com/rvachev/qforge/internal/model"
	"github.com/rvachev/qforge/internal/profile"
	"github.com/rvachev/qforge/internal/worker"
)

var (
	reviewSource string
	reviewTop    int
)

// reviewCmd represents the review command
var reviewCmd = &cobra.Command{
	Use:   "review <import-id>",
	Short: "Match every question of a mapped import against the answer bank",
	Long: `Review re-reads the original questionnaire file, verifies it is the
same file that was imported (by hash), and runs the matching engine
over every question row concurrently.

Example:
  qforge review 7d3c... --file vendor-questionnaire.xlsx`,
	Args: cobra.ExactArgs(1),
	RunE: runReview,
}

func init() {
	rootCmd.AddCommand(reviewCmd)

	reviewCmd.Flags().StringVar(&reviewSource, "file", "", "path to the original questionnaire file (required)")
	reviewCmd.Flags().IntVar(&reviewTop, "top", 3, "suggestions per question")
	_ = reviewCmd.MarkFlagRequired("file")
}

func runReview(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	log := newLogger()
	defer func() { _ = log.Sync() }()

	store, db, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	imp, table, err := loadMappedImport(cmd, store, args[0], reviewSource)
	if err != nil {
		return err
	}

	entries, err := store.Snapshot(cmd.Context())
	if err != nil {
		return err
	}

	reviewer := worker.NewReviewer(newEngine(cfg), cfg.Review.Workers)
	rows, err := reviewer.ReviewTable(cmd.Context(), table, *imp.ColumnMap, entries, reviewTop)
	if err != nil {
		return err
	}

	matched := 0
	for _, row := range rows {
		fmt.Printf("row %d: %s\n", row.RowIndex+1, row.Question)
		if len(row.Suggestions) == 0 {
			fmt.Println("   (no suggestions)")
			continue
		}
		matched++
		for _, s := range row.Suggestions {
			fmt.Printf("   %.2f  %s  %s\n", s.Score, s.AnswerBankEntryID, s.ConfidenceExplanation)
		}
	}
	fmt.Printf("\n%d/%d questions have suggestions\n", matched, len(rows))
	return nil
}

// loadMappedImport loads an import that must already be mapped,
// re-reads its source file and verifies the bytes are unchanged.
func loadMappedImport(cmd *cobra.Command, store *bank.Store, importID, sourcePath string) (*model.QuestionnaireImport, *profile.Table, error) {
	imp, err := store.GetImport(cmd.Context(), importID)
	if err != nil {
		return nil, nil, err
	}
	if imp.Status != model.StatusMapped || imp.ColumnMap == nil {
		return nil, nil, errs.Newf(errs.CodeValidation, "import %s has no confirmed column map; run 'qforge map' first", importID)
	}

	data, err := os.ReadFile(sourcePath)
	if err != nil {
		return nil, nil, fmt.Errorf("read questionnaire: %w", err)
	}

	hash, err := bank.FileHash(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("hash questionnaire: %w", err)
	}
	if hash != imp.SourceHash {
		return nil, nil, errs.Newf(errs.CodeValidation, "%s does not match the imported file (hash mismatch)", sourcePath)
	}

	table, err := profile.ReadTable(bytes.NewReader(data), imp.Format)
	if err != nil {
		return nil, nil, err
	}
	return imp, table, nil
}
