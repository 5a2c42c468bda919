package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rvachev/qforge/internal/errs"
	"github.com/rvachev/qforge/internal/model"
)

var (
	mapQuestion string
	mapAnswer   string
	mapNotes    string
)

// mapCmd represents the map command
var mapCmd = &cobra.Command{
	Use:   "map <import-id>",
	Short: "Confirm or edit the column mapping of an import",
	Long: `Map assigns source columns to the question/answer/notes roles and
saves the mapping. The save is all-or-nothing: if validation fails the
import stays untouched and every issue is reported with its field.

Example:
  qforge map 7d3c... --question "Question Text" --answer "Answer Details"
  qforge map 7d3c... --question Q --answer A --notes "Reviewer Notes"`,
	Args: cobra.ExactArgs(1),
	RunE: runMap,
}

func init() {
	rootCmd.AddCommand(mapCmd)

	mapCmd.Flags().StringVar(&mapQuestion, "question", "", "column holding the question text")
	mapCmd.Flags().StringVar(&mapAnswer, "answer", "", "column holding the answer text")
	mapCmd.Flags().StringVar(&mapNotes, "notes", "", "column holding reviewer notes (optional)")
}

func runMap(cmd *cobra.Command, args []string) error {
	importID := args[0]
	cfg := loadConfig()
	log := newLogger()
	defer func() { _ = log.Sync() }()

	store, db, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	m := model.ColumnMap{
		Question: mapQuestion,
		Answer:   mapAnswer,
		Notes:    mapNotes,
	}

	imp, err := store.SetColumnMap(cmd.Context(), importID, m)
	if err != nil {
		var e *errs.Err
		if errors.As(err, &e) && e.Code == errs.CodeValidation {
			fmt.Println("Mapping rejected:")
			printIssues(e.Issues)
		}
		return err
	}

	fmt.Printf("✓ Mapping saved; import %s is now %s\n", imp.ImportID, imp.Status)
	return nil
}

// importsCmd lists recorded imports.
var importsCmd = &cobra.Command{
	Use:   "imports",
	Short: "List recorded questionnaire imports",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := loadConfig()
		log := newLogger()
		defer func() { _ = log.Sync() }()

		store, db, err := openStore(cfg, log)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		imports, err := store.ListImports(cmd.Context())
		if err != nil {
			return err
		}
		if len(imports) == 0 {
			fmt.Println("No imports recorded.")
			return nil
		}
		for _, imp := range imports {
			fmt.Printf("%s  %-8s %-5s %s\n", imp.ImportID, imp.Status, imp.Format, imp.SourceFilename)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importsCmd)
}
