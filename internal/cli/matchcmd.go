package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var matchTop int

// matchCmd represents the match command
var matchCmd = &cobra.Command{
	Use:   "match <question>",
	Short: "Suggest answer bank entries for a question",
	Long: `Match scores the question against every answer bank entry and
prints the top suggestions with a deterministic confidence
explanation. The same question against an unchanged bank always
returns the same ranking.

Example:
  qforge match "What is your security policy?"
  qforge match "Do you encrypt data at rest?" --top 3`,
	Args: cobra.ExactArgs(1),
	RunE: runMatch,
}

func init() {
	rootCmd.AddCommand(matchCmd)

	matchCmd.Flags().IntVar(&matchTop, "top", 0, "number of suggestions (default from config)")
}

func runMatch(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	log := newLogger()
	defer func() { _ = log.Sync() }()

	store, db, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	entries, err := store.Snapshot(cmd.Context())
	if err != nil {
		return err
	}

	topN := matchTop
	if topN == 0 {
		topN = cfg.Match.TopN
	}

	suggestions, err := newEngine(cfg).Suggest(args[0], topN, entries)
	if err != nil {
		return err
	}
	if len(suggestions) == 0 {
		fmt.Println("No matches.")
		return nil
	}

	byID := make(map[string]int, len(entries))
	for i := range entries {
		byID[entries[i].EntryID] = i
	}

	for i, s := range suggestions {
		fmt.Printf("%d. score %.2f  %s\n", i+1, s.Score, s.ConfidenceExplanation)
		if idx, ok := byID[s.AnswerBankEntryID]; ok {
			fmt.Printf("   Q: %s\n", entries[idx].QuestionCanonical)
			fmt.Printf("   A: %s\n", entries[idx].AnswerShort)
		}
		fmt.Printf("   entry: %s\n", s.AnswerBankEntryID)
	}
	return nil
}
