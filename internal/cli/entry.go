package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rvachev/qforge/internal/bank"
	"github.com/rvachev/qforge/internal/errs"
	"github.com/rvachev/qforge/internal/model"
)

var (
	entryQuestion string
	entryShort    string
	entryLong     string
	entryNotes    string
	entryOwner    string
	entrySource   string
	entryTags     []string
	entryLinks    []string
	entryReviewed string

	entryClearNotes    bool
	entryClearReviewed bool

	entryLimit  int
	entryOffset int
)

// entryCmd groups answer bank operations
var entryCmd = &cobra.Command{
	Use:   "entry",
	Short: "Manage answer bank entries",
	Long: `Manage the content-addressed answer bank. Every entry carries a
deterministic content hash over its question and answers; entries that
share a hash are kept but flagged as near-duplicates.`,
}

var entryAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create a new answer bank entry",
	Args:  cobra.NoArgs,
	RunE:  runEntryAdd,
}

var entryUpdateCmd = &cobra.Command{
	Use:   "update <entry-id>",
	Short: "Apply a partial update to an entry",
	Long: `Update changes only the fields whose flags are given. Optional
fields can be explicitly cleared (--clear-notes, --clear-reviewed),
which is different from omitting them. Changing the question or either
answer recomputes the content hash.`,
	Args: cobra.ExactArgs(1),
	RunE: runEntryUpdate,
}

var entryRmCmd = &cobra.Command{
	Use:   "rm <entry-id>",
	Short: "Delete an entry",
	Args:  cobra.ExactArgs(1),
	RunE:  runEntryRm,
}

var entryListCmd = &cobra.Command{
	Use:   "list",
	Short: "List entries in creation order",
	Args:  cobra.NoArgs,
	RunE:  runEntryList,
}

func init() {
	rootCmd.AddCommand(entryCmd)
	entryCmd.AddCommand(entryAddCmd, entryUpdateCmd, entryRmCmd, entryListCmd)

	for _, c := range []*cobra.Command{entryAddCmd, entryUpdateCmd} {
		c.Flags().StringVar(&entryQuestion, "question", "", "canonical question text")
		c.Flags().StringVar(&entryShort, "short", "", "short answer")
		c.Flags().StringVar(&entryLong, "long", "", "long answer")
		c.Flags().StringVar(&entryNotes, "notes", "", "free-form notes")
		c.Flags().StringVar(&entryOwner, "owner", "", "owning person or team")
		c.Flags().StringVar(&entrySource, "source", "", "entry origin: manual, import, match or a custom label")
		c.Flags().StringSliceVar(&entryTags, "tag", nil, "tag (repeatable)")
		c.Flags().StringSliceVar(&entryLinks, "evidence", nil, "evidence link id (repeatable)")
		c.Flags().StringVar(&entryReviewed, "reviewed", "", "last reviewed timestamp (RFC3339)")
	}
	entryUpdateCmd.Flags().BoolVar(&entryClearNotes, "clear-notes", false, "remove the notes field")
	entryUpdateCmd.Flags().BoolVar(&entryClearReviewed, "clear-reviewed", false, "remove the last reviewed timestamp")

	entryListCmd.Flags().IntVar(&entryLimit, "limit", 20, "page size (0 = all)")
	entryListCmd.Flags().IntVar(&entryOffset, "offset", 0, "page offset")
}

func runEntryAdd(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	log := newLogger()
	defer func() { _ = log.Sync() }()

	store, db, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	in := bank.CreateInput{
		QuestionCanonical: entryQuestion,
		AnswerShort:       entryShort,
		AnswerLong:        entryLong,
		Notes:             entryNotes,
		EvidenceLinks:     entryLinks,
		Owner:             entryOwner,
		Tags:              entryTags,
		Source:            model.NewSource(entrySource),
	}
	if entryReviewed != "" {
		ts, err := time.Parse(time.RFC3339, entryReviewed)
		if err != nil {
			return fmt.Errorf("parse --reviewed: %w", err)
		}
		in.LastReviewedAt = &ts
	}

	e, err := store.Create(cmd.Context(), in)
	if err != nil {
		var ve *errs.Err
		if errors.As(err, &ve) && ve.Code == errs.CodeValidation {
			fmt.Println("Entry rejected:")
			printIssues(ve.Issues)
		}
		return err
	}

	fmt.Printf("✓ Created entry %s\n", e.EntryID)
	fmt.Printf("  content hash: %s\n", e.ContentHash)
	if e.DuplicateOf != "" {
		fmt.Printf("  ⚠ near-duplicate of %s (same content hash)\n", e.DuplicateOf)
	}
	return nil
}

func runEntryUpdate(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	log := newLogger()
	defer func() { _ = log.Sync() }()

	store, db, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	var p bank.Patch
	flags := cmd.Flags()
	if flags.Changed("question") {
		p.QuestionCanonical = bank.Set(entryQuestion)
	}
	if flags.Changed("short") {
		p.AnswerShort = bank.Set(entryShort)
	}
	if flags.Changed("long") {
		p.AnswerLong = bank.Set(entryLong)
	}
	if flags.Changed("owner") {
		p.Owner = bank.Set(entryOwner)
	}
	if flags.Changed("source") {
		p.Source = bank.Set(entrySource)
	}
	if flags.Changed("tag") {
		p.Tags = bank.Set(entryTags)
	}
	if flags.Changed("evidence") {
		p.EvidenceLinks = bank.Set(entryLinks)
	}
	switch {
	case entryClearNotes:
		p.Notes = bank.Clear[string]()
	case flags.Changed("notes"):
		p.Notes = bank.Set(entryNotes)
	}
	switch {
	case entryClearReviewed:
		p.LastReviewedAt = bank.Clear[time.Time]()
	case flags.Changed("reviewed"):
		ts, err := time.Parse(time.RFC3339, entryReviewed)
		if err != nil {
			return fmt.Errorf("parse --reviewed: %w", err)
		}
		p.LastReviewedAt = bank.Set(ts)
	}

	if p.IsEmpty() {
		fmt.Println("Nothing to update.")
		return nil
	}

	e, err := store.Update(cmd.Context(), args[0], p)
	if err != nil {
		var ve *errs.Err
		if errors.As(err, &ve) && ve.Code == errs.CodeValidation {
			fmt.Println("Update rejected:")
			printIssues(ve.Issues)
		}
		return err
	}

	fmt.Printf("✓ Updated entry %s\n", e.EntryID)
	fmt.Printf("  content hash: %s\n", e.ContentHash)
	if e.DuplicateOf != "" {
		fmt.Printf("  ⚠ near-duplicate of %s (same content hash)\n", e.DuplicateOf)
	}
	return nil
}

func runEntryRm(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	log := newLogger()
	defer func() { _ = log.Sync() }()

	store, db, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	if err := store.Delete(cmd.Context(), args[0]); err != nil {
		return err
	}
	fmt.Printf("✓ Deleted entry %s\n", args[0])
	return nil
}

func runEntryList(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	log := newLogger()
	defer func() { _ = log.Sync() }()

	store, db, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer func() { _ = db.Close() }()

	entries, err := store.List(cmd.Context(), entryLimit, entryOffset)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		fmt.Println("No entries.")
		return nil
	}

	for _, e := range entries {
		fmt.Printf("%s  [%s] %s\n", e.EntryID, e.Source, e.QuestionCanonical)
		fmt.Printf("    %s\n", e.AnswerShort)
	}
	return nil
}
