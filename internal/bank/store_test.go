package bank

import (
	"context"
	"reflect"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/rvachev/qforge/internal/errs"
	"github.com/rvachev/qforge/internal/model"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewStore(db, zap.NewNop())
}

func validInput(question string) CreateInput {
	return CreateInput{
		QuestionCanonical: question,
		AnswerShort:       "Yes",
		AnswerLong:        "A longer explanation of the control.",
		Owner:             "security-team",
		Source:            model.NewSource("manual"),
	}
}

func TestCreate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	in := validInput("  What is your security policy?  ")
	in.Notes = "check annually"
	in.Tags = []string{"policy", " iso ", "policy"}
	in.EvidenceLinks = []string{"doc-2", "doc-1"}

	e, err := s.Create(ctx, in)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if e.EntryID == "" {
		t.Error("entry id not assigned")
	}
	if e.QuestionCanonical != "What is your security policy?" {
		t.Errorf("question not trimmed: %q", e.QuestionCanonical)
	}
	want := ContentHash(e.QuestionCanonical, e.AnswerShort, e.AnswerLong)
	if e.ContentHash != want {
		t.Errorf("ContentHash = %s, want %s", e.ContentHash, want)
	}
	if !reflect.DeepEqual(e.Tags, []string{"iso", "policy"}) {
		t.Errorf("Tags = %v, want canonicalized set", e.Tags)
	}
	if !reflect.DeepEqual(e.EvidenceLinks, []string{"doc-1", "doc-2"}) {
		t.Errorf("EvidenceLinks = %v, want sorted", e.EvidenceLinks)
	}
	if e.DuplicateOf != "" {
		t.Errorf("fresh entry flagged as duplicate of %s", e.DuplicateOf)
	}

	got, err := s.Get(ctx, e.EntryID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.QuestionCanonical != e.QuestionCanonical || got.Notes != "check annually" {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if got.Source != e.Source {
		t.Errorf("Source = %+v, want %+v", got.Source, e.Source)
	}
}

func TestCreateValidation(t *testing.T) {
	s := newTestStore(t)

	in := CreateInput{AnswerLong: "only the long answer"}
	_, err := s.Create(context.Background(), in)
	if !errs.IsCode(err, errs.CodeValidation) {
		t.Fatalf("code = %v, want %v", errs.CodeOf(err), errs.CodeValidation)
	}

	fields := map[string]bool{}
	for _, is := range errs.IssuesOf(err) {
		fields[is.Field] = true
	}
	for _, f := range []string{"question_canonical", "answer_short", "owner", "source"} {
		if !fields[f] {
			t.Errorf("missing issue for field %q: %v", f, fields)
		}
	}
	if fields["answer_long"] {
		t.Error("answer_long was provided, must not be flagged")
	}
}

func TestGetNotFound(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Get(context.Background(), "no-such-id")
	if !errs.IsCode(err, errs.CodeNotFound) {
		t.Errorf("code = %v, want %v", errs.CodeOf(err), errs.CodeNotFound)
	}
}

func TestUpdate(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	e, err := s.Create(ctx, validInput("What is your security policy?"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	oldHash := e.ContentHash

	t.Run("hashed field recomputes hash", func(t *testing.T) {
		got, err := s.Update(ctx, e.EntryID, Patch{QuestionCanonical: Set("Do you have a security policy?")})
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if got.ContentHash == oldHash {
			t.Error("hash must change when the question changes")
		}
		if want := ContentHash(got.QuestionCanonical, got.AnswerShort, got.AnswerLong); got.ContentHash != want {
			t.Errorf("ContentHash = %s, want %s", got.ContentHash, want)
		}
	})

	t.Run("metadata change keeps hash", func(t *testing.T) {
		before, _ := s.Get(ctx, e.EntryID)
		got, err := s.Update(ctx, e.EntryID, Patch{Notes: Set("quarterly review"), Owner: Set("grc-team")})
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if got.ContentHash != before.ContentHash {
			t.Error("notes and owner are excluded from the hash")
		}
		if got.Notes != "quarterly review" || got.Owner != "grc-team" {
			t.Errorf("patch not applied: %+v", got)
		}
	})

	t.Run("clear optional fields", func(t *testing.T) {
		ts := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		if _, err := s.Update(ctx, e.EntryID, Patch{LastReviewedAt: Set(ts)}); err != nil {
			t.Fatalf("Update() error = %v", err)
		}

		got, err := s.Update(ctx, e.EntryID, Patch{
			Notes:          Clear[string](),
			LastReviewedAt: Clear[time.Time](),
		})
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if got.Notes != "" {
			t.Errorf("Notes = %q, want cleared", got.Notes)
		}
		if got.LastReviewedAt != nil {
			t.Errorf("LastReviewedAt = %v, want cleared", got.LastReviewedAt)
		}
	})

	t.Run("clearing a required field rejected", func(t *testing.T) {
		_, err := s.Update(ctx, e.EntryID, Patch{AnswerShort: Clear[string]()})
		if !errs.IsCode(err, errs.CodeValidation) {
			t.Fatalf("code = %v, want %v", errs.CodeOf(err), errs.CodeValidation)
		}
		issues := errs.IssuesOf(err)
		if len(issues) != 1 || issues[0].Code != "REQUIRED_FIELD" || issues[0].Field != "answer_short" {
			t.Errorf("issues = %+v", issues)
		}
	})

	t.Run("setting a required field empty rejected", func(t *testing.T) {
		_, err := s.Update(ctx, e.EntryID, Patch{Owner: Set("   ")})
		if !errs.IsCode(err, errs.CodeValidation) {
			t.Fatalf("code = %v, want %v", errs.CodeOf(err), errs.CodeValidation)
		}
	})

	t.Run("failed patch leaves entry untouched", func(t *testing.T) {
		before, _ := s.Get(ctx, e.EntryID)
		_, err := s.Update(ctx, e.EntryID, Patch{
			Owner:             Set("new-owner"),
			QuestionCanonical: Clear[string](),
		})
		if err == nil {
			t.Fatal("expected rejection")
		}
		after, _ := s.Get(ctx, e.EntryID)
		if !reflect.DeepEqual(before, after) {
			t.Errorf("entry changed despite rejected patch:\nbefore %+v\nafter  %+v", before, after)
		}
	})

	t.Run("no-op patch", func(t *testing.T) {
		before, _ := s.Get(ctx, e.EntryID)
		got, err := s.Update(ctx, e.EntryID, Patch{Owner: Set(before.Owner)})
		if err != nil {
			t.Fatalf("Update() error = %v", err)
		}
		if got.UpdatedAt != before.UpdatedAt {
			t.Error("no-op patch must not refresh updated_at")
		}
	})

	t.Run("unknown entry", func(t *testing.T) {
		_, err := s.Update(ctx, "no-such-id", Patch{Owner: Set("x")})
		if !errs.IsCode(err, errs.CodeNotFound) {
			t.Errorf("code = %v, want %v", errs.CodeOf(err), errs.CodeNotFound)
		}
	})
}

func TestDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	e, err := s.Create(ctx, validInput("Is MFA enforced?"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if err := s.Delete(ctx, e.EntryID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, err := s.Get(ctx, e.EntryID); !errs.IsCode(err, errs.CodeNotFound) {
		t.Error("deleted entry still readable")
	}

	// Second delete of the same id is NotFound, not a silent success.
	if err := s.Delete(ctx, e.EntryID); !errs.IsCode(err, errs.CodeNotFound) {
		t.Errorf("double delete code = %v, want %v", errs.CodeOf(err), errs.CodeNotFound)
	}
}

func TestListPagination(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	questions := []string{"q one", "q two", "q three", "q four", "q five"}
	ids := make([]string, 0, len(questions))
	for _, q := range questions {
		e, err := s.Create(ctx, validInput(q))
		if err != nil {
			t.Fatalf("Create(%q) error = %v", q, err)
		}
		ids = append(ids, e.EntryID)
	}

	all, err := s.List(ctx, 0, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(all) != len(ids) {
		t.Fatalf("len(all) = %d, want %d", len(all), len(ids))
	}
	for i, e := range all {
		if e.EntryID != ids[i] {
			t.Errorf("creation order broken at %d: %s, want %s", i, e.EntryID, ids[i])
		}
	}

	page, err := s.List(ctx, 2, 2)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(page) != 2 || page[0].EntryID != ids[2] || page[1].EntryID != ids[3] {
		t.Errorf("page(2,2) = %v entries, want ids[2:4]", len(page))
	}

	tail, err := s.List(ctx, 10, 4)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(tail) != 1 || tail[0].EntryID != ids[4] {
		t.Errorf("tail page wrong: %d entries", len(tail))
	}

	past, err := s.List(ctx, 10, 100)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(past) != 0 {
		t.Errorf("offset past end = %d entries, want 0", len(past))
	}
}

func TestDuplicateContentHash(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.Create(ctx, validInput("What is your security policy?"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	// Same triple, different metadata: legal, but flagged.
	in := validInput("What is your security policy?")
	in.Owner = "other-team"
	second, err := s.Create(ctx, in)
	if err != nil {
		t.Fatalf("duplicate Create() error = %v, want success", err)
	}
	if second.ContentHash != first.ContentHash {
		t.Fatal("identical triples must share a content hash")
	}
	if second.DuplicateOf != first.EntryID {
		t.Errorf("DuplicateOf = %q, want %s", second.DuplicateOf, first.EntryID)
	}

	// Updating into a collision flags too.
	third, err := s.Create(ctx, validInput("Something entirely different?"))
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	got, err := s.Update(ctx, third.EntryID, Patch{QuestionCanonical: Set("What is your security policy?")})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if got.DuplicateOf != first.EntryID {
		t.Errorf("DuplicateOf after update = %q, want %s", got.DuplicateOf, first.EntryID)
	}
}
