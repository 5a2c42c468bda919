package bank

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"

	"github.com/rvachev/qforge/internal/errs"
	"github.com/rvachev/qforge/internal/model"
)

// Store is the single owner of answer bank entry lifecycle. Mutations
// are serialized so the read-modify-write around hash recomputation is
// atomic; readers get consistent snapshots via transactions.
type Store struct {
	db  *sqlx.DB
	log *zap.Logger
	now func() time.Time

	mu sync.Mutex // serializes mutations
}

// NewStore creates a store over an opened bank database.
func NewStore(db *sqlx.DB, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	return &Store{
		db:  db,
		log: log,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// CreateInput is the input for creating a new entry.
type CreateInput struct {
	QuestionCanonical string
	AnswerShort       string
	AnswerLong        string
	Notes             string
	EvidenceLinks     []string
	Owner             string
	LastReviewedAt    *time.Time
	Tags              []string
	Source            model.Source
}

// entryRow mirrors the answer_bank_entry table.
type entryRow struct {
	Seq               int64          `db:"seq"`
	EntryID           string         `db:"entry_id"`
	QuestionCanonical string         `db:"question_canonical"`
	AnswerShort       string         `db:"answer_short"`
	AnswerLong        string         `db:"answer_long"`
	Notes             sql.NullString `db:"notes"`
	EvidenceLinks     string         `db:"evidence_links"`
	Owner             string         `db:"owner"`
	LastReviewedAt    sql.NullString `db:"last_reviewed_at"`
	Tags              string         `db:"tags"`
	Source            string         `db:"source"`
	ContentHash       string         `db:"content_hash"`
	CreatedAt         string         `db:"created_at"`
	UpdatedAt         string         `db:"updated_at"`
}

const entryColumns = `seq, entry_id, question_canonical, answer_short, answer_long,
	notes, evidence_links, owner, last_reviewed_at, tags, source,
	content_hash, created_at, updated_at`

// Create validates the input, computes the content hash, assigns an
// entry id and persists the entry. Evidence links and tags default to
// empty sets and are canonicalized (trimmed, deduplicated, sorted).
func (s *Store) Create(ctx context.Context, in CreateInput) (*model.AnswerBankEntry, error) {
	var issues []errs.Issue
	requireText(&issues, "question_canonical", in.QuestionCanonical)
	requireText(&issues, "answer_short", in.AnswerShort)
	requireText(&issues, "answer_long", in.AnswerLong)
	requireText(&issues, "owner", in.Owner)
	if in.Source.IsZero() {
		issues = append(issues, errs.Issue{
			Code:    "MISSING_FIELD",
			Message: "source is required",
			Field:   "source",
		})
	}
	if len(issues) > 0 {
		return nil, errs.NewValidation(issues...)
	}

	now := s.now()
	e := model.AnswerBankEntry{
		EntryID:           uuid.NewString(),
		QuestionCanonical: strings.TrimSpace(in.QuestionCanonical),
		AnswerShort:       strings.TrimSpace(in.AnswerShort),
		AnswerLong:        strings.TrimSpace(in.AnswerLong),
		Notes:             strings.TrimSpace(in.Notes),
		EvidenceLinks:     canonicalSet(in.EvidenceLinks),
		Owner:             strings.TrimSpace(in.Owner),
		LastReviewedAt:    in.LastReviewedAt,
		Tags:              canonicalSet(in.Tags),
		Source:            in.Source,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	e.ContentHash = ContentHash(e.QuestionCanonical, e.AnswerShort, e.AnswerLong)

	s.mu.Lock()
	defer s.mu.Unlock()

	row, err := toRow(&e)
	if err != nil {
		return nil, errs.Wrap(errs.CodeInternal, "encode entry", err)
	}

	_, err = s.db.NamedExecContext(ctx, `
		INSERT INTO answer_bank_entry (
			entry_id, question_canonical, answer_short, answer_long,
			notes, evidence_links, owner, last_reviewed_at, tags, source,
			content_hash, created_at, updated_at
		) VALUES (
			:entry_id, :question_canonical, :answer_short, :answer_long,
			:notes, :evidence_links, :owner, :last_reviewed_at, :tags, :source,
			:content_hash, :created_at, :updated_at
		)`, row)
	if err != nil {
		return nil, errs.Wrap(errs.CodeInternal, "insert entry", err)
	}

	s.flagDuplicate(ctx, &e)
	return &e, nil
}

// Get returns the entry with the given id.
func (s *Store) Get(ctx context.Context, entryID string) (*model.AnswerBankEntry, error) {
	var row entryRow
	err := s.db.GetContext(ctx, &row,
		`SELECT `+entryColumns+` FROM answer_bank_entry WHERE entry_id = ?`, entryID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.Newf(errs.CodeNotFound, "answer bank entry not found: %s", entryID)
	}
	if err != nil {
		return nil, errs.Wrap(errs.CodeInternal, "load entry", err)
	}
	return fromRow(&row)
}

// Update applies a partial patch. The content hash is recomputed iff
// one of the hashed fields changed; updated_at refreshes on any
// change. The write is transactional: a failure leaves the stored
// entry untouched.
func (s *Store) Update(ctx context.Context, entryID string, p Patch) (*model.AnswerBankEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errs.Wrap(errs.CodeInternal, "begin update", err)
	}
	defer func() { _ = tx.Rollback() }()

	var row entryRow
	err = tx.GetContext(ctx, &row,
		`SELECT `+entryColumns+` FROM answer_bank_entry WHERE entry_id = ?`, entryID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, errs.Newf(errs.CodeNotFound, "answer bank entry not found: %s", entryID)
	}
	if err != nil {
		return nil, errs.Wrap(errs.CodeInternal, "load entry", err)
	}

	e, err := fromRow(&row)
	if err != nil {
		return nil, err
	}

	prevHash := e.ContentHash
	changed, err := applyPatch(e, p)
	if err != nil {
		return nil, err
	}
	if !changed {
		return e, nil
	}

	e.ContentHash = ContentHash(e.QuestionCanonical, e.AnswerShort, e.AnswerLong)
	e.UpdatedAt = s.now()

	updated, err := toRow(e)
	if err != nil {
		return nil, errs.Wrap(errs.CodeInternal, "encode entry", err)
	}
	_, err = tx.NamedExecContext(ctx, `
		UPDATE answer_bank_entry SET
			question_canonical = :question_canonical,
			answer_short       = :answer_short,
			answer_long        = :answer_long,
			notes              = :notes,
			evidence_links     = :evidence_links,
			owner              = :owner,
			last_reviewed_at   = :last_reviewed_at,
			tags               = :tags,
			source             = :source,
			content_hash       = :content_hash,
			updated_at         = :updated_at
		WHERE entry_id = :entry_id`, updated)
	if err != nil {
		return nil, errs.Wrap(errs.CodeInternal, "update entry", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, errs.Wrap(errs.CodeInternal, "commit update", err)
	}

	if e.ContentHash != prevHash {
		s.flagDuplicate(ctx, e)
	}
	return e, nil
}

// Delete removes the entry. Deleting an absent id fails with
// NotFound: silent success here would hide caller bugs.
func (s *Store) Delete(ctx context.Context, entryID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM answer_bank_entry WHERE entry_id = ?`, entryID)
	if err != nil {
		return errs.Wrap(errs.CodeInternal, "delete entry", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return errs.Wrap(errs.CodeInternal, "delete entry", err)
	}
	if n == 0 {
		return errs.Newf(errs.CodeNotFound, "answer bank entry not found: %s", entryID)
	}
	return nil
}

// List returns entries in creation order. limit <= 0 means no limit;
// an offset past the end yields an empty slice, not an error.
func (s *Store) List(ctx context.Context, limit, offset int) ([]model.AnswerBankEntry, error) {
	if offset < 0 {
		offset = 0
	}
	lim := int64(-1)
	if limit > 0 {
		lim = int64(limit)
	}

	var rows []entryRow
	err := s.db.SelectContext(ctx, &rows,
		`SELECT `+entryColumns+` FROM answer_bank_entry ORDER BY seq ASC LIMIT ? OFFSET ?`,
		lim, offset)
	if err != nil {
		return nil, errs.Wrap(errs.CodeInternal, "list entries", err)
	}

	out := make([]model.AnswerBankEntry, 0, len(rows))
	for i := range rows {
		e, err := fromRow(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *e)
	}
	return out, nil
}

// Snapshot returns every entry in creation order. The matching engine
// and the export packager work from this point-in-time copy, so
// concurrent mutations are never observed mid-computation.
func (s *Store) Snapshot(ctx context.Context) ([]model.AnswerBankEntry, error) {
	return s.List(ctx, 0, 0)
}

// flagDuplicate logs and marks entries whose content hash already
// exists. Duplicates are legal (operators may curate near-duplicates)
// but should never accumulate silently.
func (s *Store) flagDuplicate(ctx context.Context, e *model.AnswerBankEntry) {
	var prior string
	err := s.db.GetContext(ctx, &prior, `
		SELECT entry_id FROM answer_bank_entry
		WHERE content_hash = ? AND entry_id <> ?
		ORDER BY seq ASC LIMIT 1`, e.ContentHash, e.EntryID)
	if errors.Is(err, sql.ErrNoRows) {
		return
	}
	if err != nil {
		s.log.Warn("duplicate lookup failed", zap.Error(err))
		return
	}
	e.DuplicateOf = prior
	s.log.Warn("duplicate content hash in answer bank",
		zap.String("entry_id", e.EntryID),
		zap.String("duplicate_of", prior),
		zap.String("content_hash", e.ContentHash))
}

func applyPatch(e *model.AnswerBankEntry, p Patch) (bool, error) {
	var issues []errs.Issue
	changed := false

	setText := func(f Field[string], field string, dst *string) {
		if v, ok := f.Get(); ok {
			v = strings.TrimSpace(v)
			if v == "" {
				issues = append(issues, errs.Issue{
					Code:    "MISSING_FIELD",
					Message: field + " cannot be empty",
					Field:   field,
				})
				return
			}
			if v != *dst {
				*dst = v
				changed = true
			}
		} else if f.IsClear() {
			issues = append(issues, errs.Issue{
				Code:    "REQUIRED_FIELD",
				Message: field + " cannot be cleared",
				Field:   field,
			})
		}
	}

	setText(p.QuestionCanonical, "question_canonical", &e.QuestionCanonical)
	setText(p.AnswerShort, "answer_short", &e.AnswerShort)
	setText(p.AnswerLong, "answer_long", &e.AnswerLong)
	setText(p.Owner, "owner", &e.Owner)

	if v, ok := p.Source.Get(); ok {
		src := model.NewSource(strings.TrimSpace(v))
		if src.IsZero() {
			issues = append(issues, errs.Issue{
				Code:    "MISSING_FIELD",
				Message: "source cannot be empty",
				Field:   "source",
			})
		} else if src != e.Source {
			e.Source = src
			changed = true
		}
	} else if p.Source.IsClear() {
		issues = append(issues, errs.Issue{
			Code:    "REQUIRED_FIELD",
			Message: "source cannot be cleared",
			Field:   "source",
		})
	}

	if v, ok := p.Notes.Get(); ok {
		v = strings.TrimSpace(v)
		if v != e.Notes {
			e.Notes = v
			changed = true
		}
	} else if p.Notes.IsClear() && e.Notes != "" {
		e.Notes = ""
		changed = true
	}

	if v, ok := p.LastReviewedAt.Get(); ok {
		u := v.UTC()
		if e.LastReviewedAt == nil || !e.LastReviewedAt.Equal(u) {
			e.LastReviewedAt = &u
			changed = true
		}
	} else if p.LastReviewedAt.IsClear() && e.LastReviewedAt != nil {
		e.LastReviewedAt = nil
		changed = true
	}

	if v, ok := p.EvidenceLinks.Get(); ok {
		set := canonicalSet(v)
		if !equalStrings(set, e.EvidenceLinks) {
			e.EvidenceLinks = set
			changed = true
		}
	} else if p.EvidenceLinks.IsClear() && len(e.EvidenceLinks) > 0 {
		e.EvidenceLinks = []string{}
		changed = true
	}

	if v, ok := p.Tags.Get(); ok {
		set := canonicalSet(v)
		if !equalStrings(set, e.Tags) {
			e.Tags = set
			changed = true
		}
	} else if p.Tags.IsClear() && len(e.Tags) > 0 {
		e.Tags = []string{}
		changed = true
	}

	if len(issues) > 0 {
		return false, errs.NewValidation(issues...)
	}
	return changed, nil
}

func requireText(issues *[]errs.Issue, field, value string) {
	if strings.TrimSpace(value) == "" {
		*issues = append(*issues, errs.Issue{
			Code:    "MISSING_FIELD",
			Message: field + " is required",
			Field:   field,
		})
	}
}

// canonicalSet trims, drops empties, deduplicates and sorts, so sets
// compare and hash deterministically.
func canonicalSet(values []string) []string {
	seen := make(map[string]bool, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func toRow(e *model.AnswerBankEntry) (*entryRow, error) {
	links, err := json.Marshal(e.EvidenceLinks)
	if err != nil {
		return nil, err
	}
	tags, err := json.Marshal(e.Tags)
	if err != nil {
		return nil, err
	}

	row := &entryRow{
		EntryID:           e.EntryID,
		QuestionCanonical: e.QuestionCanonical,
		AnswerShort:       e.AnswerShort,
		AnswerLong:        e.AnswerLong,
		EvidenceLinks:     string(links),
		Owner:             e.Owner,
		Tags:              string(tags),
		Source:            e.Source.String(),
		ContentHash:       e.ContentHash,
		CreatedAt:         e.CreatedAt.Format(time.RFC3339),
		UpdatedAt:         e.UpdatedAt.Format(time.RFC3339),
	}
	if e.Notes != "" {
		row.Notes = sql.NullString{String: e.Notes, Valid: true}
	}
	if e.LastReviewedAt != nil {
		row.LastReviewedAt = sql.NullString{String: e.LastReviewedAt.Format(time.RFC3339), Valid: true}
	}
	return row, nil
}

func fromRow(r *entryRow) (*model.AnswerBankEntry, error) {
	var links, tags []string
	if err := json.Unmarshal([]byte(r.EvidenceLinks), &links); err != nil {
		return nil, errs.Wrap(errs.CodeInternal, "decode evidence links", err)
	}
	if err := json.Unmarshal([]byte(r.Tags), &tags); err != nil {
		return nil, errs.Wrap(errs.CodeInternal, "decode tags", err)
	}

	createdAt, err := time.Parse(time.RFC3339, r.CreatedAt)
	if err != nil {
		return nil, errs.Wrap(errs.CodeInternal, "decode created_at", err)
	}
	updatedAt, err := time.Parse(time.RFC3339, r.UpdatedAt)
	if err != nil {
		return nil, errs.Wrap(errs.CodeInternal, "decode updated_at", err)
	}

	e := &model.AnswerBankEntry{
		EntryID:           r.EntryID,
		QuestionCanonical: r.QuestionCanonical,
		AnswerShort:       r.AnswerShort,
		AnswerLong:        r.AnswerLong,
		EvidenceLinks:     links,
		Owner:             r.Owner,
		Tags:              tags,
		Source:            model.NewSource(r.Source),
		ContentHash:       r.ContentHash,
		CreatedAt:         createdAt,
		UpdatedAt:         updatedAt,
	}
	if r.Notes.Valid {
		e.Notes = r.Notes.String
	}
	if r.LastReviewedAt.Valid {
		ts, err := time.Parse(time.RFC3339, r.LastReviewedAt.String)
		if err != nil {
			return nil, errs.Wrap(errs.CodeInternal, "decode last_reviewed_at", err)
		}
		e.LastReviewedAt = &ts
	}
	return e, nil
}
