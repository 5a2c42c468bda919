package model

import "time"

// AnswerBankEntry is a canonical, reusable question/answer record.
// ContentHash is a deterministic digest over the normalized
// (QuestionCanonical, AnswerShort, AnswerLong) triple and is recomputed
// on every mutation that touches those fields.
type AnswerBankEntry struct {
	EntryID           string     `json:"entry_id"`
	QuestionCanonical string     `json:"question_canonical"`
	AnswerShort       string     `json:"answer_short"`
	AnswerLong        string     `json:"answer_long"`
	Notes             string     `json:"notes,omitempty"`
	EvidenceLinks     []string   `json:"evidence_links"`
	Owner             string     `json:"owner"`
	LastReviewedAt    *time.Time `json:"last_reviewed_at,omitempty"`
	Tags              []string   `json:"tags"`
	Source            Source     `json:"source"`
	ContentHash       string     `json:"content_hash"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`

	// DuplicateOf carries the entry_id of an earlier entry with the same
	// content hash, when one exists. Near-duplicates are allowed but
	// flagged so operators can curate them.
	DuplicateOf string `json:"duplicate_of,omitempty"`
}
