package bank

import "time"

type fieldOp int

const (
	opUnchanged fieldOp = iota
	opSet
	opClear
)

// Field is a three-state update instruction: Unchanged (zero value),
// Set(v), or Clear. It exists so a patch can tell "field omitted"
// apart from "field explicitly cleared" without overloading a nilable
// type.
type Field[T any] struct {
	op    fieldOp
	value T
}

// Set returns an instruction to replace the field with v.
func Set[T any](v T) Field[T] {
	return Field[T]{op: opSet, value: v}
}

// Clear returns an instruction to remove the field's value.
func Clear[T any]() Field[T] {
	return Field[T]{op: opClear}
}

// Get returns the replacement value and whether one was set.
func (f Field[T]) Get() (T, bool) {
	return f.value, f.op == opSet
}

// IsClear reports whether the field should be cleared.
func (f Field[T]) IsClear() bool { return f.op == opClear }

// Touched reports whether the instruction changes the field at all.
func (f Field[T]) Touched() bool { return f.op != opUnchanged }

// Patch is a partial update for an answer bank entry. Unset fields are
// left as they are. Clearing is only meaningful for the optional
// fields (Notes, LastReviewedAt); clearing a required field is a
// validation error.
type Patch struct {
	QuestionCanonical Field[string]
	AnswerShort       Field[string]
	AnswerLong        Field[string]
	Notes             Field[string]
	EvidenceLinks     Field[[]string]
	Owner             Field[string]
	LastReviewedAt    Field[time.Time]
	Tags              Field[[]string]
	Source            Field[string]
}

// IsEmpty reports whether the patch carries no instructions.
func (p Patch) IsEmpty() bool {
	return !p.QuestionCanonical.Touched() &&
		!p.AnswerShort.Touched() &&
		!p.AnswerLong.Touched() &&
		!p.Notes.Touched() &&
		!p.EvidenceLinks.Touched() &&
		!p.Owner.Touched() &&
		!p.LastReviewedAt.Touched() &&
		!p.Tags.Touched() &&
		!p.Source.Touched()
}
