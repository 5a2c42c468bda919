package mapping

import (
	"fmt"

	"github.com/rvachev/qforge/internal/errs"
	"github.com/rvachev/qforge/internal/model"
)

// Issue codes reported by Validate.
const (
	IssueMissingField    = "MISSING_FIELD"
	IssueDuplicateColumn = "DUPLICATE_COLUMN"
	IssueUnknownColumn   = "UNKNOWN_COLUMN"
)

// Validate checks a column map (proposed or operator-edited) against
// the profile set. A map is valid iff question and answer are both
// set, distinct, and reference existing columns; notes is optional
// but must reference an existing column when set. Partial maps are
// not an error here — they simply come back with ok=false and
// field-tagged issues.
func Validate(m model.ColumnMap, profiles []model.ColumnProfile) errs.Validation {
	known := make(map[string]bool, len(profiles))
	for _, p := range profiles {
		known[p.ColRef] = true
	}

	var issues []errs.Issue

	if m.Question == "" {
		issues = append(issues, errs.Issue{
			Code:    IssueMissingField,
			Message: "a question column must be assigned",
			Field:   "question",
		})
	} else if !known[m.Question] {
		issues = append(issues, errs.Issue{
			Code:    IssueUnknownColumn,
			Message: fmt.Sprintf("unknown question column: %s", m.Question),
			Field:   "question",
		})
	}

	if m.Answer == "" {
		issues = append(issues, errs.Issue{
			Code:    IssueMissingField,
			Message: "an answer column must be assigned",
			Field:   "answer",
		})
	} else if !known[m.Answer] {
		issues = append(issues, errs.Issue{
			Code:    IssueUnknownColumn,
			Message: fmt.Sprintf("unknown answer column: %s", m.Answer),
			Field:   "answer",
		})
	}

	if m.Question != "" && m.Question == m.Answer {
		issues = append(issues, errs.Issue{
			Code:    IssueDuplicateColumn,
			Message: "question and answer columns must be different",
			Field:   "answer",
		})
	}

	if m.Notes != "" && !known[m.Notes] {
		issues = append(issues, errs.Issue{
			Code:    IssueUnknownColumn,
			Message: fmt.Sprintf("unknown notes column: %s", m.Notes),
			Field:   "notes",
		})
	}

	return errs.Validation{OK: len(issues) == 0, Issues: issues}
}
