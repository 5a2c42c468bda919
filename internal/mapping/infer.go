// Package mapping proposes and validates column maps for questionnaire
// imports.
package mapping

import (
	"sort"
	"strings"

	"github.com/rvachev/qforge/internal/model"
)

// Infer proposes a best-effort column map from column labels. Each
// role scans labels case-insensitively for its substring ("question",
// "answer", "note") in ordinal order; the leftmost match wins and
// later matches for a filled role are ignored. Roles are assigned
// independently, so one ambiguous label can end up in two roles —
// validation catches that. The result may be partial and is
// deterministic for identical profiles.
func Infer(profiles []model.ColumnProfile) model.ColumnMap {
	ordered := make([]model.ColumnProfile, len(profiles))
	copy(ordered, profiles)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Ordinal < ordered[j].Ordinal
	})

	return model.ColumnMap{
		Question: firstLabelMatch(ordered, "question"),
		Answer:   firstLabelMatch(ordered, "answer"),
		Notes:    firstLabelMatch(ordered, "note"),
	}
}

func firstLabelMatch(ordered []model.ColumnProfile, substr string) string {
	for _, p := range ordered {
		if strings.Contains(strings.ToLower(p.Label), substr) {
			return p.ColRef
		}
	}
	return ""
}
