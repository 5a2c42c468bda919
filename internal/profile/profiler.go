package profile

import (
	"strings"

	"github.com/rvachev/qforge/internal/model"
)

// DefaultSampleSize is the number of non-empty values kept per column
// when the caller does not override it.
const DefaultSampleSize = 5

// Profiler produces immutable column profiles from a parsed table.
type Profiler struct {
	sampleSize int
}

// NewProfiler creates a profiler. sampleSize <= 0 falls back to
// DefaultSampleSize.
func NewProfiler(sampleSize int) *Profiler {
	if sampleSize <= 0 {
		sampleSize = DefaultSampleSize
	}
	return &Profiler{sampleSize: sampleSize}
}

// Profile returns one ColumnProfile per column. The sample holds the
// first N non-empty values in row order; NonEmptyCount is exact over
// the full column, not just the sample.
func (p *Profiler) Profile(t *Table) []model.ColumnProfile {
	cols := make([]model.ColumnProfile, len(t.Headers))
	for i, h := range t.Headers {
		cols[i] = model.ColumnProfile{
			ColRef:  h,
			Ordinal: i,
			Label:   h,
			Sample:  []string{},
		}
	}

	for _, row := range t.Rows {
		for i := range cols {
			var v string
			if i < len(row) {
				v = strings.TrimSpace(row[i])
			}
			if v == "" {
				continue
			}
			cols[i].NonEmptyCount++
			if len(cols[i].Sample) < p.sampleSize {
				cols[i].Sample = append(cols[i].Sample, v)
			}
		}
	}

	return cols
}
