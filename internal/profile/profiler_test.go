package profile

import "testing"

func TestProfile(t *testing.T) {
	table := &Table{
		Headers: []string{"Question", "Answer", "Notes"},
		Rows: [][]string{
			{"q1", "a1", "n1"},
			{"q2", "", "n2"},
			{"q3", "a3"}, // ragged: no notes cell
			{"  ", "a4", "n4"},
		},
	}

	cols := NewProfiler(2).Profile(table)
	if len(cols) != 3 {
		t.Fatalf("len(cols) = %d, want 3", len(cols))
	}

	q := cols[0]
	if q.ColRef != "Question" || q.Ordinal != 0 || q.Label != "Question" {
		t.Errorf("question profile = %+v", q)
	}
	if q.NonEmptyCount != 3 {
		t.Errorf("question NonEmptyCount = %d, want 3 (blank row excluded)", q.NonEmptyCount)
	}
	if len(q.Sample) != 2 || q.Sample[0] != "q1" || q.Sample[1] != "q2" {
		t.Errorf("question Sample = %v, want first 2 non-empty values in row order", q.Sample)
	}

	a := cols[1]
	if a.NonEmptyCount != 3 {
		t.Errorf("answer NonEmptyCount = %d, want 3", a.NonEmptyCount)
	}
	if len(a.Sample) != 2 || a.Sample[1] != "a3" {
		t.Errorf("answer Sample = %v, want empty cell skipped", a.Sample)
	}

	n := cols[2]
	if n.NonEmptyCount != 3 {
		t.Errorf("notes NonEmptyCount = %d, want 3 (ragged row reads empty)", n.NonEmptyCount)
	}
}

func TestProfileDefaultSampleSize(t *testing.T) {
	table := &Table{Headers: []string{"Q"}}
	for i := 0; i < 10; i++ {
		table.Rows = append(table.Rows, []string{"value"})
	}

	cols := NewProfiler(0).Profile(table)
	if len(cols[0].Sample) != DefaultSampleSize {
		t.Errorf("len(Sample) = %d, want DefaultSampleSize %d", len(cols[0].Sample), DefaultSampleSize)
	}
	if cols[0].NonEmptyCount != 10 {
		t.Errorf("NonEmptyCount = %d, want exact count over full column", cols[0].NonEmptyCount)
	}
}

func TestProfileEmptyColumn(t *testing.T) {
	table := &Table{
		Headers: []string{"Q", "Empty"},
		Rows:    [][]string{{"q1", ""}, {"q2", "  "}},
	}

	cols := NewProfiler(5).Profile(table)
	if cols[1].NonEmptyCount != 0 {
		t.Errorf("NonEmptyCount = %d, want 0", cols[1].NonEmptyCount)
	}
	if cols[1].Sample == nil || len(cols[1].Sample) != 0 {
		t.Errorf("Sample = %v, want empty non-nil slice", cols[1].Sample)
	}
}
