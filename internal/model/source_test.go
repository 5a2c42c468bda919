package model

import (
	"encoding/json"
	"testing"
)

func TestSource(t *testing.T) {
	tests := []struct {
		name  string
		label string
		kind  SourceKind
	}{
		{name: "manual", label: "manual", kind: SourceManual},
		{name: "import", label: "import", kind: SourceImport},
		{name: "match", label: "match", kind: SourceMatch},
		{name: "custom label", label: "migration-2024", kind: SourceCustom},
		{name: "unset", label: "", kind: SourceUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSource(tt.label)
			if s.Kind != tt.kind {
				t.Errorf("Kind = %v, want %v", s.Kind, tt.kind)
			}
			if s.String() != tt.label {
				t.Errorf("String() = %q, want %q", s.String(), tt.label)
			}
			if s.IsZero() != (tt.kind == SourceUnknown) {
				t.Errorf("IsZero() = %v", s.IsZero())
			}
		})
	}
}

func TestSourceJSON(t *testing.T) {
	data, err := json.Marshal(NewSource("migration-2024"))
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	if string(data) != `"migration-2024"` {
		t.Errorf("Marshal() = %s", data)
	}

	var s Source
	if err := json.Unmarshal([]byte(`"match"`), &s); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if s.Kind != SourceMatch {
		t.Errorf("Kind = %v, want %v", s.Kind, SourceMatch)
	}

	// Unknown labels parse into the Custom arm instead of failing.
	if err := json.Unmarshal([]byte(`"some-future-origin"`), &s); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if s.Kind != SourceCustom || s.Custom != "some-future-origin" {
		t.Errorf("Source = %+v, want Custom arm", s)
	}

	if err := json.Unmarshal([]byte(`42`), &s); err == nil {
		t.Error("non-string source must fail to parse")
	}
}
