package model

import (
	"encoding/json"
	"fmt"
)

// SourceKind classifies where an answer bank entry came from.
type SourceKind int

const (
	SourceUnknown SourceKind = iota
	SourceManual             // entered by an operator
	SourceImport             // lifted from a questionnaire import
	SourceMatch              // accepted from a match suggestion
	SourceCustom             // anything else, label carried in Source.Custom
)

// Source is a closed variant over the origin of an entry. The Custom
// arm keeps reads forward-compatible: unknown labels parse into it
// instead of failing.
type Source struct {
	Kind   SourceKind
	Custom string
}

// NewSource builds a Source from a raw label.
func NewSource(label string) Source {
	switch label {
	case "manual":
		return Source{Kind: SourceManual}
	case "import":
		return Source{Kind: SourceImport}
	case "match":
		return Source{Kind: SourceMatch}
	case "":
		return Source{}
	default:
		return Source{Kind: SourceCustom, Custom: label}
	}
}

func (s Source) String() string {
	switch s.Kind {
	case SourceManual:
		return "manual"
	case SourceImport:
		return "import"
	case SourceMatch:
		return "match"
	case SourceCustom:
		return s.Custom
	default:
		return ""
	}
}

// IsZero reports whether the source is unset.
func (s Source) IsZero() bool {
	return s.Kind == SourceUnknown
}

func (s Source) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Source) UnmarshalJSON(data []byte) error {
	var label string
	if err := json.Unmarshal(data, &label); err != nil {
		return fmt.Errorf("source: %w", err)
	}
	*s = NewSource(label)
	return nil
}
