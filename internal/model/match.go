package model

// MatchSuggestion is a scored candidate answer-bank entry for one
// input question. Suggestions are ephemeral: recomputed per query,
// never persisted.
type MatchSuggestion struct {
	AnswerBankEntryID     string  `json:"answer_bank_entry_id"`
	Score                 float64 `json:"score"` // within [0,1], 1.0 = normalized exact match
	ConfidenceExplanation string  `json:"confidence_explanation"`
	NormalizedQuestion    string  `json:"normalized_question"`
	NormalizedAnswer      string  `json:"normalized_answer"`
}

// RowSuggestions pairs one question row of a mapped import with its
// top match suggestions, produced by a batch review run.
type RowSuggestions struct {
	RowIndex    int               `json:"row_index"`
	Question    string            `json:"question"`
	Suggestions []MatchSuggestion `json:"suggestions"`
}
