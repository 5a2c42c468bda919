package match

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rvachev/qforge/internal/errs"
	"github.com/rvachev/qforge/internal/model"
)

// DefaultTopN is the suggestion count used when the caller passes 0.
const DefaultTopN = 5

// Confidence bands. The explanation string is derived purely from the
// score band and the shared tokens; never randomized, never dependent
// on external state.
const (
	strongThreshold = 0.75
	likelyThreshold = 0.45
)

// Engine ranks answer bank entries against a free-text question.
type Engine struct {
	tokens *TokenCache // optional, nil disables memoization
}

// NewEngine creates a matching engine. cache may be nil.
func NewEngine(cache *TokenCache) *Engine {
	return &Engine{tokens: cache}
}

// Suggest scores question against every entry in the snapshot and
// returns up to topN suggestions ordered by score descending, ties
// broken by entry_id ascending. An empty or whitespace-only question
// yields an empty result without error; a negative topN is the only
// input-shape failure.
func (e *Engine) Suggest(question string, topN int, entries []model.AnswerBankEntry) ([]model.MatchSuggestion, error) {
	if topN < 0 {
		return nil, errs.NewValidation(errs.Issue{
			Code:    "INVALID_VALUE",
			Message: "top_n must not be negative",
			Field:   "top_n",
		})
	}
	if topN == 0 {
		topN = DefaultTopN
	}

	qNorm := Normalize(question)
	if qNorm == "" {
		return []model.MatchSuggestion{}, nil
	}
	qTokens := Tokens(question)

	suggestions := make([]model.MatchSuggestion, 0, len(entries))
	for i := range entries {
		entry := &entries[i]
		text := e.entryText(entry)

		score, shared := scoreTokens(qNorm, qTokens, text)
		if score <= 0 {
			continue
		}

		suggestions = append(suggestions, model.MatchSuggestion{
			AnswerBankEntryID:     entry.EntryID,
			Score:                 score,
			ConfidenceExplanation: explain(score, qNorm == text.norm, shared),
			NormalizedQuestion:    qNorm,
			NormalizedAnswer:      text.answerNorm,
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		if suggestions[i].Score != suggestions[j].Score {
			return suggestions[i].Score > suggestions[j].Score
		}
		return suggestions[i].AnswerBankEntryID < suggestions[j].AnswerBankEntryID
	})

	if len(suggestions) > topN {
		suggestions = suggestions[:topN]
	}
	return suggestions, nil
}

// entryText returns the normalized form of the entry's canonical
// question, memoized by content hash when a cache is wired.
func (e *Engine) entryText(entry *model.AnswerBankEntry) entryText {
	if t, ok := e.tokens.get(entry.ContentHash); ok {
		return t
	}
	t := entryText{
		norm:       Normalize(entry.QuestionCanonical),
		answerNorm: Normalize(entry.AnswerShort),
		tokens:     Tokens(entry.QuestionCanonical),
	}
	e.tokens.set(entry.ContentHash, t)
	return t
}

// scoreTokens computes the similarity in [0,1]. An exact normalized
// match scores 1.0. Otherwise the score is the larger of the Jaccard
// index and 0.95 × the overlap coefficient, so a query that is a
// token-subset of a longer canonical question still lands near the
// top without claiming exactness.
func scoreTokens(qNorm string, qTokens []string, t entryText) (float64, []string) {
	if qNorm == t.norm {
		return 1.0, qTokens
	}
	if len(qTokens) == 0 || len(t.tokens) == 0 {
		return 0, nil
	}

	shared := intersect(qTokens, t.tokens)
	if len(shared) == 0 {
		return 0, nil
	}

	union := len(qTokens) + len(t.tokens) - len(shared)
	jaccard := float64(len(shared)) / float64(union)

	smaller := len(qTokens)
	if len(t.tokens) < smaller {
		smaller = len(t.tokens)
	}
	overlap := float64(len(shared)) / float64(smaller)

	score := jaccard
	if scaled := 0.95 * overlap; scaled > score {
		score = scaled
	}
	return score, shared
}

// explain renders the deterministic confidence explanation: band plus
// technique plus up to five shared tokens (already sorted).
func explain(score float64, exact bool, shared []string) string {
	band := "weak match"
	switch {
	case score >= strongThreshold:
		band = "strong match"
	case score >= likelyThreshold:
		band = "likely match"
	}

	if exact {
		return band + ": exact normalized match"
	}

	show := shared
	if len(show) > 5 {
		show = show[:5]
	}
	return fmt.Sprintf("%s: %d%% token overlap (shared: %s)",
		band, int(score*100), strings.Join(show, ", "))
}
