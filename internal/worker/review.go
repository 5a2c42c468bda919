package worker

import (
	"context"
	"sort"

	"github.com/rvachev/qforge/internal/errs"
	"github.com/rvachev/qforge/internal/match"
	"github.com/rvachev/qforge/internal/model"
	"github.com/rvachev/qforge/internal/profile"
)

// ReviewJob scores one question row against the answer bank snapshot.
type ReviewJob struct {
	Row      int
	Question string
	TopN     int
	Engine   *match.Engine
	Entries  []model.AnswerBankEntry
}

// Execute runs the match for this row.
func (j *ReviewJob) Execute(_ context.Context) Result {
	suggestions, err := j.Engine.Suggest(j.Question, j.TopN, j.Entries)
	return &ReviewResult{
		Row:         j.Row,
		Question:    j.Question,
		Suggestions: suggestions,
		Err:         err,
	}
}

// ReviewResult is the outcome for one row.
type ReviewResult struct {
	Row         int
	Question    string
	Suggestions []model.MatchSuggestion
	Err         error
}

// GetError returns the row's error, if any.
func (r *ReviewResult) GetError() error { return r.Err }

// Reviewer runs the matching engine over every question row of a
// mapped import, concurrently but with deterministic output: results
// come back ordered by row index regardless of completion order.
type Reviewer struct {
	engine  *match.Engine
	workers int
}

// NewReviewer creates a reviewer with the given concurrency.
func NewReviewer(engine *match.Engine, workers int) *Reviewer {
	return &Reviewer{engine: engine, workers: workers}
}

// ReviewTable matches each non-empty question cell of the table,
// using the confirmed column map to locate the question column.
func (r *Reviewer) ReviewTable(ctx context.Context, table *profile.Table, cmap model.ColumnMap, entries []model.AnswerBankEntry, topN int) ([]model.RowSuggestions, error) {
	qIdx := -1
	for i, h := range table.Headers {
		if h == cmap.Question {
			qIdx = i
			break
		}
	}
	if qIdx < 0 {
		return nil, errs.Newf(errs.CodeValidation, "question column %q not found in source table", cmap.Question)
	}

	pool := NewSizedPool(r.workers, len(table.Rows))
	pool.Start()
	defer pool.Shutdown()

	for row := range table.Rows {
		question := table.Cell(row, qIdx)
		if question == "" {
			continue
		}
		if err := ctx.Err(); err != nil {
			return nil, errs.Wrap(errs.CodeInternal, "review canceled", err)
		}
		pool.Submit(&ReviewJob{
			Row:      row,
			Question: question,
			TopN:     topN,
			Engine:   r.engine,
			Entries:  entries,
		})
	}

	results := pool.Wait()
	if err := ctx.Err(); err != nil {
		return nil, errs.Wrap(errs.CodeInternal, "review canceled", err)
	}

	out := make([]model.RowSuggestions, 0, len(results))
	for _, res := range results {
		rr := res.(*ReviewResult)
		if rr.Err != nil {
			return nil, rr.Err
		}
		out = append(out, model.RowSuggestions{
			RowIndex:    rr.Row,
			Question:    rr.Question,
			Suggestions: rr.Suggestions,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RowIndex < out[j].RowIndex })
	return out, nil
}
