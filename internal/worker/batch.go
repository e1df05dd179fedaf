package worker

import (
	"context"
	"errors"

	"github.com/ppiankov/dealscan/internal/model"
)

// Collector processes a single search term end to end
type Collector interface {
	CollectTerm(ctx context.Context, index int, term string) model.TermResult
}

// TermJob runs one search term through a Collector
type TermJob struct {
	Index     int
	Term      string
	Collector Collector
	onFailure func()
}

// Execute executes the term job
func (j *TermJob) Execute(ctx context.Context) Result {
	result := j.Collector.CollectTerm(ctx, j.Index, j.Term)
	if result.Err != nil && j.onFailure != nil {
		j.onFailure()
	}
	return &result
}

// BatchProcessor runs all search terms through a worker pool
type BatchProcessor struct {
	collector   Collector
	concurrency int
	failFast    bool
}

// NewBatchProcessor creates a new batch processor. With failFast the first
// failing term cancels every term that has not started yet.
func NewBatchProcessor(collector Collector, concurrency int, failFast bool) *BatchProcessor {
	return &BatchProcessor{
		collector:   collector,
		concurrency: concurrency,
		failFast:    failFast,
	}
}

// ProcessTerms returns one result per term, ordered like terms. Terms that
// never ran carry the cancellation error.
func (b *BatchProcessor) ProcessTerms(ctx context.Context, terms []string) []model.TermResult {
	if len(terms) == 0 {
		return []model.TermResult{}
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	pool := NewPool(ctx, b.concurrency)
	pool.Start()

	var onFailure func()
	if b.failFast {
		onFailure = pool.Cancel
	}

	for i, term := range terms {
		job := &TermJob{
			Index:     i,
			Term:      term,
			Collector: b.collector,
			onFailure: onFailure,
		}
		if !pool.Submit(job) {
			break
		}
	}

	results := make([]model.TermResult, len(terms))
	ran := make([]bool, len(terms))
	for _, r := range pool.Wait() {
		tr := r.(*model.TermResult)
		results[tr.Index] = *tr
		ran[tr.Index] = true
	}

	for i, term := range terms {
		if !ran[i] {
			results[i] = model.TermResult{Index: i, Term: term, Err: ErrNotRun}
		}
	}

	return results
}

// ErrNotRun marks terms skipped after an earlier failure or cancellation
var ErrNotRun = errors.New("term not run: batch cancelled")
