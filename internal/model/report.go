package model

import "time"

// BatchReport is the outcome of one run over all configured search terms
type BatchReport struct {
	RunID     string       `json:"run_id"`
	Profile   string       `json:"profile"`
	StartedAt time.Time    `json:"started_at"`
	Cutoff    time.Time    `json:"cutoff"` // Earliest publish time still considered recent
	Terms     []TermResult `json:"terms"`  // Ordered like the configured search terms
	Deals     []Deal       `json:"deals"`  // Deduplicated, first-seen order
}

// TermResult is success-with-rows or failure-with-reason for one search term
type TermResult struct {
	Index int       `json:"index"`
	Term  string    `json:"term"`
	URL   string    `json:"url"`
	Deals []Deal    `json:"deals,omitempty"`
	Stats ItemStats `json:"stats"`
	Err   error     `json:"-"`
}

// GetError returns the term failure, if any
func (r *TermResult) GetError() error {
	return r.Err
}

// OK reports whether the term was fetched and processed
func (r *TermResult) OK() bool {
	return r.Err == nil
}

// ItemStats counts how feed items were routed for one term
type ItemStats struct {
	Seen       int `json:"seen"`
	Irrelevant int `json:"irrelevant"` // Rejected by the relevance gate
	Stale      int `json:"stale"`      // Published before the cutoff
	Kept       int `json:"kept"`
	NoParties  int `json:"no_parties"` // Kept without a buyer/target match
}

// Empty reports whether the run produced no deals
func (r *BatchReport) Empty() bool {
	return len(r.Deals) == 0
}

// Failed returns the terms that failed, in term order
func (r *BatchReport) Failed() []TermResult {
	var failed []TermResult
	for _, t := range r.Terms {
		if !t.OK() {
			failed = append(failed, t)
		}
	}
	return failed
}

// TotalKept sums kept items across terms, before deduplication
func (r *BatchReport) TotalKept() int {
	total := 0
	for _, t := range r.Terms {
		total += t.Stats.Kept
	}
	return total
}
