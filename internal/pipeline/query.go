package pipeline

import (
	"fmt"
	"net/url"

	"github.com/ppiankov/dealscan/internal/model"
)

// QueryBuilder turns search terms into feed search URLs
type QueryBuilder struct {
	baseURL  string
	language string
	region   string
	edition  string
}

// NewQueryBuilder creates a builder for the configured feed endpoint and locale
func NewQueryBuilder(cfg model.SearchConfig) *QueryBuilder {
	return &QueryBuilder{
		baseURL:  cfg.BaseURL,
		language: cfg.Language,
		region:   cfg.Region,
		edition:  cfg.Edition,
	}
}

// URL returns the feed URL for one term. The term is query-escaped, the
// locale parameters are passed through as configured.
func (q *QueryBuilder) URL(term string) string {
	return fmt.Sprintf("%s?q=%s&hl=%s&gl=%s&ceid=%s",
		q.baseURL, url.QueryEscape(term), q.language, q.region, q.edition)
}

// URLs returns one URL per term, in term order
func (q *QueryBuilder) URLs(terms []string) []string {
	urls := make([]string, len(terms))
	for i, term := range terms {
		urls[i] = q.URL(term)
	}
	return urls
}
