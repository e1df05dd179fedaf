package extract

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ppiankov/dealscan/internal/model"
)

// Pattern is one compiled headline rule
type Pattern struct {
	Name   string
	re     *regexp.Regexp
	buyer  int // submatch index of the buyer group
	target int // submatch index of the target group
}

// Match is the result of a successful extraction
type Match struct {
	Buyer   string
	Target  string
	Pattern string // Name of the rule that matched
}

// Extractor recovers buyer/target names from headlines using ordered rules.
// The first matching rule wins.
type Extractor struct {
	patterns []Pattern
}

// NewExtractor compiles the given rules in order. Each expression is matched
// case-insensitively; named groups "buyer" and "target" take precedence over
// positional groups 1 and 2.
func NewExtractor(rules []model.PatternConfig) (*Extractor, error) {
	e := &Extractor{patterns: make([]Pattern, 0, len(rules))}

	for _, rule := range rules {
		re, err := regexp.Compile("(?i)" + rule.Expr)
		if err != nil {
			return nil, fmt.Errorf("compile pattern %q: %w", rule.Name, err)
		}
		if re.NumSubexp() < 2 {
			return nil, fmt.Errorf("pattern %q: expected two capture groups, got %d", rule.Name, re.NumSubexp())
		}

		buyer, target := 1, 2
		if idx := re.SubexpIndex("buyer"); idx > 0 {
			buyer = idx
		}
		if idx := re.SubexpIndex("target"); idx > 0 {
			target = idx
		}

		e.patterns = append(e.patterns, Pattern{
			Name:   rule.Name,
			re:     re,
			buyer:  buyer,
			target: target,
		})
	}

	return e, nil
}

// NewDefaultExtractor builds an extractor from model.DefaultPatterns
func NewDefaultExtractor() *Extractor {
	e, err := NewExtractor(model.DefaultPatterns())
	if err != nil {
		panic(err)
	}
	return e
}

// Extract applies the rules to title. ok is false when nothing matched.
func (e *Extractor) Extract(title string) (Match, bool) {
	for _, p := range e.patterns {
		m := p.re.FindStringSubmatch(title)
		if m == nil {
			continue
		}
		return Match{
			Buyer:   CleanText(m[p.buyer]),
			Target:  CleanText(m[p.target]),
			Pattern: p.Name,
		}, true
	}
	return Match{}, false
}

// Patterns returns the rule names in priority order
func (e *Extractor) Patterns() []string {
	names := make([]string, len(e.patterns))
	for i, p := range e.patterns {
		names[i] = p.Name
	}
	return names
}

// CleanText collapses whitespace runs to single spaces and trims the ends
func CleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
