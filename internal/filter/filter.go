package filter

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// PubDateLayout is the only accepted pubDate shape (RFC 822 with a zone abbreviation)
const PubDateLayout = "Mon, 2 Jan 2006 15:04:05 MST"

// ErrDateFormat is returned when a pubDate does not match PubDateLayout
var ErrDateFormat = errors.New("unexpected pubDate format")

// ParsePubDate parses a feed pubDate using the fixed layout, with no fallback.
// The zone must be GMT or UTC: time.Parse also takes numeric offsets and reads
// unknown abbreviations such as EST as zero offset.
func ParsePubDate(raw string) (time.Time, error) {
	trimmed := strings.TrimSpace(raw)
	t, err := time.Parse(PubDateLayout, trimmed)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrDateFormat, raw)
	}
	if zone := trimmed[strings.LastIndexByte(trimmed, ' ')+1:]; zone != "GMT" && zone != "UTC" {
		return time.Time{}, fmt.Errorf("%w: zone %q in %q", ErrDateFormat, zone, raw)
	}
	return t, nil
}

// Recency rejects items published before a cutoff computed once per run
type Recency struct {
	Cutoff time.Time
}

// NewRecency returns a gate whose cutoff is now minus window
func NewRecency(now time.Time, window time.Duration) Recency {
	return Recency{Cutoff: now.Add(-window)}
}

// Allow reports whether published is on or after the cutoff
func (r Recency) Allow(published time.Time) bool {
	return !published.Before(r.Cutoff)
}

// Relevance separates business deal headlines from other uses of "acquisition".
// Matching is lowercase substring matching, so "broadband" contains "road".
type Relevance struct {
	exclude []string
	include []string
}

// NewRelevance creates a relevance gate from deny and allow lists
func NewRelevance(exclude, include []string) *Relevance {
	return &Relevance{
		exclude: lowerAll(exclude),
		include: lowerAll(include),
	}
}

// Allow rejects titles with any deny-list word, then requires an allow-list word
func (r *Relevance) Allow(title string) bool {
	lower := strings.ToLower(title)
	if containsAny(lower, r.exclude) {
		return false
	}
	return containsAny(lower, r.include)
}

// MatchedExclude returns the first deny-list word found in title, for logging
func (r *Relevance) MatchedExclude(title string) string {
	lower := strings.ToLower(title)
	for _, word := range r.exclude {
		if strings.Contains(lower, word) {
			return word
		}
	}
	return ""
}

func containsAny(s string, words []string) bool {
	for _, word := range words {
		if strings.Contains(s, word) {
			return true
		}
	}
	return false
}

func lowerAll(words []string) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		if w == "" {
			continue
		}
		out = append(out, strings.ToLower(w))
	}
	return out
}
