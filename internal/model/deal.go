package model

import "time"

// DateLayout is the calendar-date rendering used in exports
const DateLayout = "2006-01-02"

// Deal is one acquisition/merger headline after cleaning and extraction
type Deal struct {
	Date   time.Time `json:"date"`             // Publication date (midnight UTC)
	Title  string    `json:"title"`            // Whitespace-normalized headline, dedup key
	Link   string    `json:"link"`             // Article permalink
	Buyer  string    `json:"buyer,omitempty"`  // Extracted acquirer, empty when absent
	Target string    `json:"target,omitempty"` // Extracted target, empty when absent
}

// DateString renders the publication date as YYYY-MM-DD
func (d Deal) DateString() string {
	return d.Date.Format(DateLayout)
}

// HasParties reports whether buyer and target were extracted
func (d Deal) HasParties() bool {
	return d.Buyer != "" || d.Target != ""
}

// CalendarDate truncates t to midnight UTC of its own calendar day
func CalendarDate(t time.Time) time.Time {
	y, m, day := t.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

// FeedItem is one raw <item> from the news feed, prior to filtering
type FeedItem struct {
	Title     string `json:"title"`
	Link      string `json:"link"`
	Published string `json:"published"` // Raw pubDate text
}
