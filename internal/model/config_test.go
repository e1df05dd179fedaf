package model

import (
	"errors"
	"testing"
	"time"
)

func TestDefaultConfigFor_Profiles(t *testing.T) {
	business := DefaultConfigFor(ProfileBusiness)
	if business.Profile != ProfileBusiness || len(business.Search.Terms) != 5 {
		t.Errorf("Unexpected business profile: %s, %d terms", business.Profile, len(business.Search.Terms))
	}
	if !business.Filter.Relevance || business.Output.Format != FormatXLSX {
		t.Error("Expected business profile to filter relevance and export xlsx")
	}

	basic := DefaultConfigFor("BASIC")
	if basic.Profile != ProfileBasic || len(basic.Search.Terms) != 3 {
		t.Errorf("Unexpected basic profile: %s, %d terms", basic.Profile, len(basic.Search.Terms))
	}
	if basic.Filter.Relevance || basic.Output.Format != FormatCSV {
		t.Error("Expected basic profile without relevance, exporting csv")
	}

	if DefaultConfig().Profile != ProfileBusiness {
		t.Error("Expected business to be the default profile")
	}
}

func TestDefaultConfig_Values(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Filter.Window() != 90*24*time.Hour {
		t.Errorf("Expected 90 day window, got %v", cfg.Filter.Window())
	}
	if cfg.HTTP.RetryAttempts != 1 || cfg.Concurrency.Workers != 1 || cfg.Errors.ContinueOnError {
		t.Error("Expected sequential, single-attempt, fail-fast defaults")
	}
	if cfg.Output.FilePrefix != "india_mna_deals" || cfg.Output.SheetName != "Deals" {
		t.Errorf("Unexpected output defaults: %+v", cfg.Output)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected defaults to validate, got %v", err)
	}
}

func TestDefaultConfig_Independent(t *testing.T) {
	a := DefaultConfig()
	a.Search.Terms[0] = "changed"
	a.Filter.Exclude[0] = "changed"

	b := DefaultConfig()
	if b.Search.Terms[0] == "changed" || b.Filter.Exclude[0] == "changed" {
		t.Error("Expected defaults not to share slices")
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		want   error
	}{
		{"unknown profile", func(c *Config) { c.Profile = "premium" }, ErrUnknownProfile},
		{"no terms", func(c *Config) { c.Search.Terms = nil }, ErrNoTerms},
		{"blank term", func(c *Config) { c.Search.Terms = []string{"merger India", "  "} }, ErrEmptyTerm},
		{"no base url", func(c *Config) { c.Search.BaseURL = "" }, ErrNoBaseURL},
		{"zero window", func(c *Config) { c.Filter.WindowDays = 0 }, ErrInvalidWindow},
		{"relevance without allow-list", func(c *Config) { c.Filter.Include = nil }, ErrNoIncludeWords},
		{"no patterns", func(c *Config) { c.Extract.Patterns = nil }, ErrNoPatterns},
		{"bad pattern", func(c *Config) { c.Extract.Patterns = []PatternConfig{{Name: "x", Expr: "("}} }, ErrInvalidPattern},
		{"one group", func(c *Config) { c.Extract.Patterns = []PatternConfig{{Name: "x", Expr: "(.+) buys"}} }, ErrInvalidPattern},
		{"bad format", func(c *Config) { c.Output.Format = "json" }, ErrInvalidFormat},
		{"no sheet", func(c *Config) { c.Output.SheetName = "" }, ErrNoSheetName},
		{"zero retries", func(c *Config) { c.HTTP.RetryAttempts = 0 }, ErrInvalidRetries},
		{"zero workers", func(c *Config) { c.Concurrency.Workers = 0 }, ErrInvalidWorkers},
		{"bad log level", func(c *Config) { c.Logging.Level = "trace" }, ErrInvalidLogLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestConfig_ValidateCSVWithoutSheet(t *testing.T) {
	cfg := DefaultConfigFor(ProfileBasic)
	cfg.Output.SheetName = ""
	if err := cfg.Validate(); err != nil {
		t.Errorf("Expected csv output to need no sheet name, got %v", err)
	}
}

func TestDeal_Helpers(t *testing.T) {
	published := time.Date(2025, 10, 14, 23, 30, 0, 0, time.FixedZone("IST", 5*3600+1800))
	d := Deal{Date: CalendarDate(published), Title: "Tata acquires XYZ Ltd"}

	if d.DateString() != "2025-10-14" {
		t.Errorf("Expected feed calendar date, got %s", d.DateString())
	}
	if d.HasParties() {
		t.Error("Expected no parties")
	}
	d.Buyer = "Tata"
	if !d.HasParties() {
		t.Error("Expected parties")
	}
}

func TestBatchReport_Helpers(t *testing.T) {
	r := &BatchReport{
		Terms: []TermResult{
			{Term: "a", Stats: ItemStats{Kept: 2}},
			{Term: "b", Err: errors.New("boom")},
			{Term: "c", Stats: ItemStats{Kept: 1}},
		},
	}

	if !r.Empty() {
		t.Error("Expected empty report without deals")
	}
	if failed := r.Failed(); len(failed) != 1 || failed[0].Term != "b" {
		t.Errorf("Unexpected failed terms: %+v", failed)
	}
	if r.TotalKept() != 3 {
		t.Errorf("Expected 3 kept, got %d", r.TotalKept())
	}
}
