package model

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

// Profile names
const (
	ProfileBasic    = "basic"    // Plain CSV dump, no relevance gate
	ProfileBusiness = "business" // Business-focused terms with deny/allow lists
)

// Export format names
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// Configuration validation errors
var (
	ErrUnknownProfile  = errors.New("profile must be one of: basic, business")
	ErrNoTerms         = errors.New("search.terms must contain at least one term")
	ErrEmptyTerm       = errors.New("search.terms must not contain blank terms")
	ErrNoBaseURL       = errors.New("search.base_url is required")
	ErrInvalidWindow   = errors.New("filter.window_days must be at least 1")
	ErrNoIncludeWords  = errors.New("filter.include must not be empty when relevance is enabled")
	ErrNoPatterns      = errors.New("extract.patterns must contain at least one pattern")
	ErrInvalidPattern  = errors.New("extract.patterns entry is not a valid expression")
	ErrInvalidFormat   = errors.New("output.format must be 'csv' or 'xlsx'")
	ErrNoSheetName     = errors.New("output.sheet_name is required for xlsx output")
	ErrInvalidRetries  = errors.New("http.retry_attempts must be at least 1")
	ErrInvalidWorkers  = errors.New("concurrency.workers must be at least 1")
	ErrInvalidLogLevel = errors.New("logging.level must be one of: debug, info, warn, error")
)

// Config is the complete dealscan configuration
type Config struct {
	Profile     string            `yaml:"profile" mapstructure:"profile"`
	Search      SearchConfig      `yaml:"search" mapstructure:"search"`
	Filter      FilterConfig      `yaml:"filter" mapstructure:"filter"`
	Extract     ExtractConfig     `yaml:"extract" mapstructure:"extract"`
	HTTP        HTTPConfig        `yaml:"http" mapstructure:"http"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Errors      ErrorsConfig      `yaml:"errors" mapstructure:"errors"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
	Logging     LoggingConfig     `yaml:"logging" mapstructure:"logging"`
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
}

// SearchConfig controls the feed queries
type SearchConfig struct {
	Terms    []string `yaml:"terms" mapstructure:"terms"`
	BaseURL  string   `yaml:"base_url" mapstructure:"base_url"`
	Language string   `yaml:"language" mapstructure:"language"` // hl
	Region   string   `yaml:"region" mapstructure:"region"`     // gl
	Edition  string   `yaml:"edition" mapstructure:"edition"`   // ceid
}

// FilterConfig controls recency and relevance gating
type FilterConfig struct {
	WindowDays int      `yaml:"window_days" mapstructure:"window_days"`
	Relevance  bool     `yaml:"relevance" mapstructure:"relevance"`
	Exclude    []string `yaml:"exclude" mapstructure:"exclude"`
	Include    []string `yaml:"include" mapstructure:"include"`
}

// Window returns the recency window as a duration
func (f FilterConfig) Window() time.Duration {
	return time.Duration(f.WindowDays) * 24 * time.Hour
}

// ExtractConfig holds the ordered headline patterns
type ExtractConfig struct {
	Patterns []PatternConfig `yaml:"patterns" mapstructure:"patterns"`
}

// PatternConfig is one headline pattern. Expressions are matched case-insensitively
// and must expose buyer/target either as named groups or as groups 1 and 2.
type PatternConfig struct {
	Name string `yaml:"name" mapstructure:"name"`
	Expr string `yaml:"expr" mapstructure:"expr"`
}

// HTTPConfig controls outbound requests
type HTTPConfig struct {
	Timeout           time.Duration `yaml:"timeout" mapstructure:"timeout"`
	UserAgent         string        `yaml:"user_agent" mapstructure:"user_agent"`
	MaxBodyBytes      int64         `yaml:"max_body_bytes" mapstructure:"max_body_bytes"`
	RetryAttempts     int           `yaml:"retry_attempts" mapstructure:"retry_attempts"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"` // 0 = unlimited
	BurstSize         int           `yaml:"burst_size" mapstructure:"burst_size"`
	RespectRobots     bool          `yaml:"respect_robots" mapstructure:"respect_robots"`
	HTTPProxy         string        `yaml:"http_proxy" mapstructure:"http_proxy"`
	HTTPSProxy        string        `yaml:"https_proxy" mapstructure:"https_proxy"`
}

// CacheConfig controls the feed response cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	Dir       string        `yaml:"dir" mapstructure:"dir"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
	Refresh   bool          `yaml:"refresh" mapstructure:"refresh"` // Evict each feed before fetching
}

// ConcurrencyConfig controls how many terms are fetched at once
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// ErrorsConfig controls the failure policy
type ErrorsConfig struct {
	ContinueOnError bool `yaml:"continue_on_error" mapstructure:"continue_on_error"`
}

// OutputConfig controls the export artifact
type OutputConfig struct {
	Dir        string `yaml:"dir" mapstructure:"dir"`
	Format     string `yaml:"format" mapstructure:"format"`
	FilePrefix string `yaml:"file_prefix" mapstructure:"file_prefix"`
	SheetName  string `yaml:"sheet_name" mapstructure:"sheet_name"`
}

// LoggingConfig controls log output
type LoggingConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
	File  string `yaml:"file" mapstructure:"file"` // Empty disables file logging
}

// ServerConfig controls the dashboard
type ServerConfig struct {
	Addr string `yaml:"addr" mapstructure:"addr"`
}

// Search terms per profile
var (
	BasicTerms = []string{"acquisition India", "merger India", "M&A India"}

	BusinessTerms = []string{
		"company acquisition India",
		"corporate acquisition India",
		"startup acquisition India",
		"merger and acquisition India",
		"business acquisition India",
	}
)

// DefaultExclude is the relevance deny-list
var DefaultExclude = []string{
	"land acquisition", "government", "railway", "submarine", "army",
	"navy", "missile", "defence", "defense", "property", "road",
}

// DefaultInclude is the relevance allow-list
var DefaultInclude = []string{
	"company", "startup", "merger", "acquires", "buys", "stake", "deal", "subsidiary", "investment",
}

// DefaultPatterns returns the headline patterns in priority order.
// "acquires stake in" sits after the plain "acquires" pattern and therefore never wins
// against it; the order is kept as-is and is configurable.
func DefaultPatterns() []PatternConfig {
	return []PatternConfig{
		{Name: "acquires", Expr: `(.+?) acquires (.+)`},
		{Name: "buys", Expr: `(.+?) buys (.+)`},
		{Name: "acquires-stake", Expr: `(.+?) acquires stake in (.+)`},
		{Name: "merges", Expr: `(.+?) merges with (.+)`},
	}
}

// DefaultConfig returns the business profile defaults
func DefaultConfig() *Config {
	return DefaultConfigFor(ProfileBusiness)
}

// DefaultConfigFor returns defaults for the named profile; unknown names fall back to business
func DefaultConfigFor(profile string) *Config {
	cfg := &Config{
		Profile: ProfileBusiness,
		Search: SearchConfig{
			Terms:    append([]string(nil), BusinessTerms...),
			BaseURL:  "https://news.google.com/rss/search",
			Language: "en-IN",
			Region:   "IN",
			Edition:  "IN:en",
		},
		Filter: FilterConfig{
			WindowDays: 90,
			Relevance:  true,
			Exclude:    append([]string(nil), DefaultExclude...),
			Include:    append([]string(nil), DefaultInclude...),
		},
		Extract: ExtractConfig{
			Patterns: DefaultPatterns(),
		},
		HTTP: HTTPConfig{
			Timeout:       30 * time.Second,
			UserAgent:     "dealscan/0.1 (+https://github.com/ppiankov/dealscan)",
			MaxBodyBytes:  5_000_000,
			RetryAttempts: 1,
			BurstSize:     1,
		},
		Cache: CacheConfig{
			Enabled:   false,
			Dir:       defaultCacheDir(),
			MemoryTTL: 15 * time.Minute,
			DiskTTL:   6 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 1,
		},
		Output: OutputConfig{
			Dir:        ".",
			Format:     FormatXLSX,
			FilePrefix: "india_mna_deals",
			SheetName:  "Deals",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
		Server: ServerConfig{
			Addr: "127.0.0.1:8501",
		},
	}

	if strings.ToLower(profile) == ProfileBasic {
		cfg.Profile = ProfileBasic
		cfg.Search.Terms = append([]string(nil), BasicTerms...)
		cfg.Filter.Relevance = false
		cfg.Output.Format = FormatCSV
	}

	return cfg
}

func defaultCacheDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "dealscan-cache")
	}
	return filepath.Join(home, ".dealscan", "cache")
}

// Validate checks the configuration for values the pipeline cannot run with
func (c *Config) Validate() error {
	switch c.Profile {
	case ProfileBasic, ProfileBusiness:
	default:
		return ErrUnknownProfile
	}

	if len(c.Search.Terms) == 0 {
		return ErrNoTerms
	}
	for _, term := range c.Search.Terms {
		if strings.TrimSpace(term) == "" {
			return ErrEmptyTerm
		}
	}
	if c.Search.BaseURL == "" {
		return ErrNoBaseURL
	}

	if c.Filter.WindowDays < 1 {
		return ErrInvalidWindow
	}
	if c.Filter.Relevance && len(c.Filter.Include) == 0 {
		return ErrNoIncludeWords
	}

	if len(c.Extract.Patterns) == 0 {
		return ErrNoPatterns
	}
	for _, p := range c.Extract.Patterns {
		re, err := regexp.Compile(p.Expr)
		if err != nil {
			return fmt.Errorf("%w: %s: %v", ErrInvalidPattern, p.Name, err)
		}
		if re.NumSubexp() < 2 {
			return fmt.Errorf("%w: %s: needs two capture groups", ErrInvalidPattern, p.Name)
		}
	}

	switch c.Output.Format {
	case FormatCSV:
	case FormatXLSX:
		if c.Output.SheetName == "" {
			return ErrNoSheetName
		}
	default:
		return ErrInvalidFormat
	}

	if c.HTTP.RetryAttempts < 1 {
		return ErrInvalidRetries
	}
	if c.Concurrency.Workers < 1 {
		return ErrInvalidWorkers
	}

	switch strings.ToLower(c.Logging.Level) {
	case "debug", "info", "warn", "error":
	default:
		return ErrInvalidLogLevel
	}

	return nil
}
