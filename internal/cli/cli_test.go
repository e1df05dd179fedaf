package cli

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ppiankov/dealscan/internal/export"
)

// run executes the root command with fresh flag and viper state
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	viper.Reset()
	resetFlags(rootCmd)
	cfgFile = ""

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.PersistentFlags().VisitAll(reset)
	cmd.Flags().VisitAll(reset)
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestVersionCommand(t *testing.T) {
	out, err := run(t, "version")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if out != "dealscan v"+Version+"\n" {
		t.Errorf("Unexpected output: %q", out)
	}
}

func TestQueriesCommand_Profiles(t *testing.T) {
	tests := []struct {
		args  []string
		count int
		first string
	}{
		{[]string{"queries"}, 5, "https://news.google.com/rss/search?q=company+acquisition+India&hl=en-IN&gl=IN&ceid=IN:en"},
		{[]string{"queries", "--profile", "basic"}, 3, "https://news.google.com/rss/search?q=acquisition+India&hl=en-IN&gl=IN&ceid=IN:en"},
	}

	for _, tt := range tests {
		t.Run(strings.Join(tt.args, " "), func(t *testing.T) {
			out, err := run(t, tt.args...)
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			lines := strings.Split(strings.TrimSpace(out), "\n")
			if len(lines) != tt.count {
				t.Fatalf("Expected %d URLs, got %d:\n%s", tt.count, len(lines), out)
			}
			if lines[0] != tt.first {
				t.Errorf("Unexpected first URL: %s", lines[0])
			}
		})
	}
}

func TestConfigShow_EnvOverride(t *testing.T) {
	t.Setenv("DEALSCAN_FILTER_WINDOW_DAYS", "30")
	t.Setenv("DEALSCAN_OUTPUT_FORMAT", "csv")

	out, err := run(t, "config", "show")
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.Contains(out, "window_days: 30") {
		t.Errorf("Expected env window override, got:\n%s", out)
	}
	if !strings.Contains(out, "format: csv") {
		t.Errorf("Expected env format override, got:\n%s", out)
	}
}

func TestQueriesCommand_ConfigFile(t *testing.T) {
	path := writeConfig(t, `
search:
  terms:
    - "M&A India"
  base_url: http://feed.test/rss
`)

	out, err := run(t, "queries", "--config", path)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	want := "http://feed.test/rss?q=M%26A+India&hl=en-IN&gl=IN&ceid=IN:en"
	if strings.TrimSpace(out) != want {
		t.Errorf("Expected %s, got %s", want, out)
	}
}

func TestScanCommand_InvalidConfig(t *testing.T) {
	if _, err := run(t, "scan", "--window-days", "0"); err == nil {
		t.Error("Expected validation error for zero window")
	}
	if _, err := run(t, "scan", "--format", "json"); err == nil {
		t.Error("Expected error for unknown format")
	}
}

func TestScanCommand_WritesExport(t *testing.T) {
	pubDate := time.Now().UTC().Add(-24 * time.Hour).Format(http.TimeFormat)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprintf(w, `<?xml version="1.0"?><rss version="2.0"><channel><title>t</title>
<item><title>Flipkart acquires Myntra</title><link>https://example.com/f</link><pubDate>%s</pubDate></item>
<item><title>Govt acquires land for railway</title><link>https://example.com/g</link><pubDate>%s</pubDate></item>
</channel></rss>`, pubDate, pubDate)
	}))
	defer server.Close()

	path := writeConfig(t, fmt.Sprintf(`
search:
  terms: ["company acquisition India"]
  base_url: %s
`, server.URL))
	outDir := t.TempDir()

	out, err := run(t, "scan", "--config", path, "--format", "csv", "--output-dir", outDir)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.Contains(out, "Saved 1 results") {
		t.Errorf("Unexpected output: %q", out)
	}

	name := fmt.Sprintf("india_mna_deals_%s.csv", time.Now().Format("2006-01-02"))
	file, err := os.Open(filepath.Join(outDir, name))
	if err != nil {
		t.Fatalf("Expected export file %s: %v", name, err)
	}
	defer file.Close()

	deals, err := export.ReadCSV(file)
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	if len(deals) != 1 || deals[0].Buyer != "Flipkart" || deals[0].Target != "Myntra" {
		t.Errorf("Unexpected deals: %+v", deals)
	}
}

func TestScanCommand_CacheAndRefresh(t *testing.T) {
	pubDate := time.Now().UTC().Add(-24 * time.Hour).Format(http.TimeFormat)
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		fmt.Fprintf(w, `<?xml version="1.0"?><rss version="2.0"><channel><title>t</title>
<item><title>Zomato buys Blinkit</title><link>https://example.com/z</link><pubDate>%s</pubDate></item>
</channel></rss>`, pubDate)
	}))
	defer server.Close()

	path := writeConfig(t, fmt.Sprintf(`
search:
  terms: ["startup acquisition India"]
  base_url: %s
cache:
  dir: %s
`, server.URL, t.TempDir()))
	outDir := t.TempDir()

	for i := 0; i < 2; i++ {
		if _, err := run(t, "scan", "--config", path, "--output-dir", outDir, "--cache"); err != nil {
			t.Fatalf("cached scan %d: %v", i, err)
		}
	}
	if hits.Load() != 1 {
		t.Errorf("Expected second scan to use the cache, got %d requests", hits.Load())
	}

	if _, err := run(t, "scan", "--config", path, "--output-dir", outDir, "--refresh"); err != nil {
		t.Fatalf("refresh scan: %v", err)
	}
	if hits.Load() != 2 {
		t.Errorf("Expected --refresh to refetch, got %d requests", hits.Load())
	}
}

func TestScanCommand_FailFastWritesNothing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	path := writeConfig(t, fmt.Sprintf("search:\n  base_url: %s\n", server.URL))
	outDir := t.TempDir()

	if _, err := run(t, "scan", "--config", path, "--output-dir", outDir); err == nil {
		t.Fatal("Expected scan to fail")
	}

	entries, _ := os.ReadDir(outDir)
	if len(entries) != 0 {
		t.Errorf("Expected no export on failure, found %d files", len(entries))
	}
}
