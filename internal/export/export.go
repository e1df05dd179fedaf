// Package export writes deal lists as CSV or XLSX files.
package export

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ppiankov/dealscan/internal/model"
)

// MIME types served for downloads
const (
	MIMECSV  = "text/csv"
	MIMEXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Columns is the fixed column order of every export
var Columns = []string{"date", "buyer", "target", "title", "link"}

// ErrUnknownFormat is returned for formats other than csv and xlsx
var ErrUnknownFormat = errors.New("unknown export format")

// ParseFormat normalizes a user-supplied format name
func ParseFormat(s string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(s)); f {
	case model.FormatCSV, model.FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// MIMEType returns the content type for format
func MIMEType(format string) string {
	if format == model.FormatXLSX {
		return MIMEXLSX
	}
	return MIMECSV
}

// Exporter serializes deals according to the output settings
type Exporter struct {
	dir    string
	prefix string
	sheet  string
}

// New creates an exporter from the output configuration
func New(cfg model.OutputConfig) *Exporter {
	sheet := cfg.SheetName
	if sheet == "" {
		sheet = "Deals"
	}
	return &Exporter{
		dir:    cfg.Dir,
		prefix: cfg.FilePrefix,
		sheet:  sheet,
	}
}

// FileName returns <prefix>_<YYYY-MM-DD>.<format>
func (e *Exporter) FileName(format string, date time.Time) string {
	return fmt.Sprintf("%s_%s.%s", e.prefix, date.Format(model.DateLayout), format)
}

// Encode writes deals to w in the given format
func (e *Exporter) Encode(w io.Writer, format string, deals []model.Deal) error {
	switch format {
	case model.FormatCSV:
		return WriteCSV(w, deals)
	case model.FormatXLSX:
		return WriteXLSX(w, deals, e.sheet)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// Bytes returns the encoded export, for in-memory downloads
func (e *Exporter) Bytes(format string, deals []model.Deal) ([]byte, error) {
	var buf bytes.Buffer
	if err := e.Encode(&buf, format, deals); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile encodes deals into the output directory and returns the path.
// An existing file with the same name is overwritten.
func (e *Exporter) WriteFile(format string, date time.Time, deals []model.Deal) (string, error) {
	dir := e.dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(dir, e.FileName(format, date))
	file, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create %s: %w", path, err)
	}

	if err := e.Encode(file, format, deals); err != nil {
		_ = file.Close()
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", path, err)
	}

	return path, nil
}
