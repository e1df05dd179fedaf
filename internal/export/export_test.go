package export

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/ppiankov/dealscan/internal/model"
)

func day(s string) time.Time {
	t, _ := time.Parse(model.DateLayout, s)
	return t
}

func sampleDeals() []model.Deal {
	return []model.Deal{
		{Date: day("2025-10-17"), Title: "Tata acquires XYZ Ltd", Link: "https://example.com/tata", Buyer: "Tata", Target: "XYZ Ltd"},
		{Date: day("2025-10-16"), Title: "Deal talks, again, stall", Link: "https://example.com/talks"},
		{Date: day("2025-10-15"), Title: `Zomato buys "Blinkit"`, Link: "https://example.com/zomato", Buyer: "Zomato", Target: `"Blinkit"`},
	}
}

func testExporter(dir string) *Exporter {
	cfg := model.DefaultConfig().Output
	cfg.Dir = dir
	return New(cfg)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"csv", model.FormatCSV, false},
		{" XLSX ", model.FormatXLSX, false},
		{"json", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrUnknownFormat) {
					t.Errorf("Expected ErrUnknownFormat, got %v", err)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
			}
		})
	}
}

func TestMIMEType(t *testing.T) {
	if got := MIMEType(model.FormatCSV); got != "text/csv" {
		t.Errorf("Unexpected csv MIME: %s", got)
	}
	if got := MIMEType(model.FormatXLSX); got != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Errorf("Unexpected xlsx MIME: %s", got)
	}
}

func TestFileName(t *testing.T) {
	e := testExporter("")
	date := time.Date(2025, 10, 19, 23, 0, 0, 0, time.UTC)

	if got := e.FileName(model.FormatCSV, date); got != "india_mna_deals_2025-10-19.csv" {
		t.Errorf("Unexpected file name: %s", got)
	}
	if got := e.FileName(model.FormatXLSX, date); got != "india_mna_deals_2025-10-19.xlsx" {
		t.Errorf("Unexpected file name: %s", got)
	}
}

func TestWriteCSV_Golden(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, sampleDeals()); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	want := strings.Join([]string{
		"date,buyer,target,title,link",
		"2025-10-17,Tata,XYZ Ltd,Tata acquires XYZ Ltd,https://example.com/tata",
		`2025-10-16,,,"Deal talks, again, stall",https://example.com/talks`,
		`2025-10-15,Zomato,"""Blinkit""","Zomato buys ""Blinkit""",https://example.com/zomato`,
		"",
	}, "\n")
	if buf.String() != want {
		t.Errorf("Unexpected CSV:\n%s\nwant:\n%s", buf.String(), want)
	}
}

func TestWriteCSV_HeaderOnlyWhenEmpty(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, nil); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}
	if buf.String() != "date,buyer,target,title,link\n" {
		t.Errorf("Expected header only, got %q", buf.String())
	}
}

func TestCSV_RoundTrip(t *testing.T) {
	deals := sampleDeals()

	var buf bytes.Buffer
	if err := WriteCSV(&buf, deals); err != nil {
		t.Fatalf("WriteCSV failed: %v", err)
	}

	got, err := ReadCSV(&buf)
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	assertDealsEqual(t, deals, got)
}

func TestWriteFile_OverwritesSameDay(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	e := testExporter(dir)
	date := time.Date(2025, 10, 19, 8, 0, 0, 0, time.UTC)

	first, err := e.WriteFile(model.FormatCSV, date, sampleDeals())
	if err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	second, err := e.WriteFile(model.FormatCSV, date, sampleDeals()[:1])
	if err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	if first != second {
		t.Fatalf("Expected same path, got %s and %s", first, second)
	}
	if filepath.Base(first) != "india_mna_deals_2025-10-19.csv" {
		t.Errorf("Unexpected file name: %s", first)
	}

	file, err := os.Open(second)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	defer file.Close()

	got, err := ReadCSV(file)
	if err != nil {
		t.Fatalf("ReadCSV failed: %v", err)
	}
	if len(got) != 1 {
		t.Errorf("Expected overwritten file with 1 row, got %d", len(got))
	}
}

func TestXLSX_RoundTripAndHyperlinks(t *testing.T) {
	deals := sampleDeals()
	e := testExporter("")

	data, err := e.Bytes(model.FormatXLSX, deals)
	if err != nil {
		t.Fatalf("Bytes failed: %v", err)
	}

	got, err := ReadXLSX(bytes.NewReader(data), "Deals")
	if err != nil {
		t.Fatalf("ReadXLSX failed: %v", err)
	}
	assertDealsEqual(t, deals, got)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenReader failed: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Deals")
	if err != nil {
		t.Fatalf("GetRows failed: %v", err)
	}
	if strings.Join(rows[0], ",") != "date,buyer,target,title,link" {
		t.Errorf("Unexpected header: %v", rows[0])
	}

	ok, target, err := f.GetCellHyperLink("Deals", "D2")
	if err != nil {
		t.Fatalf("GetCellHyperLink failed: %v", err)
	}
	if !ok || target != "https://example.com/tata" {
		t.Errorf("Expected title hyperlink to article, got %v %q", ok, target)
	}
	if v, _ := f.GetCellValue("Deals", "D2"); v != "Tata acquires XYZ Ltd" {
		t.Errorf("Expected title as display text, got %q", v)
	}
}

func TestXLSX_Empty(t *testing.T) {
	data, err := testExporter("").Bytes(model.FormatXLSX, nil)
	if err != nil {
		t.Fatalf("Bytes failed: %v", err)
	}

	got, err := ReadXLSX(bytes.NewReader(data), "Deals")
	if err != nil {
		t.Fatalf("ReadXLSX failed: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Expected no deals, got %d", len(got))
	}
}

func TestEncode_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := testExporter("").Encode(&buf, "json", sampleDeals())
	if !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("Expected ErrUnknownFormat, got %v", err)
	}
}

func assertDealsEqual(t *testing.T, want, got []model.Deal) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("Expected %d deals, got %d", len(want), len(got))
	}
	for i := range want {
		w, g := want[i], got[i]
		if !w.Date.Equal(g.Date) || w.Buyer != g.Buyer || w.Target != g.Target || w.Title != g.Title || w.Link != g.Link {
			t.Errorf("Deal %d mismatch:\nwant %+v\ngot  %+v", i, w, g)
		}
	}
}
