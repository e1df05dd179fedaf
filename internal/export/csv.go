package export

import (
	"fmt"
	"io"
	"time"

	"github.com/gocarina/gocsv"

	"github.com/ppiankov/dealscan/internal/model"
)

// Row is one exported line. Absent buyer/target are empty strings.
type Row struct {
	Date   string `csv:"date"`
	Buyer  string `csv:"buyer"`
	Target string `csv:"target"`
	Title  string `csv:"title"`
	Link   string `csv:"link"`
}

// ToRows converts deals into export rows, preserving order
func ToRows(deals []model.Deal) []Row {
	rows := make([]Row, len(deals))
	for i, d := range deals {
		rows[i] = Row{
			Date:   d.DateString(),
			Buyer:  d.Buyer,
			Target: d.Target,
			Title:  d.Title,
			Link:   d.Link,
		}
	}
	return rows
}

// Deal converts a row back into a deal
func (r Row) Deal() (model.Deal, error) {
	date, err := time.Parse(model.DateLayout, r.Date)
	if err != nil {
		return model.Deal{}, fmt.Errorf("parse date %q: %w", r.Date, err)
	}
	return model.Deal{
		Date:   date,
		Buyer:  r.Buyer,
		Target: r.Target,
		Title:  r.Title,
		Link:   r.Link,
	}, nil
}

// WriteCSV writes a header row and one row per deal
func WriteCSV(w io.Writer, deals []model.Deal) error {
	rows := ToRows(deals)
	if err := gocsv.Marshal(&rows, w); err != nil {
		return fmt.Errorf("encode csv: %w", err)
	}
	return nil
}

// ReadCSV parses a file produced by WriteCSV
func ReadCSV(r io.Reader) ([]model.Deal, error) {
	var rows []Row
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, fmt.Errorf("decode csv: %w", err)
	}

	deals := make([]model.Deal, 0, len(rows))
	for i, row := range rows {
		d, err := row.Deal()
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		deals = append(deals, d)
	}
	return deals, nil
}
