package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/ppiankov/dealscan/internal/model"
)

const titleColumn = 4 // 1-based position of "title" in Columns

// WriteXLSX writes a single-sheet workbook. The title cell links to the article.
func WriteXLSX(w io.Writer, deals []model.Deal, sheet string) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	link, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Color: "0563C1", Underline: "single"}})
	if err != nil {
		return fmt.Errorf("link style: %w", err)
	}

	for col, name := range Columns {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		if err := f.SetCellValue(sheet, cell, name); err != nil {
			return err
		}
	}
	if err := f.SetCellStyle(sheet, "A1", "E1", header); err != nil {
		return err
	}

	for i, row := range ToRows(deals) {
		r := i + 2
		values := []string{row.Date, row.Buyer, row.Target, row.Title, row.Link}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, r)
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}

		if row.Link == "" {
			continue
		}
		titleCell, _ := excelize.CoordinatesToCellName(titleColumn, r)
		display := row.Title
		if err := f.SetCellHyperLink(sheet, titleCell, row.Link, "External", excelize.HyperlinkOpts{Display: &display}); err != nil {
			return fmt.Errorf("link %s: %w", titleCell, err)
		}
		if err := f.SetCellStyle(sheet, titleCell, titleCell, link); err != nil {
			return err
		}
	}

	_ = f.SetColWidth(sheet, "A", "A", 12)
	_ = f.SetColWidth(sheet, "B", "C", 24)
	_ = f.SetColWidth(sheet, "D", "D", 80)
	_ = f.SetColWidth(sheet, "E", "E", 40)

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("encode xlsx: %w", err)
	}
	return nil
}

// ReadXLSX reads deals back from a workbook produced by WriteXLSX
func ReadXLSX(r io.Reader, sheet string) ([]model.Deal, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return nil, nil
	}

	deals := make([]model.Deal, 0, len(rows)-1)
	for i, cells := range rows[1:] {
		// GetRows drops trailing empty cells
		padded := make([]string, len(Columns))
		copy(padded, cells)

		d, err := Row{
			Date:   padded[0],
			Buyer:  padded[1],
			Target: padded[2],
			Title:  padded[3],
			Link:   padded[4],
		}.Deal()
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		deals = append(deals, d)
	}
	return deals, nil
}
