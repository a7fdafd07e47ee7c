// Package xlsx encodes analysis runs as Excel workbooks using excelize.
package xlsx

import (
	"fmt"
	"io"
	"strconv"

	"github.com/fwojciec/serp"
	"github.com/xuri/excelize/v2"
)

// SheetName is the name of the worksheet holding the records.
const SheetName = "Results"

// Ensure Format implements serp.Format at compile time.
var _ serp.Format = Format{}

// Format writes records as a single-sheet workbook: a header row of
// serp.Columns followed by one row per record. Heading lists are flattened
// into newline-delimited cells.
type Format struct{}

// Ext implements serp.Format.
func (Format) Ext() string { return "xlsx" }

// ContentType implements serp.Format.
func (Format) ContentType() string {
	return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
}

// Encode implements serp.Format.
func (Format) Encode(w io.Writer, run *serp.Run) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return err
	}

	header := make([]any, len(serp.Columns))
	for i, c := range serp.Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(SheetName, "A1", &header); err != nil {
		return err
	}

	for i, rec := range run.Records {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := recordRow(rec)
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	if err := styleSheet(f); err != nil {
		return err
	}
	return f.Write(w)
}

func recordRow(rec *serp.PageRecord) []any {
	row := []any{rec.URL, rec.Title, rec.MetaDescription}
	for _, l := range serp.HeadingLevels {
		row = append(row, serp.JoinHeadings(rec.Level(l)))
	}
	return append(row, rec.Rank)
}

func styleSheet(f *excelize.File) error {
	style, err := f.NewStyle(&excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
	})
	if err != nil {
		return err
	}
	last, err := excelize.ColumnNumberToName(len(serp.Columns))
	if err != nil {
		return err
	}
	if err := f.SetColStyle(SheetName, "A:"+last, style); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetName, "A", "C", 50); err != nil {
		return err
	}
	if err := f.SetColWidth(SheetName, "D", "I", 40); err != nil {
		return err
	}
	return f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

// ReadRecords reads a workbook written by Format back into records.
// Columns are located by header name, so column order is not significant.
func ReadRecords(r io.Reader) ([]*serp.PageRecord, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, serp.Errorf(serp.EINVALID, "invalid workbook: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, serp.Errorf(serp.EINVALID, "workbook has no header row")
	}

	index := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		index[name] = i
	}
	for _, c := range serp.Columns {
		if _, ok := index[c]; !ok {
			return nil, serp.Errorf(serp.EINVALID, "workbook missing column %q", c)
		}
	}

	records := make([]*serp.PageRecord, 0, len(rows)-1)
	for n, row := range rows[1:] {
		// GetRows drops trailing empty cells.
		cell := func(name string) string {
			if i := index[name]; i < len(row) {
				return row[i]
			}
			return ""
		}

		rec := &serp.PageRecord{
			URL:             cell("url"),
			Title:           cell("title"),
			MetaDescription: cell("meta_description"),
			Headings:        serp.NewHeadings(),
		}
		for _, l := range serp.HeadingLevels {
			for _, text := range serp.SplitHeadings(cell(l.String())) {
				rec.Add(l, text)
			}
		}
		rank, err := strconv.Atoi(cell("rank"))
		if err != nil {
			return nil, serp.Errorf(serp.EINVALID, "row %d: invalid rank %q", n+2, cell("rank"))
		}
		rec.Rank = rank
		records = append(records, rec)
	}
	return records, nil
}
