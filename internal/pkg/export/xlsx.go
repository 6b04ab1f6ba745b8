package export

import (
	"fmt"
	"io"

	"github.com/cmlabs-hris/timesheet-go/internal/domain/timesheet"
	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"
)

const sheetName = "Timesheets"

// WriteXLSX writes one sheet holding the header row and one row per entry.
// Hour columns are stored as numbers so spreadsheet formulas work on them.
func WriteXLSX(w io.Writer, filter Filter, entries []timesheet.Entry) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := f.SetDocProps(&excelize.DocProperties{Title: filter.Title(), Creator: "timesheet"}); err != nil {
		return fmt.Errorf("set document properties: %w", err)
	}

	header := make([]interface{}, 0, columnCount)
	for _, c := range Columns {
		header = append(header, c)
	}
	if err := f.SetSheetRow(sheetName, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	last, err := excelize.CoordinatesToCellName(columnCount, 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(sheetName, "A1", last, bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}

	for i, e := range entries {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		values := cellValues(e)
		if err := f.SetSheetRow(sheetName, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}

	if err := f.SetColWidth(sheetName, "A", "A", 38); err != nil {
		return err
	}
	if err := f.SetColWidth(sheetName, "B", "I", 20); err != nil {
		return err
	}
	if err := f.SetPanes(sheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}

	_, err = f.WriteTo(w)
	return err
}

// cellValues is Row with hour cells converted to numbers.
func cellValues(e timesheet.Entry) []interface{} {
	row := Row(e)
	values := make([]interface{}, len(row))
	for i, v := range row {
		values[i] = v
	}
	for i, h := range e.HoursByDay {
		values[ColMon+i] = hoursNumber(h)
	}
	values[ColTotalHours] = hoursNumber(e.TotalHours())
	return values
}

func hoursNumber(d decimal.Decimal) float64 {
	f, _ := d.Float64()
	return f
}
