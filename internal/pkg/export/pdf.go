package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/cmlabs-hris/timesheet-go/internal/domain/timesheet"
	"github.com/johnfercher/maroto/pkg/color"
	"github.com/johnfercher/maroto/pkg/consts"
	"github.com/johnfercher/maroto/pkg/pdf"
	"github.com/johnfercher/maroto/pkg/props"
	"github.com/shopspring/decimal"
)

// Grid widths of the document table; they must sum to 12.
var pdfGrid = []uint{1, 1, 2, 1, 1, 1, 2, 1, 1, 1}

var pdfHeader = []string{
	"ID", "Employee / Manager", "Project / Task", "Category / Plan", "Week",
	"Status / Submitted", "Hours (Mon-Sun)", "Total", "Comments", "Rejection Reason",
}

// DocumentRows folds every Rows column into the ten cells that fit a landscape
// page. Paired columns are joined with " / ".
func DocumentRows(entries []timesheet.Entry) [][]string {
	rows := make([][]string, 0, len(entries))
	for _, r := range Rows(entries) {
		rows = append(rows, []string{
			r[ColID],
			r[ColEmployee] + " / " + r[ColManager],
			r[ColProject] + " / " + r[ColTask],
			r[ColTimeCategory] + " / " + r[ColResourcePlan],
			r[ColWeek],
			r[ColStatus] + " / " + r[ColSubmittedAt],
			strings.Join(r[ColMon:ColSun+1], " | "),
			r[ColTotalHours],
			r[ColComments],
			r[ColRejectionReason],
		})
	}
	return rows
}

// WritePDF renders a landscape A4 report with a grand total.
func WritePDF(w io.Writer, filter Filter, entries []timesheet.Entry) error {
	m := pdf.NewMaroto(consts.Landscape, consts.A4)
	m.SetPageMargins(10, 10, 10)

	m.RegisterHeader(func() {
		m.Row(10, func() {
			m.Col(12, func() {
				m.Text(filter.Title(), props.Text{
					Top:   3,
					Style: consts.Bold,
					Align: consts.Center,
					Size:  14,
				})
			})
		})
	})

	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.TotalHours())
	}

	rows := DocumentRows(entries)
	if len(rows) == 0 {
		m.Row(10, func() {
			m.Col(12, func() {
				m.Text("No entries match the selected filters.", props.Text{Top: 3, Align: consts.Center, Size: 10})
			})
		})
	} else {
		m.TableList(pdfHeader, rows, props.TableList{
			HeaderProp: props.TableListContent{
				Size:      8,
				GridSizes: pdfGrid,
			},
			ContentProp: props.TableListContent{
				Size:      7,
				GridSizes: pdfGrid,
			},
			Align:                consts.Left,
			AlternatedBackground: &color.Color{Red: 240, Green: 240, Blue: 240},
			HeaderContentSpace:   1,
			Line:                 false,
		})
	}

	m.Row(15, func() {
		m.Col(12, func() {
			m.Text(fmt.Sprintf("Entries: %d    Total hours: %s", len(entries), total.StringFixed(2)), props.Text{
				Top:   5,
				Style: consts.Bold,
				Align: consts.Right,
				Size:  10,
			})
		})
	})

	buf, err := m.Output()
	if err != nil {
		return fmt.Errorf("render pdf: %w", err)
	}
	_, err = buf.WriteTo(w)
	return err
}
