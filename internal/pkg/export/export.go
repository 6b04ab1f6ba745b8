package export

import (
	"io"

	"github.com/cmlabs-hris/timesheet-go/internal/domain/timesheet"
)

// Write renders entries in format to w.
func Write(w io.Writer, format Format, filter Filter, entries []timesheet.Entry) error {
	switch format {
	case FormatXLSX:
		return WriteXLSX(w, filter, entries)
	case FormatPDF:
		return WritePDF(w, filter, entries)
	}
	return ErrUnsupportedFormat
}

// NewFilter describes the list filter an export was taken with, resolving
// project and manager names from the exported entries when they match.
func NewFilter(lf timesheet.ListFilter, entries []timesheet.Entry) Filter {
	var f Filter
	if lf.Status != nil {
		if s, ok := timesheet.ParseStatus(*lf.Status); ok {
			f.Status = string(s)
		}
	}
	if lf.ProjectID != nil {
		f.ProjectID = *lf.ProjectID
		for _, e := range entries {
			if e.ProjectID == f.ProjectID {
				f.ProjectName = e.ProjectName
				break
			}
		}
	}
	if lf.ManagerID != nil {
		f.ManagerID = *lf.ManagerID
		for _, e := range entries {
			if e.ManagerID != nil && *e.ManagerID == f.ManagerID && e.ManagerName != nil {
				f.ManagerName = *e.ManagerName
				break
			}
		}
	}
	f.From, f.To = lf.Range()
	return f
}
