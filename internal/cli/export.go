package cli

import (
	"fmt"
	"os"

	"github.com/cmlabs-hris/timesheet-go/internal/client"
	"github.com/cmlabs-hris/timesheet-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/timesheet-go/internal/pkg/export"
)

// ExportCmd downloads the filtered entries as a spreadsheet or PDF.
type ExportCmd struct {
	Format   string `help:"xlsx or pdf." enum:"xlsx,pdf" default:"xlsx"`
	Week     string `help:"Any date in the week (YYYY-MM-DD)."`
	From     string `help:"Start of the date range (YYYY-MM-DD)."`
	To       string `help:"End of the date range (YYYY-MM-DD)."`
	Status   string `help:"Status filter."`
	Project  string `help:"Project id filter."`
	Manager  string `help:"Project manager employee id filter."`
	Employee string `help:"Employee id filter."`
	Output   string `help:"Output path; '-' writes to stdout. Defaults to the server's file name." short:"o"`
}

func (c *ExportCmd) Run(ctx *Context) error {
	format, err := export.ParseFormat(c.Format)
	if err != nil {
		return err
	}
	q := client.Query{
		From:       c.From,
		To:         c.To,
		Status:     c.Status,
		ProjectID:  c.Project,
		ManagerID:  c.Manager,
		EmployeeID: c.Employee,
	}
	if c.Week != "" {
		w, err := timesheet.ParseWeekStart(c.Week)
		if err != nil {
			return err
		}
		q.WeekStart = w.ISO()
	}

	rctx, cancel := ctx.ctx()
	defer cancel()
	file, err := ctx.Client.Export(rctx, format, q)
	if err != nil {
		return err
	}

	if c.Output == "-" {
		_, err := ctx.Out.Write(file.Data)
		return err
	}
	path := c.Output
	if path == "" {
		path = file.Name
	}
	if err := os.WriteFile(path, file.Data, 0o644); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	ctx.Log.Debug("export saved", "path", path, "content_type", file.ContentType)
	ctx.printf("%s\n", successStyle.Render(fmt.Sprintf("Saved %s (%d bytes)", path, len(file.Data))))
	return nil
}
