package cli

import (
	"github.com/cmlabs-hris/timesheet-go/internal/client"
	"github.com/cmlabs-hris/timesheet-go/internal/domain/timesheet"
)

// WeekCmd prints a week window. --shift moves it by whole weeks.
type WeekCmd struct {
	Week  string `help:"Any date in the week (YYYY-MM-DD). Defaults to today."`
	Shift int    `help:"Weeks to move from --week; negative goes back." default:"0"`
}

func (c *WeekCmd) Run(ctx *Context) error {
	anchor, err := ctx.anchor(c.Week)
	if err != nil {
		return err
	}
	cursor, err := shiftCursor(timesheet.NewWeekCursor(anchor), c.Shift)
	if err != nil {
		return err
	}
	ctx.printf("%s\n", renderWeek(cursor.Week()))
	return nil
}

// shiftCursor applies n single-week steps.
func shiftCursor(c timesheet.WeekCursor, n int) (timesheet.WeekCursor, error) {
	dir := 1
	if n < 0 {
		dir, n = -1, -n
	}
	for i := 0; i < n; i++ {
		next, err := c.Shift(dir)
		if err != nil {
			return c, err
		}
		c = next
	}
	return c, nil
}

// ListCmd shows one week of entries. --all switches to the approver view.
type ListCmd struct {
	Week     string `help:"Any date in the week (YYYY-MM-DD). Defaults to today."`
	Shift    int    `help:"Weeks to move from --week." default:"0"`
	Tab      string `help:"ALL, DRAFT, SUBMITTED, APPROVED or REJECTED." default:"ALL"`
	Search   string `help:"Case-insensitive match on task, project, category, plan or status."`
	Page     int    `help:"Page number, starting at 1." default:"1"`
	PageSize int    `help:"Rows per page (5, 10, 25 or 50)." default:"10"`

	All      bool   `help:"List every employee's entries (admin and manager)."`
	Status   string `help:"Server-side status filter for --all."`
	Project  string `help:"Project id filter for --all."`
	Manager  string `help:"Project manager employee id filter for --all."`
	Employee string `help:"Employee id filter for --all."`
}

func (c *ListCmd) perspective() timesheet.Perspective {
	if c.All {
		return timesheet.PerspectiveApprover
	}
	return timesheet.PerspectiveOwner
}

func (c *ListCmd) Run(ctx *Context) error {
	tab, ok := timesheet.ParseTab(c.Tab)
	if !ok {
		return errInvalidTab
	}
	anchor, err := ctx.anchor(c.Week)
	if err != nil {
		return err
	}
	cursor, err := shiftCursor(timesheet.NewWeekCursor(anchor), c.Shift)
	if err != nil {
		return err
	}

	rctx, cancel := ctx.ctx()
	defer cancel()

	list := client.NewEntryList(ctx.Client, c.perspective(), cursor.Anchor())
	if c.All {
		err = list.SetQuery(rctx, client.Query{
			Status:     c.Status,
			ProjectID:  c.Project,
			ManagerID:  c.Manager,
			EmployeeID: c.Employee,
		})
	} else {
		err = list.Load(rctx, client.ReasonInitial)
	}
	if err != nil {
		return err
	}

	list.SetTab(tab)
	list.SetSearch(c.Search)
	list.SetPageSize(c.PageSize)
	list.SetPage(c.Page - 1)

	view := list.View()
	ctx.printf("%s", renderList(view, c.All))
	if view.CanSubmitAll {
		ctx.printf("%s\n", mutedStyle.Render("Drafts can be submitted with 'timesheetctl submit-all'"))
	}
	return nil
}
