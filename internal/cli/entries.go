package cli

import (
	"github.com/cmlabs-hris/timesheet-go/internal/client"
	"github.com/cmlabs-hris/timesheet-go/internal/domain/timesheet"
)

// EntryFields are the form inputs shared by create and edit.
type EntryFields struct {
	Project  string   `help:"Project id."`
	Task     string   `help:"Task id within the project."`
	Hours    []string `help:"Hours Monday to Sunday, comma separated, e.g. 8,8,8,8,8." sep:","`
	Category string   `help:"Time category. See 'timesheetctl options'."`
	Plan     string   `help:"Resource plan. See 'timesheetctl options'."`
	Comments string   `help:"Free text comment."`
}

// apply copies the given flags into form and reports whether anything was set.
func (f EntryFields) apply(ctx *Context, form *client.EntryForm) (bool, error) {
	rctx, cancel := ctx.ctx()
	defer cancel()

	changed := false
	if f.Project != "" {
		if err := form.SetProject(rctx, f.Project); err != nil {
			return false, err
		}
		changed = true
	}
	if f.Task != "" {
		form.SetTask(f.Task)
		changed = true
	}
	if len(f.Hours) > timesheet.DaysPerWeek {
		return false, errHoursTooLong
	}
	for day, input := range f.Hours {
		form.SetHours(day, input)
		changed = true
	}
	if f.Category != "" {
		form.SetTimeCategory(f.Category)
		changed = true
	}
	if f.Plan != "" {
		form.SetResourcePlan(f.Plan)
		changed = true
	}
	if f.Comments != "" {
		form.SetComments(f.Comments)
		changed = true
	}
	return changed, nil
}

type CreateCmd struct {
	Week string `help:"Any date in the week (YYYY-MM-DD). Defaults to today."`
	EntryFields
}

func (c *CreateCmd) Run(ctx *Context) error {
	anchor, err := ctx.anchor(c.Week)
	if err != nil {
		return err
	}

	rctx, cancel := ctx.ctx()
	defer cancel()
	opts, err := ctx.Client.Options(rctx)
	if err != nil {
		return err
	}

	form := client.NewEntryForm(ctx.Client, timesheet.WeekOf(anchor), opts)
	if _, err := c.apply(ctx, form); err != nil {
		return err
	}
	saved, err := form.Submit(rctx)
	if err != nil {
		return err
	}
	ctx.printf("%s\n%s", successStyle.Render("Timesheet entry created"), renderEntry(saved))
	return nil
}

// EditCmd changes a DRAFT or REJECTED entry. Only the given flags change.
type EditCmd struct {
	ID string `arg:"" help:"Entry id."`
	EntryFields
}

func (c *EditCmd) Run(ctx *Context) error {
	rctx, cancel := ctx.ctx()
	defer cancel()

	e, err := ctx.Client.GetEntry(rctx, c.ID)
	if err != nil {
		return err
	}
	form, err := client.EditEntryForm(ctx.Client, e)
	if err != nil {
		return err
	}
	changed, err := c.apply(ctx, form)
	if err != nil {
		return err
	}
	if !changed {
		return errNothingToEdit
	}
	saved, err := form.Submit(rctx)
	if err != nil {
		return err
	}
	ctx.printf("%s\n%s", successStyle.Render("Timesheet entry updated"), renderEntry(saved))
	return nil
}

type ShowCmd struct {
	ID string `arg:"" help:"Entry id."`
}

func (c *ShowCmd) Run(ctx *Context) error {
	rctx, cancel := ctx.ctx()
	defer cancel()

	e, err := ctx.Client.GetEntry(rctx, c.ID)
	if err != nil {
		return err
	}
	ctx.printf("%s", renderEntry(e))
	return nil
}

type DeleteCmd struct {
	ID  string `arg:"" help:"Entry id."`
	All bool   `help:"Look the entry up in the approver view."`
}

func (c *DeleteCmd) Run(ctx *Context) error {
	rctx, cancel := ctx.ctx()
	defer cancel()

	p := timesheet.PerspectiveOwner
	if c.All {
		p = timesheet.PerspectiveApprover
	}
	list, _, err := ctx.listFor(rctx, p, c.ID)
	if err != nil {
		return err
	}
	if err := list.Delete(rctx, c.ID); err != nil {
		return err
	}
	ctx.flush(list)
	return nil
}

type SubmitCmd struct {
	ID string `arg:"" help:"Entry id."`
}

func (c *SubmitCmd) Run(ctx *Context) error {
	rctx, cancel := ctx.ctx()
	defer cancel()

	list, _, err := ctx.listFor(rctx, timesheet.PerspectiveOwner, c.ID)
	if err != nil {
		return err
	}
	updated, err := list.Submit(rctx, c.ID)
	if err != nil {
		return err
	}
	ctx.flush(list)
	ctx.printf("%s", renderEntry(updated))
	return nil
}

// SubmitAllCmd submits every draft of one week in a single request.
type SubmitAllCmd struct {
	Week  string `help:"Any date in the week (YYYY-MM-DD). Defaults to today."`
	Shift int    `help:"Weeks to move from --week." default:"0"`
}

func (c *SubmitAllCmd) Run(ctx *Context) error {
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

	list, err := ctx.loadList(rctx, timesheet.PerspectiveOwner, cursor.Anchor())
	if err != nil {
		return err
	}
	if _, err := list.SubmitAll(rctx); err != nil {
		return err
	}
	ctx.flush(list)
	ctx.printf("%s", renderList(list.View(), false))
	return nil
}
