package cli

import (
	"github.com/cmlabs-hris/timesheet-go/internal/client"
	"github.com/cmlabs-hris/timesheet-go/internal/domain/timesheet"
)

type ApproveCmd struct {
	ID string `arg:"" help:"Entry id."`
}

func (c *ApproveCmd) Run(ctx *Context) error {
	rctx, cancel := ctx.ctx()
	defer cancel()

	list, selected, err := ctx.listFor(rctx, timesheet.PerspectiveApprover, c.ID)
	if err != nil {
		return err
	}
	ctrl := client.NewStatusTransitionController(ctx.Client, list)
	updated, err := ctrl.Approve(rctx, &selected)
	if err != nil {
		return err
	}
	ctx.flush(list)
	ctx.printf("%s", renderEntry(updated))
	return nil
}

type RejectCmd struct {
	ID     string `arg:"" help:"Entry id."`
	Reason string `help:"Why the entry is rejected. Shown to the employee." short:"r"`
}

func (c *RejectCmd) Run(ctx *Context) error {
	rctx, cancel := ctx.ctx()
	defer cancel()

	list, selected, err := ctx.listFor(rctx, timesheet.PerspectiveApprover, c.ID)
	if err != nil {
		return err
	}
	ctrl := client.NewStatusTransitionController(ctx.Client, list)
	updated, err := ctrl.Reject(rctx, &selected, c.Reason)
	if err != nil {
		return err
	}
	ctx.flush(list)
	ctx.printf("%s", renderEntry(updated))
	return nil
}
