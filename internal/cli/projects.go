package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
)

func simpleTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		String()
}

type ProjectsCmd struct {
	All bool `help:"Every active project instead of the ones you are a member of (admin)."`
}

func (c *ProjectsCmd) Run(ctx *Context) error {
	rctx, cancel := ctx.ctx()
	defer cancel()

	projects, err := ctx.Client.ListProjects(rctx, c.All)
	if err != nil {
		return err
	}
	if len(projects) == 0 {
		ctx.printf("%s\n", mutedStyle.Render("No projects"))
		return nil
	}
	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		code, manager := "", ""
		if p.Code != nil {
			code = *p.Code
		}
		if p.ManagerName != nil {
			manager = *p.ManagerName
		}
		rows = append(rows, []string{p.ID, code, p.Name, manager})
	}
	ctx.printf("%s\n", simpleTable([]string{"ID", "Code", "Name", "Manager"}, rows))
	return nil
}

type TasksCmd struct {
	Project string `arg:"" help:"Project id."`
}

func (c *TasksCmd) Run(ctx *Context) error {
	rctx, cancel := ctx.ctx()
	defer cancel()

	tasks, err := ctx.Client.ListTasks(rctx, c.Project)
	if err != nil {
		return err
	}
	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, []string{t.ID, t.Name})
	}
	manager, err := ctx.Client.GetManager(rctx, c.Project)
	if err == nil {
		ctx.printf("%s\n", titleStyle.Render("Manager: "+manager.FullName))
	}
	ctx.printf("%s\n", simpleTable([]string{"ID", "Task"}, rows))
	return nil
}

// OptionsCmd lists the categories and plans the server accepts.
type OptionsCmd struct{}

func (c *OptionsCmd) Run(ctx *Context) error {
	rctx, cancel := ctx.ctx()
	defer cancel()

	opts, err := ctx.Client.Options(rctx)
	if err != nil {
		return err
	}
	ctx.printf("%s\n  %s\n", titleStyle.Render("Time categories"), strings.Join(opts.TimeCategories, "\n  "))
	ctx.printf("%s\n  %s\n", titleStyle.Render("Resource plans"), strings.Join(opts.ResourcePlans, "\n  "))
	return nil
}
