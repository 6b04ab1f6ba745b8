// Package cli holds the timesheetctl commands. Each command drives the client
// workflow components and renders the result to the terminal.
package cli

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"
	"github.com/cmlabs-hris/timesheet-go/internal/client"
	"github.com/cmlabs-hris/timesheet-go/internal/domain/timesheet"
)

// Context is bound to every command's Run method.
type Context struct {
	Client  *client.Client
	Session *SessionStore
	Out     io.Writer
	Log     *log.Logger
	Now     func() time.Time
	Timeout time.Duration
}

func (c *Context) ctx() (context.Context, context.CancelFunc) {
	if c.Timeout <= 0 {
		return context.WithCancel(context.Background())
	}
	return context.WithTimeout(context.Background(), c.Timeout)
}

func (c *Context) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *Context) printf(format string, args ...interface{}) {
	fmt.Fprintf(c.Out, format, args...)
}

// anchor resolves a --week value. An empty value means the current week.
func (c *Context) anchor(week string) (time.Time, error) {
	if week == "" {
		return c.now(), nil
	}
	w, err := timesheet.ParseWeekStart(week)
	if err != nil {
		return time.Time{}, err
	}
	return w.Start, nil
}

// loadList loads the week containing anchor from the given perspective.
func (c *Context) loadList(ctx context.Context, p timesheet.Perspective, anchor time.Time) (*client.EntryList, error) {
	list := client.NewEntryList(c.Client, p, anchor)
	if err := list.Load(ctx, client.ReasonInitial); err != nil {
		return nil, err
	}
	return list, nil
}

// listFor loads the week of entry id so row-level commands go through the list.
func (c *Context) listFor(ctx context.Context, p timesheet.Perspective, id string) (*client.EntryList, timesheet.Entry, error) {
	e, err := c.Client.GetEntry(ctx, id)
	if err != nil {
		return nil, timesheet.Entry{}, err
	}
	list, err := c.loadList(ctx, p, e.WeekStart)
	if err != nil {
		return nil, timesheet.Entry{}, err
	}
	if row, ok := list.Entry(id); ok {
		e = row
	}
	return list, e, nil
}

// flush prints the list's pending notice, if any.
func (c *Context) flush(list *client.EntryList) {
	if n := list.TakeNotice(); n != nil {
		c.printf("%s\n", renderNotice(*n))
	}
}
