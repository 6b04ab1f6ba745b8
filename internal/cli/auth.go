package cli

import (
	"strings"
)

type LoginCmd struct {
	Email    string `arg:"" help:"Account email."`
	Password string `help:"Account password." env:"TIMESHEET_PASSWORD" required:""`
}

func (c *LoginCmd) Run(ctx *Context) error {
	rctx, cancel := ctx.ctx()
	defer cancel()

	tokens, err := ctx.Client.Login(rctx, c.Email, c.Password)
	if err != nil {
		return err
	}
	sess := Session{Email: strings.ToLower(strings.TrimSpace(c.Email)), RefreshToken: tokens.RefreshToken, SavedAt: ctx.now()}
	if err := ctx.Session.Save(sess); err != nil {
		return err
	}
	ctx.Log.Debug("session saved", "path", ctx.Session.Path())
	ctx.printf("%s\n", successStyle.Render("Signed in as "+sess.Email))
	return nil
}

type LogoutCmd struct{}

func (c *LogoutCmd) Run(ctx *Context) error {
	sess, err := ctx.Session.Load()
	if err != nil {
		return err
	}
	if sess.RefreshToken == "" {
		ctx.printf("%s\n", mutedStyle.Render("Not signed in"))
		return nil
	}

	rctx, cancel := ctx.ctx()
	defer cancel()
	// The local session goes even when the server has already revoked it.
	if err := ctx.Client.Logout(rctx, sess.RefreshToken); err != nil {
		ctx.Log.Warn("server logout failed", "error", err)
	}
	if err := ctx.Session.Clear(); err != nil {
		return err
	}
	ctx.printf("%s\n", successStyle.Render("Signed out"))
	return nil
}

type WhoamiCmd struct{}

func (c *WhoamiCmd) Run(ctx *Context) error {
	rctx, cancel := ctx.ctx()
	defer cancel()

	me, err := ctx.Client.Me(rctx)
	if err != nil {
		return err
	}
	name := me.Email
	if me.EmployeeName != nil {
		name = *me.EmployeeName + " <" + me.Email + ">"
	}
	ctx.printf("%s\nrole         %s\npermissions  %s\n", titleStyle.Render(name), me.Role, strings.Join(me.Permissions, ", "))
	if me.EmployeeID == nil {
		ctx.printf("%s\n", mutedStyle.Render("No employee profile; entries cannot be logged from this account"))
	}
	return nil
}
