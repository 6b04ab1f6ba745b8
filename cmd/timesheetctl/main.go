package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/alecthomas/kong"
	"github.com/charmbracelet/log"
	"github.com/cmlabs-hris/timesheet-go/internal/cli"
	"github.com/cmlabs-hris/timesheet-go/internal/client"
	"gopkg.in/natefinch/lumberjack.v2"
)

var version = "dev"

var CLI struct {
	Version kong.VersionFlag `help:"Print the version and exit."`

	APIURL  string        `name:"api-url" help:"Base URL of the timesheet API." env:"TIMESHEET_API_URL" default:"http://localhost:8080/api/v1"`
	Token   string        `help:"Access token; overrides the saved session." env:"TIMESHEET_TOKEN"`
	Session string        `help:"Session file written by login." env:"TIMESHEET_SESSION" type:"path"`
	Timeout time.Duration `help:"Per-command request timeout." default:"30s"`
	Debug   bool          `help:"Verbose logging to stderr."`
	LogFile string        `help:"Also write logs to this file, rotated." env:"TIMESHEET_LOG_FILE" type:"path"`

	Login  cli.LoginCmd  `cmd:"" help:"Sign in and save a session."`
	Logout cli.LogoutCmd `cmd:"" help:"Revoke and forget the saved session."`
	Whoami cli.WhoamiCmd `cmd:"" help:"Show the signed-in account."`

	Week      cli.WeekCmd      `cmd:"" help:"Show a week window."`
	List      cli.ListCmd      `cmd:"" help:"List timesheet entries for a week." default:"1"`
	Show      cli.ShowCmd      `cmd:"" help:"Show one entry."`
	Create    cli.CreateCmd    `cmd:"" help:"Log hours for a project task."`
	Edit      cli.EditCmd      `cmd:"" help:"Change a draft or rejected entry."`
	Delete    cli.DeleteCmd    `cmd:"" help:"Delete an entry that is not approved."`
	Submit    cli.SubmitCmd    `cmd:"" help:"Submit an entry for approval."`
	SubmitAll cli.SubmitAllCmd `cmd:"" name:"submit-all" help:"Submit every draft of a week."`
	Approve   cli.ApproveCmd   `cmd:"" help:"Approve a submitted entry."`
	Reject    cli.RejectCmd    `cmd:"" help:"Reject a submitted entry with a reason."`
	Export    cli.ExportCmd    `cmd:"" help:"Download entries as xlsx or pdf."`

	Projects cli.ProjectsCmd `cmd:"" help:"List projects."`
	Tasks    cli.TasksCmd    `cmd:"" help:"List the tasks of a project."`
	Options  cli.OptionsCmd  `cmd:"" help:"List time categories and resource plans."`
}

func newLogger(debug bool, file string) *log.Logger {
	var w io.Writer = os.Stderr
	if file != "" {
		w = io.MultiWriter(os.Stderr, &lumberjack.Logger{
			Filename:   file,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		})
	}
	level := log.WarnLevel
	if debug {
		level = log.DebugLevel
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: debug,
		Level:           level,
		Prefix:          "timesheetctl",
	})
}

func main() {
	kctx := kong.Parse(&CLI,
		kong.Name("timesheetctl"),
		kong.Description("Log weekly hours and review timesheets."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.Vars{"version": version},
	)

	logger := newLogger(CLI.Debug, CLI.LogFile)

	sessionPath := CLI.Session
	if sessionPath == "" {
		sessionPath = cli.DefaultSessionPath()
	}
	store := cli.NewSessionStore(sessionPath)

	opts := []client.Option{
		client.WithHTTPClient(&http.Client{Timeout: CLI.Timeout}),
		client.WithUnauthorizedHook(func() {
			logger.Warn("session rejected by the server; run 'timesheetctl login'")
		}),
	}
	authenticated := false
	switch {
	case CLI.Token != "":
		opts = append(opts, client.WithTokenSource(client.StaticToken(CLI.Token)))
		authenticated = true
	default:
		sess, err := store.Load()
		if err != nil {
			logger.Warn("ignoring unreadable session", "error", err)
		} else if sess.RefreshToken != "" {
			opts = append(opts, client.WithTokenSource(client.RefreshTokenSource(CLI.APIURL, sess.RefreshToken, nil)))
			authenticated = true
			logger.Debug("using saved session", "email", sess.Email)
		}
	}

	switch kctx.Command() {
	case "login <email>", "logout", "week":
	default:
		if !authenticated {
			fmt.Fprintln(os.Stderr, cli.RenderError(cli.ErrNoSession))
			os.Exit(1)
		}
	}

	appCtx := &cli.Context{
		Client:  client.New(CLI.APIURL, opts...),
		Session: store,
		Out:     os.Stdout,
		Log:     logger,
		Timeout: CLI.Timeout,
	}

	if err := kctx.Run(appCtx); err != nil {
		logger.Debug("command failed", "command", kctx.Command(), "error", err)
		fmt.Fprintln(os.Stderr, cli.RenderError(err))
		os.Exit(1)
	}
}
