package client

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"time"

	"github.com/cmlabs-hris/timesheet-go/internal/domain/auth"
	"github.com/cmlabs-hris/timesheet-go/internal/domain/project"
	"github.com/cmlabs-hris/timesheet-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/timesheet-go/internal/pkg/export"
	"golang.org/x/oauth2"
)

// Login exchanges credentials for a token pair.
func (c *Client) Login(ctx context.Context, email, password string) (auth.TokenResponse, error) {
	var out auth.TokenResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", nil, auth.LoginRequest{Email: email, Password: password}, &out)
	return out, err
}

// Refresh trades a refresh token for a new access token.
func (c *Client) Refresh(ctx context.Context, refreshToken string) (auth.AccessTokenResponse, error) {
	var out auth.AccessTokenResponse
	err := c.do(ctx, http.MethodPost, "/auth/refresh", nil, auth.RefreshTokenRequest{RefreshToken: refreshToken}, &out)
	return out, err
}

func (c *Client) Logout(ctx context.Context, refreshToken string) error {
	return c.do(ctx, http.MethodPost, "/auth/logout", nil, auth.RefreshTokenRequest{RefreshToken: refreshToken}, nil)
}

func (c *Client) Me(ctx context.Context) (auth.MeResponse, error) {
	var out auth.MeResponse
	err := c.do(ctx, http.MethodGet, "/me", nil, nil, &out)
	return out, err
}

type refreshSource struct {
	c            *Client
	refreshToken string
}

func (s *refreshSource) Token() (*oauth2.Token, error) {
	resp, err := s.c.Refresh(context.Background(), s.refreshToken)
	if err != nil {
		return nil, err
	}
	return &oauth2.Token{
		AccessToken: resp.AccessToken,
		TokenType:   "Bearer",
		Expiry:      time.Unix(resp.AccessTokenExpiresIn, 0),
	}, nil
}

// RefreshTokenSource mints access tokens from a refresh token, reusing each one
// until it expires.
func RefreshTokenSource(baseURL, refreshToken string, hc *http.Client) oauth2.TokenSource {
	opts := []Option{}
	if hc != nil {
		opts = append(opts, WithHTTPClient(hc))
	}
	return oauth2.ReuseTokenSource(nil, &refreshSource{c: New(baseURL, opts...), refreshToken: refreshToken})
}

func (c *Client) Options(ctx context.Context) (timesheet.Options, error) {
	var out timesheet.Options
	err := c.do(ctx, http.MethodGet, "/timesheets/options", nil, nil, &out)
	return out, err
}

func entriesFrom(resp []timesheet.EntryResponse) []timesheet.Entry {
	entries := make([]timesheet.Entry, 0, len(resp))
	for _, r := range resp {
		entries = append(entries, r.ToEntry())
	}
	return entries
}

// ListMyEntries returns the signed-in employee's entries overlapping week.
func (c *Client) ListMyEntries(ctx context.Context, week timesheet.Week) ([]timesheet.Entry, error) {
	var out timesheet.ListEntriesResponse
	q := url.Values{"week_start": {week.ISO()}}
	if err := c.do(ctx, http.MethodGet, "/timesheets", q, nil, &out); err != nil {
		return nil, err
	}
	return entriesFrom(out.Entries), nil
}

// Query narrows the approver listing and exports. Zero fields are omitted.
type Query struct {
	WeekStart  string
	From       string
	To         string
	Status     string
	ProjectID  string
	ManagerID  string
	EmployeeID string
}

func (q Query) values() url.Values {
	v := url.Values{}
	set := func(key, value string) {
		if value != "" {
			v.Set(key, value)
		}
	}
	set("week_start", q.WeekStart)
	set("from", q.From)
	set("to", q.To)
	set("status", q.Status)
	set("project_id", q.ProjectID)
	set("manager_id", q.ManagerID)
	set("employee_id", q.EmployeeID)
	return v
}

// ListAllEntries is the approver view across employees, with each entry's
// project manager resolved.
func (c *Client) ListAllEntries(ctx context.Context, q Query) ([]timesheet.Entry, error) {
	var out timesheet.ListEntriesResponse
	if err := c.do(ctx, http.MethodGet, "/timesheets/all", q.values(), nil, &out); err != nil {
		return nil, err
	}
	return entriesFrom(out.Entries), nil
}

func (c *Client) entryCall(ctx context.Context, method, path string, body interface{}) (timesheet.Entry, error) {
	var out timesheet.EntryResponse
	if err := c.do(ctx, method, path, nil, body, &out); err != nil {
		return timesheet.Entry{}, err
	}
	return out.ToEntry(), nil
}

func (c *Client) GetEntry(ctx context.Context, id string) (timesheet.Entry, error) {
	return c.entryCall(ctx, http.MethodGet, "/timesheets/"+url.PathEscape(id), nil)
}

func (c *Client) CreateEntry(ctx context.Context, req timesheet.CreateEntryRequest) (timesheet.Entry, error) {
	return c.entryCall(ctx, http.MethodPost, "/timesheets", req)
}

func (c *Client) UpdateEntry(ctx context.Context, req timesheet.UpdateEntryRequest) (timesheet.Entry, error) {
	return c.entryCall(ctx, http.MethodPut, "/timesheets/"+url.PathEscape(req.ID), req)
}

func (c *Client) DeleteEntry(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/timesheets/"+url.PathEscape(id), nil, nil, nil)
}

func (c *Client) SubmitEntry(ctx context.Context, id string) (timesheet.Entry, error) {
	return c.entryCall(ctx, http.MethodPost, "/timesheets/"+url.PathEscape(id)+"/submit", nil)
}

// SubmitAllDrafts submits every draft, or only those of week when it is not nil.
func (c *Client) SubmitAllDrafts(ctx context.Context, week *timesheet.Week) ([]timesheet.Entry, error) {
	var req timesheet.SubmitAllRequest
	if week != nil {
		s := week.ISO()
		req.WeekStart = &s
	}
	var out timesheet.SubmitAllResponse
	if err := c.do(ctx, http.MethodPost, "/timesheets/submit-all", nil, req, &out); err != nil {
		return nil, err
	}
	return entriesFrom(out.Entries), nil
}

func (c *Client) ApproveEntry(ctx context.Context, id string) (timesheet.Entry, error) {
	return c.entryCall(ctx, http.MethodPost, "/timesheets/"+url.PathEscape(id)+"/approve", nil)
}

func (c *Client) RejectEntry(ctx context.Context, id, reason string) (timesheet.Entry, error) {
	return c.entryCall(ctx, http.MethodPost, "/timesheets/"+url.PathEscape(id)+"/reject", timesheet.RejectEntryRequest{Reason: reason})
}

// ExportFile is a downloaded export document.
type ExportFile struct {
	Name        string
	ContentType string
	Data        []byte
}

func (c *Client) Export(ctx context.Context, format export.Format, q Query) (ExportFile, error) {
	v := q.values()
	v.Set("format", string(format))
	req, err := c.newRequest(ctx, http.MethodGet, "/timesheets/export", v, nil)
	if err != nil {
		return ExportFile{}, err
	}
	resp, err := c.send(req)
	if err != nil {
		return ExportFile{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var env envelope
		decodeErr := decodeJSON(resp.Body, &env)
		return ExportFile{}, errorFromEnvelope(resp.StatusCode, env, decodeErr)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return ExportFile{}, fmt.Errorf("read export: %w", err)
	}
	file := ExportFile{ContentType: resp.Header.Get("Content-Type"), Data: data}
	if _, params, err := mime.ParseMediaType(resp.Header.Get("Content-Disposition")); err == nil {
		file.Name = params["filename"]
	}
	if file.Name == "" {
		file.Name = "timesheet-export." + string(format)
	}
	return file, nil
}

func (c *Client) ListProjects(ctx context.Context, all bool) ([]project.ProjectResponse, error) {
	var out []project.ProjectResponse
	var q url.Values
	if all {
		q = url.Values{"all": {"true"}}
	}
	err := c.do(ctx, http.MethodGet, "/projects", q, nil, &out)
	return out, err
}

func (c *Client) ListTasks(ctx context.Context, projectID string) ([]project.TaskResponse, error) {
	var out []project.TaskResponse
	err := c.do(ctx, http.MethodGet, "/projects/"+url.PathEscape(projectID)+"/tasks", nil, nil, &out)
	return out, err
}

func (c *Client) GetManager(ctx context.Context, projectID string) (project.ManagerResponse, error) {
	var out project.ManagerResponse
	err := c.do(ctx, http.MethodGet, "/projects/"+url.PathEscape(projectID)+"/manager", nil, nil, &out)
	return out, err
}
