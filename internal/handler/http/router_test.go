package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/cmlabs-hris/timesheet-go/internal/domain/auth"
	"github.com/cmlabs-hris/timesheet-go/internal/domain/project"
	"github.com/cmlabs-hris/timesheet-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/timesheet-go/internal/domain/user"
	"github.com/cmlabs-hris/timesheet-go/internal/handler/http/response"
	"github.com/cmlabs-hris/timesheet-go/internal/pkg/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	handlerTestAccessExp  = "1h"
	handlerTestRefreshExp = "24h"
	handlerTestSecret     = "test-secret-key-for-jwt"
)

type fakeEntryService struct {
	timesheet.EntryService

	created   *timesheet.CreateEntryRequest
	rejected  *timesheet.RejectEntryRequest
	submitAll *timesheet.SubmitAllRequest
	actor     timesheet.Actor
	err       error
	entries   []timesheet.Entry
}

func sampleEntry() timesheet.Entry {
	manager := "Maya Manager"
	managerID := "emp-mgr"
	return timesheet.Entry{
		ID:           "entry-1",
		EmployeeID:   "emp-1",
		EmployeeName: "Erin Employee",
		ProjectID:    "proj-1",
		ProjectName:  "Apollo",
		TaskID:       "task-1",
		TaskName:     "Backend",
		ManagerID:    &managerID,
		ManagerName:  &manager,
		HoursByDay:   timesheet.HoursFromFloats(8, 8, 0, 0, 0, 0, 0),
		TimeCategory: "Development",
		ResourcePlan: "None",
		Status:       timesheet.StatusSubmitted,
	}.WithWeek(time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC))
}

func (f *fakeEntryService) Options(context.Context) timesheet.Options {
	return timesheet.NewOptions(nil, nil)
}

func (f *fakeEntryService) ListMyEntries(_ context.Context, actor timesheet.Actor, _ timesheet.ListFilter) (timesheet.ListEntriesResponse, error) {
	f.actor = actor
	return timesheet.ListEntriesResponse{Entries: []timesheet.EntryResponse{}}, f.err
}

func (f *fakeEntryService) ListAllEntries(_ context.Context, actor timesheet.Actor, _ timesheet.ListFilter) (timesheet.ListEntriesResponse, error) {
	f.actor = actor
	return timesheet.ListEntriesResponse{Entries: []timesheet.EntryResponse{}}, f.err
}

func (f *fakeEntryService) CreateEntry(_ context.Context, actor timesheet.Actor, req timesheet.CreateEntryRequest) (timesheet.EntryResponse, error) {
	f.actor = actor
	f.created = &req
	return timesheet.NewEntryResponse(sampleEntry()), f.err
}

func (f *fakeEntryService) SubmitEntry(_ context.Context, actor timesheet.Actor, _ string) (timesheet.EntryResponse, error) {
	f.actor = actor
	if f.err != nil {
		return timesheet.EntryResponse{}, f.err
	}
	return timesheet.NewEntryResponse(sampleEntry()), nil
}

func (f *fakeEntryService) SubmitAllDrafts(_ context.Context, actor timesheet.Actor, req timesheet.SubmitAllRequest) (timesheet.SubmitAllResponse, error) {
	f.actor = actor
	f.submitAll = &req
	return timesheet.SubmitAllResponse{Submitted: 2, Entries: []timesheet.EntryResponse{}}, f.err
}

func (f *fakeEntryService) RejectEntry(_ context.Context, _ timesheet.Actor, req timesheet.RejectEntryRequest) (timesheet.EntryResponse, error) {
	f.rejected = &req
	return timesheet.NewEntryResponse(sampleEntry()), f.err
}

func (f *fakeEntryService) ExportEntries(_ context.Context, _ timesheet.Actor, _ timesheet.ListFilter) ([]timesheet.Entry, error) {
	return f.entries, f.err
}

type fakeAuthService struct {
	auth.AuthService

	loginErr error
	revoked  string
}

func (f *fakeAuthService) Login(_ context.Context, req auth.LoginRequest, _ auth.SessionTrackingRequest) (auth.TokenResponse, error) {
	if f.loginErr != nil {
		return auth.TokenResponse{}, f.loginErr
	}
	return auth.TokenResponse{
		AccessToken:           "access",
		AccessTokenExpiresIn:  time.Now().Add(time.Hour).Unix(),
		RefreshToken:          "refresh-" + req.Email,
		RefreshTokenExpiresIn: time.Now().Add(24 * time.Hour).Unix(),
	}, nil
}

func (f *fakeAuthService) Logout(_ context.Context, refreshToken string) error {
	f.revoked = refreshToken
	return nil
}

func (f *fakeAuthService) RefreshToken(_ context.Context, req auth.RefreshTokenRequest) (auth.AccessTokenResponse, error) {
	if req.RefreshToken != "good" {
		return auth.AccessTokenResponse{}, auth.ErrRefreshTokenRevoked
	}
	return auth.AccessTokenResponse{AccessToken: "new-access"}, nil
}

type fakeProjectService struct {
	project.ProjectService
}

type routerFixture struct {
	router    http.Handler
	jwt       jwt.Service
	entries   *fakeEntryService
	auth      *fakeAuthService
	notif     *fakeNotificationService
	fixedTime time.Time
}

func newRouterFixture(t *testing.T) *routerFixture {
	t.Helper()
	jwtService, err := jwt.NewJWTService(handlerTestSecret, handlerTestAccessExp, handlerTestRefreshExp)
	require.NoError(t, err)

	f := &routerFixture{
		jwt:       jwtService,
		entries:   &fakeEntryService{},
		auth:      &fakeAuthService{},
		notif:     newFakeNotificationService(),
		fixedTime: time.Date(2024, 1, 12, 9, 30, 0, 0, time.UTC),
	}
	th := &timesheetHandlerImpl{timesheetService: f.entries, now: func() time.Time { return f.fixedTime }}
	f.router = NewRouter(RouterOptions{AllowedOrigins: []string{"http://localhost:3000"}}, jwtService, Handlers{
		Auth:         NewAuthHandler(jwtService, f.auth),
		Timesheet:    th,
		Project:      NewProjectHandler(&fakeProjectService{}),
		Notification: NewNotificationHandler(f.notif, jwtService),
	})
	return f
}

func (f *routerFixture) token(t *testing.T, role user.Role, employeeID string) string {
	t.Helper()
	claims := jwt.AccessClaims{UserID: "user-" + string(role), Email: string(role) + "@example.com", Role: role}
	if employeeID != "" {
		claims.EmployeeID = &employeeID
	}
	token, _, err := f.jwt.GenerateAccessToken(claims)
	require.NoError(t, err)
	return token
}

func (f *routerFixture) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func validCreateBody() map[string]interface{} {
	return map[string]interface{}{
		"project_id":    "proj-1",
		"task_id":       "task-1",
		"week_start":    "2024-01-10",
		"hours_by_day":  []string{"8", "8", "0", "0", "0", "0", "0"},
		"time_category": "Development",
		"resource_plan": "None",
	}
}

func TestRouter_RequiresAccessToken(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/timesheets", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	// A refresh token is not accepted as an access token.
	refresh, _, err := f.jwt.GenerateRefreshToken("user-employee")
	require.NoError(t, err)
	rec = f.do(t, http.MethodGet, "/api/v1/timesheets", refresh, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRouter_ListMineUsesClaims(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/timesheets?week_start=2024-01-10", f.token(t, user.RoleEmployee, "emp-1"), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "emp-1", f.entries.actor.EmployeeID)
	assert.False(t, f.entries.actor.CanApprove)
}

func TestRouter_EmployeeCannotListAll(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/timesheets/all", f.token(t, user.RoleEmployee, "emp-1"), nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = f.do(t, http.MethodGet, "/api/v1/timesheets/all", f.token(t, user.RoleAdmin, ""), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, f.entries.actor.CanApprove)
}

func TestRouter_CreateEntry(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/timesheets", f.token(t, user.RoleEmployee, "emp-1"), validCreateBody())

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	require.NotNil(t, f.entries.created)
	assert.Equal(t, "emp-1", f.entries.created.EmployeeID)
	assert.Equal(t, "16", f.entries.created.HoursByDay.Total().String())
	assert.True(t, decodeEnvelope(t, rec).Success)
}

func TestRouter_CreateEntryValidation(t *testing.T) {
	f := newRouterFixture(t)
	body := validCreateBody()
	body["task_id"] = ""
	body["hours_by_day"] = []string{"0", "0", "0", "0", "0", "0", "0"}

	rec := f.do(t, http.MethodPost, "/api/v1/timesheets", f.token(t, user.RoleEmployee, "emp-1"), body)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	resp := decodeEnvelope(t, rec)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "VALIDATION_ERROR", resp.Error.Code)
	assert.Contains(t, resp.Error.Details, "task_id")
	assert.Contains(t, resp.Error.Details, "hours_by_day")
	assert.Nil(t, f.entries.created, "service must not be called")
}

func TestRouter_CreateRequiresEmployeeProfile(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/timesheets", f.token(t, user.RoleAdmin, ""), validCreateBody())

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Nil(t, f.entries.created)
}

func TestRouter_MalformedBody(t *testing.T) {
	f := newRouterFixture(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/timesheets", strings.NewReader("{not json"))
	req.Header.Set("Authorization", "Bearer "+f.token(t, user.RoleEmployee, "emp-1"))
	rec := httptest.NewRecorder()

	f.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_SubmitErrorsMapToStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"invalid transition", timesheet.ErrInvalidTransition, http.StatusConflict},
		{"no hours", timesheet.ErrNoHoursLogged, http.StatusUnprocessableEntity},
		{"not found", timesheet.ErrEntryNotFound, http.StatusNotFound},
		{"other owner", timesheet.ErrUnauthorizedAccess, http.StatusForbidden},
		{"storage", assert.AnError, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newRouterFixture(t)
			f.entries.err = tc.err

			rec := f.do(t, http.MethodPost, "/api/v1/timesheets/entry-1/submit", f.token(t, user.RoleEmployee, "emp-1"), nil)

			assert.Equal(t, tc.want, rec.Code)
			assert.False(t, decodeEnvelope(t, rec).Success)
		})
	}
}

func TestRouter_SubmitAllAcceptsEmptyBody(t *testing.T) {
	f := newRouterFixture(t)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/timesheets/submit-all", nil)
	req.Header.Set("Authorization", "Bearer "+f.token(t, user.RoleEmployee, "emp-1"))
	rec := httptest.NewRecorder()

	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotNil(t, f.entries.submitAll)
	assert.Nil(t, f.entries.submitAll.WeekStart)
	assert.Equal(t, "2 timesheet entries submitted", decodeEnvelope(t, rec).Message)
}

func TestRouter_RejectRequiresReason(t *testing.T) {
	f := newRouterFixture(t)
	admin := f.token(t, user.RoleAdmin, "")

	rec := f.do(t, http.MethodPost, "/api/v1/timesheets/entry-1/reject", admin, map[string]string{"reason": "  "})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Nil(t, f.entries.rejected)

	rec = f.do(t, http.MethodPost, "/api/v1/timesheets/entry-1/reject", admin, map[string]string{"reason": "Wrong task"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "entry-1", f.entries.rejected.ID)
	assert.Equal(t, "Wrong task", f.entries.rejected.Reason)
}

func TestRouter_EmployeeCannotApprove(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/timesheets/entry-1/approve", f.token(t, user.RoleEmployee, "emp-1"), nil)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestRouter_ExportAttachment(t *testing.T) {
	f := newRouterFixture(t)
	f.entries.entries = []timesheet.Entry{sampleEntry()}

	rec := f.do(t, http.MethodGet, "/api/v1/timesheets/export?format=xlsx&status=SUBMITTED&project_id=proj-1", f.token(t, user.RoleManager, "emp-mgr"), nil)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Type"), "spreadsheetml")
	disposition := rec.Header().Get("Content-Disposition")
	assert.True(t, strings.HasPrefix(disposition, `attachment; filename="`), disposition)
	assert.Contains(t, disposition, ".xlsx")
	assert.Greater(t, rec.Body.Len(), 0)
}

func TestRouter_ExportRejectsUnknownFormat(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/timesheets/export?format=csv", f.token(t, user.RoleAdmin, ""), nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRouter_OptionsServesDefaults(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/timesheets/options", f.token(t, user.RoleEmployee, "emp-1"), nil)

	require.Equal(t, http.StatusOK, rec.Code)
	var body struct {
		Data timesheet.Options `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, timesheet.DefaultTimeCategories, body.Data.TimeCategories)
	assert.Equal(t, timesheet.PageSizeOptions, body.Data.PageSizes)
}

func TestAuth_LoginSetsRefreshCookie(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "erin@example.com", "password": "secret"})

	require.Equal(t, http.StatusCreated, rec.Code)
	var found bool
	for _, c := range rec.Result().Cookies() {
		if c.Name == "refresh_token" {
			found = true
			assert.Equal(t, "refresh-erin@example.com", c.Value)
			assert.True(t, c.HttpOnly)
		}
	}
	assert.True(t, found, "refresh_token cookie must be set")
}

func TestAuth_LoginFailures(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "not-an-email", "password": ""})
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	f.auth.loginErr = auth.ErrInvalidCredentials
	rec = f.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{"email": "erin@example.com", "password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_RefreshPrefersCookie(t *testing.T) {
	f := newRouterFixture(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", strings.NewReader(`{"refresh_token":"bad"}`))
	req.AddCookie(&http.Cookie{Name: "refresh_token", Value: "good"})
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(t, http.MethodPost, "/api/v1/auth/refresh", "", map[string]string{"refresh_token": "bad"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuth_LogoutClearsCookie(t *testing.T) {
	f := newRouterFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/auth/logout", "", map[string]string{"refresh_token": "old"})

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "old", f.auth.revoked)
	cookies := rec.Result().Cookies()
	require.NotEmpty(t, cookies)
	assert.Equal(t, "refresh_token", cookies[0].Name)
	assert.Less(t, cookies[0].MaxAge, 0)
}
