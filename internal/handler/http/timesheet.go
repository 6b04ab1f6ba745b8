package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/cmlabs-hris/timesheet-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/timesheet-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/timesheet-go/internal/handler/http/response"
	"github.com/cmlabs-hris/timesheet-go/internal/pkg/export"
	"github.com/go-chi/chi/v5"
)

type TimesheetHandler interface {
	Options(w http.ResponseWriter, r *http.Request)
	ListMine(w http.ResponseWriter, r *http.Request)
	ListAll(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	Create(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)
	Submit(w http.ResponseWriter, r *http.Request)
	SubmitAll(w http.ResponseWriter, r *http.Request)
	Approve(w http.ResponseWriter, r *http.Request)
	Reject(w http.ResponseWriter, r *http.Request)
	Export(w http.ResponseWriter, r *http.Request)
}

type timesheetHandlerImpl struct {
	timesheetService timesheet.EntryService
	now              func() time.Time
}

func NewTimesheetHandler(timesheetService timesheet.EntryService) TimesheetHandler {
	return &timesheetHandlerImpl{timesheetService: timesheetService, now: time.Now}
}

// actorFromRequest returns false after writing a 401 when the claims are missing.
func actorFromRequest(w http.ResponseWriter, r *http.Request) (timesheet.Actor, bool) {
	c, ok := middleware.ClaimsFromRequest(r)
	if !ok {
		response.Unauthorized(w, "Unauthorized")
		return timesheet.Actor{}, false
	}
	return c.Actor(), true
}

// queryPtr returns nil for an absent or blank query parameter.
func queryPtr(r *http.Request, key string) *string {
	v := strings.TrimSpace(r.URL.Query().Get(key))
	if v == "" {
		return nil
	}
	return &v
}

func listFilterFromQuery(r *http.Request) timesheet.ListFilter {
	return timesheet.ListFilter{
		EmployeeID: queryPtr(r, "employee_id"),
		WeekStart:  queryPtr(r, "week_start"),
		From:       queryPtr(r, "from"),
		To:         queryPtr(r, "to"),
		Status:     queryPtr(r, "status"),
		ProjectID:  queryPtr(r, "project_id"),
		ManagerID:  queryPtr(r, "manager_id"),
	}
}

func (h *timesheetHandlerImpl) Options(w http.ResponseWriter, r *http.Request) {
	response.Success(w, h.timesheetService.Options(r.Context()))
}

// ListMine lists the caller's entries, by default for the current week.
func (h *timesheetHandlerImpl) ListMine(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	result, err := h.timesheetService.ListMyEntries(r.Context(), actor, listFilterFromQuery(r))
	if err != nil {
		slog.Error("ListMyEntries service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *timesheetHandlerImpl) ListAll(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	result, err := h.timesheetService.ListAllEntries(r.Context(), actor, listFilterFromQuery(r))
	if err != nil {
		slog.Error("ListAllEntries service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *timesheetHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	result, err := h.timesheetService.GetEntry(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *timesheetHandlerImpl) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	var req timesheet.CreateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("CreateEntry decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.EmployeeID = actor.EmployeeID

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.timesheetService.CreateEntry(r.Context(), actor, req)
	if err != nil {
		slog.Error("CreateEntry service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Timesheet entry created", result)
}

func (h *timesheetHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	var req timesheet.UpdateEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("UpdateEntry decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")
	req.EmployeeID = actor.EmployeeID

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.timesheetService.UpdateEntry(r.Context(), actor, req)
	if err != nil {
		slog.Error("UpdateEntry service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Timesheet entry updated", result)
}

func (h *timesheetHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	if err := h.timesheetService.DeleteEntry(r.Context(), actor, chi.URLParam(r, "id")); err != nil {
		slog.Error("DeleteEntry service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Timesheet entry deleted", nil)
}

func (h *timesheetHandlerImpl) Submit(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	result, err := h.timesheetService.SubmitEntry(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		slog.Error("SubmitEntry service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Timesheet entry submitted", result)
}

// SubmitAll accepts an empty body, meaning every draft regardless of week.
func (h *timesheetHandlerImpl) SubmitAll(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	var req timesheet.SubmitAllRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			slog.Error("SubmitAllDrafts decode error", "error", err)
			response.BadRequest(w, "Invalid request format", nil)
			return
		}
	}
	req.EmployeeID = actor.EmployeeID

	result, err := h.timesheetService.SubmitAllDrafts(r.Context(), actor, req)
	if err != nil {
		slog.Error("SubmitAllDrafts service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, fmt.Sprintf("%d timesheet entries submitted", result.Submitted), result)
}

func (h *timesheetHandlerImpl) Approve(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	result, err := h.timesheetService.ApproveEntry(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		slog.Error("ApproveEntry service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Timesheet entry approved", result)
}

func (h *timesheetHandlerImpl) Reject(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	var req timesheet.RejectEntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("RejectEntry decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	req.ID = chi.URLParam(r, "id")

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.timesheetService.RejectEntry(r.Context(), actor, req)
	if err != nil {
		slog.Error("RejectEntry service error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Timesheet entry rejected", result)
}

// Export renders the filtered entries as an attachment. The document is built
// in memory so a rendering failure can still be reported as JSON.
func (h *timesheetHandlerImpl) Export(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(w, r)
	if !ok {
		return
	}

	format, err := export.ParseFormat(r.URL.Query().Get("format"))
	if err != nil {
		response.HandleError(w, err)
		return
	}

	lf := listFilterFromQuery(r)
	entries, err := h.timesheetService.ExportEntries(r.Context(), actor, lf)
	if err != nil {
		slog.Error("ExportEntries service error", "error", err)
		response.HandleError(w, err)
		return
	}

	filter := export.NewFilter(lf, entries)
	var buf bytes.Buffer
	if err := export.Write(&buf, format, filter, entries); err != nil {
		slog.Error("Export render error", "format", format, "error", err)
		response.InternalServerError(w, "Failed to render export")
		return
	}

	name := export.FileName(filter, format, h.now())
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		slog.Error("Export write error", "error", err)
	}
}
