package timesheet

import (
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/timesheet-go/internal/pkg/validator"
	"github.com/shopspring/decimal"
)

const maxCommentLength = 1000

type CreateEntryRequest struct {
	EmployeeID   string     `json:"-"`
	ProjectID    string     `json:"project_id"`
	TaskID       string     `json:"task_id"`
	WeekStart    string     `json:"week_start"`
	HoursByDay   HoursByDay `json:"hours_by_day"`
	TimeCategory string     `json:"time_category"`
	ResourcePlan string     `json:"resource_plan"`
	Comments     *string    `json:"comments,omitempty"`
}

func (r *CreateEntryRequest) Validate() error {
	errs := validateEntryFields(r.ProjectID, r.TaskID, r.WeekStart, r.HoursByDay, r.TimeCategory, r.ResourcePlan, r.Comments)
	if len(errs) > 0 {
		return errs
	}
	return nil
}

type UpdateEntryRequest struct {
	ID           string     `json:"-"`
	EmployeeID   string     `json:"-"`
	ProjectID    string     `json:"project_id"`
	TaskID       string     `json:"task_id"`
	WeekStart    string     `json:"week_start"`
	HoursByDay   HoursByDay `json:"hours_by_day"`
	TimeCategory string     `json:"time_category"`
	ResourcePlan string     `json:"resource_plan"`
	Comments     *string    `json:"comments,omitempty"`
}

func (r *UpdateEntryRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}
	errs = append(errs, validateEntryFields(r.ProjectID, r.TaskID, r.WeekStart, r.HoursByDay, r.TimeCategory, r.ResourcePlan, r.Comments)...)

	if len(errs) > 0 {
		return errs
	}
	return nil
}

func validateEntryFields(projectID, taskID, weekStart string, hours HoursByDay, category, plan string, comments *string) validator.ValidationErrors {
	var errs validator.ValidationErrors

	// Project
	if validator.IsEmpty(projectID) {
		errs = append(errs, validator.ValidationError{
			Field:   "project_id",
			Message: "project_id is required",
		})
	}

	// Task
	if validator.IsEmpty(taskID) {
		errs = append(errs, validator.ValidationError{
			Field:   "task_id",
			Message: "task_id is required",
		})
	}

	// Week start
	if validator.IsEmpty(weekStart) {
		errs = append(errs, validator.ValidationError{
			Field:   "week_start",
			Message: "week_start is required",
		})
	} else if _, ok := validator.IsValidDate(weekStart); !ok {
		errs = append(errs, validator.ValidationError{
			Field:   "week_start",
			Message: "week_start must be in YYYY-MM-DD format",
		})
	}

	errs = append(errs, ValidateHours(hours)...)

	if validator.IsEmpty(category) {
		errs = append(errs, validator.ValidationError{
			Field:   "time_category",
			Message: "time_category is required",
		})
	}
	if validator.IsEmpty(plan) {
		errs = append(errs, validator.ValidationError{
			Field:   "resource_plan",
			Message: "resource_plan is required",
		})
	}

	if comments != nil && !validator.MaxLength(*comments, maxCommentLength) {
		errs = append(errs, validator.ValidationError{
			Field:   "comments",
			Message: fmt.Sprintf("comments must not exceed %d characters", maxCommentLength),
		})
	}

	return errs
}

// ValidateHours checks the per-day range and that at least one day is logged.
func ValidateHours(hours HoursByDay) validator.ValidationErrors {
	var errs validator.ValidationErrors
	for _, i := range hours.OutOfRange() {
		errs = append(errs, validator.ValidationError{
			Field:   HoursField(i),
			Message: "hours must be between 0 and 24",
		})
	}
	if !hours.HasPositive() {
		errs = append(errs, validator.ValidationError{
			Field:   "hours_by_day",
			Message: "at least one day must have hours greater than 0",
		})
	}
	return errs
}

// HoursField names the validation field of a day cell, e.g. hours_by_day.mon.
func HoursField(day int) string {
	return "hours_by_day." + strings.ToLower(DayLabel(day))
}

type RejectEntryRequest struct {
	ID     string `json:"-"`
	Reason string `json:"reason"`
}

func (r *RejectEntryRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(r.ID) {
		errs = append(errs, validator.ValidationError{
			Field:   "id",
			Message: "id is required",
		})
	}
	if validator.IsEmpty(r.Reason) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: "reason is required",
		})
	}
	if !validator.MaxLength(r.Reason, maxCommentLength) {
		errs = append(errs, validator.ValidationError{
			Field:   "reason",
			Message: fmt.Sprintf("reason must not exceed %d characters", maxCommentLength),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

type SubmitAllRequest struct {
	EmployeeID string  `json:"-"`
	WeekStart  *string `json:"week_start,omitempty"`
}

func (r *SubmitAllRequest) Validate() error {
	var errs validator.ValidationErrors

	if r.WeekStart != nil {
		if _, ok := validator.IsValidDate(*r.WeekStart); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "week_start",
				Message: "week_start must be in YYYY-MM-DD format",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ListFilter narrows the entries returned by the repository. WeekStart, or the
// From/To range, selects entries whose week overlaps it.
type ListFilter struct {
	EmployeeID *string
	WeekStart  *string
	From       *string
	To         *string
	Status     *string
	ProjectID  *string
	ManagerID  *string
}

func (f *ListFilter) Validate() error {
	var errs validator.ValidationErrors

	for field, v := range map[string]*string{"week_start": f.WeekStart, "from": f.From, "to": f.To} {
		if v == nil {
			continue
		}
		if _, ok := validator.IsValidDate(*v); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   field,
				Message: field + " must be in YYYY-MM-DD format",
			})
		}
	}

	if f.From != nil && f.To != nil {
		from, okFrom := validator.IsValidDate(*f.From)
		to, okTo := validator.IsValidDate(*f.To)
		if okFrom && okTo && to.Before(from) {
			errs = append(errs, validator.ValidationError{
				Field:   "to",
				Message: "to must not be before from",
			})
		}
	}

	if f.Status != nil {
		if _, ok := ParseStatus(*f.Status); !ok {
			errs = append(errs, validator.ValidationError{
				Field:   "status",
				Message: "status must be one of DRAFT, SUBMITTED, APPROVED, REJECTED",
			})
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Range resolves the filter's date window. A week_start wins over from/to.
func (f *ListFilter) Range() (from, to *time.Time) {
	if f.WeekStart != nil {
		if w, err := ParseWeekStart(*f.WeekStart); err == nil {
			start, end := w.Start, w.End()
			return &start, &end
		}
	}
	if f.From != nil {
		if t, ok := validator.IsValidDate(*f.From); ok {
			from = &t
		}
	}
	if f.To != nil {
		if t, ok := validator.IsValidDate(*f.To); ok {
			to = &t
		}
	}
	return from, to
}

// EntryResponse is the wire shape of an entry. TotalHours is computed at
// serialization time.
type EntryResponse struct {
	ID              string          `json:"id"`
	EmployeeID      string          `json:"employee_id"`
	EmployeeName    string          `json:"employee_name"`
	ProjectID       string          `json:"project_id"`
	ProjectName     string          `json:"project_name"`
	TaskID          string          `json:"task_id"`
	TaskName        string          `json:"task_name"`
	ManagerID       *string         `json:"manager_id,omitempty"`
	ManagerName     *string         `json:"manager_name,omitempty"`
	WeekStart       string          `json:"week_start"`
	WeekEnd         string          `json:"week_end"`
	HoursByDay      HoursByDay      `json:"hours_by_day"`
	TotalHours      decimal.Decimal `json:"total_hours"`
	TimeCategory    string          `json:"time_category"`
	ResourcePlan    string          `json:"resource_plan"`
	Comments        *string         `json:"comments,omitempty"`
	Status          Status          `json:"status"`
	RejectionReason *string         `json:"rejection_reason,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	SubmittedAt     *time.Time      `json:"submitted_at,omitempty"`
	UpdatedAt       time.Time       `json:"updated_at"`
	Actions         map[Action]bool `json:"actions,omitempty"`
	Days            []DayResponse   `json:"days,omitempty"`
}

type DayResponse struct {
	Label     string `json:"label"`
	Date      string `json:"date"`
	IsWeekend bool   `json:"is_weekend"`
}

func NewEntryResponse(e Entry) EntryResponse {
	week := e.Week()
	days := make([]DayResponse, 0, DaysPerWeek)
	for _, d := range week.Days() {
		days = append(days, DayResponse{Label: d.Label, Date: d.ISO(), IsWeekend: d.IsWeekend})
	}
	return EntryResponse{
		ID:              e.ID,
		EmployeeID:      e.EmployeeID,
		EmployeeName:    e.EmployeeName,
		ProjectID:       e.ProjectID,
		ProjectName:     e.ProjectName,
		TaskID:          e.TaskID,
		TaskName:        e.TaskName,
		ManagerID:       e.ManagerID,
		ManagerName:     e.ManagerName,
		WeekStart:       week.Start.Format(DateLayout),
		WeekEnd:         week.End().Format(DateLayout),
		HoursByDay:      e.HoursByDay,
		TotalHours:      e.TotalHours(),
		TimeCategory:    e.TimeCategory,
		ResourcePlan:    e.ResourcePlan,
		Comments:        e.Comments,
		Status:          e.Status,
		RejectionReason: e.RejectionReason,
		CreatedAt:       e.CreatedAt,
		SubmittedAt:     e.SubmittedAt,
		UpdatedAt:       e.UpdatedAt,
		Days:            days,
	}
}

// WithActions attaches the menu for p so thin clients need not repeat the rules.
func (r EntryResponse) WithActions(e Entry, p Perspective) EntryResponse {
	set := AvailableActions(e, p)
	r.Actions = make(map[Action]bool, len(set))
	for a := range set {
		r.Actions[a] = true
	}
	return r
}

// ToEntry converts the wire shape back into the domain entity.
func (r EntryResponse) ToEntry() Entry {
	e := Entry{
		ID:              r.ID,
		EmployeeID:      r.EmployeeID,
		EmployeeName:    r.EmployeeName,
		ProjectID:       r.ProjectID,
		ProjectName:     r.ProjectName,
		TaskID:          r.TaskID,
		TaskName:        r.TaskName,
		ManagerID:       r.ManagerID,
		ManagerName:     r.ManagerName,
		HoursByDay:      r.HoursByDay,
		TimeCategory:    r.TimeCategory,
		ResourcePlan:    r.ResourcePlan,
		Comments:        r.Comments,
		Status:          r.Status,
		RejectionReason: r.RejectionReason,
		CreatedAt:       r.CreatedAt,
		SubmittedAt:     r.SubmittedAt,
		UpdatedAt:       r.UpdatedAt,
	}
	if w, err := ParseWeekStart(r.WeekStart); err == nil {
		e.WeekStart = w.Start
		e.WeekEnd = w.End()
	}
	return e
}

type ListEntriesResponse struct {
	WeekStart string          `json:"week_start,omitempty"`
	WeekEnd   string          `json:"week_end,omitempty"`
	Entries   []EntryResponse `json:"entries"`
	Counts    map[Status]int  `json:"counts"`
}

type SubmitAllResponse struct {
	Submitted int             `json:"submitted"`
	Entries   []EntryResponse `json:"entries"`
}
