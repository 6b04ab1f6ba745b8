package timesheet

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/timesheet-go/internal/domain/notification"
	"github.com/cmlabs-hris/timesheet-go/internal/domain/project"
	"github.com/cmlabs-hris/timesheet-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/timesheet-go/internal/domain/user"
	"github.com/cmlabs-hris/timesheet-go/internal/pkg/validator"
	"github.com/cmlabs-hris/timesheet-go/internal/repository/postgresql"
)

type EntryServiceImpl struct {
	tx postgresql.Transactor
	timesheet.EntryRepository
	projects project.ProjectRepository
	notifier notification.Service
	options  timesheet.Options
	now      func() time.Time
}

// NewEntryService wires the timesheet workflow. notifier may be nil, in which
// case no notifications are queued.
func NewEntryService(
	tx postgresql.Transactor,
	entryRepository timesheet.EntryRepository,
	projectRepository project.ProjectRepository,
	notifier notification.Service,
	options timesheet.Options,
) timesheet.EntryService {
	return &EntryServiceImpl{
		tx:              tx,
		EntryRepository: entryRepository,
		projects:        projectRepository,
		notifier:        notifier,
		options:         options,
		now:             time.Now,
	}
}

// Options implements timesheet.EntryService.
func (s *EntryServiceImpl) Options(ctx context.Context) timesheet.Options {
	return s.options
}

func requireEmployee(actor timesheet.Actor) error {
	if actor.EmployeeID == "" {
		return user.ErrEmployeeProfileRequired
	}
	return nil
}

func requireApprover(actor timesheet.Actor) error {
	if !actor.CanApprove {
		return user.ErrInsufficientPermissions
	}
	return nil
}

func ownedBy(e timesheet.Entry, actor timesheet.Actor) error {
	if e.EmployeeID != actor.EmployeeID {
		return timesheet.ErrUnauthorizedAccess
	}
	return nil
}

func perspectiveFor(e timesheet.Entry, actor timesheet.Actor) timesheet.Perspective {
	if e.EmployeeID != actor.EmployeeID && actor.CanApprove {
		return timesheet.PerspectiveApprover
	}
	return timesheet.PerspectiveOwner
}

func respond(e timesheet.Entry, p timesheet.Perspective) timesheet.EntryResponse {
	return timesheet.NewEntryResponse(e).WithActions(e, p)
}

func (s *EntryServiceImpl) listResponse(entries []timesheet.Entry, filter timesheet.ListFilter, p timesheet.Perspective) timesheet.ListEntriesResponse {
	resp := timesheet.ListEntriesResponse{
		Entries: make([]timesheet.EntryResponse, 0, len(entries)),
		Counts:  timesheet.CountByStatus(entries),
	}
	if filter.WeekStart != nil {
		if w, err := timesheet.ParseWeekStart(*filter.WeekStart); err == nil {
			resp.WeekStart = w.Start.Format(timesheet.DateLayout)
			resp.WeekEnd = w.End().Format(timesheet.DateLayout)
		}
	}
	for _, e := range entries {
		resp.Entries = append(resp.Entries, respond(e, p))
	}
	return resp
}

// ListMyEntries implements timesheet.EntryService. Without any date bound the
// current week is listed.
func (s *EntryServiceImpl) ListMyEntries(ctx context.Context, actor timesheet.Actor, filter timesheet.ListFilter) (timesheet.ListEntriesResponse, error) {
	if err := requireEmployee(actor); err != nil {
		return timesheet.ListEntriesResponse{}, err
	}
	if filter.WeekStart == nil && filter.From == nil && filter.To == nil {
		current := timesheet.WeekOf(s.now()).Start.Format(timesheet.DateLayout)
		filter.WeekStart = &current
	}
	if err := filter.Validate(); err != nil {
		return timesheet.ListEntriesResponse{}, err
	}
	filter.EmployeeID = &actor.EmployeeID
	filter.ManagerID = nil

	entries, err := s.EntryRepository.List(ctx, filter)
	if err != nil {
		return timesheet.ListEntriesResponse{}, err
	}
	return s.listResponse(entries, filter, timesheet.PerspectiveOwner), nil
}

// ListAllEntries implements timesheet.EntryService.
func (s *EntryServiceImpl) ListAllEntries(ctx context.Context, actor timesheet.Actor, filter timesheet.ListFilter) (timesheet.ListEntriesResponse, error) {
	if err := requireApprover(actor); err != nil {
		return timesheet.ListEntriesResponse{}, err
	}
	if err := filter.Validate(); err != nil {
		return timesheet.ListEntriesResponse{}, err
	}

	entries, err := s.EntryRepository.List(ctx, filter)
	if err != nil {
		return timesheet.ListEntriesResponse{}, err
	}
	return s.listResponse(entries, filter, timesheet.PerspectiveApprover), nil
}

// GetEntry implements timesheet.EntryService.
func (s *EntryServiceImpl) GetEntry(ctx context.Context, actor timesheet.Actor, id string) (timesheet.EntryResponse, error) {
	e, err := s.EntryRepository.GetByID(ctx, id)
	if err != nil {
		return timesheet.EntryResponse{}, err
	}
	if !actor.CanApprove {
		if err := ownedBy(e, actor); err != nil {
			return timesheet.EntryResponse{}, err
		}
	}
	return respond(e, perspectiveFor(e, actor)), nil
}

// checkPickers validates the category and plan against the active options.
func (s *EntryServiceImpl) checkPickers(category, plan string) error {
	var errs validator.ValidationErrors
	if !s.options.HasCategory(category) {
		errs = append(errs, validator.ValidationError{
			Field:   "time_category",
			Message: "time_category is not one of the configured categories",
		})
	}
	if !s.options.HasResourcePlan(plan) {
		errs = append(errs, validator.ValidationError{
			Field:   "resource_plan",
			Message: "resource_plan is not one of the configured resource plans",
		})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// checkAssignment makes sure taskID is an active task of projectID and that the
// employee may log time against the project.
func (s *EntryServiceImpl) checkAssignment(ctx context.Context, actor timesheet.Actor, projectID, taskID string) error {
	if _, err := s.projects.GetByID(ctx, projectID); err != nil {
		return err
	}
	task, err := s.projects.GetTask(ctx, taskID)
	if err != nil {
		return err
	}
	if task.ProjectID != projectID {
		return timesheet.ErrTaskNotInProject
	}
	if !task.IsActive {
		return project.ErrTaskNotFound
	}
	if actor.CanApprove {
		return nil
	}
	member, err := s.projects.IsMember(ctx, projectID, actor.EmployeeID)
	if err != nil {
		return fmt.Errorf("failed to check project membership: %w", err)
	}
	if !member {
		return project.ErrNotProjectMember
	}
	return nil
}

// CreateEntry implements timesheet.EntryService. New entries start as DRAFT.
func (s *EntryServiceImpl) CreateEntry(ctx context.Context, actor timesheet.Actor, req timesheet.CreateEntryRequest) (timesheet.EntryResponse, error) {
	if err := requireEmployee(actor); err != nil {
		return timesheet.EntryResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return timesheet.EntryResponse{}, err
	}
	if err := s.checkPickers(req.TimeCategory, req.ResourcePlan); err != nil {
		return timesheet.EntryResponse{}, err
	}
	if err := s.checkAssignment(ctx, actor, req.ProjectID, req.TaskID); err != nil {
		return timesheet.EntryResponse{}, err
	}

	week, err := timesheet.ParseWeekStart(req.WeekStart)
	if err != nil {
		return timesheet.EntryResponse{}, err
	}

	created, err := s.EntryRepository.Create(ctx, timesheet.Entry{
		EmployeeID:   actor.EmployeeID,
		ProjectID:    req.ProjectID,
		TaskID:       req.TaskID,
		WeekStart:    week.Start,
		HoursByDay:   req.HoursByDay.Normalize(),
		TimeCategory: req.TimeCategory,
		ResourcePlan: req.ResourcePlan,
		Comments:     req.Comments,
		Status:       timesheet.StatusDraft,
	})
	if err != nil {
		return timesheet.EntryResponse{}, err
	}
	return respond(created, timesheet.PerspectiveOwner), nil
}

// UpdateEntry implements timesheet.EntryService. Only DRAFT and REJECTED
// entries of the caller can change; the status itself is left alone.
func (s *EntryServiceImpl) UpdateEntry(ctx context.Context, actor timesheet.Actor, req timesheet.UpdateEntryRequest) (timesheet.EntryResponse, error) {
	if err := requireEmployee(actor); err != nil {
		return timesheet.EntryResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return timesheet.EntryResponse{}, err
	}
	if err := s.checkPickers(req.TimeCategory, req.ResourcePlan); err != nil {
		return timesheet.EntryResponse{}, err
	}
	week, err := timesheet.ParseWeekStart(req.WeekStart)
	if err != nil {
		return timesheet.EntryResponse{}, err
	}

	var updated timesheet.Entry
	err = s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		current, err := s.EntryRepository.LockByID(txCtx, req.ID)
		if err != nil {
			return err
		}
		if err := ownedBy(current, actor); err != nil {
			return err
		}
		if !current.Status.IsEditable() {
			return timesheet.ErrEntryNotEditable
		}
		if current.ProjectID != req.ProjectID || current.TaskID != req.TaskID {
			if err := s.checkAssignment(txCtx, actor, req.ProjectID, req.TaskID); err != nil {
				return err
			}
		}

		current.ProjectID = req.ProjectID
		current.TaskID = req.TaskID
		current.WeekStart = week.Start
		current.HoursByDay = req.HoursByDay.Normalize()
		current.TimeCategory = req.TimeCategory
		current.ResourcePlan = req.ResourcePlan
		current.Comments = req.Comments

		updated, err = s.EntryRepository.Update(txCtx, current)
		return err
	})
	if err != nil {
		return timesheet.EntryResponse{}, err
	}
	return respond(updated, timesheet.PerspectiveOwner), nil
}

// DeleteEntry implements timesheet.EntryService. Approvers may delete any
// entry that is not APPROVED.
func (s *EntryServiceImpl) DeleteEntry(ctx context.Context, actor timesheet.Actor, id string) error {
	return s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		current, err := s.EntryRepository.LockByID(txCtx, id)
		if err != nil {
			return err
		}
		if !actor.CanApprove {
			if err := ownedBy(current, actor); err != nil {
				return err
			}
		}
		if !current.Status.IsDeletable() {
			return timesheet.ErrEntryNotDeletable
		}
		return s.EntryRepository.Delete(txCtx, id)
	})
}

// SubmitEntry implements timesheet.EntryService.
func (s *EntryServiceImpl) SubmitEntry(ctx context.Context, actor timesheet.Actor, id string) (timesheet.EntryResponse, error) {
	if err := requireEmployee(actor); err != nil {
		return timesheet.EntryResponse{}, err
	}

	var submitted timesheet.Entry
	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		current, err := s.EntryRepository.LockByID(txCtx, id)
		if err != nil {
			return err
		}
		if err := ownedBy(current, actor); err != nil {
			return err
		}
		next, err := current.Submitted(s.now().UTC())
		if err != nil {
			return err
		}
		submitted, err = s.EntryRepository.UpdateStatus(txCtx, next)
		return err
	})
	if err != nil {
		return timesheet.EntryResponse{}, err
	}

	s.notifySubmitted(ctx, actor, []timesheet.Entry{submitted})
	return respond(submitted, timesheet.PerspectiveOwner), nil
}

// SubmitAllDrafts implements timesheet.EntryService. Either every draft of
// the caller (optionally within one week) is submitted, or none is.
func (s *EntryServiceImpl) SubmitAllDrafts(ctx context.Context, actor timesheet.Actor, req timesheet.SubmitAllRequest) (timesheet.SubmitAllResponse, error) {
	if err := requireEmployee(actor); err != nil {
		return timesheet.SubmitAllResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return timesheet.SubmitAllResponse{}, err
	}

	var weekStart *time.Time
	if req.WeekStart != nil {
		w, err := timesheet.ParseWeekStart(*req.WeekStart)
		if err != nil {
			return timesheet.SubmitAllResponse{}, err
		}
		weekStart = &w.Start
	}

	var submitted []timesheet.Entry
	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		drafts, err := s.EntryRepository.ListDrafts(txCtx, actor.EmployeeID, weekStart)
		if err != nil {
			return err
		}
		if len(drafts) == 0 {
			return timesheet.ErrNoDraftEntries
		}

		at := s.now().UTC()
		submitted = make([]timesheet.Entry, 0, len(drafts))
		for _, d := range drafts {
			next, err := d.Submitted(at)
			if err != nil {
				return fmt.Errorf("entry %s: %w", d.ID, err)
			}
			saved, err := s.EntryRepository.UpdateStatus(txCtx, next)
			if err != nil {
				return err
			}
			submitted = append(submitted, saved)
		}
		return nil
	})
	if err != nil {
		return timesheet.SubmitAllResponse{}, err
	}

	s.notifySubmitted(ctx, actor, submitted)

	resp := timesheet.SubmitAllResponse{
		Submitted: len(submitted),
		Entries:   make([]timesheet.EntryResponse, 0, len(submitted)),
	}
	for _, e := range submitted {
		resp.Entries = append(resp.Entries, respond(e, timesheet.PerspectiveOwner))
	}
	return resp, nil
}

// ApproveEntry implements timesheet.EntryService.
func (s *EntryServiceImpl) ApproveEntry(ctx context.Context, actor timesheet.Actor, id string) (timesheet.EntryResponse, error) {
	if err := requireApprover(actor); err != nil {
		return timesheet.EntryResponse{}, err
	}

	var approved timesheet.Entry
	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		current, err := s.EntryRepository.LockByID(txCtx, id)
		if err != nil {
			return err
		}
		next, err := current.Approved()
		if err != nil {
			return err
		}
		approved, err = s.EntryRepository.UpdateStatus(txCtx, next)
		return err
	})
	if err != nil {
		return timesheet.EntryResponse{}, err
	}

	s.notifyOwner(ctx, actor, approved, notification.TypeTimesheetApproved)
	return respond(approved, timesheet.PerspectiveApprover), nil
}

// RejectEntry implements timesheet.EntryService.
func (s *EntryServiceImpl) RejectEntry(ctx context.Context, actor timesheet.Actor, req timesheet.RejectEntryRequest) (timesheet.EntryResponse, error) {
	if err := requireApprover(actor); err != nil {
		return timesheet.EntryResponse{}, err
	}
	if err := req.Validate(); err != nil {
		return timesheet.EntryResponse{}, err
	}

	var rejected timesheet.Entry
	err := s.tx.WithinTransaction(ctx, func(txCtx context.Context) error {
		current, err := s.EntryRepository.LockByID(txCtx, req.ID)
		if err != nil {
			return err
		}
		next, err := current.Rejected(req.Reason)
		if err != nil {
			return err
		}
		rejected, err = s.EntryRepository.UpdateStatus(txCtx, next)
		return err
	})
	if err != nil {
		return timesheet.EntryResponse{}, err
	}

	s.notifyOwner(ctx, actor, rejected, notification.TypeTimesheetRejected)
	return respond(rejected, timesheet.PerspectiveApprover), nil
}

// ExportEntries implements timesheet.EntryService.
func (s *EntryServiceImpl) ExportEntries(ctx context.Context, actor timesheet.Actor, filter timesheet.ListFilter) ([]timesheet.Entry, error) {
	if err := requireApprover(actor); err != nil {
		return nil, err
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	return s.EntryRepository.List(ctx, filter)
}

// RemindDraftOwners implements timesheet.EntryService and returns the number
// of employees reminded.
func (s *EntryServiceImpl) RemindDraftOwners(ctx context.Context, week timesheet.Week) (int, error) {
	owners, err := s.EntryRepository.ListDraftOwners(ctx, week.Start)
	if err != nil {
		return 0, err
	}
	if s.notifier == nil || len(owners) == 0 {
		return 0, nil
	}

	reqs := make([]notification.CreateNotificationRequest, 0, len(owners))
	for _, o := range owners {
		reqs = append(reqs, notification.CreateNotificationRequest{
			RecipientID:    o.UserID,
			RecipientEmail: o.Email,
			Type:           notification.TypeTimesheetDraftReminder,
			Title:          "Timesheet not submitted",
			Message: fmt.Sprintf("You have %d draft %s for the week of %s. Please submit before the week closes.",
				o.DraftCount, plural(o.DraftCount, "entry", "entries"), week.String()),
			Data: map[string]interface{}{
				"week_start":  week.Start.Format(timesheet.DateLayout),
				"draft_count": o.DraftCount,
			},
		})
	}
	if err := s.notifier.QueueBulkNotification(ctx, reqs); err != nil {
		return 0, err
	}
	return len(reqs), nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
