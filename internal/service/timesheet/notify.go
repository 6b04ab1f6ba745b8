package timesheet

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/timesheet-go/internal/domain/notification"
	"github.com/cmlabs-hris/timesheet-go/internal/domain/timesheet"
)

func entryData(e timesheet.Entry) map[string]interface{} {
	data := map[string]interface{}{
		"entry_id":     e.ID,
		"project_name": e.ProjectName,
		"task_name":    e.TaskName,
		"week_start":   e.Week().Start.Format(timesheet.DateLayout),
		"total_hours":  e.TotalHours().StringFixed(2),
	}
	if e.RejectionReason != nil {
		data["reason"] = *e.RejectionReason
	}
	return data
}

// notifyOwner tells the employee about an approval or rejection. Failures are
// logged; the transition itself has already been committed.
func (s *EntryServiceImpl) notifyOwner(ctx context.Context, actor timesheet.Actor, e timesheet.Entry, t notification.NotificationType) {
	if s.notifier == nil || e.OwnerUserID == "" {
		return
	}

	req := notification.CreateNotificationRequest{
		RecipientID:    e.OwnerUserID,
		RecipientEmail: e.OwnerEmail,
		SenderID:       &actor.UserID,
		Type:           t,
		Data:           entryData(e),
	}
	week := e.Week().String()
	switch t {
	case notification.TypeTimesheetApproved:
		req.Title = "Timesheet approved"
		req.Message = fmt.Sprintf("Your %s hours on %s for %s were approved.", e.TotalHours().StringFixed(2), e.ProjectName, week)
	case notification.TypeTimesheetRejected:
		req.Title = "Timesheet rejected"
		req.Message = fmt.Sprintf("Your entry on %s for %s was rejected.", e.ProjectName, week)
		if e.RejectionReason != nil {
			req.Message += " Reason: " + *e.RejectionReason
		}
	}

	if err := s.notifier.QueueNotification(ctx, req); err != nil {
		slog.Error("failed to queue timesheet notification", "entry_id", e.ID, "type", t, "error", err)
	}
}

// notifySubmitted tells each project manager that entries await review, one
// notification per project.
func (s *EntryServiceImpl) notifySubmitted(ctx context.Context, actor timesheet.Actor, entries []timesheet.Entry) {
	if s.notifier == nil || len(entries) == 0 {
		return
	}

	byProject := make(map[string][]timesheet.Entry)
	var order []string
	for _, e := range entries {
		if _, seen := byProject[e.ProjectID]; !seen {
			order = append(order, e.ProjectID)
		}
		byProject[e.ProjectID] = append(byProject[e.ProjectID], e)
	}

	var reqs []notification.CreateNotificationRequest
	for _, projectID := range order {
		group := byProject[projectID]
		manager, err := s.projects.GetManager(ctx, projectID)
		if err != nil {
			slog.Warn("no manager to notify of submission", "project_id", projectID, "error", err)
			continue
		}
		if manager.UserID == nil || *manager.UserID == actor.UserID {
			continue
		}

		first := group[0]
		req := notification.CreateNotificationRequest{
			RecipientID: *manager.UserID,
			SenderID:    &actor.UserID,
			Type:        notification.TypeTimesheetSubmitted,
			Title:       "Timesheet submitted for review",
			Message: fmt.Sprintf("%s submitted %d %s on %s.",
				first.EmployeeName, len(group), plural(len(group), "entry", "entries"), first.ProjectName),
			Data: entryData(first),
		}
		if manager.Email != nil {
			req.RecipientEmail = *manager.Email
		}
		reqs = append(reqs, req)
	}

	if len(reqs) == 0 {
		return
	}
	if err := s.notifier.QueueBulkNotification(ctx, reqs); err != nil {
		slog.Error("failed to queue submission notifications", "error", err)
	}
}
