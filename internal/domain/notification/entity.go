package notification

import (
	"time"
)

// NotificationType represents the type of notification
type NotificationType string

const (
	TypeTimesheetSubmitted     NotificationType = "timesheet_submitted"
	TypeTimesheetApproved      NotificationType = "timesheet_approved"
	TypeTimesheetRejected      NotificationType = "timesheet_rejected"
	TypeTimesheetDraftReminder NotificationType = "timesheet_draft_reminder"
)

// AllNotificationTypes returns all available notification types
func AllNotificationTypes() []NotificationType {
	return []NotificationType{
		TypeTimesheetSubmitted,
		TypeTimesheetApproved,
		TypeTimesheetRejected,
		TypeTimesheetDraftReminder,
	}
}

// IsValid reports whether t is a known notification type.
func (t NotificationType) IsValid() bool {
	for _, known := range AllNotificationTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// Recipient names who receives a notification type.
type Recipient string

const (
	RecipientApprover Recipient = "approver"
	RecipientOwner    Recipient = "owner"
)

type typeInfo struct {
	label       string
	description string
	recipient   Recipient
}

var typeInfos = map[NotificationType]typeInfo{
	TypeTimesheetSubmitted: {
		label:       "Timesheet submitted",
		description: "An employee submitted entries on a project you manage.",
		recipient:   RecipientApprover,
	},
	TypeTimesheetApproved: {
		label:       "Timesheet approved",
		description: "One of your entries was approved.",
		recipient:   RecipientOwner,
	},
	TypeTimesheetRejected: {
		label:       "Timesheet rejected",
		description: "One of your entries was rejected, with the reviewer's reason.",
		recipient:   RecipientOwner,
	},
	TypeTimesheetDraftReminder: {
		label:       "Draft reminder",
		description: "Weekly reminder about entries still in draft.",
		recipient:   RecipientOwner,
	},
}

func (t NotificationType) Label() string {
	return typeInfos[t].label
}

func (t NotificationType) Description() string {
	return typeInfos[t].description
}

// Recipient is empty for unknown types.
func (t NotificationType) Recipient() Recipient {
	return typeInfos[t].recipient
}

// Notification represents a notification entity
type Notification struct {
	ID          string
	RecipientID string
	SenderID    *string
	Type        NotificationType
	Title       string
	Message     string
	Data        map[string]interface{}
	IsRead      bool
	ReadAt      *time.Time
	CreatedAt   time.Time
}

// NotificationPreference represents user preference for a notification type.
// A missing row means both channels are enabled.
type NotificationPreference struct {
	ID               string
	UserID           string
	NotificationType NotificationType
	EmailEnabled     bool
	PushEnabled      bool
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
