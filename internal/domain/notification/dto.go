package notification

import (
	"fmt"
	"time"

	"github.com/cmlabs-hris/timesheet-go/internal/pkg/validator"
)

// ============= Request DTOs =============

// CreateNotificationRequest represents a request to create a notification.
// RecipientEmail, when set, is used for the email channel.
type CreateNotificationRequest struct {
	RecipientID    string
	RecipientEmail string
	SenderID       *string
	Type           NotificationType
	Title          string
	Message        string
	Data           map[string]interface{}
}

// MarkAsReadRequest represents a request to mark notifications as read
type MarkAsReadRequest struct {
	NotificationIDs []string `json:"notification_ids"`
}

func (r *MarkAsReadRequest) Validate() error {
	var errs validator.ValidationErrors

	if len(r.NotificationIDs) == 0 {
		errs = append(errs, validator.ValidationError{
			Field:   "notification_ids",
			Message: "notification_ids must contain at least one id",
		})
	}
	for _, id := range r.NotificationIDs {
		if !validator.IsValidUUID(id) {
			errs = append(errs, validator.ValidationError{
				Field:   "notification_ids",
				Message: "notification_ids must contain valid UUIDs",
			})
			break
		}
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ListQuery pages through a user's notifications.
type ListQuery struct {
	Page       int
	PageSize   int
	UnreadOnly bool
}

const MaxPageSize = 100

func (q *ListQuery) Validate() error {
	var errs validator.ValidationErrors

	if q.Page < 1 {
		errs = append(errs, validator.ValidationError{
			Field:   "page",
			Message: "page must be at least 1",
		})
	}
	if q.PageSize < 1 || q.PageSize > MaxPageSize {
		errs = append(errs, validator.ValidationError{
			Field:   "page_size",
			Message: fmt.Sprintf("page_size must be between 1 and %d", MaxPageSize),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// UpdatePreferenceRequest represents a request to update notification preference
type UpdatePreferenceRequest struct {
	NotificationType NotificationType `json:"notification_type"`
	EmailEnabled     bool             `json:"email_enabled"`
	PushEnabled      bool             `json:"push_enabled"`
}

func (r *UpdatePreferenceRequest) Validate() error {
	var errs validator.ValidationErrors

	if validator.IsEmpty(string(r.NotificationType)) {
		errs = append(errs, validator.ValidationError{
			Field:   "notification_type",
			Message: "notification_type is required",
		})
	} else if !r.NotificationType.IsValid() {
		errs = append(errs, validator.ValidationError{
			Field:   "notification_type",
			Message: "notification_type is not supported",
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// ============= Response DTOs =============

// NotificationResponse represents a notification in API responses
type NotificationResponse struct {
	ID        string                 `json:"id"`
	Type      NotificationType       `json:"type"`
	Title     string                 `json:"title"`
	Message   string                 `json:"message"`
	Data      map[string]interface{} `json:"data,omitempty"`
	IsRead    bool                   `json:"is_read"`
	ReadAt    *time.Time             `json:"read_at,omitempty"`
	CreatedAt time.Time              `json:"created_at"`
}

func NewNotificationResponse(n *Notification) NotificationResponse {
	return NotificationResponse{
		ID:        n.ID,
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		Data:      n.Data,
		IsRead:    n.IsRead,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}

// NotificationListResponse represents a paginated list of notifications
type NotificationListResponse struct {
	Notifications []NotificationResponse `json:"notifications"`
	Total         int                    `json:"total"`
	UnreadCount   int                    `json:"unread_count"`
	Page          int                    `json:"page"`
	PageSize      int                    `json:"page_size"`
}

// PreferenceResponse is one row of the notification settings screen.
type PreferenceResponse struct {
	NotificationType NotificationType `json:"notification_type"`
	Label            string           `json:"label"`
	Description      string           `json:"description"`
	Recipient        Recipient        `json:"recipient"`
	EmailEnabled     bool             `json:"email_enabled"`
	PushEnabled      bool             `json:"push_enabled"`
}

// NewPreferenceResponse describes t with both channels enabled.
func NewPreferenceResponse(t NotificationType) PreferenceResponse {
	return PreferenceResponse{
		NotificationType: t,
		Label:            t.Label(),
		Description:      t.Description(),
		Recipient:        t.Recipient(),
		EmailEnabled:     true,
		PushEnabled:      true,
	}
}

// PreferenceSettingsResponse holds the settings of one user. CanManageOthers
// tells the caller whether the per-user admin routes are open to them.
type PreferenceSettingsResponse struct {
	UserID          string               `json:"user_id"`
	CanManageOthers bool                 `json:"can_manage_others"`
	Preferences     []PreferenceResponse `json:"preferences"`
}

// UnreadCountResponse represents unread count response
type UnreadCountResponse struct {
	UnreadCount int `json:"unread_count"`
}

// SSETokenResponse represents the SSE token response
type SSETokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

// ============= SSE Event =============

// SSEEvent represents a Server-Sent Event
type SSEEvent struct {
	Event string               `json:"event"`
	Data  NotificationResponse `json:"data"`
}
