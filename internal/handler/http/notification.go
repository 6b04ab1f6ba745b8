package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/cmlabs-hris/timesheet-go/internal/domain/notification"
	"github.com/cmlabs-hris/timesheet-go/internal/domain/user"
	"github.com/cmlabs-hris/timesheet-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/timesheet-go/internal/handler/http/response"
	"github.com/cmlabs-hris/timesheet-go/internal/pkg/jwt"
	"github.com/cmlabs-hris/timesheet-go/internal/pkg/validator"
	"github.com/go-chi/chi/v5"
)

// NotificationHandler serves the timesheet notification inbox, the
// notification settings and the live stream.
type NotificationHandler interface {
	// Inbox
	List(w http.ResponseWriter, r *http.Request)
	UnreadCount(w http.ResponseWriter, r *http.Request)
	MarkAsRead(w http.ResponseWriter, r *http.Request)
	MarkAllAsRead(w http.ResponseWriter, r *http.Request)
	Delete(w http.ResponseWriter, r *http.Request)

	// Settings of the caller
	GetPreferences(w http.ResponseWriter, r *http.Request)
	UpdatePreference(w http.ResponseWriter, r *http.Request)

	// Settings of any user, for notification.manage holders
	GetUserPreferences(w http.ResponseWriter, r *http.Request)
	UpdateUserPreference(w http.ResponseWriter, r *http.Request)

	// SSE
	GetSSEToken(w http.ResponseWriter, r *http.Request)
	Stream(w http.ResponseWriter, r *http.Request)
}

type notificationHandlerImpl struct {
	notifService notification.Service
	jwtService   jwt.Service
	keepalive    time.Duration
}

func NewNotificationHandler(notifService notification.Service, jwtService jwt.Service) NotificationHandler {
	return &notificationHandlerImpl{
		notifService: notifService,
		jwtService:   jwtService,
		keepalive:    30 * time.Second,
	}
}

// caller returns the verified claims or answers 401.
func caller(w http.ResponseWriter, r *http.Request) (middleware.Claims, bool) {
	c, ok := middleware.ClaimsFromRequest(r)
	if !ok {
		response.Unauthorized(w, "Unauthorized")
	}
	return c, ok
}

// parseListQuery reads page, page_size and unread_only. Malformed values are
// reported per field instead of falling back to defaults.
func parseListQuery(values url.Values) (notification.ListQuery, error) {
	q := notification.ListQuery{Page: 1, PageSize: 20}
	var errs validator.ValidationErrors

	if v := values.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, validator.ValidationError{Field: "page", Message: "page must be a number"})
		} else {
			q.Page = n
		}
	}
	if v := values.Get("page_size"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			errs = append(errs, validator.ValidationError{Field: "page_size", Message: "page_size must be a number"})
		} else {
			q.PageSize = n
		}
	}
	if v := values.Get("unread_only"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			errs = append(errs, validator.ValidationError{Field: "unread_only", Message: "unread_only must be true or false"})
		} else {
			q.UnreadOnly = b
		}
	}

	if len(errs) > 0 {
		return q, errs
	}
	return q, q.Validate()
}

// List returns a page of the caller's notifications
func (h *notificationHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}

	q, err := parseListQuery(r.URL.Query())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	result, err := h.notifService.GetNotifications(r.Context(), c.UserID, q.Page, q.PageSize, q.UnreadOnly)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *notificationHandlerImpl) UnreadCount(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}

	count, err := h.notifService.GetUnreadCount(r.Context(), c.UserID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, notification.UnreadCountResponse{UnreadCount: count})
}

func (h *notificationHandlerImpl) MarkAsRead(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}

	var req notification.MarkAsReadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("MarkAsRead decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	if err := h.notifService.MarkAsRead(r.Context(), c.UserID, req); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Notifications marked as read", nil)
}

func (h *notificationHandlerImpl) MarkAllAsRead(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}

	if err := h.notifService.MarkAllAsRead(r.Context(), c.UserID); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "All notifications marked as read", nil)
}

func (h *notificationHandlerImpl) Delete(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}

	if err := h.notifService.Delete(r.Context(), c.UserID, chi.URLParam(r, "id")); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Notification deleted", nil)
}

func (h *notificationHandlerImpl) GetPreferences(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}
	h.writeSettings(w, r, c, c.UserID)
}

func (h *notificationHandlerImpl) UpdatePreference(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}
	h.updateSettings(w, r, c, c.UserID)
}

// GetUserPreferences shows the settings of the user in the path.
func (h *notificationHandlerImpl) GetUserPreferences(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}
	userID, ok := targetUser(w, r)
	if !ok {
		return
	}
	h.writeSettings(w, r, c, userID)
}

func (h *notificationHandlerImpl) UpdateUserPreference(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}
	userID, ok := targetUser(w, r)
	if !ok {
		return
	}
	h.updateSettings(w, r, c, userID)
}

func targetUser(w http.ResponseWriter, r *http.Request) (string, bool) {
	userID := chi.URLParam(r, "userID")
	if !validator.IsValidUUID(userID) {
		response.ValidationError(w, map[string]string{"user_id": "user_id must be a valid UUID"})
		return "", false
	}
	return userID, true
}

func (h *notificationHandlerImpl) writeSettings(w http.ResponseWriter, r *http.Request, c middleware.Claims, userID string) {
	prefs, err := h.notifService.GetPreferences(r.Context(), userID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Success(w, notification.PreferenceSettingsResponse{
		UserID:          userID,
		CanManageOthers: user.HasPermission(c.Role, user.PermissionNotificationManage),
		Preferences:     prefs,
	})
}

func (h *notificationHandlerImpl) updateSettings(w http.ResponseWriter, r *http.Request, c middleware.Claims, userID string) {
	var req notification.UpdatePreferenceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("UpdatePreference decode error", "error", err)
		response.BadRequest(w, "Invalid request format", nil)
		return
	}
	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	if err := h.notifService.UpdatePreference(r.Context(), userID, req); err != nil {
		response.HandleError(w, err)
		return
	}
	if userID != c.UserID {
		slog.Info("notification preference changed for user",
			"by", c.UserID, "user_id", userID, "type", req.NotificationType,
			"email", req.EmailEnabled, "push", req.PushEnabled)
	}

	h.writeSettings(w, r, c, userID)
}

// GetSSEToken issues the short-lived token Stream expects.
func (h *notificationHandlerImpl) GetSSEToken(w http.ResponseWriter, r *http.Request) {
	c, ok := caller(w, r)
	if !ok {
		return
	}

	token, expiresIn, err := h.jwtService.GenerateSSEToken(c.UserID)
	if err != nil {
		slog.Error("GenerateSSEToken error", "error", err)
		response.InternalServerError(w, "Failed to generate SSE token")
		return
	}

	response.Success(w, notification.SSETokenResponse{
		Token:     token,
		ExpiresIn: expiresIn,
	})
}

func writeEvent(w http.ResponseWriter, f http.Flusher, event string, data interface{}) {
	payload, err := json.Marshal(data)
	if err != nil {
		slog.Warn("dropping unencodable sse event", "event", event, "error", err)
		return
	}
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event, payload)
	f.Flush()
}

// Stream pushes notifications to the browser. The token travels in the query
// string because EventSource cannot set headers.
func (h *notificationHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	tokenStr := r.URL.Query().Get("token")
	if tokenStr == "" {
		http.Error(w, "Missing token", http.StatusUnauthorized)
		return
	}
	userID, err := h.jwtService.ValidateSSEToken(tokenStr)
	if err != nil {
		http.Error(w, "Invalid token", http.StatusUnauthorized)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, cleanup := h.notifService.Subscribe(r.Context(), userID)
	defer cleanup()

	writeEvent(w, flusher, "connected", map[string]string{"status": "connected", "user_id": userID})

	keepalive := time.NewTicker(h.keepalive)
	defer keepalive.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				return
			}
			writeEvent(w, flusher, event.Event, event.Data)
		case <-keepalive.C:
			writeEvent(w, flusher, "ping", map[string]int64{"timestamp": time.Now().Unix()})
		case <-r.Context().Done():
			return
		}
	}
}
