package notification

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cmlabs-hris/timesheet-go/internal/domain/notification"
	"github.com/cmlabs-hris/timesheet-go/internal/pkg/email"
	"github.com/cmlabs-hris/timesheet-go/internal/pkg/sse"
)

// Config holds notification service configuration
type Config struct {
	BatchSize     int           // default: 100
	FlushInterval time.Duration // default: 5 seconds
	WorkerCount   int           // default: 2
	QueueSize     int           // default: 1000
	// FrontendURL prefixes the link placed in emails. Optional.
	FrontendURL string
}

// queued is a request plus the channels resolved when it was queued.
type queued struct {
	req   notification.CreateNotificationRequest
	push  bool
	email bool
}

type service struct {
	repo   notification.Repository
	hub    *sse.Hub
	mailer email.EmailService
	config Config

	queue   chan queued
	wg      sync.WaitGroup
	stopCh  chan struct{}
	stopped atomic.Bool
}

// NewNotificationService creates a new notification service with background
// workers. mailer may be nil to disable the email channel.
func NewNotificationService(repo notification.Repository, hub *sse.Hub, mailer email.EmailService, cfg Config) notification.Service {
	// Set defaults
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.FlushInterval <= 0 {
		cfg.FlushInterval = 5 * time.Second
	}
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 1000
	}

	s := &service{
		repo:   repo,
		hub:    hub,
		mailer: mailer,
		config: cfg,
		queue:  make(chan queued, cfg.QueueSize),
		stopCh: make(chan struct{}),
	}

	for i := 0; i < cfg.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	slog.Info("notification service started",
		"workers", cfg.WorkerCount, "batch_size", cfg.BatchSize, "flush_interval", cfg.FlushInterval)

	return s
}

func (s *service) worker(id int) {
	defer s.wg.Done()

	batch := make([]queued, 0, s.config.BatchSize)
	ticker := time.NewTicker(s.config.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		s.deliver(ctx, id, batch)
		batch = batch[:0]
	}

	for {
		select {
		case item := <-s.queue:
			batch = append(batch, item)
			if len(batch) >= s.config.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-s.stopCh:
			// Drain what is left so accepted requests are not lost.
			for {
				select {
				case item := <-s.queue:
					batch = append(batch, item)
					if len(batch) >= s.config.BatchSize {
						flush()
					}
				default:
					flush()
					return
				}
			}
		}
	}
}

// deliver stores the in-app notifications of batch in one COPY and then
// fans them out to SSE subscribers and the mailer.
func (s *service) deliver(ctx context.Context, workerID int, batch []queued) {
	var stored []*notification.Notification
	for _, item := range batch {
		if item.push {
			stored = append(stored, newNotification(item.req))
		}
	}

	if len(stored) > 0 {
		if err := s.repo.CreateBatch(ctx, stored); err != nil {
			slog.Error("notification batch insert failed", "worker", workerID, "count", len(stored), "error", err)
		} else {
			slog.Debug("notifications inserted", "worker", workerID, "count", len(stored))
			for _, n := range stored {
				s.publish(n)
			}
		}
	}

	for _, item := range batch {
		if item.email {
			s.sendEmail(item.req)
		}
	}
}

func newNotification(req notification.CreateNotificationRequest) *notification.Notification {
	return &notification.Notification{
		RecipientID: req.RecipientID,
		SenderID:    req.SenderID,
		Type:        req.Type,
		Title:       req.Title,
		Message:     req.Message,
		Data:        req.Data,
		CreatedAt:   time.Now(),
	}
}

func (s *service) publish(n *notification.Notification) {
	s.hub.Publish(n.RecipientID, sse.Event{
		UserID: n.RecipientID,
		Event:  "notification",
		Data:   notification.NewNotificationResponse(n),
	})
}

func (s *service) sendEmail(req notification.CreateNotificationRequest) {
	data := email.NotificationData{
		Type:    string(req.Type),
		Title:   req.Title,
		Message: req.Message,
		Details: map[string]string{},
	}
	if s.config.FrontendURL != "" {
		data.Link = s.config.FrontendURL + "/timesheets"
	}
	for _, key := range []string{"project_name", "task_name", "week_start", "total_hours", "reason", "draft_count"} {
		if v, ok := req.Data[key]; ok && v != nil {
			data.Details[key] = toString(v)
			data.DetailOrder = append(data.DetailOrder, key)
		}
	}

	if err := s.mailer.SendNotification(req.RecipientEmail, data); err != nil {
		slog.Error("notification email failed", "recipient_id", req.RecipientID, "type", req.Type, "error", err)
	}
}

// QueueNotification queues a notification for async processing
func (s *service) QueueNotification(ctx context.Context, req notification.CreateNotificationRequest) error {
	if s.stopped.Load() {
		return notification.ErrServiceStopped
	}
	if !req.Type.IsValid() {
		return notification.ErrInvalidNotificationType
	}

	pref, err := s.repo.ChannelSettings(ctx, req.RecipientID, req.Type)
	if err != nil {
		return err
	}
	item := queued{
		req:   req,
		push:  pref.PushEnabled,
		email: pref.EmailEnabled && s.mailer != nil && req.RecipientEmail != "",
	}
	if !item.push && !item.email {
		return nil
	}

	select {
	case s.queue <- item:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		// Queue full, deliver inline
		slog.Warn("notification queue full, delivering inline", "type", req.Type)
		return s.directInsert(ctx, item)
	}
}

// QueueBulkNotification queues multiple notifications for async processing
func (s *service) QueueBulkNotification(ctx context.Context, reqs []notification.CreateNotificationRequest) error {
	for _, req := range reqs {
		if err := s.QueueNotification(ctx, req); err != nil {
			slog.Error("failed to queue notification", "recipient_id", req.RecipientID, "type", req.Type, "error", err)
		}
	}
	return nil
}

func (s *service) directInsert(ctx context.Context, item queued) error {
	if item.push {
		n := newNotification(item.req)
		if err := s.repo.Create(ctx, n); err != nil {
			return err
		}
		s.publish(n)
	}
	if item.email {
		go s.sendEmail(item.req)
	}
	return nil
}

// GetNotifications retrieves paginated notifications for a user
func (s *service) GetNotifications(ctx context.Context, userID string, page, pageSize int, unreadOnly bool) (*notification.NotificationListResponse, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}

	notifications, total, err := s.repo.GetByUserID(ctx, userID, page, pageSize, unreadOnly)
	if err != nil {
		return nil, err
	}

	unreadCount, err := s.repo.GetUnreadCount(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]notification.NotificationResponse, len(notifications))
	for i, n := range notifications {
		responses[i] = notification.NewNotificationResponse(n)
	}

	return &notification.NotificationListResponse{
		Notifications: responses,
		Total:         total,
		UnreadCount:   unreadCount,
		Page:          page,
		PageSize:      pageSize,
	}, nil
}

func (s *service) GetUnreadCount(ctx context.Context, userID string) (int, error) {
	return s.repo.GetUnreadCount(ctx, userID)
}

func (s *service) MarkAsRead(ctx context.Context, userID string, req notification.MarkAsReadRequest) error {
	return s.repo.MarkAsRead(ctx, req.NotificationIDs, userID)
}

func (s *service) MarkAllAsRead(ctx context.Context, userID string) error {
	return s.repo.MarkAllAsRead(ctx, userID)
}

func (s *service) Delete(ctx context.Context, userID string, notificationID string) error {
	return s.repo.Delete(ctx, notificationID, userID)
}

// GetPreferences lists every notification type, filling unset ones with the
// default of both channels enabled.
func (s *service) GetPreferences(ctx context.Context, userID string) ([]notification.PreferenceResponse, error) {
	prefs, err := s.repo.GetPreferences(ctx, userID)
	if err != nil {
		return nil, err
	}

	prefMap := make(map[notification.NotificationType]*notification.NotificationPreference, len(prefs))
	for _, p := range prefs {
		prefMap[p.NotificationType] = p
	}

	allTypes := notification.AllNotificationTypes()
	responses := make([]notification.PreferenceResponse, len(allTypes))
	for i, t := range allTypes {
		responses[i] = notification.NewPreferenceResponse(t)
		if p, ok := prefMap[t]; ok {
			responses[i].EmailEnabled = p.EmailEnabled
			responses[i].PushEnabled = p.PushEnabled
		}
	}

	return responses, nil
}

func (s *service) UpdatePreference(ctx context.Context, userID string, req notification.UpdatePreferenceRequest) error {
	if !req.NotificationType.IsValid() {
		return notification.ErrInvalidNotificationType
	}
	pref := &notification.NotificationPreference{
		UserID:           userID,
		NotificationType: req.NotificationType,
		EmailEnabled:     req.EmailEnabled,
		PushEnabled:      req.PushEnabled,
		UpdatedAt:        time.Now(),
	}
	return s.repo.UpsertPreference(ctx, pref)
}

// Subscribe creates an SSE subscription for a user. The returned channel is
// closed when ctx ends or the hub shuts down.
func (s *service) Subscribe(ctx context.Context, userID string) (<-chan notification.SSEEvent, func()) {
	ch, cleanup := s.hub.Subscribe(userID)

	out := make(chan notification.SSEEvent, 10)

	go func() {
		defer close(out)
		for {
			select {
			case event, ok := <-ch:
				if !ok {
					return
				}
				resp, ok := event.Data.(notification.NotificationResponse)
				if !ok {
					continue
				}
				select {
				case out <- notification.SSEEvent{Event: event.Event, Data: resp}:
				case <-ctx.Done():
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, cleanup
}

// Stop flushes queued notifications and waits for the workers.
func (s *service) Stop() {
	if !s.stopped.CompareAndSwap(false, true) {
		return
	}
	close(s.stopCh)
	s.wg.Wait()
	slog.Info("notification service stopped")
}
