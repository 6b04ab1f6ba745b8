package notification

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/timesheet-go/internal/domain/notification"
	"github.com/cmlabs-hris/timesheet-go/internal/pkg/email"
	"github.com/cmlabs-hris/timesheet-go/internal/pkg/sse"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memRepo struct {
	notification.Repository

	mu         sync.Mutex
	prefs      map[string]notification.NotificationPreference
	batches    [][]*notification.Notification
	created    []*notification.Notification
	upserts    []*notification.NotificationPreference
	batchErr   error
	batchGate  chan struct{}
	inBatch    chan struct{}
	stored     []*notification.Notification
	unread     int
	pageCalled [2]int
}

func newMemRepo() *memRepo {
	return &memRepo{prefs: map[string]notification.NotificationPreference{}}
}

func prefKey(userID string, t notification.NotificationType) string {
	return userID + "|" + string(t)
}

func (m *memRepo) setChannels(userID string, t notification.NotificationType, emailOn, pushOn bool) {
	m.prefs[prefKey(userID, t)] = notification.NotificationPreference{
		UserID: userID, NotificationType: t, EmailEnabled: emailOn, PushEnabled: pushOn,
	}
}

func (m *memRepo) ChannelSettings(_ context.Context, userID string, t notification.NotificationType) (notification.NotificationPreference, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if p, ok := m.prefs[prefKey(userID, t)]; ok {
		return p, nil
	}
	return notification.NotificationPreference{UserID: userID, NotificationType: t, EmailEnabled: true, PushEnabled: true}, nil
}

func (m *memRepo) CreateBatch(_ context.Context, ns []*notification.Notification) error {
	if m.inBatch != nil {
		m.inBatch <- struct{}{}
	}
	if m.batchGate != nil {
		<-m.batchGate
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.batchErr != nil {
		return m.batchErr
	}
	for _, n := range ns {
		n.ID = "n-" + n.RecipientID
	}
	m.batches = append(m.batches, ns)
	return nil
}

func (m *memRepo) Create(_ context.Context, n *notification.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.created = append(m.created, n)
	return nil
}

func (m *memRepo) GetByUserID(_ context.Context, _ string, page, pageSize int, _ bool) ([]*notification.Notification, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pageCalled = [2]int{page, pageSize}
	return m.stored, len(m.stored), nil
}

func (m *memRepo) GetUnreadCount(context.Context, string) (int, error) {
	return m.unread, nil
}

func (m *memRepo) GetPreferences(_ context.Context, userID string) ([]*notification.NotificationPreference, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*notification.NotificationPreference
	for _, p := range m.prefs {
		if p.UserID == userID {
			p := p
			out = append(out, &p)
		}
	}
	return out, nil
}

func (m *memRepo) UpsertPreference(_ context.Context, p *notification.NotificationPreference) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upserts = append(m.upserts, p)
	return nil
}

func (m *memRepo) batchCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, b := range m.batches {
		n += len(b)
	}
	return n
}

type sentMail struct {
	to   string
	data email.NotificationData
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []sentMail
}

func (f *fakeMailer) SendNotification(to string, data email.NotificationData) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentMail{to, data})
	return nil
}

func (f *fakeMailer) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

// slowConfig keeps the ticker out of the way so batches only flush on size or Stop.
func slowConfig() Config {
	return Config{BatchSize: 100, FlushInterval: time.Hour, WorkerCount: 1, QueueSize: 10, FrontendURL: "https://hr.example.com"}
}

func rejectedRequest(userID string) notification.CreateNotificationRequest {
	return notification.CreateNotificationRequest{
		RecipientID:    userID,
		RecipientEmail: userID + "@example.com",
		Type:           notification.TypeTimesheetRejected,
		Title:          "Timesheet rejected",
		Message:        "Apollo / Backend was rejected",
		Data: map[string]interface{}{
			"project_name": "Apollo",
			"week_start":   "2024-01-08",
			"total_hours":  decimal.NewFromFloat(16.5),
			"reason":       "Split the hours by task",
			"ignored":      "x",
		},
	}
}

func TestQueueNotification_DeliversOnStop(t *testing.T) {
	repo := newMemRepo()
	hub := sse.NewHub(4)
	mailer := &fakeMailer{}
	svc := NewNotificationService(repo, hub, mailer, slowConfig())

	events, cleanup := hub.Subscribe("u-1")
	defer cleanup()

	require.NoError(t, svc.QueueNotification(context.Background(), rejectedRequest("u-1")))
	require.NoError(t, svc.QueueNotification(context.Background(), rejectedRequest("u-2")))
	svc.Stop()

	require.Len(t, repo.batches, 1, "accepted requests are stored in one batch when draining")
	assert.Len(t, repo.batches[0], 2)

	select {
	case ev := <-events:
		assert.Equal(t, "notification", ev.Event)
		resp, ok := ev.Data.(notification.NotificationResponse)
		require.True(t, ok)
		assert.Equal(t, notification.TypeTimesheetRejected, resp.Type)
		assert.Equal(t, "n-u-1", resp.ID)
	default:
		t.Fatal("expected a pushed event for u-1")
	}

	require.Equal(t, 2, mailer.count())
	first := mailer.sent[0]
	assert.Equal(t, "u-1@example.com", first.to)
	assert.Equal(t, "https://hr.example.com/timesheets", first.data.Link)
	assert.Equal(t, []string{"project_name", "week_start", "total_hours", "reason"}, first.data.DetailOrder)
	assert.Equal(t, "16.50", first.data.Details["total_hours"])
	assert.NotContains(t, first.data.Details, "ignored")
}

func TestQueueNotification_RespectsPreferences(t *testing.T) {
	repo := newMemRepo()
	repo.setChannels("push-only", notification.TypeTimesheetRejected, false, true)
	repo.setChannels("email-only", notification.TypeTimesheetRejected, true, false)
	repo.setChannels("muted", notification.TypeTimesheetRejected, false, false)
	mailer := &fakeMailer{}
	svc := NewNotificationService(repo, sse.NewHub(4), mailer, slowConfig())

	ctx := context.Background()
	for _, u := range []string{"push-only", "email-only", "muted"} {
		require.NoError(t, svc.QueueNotification(ctx, rejectedRequest(u)))
	}
	svc.Stop()

	require.Len(t, repo.batches, 1)
	require.Len(t, repo.batches[0], 1)
	assert.Equal(t, "push-only", repo.batches[0][0].RecipientID)

	require.Equal(t, 1, mailer.count())
	assert.Equal(t, "email-only@example.com", mailer.sent[0].to)
}

func TestQueueNotification_EmailNeedsMailerAndAddress(t *testing.T) {
	repo := newMemRepo()
	repo.setChannels("u-1", notification.TypeTimesheetApproved, true, false)
	svc := NewNotificationService(repo, sse.NewHub(4), nil, slowConfig())

	req := rejectedRequest("u-1")
	req.Type = notification.TypeTimesheetApproved
	require.NoError(t, svc.QueueNotification(context.Background(), req))
	svc.Stop()

	assert.Empty(t, repo.batches, "email-only preference without a mailer delivers nothing")

	mailer := &fakeMailer{}
	svc = NewNotificationService(repo, sse.NewHub(4), mailer, slowConfig())
	req.RecipientEmail = ""
	require.NoError(t, svc.QueueNotification(context.Background(), req))
	svc.Stop()
	assert.Zero(t, mailer.count())
}

func TestQueueNotification_RejectsUnknownType(t *testing.T) {
	svc := NewNotificationService(newMemRepo(), sse.NewHub(4), nil, slowConfig())
	defer svc.Stop()

	req := rejectedRequest("u-1")
	req.Type = "leave_approved"
	assert.ErrorIs(t, svc.QueueNotification(context.Background(), req), notification.ErrInvalidNotificationType)
}

func TestQueueNotification_AfterStop(t *testing.T) {
	repo := newMemRepo()
	svc := NewNotificationService(repo, sse.NewHub(4), nil, slowConfig())
	svc.Stop()
	svc.Stop()

	err := svc.QueueNotification(context.Background(), rejectedRequest("u-1"))
	assert.ErrorIs(t, err, notification.ErrServiceStopped)
	assert.Empty(t, repo.batches)
}

func TestQueueNotification_FullQueueDeliversInline(t *testing.T) {
	repo := newMemRepo()
	repo.batchGate = make(chan struct{})
	repo.inBatch = make(chan struct{}, 4)
	hub := sse.NewHub(4)
	mailer := &fakeMailer{}
	svc := NewNotificationService(repo, hub, mailer, Config{
		BatchSize: 1, FlushInterval: time.Hour, WorkerCount: 1, QueueSize: 1,
	})
	ctx := context.Background()

	events, cleanup := hub.Subscribe("third")
	defer cleanup()

	// The worker takes the first request and blocks inside CreateBatch.
	require.NoError(t, svc.QueueNotification(ctx, rejectedRequest("first")))
	select {
	case <-repo.inBatch:
	case <-time.After(5 * time.Second):
		t.Fatal("worker never started a batch")
	}
	// The second fills the queue, the third overflows it.
	require.NoError(t, svc.QueueNotification(ctx, rejectedRequest("second")))
	require.NoError(t, svc.QueueNotification(ctx, rejectedRequest("third")))

	repo.mu.Lock()
	require.Len(t, repo.created, 1)
	assert.Equal(t, "third", repo.created[0].RecipientID)
	repo.mu.Unlock()

	select {
	case ev := <-events:
		assert.Equal(t, "notification", ev.Event)
	default:
		t.Fatal("inline delivery must push immediately")
	}
	assert.Eventually(t, func() bool { return mailer.count() == 1 }, 5*time.Second, 10*time.Millisecond)

	close(repo.batchGate)
	svc.Stop()
	assert.Equal(t, 2, repo.batchCount())
	assert.Equal(t, 3, mailer.count())
}

func TestDeliver_FailedInsertSkipsPushButStillEmails(t *testing.T) {
	repo := newMemRepo()
	repo.batchErr = errors.New("database unavailable")
	hub := sse.NewHub(4)
	mailer := &fakeMailer{}
	svc := NewNotificationService(repo, hub, mailer, slowConfig())

	events, cleanup := hub.Subscribe("u-1")
	defer cleanup()

	require.NoError(t, svc.QueueNotification(context.Background(), rejectedRequest("u-1")))
	svc.Stop()

	select {
	case <-events:
		t.Fatal("nothing stored, nothing pushed")
	default:
	}
	assert.Equal(t, 1, mailer.count())
}

func TestQueueBulkNotification_ContinuesPastFailures(t *testing.T) {
	repo := newMemRepo()
	svc := NewNotificationService(repo, sse.NewHub(4), nil, slowConfig())

	bad := rejectedRequest("bad")
	bad.Type = "unknown"
	err := svc.QueueBulkNotification(context.Background(), []notification.CreateNotificationRequest{
		rejectedRequest("a"), bad, rejectedRequest("b"),
	})
	require.NoError(t, err)
	svc.Stop()

	assert.Equal(t, 2, repo.batchCount())
}

func TestGetPreferences_FillsDefaultsAndLabels(t *testing.T) {
	repo := newMemRepo()
	repo.setChannels("u-1", notification.TypeTimesheetDraftReminder, false, true)
	repo.setChannels("u-2", notification.TypeTimesheetApproved, false, false)
	svc := NewNotificationService(repo, sse.NewHub(4), nil, slowConfig())
	defer svc.Stop()

	prefs, err := svc.GetPreferences(context.Background(), "u-1")
	require.NoError(t, err)
	require.Len(t, prefs, len(notification.AllNotificationTypes()))

	for _, p := range prefs {
		assert.NotEmpty(t, p.Label, p.NotificationType)
		assert.NotEmpty(t, p.Description, p.NotificationType)
		if p.NotificationType == notification.TypeTimesheetDraftReminder {
			assert.False(t, p.EmailEnabled)
			assert.True(t, p.PushEnabled)
			continue
		}
		assert.True(t, p.EmailEnabled, p.NotificationType)
		assert.True(t, p.PushEnabled, p.NotificationType)
	}
	assert.Equal(t, notification.RecipientApprover, prefs[0].Recipient)
}

func TestUpdatePreference(t *testing.T) {
	repo := newMemRepo()
	svc := NewNotificationService(repo, sse.NewHub(4), nil, slowConfig())
	defer svc.Stop()
	ctx := context.Background()

	err := svc.UpdatePreference(ctx, "u-1", notification.UpdatePreferenceRequest{NotificationType: "payroll_ready"})
	assert.ErrorIs(t, err, notification.ErrInvalidNotificationType)
	assert.Empty(t, repo.upserts)

	require.NoError(t, svc.UpdatePreference(ctx, "u-1", notification.UpdatePreferenceRequest{
		NotificationType: notification.TypeTimesheetSubmitted,
		PushEnabled:      true,
	}))
	require.Len(t, repo.upserts, 1)
	assert.Equal(t, "u-1", repo.upserts[0].UserID)
	assert.False(t, repo.upserts[0].EmailEnabled)
}

func TestGetNotifications_ClampsPaging(t *testing.T) {
	repo := newMemRepo()
	repo.unread = 2
	repo.stored = []*notification.Notification{{ID: "n-1", Type: notification.TypeTimesheetApproved}}
	svc := NewNotificationService(repo, sse.NewHub(4), nil, slowConfig())
	defer svc.Stop()

	resp, err := svc.GetNotifications(context.Background(), "u-1", 0, 1000, false)
	require.NoError(t, err)

	assert.Equal(t, [2]int{1, 20}, repo.pageCalled)
	assert.Equal(t, 1, resp.Total)
	assert.Equal(t, 2, resp.UnreadCount)
	assert.Equal(t, "n-1", resp.Notifications[0].ID)
}

func TestSubscribe_ForwardsAndClosesWithContext(t *testing.T) {
	hub := sse.NewHub(4)
	svc := NewNotificationService(newMemRepo(), hub, nil, slowConfig())
	defer svc.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	events, cleanup := svc.Subscribe(ctx, "u-1")
	defer cleanup()

	hub.Publish("u-1", sse.Event{Event: "notification", Data: "not a notification"})
	hub.Publish("u-1", sse.Event{Event: "notification", Data: notification.NotificationResponse{ID: "n-9"}})

	select {
	case ev := <-events:
		assert.Equal(t, "n-9", ev.Data.ID, "events with foreign payloads are skipped")
	case <-time.After(5 * time.Second):
		t.Fatal("no event forwarded")
	}

	cancel()
	assert.Eventually(t, func() bool {
		select {
		case _, ok := <-events:
			return !ok
		default:
			return false
		}
	}, 5*time.Second, 10*time.Millisecond)
}
