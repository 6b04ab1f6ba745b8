package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/timesheet-go/internal/domain/timesheet"
)

// draftReminderLockKey identifies the reminder job in pg advisory locks.
const draftReminderLockKey int64 = 7_340_001

// Locker serializes a job across server instances.
type Locker interface {
	TryLock(ctx context.Context, key int64) (bool, error)
	Unlock(ctx context.Context, key int64) error
}

type draftReminder interface {
	RemindDraftOwners(ctx context.Context, week timesheet.Week) (int, error)
}

// DraftReminderJob reminds every employee with DRAFT entries in the week
// containing now(). Only one instance runs it when locker is shared.
func DraftReminderJob(svc draftReminder, locker Locker, now func() time.Time) JobFunc {
	return func(ctx context.Context) error {
		ok, err := locker.TryLock(ctx, draftReminderLockKey)
		if err != nil {
			return fmt.Errorf("acquire reminder lock: %w", err)
		}
		if !ok {
			slog.Info("Draft reminder already running elsewhere")
			return nil
		}
		defer func() {
			if err := locker.Unlock(context.Background(), draftReminderLockKey); err != nil {
				slog.Error("Failed to release reminder lock", "error", err)
			}
		}()

		week := timesheet.WeekOf(now())
		sent, err := svc.RemindDraftOwners(ctx, week)
		if err != nil {
			return fmt.Errorf("remind draft owners: %w", err)
		}
		slog.Info("Draft reminders queued", "week", week.String(), "recipients", sent)
		return nil
	}
}
