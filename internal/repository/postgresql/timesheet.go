package postgresql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/cmlabs-hris/timesheet-go/internal/domain/timesheet"
	"github.com/cmlabs-hris/timesheet-go/internal/pkg/database"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const entrySelect = `
	SELECT te.id, te.employee_id, e.full_name, e.user_id, u.email,
		te.project_id, p.name, te.task_id, t.name, p.manager_id, m.full_name,
		te.week_start,
		te.mon_hours, te.tue_hours, te.wed_hours, te.thu_hours, te.fri_hours, te.sat_hours, te.sun_hours,
		te.time_category, te.resource_plan, te.comments, te.status, te.rejection_reason,
		te.created_at, te.submitted_at, te.updated_at
	FROM timesheet_entries te
	JOIN employees e ON e.id = te.employee_id
	JOIN users u ON u.id = e.user_id
	JOIN projects p ON p.id = te.project_id
	JOIN project_tasks t ON t.id = te.task_id
	LEFT JOIN employees m ON m.id = p.manager_id
`

type entryRepositoryImpl struct {
	db *database.DB
}

func NewEntryRepository(db *database.DB) timesheet.EntryRepository {
	return &entryRepositoryImpl{db: db}
}

func scanEntry(row pgx.Row) (timesheet.Entry, error) {
	var e timesheet.Entry
	var status string
	h := &e.HoursByDay
	err := row.Scan(
		&e.ID, &e.EmployeeID, &e.EmployeeName, &e.OwnerUserID, &e.OwnerEmail,
		&e.ProjectID, &e.ProjectName, &e.TaskID, &e.TaskName, &e.ManagerID, &e.ManagerName,
		&e.WeekStart,
		&h[0], &h[1], &h[2], &h[3], &h[4], &h[5], &h[6],
		&e.TimeCategory, &e.ResourcePlan, &e.Comments, &status, &e.RejectionReason,
		&e.CreatedAt, &e.SubmittedAt, &e.UpdatedAt,
	)
	if err != nil {
		return timesheet.Entry{}, err
	}
	e.Status = timesheet.Status(status)
	e = e.WithWeek(e.WeekStart)
	return e, nil
}

func collectEntries(rows pgx.Rows) ([]timesheet.Entry, error) {
	defer rows.Close()
	entries := []timesheet.Entry{}
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan timesheet entry: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Create inserts a DRAFT entry and returns it with joined names.
func (r *entryRepositoryImpl) Create(ctx context.Context, entry timesheet.Entry) (timesheet.Entry, error) {
	q := GetQuerier(ctx, r.db)

	if entry.ID == "" {
		id, err := uuid.NewV7()
		if err != nil {
			return timesheet.Entry{}, err
		}
		entry.ID = id.String()
	}
	entry = entry.WithWeek(entry.WeekStart)
	h := entry.HoursByDay

	query := `
		INSERT INTO timesheet_entries (
			id, employee_id, project_id, task_id, week_start,
			mon_hours, tue_hours, wed_hours, thu_hours, fri_hours, sat_hours, sun_hours,
			time_category, resource_plan, comments, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
	`
	_, err := q.Exec(ctx, query,
		entry.ID, entry.EmployeeID, entry.ProjectID, entry.TaskID, entry.WeekStart,
		h[0], h[1], h[2], h[3], h[4], h[5], h[6],
		entry.TimeCategory, entry.ResourcePlan, entry.Comments, string(timesheet.StatusDraft),
	)
	if err != nil {
		return timesheet.Entry{}, fmt.Errorf("failed to create timesheet entry: %w", err)
	}

	return r.GetByID(ctx, entry.ID)
}

func (r *entryRepositoryImpl) GetByID(ctx context.Context, id string) (timesheet.Entry, error) {
	q := GetQuerier(ctx, r.db)

	e, err := scanEntry(q.QueryRow(ctx, entrySelect+` WHERE te.id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return timesheet.Entry{}, timesheet.ErrEntryNotFound
		}
		return timesheet.Entry{}, fmt.Errorf("failed to get timesheet entry: %w", err)
	}
	return e, nil
}

// LockByID reads an entry and locks its row until the surrounding transaction ends.
func (r *entryRepositoryImpl) LockByID(ctx context.Context, id string) (timesheet.Entry, error) {
	q := GetQuerier(ctx, r.db)

	e, err := scanEntry(q.QueryRow(ctx, entrySelect+` WHERE te.id = $1 FOR UPDATE OF te`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return timesheet.Entry{}, timesheet.ErrEntryNotFound
		}
		return timesheet.Entry{}, fmt.Errorf("failed to lock timesheet entry: %w", err)
	}
	return e, nil
}

// List returns entries whose week overlaps the filter's range, newest week first.
func (r *entryRepositoryImpl) List(ctx context.Context, filter timesheet.ListFilter) ([]timesheet.Entry, error) {
	q := GetQuerier(ctx, r.db)

	var conditions []string
	var args []interface{}
	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if filter.EmployeeID != nil {
		add("te.employee_id = $%d", *filter.EmployeeID)
	}
	from, to := filter.Range()
	if from != nil {
		add("te.week_start + 6 >= $%d", *from)
	}
	if to != nil {
		add("te.week_start <= $%d", *to)
	}
	if filter.Status != nil {
		if s, ok := timesheet.ParseStatus(*filter.Status); ok {
			add("te.status = $%d", string(s))
		}
	}
	if filter.ProjectID != nil {
		add("te.project_id = $%d", *filter.ProjectID)
	}
	if filter.ManagerID != nil {
		add("p.manager_id = $%d", *filter.ManagerID)
	}

	query := entrySelect
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY te.week_start DESC, e.full_name, te.created_at"

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list timesheet entries: %w", err)
	}
	return collectEntries(rows)
}

// Update rewrites the editable fields. Status is left untouched.
func (r *entryRepositoryImpl) Update(ctx context.Context, entry timesheet.Entry) (timesheet.Entry, error) {
	q := GetQuerier(ctx, r.db)

	entry = entry.WithWeek(entry.WeekStart)
	h := entry.HoursByDay

	query := `
		UPDATE timesheet_entries
		SET project_id = $2, task_id = $3, week_start = $4,
			mon_hours = $5, tue_hours = $6, wed_hours = $7, thu_hours = $8,
			fri_hours = $9, sat_hours = $10, sun_hours = $11,
			time_category = $12, resource_plan = $13, comments = $14,
			updated_at = NOW()
		WHERE id = $1
	`
	tag, err := q.Exec(ctx, query,
		entry.ID, entry.ProjectID, entry.TaskID, entry.WeekStart,
		h[0], h[1], h[2], h[3], h[4], h[5], h[6],
		entry.TimeCategory, entry.ResourcePlan, entry.Comments,
	)
	if err != nil {
		return timesheet.Entry{}, fmt.Errorf("failed to update timesheet entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return timesheet.Entry{}, timesheet.ErrEntryNotFound
	}

	return r.GetByID(ctx, entry.ID)
}

// UpdateStatus persists status, rejection reason and submission time.
func (r *entryRepositoryImpl) UpdateStatus(ctx context.Context, entry timesheet.Entry) (timesheet.Entry, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE timesheet_entries
		SET status = $2, rejection_reason = $3, submitted_at = $4, updated_at = NOW()
		WHERE id = $1
	`
	tag, err := q.Exec(ctx, query, entry.ID, string(entry.Status), entry.RejectionReason, entry.SubmittedAt)
	if err != nil {
		return timesheet.Entry{}, fmt.Errorf("failed to update timesheet status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return timesheet.Entry{}, timesheet.ErrEntryNotFound
	}

	return r.GetByID(ctx, entry.ID)
}

func (r *entryRepositoryImpl) Delete(ctx context.Context, id string) error {
	q := GetQuerier(ctx, r.db)

	tag, err := q.Exec(ctx, `DELETE FROM timesheet_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete timesheet entry: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return timesheet.ErrEntryNotFound
	}
	return nil
}

// ListDrafts returns and locks the DRAFT entries of an employee, optionally
// limited to one week.
func (r *entryRepositoryImpl) ListDrafts(ctx context.Context, employeeID string, weekStart *time.Time) ([]timesheet.Entry, error) {
	q := GetQuerier(ctx, r.db)

	query := entrySelect + ` WHERE te.employee_id = $1 AND te.status = $2`
	args := []interface{}{employeeID, string(timesheet.StatusDraft)}
	if weekStart != nil {
		args = append(args, timesheet.WeekOf(*weekStart).Start)
		query += ` AND te.week_start = $3`
	}
	query += ` ORDER BY te.week_start, te.created_at FOR UPDATE OF te`

	rows, err := q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list draft entries: %w", err)
	}
	return collectEntries(rows)
}

// ListDraftOwners groups the DRAFT entries of a week by employee.
func (r *entryRepositoryImpl) ListDraftOwners(ctx context.Context, weekStart time.Time) ([]timesheet.DraftOwner, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT e.id, e.full_name, u.id, u.email, COUNT(te.id)
		FROM timesheet_entries te
		JOIN employees e ON e.id = te.employee_id
		JOIN users u ON u.id = e.user_id
		WHERE te.status = $1 AND te.week_start = $2 AND u.is_active
		GROUP BY e.id, e.full_name, u.id, u.email
		ORDER BY e.full_name
	`
	rows, err := q.Query(ctx, query, string(timesheet.StatusDraft), timesheet.WeekOf(weekStart).Start)
	if err != nil {
		return nil, fmt.Errorf("failed to list draft owners: %w", err)
	}
	defer rows.Close()

	var owners []timesheet.DraftOwner
	for rows.Next() {
		var o timesheet.DraftOwner
		if err := rows.Scan(&o.EmployeeID, &o.EmployeeName, &o.UserID, &o.Email, &o.DraftCount); err != nil {
			return nil, fmt.Errorf("failed to scan draft owner: %w", err)
		}
		owners = append(owners, o)
	}
	return owners, rows.Err()
}
