package timesheet

import (
	"context"
	"time"
)

// DraftOwner is an employee with unsubmitted entries in a week.
type DraftOwner struct {
	EmployeeID   string
	EmployeeName string
	UserID       string
	Email        string
	DraftCount   int
}

// EntryRepository - interface for timesheet_entries table
type EntryRepository interface {
	Create(ctx context.Context, entry Entry) (Entry, error)
	GetByID(ctx context.Context, id string) (Entry, error)
	// LockByID is GetByID that holds a row lock for the current transaction.
	LockByID(ctx context.Context, id string) (Entry, error)
	List(ctx context.Context, filter ListFilter) ([]Entry, error)
	Update(ctx context.Context, entry Entry) (Entry, error)
	UpdateStatus(ctx context.Context, entry Entry) (Entry, error)
	Delete(ctx context.Context, id string) error
	// ListDrafts locks the returned rows for the current transaction.
	ListDrafts(ctx context.Context, employeeID string, weekStart *time.Time) ([]Entry, error)
	ListDraftOwners(ctx context.Context, weekStart time.Time) ([]DraftOwner, error)
}
