package timesheet

import (
	"context"
)

// Actor identifies who is calling the service.
type Actor struct {
	UserID     string
	EmployeeID string
	// CanApprove is true for admins and managers.
	CanApprove bool
}

type EntryService interface {
	Options(ctx context.Context) Options

	// Employee side
	ListMyEntries(ctx context.Context, actor Actor, filter ListFilter) (ListEntriesResponse, error)
	GetEntry(ctx context.Context, actor Actor, id string) (EntryResponse, error)
	CreateEntry(ctx context.Context, actor Actor, req CreateEntryRequest) (EntryResponse, error)
	UpdateEntry(ctx context.Context, actor Actor, req UpdateEntryRequest) (EntryResponse, error)
	DeleteEntry(ctx context.Context, actor Actor, id string) error
	SubmitEntry(ctx context.Context, actor Actor, id string) (EntryResponse, error)
	SubmitAllDrafts(ctx context.Context, actor Actor, req SubmitAllRequest) (SubmitAllResponse, error)

	// Approver side
	ListAllEntries(ctx context.Context, actor Actor, filter ListFilter) (ListEntriesResponse, error)
	ApproveEntry(ctx context.Context, actor Actor, id string) (EntryResponse, error)
	RejectEntry(ctx context.Context, actor Actor, req RejectEntryRequest) (EntryResponse, error)
	ExportEntries(ctx context.Context, actor Actor, filter ListFilter) ([]Entry, error)

	// Jobs
	RemindDraftOwners(ctx context.Context, week Week) (int, error)
}
