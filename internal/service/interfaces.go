// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/robertromore/budget-sub019/internal/model"
)

// TransactionSource supplies the windowed transaction snapshot that
// detection runs over. Implementations exclude soft-deleted rows;
// ordering is not required.
type TransactionSource interface {
	// GetTransactionsSince returns transactions dated on or after from.
	// An empty accountID means all accounts.
	GetTransactionsSince(ctx context.Context, from time.Time, accountID string) ([]model.Transaction, error)
}

// ScheduleSource lists the (counterparty, account) pairs that are already
// tracked, used purely for de-duplicating detection results.
type ScheduleSource interface {
	// GetScheduleKeys returns the tracked keys, optionally restricted to
	// the given accounts.
	GetScheduleKeys(ctx context.Context, accountIDs []string) ([]model.ScheduleKey, error)
}

// TransactionFilter defines filtering options for transaction queries.
type TransactionFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	AccountID string
	Limit     int
	Offset    int
}

// Storage defines the contract for the persistence layer.
type Storage interface {
	TransactionSource
	ScheduleSource

	// Transaction operations
	SaveTransactions(ctx context.Context, transactions []model.Transaction) error
	GetTransactionByID(ctx context.Context, id string) (*model.Transaction, error)
	GetTransactions(ctx context.Context, filter TransactionFilter) ([]model.Transaction, error)

	// Schedule operations
	CreateSchedule(ctx context.Context, schedule *model.Schedule) error
	GetSchedule(ctx context.Context, id string) (*model.Schedule, error)
	GetSchedules(ctx context.Context) ([]model.Schedule, error)
	UpdateSchedule(ctx context.Context, schedule *model.Schedule) error
	DeleteSchedule(ctx context.Context, id string) error

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}
