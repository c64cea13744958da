package ports

import (
	"context"
)

// UnitOfWorkFactory creates new UnitOfWork instances for each request/command.
// This ensures proper isolation between concurrent operations.
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}

// UnitOfWork represents a business transaction boundary.
// It provides transaction control and hands out repositories bound to the
// running transaction, so every mutation of one settlement operation commits
// or rolls back as a whole.
type UnitOfWork interface {
	// Begin starts a new database transaction.
	Begin(ctx context.Context) error

	// Commit commits the current transaction.
	// Returns error if no active transaction or commit fails.
	Commit(ctx context.Context) error

	// Rollback rolls back the current transaction.
	// Returns error if no active transaction or rollback fails.
	Rollback(ctx context.Context) error

	// OrderRepository returns an OrderRepository bound to the current
	// transaction.
	OrderRepository() OrderRepository

	// EscrowRepository returns an EscrowRepository bound to the current
	// transaction.
	EscrowRepository() EscrowRepository

	// WalletRepository returns a WalletRepository bound to the current
	// transaction.
	WalletRepository() WalletRepository

	// ReleaseRequestRepository returns a ReleaseRequestRepository bound to
	// the current transaction.
	ReleaseRequestRepository() ReleaseRequestRepository

	// CommissionSettingRepository returns a CommissionSettingRepository
	// bound to the current transaction.
	CommissionSettingRepository() CommissionSettingRepository
}
