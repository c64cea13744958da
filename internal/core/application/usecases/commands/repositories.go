// Package commands contains business operations that modify system state.
// Implements the Command pattern for write operations in the CQRS architecture.
// All commands follow a consistent pattern: validation, transaction management, and persistence.
package commands

import (
	"context"

	"settlement/internal/core/ports"
)

// Unit of Work interfaces provide transaction management for command handlers.
// Each handler depends on the narrowest shape that covers the aggregates it
// touches; the GORM unit of work satisfies all of them.
type (
	// TxManager handles database transaction lifecycle.
	// Ensures atomic operations across multiple repository calls.
	TxManager interface {
		Begin(ctx context.Context) error
		Commit(ctx context.Context) error
		Rollback(ctx context.Context) error
	}

	// OrderRepoFactory provides access to the order repository within a transaction.
	OrderRepoFactory interface {
		OrderRepository() ports.OrderRepository
	}

	// EscrowRepoFactory provides access to the escrow repository within a transaction.
	EscrowRepoFactory interface {
		EscrowRepository() ports.EscrowRepository
	}

	// WalletRepoFactory provides access to the wallet repository within a transaction.
	WalletRepoFactory interface {
		WalletRepository() ports.WalletRepository
	}

	// ReleaseRequestRepoFactory provides access to the release request repository
	// within a transaction.
	ReleaseRequestRepoFactory interface {
		ReleaseRequestRepository() ports.ReleaseRequestRepository
	}

	// CommissionSettingRepoFactory provides access to the commission setting
	// repository within a transaction.
	CommissionSettingRepoFactory interface {
		CommissionSettingRepository() ports.CommissionSettingRepository
	}

	// OrderUoW manages transactions for order-only operations.
	// Used when commands only modify order aggregates.
	OrderUoW interface {
		TxManager
		OrderRepoFactory
	}

	// OrderUoWFactory creates new order unit of work instances.
	OrderUoWFactory interface {
		Create() OrderUoW
	}

	// PricingUoW manages transactions for order creation, which reads tariff
	// settings and writes the priced order.
	PricingUoW interface {
		TxManager
		OrderRepoFactory
		CommissionSettingRepoFactory
	}

	// PricingUoWFactory creates new pricing unit of work instances.
	PricingUoWFactory interface {
		Create() PricingUoW
	}

	// FundingUoW manages transactions that move money against an order's
	// escrow: holds, refunds and the lifecycle edges that trigger them.
	FundingUoW interface {
		TxManager
		OrderRepoFactory
		EscrowRepoFactory
		WalletRepoFactory
	}

	// FundingUoWFactory creates new funding unit of work instances.
	FundingUoWFactory interface {
		Create() FundingUoW
	}

	// SettlementUoW manages transactions for the release settlement: the
	// request decision, the escrow close, the wallet credits and the order
	// completion commit or roll back as one.
	//
	// Example:
	//   uow := factory.Create()
	//   err := uow.Begin(ctx)
	//   defer uow.Rollback(ctx)
	//
	//   escrowRepo := uow.EscrowRepository()
	//   walletRepo := uow.WalletRepository()
	//   // ... perform operations
	//
	//   err = uow.Commit(ctx)
	SettlementUoW interface {
		TxManager
		OrderRepoFactory
		EscrowRepoFactory
		WalletRepoFactory
		ReleaseRequestRepoFactory
	}

	// SettlementUoWFactory creates new settlement unit of work instances.
	SettlementUoWFactory interface {
		Create() SettlementUoW
	}

	// RequestUoW manages transactions for filing release requests, which
	// reads the order and writes the request.
	RequestUoW interface {
		TxManager
		OrderRepoFactory
		ReleaseRequestRepoFactory
	}

	// RequestUoWFactory creates new request unit of work instances.
	RequestUoWFactory interface {
		Create() RequestUoW
	}

	// ReleaseRequestUoW manages transactions for request-only decisions.
	ReleaseRequestUoW interface {
		TxManager
		ReleaseRequestRepoFactory
	}

	// ReleaseRequestUoWFactory creates new release request unit of work instances.
	ReleaseRequestUoWFactory interface {
		Create() ReleaseRequestUoW
	}

	// SettingUoW manages transactions for tariff maintenance.
	SettingUoW interface {
		TxManager
		CommissionSettingRepoFactory
	}

	// SettingUoWFactory creates new setting unit of work instances.
	SettingUoWFactory interface {
		Create() SettingUoW
	}
)
