// Package postgres implements the unit of work over a GORM connection. A
// unit of work opens one database transaction, hands out repositories bound
// to it, and commits or rolls back all of their writes together, which is
// what keeps an order transition and its escrow and wallet movements atomic.
//
// Typical handler shape:
//
//	uow := factory.Create()
//	if err := uow.Begin(ctx); err != nil {
//	    return err
//	}
//	defer func() { _ = uow.Rollback(ctx) }()
//
//	if err := uow.EscrowRepository().Update(ctx, held); err != nil {
//	    return err
//	}
//	if err := uow.WalletRepository().Credit(ctx, sellerID, sellerAmount); err != nil {
//	    return err
//	}
//	return uow.Commit(ctx)
//
// The deferred Rollback is a no-op after a successful Commit because the
// transaction handle is cleared.
//
// Repositories report every aggregate they add or update back to the unit of
// work via TrackAggregate, so a caller can replay what changed after the
// transaction ends.
package postgres

import (
	"context"

	"settlement/internal/adapters/out/postgres/escrowrepo"
	"settlement/internal/adapters/out/postgres/orderrepo"
	"settlement/internal/adapters/out/postgres/requestrepo"
	"settlement/internal/adapters/out/postgres/tariffrepo"
	"settlement/internal/adapters/out/postgres/walletrepo"
	"settlement/internal/core/domain/model/kernel"
	"settlement/internal/core/ports"

	"gorm.io/gorm"
)

// trackedAggregate records one aggregate modified during the unit of work.
type trackedAggregate struct {
	ID        kernel.UUID
	Aggregate interface{} // Will be changed to a common Aggregate interface in the future
}

// GormUnitOfWorkFactory builds a fresh unit of work per business operation,
// so concurrent handlers never share transaction state.
type GormUnitOfWorkFactory struct {
	db *gorm.DB
}

// NewGormUnitOfWorkFactory wraps the shared GORM connection. Every unit of
// work the factory creates opens its own transaction on it.
func NewGormUnitOfWorkFactory(db *gorm.DB) *GormUnitOfWorkFactory {
	return &GormUnitOfWorkFactory{db: db}
}

// Create returns a unit of work with no open transaction and an empty
// tracking list.
func (f *GormUnitOfWorkFactory) Create() ports.UnitOfWork {
	return &GormUnitOfWork{
		db:                f.db,
		trackedAggregates: make([]trackedAggregate, 0),
	}
}

// GormUnitOfWork carries one transaction and the aggregates touched inside
// it. Repositories obtained from it before Begin run directly on the main
// connection; after Begin they run inside the transaction.
type GormUnitOfWork struct {
	db                *gorm.DB
	tx                *gorm.DB
	trackedAggregates []trackedAggregate
}

// Begin opens the transaction. Calling it again while one is open is a
// no-op rather than a nested transaction.
func (uow *GormUnitOfWork) Begin(ctx context.Context) error {
	if uow.tx != nil {
		return nil
	}

	uow.tx = uow.db.WithContext(ctx).Begin()
	if uow.tx.Error != nil {
		return uow.tx.Error
	}

	return nil
}

// Commit makes the transaction's writes permanent and closes it. Returns
// gorm.ErrInvalidTransaction when no transaction is open.
func (uow *GormUnitOfWork) Commit(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Commit().Error
	uow.tx = nil
	return err
}

// Rollback discards the transaction's writes and closes it. Returns
// gorm.ErrInvalidTransaction when no transaction is open, which makes the
// deferred rollback after a commit harmless.
func (uow *GormUnitOfWork) Rollback(_ context.Context) error {
	if uow.tx == nil {
		return gorm.ErrInvalidTransaction
	}

	err := uow.tx.Rollback().Error
	uow.tx = nil
	return err
}

// OrderRepository returns the order repository bound to the current
// transaction. Added and updated orders are tracked on this unit of work.
func (uow *GormUnitOfWork) OrderRepository() ports.OrderRepository {
	return orderrepo.NewGormOrderRepository(uow.conn(), uow)
}

// EscrowRepository returns the escrow repository bound to the current
// transaction.
func (uow *GormUnitOfWork) EscrowRepository() ports.EscrowRepository {
	return escrowrepo.NewGormEscrowRepository(uow.conn(), uow)
}

// WalletRepository returns the wallet repository bound to the current
// transaction, so a settlement's seller, agent and platform movements land
// atomically with the order and escrow updates.
func (uow *GormUnitOfWork) WalletRepository() ports.WalletRepository {
	return walletrepo.NewGormWalletRepository(uow.conn(), uow)
}

// ReleaseRequestRepository returns the release request repository bound to
// the current transaction.
func (uow *GormUnitOfWork) ReleaseRequestRepository() ports.ReleaseRequestRepository {
	return requestrepo.NewGormReleaseRequestRepository(uow.conn(), uow)
}

// CommissionSettingRepository returns the tariff repository bound to the
// current transaction. Settings are plain rows, nothing to track.
func (uow *GormUnitOfWork) CommissionSettingRepository() ports.CommissionSettingRepository {
	return tariffrepo.NewGormCommissionSettingRepository(uow.conn())
}

// conn returns the active transaction when one is open, the main connection otherwise.
func (uow *GormUnitOfWork) conn() *gorm.DB {
	if uow.tx != nil {
		return uow.tx
	}
	return uow.db
}

// TrackAggregate registers an aggregate as modified within this unit of
// work. Repositories call it from their Add and Update methods.
func (uow *GormUnitOfWork) TrackAggregate(id kernel.UUID, aggregate interface{}) {
	uow.trackedAggregates = append(uow.trackedAggregates, trackedAggregate{
		ID:        id,
		Aggregate: aggregate,
	})
}
