package walletrepo

import (
	"context"
	"errors"
	"fmt"

	"settlement/internal/core/domain/model/kernel"
	"settlement/internal/core/domain/model/wallet"
	"settlement/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormWalletRepository implements WalletRepository using GORM.
type GormWalletRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormWalletRepository creates a new GORM wallet repository.
func NewGormWalletRepository(db *gorm.DB, tracker aggregateTracker) *GormWalletRepository {
	return &GormWalletRepository{
		db:      db,
		tracker: tracker,
	}
}

// GetByAccountID retrieves the wallet of an account.
func (r *GormWalletRepository) GetByAccountID(ctx context.Context, accountID kernel.UUID) (*wallet.Wallet, error) {
	if err := accountID.Validate(); err != nil {
		return nil, err
	}

	var dto WalletDTO
	if err := r.db.WithContext(ctx).First(&dto, "account_id = ?", accountID.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("wallet", accountID.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// Credit adds funds to an account as one upsert: a missing wallet row is
// created with the amount, an existing one gets `balance + excluded.balance`
// applied in the database.
func (r *GormWalletRepository) Credit(ctx context.Context, accountID kernel.UUID, amount kernel.Money) error {
	if err := accountID.Validate(); err != nil {
		return err
	}
	if err := amount.Validate(); err != nil {
		return err
	}

	dto := WalletDTO{
		AccountID: accountID.Bytes(),
		Balance:   amount.Amount(),
		Currency:  amount.Currency().String(),
	}

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "account_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"balance": gorm.Expr("wallets.balance + excluded.balance"),
			}),
		}).
		Create(&dto).Error
	if err != nil {
		return err
	}

	r.tracker.TrackAggregate(accountID, dto)
	return nil
}

// Debit removes funds from an account. The wallet is loaded first so a
// missing row surfaces as NotFound and the domain aggregate checks the
// business rules; the conditional write re-checks the balance so a
// concurrent debit between read and write cannot overdraw.
func (r *GormWalletRepository) Debit(ctx context.Context, accountID kernel.UUID, amount kernel.Money) error {
	aggregate, err := r.GetByAccountID(ctx, accountID)
	if err != nil {
		return err
	}

	if err := aggregate.Debit(amount); err != nil {
		return err
	}

	result := r.db.WithContext(ctx).
		Model(&WalletDTO{}).
		Where("account_id = ? AND balance >= ?", accountID.Bytes(), amount.Amount()).
		Update("balance", gorm.Expr("balance - ?", amount.Amount()))
	if result.Error != nil {
		return result.Error
	}

	if result.RowsAffected == 0 {
		return fmt.Errorf("%w: balance of account %s changed underneath the debit of %s",
			wallet.ErrInsufficientFunds, accountID, amount)
	}

	r.tracker.TrackAggregate(accountID, aggregate)
	return nil
}
