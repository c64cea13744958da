// Package walletrepo provides data transfer objects and mapping functions
// for wallet persistence. Balance arithmetic runs in SQL so concurrent
// settlements touching the same account never lose increments.
package walletrepo

import (
	"settlement/internal/core/domain/model/kernel"
	"settlement/internal/core/domain/model/wallet"

	"github.com/google/uuid"
)

// WalletDTO represents the database structure for persisting wallet
// balances. The account is the primary key: one wallet per account.
type WalletDTO struct {
	AccountID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Balance   int64
	Currency  string `gorm:"type:varchar(3)"`
}

// TableName specifies the database table name for wallet entities.
func (WalletDTO) TableName() string {
	return "wallets"
}

// fromDomain converts a wallet domain aggregate to its database
// representation.
func fromDomain(aggregate *wallet.Wallet) WalletDTO {
	return WalletDTO{
		AccountID: aggregate.AccountID().Bytes(),
		Balance:   aggregate.Balance().Amount(),
		Currency:  aggregate.Balance().Currency().String(),
	}
}

// toDomain converts a database DTO to a wallet domain aggregate.
func toDomain(dto WalletDTO) (*wallet.Wallet, error) {
	accountID, err := kernel.UUIDFromBytes(dto.AccountID[:])
	if err != nil {
		return nil, err
	}

	currency, err := kernel.NewCurrency(dto.Currency)
	if err != nil {
		return nil, err
	}
	balance, err := kernel.NewMoney(dto.Balance, currency)
	if err != nil {
		return nil, err
	}

	return wallet.RestoreWallet(accountID, balance)
}
