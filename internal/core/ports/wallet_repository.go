package ports

import (
	"context"

	"settlement/internal/core/domain/model/kernel"
	"settlement/internal/core/domain/model/wallet"
)

// WalletRepository defines the persistence contract for wallet balances.
// Credits and debits run as atomic in-database arithmetic rather than
// read-modify-write, so concurrent settlements for different orders of the
// same account cannot lose increments.
type WalletRepository interface {
	// GetByAccountID retrieves the wallet of an account.
	GetByAccountID(ctx context.Context, accountID kernel.UUID) (*wallet.Wallet, error)

	// Credit adds funds to an account, creating the wallet row when the
	// account has none yet.
	Credit(ctx context.Context, accountID kernel.UUID, amount kernel.Money) error

	// Debit removes funds from an account. The write is guarded on the
	// balance covering the amount; wallet.ErrInsufficientFunds is returned
	// when it does not, errs.ObjectNotFoundError when no wallet exists.
	Debit(ctx context.Context, accountID kernel.UUID, amount kernel.Money) error
}
