package wallet

import (
	"errors"
	"fmt"

	"settlement/internal/core/domain/model/kernel"
	"settlement/internal/pkg/guard"
)

var (
	// ErrWalletIsNotConstructed is returned when a Wallet instance was not
	// created through NewWallet or RestoreWallet.
	ErrWalletIsNotConstructed = errors.New("wallet must be created via NewWallet or RestoreWallet")

	// ErrInsufficientFunds is returned when a debit exceeds the balance.
	// Wallet balances never go negative.
	ErrInsufficientFunds = errors.New("wallet balance is insufficient")
)

// PlatformAccountID identifies the reserved ledger account that accumulates
// the platform's commission share of every release. No user owns this
// account; it exists so commission credits flow through the same wallet
// rails as seller and agent proceeds.
var PlatformAccountID = mustUUID("00000000-0000-0000-0000-000000000001")

func mustUUID(s string) kernel.UUID {
	id, err := kernel.UUIDFromString(s)
	if err != nil {
		panic(err)
	}
	return id
}

// Wallet is the balance ledger of one account. Each account holds at most
// one wallet per currency; the engine operates in a single currency, so the
// account ID alone identifies the wallet.
//
// In-memory mutations validate the business rules; the repository repeats
// the non-negative guard as a conditional UPDATE so concurrent debits cannot
// overdraw.
type Wallet struct {
	// accountID is the owning account, also the wallet's identity
	accountID kernel.UUID

	// balance is the current funds, never negative
	balance kernel.Money

	// guard ensures the wallet was properly constructed
	guard guard.ConstructorGuard
}

// NewWallet opens an empty wallet for an account.
func NewWallet(accountID kernel.UUID, currency kernel.Currency) (*Wallet, error) {
	zero, err := kernel.NewMoney(0, currency)
	if err != nil {
		return nil, err
	}
	return RestoreWallet(accountID, zero)
}

// RestoreWallet reconstructs a wallet from its persisted state.
func RestoreWallet(accountID kernel.UUID, balance kernel.Money) (*Wallet, error) {
	w := &Wallet{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		w.setAccountID(accountID),
		w.setBalance(balance),
	); err != nil {
		return nil, err
	}

	return w, nil
}

// Validate ensures the Wallet instance was properly constructed.
func (w *Wallet) Validate() error {
	if w == nil {
		return ErrWalletIsNotConstructed
	}
	return w.guard.Validate(ErrWalletIsNotConstructed)
}

// AccountID returns the owning account.
func (w *Wallet) AccountID() kernel.UUID {
	return w.accountID
}

// Balance returns the current funds.
func (w *Wallet) Balance() kernel.Money {
	return w.balance
}

// Credit adds funds to the wallet. The amount must share the wallet's
// currency.
func (w *Wallet) Credit(amount kernel.Money) error {
	if err := w.Validate(); err != nil {
		return err
	}

	balance, err := w.balance.Add(amount)
	if err != nil {
		return err
	}

	w.balance = balance
	return nil
}

// Debit removes funds from the wallet.
//
// Returns:
//   - nil on success
//   - ErrInsufficientFunds when the amount exceeds the balance
//   - validation error on currency mismatch
func (w *Wallet) Debit(amount kernel.Money) error {
	if err := w.Validate(); err != nil {
		return err
	}
	if err := amount.Validate(); err != nil {
		return err
	}

	if amount.Currency() != w.balance.Currency() {
		_, err := w.balance.Sub(amount)
		return err
	}
	if amount.Amount() > w.balance.Amount() {
		return fmt.Errorf("%w: balance %s cannot cover %s for account %s",
			ErrInsufficientFunds, w.balance, amount, w.accountID)
	}

	balance, err := w.balance.Sub(amount)
	if err != nil {
		return err
	}

	w.balance = balance
	return nil
}

// setAccountID validates and sets the owning account.
func (w *Wallet) setAccountID(accountID kernel.UUID) error {
	if err := accountID.Validate(); err != nil {
		return err
	}
	w.accountID = accountID
	return nil
}

// setBalance validates and sets the current funds.
func (w *Wallet) setBalance(balance kernel.Money) error {
	if err := balance.Validate(); err != nil {
		return err
	}
	w.balance = balance
	return nil
}
