package escrow

import (
	"errors"
	"fmt"

	"settlement/internal/core/domain/model/kernel"
	"settlement/internal/pkg/errs"
	"settlement/internal/pkg/guard"
)

// ErrSettlementIsNotConstructed is returned when a Settlement instance was
// not created through NewSettlement.
var ErrSettlementIsNotConstructed = errors.New("settlement must be created via NewSettlement")

// Settlement is the disbursement plan of a released escrow: who receives how
// much when the hold ends in the parties' favor. Refunds do not need a plan,
// the full held amount goes back to the buyer.
//
// Settlement invariants:
//   - All amounts share one currency
//   - An agent amount requires an agent account and the other way round
//   - Every amount is non-negative; the platform share in particular, so a
//     split can never pay out more than was held
type Settlement struct { //nolint:recvcheck //using for validation
	// orderID is the order whose escrow the plan disburses
	orderID kernel.UUID

	// sellerAccount receives the seller's proceeds
	sellerAccount kernel.UUID
	sellerAmount  kernel.Money

	// agentAccount receives the delivery fee, nil when no agent took part
	agentAccount *kernel.UUID
	agentAmount  kernel.Money

	// platformAmount is the platform's cut, credited to the commission ledger
	platformAmount kernel.Money

	// guard ensures the settlement was properly constructed
	guard guard.ConstructorGuard
}

// NewSettlement builds a disbursement plan.
//
// Parameters:
//   - orderID: the order whose escrow is disbursed
//   - sellerAccount: receiver of the seller's proceeds
//   - sellerAmount: the seller's proceeds
//   - agentAccount: receiver of the delivery fee, nil when no agent took part
//   - agentAmount: the delivery fee; must be zero when agentAccount is nil
//   - platformAmount: the platform's cut
//
// Returns:
//   - Settlement: the validated plan
//   - error: validation error if any parameter is invalid
func NewSettlement(
	orderID kernel.UUID,
	sellerAccount kernel.UUID,
	sellerAmount kernel.Money,
	agentAccount *kernel.UUID,
	agentAmount kernel.Money,
	platformAmount kernel.Money,
) (Settlement, error) {
	s := Settlement{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		s.setOrderID(orderID),
		s.setSeller(sellerAccount, sellerAmount),
		s.setAgent(agentAccount, agentAmount),
		s.setPlatformAmount(platformAmount),
	); err != nil {
		return Settlement{}, err
	}

	if err := s.validateCurrencies(); err != nil {
		return Settlement{}, err
	}

	return s, nil
}

// Validate ensures the Settlement instance was properly constructed.
func (s Settlement) Validate() error {
	return s.guard.Validate(ErrSettlementIsNotConstructed)
}

// OrderID returns the order whose escrow the plan disburses.
func (s Settlement) OrderID() kernel.UUID {
	return s.orderID
}

// SellerAccount returns the receiver of the seller's proceeds.
func (s Settlement) SellerAccount() kernel.UUID {
	return s.sellerAccount
}

// SellerAmount returns the seller's proceeds.
func (s Settlement) SellerAmount() kernel.Money {
	return s.sellerAmount
}

// AgentAccount returns the receiver of the delivery fee, nil when no agent
// took part in the order.
func (s Settlement) AgentAccount() *kernel.UUID {
	return s.agentAccount
}

// AgentAmount returns the delivery fee share.
func (s Settlement) AgentAmount() kernel.Money {
	return s.agentAmount
}

// PlatformAmount returns the platform's cut.
func (s Settlement) PlatformAmount() kernel.Money {
	return s.platformAmount
}

// Total returns the sum of all shares. The splitter checks it against the
// held amount so a plan never disburses more or less than the escrow.
func (s Settlement) Total() (kernel.Money, error) {
	total, err := s.sellerAmount.Add(s.agentAmount)
	if err != nil {
		return kernel.Money{}, err
	}
	return total.Add(s.platformAmount)
}

// setOrderID validates and sets the order reference.
func (s *Settlement) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}
	s.orderID = orderID
	return nil
}

// setSeller validates and sets the seller share.
func (s *Settlement) setSeller(account kernel.UUID, amount kernel.Money) error {
	if err := account.Validate(); err != nil {
		return err
	}
	if err := amount.Validate(); err != nil {
		return err
	}
	s.sellerAccount = account
	s.sellerAmount = amount
	return nil
}

// setAgent validates and sets the agent share. An agent account and a
// non-zero agent amount come together or not at all.
func (s *Settlement) setAgent(account *kernel.UUID, amount kernel.Money) error {
	if err := amount.Validate(); err != nil {
		return err
	}
	if account == nil {
		if !amount.IsZero() {
			return errs.NewValueIsInvalidErrorWithCause(
				"agentAmount is invalid",
				fmt.Errorf("agent amount %s without an agent account", amount),
			)
		}
		s.agentAmount = amount
		return nil
	}

	if err := account.Validate(); err != nil {
		return err
	}
	s.agentAccount = account
	s.agentAmount = amount
	return nil
}

// setPlatformAmount validates and sets the platform share.
func (s *Settlement) setPlatformAmount(amount kernel.Money) error {
	if err := amount.Validate(); err != nil {
		return err
	}
	s.platformAmount = amount
	return nil
}

// validateCurrencies checks that every share is denominated alike.
func (s *Settlement) validateCurrencies() error {
	currency := s.sellerAmount.Currency()
	if s.agentAmount.Currency() != currency || s.platformAmount.Currency() != currency {
		return errs.NewValueIsInvalidErrorWithCause(
			"settlement is invalid",
			fmt.Errorf("shares mix currencies %s, %s and %s", currency, s.agentAmount.Currency(), s.platformAmount.Currency()),
		)
	}
	return nil
}
