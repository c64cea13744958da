package services

import (
	"fmt"

	"settlement/internal/core/domain/model/escrow"
	"settlement/internal/core/domain/model/kernel"
	"settlement/internal/core/domain/model/order"
	"settlement/internal/pkg/errs"
)

// SettlementSplitter is a domain service that plans how a held escrow is paid
// out when an order completes.
//
// Business rules:
//   - The seller receives the base total; under variants where the agent is
//     paid from seller proceeds, the delivery fee is carved out of it.
//   - The assigned agent receives the delivery fee; orders that complete
//     without an agent pay no fee.
//   - The platform keeps the remainder of the held amount. A negative
//     remainder means the stored monetary state is corrupt and the split
//     fails instead of minting money.
type SettlementSplitter struct{}

// NewSettlementSplitter creates a new SettlementSplitter instance.
func NewSettlementSplitter() SettlementSplitter {
	return SettlementSplitter{}
}

// Split plans the three-way payout of a held escrow for its order.
//
// Returns:
//   - escrow.Settlement: seller, agent and platform shares summing to the
//     held amount
//   - error: validation error when the escrow does not belong to the order
//     or the shares cannot be reconciled with the held amount
func (s SettlementSplitter) Split(ord *order.Order, held *escrow.Escrow) (escrow.Settlement, error) {
	if err := s.match(ord, held); err != nil {
		return escrow.Settlement{}, err
	}

	sellerAmount := ord.BaseTotal()
	agentAmount, err := kernel.NewMoney(0, ord.Currency())
	if err != nil {
		return escrow.Settlement{}, err
	}

	agentID := ord.Agent()
	if agentID != nil {
		agentAmount = ord.DeliveryFee()
		if ord.Variant().Policy().AgentPaidFromSeller() {
			sellerAmount, err = sellerAmount.Sub(ord.DeliveryFee())
			if err != nil {
				return escrow.Settlement{}, fmt.Errorf("seller share for order %s: %w", ord.ID(), err)
			}
		}
	}

	paidOut, err := sellerAmount.Add(agentAmount)
	if err != nil {
		return escrow.Settlement{}, err
	}

	platformAmount, err := held.Amount().Sub(paidOut)
	if err != nil {
		return escrow.Settlement{}, fmt.Errorf("platform share for order %s: %w", ord.ID(), err)
	}

	return escrow.NewSettlement(ord.ID(), ord.Seller(), sellerAmount, agentID, agentAmount, platformAmount)
}

// Refund returns the amount a refund credits back to the buyer: the full
// held amount, regardless of variant or assigned agent.
func (s SettlementSplitter) Refund(ord *order.Order, held *escrow.Escrow) (kernel.Money, error) {
	if err := s.match(ord, held); err != nil {
		return kernel.Money{}, err
	}
	return held.Amount(), nil
}

// match ensures both aggregates are constructed and the escrow belongs to
// the order.
func (s SettlementSplitter) match(ord *order.Order, held *escrow.Escrow) error {
	if err := ord.Validate(); err != nil {
		return err
	}
	if err := held.Validate(); err != nil {
		return err
	}
	if !held.OrderID().IsEqual(ord.ID()) {
		return errs.NewValueIsInvalidErrorWithCause(
			"escrow is invalid",
			fmt.Errorf("escrow for order %s cannot settle order %s", held.OrderID(), ord.ID()),
		)
	}
	return nil
}
