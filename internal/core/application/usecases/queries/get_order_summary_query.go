// Package queries contains read operations for retrieving system state.
// Implements the Query pattern for read operations in the CQRS architecture.
// Queries return optimized read models for specific use cases.
package queries

import (
	"errors"
	"time"

	"settlement/internal/core/domain/model/kernel"
	"settlement/internal/pkg/guard"
)

var (
	ErrGetOrderSummaryQueryIsNotConstructed = errors.New(
		"GetOrderSummaryQuery must be created via NewGetOrderSummaryQuery constructor",
	)
)

// GetOrderSummaryQuery retrieves the settlement view of one order: its
// lifecycle status, priced totals, the state of the escrow hold and whether
// a release request awaits a decision.
//
// Example:
//
//	query, err := NewGetOrderSummaryQuery(orderID)
//	if err != nil {
//	    return err
//	}
//	handler := NewGetOrderSummaryQueryHandler(db)
//
//	summary, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return fmt.Errorf("failed to retrieve order summary: %w", err)
//	}
//
//	fmt.Printf("Order %s is %s, escrow %s\n",
//	    summary.ID, summary.Status, summary.EscrowStatus)
type GetOrderSummaryQuery struct {
	orderID kernel.UUID

	guard guard.ConstructorGuard
}

// NewGetOrderSummaryQuery creates a query for one order's settlement view.
// Validates the order ID.
func NewGetOrderSummaryQuery(orderID kernel.UUID) (GetOrderSummaryQuery, error) {
	if err := orderID.Validate(); err != nil {
		return GetOrderSummaryQuery{}, err
	}

	return GetOrderSummaryQuery{
		orderID: orderID,
		guard:   guard.NewConstructorGuard(),
	}, nil
}

// OrderID returns the identifier of the order to summarize.
func (q GetOrderSummaryQuery) OrderID() kernel.UUID {
	return q.orderID
}

// Validate ensures the query was created through the constructor.
// Returns ErrGetOrderSummaryQueryIsNotConstructed if validation fails.
func (q GetOrderSummaryQuery) Validate() error {
	return q.guard.Validate(ErrGetOrderSummaryQueryIsNotConstructed)
}

// GetOrderSummaryQueryResponse represents one order in the settlement read
// model. Monetary fields carry minor units in the order's currency. The
// escrow status reads "none" until a payment hold exists.
type GetOrderSummaryQueryResponse struct {
	ID                kernel.UUID
	BuyerID           kernel.UUID
	SellerID          kernel.UUID
	AgentID           *kernel.UUID
	Variant           string
	Status            string
	Currency          string
	BaseTotal         int64
	DisplayTotal      int64
	CommissionTotal   int64
	DeliveryFee       int64
	EscrowStatus      string
	HeldAmount        int64
	HasPendingRequest bool
	ReleaseEligibleAt *time.Time
	CreatedAt         time.Time
}
