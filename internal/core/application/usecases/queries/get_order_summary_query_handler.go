package queries

import (
	"context"
	"database/sql"

	"settlement/internal/core/domain/model/escrow"
	"settlement/internal/core/domain/model/kernel"
	"settlement/internal/core/domain/model/order"
	"settlement/internal/core/domain/model/payout"
	"settlement/internal/pkg/errs"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetOrderSummaryQueryHandler retrieves one order's settlement view from the
// database. Uses direct SQL for optimal read performance in the CQRS
// pattern: one row joined across orders, escrows and release requests
// instead of three aggregate loads.
//
// Example:
//
//	handler := NewGetOrderSummaryQueryHandler(db)
//	query, _ := NewGetOrderSummaryQuery(orderID)
//
//	summary, err := handler.Handle(ctx, query)
//	if err != nil {
//	    log.Printf("Failed to get order summary: %v", err)
//	    return err
//	}
//
//	fmt.Printf("Order %s holds %d %s\n",
//	    summary.ID, summary.HeldAmount, summary.Currency)
type GetOrderSummaryQueryHandler struct {
	db *gorm.DB
}

// NewGetOrderSummaryQueryHandler creates a handler for order summary queries.
// Requires a GORM database connection for query execution.
func NewGetOrderSummaryQueryHandler(db *gorm.DB) GetOrderSummaryQueryHandler {
	return GetOrderSummaryQueryHandler{db: db}
}

// Handle executes the query to retrieve the order's settlement view.
// Returns errs.ErrObjectNotFound when the order does not exist.
func (h GetOrderSummaryQueryHandler) Handle(
	ctx context.Context,
	query GetOrderSummaryQuery,
) (GetOrderSummaryQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return GetOrderSummaryQueryResponse{}, err
	}

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			o.id,
			o.buyer_id,
			o.seller_id,
			o.agent_id,
			o.variant,
			o.status,
			o.currency,
			o.base_total,
			o.display_total,
			o.commission_total,
			o.delivery_fee,
			o.release_eligible_at,
			o.created_at,
			e.status,
			e.amount,
			EXISTS (
				SELECT 1 FROM release_requests r
				WHERE r.order_id = o.id AND r.status = ?
			)
		FROM orders o
		LEFT JOIN escrows e ON e.order_id = o.id
		WHERE o.id = ?
	`, payout.StatusPending, query.OrderID().Bytes()).Rows()
	if err != nil {
		return GetOrderSummaryQueryResponse{}, err
	}
	defer rows.Close()

	if !rows.Next() {
		if err = rows.Err(); err != nil {
			return GetOrderSummaryQueryResponse{}, err
		}
		return GetOrderSummaryQueryResponse{}, errs.NewObjectNotFoundError("order", query.OrderID())
	}

	var summary GetOrderSummaryQueryResponse
	var id, buyerID, sellerID uuid.UUID
	var agentID uuid.NullUUID
	var variant, status int
	var releaseEligibleAt sql.NullTime
	var escrowStatus, escrowAmount sql.NullInt64

	err = rows.Scan(
		&id,
		&buyerID,
		&sellerID,
		&agentID,
		&variant,
		&status,
		&summary.Currency,
		&summary.BaseTotal,
		&summary.DisplayTotal,
		&summary.CommissionTotal,
		&summary.DeliveryFee,
		&releaseEligibleAt,
		&summary.CreatedAt,
		&escrowStatus,
		&escrowAmount,
		&summary.HasPendingRequest,
	)
	if err != nil {
		return GetOrderSummaryQueryResponse{}, err
	}

	orderID, idErr := kernel.UUIDFromBytes(id[:])
	if idErr != nil {
		return GetOrderSummaryQueryResponse{}, idErr
	}
	summary.ID = orderID

	buyer, idErr := kernel.UUIDFromBytes(buyerID[:])
	if idErr != nil {
		return GetOrderSummaryQueryResponse{}, idErr
	}
	summary.BuyerID = buyer

	seller, idErr := kernel.UUIDFromBytes(sellerID[:])
	if idErr != nil {
		return GetOrderSummaryQueryResponse{}, idErr
	}
	summary.SellerID = seller

	if agentID.Valid {
		agent, idErr := kernel.UUIDFromBytes(agentID.UUID[:])
		if idErr != nil {
			return GetOrderSummaryQueryResponse{}, idErr
		}
		summary.AgentID = &agent
	}

	summary.Variant = order.Variant(variant).String()
	summary.Status = order.Status(status).String()

	if escrowStatus.Valid {
		summary.EscrowStatus = escrow.Status(escrowStatus.Int64).String()
		summary.HeldAmount = escrowAmount.Int64
	} else {
		summary.EscrowStatus = "none"
	}

	if releaseEligibleAt.Valid {
		summary.ReleaseEligibleAt = &releaseEligibleAt.Time
	}

	if err = rows.Err(); err != nil {
		return GetOrderSummaryQueryResponse{}, err
	}

	return summary, nil
}
