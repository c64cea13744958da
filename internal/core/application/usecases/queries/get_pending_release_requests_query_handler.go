package queries

import (
	"context"

	"settlement/internal/core/domain/model/kernel"
	"settlement/internal/core/domain/model/order"
	"settlement/internal/core/domain/model/payout"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GetPendingReleaseRequestsQueryHandler retrieves the admin decision queue
// from the database. Joins each request with its order so the admin sees the
// order status and value without a second lookup.
//
// Example:
//
//	handler := NewGetPendingReleaseRequestsQueryHandler(db)
//	query := NewGetPendingReleaseRequestsQuery()
//
//	pending, err := handler.Handle(ctx, query)
//	if err != nil {
//	    log.Printf("Failed to get pending requests: %v", err)
//	    return err
//	}
//
//	for _, request := range pending {
//	    fmt.Printf("%s asks to release order %s\n",
//	        request.RequestedRole, request.OrderID)
//	}
type GetPendingReleaseRequestsQueryHandler struct {
	db *gorm.DB
}

// NewGetPendingReleaseRequestsQueryHandler creates a handler for decision
// queue queries. Requires a GORM database connection for query execution.
func NewGetPendingReleaseRequestsQueryHandler(db *gorm.DB) GetPendingReleaseRequestsQueryHandler {
	return GetPendingReleaseRequestsQueryHandler{db: db}
}

// Handle executes the query to retrieve all pending release requests.
// Returns the queue oldest first so long-waiting requests surface on top.
func (h GetPendingReleaseRequestsQueryHandler) Handle(
	ctx context.Context,
	query GetPendingReleaseRequestsQuery,
) ([]GetPendingReleaseRequestsQueryResponse, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	pending := make([]GetPendingReleaseRequestsQueryResponse, 0)

	rows, err := h.db.WithContext(ctx).Raw(`
		SELECT
			r.id,
			r.order_id,
			r.requested_by_id,
			r.requested_role,
			r.reason,
			r.created_at,
			o.status,
			o.display_total,
			o.currency
		FROM release_requests r
		JOIN orders o ON o.id = r.order_id
		WHERE r.status = ?
		ORDER BY r.created_at
	`, payout.StatusPending).Rows()
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var request GetPendingReleaseRequestsQueryResponse
		var id, orderID, requestedByID uuid.UUID
		var requestedRole, orderStatus int

		err = rows.Scan(
			&id,
			&orderID,
			&requestedByID,
			&requestedRole,
			&request.Reason,
			&request.CreatedAt,
			&orderStatus,
			&request.DisplayTotal,
			&request.Currency,
		)
		if err != nil {
			return nil, err
		}

		requestID, idErr := kernel.UUIDFromBytes(id[:])
		if idErr != nil {
			return nil, idErr
		}
		request.RequestID = requestID

		requestOrderID, idErr := kernel.UUIDFromBytes(orderID[:])
		if idErr != nil {
			return nil, idErr
		}
		request.OrderID = requestOrderID

		requesterID, idErr := kernel.UUIDFromBytes(requestedByID[:])
		if idErr != nil {
			return nil, idErr
		}
		request.RequestedByID = requesterID

		request.RequestedRole = kernel.Role(requestedRole).String()
		request.OrderStatus = order.Status(orderStatus).String()
		pending = append(pending, request)
	}

	if err = rows.Err(); err != nil {
		return nil, err
	}

	return pending, nil
}
