package queries

import (
	"errors"
	"time"

	"settlement/internal/core/domain/model/kernel"
	"settlement/internal/pkg/guard"
)

var (
	ErrGetPendingReleaseRequestsQueryIsNotConstructed = errors.New(
		"GetPendingReleaseRequestsQuery must be created via NewGetPendingReleaseRequestsQuery constructor",
	)
)

// GetPendingReleaseRequestsQuery retrieves the admin decision queue: every
// release request still awaiting an approval or a rejection, oldest first.
//
// Example:
//
//	query := NewGetPendingReleaseRequestsQuery()
//	handler := NewGetPendingReleaseRequestsQueryHandler(db)
//
//	pending, err := handler.Handle(ctx, query)
//	if err != nil {
//	    return fmt.Errorf("failed to get pending requests: %w", err)
//	}
//
//	fmt.Printf("%d requests awaiting decision\n", len(pending))
type GetPendingReleaseRequestsQuery struct {
	guard guard.ConstructorGuard
}

// NewGetPendingReleaseRequestsQuery creates a query for the decision queue.
// This is a parameterless query that fetches every undecided request.
func NewGetPendingReleaseRequestsQuery() GetPendingReleaseRequestsQuery {
	return GetPendingReleaseRequestsQuery{guard: guard.NewConstructorGuard()}
}

// Validate ensures the query was created through the constructor.
// Returns ErrGetPendingReleaseRequestsQueryIsNotConstructed if validation fails.
func (q GetPendingReleaseRequestsQuery) Validate() error {
	return q.guard.Validate(ErrGetPendingReleaseRequestsQueryIsNotConstructed)
}

// GetPendingReleaseRequestsQueryResponse represents one undecided release
// request together with the order context an admin needs to decide it.
type GetPendingReleaseRequestsQueryResponse struct {
	RequestID     kernel.UUID
	OrderID       kernel.UUID
	RequestedByID kernel.UUID
	RequestedRole string
	Reason        string
	CreatedAt     time.Time
	OrderStatus   string
	DisplayTotal  int64
	Currency      string
}
