package http

import (
	"errors"
	"net/http"
	"time"

	"settlement/internal/core/application/usecases/commands"
	"settlement/internal/core/application/usecases/queries"
	"settlement/internal/core/domain/model/escrow"
	"settlement/internal/core/domain/model/kernel"
	"settlement/internal/core/domain/model/order"
	"settlement/internal/core/domain/model/payout"
	"settlement/internal/core/domain/model/wallet"
	"settlement/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// Actor identity headers. The gateway in front of this service authenticates
// the caller and forwards the principal in these headers.
const (
	HeaderActorID   = "X-Actor-Id"
	HeaderActorRole = "X-Actor-Role"
)

// Server handles HTTP requests for the settlement engine.
// It coordinates between HTTP handlers and application use cases.
type Server struct {
	// Command handlers
	createOrderHandler             commands.CreateOrderCommandHandler
	holdEscrowHandler              commands.HoldEscrowCommandHandler
	transitionOrderHandler         commands.TransitionOrderCommandHandler
	claimOrderHandler              commands.ClaimOrderCommandHandler
	requestReleaseHandler          commands.RequestReleaseCommandHandler
	approveReleaseHandler          commands.ApproveReleaseCommandHandler
	rejectReleaseHandler           commands.RejectReleaseCommandHandler
	confirmReceiptHandler          commands.ConfirmReceiptCommandHandler
	refundOrderHandler             commands.RefundOrderCommandHandler
	updateCommissionSettingHandler commands.UpdateCommissionSettingCommandHandler

	// Query handlers
	getOrderSummaryHandler           queries.GetOrderSummaryQueryHandler
	getPendingReleaseRequestsHandler queries.GetPendingReleaseRequestsQueryHandler
}

// NewServer creates a new HTTP server with the required command and query handlers.
func NewServer(
	createOrderHandler commands.CreateOrderCommandHandler,
	holdEscrowHandler commands.HoldEscrowCommandHandler,
	transitionOrderHandler commands.TransitionOrderCommandHandler,
	claimOrderHandler commands.ClaimOrderCommandHandler,
	requestReleaseHandler commands.RequestReleaseCommandHandler,
	approveReleaseHandler commands.ApproveReleaseCommandHandler,
	rejectReleaseHandler commands.RejectReleaseCommandHandler,
	confirmReceiptHandler commands.ConfirmReceiptCommandHandler,
	refundOrderHandler commands.RefundOrderCommandHandler,
	updateCommissionSettingHandler commands.UpdateCommissionSettingCommandHandler,
	getOrderSummaryHandler queries.GetOrderSummaryQueryHandler,
	getPendingReleaseRequestsHandler queries.GetPendingReleaseRequestsQueryHandler,
) *Server {
	return &Server{
		createOrderHandler:               createOrderHandler,
		holdEscrowHandler:                holdEscrowHandler,
		transitionOrderHandler:           transitionOrderHandler,
		claimOrderHandler:                claimOrderHandler,
		requestReleaseHandler:            requestReleaseHandler,
		approveReleaseHandler:            approveReleaseHandler,
		rejectReleaseHandler:             rejectReleaseHandler,
		confirmReceiptHandler:            confirmReceiptHandler,
		refundOrderHandler:               refundOrderHandler,
		updateCommissionSettingHandler:   updateCommissionSettingHandler,
		getOrderSummaryHandler:           getOrderSummaryHandler,
		getPendingReleaseRequestsHandler: getPendingReleaseRequestsHandler,
	}
}

// RegisterRoutes attaches all settlement endpoints to the echo instance.
func (s *Server) RegisterRoutes(e *echo.Echo) {
	v1 := e.Group("/api/v1")

	v1.POST("/orders", s.CreateOrder)
	v1.GET("/orders/:id", s.GetOrderSummary)
	v1.POST("/orders/:id/escrow", s.HoldEscrow)
	v1.PATCH("/orders/:id/status", s.TransitionOrder)
	v1.POST("/orders/:id/claim", s.ClaimOrder)
	v1.POST("/orders/:id/release-request", s.RequestRelease)
	v1.POST("/orders/:id/refund", s.RefundOrder)

	v1.GET("/release-requests/pending", s.GetPendingReleaseRequests)
	v1.POST("/release-requests/:id/approve", s.ApproveRelease)
	v1.POST("/release-requests/:id/reject", s.RejectRelease)

	v1.PUT("/commission-settings/:key", s.UpdateCommissionSetting)
}

// OrderItemRequest is one checkout line in a create-order request.
type OrderItemRequest struct {
	ItemID        string `json:"item_id"`
	Quantity      int    `json:"quantity"`
	UnitBasePrice int64  `json:"unit_base_price"`
}

// CreateOrderRequest is the body of POST /api/v1/orders.
type CreateOrderRequest struct {
	BuyerID     string             `json:"buyer_id"`
	SellerID    string             `json:"seller_id"`
	Variant     string             `json:"variant"`
	Currency    string             `json:"currency"`
	Items       []OrderItemRequest `json:"items"`
	AgentFeeKey string             `json:"agent_fee_key"`
	Tax         int64              `json:"tax"`
	Discount    int64              `json:"discount"`
}

// TransitionOrderRequest is the body of PATCH /api/v1/orders/:id/status.
type TransitionOrderRequest struct {
	Target string `json:"target"`
}

// ReasonRequest carries the free-text reason for release requests and refunds.
type ReasonRequest struct {
	Reason string `json:"reason"`
}

// DecisionRequest carries the admin notes for release decisions.
type DecisionRequest struct {
	Notes string `json:"notes"`
}

// UpdateCommissionSettingRequest is the body of PUT /api/v1/commission-settings/:key.
// Rate is a decimal string such as "0.15"; fees are minor units.
type UpdateCommissionSettingRequest struct {
	Rate   string `json:"rate"`
	MinFee int64  `json:"min_fee"`
	MaxFee int64  `json:"max_fee"`
}

// IDResponse returns the identifier of a newly created resource.
type IDResponse struct {
	ID string `json:"id"`
}

// ErrorResponse is the uniform error body for all endpoints.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// OrderSummaryResponse is the JSON shape of GET /api/v1/orders/:id.
type OrderSummaryResponse struct {
	ID                string     `json:"id"`
	BuyerID           string     `json:"buyer_id"`
	SellerID          string     `json:"seller_id"`
	AgentID           *string    `json:"agent_id,omitempty"`
	Variant           string     `json:"variant"`
	Status            string     `json:"status"`
	Currency          string     `json:"currency"`
	BaseTotal         int64      `json:"base_total"`
	DisplayTotal      int64      `json:"display_total"`
	CommissionTotal   int64      `json:"commission_total"`
	DeliveryFee       int64      `json:"delivery_fee"`
	EscrowStatus      string     `json:"escrow_status"`
	HeldAmount        int64      `json:"held_amount"`
	HasPendingRequest bool       `json:"has_pending_request"`
	ReleaseEligibleAt *time.Time `json:"release_eligible_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}

// PendingReleaseRequestResponse is one row of GET /api/v1/release-requests/pending.
type PendingReleaseRequestResponse struct {
	RequestID     string    `json:"request_id"`
	OrderID       string    `json:"order_id"`
	RequestedByID string    `json:"requested_by_id"`
	RequestedRole string    `json:"requested_role"`
	Reason        string    `json:"reason"`
	CreatedAt     time.Time `json:"created_at"`
	OrderStatus   string    `json:"order_status"`
	DisplayTotal  int64     `json:"display_total"`
	Currency      string    `json:"currency"`
}

// CreateOrder handles POST /api/v1/orders - registers a new order at checkout.
func (s *Server) CreateOrder(ctx echo.Context) error {
	var request CreateOrderRequest
	if err := ctx.Bind(&request); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	buyerID, err := kernel.UUIDFromString(request.BuyerID)
	if err != nil {
		return badRequest(ctx, "Invalid buyer id: "+request.BuyerID)
	}
	sellerID, err := kernel.UUIDFromString(request.SellerID)
	if err != nil {
		return badRequest(ctx, "Invalid seller id: "+request.SellerID)
	}
	variant, err := order.VariantFromString(request.Variant)
	if err != nil {
		return badRequest(ctx, "Invalid variant: "+request.Variant)
	}
	currency, err := kernel.NewCurrency(request.Currency)
	if err != nil {
		return badRequest(ctx, "Invalid currency: "+request.Currency)
	}

	items := make([]commands.OrderItem, 0, len(request.Items))
	for _, item := range request.Items {
		itemID, itemErr := kernel.UUIDFromString(item.ItemID)
		if itemErr != nil {
			return badRequest(ctx, "Invalid item id: "+item.ItemID)
		}
		items = append(items, commands.OrderItem{
			ItemID:        itemID,
			Quantity:      item.Quantity,
			UnitBasePrice: item.UnitBasePrice,
		})
	}

	orderID := kernel.NewUUID()
	cmd, err := commands.NewCreateOrderCommand(
		orderID, buyerID, sellerID, variant, currency,
		items, request.AgentFeeKey, request.Tax, request.Discount,
	)
	if err != nil {
		return badRequest(ctx, "Invalid order data: "+err.Error())
	}

	if err := s.createOrderHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return mapDomainError(ctx, err)
	}

	return ctx.JSON(http.StatusCreated, IDResponse{ID: orderID.String()})
}

// HoldEscrow handles POST /api/v1/orders/:id/escrow - places the payment hold.
// The buyer funds it from their wallet; an admin confirms an off-platform
// payment proof without moving wallet funds.
func (s *Server) HoldEscrow(ctx echo.Context) error {
	orderID, err := pathUUID(ctx, "id")
	if err != nil {
		return badRequest(ctx, "Invalid order id")
	}
	actorID, role, err := actorFromHeaders(ctx)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	cmd, err := commands.NewHoldEscrowCommand(orderID, actorID, role)
	if err != nil {
		return badRequest(ctx, "Invalid escrow data: "+err.Error())
	}

	if err := s.holdEscrowHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return mapDomainError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// TransitionOrder handles PATCH /api/v1/orders/:id/status - moves the order
// along its lifecycle. A target of "completed" runs the buyer receipt
// confirmation, which settles the escrow in the same transaction.
func (s *Server) TransitionOrder(ctx echo.Context) error {
	orderID, err := pathUUID(ctx, "id")
	if err != nil {
		return badRequest(ctx, "Invalid order id")
	}
	actorID, role, err := actorFromHeaders(ctx)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	var request TransitionOrderRequest
	if err := ctx.Bind(&request); err != nil {
		return badRequest(ctx, "Invalid request body")
	}
	target, err := order.StatusFromString(request.Target)
	if err != nil {
		return badRequest(ctx, "Invalid target status: "+request.Target)
	}

	if target == order.Completed {
		cmd, cmdErr := commands.NewConfirmReceiptCommand(orderID, actorID, role)
		if cmdErr != nil {
			return badRequest(ctx, "Invalid receipt data: "+cmdErr.Error())
		}
		if handleErr := s.confirmReceiptHandler.Handle(ctx.Request().Context(), cmd); handleErr != nil {
			return mapDomainError(ctx, handleErr)
		}
		return ctx.NoContent(http.StatusNoContent)
	}

	cmd, err := commands.NewTransitionOrderCommand(orderID, target, actorID, role)
	if err != nil {
		return badRequest(ctx, "Invalid transition data: "+err.Error())
	}

	if err := s.transitionOrderHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return mapDomainError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// ClaimOrder handles POST /api/v1/orders/:id/claim - atomically assigns the
// calling agent to a confirmed order.
func (s *Server) ClaimOrder(ctx echo.Context) error {
	orderID, err := pathUUID(ctx, "id")
	if err != nil {
		return badRequest(ctx, "Invalid order id")
	}
	actorID, role, err := actorFromHeaders(ctx)
	if err != nil {
		return badRequest(ctx, err.Error())
	}
	if role != kernel.RoleAgent {
		return ctx.JSON(http.StatusForbidden, ErrorResponse{
			Code:    "role_not_allowed",
			Message: "Only agents can claim orders",
		})
	}

	cmd, err := commands.NewClaimOrderCommand(orderID, actorID)
	if err != nil {
		return badRequest(ctx, "Invalid claim data: "+err.Error())
	}

	if err := s.claimOrderHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return mapDomainError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// RequestRelease handles POST /api/v1/orders/:id/release-request - files a
// release request for admin review.
func (s *Server) RequestRelease(ctx echo.Context) error {
	orderID, err := pathUUID(ctx, "id")
	if err != nil {
		return badRequest(ctx, "Invalid order id")
	}
	actorID, role, err := actorFromHeaders(ctx)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	var request ReasonRequest
	if err := ctx.Bind(&request); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	cmd, err := commands.NewRequestReleaseCommand(orderID, actorID, role, request.Reason)
	if err != nil {
		return badRequest(ctx, "Invalid release request: "+err.Error())
	}

	if err := s.requestReleaseHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return mapDomainError(ctx, err)
	}

	return ctx.NoContent(http.StatusCreated)
}

// ApproveRelease handles POST /api/v1/release-requests/:id/approve - settles
// the escrow of the requested order.
func (s *Server) ApproveRelease(ctx echo.Context) error {
	requestID, err := pathUUID(ctx, "id")
	if err != nil {
		return badRequest(ctx, "Invalid request id")
	}
	actorID, role, err := actorFromHeaders(ctx)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	var request DecisionRequest
	if err := ctx.Bind(&request); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	cmd, err := commands.NewApproveReleaseCommand(requestID, actorID, role, request.Notes)
	if err != nil {
		return badRequest(ctx, "Invalid approval data: "+err.Error())
	}

	if err := s.approveReleaseHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return mapDomainError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// RejectRelease handles POST /api/v1/release-requests/:id/reject - declines a
// pending release request with mandatory notes.
func (s *Server) RejectRelease(ctx echo.Context) error {
	requestID, err := pathUUID(ctx, "id")
	if err != nil {
		return badRequest(ctx, "Invalid request id")
	}
	actorID, role, err := actorFromHeaders(ctx)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	var request DecisionRequest
	if err := ctx.Bind(&request); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	cmd, err := commands.NewRejectReleaseCommand(requestID, actorID, role, request.Notes)
	if err != nil {
		return badRequest(ctx, "Invalid rejection data: "+err.Error())
	}

	if err := s.rejectReleaseHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return mapDomainError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// RefundOrder handles POST /api/v1/orders/:id/refund - cancels the order and
// returns the full held amount to the buyer.
func (s *Server) RefundOrder(ctx echo.Context) error {
	orderID, err := pathUUID(ctx, "id")
	if err != nil {
		return badRequest(ctx, "Invalid order id")
	}
	actorID, role, err := actorFromHeaders(ctx)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	var request ReasonRequest
	if err := ctx.Bind(&request); err != nil {
		return badRequest(ctx, "Invalid request body")
	}

	cmd, err := commands.NewRefundOrderCommand(orderID, actorID, role, request.Reason)
	if err != nil {
		return badRequest(ctx, "Invalid refund data: "+err.Error())
	}

	if err := s.refundOrderHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return mapDomainError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// UpdateCommissionSetting handles PUT /api/v1/commission-settings/:key -
// upserts a tariff setting.
func (s *Server) UpdateCommissionSetting(ctx echo.Context) error {
	key := ctx.Param("key")
	actorID, role, err := actorFromHeaders(ctx)
	if err != nil {
		return badRequest(ctx, err.Error())
	}

	var request UpdateCommissionSettingRequest
	if err := ctx.Bind(&request); err != nil {
		return badRequest(ctx, "Invalid request body")
	}
	rate, err := decimal.NewFromString(request.Rate)
	if err != nil {
		return badRequest(ctx, "Invalid rate: "+request.Rate)
	}

	cmd, err := commands.NewUpdateCommissionSettingCommand(
		key, rate, request.MinFee, request.MaxFee, actorID, role)
	if err != nil {
		return badRequest(ctx, "Invalid setting data: "+err.Error())
	}

	if err := s.updateCommissionSettingHandler.Handle(ctx.Request().Context(), cmd); err != nil {
		return mapDomainError(ctx, err)
	}

	return ctx.NoContent(http.StatusNoContent)
}

// GetOrderSummary handles GET /api/v1/orders/:id - retrieves the order with
// its escrow state and pending-request flag.
func (s *Server) GetOrderSummary(ctx echo.Context) error {
	orderID, err := pathUUID(ctx, "id")
	if err != nil {
		return badRequest(ctx, "Invalid order id")
	}

	query, err := queries.NewGetOrderSummaryQuery(orderID)
	if err != nil {
		return badRequest(ctx, "Invalid query: "+err.Error())
	}

	summary, err := s.getOrderSummaryHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return mapDomainError(ctx, err)
	}

	response := OrderSummaryResponse{
		ID:                summary.ID.String(),
		BuyerID:           summary.BuyerID.String(),
		SellerID:          summary.SellerID.String(),
		Variant:           summary.Variant,
		Status:            summary.Status,
		Currency:          summary.Currency,
		BaseTotal:         summary.BaseTotal,
		DisplayTotal:      summary.DisplayTotal,
		CommissionTotal:   summary.CommissionTotal,
		DeliveryFee:       summary.DeliveryFee,
		EscrowStatus:      summary.EscrowStatus,
		HeldAmount:        summary.HeldAmount,
		HasPendingRequest: summary.HasPendingRequest,
		ReleaseEligibleAt: summary.ReleaseEligibleAt,
		CreatedAt:         summary.CreatedAt,
	}
	if summary.AgentID != nil {
		agentID := summary.AgentID.String()
		response.AgentID = &agentID
	}

	return ctx.JSON(http.StatusOK, response)
}

// GetPendingReleaseRequests handles GET /api/v1/release-requests/pending -
// retrieves the admin review queue, oldest first.
func (s *Server) GetPendingReleaseRequests(ctx echo.Context) error {
	query := queries.NewGetPendingReleaseRequestsQuery()

	pending, err := s.getPendingReleaseRequestsHandler.Handle(ctx.Request().Context(), query)
	if err != nil {
		return mapDomainError(ctx, err)
	}

	response := make([]PendingReleaseRequestResponse, len(pending))
	for i, request := range pending {
		response[i] = PendingReleaseRequestResponse{
			RequestID:     request.RequestID.String(),
			OrderID:       request.OrderID.String(),
			RequestedByID: request.RequestedByID.String(),
			RequestedRole: request.RequestedRole,
			Reason:        request.Reason,
			CreatedAt:     request.CreatedAt,
			OrderStatus:   request.OrderStatus,
			DisplayTotal:  request.DisplayTotal,
			Currency:      request.Currency,
		}
	}

	return ctx.JSON(http.StatusOK, response)
}

func pathUUID(ctx echo.Context, name string) (kernel.UUID, error) {
	return kernel.UUIDFromString(ctx.Param(name))
}

func actorFromHeaders(ctx echo.Context) (kernel.UUID, kernel.Role, error) {
	actorID, err := kernel.UUIDFromString(ctx.Request().Header.Get(HeaderActorID))
	if err != nil {
		return kernel.UUID{}, kernel.RoleUnknown, errors.New("missing or invalid " + HeaderActorID + " header")
	}

	role, err := kernel.RoleFromString(ctx.Request().Header.Get(HeaderActorRole))
	if err != nil {
		return kernel.UUID{}, kernel.RoleUnknown, errors.New("missing or invalid " + HeaderActorRole + " header")
	}

	return actorID, role, nil
}

func badRequest(ctx echo.Context, message string) error {
	return ctx.JSON(http.StatusBadRequest, ErrorResponse{
		Code:    "invalid_request",
		Message: message,
	})
}

// mapDomainError translates domain and application errors into the HTTP
// error taxonomy. Unrecognized errors surface as 500 without leaking
// internals.
func mapDomainError(ctx echo.Context, err error) error {
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		return respondError(ctx, http.StatusNotFound, "not_found", err)
	case errors.Is(err, order.ErrRoleNotAllowed):
		return respondError(ctx, http.StatusForbidden, "role_not_allowed", err)
	case errors.Is(err, wallet.ErrInsufficientFunds):
		return respondError(ctx, http.StatusPaymentRequired, "insufficient_funds", err)
	case errors.Is(err, errs.ErrVersionIsInvalid):
		return respondError(ctx, http.StatusConflict, "conflict", err)
	case errors.Is(err, commands.ErrEscrowAlreadyHeld):
		return respondError(ctx, http.StatusConflict, "already_held", err)
	case errors.Is(err, escrow.ErrNotHeld):
		return respondError(ctx, http.StatusConflict, "not_held", err)
	case errors.Is(err, order.ErrAlreadyClaimed):
		return respondError(ctx, http.StatusConflict, "already_claimed", err)
	case errors.Is(err, commands.ErrDuplicatePendingRequest):
		return respondError(ctx, http.StatusConflict, "duplicate_pending", err)
	case errors.Is(err, payout.ErrRequestNotPending):
		return respondError(ctx, http.StatusConflict, "not_pending", err)
	case errors.Is(err, order.ErrIllegalTransition):
		return respondError(ctx, http.StatusUnprocessableEntity, "illegal_transition", err)
	case errors.Is(err, order.ErrReleaseNotEligible):
		return respondError(ctx, http.StatusUnprocessableEntity, "not_eligible", err)
	case errors.Is(err, commands.ErrOrderNotDelivered):
		return respondError(ctx, http.StatusUnprocessableEntity, "not_delivered", err)
	case errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsOutOfRange),
		errors.Is(err, commands.ErrReasonIsRequired),
		errors.Is(err, commands.ErrDecisionNotesAreRequired),
		errors.Is(err, commands.ErrSettingKeyIsUnknown):
		return respondError(ctx, http.StatusBadRequest, "invalid_request", err)
	default:
		return ctx.JSON(http.StatusInternalServerError, ErrorResponse{
			Code:    "internal",
			Message: "Internal server error",
		})
	}
}

func respondError(ctx echo.Context, status int, code string, err error) error {
	return ctx.JSON(status, ErrorResponse{
		Code:    code,
		Message: err.Error(),
	})
}
