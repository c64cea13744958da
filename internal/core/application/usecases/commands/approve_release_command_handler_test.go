package commands_test

import (
	"testing"
	"time"

	"settlement/internal/core/application/usecases/commands"
	"settlement/internal/core/domain/events"
	"settlement/internal/core/domain/model/escrow"
	"settlement/internal/core/domain/model/kernel"
	"settlement/internal/core/domain/model/order"
	"settlement/internal/core/domain/model/payout"
	"settlement/internal/core/domain/model/wallet"
	"settlement/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestApproveReleaseCommandHandler_Handle_SellerRequest_Success(t *testing.T) {
	ctx := t.Context()
	orderID := kernel.NewUUID()
	sellerID := kernel.NewUUID()
	agentID := kernel.NewUUID()
	adminID := kernel.NewUUID()
	ord := storedOrder(t, orderID, kernel.NewUUID(), sellerID, &agentID, order.VariantStandard, order.Delivered, past(time.Minute))
	held := heldEscrow(t, orderID)
	request := pendingRequest(t, orderID, actorOf(t, sellerID, kernel.RoleSeller))
	cmd, err := commands.NewApproveReleaseCommand(request.ID(), adminID, kernel.RoleAdmin, "verified with carrier")
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	escrowRepo := new(MockEscrowRepository)
	walletRepo := new(MockWalletRepository)
	requestRepo := new(MockReleaseRequestRepository)
	pub := new(MockEventPublisher)
	uow := new(MockUoW)
	uow.On("OrderRepository").Return(orderRepo)
	uow.On("EscrowRepository").Return(escrowRepo)
	uow.On("WalletRepository").Return(walletRepo)
	uow.On("ReleaseRequestRepository").Return(requestRepo)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		requestRepo.On("Get", ctx, request.ID()).Return(request, nil).Once(),
		orderRepo.On("Get", ctx, orderID).Return(ord, nil).Once(),
		escrowRepo.On("GetByOrderID", ctx, orderID).Return(held, nil).Once(),
		escrowRepo.On("Update", ctx, held).Return(nil).Once(),
		walletRepo.On("Credit", ctx, sellerID, usd(t, 1000)).Return(nil).Once(),
		walletRepo.On("Credit", ctx, agentID, usd(t, 150)).Return(nil).Once(),
		walletRepo.On("Credit", ctx, wallet.PlatformAccountID, usd(t, 210)).Return(nil).Once(),
		requestRepo.On("Update", ctx, request).Return(nil).Once(),
		orderRepo.On("Update", ctx, ord).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		pub.On("Publish", ctx, []events.DomainEvent{
			events.ReleaseDecided{RequestID: request.ID(), Approved: true},
			events.EscrowReleased{
				OrderID:          orderID,
				SellerAmount:     usd(t, 1000),
				AgentAmount:      usd(t, 150),
				CommissionAmount: usd(t, 210),
			},
			events.OrderStatusChanged{OrderID: orderID, From: order.Delivered, To: order.Completed},
		}).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockSettlementUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewApproveReleaseCommandHandler(factory, pub)
	require.NoError(t, h.Handle(ctx, cmd))

	assert.Equal(t, payout.StatusApproved, request.Status())
	assert.Equal(t, "verified with carrier", request.DecisionNotes())
	assert.Equal(t, escrow.StatusReleased, held.Status())
	assert.Equal(t, order.Completed, ord.Status())

	orderRepo.AssertExpectations(t)
	escrowRepo.AssertExpectations(t)
	walletRepo.AssertExpectations(t)
	requestRepo.AssertExpectations(t)
	pub.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestApproveReleaseCommandHandler_Handle_BuyerRequestWaivesGrace(t *testing.T) {
	ctx := t.Context()
	orderID := kernel.NewUUID()
	buyerID := kernel.NewUUID()
	sellerID := kernel.NewUUID()
	agentID := kernel.NewUUID()
	ord := storedOrder(t, orderID, buyerID, sellerID, &agentID, order.VariantStandard, order.Delivered, future(time.Hour))
	held := heldEscrow(t, orderID)
	request := pendingRequest(t, orderID, actorOf(t, buyerID, kernel.RoleBuyer))
	cmd, err := commands.NewApproveReleaseCommand(request.ID(), kernel.NewUUID(), kernel.RoleAdmin, "")
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	escrowRepo := new(MockEscrowRepository)
	walletRepo := new(MockWalletRepository)
	requestRepo := new(MockReleaseRequestRepository)
	pub := new(MockEventPublisher)
	uow := new(MockUoW)
	uow.On("OrderRepository").Return(orderRepo)
	uow.On("EscrowRepository").Return(escrowRepo)
	uow.On("WalletRepository").Return(walletRepo)
	uow.On("ReleaseRequestRepository").Return(requestRepo)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		requestRepo.On("Get", ctx, request.ID()).Return(request, nil).Once(),
		orderRepo.On("Get", ctx, orderID).Return(ord, nil).Once(),
		escrowRepo.On("GetByOrderID", ctx, orderID).Return(held, nil).Once(),
		escrowRepo.On("Update", ctx, held).Return(nil).Once(),
		walletRepo.On("Credit", ctx, sellerID, usd(t, 1000)).Return(nil).Once(),
		walletRepo.On("Credit", ctx, agentID, usd(t, 150)).Return(nil).Once(),
		walletRepo.On("Credit", ctx, wallet.PlatformAccountID, usd(t, 210)).Return(nil).Once(),
		requestRepo.On("Update", ctx, request).Return(nil).Once(),
		orderRepo.On("Update", ctx, ord).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		pub.On("Publish", ctx, mock.Anything).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockSettlementUoWFactory)
	factory.On("Create").Return(uow).Once()

	// The buyer asked for the release personally, so the wait that protects
	// the buyer does not apply.
	h := commands.NewApproveReleaseCommandHandler(factory, pub)
	require.NoError(t, h.Handle(ctx, cmd))

	assert.Equal(t, order.Completed, ord.Status())
	walletRepo.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestApproveReleaseCommandHandler_Handle_GracePeriodActive(t *testing.T) {
	ctx := t.Context()
	orderID := kernel.NewUUID()
	sellerID := kernel.NewUUID()
	agentID := kernel.NewUUID()
	ord := storedOrder(t, orderID, kernel.NewUUID(), sellerID, &agentID, order.VariantStandard, order.Delivered, future(time.Hour))
	request := pendingRequest(t, orderID, actorOf(t, sellerID, kernel.RoleSeller))
	cmd, err := commands.NewApproveReleaseCommand(request.ID(), kernel.NewUUID(), kernel.RoleAdmin, "")
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	requestRepo := new(MockReleaseRequestRepository)
	pub := new(MockEventPublisher)
	uow := new(MockUoW)
	uow.On("OrderRepository").Return(orderRepo)
	uow.On("ReleaseRequestRepository").Return(requestRepo)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		requestRepo.On("Get", ctx, request.ID()).Return(request, nil).Once(),
		orderRepo.On("Get", ctx, orderID).Return(ord, nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockSettlementUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewApproveReleaseCommandHandler(factory, pub)
	err = h.Handle(ctx, cmd)
	require.Error(t, err)
	assert.ErrorIs(t, err, order.ErrReleaseNotEligible)
	assert.Equal(t, order.Delivered, ord.Status())
	pub.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestApproveReleaseCommandHandler_Handle_NotAdmin(t *testing.T) {
	ctx := t.Context()
	cmd, err := commands.NewApproveReleaseCommand(kernel.NewUUID(), kernel.NewUUID(), kernel.RoleSeller, "")
	require.NoError(t, err)

	factory := new(MockSettlementUoWFactory)
	h := commands.NewApproveReleaseCommandHandler(factory, new(MockEventPublisher))
	err = h.Handle(ctx, cmd)
	require.Error(t, err)
	assert.ErrorIs(t, err, order.ErrRoleNotAllowed)
	factory.AssertNotCalled(t, "Create")
}

func TestApproveReleaseCommandHandler_Handle_RequestAlreadyDecided(t *testing.T) {
	ctx := t.Context()
	orderID := kernel.NewUUID()
	request := pendingRequest(t, orderID, actorOf(t, kernel.NewUUID(), kernel.RoleSeller))
	require.NoError(t, request.Reject(actorOf(t, kernel.NewUUID(), kernel.RoleAdmin), "no proof of delivery", time.Now().UTC()))
	cmd, err := commands.NewApproveReleaseCommand(request.ID(), kernel.NewUUID(), kernel.RoleAdmin, "")
	require.NoError(t, err)

	requestRepo := new(MockReleaseRequestRepository)
	uow := new(MockUoW)
	uow.On("ReleaseRequestRepository").Return(requestRepo)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		requestRepo.On("Get", ctx, request.ID()).Return(request, nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockSettlementUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewApproveReleaseCommandHandler(factory, new(MockEventPublisher))
	err = h.Handle(ctx, cmd)
	require.Error(t, err)
	assert.ErrorIs(t, err, payout.ErrRequestNotPending)
	uow.AssertExpectations(t)
}

func TestApproveReleaseCommandHandler_Handle_RequestNotFound(t *testing.T) {
	ctx := t.Context()
	requestID := kernel.NewUUID()
	cmd, err := commands.NewApproveReleaseCommand(requestID, kernel.NewUUID(), kernel.RoleAdmin, "")
	require.NoError(t, err)

	requestRepo := new(MockReleaseRequestRepository)
	uow := new(MockUoW)
	uow.On("ReleaseRequestRepository").Return(requestRepo)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		requestRepo.On("Get", ctx, requestID).
			Return(nil, errs.NewObjectNotFoundError("release request", requestID)).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockSettlementUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewApproveReleaseCommandHandler(factory, new(MockEventPublisher))
	err = h.Handle(ctx, cmd)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrObjectNotFound)
}

func TestApproveReleaseCommandHandler_Handle_ValidationError(t *testing.T) {
	ctx := t.Context()
	cmd := commands.ApproveReleaseCommand{} // not constructed properly
	h := commands.NewApproveReleaseCommandHandler(new(MockSettlementUoWFactory), new(MockEventPublisher))
	err := h.Handle(ctx, cmd)
	require.Error(t, err)
	assert.ErrorIs(t, err, commands.ErrApproveReleaseCommandIsNotConstructed)
}
