package commands_test

import (
	"testing"
	"time"

	"settlement/internal/core/application/usecases/commands"
	"settlement/internal/core/domain/events"
	"settlement/internal/core/domain/model/escrow"
	"settlement/internal/core/domain/model/kernel"
	"settlement/internal/core/domain/model/order"
	"settlement/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestTransitionOrderCommandHandler_Handle_Delivery_Success(t *testing.T) {
	ctx := t.Context()
	orderID := kernel.NewUUID()
	agentID := kernel.NewUUID()
	ord := storedOrder(t, orderID, kernel.NewUUID(), kernel.NewUUID(), &agentID, order.VariantStandard, order.InDelivery, nil)
	cmd, err := commands.NewTransitionOrderCommand(orderID, order.Delivered, agentID, kernel.RoleAgent)
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	pub := new(MockEventPublisher)
	uow := new(MockUoW)
	uow.On("OrderRepository").Return(orderRepo)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		orderRepo.On("Get", ctx, orderID).Return(ord, nil).Once(),
		orderRepo.On("Update", ctx, ord).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		pub.On("Publish", ctx, []events.DomainEvent{
			events.OrderStatusChanged{OrderID: orderID, From: order.InDelivery, To: order.Delivered},
		}).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockFundingUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewTransitionOrderCommandHandler(factory, pub, 0)
	require.NoError(t, h.Handle(ctx, cmd))

	// The default grace of five minutes schedules release eligibility.
	assert.Equal(t, order.Delivered, ord.Status())
	assert.False(t, ord.IsReleaseEligible(time.Now().UTC()))
	assert.True(t, ord.IsReleaseEligible(time.Now().UTC().Add(6*time.Minute)))

	orderRepo.AssertExpectations(t)
	pub.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestTransitionOrderCommandHandler_Handle_Cancel_RefundsHeldEscrow(t *testing.T) {
	ctx := t.Context()
	orderID := kernel.NewUUID()
	buyerID := kernel.NewUUID()
	sellerID := kernel.NewUUID()
	ord := storedOrder(t, orderID, buyerID, sellerID, nil, order.VariantStandard, order.Confirmed, nil)
	held := heldEscrow(t, orderID)
	cmd, err := commands.NewTransitionOrderCommand(orderID, order.Cancelled, sellerID, kernel.RoleSeller)
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	escrowRepo := new(MockEscrowRepository)
	walletRepo := new(MockWalletRepository)
	pub := new(MockEventPublisher)
	uow := new(MockUoW)
	uow.On("OrderRepository").Return(orderRepo)
	uow.On("EscrowRepository").Return(escrowRepo)
	uow.On("WalletRepository").Return(walletRepo)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		orderRepo.On("Get", ctx, orderID).Return(ord, nil).Once(),
		escrowRepo.On("GetByOrderID", ctx, orderID).Return(held, nil).Once(),
		escrowRepo.On("Update", ctx, held).Return(nil).Once(),
		walletRepo.On("Credit", ctx, buyerID, usd(t, 1360)).Return(nil).Once(),
		orderRepo.On("Update", ctx, ord).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		pub.On("Publish", ctx, []events.DomainEvent{
			events.OrderStatusChanged{OrderID: orderID, From: order.Confirmed, To: order.Cancelled},
			events.EscrowRefunded{OrderID: orderID, Amount: usd(t, 1360)},
		}).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockFundingUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewTransitionOrderCommandHandler(factory, pub, 0)
	require.NoError(t, h.Handle(ctx, cmd))

	assert.Equal(t, order.Cancelled, ord.Status())
	assert.Equal(t, escrow.StatusRefunded, held.Status())

	orderRepo.AssertExpectations(t)
	escrowRepo.AssertExpectations(t)
	walletRepo.AssertExpectations(t)
	pub.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestTransitionOrderCommandHandler_Handle_DisputedCancel_NoEscrowToRefund(t *testing.T) {
	ctx := t.Context()
	orderID := kernel.NewUUID()
	ord := storedOrder(t, orderID, kernel.NewUUID(), kernel.NewUUID(), nil, order.VariantStandard, order.Disputed, nil)
	cmd, err := commands.NewTransitionOrderCommand(orderID, order.Cancelled, kernel.NewUUID(), kernel.RoleAdmin)
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	escrowRepo := new(MockEscrowRepository)
	pub := new(MockEventPublisher)
	uow := new(MockUoW)
	uow.On("OrderRepository").Return(orderRepo)
	uow.On("EscrowRepository").Return(escrowRepo)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		orderRepo.On("Get", ctx, orderID).Return(ord, nil).Once(),
		escrowRepo.On("GetByOrderID", ctx, orderID).
			Return(nil, errs.NewObjectNotFoundError("escrow", orderID)).Once(),
		orderRepo.On("Update", ctx, ord).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		pub.On("Publish", ctx, []events.DomainEvent{
			events.OrderStatusChanged{OrderID: orderID, From: order.Disputed, To: order.Cancelled},
		}).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockFundingUoWFactory)
	factory.On("Create").Return(uow).Once()

	// A payment dispute cancels before any funds were held, so there is
	// nothing to move back.
	h := commands.NewTransitionOrderCommandHandler(factory, pub, 0)
	require.NoError(t, h.Handle(ctx, cmd))

	assert.Equal(t, order.Cancelled, ord.Status())
	escrowRepo.AssertExpectations(t)
	pub.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestTransitionOrderCommandHandler_Handle_DisputeResolution_RestoresHold(t *testing.T) {
	ctx := t.Context()
	orderID := kernel.NewUUID()
	buyerID := kernel.NewUUID()
	ord := storedOrder(t, orderID, buyerID, kernel.NewUUID(), nil, order.VariantStandard, order.Disputed, nil)
	cmd, err := commands.NewTransitionOrderCommand(orderID, order.Confirmed, kernel.NewUUID(), kernel.RoleAdmin)
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	escrowRepo := new(MockEscrowRepository)
	walletRepo := new(MockWalletRepository)
	pub := new(MockEventPublisher)
	uow := new(MockUoW)
	uow.On("OrderRepository").Return(orderRepo)
	uow.On("EscrowRepository").Return(escrowRepo)
	uow.On("WalletRepository").Return(walletRepo)

	var held *escrow.Escrow
	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		orderRepo.On("Get", ctx, orderID).Return(ord, nil).Once(),
		escrowRepo.On("GetByOrderID", ctx, orderID).
			Return(nil, errs.NewObjectNotFoundError("escrow", orderID)).Once(),
		walletRepo.On("Debit", ctx, buyerID, usd(t, 1360)).Return(nil).Once(),
		escrowRepo.On("Add", ctx, mock.AnythingOfType("*escrow.Escrow")).
			Run(func(args mock.Arguments) { held = args.Get(1).(*escrow.Escrow) }).
			Return(nil).Once(),
		orderRepo.On("Update", ctx, ord).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		pub.On("Publish", ctx, []events.DomainEvent{
			events.OrderStatusChanged{OrderID: orderID, From: order.Disputed, To: order.Confirmed},
		}).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockFundingUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewTransitionOrderCommandHandler(factory, pub, 0)
	require.NoError(t, h.Handle(ctx, cmd))

	assert.Equal(t, order.Confirmed, ord.Status())
	require.NotNil(t, held)
	assert.True(t, held.IsHeld())
	assert.Equal(t, int64(1360), held.Amount().Amount())

	escrowRepo.AssertExpectations(t)
	walletRepo.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestTransitionOrderCommandHandler_Handle_DisputeResolution_HoldAlreadyInPlace(t *testing.T) {
	ctx := t.Context()
	orderID := kernel.NewUUID()
	ord := storedOrder(t, orderID, kernel.NewUUID(), kernel.NewUUID(), nil, order.VariantStandard, order.Disputed, nil)
	cmd, err := commands.NewTransitionOrderCommand(orderID, order.Confirmed, kernel.NewUUID(), kernel.RoleAdmin)
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	escrowRepo := new(MockEscrowRepository)
	pub := new(MockEventPublisher)
	uow := new(MockUoW)
	uow.On("OrderRepository").Return(orderRepo)
	uow.On("EscrowRepository").Return(escrowRepo)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		orderRepo.On("Get", ctx, orderID).Return(ord, nil).Once(),
		escrowRepo.On("GetByOrderID", ctx, orderID).Return(heldEscrow(t, orderID), nil).Once(),
		orderRepo.On("Update", ctx, ord).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		pub.On("Publish", ctx, mock.Anything).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockFundingUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewTransitionOrderCommandHandler(factory, pub, 0)
	require.NoError(t, h.Handle(ctx, cmd))

	assert.Equal(t, order.Confirmed, ord.Status())
	escrowRepo.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestTransitionOrderCommandHandler_Handle_OrchestratedEdgeRejected(t *testing.T) {
	ctx := t.Context()
	orderID := kernel.NewUUID()
	buyerID := kernel.NewUUID()
	ord := storedOrder(t, orderID, buyerID, kernel.NewUUID(), nil, order.VariantStandard, order.PendingPayment, nil)
	cmd, err := commands.NewTransitionOrderCommand(orderID, order.Confirmed, buyerID, kernel.RoleBuyer)
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	pub := new(MockEventPublisher)
	uow := new(MockUoW)
	uow.On("OrderRepository").Return(orderRepo)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		orderRepo.On("Get", ctx, orderID).Return(ord, nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockFundingUoWFactory)
	factory.On("Create").Return(uow).Once()

	// Payment confirmation moves money and must go through the escrow hold
	// operation.
	h := commands.NewTransitionOrderCommandHandler(factory, pub, 0)
	err = h.Handle(ctx, cmd)
	require.Error(t, err)
	assert.ErrorIs(t, err, order.ErrIllegalTransition)
	pub.AssertExpectations(t)
	orderRepo.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestTransitionOrderCommandHandler_Handle_CompletionRunsThroughReceipt(t *testing.T) {
	ctx := t.Context()
	orderID := kernel.NewUUID()
	buyerID := kernel.NewUUID()
	agentID := kernel.NewUUID()
	ord := storedOrder(t, orderID, buyerID, kernel.NewUUID(), &agentID, order.VariantStandard, order.Delivered, past(time.Minute))
	cmd, err := commands.NewTransitionOrderCommand(orderID, order.Completed, buyerID, kernel.RoleBuyer)
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	uow := new(MockUoW)
	uow.On("OrderRepository").Return(orderRepo)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		orderRepo.On("Get", ctx, orderID).Return(ord, nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockFundingUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewTransitionOrderCommandHandler(factory, new(MockEventPublisher), 0)
	err = h.Handle(ctx, cmd)
	require.Error(t, err)
	assert.ErrorIs(t, err, order.ErrIllegalTransition)
	uow.AssertExpectations(t)
}

func TestTransitionOrderCommandHandler_Handle_TerminalOrder(t *testing.T) {
	ctx := t.Context()
	orderID := kernel.NewUUID()
	ord := storedOrder(t, orderID, kernel.NewUUID(), kernel.NewUUID(), nil, order.VariantStandard, order.Cancelled, nil)
	cmd, err := commands.NewTransitionOrderCommand(orderID, order.Confirmed, kernel.NewUUID(), kernel.RoleAdmin)
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	uow := new(MockUoW)
	uow.On("OrderRepository").Return(orderRepo)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		orderRepo.On("Get", ctx, orderID).Return(ord, nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockFundingUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewTransitionOrderCommandHandler(factory, new(MockEventPublisher), 0)
	err = h.Handle(ctx, cmd)
	require.Error(t, err)
	assert.ErrorIs(t, err, order.ErrIllegalTransition)
}

func TestTransitionOrderCommandHandler_Handle_RoleNotAllowed(t *testing.T) {
	ctx := t.Context()
	orderID := kernel.NewUUID()
	buyerID := kernel.NewUUID()
	agentID := kernel.NewUUID()
	ord := storedOrder(t, orderID, buyerID, kernel.NewUUID(), &agentID, order.VariantStandard, order.InDelivery, nil)
	cmd, err := commands.NewTransitionOrderCommand(orderID, order.Delivered, buyerID, kernel.RoleBuyer)
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	uow := new(MockUoW)
	uow.On("OrderRepository").Return(orderRepo)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		orderRepo.On("Get", ctx, orderID).Return(ord, nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockFundingUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewTransitionOrderCommandHandler(factory, new(MockEventPublisher), 0)
	err = h.Handle(ctx, cmd)
	require.Error(t, err)
	assert.ErrorIs(t, err, order.ErrRoleNotAllowed)
	assert.Equal(t, order.InDelivery, ord.Status())
}

func TestTransitionOrderCommandHandler_Handle_VersionConflict(t *testing.T) {
	ctx := t.Context()
	orderID := kernel.NewUUID()
	agentID := kernel.NewUUID()
	ord := storedOrder(t, orderID, kernel.NewUUID(), kernel.NewUUID(), &agentID, order.VariantStandard, order.Assigned, nil)
	cmd, err := commands.NewTransitionOrderCommand(orderID, order.PickedUp, agentID, kernel.RoleAgent)
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	pub := new(MockEventPublisher)
	uow := new(MockUoW)
	uow.On("OrderRepository").Return(orderRepo)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		orderRepo.On("Get", ctx, orderID).Return(ord, nil).Once(),
		orderRepo.On("Update", ctx, ord).Return(errs.NewVersionIsInvalidErrorWithCause("order")).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockFundingUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewTransitionOrderCommandHandler(factory, pub, 0)
	err = h.Handle(ctx, cmd)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrVersionIsInvalid)
	pub.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestTransitionOrderCommandHandler_Handle_ValidationError(t *testing.T) {
	ctx := t.Context()
	cmd := commands.TransitionOrderCommand{} // not constructed properly
	h := commands.NewTransitionOrderCommandHandler(new(MockFundingUoWFactory), new(MockEventPublisher), 0)
	err := h.Handle(ctx, cmd)
	require.Error(t, err)
	assert.ErrorIs(t, err, commands.ErrTransitionOrderCommandIsNotConstructed)
}
