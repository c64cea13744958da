package commands_test

import (
	"testing"

	"settlement/internal/core/application/usecases/commands"
	"settlement/internal/core/domain/events"
	"settlement/internal/core/domain/model/escrow"
	"settlement/internal/core/domain/model/kernel"
	"settlement/internal/core/domain/model/order"
	"settlement/internal/core/domain/model/wallet"
	"settlement/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestHoldEscrowCommandHandler_Handle_WalletFunded_Success(t *testing.T) {
	ctx := t.Context()
	orderID := kernel.NewUUID()
	buyerID := kernel.NewUUID()
	ord := storedOrder(t, orderID, buyerID, kernel.NewUUID(), nil, order.VariantStandard, order.PendingPayment, nil)
	cmd, err := commands.NewHoldEscrowCommand(orderID, buyerID, kernel.RoleBuyer)
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
			events.OrderStatusChanged{OrderID: orderID, From: order.PendingPayment, To: order.Confirmed},
		}).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockFundingUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewHoldEscrowCommandHandler(factory, pub)
	require.NoError(t, h.Handle(ctx, cmd))

	assert.Equal(t, order.Confirmed, ord.Status())
	require.NotNil(t, held)
	assert.True(t, held.IsHeld())
	assert.Equal(t, orderID, held.OrderID())
	assert.Equal(t, int64(1360), held.Amount().Amount())

	orderRepo.AssertExpectations(t)
	escrowRepo.AssertExpectations(t)
	walletRepo.AssertExpectations(t)
	pub.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestHoldEscrowCommandHandler_Handle_ProofFunded_AdminConfirms(t *testing.T) {
	ctx := t.Context()
	orderID := kernel.NewUUID()
	ord := storedOrder(t, orderID, kernel.NewUUID(), kernel.NewUUID(), nil, order.VariantLocalMarket, order.PendingPayment, nil)
	cmd, err := commands.NewHoldEscrowCommand(orderID, kernel.NewUUID(), kernel.RoleAdmin)
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
		escrowRepo.On("Add", ctx, mock.AnythingOfType("*escrow.Escrow")).Return(nil).Once(),
		orderRepo.On("Update", ctx, ord).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		pub.On("Publish", ctx, mock.Anything).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockFundingUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewHoldEscrowCommandHandler(factory, pub)
	require.NoError(t, h.Handle(ctx, cmd))

	// Payment-proof funding never touches a wallet.
	assert.Equal(t, order.Confirmed, ord.Status())
	escrowRepo.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestHoldEscrowCommandHandler_Handle_ProofFunded_BuyerRejected(t *testing.T) {
	ctx := t.Context()
	orderID := kernel.NewUUID()
	buyerID := kernel.NewUUID()
	ord := storedOrder(t, orderID, buyerID, kernel.NewUUID(), nil, order.VariantLocalMarket, order.PendingPayment, nil)
	cmd, err := commands.NewHoldEscrowCommand(orderID, buyerID, kernel.RoleBuyer)
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
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockFundingUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewHoldEscrowCommandHandler(factory, pub)
	err = h.Handle(ctx, cmd)
	require.Error(t, err)
	assert.ErrorIs(t, err, order.ErrRoleNotAllowed)
	assert.Equal(t, order.PendingPayment, ord.Status())
	pub.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestHoldEscrowCommandHandler_Handle_AlreadyHeld(t *testing.T) {
	ctx := t.Context()
	orderID := kernel.NewUUID()
	buyerID := kernel.NewUUID()
	ord := storedOrder(t, orderID, buyerID, kernel.NewUUID(), nil, order.VariantStandard, order.PendingPayment, nil)
	cmd, err := commands.NewHoldEscrowCommand(orderID, buyerID, kernel.RoleBuyer)
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
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockFundingUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewHoldEscrowCommandHandler(factory, pub)
	err = h.Handle(ctx, cmd)
	require.Error(t, err)
	assert.ErrorIs(t, err, commands.ErrEscrowAlreadyHeld)
	uow.AssertExpectations(t)
}

func TestHoldEscrowCommandHandler_Handle_InsufficientFunds(t *testing.T) {
	ctx := t.Context()
	orderID := kernel.NewUUID()
	buyerID := kernel.NewUUID()
	ord := storedOrder(t, orderID, buyerID, kernel.NewUUID(), nil, order.VariantStandard, order.PendingPayment, nil)
	cmd, err := commands.NewHoldEscrowCommand(orderID, buyerID, kernel.RoleBuyer)
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
		escrowRepo.On("GetByOrderID", ctx, orderID).
			Return(nil, errs.NewObjectNotFoundError("escrow", orderID)).Once(),
		walletRepo.On("Debit", ctx, buyerID, usd(t, 1360)).Return(wallet.ErrInsufficientFunds).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockFundingUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewHoldEscrowCommandHandler(factory, pub)
	err = h.Handle(ctx, cmd)
	require.Error(t, err)
	assert.ErrorIs(t, err, wallet.ErrInsufficientFunds)
	pub.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestHoldEscrowCommandHandler_Handle_DisputedOrder_Rejected(t *testing.T) {
	ctx := t.Context()
	orderID := kernel.NewUUID()
	ord := storedOrder(t, orderID, kernel.NewUUID(), kernel.NewUUID(), nil, order.VariantStandard, order.Disputed, nil)
	cmd, err := commands.NewHoldEscrowCommand(orderID, kernel.NewUUID(), kernel.RoleAdmin)
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
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockFundingUoWFactory)
	factory.On("Create").Return(uow).Once()

	// Dispute resolution confirms through the transition operation, not a
	// second payment hold.
	h := commands.NewHoldEscrowCommandHandler(factory, pub)
	err = h.Handle(ctx, cmd)
	require.Error(t, err)
	assert.ErrorIs(t, err, order.ErrIllegalTransition)
	uow.AssertExpectations(t)
}

func TestHoldEscrowCommandHandler_Handle_OrderNotFound(t *testing.T) {
	ctx := t.Context()
	orderID := kernel.NewUUID()
	cmd, err := commands.NewHoldEscrowCommand(orderID, kernel.NewUUID(), kernel.RoleBuyer)
	require.NoError(t, err)

	orderRepo := new(MockOrderRepository)
	pub := new(MockEventPublisher)
	uow := new(MockUoW)
	uow.On("OrderRepository").Return(orderRepo)

	mock.InOrder(
		uow.On("Begin", ctx).Return(nil).Once(),
		orderRepo.On("Get", ctx, orderID).
			Return(nil, errs.NewObjectNotFoundError("order", orderID)).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	factory := new(MockFundingUoWFactory)
	factory.On("Create").Return(uow).Once()

	h := commands.NewHoldEscrowCommandHandler(factory, pub)
	err = h.Handle(ctx, cmd)
	require.Error(t, err)
	assert.ErrorIs(t, err, errs.ErrObjectNotFound)
}

func TestHoldEscrowCommandHandler_Handle_ValidationError(t *testing.T) {
	ctx := t.Context()
	cmd := commands.HoldEscrowCommand{} // not constructed properly
	h := commands.NewHoldEscrowCommandHandler(new(MockFundingUoWFactory), new(MockEventPublisher))
	err := h.Handle(ctx, cmd)
	require.Error(t, err)
	assert.ErrorIs(t, err, commands.ErrHoldEscrowCommandIsNotConstructed)
}
