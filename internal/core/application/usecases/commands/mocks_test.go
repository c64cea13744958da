package commands_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"settlement/internal/core/application/usecases/commands"
	"settlement/internal/core/domain/events"
	"settlement/internal/core/domain/model/escrow"
	"settlement/internal/core/domain/model/kernel"
	"settlement/internal/core/domain/model/order"
	"settlement/internal/core/domain/model/payout"
	"settlement/internal/core/domain/model/tariff"
	"settlement/internal/core/domain/model/wallet"
	"settlement/internal/core/ports"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockOrderRepository struct{ mock.Mock }

func (m *MockOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	args := m.Called(ctx, aggregate)
	return args.Error(0)
}

func (m *MockOrderRepository) Update(ctx context.Context, aggregate *order.Order) error {
	args := m.Called(ctx, aggregate)
	return args.Error(0)
}

func (m *MockOrderRepository) Get(ctx context.Context, id kernel.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockOrderRepository) Claim(ctx context.Context, orderID kernel.UUID, agentID kernel.UUID) (bool, error) {
	args := m.Called(ctx, orderID, agentID)
	return args.Bool(0), args.Error(1)
}

func (m *MockOrderRepository) GetAllReleaseEligible(ctx context.Context, now time.Time) ([]*order.Order, error) {
	args := m.Called(ctx, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*order.Order), args.Error(1)
}

type MockEscrowRepository struct{ mock.Mock }

func (m *MockEscrowRepository) Add(ctx context.Context, aggregate *escrow.Escrow) error {
	args := m.Called(ctx, aggregate)
	return args.Error(0)
}

func (m *MockEscrowRepository) Update(ctx context.Context, aggregate *escrow.Escrow) error {
	args := m.Called(ctx, aggregate)
	return args.Error(0)
}

func (m *MockEscrowRepository) GetByOrderID(ctx context.Context, orderID kernel.UUID) (*escrow.Escrow, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*escrow.Escrow), args.Error(1)
}

type MockWalletRepository struct{ mock.Mock }

func (m *MockWalletRepository) GetByAccountID(_ context.Context, _ kernel.UUID) (*wallet.Wallet, error) {
	return nil, errors.New("not implemented in mock")
}

func (m *MockWalletRepository) Credit(ctx context.Context, accountID kernel.UUID, amount kernel.Money) error {
	args := m.Called(ctx, accountID, amount)
	return args.Error(0)
}

func (m *MockWalletRepository) Debit(ctx context.Context, accountID kernel.UUID, amount kernel.Money) error {
	args := m.Called(ctx, accountID, amount)
	return args.Error(0)
}

type MockReleaseRequestRepository struct{ mock.Mock }

func (m *MockReleaseRequestRepository) Add(ctx context.Context, aggregate *payout.ReleaseRequest) error {
	args := m.Called(ctx, aggregate)
	return args.Error(0)
}

func (m *MockReleaseRequestRepository) Update(ctx context.Context, aggregate *payout.ReleaseRequest) error {
	args := m.Called(ctx, aggregate)
	return args.Error(0)
}

func (m *MockReleaseRequestRepository) Get(ctx context.Context, id kernel.UUID) (*payout.ReleaseRequest, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payout.ReleaseRequest), args.Error(1)
}

func (m *MockReleaseRequestRepository) GetPendingByOrderID(ctx context.Context, orderID kernel.UUID) (*payout.ReleaseRequest, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payout.ReleaseRequest), args.Error(1)
}

type MockCommissionSettingRepository struct{ mock.Mock }

func (m *MockCommissionSettingRepository) Add(ctx context.Context, aggregate *tariff.Setting) error {
	args := m.Called(ctx, aggregate)
	return args.Error(0)
}

func (m *MockCommissionSettingRepository) Update(ctx context.Context, aggregate *tariff.Setting) error {
	args := m.Called(ctx, aggregate)
	return args.Error(0)
}

func (m *MockCommissionSettingRepository) GetByKey(ctx context.Context, key string) (*tariff.Setting, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*tariff.Setting), args.Error(1)
}

// MockUoW carries every repository accessor, so one mock satisfies each of
// the narrow unit of work shapes a handler may ask for.
type MockUoW struct{ mock.Mock }

func (m *MockUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUoW) OrderRepository() ports.OrderRepository {
	args := m.Called()
	return args.Get(0).(ports.OrderRepository)
}

func (m *MockUoW) EscrowRepository() ports.EscrowRepository {
	args := m.Called()
	return args.Get(0).(ports.EscrowRepository)
}

func (m *MockUoW) WalletRepository() ports.WalletRepository {
	args := m.Called()
	return args.Get(0).(ports.WalletRepository)
}

func (m *MockUoW) ReleaseRequestRepository() ports.ReleaseRequestRepository {
	args := m.Called()
	return args.Get(0).(ports.ReleaseRequestRepository)
}

func (m *MockUoW) CommissionSettingRepository() ports.CommissionSettingRepository {
	args := m.Called()
	return args.Get(0).(ports.CommissionSettingRepository)
}

type MockOrderUoWFactory struct{ mock.Mock }

func (m *MockOrderUoWFactory) Create() commands.OrderUoW {
	args := m.Called()
	return args.Get(0).(commands.OrderUoW)
}

type MockPricingUoWFactory struct{ mock.Mock }

func (m *MockPricingUoWFactory) Create() commands.PricingUoW {
	args := m.Called()
	return args.Get(0).(commands.PricingUoW)
}

type MockFundingUoWFactory struct{ mock.Mock }

func (m *MockFundingUoWFactory) Create() commands.FundingUoW {
	args := m.Called()
	return args.Get(0).(commands.FundingUoW)
}

type MockSettlementUoWFactory struct{ mock.Mock }

func (m *MockSettlementUoWFactory) Create() commands.SettlementUoW {
	args := m.Called()
	return args.Get(0).(commands.SettlementUoW)
}

type MockRequestUoWFactory struct{ mock.Mock }

func (m *MockRequestUoWFactory) Create() commands.RequestUoW {
	args := m.Called()
	return args.Get(0).(commands.RequestUoW)
}

type MockReleaseRequestUoWFactory struct{ mock.Mock }

func (m *MockReleaseRequestUoWFactory) Create() commands.ReleaseRequestUoW {
	args := m.Called()
	return args.Get(0).(commands.ReleaseRequestUoW)
}

type MockSettingUoWFactory struct{ mock.Mock }

func (m *MockSettingUoWFactory) Create() commands.SettingUoW {
	args := m.Called()
	return args.Get(0).(commands.SettingUoW)
}

// MockEventPublisher records the event batch as one argument so expectations
// can match on the whole slice.
type MockEventPublisher struct{ mock.Mock }

func (m *MockEventPublisher) Publish(ctx context.Context, domainEvents ...events.DomainEvent) {
	m.Called(ctx, domainEvents)
}

// Fixtures shared by the handler tests. Stored orders carry one line of
// 2 x 500 base / 605 display at rate 0.21 and a delivery fee of 150, so the
// totals are base 1000 and display 1360.

func usd(t *testing.T, amount int64) kernel.Money {
	t.Helper()
	currency, err := kernel.NewCurrency("USD")
	require.NoError(t, err)
	money, err := kernel.NewMoney(amount, currency)
	require.NoError(t, err)
	return money
}

func actorOf(t *testing.T, id kernel.UUID, role kernel.Role) kernel.Actor {
	t.Helper()
	actor, err := kernel.NewActor(id, role)
	require.NoError(t, err)
	return actor
}

func storedLines(t *testing.T, orderID kernel.UUID) []*order.Line {
	t.Helper()
	rate := decimal.RequireFromString("0.21")
	line, err := order.RestoreLine(
		kernel.NewUUID(), orderID, kernel.NewUUID(),
		2, usd(t, 500), usd(t, 605), rate, usd(t, 210), false,
	)
	require.NoError(t, err)
	return []*order.Line{line}
}

func storedTotals(t *testing.T) order.Totals {
	t.Helper()
	return order.Totals{
		Base:        usd(t, 1000),
		Display:     usd(t, 1360),
		Commission:  usd(t, 210),
		DeliveryFee: usd(t, 150),
		Tax:         usd(t, 0),
		Discount:    usd(t, 0),
	}
}

// storedOrder rehydrates an order in the given status with the fixture
// totals. The timeline is backfilled relative to the current clock;
// eligibleAt applies to delivered orders only.
func storedOrder(
	t *testing.T,
	orderID kernel.UUID,
	buyerID kernel.UUID,
	sellerID kernel.UUID,
	agentID *kernel.UUID,
	variant order.Variant,
	status order.Status,
	eligibleAt *time.Time,
) *order.Order {
	t.Helper()

	now := time.Now().UTC()
	createdAt := now.Add(-2 * time.Hour)
	confirmedAt := now.Add(-90 * time.Minute)
	pickedUpAt := now.Add(-time.Hour)
	deliveredAt := now.Add(-30 * time.Minute)

	timeline := order.Timeline{CreatedAt: createdAt}
	switch status {
	case order.Confirmed, order.Assigned:
		timeline.ConfirmedAt = &confirmedAt
	case order.PickedUp, order.InDelivery:
		timeline.ConfirmedAt = &confirmedAt
		timeline.PickedUpAt = &pickedUpAt
	case order.Delivered:
		timeline.ConfirmedAt = &confirmedAt
		timeline.PickedUpAt = &pickedUpAt
		timeline.DeliveredAt = &deliveredAt
		timeline.ReleaseEligibleAt = eligibleAt
	case order.Disputed:
		timeline.ConfirmedAt = &confirmedAt
	default:
	}

	ord, err := order.RestoreOrder(
		orderID, buyerID, sellerID, agentID,
		variant, status, 1,
		storedLines(t, orderID), storedTotals(t), timeline,
	)
	require.NoError(t, err)
	return ord
}

func heldEscrow(t *testing.T, orderID kernel.UUID) *escrow.Escrow {
	t.Helper()
	held, err := escrow.NewEscrow(kernel.NewUUID(), orderID, usd(t, 1360), time.Now().UTC().Add(-time.Hour))
	require.NoError(t, err)
	return held
}

func releasedEscrow(t *testing.T, orderID kernel.UUID) *escrow.Escrow {
	t.Helper()
	held := heldEscrow(t, orderID)
	require.NoError(t, held.Release("settled earlier", time.Now().UTC()))
	return held
}

func pendingRequest(t *testing.T, orderID kernel.UUID, requestedBy kernel.Actor) *payout.ReleaseRequest {
	t.Helper()
	request, err := payout.NewReleaseRequest(
		kernel.NewUUID(), orderID, requestedBy,
		"order delivered, funds due", time.Now().UTC().Add(-time.Hour),
	)
	require.NoError(t, err)
	return request
}

func storedSetting(t *testing.T, key string, rate string, minFee, maxFee int64) *tariff.Setting {
	t.Helper()
	setting, err := tariff.RestoreSetting(key, decimal.RequireFromString(rate), minFee, maxFee)
	require.NoError(t, err)
	return setting
}

func past(d time.Duration) *time.Time {
	at := time.Now().UTC().Add(-d)
	return &at
}

func future(d time.Duration) *time.Time {
	at := time.Now().UTC().Add(d)
	return &at
}
