package commands

import (
	"errors"

	"settlement/internal/core/domain/model/kernel"
	"settlement/internal/core/domain/model/order"
	"settlement/internal/core/domain/model/tariff"
	"settlement/internal/pkg/guard"
)

var (
	ErrCreateOrderCommandIsNotConstructed = errors.New(
		"CreateOrderCommand must be created via NewCreateOrderCommand constructor",
	)
	ErrItemsAreRequired       = errors.New("order requires at least one item")
	ErrQuantityIsInvalid      = errors.New("quantity must be greater than 0")
	ErrUnitBasePriceIsInvalid = errors.New("unit base price must not be negative")
	ErrAgentFeeKeyIsInvalid   = errors.New("agent fee key must name an agent tariff")
	ErrTaxIsInvalid           = errors.New("tax must not be negative")
	ErrDiscountIsInvalid      = errors.New("discount must not be negative")
)

// OrderItem is one line of a checkout request: the catalog item, how many
// units, and the seller's unit price in minor units. Display prices and
// commission are derived by the handler from the current platform rate.
type OrderItem struct {
	ItemID        kernel.UUID
	Quantity      int
	UnitBasePrice int64
}

// CreateOrderCommand represents a checkout request to create a new order.
// Carries the parties, the variant, the raw line items and the charges; all
// pricing derived from tariff settings happens in the handler.
//
// Example:
//
//	cmd, err := NewCreateOrderCommand(
//	    kernel.NewUUID(), buyerID, sellerID,
//	    order.VariantStandard, currency,
//	    []commands.OrderItem{{ItemID: itemID, Quantity: 2, UnitBasePrice: 500}},
//	    tariff.KeyFastDeliveryAgent, 0, 0,
//	)
//	if err != nil {
//	    return fmt.Errorf("invalid order data: %w", err)
//	}
//
//	handler := NewCreateOrderCommandHandler(uowFactory)
//	if err := handler.Handle(ctx, cmd); err != nil {
//	    return fmt.Errorf("failed to create order: %w", err)
//	}
type CreateOrderCommand struct { //nolint:recvcheck //using for validation
	orderID     kernel.UUID
	buyerID     kernel.UUID
	sellerID    kernel.UUID
	variant     order.Variant
	currency    kernel.Currency
	items       []OrderItem
	agentFeeKey string
	tax         int64
	discount    int64

	guard guard.ConstructorGuard
}

// NewCreateOrderCommand creates a command to register a new order.
// Validates identifiers, the variant, the currency, the line items, the
// agent tariff choice and that neither charge is negative.
func NewCreateOrderCommand(
	orderID kernel.UUID,
	buyerID kernel.UUID,
	sellerID kernel.UUID,
	variant order.Variant,
	currency kernel.Currency,
	items []OrderItem,
	agentFeeKey string,
	tax int64,
	discount int64,
) (CreateOrderCommand, error) {
	orderCommand := CreateOrderCommand{
		guard: guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		orderCommand.setOrderID(orderID),
		orderCommand.setBuyerID(buyerID),
		orderCommand.setSellerID(sellerID),
		orderCommand.setVariant(variant),
		orderCommand.setCurrency(currency),
		orderCommand.setItems(items),
		orderCommand.setAgentFeeKey(agentFeeKey),
		orderCommand.setCharges(tax, discount),
	); err != nil {
		return CreateOrderCommand{}, err
	}

	return orderCommand, nil
}

// Validate ensures the command was created through the constructor.
// Returns ErrCreateOrderCommandIsNotConstructed if validation fails.
func (c CreateOrderCommand) Validate() error {
	return c.guard.Validate(ErrCreateOrderCommandIsNotConstructed)
}

// OrderID returns the unique identifier for the order.
func (c CreateOrderCommand) OrderID() kernel.UUID {
	return c.orderID
}

// BuyerID returns the purchasing party.
func (c CreateOrderCommand) BuyerID() kernel.UUID {
	return c.buyerID
}

// SellerID returns the selling party.
func (c CreateOrderCommand) SellerID() kernel.UUID {
	return c.sellerID
}

// Variant returns the marketplace flow the order runs under.
func (c CreateOrderCommand) Variant() order.Variant {
	return c.variant
}

// Currency returns the currency every line is priced in.
func (c CreateOrderCommand) Currency() kernel.Currency {
	return c.currency
}

// Items returns the raw checkout lines.
func (c CreateOrderCommand) Items() []OrderItem {
	return c.items
}

// AgentFeeKey returns the tariff key of the delivery agent type chosen at
// checkout.
func (c CreateOrderCommand) AgentFeeKey() string {
	return c.agentFeeKey
}

// Tax returns the order-level tax in minor units.
func (c CreateOrderCommand) Tax() int64 {
	return c.tax
}

// Discount returns the order-level discount in minor units.
func (c CreateOrderCommand) Discount() int64 {
	return c.discount
}

func (c *CreateOrderCommand) setOrderID(orderID kernel.UUID) error {
	if err := orderID.Validate(); err != nil {
		return err
	}

	c.orderID = orderID
	return nil
}

func (c *CreateOrderCommand) setBuyerID(buyerID kernel.UUID) error {
	if err := buyerID.Validate(); err != nil {
		return err
	}

	c.buyerID = buyerID
	return nil
}

func (c *CreateOrderCommand) setSellerID(sellerID kernel.UUID) error {
	if err := sellerID.Validate(); err != nil {
		return err
	}

	c.sellerID = sellerID
	return nil
}

func (c *CreateOrderCommand) setVariant(variant order.Variant) error {
	if err := variant.Validate(); err != nil {
		return err
	}

	c.variant = variant
	return nil
}

func (c *CreateOrderCommand) setCurrency(currency kernel.Currency) error {
	if err := currency.Validate(); err != nil {
		return err
	}

	c.currency = currency
	return nil
}

func (c *CreateOrderCommand) setItems(items []OrderItem) error {
	if len(items) == 0 {
		return ErrItemsAreRequired
	}

	for _, item := range items {
		if err := item.ItemID.Validate(); err != nil {
			return err
		}
		if item.Quantity <= 0 {
			return ErrQuantityIsInvalid
		}
		if item.UnitBasePrice < 0 {
			return ErrUnitBasePriceIsInvalid
		}
	}

	c.items = items
	return nil
}

func (c *CreateOrderCommand) setAgentFeeKey(agentFeeKey string) error {
	if agentFeeKey != tariff.KeyFastDeliveryAgent && agentFeeKey != tariff.KeyPickupDeliveryAgent {
		return ErrAgentFeeKeyIsInvalid
	}

	c.agentFeeKey = agentFeeKey
	return nil
}

func (c *CreateOrderCommand) setCharges(tax int64, discount int64) error {
	if tax < 0 {
		return ErrTaxIsInvalid
	}
	if discount < 0 {
		return ErrDiscountIsInvalid
	}

	c.tax = tax
	c.discount = discount
	return nil
}
