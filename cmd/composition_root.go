package cmd

import (
	"log/slog"
	"strconv"
	"time"

	"settlement/internal/adapters/out/notify"
	"settlement/internal/adapters/out/postgres"
	"settlement/internal/core/application/usecases/commands"
	"settlement/internal/core/application/usecases/queries"
	"settlement/internal/core/ports"

	"gorm.io/gorm"
)

type CompositionRoot struct {
	gormDB     *gorm.DB
	uowFactory postgres.GormUnitOfWorkFactory
	publisher  ports.EventPublisher
	grace      time.Duration
}

func NewCompositionRoot(config Config, gormDB *gorm.DB, logger *slog.Logger) CompositionRoot {
	return CompositionRoot{
		gormDB:     gormDB,
		uowFactory: *postgres.NewGormUnitOfWorkFactory(gormDB),
		publisher:  notify.NewLogEventPublisher(logger),
		grace:      graceFromConfig(config),
	}
}

// graceFromConfig reads the optional release-grace override in seconds.
// Zero or unparseable values keep the per-variant defaults.
func graceFromConfig(config Config) time.Duration {
	if config.GracePeriodSeconds == "" {
		return 0
	}
	seconds, err := strconv.Atoi(config.GracePeriodSeconds)
	if err != nil || seconds < 0 {
		return 0
	}
	return time.Duration(seconds) * time.Second
}

func (c *CompositionRoot) CreateCreateOrderCommandHandler() commands.CreateOrderCommandHandler {
	var f commands.PricingUoWFactory = FuncPricingUoWFactory(func() commands.PricingUoW {
		return c.uowFactory.Create()
	})
	return commands.NewCreateOrderCommandHandler(f)
}

func (c *CompositionRoot) CreateHoldEscrowCommandHandler() commands.HoldEscrowCommandHandler {
	var f commands.FundingUoWFactory = FuncFundingUoWFactory(func() commands.FundingUoW {
		return c.uowFactory.Create()
	})
	return commands.NewHoldEscrowCommandHandler(f, c.publisher)
}

func (c *CompositionRoot) CreateTransitionOrderCommandHandler() commands.TransitionOrderCommandHandler {
	var f commands.FundingUoWFactory = FuncFundingUoWFactory(func() commands.FundingUoW {
		return c.uowFactory.Create()
	})
	return commands.NewTransitionOrderCommandHandler(f, c.publisher, c.grace)
}

func (c *CompositionRoot) CreateClaimOrderCommandHandler() commands.ClaimOrderCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewClaimOrderCommandHandler(f, c.publisher)
}

func (c *CompositionRoot) CreateRequestReleaseCommandHandler() commands.RequestReleaseCommandHandler {
	var f commands.RequestUoWFactory = FuncRequestUoWFactory(func() commands.RequestUoW {
		return c.uowFactory.Create()
	})
	return commands.NewRequestReleaseCommandHandler(f, c.publisher)
}

func (c *CompositionRoot) CreateApproveReleaseCommandHandler() commands.ApproveReleaseCommandHandler {
	var f commands.SettlementUoWFactory = FuncSettlementUoWFactory(func() commands.SettlementUoW {
		return c.uowFactory.Create()
	})
	return commands.NewApproveReleaseCommandHandler(f, c.publisher)
}

func (c *CompositionRoot) CreateRejectReleaseCommandHandler() commands.RejectReleaseCommandHandler {
	var f commands.ReleaseRequestUoWFactory = FuncReleaseRequestUoWFactory(func() commands.ReleaseRequestUoW {
		return c.uowFactory.Create()
	})
	return commands.NewRejectReleaseCommandHandler(f, c.publisher)
}

func (c *CompositionRoot) CreateConfirmReceiptCommandHandler() commands.ConfirmReceiptCommandHandler {
	var f commands.SettlementUoWFactory = FuncSettlementUoWFactory(func() commands.SettlementUoW {
		return c.uowFactory.Create()
	})
	return commands.NewConfirmReceiptCommandHandler(f, c.publisher)
}

func (c *CompositionRoot) CreateRefundOrderCommandHandler() commands.RefundOrderCommandHandler {
	var f commands.FundingUoWFactory = FuncFundingUoWFactory(func() commands.FundingUoW {
		return c.uowFactory.Create()
	})
	return commands.NewRefundOrderCommandHandler(f, c.publisher)
}

func (c *CompositionRoot) CreateMarkReleaseEligibleCommandHandler() commands.MarkReleaseEligibleCommandHandler {
	var f commands.OrderUoWFactory = FuncOrderUoWFactory(func() commands.OrderUoW {
		return c.uowFactory.Create()
	})
	return commands.NewMarkReleaseEligibleCommandHandler(f, c.publisher)
}

func (c *CompositionRoot) CreateUpdateCommissionSettingCommandHandler() commands.UpdateCommissionSettingCommandHandler {
	var f commands.SettingUoWFactory = FuncSettingUoWFactory(func() commands.SettingUoW {
		return c.uowFactory.Create()
	})
	return commands.NewUpdateCommissionSettingCommandHandler(f)
}

func (c *CompositionRoot) CreateGetOrderSummaryQueryHandler() queries.GetOrderSummaryQueryHandler {
	return queries.NewGetOrderSummaryQueryHandler(c.gormDB)
}

func (c *CompositionRoot) CreateGetPendingReleaseRequestsQueryHandler() queries.GetPendingReleaseRequestsQueryHandler {
	return queries.NewGetPendingReleaseRequestsQueryHandler(c.gormDB)
}

type FuncOrderUoWFactory func() commands.OrderUoW

func (f FuncOrderUoWFactory) Create() commands.OrderUoW {
	return f()
}

type FuncPricingUoWFactory func() commands.PricingUoW

func (f FuncPricingUoWFactory) Create() commands.PricingUoW {
	return f()
}

type FuncFundingUoWFactory func() commands.FundingUoW

func (f FuncFundingUoWFactory) Create() commands.FundingUoW {
	return f()
}

type FuncSettlementUoWFactory func() commands.SettlementUoW

func (f FuncSettlementUoWFactory) Create() commands.SettlementUoW {
	return f()
}

type FuncRequestUoWFactory func() commands.RequestUoW

func (f FuncRequestUoWFactory) Create() commands.RequestUoW {
	return f()
}

type FuncReleaseRequestUoWFactory func() commands.ReleaseRequestUoW

func (f FuncReleaseRequestUoWFactory) Create() commands.ReleaseRequestUoW {
	return f()
}

type FuncSettingUoWFactory func() commands.SettingUoW

func (f FuncSettingUoWFactory) Create() commands.SettingUoW {
	return f()
}
