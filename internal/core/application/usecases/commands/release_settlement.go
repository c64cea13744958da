package commands

import (
	"context"
	"time"

	"settlement/internal/core/domain/model/escrow"
	"settlement/internal/core/domain/model/order"
	"settlement/internal/core/domain/model/wallet"
	"settlement/internal/core/domain/services"
)

// releaseSettlement closes the held escrow in the parties' favor: the escrow
// row moves to released and the seller, agent and platform wallets receive
// their shares of the held amount. Runs inside the caller's transaction; the
// caller completes the order and commits.
func releaseSettlement(
	ctx context.Context,
	uow SettlementUoW,
	ord *order.Order,
	reason string,
	now time.Time,
) (escrow.Settlement, error) {
	escrowRepo := uow.EscrowRepository()
	held, err := escrowRepo.GetByOrderID(ctx, ord.ID())
	if err != nil {
		return escrow.Settlement{}, err
	}

	split, err := services.NewSettlementSplitter().Split(ord, held)
	if err != nil {
		return escrow.Settlement{}, err
	}

	if err = held.Release(reason, now); err != nil {
		return escrow.Settlement{}, err
	}

	if err = escrowRepo.Update(ctx, held); err != nil {
		return escrow.Settlement{}, err
	}

	walletRepo := uow.WalletRepository()
	if err = walletRepo.Credit(ctx, split.SellerAccount(), split.SellerAmount()); err != nil {
		return escrow.Settlement{}, err
	}

	if agent := split.AgentAccount(); agent != nil && !split.AgentAmount().IsZero() {
		if err = walletRepo.Credit(ctx, *agent, split.AgentAmount()); err != nil {
			return escrow.Settlement{}, err
		}
	}

	if !split.PlatformAmount().IsZero() {
		if err = walletRepo.Credit(ctx, wallet.PlatformAccountID, split.PlatformAmount()); err != nil {
			return escrow.Settlement{}, err
		}
	}

	return split, nil
}
