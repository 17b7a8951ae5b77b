package dropasset

import (
	"context"
	"math/big"

	"github.com/droplink-labs/backend/internal/client"
	"github.com/droplink-labs/backend/internal/entity"
	"github.com/droplink-labs/backend/pkg/errorx"
	"github.com/droplink-labs/backend/pkg/xcontext"
)

// nonFungibleStrategy drops a single token out of the custodian's escrow.
// The token id stays empty until the custodian confirms the transfer
// authorization. A failed claim transfer needs no re-custody: the custodian
// reverts atomically, so the token never left escrow.
type nonFungibleStrategy struct {
	drop   *entity.Drop
	caller client.LedgerCaller
}

func (s *nonFungibleStrategy) RequiredDeposit(keyCount int) *big.Int {
	return RequiredDeposit(entity.DropKindNFT, nil, keyCount)
}

func (s *nonFungibleStrategy) ValidateClaimable() error {
	if s.drop.TokenID.String == "" {
		return errorx.New(errorx.Unfunded, "No token to drop")
	}

	return nil
}

func (s *nonFungibleStrategy) DispatchClaim(ctx context.Context, destination string, callID int64) error {
	return s.caller.TransferNFT(
		ctx, callID, s.drop.AssetContract.String, s.drop.TokenID.String, destination)
}

func (s *nonFungibleStrategy) Resolve(
	ctx context.Context, pending *entity.PendingClaim, transferOK bool,
) error {
	if !transferOK {
		xcontext.Logger(ctx).Warnf(
			"Claim transfer of token %s failed, token stays in escrow", pending.TokenID.String)
	}

	refund := ClaimRefund(
		entity.DropKindNFT,
		nil,
		pending.AccountCreated,
		pending.DropDeleted,
		!transferOK,
	)

	xcontext.Logger(ctx).Infof("Refund %s to %s for call %d", refund, pending.Funder, pending.CallID)
	return s.caller.Transfer(ctx, 0, pending.Funder, refund)
}
