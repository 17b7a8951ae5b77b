package dropasset

import (
	"context"
	"math/big"

	"github.com/droplink-labs/backend/internal/client"
	"github.com/droplink-labs/backend/internal/entity"
	"github.com/droplink-labs/backend/pkg/errorx"
	"github.com/droplink-labs/backend/pkg/xcontext"
)

// fungibleStrategy drops tokens held by an external custodian. The claim
// chains a storage registration for the destination with the transfer
// itself. Tokens only arrive into custody after creation, so claims are
// gated on the funding confirmation, and a failed claim is compensated with
// a second outbound transfer from our custodial balance.
type fungibleStrategy struct {
	drop   *entity.Drop
	caller client.LedgerCaller
}

func (s *fungibleStrategy) RequiredDeposit(keyCount int) *big.Int {
	return RequiredDeposit(entity.DropKindFT, &s.drop.AmountPerClaim.Int, keyCount)
}

func (s *fungibleStrategy) ValidateClaimable() error {
	if !s.drop.Funded {
		return errorx.New(errorx.Unfunded, "Drop is not funded yet")
	}

	return nil
}

func (s *fungibleStrategy) DispatchClaim(ctx context.Context, destination string, callID int64) error {
	return s.caller.ClaimFT(
		ctx, callID, s.drop.AssetContract.String, destination, &s.drop.AmountPerClaim.Int)
}

func (s *fungibleStrategy) Resolve(
	ctx context.Context, pending *entity.PendingClaim, transferOK bool,
) error {
	if !transferOK {
		// The custodian rolled the failed transfer back into our
		// custodial balance, so return the tokens to the funder with a
		// second transfer.
		err := s.caller.TransferFT(
			ctx, 0, pending.AssetContract.String, pending.Funder, &pending.AmountPerClaim.Int)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot dispatch the token compensation: %v", err)
			return err
		}
	}

	refund := ClaimRefund(
		entity.DropKindFT,
		&pending.AmountPerClaim.Int,
		pending.AccountCreated,
		pending.DropDeleted,
		!transferOK,
	)

	xcontext.Logger(ctx).Infof("Refund %s to %s for call %d", refund, pending.Funder, pending.CallID)
	return s.caller.Transfer(ctx, 0, pending.Funder, refund)
}
