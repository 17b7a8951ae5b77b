package dropasset

import (
	"context"
	"math/big"

	"github.com/droplink-labs/backend/internal/client"
	"github.com/droplink-labs/backend/internal/entity"
	"github.com/droplink-labs/backend/pkg/xcontext"
)

// nativeStrategy escrows the dropped amount in our own account, so a claim
// is a single direct transfer and a failed claim is compensated locally.
type nativeStrategy struct {
	drop   *entity.Drop
	caller client.LedgerCaller
}

func (s *nativeStrategy) RequiredDeposit(keyCount int) *big.Int {
	return RequiredDeposit(entity.DropKindNative, &s.drop.AmountPerClaim.Int, keyCount)
}

func (s *nativeStrategy) ValidateClaimable() error {
	return nil
}

func (s *nativeStrategy) DispatchClaim(ctx context.Context, destination string, callID int64) error {
	return s.caller.Transfer(ctx, callID, destination, &s.drop.AmountPerClaim.Int)
}

func (s *nativeStrategy) Resolve(
	ctx context.Context, pending *entity.PendingClaim, transferOK bool,
) error {
	refund := ClaimRefund(
		entity.DropKindNative,
		&pending.AmountPerClaim.Int,
		pending.AccountCreated,
		pending.DropDeleted,
		!transferOK,
	)

	xcontext.Logger(ctx).Infof("Refund %s to %s for call %d", refund, pending.Funder, pending.CallID)
	return s.caller.Transfer(ctx, 0, pending.Funder, refund)
}
