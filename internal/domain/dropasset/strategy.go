package dropasset

import (
	"context"
	"fmt"
	"math/big"

	"github.com/droplink-labs/backend/internal/client"
	"github.com/droplink-labs/backend/internal/entity"
)

// Strategy is the per-kind behavior of a drop: its deposit requirement, its
// funding precondition, how the claim transfer is dispatched, and how a
// finished claim is compensated. Exactly three kinds exist.
type Strategy interface {
	// RequiredDeposit returns the deposit a funder must attach to create
	// the drop with keyCount claim keys.
	RequiredDeposit(keyCount int) *big.Int

	// ValidateClaimable fails fast when the drop cannot be claimed yet.
	// It runs before the claim key is consumed, so a rejection burns
	// nothing.
	ValidateClaimable() error

	// DispatchClaim sends the asset to destination. The outcome arrives
	// later through the resolution entry point carrying callID.
	DispatchClaim(ctx context.Context, destination string, callID int64) error

	// Resolve compensates the funder for the finished claim described by
	// pending.
	Resolve(ctx context.Context, pending *entity.PendingClaim, transferOK bool) error
}

func New(drop *entity.Drop, caller client.LedgerCaller) (Strategy, error) {
	switch drop.Kind {
	case entity.DropKindNative:
		return &nativeStrategy{drop: drop, caller: caller}, nil
	case entity.DropKindFT:
		return &fungibleStrategy{drop: drop, caller: caller}, nil
	case entity.DropKindNFT:
		return &nonFungibleStrategy{drop: drop, caller: caller}, nil
	default:
		return nil, fmt.Errorf("unknown drop kind %s", drop.Kind)
	}
}

// FromPending rebuilds the strategy for a claim whose drop row may already
// be gone, using the snapshot taken when the claim began.
func FromPending(pending *entity.PendingClaim, caller client.LedgerCaller) (Strategy, error) {
	return New(&entity.Drop{
		ID:             pending.DropID,
		Kind:           pending.Kind,
		Funder:         pending.Funder,
		AmountPerClaim: pending.AmountPerClaim,
		AssetContract:  pending.AssetContract,
		TokenID:        pending.TokenID,
	}, caller)
}
