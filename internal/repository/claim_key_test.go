package repository

import (
	"testing"

	"github.com/droplink-labs/backend/internal/entity"
	"github.com/droplink-labs/backend/pkg/testutil"
	"github.com/droplink-labs/backend/pkg/xcontext"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func Test_claimKeyRepository_Consume(t *testing.T) {
	ctx := testutil.MockContext()
	dropRepo := NewDropRepository()
	claimKeyRepo := NewClaimKeyRepository()

	drop := &entity.Drop{
		Kind:            entity.DropKindNative,
		Funder:          "funder.ledger",
		AmountPerClaim:  entity.NewBigInt(1000),
		RemainingClaims: 2,
	}
	require.NoError(t, dropRepo.Create(ctx, drop))
	require.NoError(t, claimKeyRepo.CreateAll(ctx, []entity.ClaimKey{
		{PublicKey: "pk1", DropID: drop.ID},
		{PublicKey: "pk2", DropID: drop.ID},
	}))

	// The returned snapshot is read after the decrement.
	snapshot, deleted, err := claimKeyRepo.Consume(ctx, "pk1")
	require.NoError(t, err)
	require.False(t, deleted)
	require.Equal(t, drop.ID, snapshot.ID)
	require.Equal(t, int64(1), snapshot.RemainingClaims)

	remaining, err := dropRepo.GetByID(ctx, drop.ID)
	require.NoError(t, err)
	require.Equal(t, int64(1), remaining.RemainingClaims)

	// A key can only be consumed once.
	_, _, err = claimKeyRepo.Consume(ctx, "pk1")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	// Consuming the last key removes the drop row.
	snapshot, deleted, err = claimKeyRepo.Consume(ctx, "pk2")
	require.NoError(t, err)
	require.True(t, deleted)
	require.Equal(t, int64(0), snapshot.RemainingClaims)

	_, err = dropRepo.GetByID(ctx, drop.ID)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func Test_claimKeyRepository_Consume_ExhaustedCounter(t *testing.T) {
	ctx := testutil.MockContext()
	dropRepo := NewDropRepository()
	claimKeyRepo := NewClaimKeyRepository()

	drop := &entity.Drop{
		Kind:            entity.DropKindNative,
		Funder:          "funder.ledger",
		AmountPerClaim:  entity.NewBigInt(1000),
		RemainingClaims: 2,
	}
	require.NoError(t, dropRepo.Create(ctx, drop))
	require.NoError(t, claimKeyRepo.CreateAll(ctx, []entity.ClaimKey{
		{PublicKey: "pk1", DropID: drop.ID},
		{PublicKey: "pk2", DropID: drop.ID},
	}))

	// Force the counter out of sync with the bindings. The guarded
	// decrement must refuse to drive it below zero.
	err := xcontext.DB(ctx).Model(&entity.Drop{}).
		Where("id=?", drop.ID).
		Update("remaining_claims", 0).Error
	require.NoError(t, err)

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)
	_, _, err = claimKeyRepo.Consume(ctx, "pk1")
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func Test_claimKeyRepository_CreateAll_UnknownDrop(t *testing.T) {
	ctx := testutil.MockContext()
	claimKeyRepo := NewClaimKeyRepository()

	// A binding cannot reference a drop that does not exist.
	err := claimKeyRepo.CreateAll(ctx, []entity.ClaimKey{
		{PublicKey: "pk1", DropID: 12345},
	})
	require.Error(t, err)
}

func Test_claimKeyRepository_GetExisted(t *testing.T) {
	ctx := testutil.MockContext()
	dropRepo := NewDropRepository()
	claimKeyRepo := NewClaimKeyRepository()

	drop := &entity.Drop{
		Kind:            entity.DropKindNative,
		Funder:          "funder.ledger",
		AmountPerClaim:  entity.NewBigInt(1000),
		RemainingClaims: 1,
	}
	require.NoError(t, dropRepo.Create(ctx, drop))
	require.NoError(t, claimKeyRepo.CreateAll(ctx, []entity.ClaimKey{
		{PublicKey: "pk1", DropID: drop.ID},
	}))

	existed, err := claimKeyRepo.GetExisted(ctx, []string{"pk1", "pk2"})
	require.NoError(t, err)
	require.Equal(t, []string{"pk1"}, existed)

	existed, err = claimKeyRepo.GetExisted(ctx, []string{"pk3"})
	require.NoError(t, err)
	require.Empty(t, existed)
}
