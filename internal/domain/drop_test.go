package domain

import (
	"context"
	"math/big"
	"strconv"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/droplink-labs/backend/internal/client"
	"github.com/droplink-labs/backend/internal/domain/dropasset"
	"github.com/droplink-labs/backend/internal/entity"
	"github.com/droplink-labs/backend/internal/model"
	"github.com/droplink-labs/backend/internal/repository"
	"github.com/droplink-labs/backend/pkg/errorx"
	"github.com/droplink-labs/backend/pkg/testutil"
	"github.com/droplink-labs/backend/pkg/xredis"
	"github.com/stretchr/testify/require"
)

func newTestDomains(ledger client.LedgerCaller) (DropDomain, ClaimDomain) {
	return newTestDomainsWithRedis(ledger, &testutil.MockRedisClient{})
}

func newTestDomainsWithRedis(
	ledger client.LedgerCaller, redisClient xredis.Client,
) (DropDomain, ClaimDomain) {
	dropRepo := repository.NewDropRepository()
	claimKeyRepo := repository.NewClaimKeyRepository()
	pendingClaimRepo := repository.NewPendingClaimRepository()
	pendingAccountRepo := repository.NewPendingAccountRepository()

	snowflakeNode, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}

	dropDomain := NewDropDomain(
		dropRepo, claimKeyRepo, pendingClaimRepo, ledger, redisClient)
	claimDomain := NewClaimDomain(
		dropRepo, claimKeyRepo, pendingClaimRepo, pendingAccountRepo,
		ledger, redisClient, snowflakeNode)

	return dropDomain, claimDomain
}

func requireErrorCode(t *testing.T, err error, code errorx.Code) {
	t.Helper()

	var errx errorx.Error
	require.ErrorAs(t, err, &errx)
	require.Equal(t, code, errx.Code)
}

func nativeRequired(amount int64, keyCount int) *big.Int {
	return dropasset.RequiredDeposit(entity.DropKindNative, big.NewInt(amount), keyCount)
}

func Test_dropDomain_CreateNearDrop(t *testing.T) {
	ctx := testutil.MockContext()
	ledger := &testutil.MockLedgerCaller{}
	dropDomain, _ := newTestDomains(ledger)

	required := nativeRequired(1000, 2)
	ctx = testutil.MockContextWithCaller(ctx, "funder.ledger")
	resp, err := dropDomain.CreateNearDrop(ctx, &model.CreateNearDropRequest{
		AmountPerClaim:  "1000",
		PublicKeys:      []string{"pk1", "pk2"},
		AttachedDeposit: required.String(),
	})
	require.NoError(t, err)
	require.NotZero(t, resp.DropID)
	require.Equal(t, required.String(), resp.RequiredDeposit)
	require.Equal(t, "0", resp.Refund)

	// An exact deposit leaves nothing to send back.
	require.Empty(t, ledger.Calls)

	got, err := dropDomain.GetDropByID(ctx, &model.GetDropByIDRequest{DropID: resp.DropID})
	require.NoError(t, err)
	require.Equal(t, "native", got.Drop.Kind)
	require.Equal(t, "funder.ledger", got.Drop.Funder)
	require.Equal(t, "1000", got.Drop.AmountPerClaim)
	require.Equal(t, int64(2), got.Drop.RemainingClaims)

	byKey, err := dropDomain.GetDropIDByKey(ctx, &model.GetDropIDByKeyRequest{PublicKey: "pk2"})
	require.NoError(t, err)
	require.Equal(t, resp.DropID, byKey.DropID)
}

func Test_dropDomain_CreateNearDrop_ExcessDeposit(t *testing.T) {
	ctx := testutil.MockContext()
	ledger := &testutil.MockLedgerCaller{}
	dropDomain, _ := newTestDomains(ledger)

	attached := new(big.Int).Add(nativeRequired(1000, 1), big.NewInt(500))
	ctx = testutil.MockContextWithCaller(ctx, "funder.ledger")
	resp, err := dropDomain.CreateNearDrop(ctx, &model.CreateNearDropRequest{
		AmountPerClaim:  "1000",
		PublicKeys:      []string{"pk1"},
		AttachedDeposit: attached.String(),
	})
	require.NoError(t, err)
	require.Equal(t, "500", resp.Refund)

	refunds := ledger.CallsTo("transfer")
	require.Len(t, refunds, 1)
	require.Equal(t, int64(0), refunds[0].CallID)
	require.Equal(t, "funder.ledger", refunds[0].Recipient)
	require.Equal(t, "500", refunds[0].Amount.String())
}

func Test_dropDomain_CreateNearDrop_InsufficientDeposit(t *testing.T) {
	ctx := testutil.MockContext()
	ledger := &testutil.MockLedgerCaller{}
	dropDomain, _ := newTestDomains(ledger)

	attached := new(big.Int).Sub(nativeRequired(1000, 1), big.NewInt(1))
	ctx = testutil.MockContextWithCaller(ctx, "funder.ledger")
	_, err := dropDomain.CreateNearDrop(ctx, &model.CreateNearDropRequest{
		AmountPerClaim:  "1000",
		PublicKeys:      []string{"pk1"},
		AttachedDeposit: attached.String(),
	})
	requireErrorCode(t, err, errorx.InsufficientDeposit)

	// Nothing was persisted and nothing was dispatched.
	require.Empty(t, ledger.Calls)
	_, err = dropDomain.GetDropIDByKey(ctx, &model.GetDropIDByKeyRequest{PublicKey: "pk1"})
	requireErrorCode(t, err, errorx.NotFound)
}

func Test_dropDomain_CreateNearDrop_InvalidRequests(t *testing.T) {
	ctx := testutil.MockContext()
	dropDomain, _ := newTestDomains(&testutil.MockLedgerCaller{})
	ctx = testutil.MockContextWithCaller(ctx, "funder.ledger")

	// Zero amount.
	_, err := dropDomain.CreateNearDrop(ctx, &model.CreateNearDropRequest{
		AmountPerClaim:  "0",
		PublicKeys:      []string{"pk1"},
		AttachedDeposit: "1",
	})
	requireErrorCode(t, err, errorx.BadRequest)

	// No keys.
	_, err = dropDomain.CreateNearDrop(ctx, &model.CreateNearDropRequest{
		AmountPerClaim:  "1000",
		AttachedDeposit: "1",
	})
	requireErrorCode(t, err, errorx.BadRequest)

	// The same key twice in one request.
	_, err = dropDomain.CreateNearDrop(ctx, &model.CreateNearDropRequest{
		AmountPerClaim:  "1000",
		PublicKeys:      []string{"pk1", "pk1"},
		AttachedDeposit: nativeRequired(1000, 2).String(),
	})
	requireErrorCode(t, err, errorx.BadRequest)
}

func Test_dropDomain_CreateNearDrop_KeyBoundTwice(t *testing.T) {
	ctx := testutil.MockContext()
	dropDomain, _ := newTestDomains(&testutil.MockLedgerCaller{})
	ctx = testutil.MockContextWithCaller(ctx, "funder.ledger")

	_, err := dropDomain.CreateNearDrop(ctx, &model.CreateNearDropRequest{
		AmountPerClaim:  "1000",
		PublicKeys:      []string{"pk1"},
		AttachedDeposit: nativeRequired(1000, 1).String(),
	})
	require.NoError(t, err)

	// A claim key identifies its drop, so it cannot serve two drops at
	// once.
	_, err = dropDomain.CreateNearDrop(ctx, &model.CreateNearDropRequest{
		AmountPerClaim:  "2000",
		PublicKeys:      []string{"pk1"},
		AttachedDeposit: nativeRequired(2000, 1).String(),
	})
	requireErrorCode(t, err, errorx.AlreadyExists)
}

func Test_dropDomain_FTOnTransfer(t *testing.T) {
	ctx := testutil.MockContext()
	dropDomain, _ := newTestDomains(&testutil.MockLedgerCaller{})

	funderCtx := testutil.MockContextWithCaller(ctx, "funder.ledger")
	required := dropasset.RequiredDeposit(entity.DropKindFT, big.NewInt(300), 2)
	resp, err := dropDomain.CreateFTDrop(funderCtx, &model.CreateFTDropRequest{
		AssetContract:   "token.ledger",
		AmountPerClaim:  "300",
		PublicKeys:      []string{"pk1", "pk2"},
		AttachedDeposit: required.String(),
	})
	require.NoError(t, err)

	got, err := dropDomain.GetDropByID(ctx, &model.GetDropByIDRequest{DropID: resp.DropID})
	require.NoError(t, err)
	require.False(t, got.Drop.Funded)

	msg := fmtDropID(resp.DropID)

	// Only the drop's token contract can confirm the funding.
	strangerCtx := testutil.MockContextWithCaller(ctx, "other-token.ledger")
	_, err = dropDomain.FTOnTransfer(strangerCtx, &model.FTOnTransferRequest{
		SenderID: "funder.ledger",
		Amount:   "600",
		Msg:      msg,
	})
	requireErrorCode(t, err, errorx.PermissionDenied)

	// The amount must cover every remaining claim exactly.
	custodianCtx := testutil.MockContextWithCaller(ctx, "token.ledger")
	_, err = dropDomain.FTOnTransfer(custodianCtx, &model.FTOnTransferRequest{
		SenderID: "funder.ledger",
		Amount:   "500",
		Msg:      msg,
	})
	requireErrorCode(t, err, errorx.BadRequest)

	funded, err := dropDomain.FTOnTransfer(custodianCtx, &model.FTOnTransferRequest{
		SenderID: "funder.ledger",
		Amount:   "600",
		Msg:      msg,
	})
	require.NoError(t, err)
	require.Equal(t, "0", funded.UnusedAmount)

	got, err = dropDomain.GetDropByID(ctx, &model.GetDropByIDRequest{DropID: resp.DropID})
	require.NoError(t, err)
	require.True(t, got.Drop.Funded)

	// Funding is one-shot.
	_, err = dropDomain.FTOnTransfer(custodianCtx, &model.FTOnTransferRequest{
		SenderID: "funder.ledger",
		Amount:   "600",
		Msg:      msg,
	})
	requireErrorCode(t, err, errorx.AlreadyExists)
}

func Test_dropDomain_NFTOnApprove(t *testing.T) {
	ctx := testutil.MockContext()
	dropDomain, _ := newTestDomains(&testutil.MockLedgerCaller{})

	funderCtx := testutil.MockContextWithCaller(ctx, "funder.ledger")

	required := dropasset.RequiredDeposit(entity.DropKindNFT, nil, 1)

	// A non-fungible drop binds exactly one key.
	_, err := dropDomain.CreateNFTDrop(funderCtx, &model.CreateNFTDropRequest{
		AssetContract:   "nft.ledger",
		AttachedDeposit: required.String(),
	})
	requireErrorCode(t, err, errorx.BadRequest)

	resp, err := dropDomain.CreateNFTDrop(funderCtx, &model.CreateNFTDropRequest{
		AssetContract:   "nft.ledger",
		PublicKey:       "pk1",
		AttachedDeposit: required.String(),
	})
	require.NoError(t, err)

	msg := fmtDropID(resp.DropID)
	custodianCtx := testutil.MockContextWithCaller(ctx, "nft.ledger")

	// Only a token owned by the funder can fund the drop.
	_, err = dropDomain.NFTOnApprove(custodianCtx, &model.NFTOnApproveRequest{
		TokenID: "token-1",
		OwnerID: "stranger.ledger",
		Msg:     msg,
	})
	requireErrorCode(t, err, errorx.PermissionDenied)

	_, err = dropDomain.NFTOnApprove(custodianCtx, &model.NFTOnApproveRequest{
		TokenID: "token-1",
		OwnerID: "funder.ledger",
		Msg:     msg,
	})
	require.NoError(t, err)

	got, err := dropDomain.GetDropByID(ctx, &model.GetDropByIDRequest{DropID: resp.DropID})
	require.NoError(t, err)
	require.Equal(t, "token-1", got.Drop.TokenID)

	// The token binding is one-shot too.
	_, err = dropDomain.NFTOnApprove(custodianCtx, &model.NFTOnApproveRequest{
		TokenID: "token-2",
		OwnerID: "funder.ledger",
		Msg:     msg,
	})
	requireErrorCode(t, err, errorx.AlreadyExists)
}

func Test_dropDomain_DeleteDropByID(t *testing.T) {
	ctx := testutil.MockContext()
	ledger := &testutil.MockLedgerCaller{}
	dropDomain, _ := newTestDomains(ledger)

	funderCtx := testutil.MockContextWithCaller(ctx, "funder.ledger")
	required := nativeRequired(1000, 2)
	resp, err := dropDomain.CreateNearDrop(funderCtx, &model.CreateNearDropRequest{
		AmountPerClaim:  "1000",
		PublicKeys:      []string{"pk1", "pk2"},
		AttachedDeposit: required.String(),
	})
	require.NoError(t, err)

	strangerCtx := testutil.MockContextWithCaller(ctx, "stranger.ledger")
	_, err = dropDomain.DeleteDropByID(strangerCtx, &model.DeleteDropByIDRequest{DropID: resp.DropID})
	requireErrorCode(t, err, errorx.PermissionDenied)

	deleted, err := dropDomain.DeleteDropByID(funderCtx, &model.DeleteDropByIDRequest{DropID: resp.DropID})
	require.NoError(t, err)
	require.Equal(t, required.String(), deleted.Refund)

	refunds := ledger.CallsTo("transfer")
	require.Len(t, refunds, 1)
	require.Equal(t, "funder.ledger", refunds[0].Recipient)
	require.Equal(t, required.String(), refunds[0].Amount.String())

	// The drop and its key bindings are gone.
	_, err = dropDomain.GetDropByID(ctx, &model.GetDropByIDRequest{DropID: resp.DropID})
	requireErrorCode(t, err, errorx.NotFound)
	_, err = dropDomain.GetDropIDByKey(ctx, &model.GetDropIDByKeyRequest{PublicKey: "pk1"})
	requireErrorCode(t, err, errorx.NotFound)

	_, err = dropDomain.DeleteDropByID(funderCtx, &model.DeleteDropByIDRequest{DropID: resp.DropID})
	requireErrorCode(t, err, errorx.NotFound)
}

func Test_dropDomain_DeleteDropByID_ReturnsCustody(t *testing.T) {
	ctx := testutil.MockContext()
	ledger := &testutil.MockLedgerCaller{}
	dropDomain, _ := newTestDomains(ledger)

	funderCtx := testutil.MockContextWithCaller(ctx, "funder.ledger")
	required := dropasset.RequiredDeposit(entity.DropKindFT, big.NewInt(300), 2)
	resp, err := dropDomain.CreateFTDrop(funderCtx, &model.CreateFTDropRequest{
		AssetContract:   "token.ledger",
		AmountPerClaim:  "300",
		PublicKeys:      []string{"pk1", "pk2"},
		AttachedDeposit: required.String(),
	})
	require.NoError(t, err)

	custodianCtx := testutil.MockContextWithCaller(ctx, "token.ledger")
	_, err = dropDomain.FTOnTransfer(custodianCtx, &model.FTOnTransferRequest{
		SenderID: "funder.ledger",
		Amount:   "600",
		Msg:      fmtDropID(resp.DropID),
	})
	require.NoError(t, err)

	_, err = dropDomain.DeleteDropByID(funderCtx, &model.DeleteDropByIDRequest{DropID: resp.DropID})
	require.NoError(t, err)

	// Deleting a funded drop sends the custodial tokens back besides the
	// deposit refund.
	compensations := ledger.CallsTo("transferFT")
	require.Len(t, compensations, 1)
	require.Equal(t, "token.ledger", compensations[0].Contract)
	require.Equal(t, "funder.ledger", compensations[0].Recipient)
	require.Equal(t, "600", compensations[0].Amount.String())
}

func Test_dropDomain_GetDropByID_Cache(t *testing.T) {
	ctx := testutil.MockContext()
	ledger := &testutil.MockLedgerCaller{}

	cache := map[string]model.Drop{}
	redisClient := &testutil.MockRedisClient{
		GetObjFunc: func(ctx context.Context, key string, v any) error {
			cached, ok := cache[key]
			if !ok {
				return xredis.ErrNil
			}

			*v.(*model.Drop) = cached
			return nil
		},
		SetObjFunc: func(ctx context.Context, key string, obj any, ttl time.Duration) error {
			cache[key] = obj.(model.Drop)
			return nil
		},
		DelFunc: func(ctx context.Context, keys ...string) error {
			for _, key := range keys {
				delete(cache, key)
			}

			return nil
		},
	}

	dropDomain, claimDomain := newTestDomainsWithRedis(ledger, redisClient)

	funderCtx := testutil.MockContextWithCaller(ctx, "funder.ledger")
	required := dropasset.RequiredDeposit(entity.DropKindFT, big.NewInt(300), 2)
	resp, err := dropDomain.CreateFTDrop(funderCtx, &model.CreateFTDropRequest{
		AssetContract:   "token.ledger",
		AmountPerClaim:  "300",
		PublicKeys:      []string{"pk1", "pk2"},
		AttachedDeposit: required.String(),
	})
	require.NoError(t, err)

	// The first read fills the cache.
	got, err := dropDomain.GetDropByID(ctx, &model.GetDropByIDRequest{DropID: resp.DropID})
	require.NoError(t, err)
	require.False(t, got.Drop.Funded)
	require.Len(t, cache, 1)

	// Later reads are served from the cache, not the database.
	cached := cache[dropCacheKey(resp.DropID)]
	cached.RemainingClaims = 99
	cache[dropCacheKey(resp.DropID)] = cached

	got, err = dropDomain.GetDropByID(ctx, &model.GetDropByIDRequest{DropID: resp.DropID})
	require.NoError(t, err)
	require.Equal(t, int64(99), got.Drop.RemainingClaims)

	// Funding confirmation invalidates the stale entry.
	custodianCtx := testutil.MockContextWithCaller(ctx, "token.ledger")
	_, err = dropDomain.FTOnTransfer(custodianCtx, &model.FTOnTransferRequest{
		SenderID: "funder.ledger",
		Amount:   "600",
		Msg:      fmtDropID(resp.DropID),
	})
	require.NoError(t, err)
	require.Empty(t, cache)

	got, err = dropDomain.GetDropByID(ctx, &model.GetDropByIDRequest{DropID: resp.DropID})
	require.NoError(t, err)
	require.True(t, got.Drop.Funded)
	require.Equal(t, int64(2), got.Drop.RemainingClaims)
	require.Len(t, cache, 1)

	// So does a claim.
	signerCtx := testutil.MockContextWithSigner(ctx, "", "pk1")
	claimed, err := claimDomain.ClaimFor(signerCtx, &model.ClaimForRequest{
		DestinationAccountID: "alice.ledger",
	})
	require.NoError(t, err)
	require.Empty(t, cache)

	got, err = dropDomain.GetDropByID(ctx, &model.GetDropByIDRequest{DropID: resp.DropID})
	require.NoError(t, err)
	require.Equal(t, int64(1), got.Drop.RemainingClaims)

	// And a delete. Afterwards the miss falls through to the database and
	// reports not-found like for a drop that never existed.
	_, err = claimDomain.ResolveClaim(ctx, &model.ResolveClaimRequest{
		CallID:  claimed.CallID,
		Success: true,
	})
	require.NoError(t, err)

	_, err = dropDomain.DeleteDropByID(funderCtx, &model.DeleteDropByIDRequest{DropID: resp.DropID})
	require.NoError(t, err)
	require.Empty(t, cache)

	_, err = dropDomain.GetDropByID(ctx, &model.GetDropByIDRequest{DropID: resp.DropID})
	requireErrorCode(t, err, errorx.NotFound)
}

func fmtDropID(id int64) string {
	return strconv.FormatInt(id, 10)
}
