package domain

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"math/big"
	"strconv"

	"github.com/droplink-labs/backend/internal/client"
	"github.com/droplink-labs/backend/internal/domain/dropasset"
	"github.com/droplink-labs/backend/internal/entity"
	"github.com/droplink-labs/backend/internal/model"
	"github.com/droplink-labs/backend/internal/repository"
	"github.com/droplink-labs/backend/pkg/errorx"
	"github.com/droplink-labs/backend/pkg/xcontext"
	"github.com/droplink-labs/backend/pkg/xredis"
	"gorm.io/gorm"
)

type DropDomain interface {
	CreateNearDrop(context.Context, *model.CreateNearDropRequest) (*model.CreateNearDropResponse, error)
	CreateFTDrop(context.Context, *model.CreateFTDropRequest) (*model.CreateFTDropResponse, error)
	CreateNFTDrop(context.Context, *model.CreateNFTDropRequest) (*model.CreateNFTDropResponse, error)
	DeleteDropByID(context.Context, *model.DeleteDropByIDRequest) (*model.DeleteDropByIDResponse, error)
	GetDropByID(context.Context, *model.GetDropByIDRequest) (*model.GetDropByIDResponse, error)
	GetDropIDByKey(context.Context, *model.GetDropIDByKeyRequest) (*model.GetDropIDByKeyResponse, error)
	FTOnTransfer(context.Context, *model.FTOnTransferRequest) (*model.FTOnTransferResponse, error)
	NFTOnApprove(context.Context, *model.NFTOnApproveRequest) (*model.NFTOnApproveResponse, error)
}

type dropDomain struct {
	dropRepo         repository.DropRepository
	claimKeyRepo     repository.ClaimKeyRepository
	pendingClaimRepo repository.PendingClaimRepository
	ledgerCaller     client.LedgerCaller
	redisClient      xredis.Client
}

func NewDropDomain(
	dropRepo repository.DropRepository,
	claimKeyRepo repository.ClaimKeyRepository,
	pendingClaimRepo repository.PendingClaimRepository,
	ledgerCaller client.LedgerCaller,
	redisClient xredis.Client,
) *dropDomain {
	return &dropDomain{
		dropRepo:         dropRepo,
		claimKeyRepo:     claimKeyRepo,
		pendingClaimRepo: pendingClaimRepo,
		ledgerCaller:     ledgerCaller,
		redisClient:      redisClient,
	}
}

func dropCacheKey(id int64) string {
	return fmt.Sprintf("drops:%d", id)
}

func (d *dropDomain) CreateNearDrop(
	ctx context.Context, req *model.CreateNearDropRequest,
) (*model.CreateNearDropResponse, error) {
	amount, err := entity.ParseBigInt(req.AmountPerClaim)
	if err != nil || amount.Sign() <= 0 {
		return nil, errorx.New(errorx.BadRequest, "Invalid amount per claim")
	}

	drop := &entity.Drop{
		Kind:           entity.DropKindNative,
		AmountPerClaim: amount,
	}

	result, err := d.createDrop(ctx, drop, req.PublicKeys, req.AttachedDeposit)
	if err != nil {
		return nil, err
	}

	return &model.CreateNearDropResponse{
		DropID:          result.dropID,
		RequiredDeposit: result.required.String(),
		Refund:          result.refund.String(),
	}, nil
}

func (d *dropDomain) CreateFTDrop(
	ctx context.Context, req *model.CreateFTDropRequest,
) (*model.CreateFTDropResponse, error) {
	if req.AssetContract == "" {
		return nil, errorx.New(errorx.BadRequest, "Require an asset contract")
	}

	amount, err := entity.ParseBigInt(req.AmountPerClaim)
	if err != nil || amount.Sign() <= 0 {
		return nil, errorx.New(errorx.BadRequest, "Invalid amount per claim")
	}

	drop := &entity.Drop{
		Kind:           entity.DropKindFT,
		AmountPerClaim: amount,
		AssetContract:  sql.NullString{Valid: true, String: req.AssetContract},
	}

	result, err := d.createDrop(ctx, drop, req.PublicKeys, req.AttachedDeposit)
	if err != nil {
		return nil, err
	}

	return &model.CreateFTDropResponse{
		DropID:          result.dropID,
		RequiredDeposit: result.required.String(),
		Refund:          result.refund.String(),
	}, nil
}

func (d *dropDomain) CreateNFTDrop(
	ctx context.Context, req *model.CreateNFTDropRequest,
) (*model.CreateNFTDropResponse, error) {
	if req.AssetContract == "" {
		return nil, errorx.New(errorx.BadRequest, "Require an asset contract")
	}

	drop := &entity.Drop{
		Kind:          entity.DropKindNFT,
		AssetContract: sql.NullString{Valid: true, String: req.AssetContract},
	}

	// A non-fungible drop carries a single token, so it binds exactly one
	// key.
	result, err := d.createDrop(ctx, drop, []string{req.PublicKey}, req.AttachedDeposit)
	if err != nil {
		return nil, err
	}

	return &model.CreateNFTDropResponse{
		DropID:          result.dropID,
		RequiredDeposit: result.required.String(),
		Refund:          result.refund.String(),
	}, nil
}

type createDropResult struct {
	dropID   int64
	required *big.Int
	refund   *big.Int
}

func (d *dropDomain) createDrop(
	ctx context.Context,
	drop *entity.Drop,
	publicKeys []string,
	attachedDeposit string,
) (*createDropResult, error) {
	funder := xcontext.RequestAccountID(ctx)
	if funder == "" {
		return nil, errorx.New(errorx.Unauthenticated, "Not determined the funder account")
	}

	if len(publicKeys) == 0 {
		return nil, errorx.New(errorx.BadRequest, "Require at least one public key")
	}

	seen := map[string]any{}
	for _, pk := range publicKeys {
		if pk == "" {
			return nil, errorx.New(errorx.BadRequest, "Got an empty public key")
		}

		if _, ok := seen[pk]; ok {
			return nil, errorx.New(errorx.BadRequest, "Got a duplicated public key %s", pk)
		}

		seen[pk] = nil
	}

	attached, err := entity.ParseBigInt(attachedDeposit)
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "Invalid attached deposit")
	}

	drop.Funder = funder
	drop.RemainingClaims = int64(len(publicKeys))

	strategy, err := dropasset.New(drop, d.ledgerCaller)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create the drop strategy: %v", err)
		return nil, errorx.Unknown
	}

	required := strategy.RequiredDeposit(len(publicKeys))
	if attached.Cmp(required) < 0 {
		return nil, errorx.New(errorx.InsufficientDeposit,
			"Require a deposit of at least %s", required)
	}

	existed, err := d.claimKeyRepo.GetExisted(ctx, publicKeys)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot check existed claim keys: %v", err)
		return nil, errorx.Unknown
	}

	if len(existed) > 0 {
		return nil, errorx.New(errorx.AlreadyExists,
			"Public key %s is already bound to a drop", existed[0])
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	if err := d.dropRepo.Create(ctx, drop); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create drop: %v", err)
		return nil, errorx.Unknown
	}

	keys := make([]entity.ClaimKey, 0, len(publicKeys))
	for _, pk := range publicKeys {
		keys = append(keys, entity.ClaimKey{PublicKey: pk, DropID: drop.ID})
	}

	if err := d.claimKeyRepo.CreateAll(ctx, keys); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot bind claim keys: %v", err)
		return nil, errorx.Unknown
	}

	xcontext.WithCommitDBTransaction(ctx)

	// The part of the deposit above the requirement goes straight back to
	// the funder. The drop is already persisted, so a refused refund call
	// is logged but does not fail the creation.
	refund := new(big.Int).Sub(&attached.Int, required)
	if refund.Sign() > 0 {
		if err := d.ledgerCaller.Transfer(ctx, 0, funder, refund); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot refund the excess deposit: %v", err)
		}
	}

	return &createDropResult{dropID: drop.ID, required: required, refund: refund}, nil
}

func (d *dropDomain) DeleteDropByID(
	ctx context.Context, req *model.DeleteDropByIDRequest,
) (*model.DeleteDropByIDResponse, error) {
	drop, err := d.dropRepo.GetByID(ctx, req.DropID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found drop")
		}

		xcontext.Logger(ctx).Errorf("Cannot get drop: %v", err)
		return nil, errorx.Unknown
	}

	if drop.Funder != xcontext.RequestAccountID(ctx) {
		return nil, errorx.New(errorx.PermissionDenied, "Only the funder can delete the drop")
	}

	// Claims that already consumed their key still reference the drop's
	// snapshot, but their storage refund must not be paid twice.
	pending, err := d.pendingClaimRepo.CountByDropID(ctx, req.DropID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot count pending claims: %v", err)
		return nil, errorx.Unknown
	}

	if pending > 0 {
		return nil, errorx.New(errorx.Unavailable,
			"Drop has %d unresolved claims, retry later", pending)
	}

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	// The bindings reference the drop row, so they have to go first.
	if err := d.claimKeyRepo.DeleteByDropID(ctx, req.DropID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot delete claim keys: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.dropRepo.DeleteByID(ctx, req.DropID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found drop")
		}

		xcontext.Logger(ctx).Errorf("Cannot delete drop: %v", err)
		return nil, errorx.Unknown
	}

	xcontext.WithCommitDBTransaction(ctx)

	if err := d.redisClient.Del(ctx, dropCacheKey(req.DropID)); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot invalidate drop cache: %v", err)
	}

	// Give back the full remaining reserve, then undo the funding.
	strategy, err := dropasset.New(drop, d.ledgerCaller)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create the drop strategy: %v", err)
		return nil, errorx.Unknown
	}

	refund := strategy.RequiredDeposit(int(drop.RemainingClaims))
	if err := d.ledgerCaller.Transfer(ctx, 0, drop.Funder, refund); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot refund the drop reserve: %v", err)
	}

	switch {
	case drop.Kind == entity.DropKindFT && drop.Funded:
		tokens := new(big.Int).Mul(&drop.AmountPerClaim.Int, big.NewInt(drop.RemainingClaims))
		err := d.ledgerCaller.TransferFT(ctx, 0, drop.AssetContract.String, drop.Funder, tokens)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot return the custodial tokens: %v", err)
		}

	case drop.Kind == entity.DropKindNFT && drop.TokenID.String != "":
		err := d.ledgerCaller.TransferNFT(
			ctx, 0, drop.AssetContract.String, drop.TokenID.String, drop.Funder)
		if err != nil {
			xcontext.Logger(ctx).Errorf("Cannot return the escrowed token: %v", err)
		}
	}

	return &model.DeleteDropByIDResponse{Refund: refund.String()}, nil
}

func (d *dropDomain) GetDropByID(
	ctx context.Context, req *model.GetDropByIDRequest,
) (*model.GetDropByIDResponse, error) {
	var cached model.Drop
	err := d.redisClient.GetObj(ctx, dropCacheKey(req.DropID), &cached)
	if err == nil {
		return &model.GetDropByIDResponse{Drop: cached}, nil
	}

	if err != xredis.ErrNil {
		xcontext.Logger(ctx).Warnf("Cannot get drop from cache: %v", err)
	}

	drop, err := d.dropRepo.GetByID(ctx, req.DropID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found drop")
		}

		xcontext.Logger(ctx).Errorf("Cannot get drop: %v", err)
		return nil, errorx.Unknown
	}

	converted := model.ConvertDrop(drop)
	ttl := xcontext.Configs(ctx).Ledger.CacheTTL
	if err := d.redisClient.SetObj(ctx, dropCacheKey(req.DropID), converted, ttl); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot cache drop: %v", err)
	}

	return &model.GetDropByIDResponse{Drop: converted}, nil
}

func (d *dropDomain) GetDropIDByKey(
	ctx context.Context, req *model.GetDropIDByKeyRequest,
) (*model.GetDropIDByKeyResponse, error) {
	key, err := d.claimKeyRepo.GetByPublicKey(ctx, req.PublicKey)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found claim key")
		}

		xcontext.Logger(ctx).Errorf("Cannot get claim key: %v", err)
		return nil, errorx.Unknown
	}

	return &model.GetDropIDByKeyResponse{DropID: key.DropID}, nil
}

// FTOnTransfer is the funding hook the fungible-token custodian invokes
// after the funder transferred the drop's tokens into our custody. The
// authenticated caller must be the drop's asset contract, and the amount
// must cover every remaining claim exactly.
func (d *dropDomain) FTOnTransfer(
	ctx context.Context, req *model.FTOnTransferRequest,
) (*model.FTOnTransferResponse, error) {
	dropID, err := strconv.ParseInt(req.Msg, 10, 64)
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "Invalid drop id %s", req.Msg)
	}

	drop, err := d.dropRepo.GetByID(ctx, dropID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found drop")
		}

		xcontext.Logger(ctx).Errorf("Cannot get drop: %v", err)
		return nil, errorx.Unknown
	}

	if drop.Kind != entity.DropKindFT {
		return nil, errorx.New(errorx.BadRequest, "Drop %d holds no fungible tokens", dropID)
	}

	if drop.AssetContract.String != xcontext.RequestAccountID(ctx) {
		return nil, errorx.New(errorx.PermissionDenied,
			"Only the drop's asset contract can fund it")
	}

	if drop.Funded {
		return nil, errorx.New(errorx.AlreadyExists, "Drop is already funded")
	}

	amount, err := entity.ParseBigInt(req.Amount)
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "Invalid amount")
	}

	expected := new(big.Int).Mul(&drop.AmountPerClaim.Int, big.NewInt(drop.RemainingClaims))
	if amount.Cmp(expected) != 0 {
		return nil, errorx.New(errorx.BadRequest,
			"Require a funding amount of exactly %s", expected)
	}

	if err := d.dropRepo.SetFunded(ctx, dropID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.AlreadyExists, "Drop is already funded")
		}

		xcontext.Logger(ctx).Errorf("Cannot mark drop as funded: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.redisClient.Del(ctx, dropCacheKey(dropID)); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot invalidate drop cache: %v", err)
	}

	return &model.FTOnTransferResponse{UnusedAmount: "0"}, nil
}

// NFTOnApprove is the funding hook the non-fungible-token custodian invokes
// after the funder approved us to transfer the dropped token.
func (d *dropDomain) NFTOnApprove(
	ctx context.Context, req *model.NFTOnApproveRequest,
) (*model.NFTOnApproveResponse, error) {
	if req.TokenID == "" {
		return nil, errorx.New(errorx.BadRequest, "Require a token id")
	}

	dropID, err := strconv.ParseInt(req.Msg, 10, 64)
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "Invalid drop id %s", req.Msg)
	}

	drop, err := d.dropRepo.GetByID(ctx, dropID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found drop")
		}

		xcontext.Logger(ctx).Errorf("Cannot get drop: %v", err)
		return nil, errorx.Unknown
	}

	if drop.Kind != entity.DropKindNFT {
		return nil, errorx.New(errorx.BadRequest, "Drop %d holds no token", dropID)
	}

	if drop.AssetContract.String != xcontext.RequestAccountID(ctx) {
		return nil, errorx.New(errorx.PermissionDenied,
			"Only the drop's asset contract can fund it")
	}

	if req.OwnerID != drop.Funder {
		return nil, errorx.New(errorx.PermissionDenied,
			"Only a token of the funder can fund the drop")
	}

	if err := d.dropRepo.SetTokenID(ctx, dropID, req.TokenID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.AlreadyExists, "Drop is already funded")
		}

		xcontext.Logger(ctx).Errorf("Cannot set the drop token: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.redisClient.Del(ctx, dropCacheKey(dropID)); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot invalidate drop cache: %v", err)
	}

	return &model.NFTOnApproveResponse{}, nil
}
