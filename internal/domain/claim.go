package domain

import (
	"context"
	"errors"
	"fmt"

	"github.com/bwmarrin/snowflake"
	"github.com/droplink-labs/backend/internal/client"
	"github.com/droplink-labs/backend/internal/common"
	"github.com/droplink-labs/backend/internal/domain/dropasset"
	"github.com/droplink-labs/backend/internal/entity"
	"github.com/droplink-labs/backend/internal/model"
	"github.com/droplink-labs/backend/internal/repository"
	"github.com/droplink-labs/backend/pkg/errorx"
	"github.com/droplink-labs/backend/pkg/xcontext"
	"github.com/droplink-labs/backend/pkg/xredis"
	"gorm.io/gorm"
)

type ClaimDomain interface {
	ClaimFor(context.Context, *model.ClaimForRequest) (*model.ClaimForResponse, error)
	CreateAccountAndClaim(context.Context, *model.CreateAccountAndClaimRequest) (*model.CreateAccountAndClaimResponse, error)
	ResolveClaim(context.Context, *model.ResolveClaimRequest) (*model.ResolveClaimResponse, error)
	ResolveAccountCreate(context.Context, *model.ResolveAccountCreateRequest) (*model.ResolveAccountCreateResponse, error)
}

type claimDomain struct {
	dropRepo           repository.DropRepository
	claimKeyRepo       repository.ClaimKeyRepository
	pendingClaimRepo   repository.PendingClaimRepository
	pendingAccountRepo repository.PendingAccountRepository
	ledgerCaller       client.LedgerCaller
	redisClient        xredis.Client
	snowflakeNode      *snowflake.Node
}

func NewClaimDomain(
	dropRepo repository.DropRepository,
	claimKeyRepo repository.ClaimKeyRepository,
	pendingClaimRepo repository.PendingClaimRepository,
	pendingAccountRepo repository.PendingAccountRepository,
	ledgerCaller client.LedgerCaller,
	redisClient xredis.Client,
	snowflakeNode *snowflake.Node,
) *claimDomain {
	return &claimDomain{
		dropRepo:           dropRepo,
		claimKeyRepo:       claimKeyRepo,
		pendingClaimRepo:   pendingClaimRepo,
		pendingAccountRepo: pendingAccountRepo,
		ledgerCaller:       ledgerCaller,
		redisClient:        redisClient,
		snowflakeNode:      snowflakeNode,
	}
}

func (d *claimDomain) ClaimFor(
	ctx context.Context, req *model.ClaimForRequest,
) (*model.ClaimForResponse, error) {
	if req.DestinationAccountID == "" {
		return nil, errorx.New(errorx.BadRequest, "Require a destination account")
	}

	dropID, callID, err := d.claim(ctx, req.DestinationAccountID, false)
	if err != nil {
		return nil, err
	}

	return &model.ClaimForResponse{DropID: dropID, CallID: callID}, nil
}

func (d *claimDomain) CreateAccountAndClaim(
	ctx context.Context, req *model.CreateAccountAndClaimRequest,
) (*model.CreateAccountAndClaimResponse, error) {
	if req.NewAccountID == "" {
		return nil, errorx.New(errorx.BadRequest, "Require a new account id")
	}

	publicKey := xcontext.SignerPublicKey(ctx)
	if publicKey == "" {
		return nil, errorx.New(errorx.Unauthenticated, "Not determined the claim key")
	}

	// Fail before the account creation if the key cannot claim anyway. The
	// key is NOT consumed here; a failed creation must leave it usable.
	if _, err := d.claimableDrop(ctx, publicKey); err != nil {
		return nil, err
	}

	callID := d.snowflakeNode.Generate().Int64()
	pending := &entity.PendingAccount{
		CallID:       callID,
		PublicKey:    publicKey,
		NewAccountID: req.NewAccountID,
	}

	if err := d.pendingAccountRepo.Create(ctx, pending); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create pending account: %v", err)
		return nil, errorx.Unknown
	}

	err := d.ledgerCaller.CreateAccount(ctx, callID, req.NewAccountID, publicKey)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot dispatch the account creation: %v", err)
		common.PromCounters[common.LedgerDispatchFailureTotal].
			WithLabelValues("createAccount").Inc()

		if _, err := d.pendingAccountRepo.Take(ctx, callID); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot discard pending account: %v", err)
		}

		return nil, errorx.New(errorx.Unavailable, "Cannot reach the ledger, retry later")
	}

	return &model.CreateAccountAndClaimResponse{CallID: callID}, nil
}

// ResolveClaim consumes the pending claim for the reported call and settles
// it: refunds flow back to the funder and, for fungible drops whose transfer
// failed, the tokens return from custody. A second report of the same call
// finds no pending claim and changes nothing.
func (d *claimDomain) ResolveClaim(
	ctx context.Context, req *model.ResolveClaimRequest,
) (*model.ResolveClaimResponse, error) {
	if err := d.resolve(ctx, req.CallID, req.Success); err != nil {
		return nil, err
	}

	return &model.ResolveClaimResponse{}, nil
}

func (d *claimDomain) ResolveAccountCreate(
	ctx context.Context, req *model.ResolveAccountCreateRequest,
) (*model.ResolveAccountCreateResponse, error) {
	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	pending, err := d.pendingAccountRepo.Take(ctx, req.CallID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found pending account")
		}

		xcontext.Logger(ctx).Errorf("Cannot take pending account: %v", err)
		return nil, errorx.Unknown
	}

	xcontext.WithCommitDBTransaction(ctx)

	if !req.Created {
		// The account does not exist and nothing was transferred. The
		// claim key survives for another attempt.
		xcontext.Logger(ctx).Infof(
			"Creation of %s failed, key %s stays usable", pending.NewAccountID, pending.PublicKey)
		return &model.ResolveAccountCreateResponse{}, nil
	}

	ctx = xcontext.WithSignerPublicKey(ctx, pending.PublicKey)
	if _, _, err := d.claim(ctx, pending.NewAccountID, true); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot claim for the created account: %v", err)
		return nil, err
	}

	return &model.ResolveAccountCreateResponse{}, nil
}

// claimableDrop loads the drop bound to publicKey and checks its claim
// precondition without consuming anything.
func (d *claimDomain) claimableDrop(
	ctx context.Context, publicKey string,
) (*entity.Drop, error) {
	key, err := d.claimKeyRepo.GetByPublicKey(ctx, publicKey)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found claim key")
		}

		xcontext.Logger(ctx).Errorf("Cannot get claim key: %v", err)
		return nil, errorx.Unknown
	}

	drop, err := d.dropRepo.GetByID(ctx, key.DropID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get drop of key %s: %v", publicKey, err)
		return nil, errorx.Unknown
	}

	strategy, err := dropasset.New(drop, d.ledgerCaller)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create the drop strategy: %v", err)
		return nil, errorx.Unknown
	}

	if err := strategy.ValidateClaimable(); err != nil {
		return nil, err
	}

	return drop, nil
}

// claim burns the signer's claim key and dispatches the asset transfer to
// destination. The key burn, the drop counter update, and the pending-claim
// snapshot commit atomically before the transfer leaves the process.
func (d *claimDomain) claim(
	ctx context.Context, destination string, accountCreated bool,
) (int64, int64, error) {
	publicKey := xcontext.SignerPublicKey(ctx)
	if publicKey == "" {
		return 0, 0, errorx.New(errorx.Unauthenticated, "Not determined the claim key")
	}

	drop, err := d.claimableDrop(ctx, publicKey)
	if err != nil {
		return 0, 0, err
	}

	strategy, err := dropasset.New(drop, d.ledgerCaller)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create the drop strategy: %v", err)
		return 0, 0, errorx.Unknown
	}

	callID := d.snowflakeNode.Generate().Int64()

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	snapshot, dropDeleted, err := d.claimKeyRepo.Consume(ctx, publicKey)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, 0, errorx.New(errorx.NotFound, "Not found claim key")
		}

		xcontext.Logger(ctx).Errorf("Cannot consume claim key: %v", err)
		return 0, 0, errorx.Unknown
	}

	pending := &entity.PendingClaim{
		CallID:         callID,
		DropID:         snapshot.ID,
		Kind:           snapshot.Kind,
		Funder:         snapshot.Funder,
		AmountPerClaim: snapshot.AmountPerClaim,
		AssetContract:  snapshot.AssetContract,
		TokenID:        snapshot.TokenID,
		Destination:    destination,
		AccountCreated: accountCreated,
		DropDeleted:    dropDeleted,
	}

	if err := d.pendingClaimRepo.Create(ctx, pending); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create pending claim: %v", err)
		return 0, 0, errorx.Unknown
	}

	xcontext.WithCommitDBTransaction(ctx)

	if err := d.redisClient.Del(ctx, dropCacheKey(snapshot.ID)); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot invalidate drop cache: %v", err)
	}

	if err := strategy.DispatchClaim(ctx, destination, callID); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot dispatch the claim transfer: %v", err)
		common.PromCounters[common.LedgerDispatchFailureTotal].
			WithLabelValues("claim").Inc()

		// The key is burnt and the snapshot is committed. Settle right
		// away as a failed transfer so the funder gets compensated. The
		// claim transaction on ctx is finished at this point, so resolve
		// begins a fresh one of its own.
		if err := d.resolve(ctx, callID, false); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot settle the undispatched claim: %v", err)
		}

		return 0, 0, errorx.New(errorx.Unavailable, "Cannot reach the ledger")
	}

	return snapshot.ID, callID, nil
}

func (d *claimDomain) resolve(ctx context.Context, callID int64, success bool) error {
	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	pending, err := d.pendingClaimRepo.Take(ctx, callID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorx.New(errorx.NotFound, "Not found pending claim")
		}

		xcontext.Logger(ctx).Errorf("Cannot take pending claim: %v", err)
		return errorx.Unknown
	}

	xcontext.WithCommitDBTransaction(ctx)

	strategy, err := dropasset.FromPending(pending, d.ledgerCaller)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create the drop strategy: %v", err)
		return errorx.Unknown
	}

	common.PromCounters[common.ClaimResolvedTotal].
		WithLabelValues(string(pending.Kind), fmt.Sprintf("%t", success)).Inc()

	// The pending claim is consumed either way. A refused compensation
	// call is logged for the operator instead of failing the resolution,
	// since the connector cannot retry a consumed call id.
	if err := strategy.Resolve(ctx, pending, success); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot settle claim %d: %v", callID, err)
		common.PromCounters[common.LedgerDispatchFailureTotal].
			WithLabelValues("resolve").Inc()
	}

	return nil
}
