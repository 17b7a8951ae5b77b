package client

import (
	"context"
	"fmt"
	"math/big"

	"github.com/droplink-labs/backend/pkg/xcontext"
	"github.com/ethereum/go-ethereum/rpc"
)

// LedgerCaller dispatches external calls to the ledger connector. Every
// mutating call is asynchronous on the ledger side: the connector accepts the
// request, executes it on chain, and later reports the outcome for callID
// through the resolution entry points (or the outcome topic). A zero callID
// marks a fire-and-forget call whose outcome nobody waits for, e.g. refunds.
type LedgerCaller interface {
	// Transfer moves native tokens from our account to the recipient.
	Transfer(ctx context.Context, callID int64, recipient string, amount *big.Int) error

	// CreateAccount asks the top-level account factory to create a named
	// account owned by publicKey.
	CreateAccount(ctx context.Context, callID int64, accountID, publicKey string) error

	// ClaimFT chains a storage registration and a token transfer against
	// the fungible-token custodian.
	ClaimFT(ctx context.Context, callID int64, ftContract, recipient string, amount *big.Int) error

	// TransferFT issues a single token transfer from our custodial balance.
	TransferFT(ctx context.Context, callID int64, ftContract, recipient string, amount *big.Int) error

	// TransferNFT moves the token out of the custodian's escrow.
	TransferNFT(ctx context.Context, callID int64, nftContract, tokenID, recipient string) error

	Close()
}

type ledgerCaller struct {
	client *rpc.Client
}

func NewLedgerCaller(client *rpc.Client) *ledgerCaller {
	return &ledgerCaller{client: client}
}

func (c *ledgerCaller) Transfer(
	ctx context.Context, callID int64, recipient string, amount *big.Int,
) error {
	var accepted bool
	return c.call(ctx, &accepted, "transfer", callID, recipient, amount.String())
}

func (c *ledgerCaller) CreateAccount(
	ctx context.Context, callID int64, accountID, publicKey string,
) error {
	var accepted bool
	return c.call(ctx, &accepted, "createAccount",
		callID, xcontext.Configs(ctx).Ledger.TopLevelAccount, accountID, publicKey)
}

func (c *ledgerCaller) ClaimFT(
	ctx context.Context, callID int64, ftContract, recipient string, amount *big.Int,
) error {
	var accepted bool
	return c.call(ctx, &accepted, "claimFT", callID, ftContract, recipient, amount.String())
}

func (c *ledgerCaller) TransferFT(
	ctx context.Context, callID int64, ftContract, recipient string, amount *big.Int,
) error {
	var accepted bool
	return c.call(ctx, &accepted, "transferFT", callID, ftContract, recipient, amount.String())
}

func (c *ledgerCaller) TransferNFT(
	ctx context.Context, callID int64, nftContract, tokenID, recipient string,
) error {
	var accepted bool
	return c.call(ctx, &accepted, "transferNFT", callID, nftContract, tokenID, recipient)
}

func (c *ledgerCaller) Close() {
	c.client.Close()
}

func (c *ledgerCaller) call(ctx context.Context, result any, funcName string, args ...any) error {
	return c.client.CallContext(ctx, result, c.fname(ctx, funcName), args...)
}

func (c *ledgerCaller) fname(ctx context.Context, funcName string) string {
	return fmt.Sprintf("%s_%s", xcontext.Configs(ctx).Ledger.RPCName, funcName)
}
