package dropasset

import (
	"math/big"

	"github.com/droplink-labs/backend/internal/entity"
)

// Reserve model. Amounts use 24 decimal places, so every constant is a
// *big.Int. The deposit attached to a create call has to cover the storage
// of the drop record and its key bindings, plus one account-creation fee and
// one access-grant allowance per key; whatever part of the reserve ends up
// unused flows back to the funder during claim resolution.

func units(s string) *big.Int {
	i, ok := new(big.Int).SetString(s, 10)
	if !ok {
		panic("invalid unit constant " + s)
	}
	return i
}

var (
	// StorageByteCost is the host's price of one persisted byte.
	StorageByteCost = units("10000000000000000000") // 1e19

	// AccessKeyStorage covers one claim-key access grant on the host.
	AccessKeyStorage = units("1000000000000000000000") // 0.001

	// AccessKeyAllowance covers the execution fees a claim key may burn.
	AccessKeyAllowance = units("400000000000000000000000") // 0.4

	// CreateAccountFee is the host's fee for creating an account with the
	// longest possible name.
	CreateAccountFee = units("1840000000000000000000") // 0.00184
)

// Persisted byte sizes of the state layout.
const (
	publicKeyBytes = 64
	accountBytes   = 64
	dropIDBytes    = 8
	kindTagBytes   = 1
	amountBytes    = 16
	tokenIDBytes   = 64
	counterBytes   = 8
)

func dropRecordBytes(kind entity.DropKind) int64 {
	common := int64(dropIDBytes + kindTagBytes + accountBytes + counterBytes)
	switch kind {
	case entity.DropKindFT:
		return common + amountBytes + accountBytes + 1
	case entity.DropKindNFT:
		return common + accountBytes + tokenIDBytes
	default:
		return common + amountBytes
	}
}

// DropReserve is the storage cost of the drop record plus keyCount key
// bindings.
func DropReserve(kind entity.DropKind, keyCount int) *big.Int {
	bytes := dropRecordBytes(kind) + int64(keyCount)*(publicKeyBytes+dropIDBytes)
	return new(big.Int).Mul(StorageByteCost, big.NewInt(bytes))
}

// BindingReserve is the per-key deposit besides the binding's storage: the
// access grant, its allowance, and one default account-creation fee.
func BindingReserve() *big.Int {
	reserve := new(big.Int).Add(AccessKeyStorage, AccessKeyAllowance)
	return reserve.Add(reserve, CreateAccountFee)
}

// RequiredDeposit is the minimum value a funder must attach to create a drop
// of the given kind with keyCount claim keys. Native drops additionally
// escrow amountPerClaim for every key.
func RequiredDeposit(kind entity.DropKind, amountPerClaim *big.Int, keyCount int) *big.Int {
	required := DropReserve(kind, keyCount)

	perKey := BindingReserve()
	if kind == entity.DropKindNative {
		perKey.Add(perKey, amountPerClaim)
	}

	return required.Add(required, perKey.Mul(perKey, big.NewInt(int64(keyCount))))
}

// ClaimRefund is the amount returned to the funder once a claim resolves:
// the key's storage reserve, the creation fee if no account was created, the
// drop record's reserve if this claim deleted the drop, and, for native
// drops whose transfer failed, the escrowed amount itself.
func ClaimRefund(
	kind entity.DropKind,
	amountPerClaim *big.Int,
	accountCreated bool,
	dropDeleted bool,
	transferFailed bool,
) *big.Int {
	refund := new(big.Int).Set(AccessKeyStorage)

	if !accountCreated {
		refund.Add(refund, CreateAccountFee)
	}

	if dropDeleted {
		refund.Add(refund, DropReserve(kind, 0))
	}

	if transferFailed && kind == entity.DropKindNative {
		refund.Add(refund, amountPerClaim)
	}

	return refund
}
