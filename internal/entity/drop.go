package entity

import (
	"database/sql"
	"time"

	"github.com/droplink-labs/backend/pkg/enum"
)

type DropKind string

var (
	DropKindNative = enum.New(DropKind("native"))
	DropKindFT     = enum.New(DropKind("ft"))
	DropKindNFT    = enum.New(DropKind("nft"))
)

// Drop is a funded, claimable distribution of one asset kind, split across
// one or more claim keys. The auto-increment primary key doubles as the
// monotonic drop id counter. The row is hard-deleted the moment its last
// claim key is consumed or the funder deletes it, so a lookup miss is the
// only observable "gone" state.
type Drop struct {
	ID        int64 `gorm:"primaryKey;autoIncrement"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Kind   DropKind `gorm:"index"`
	Funder string   `gorm:"index"`

	// AmountPerClaim is zero for NFT drops.
	AmountPerClaim BigInt `gorm:"type:varchar(80)"`

	// AssetContract is the custodian service for FT and NFT drops.
	AssetContract sql.NullString

	// Funded flips once the FT custodian confirms receipt of
	// AmountPerClaim * RemainingClaims. FT claims are rejected while false.
	Funded bool

	// TokenID stays empty until the NFT custodian confirms the transfer
	// authorization. NFT claims are rejected while empty.
	TokenID sql.NullString

	RemainingClaims int64
}
