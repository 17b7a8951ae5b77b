package entity

import (
	"database/sql"
	"time"
)

// PendingClaim snapshots an in-flight claim between transfer dispatch and
// resolution. The snapshot carries everything the resolution needs because
// the drop row may already be gone by then. Consuming the row inside the
// resolution transaction makes resolution exactly-once.
type PendingClaim struct {
	CallID    int64 `gorm:"primaryKey"`
	CreatedAt time.Time

	DropID int64 `gorm:"index"`

	Kind           DropKind
	Funder         string
	AmountPerClaim BigInt `gorm:"type:varchar(80)"`
	AssetContract  sql.NullString
	TokenID        sql.NullString

	Destination string

	// AccountCreated marks claims that went through the account-creation
	// branch; the refund skips the creation fee for them.
	AccountCreated bool

	// DropDeleted marks the claim that consumed the drop's last key; the
	// refund returns the drop record's storage reserve on top.
	DropDeleted bool
}

// PendingAccount is the phase-1 record of a create-account-and-claim call.
// The claim key is not consumed yet; a failed account creation must not burn
// it.
type PendingAccount struct {
	CallID    int64 `gorm:"primaryKey"`
	CreatedAt time.Time

	PublicKey    string
	NewAccountID string
}
