package entity

import "time"

// ClaimKey binds a single-use claim key to its drop. The row exists exactly
// while the key is unconsumed; it is hard-deleted at the instant a claim for
// it begins, not when the claim finishes.
type ClaimKey struct {
	PublicKey string `gorm:"primaryKey"`
	CreatedAt time.Time

	DropID int64 `gorm:"index"`
	Drop   Drop  `gorm:"foreignKey:DropID"`
}
