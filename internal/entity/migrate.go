package entity

import (
	"context"

	"github.com/droplink-labs/backend/pkg/xcontext"
)

func MigrateTable(ctx context.Context) error {
	return xcontext.DB(ctx).AutoMigrate(
		&Drop{},
		&ClaimKey{},
		&PendingClaim{},
		&PendingAccount{},
	)
}
