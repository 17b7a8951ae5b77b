package testutil

import (
	"context"
	"time"

	"github.com/droplink-labs/backend/config"
	"github.com/droplink-labs/backend/internal/entity"
	"github.com/droplink-labs/backend/pkg/logger"
	"github.com/droplink-labs/backend/pkg/xcontext"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

const (
	HostAccount     = "host.ledger"
	TopLevelAccount = "ledger"
)

// MockContext builds a context backed by an in-memory database with the
// schema migrated, ready to be passed to repositories and domains. Foreign
// keys are enforced like on the production database.
func MockContext() context.Context {
	cfg := config.Configs{
		Env: "testing",
		Auth: config.AuthConfigs{
			TokenSecret:     "secret",
			TokenExpiration: time.Minute,
		},
		Ledger: config.LedgerConfigs{
			RPCName:         "droplink",
			HostAccount:     HostAccount,
			TopLevelAccount: TopLevelAccount,
			OutcomeTopic:    "ledger-outcomes",
			CacheTTL:        time.Minute,
		},
	}

	db, err := gorm.Open(sqlite.Open(":memory:?_foreign_keys=on"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		panic(err)
	}

	ctx := context.Background()
	ctx = xcontext.WithConfigs(ctx, cfg)
	ctx = xcontext.WithLogger(ctx, logger.NewLoggerWithLevel(logger.SILENCE))
	ctx = xcontext.WithDB(ctx, db)

	if err := entity.MigrateTable(ctx); err != nil {
		panic(err)
	}

	return ctx
}

// MockContextWithCaller impersonates a gateway-authenticated account.
func MockContextWithCaller(ctx context.Context, accountID string) context.Context {
	return xcontext.WithRequestAccountID(ctx, accountID)
}

// MockContextWithSigner impersonates a call signed with a bare access key.
func MockContextWithSigner(ctx context.Context, accountID, publicKey string) context.Context {
	ctx = xcontext.WithRequestAccountID(ctx, accountID)
	return xcontext.WithSignerPublicKey(ctx, publicKey)
}
