package xcontext

import (
	"context"
	"net/http"
	"time"

	"github.com/droplink-labs/backend/config"
	"github.com/droplink-labs/backend/pkg/logger"
	"gorm.io/gorm"
)

type (
	configsKey        struct{}
	loggerKey         struct{}
	dbKey             struct{}
	dbTransactionKey  struct{}
	httpRequestKey    struct{}
	httpWriterKey     struct{}
	errorKey          struct{}
	responseKey       struct{}
	requestAccountKey struct{}
	signerKeyKey      struct{}
	startTimeKey      struct{}
)

func WithConfigs(ctx context.Context, cfg config.Configs) context.Context {
	return context.WithValue(ctx, configsKey{}, cfg)
}

func Configs(ctx context.Context) config.Configs {
	return ctx.Value(configsKey{}).(config.Configs)
}

func WithLogger(ctx context.Context, l logger.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

func Logger(ctx context.Context) logger.Logger {
	return ctx.Value(loggerKey{}).(logger.Logger)
}

func WithDB(ctx context.Context, db *gorm.DB) context.Context {
	return context.WithValue(ctx, dbKey{}, db)
}

// DB returns the current database handle. If a transaction was opened with
// WithDBTransaction and has not finished yet, the transaction is returned
// instead of the root handle.
func DB(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(dbTransactionKey{}).(*dbTransaction); ok && !tx.done {
		return tx.tx
	}

	return ctx.Value(dbKey{}).(*gorm.DB)
}

type dbTransaction struct {
	tx   *gorm.DB
	done bool
}

func WithDBTransaction(ctx context.Context) context.Context {
	return context.WithValue(ctx, dbTransactionKey{}, &dbTransaction{tx: DB(ctx).Begin()})
}

func WithCommitDBTransaction(ctx context.Context) {
	if tx, ok := ctx.Value(dbTransactionKey{}).(*dbTransaction); ok && !tx.done {
		tx.tx.Commit()
		tx.done = true
	}
}

func WithRollbackDBTransaction(ctx context.Context) {
	if tx, ok := ctx.Value(dbTransactionKey{}).(*dbTransaction); ok && !tx.done {
		tx.tx.Rollback()
		tx.done = true
	}
}

func WithHTTPRequest(ctx context.Context, r *http.Request) context.Context {
	return context.WithValue(ctx, httpRequestKey{}, r)
}

func HTTPRequest(ctx context.Context) *http.Request {
	return ctx.Value(httpRequestKey{}).(*http.Request)
}

func WithHTTPWriter(ctx context.Context, w http.ResponseWriter) context.Context {
	return context.WithValue(ctx, httpWriterKey{}, w)
}

func HTTPWriter(ctx context.Context) http.ResponseWriter {
	return ctx.Value(httpWriterKey{}).(http.ResponseWriter)
}

func WithError(ctx context.Context, err error) context.Context {
	return context.WithValue(ctx, errorKey{}, err)
}

func Error(ctx context.Context) error {
	if err, ok := ctx.Value(errorKey{}).(error); ok {
		return err
	}

	return nil
}

func WithResponse(ctx context.Context, resp any) context.Context {
	return context.WithValue(ctx, responseKey{}, resp)
}

func Response(ctx context.Context) any {
	return ctx.Value(responseKey{})
}

// WithRequestAccountID records the ledger account on whose behalf the gateway
// forwarded this call (the predecessor of the original ledger transaction).
func WithRequestAccountID(ctx context.Context, accountID string) context.Context {
	return context.WithValue(ctx, requestAccountKey{}, accountID)
}

func RequestAccountID(ctx context.Context) string {
	if id, ok := ctx.Value(requestAccountKey{}).(string); ok {
		return id
	}

	return ""
}

// WithSignerPublicKey records the public key that signed the original ledger
// transaction. For claim calls this key is the claim key.
func WithSignerPublicKey(ctx context.Context, publicKey string) context.Context {
	return context.WithValue(ctx, signerKeyKey{}, publicKey)
}

func SignerPublicKey(ctx context.Context) string {
	if pk, ok := ctx.Value(signerKeyKey{}).(string); ok {
		return pk
	}

	return ""
}

func WithStartTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, startTimeKey{}, t)
}

func StartTime(ctx context.Context) time.Time {
	if t, ok := ctx.Value(startTimeKey{}).(time.Time); ok {
		return t
	}

	return time.Time{}
}
