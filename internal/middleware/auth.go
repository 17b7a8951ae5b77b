package middleware

import (
	"context"
	"strings"

	"github.com/droplink-labs/backend/internal/model"
	"github.com/droplink-labs/backend/pkg/authenticator"
	"github.com/droplink-labs/backend/pkg/errorx"
	"github.com/droplink-labs/backend/pkg/router"
	"github.com/droplink-labs/backend/pkg/xcontext"
)

// Authenticate verifies the gateway token attached to a forwarded ledger
// call and records the verified caller identity in the context.
func Authenticate() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		token := getAccessToken(ctx)
		if token == "" {
			return nil, errorx.New(errorx.Unauthenticated, "Not provided a gateway token")
		}

		engine := authenticator.NewTokenEngine[model.CallerToken](
			xcontext.Configs(ctx).Auth.TokenSecret)
		caller, err := engine.Verify(token)
		if err != nil {
			xcontext.Logger(ctx).Debugf("Cannot verify the gateway token: %v", err)
			return nil, errorx.New(errorx.Unauthenticated, "Invalid gateway token")
		}

		ctx = xcontext.WithRequestAccountID(ctx, caller.AccountID)
		if caller.SignerPublicKey != "" {
			ctx = xcontext.WithSignerPublicKey(ctx, caller.SignerPublicKey)
		}

		return ctx, nil
	}
}

// OnlyLedgerHost admits only the connector identity that reports call
// outcomes. It must run after Authenticate.
func OnlyLedgerHost() router.MiddlewareFunc {
	return func(ctx context.Context) (context.Context, error) {
		host := xcontext.Configs(ctx).Ledger.HostAccount
		if xcontext.RequestAccountID(ctx) != host {
			return nil, errorx.New(errorx.PermissionDenied, "Permission denied")
		}

		return ctx, nil
	}
}

func getAccessToken(ctx context.Context) string {
	authorization := xcontext.HTTPRequest(ctx).Header.Get("Authorization")
	auth, token, found := strings.Cut(authorization, " ")
	if !found || auth != "Bearer" {
		return ""
	}

	return token
}
