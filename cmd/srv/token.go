package main

import (
	"context"
	"fmt"

	"github.com/droplink-labs/backend/internal/model"
	"github.com/droplink-labs/backend/pkg/authenticator"
	"github.com/urfave/cli/v2"
)

// generateToken mints a gateway token for local testing, impersonating a
// forwarded ledger call.
func (s *srv) generateToken(cliCtx *cli.Context) error {
	s.ctx = context.Background()
	s.loadConfig()

	engine := authenticator.NewTokenEngine[model.CallerToken](s.configs.Auth.TokenSecret)
	token, err := engine.Generate(s.configs.Auth.TokenExpiration, model.CallerToken{
		AccountID:       cliCtx.String("account"),
		SignerPublicKey: cliCtx.String("signer-key"),
	})
	if err != nil {
		return err
	}

	fmt.Println(token)
	return nil
}
