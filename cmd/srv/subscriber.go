package main

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/droplink-labs/backend/internal/model"
	"github.com/droplink-labs/backend/pkg/errorx"
	"github.com/droplink-labs/backend/pkg/kafka"
	"github.com/droplink-labs/backend/pkg/pubsub"
	"github.com/droplink-labs/backend/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

// startSubscriber consumes the connector's outcome topic. It is an
// alternative delivery path for the resolution entry points, for
// deployments where the connector publishes outcomes instead of calling
// back.
func (s *srv) startSubscriber(*cli.Context) error {
	s.loadAll()

	subscriber, err := kafka.NewSubscriber(
		"droplink-subscriber",
		[]string{s.configs.Kafka.Addr},
		[]string{s.configs.Ledger.OutcomeTopic},
		s.handleOutcome,
	)
	if err != nil {
		panic(err)
	}

	s.logger.Infof("Starting outcome subscriber on topic %s", s.configs.Ledger.OutcomeTopic)
	subscriber.Run(s.ctx)

	return nil
}

func (s *srv) handleOutcome(ctx context.Context, topic string, pack *pubsub.Pack, tt time.Time) {
	var outcome model.ClaimOutcome
	if err := json.Unmarshal(pack.Msg, &outcome); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot unmarshal outcome message: %v", err)
		return
	}

	var err error
	switch outcome.Type {
	case model.ClaimOutcomeTransfer:
		_, err = s.claimDomain.ResolveClaim(ctx, &model.ResolveClaimRequest{
			CallID:  outcome.CallID,
			Success: outcome.Success,
		})

	case model.ClaimOutcomeAccountCreate:
		_, err = s.claimDomain.ResolveAccountCreate(ctx, &model.ResolveAccountCreateRequest{
			CallID:  outcome.CallID,
			Created: outcome.Success,
		})

	default:
		xcontext.Logger(ctx).Errorf("Got an unknown outcome type %s", outcome.Type)
		return
	}

	// A missing pending record means the callback path already resolved
	// this call.
	var errx errorx.Error
	if err != nil && !(errors.As(err, &errx) && errx.Code == errorx.NotFound) {
		xcontext.Logger(ctx).Errorf("Cannot resolve outcome of call %d: %v", outcome.CallID, err)
	}
}
