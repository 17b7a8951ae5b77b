package main

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/droplink-labs/backend/internal/model"
	"github.com/droplink-labs/backend/pkg/kafka"
	"github.com/droplink-labs/backend/pkg/pubsub"
	"github.com/urfave/cli/v2"
)

// replayOutcome publishes a single call outcome to the broker. It exists for
// operators: when the connector lost an outcome, replaying it settles the
// stuck pending claim.
func (s *srv) replayOutcome(cliCtx *cli.Context) error {
	s.ctx = context.Background()
	s.loadConfig()
	s.loadLogger()

	publisher, err := kafka.NewPublisher("droplink-replay", []string{s.configs.Kafka.Addr})
	if err != nil {
		return err
	}
	defer publisher.Stop(s.ctx)

	outcome := model.ClaimOutcome{
		CallID:  cliCtx.Int64("call-id"),
		Type:    cliCtx.String("type"),
		Success: cliCtx.Bool("success"),
	}

	msg, err := json.Marshal(outcome)
	if err != nil {
		return err
	}

	err = publisher.Publish(s.ctx, s.configs.Ledger.OutcomeTopic, &pubsub.Pack{
		Key: []byte(strconv.FormatInt(outcome.CallID, 10)),
		Msg: msg,
	})
	if err != nil {
		return err
	}

	s.logger.Infof("Published %s outcome of call %d", outcome.Type, outcome.CallID)
	return nil
}
