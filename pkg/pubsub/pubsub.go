package pubsub

import (
	"context"
	"time"
)

type Pack struct {
	Key []byte
	Msg []byte
}

type Publisher interface {
	Publish(ctx context.Context, topic string, pack *Pack) error
	Stop(ctx context.Context) error
}

type SubscribeHandler func(ctx context.Context, topic string, pack *Pack, tt time.Time)

type Subscriber interface {
	Run(ctx context.Context)
	Stop(ctx context.Context) error
}
