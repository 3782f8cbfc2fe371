package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/vmihailenco/msgpack/v5"
)

const relayChannel = "geoquiz:events"

// relayEnvelope tags each event with the instance that produced it so an
// instance does not deliver its own events twice.
type relayEnvelope struct {
	Origin string `msgpack:"origin"`
	Event  Event  `msgpack:"event"`
}

// RedisRelay shares events between server instances over redis pub/sub.
// Publish delivers locally at once and forwards to redis; Run feeds events
// from other instances into the local broker.
type RedisRelay struct {
	rdb      *redis.Client
	local    *Broker
	logger   *slog.Logger
	instance string
}

func NewRedisRelay(rdb *redis.Client, local *Broker, logger *slog.Logger) *RedisRelay {
	return &RedisRelay{
		rdb:      rdb,
		local:    local,
		logger:   logger,
		instance: uuid.NewString(),
	}
}

func (rr *RedisRelay) Publish(ctx context.Context, ev Event) {
	rr.local.Publish(ctx, ev)

	data, err := encodeEnvelope(relayEnvelope{Origin: rr.instance, Event: ev})
	if err != nil {
		rr.logger.Error("encoding relay event", "error", err)
		return
	}
	// The caller's request may already be finishing; the relay publish
	// should not be cancelled with it.
	if err := rr.rdb.Publish(context.WithoutCancel(ctx), relayChannel, data).Err(); err != nil {
		rr.logger.Warn("relaying event", "type", ev.Type, "game", ev.GameID, "error", err)
	}
}

// Run subscribes to the relay channel until ctx is cancelled.
func (rr *RedisRelay) Run(ctx context.Context) error {
	sub := rr.rdb.Subscribe(ctx, relayChannel)
	defer sub.Close()

	if _, err := sub.Receive(ctx); err != nil {
		return fmt.Errorf("subscribing to %s: %w", relayChannel, err)
	}
	rr.logger.Info("event relay subscribed", "channel", relayChannel)

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			env, err := decodeEnvelope([]byte(msg.Payload))
			if err != nil {
				rr.logger.Warn("dropping malformed relay message", "error", err)
				continue
			}
			if env.Origin == rr.instance {
				continue
			}
			rr.local.Publish(ctx, env.Event)
		}
	}
}

func encodeEnvelope(env relayEnvelope) ([]byte, error) {
	return msgpack.Marshal(env)
}

func decodeEnvelope(data []byte) (relayEnvelope, error) {
	var env relayEnvelope
	err := msgpack.Unmarshal(data, &env)
	return env, err
}
