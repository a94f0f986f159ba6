package broker

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stemsi/polly-backend/internal/config"
)

// RedisBroker publishes events as JSON on a per-survey Pub/Sub channel so
// every server instance sharing the Redis can stream them.
type RedisBroker struct {
	rdb *redis.Client
	log zerolog.Logger
}

// NewRedisBroker creates a RedisBroker on an already connected client.
func NewRedisBroker(rdb *redis.Client, log zerolog.Logger) *RedisBroker {
	return &RedisBroker{
		rdb: rdb,
		log: log.With().Str("component", "redis_broker").Logger(),
	}
}

func (b *RedisBroker) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	channel := config.ChannelKey.SurveyResponses(event.SurveyID)
	if err := b.rdb.Publish(ctx, channel, payload).Err(); err != nil {
		return fmt.Errorf("publish to %s: %w", channel, err)
	}
	return nil
}

func (b *RedisBroker) Subscribe(ctx context.Context, surveyID uuid.UUID) (<-chan Event, func(), error) {
	channel := config.ChannelKey.SurveyResponses(surveyID)
	pubsub := b.rdb.Subscribe(ctx, channel)

	// Wait for the subscription to be confirmed before handing it out.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, nil, fmt.Errorf("subscribe to %s: %w", channel, err)
	}

	out := make(chan Event, subscriberBuffer)
	stop := make(chan struct{})
	var once sync.Once
	cancel := func() {
		once.Do(func() { close(stop) })
	}

	go func() {
		defer close(out)
		defer pubsub.Close()

		msgs := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case <-stop:
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var event Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					b.log.Warn().Err(err).Str("channel", channel).Msg("Malformed event payload")
					continue
				}
				select {
				case out <- event:
				default:
					b.log.Warn().Str("channel", channel).Msg("Subscriber buffer full, event dropped")
				}
			}
		}
	}()

	return out, cancel, nil
}
