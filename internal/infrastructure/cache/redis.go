package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/bimakw/staking-gateway/internal/config"
	"github.com/bimakw/staking-gateway/internal/domain/entities"
)

// EventBus publishes phase events on a Redis channel and keeps a short
// history list so late subscribers can catch up
type EventBus struct {
	client      *redis.Client
	channel     string
	historyKey  string
	historySize int64
	logger      *zap.Logger
}

// NewEventBus creates a new Redis event bus
func NewEventBus(cfg config.RedisConfig, logger *zap.Logger) (*EventBus, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	logger.Info("Connected to Redis",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("channel", cfg.EventsChannel),
	)

	return newEventBus(client, cfg.EventsChannel, cfg.HistorySize, logger), nil
}

func newEventBus(client *redis.Client, channel string, historySize int64, logger *zap.Logger) *EventBus {
	if historySize <= 0 {
		historySize = 100
	}
	return &EventBus{
		client:      client,
		channel:     channel,
		historyKey:  historyKey(channel),
		historySize: historySize,
		logger:      logger,
	}
}

// Close closes the Redis connection
func (b *EventBus) Close() error {
	return b.client.Close()
}

// Notify publishes event and appends it to the history list. Failures are
// logged, never returned: a missing subscriber must not fail an action.
func (b *EventBus) Notify(ctx context.Context, event entities.PhaseEvent) {
	if err := b.Publish(ctx, event); err != nil {
		b.logger.Warn("Failed to publish phase event",
			zap.String("action_id", event.ActionID),
			zap.String("phase", string(event.Phase)),
			zap.Error(err),
		)
	}
}

// Publish stores event in the history list and sends it to subscribers
func (b *EventBus) Publish(ctx context.Context, event entities.PhaseEvent) error {
	data, err := encodeEvent(event)
	if err != nil {
		return err
	}

	// the action may already have been cancelled by its caller
	ctx = context.WithoutCancel(ctx)

	_, err = b.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.LPush(ctx, b.historyKey, data)
		pipe.LTrim(ctx, b.historyKey, 0, b.historySize-1)
		pipe.Publish(ctx, b.channel, data)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

// History returns up to limit recent events, oldest first
func (b *EventBus) History(ctx context.Context, limit int64) ([]entities.PhaseEvent, error) {
	if limit <= 0 || limit > b.historySize {
		limit = b.historySize
	}

	vals, err := b.client.LRange(ctx, b.historyKey, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read event history: %w", err)
	}

	events := make([]entities.PhaseEvent, 0, len(vals))
	for i := len(vals) - 1; i >= 0; i-- {
		event, err := decodeEvent(vals[i])
		if err != nil {
			b.logger.Warn("Skipping malformed history entry", zap.Error(err))
			continue
		}
		events = append(events, event)
	}
	return events, nil
}

// Subscribe follows the event channel until ctx is done. The returned
// channel is closed when the subscription ends.
func (b *EventBus) Subscribe(ctx context.Context) (<-chan entities.PhaseEvent, error) {
	pubsub := b.client.Subscribe(ctx, b.channel)

	// wait for the subscription to be confirmed before returning
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("failed to subscribe to %s: %w", b.channel, err)
	}

	out := make(chan entities.PhaseEvent)
	go func() {
		defer close(out)
		defer pubsub.Close()

		messages := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-messages:
				if !ok {
					return
				}
				event, err := decodeEvent(msg.Payload)
				if err != nil {
					b.logger.Warn("Skipping malformed event", zap.Error(err))
					continue
				}
				select {
				case out <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out, nil
}

// HealthCheck checks if Redis is reachable
func (b *EventBus) HealthCheck(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}

func historyKey(channel string) string {
	return channel + ":history"
}

func encodeEvent(event entities.PhaseEvent) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	return data, nil
}

func decodeEvent(payload string) (entities.PhaseEvent, error) {
	var event entities.PhaseEvent
	if err := json.Unmarshal([]byte(payload), &event); err != nil {
		return entities.PhaseEvent{}, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	if event.ActionID == "" || event.Phase == "" {
		return entities.PhaseEvent{}, fmt.Errorf("event without action id or phase")
	}
	return event, nil
}
