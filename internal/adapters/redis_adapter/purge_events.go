// internal/adapters/redis_adapter/purge_events.go
package redis_a

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/redis/go-redis/v9"

	"github.com/ammerola/ils-tools/internal/core/ports"
)

// PurgeChannel carries the station ids removed by the store cleanup
const PurgeChannel = "ils:store:purged"

// PurgeEvents publishes store purges from the worker and applies them to
// the station caches of the API
type PurgeEvents struct {
	client *redis.Client
	logger *slog.Logger
}

var _ ports.PurgeNotifier = (*PurgeEvents)(nil)

// NewPurgeEvents creates a purge event channel on client
func NewPurgeEvents(client *redis.Client, logger *slog.Logger) *PurgeEvents {
	return &PurgeEvents{
		client: client,
		logger: logger.With(slog.String("component", "purge_events")),
	}
}

// NotifyPurged publishes stations to every listener
func (p *PurgeEvents) NotifyPurged(ctx context.Context, stations []string) error {
	if len(stations) == 0 {
		return nil
	}
	data, err := json.Marshal(stations)
	if err != nil {
		return fmt.Errorf("failed to marshal purged stations: %w", err)
	}
	if err := p.client.Publish(ctx, PurgeChannel, data).Err(); err != nil {
		return fmt.Errorf("failed to publish purged stations: %w", err)
	}
	return nil
}

// Listen invalidates each purged station on every invalidator until ctx is
// done. It returns once the subscription is confirmed and keeps running in
// the background.
func (p *PurgeEvents) Listen(ctx context.Context, invalidators ...ports.StationInvalidator) error {
	sub := p.client.Subscribe(ctx, PurgeChannel)
	if _, err := sub.Receive(ctx); err != nil {
		sub.Close()
		return fmt.Errorf("failed to subscribe to %s: %w", PurgeChannel, err)
	}

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var stations []string
				if err := json.Unmarshal([]byte(msg.Payload), &stations); err != nil {
					p.logger.WarnContext(ctx, "ignoring malformed purge event",
						slog.String("error", err.Error()))
					continue
				}
				for _, station := range stations {
					for _, inv := range invalidators {
						inv.Invalidate(station)
					}
				}
				p.logger.InfoContext(ctx, "purged stations invalidated", slog.Int("stations", len(stations)))
			}
		}
	}()
	return nil
}
