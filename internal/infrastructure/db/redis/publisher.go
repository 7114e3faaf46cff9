package redis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/catalog-backoffice/product-api/internal/core/domain"
	"github.com/catalog-backoffice/product-api/internal/core/ports"
)

// ProductEventsChannel is the pub/sub channel catalog changes are sent on.
const ProductEventsChannel = "products.events"

// EventPublisher publishes product events as JSON over Redis pub/sub.
type EventPublisher struct {
	client  *redis.Client
	channel string
}

var _ ports.ProductEventPublisher = (*EventPublisher)(nil)

func NewEventPublisher(client *redis.Client) *EventPublisher {
	return &EventPublisher{client: client, channel: ProductEventsChannel}
}

func (p *EventPublisher) Publish(ctx context.Context, event domain.ProductEvent) error {
	b, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := p.client.Publish(ctx, p.channel, string(b)).Err(); err != nil {
		return fmt.Errorf("publish %s: %w", event.Type, err)
	}
	return nil
}
