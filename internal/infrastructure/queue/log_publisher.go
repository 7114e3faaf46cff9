package queue

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/catalog-backoffice/product-api/internal/core/domain"
	"github.com/catalog-backoffice/product-api/internal/core/ports"
)

// LogPublisher writes product events to the log. It stands in for a broker
// when Redis is disabled.
type LogPublisher struct {
	log zerolog.Logger
}

var _ ports.ProductEventPublisher = LogPublisher{}

func NewLogPublisher(log zerolog.Logger) LogPublisher {
	return LogPublisher{log: log}
}

func (p LogPublisher) Publish(_ context.Context, event domain.ProductEvent) error {
	p.log.Info().
		Str("type", string(event.Type)).
		Str("product_id", event.ProductID).
		Str("name", event.Name).
		Time("occurred_at", event.OccurredAt).
		Msg("product event")
	return nil
}
