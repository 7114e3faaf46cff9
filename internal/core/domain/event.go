package domain

import "time"

// ProductEventType names a catalog change.
type ProductEventType string

const (
	ProductCreated ProductEventType = "product.created"
	ProductUpdated ProductEventType = "product.updated"
	ProductDeleted ProductEventType = "product.deleted"
)

// ProductEvent is published after a product mutation has been persisted.
type ProductEvent struct {
	Type       ProductEventType `json:"type"`
	ProductID  string           `json:"productId"`
	Name       string           `json:"name"`
	OccurredAt time.Time        `json:"occurredAt"`
}
