package ports

import (
	"context"

	"github.com/catalog-backoffice/product-api/internal/core/domain"
)

// ProductInput carries the writable product fields.
type ProductInput struct {
	Name        string `validate:"required"`
	Description string
	Price       float64 `validate:"gt=0"`
	Quantity    int     `validate:"gte=0"`
	Photo       string
}

// ListProductsInput carries the list endpoint's paging parameters.
type ListProductsInput struct {
	Page  int
	Limit int
}

// ListProductsResult is a page of products.
type ListProductsResult struct {
	Items      []*domain.Product
	Total      int64
	Page       int
	Limit      int
	TotalPages int
}

// ProductService defines use-case operations for the catalog.
type ProductService interface {
	Create(ctx context.Context, input ProductInput) (*domain.Product, error)
	Update(ctx context.Context, id string, input ProductInput) (*domain.Product, error)
	Delete(ctx context.Context, id string) (string, error)
	Get(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context, input ListProductsInput) (*ListProductsResult, error)
}

// ProductEventPublisher delivers catalog change notifications.
type ProductEventPublisher interface {
	Publish(ctx context.Context, event domain.ProductEvent) error
}

// ProductEventDispatcher hands events off for asynchronous publishing.
type ProductEventDispatcher interface {
	Enqueue(event domain.ProductEvent)
}
