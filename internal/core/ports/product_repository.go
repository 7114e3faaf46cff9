package ports

import (
	"context"

	"github.com/catalog-backoffice/product-api/internal/core/domain"
)

// ListProductsFilter carries paging for product listings.
type ListProductsFilter struct {
	Page  int // 1-based
	Limit int // capped at 100 by the service
}

// ProductRepository defines persistence operations for products.
// FindByID, Update and Delete return domain.ErrProductNotFound on a miss.
type ProductRepository interface {
	Create(ctx context.Context, p *domain.Product) error
	Update(ctx context.Context, p *domain.Product) error
	Delete(ctx context.Context, id string) error
	FindByID(ctx context.Context, id string) (*domain.Product, error)
	List(ctx context.Context, filter ListProductsFilter) ([]*domain.Product, int64, error)
}
