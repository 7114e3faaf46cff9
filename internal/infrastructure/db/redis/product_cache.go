package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/catalog-backoffice/product-api/internal/core/domain"
	"github.com/catalog-backoffice/product-api/internal/core/ports"
)

const (
	defaultProductTTL = 5 * time.Minute
	productNamespace  = "products"
	scanBatch         = 200
)

// CachingProductRepository decorates a ports.ProductRepository with Redis
// read-through caching. Single products are cached by id; list pages are
// cached by (page, limit) and dropped on every write.
type CachingProductRepository struct {
	inner ports.ProductRepository
	rdb   *redis.Client
	ttl   time.Duration
}

var _ ports.ProductRepository = (*CachingProductRepository)(nil)

// NewCachingProductRepository wraps inner. A nil client disables caching and
// a non-positive ttl defaults to five minutes.
func NewCachingProductRepository(rdb *redis.Client, ttl time.Duration, inner ports.ProductRepository) *CachingProductRepository {
	if ttl <= 0 {
		ttl = defaultProductTTL
	}
	return &CachingProductRepository{inner: inner, rdb: rdb, ttl: ttl}
}

type cachedPage struct {
	Items []*domain.Product `json:"items"`
	Total int64             `json:"total"`
}

func (c *CachingProductRepository) Create(ctx context.Context, p *domain.Product) error {
	if err := c.inner.Create(ctx, p); err != nil {
		return err
	}
	c.invalidateLists(ctx)
	return nil
}

func (c *CachingProductRepository) Update(ctx context.Context, p *domain.Product) error {
	if err := c.inner.Update(ctx, p); err != nil {
		return err
	}
	c.invalidate(ctx, p.ID)
	return nil
}

func (c *CachingProductRepository) Delete(ctx context.Context, id string) error {
	if err := c.inner.Delete(ctx, id); err != nil {
		return err
	}
	c.invalidate(ctx, id)
	return nil
}

func (c *CachingProductRepository) FindByID(ctx context.Context, id string) (*domain.Product, error) {
	if c.rdb == nil {
		return c.inner.FindByID(ctx, id)
	}

	key := productKey(id)
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var p domain.Product
		if err := json.Unmarshal(b, &p); err == nil {
			return &p, nil
		}
		_ = c.rdb.Del(ctx, key).Err()
	}

	p, err := c.inner.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(p); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}
	return p, nil
}

func (c *CachingProductRepository) List(ctx context.Context, f ports.ListProductsFilter) ([]*domain.Product, int64, error) {
	if c.rdb == nil {
		return c.inner.List(ctx, f)
	}

	key := listKey(f)
	if b, err := c.rdb.Get(ctx, key).Bytes(); err == nil && len(b) > 0 {
		var page cachedPage
		if err := json.Unmarshal(b, &page); err == nil {
			return page.Items, page.Total, nil
		}
		_ = c.rdb.Del(ctx, key).Err()
	}

	items, total, err := c.inner.List(ctx, f)
	if err != nil {
		return nil, 0, err
	}
	if b, err := json.Marshal(cachedPage{Items: items, Total: total}); err == nil {
		_ = c.rdb.Set(ctx, key, b, c.ttl).Err()
	}
	return items, total, nil
}

// invalidate drops the product entry and every cached list page. Cache
// failures are ignored; entries expire with the ttl.
func (c *CachingProductRepository) invalidate(ctx context.Context, id string) {
	if c.rdb == nil {
		return
	}
	_ = c.rdb.Del(ctx, productKey(id)).Err()
	c.invalidateLists(ctx)
}

func (c *CachingProductRepository) invalidateLists(ctx context.Context) {
	if c.rdb == nil {
		return
	}
	_ = c.deleteByPattern(ctx, productNamespace+":list:*")
}

func (c *CachingProductRepository) deleteByPattern(ctx context.Context, pattern string) error {
	var cursor uint64
	for {
		keys, next, err := c.rdb.Scan(ctx, cursor, pattern, scanBatch).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := c.rdb.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

func productKey(id string) string {
	return productNamespace + ":id:" + id
}

func listKey(f ports.ListProductsFilter) string {
	return fmt.Sprintf("%s:list:%d:%d", productNamespace, f.Page, f.Limit)
}
