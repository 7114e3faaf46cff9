package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/catalog-backoffice/product-api/internal/core/domain"
	"github.com/catalog-backoffice/product-api/internal/core/ports"
	"github.com/catalog-backoffice/product-api/internal/core/validation"
)

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

type ProductService struct {
	repo       ports.ProductRepository
	dispatcher ports.ProductEventDispatcher
	validator  *validation.Validator
	logger     zerolog.Logger
	now        func() time.Time
}

var _ ports.ProductService = (*ProductService)(nil)

// NewProductService returns a ProductService. dispatcher may be nil, in which
// case no change events are emitted.
func NewProductService(repo ports.ProductRepository, dispatcher ports.ProductEventDispatcher, logger zerolog.Logger) *ProductService {
	return &ProductService{
		repo:       repo,
		dispatcher: dispatcher,
		validator:  validation.New(),
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func (s *ProductService) Create(ctx context.Context, in ports.ProductInput) (*domain.Product, error) {
	if msgs := s.validator.Validate(in); len(msgs) > 0 {
		return nil, domain.NewValidationError(msgs...)
	}

	now := s.now()
	p := &domain.Product{
		Name:        in.Name,
		Description: in.Description,
		Price:       in.Price,
		Quantity:    in.Quantity,
		Photo:       in.Photo,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		s.logger.Error().Err(err).Msg("failed to create product")
		return nil, fmt.Errorf("create product: %w", err)
	}

	s.logger.Info().Str("product_id", p.ID).Msg("product created")
	s.emit(domain.ProductCreated, p)
	return p, nil
}

func (s *ProductService) Update(ctx context.Context, id string, in ports.ProductInput) (*domain.Product, error) {
	if msgs := s.validator.Validate(in); len(msgs) > 0 {
		return nil, domain.NewValidationError(msgs...)
	}

	p, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}

	p.Name = in.Name
	p.Description = in.Description
	p.Price = in.Price
	p.Quantity = in.Quantity
	p.Photo = in.Photo
	p.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, p); err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return nil, domain.NewNotFoundError(domain.MsgProductNotFound)
		}
		return nil, fmt.Errorf("update product: %w", err)
	}

	s.logger.Info().Str("product_id", p.ID).Msg("product updated")
	s.emit(domain.ProductUpdated, p)
	return p, nil
}

// Delete removes the product and returns "<name> deleted".
func (s *ProductService) Delete(ctx context.Context, id string) (string, error) {
	p, err := s.find(ctx, id)
	if err != nil {
		return "", err
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return "", domain.NewNotFoundError(domain.MsgProductNotFound)
		}
		return "", fmt.Errorf("delete product: %w", err)
	}

	s.logger.Info().Str("product_id", id).Msg("product deleted")
	s.emit(domain.ProductDeleted, p)
	return p.Name + " deleted", nil
}

func (s *ProductService) Get(ctx context.Context, id string) (*domain.Product, error) {
	return s.find(ctx, id)
}

// List returns a page of products. Page defaults to 1 and limit to 20,
// capped at 100.
func (s *ProductService) List(ctx context.Context, in ports.ListProductsInput) (*ports.ListProductsResult, error) {
	page := in.Page
	if page < 1 {
		page = 1
	}
	limit := in.Limit
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}

	items, total, err := s.repo.List(ctx, ports.ListProductsFilter{Page: page, Limit: limit})
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}

	totalPages := int((total + int64(limit) - 1) / int64(limit))
	return &ports.ListProductsResult{
		Items:      items,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}, nil
}

func (s *ProductService) find(ctx context.Context, id string) (*domain.Product, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrProductNotFound) {
			return nil, domain.NewNotFoundError(domain.MsgProductNotFound)
		}
		return nil, fmt.Errorf("find product: %w", err)
	}
	return p, nil
}

func (s *ProductService) emit(t domain.ProductEventType, p *domain.Product) {
	if s.dispatcher == nil {
		return
	}
	s.dispatcher.Enqueue(domain.ProductEvent{
		Type:       t,
		ProductID:  p.ID,
		Name:       p.Name,
		OccurredAt: s.now(),
	})
}
