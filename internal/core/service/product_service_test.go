package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/catalog-backoffice/product-api/internal/core/domain"
	"github.com/catalog-backoffice/product-api/internal/core/ports"
	"github.com/catalog-backoffice/product-api/internal/infrastructure/memory"
)

type recordingDispatcher struct {
	mu     sync.Mutex
	events []domain.ProductEvent
}

func (r *recordingDispatcher) Enqueue(e domain.ProductEvent) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
}

type failingProductRepo struct {
	ports.ProductRepository
	err error
}

func (f failingProductRepo) Create(context.Context, *domain.Product) error { return f.err }

func (f failingProductRepo) List(context.Context, ports.ListProductsFilter) ([]*domain.Product, int64, error) {
	return nil, 0, f.err
}

func newProductService(t *testing.T) (*ProductService, *recordingDispatcher) {
	t.Helper()
	d := &recordingDispatcher{}
	svc := NewProductService(memory.NewProductRepository(), d, nopLog)
	fixed := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	svc.now = func() time.Time { return fixed }
	return svc, d
}

func TestProductService_CreateGetUpdateDelete(t *testing.T) {
	svc, d := newProductService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, ports.ProductInput{Name: "Lamp", Price: 19.99, Quantity: 3})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}
	if p.ID == "" || p.CreatedAt.IsZero() || !p.CreatedAt.Equal(p.UpdatedAt) {
		t.Fatalf("unexpected created product: %+v", p)
	}

	got, err := svc.Get(ctx, p.ID)
	if err != nil || got.Name != "Lamp" {
		t.Fatalf("get failed: %v %+v", err, got)
	}

	updated, err := svc.Update(ctx, p.ID, ports.ProductInput{Name: "Desk Lamp", Price: 24.5, Quantity: 0})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}
	if updated.Name != "Desk Lamp" || updated.Price != 24.5 || updated.Quantity != 0 {
		t.Fatalf("update not applied: %+v", updated)
	}

	msg, err := svc.Delete(ctx, p.ID)
	if err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if msg != "Desk Lamp deleted" {
		t.Fatalf("unexpected delete message: %q", msg)
	}

	_, err = svc.Get(ctx, p.ID)
	wantKind(t, err, domain.KindNotFound, domain.MsgProductNotFound)

	want := []domain.ProductEventType{domain.ProductCreated, domain.ProductUpdated, domain.ProductDeleted}
	if len(d.events) != len(want) {
		t.Fatalf("expected %d events, got %d", len(want), len(d.events))
	}
	for i, e := range d.events {
		if e.Type != want[i] || e.ProductID != p.ID {
			t.Fatalf("event %d: unexpected %+v", i, e)
		}
	}
}

func TestProductService_Validation(t *testing.T) {
	svc, d := newProductService(t)

	_, err := svc.Create(context.Background(), ports.ProductInput{Price: 0, Quantity: -1})
	wantKind(t, err, domain.KindValidation,
		"name is required",
		"price must be greater than 0",
		"quantity must be greater than or equal to 0",
	)
	if len(d.events) != 0 {
		t.Fatalf("no event expected on validation failure")
	}
}

func TestProductService_MissingProduct(t *testing.T) {
	svc, _ := newProductService(t)
	ctx := context.Background()

	_, err := svc.Update(ctx, "missing", ports.ProductInput{Name: "x", Price: 1})
	wantKind(t, err, domain.KindNotFound, domain.MsgProductNotFound)

	_, err = svc.Delete(ctx, "missing")
	wantKind(t, err, domain.KindNotFound, domain.MsgProductNotFound)
}

func TestProductService_List(t *testing.T) {
	svc, _ := newProductService(t)
	ctx := context.Background()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		ts := base.Add(time.Duration(i) * time.Minute)
		svc.now = func() time.Time { return ts }
		if _, err := svc.Create(ctx, ports.ProductInput{Name: "p", Price: 1}); err != nil {
			t.Fatalf("seed create: %v", err)
		}
	}

	tests := []struct {
		name      string
		in        ports.ListProductsInput
		wantItems int
		wantPage  int
		wantLimit int
		wantPages int
	}{
		{"defaults", ports.ListProductsInput{}, 5, 1, defaultPageLimit, 1},
		{"second page", ports.ListProductsInput{Page: 2, Limit: 2}, 2, 2, 2, 3},
		{"last partial page", ports.ListProductsInput{Page: 3, Limit: 2}, 1, 3, 2, 3},
		{"past the end", ports.ListProductsInput{Page: 9, Limit: 2}, 0, 9, 2, 3},
		{"limit capped", ports.ListProductsInput{Limit: 1000}, 5, 1, maxPageLimit, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := svc.List(ctx, tt.in)
			if err != nil {
				t.Fatalf("list failed: %v", err)
			}
			if len(res.Items) != tt.wantItems || res.Page != tt.wantPage || res.Limit != tt.wantLimit || res.TotalPages != tt.wantPages {
				t.Fatalf("unexpected page: items=%d page=%d limit=%d pages=%d",
					len(res.Items), res.Page, res.Limit, res.TotalPages)
			}
			if res.Total != 5 {
				t.Fatalf("expected total 5, got %d", res.Total)
			}
		})
	}

	res, _ := svc.List(ctx, ports.ListProductsInput{})
	if !res.Items[0].CreatedAt.After(res.Items[len(res.Items)-1].CreatedAt) {
		t.Fatalf("expected newest first")
	}
}

func TestProductService_RepositoryFailures(t *testing.T) {
	boom := errors.New("mongo down")
	svc := NewProductService(failingProductRepo{err: boom}, nil, nopLog)

	_, err := svc.Create(context.Background(), ports.ProductInput{Name: "x", Price: 1})
	if !errors.Is(err, boom) || domain.IsKind(err, domain.KindValidation) {
		t.Fatalf("expected internal error, got %v", err)
	}

	_, err = svc.List(context.Background(), ports.ListProductsInput{})
	if !errors.Is(err, boom) {
		t.Fatalf("expected internal error, got %v", err)
	}
}
