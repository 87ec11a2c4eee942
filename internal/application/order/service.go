package order

import (
	"context"
	"fmt"
	"time"

	"github.com/go-storefront-api/internal/domain"
	"github.com/go-storefront-api/internal/pkg/id"
	"github.com/go-storefront-api/internal/pkg/validate"
)

const fieldStatus = "status"

type Service interface {
	Create(ctx context.Context, userID string, req domain.CreateOrderRequest) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	List(ctx context.Context, limit int, cursor string) ([]domain.Order, string, error)
	Update(ctx context.Context, orderID string, req domain.UpdateOrderRequest) (*domain.Order, error)
}

type orderStore interface {
	Put(ctx context.Context, o *domain.Order) error
	Get(ctx context.Context, orderID string) (*domain.Order, error)
	ListByUser(ctx context.Context, userID string) ([]domain.Order, error)
	ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.Order, string, error)
	Update(ctx context.Context, orderID string, updates map[string]interface{}) error
}

type productStore interface {
	Get(ctx context.Context, productID string) (*domain.Product, error)
}

type service struct {
	repo     orderStore
	products productStore
}

func NewService(repo orderStore, products productStore) Service {
	return &service{repo: repo, products: products}
}

// Create prices each line from the current product row, never from the
// request body.
func (s *service) Create(ctx context.Context, userID string, req domain.CreateOrderRequest) (*domain.Order, error) {
	if err := validate.Struct(&req); err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrBadRequest)
	}
	items := make([]domain.OrderItem, 0, len(req.Items))
	total := 0.0
	for _, it := range req.Items {
		p, err := s.products.Get(ctx, it.ProductID)
		if err != nil {
			return nil, fmt.Errorf("product %s: %w", it.ProductID, domain.ErrNotFound)
		}
		items = append(items, domain.OrderItem{
			ProductID: p.ProductID,
			Title:     p.Title,
			Quantity:  it.Quantity,
			Price:     p.Price,
		})
		total += p.Price * float64(it.Quantity)
	}
	now := time.Now().UTC()
	o := &domain.Order{
		OrderID:         id.New(),
		UserID:          userID,
		Status:          domain.OrderPending,
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  req.BillingAddress,
		PaymentMethod:   req.PaymentMethod,
		Items:           items,
		Total:           total,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if err := s.repo.Put(ctx, o); err != nil {
		return nil, err
	}
	return o, nil
}

func (s *service) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) List(ctx context.Context, limit int, cursor string) ([]domain.Order, string, error) {
	if limit < 1 {
		limit = 50
	}
	return s.repo.ScanPage(ctx, int32(limit), cursor)
}

func (s *service) Update(ctx context.Context, orderID string, req domain.UpdateOrderRequest) (*domain.Order, error) {
	updates := map[string]interface{}{}
	if req.Status != nil {
		switch *req.Status {
		case domain.OrderPending, domain.OrderPaid, domain.OrderShipped, domain.OrderDelivered, domain.OrderCancelled:
			updates[fieldStatus] = *req.Status
		default:
			return nil, fmt.Errorf("invalid status: %w", domain.ErrBadRequest)
		}
	}
	if len(updates) == 0 {
		return s.repo.Get(ctx, orderID)
	}
	if _, err := s.repo.Get(ctx, orderID); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, orderID, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, orderID)
}
