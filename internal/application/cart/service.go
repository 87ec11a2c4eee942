package cart

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-storefront-api/internal/domain"
	"github.com/go-storefront-api/internal/pkg/id"
	"github.com/go-storefront-api/internal/pkg/validate"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldQuantity = "quantity"
	fieldSelected = "selected"
)

type Service interface {
	AddItem(ctx context.Context, userID string, req domain.AddCartItemRequest) (*domain.CartItem, error)
	List(ctx context.Context, userID string) ([]domain.CartItem, error)
	UpdateItem(ctx context.Context, userID, cartItemID string, req domain.UpdateCartItemRequest) (*domain.CartItem, error)
	RemoveItem(ctx context.Context, userID, cartItemID string) error
	Clear(ctx context.Context, userID string) error
	// Checkout converts the selected cart rows into an order and removes them.
	Checkout(ctx context.Context, userID string, req domain.CheckoutRequest) (*domain.Order, error)
}

type cartStore interface {
	Put(ctx context.Context, item *domain.CartItem) error
	Get(ctx context.Context, userID, cartItemID string) (*domain.CartItem, error)
	ListByUser(ctx context.Context, userID string) ([]domain.CartItem, error)
	Update(ctx context.Context, userID, cartItemID string, updates map[string]interface{}) error
	Delete(ctx context.Context, userID, cartItemID string) error
	DeleteAll(ctx context.Context, userID string) error
}

type productStore interface {
	Get(ctx context.Context, productID string) (*domain.Product, error)
}

type orderCreator interface {
	Create(ctx context.Context, userID string, req domain.CreateOrderRequest) (*domain.Order, error)
}

type service struct {
	repo     cartStore
	products productStore
	orders   orderCreator
}

func NewService(repo cartStore, products productStore, orders orderCreator) Service {
	return &service{repo: repo, products: products, orders: orders}
}

func (s *service) AddItem(ctx context.Context, userID string, req domain.AddCartItemRequest) (*domain.CartItem, error) {
	if err := validate.Struct(&req); err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrBadRequest)
	}
	p, err := s.products.Get(ctx, req.ProductID)
	if err != nil {
		return nil, fmt.Errorf("product %s: %w", req.ProductID, domain.ErrNotFound)
	}
	now := time.Now().UTC()
	item := &domain.CartItem{
		UserID:     userID,
		CartItemID: id.New(),
		ProductID:  p.ProductID,
		Quantity:   req.Quantity,
		Price:      p.Price,
		Selected:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.Put(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *service) List(ctx context.Context, userID string) ([]domain.CartItem, error) {
	return s.repo.ListByUser(ctx, userID)
}

func (s *service) UpdateItem(ctx context.Context, userID, cartItemID string, req domain.UpdateCartItemRequest) (*domain.CartItem, error) {
	if err := validate.Struct(&req); err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrBadRequest)
	}
	updates := map[string]interface{}{}
	if req.Quantity != nil {
		updates[fieldQuantity] = *req.Quantity
	}
	if req.Selected != nil {
		updates[fieldSelected] = *req.Selected
	}
	if len(updates) == 0 {
		return s.repo.Get(ctx, userID, cartItemID)
	}
	if _, err := s.repo.Get(ctx, userID, cartItemID); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, userID, cartItemID, updates); err != nil {
		return nil, err
	}
	return s.repo.Get(ctx, userID, cartItemID)
}

func (s *service) RemoveItem(ctx context.Context, userID, cartItemID string) error {
	return s.repo.Delete(ctx, userID, cartItemID)
}

func (s *service) Clear(ctx context.Context, userID string) error {
	return s.repo.DeleteAll(ctx, userID)
}

func (s *service) Checkout(ctx context.Context, userID string, req domain.CheckoutRequest) (*domain.Order, error) {
	if err := validate.Struct(&req); err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrBadRequest)
	}
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	var selected []domain.CartItem
	for _, it := range items {
		if it.Selected {
			selected = append(selected, it)
		}
	}
	if len(selected) == 0 {
		return nil, fmt.Errorf("no selected items in cart: %w", domain.ErrBadRequest)
	}

	orderReq := domain.CreateOrderRequest{
		ShippingAddress: req.ShippingAddress,
		BillingAddress:  req.BillingAddress,
		PaymentMethod:   req.PaymentMethod,
		Items:           make([]domain.CreateOrderItem, 0, len(selected)),
	}
	for _, it := range selected {
		orderReq.Items = append(orderReq.Items, domain.CreateOrderItem{
			ProductID: it.ProductID,
			Quantity:  it.Quantity,
		})
	}
	o, err := s.orders.Create(ctx, userID, orderReq)
	if err != nil {
		return nil, err
	}

	// The order is already placed; failing to clear a cart row must not
	// fail the checkout.
	for _, it := range selected {
		if err := s.repo.Delete(ctx, userID, it.CartItemID); err != nil {
			slog.Warn("failed to remove cart item after checkout", "user_id", userID, "cart_item_id", it.CartItemID, "err", err)
		}
	}
	return o, nil
}
