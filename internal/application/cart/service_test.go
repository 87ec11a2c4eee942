package cart

import (
	"context"
	"errors"
	"testing"

	"github.com/go-storefront-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockCartStore struct{ mock.Mock }

func (m *mockCartStore) Put(ctx context.Context, item *domain.CartItem) error {
	return m.Called(ctx, item).Error(0)
}
func (m *mockCartStore) Get(ctx context.Context, userID, cartItemID string) (*domain.CartItem, error) {
	args := m.Called(ctx, userID, cartItemID)
	if it, _ := args.Get(0).(*domain.CartItem); it != nil {
		return it, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockCartStore) ListByUser(ctx context.Context, userID string) ([]domain.CartItem, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.CartItem), args.Error(1)
}
func (m *mockCartStore) Update(ctx context.Context, userID, cartItemID string, updates map[string]interface{}) error {
	return m.Called(ctx, userID, cartItemID, updates).Error(0)
}
func (m *mockCartStore) Delete(ctx context.Context, userID, cartItemID string) error {
	return m.Called(ctx, userID, cartItemID).Error(0)
}
func (m *mockCartStore) DeleteAll(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

type mockProductStore struct{ mock.Mock }

func (m *mockProductStore) Get(ctx context.Context, productID string) (*domain.Product, error) {
	args := m.Called(ctx, productID)
	if p, _ := args.Get(0).(*domain.Product); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

type mockOrderCreator struct{ mock.Mock }

func (m *mockOrderCreator) Create(ctx context.Context, userID string, req domain.CreateOrderRequest) (*domain.Order, error) {
	args := m.Called(ctx, userID, req)
	if o, _ := args.Get(0).(*domain.Order); o != nil {
		return o, args.Error(1)
	}
	return nil, args.Error(1)
}

// --- AddItem ---

func TestAddItem_SnapshotsPriceAndSelects(t *testing.T) {
	cs := &mockCartStore{}
	ps := &mockProductStore{}
	ps.On("Get", mock.Anything, "p1").Return(&domain.Product{ProductID: "p1", Price: 4.50}, nil)

	var stored *domain.CartItem
	cs.On("Put", mock.Anything, mock.AnythingOfType("*domain.CartItem")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*domain.CartItem) }).
		Return(nil)

	svc := NewService(cs, ps, nil)
	item, err := svc.AddItem(context.Background(), "u1", domain.AddCartItemRequest{ProductID: "p1", Quantity: 3})

	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "u1", item.UserID)
	assert.Equal(t, 4.50, item.Price)
	assert.Equal(t, 3, item.Quantity)
	assert.True(t, item.Selected)
	assert.NotEmpty(t, item.CartItemID)
}

func TestAddItem_UnknownProduct(t *testing.T) {
	ps := &mockProductStore{}
	ps.On("Get", mock.Anything, "missing").Return(nil, domain.ErrNotFound)

	svc := NewService(&mockCartStore{}, ps, nil)
	_, err := svc.AddItem(context.Background(), "u1", domain.AddCartItemRequest{ProductID: "missing", Quantity: 1})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestAddItem_InvalidQuantity(t *testing.T) {
	svc := NewService(&mockCartStore{}, &mockProductStore{}, nil)
	_, err := svc.AddItem(context.Background(), "u1", domain.AddCartItemRequest{ProductID: "p1", Quantity: 0})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

// --- Checkout ---

func checkoutReq() domain.CheckoutRequest {
	return domain.CheckoutRequest{
		ShippingAddress: "1 Main St",
		BillingAddress:  "1 Main St",
		PaymentMethod:   "card",
	}
}

func TestCheckout_OnlySelectedItemsBecomeOrder(t *testing.T) {
	cs := &mockCartStore{}
	oc := &mockOrderCreator{}

	cs.On("ListByUser", mock.Anything, "u1").Return([]domain.CartItem{
		{CartItemID: "c1", ProductID: "p1", Quantity: 2, Selected: true},
		{CartItemID: "c2", ProductID: "p2", Quantity: 1, Selected: false},
		{CartItemID: "c3", ProductID: "p3", Quantity: 4, Selected: true},
	}, nil)

	var gotReq domain.CreateOrderRequest
	oc.On("Create", mock.Anything, "u1", mock.AnythingOfType("domain.CreateOrderRequest")).
		Run(func(args mock.Arguments) { gotReq = args.Get(2).(domain.CreateOrderRequest) }).
		Return(&domain.Order{OrderID: "o1"}, nil)

	cs.On("Delete", mock.Anything, "u1", "c1").Return(nil)
	cs.On("Delete", mock.Anything, "u1", "c3").Return(nil)

	svc := NewService(cs, &mockProductStore{}, oc)
	o, err := svc.Checkout(context.Background(), "u1", checkoutReq())

	require.NoError(t, err)
	assert.Equal(t, "o1", o.OrderID)
	require.Len(t, gotReq.Items, 2)
	assert.Equal(t, "p1", gotReq.Items[0].ProductID)
	assert.Equal(t, "p3", gotReq.Items[1].ProductID)
	// The unselected row stays in the cart.
	cs.AssertNotCalled(t, "Delete", mock.Anything, "u1", "c2")
	cs.AssertExpectations(t)
}

func TestCheckout_NothingSelected(t *testing.T) {
	cs := &mockCartStore{}
	cs.On("ListByUser", mock.Anything, "u1").Return([]domain.CartItem{
		{CartItemID: "c1", Selected: false},
	}, nil)

	svc := NewService(cs, &mockProductStore{}, &mockOrderCreator{})
	_, err := svc.Checkout(context.Background(), "u1", checkoutReq())

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestCheckout_OrderFailure_KeepsCart(t *testing.T) {
	cs := &mockCartStore{}
	oc := &mockOrderCreator{}
	cs.On("ListByUser", mock.Anything, "u1").Return([]domain.CartItem{
		{CartItemID: "c1", ProductID: "p1", Quantity: 1, Selected: true},
	}, nil)
	oc.On("Create", mock.Anything, "u1", mock.Anything).Return(nil, domain.ErrNotFound)

	svc := NewService(cs, &mockProductStore{}, oc)
	_, err := svc.Checkout(context.Background(), "u1", checkoutReq())

	require.Error(t, err)
	cs.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
}

func TestCheckout_MissingAddress(t *testing.T) {
	svc := NewService(&mockCartStore{}, &mockProductStore{}, &mockOrderCreator{})
	req := checkoutReq()
	req.ShippingAddress = ""
	_, err := svc.Checkout(context.Background(), "u1", req)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

// --- UpdateItem ---

func TestUpdateItem_PartialFields(t *testing.T) {
	cs := &mockCartStore{}
	updated := &domain.CartItem{CartItemID: "c1", Quantity: 5, Selected: false}
	cs.On("Get", mock.Anything, "u1", "c1").Return(&domain.CartItem{CartItemID: "c1"}, nil).Once()
	cs.On("Update", mock.Anything, "u1", "c1", map[string]interface{}{fieldQuantity: 5, fieldSelected: false}).Return(nil)
	cs.On("Get", mock.Anything, "u1", "c1").Return(updated, nil)

	qty := 5
	sel := false
	svc := NewService(cs, &mockProductStore{}, nil)
	item, err := svc.UpdateItem(context.Background(), "u1", "c1", domain.UpdateCartItemRequest{Quantity: &qty, Selected: &sel})

	require.NoError(t, err)
	assert.Equal(t, 5, item.Quantity)
	assert.False(t, item.Selected)
	cs.AssertExpectations(t)
}

func TestUpdateItem_NotFound(t *testing.T) {
	cs := &mockCartStore{}
	cs.On("Get", mock.Anything, "u1", "missing").Return(nil, domain.ErrNotFound)

	qty := 2
	svc := NewService(cs, &mockProductStore{}, nil)
	_, err := svc.UpdateItem(context.Background(), "u1", "missing", domain.UpdateCartItemRequest{Quantity: &qty})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
