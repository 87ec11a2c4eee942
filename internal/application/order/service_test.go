package order

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

type mockOrderStore struct{ mock.Mock }

func (m *mockOrderStore) Put(ctx context.Context, o *domain.Order) error {
	return m.Called(ctx, o).Error(0)
}
func (m *mockOrderStore) Get(ctx context.Context, orderID string) (*domain.Order, error) {
	args := m.Called(ctx, orderID)
	if o, _ := args.Get(0).(*domain.Order); o != nil {
		return o, args.Error(1)
	}
	return nil, args.Error(1)
}
func (m *mockOrderStore) ListByUser(ctx context.Context, userID string) ([]domain.Order, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]domain.Order), args.Error(1)
}
func (m *mockOrderStore) ScanPage(ctx context.Context, limit int32, cursor string) ([]domain.Order, string, error) {
	args := m.Called(ctx, limit, cursor)
	return args.Get(0).([]domain.Order), args.String(1), args.Error(2)
}
func (m *mockOrderStore) Update(ctx context.Context, orderID string, updates map[string]interface{}) error {
	return m.Called(ctx, orderID, updates).Error(0)
}

type mockProductStore struct{ mock.Mock }

func (m *mockProductStore) Get(ctx context.Context, productID string) (*domain.Product, error) {
	args := m.Called(ctx, productID)
	if p, _ := args.Get(0).(*domain.Product); p != nil {
		return p, args.Error(1)
	}
	return nil, args.Error(1)
}

func validCreateReq() domain.CreateOrderRequest {
	return domain.CreateOrderRequest{
		ShippingAddress: "1 Main St",
		BillingAddress:  "1 Main St",
		PaymentMethod:   "card",
		Items: []domain.CreateOrderItem{
			{ProductID: "p1", Quantity: 2},
			{ProductID: "p2", Quantity: 1},
		},
	}
}

// --- Create ---

func TestCreate_PricesFromCatalogNotRequest(t *testing.T) {
	os := &mockOrderStore{}
	ps := &mockProductStore{}

	ps.On("Get", mock.Anything, "p1").Return(&domain.Product{ProductID: "p1", Title: "Widget", Price: 9.99}, nil)
	ps.On("Get", mock.Anything, "p2").Return(&domain.Product{ProductID: "p2", Title: "Gadget", Price: 20.00}, nil)

	var stored *domain.Order
	os.On("Put", mock.Anything, mock.AnythingOfType("*domain.Order")).
		Run(func(args mock.Arguments) { stored = args.Get(1).(*domain.Order) }).
		Return(nil)

	svc := NewService(os, ps)
	o, err := svc.Create(context.Background(), "u1", validCreateReq())

	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, "u1", o.UserID)
	assert.Equal(t, domain.OrderPending, o.Status)
	assert.Len(t, o.Items, 2)
	assert.Equal(t, "Widget", o.Items[0].Title)
	assert.Equal(t, 9.99, o.Items[0].Price)
	assert.InDelta(t, 2*9.99+20.00, o.Total, 0.001)
	assert.NotEmpty(t, o.OrderID)
}

func TestCreate_UnknownProduct(t *testing.T) {
	os := &mockOrderStore{}
	ps := &mockProductStore{}
	ps.On("Get", mock.Anything, "p1").Return(nil, domain.ErrNotFound)

	svc := NewService(os, ps)
	req := validCreateReq()
	req.Items = req.Items[:1]
	_, err := svc.Create(context.Background(), "u1", req)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

func TestCreate_NoItems(t *testing.T) {
	svc := NewService(&mockOrderStore{}, &mockProductStore{})
	req := validCreateReq()
	req.Items = nil
	_, err := svc.Create(context.Background(), "u1", req)

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

// --- Update ---

func TestUpdate_ValidStatus(t *testing.T) {
	os := &mockOrderStore{}
	existing := &domain.Order{OrderID: "o1", Status: domain.OrderPending}
	shipped := &domain.Order{OrderID: "o1", Status: domain.OrderShipped}
	os.On("Get", mock.Anything, "o1").Return(existing, nil).Once()
	os.On("Update", mock.Anything, "o1", map[string]interface{}{fieldStatus: domain.OrderShipped}).Return(nil)
	os.On("Get", mock.Anything, "o1").Return(shipped, nil)

	svc := NewService(os, &mockProductStore{})
	status := domain.OrderShipped
	o, err := svc.Update(context.Background(), "o1", domain.UpdateOrderRequest{Status: &status})

	require.NoError(t, err)
	assert.Equal(t, domain.OrderShipped, o.Status)
	os.AssertExpectations(t)
}

func TestUpdate_InvalidStatus(t *testing.T) {
	svc := NewService(&mockOrderStore{}, &mockProductStore{})
	status := "TELEPORTED"
	_, err := svc.Update(context.Background(), "o1", domain.UpdateOrderRequest{Status: &status})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrBadRequest))
}

func TestUpdate_NoFields_ReturnsCurrent(t *testing.T) {
	os := &mockOrderStore{}
	os.On("Get", mock.Anything, "o1").Return(&domain.Order{OrderID: "o1", Status: domain.OrderPaid}, nil)

	svc := NewService(os, &mockProductStore{})
	o, err := svc.Update(context.Background(), "o1", domain.UpdateOrderRequest{})

	require.NoError(t, err)
	assert.Equal(t, domain.OrderPaid, o.Status)
}

func TestUpdate_OrderNotFound(t *testing.T) {
	os := &mockOrderStore{}
	os.On("Get", mock.Anything, "missing").Return(nil, domain.ErrNotFound)

	svc := NewService(os, &mockProductStore{})
	status := domain.OrderPaid
	_, err := svc.Update(context.Background(), "missing", domain.UpdateOrderRequest{Status: &status})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}

// --- List ---

func TestList_DefaultsLimit(t *testing.T) {
	os := &mockOrderStore{}
	os.On("ScanPage", mock.Anything, int32(50), "").Return([]domain.Order{}, "", nil)

	svc := NewService(os, &mockProductStore{})
	_, _, err := svc.List(context.Background(), 0, "")

	require.NoError(t, err)
	os.AssertExpectations(t)
}
