package domain

import "time"

// Order statuses, in rough lifecycle order.
const (
	OrderPending   = "PENDING"
	OrderPaid      = "PAID"
	OrderShipped   = "SHIPPED"
	OrderDelivered = "DELIVERED"
	OrderCancelled = "CANCELLED"
)

type OrderItem struct {
	ProductID string  `json:"product_id" dynamodbav:"product_id"`
	Title     string  `json:"title" dynamodbav:"title"`
	Quantity  int     `json:"quantity" dynamodbav:"quantity"`
	Price     float64 `json:"price" dynamodbav:"price"`
}

type Order struct {
	OrderID         string      `json:"id" dynamodbav:"order_id"`
	UserID          string      `json:"user_id" dynamodbav:"user_id"`
	Status          string      `json:"status" dynamodbav:"status"`
	ShippingAddress string      `json:"shipping_address" dynamodbav:"shipping_address"`
	BillingAddress  string      `json:"billing_address" dynamodbav:"billing_address"`
	PaymentMethod   string      `json:"payment_method" dynamodbav:"payment_method"`
	Items           []OrderItem `json:"items" dynamodbav:"items"`
	Total           float64     `json:"total" dynamodbav:"total"`
	CreatedAt       time.Time   `json:"created" dynamodbav:"created_at"`
	UpdatedAt       time.Time   `json:"updated" dynamodbav:"updated_at"`
}

type CreateOrderItem struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

type CreateOrderRequest struct {
	ShippingAddress string            `json:"shipping_address" validate:"required"`
	BillingAddress  string            `json:"billing_address" validate:"required"`
	PaymentMethod   string            `json:"payment_method" validate:"required"`
	Items           []CreateOrderItem `json:"items" validate:"required,min=1,dive"`
}

type UpdateOrderRequest struct {
	Status *string `json:"status"`
}
