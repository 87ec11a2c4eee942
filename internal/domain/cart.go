package domain

import "time"

// CartItem lives in the carts table. PK: user_id, SK: cart_item_id.
type CartItem struct {
	UserID     string    `json:"user_id" dynamodbav:"user_id"`
	CartItemID string    `json:"id" dynamodbav:"cart_item_id"`
	ProductID  string    `json:"product_id" dynamodbav:"product_id"`
	Quantity   int       `json:"quantity" dynamodbav:"quantity"`
	Price      float64   `json:"price" dynamodbav:"price"`
	Selected   bool      `json:"selected" dynamodbav:"selected"`
	CreatedAt  time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt  time.Time `json:"updated" dynamodbav:"updated_at"`
}

type AddCartItemRequest struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
}

type UpdateCartItemRequest struct {
	Quantity *int  `json:"quantity" validate:"omitempty,gt=0"`
	Selected *bool `json:"selected"`
}

type CheckoutRequest struct {
	ShippingAddress string `json:"shipping_address" validate:"required"`
	BillingAddress  string `json:"billing_address" validate:"required"`
	PaymentMethod   string `json:"payment_method" validate:"required"`
}
