package domain

import "time"

type Product struct {
	ProductID   string    `json:"id" dynamodbav:"product_id"`
	Title       string    `json:"title" dynamodbav:"title"`
	Description string    `json:"description" dynamodbav:"description"`
	Category    string    `json:"category" dynamodbav:"category"`
	Brand       string    `json:"brand" dynamodbav:"brand"`
	Price       float64   `json:"price" dynamodbav:"price"`
	Stock       int       `json:"stock" dynamodbav:"stock"`
	Rating      float64   `json:"rating" dynamodbav:"rating"`
	ImageKey    string    `json:"image_key,omitempty" dynamodbav:"image_key"`
	ImageURL    string    `json:"image_url,omitempty" dynamodbav:"-"`
	Enable      bool      `json:"enable" dynamodbav:"enable"`
	CreatedAt   time.Time `json:"created" dynamodbav:"created_at"`
	UpdatedAt   time.Time `json:"updated" dynamodbav:"updated_at"`
}

type CreateProductRequest struct {
	Title       string  `json:"title" validate:"required"`
	Description string  `json:"description"`
	Category    string  `json:"category" validate:"required"`
	Brand       string  `json:"brand"`
	Price       float64 `json:"price" validate:"required,gt=0"`
	Stock       int     `json:"stock" validate:"gte=0"`
}

type UpdateProductRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	Brand       *string  `json:"brand"`
	Price       *float64 `json:"price" validate:"omitempty,gt=0"`
	Stock       *int     `json:"stock" validate:"omitempty,gte=0"`
	Rating      *float64 `json:"rating" validate:"omitempty,gte=0,lte=5"`
}

// ProductFilter narrows a catalog listing. Zero values mean "no constraint".
type ProductFilter struct {
	Category  string
	Brand     string
	Title     string
	MinPrice  *float64
	MaxPrice  *float64
	MinRating *float64
}
