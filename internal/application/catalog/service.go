package catalog

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/go-storefront-api/internal/domain"
	"github.com/go-storefront-api/internal/pkg/id"
	"github.com/go-storefront-api/internal/pkg/validate"
)

// DynamoDB attribute names used in partial update maps.
const (
	fieldTitle       = "title"
	fieldDescription = "description"
	fieldCategory    = "category"
	fieldBrand       = "brand"
	fieldPrice       = "price"
	fieldStock       = "stock"
	fieldRating      = "rating"
	fieldImageKey    = "image_key"
)

const imageURLTTL = time.Hour

type Service interface {
	List(ctx context.Context, f domain.ProductFilter, limit int, cursor string) ([]domain.Product, string, error)
	Get(ctx context.Context, productID string) (*domain.Product, error)
	Create(ctx context.Context, req domain.CreateProductRequest) (*domain.Product, error)
	Update(ctx context.Context, productID string, req domain.UpdateProductRequest) (*domain.Product, error)
	Delete(ctx context.Context, productID string) error
	UploadImage(ctx context.Context, productID, filename string, r io.Reader, contentType string) (*domain.Product, error)
}

type productStore interface {
	Put(ctx context.Context, p *domain.Product) error
	Get(ctx context.Context, productID string) (*domain.Product, error)
	ScanPage(ctx context.Context, f domain.ProductFilter, limit int32, cursor string) ([]domain.Product, string, error)
	Update(ctx context.Context, productID string, updates map[string]interface{}) error
	SoftDelete(ctx context.Context, productID string) error
}

type imageStore interface {
	Upload(ctx context.Context, key string, r io.Reader, contentType string) (string, error)
	PresignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

type service struct {
	repo   productStore
	images imageStore
}

func NewService(repo productStore, images imageStore) Service {
	return &service{repo: repo, images: images}
}

func (s *service) List(ctx context.Context, f domain.ProductFilter, limit int, cursor string) ([]domain.Product, string, error) {
	if limit < 1 {
		limit = 50
	}
	products, next, err := s.repo.ScanPage(ctx, f, int32(limit), cursor)
	if err != nil {
		return nil, "", err
	}
	for i := range products {
		s.attachImageURL(ctx, &products[i])
	}
	return products, next, nil
}

func (s *service) Get(ctx context.Context, productID string) (*domain.Product, error) {
	p, err := s.repo.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	s.attachImageURL(ctx, p)
	return p, nil
}

func (s *service) Create(ctx context.Context, req domain.CreateProductRequest) (*domain.Product, error) {
	if err := validate.Struct(&req); err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrBadRequest)
	}
	now := time.Now().UTC()
	p := &domain.Product{
		ProductID:   id.New(),
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Brand:       req.Brand,
		Price:       req.Price,
		Stock:       req.Stock,
		Enable:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Put(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *service) Update(ctx context.Context, productID string, req domain.UpdateProductRequest) (*domain.Product, error) {
	if err := validate.Struct(&req); err != nil {
		return nil, fmt.Errorf("%v: %w", err, domain.ErrBadRequest)
	}
	updates := map[string]interface{}{}
	if req.Title != nil {
		updates[fieldTitle] = *req.Title
	}
	if req.Description != nil {
		updates[fieldDescription] = *req.Description
	}
	if req.Category != nil {
		updates[fieldCategory] = *req.Category
	}
	if req.Brand != nil {
		updates[fieldBrand] = *req.Brand
	}
	if req.Price != nil {
		updates[fieldPrice] = *req.Price
	}
	if req.Stock != nil {
		updates[fieldStock] = *req.Stock
	}
	if req.Rating != nil {
		updates[fieldRating] = *req.Rating
	}
	if len(updates) == 0 {
		return s.Get(ctx, productID)
	}
	if err := s.repo.Update(ctx, productID, updates); err != nil {
		return nil, err
	}
	return s.Get(ctx, productID)
}

func (s *service) Delete(ctx context.Context, productID string) error {
	return s.repo.SoftDelete(ctx, productID)
}

func (s *service) UploadImage(ctx context.Context, productID, filename string, r io.Reader, contentType string) (*domain.Product, error) {
	existing, err := s.repo.Get(ctx, productID)
	if err != nil {
		return nil, err
	}
	key := fmt.Sprintf("products/%s/%s", productID, filename)
	if _, err := s.images.Upload(ctx, key, r, contentType); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, productID, map[string]interface{}{fieldImageKey: key}); err != nil {
		return nil, err
	}
	// Drop the replaced object; the row already points at the new key.
	if existing.ImageKey != "" && existing.ImageKey != key {
		if err := s.images.Delete(ctx, existing.ImageKey); err != nil {
			slog.Warn("failed to delete replaced product image", "product_id", productID, "key", existing.ImageKey, "err", err)
		}
	}
	return s.Get(ctx, productID)
}

// attachImageURL fills ImageURL with a presigned link. Best effort: a
// presign failure degrades the listing, it does not fail it.
func (s *service) attachImageURL(ctx context.Context, p *domain.Product) {
	if p.ImageKey == "" || s.images == nil {
		return
	}
	url, err := s.images.PresignedURL(ctx, p.ImageKey, imageURLTTL)
	if err != nil {
		slog.Warn("failed to presign product image", "product_id", p.ProductID, "err", err)
		return
	}
	p.ImageURL = url
}
