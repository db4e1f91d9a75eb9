package service

import (
	"context"
	"regexp"
	"strings"
	"time"

	"storefront/internal/model"
	"storefront/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// catalogService implements CatalogService.
type catalogService struct {
	categoryRepo repository.CategoryRepository
	productRepo  repository.ProductRepository
	activity     ActivityRecorder
	logger       zerolog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(
	categoryRepo repository.CategoryRepository,
	productRepo repository.ProductRepository,
	activity ActivityRecorder,
	logger zerolog.Logger,
) CatalogService {
	return &catalogService{
		categoryRepo: categoryRepo,
		productRepo:  productRepo,
		activity:     activity,
		logger:       logger.With().Str("service", "catalog").Logger(),
	}
}

// ListCategories retrieves all categories.
func (s *catalogService) ListCategories(ctx context.Context) ([]model.Category, error) {
	return s.categoryRepo.GetAll(ctx)
}

// CreateCategory creates a new category.
func (s *catalogService) CreateCategory(ctx context.Context, actor *model.User, req *model.CreateCategoryRequest) (*model.Category, error) {
	if req == nil || req.Name == "" {
		return nil, model.NewDomainError(model.ErrCodeMissingField, "Category name is required")
	}

	slug := req.Slug
	if slug == "" {
		slug = slugify(req.Name)
	}

	category := &model.Category{
		ID:          uuid.New(),
		Name:        req.Name,
		Slug:        slug,
		Description: req.Description,
	}

	if err := s.categoryRepo.Create(ctx, category); err != nil {
		return nil, err
	}

	s.logger.Info().Str("category_id", category.ID.String()).Str("slug", category.Slug).Msg("category created")
	s.activity.Record(ctx, actor, model.ActionCategoryCreated, "category", category.ID.String(), map[string]any{
		"name": category.Name,
	})

	return category, nil
}

// ListProducts retrieves products matching the filter with pagination.
func (s *catalogService) ListProducts(ctx context.Context, filter model.ProductFilter) (model.ProductPage, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize <= 0 {
		filter.PageSize = 10
	}
	if filter.PageSize > 100 {
		filter.PageSize = 100
	}

	return s.productRepo.List(ctx, filter)
}

// GetProduct retrieves a single product by ID.
func (s *catalogService) GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, model.ErrProductNotFound
	}
	return product, nil
}

// CreateProduct creates a new product. The slug is derived from the name
// when absent and never changes afterwards.
func (s *catalogService) CreateProduct(ctx context.Context, actor *model.User, req *model.CreateProductRequest) (*model.Product, error) {
	if err := validateCreateProductRequest(req); err != nil {
		return nil, err
	}

	category, err := s.categoryRepo.GetByID(ctx, req.CategoryID)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, model.ErrCategoryNotFound
	}

	slug := req.Slug
	if slug == "" {
		slug = slugify(req.Name)
	}

	threshold := 10
	if req.LowStockThreshold != nil {
		threshold = *req.LowStockThreshold
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	now := time.Now()
	product := &model.Product{
		ID:                uuid.New(),
		Name:              req.Name,
		Slug:              slug,
		Description:       req.Description,
		CategoryID:        req.CategoryID,
		Price:             req.Price,
		DiscountPrice:     req.DiscountPrice,
		StockQuantity:     req.StockQuantity,
		LowStockThreshold: threshold,
		SKU:               req.SKU,
		ImageURL:          req.ImageURL,
		IsActive:          active,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info().
		Str("product_id", product.ID.String()).
		Str("sku", product.SKU).
		Msg("product created")
	s.activity.Record(ctx, actor, model.ActionProductCreated, "product", product.ID.String(), map[string]any{
		"name": product.Name,
		"sku":  product.SKU,
	})

	return product, nil
}

// UpdateProduct applies a partial update to a product.
func (s *catalogService) UpdateProduct(ctx context.Context, actor *model.User, id uuid.UUID, req *model.UpdateProductRequest) (*model.Product, error) {
	if req == nil {
		return nil, model.NewDomainError(model.ErrCodeMissingField, "Request body is required")
	}

	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, model.ErrProductNotFound
	}

	if req.Name != nil {
		product.Name = *req.Name
	}
	if req.Description != nil {
		product.Description = *req.Description
	}
	if req.CategoryID != nil {
		product.CategoryID = *req.CategoryID
	}
	if req.Price != nil {
		if req.Price.IsNegative() {
			return nil, model.NewDomainError(model.ErrCodeMissingField, "Price cannot be negative")
		}
		product.Price = *req.Price
	}
	if req.DiscountPrice != nil {
		product.DiscountPrice = req.DiscountPrice
	}
	if req.StockQuantity != nil {
		if *req.StockQuantity < 0 {
			return nil, model.NewDomainError(model.ErrCodeInvalidQuantity, "Stock quantity cannot be negative")
		}
		product.StockQuantity = *req.StockQuantity
	}
	if req.LowStockThreshold != nil {
		product.LowStockThreshold = *req.LowStockThreshold
	}
	if req.ImageURL != nil {
		product.ImageURL = req.ImageURL
	}
	if req.IsActive != nil {
		product.IsActive = *req.IsActive
	}

	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, err
	}

	s.logger.Info().Str("product_id", id.String()).Msg("product updated")
	s.activity.Record(ctx, actor, model.ActionProductUpdated, "product", id.String(), map[string]any{
		"name": product.Name,
	})

	return product, nil
}

// DeleteProduct removes a product without order history.
func (s *catalogService) DeleteProduct(ctx context.Context, actor *model.User, id uuid.UUID) error {
	product, err := s.productRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if product == nil {
		return model.ErrProductNotFound
	}

	if err := s.productRepo.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info().Str("product_id", id.String()).Msg("product deleted")
	s.activity.Record(ctx, actor, model.ActionProductDeleted, "product", id.String(), map[string]any{
		"name": product.Name,
		"sku":  product.SKU,
	})

	return nil
}

// ListLowStock retrieves products at or below their low-stock threshold.
func (s *catalogService) ListLowStock(ctx context.Context) ([]model.Product, error) {
	return s.productRepo.ListLowStock(ctx)
}

func validateCreateProductRequest(req *model.CreateProductRequest) error {
	if req == nil {
		return model.NewDomainError(model.ErrCodeMissingField, "Request body is required")
	}
	if req.Name == "" {
		return model.NewDomainError(model.ErrCodeMissingField, "Product name is required")
	}
	if req.SKU == "" {
		return model.NewDomainError(model.ErrCodeMissingField, "SKU is required")
	}
	if req.CategoryID == uuid.Nil {
		return model.NewDomainError(model.ErrCodeMissingField, "Category ID is required")
	}
	if req.Price.IsNegative() {
		return model.NewDomainError(model.ErrCodeMissingField, "Price cannot be negative")
	}
	if req.StockQuantity < 0 {
		return model.NewDomainError(model.ErrCodeInvalidQuantity, "Stock quantity cannot be negative")
	}
	return nil
}

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// slugify lowercases the name and collapses runs of non-alphanumerics into
// single hyphens.
func slugify(name string) string {
	slug := strings.ToLower(strings.TrimSpace(name))
	slug = slugStrip.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}
