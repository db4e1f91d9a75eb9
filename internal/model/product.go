package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Category groups products in the catalogue.
type Category struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	Slug        string    `json:"slug" db:"slug"`
	Description string    `json:"description" db:"description"`
}

// Product represents a sellable product in the catalogue.
type Product struct {
	ID                uuid.UUID        `json:"id" db:"id"`
	Name              string           `json:"name" db:"name"`
	Slug              string           `json:"slug" db:"slug"`
	Description       string           `json:"description" db:"description"`
	CategoryID        uuid.UUID        `json:"categoryId" db:"category_id"`
	Price             decimal.Decimal  `json:"price" db:"price"`
	DiscountPrice     *decimal.Decimal `json:"discountPrice,omitempty" db:"discount_price"`
	StockQuantity     int              `json:"stockQuantity" db:"stock_quantity"`
	LowStockThreshold int              `json:"lowStockThreshold" db:"low_stock_threshold"`
	SKU               string           `json:"sku" db:"sku"`
	ImageURL          *string          `json:"imageUrl,omitempty" db:"image_url"`
	IsActive          bool             `json:"isActive" db:"is_active"`
	CreatedAt         time.Time        `json:"createdAt" db:"created_at"`
	UpdatedAt         time.Time        `json:"updatedAt" db:"updated_at"`
}

// CreateCategoryRequest is the payload for creating a category.
type CreateCategoryRequest struct {
	Name        string `json:"name"`
	Slug        string `json:"slug,omitempty"`
	Description string `json:"description"`
}

// CreateProductRequest is the payload for creating a product.
type CreateProductRequest struct {
	Name              string           `json:"name"`
	Slug              string           `json:"slug,omitempty"`
	Description       string           `json:"description"`
	CategoryID        uuid.UUID        `json:"categoryId"`
	Price             decimal.Decimal  `json:"price"`
	DiscountPrice     *decimal.Decimal `json:"discountPrice,omitempty"`
	StockQuantity     int              `json:"stockQuantity"`
	LowStockThreshold *int             `json:"lowStockThreshold,omitempty"`
	SKU               string           `json:"sku"`
	ImageURL          *string          `json:"imageUrl,omitempty"`
	IsActive          *bool            `json:"isActive,omitempty"`
}

// UpdateProductRequest is the payload for a partial product update.
// The slug is immutable once assigned and is deliberately absent.
type UpdateProductRequest struct {
	Name              *string          `json:"name,omitempty"`
	Description       *string          `json:"description,omitempty"`
	CategoryID        *uuid.UUID       `json:"categoryId,omitempty"`
	Price             *decimal.Decimal `json:"price,omitempty"`
	DiscountPrice     *decimal.Decimal `json:"discountPrice,omitempty"`
	StockQuantity     *int             `json:"stockQuantity,omitempty"`
	LowStockThreshold *int             `json:"lowStockThreshold,omitempty"`
	ImageURL          *string          `json:"imageUrl,omitempty"`
	IsActive          *bool            `json:"isActive,omitempty"`
}

// ProductFilter narrows product listings.
type ProductFilter struct {
	CategoryID *uuid.UUID
	IsActive   *bool
	Search     string
	Page       int
	PageSize   int
}

// ProductPage is a paginated product listing response.
type ProductPage struct {
	Count       int       `json:"count"`
	NumPages    int       `json:"numPages"`
	CurrentPage int       `json:"currentPage"`
	Results     []Product `json:"results"`
}
