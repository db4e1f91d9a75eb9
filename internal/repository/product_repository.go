package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"storefront/internal/model"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
)

const productColumns = `id, name, slug, description, category_id, price, discount_price,
	stock_quantity, low_stock_threshold, sku, image_url, is_active, created_at, updated_at`

// productRepository implements the ProductRepository interface using PostgreSQL.
type productRepository struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewProductRepository creates a new PostgreSQL-backed product repository.
func NewProductRepository(pool *pgxpool.Pool, logger zerolog.Logger) ProductRepository {
	return &productRepository{
		pool:   pool,
		logger: logger.With().Str("repository", "product").Logger(),
	}
}

func scanProduct(row pgx.Row) (*model.Product, error) {
	var p model.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Slug, &p.Description, &p.CategoryID, &p.Price, &p.DiscountPrice,
		&p.StockQuantity, &p.LowStockThreshold, &p.SKU, &p.ImageURL, &p.IsActive,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func collectProducts(rows pgx.Rows) ([]model.Product, error) {
	defer rows.Close()

	var products []model.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan product: %w", err)
		}
		products = append(products, *p)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating products: %w", err)
	}

	return products, nil
}

// List retrieves products matching the filter with pagination.
func (r *productRepository) List(ctx context.Context, filter model.ProductFilter) (model.ProductPage, error) {
	var page model.ProductPage

	conditions := []string{"TRUE"}
	args := []any{}

	if filter.CategoryID != nil {
		args = append(args, *filter.CategoryID)
		conditions = append(conditions, fmt.Sprintf("p.category_id = $%d", len(args)))
	}
	if filter.IsActive != nil {
		args = append(args, *filter.IsActive)
		conditions = append(conditions, fmt.Sprintf("p.is_active = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		n := len(args)
		conditions = append(conditions, fmt.Sprintf(
			"(p.name ILIKE $%d OR p.description ILIKE $%d OR EXISTS (SELECT 1 FROM categories c WHERE c.id = p.category_id AND c.name ILIKE $%d))",
			n, n, n))
	}

	where := strings.Join(conditions, " AND ")

	countQuery := `SELECT COUNT(*) FROM products p WHERE ` + where
	if err := r.pool.QueryRow(ctx, countQuery, args...).Scan(&page.Count); err != nil {
		r.logger.Error().Err(err).Msg("failed to count products")
		return page, fmt.Errorf("failed to count products: %w", err)
	}

	pageSize := filter.PageSize
	if pageSize <= 0 {
		pageSize = 10
	}
	page.NumPages = (page.Count + pageSize - 1) / pageSize
	if page.NumPages == 0 {
		page.NumPages = 1
	}

	// Out-of-range pages clamp to the nearest valid page.
	current := filter.Page
	if current < 1 {
		current = 1
	}
	if current > page.NumPages {
		current = page.NumPages
	}
	page.CurrentPage = current

	args = append(args, pageSize, (current-1)*pageSize)
	listQuery := fmt.Sprintf(
		`SELECT %s FROM products p WHERE %s ORDER BY p.name LIMIT $%d OFFSET $%d`,
		productColumns, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, listQuery, args...)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query products")
		return page, fmt.Errorf("failed to query products: %w", err)
	}

	products, err := collectProducts(rows)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to collect products")
		return page, err
	}
	if products == nil {
		products = []model.Product{}
	}
	page.Results = products

	return page, nil
}

// GetByID retrieves a single product by its ID.
func (r *productRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	p, err := scanProduct(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Debug().Str("product_id", id.String()).Msg("product not found")
			return nil, nil
		}
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to query product")
		return nil, fmt.Errorf("failed to query product: %w", err)
	}

	return p, nil
}

// GetForUpdate retrieves products by ID within the transaction, taking
// row-level locks. Rows are locked in primary-key order so two placements
// touching the same products acquire locks in the same sequence.
func (r *productRepository) GetForUpdate(ctx context.Context, tx pgx.Tx, ids []uuid.UUID) ([]model.Product, error) {
	if len(ids) == 0 {
		return []model.Product{}, nil
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE id = ANY($1) ORDER BY id FOR UPDATE`

	rows, err := tx.Query(ctx, query, ids)
	if err != nil {
		r.logger.Error().Err(err).Int("count", len(ids)).Msg("failed to lock products")
		return nil, fmt.Errorf("failed to lock products: %w", err)
	}

	return collectProducts(rows)
}

// Create inserts a new product.
func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	query := `
		INSERT INTO products (` + productColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`

	_, err := r.pool.Exec(ctx, query,
		product.ID, product.Name, product.Slug, product.Description, product.CategoryID,
		product.Price, product.DiscountPrice, product.StockQuantity, product.LowStockThreshold,
		product.SKU, product.ImageURL, product.IsActive, product.CreatedAt, product.UpdatedAt,
	)
	if err != nil {
		switch {
		case isUniqueViolation(err, "products_sku_key"):
			return model.NewAlreadyExistsError("sku")
		case isUniqueViolation(err, "products_slug_key"):
			return model.NewAlreadyExistsError("slug")
		case isForeignKeyViolation(err):
			return model.ErrCategoryNotFound
		}
		r.logger.Error().Err(err).Str("product_id", product.ID.String()).Msg("failed to create product")
		return fmt.Errorf("failed to create product: %w", err)
	}

	r.logger.Debug().Str("product_id", product.ID.String()).Msg("product created")
	return nil
}

// Update overwrites a product's mutable attributes. The slug is immutable
// and deliberately not part of the statement.
func (r *productRepository) Update(ctx context.Context, product *model.Product) error {
	query := `
		UPDATE products
		SET name = $2, description = $3, category_id = $4, price = $5, discount_price = $6,
			stock_quantity = $7, low_stock_threshold = $8, image_url = $9, is_active = $10,
			updated_at = now()
		WHERE id = $1
	`

	tag, err := r.pool.Exec(ctx, query,
		product.ID, product.Name, product.Description, product.CategoryID,
		product.Price, product.DiscountPrice, product.StockQuantity,
		product.LowStockThreshold, product.ImageURL, product.IsActive,
	)
	if err != nil {
		if isForeignKeyViolation(err) {
			return model.ErrCategoryNotFound
		}
		if isCheckViolation(err) {
			return model.ErrInsufficientStock
		}
		r.logger.Error().Err(err).Str("product_id", product.ID.String()).Msg("failed to update product")
		return fmt.Errorf("failed to update product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrProductNotFound
	}

	return nil
}

// Delete removes a product. The order_items foreign key is RESTRICT, so a
// product with order history cannot be deleted.
func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		if isForeignKeyViolation(err) {
			r.logger.Warn().Str("product_id", id.String()).Msg("product referenced by orders, refusing delete")
			return model.NewDomainError(model.ErrCodeConflict, "Product is referenced by existing orders and cannot be deleted")
		}
		r.logger.Error().Err(err).Str("product_id", id.String()).Msg("failed to delete product")
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrProductNotFound
	}

	return nil
}

// ListLowStock retrieves products at or below their low-stock threshold.
func (r *productRepository) ListLowStock(ctx context.Context) ([]model.Product, error) {
	query := `SELECT ` + productColumns + ` FROM products
		WHERE stock_quantity <= low_stock_threshold ORDER BY stock_quantity, name`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("failed to query low stock products")
		return nil, fmt.Errorf("failed to query low stock products: %w", err)
	}

	return collectProducts(rows)
}

// AdjustStock applies stock_quantity += delta within the transaction. The
// WHERE clause makes the non-negativity check part of the same statement as
// the write, so concurrent adjustments cannot oversell.
func (r *productRepository) AdjustStock(ctx context.Context, tx pgx.Tx, productID uuid.UUID, delta int) error {
	query := `
		UPDATE products
		SET stock_quantity = stock_quantity + $2, updated_at = now()
		WHERE id = $1 AND stock_quantity + $2 >= 0
	`

	tag, err := tx.Exec(ctx, query, productID, delta)
	if err != nil {
		r.logger.Error().Err(err).
			Str("product_id", productID.String()).
			Int("delta", delta).
			Msg("failed to adjust stock")
		return fmt.Errorf("failed to adjust stock: %w", err)
	}

	if tag.RowsAffected() == 0 {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM products WHERE id = $1)`, productID).Scan(&exists); err != nil {
			return fmt.Errorf("failed to check product existence: %w", err)
		}
		if !exists {
			return model.ErrProductNotFound
		}
		r.logger.Warn().
			Str("product_id", productID.String()).
			Int("delta", delta).
			Msg("stock adjustment would go negative")
		return model.ErrInsufficientStock
	}

	return nil
}
