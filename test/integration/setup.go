package integration

import (
	"context"
	"net/http"
	"testing"
	"time"

	"storefront/internal/database"
	"storefront/internal/handler"
	"storefront/internal/model"
	"storefront/internal/repository"
	"storefront/internal/router"
	"storefront/internal/service"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

// TestDB represents a test database instance.
type TestDB struct {
	Container *postgres.PostgresContainer
	Pool      *pgxpool.Pool
	ConnStr   string
}

// TestStack is the fully wired application backed by a test database.
type TestStack struct {
	DB        *TestDB
	Auth      service.AuthService
	Catalog   service.CatalogService
	Orders    service.OrderService
	Activity  service.ActivityService
	Analytics service.AnalyticsService
	Server    http.Handler
}

// SetupTestDB creates a PostgreSQL test container, runs the migrations and
// returns a connection pool.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	ctx := context.Background()

	pgContainer, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("storefront_test"),
		postgres.WithUsername("postgres"),
		postgres.WithPassword("postgres"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("failed to start postgres container: %v", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("failed to get connection string: %v", err)
	}

	if err := database.Migrate(connStr, zerolog.Nop()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("failed to create connection pool: %v", err)
	}

	if err := pool.Ping(ctx); err != nil {
		t.Fatalf("failed to ping database: %v", err)
	}

	t.Cleanup(func() {
		pool.Close()
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	})

	return &TestDB{
		Container: pgContainer,
		Pool:      pool,
		ConnStr:   connStr,
	}
}

// SetupTestStack wires repositories, services, handlers and the router
// against a fresh test database.
func SetupTestStack(t *testing.T) *TestStack {
	t.Helper()

	testDB := SetupTestDB(t)
	logger := zerolog.Nop()

	categoryRepo := repository.NewCategoryRepository(testDB.Pool, logger)
	productRepo := repository.NewProductRepository(testDB.Pool, logger)
	orderRepo := repository.NewOrderRepository(testDB.Pool, logger)
	userRepo := repository.NewUserRepository(testDB.Pool, logger)
	activityRepo := repository.NewActivityRepository(testDB.Pool, logger)
	analyticsRepo := repository.NewAnalyticsRepository(testDB.Pool, logger)

	activityService := service.NewActivityService(activityRepo, logger)
	authService := service.NewAuthService(userRepo, activityService, time.Hour, logger)
	catalogService := service.NewCatalogService(categoryRepo, productRepo, activityService, logger)
	orderService := service.NewOrderService(orderRepo, productRepo, activityService, time.UTC, logger)
	analyticsService := service.NewAnalyticsService(analyticsRepo, productRepo, orderRepo, activityService, time.UTC, logger)

	authHandler := handler.NewAuthHandler(authService, logger)
	productHandler := handler.NewProductHandler(catalogService, logger)
	orderHandler := handler.NewOrderHandler(orderService, logger)
	activityHandler := handler.NewActivityHandler(activityService, logger)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService, logger)

	server := router.New(authHandler, productHandler, orderHandler,
		activityHandler, analyticsHandler, authService, logger)

	return &TestStack{
		DB:        testDB,
		Auth:      authService,
		Catalog:   catalogService,
		Orders:    orderService,
		Activity:  activityService,
		Analytics: analyticsService,
		Server:    server,
	}
}

// RegisterUser creates an account through the auth service and returns it.
func RegisterUser(t *testing.T, stack *TestStack, username string) *model.User {
	t.Helper()

	user, err := stack.Auth.Register(context.Background(), &model.RegisterRequest{
		Username: username,
		Email:    username + "@example.com",
		Password: "correct horse battery staple",
		Phone:    "9876543210",
		Pincode:  "560001",
	})
	if err != nil {
		t.Fatalf("failed to register user %s: %v", username, err)
	}

	return user
}

// PromoteToAdmin flips a user's type directly in the database.
func PromoteToAdmin(t *testing.T, stack *TestStack, user *model.User) {
	t.Helper()

	_, err := stack.DB.Pool.Exec(context.Background(),
		`UPDATE users SET user_type = $1 WHERE id = $2`, model.UserTypeAdmin, user.ID)
	if err != nil {
		t.Fatalf("failed to promote user: %v", err)
	}
	user.UserType = model.UserTypeAdmin
}

// CreateProduct creates a category and a product with the given price and
// stock through the catalog service.
func CreateProduct(t *testing.T, stack *TestStack, admin *model.User, name, price string, stock int) *model.Product {
	t.Helper()

	ctx := context.Background()
	category, err := stack.Catalog.CreateCategory(ctx, admin, &model.CreateCategoryRequest{
		Name: name + " Category",
	})
	if err != nil {
		t.Fatalf("failed to create category: %v", err)
	}

	product, err := stack.Catalog.CreateProduct(ctx, admin, &model.CreateProductRequest{
		Name:          name,
		CategoryID:    category.ID,
		Price:         mustDecimal(t, price),
		StockQuantity: stock,
		SKU:           "SKU-" + name,
	})
	if err != nil {
		t.Fatalf("failed to create product: %v", err)
	}

	return product
}

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()

	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("bad decimal %q: %v", s, err)
	}
	return d
}
