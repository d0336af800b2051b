package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"logistics/internal/handlers"
	"logistics/internal/middleware"
	"logistics/internal/models"
	"logistics/internal/repositories"
	"logistics/internal/services"
)

// setupApp builds the full HTTP surface on an in-memory SQLite database,
// mirroring the wiring in main.go minus RabbitMQ.
func setupApp(t *testing.T) *fiber.App {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	sqlDB.SetMaxIdleConns(1)

	require.NoError(t, db.AutoMigrate(&models.Product{}, &models.Order{}, &models.OrderItem{}, &models.User{}))

	productRepo := repositories.NewGORMProductRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	userRepo := repositories.NewGORMUserRepository(db)

	productService := services.NewProductService(productRepo)
	orderService := services.NewOrderService(db, orderRepo, productRepo, nil, time.Second)
	authService := services.NewAuthService(userRepo, "test_jwt_secret")

	app := fiber.New()
	apiV1 := app.Group("/api/v1")
	handlers.NewProductHandler(productService).RegisterRoutes(apiV1)
	handlers.NewOrderHandler(orderService, middleware.AuthRequired(authService)).RegisterRoutes(apiV1)
	handlers.NewAuthHandler(authService).RegisterRoutes(apiV1)

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	})

	return app
}

// doJSON issues a JSON request against app and decodes the response body
// into out when out is non-nil.
func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}, token string, out interface{}) *http.Response {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	if out != nil {
		defer resp.Body.Close()
		require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func createProduct(t *testing.T, app *fiber.App, name string, price float64, stock int) models.Product {
	t.Helper()
	var product models.Product
	resp := doJSON(t, app, http.MethodPost, "/api/v1/products", fiber.Map{
		"name":  name,
		"price": price,
		"stock": stock,
	}, "", &product)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotEmpty(t, product.ID)
	return product
}

func loginToken(t *testing.T, app *fiber.App) string {
	t.Helper()
	resp := doJSON(t, app, http.MethodPost, "/api/v1/auth/register", fiber.Map{
		"username": "operator",
		"email":    "operator@example.com",
		"password": "secret123",
	}, "", nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var login struct {
		Token string `json:"token"`
	}
	resp = doJSON(t, app, http.MethodPost, "/api/v1/auth/login", fiber.Map{
		"username": "operator",
		"password": "secret123",
	}, "", &login)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.NotEmpty(t, login.Token)
	return login.Token
}

func TestHealthEndpoint(t *testing.T) {
	app := setupApp(t)
	resp := doJSON(t, app, http.MethodGet, "/health", nil, "", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCreateOrderFlow(t *testing.T) {
	app := setupApp(t)
	phone := createProduct(t, app, "Test Phone", 1000.00, 10)

	var order models.Order
	resp := doJSON(t, app, http.MethodPost, "/api/v1/orders", fiber.Map{
		"items": []fiber.Map{{"product_id": phone.ID, "quantity": 2}},
	}, "", &order)

	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, models.OrderStatusPending, order.Status)
	require.Len(t, order.Items, 1)
	assert.Equal(t, 1000.00, order.Items[0].PriceAtOrder)

	var reloaded models.Product
	resp = doJSON(t, app, http.MethodGet, "/api/v1/products/"+phone.ID, nil, "", &reloaded)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 8, reloaded.Stock)

	var fetched models.Order
	resp = doJSON(t, app, http.MethodGet, "/api/v1/orders/"+order.ID, nil, "", &fetched)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, order.ID, fetched.ID)
	assert.Len(t, fetched.Items, 1)
}

func TestCreateOrder_InsufficientStock(t *testing.T) {
	app := setupApp(t)
	limited := createProduct(t, app, "Limited Item", 50.00, 1)

	var body map[string]interface{}
	resp := doJSON(t, app, http.MethodPost, "/api/v1/orders", fiber.Map{
		"items": []fiber.Map{{"product_id": limited.ID, "quantity": 5}},
	}, "", &body)

	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["message"], "insufficient stock")
	assert.Contains(t, body["message"], "Limited Item")

	// Stock is untouched by the rejected order.
	var reloaded models.Product
	doJSON(t, app, http.MethodGet, "/api/v1/products/"+limited.ID, nil, "", &reloaded)
	assert.Equal(t, 1, reloaded.Stock)
}

func TestCreateOrder_UnknownProduct(t *testing.T) {
	app := setupApp(t)
	missing := uuid.New().String()

	var body map[string]interface{}
	resp := doJSON(t, app, http.MethodPost, "/api/v1/orders", fiber.Map{
		"items": []fiber.Map{{"product_id": missing, "quantity": 1}},
	}, "", &body)

	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, body["message"], missing)

	// No order was persisted.
	var orders []models.Order
	resp = doJSON(t, app, http.MethodGet, "/api/v1/orders", nil, "", &orders)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Empty(t, orders)
}

func TestCreateOrder_EmptyItems(t *testing.T) {
	app := setupApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/orders", fiber.Map{
		"items": []fiber.Map{},
	}, "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateProduct_Validation(t *testing.T) {
	app := setupApp(t)

	resp := doJSON(t, app, http.MethodPost, "/api/v1/products", fiber.Map{
		"name":  "Freebie",
		"price": 0,
		"stock": 5,
	}, "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPost, "/api/v1/products", fiber.Map{
		"name":  "Backorder",
		"price": 9.99,
		"stock": -1,
	}, "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestListProducts_Pagination(t *testing.T) {
	app := setupApp(t)
	for i := 0; i < 3; i++ {
		createProduct(t, app, fmt.Sprintf("Item %d", i), 5.00, 3)
	}

	var page []models.Product
	resp := doJSON(t, app, http.MethodGet, "/api/v1/products?skip=1&limit=1", nil, "", &page)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Len(t, page, 1)

	resp = doJSON(t, app, http.MethodGet, "/api/v1/products?limit=500", nil, "", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestGetOrder_NotFound(t *testing.T) {
	app := setupApp(t)
	resp := doJSON(t, app, http.MethodGet, "/api/v1/orders/"+uuid.New().String(), nil, "", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestOrderStatusTransitions(t *testing.T) {
	app := setupApp(t)
	token := loginToken(t, app)
	product := createProduct(t, app, "Shippable", 10.00, 10)

	placeOrder := func() models.Order {
		var order models.Order
		resp := doJSON(t, app, http.MethodPost, "/api/v1/orders", fiber.Map{
			"items": []fiber.Map{{"product_id": product.ID, "quantity": 1}},
		}, "", &order)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		return order
	}

	first := placeOrder()

	// The transition route requires a token.
	resp := doJSON(t, app, http.MethodPatch, "/api/v1/orders/"+first.ID+"/status", fiber.Map{
		"status": "shipped",
	}, "", nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	var shipped models.Order
	resp = doJSON(t, app, http.MethodPatch, "/api/v1/orders/"+first.ID+"/status", fiber.Map{
		"status": "shipped",
	}, token, &shipped)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, models.OrderStatusShipped, shipped.Status)

	// A cancelled order can never ship.
	second := placeOrder()
	resp = doJSON(t, app, http.MethodPatch, "/api/v1/orders/"+second.ID+"/status", fiber.Map{
		"status": "cancelled",
	}, token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]interface{}
	resp = doJSON(t, app, http.MethodPatch, "/api/v1/orders/"+second.ID+"/status", fiber.Map{
		"status": "shipped",
	}, token, &body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, body["message"], "illegal order status transition")

	var reloaded models.Order
	resp = doJSON(t, app, http.MethodGet, "/api/v1/orders/"+second.ID, nil, "", &reloaded)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, models.OrderStatusCancelled, reloaded.Status)

	// Unknown order id and unknown status both fail cleanly.
	resp = doJSON(t, app, http.MethodPatch, "/api/v1/orders/"+uuid.New().String()+"/status", fiber.Map{
		"status": "shipped",
	}, token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doJSON(t, app, http.MethodPatch, "/api/v1/orders/"+first.ID+"/status", fiber.Map{
		"status": "delivered",
	}, token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}
