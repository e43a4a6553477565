package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"katalog/internal/cache"
	"katalog/internal/handlers"
	"katalog/internal/middleware"
	"katalog/internal/models"
	"katalog/internal/repositories"
	"katalog/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// fakePublisher records every enqueued notification job.
type fakePublisher struct {
	jobs []models.NotificationJob
}

func (f *fakePublisher) Publish(job any) error {
	f.jobs = append(f.jobs, job.(models.NotificationJob))
	return nil
}

// memStore is an in-memory cache.Store with hit/set counters.
type memStore struct {
	data map[string][]byte
	gets int
	hits int
	sets int
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (s *memStore) Get(_ context.Context, key string) ([]byte, error) {
	s.gets++
	b, ok := s.data[key]
	if !ok {
		return nil, nil
	}
	s.hits++
	return b, nil
}

func (s *memStore) Set(_ context.Context, key string, val []byte, _ int) error {
	s.sets++
	s.data[key] = val
	return nil
}

// testEnv bundles the app under test with its collaborators.
type testEnv struct {
	app        *fiber.App
	publisher  *fakePublisher
	store      *memStore
	categories repositories.CategoryRepository
	products   repositories.ProductRepository
}

// setupApp wires the full API against an in-memory SQLite database, a
// recording publisher and an in-memory cache store.
func setupApp(t *testing.T) *testEnv {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	assert.NoError(t, err)
	assert.NoError(t, db.AutoMigrate(&models.Category{}, &models.Product{}, &models.User{}))

	categoryRepo := repositories.NewGORMCategoryRepository(db)
	productRepo := repositories.NewGORMProductRepository(db)
	userRepo := repositories.NewGORMUserRepository(db)

	publisher := &fakePublisher{}
	store := newMemStore()

	categoryService := services.NewCategoryService(categoryRepo)
	productService := services.NewProductService(productRepo, categoryRepo, publisher)
	authService := services.NewAuthService(userRepo, "test_jwt_secret", time.Hour, 24*time.Hour)

	categoryHandler := handlers.NewCategoryHandler(categoryService)
	productHandler := handlers.NewProductHandler(productService, cache.NewResponseCache(store), 900)
	authHandler := handlers.NewAuthHandler(authService)

	app := fiber.New()
	apiV1 := app.Group("/api/v1")
	authHandler.RegisterRoutes(apiV1)

	authRequired := middleware.AuthRequired(authService)
	categoryHandler.RegisterRoutes(apiV1, authRequired)
	productHandler.RegisterRoutes(apiV1, authRequired)

	return &testEnv{
		app:        app,
		publisher:  publisher,
		store:      store,
		categories: categoryRepo,
		products:   productRepo,
	}
}

func TestMain(m *testing.M) {
	// Suppress logging during tests for cleaner output
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func jsonRequest(method, target string, body any, token string) *http.Request {
	var reader io.Reader
	if body != nil {
		b, _ := json.Marshal(body)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return req
}

// obtainToken registers a user and returns a valid access token.
func obtainToken(t *testing.T, app *fiber.App) string {
	t.Helper()

	register := map[string]string{
		"username": "testuser",
		"email":    "test@example.com",
		"password": "password123",
	}
	resp, err := app.Test(jsonRequest(http.MethodPost, "/api/v1/auth/register", register, ""), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	login := map[string]string{"username": "testuser", "password": "password123"}
	resp, err = app.Test(jsonRequest(http.MethodPost, "/api/v1/auth/token", login, ""), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var tokens services.TokenPair
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&tokens))
	resp.Body.Close()
	assert.NotEmpty(t, tokens.Access)
	return tokens.Access
}

func seedCategoryDirect(t *testing.T, env *testEnv, name string) *models.Category {
	t.Helper()
	category := &models.Category{Name: name}
	assert.NoError(t, env.categories.Create(category))
	return category
}

type productPage struct {
	Count    int64            `json:"count"`
	Next     *int             `json:"next"`
	Previous *int             `json:"previous"`
	Results  []models.Product `json:"results"`
}

func getProductPage(t *testing.T, app *fiber.App, target string) (productPage, []byte) {
	t.Helper()
	resp, err := app.Test(jsonRequest(http.MethodGet, target, nil, ""), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.NoError(t, err)
	var page productPage
	assert.NoError(t, json.Unmarshal(raw, &page))
	return page, raw
}

func TestTokenObtainAndRefresh(t *testing.T) {
	env := setupApp(t)

	register := map[string]string{
		"username": "testuser",
		"email":    "test@example.com",
		"password": "password123",
	}
	resp, err := env.app.Test(jsonRequest(http.MethodPost, "/api/v1/auth/register", register, ""), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	login := map[string]string{"username": "testuser", "password": "password123"}
	resp, err = env.app.Test(jsonRequest(http.MethodPost, "/api/v1/auth/token", login, ""), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var tokens services.TokenPair
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&tokens))
	resp.Body.Close()
	assert.NotEmpty(t, tokens.Access)
	assert.NotEmpty(t, tokens.Refresh)

	// Refresh yields a fresh access token.
	resp, err = env.app.Test(jsonRequest(http.MethodPost, "/api/v1/auth/token/refresh",
		map[string]string{"refresh": tokens.Refresh}, ""), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var refreshed map[string]string
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&refreshed))
	resp.Body.Close()
	assert.NotEmpty(t, refreshed["access"])

	// A refresh token cannot authorize a write directly.
	category := map[string]string{"name": "Electronics"}
	resp, err = env.app.Test(jsonRequest(http.MethodPost, "/api/v1/categories", category, tokens.Refresh), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestUnauthenticatedProductWriteRejected(t *testing.T) {
	env := setupApp(t)
	category := seedCategoryDirect(t, env, "Electronics")

	payload := map[string]any{
		"name": "Tablet", "price": 299.99, "stock": 15, "category_id": category.ID,
	}
	resp, err := env.app.Test(jsonRequest(http.MethodPost, "/api/v1/products", payload, ""), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	// The store is untouched and no job was enqueued.
	_, count, err := env.products.List(models.ListQuery{})
	assert.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, env.publisher.jobs)
}

func TestCategoryNameMinLength(t *testing.T) {
	env := setupApp(t)
	token := obtainToken(t, env.app)

	resp, err := env.app.Test(jsonRequest(http.MethodPost, "/api/v1/categories",
		map[string]string{"name": "ab"}, token), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var body map[string]any
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	resp.Body.Close()
	assert.Contains(t, body["errors"], "Name")

	resp, err = env.app.Test(jsonRequest(http.MethodPost, "/api/v1/categories",
		map[string]string{"name": "Books"}, token), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()
}

func TestProductCreateInvariants(t *testing.T) {
	env := setupApp(t)
	token := obtainToken(t, env.app)
	category := seedCategoryDirect(t, env, "Electronics")

	cases := []struct {
		name    string
		payload map[string]any
	}{
		{"zero price", map[string]any{"name": "Freebie", "price": 0, "stock": 1, "category_id": category.ID}},
		{"negative price", map[string]any{"name": "Refund", "price": -5.0, "stock": 1, "category_id": category.ID}},
		{"negative stock", map[string]any{"name": "Phantom", "price": 9.99, "stock": -1, "category_id": category.ID}},
	}
	for _, tc := range cases {
		resp, err := env.app.Test(jsonRequest(http.MethodPost, "/api/v1/products", tc.payload, token), -1)
		assert.NoError(t, err, tc.name)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode, tc.name)
		resp.Body.Close()
	}

	// Unknown category reference is rejected before persistence.
	resp, err := env.app.Test(jsonRequest(http.MethodPost, "/api/v1/products", map[string]any{
		"name": "Orphan", "price": 9.99, "stock": 1, "category_id": uuid.New().String(),
	}, token), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	// Nothing was persisted and no jobs enqueued by the rejects.
	_, count, err := env.products.List(models.ListQuery{})
	assert.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, env.publisher.jobs)

	// A valid product is persisted and enqueues exactly one job.
	resp, err = env.app.Test(jsonRequest(http.MethodPost, "/api/v1/products", map[string]any{
		"name": "Phone", "price": 499.99, "stock": 20, "category_id": category.ID,
	}, token), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var created models.Product
	assert.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	resp.Body.Close()
	assert.NotEmpty(t, created.ID)
	assert.NotNil(t, created.Category) // nested expansion on read
	assert.Equal(t, "Electronics", created.Category.Name)

	assert.Len(t, env.publisher.jobs, 1)
	assert.Equal(t, created.ID, env.publisher.jobs[0].ProductID)
}

func TestProductListPagination(t *testing.T) {
	env := setupApp(t)
	category := seedCategoryDirect(t, env, "Electronics")

	for i := 0; i < 15; i++ {
		assert.NoError(t, env.products.Create(&models.Product{
			Name: fmt.Sprintf("Product %02d", i), Price: 100.0 + float64(i),
			Stock: 10, CategoryID: category.ID,
		}))
	}

	page2, _ := getProductPage(t, env.app, "/api/v1/products?page=2")
	assert.Equal(t, int64(15), page2.Count)
	assert.Len(t, page2.Results, 5)
	assert.Nil(t, page2.Next)
	assert.NotNil(t, page2.Previous)
	assert.Equal(t, 1, *page2.Previous)

	page1, _ := getProductPage(t, env.app, "/api/v1/products?page=1")
	assert.Len(t, page1.Results, 10)
	assert.NotNil(t, page1.Next)
	assert.Equal(t, 2, *page1.Next)

	// Beyond the last page: empty result set, not an error.
	page9, _ := getProductPage(t, env.app, "/api/v1/products?page=9")
	assert.Equal(t, int64(15), page9.Count)
	assert.Empty(t, page9.Results)
}

func TestProductOrderingByPrice(t *testing.T) {
	env := setupApp(t)
	category := seedCategoryDirect(t, env, "Electronics")

	for name, price := range map[string]float64{
		"Laptop":     999.99,
		"Phone":      499.99,
		"Headphones": 99.99,
	} {
		assert.NoError(t, env.products.Create(&models.Product{
			Name: name, Price: price, Stock: 10, CategoryID: category.ID,
		}))
	}

	page, _ := getProductPage(t, env.app, "/api/v1/products?ordering=price")
	assert.Equal(t, "Headphones", page.Results[0].Name) // cheapest first
	for i := 1; i < len(page.Results); i++ {
		assert.LessOrEqual(t, page.Results[i-1].Price, page.Results[i].Price)
	}

	desc, _ := getProductPage(t, env.app, "/api/v1/products?ordering=-price")
	assert.Equal(t, "Laptop", desc.Results[0].Name)
}

func TestProductListCacheIdempotence(t *testing.T) {
	env := setupApp(t)
	category := seedCategoryDirect(t, env, "Electronics")
	assert.NoError(t, env.products.Create(&models.Product{
		Name: "Laptop", Price: 999.99, Stock: 10, CategoryID: category.ID,
	}))

	_, first := getProductPage(t, env.app, "/api/v1/products?ordering=price")
	_, second := getProductPage(t, env.app, "/api/v1/products?ordering=price")

	// Byte-identical payloads, exactly one pipeline evaluation: the
	// first request stored the page, the second was served from cache.
	assert.Equal(t, first, second)
	assert.Equal(t, 1, env.store.sets)
	assert.Equal(t, 1, env.store.hits)
}

func TestProductListCacheStaleAfterWrite(t *testing.T) {
	env := setupApp(t)
	token := obtainToken(t, env.app)
	category := seedCategoryDirect(t, env, "Electronics")
	assert.NoError(t, env.products.Create(&models.Product{
		Name: "Laptop", Price: 999.99, Stock: 10, CategoryID: category.ID,
	}))

	before, beforeRaw := getProductPage(t, env.app, "/api/v1/products")
	assert.Equal(t, int64(1), before.Count)

	resp, err := env.app.Test(jsonRequest(http.MethodPost, "/api/v1/products", map[string]any{
		"name": "Phone", "price": 499.99, "stock": 20, "category_id": category.ID,
	}, token), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	// Documented staleness: there is no write-path invalidation, so the
	// same request stays byte-identical until the TTL expires.
	stale, staleRaw := getProductPage(t, env.app, "/api/v1/products")
	assert.Equal(t, beforeRaw, staleRaw)
	assert.Equal(t, int64(1), stale.Count)

	// A request with a different signature misses the cache and sees the
	// new product immediately.
	fresh, _ := getProductPage(t, env.app, "/api/v1/products?ordering=price")
	assert.Equal(t, int64(2), fresh.Count)
}

func TestBatchCreateFanOut(t *testing.T) {
	env := setupApp(t)
	token := obtainToken(t, env.app)
	category := seedCategoryDirect(t, env, "Electronics")

	payload := []map[string]any{
		{"name": "Phone", "price": 499.99, "stock": 20, "category_id": category.ID},
		{"name": "Laptop", "price": 999.99, "stock": 10, "category_id": category.ID},
		{"name": "Headphones", "price": 99.99, "stock": 50, "category_id": category.ID},
	}

	// Batch creation requires authentication.
	resp, err := env.app.Test(jsonRequest(http.MethodPost, "/api/v1/products/batch_create", payload, ""), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp, err = env.app.Test(jsonRequest(http.MethodPost, "/api/v1/products/batch_create", payload, token), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	resp.Body.Close()

	// Exactly N jobs, each resolvable to its created product.
	assert.Len(t, env.publisher.jobs, 3)
	for _, job := range env.publisher.jobs {
		resp, err := env.app.Test(jsonRequest(http.MethodGet, "/api/v1/products/"+job.ProductID, nil, ""), -1)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		resp.Body.Close()
	}

	// One invalid payload rejects the whole batch with nothing written.
	bad := append(payload, map[string]any{
		"name": "Freebie", "price": 0, "stock": 1, "category_id": category.ID,
	})
	resp, err = env.app.Test(jsonRequest(http.MethodPost, "/api/v1/products/batch_create", bad, token), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()

	_, count, err := env.products.List(models.ListQuery{})
	assert.NoError(t, err)
	assert.Equal(t, int64(3), count)
	assert.Len(t, env.publisher.jobs, 3)
}

func TestCategoryCascadeDeleteViaAPI(t *testing.T) {
	env := setupApp(t)
	token := obtainToken(t, env.app)
	category := seedCategoryDirect(t, env, "Doomed")

	for i := 0; i < 2; i++ {
		assert.NoError(t, env.products.Create(&models.Product{
			Name: fmt.Sprintf("Gadget %d", i), Price: 5, Stock: 1, CategoryID: category.ID,
		}))
	}

	resp, err := env.app.Test(jsonRequest(http.MethodDelete, "/api/v1/categories/"+category.ID, nil, token), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	_, count, err := env.products.List(models.ListQuery{})
	assert.NoError(t, err)
	assert.Zero(t, count)

	resp, err = env.app.Test(jsonRequest(http.MethodGet, "/api/v1/categories/"+category.ID, nil, ""), -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}
