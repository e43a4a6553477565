package handlers

import (
	"encoding/json"
	"log"
	"net/url"

	"katalog/internal/cache"
	"katalog/internal/models"
	"katalog/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// ProductHandler handles HTTP requests for products.
type ProductHandler struct {
	service  *services.ProductService
	cache    *cache.ResponseCache
	cacheTTL int
	validate *validator.Validate
}

// NewProductHandler creates a new ProductHandler. The response cache
// applies to the list endpoint only; every write path bypasses it.
func NewProductHandler(service *services.ProductService, responseCache *cache.ResponseCache, cacheTTLSeconds int) *ProductHandler {
	return &ProductHandler{
		service:  service,
		cache:    responseCache,
		cacheTTL: cacheTTLSeconds,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the product routes with the Fiber app. Reads
// are public; writes go through the supplied auth middleware.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	productRoutes := router.Group("/products")
	productRoutes.Get("/", h.HandleListProducts)
	productRoutes.Get("/:id", h.HandleGetProductByID)
	productRoutes.Post("/", authRequired, h.HandleCreateProduct)
	productRoutes.Post("/batch_create", authRequired, h.HandleBatchCreateProducts)
	productRoutes.Put("/:id", authRequired, h.HandleUpdateProduct)
	productRoutes.Delete("/:id", authRequired, h.HandleDeleteProduct)
}

// HandleListProducts returns one page of products. Responses are cached
// for the configured TTL, keyed by path plus the full sorted query
// string; a hit returns the stored payload byte for byte.
func (h *ProductHandler) HandleListProducts(c *fiber.Ctx) error {
	queryValues := url.Values{}
	c.Context().QueryArgs().VisitAll(func(k, v []byte) {
		queryValues.Add(string(k), string(v))
	})
	key := cache.Key(c.Path(), queryValues)

	listQuery := listQueryFromCtx(c)
	payload, hit, err := h.cache.GetOrCompute(c.Context(), key, h.cacheTTL, func() ([]byte, error) {
		page, err := h.service.ListProducts(listQuery)
		if err != nil {
			return nil, err
		}
		return json.Marshal(page)
	})
	if err != nil {
		log.Printf("Error listing products: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve products",
			"error":   err.Error(),
		})
	}
	if hit {
		c.Set("X-Cache", "HIT")
	}
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Send(payload)
}

// HandleGetProductByID retrieves a single product by its ID.
func (h *ProductHandler) HandleGetProductByID(c *fiber.Ctx) error {
	productID := c.Params("id")
	product, err := h.service.GetProductByID(productID)
	if err != nil {
		log.Printf("Error getting product by ID %s: %v", productID, err)
		return c.Status(statusForError(err)).JSON(fiber.Map{
			"message": "Could not retrieve product",
			"error":   err.Error(),
		})
	}
	return c.JSON(product)
}

// HandleCreateProduct creates a new product. On success one notification
// job is enqueued; the response never waits on it.
func (h *ProductHandler) HandleCreateProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		log.Printf("Error parsing product request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	product.ID = ""
	product.Category = nil

	if err := h.validate.Struct(product); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  validationErrorMap(err),
		})
	}

	if err := h.service.CreateProduct(&product); err != nil {
		log.Printf("Error creating product: %v", err)
		return c.Status(statusForError(err)).JSON(fiber.Map{
			"message": "Could not create product",
			"error":   err.Error(),
		})
	}

	created, err := h.service.GetProductByID(product.ID)
	if err != nil {
		// The record is committed; fall back to the request payload.
		created = &product
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

// HandleBatchCreateProducts creates several products in one request. The
// whole batch is validated first; any invalid payload rejects the batch
// with nothing written. Each created product enqueues its own job, in
// creation order.
func (h *ProductHandler) HandleBatchCreateProducts(c *fiber.Ctx) error {
	var payloads []models.Product
	if err := c.BodyParser(&payloads); err != nil {
		log.Printf("Error parsing batch create request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	if len(payloads) == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "At least one product is required",
		})
	}

	products := make([]*models.Product, len(payloads))
	for i := range payloads {
		payloads[i].ID = ""
		payloads[i].Category = nil
		if err := h.validate.Struct(payloads[i]); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Validation failed",
				"index":   i,
				"errors":  validationErrorMap(err),
			})
		}
		products[i] = &payloads[i]
	}

	if err := h.service.BatchCreateProducts(products); err != nil {
		log.Printf("Error batch creating products: %v", err)
		return c.Status(statusForError(err)).JSON(fiber.Map{
			"message": "Could not create products",
			"error":   err.Error(),
		})
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Products created successfully",
		"count":   len(products),
		"results": payloads,
	})
}

// HandleUpdateProduct updates an existing product.
func (h *ProductHandler) HandleUpdateProduct(c *fiber.Ctx) error {
	var product models.Product
	if err := c.BodyParser(&product); err != nil {
		log.Printf("Error parsing product update body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
			"error":   err.Error(),
		})
	}
	product.ID = c.Params("id")
	product.Category = nil

	if err := h.validate.Struct(product); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  validationErrorMap(err),
		})
	}

	if err := h.service.UpdateProduct(&product); err != nil {
		log.Printf("Error updating product %s: %v", product.ID, err)
		return c.Status(statusForError(err)).JSON(fiber.Map{
			"message": "Could not update product",
			"error":   err.Error(),
		})
	}

	updated, err := h.service.GetProductByID(product.ID)
	if err != nil {
		updated = &product
	}
	return c.JSON(updated)
}

// HandleDeleteProduct deletes a product by its ID.
func (h *ProductHandler) HandleDeleteProduct(c *fiber.Ctx) error {
	productID := c.Params("id")
	if err := h.service.DeleteProduct(productID); err != nil {
		log.Printf("Error deleting product %s: %v", productID, err)
		return c.Status(statusForError(err)).JSON(fiber.Map{
			"message": "Could not delete product",
			"error":   err.Error(),
		})
	}
	return c.JSON(fiber.Map{
		"message": "Product deleted successfully",
	})
}
