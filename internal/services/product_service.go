package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"katalog/internal/models"
	"katalog/internal/repositories"
)

// ErrUnknownCategory is returned when a product write references a
// category that does not exist. It is a validation failure: nothing is
// persisted.
var ErrUnknownCategory = errors.New("unknown category reference")

// NotificationPublisher enqueues notification jobs onto the queue medium.
// The RabbitMQ client satisfies it; tests substitute a recording fake.
type NotificationPublisher interface {
	Publish(job any) error
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo       repositories.ProductRepository
	categories repositories.CategoryRepository
	publisher  NotificationPublisher
}

// NewProductService creates a new ProductService. publisher may be nil,
// in which case product creation skips notification enqueue.
func NewProductService(repo repositories.ProductRepository, categories repositories.CategoryRepository, publisher NotificationPublisher) *ProductService {
	return &ProductService{
		repo:       repo,
		categories: categories,
		publisher:  publisher,
	}
}

// ListProducts returns one page of products for the given query.
func (s *ProductService) ListProducts(q models.ListQuery) (*models.Page, error) {
	q.Normalize()
	products, count, err := s.repo.List(q)
	if err != nil {
		return nil, err
	}
	return models.NewPage(products, count, q), nil
}

// GetProductByID retrieves a single product by its ID.
func (s *ProductService) GetProductByID(id string) (*models.Product, error) {
	return s.repo.GetByID(id)
}

// CreateProduct creates a new product and, once it is committed, enqueues
// one notification job. An enqueue failure is logged but never fails the
// creation: the two are decoupled.
func (s *ProductService) CreateProduct(product *models.Product) error {
	if err := s.checkCategory(product.CategoryID); err != nil {
		return err
	}
	if err := s.repo.Create(product); err != nil {
		return err
	}
	s.enqueueNotification(product)
	return nil
}

// BatchCreateProducts creates each product in order and enqueues one
// independent notification job per created product. An unknown category
// on any payload rejects the whole batch before anything is written.
func (s *ProductService) BatchCreateProducts(products []*models.Product) error {
	for _, p := range products {
		if err := s.checkCategory(p.CategoryID); err != nil {
			return err
		}
	}
	for _, p := range products {
		if err := s.repo.Create(p); err != nil {
			return fmt.Errorf("failed to create product %q: %w", p.Name, err)
		}
		s.enqueueNotification(p)
	}
	return nil
}

// UpdateProduct updates an existing product.
func (s *ProductService) UpdateProduct(product *models.Product) error {
	if err := s.checkCategory(product.CategoryID); err != nil {
		return err
	}
	return s.repo.Update(product)
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(id string) error {
	return s.repo.Delete(id)
}

func (s *ProductService) checkCategory(categoryID string) error {
	if _, err := s.categories.GetByID(categoryID); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrUnknownCategory, categoryID)
		}
		return fmt.Errorf("failed to check category %s: %w", categoryID, err)
	}
	return nil
}

func (s *ProductService) enqueueNotification(product *models.Product) {
	if s.publisher == nil {
		log.Println("Notification publisher is not configured. Skipping enqueue.")
		return
	}
	job := models.NotificationJob{
		ProductID:  product.ID,
		EnqueuedAt: time.Now(),
	}
	if err := s.publisher.Publish(job); err != nil {
		// Enqueue failures are surfaced to operational logs as their own
		// error kind; the HTTP response does not depend on them.
		log.Printf("notification enqueue failed for product %s: %v", product.ID, err)
	}
}
