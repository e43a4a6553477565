package repositories

import (
	"fmt"
	"sort"
	"strconv"
	"sync"

	"katalog/internal/models"

	"github.com/google/uuid"
)

// MockProductRepository is an in-memory implementation of ProductRepository.
// It mirrors the GORM repository's filter/order/paginate behavior so tests
// and broker-less runs see the same semantics.
type MockProductRepository struct {
	products map[string]models.Product
	order    []string // insertion order, the stable tie-break
	mu       sync.RWMutex
}

// NewMockProductRepository creates a new instance of MockProductRepository.
func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{
		products: make(map[string]models.Product),
	}
}

// List returns one page of products after applying allow-listed filters,
// ordering and pagination.
func (r *MockProductRepository) List(q models.ListQuery) ([]models.Product, int64, error) {
	q.Normalize()
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]models.Product, 0, len(r.order))
	for _, id := range r.order {
		p, ok := r.products[id]
		if !ok {
			continue
		}
		if productMatches(p, q.Filters) {
			matched = append(matched, p)
		}
	}

	orderBy := "name"
	desc := false
	if productOrderColumns[q.OrderBy] {
		orderBy = q.OrderBy
		desc = q.Desc
	}
	sort.SliceStable(matched, func(i, j int) bool {
		var less bool
		switch orderBy {
		case "price":
			less = matched[i].Price < matched[j].Price
		case "created_at":
			less = matched[i].CreatedAt.Before(matched[j].CreatedAt)
		default:
			less = matched[i].Name < matched[j].Name
		}
		if desc {
			return !less && !productFieldEqual(matched[i], matched[j], orderBy)
		}
		return less
	})

	count := int64(len(matched))
	start := q.Offset()
	if start >= len(matched) {
		return []models.Product{}, count, nil
	}
	end := start + q.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], count, nil
}

func productMatches(p models.Product, filters map[string]string) bool {
	for field, value := range filters {
		switch field {
		case "category":
			if p.CategoryID != value {
				return false
			}
		case "name":
			if p.Name != value {
				return false
			}
		case "price":
			price, err := strconv.ParseFloat(value, 64)
			if err != nil {
				continue
			}
			if p.Price != price {
				return false
			}
		}
	}
	return true
}

func productFieldEqual(a, b models.Product, field string) bool {
	switch field {
	case "price":
		return a.Price == b.Price
	case "created_at":
		return a.CreatedAt.Equal(b.CreatedAt)
	default:
		return a.Name == b.Name
	}
}

// GetByID returns a product by its ID.
func (r *MockProductRepository) GetByID(id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
	}
	return &product, nil
}

// Create adds a new product.
func (r *MockProductRepository) Create(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	r.products[product.ID] = *product
	r.order = append(r.order, product.ID)
	return nil
}

// Update modifies an existing product.
func (r *MockProductRepository) Update(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.products[product.ID]
	if !ok {
		return fmt.Errorf("product with ID %s: %w", product.ID, ErrNotFound)
	}
	product.CreatedAt = existing.CreatedAt // created_at is immutable
	r.products[product.ID] = *product
	return nil
}

// Delete removes a product by its ID.
func (r *MockProductRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
	}
	delete(r.products, id)
	return nil
}

// deleteByCategory removes every product referencing the given category.
// Used by MockCategoryRepository to mirror the cascade delete.
func (r *MockProductRepository) deleteByCategory(categoryID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for id, p := range r.products {
		if p.CategoryID == categoryID {
			delete(r.products, id)
		}
	}
}
