package repositories

import (
	"fmt"
	"sort"
	"sync"

	"katalog/internal/models"

	"github.com/google/uuid"
)

// MockCategoryRepository is an in-memory implementation of
// CategoryRepository. When wired with a MockProductRepository it mirrors
// the cascade delete of the GORM implementation.
type MockCategoryRepository struct {
	categories map[string]models.Category
	order      []string
	products   *MockProductRepository // may be nil
	mu         sync.RWMutex
}

// NewMockCategoryRepository creates a new instance of MockCategoryRepository.
// Pass the product repository so category deletion can cascade; nil is
// accepted when products are not involved.
func NewMockCategoryRepository(products *MockProductRepository) *MockCategoryRepository {
	return &MockCategoryRepository{
		categories: make(map[string]models.Category),
		products:   products,
	}
}

// List returns one page of categories after applying allow-listed filters,
// ordering and pagination.
func (r *MockCategoryRepository) List(q models.ListQuery) ([]models.Category, int64, error) {
	q.Normalize()
	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := make([]models.Category, 0, len(r.order))
	for _, id := range r.order {
		c, ok := r.categories[id]
		if !ok {
			continue
		}
		if name, filtered := q.Filters["name"]; filtered && c.Name != name {
			continue
		}
		matched = append(matched, c)
	}

	desc := categoryOrderColumns[q.OrderBy] && q.Desc
	sort.SliceStable(matched, func(i, j int) bool {
		if desc {
			return matched[i].Name > matched[j].Name
		}
		return matched[i].Name < matched[j].Name
	})

	count := int64(len(matched))
	start := q.Offset()
	if start >= len(matched) {
		return []models.Category{}, count, nil
	}
	end := start + q.PageSize
	if end > len(matched) {
		end = len(matched)
	}
	return matched[start:end], count, nil
}

// GetByID returns a category by its ID.
func (r *MockCategoryRepository) GetByID(id string) (*models.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	category, ok := r.categories[id]
	if !ok {
		return nil, fmt.Errorf("category with ID %s: %w", id, ErrNotFound)
	}
	return &category, nil
}

// Create adds a new category.
func (r *MockCategoryRepository) Create(category *models.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if category.ID == "" {
		category.ID = uuid.New().String()
	}
	r.categories[category.ID] = *category
	r.order = append(r.order, category.ID)
	return nil
}

// Update modifies an existing category.
func (r *MockCategoryRepository) Update(category *models.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	existing, ok := r.categories[category.ID]
	if !ok {
		return fmt.Errorf("category with ID %s: %w", category.ID, ErrNotFound)
	}
	category.CreatedAt = existing.CreatedAt
	r.categories[category.ID] = *category
	return nil
}

// Delete removes a category and cascades to its products.
func (r *MockCategoryRepository) Delete(id string) error {
	r.mu.Lock()
	if _, ok := r.categories[id]; !ok {
		r.mu.Unlock()
		return fmt.Errorf("category with ID %s: %w", id, ErrNotFound)
	}
	delete(r.categories, id)
	r.mu.Unlock()

	if r.products != nil {
		r.products.deleteByCategory(id)
	}
	return nil
}
