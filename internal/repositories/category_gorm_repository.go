package repositories

import (
	"fmt"

	"katalog/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var categoryFilterColumns = map[string]string{
	"name": "name",
}

var categoryOrderColumns = map[string]bool{
	"name": true,
}

// GORMCategoryRepository is a GORM implementation of CategoryRepository.
type GORMCategoryRepository struct {
	db *gorm.DB
}

// NewGORMCategoryRepository creates a new instance of GORMCategoryRepository.
func NewGORMCategoryRepository(db *gorm.DB) *GORMCategoryRepository {
	return &GORMCategoryRepository{
		db: db,
	}
}

// List applies filters, ordering and pagination and returns one page of
// categories plus the total match count.
func (r *GORMCategoryRepository) List(q models.ListQuery) ([]models.Category, int64, error) {
	q.Normalize()

	tx := r.db.Model(&models.Category{})
	for field, value := range q.Filters {
		column, ok := categoryFilterColumns[field]
		if !ok {
			continue
		}
		tx = tx.Where(column+" = ?", value)
	}

	var count int64
	if err := tx.Count(&count).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count categories: %w", err)
	}

	order, direction := "name", "ASC"
	if categoryOrderColumns[q.OrderBy] {
		order = q.OrderBy
		if q.Desc {
			direction = "DESC"
		}
	}

	var categories []models.Category
	err := tx.Order(fmt.Sprintf("%s %s", order, direction)).
		Order("id ASC").
		Limit(q.PageSize).
		Offset(q.Offset()).
		Find(&categories).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list categories: %w", err)
	}
	return categories, count, nil
}

// GetByID retrieves a single category by its ID.
func (r *GORMCategoryRepository) GetByID(id string) (*models.Category, error) {
	var category models.Category
	if err := r.db.First(&category, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("category with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get category by ID %s: %w", id, err)
	}
	return &category, nil
}

// Create creates a new category in the database.
func (r *GORMCategoryRepository) Create(category *models.Category) error {
	if category.ID == "" {
		category.ID = uuid.New().String()
	}
	if err := r.db.Create(category).Error; err != nil {
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

// Update updates an existing category in the database.
func (r *GORMCategoryRepository) Update(category *models.Category) error {
	res := r.db.Omit("CreatedAt").Save(category)
	if res.Error != nil {
		return fmt.Errorf("failed to update category: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("category with ID %s: %w", category.ID, ErrNotFound)
	}
	return nil
}

// Delete removes a category and, in the same transaction, every product
// referencing it. A product never outlives its category.
func (r *GORMCategoryRepository) Delete(id string) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&models.Product{}, "category_id = ?", id).Error; err != nil {
			return fmt.Errorf("failed to delete products of category %s: %w", id, err)
		}
		res := tx.Delete(&models.Category{}, "id = ?", id)
		if res.Error != nil {
			return fmt.Errorf("failed to delete category: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("category with ID %s: %w", id, ErrNotFound)
		}
		return nil
	})
}
