package repositories

import (
	"fmt"
	"strconv"

	"katalog/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Allow-listed filter fields for products, mapped to their columns.
// Anything outside this map is ignored silently.
var productFilterColumns = map[string]string{
	"category": "category_id",
	"name":     "name",
	"price":    "price",
}

// Allow-listed ordering fields for products.
var productOrderColumns = map[string]bool{
	"name":       true,
	"price":      true,
	"created_at": true,
}

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// List applies filters, ordering and pagination and returns one page of
// products with their categories expanded, plus the total match count.
// A page past the last one yields an empty slice, not an error.
func (r *GORMProductRepository) List(q models.ListQuery) ([]models.Product, int64, error) {
	q.Normalize()

	tx := r.db.Model(&models.Product{})
	for field, value := range q.Filters {
		column, ok := productFilterColumns[field]
		if !ok {
			continue
		}
		if column == "price" {
			price, err := strconv.ParseFloat(value, 64)
			if err != nil {
				continue
			}
			tx = tx.Where("price = ?", price)
			continue
		}
		tx = tx.Where(column+" = ?", value)
	}

	var count int64
	if err := tx.Count(&count).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	// Default ordering is ascending by name; id is the stable tie-break.
	order, direction := "name", "ASC"
	if productOrderColumns[q.OrderBy] {
		order = q.OrderBy
		if q.Desc {
			direction = "DESC"
		}
	}

	var products []models.Product
	err := tx.Preload("Category").
		Order(fmt.Sprintf("%s %s", order, direction)).
		Order("id ASC").
		Limit(q.PageSize).
		Offset(q.Offset()).
		Find(&products).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list products: %w", err)
	}
	return products, count, nil
}

// GetByID retrieves a single product by its ID, with its category expanded.
func (r *GORMProductRepository) GetByID(id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.Preload("Category").First(&product, "id = ?", id).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	return &product, nil
}

// Create creates a new product in the database.
func (r *GORMProductRepository) Create(product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if err := r.db.Omit("Category").Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update updates an existing product in the database.
func (r *GORMProductRepository) Update(product *models.Product) error {
	res := r.db.Omit("Category", "CreatedAt").Save(product)
	if res.Error != nil {
		return fmt.Errorf("failed to update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %s: %w", product.ID, ErrNotFound)
	}
	return nil
}

// Delete deletes a product by its ID from the database.
func (r *GORMProductRepository) Delete(id string) error {
	res := r.db.Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
	}
	return nil
}
