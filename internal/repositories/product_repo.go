package repositories

import (
	"katalog/internal/models"
)

// ProductRepository defines the interface for product data access.
// List applies the collection's allow-listed filters, ordering and
// pagination and returns one page of products plus the total count.
type ProductRepository interface {
	List(q models.ListQuery) ([]models.Product, int64, error)
	GetByID(id string) (*models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id string) error
}
