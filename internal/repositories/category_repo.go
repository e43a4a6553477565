package repositories

import (
	"katalog/internal/models"
)

// CategoryRepository defines the interface for category data access.
// Delete must cascade to every product referencing the category; no
// orphaned product may remain queryable afterwards.
type CategoryRepository interface {
	List(q models.ListQuery) ([]models.Category, int64, error)
	GetByID(id string) (*models.Category, error)
	Create(category *models.Category) error
	Update(category *models.Category) error
	Delete(id string) error
}
