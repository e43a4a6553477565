package services

import (
	"katalog/internal/models"
	"katalog/internal/repositories"
)

// CategoryService handles business logic related to categories.
type CategoryService struct {
	repo repositories.CategoryRepository
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(repo repositories.CategoryRepository) *CategoryService {
	return &CategoryService{
		repo: repo,
	}
}

// ListCategories returns one page of categories for the given query.
func (s *CategoryService) ListCategories(q models.ListQuery) (*models.Page, error) {
	q.Normalize()
	categories, count, err := s.repo.List(q)
	if err != nil {
		return nil, err
	}
	return models.NewPage(categories, count, q), nil
}

// GetCategoryByID retrieves a single category by its ID.
func (s *CategoryService) GetCategoryByID(id string) (*models.Category, error) {
	return s.repo.GetByID(id)
}

// CreateCategory creates a new category.
func (s *CategoryService) CreateCategory(category *models.Category) error {
	return s.repo.Create(category)
}

// UpdateCategory updates an existing category.
func (s *CategoryService) UpdateCategory(category *models.Category) error {
	return s.repo.Update(category)
}

// DeleteCategory deletes a category. The repository cascades the delete
// to every product referencing it.
func (s *CategoryService) DeleteCategory(id string) error {
	return s.repo.Delete(id)
}
