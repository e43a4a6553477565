package services_test

import (
	"fmt"
	"testing"

	"katalog/internal/models"
	"katalog/internal/repositories"
	"katalog/internal/services"

	"github.com/stretchr/testify/assert"
)

func TestCategoryService_ListCategories(t *testing.T) {
	mockRepo := new(MockCategoryRepository)
	service := services.NewCategoryService(mockRepo)

	categories := []models.Category{
		{ID: "1", Name: "Books"},
		{ID: "2", Name: "Electronics"},
	}
	q := models.ListQuery{Page: 1, PageSize: 10}
	mockRepo.On("List", q).Return(categories, int64(2), nil).Once()

	page, err := service.ListCategories(q)

	assert.NoError(t, err)
	assert.Equal(t, int64(2), page.Count)
	assert.Equal(t, categories, page.Results)
	mockRepo.AssertExpectations(t)
}

func TestCategoryService_CreateCategory(t *testing.T) {
	mockRepo := new(MockCategoryRepository)
	service := services.NewCategoryService(mockRepo)

	category := &models.Category{Name: "Electronics"}
	mockRepo.On("Create", category).Return(nil).Once()

	err := service.CreateCategory(category)
	assert.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestCategoryService_DeleteCategory(t *testing.T) {
	mockRepo := new(MockCategoryRepository)
	service := services.NewCategoryService(mockRepo)

	mockRepo.On("Delete", "cat-1").Return(nil).Once()
	err := service.DeleteCategory("cat-1")
	assert.NoError(t, err)

	notFound := fmt.Errorf("category with ID 99: %w", repositories.ErrNotFound)
	mockRepo.On("Delete", "99").Return(notFound).Once()
	err = service.DeleteCategory("99")
	assert.ErrorIs(t, err, repositories.ErrNotFound)
	mockRepo.AssertExpectations(t)
}
