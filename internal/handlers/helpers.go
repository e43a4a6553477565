package handlers

import (
	"errors"
	"fmt"
	"strings"

	"katalog/internal/models"
	"katalog/internal/repositories"
	"katalog/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// listQueryFromCtx builds a ListQuery from the request. Every query
// parameter except the pagination and ordering controls is treated as a
// filter; the repositories apply their own allow-lists and ignore the
// rest silently.
func listQueryFromCtx(c *fiber.Ctx) models.ListQuery {
	q := models.ListQuery{
		Filters:  make(map[string]string),
		Page:     c.QueryInt("page", 1),
		PageSize: models.DefaultPageSize,
	}

	ordering := c.Query("ordering")
	if strings.HasPrefix(ordering, "-") {
		q.Desc = true
		ordering = strings.TrimPrefix(ordering, "-")
	}
	q.OrderBy = ordering

	for field, value := range c.Queries() {
		if field == "page" || field == "ordering" {
			continue
		}
		q.Filters[field] = value
	}
	return q
}

// validationErrorMap turns validator errors into a field -> message map
// for the error response body.
func validationErrorMap(err error) map[string]string {
	errorMessages := make(map[string]string)
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
	}
	return errorMessages
}

// statusForError maps service/repository errors to HTTP status codes.
func statusForError(err error) int {
	switch {
	case errors.Is(err, repositories.ErrNotFound):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrUnknownCategory):
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}
