package categories

import (
	"time"

	"github.com/google/uuid"
	"github.com/storegrid/storegrid-backend/pkg/db/models"
)

// CreateCategoryInput adds a category to a store.
type CreateCategoryInput struct {
	Name string `json:"name" validate:"required,min=1,max=160"`
}

// UpdateCategoryInput renames a category.
type UpdateCategoryInput struct {
	Name string `json:"name" validate:"required,min=1,max=160"`
}

// ListFilter narrows the category listing.
type ListFilter struct {
	Name string
}

// CategoryDTO is the public shape of a category.
type CategoryDTO struct {
	ID        uuid.UUID `json:"id"`
	StoreID   uuid.UUID `json:"store_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func categoryDTO(category *models.Category) CategoryDTO {
	return CategoryDTO{
		ID:        category.ID,
		StoreID:   category.StoreID,
		Name:      category.Name,
		CreatedAt: category.CreatedAt,
		UpdatedAt: category.UpdatedAt,
	}
}

func categoriesToDTO(rows []models.Category) []CategoryDTO {
	out := make([]CategoryDTO, 0, len(rows))
	for i := range rows {
		out = append(out, categoryDTO(&rows[i]))
	}
	return out
}
