package data

import (
	"time"

	"github.com/avelarde/libris/internal/validator"
	"github.com/google/uuid"
)

// Category defines a book category.
type Category struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

func ValidateCategory(v *validator.Validator, category *Category) {
	v.Check(category.Name != "", "name", "must be provided")
	v.Check(len(category.Name) <= 100, "name", "must not be more than 100 bytes long")
	v.Check(len(category.Description) <= 500, "description", "must not be more than 500 bytes long")
}
