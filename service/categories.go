package service

import (
	"errors"

	"github.com/avelarde/libris/data"
	"github.com/avelarde/libris/internal/validator"
	"github.com/avelarde/libris/repository"
	"github.com/google/uuid"
)

type categories interface {
	CreateCategory(name, description string) (*data.Category, error)
	GetCategory(categoryID uuid.UUID) (*data.Category, error)
	ListCategories() ([]*data.Category, error)
	UpdateCategory(categoryID uuid.UUID, name, description *string) (*data.Category, error)
	DeleteCategory(categoryID uuid.UUID) error
}

// CreateCategory service creates a new category.
func (s *service) CreateCategory(name, description string) (*data.Category, error) {
	category := &data.Category{
		Name:        name,
		Description: description,
	}
	v := validator.New()
	if data.ValidateCategory(v, category); !v.Valid() {
		return nil, failedValidation(v.Errors)
	}
	err := s.repo.CreateCategory(category)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateRecord):
			return nil, ErrDuplicateRecord
		default:
			return nil, err
		}
	}
	return category, nil
}

// GetCategory service retrieves the details of a category.
func (s *service) GetCategory(categoryID uuid.UUID) (*data.Category, error) {
	category, err := s.repo.GetCategory(categoryID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return category, nil
}

// ListCategories service retrieves all categories.
func (s *service) ListCategories() ([]*data.Category, error) {
	return s.repo.GetAllCategories()
}

// UpdateCategory service updates a category.
func (s *service) UpdateCategory(categoryID uuid.UUID, name, description *string) (*data.Category, error) {
	category, err := s.repo.GetCategory(categoryID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	if name != nil {
		category.Name = *name
	}
	if description != nil {
		category.Description = *description
	}
	v := validator.New()
	if data.ValidateCategory(v, category); !v.Valid() {
		return nil, failedValidation(v.Errors)
	}
	err = s.repo.UpdateCategory(category)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		case errors.Is(err, repository.ErrDuplicateRecord):
			return nil, ErrDuplicateRecord
		default:
			return nil, err
		}
	}
	return category, nil
}

// DeleteCategory service deletes a category.
func (s *service) DeleteCategory(categoryID uuid.UUID) error {
	err := s.repo.DeleteCategory(categoryID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return ErrRecordNotFound
		default:
			return err
		}
	}
	return nil
}
