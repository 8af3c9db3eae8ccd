package handler

import (
	"errors"
	"net/http"

	"github.com/avelarde/libris/data/dto"
	"github.com/avelarde/libris/service"
)

// createCategoryHandler creates a new category.
func (h *Handler) createCategoryHandler(w http.ResponseWriter, r *http.Request) {
	var body dto.CreateCategoryRequestBody
	err := h.decodeJSON(w, r, &body)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	category, err := h.service.CreateCategory(body.Name, body.Description)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFailedValidation):
			h.failedValidationResponse(w, r, err)
		case errors.Is(err, service.ErrDuplicateRecord):
			h.recordAlreadyExistsResponse(w, r)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusCreated, envelope{"category": category}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// showCategoryHandler shows the details of a specific category.
func (h *Handler) showCategoryHandler(w http.ResponseWriter, r *http.Request) {
	categoryID, err := h.readIDParam(r, "categoryId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	category, err := h.service.GetCategory(categoryID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecordNotFound):
			h.notFoundResponse(w, r)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"category": category}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// listCategoriesHandler shows a list of all categories.
func (h *Handler) listCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories()
	if err != nil {
		h.serverErrorResponse(w, r, err)
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"categories": categories}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// updateCategoryHandler updates a category.
func (h *Handler) updateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	categoryID, err := h.readIDParam(r, "categoryId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	var body dto.UpdateCategoryRequestBody
	err = h.decodeJSON(w, r, &body)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	category, err := h.service.UpdateCategory(categoryID, body.Name, body.Description)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFailedValidation):
			h.failedValidationResponse(w, r, err)
		case errors.Is(err, service.ErrRecordNotFound):
			h.notFoundResponse(w, r)
		case errors.Is(err, service.ErrDuplicateRecord):
			h.recordAlreadyExistsResponse(w, r)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"category": category}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// deleteCategoryHandler deletes a category.
func (h *Handler) deleteCategoryHandler(w http.ResponseWriter, r *http.Request) {
	categoryID, err := h.readIDParam(r, "categoryId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	err = h.service.DeleteCategory(categoryID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecordNotFound):
			h.notFoundResponse(w, r)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"message": "category successfully deleted"}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}
