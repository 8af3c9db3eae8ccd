package handler

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/avelarde/libris/data"
	"github.com/avelarde/libris/data/dto"
	"github.com/avelarde/libris/internal/validator"
	"github.com/avelarde/libris/service"
	"github.com/julienschmidt/httprouter"
)

// searchBooksHandler shows a paginated list of books matching a keyword
// across title, author, description and category.
func (h *Handler) searchBooksHandler(w http.ResponseWriter, r *http.Request) {
	var qs dto.QsSearchBooks
	v := validator.New()
	qsValues := r.URL.Query()
	qs.Query = h.readString(qsValues, "q", "")
	qs.Filters.Page = h.readInt(qsValues, "page", 1, v)
	qs.Filters.PageSize = h.readInt(qsValues, "page_size", 20, v)
	qs.Filters.Sort = h.readString(qsValues, "sort", "relevance")
	qs.Filters.SortSafeList = []string{"relevance"}
	if !v.Valid() {
		h.failedValidationResponse(w, r, errors.New("invalid query string values"))
		return
	}
	books, metadata, err := h.service.SearchBooks(qs.Query, qs.Filters)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFailedValidation):
			h.failedValidationResponse(w, r, err)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"books": books, "metadata": metadata}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// searchBooksByCategoryHandler shows a paginated list of books in a category.
func (h *Handler) searchBooksByCategoryHandler(w http.ResponseWriter, r *http.Request) {
	params := httprouter.ParamsFromContext(r.Context())
	category := params.ByName("category")
	var filters data.Filters
	v := validator.New()
	qsValues := r.URL.Query()
	filters.Page = h.readInt(qsValues, "page", 1, v)
	filters.PageSize = h.readInt(qsValues, "page_size", 20, v)
	filters.Sort = h.readString(qsValues, "sort", "title")
	filters.SortSafeList = []string{"title"}
	if !v.Valid() {
		h.failedValidationResponse(w, r, errors.New("invalid query string values"))
		return
	}
	books, metadata, err := h.service.SearchBooksByCategory(category, filters)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFailedValidation):
			h.failedValidationResponse(w, r, err)
		case errors.Is(err, service.ErrRecordNotFound):
			h.notFoundResponse(w, r)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"books": books, "metadata": metadata}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// searchReviewsHandler shows a paginated list of reviews matching a keyword
// and/or a rating range.
func (h *Handler) searchReviewsHandler(w http.ResponseWriter, r *http.Request) {
	var qs dto.QsSearchReviews
	v := validator.New()
	qsValues := r.URL.Query()
	qs.Query = h.readString(qsValues, "q", "")
	qs.MinRating = h.readOptionalInt(qsValues, "min_rating", v)
	qs.MaxRating = h.readOptionalInt(qsValues, "max_rating", v)
	qs.Filters.Page = h.readInt(qsValues, "page", 1, v)
	qs.Filters.PageSize = h.readInt(qsValues, "page_size", 20, v)
	qs.Filters.Sort = h.readString(qsValues, "sort", "-created_at")
	qs.Filters.SortSafeList = []string{"-created_at"}
	if !v.Valid() {
		h.failedValidationResponse(w, r, errors.New("invalid query string values"))
		return
	}
	reviews, metadata, err := h.service.SearchReviews(qs.Query, qs.MinRating, qs.MaxRating, qs.Filters)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFailedValidation):
			h.failedValidationResponse(w, r, err)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"reviews": reviews, "metadata": metadata}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// readOptionalInt returns a pointer to an integer value from the query
// string, or nil if the key is absent.
func (h *Handler) readOptionalInt(qs url.Values, key string, v *validator.Validator) *int {
	s := qs.Get(key)
	if s == "" {
		return nil
	}
	i, err := strconv.Atoi(s)
	if err != nil {
		v.AddError(key, "must be an integer value")
		return nil
	}
	return &i
}
