package service

import (
	"strings"

	"github.com/avelarde/libris/data"
	"github.com/avelarde/libris/internal/validator"
)

type search interface {
	SearchBooks(query string, filters data.Filters) ([]*data.Book, data.Metadata, error)
	SearchBooksByCategory(category string, filters data.Filters) ([]*data.Book, data.Metadata, error)
	SearchReviews(query string, minRating, maxRating *int, filters data.Filters) ([]*data.Review, data.Metadata, error)
}

// SearchBooks service retrieves a paginated list of books matching a keyword
// across title, author, description and category.
func (s *service) SearchBooks(query string, filters data.Filters) ([]*data.Book, data.Metadata, error) {
	v := validator.New()
	v.Check(strings.TrimSpace(query) != "", "q", "must be provided")
	data.ValidateFilters(v, filters)
	if !v.Valid() {
		return nil, data.Metadata{}, failedValidation(v.Errors)
	}
	return s.repo.SearchBooks(strings.TrimSpace(query), filters)
}

// SearchBooksByCategory service retrieves a paginated list of books in a
// category. A category with no books is reported as ErrRecordNotFound.
func (s *service) SearchBooksByCategory(category string, filters data.Filters) ([]*data.Book, data.Metadata, error) {
	v := validator.New()
	v.Check(strings.TrimSpace(category) != "", "category", "must be provided")
	data.ValidateFilters(v, filters)
	if !v.Valid() {
		return nil, data.Metadata{}, failedValidation(v.Errors)
	}
	books, metadata, err := s.repo.SearchBooksByCategory(strings.TrimSpace(category), filters)
	if err != nil {
		return nil, data.Metadata{}, err
	}
	if metadata.TotalRecords == 0 {
		return nil, data.Metadata{}, ErrRecordNotFound
	}
	return books, metadata, nil
}

// SearchReviews service retrieves a paginated list of reviews matching a
// keyword and/or a rating range. At least one criterion must be given, and
// absent rating bounds widen to the full 1 to 5 range.
func (s *service) SearchReviews(query string, minRating, maxRating *int, filters data.Filters) ([]*data.Review, data.Metadata, error) {
	query = strings.TrimSpace(query)
	v := validator.New()
	v.Check(query != "" || minRating != nil || maxRating != nil, "q", "at least one of q, min_rating or max_rating must be provided")
	if minRating != nil {
		v.Check(*minRating >= 1 && *minRating <= 5, "min_rating", "must be between one and five")
	}
	if maxRating != nil {
		v.Check(*maxRating >= 1 && *maxRating <= 5, "max_rating", "must be between one and five")
	}
	if minRating != nil && maxRating != nil {
		v.Check(*minRating <= *maxRating, "min_rating", "must not be greater than max_rating")
	}
	data.ValidateFilters(v, filters)
	if !v.Valid() {
		return nil, data.Metadata{}, failedValidation(v.Errors)
	}
	min, max := 1, 5
	if minRating != nil {
		min = *minRating
	}
	if maxRating != nil {
		max = *maxRating
	}
	return s.repo.SearchReviews(query, min, max, filters)
}
