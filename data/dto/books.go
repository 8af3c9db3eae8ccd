package dto

import (
	"time"

	"github.com/avelarde/libris/data"
)

// CreateBookRequestBody defines a request body for CreateBook service.
type CreateBookRequestBody struct {
	Title         string     `json:"title"`
	Author        string     `json:"author"`
	Description   string     `json:"description"`
	PublishedDate *time.Time `json:"published_date"`
	Category      string     `json:"category"`
}

// UpdateBookRequestBody defines a request body for UpdateBook service.
type UpdateBookRequestBody struct {
	Title         *string    `json:"title"`
	Author        *string    `json:"author"`
	Description   *string    `json:"description"`
	PublishedDate *time.Time `json:"published_date"`
	Category      *string    `json:"category"`
}

// QsListBooks defines the query strings used for listing books.
type QsListBooks struct {
	Filters data.Filters
}
