package data

import (
	"time"

	"github.com/avelarde/libris/internal/validator"
	"github.com/google/uuid"
)

// Book defines a book model. AverageRating and ReviewCount are derived from
// the book's reviews and are only ever written by the review repository's
// rating recompute. They must never be set directly.
type Book struct {
	ID            uuid.UUID  `json:"id"`
	Title         string     `json:"title"`
	Author        string     `json:"author"`
	Description   string     `json:"description,omitempty"`
	CoverImageURL string     `json:"cover_image_url,omitempty"`
	PublishedDate *time.Time `json:"published_date,omitempty"`
	Category      string     `json:"category,omitempty"`
	AverageRating float64    `json:"average_rating"`
	ReviewCount   int        `json:"review_count"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     *time.Time `json:"updated_at,omitempty"`
}

func ValidateBook(v *validator.Validator, book *Book) {
	v.Check(book.Title != "", "title", "must be provided")
	v.Check(len(book.Title) <= 500, "title", "must not be more than 500 bytes long")
	v.Check(book.Author != "", "author", "must be provided")
	v.Check(len(book.Author) <= 500, "author", "must not be more than 500 bytes long")
	v.Check(len(book.Description) <= 2000, "description", "must not be more than 2000 bytes long")
	if book.PublishedDate != nil {
		v.Check(book.PublishedDate.Before(time.Now()), "published_date", "must not be in the future")
	}
}
