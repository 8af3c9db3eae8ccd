package data

import (
	"time"
	"unicode/utf8"

	"github.com/avelarde/libris/internal/validator"
	"github.com/google/uuid"
)

// MaxCommentLength is the longest comment accepted on a review, in characters.
const MaxCommentLength = 2000

// Review defines a book review. BookTitle and UserName are joined in from the
// books and users tables when a review is read; they are not stored on the
// review row itself.
type Review struct {
	ID        uuid.UUID  `json:"id"`
	BookID    uuid.UUID  `json:"book_id"`
	BookTitle string     `json:"book_title,omitempty"`
	UserID    uuid.UUID  `json:"user_id"`
	UserName  string     `json:"user_name,omitempty"`
	Rating    int        `json:"rating"`
	Comment   string     `json:"comment,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

func ValidateReview(v *validator.Validator, review *Review) {
	v.Check(review.Rating >= 1, "rating", "must be at least one")
	v.Check(review.Rating <= 5, "rating", "must not be greater than five")
	v.Check(utf8.RuneCountInString(review.Comment) <= MaxCommentLength, "comment", "must not be more than 2000 characters long")
}
