package dto

import "github.com/avelarde/libris/data"

// CreateReviewRequestBody defines a request body for CreateReview service.
type CreateReviewRequestBody struct {
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// UpdateReviewRequestBody defines a request body for UpdateReview service.
type UpdateReviewRequestBody struct {
	Rating  *int    `json:"rating"`
	Comment *string `json:"comment"`
}

// QsListReviews defines the query strings used for listing reviews.
type QsListReviews struct {
	Filters data.Filters
}
