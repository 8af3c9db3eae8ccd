package dto

import "github.com/avelarde/libris/data"

// QsSearchBooks defines the query strings used for keyword book search.
type QsSearchBooks struct {
	Query   string
	Filters data.Filters
}

// QsSearchReviews defines the query strings used for review search.
type QsSearchReviews struct {
	Query     string
	MinRating *int
	MaxRating *int
	Filters   data.Filters
}
