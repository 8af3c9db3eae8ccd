package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/avelarde/libris/data"
)

type search interface {
	SearchBooks(term string, filters data.Filters) ([]*data.Book, data.Metadata, error)
	SearchBooksByCategory(category string, filters data.Filters) ([]*data.Book, data.Metadata, error)
	SearchReviews(term string, minRating, maxRating int, filters data.Filters) ([]*data.Review, data.Metadata, error)
}

// SearchBooks retrieves a paginated list of books whose title, author,
// description or category matches a keyword, ranked title matches first,
// then author, then the rest, with higher-rated books breaking ties.
func (r *repository) SearchBooks(term string, filters data.Filters) ([]*data.Book, data.Metadata, error) {
	query := `
		SELECT count(*) OVER(), id, title, author, description, cover_image_url, published_date, category,
			average_rating, review_count, created_at, updated_at
		FROM books
		WHERE title ILIKE $1
			OR author ILIKE $1
			OR description ILIKE $1
			OR category ILIKE $1
		ORDER BY
			CASE
				WHEN title ILIKE $1 THEN 1
				WHEN author ILIKE $1 THEN 2
				ELSE 3
			END,
			average_rating DESC,
			id ASC
		LIMIT $2 OFFSET $3`
	args := []interface{}{"%" + term + "%", filters.Limit(), filters.Offset()}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, data.Metadata{}, err
	}
	defer rows.Close()
	totalRecords := 0
	books := []*data.Book{}
	for rows.Next() {
		var book data.Book
		err := scanBook(rows, &book, &totalRecords)
		if err != nil {
			return nil, data.Metadata{}, err
		}
		books = append(books, &book)
	}
	if err = rows.Err(); err != nil {
		return nil, data.Metadata{}, err
	}
	metadata := data.CalculateMetadata(totalRecords, filters.Page, filters.PageSize)
	return books, metadata, nil
}

// SearchBooksByCategory retrieves a paginated list of books in a category,
// matched case-insensitively, ordered by title.
func (r *repository) SearchBooksByCategory(category string, filters data.Filters) ([]*data.Book, data.Metadata, error) {
	query := `
		SELECT count(*) OVER(), id, title, author, description, cover_image_url, published_date, category,
			average_rating, review_count, created_at, updated_at
		FROM books
		WHERE category ILIKE $1
		ORDER BY title ASC, id ASC
		LIMIT $2 OFFSET $3`
	args := []interface{}{category, filters.Limit(), filters.Offset()}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, data.Metadata{}, err
	}
	defer rows.Close()
	totalRecords := 0
	books := []*data.Book{}
	for rows.Next() {
		var book data.Book
		err := scanBook(rows, &book, &totalRecords)
		if err != nil {
			return nil, data.Metadata{}, err
		}
		books = append(books, &book)
	}
	if err = rows.Err(); err != nil {
		return nil, data.Metadata{}, err
	}
	metadata := data.CalculateMetadata(totalRecords, filters.Page, filters.PageSize)
	return books, metadata, nil
}

// SearchReviews retrieves a paginated list of reviews whose comment or book
// title matches a keyword and whose rating falls inside [minRating, maxRating].
// An empty term matches every review, leaving the rating bounds as the only
// criteria.
func (r *repository) SearchReviews(term string, minRating, maxRating int, filters data.Filters) ([]*data.Review, data.Metadata, error) {
	query := `
		SELECT count(*) OVER(), reviews.id, reviews.book_id, books.title, reviews.user_id, users.username,
			reviews.rating, reviews.comment, reviews.created_at, reviews.updated_at
		FROM reviews
		INNER JOIN books ON reviews.book_id = books.id
		INNER JOIN users ON reviews.user_id = users.id
		WHERE ($1 = '' OR reviews.comment ILIKE $2 OR books.title ILIKE $2)
			AND reviews.rating BETWEEN $3 AND $4
		ORDER BY reviews.created_at DESC, reviews.id ASC
		LIMIT $5 OFFSET $6`
	args := []interface{}{term, "%" + term + "%", minRating, maxRating, filters.Limit(), filters.Offset()}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, data.Metadata{}, err
	}
	defer rows.Close()
	totalRecords := 0
	reviews := []*data.Review{}
	for rows.Next() {
		var review data.Review
		var comment sql.NullString
		err := rows.Scan(
			&totalRecords,
			&review.ID,
			&review.BookID,
			&review.BookTitle,
			&review.UserID,
			&review.UserName,
			&review.Rating,
			&comment,
			&review.CreatedAt,
			&review.UpdatedAt,
		)
		if err != nil {
			return nil, data.Metadata{}, err
		}
		review.Comment = comment.String
		reviews = append(reviews, &review)
	}
	if err = rows.Err(); err != nil {
		return nil, data.Metadata{}, err
	}
	metadata := data.CalculateMetadata(totalRecords, filters.Page, filters.PageSize)
	return reviews, metadata, nil
}
