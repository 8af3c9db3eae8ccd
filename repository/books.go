package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/avelarde/libris/data"
	"github.com/google/uuid"
)

type books interface {
	CreateBook(book *data.Book) error
	GetBook(bookID uuid.UUID) (*data.Book, error)
	GetAllBooks(filters data.Filters) ([]*data.Book, data.Metadata, error)
	UpdateBook(book *data.Book) error
	UpdateBookCover(bookID uuid.UUID, coverImageURL string) error
	DeleteBook(bookID uuid.UUID) error
	BookExists(bookID uuid.UUID) (bool, error)
}

// scanBook reads the common book column set into a Book.
func scanBook(row interface{ Scan(...interface{}) error }, book *data.Book, extra ...interface{}) error {
	var description, coverImageURL, category sql.NullString
	dest := append(extra,
		&book.ID,
		&book.Title,
		&book.Author,
		&description,
		&coverImageURL,
		&book.PublishedDate,
		&category,
		&book.AverageRating,
		&book.ReviewCount,
		&book.CreatedAt,
		&book.UpdatedAt,
	)
	err := row.Scan(dest...)
	if err != nil {
		return err
	}
	book.Description = description.String
	book.CoverImageURL = coverImageURL.String
	book.Category = category.String
	return nil
}

// CreateBook creates a new book record. The rating aggregate columns start at
// their database defaults (0, 0).
func (r *repository) CreateBook(book *data.Book) error {
	query := `
		INSERT INTO books (title, author, description, cover_image_url, published_date, category)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5, NULLIF($6, ''))
		RETURNING id, average_rating, review_count, created_at`
	args := []interface{}{book.Title, book.Author, book.Description, book.CoverImageURL, book.PublishedDate, book.Category}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return r.db.QueryRowContext(ctx, query, args...).Scan(
		&book.ID,
		&book.AverageRating,
		&book.ReviewCount,
		&book.CreatedAt,
	)
}

// GetBook retrieves a book record by its ID.
func (r *repository) GetBook(bookID uuid.UUID) (*data.Book, error) {
	query := `
		SELECT id, title, author, description, cover_image_url, published_date, category,
			average_rating, review_count, created_at, updated_at
		FROM books
		WHERE id = $1`
	var book data.Book
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := scanBook(r.db.QueryRowContext(ctx, query, bookID), &book)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return &book, nil
}

// GetAllBooks retrieves a paginated list of all book records.
func (r *repository) GetAllBooks(filters data.Filters) ([]*data.Book, data.Metadata, error) {
	query := fmt.Sprintf(`
		SELECT count(*) OVER(), id, title, author, description, cover_image_url, published_date, category,
			average_rating, review_count, created_at, updated_at
		FROM books
		ORDER BY %s %s, id ASC
		LIMIT $1 OFFSET $2`,
		filters.SortColumn(), filters.SortDirection())
	args := []interface{}{filters.Limit(), filters.Offset()}
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

// UpdateBook updates a book's descriptive fields. The average_rating and
// review_count columns are deliberately absent from the SET list: they are
// only ever written by the review mutation transaction's recompute.
func (r *repository) UpdateBook(book *data.Book) error {
	query := `
		UPDATE books
		SET title = $1, author = $2, description = NULLIF($3, ''), published_date = $4,
			category = NULLIF($5, ''), updated_at = now()
		WHERE id = $6
		RETURNING updated_at`
	args := []interface{}{book.Title, book.Author, book.Description, book.PublishedDate, book.Category, book.ID}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&book.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrRecordNotFound
		default:
			return err
		}
	}
	return nil
}

// UpdateBookCover sets a book's cover image URL.
func (r *repository) UpdateBookCover(bookID uuid.UUID, coverImageURL string) error {
	query := `
		UPDATE books
		SET cover_image_url = $1, updated_at = now()
		WHERE id = $2`
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	result, err := r.db.ExecContext(ctx, query, coverImageURL, bookID)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// DeleteBook deletes a book record. Its reviews go with it via the foreign
// key's ON DELETE CASCADE.
func (r *repository) DeleteBook(bookID uuid.UUID) error {
	query := `
		DELETE FROM books
		WHERE id = $1`
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	result, err := r.db.ExecContext(ctx, query, bookID)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// BookExists checks whether a book record exists.
func (r *repository) BookExists(bookID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (SELECT 1 FROM books WHERE id = $1)`
	var exists bool
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, bookID).Scan(&exists)
	return exists, err
}
