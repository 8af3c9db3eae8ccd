package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/avelarde/libris/data"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type reviews interface {
	CreateReview(review *data.Review) error
	GetReview(reviewID uuid.UUID) (*data.Review, error)
	UpdateReview(review *data.Review) error
	DeleteReview(reviewID uuid.UUID) error
	ReviewExists(reviewID uuid.UUID) (bool, error)
	ReviewExistsForUser(userID, bookID uuid.UUID) (bool, error)
	GetAllReviewsForBook(bookID uuid.UUID, filters data.Filters) ([]*data.Review, data.Metadata, error)
	GetAllReviewsForUser(userID uuid.UUID) ([]*data.Review, error)
}

// CreateReview inserts a review record and recomputes the book's rating
// aggregate in the same transaction. Either both changes commit or neither
// does. A unique violation on (book_id, user_id) is reported as
// ErrDuplicateRecord; the index backs up the service-level duplicate check
// against races between the check and the insert.
func (r *repository) CreateReview(review *data.Review) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	query := `
		INSERT INTO reviews (book_id, user_id, rating, comment)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`
	args := []interface{}{review.BookID, review.UserID, review.Rating, review.Comment}
	err = tx.QueryRowContext(ctx, query, args...).Scan(&review.ID, &review.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return ErrDuplicateRecord
		}
		return err
	}
	err = r.recomputeBookRating(ctx, tx, review.BookID)
	if err != nil {
		return err
	}
	return tx.Commit()
}

// GetReview retrieves a review record along with the book title and the
// reviewer's username.
func (r *repository) GetReview(reviewID uuid.UUID) (*data.Review, error) {
	query := `
		SELECT reviews.id, reviews.book_id, books.title, reviews.user_id, users.username,
			reviews.rating, reviews.comment, reviews.created_at, reviews.updated_at
		FROM reviews
		INNER JOIN books ON reviews.book_id = books.id
		INNER JOIN users ON reviews.user_id = users.id
		WHERE reviews.id = $1`
	var review data.Review
	var comment sql.NullString
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, reviewID).Scan(
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
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	review.Comment = comment.String
	return &review, nil
}

// UpdateReview updates a review's rating and comment and recomputes the
// book's rating aggregate in the same transaction.
func (r *repository) UpdateReview(review *data.Review) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	query := `
		UPDATE reviews
		SET rating = $1, comment = $2, updated_at = now()
		WHERE id = $3
		RETURNING book_id, updated_at`
	args := []interface{}{review.Rating, review.Comment, review.ID}
	err = tx.QueryRowContext(ctx, query, args...).Scan(&review.BookID, &review.UpdatedAt)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrRecordNotFound
		default:
			return err
		}
	}
	err = r.recomputeBookRating(ctx, tx, review.BookID)
	if err != nil {
		return err
	}
	return tx.Commit()
}

// DeleteReview deletes a review record and recomputes the affected book's
// rating aggregate in the same transaction. The book id is read before the
// delete because the recompute needs it after the row is gone.
func (r *repository) DeleteReview(reviewID uuid.UUID) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	var bookID uuid.UUID
	query := `
		SELECT book_id
		FROM reviews
		WHERE id = $1`
	err = tx.QueryRowContext(ctx, query, reviewID).Scan(&bookID)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrRecordNotFound
		default:
			return err
		}
	}
	query = `
		DELETE FROM reviews
		WHERE id = $1`
	result, err := tx.ExecContext(ctx, query, reviewID)
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
	err = r.recomputeBookRating(ctx, tx, bookID)
	if err != nil {
		return err
	}
	return tx.Commit()
}

// ReviewExists checks whether a review record exists.
func (r *repository) ReviewExists(reviewID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (SELECT 1 FROM reviews WHERE id = $1)`
	var exists bool
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, reviewID).Scan(&exists)
	return exists, err
}

// ReviewExistsForUser checks whether a user has already reviewed a book.
func (r *repository) ReviewExistsForUser(userID, bookID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (SELECT 1 FROM reviews WHERE user_id = $1 AND book_id = $2)`
	var exists bool
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, userID, bookID).Scan(&exists)
	return exists, err
}

// GetAllReviewsForBook retrieves a paginated list of all review records for
// a book, most recent first by default.
func (r *repository) GetAllReviewsForBook(bookID uuid.UUID, filters data.Filters) ([]*data.Review, data.Metadata, error) {
	query := fmt.Sprintf(`
		SELECT count(*) OVER(), reviews.id, reviews.book_id, books.title, reviews.user_id, users.username,
			reviews.rating, reviews.comment, reviews.created_at, reviews.updated_at
		FROM reviews
		INNER JOIN books ON reviews.book_id = books.id
		INNER JOIN users ON reviews.user_id = users.id
		WHERE reviews.book_id = $1
		ORDER BY %s %s, reviews.id ASC
		LIMIT $2 OFFSET $3`,
		"reviews."+filters.SortColumn(), filters.SortDirection())
	args := []interface{}{bookID, filters.Limit(), filters.Offset()}
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

// GetAllReviewsForUser retrieves all review records left by a user, most
// recent first.
func (r *repository) GetAllReviewsForUser(userID uuid.UUID) ([]*data.Review, error) {
	query := `
		SELECT reviews.id, reviews.book_id, books.title, reviews.user_id, users.username,
			reviews.rating, reviews.comment, reviews.created_at, reviews.updated_at
		FROM reviews
		INNER JOIN books ON reviews.book_id = books.id
		INNER JOIN users ON reviews.user_id = users.id
		WHERE reviews.user_id = $1
		ORDER BY reviews.created_at DESC`
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	reviews := []*data.Review{}
	for rows.Next() {
		var review data.Review
		var comment sql.NullString
		err := rows.Scan(
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
			return nil, err
		}
		review.Comment = comment.String
		reviews = append(reviews, &review)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return reviews, nil
}

// recomputeBookRating re-derives a book's average_rating and review_count
// from the full set of reviews currently referencing it. It must run inside
// the same transaction as the review mutation that triggered it, so the
// aggregate it reads includes the uncommitted mutation and the two writes
// commit or roll back as one unit. The aggregate is re-aggregated from
// scratch on every mutation, never maintained incrementally, so it cannot
// drift from the review set. The UPDATE takes a row lock on the book, which
// serializes concurrent review mutations against the same book.
func (r *repository) recomputeBookRating(ctx context.Context, tx *sql.Tx, bookID uuid.UUID) error {
	query := `
		UPDATE books
		SET average_rating = (
			SELECT COALESCE(AVG(rating), 0)
			FROM reviews
			WHERE book_id = $1
		),
		review_count = (
			SELECT COUNT(*)
			FROM reviews
			WHERE book_id = $1
		),
		updated_at = now()
		WHERE id = $1`
	_, err := tx.ExecContext(ctx, query, bookID)
	return err
}
