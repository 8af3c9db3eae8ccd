package repository

import (
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/avelarde/libris/data"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockRepo(t *testing.T) (*repository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return New(db), mock
}

func TestCreateReviewTransaction(t *testing.T) {
	t.Run("inserts and recomputes inside one committed transaction", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		review := &data.Review{
			BookID:  uuid.New(),
			UserID:  uuid.New(),
			Rating:  4,
			Comment: "nice",
		}
		reviewID := uuid.New()
		createdAt := time.Now()

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO reviews")).
			WithArgs(review.BookID, review.UserID, review.Rating, review.Comment).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(reviewID.String(), createdAt))
		mock.ExpectExec(regexp.QuoteMeta("UPDATE books")).
			WithArgs(review.BookID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.CreateReview(review)
		require.NoError(t, err)
		assert.Equal(t, reviewID, review.ID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back the insert when the recompute fails", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		review := &data.Review{BookID: uuid.New(), UserID: uuid.New(), Rating: 4}
		recomputeErr := errors.New("deadlock detected")

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO reviews")).
			WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(uuid.New().String(), time.Now()))
		mock.ExpectExec(regexp.QuoteMeta("UPDATE books")).
			WillReturnError(recomputeErr)
		mock.ExpectRollback()

		err := repo.CreateReview(review)
		assert.ErrorIs(t, err, recomputeErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("maps a unique violation to ErrDuplicateRecord", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		review := &data.Review{BookID: uuid.New(), UserID: uuid.New(), Rating: 4}

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO reviews")).
			WillReturnError(&pq.Error{Code: "23505"})
		mock.ExpectRollback()

		err := repo.CreateReview(review)
		assert.ErrorIs(t, err, ErrDuplicateRecord)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUpdateReviewTransaction(t *testing.T) {
	t.Run("updates and recomputes inside one committed transaction", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		bookID := uuid.New()
		review := &data.Review{ID: uuid.New(), Rating: 5, Comment: "better on reread"}
		updatedAt := time.Now()

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("UPDATE reviews")).
			WithArgs(review.Rating, review.Comment, review.ID).
			WillReturnRows(sqlmock.NewRows([]string{"book_id", "updated_at"}).AddRow(bookID.String(), updatedAt))
		mock.ExpectExec(regexp.QuoteMeta("UPDATE books")).
			WithArgs(bookID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.UpdateReview(review)
		require.NoError(t, err)
		assert.Equal(t, bookID, review.BookID)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back the update when the recompute fails", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		bookID := uuid.New()
		review := &data.Review{ID: uuid.New(), Rating: 5}
		recomputeErr := errors.New("deadlock detected")

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("UPDATE reviews")).
			WillReturnRows(sqlmock.NewRows([]string{"book_id", "updated_at"}).AddRow(bookID.String(), time.Now()))
		mock.ExpectExec(regexp.QuoteMeta("UPDATE books")).
			WillReturnError(recomputeErr)
		mock.ExpectRollback()

		err := repo.UpdateReview(review)
		assert.ErrorIs(t, err, recomputeErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing review", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		review := &data.Review{ID: uuid.New(), Rating: 5}

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("UPDATE reviews")).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		err := repo.UpdateReview(review)
		assert.ErrorIs(t, err, ErrRecordNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestDeleteReviewTransaction(t *testing.T) {
	t.Run("deletes and recomputes inside one committed transaction", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		reviewID := uuid.New()
		bookID := uuid.New()

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("SELECT book_id")).
			WithArgs(reviewID).
			WillReturnRows(sqlmock.NewRows([]string{"book_id"}).AddRow(bookID.String()))
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM reviews")).
			WithArgs(reviewID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta("UPDATE books")).
			WithArgs(bookID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectCommit()

		err := repo.DeleteReview(reviewID)
		require.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back the delete when the recompute fails", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		reviewID := uuid.New()
		bookID := uuid.New()
		recomputeErr := errors.New("deadlock detected")

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("SELECT book_id")).
			WithArgs(reviewID).
			WillReturnRows(sqlmock.NewRows([]string{"book_id"}).AddRow(bookID.String()))
		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM reviews")).
			WithArgs(reviewID).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(regexp.QuoteMeta("UPDATE books")).
			WillReturnError(recomputeErr)
		mock.ExpectRollback()

		err := repo.DeleteReview(reviewID)
		assert.ErrorIs(t, err, recomputeErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("missing review", func(t *testing.T) {
		repo, mock := newMockRepo(t)
		reviewID := uuid.New()

		mock.ExpectBegin()
		mock.ExpectQuery(regexp.QuoteMeta("SELECT book_id")).
			WithArgs(reviewID).
			WillReturnError(sql.ErrNoRows)
		mock.ExpectRollback()

		err := repo.DeleteReview(reviewID)
		assert.ErrorIs(t, err, ErrRecordNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestRecomputeQueryShape(t *testing.T) {
	// The aggregate must be re-derived from the review rows, never adjusted
	// incrementally, so the query has to aggregate over the reviews table.
	repo, mock := newMockRepo(t)
	review := &data.Review{BookID: uuid.New(), UserID: uuid.New(), Rating: 3}

	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO reviews")).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(uuid.New().String(), time.Now()))
	mock.ExpectExec(regexp.QuoteMeta("COALESCE(AVG(rating), 0)")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := repo.CreateReview(review)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
