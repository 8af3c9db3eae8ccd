package service

import (
	"errors"

	"github.com/avelarde/libris/data"
	"github.com/avelarde/libris/internal/validator"
	"github.com/avelarde/libris/repository"
	"github.com/google/uuid"
)

type reviews interface {
	CreateReview(userID, bookID uuid.UUID, rating int, comment string) (*data.Review, error)
	GetReview(reviewID uuid.UUID) (*data.Review, error)
	UpdateReview(reviewID, requestingUserID uuid.UUID, rating *int, comment *string) (*data.Review, error)
	DeleteReview(reviewID uuid.UUID) error
	ReviewExists(reviewID uuid.UUID) (bool, error)
	ListReviewsForBook(bookID uuid.UUID, filters data.Filters) ([]*data.Review, data.Metadata, error)
	ListReviewsForUser(userID uuid.UUID) ([]*data.Review, error)
}

// CreateReview service creates a review for a book on behalf of a user. The
// rating and comment are validated before any storage access. Preconditions
// are checked in order: the book must exist, the user must exist, and the
// user must not have reviewed this book already. The insert and the book's
// rating recompute happen in one repository transaction.
func (s *service) CreateReview(userID, bookID uuid.UUID, rating int, comment string) (*data.Review, error) {
	review := &data.Review{
		BookID:  bookID,
		UserID:  userID,
		Rating:  rating,
		Comment: comment,
	}
	v := validator.New()
	if data.ValidateReview(v, review); !v.Valid() {
		return nil, failedValidation(v.Errors)
	}
	exists, err := s.repo.BookExists(bookID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrRecordNotFound
	}
	exists, err = s.repo.UserExists(userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrRecordNotFound
	}
	reviewed, err := s.repo.ReviewExistsForUser(userID, bookID)
	if err != nil {
		return nil, err
	}
	if reviewed {
		return nil, ErrDuplicateRecord
	}
	err = s.repo.CreateReview(review)
	if err != nil {
		switch {
		// The unique index on (book_id, user_id) catches the race between the
		// duplicate check above and the insert.
		case errors.Is(err, repository.ErrDuplicateRecord):
			return nil, ErrDuplicateRecord
		default:
			return nil, err
		}
	}
	return review, nil
}

// GetReview service retrieves the details of a review.
func (s *service) GetReview(reviewID uuid.UUID) (*data.Review, error) {
	review, err := s.repo.GetReview(reviewID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return review, nil
}

// UpdateReview service updates the rating and/or comment of a review. Only
// the review's owning user may update it. The row update and the book's
// rating recompute happen in one repository transaction.
func (s *service) UpdateReview(reviewID, requestingUserID uuid.UUID, rating *int, comment *string) (*data.Review, error) {
	review, err := s.repo.GetReview(reviewID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	if review.UserID != requestingUserID {
		return nil, ErrNotPermitted
	}
	if rating != nil {
		review.Rating = *rating
	}
	if comment != nil {
		review.Comment = *comment
	}
	v := validator.New()
	if data.ValidateReview(v, review); !v.Valid() {
		return nil, failedValidation(v.Errors)
	}
	err = s.repo.UpdateReview(review)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return review, nil
}

// DeleteReview service deletes a review and recomputes the parent book's
// rating aggregate in one repository transaction. A missing review is
// reported as ErrRecordNotFound, matching the create and update paths.
func (s *service) DeleteReview(reviewID uuid.UUID) error {
	err := s.repo.DeleteReview(reviewID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return ErrRecordNotFound
		default:
			return err
		}
	}
	return nil
}

// ReviewExists service checks whether a review exists.
func (s *service) ReviewExists(reviewID uuid.UUID) (bool, error) {
	return s.repo.ReviewExists(reviewID)
}

// ListReviewsForBook service retrieves a paginated list of all reviews for a
// book. The book must exist.
func (s *service) ListReviewsForBook(bookID uuid.UUID, filters data.Filters) ([]*data.Review, data.Metadata, error) {
	v := validator.New()
	if data.ValidateFilters(v, filters); !v.Valid() {
		return nil, data.Metadata{}, failedValidation(v.Errors)
	}
	exists, err := s.repo.BookExists(bookID)
	if err != nil {
		return nil, data.Metadata{}, err
	}
	if !exists {
		return nil, data.Metadata{}, ErrRecordNotFound
	}
	reviews, metadata, err := s.repo.GetAllReviewsForBook(bookID, filters)
	if err != nil {
		return nil, data.Metadata{}, err
	}
	return reviews, metadata, nil
}

// ListReviewsForUser service retrieves all reviews left by a user. The user
// must exist.
func (s *service) ListReviewsForUser(userID uuid.UUID) ([]*data.Review, error) {
	exists, err := s.repo.UserExists(userID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrRecordNotFound
	}
	return s.repo.GetAllReviewsForUser(userID)
}
