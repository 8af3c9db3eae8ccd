package handler

import (
	"errors"
	"net/http"

	"github.com/avelarde/libris/data"
	"github.com/avelarde/libris/data/dto"
	"github.com/avelarde/libris/internal/validator"
	"github.com/avelarde/libris/service"
)

// createReviewHandler creates a review for a book on behalf of the
// authenticated user and refreshes the book's rating aggregate.
func (h *Handler) createReviewHandler(w http.ResponseWriter, r *http.Request) {
	bookID, err := h.readIDParam(r, "bookId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	var body dto.CreateReviewRequestBody
	err = h.decodeJSON(w, r, &body)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	user := h.contextGetUser(r)
	review, err := h.service.CreateReview(user.ID, bookID, body.Rating, body.Comment)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFailedValidation):
			h.failedValidationResponse(w, r, err)
		case errors.Is(err, service.ErrRecordNotFound):
			h.notFoundResponse(w, r)
		case errors.Is(err, service.ErrDuplicateRecord):
			h.recordAlreadyExistsResponse(w, r)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusCreated, envelope{"review": review}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// showReviewHandler shows the details of a specific review. The review must
// belong to the book in the request path.
func (h *Handler) showReviewHandler(w http.ResponseWriter, r *http.Request) {
	bookID, err := h.readIDParam(r, "bookId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	reviewID, err := h.readIDParam(r, "reviewId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	review, err := h.service.GetReview(reviewID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecordNotFound):
			h.notFoundResponse(w, r)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	if review.BookID != bookID {
		h.notFoundResponse(w, r)
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"review": review}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// updateReviewHandler updates the rating and/or comment of a review and
// refreshes the book's rating aggregate.
func (h *Handler) updateReviewHandler(w http.ResponseWriter, r *http.Request) {
	reviewID, err := h.readIDParam(r, "reviewId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	var body dto.UpdateReviewRequestBody
	err = h.decodeJSON(w, r, &body)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	user := h.contextGetUser(r)
	review, err := h.service.UpdateReview(reviewID, user.ID, body.Rating, body.Comment)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFailedValidation):
			h.failedValidationResponse(w, r, err)
		case errors.Is(err, service.ErrRecordNotFound):
			h.notFoundResponse(w, r)
		case errors.Is(err, service.ErrNotPermitted):
			h.notPermittedResponse(w, r)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"review": review}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// deleteReviewHandler deletes a review and refreshes the book's rating
// aggregate.
func (h *Handler) deleteReviewHandler(w http.ResponseWriter, r *http.Request) {
	reviewID, err := h.readIDParam(r, "reviewId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	err = h.service.DeleteReview(reviewID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecordNotFound):
			h.notFoundResponse(w, r)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"message": "review successfully deleted"}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// listReviewsHandler shows a paginated list of all reviews for a book.
func (h *Handler) listReviewsHandler(w http.ResponseWriter, r *http.Request) {
	bookID, err := h.readIDParam(r, "bookId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	var qs dto.QsListReviews
	v := validator.New()
	qsValues := r.URL.Query()
	qs.Filters.Page = h.readInt(qsValues, "page", 1, v)
	qs.Filters.PageSize = h.readInt(qsValues, "page_size", 20, v)
	qs.Filters.Sort = h.readString(qsValues, "sort", "-created_at")
	qs.Filters.SortSafeList = []string{"created_at", "rating", "-created_at", "-rating"}
	if !v.Valid() {
		h.failedValidationResponse(w, r, errors.New("invalid query string values"))
		return
	}
	reviews, metadata, err := h.service.ListReviewsForBook(bookID, qs.Filters)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFailedValidation):
			h.failedValidationResponse(w, r, err)
		case errors.Is(err, service.ErrRecordNotFound):
			h.notFoundResponse(w, r)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"reviews": reviews, "metadata": metadata}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// listUserReviewsHandler shows all reviews left by the authenticated user.
func (h *Handler) listUserReviewsHandler(w http.ResponseWriter, r *http.Request) {
	user := h.contextGetUser(r)
	reviews, err := h.service.ListReviewsForUser(user.ID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecordNotFound):
			h.notFoundResponse(w, r)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	if reviews == nil {
		reviews = []*data.Review{}
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"reviews": reviews}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}
