package handler

import (
	"errors"
	"net/http"

	"github.com/avelarde/libris/data/dto"
	"github.com/avelarde/libris/internal/validator"
	"github.com/avelarde/libris/service"
)

// createBookHandler creates a new book.
func (h *Handler) createBookHandler(w http.ResponseWriter, r *http.Request) {
	var body dto.CreateBookRequestBody
	err := h.decodeJSON(w, r, &body)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	book, err := h.service.CreateBook(body.Title, body.Author, body.Description, body.PublishedDate, body.Category)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFailedValidation):
			h.failedValidationResponse(w, r, err)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusCreated, envelope{"book": book}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// showBookHandler shows the details of a specific book, including its
// current rating aggregate.
func (h *Handler) showBookHandler(w http.ResponseWriter, r *http.Request) {
	bookID, err := h.readIDParam(r, "bookId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	book, err := h.service.GetBook(bookID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecordNotFound):
			h.notFoundResponse(w, r)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"book": book}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// listBooksHandler shows a paginated list of all books.
func (h *Handler) listBooksHandler(w http.ResponseWriter, r *http.Request) {
	var qs dto.QsListBooks
	v := validator.New()
	qsValues := r.URL.Query()
	qs.Filters.Page = h.readInt(qsValues, "page", 1, v)
	qs.Filters.PageSize = h.readInt(qsValues, "page_size", 20, v)
	qs.Filters.Sort = h.readString(qsValues, "sort", "-created_at")
	qs.Filters.SortSafeList = []string{"title", "author", "average_rating", "created_at", "-title", "-author", "-average_rating", "-created_at"}
	if !v.Valid() {
		h.failedValidationResponse(w, r, errors.New("invalid query string values"))
		return
	}
	books, metadata, err := h.service.ListBooks(qs.Filters)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFailedValidation):
			h.failedValidationResponse(w, r, err)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"books": books, "metadata": metadata}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// updateBookHandler updates a book's descriptive fields. The rating
// aggregate is not updatable through this endpoint.
func (h *Handler) updateBookHandler(w http.ResponseWriter, r *http.Request) {
	bookID, err := h.readIDParam(r, "bookId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	var body dto.UpdateBookRequestBody
	err = h.decodeJSON(w, r, &body)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	book, err := h.service.UpdateBook(bookID, body.Title, body.Author, body.Description, body.PublishedDate, body.Category)
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
	err = h.encodeJSON(w, http.StatusOK, envelope{"book": book}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// updateBookCoverHandler uploads a book's cover image.
func (h *Handler) updateBookCoverHandler(w http.ResponseWriter, r *http.Request) {
	bookID, err := h.readIDParam(r, "bookId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	err = r.ParseMultipartForm(5_242_880)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	file, fileHeader, err := r.FormFile("cover")
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	defer file.Close()
	book, err := h.service.UpdateBookCover(bookID, file, fileHeader)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecordNotFound):
			h.notFoundResponse(w, r)
		case errors.Is(err, service.ErrUnsupportedMediaType):
			h.unsupportedMediaTypeResponse(w, r)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"book": book}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// deleteBookHandler deletes a book. The book's reviews are removed with it.
func (h *Handler) deleteBookHandler(w http.ResponseWriter, r *http.Request) {
	bookID, err := h.readIDParam(r, "bookId")
	if err != nil {
		h.notFoundResponse(w, r)
		return
	}
	err = h.service.DeleteBook(bookID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecordNotFound):
			h.notFoundResponse(w, r)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"message": "book successfully deleted"}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}
