package service

import (
	"errors"
	"mime/multipart"
	"time"

	"github.com/avelarde/libris/clients"
	"github.com/avelarde/libris/data"
	"github.com/avelarde/libris/internal/validator"
	"github.com/avelarde/libris/repository"
	"github.com/google/uuid"
)

type books interface {
	CreateBook(title, author, description string, publishedDate *time.Time, category string) (*data.Book, error)
	GetBook(bookID uuid.UUID) (*data.Book, error)
	ListBooks(filters data.Filters) ([]*data.Book, data.Metadata, error)
	UpdateBook(bookID uuid.UUID, title, author, description *string, publishedDate *time.Time, category *string) (*data.Book, error)
	UpdateBookCover(bookID uuid.UUID, file multipart.File, fileHeader *multipart.FileHeader) (*data.Book, error)
	DeleteBook(bookID uuid.UUID) error
}

// CreateBook service creates a new book. The rating aggregate starts at
// zero and only changes through review mutations.
func (s *service) CreateBook(title, author, description string, publishedDate *time.Time, category string) (*data.Book, error) {
	book := &data.Book{
		Title:         title,
		Author:        author,
		Description:   description,
		PublishedDate: publishedDate,
		Category:      category,
	}
	v := validator.New()
	if data.ValidateBook(v, book); !v.Valid() {
		return nil, failedValidation(v.Errors)
	}
	err := s.repo.CreateBook(book)
	if err != nil {
		return nil, err
	}
	return book, nil
}

// GetBook service retrieves the details of a book.
func (s *service) GetBook(bookID uuid.UUID) (*data.Book, error) {
	book, err := s.repo.GetBook(bookID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return book, nil
}

// ListBooks service retrieves a paginated list of all books.
func (s *service) ListBooks(filters data.Filters) ([]*data.Book, data.Metadata, error) {
	v := validator.New()
	if data.ValidateFilters(v, filters); !v.Valid() {
		return nil, data.Metadata{}, failedValidation(v.Errors)
	}
	return s.repo.GetAllBooks(filters)
}

// UpdateBook service updates a book's descriptive fields. The rating
// aggregate cannot be changed here.
func (s *service) UpdateBook(bookID uuid.UUID, title, author, description *string, publishedDate *time.Time, category *string) (*data.Book, error) {
	book, err := s.repo.GetBook(bookID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	if title != nil {
		book.Title = *title
	}
	if author != nil {
		book.Author = *author
	}
	if description != nil {
		book.Description = *description
	}
	if publishedDate != nil {
		book.PublishedDate = publishedDate
	}
	if category != nil {
		book.Category = *category
	}
	v := validator.New()
	if data.ValidateBook(v, book); !v.Valid() {
		return nil, failedValidation(v.Errors)
	}
	err = s.repo.UpdateBook(book)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return book, nil
}

// UpdateBookCover service uploads a cover image to object storage and sets
// the book's cover image URL to the uploaded object.
func (s *service) UpdateBookCover(bookID uuid.UUID, file multipart.File, fileHeader *multipart.FileHeader) (*data.Book, error) {
	book, err := s.repo.GetBook(bookID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	buffer, mtype, err := s.detectMimeType(file, fileHeader)
	if err != nil {
		return nil, err
	}
	if !validator.In(mtype.String(), "image/jpeg", "image/png") {
		return nil, ErrUnsupportedMediaType
	}
	client, err := clients.NewS3Client(s.config)
	if err != nil {
		return nil, err
	}
	coverURL, err := s.uploadCoverToS3(client, buffer, mtype, fileHeader)
	if err != nil {
		return nil, err
	}
	err = s.repo.UpdateBookCover(bookID, coverURL)
	if err != nil {
		return nil, err
	}
	book.CoverImageURL = coverURL
	return book, nil
}

// DeleteBook service deletes a book. Its reviews are removed with it.
func (s *service) DeleteBook(bookID uuid.UUID) error {
	err := s.repo.DeleteBook(bookID)
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
