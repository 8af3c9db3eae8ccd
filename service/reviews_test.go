package service_test

import (
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/avelarde/libris/config"
	"github.com/avelarde/libris/data"
	"github.com/avelarde/libris/internal/jsonlog"
	"github.com/avelarde/libris/repository"
	"github.com/avelarde/libris/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRepo is an in-memory Repository. Review mutations recompute the parent
// book's rating aggregate the same way the SQL implementation does, so
// aggregate behaviour can be exercised through the service layer. Every call
// is appended to calls so tests can assert on ordering.
type fakeRepo struct {
	books   map[uuid.UUID]*data.Book
	users   map[uuid.UUID]*data.User
	reviews map[uuid.UUID]*data.Review
	calls   []string

	// forceDuplicateOnInsert simulates the unique index firing on insert even
	// though the duplicate pre-check passed, as happens when two requests race.
	forceDuplicateOnInsert bool
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		books:   make(map[uuid.UUID]*data.Book),
		users:   make(map[uuid.UUID]*data.User),
		reviews: make(map[uuid.UUID]*data.Review),
	}
}

var _ repository.Repository = (*fakeRepo)(nil)

func (f *fakeRepo) addBook() *data.Book {
	book := &data.Book{ID: uuid.New(), Title: "The Go Programming Language", Author: "Alan Donovan"}
	f.books[book.ID] = book
	return book
}

func (f *fakeRepo) addUser() *data.User {
	user := &data.User{ID: uuid.New(), Username: "gopher", Activated: true}
	f.users[user.ID] = user
	return user
}

func (f *fakeRepo) recompute(bookID uuid.UUID) {
	book, ok := f.books[bookID]
	if !ok {
		return
	}
	sum, count := 0, 0
	for _, review := range f.reviews {
		if review.BookID == bookID {
			sum += review.Rating
			count++
		}
	}
	if count == 0 {
		book.AverageRating = 0
	} else {
		book.AverageRating = float64(sum) / float64(count)
	}
	book.ReviewCount = count
}

func (f *fakeRepo) CreateReview(review *data.Review) error {
	f.calls = append(f.calls, "CreateReview")
	if f.forceDuplicateOnInsert {
		return repository.ErrDuplicateRecord
	}
	review.ID = uuid.New()
	review.CreatedAt = time.Now()
	stored := *review
	f.reviews[review.ID] = &stored
	f.recompute(review.BookID)
	return nil
}

func (f *fakeRepo) GetReview(reviewID uuid.UUID) (*data.Review, error) {
	f.calls = append(f.calls, "GetReview")
	review, ok := f.reviews[reviewID]
	if !ok {
		return nil, repository.ErrRecordNotFound
	}
	copied := *review
	return &copied, nil
}

func (f *fakeRepo) UpdateReview(review *data.Review) error {
	f.calls = append(f.calls, "UpdateReview")
	stored, ok := f.reviews[review.ID]
	if !ok {
		return repository.ErrRecordNotFound
	}
	stored.Rating = review.Rating
	stored.Comment = review.Comment
	now := time.Now()
	stored.UpdatedAt = &now
	f.recompute(stored.BookID)
	return nil
}

func (f *fakeRepo) DeleteReview(reviewID uuid.UUID) error {
	f.calls = append(f.calls, "DeleteReview")
	review, ok := f.reviews[reviewID]
	if !ok {
		return repository.ErrRecordNotFound
	}
	delete(f.reviews, reviewID)
	f.recompute(review.BookID)
	return nil
}

func (f *fakeRepo) ReviewExists(reviewID uuid.UUID) (bool, error) {
	f.calls = append(f.calls, "ReviewExists")
	_, ok := f.reviews[reviewID]
	return ok, nil
}

func (f *fakeRepo) ReviewExistsForUser(userID, bookID uuid.UUID) (bool, error) {
	f.calls = append(f.calls, "ReviewExistsForUser")
	for _, review := range f.reviews {
		if review.UserID == userID && review.BookID == bookID {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeRepo) GetAllReviewsForBook(bookID uuid.UUID, filters data.Filters) ([]*data.Review, data.Metadata, error) {
	f.calls = append(f.calls, "GetAllReviewsForBook")
	reviews := []*data.Review{}
	for _, review := range f.reviews {
		if review.BookID == bookID {
			copied := *review
			reviews = append(reviews, &copied)
		}
	}
	metadata := data.CalculateMetadata(len(reviews), filters.Page, filters.PageSize)
	return reviews, metadata, nil
}

func (f *fakeRepo) GetAllReviewsForUser(userID uuid.UUID) ([]*data.Review, error) {
	f.calls = append(f.calls, "GetAllReviewsForUser")
	reviews := []*data.Review{}
	for _, review := range f.reviews {
		if review.UserID == userID {
			copied := *review
			reviews = append(reviews, &copied)
		}
	}
	return reviews, nil
}

func (f *fakeRepo) BookExists(bookID uuid.UUID) (bool, error) {
	f.calls = append(f.calls, "BookExists")
	_, ok := f.books[bookID]
	return ok, nil
}

func (f *fakeRepo) UserExists(userID uuid.UUID) (bool, error) {
	f.calls = append(f.calls, "UserExists")
	_, ok := f.users[userID]
	return ok, nil
}

func (f *fakeRepo) GetBook(bookID uuid.UUID) (*data.Book, error) {
	f.calls = append(f.calls, "GetBook")
	book, ok := f.books[bookID]
	if !ok {
		return nil, repository.ErrRecordNotFound
	}
	copied := *book
	return &copied, nil
}

func (f *fakeRepo) CreateBook(book *data.Book) error    { panic("not used") }
func (f *fakeRepo) UpdateBook(book *data.Book) error    { panic("not used") }
func (f *fakeRepo) DeleteBook(bookID uuid.UUID) error   { panic("not used") }
func (f *fakeRepo) UpdateBookCover(bookID uuid.UUID, coverImageURL string) error {
	panic("not used")
}
func (f *fakeRepo) GetAllBooks(filters data.Filters) ([]*data.Book, data.Metadata, error) {
	panic("not used")
}
func (f *fakeRepo) CreateCategory(category *data.Category) error { panic("not used") }
func (f *fakeRepo) GetCategory(categoryID uuid.UUID) (*data.Category, error) {
	panic("not used")
}
func (f *fakeRepo) GetAllCategories() ([]*data.Category, error)  { panic("not used") }
func (f *fakeRepo) UpdateCategory(category *data.Category) error { panic("not used") }
func (f *fakeRepo) DeleteCategory(categoryID uuid.UUID) error    { panic("not used") }
func (f *fakeRepo) RegisterUser(user *data.User) error           { panic("not used") }
func (f *fakeRepo) GetUserByID(userID uuid.UUID) (*data.User, error) {
	panic("not used")
}
func (f *fakeRepo) GetUserByEmail(email string) (*data.User, error) { panic("not used") }
func (f *fakeRepo) UpdateUser(user *data.User) error                { panic("not used") }
func (f *fakeRepo) GetUserForToken(tokenScope string, tokenPlaintext string) (*data.User, error) {
	panic("not used")
}
func (f *fakeRepo) CreateNewToken(userID uuid.UUID, ttl time.Duration, scope string) (*data.Token, error) {
	panic("not used")
}
func (f *fakeRepo) DeleteAllTokensForUser(scope string, userID uuid.UUID) error {
	panic("not used")
}
func (f *fakeRepo) SearchBooks(term string, filters data.Filters) ([]*data.Book, data.Metadata, error) {
	f.calls = append(f.calls, "SearchBooks")
	term = strings.ToLower(term)
	books := []*data.Book{}
	for _, book := range f.books {
		haystack := strings.ToLower(book.Title + " " + book.Author + " " + book.Description + " " + book.Category)
		if strings.Contains(haystack, term) {
			copied := *book
			books = append(books, &copied)
		}
	}
	metadata := data.CalculateMetadata(len(books), filters.Page, filters.PageSize)
	return books, metadata, nil
}

func (f *fakeRepo) SearchBooksByCategory(category string, filters data.Filters) ([]*data.Book, data.Metadata, error) {
	f.calls = append(f.calls, "SearchBooksByCategory")
	books := []*data.Book{}
	for _, book := range f.books {
		if strings.EqualFold(book.Category, category) {
			copied := *book
			books = append(books, &copied)
		}
	}
	metadata := data.CalculateMetadata(len(books), filters.Page, filters.PageSize)
	return books, metadata, nil
}

func (f *fakeRepo) SearchReviews(term string, minRating, maxRating int, filters data.Filters) ([]*data.Review, data.Metadata, error) {
	f.calls = append(f.calls, "SearchReviews")
	term = strings.ToLower(term)
	reviews := []*data.Review{}
	for _, review := range f.reviews {
		if review.Rating < minRating || review.Rating > maxRating {
			continue
		}
		if term != "" && !strings.Contains(strings.ToLower(review.Comment), term) {
			continue
		}
		copied := *review
		reviews = append(reviews, &copied)
	}
	metadata := data.CalculateMetadata(len(reviews), filters.Page, filters.PageSize)
	return reviews, metadata, nil
}

func newTestService(repo repository.Repository) service.Service {
	var wg sync.WaitGroup
	logger := jsonlog.New(io.Discard, jsonlog.LevelOff)
	return service.New(config.Config{}, &wg, logger, repo)
}

func TestCreateReview(t *testing.T) {
	t.Run("assigns server-side fields and updates the aggregate", func(t *testing.T) {
		repo := newFakeRepo()
		book := repo.addBook()
		user := repo.addUser()
		svc := newTestService(repo)

		review, err := svc.CreateReview(user.ID, book.ID, 4, "solid read")
		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, review.ID)
		assert.False(t, review.CreatedAt.IsZero())
		assert.Equal(t, 4, review.Rating)

		assert.Equal(t, 4.0, repo.books[book.ID].AverageRating)
		assert.Equal(t, 1, repo.books[book.ID].ReviewCount)
	})

	t.Run("rejects invalid input before touching storage", func(t *testing.T) {
		repo := newFakeRepo()
		book := repo.addBook()
		user := repo.addUser()
		svc := newTestService(repo)

		_, err := svc.CreateReview(user.ID, book.ID, 6, "")
		assert.ErrorIs(t, err, service.ErrFailedValidation)
		assert.Empty(t, repo.calls)

		longComment := make([]byte, data.MaxCommentLength+1)
		_, err = svc.CreateReview(user.ID, book.ID, 3, string(longComment))
		assert.ErrorIs(t, err, service.ErrFailedValidation)
		assert.Empty(t, repo.calls)
	})

	t.Run("missing book reported before the user is checked", func(t *testing.T) {
		repo := newFakeRepo()
		user := repo.addUser()
		svc := newTestService(repo)

		_, err := svc.CreateReview(user.ID, uuid.New(), 3, "")
		assert.ErrorIs(t, err, service.ErrRecordNotFound)
		assert.Equal(t, []string{"BookExists"}, repo.calls)
	})

	t.Run("missing user", func(t *testing.T) {
		repo := newFakeRepo()
		book := repo.addBook()
		svc := newTestService(repo)

		_, err := svc.CreateReview(uuid.New(), book.ID, 3, "")
		assert.ErrorIs(t, err, service.ErrRecordNotFound)
		assert.Equal(t, []string{"BookExists", "UserExists"}, repo.calls)
	})

	t.Run("second review of the same book is a duplicate", func(t *testing.T) {
		repo := newFakeRepo()
		book := repo.addBook()
		user := repo.addUser()
		svc := newTestService(repo)

		_, err := svc.CreateReview(user.ID, book.ID, 5, "")
		require.NoError(t, err)
		_, err = svc.CreateReview(user.ID, book.ID, 2, "changed my mind")
		assert.ErrorIs(t, err, service.ErrDuplicateRecord)

		assert.Equal(t, 1, repo.books[book.ID].ReviewCount)
		assert.Equal(t, 5.0, repo.books[book.ID].AverageRating)
	})

	t.Run("duplicate race caught by the unique index", func(t *testing.T) {
		repo := newFakeRepo()
		book := repo.addBook()
		user := repo.addUser()
		repo.forceDuplicateOnInsert = true
		svc := newTestService(repo)

		_, err := svc.CreateReview(user.ID, book.ID, 5, "")
		assert.ErrorIs(t, err, service.ErrDuplicateRecord)
	})

	t.Run("created review is immediately readable", func(t *testing.T) {
		repo := newFakeRepo()
		book := repo.addBook()
		user := repo.addUser()
		svc := newTestService(repo)

		created, err := svc.CreateReview(user.ID, book.ID, 2, "not for me")
		require.NoError(t, err)
		fetched, err := svc.GetReview(created.ID)
		require.NoError(t, err)
		assert.Equal(t, created.ID, fetched.ID)
		assert.Equal(t, 2, fetched.Rating)
		assert.Equal(t, "not for me", fetched.Comment)

		exists, err := svc.ReviewExists(created.ID)
		require.NoError(t, err)
		assert.True(t, exists)
	})
}

func TestUpdateReview(t *testing.T) {
	t.Run("owner can update and the aggregate follows", func(t *testing.T) {
		repo := newFakeRepo()
		book := repo.addBook()
		user := repo.addUser()
		svc := newTestService(repo)

		review, err := svc.CreateReview(user.ID, book.ID, 1, "")
		require.NoError(t, err)

		newRating := 5
		newComment := "grew on me"
		updated, err := svc.UpdateReview(review.ID, user.ID, &newRating, &newComment)
		require.NoError(t, err)
		assert.Equal(t, 5, updated.Rating)
		assert.Equal(t, "grew on me", updated.Comment)

		assert.Equal(t, 5.0, repo.books[book.ID].AverageRating)
		assert.Equal(t, 1, repo.books[book.ID].ReviewCount)
	})

	t.Run("nil fields leave current values in place", func(t *testing.T) {
		repo := newFakeRepo()
		book := repo.addBook()
		user := repo.addUser()
		svc := newTestService(repo)

		review, err := svc.CreateReview(user.ID, book.ID, 3, "keep me")
		require.NoError(t, err)

		newRating := 4
		updated, err := svc.UpdateReview(review.ID, user.ID, &newRating, nil)
		require.NoError(t, err)
		assert.Equal(t, 4, updated.Rating)
		assert.Equal(t, "keep me", updated.Comment)
	})

	t.Run("only the owner may update", func(t *testing.T) {
		repo := newFakeRepo()
		book := repo.addBook()
		owner := repo.addUser()
		other := repo.addUser()
		svc := newTestService(repo)

		review, err := svc.CreateReview(owner.ID, book.ID, 3, "")
		require.NoError(t, err)

		newRating := 1
		_, err = svc.UpdateReview(review.ID, other.ID, &newRating, nil)
		assert.ErrorIs(t, err, service.ErrNotPermitted)
		assert.Equal(t, 3, repo.reviews[review.ID].Rating)
	})

	t.Run("invalid new rating is rejected", func(t *testing.T) {
		repo := newFakeRepo()
		book := repo.addBook()
		user := repo.addUser()
		svc := newTestService(repo)

		review, err := svc.CreateReview(user.ID, book.ID, 3, "")
		require.NoError(t, err)

		newRating := 0
		_, err = svc.UpdateReview(review.ID, user.ID, &newRating, nil)
		assert.ErrorIs(t, err, service.ErrFailedValidation)
		assert.Equal(t, 3, repo.reviews[review.ID].Rating)
	})

	t.Run("missing review", func(t *testing.T) {
		repo := newFakeRepo()
		svc := newTestService(repo)

		newRating := 4
		_, err := svc.UpdateReview(uuid.New(), uuid.New(), &newRating, nil)
		assert.ErrorIs(t, err, service.ErrRecordNotFound)
	})
}

func TestDeleteReview(t *testing.T) {
	t.Run("missing review reported like every other mutation", func(t *testing.T) {
		repo := newFakeRepo()
		svc := newTestService(repo)

		err := svc.DeleteReview(uuid.New())
		assert.ErrorIs(t, err, service.ErrRecordNotFound)
	})

	t.Run("aggregate tracks create and delete", func(t *testing.T) {
		repo := newFakeRepo()
		book := repo.addBook()
		alice := repo.addUser()
		bob := repo.addUser()
		carol := repo.addUser()
		svc := newTestService(repo)

		_, err := svc.CreateReview(alice.ID, book.ID, 3, "")
		require.NoError(t, err)
		_, err = svc.CreateReview(bob.ID, book.ID, 5, "")
		require.NoError(t, err)
		assert.Equal(t, 4.0, repo.books[book.ID].AverageRating)
		assert.Equal(t, 2, repo.books[book.ID].ReviewCount)

		third, err := svc.CreateReview(carol.ID, book.ID, 4, "")
		require.NoError(t, err)
		assert.Equal(t, 4.0, repo.books[book.ID].AverageRating)
		assert.Equal(t, 3, repo.books[book.ID].ReviewCount)

		err = svc.DeleteReview(third.ID)
		require.NoError(t, err)
		assert.Equal(t, 4.0, repo.books[book.ID].AverageRating)
		assert.Equal(t, 2, repo.books[book.ID].ReviewCount)
	})

	t.Run("deleting the last review zeroes the aggregate", func(t *testing.T) {
		repo := newFakeRepo()
		book := repo.addBook()
		user := repo.addUser()
		svc := newTestService(repo)

		review, err := svc.CreateReview(user.ID, book.ID, 5, "")
		require.NoError(t, err)
		err = svc.DeleteReview(review.ID)
		require.NoError(t, err)

		assert.Equal(t, 0.0, repo.books[book.ID].AverageRating)
		assert.Equal(t, 0, repo.books[book.ID].ReviewCount)
	})
}

func TestListReviews(t *testing.T) {
	validFilters := data.Filters{
		Page:         1,
		PageSize:     20,
		Sort:         "-created_at",
		SortSafeList: []string{"-created_at"},
	}

	t.Run("for a missing book", func(t *testing.T) {
		repo := newFakeRepo()
		svc := newTestService(repo)

		_, _, err := svc.ListReviewsForBook(uuid.New(), validFilters)
		assert.ErrorIs(t, err, service.ErrRecordNotFound)
	})

	t.Run("invalid filters rejected before the book lookup", func(t *testing.T) {
		repo := newFakeRepo()
		book := repo.addBook()
		svc := newTestService(repo)

		badFilters := validFilters
		badFilters.PageSize = 500
		_, _, err := svc.ListReviewsForBook(book.ID, badFilters)
		assert.ErrorIs(t, err, service.ErrFailedValidation)
		assert.Empty(t, repo.calls)
	})

	t.Run("for a book", func(t *testing.T) {
		repo := newFakeRepo()
		book := repo.addBook()
		alice := repo.addUser()
		bob := repo.addUser()
		svc := newTestService(repo)

		_, err := svc.CreateReview(alice.ID, book.ID, 3, "")
		require.NoError(t, err)
		_, err = svc.CreateReview(bob.ID, book.ID, 5, "")
		require.NoError(t, err)

		reviews, metadata, err := svc.ListReviewsForBook(book.ID, validFilters)
		require.NoError(t, err)
		assert.Len(t, reviews, 2)
		assert.Equal(t, 2, metadata.TotalRecords)
	})

	t.Run("for a missing user", func(t *testing.T) {
		repo := newFakeRepo()
		svc := newTestService(repo)

		_, err := svc.ListReviewsForUser(uuid.New())
		assert.ErrorIs(t, err, service.ErrRecordNotFound)
	})

	t.Run("for a user", func(t *testing.T) {
		repo := newFakeRepo()
		book := repo.addBook()
		otherBook := repo.addBook()
		user := repo.addUser()
		svc := newTestService(repo)

		_, err := svc.CreateReview(user.ID, book.ID, 4, "")
		require.NoError(t, err)
		_, err = svc.CreateReview(user.ID, otherBook.ID, 2, "")
		require.NoError(t, err)

		reviews, err := svc.ListReviewsForUser(user.ID)
		require.NoError(t, err)
		assert.Len(t, reviews, 2)
	})
}
