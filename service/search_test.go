package service_test

import (
	"testing"

	"github.com/avelarde/libris/data"
	"github.com/avelarde/libris/service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func searchFilters(sort string) data.Filters {
	return data.Filters{
		Page:         1,
		PageSize:     20,
		Sort:         sort,
		SortSafeList: []string{sort},
	}
}

func TestSearchBooks(t *testing.T) {
	t.Run("empty term rejected before storage", func(t *testing.T) {
		repo := newFakeRepo()
		svc := newTestService(repo)

		_, _, err := svc.SearchBooks("   ", searchFilters("relevance"))
		assert.ErrorIs(t, err, service.ErrFailedValidation)
		assert.Empty(t, repo.calls)
	})

	t.Run("matching term returns books", func(t *testing.T) {
		repo := newFakeRepo()
		repo.addBook()
		svc := newTestService(repo)

		books, metadata, err := svc.SearchBooks("programming", searchFilters("relevance"))
		require.NoError(t, err)
		assert.Len(t, books, 1)
		assert.Equal(t, 1, metadata.TotalRecords)
	})
}

func TestSearchBooksByCategory(t *testing.T) {
	t.Run("empty category rejected before storage", func(t *testing.T) {
		repo := newFakeRepo()
		svc := newTestService(repo)

		_, _, err := svc.SearchBooksByCategory("  ", searchFilters("title"))
		assert.ErrorIs(t, err, service.ErrFailedValidation)
		assert.Empty(t, repo.calls)
	})

	t.Run("category with no books", func(t *testing.T) {
		repo := newFakeRepo()
		repo.addBook()
		svc := newTestService(repo)

		_, _, err := svc.SearchBooksByCategory("poetry", searchFilters("title"))
		assert.ErrorIs(t, err, service.ErrRecordNotFound)
	})

	t.Run("category matched case-insensitively", func(t *testing.T) {
		repo := newFakeRepo()
		book := repo.addBook()
		book.Category = "Programming"
		svc := newTestService(repo)

		books, metadata, err := svc.SearchBooksByCategory("programming", searchFilters("title"))
		require.NoError(t, err)
		assert.Len(t, books, 1)
		assert.Equal(t, 1, metadata.TotalRecords)
	})
}

func TestSearchReviews(t *testing.T) {
	intPtr := func(n int) *int { return &n }

	t.Run("at least one criterion required", func(t *testing.T) {
		repo := newFakeRepo()
		svc := newTestService(repo)

		_, _, err := svc.SearchReviews("", nil, nil, searchFilters("-created_at"))
		assert.ErrorIs(t, err, service.ErrFailedValidation)
		assert.Empty(t, repo.calls)
	})

	t.Run("rating bounds must be between one and five", func(t *testing.T) {
		repo := newFakeRepo()
		svc := newTestService(repo)

		_, _, err := svc.SearchReviews("", intPtr(0), nil, searchFilters("-created_at"))
		assert.ErrorIs(t, err, service.ErrFailedValidation)

		_, _, err = svc.SearchReviews("", nil, intPtr(6), searchFilters("-created_at"))
		assert.ErrorIs(t, err, service.ErrFailedValidation)
	})

	t.Run("min rating must not exceed max rating", func(t *testing.T) {
		repo := newFakeRepo()
		svc := newTestService(repo)

		_, _, err := svc.SearchReviews("", intPtr(4), intPtr(2), searchFilters("-created_at"))
		assert.ErrorIs(t, err, service.ErrFailedValidation)
	})

	t.Run("rating range alone is a valid criterion", func(t *testing.T) {
		repo := newFakeRepo()
		book := repo.addBook()
		alice := repo.addUser()
		bob := repo.addUser()
		svc := newTestService(repo)

		_, err := svc.CreateReview(alice.ID, book.ID, 2, "meh")
		require.NoError(t, err)
		_, err = svc.CreateReview(bob.ID, book.ID, 5, "brilliant")
		require.NoError(t, err)

		reviews, metadata, err := svc.SearchReviews("", intPtr(4), nil, searchFilters("-created_at"))
		require.NoError(t, err)
		require.Len(t, reviews, 1)
		assert.Equal(t, 5, reviews[0].Rating)
		assert.Equal(t, 1, metadata.TotalRecords)
	})

	t.Run("keyword matches review comments", func(t *testing.T) {
		repo := newFakeRepo()
		book := repo.addBook()
		alice := repo.addUser()
		bob := repo.addUser()
		svc := newTestService(repo)

		_, err := svc.CreateReview(alice.ID, book.ID, 4, "a brilliant page-turner")
		require.NoError(t, err)
		_, err = svc.CreateReview(bob.ID, book.ID, 3, "forgettable")
		require.NoError(t, err)

		reviews, _, err := svc.SearchReviews("brilliant", nil, nil, searchFilters("-created_at"))
		require.NoError(t, err)
		require.Len(t, reviews, 1)
		assert.Equal(t, 4, reviews[0].Rating)
	})
}
