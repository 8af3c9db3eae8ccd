package handler_test

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/avelarde/libris/config"
	"github.com/avelarde/libris/data"
	"github.com/avelarde/libris/handler"
	"github.com/avelarde/libris/internal/jsonlog"
	"github.com/avelarde/libris/service"
	"github.com/google/uuid"
	"github.com/jellydator/ttlcache/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeReviewService serves a single canned review. The embedded interface
// covers the methods this test never reaches.
type fakeReviewService struct {
	service.Service
	review *data.Review
}

func (f fakeReviewService) GetReview(reviewID uuid.UUID) (*data.Review, error) {
	if f.review != nil && f.review.ID == reviewID {
		copied := *f.review
		return &copied, nil
	}
	return nil, service.ErrRecordNotFound
}

func TestShowReviewHandler(t *testing.T) {
	review := &data.Review{
		ID:     uuid.New(),
		BookID: uuid.New(),
		UserID: uuid.New(),
		Rating: 4,
	}
	logger := jsonlog.New(io.Discard, jsonlog.LevelOff)
	cache := ttlcache.New[string, string]()
	h := handler.New(config.Config{}, logger, cache, fakeReviewService{review: review})
	routes := h.Routes()

	t.Run("review under its own book", func(t *testing.T) {
		url := fmt.Sprintf("/v1/books/%s/reviews/%s", review.BookID, review.ID)
		req := httptest.NewRequest(http.MethodGet, url, nil)
		rec := httptest.NewRecorder()
		routes.ServeHTTP(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), review.ID.String())
	})

	t.Run("review under a different book", func(t *testing.T) {
		url := fmt.Sprintf("/v1/books/%s/reviews/%s", uuid.New(), review.ID)
		req := httptest.NewRequest(http.MethodGet, url, nil)
		rec := httptest.NewRecorder()
		routes.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("missing review", func(t *testing.T) {
		url := fmt.Sprintf("/v1/books/%s/reviews/%s", review.BookID, uuid.New())
		req := httptest.NewRequest(http.MethodGet, url, nil)
		rec := httptest.NewRecorder()
		routes.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("malformed review id", func(t *testing.T) {
		url := fmt.Sprintf("/v1/books/%s/reviews/not-a-uuid", review.BookID)
		req := httptest.NewRequest(http.MethodGet, url, nil)
		rec := httptest.NewRecorder()
		routes.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}
