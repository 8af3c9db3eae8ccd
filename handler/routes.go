package handler

import (
	"expvar"
	"net/http"

	"github.com/julienschmidt/httprouter"
)

func (h *Handler) Routes() http.Handler {
	router := httprouter.New()

	router.NotFound = http.HandlerFunc(h.notFoundResponse)
	router.MethodNotAllowed = http.HandlerFunc(h.methodNotAllowed)

	router.HandlerFunc(http.MethodGet, "/v1/books", h.listBooksHandler)
	router.HandlerFunc(http.MethodPost, "/v1/books", h.requireActivatedUser(h.createBookHandler))
	router.HandlerFunc(http.MethodGet, "/v1/books/:bookId", h.showBookHandler)
	router.HandlerFunc(http.MethodPatch, "/v1/books/:bookId", h.requireActivatedUser(h.updateBookHandler))
	router.HandlerFunc(http.MethodDelete, "/v1/books/:bookId", h.requireActivatedUser(h.deleteBookHandler))
	router.HandlerFunc(http.MethodPatch, "/v1/books/:bookId/cover", h.requireActivatedUser(h.updateBookCoverHandler))

	router.HandlerFunc(http.MethodGet, "/v1/books/:bookId/reviews", h.listReviewsHandler)
	router.HandlerFunc(http.MethodPost, "/v1/books/:bookId/reviews", h.requireActivatedUser(h.createReviewHandler))
	router.HandlerFunc(http.MethodGet, "/v1/books/:bookId/reviews/:reviewId", h.showReviewHandler)
	router.HandlerFunc(http.MethodPatch, "/v1/books/:bookId/reviews/:reviewId", h.requireReviewOwnerPermission(h.updateReviewHandler))
	router.HandlerFunc(http.MethodDelete, "/v1/books/:bookId/reviews/:reviewId", h.requireReviewOwnerPermission(h.deleteReviewHandler))

	router.HandlerFunc(http.MethodGet, "/v1/categories", h.listCategoriesHandler)
	router.HandlerFunc(http.MethodPost, "/v1/categories", h.requireActivatedUser(h.createCategoryHandler))
	router.HandlerFunc(http.MethodGet, "/v1/categories/:categoryId", h.showCategoryHandler)
	router.HandlerFunc(http.MethodPatch, "/v1/categories/:categoryId", h.requireActivatedUser(h.updateCategoryHandler))
	router.HandlerFunc(http.MethodDelete, "/v1/categories/:categoryId", h.requireActivatedUser(h.deleteCategoryHandler))

	router.HandlerFunc(http.MethodGet, "/v1/search", h.searchBooksHandler)
	router.HandlerFunc(http.MethodGet, "/v1/search/books/category/:category", h.searchBooksByCategoryHandler)
	router.HandlerFunc(http.MethodGet, "/v1/search/reviews", h.searchReviewsHandler)

	router.HandlerFunc(http.MethodPost, "/v1/users", h.registerUserHandler)
	router.HandlerFunc(http.MethodPut, "/v1/users/activated", h.activateUserHandler)
	router.HandlerFunc(http.MethodGet, "/v1/users/profile", h.requireAuthenticatedUser(h.showUserHandler))
	router.HandlerFunc(http.MethodPatch, "/v1/users/profile", h.requireAuthenticatedUser(h.updateUserHandler))
	router.HandlerFunc(http.MethodGet, "/v1/users/reviews", h.requireAuthenticatedUser(h.listUserReviewsHandler))

	router.HandlerFunc(http.MethodPost, "/v1/tokens/activation", h.createActivationTokenHandler)
	router.HandlerFunc(http.MethodPost, "/v1/tokens/authentication", h.createAuthenticationTokenHandler)
	router.HandlerFunc(http.MethodDelete, "/v1/tokens/authentication", h.requireAuthenticatedUser(h.deleteAuthenticationTokenHandler))

	router.HandlerFunc(http.MethodGet, "/v1/healthcheck", h.healthcheckHandler)
	router.Handler(http.MethodGet, "/debug/vars", expvar.Handler())

	return h.recoverPanic(h.enableCORS(h.rateLimit(h.metrics(h.authenticate(router)))))
}
