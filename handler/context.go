package handler

import (
	"context"
	"net/http"

	"github.com/avelarde/libris/data"
)

// contextKey is a custom type for request context keys, to prevent name
// collisions with external packages.
type contextKey string

const userContextKey = contextKey("user")

// contextSetUser returns a new copy of the request with the provided User
// struct added to the context.
func (h *Handler) contextSetUser(r *http.Request, user *data.User) *http.Request {
	ctx := context.WithValue(r.Context(), userContextKey, user)
	return r.WithContext(ctx)
}

// contextGetUser retrieves the User struct from the request context. This is
// only used when a User struct is logically expected to be in the context;
// if it isn't, that is firmly an 'unexpected' error.
func (h *Handler) contextGetUser(r *http.Request) *data.User {
	user, ok := r.Context().Value(userContextKey).(*data.User)
	if !ok {
		panic("missing user value in request context")
	}
	return user
}
