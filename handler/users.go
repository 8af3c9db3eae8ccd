package handler

import (
	"errors"
	"net/http"

	"github.com/avelarde/libris/data/dto"
	"github.com/avelarde/libris/service"
)

// registerUserHandler registers a new user.
func (h *Handler) registerUserHandler(w http.ResponseWriter, r *http.Request) {
	var body dto.RegisterUserRequestBody
	err := h.decodeJSON(w, r, &body)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	user, err := h.service.RegisterUser(body.Email, body.Username, body.Password, body.FirstName, body.LastName)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFailedValidation):
			h.failedValidationResponse(w, r, err)
		case errors.Is(err, service.ErrDuplicateRecord):
			h.recordAlreadyExistsResponse(w, r)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusAccepted, envelope{"user": user}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// activateUserHandler activates a newly registered user.
func (h *Handler) activateUserHandler(w http.ResponseWriter, r *http.Request) {
	var body dto.ActivateUserRequestBody
	err := h.decodeJSON(w, r, &body)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	user, err := h.service.ActivateUser(body.Token)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFailedValidation):
			h.failedValidationResponse(w, r, err)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"user": user}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// showUserHandler shows the authenticated user's profile.
func (h *Handler) showUserHandler(w http.ResponseWriter, r *http.Request) {
	user := h.contextGetUser(r)
	profile, err := h.service.ShowUser(user.ID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrRecordNotFound):
			h.notFoundResponse(w, r)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"user": profile}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// updateUserHandler updates the authenticated user's profile.
func (h *Handler) updateUserHandler(w http.ResponseWriter, r *http.Request) {
	user := h.contextGetUser(r)
	var body dto.UpdateUserRequestBody
	err := h.decodeJSON(w, r, &body)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	profile, err := h.service.UpdateUser(user.ID, body.Username, body.FirstName, body.LastName)
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
	err = h.encodeJSON(w, http.StatusOK, envelope{"user": profile}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}
