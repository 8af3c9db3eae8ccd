package handler

import (
	"errors"
	"net/http"

	"github.com/avelarde/libris/data/dto"
	"github.com/avelarde/libris/service"
)

// createActivationTokenHandler creates an activation token and emails it to
// the user.
func (h *Handler) createActivationTokenHandler(w http.ResponseWriter, r *http.Request) {
	var body dto.CreateActivationTokenRequestBody
	err := h.decodeJSON(w, r, &body)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	err = h.service.CreateActivationToken(body.Email)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFailedValidation):
			h.failedValidationResponse(w, r, err)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	env := envelope{"message": "an email will be sent to you containing activation instructions"}
	err = h.encodeJSON(w, http.StatusAccepted, env, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// createAuthenticationTokenHandler creates an authentication token for a
// user with matching credentials.
func (h *Handler) createAuthenticationTokenHandler(w http.ResponseWriter, r *http.Request) {
	var body dto.CreateAuthenticationTokenRequestBody
	err := h.decodeJSON(w, r, &body)
	if err != nil {
		h.badRequestResponse(w, r, err)
		return
	}
	token, err := h.service.CreateAuthenticationToken(body.Email, body.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrFailedValidation):
			h.failedValidationResponse(w, r, err)
		case errors.Is(err, service.ErrInvalidCredentials):
			h.invalidCredentialsResponse(w, r)
		default:
			h.serverErrorResponse(w, r, err)
		}
		return
	}
	err = h.encodeJSON(w, http.StatusCreated, envelope{"authentication_token": token}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}

// deleteAuthenticationTokenHandler deletes all authentication tokens for the
// authenticated user, logging them out everywhere.
func (h *Handler) deleteAuthenticationTokenHandler(w http.ResponseWriter, r *http.Request) {
	user := h.contextGetUser(r)
	err := h.service.DeleteAuthenticationTokens(user.ID)
	if err != nil {
		h.serverErrorResponse(w, r, err)
		return
	}
	err = h.encodeJSON(w, http.StatusOK, envelope{"message": "you have been logged out"}, nil)
	if err != nil {
		h.serverErrorResponse(w, r, err)
	}
}
