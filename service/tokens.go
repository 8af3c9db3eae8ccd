package service

import (
	"errors"
	"time"

	"github.com/avelarde/libris/data"
	"github.com/avelarde/libris/internal/mailer"
	"github.com/avelarde/libris/internal/validator"
	"github.com/avelarde/libris/repository"
	"github.com/google/uuid"
)

type tokens interface {
	CreateActivationToken(email string) error
	CreateAuthenticationToken(email string, password string) (*data.Token, error)
	DeleteAuthenticationTokens(userID uuid.UUID) error
}

// CreateActivationToken service creates a new activation token and emails it
// to the user.
func (s *service) CreateActivationToken(email string) error {
	v := validator.New()
	if data.ValidateEmail(v, email); !v.Valid() {
		return failedValidation(v.Errors)
	}
	user, err := s.repo.GetUserByEmail(email)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			v.AddError("email", "no matching email address found")
			return failedValidation(v.Errors)
		default:
			return err
		}
	}
	if user.Activated {
		v.AddError("email", "user with this email has already been activated")
		return failedValidation(v.Errors)
	}
	token, err := s.repo.CreateNewToken(user.ID, 3*24*time.Hour, data.ScopeActivation)
	if err != nil {
		return err
	}
	s.background(func() {
		payload := map[string]string{
			"userName":        user.Username,
			"activationToken": token.Plaintext,
		}
		m := mailer.New(s.config.SMTP.Host, s.config.SMTP.Port, s.config.SMTP.Username, s.config.SMTP.Password, s.config.SMTP.Sender)
		err := m.Send(user.Email, "token_activation.tmpl", payload)
		if err != nil {
			s.logger.PrintError(err, nil)
		}
	})
	return nil
}

// CreateAuthenticationToken service creates a new authentication token for a
// user with matching credentials.
func (s *service) CreateAuthenticationToken(email string, password string) (*data.Token, error) {
	v := validator.New()
	data.ValidateEmail(v, email)
	data.ValidatePasswordPlaintext(v, password)
	if !v.Valid() {
		return nil, failedValidation(v.Errors)
	}
	user, err := s.repo.GetUserByEmail(email)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrInvalidCredentials
		default:
			return nil, err
		}
	}
	match, err := user.Password.Matches(password)
	if err != nil {
		return nil, err
	}
	if !match {
		return nil, ErrInvalidCredentials
	}
	return s.repo.CreateNewToken(user.ID, 24*time.Hour, data.ScopeAuthentication)
}

// DeleteAuthenticationTokens service deletes all authentication tokens for a user.
func (s *service) DeleteAuthenticationTokens(userID uuid.UUID) error {
	return s.repo.DeleteAllTokensForUser(data.ScopeAuthentication, userID)
}
