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

type users interface {
	RegisterUser(email, username, password, firstName, lastName string) (*data.User, error)
	ActivateUser(token string) (*data.User, error)
	ShowUser(userID uuid.UUID) (*data.User, error)
	UpdateUser(userID uuid.UUID, username, firstName, lastName *string) (*data.User, error)
	GetUserForToken(tokenScope string, tokenPlaintext string) (*data.User, error)
}

// RegisterUser service registers a new user and sends a welcome email with
// an activation token in a background goroutine.
func (s *service) RegisterUser(email, username, password, firstName, lastName string) (*data.User, error) {
	user := &data.User{
		Email:     email,
		Username:  username,
		FirstName: firstName,
		LastName:  lastName,
		Activated: false,
	}
	err := user.Password.Set(password)
	if err != nil {
		return nil, err
	}
	v := validator.New()
	if data.ValidateUser(v, user); !v.Valid() {
		return nil, failedValidation(v.Errors)
	}
	err = s.repo.RegisterUser(user)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateRecord):
			return nil, ErrDuplicateRecord
		default:
			return nil, err
		}
	}
	token, err := s.repo.CreateNewToken(user.ID, 3*24*time.Hour, data.ScopeActivation)
	if err != nil {
		return nil, err
	}
	s.background(func() {
		payload := map[string]string{
			"userName":        user.Username,
			"activationToken": token.Plaintext,
		}
		m := mailer.New(s.config.SMTP.Host, s.config.SMTP.Port, s.config.SMTP.Username, s.config.SMTP.Password, s.config.SMTP.Sender)
		err := m.Send(user.Email, "user_welcome.tmpl", payload)
		if err != nil {
			s.logger.PrintError(err, nil)
		}
	})
	return user, nil
}

// ActivateUser service activates a newly registered user.
func (s *service) ActivateUser(token string) (*data.User, error) {
	v := validator.New()
	if data.ValidateTokenPlaintext(v, token); !v.Valid() {
		return nil, failedValidation(v.Errors)
	}
	// If no user record matches the token, the token itself is invalid.
	user, err := s.repo.GetUserForToken(data.ScopeActivation, token)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			v.AddError("token", "invalid or expired activation token")
			return nil, failedValidation(v.Errors)
		default:
			return nil, err
		}
	}
	user.Activated = true
	err = s.repo.UpdateUser(user)
	if err != nil {
		return nil, err
	}
	err = s.repo.DeleteAllTokensForUser(data.ScopeActivation, user.ID)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// ShowUser service retrieves the details of a user.
func (s *service) ShowUser(userID uuid.UUID) (*data.User, error) {
	user, err := s.repo.GetUserByID(userID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return user, nil
}

// UpdateUser service updates a user's profile fields.
func (s *service) UpdateUser(userID uuid.UUID, username, firstName, lastName *string) (*data.User, error) {
	user, err := s.repo.GetUserByID(userID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	if username != nil {
		user.Username = *username
	}
	if firstName != nil {
		user.FirstName = *firstName
	}
	if lastName != nil {
		user.LastName = *lastName
	}
	v := validator.New()
	if data.ValidateUser(v, user); !v.Valid() {
		return nil, failedValidation(v.Errors)
	}
	err = s.repo.UpdateUser(user)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrDuplicateRecord):
			return nil, ErrDuplicateRecord
		default:
			return nil, err
		}
	}
	return user, nil
}

// GetUserForToken service retrieves the user associated with a token.
func (s *service) GetUserForToken(tokenScope string, tokenPlaintext string) (*data.User, error) {
	user, err := s.repo.GetUserForToken(tokenScope, tokenPlaintext)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrRecordNotFound):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return user, nil
}
