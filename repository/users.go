package repository

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"errors"
	"time"

	"github.com/avelarde/libris/data"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type users interface {
	RegisterUser(user *data.User) error
	GetUserByID(userID uuid.UUID) (*data.User, error)
	GetUserByEmail(email string) (*data.User, error)
	UpdateUser(user *data.User) error
	UserExists(userID uuid.UUID) (bool, error)
	GetUserForToken(tokenScope string, tokenPlaintext string) (*data.User, error)
}

// RegisterUser registers a new user. Email addresses and usernames are unique.
func (r *repository) RegisterUser(user *data.User) error {
	query := `
		INSERT INTO users (email, username, password_hash, first_name, last_name, activated)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6)
		RETURNING id, created_at`
	args := []interface{}{user.Email, user.Username, user.Password.Hash, user.FirstName, user.LastName, user.Activated}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&user.ID, &user.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return ErrDuplicateRecord
		}
		return err
	}
	return nil
}

func scanUser(row interface{ Scan(...interface{}) error }, user *data.User) error {
	var firstName, lastName sql.NullString
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Username,
		&user.Password.Hash,
		&firstName,
		&lastName,
		&user.Activated,
		&user.CreatedAt,
	)
	if err != nil {
		return err
	}
	user.FirstName = firstName.String
	user.LastName = lastName.String
	return nil
}

// GetUserByID retrieves a user record by its ID.
func (r *repository) GetUserByID(userID uuid.UUID) (*data.User, error) {
	query := `
		SELECT id, email, username, password_hash, first_name, last_name, activated, created_at
		FROM users
		WHERE id = $1`
	var user data.User
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := scanUser(r.db.QueryRowContext(ctx, query, userID), &user)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return &user, nil
}

// GetUserByEmail retrieves a user record by email address.
func (r *repository) GetUserByEmail(email string) (*data.User, error) {
	query := `
		SELECT id, email, username, password_hash, first_name, last_name, activated, created_at
		FROM users
		WHERE email = $1`
	var user data.User
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := scanUser(r.db.QueryRowContext(ctx, query, email), &user)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return &user, nil
}

// UpdateUser updates a user record.
func (r *repository) UpdateUser(user *data.User) error {
	query := `
		UPDATE users
		SET email = $1, username = $2, password_hash = $3, first_name = NULLIF($4, ''),
			last_name = NULLIF($5, ''), activated = $6
		WHERE id = $7
		RETURNING id`
	args := []interface{}{user.Email, user.Username, user.Password.Hash, user.FirstName, user.LastName, user.Activated, user.ID}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, args...).Scan(&user.ID)
	if err != nil {
		var pqErr *pq.Error
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return ErrRecordNotFound
		case errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation":
			return ErrDuplicateRecord
		default:
			return err
		}
	}
	return nil
}

// UserExists checks whether a user record exists.
func (r *repository) UserExists(userID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (SELECT 1 FROM users WHERE id = $1)`
	var exists bool
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&exists)
	return exists, err
}

// GetUserForToken retrieves the user record associated with an unexpired
// token in a given scope.
func (r *repository) GetUserForToken(tokenScope string, tokenPlaintext string) (*data.User, error) {
	tokenHash := sha256.Sum256([]byte(tokenPlaintext))
	query := `
		SELECT users.id, users.email, users.username, users.password_hash, users.first_name,
			users.last_name, users.activated, users.created_at
		FROM users
		INNER JOIN tokens ON users.id = tokens.user_id
		WHERE tokens.hash = $1 AND tokens.scope = $2 AND tokens.expiry > $3`
	args := []interface{}{tokenHash[:], tokenScope, time.Now()}
	var user data.User
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := scanUser(r.db.QueryRowContext(ctx, query, args...), &user)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	return &user, nil
}
