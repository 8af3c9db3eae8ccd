package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/avelarde/libris/data"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type categories interface {
	CreateCategory(category *data.Category) error
	GetCategory(categoryID uuid.UUID) (*data.Category, error)
	GetAllCategories() ([]*data.Category, error)
	UpdateCategory(category *data.Category) error
	DeleteCategory(categoryID uuid.UUID) error
}

// CreateCategory creates a new category record. Category names are unique.
func (r *repository) CreateCategory(category *data.Category) error {
	query := `
		INSERT INTO categories (name, description)
		VALUES ($1, NULLIF($2, ''))
		RETURNING id, created_at`
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, category.Name, category.Description).Scan(
		&category.ID,
		&category.CreatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return ErrDuplicateRecord
		}
		return err
	}
	return nil
}

// GetCategory retrieves a category record.
func (r *repository) GetCategory(categoryID uuid.UUID) (*data.Category, error) {
	query := `
		SELECT id, name, description, created_at
		FROM categories
		WHERE id = $1`
	var category data.Category
	var description sql.NullString
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, categoryID).Scan(
		&category.ID,
		&category.Name,
		&description,
		&category.CreatedAt,
	)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, ErrRecordNotFound
		default:
			return nil, err
		}
	}
	category.Description = description.String
	return &category, nil
}

// GetAllCategories retrieves all category records.
func (r *repository) GetAllCategories() ([]*data.Category, error) {
	query := `
		SELECT id, name, description, created_at
		FROM categories
		ORDER BY name ASC`
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	categories := []*data.Category{}
	for rows.Next() {
		var category data.Category
		var description sql.NullString
		err := rows.Scan(
			&category.ID,
			&category.Name,
			&description,
			&category.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		category.Description = description.String
		categories = append(categories, &category)
	}
	if err = rows.Err(); err != nil {
		return nil, err
	}
	return categories, nil
}

// UpdateCategory updates a category record.
func (r *repository) UpdateCategory(category *data.Category) error {
	query := `
		UPDATE categories
		SET name = $1, description = NULLIF($2, '')
		WHERE id = $3
		RETURNING id`
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	err := r.db.QueryRowContext(ctx, query, category.Name, category.Description, category.ID).Scan(&category.ID)
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

// DeleteCategory deletes a category record.
func (r *repository) DeleteCategory(categoryID uuid.UUID) error {
	query := `
		DELETE FROM categories
		WHERE id = $1`
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	result, err := r.db.ExecContext(ctx, query, categoryID)
	if err != nil {
		return err
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}
