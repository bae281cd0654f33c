package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"coffeeshop/internal/domain"
	apperrors "coffeeshop/internal/errors"
)

type MySQLCustomerRepository struct {
	db *sql.DB
}

func NewMySQLCustomerRepository(db *sql.DB) *MySQLCustomerRepository {
	return &MySQLCustomerRepository{db: db}
}

func (r *MySQLCustomerRepository) FindByID(ctx context.Context, id uint) (*domain.User, error) {
	query := `
		SELECT id, type, createdAt
		FROM Users
		WHERE id = ?
	`

	var user domain.User
	err := r.db.QueryRowContext(ctx, query, id).Scan(&user.ID, &user.Type, &user.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NewNotFoundError(
			apperrors.ErrCustomerNotFound,
			fmt.Sprintf("customer with id %d not found", id),
		)
	}
	if err != nil {
		return nil, apperrors.NewStorageError("querying user by id", err)
	}

	return &user, nil
}
