package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"

	"coffeeshop/internal/domain"
	apperrors "coffeeshop/internal/errors"
)

const orderColumns = `id, product, variation, price, status, customerId, createdAt`

// MySQL error 1452: a foreign key constraint fails on insert.
const errNoReferencedRow = 1452

type MySQLOrderRepository struct {
	db *sql.DB
}

func NewMySQLOrderRepository(db *sql.DB) *MySQLOrderRepository {
	return &MySQLOrderRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var order domain.Order
	err := row.Scan(
		&order.ID, &order.Product, &order.Variation, &order.Price,
		&order.Status, &order.CustomerID, &order.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func orderNotFound(id uint) error {
	return apperrors.NewNotFoundError(
		apperrors.ErrOrderNotFound,
		fmt.Sprintf("order with id %d not found", id),
	)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func findOrder(ctx context.Context, q queryRower, id uint) (*domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM Orders WHERE id = ?`

	order, err := scanOrder(q.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, orderNotFound(id)
	}
	if err != nil {
		return nil, apperrors.NewStorageError("querying order by id", err)
	}

	return order, nil
}

func (r *MySQLOrderRepository) FindByID(ctx context.Context, id uint) (*domain.Order, error) {
	return findOrder(ctx, r.db, id)
}

// Create inserts order and returns the stored row, including the id and
// creation time assigned by the database.
func (r *MySQLOrderRepository) Create(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	query := `
		INSERT INTO Orders (product, variation, price, status, customerId)
		VALUES (?, ?, ?, ?, ?)
	`

	result, err := r.db.ExecContext(ctx, query,
		order.Product, order.Variation, order.Price, string(order.Status), order.CustomerID,
	)
	if isMissingReference(err) {
		return nil, apperrors.NewNotFoundError(
			apperrors.ErrCustomerNotFound,
			fmt.Sprintf("customer with id %d not found", order.CustomerID),
		)
	}
	if err != nil {
		return nil, apperrors.NewStorageError("inserting order", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, apperrors.NewStorageError("getting inserted order id", err)
	}

	return r.FindByID(ctx, uint(id))
}

// UpdateStatus moves the order from expected to next only if its stored
// status is still expected. The update and the read of the result share one
// transaction: the row stays locked until commit, so the returned order is
// this call's write, and a failed read leaves nothing committed.
func (r *MySQLOrderRepository) UpdateStatus(ctx context.Context, id uint, expected, next domain.OrderStatus) (*domain.Order, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperrors.NewStorageError("beginning status update", err)
	}
	// No-op once committed.
	defer tx.Rollback()

	query := `UPDATE Orders SET status = ? WHERE id = ? AND status = ?`

	result, err := tx.ExecContext(ctx, query, string(next), id, string(expected))
	if err != nil {
		return nil, apperrors.NewStorageError("updating order status", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, apperrors.NewStorageError("getting rows affected", err)
	}

	current, err := findOrder(ctx, tx, id)
	if err != nil {
		return nil, err
	}

	if rowsAffected == 0 {
		return nil, apperrors.NewConflictError(
			apperrors.ErrStatusConflict,
			fmt.Sprintf("order %d is in status %q, expected %q", id, current.Status, expected),
		)
	}

	if err := tx.Commit(); err != nil {
		return nil, apperrors.NewStorageError("committing status update", err)
	}

	return current, nil
}

// Delete removes the order and returns what was stored.
func (r *MySQLOrderRepository) Delete(ctx context.Context, id uint) (*domain.Order, error) {
	order, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	result, err := r.db.ExecContext(ctx, `DELETE FROM Orders WHERE id = ?`, id)
	if err != nil {
		return nil, apperrors.NewStorageError("deleting order", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, apperrors.NewStorageError("getting rows affected", err)
	}
	if rowsAffected == 0 {
		return nil, orderNotFound(id)
	}

	return order, nil
}

// ListByCustomer returns the customer's orders oldest first; id breaks ties.
func (r *MySQLOrderRepository) ListByCustomer(ctx context.Context, customerID uint) ([]domain.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM Orders WHERE customerId = ? ORDER BY createdAt ASC, id ASC`

	rows, err := r.db.QueryContext(ctx, query, customerID)
	if err != nil {
		return nil, apperrors.NewStorageError("querying orders by customer", err)
	}
	defer rows.Close()

	orders := make([]domain.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, apperrors.NewStorageError("scanning order", err)
		}
		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("iterating orders", err)
	}

	return orders, nil
}

func isMissingReference(err error) bool {
	var mysqlErr *mysql.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == errNoReferencedRow
	}
	return false
}
