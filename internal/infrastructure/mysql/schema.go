package mysql

import (
	"context"
	"database/sql"
	"fmt"
)

type table struct {
	name string
	ddl  string
}

var schema = []table{
	{
		name: "Users",
		ddl: `
		CREATE TABLE IF NOT EXISTS Users (
			id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
			type VARCHAR(20) NOT NULL DEFAULT 'customer',
			createdAt DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6)
		)`,
	},
	{
		name: "Orders",
		ddl: `
		CREATE TABLE IF NOT EXISTS Orders (
			id INT UNSIGNED NOT NULL AUTO_INCREMENT PRIMARY KEY,
			product VARCHAR(100) NOT NULL,
			variation VARCHAR(100) NOT NULL,
			price DECIMAL(10,2) NOT NULL,
			status VARCHAR(20) NOT NULL DEFAULT 'Waiting',
			customerId INT UNSIGNED NOT NULL,
			createdAt DATETIME(6) NOT NULL DEFAULT CURRENT_TIMESTAMP(6),
			INDEX idx_customer_created (customerId, createdAt, id),
			FOREIGN KEY (customerId) REFERENCES Users(id)
		)`,
	},
}

// Tables lists the managed tables in creation order.
func Tables() []string {
	names := make([]string, len(schema))
	for i, t := range schema {
		names[i] = t.name
	}
	return names
}

// Migrate creates missing tables. Existing tables are left untouched.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, t := range schema {
		if _, err := db.ExecContext(ctx, t.ddl); err != nil {
			return fmt.Errorf("creating table %s: %w", t.name, err)
		}
	}
	return nil
}
