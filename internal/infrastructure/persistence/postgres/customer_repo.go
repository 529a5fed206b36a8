package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pawnworks/origination/internal/domain/model"
)

// CustomerRepo implements port.CustomerSearcher against PostgreSQL.
type CustomerRepo struct {
	pool *pgxpool.Pool
}

// NewCustomerRepo creates a new repository backed by PostgreSQL.
func NewCustomerRepo(pool *pgxpool.Pool) *CustomerRepo {
	return &CustomerRepo{pool: pool}
}

const searchLimit = 10

// SearchCustomers matches by phone number prefix or case-insensitive name
// fragment, returning at most ten results.
func (r *CustomerRepo) SearchCustomers(ctx context.Context, query string) ([]model.Customer, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}

	rows, err := r.pool.Query(ctx, `
		SELECT phone_number, first_name, last_name, status
		FROM customers
		WHERE phone_number LIKE $1 || '%'
		   OR first_name ILIKE '%' || $1 || '%'
		   OR last_name  ILIKE '%' || $1 || '%'
		ORDER BY last_name, first_name
		LIMIT $2
	`, query, searchLimit)
	if err != nil {
		return nil, fmt.Errorf("search customers: %w", err)
	}
	defer rows.Close()

	var out []model.Customer
	for rows.Next() {
		var c model.Customer
		if err := rows.Scan(&c.PhoneNumber, &c.FirstName, &c.LastName, &c.Status); err != nil {
			return nil, fmt.Errorf("scan customer: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate customers: %w", err)
	}
	return out, nil
}
