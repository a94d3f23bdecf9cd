package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/matthieukhl/orderdesk/internal/models"
)

type CustomerFilter struct {
	// Query is a case-insensitive substring matched against names, phone and email.
	Query string
}

type CustomerRepository struct {
	s *Store
}

const customerColumns = `id, last_name, first_name, middle_name, phone, email, created_at`

func scanCustomer(row rowScanner) (models.Customer, error) {
	var c models.Customer
	err := row.Scan(&c.ID, &c.LastName, &c.FirstName, &c.MiddleName, &c.Phone, &c.Email, &c.CreatedAt)
	c.CreatedAt = c.CreatedAt.UTC()
	return c, err
}

func getCustomer(ctx context.Context, tx *sql.Tx, id int64) (*models.Customer, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+customerColumns+` FROM customers WHERE id = ?`, id)
	c, err := scanCustomer(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NewNotFound(models.EntityCustomer, id)
	}
	if err != nil {
		return nil, fmt.Errorf("query customer by id: %w", err)
	}
	return &c, nil
}

func listCustomers(ctx context.Context, tx *sql.Tx) ([]models.Customer, error) {
	rows, err := tx.QueryContext(ctx, `SELECT `+customerColumns+` FROM customers ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query customers: %w", err)
	}
	defer rows.Close()

	customers := []models.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan customer row: %w", err)
		}
		customers = append(customers, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return customers, nil
}

// insertCustomer validates c and stores it inside tx. The returned copy has
// ID and CreatedAt set.
func (s *Store) insertCustomer(ctx context.Context, tx *sql.Tx, c models.Customer) (models.Customer, error) {
	c.Normalize()
	if err := c.Validate(); err != nil {
		return c, err
	}
	c.CreatedAt = s.timestamp()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO customers (last_name, first_name, middle_name, phone, email, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		c.LastName, c.FirstName, c.MiddleName, c.Phone, c.Email, c.CreatedAt)
	if err != nil {
		return c, fmt.Errorf("insert customer: %w", err)
	}
	if c.ID, err = res.LastInsertId(); err != nil {
		return c, fmt.Errorf("read customer id: %w", err)
	}
	return c, nil
}

// Create validates c, stores it and fills in ID and CreatedAt.
func (r *CustomerRepository) Create(ctx context.Context, c *models.Customer) (int64, error) {
	var out models.Customer
	err := r.s.db.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		out, err = r.s.insertCustomer(ctx, tx, *c)
		return err
	})
	if err != nil {
		return 0, err
	}

	*c = out
	r.s.log(models.EntityCustomer, c.ID).Debug("customer created")
	return c.ID, nil
}

func (r *CustomerRepository) Get(ctx context.Context, id int64) (*models.Customer, error) {
	var c *models.Customer
	err := r.s.db.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		c, err = getCustomer(ctx, tx, id)
		return err
	})
	return c, err
}

// Update applies patch to the stored customer and returns the result.
func (r *CustomerRepository) Update(ctx context.Context, id int64, patch models.CustomerPatch) (*models.Customer, error) {
	if patch.IsEmpty() {
		return nil, emptyPatch(models.EntityCustomer)
	}

	var updated models.Customer
	err := r.s.db.WithTx(ctx, func(tx *sql.Tx) error {
		current, err := getCustomer(ctx, tx, id)
		if err != nil {
			return err
		}
		updated = patch.Apply(*current)
		if err := updated.Validate(); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE customers
			SET last_name = ?, first_name = ?, middle_name = ?, phone = ?, email = ?
			WHERE id = ?`,
			updated.LastName, updated.FirstName, updated.MiddleName, updated.Phone, updated.Email, id)
		if err != nil {
			return fmt.Errorf("update customer: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.s.log(models.EntityCustomer, id).Debug("customer updated")
	return &updated, nil
}

// Delete removes a customer. Customers with orders are never deleted.
func (r *CustomerRepository) Delete(ctx context.Context, id int64) error {
	err := r.s.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := getCustomer(ctx, tx, id); err != nil {
			return err
		}
		n, err := countRefs(ctx, tx, `SELECT COUNT(*) FROM orders WHERE customer_id = ?`, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return &models.ConstraintError{
				Entity: models.EntityCustomer,
				ID:     id,
				Reason: fmt.Sprintf("has %d order(s) and cannot be deleted", n),
			}
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM customers WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete customer: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.s.log(models.EntityCustomer, id).Debug("customer deleted")
	return nil
}

// List returns customers ordered by id.
func (r *CustomerRepository) List(ctx context.Context, filter CustomerFilter) ([]models.Customer, error) {
	var customers []models.Customer
	err := r.s.db.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		customers, err = listCustomers(ctx, tx)
		return err
	})
	if err != nil {
		return nil, err
	}

	if filter.Query == "" {
		return customers, nil
	}
	matched := customers[:0]
	for _, c := range customers {
		if c.Matches(filter.Query) {
			matched = append(matched, c)
		}
	}
	return matched, nil
}
