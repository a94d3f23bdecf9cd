package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/matthieukhl/orderdesk/internal/models"
)

type ProductFilter struct {
	// Query is a case-insensitive substring matched against name and unit.
	Query       string
	InStockOnly bool
}

type ProductRepository struct {
	s *Store
}

const productColumns = `id, name, unit, price, stock, created_at`

func scanProduct(row rowScanner) (models.Product, error) {
	var p models.Product
	err := row.Scan(&p.ID, &p.Name, &p.Unit, &p.Price, &p.Stock, &p.CreatedAt)
	p.CreatedAt = p.CreatedAt.UTC()
	return p, err
}

func getProduct(ctx context.Context, tx *sql.Tx, id int64) (*models.Product, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+productColumns+` FROM products WHERE id = ?`, id)
	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.NewNotFound(models.EntityProduct, id)
	}
	if err != nil {
		return nil, fmt.Errorf("query product by id: %w", err)
	}
	return &p, nil
}

func listProducts(ctx context.Context, tx *sql.Tx) ([]models.Product, error) {
	rows, err := tx.QueryContext(ctx, `SELECT `+productColumns+` FROM products ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product row: %w", err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}
	return products, nil
}

// adjustStock adds delta to the product's stock. A result below zero is a
// ConstraintError and nothing is written.
func adjustStock(ctx context.Context, tx *sql.Tx, p *models.Product, delta int) error {
	if p.Stock+delta < 0 {
		return &models.ConstraintError{
			Entity: models.EntityProduct,
			ID:     p.ID,
			Reason: fmt.Sprintf("insufficient stock: requested %d, available %d", -delta, p.Stock),
		}
	}
	if _, err := tx.ExecContext(ctx, `UPDATE products SET stock = stock + ? WHERE id = ?`, delta, p.ID); err != nil {
		return fmt.Errorf("update product stock: %w", err)
	}
	p.Stock += delta
	return nil
}

// insertProduct validates p and stores it inside tx. The returned copy has
// ID and CreatedAt set.
func (s *Store) insertProduct(ctx context.Context, tx *sql.Tx, p models.Product) (models.Product, error) {
	p.Normalize()
	if err := p.Validate(); err != nil {
		return p, err
	}
	p.CreatedAt = s.timestamp()

	res, err := tx.ExecContext(ctx, `
		INSERT INTO products (name, unit, price, stock, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		p.Name, p.Unit, p.Price, p.Stock, p.CreatedAt)
	if err != nil {
		return p, fmt.Errorf("insert product: %w", err)
	}
	if p.ID, err = res.LastInsertId(); err != nil {
		return p, fmt.Errorf("read product id: %w", err)
	}
	return p, nil
}

// Create validates p, stores it and fills in ID and CreatedAt.
func (r *ProductRepository) Create(ctx context.Context, p *models.Product) (int64, error) {
	var out models.Product
	err := r.s.db.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		out, err = r.s.insertProduct(ctx, tx, *p)
		return err
	})
	if err != nil {
		return 0, err
	}

	*p = out
	r.s.log(models.EntityProduct, p.ID).Debug("product created")
	return p.ID, nil
}

func (r *ProductRepository) Get(ctx context.Context, id int64) (*models.Product, error) {
	var p *models.Product
	err := r.s.db.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		p, err = getProduct(ctx, tx, id)
		return err
	})
	return p, err
}

// Update applies patch to the stored product. Existing orders keep the
// price they were placed with.
func (r *ProductRepository) Update(ctx context.Context, id int64, patch models.ProductPatch) (*models.Product, error) {
	if patch.IsEmpty() {
		return nil, emptyPatch(models.EntityProduct)
	}

	var updated models.Product
	err := r.s.db.WithTx(ctx, func(tx *sql.Tx) error {
		current, err := getProduct(ctx, tx, id)
		if err != nil {
			return err
		}
		updated = patch.Apply(*current)
		if err := updated.Validate(); err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx, `
			UPDATE products SET name = ?, unit = ?, price = ?, stock = ? WHERE id = ?`,
			updated.Name, updated.Unit, updated.Price, updated.Stock, id)
		if err != nil {
			return fmt.Errorf("update product: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	r.s.log(models.EntityProduct, id).Debug("product updated")
	return &updated, nil
}

// Delete removes a product. Products that appear on any order are never deleted.
func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	err := r.s.db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := getProduct(ctx, tx, id); err != nil {
			return err
		}
		n, err := countRefs(ctx, tx, `SELECT COUNT(DISTINCT order_id) FROM order_items WHERE product_id = ?`, id)
		if err != nil {
			return err
		}
		if n > 0 {
			return &models.ConstraintError{
				Entity: models.EntityProduct,
				ID:     id,
				Reason: fmt.Sprintf("is used by %d order(s) and cannot be deleted", n),
			}
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM products WHERE id = ?`, id); err != nil {
			return fmt.Errorf("delete product: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	r.s.log(models.EntityProduct, id).Debug("product deleted")
	return nil
}

// List returns products ordered by id.
func (r *ProductRepository) List(ctx context.Context, filter ProductFilter) ([]models.Product, error) {
	var products []models.Product
	err := r.s.db.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		products, err = listProducts(ctx, tx)
		return err
	})
	if err != nil {
		return nil, err
	}

	matched := products[:0]
	for _, p := range products {
		if filter.InStockOnly && p.Stock == 0 {
			continue
		}
		if p.Matches(filter.Query) {
			matched = append(matched, p)
		}
	}
	return matched, nil
}
