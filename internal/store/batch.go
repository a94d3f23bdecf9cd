package store

import (
	"context"
	"database/sql"

	"github.com/matthieukhl/orderdesk/internal/models"
)

// Batch creates records inside one transaction. It is only valid during the
// Store.Batch callback.
type Batch struct {
	s  *Store
	tx *sql.Tx
}

// Batch runs fn in a single transaction. Everything fn creates is committed
// when it returns nil and rolled back otherwise. A record rejected by
// validation writes nothing, so fn may skip it and go on.
func (s *Store) Batch(ctx context.Context, fn func(b *Batch) error) error {
	return s.db.WithTx(ctx, func(tx *sql.Tx) error {
		return fn(&Batch{s: s, tx: tx})
	})
}

func (b *Batch) CreateCustomer(ctx context.Context, c *models.Customer) (int64, error) {
	out, err := b.s.insertCustomer(ctx, b.tx, *c)
	if err != nil {
		return 0, err
	}
	*c = out
	return c.ID, nil
}

func (b *Batch) CreateProduct(ctx context.Context, p *models.Product) (int64, error) {
	out, err := b.s.insertProduct(ctx, b.tx, *p)
	if err != nil {
		return 0, err
	}
	*p = out
	return p.ID, nil
}
