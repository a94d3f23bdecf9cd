package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/matthieukhl/orderdesk/internal/database"
	"github.com/matthieukhl/orderdesk/internal/models"
	"github.com/sirupsen/logrus"
)

// Store is the persistence manager for customers, products and orders.
// Every call runs in its own transaction.
type Store struct {
	db     *database.DB
	logger *logrus.Logger
	now    func() time.Time

	customers *CustomerRepository
	products  *ProductRepository
	orders    *OrderRepository
}

type Option func(*Store)

// WithClock replaces the time source used for created_at stamps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(db *database.DB, logger *logrus.Logger, opts ...Option) *Store {
	s := &Store{
		db:     db,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.customers = &CustomerRepository{s: s}
	s.products = &ProductRepository{s: s}
	s.orders = &OrderRepository{s: s}
	return s
}

func (s *Store) Customers() *CustomerRepository { return s.customers }
func (s *Store) Products() *ProductRepository   { return s.products }
func (s *Store) Orders() *OrderRepository       { return s.orders }

// Health reports whether the database answers.
func (s *Store) Health(ctx context.Context) error {
	return s.db.HealthCheck(ctx)
}

func (s *Store) Driver() string { return s.db.Driver() }

func (s *Store) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Second)
}

func (s *Store) log(entity string, id int64) *logrus.Entry {
	return s.logger.WithFields(logrus.Fields{"entity": entity, "id": id})
}

// Snapshot is a consistent copy of every record, read in one transaction.
type Snapshot struct {
	Customers []models.Customer
	Products  []models.Product
	Orders    []models.Order
}

func (s *Store) Snapshot(ctx context.Context) (*Snapshot, error) {
	var snap Snapshot
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		var err error
		if snap.Customers, err = listCustomers(ctx, tx); err != nil {
			return err
		}
		if snap.Products, err = listProducts(ctx, tx); err != nil {
			return err
		}
		snap.Orders, err = listOrders(ctx, tx, OrderFilter{})
		return err
	})
	if err != nil {
		return nil, err
	}
	return &snap, nil
}

// Counts returns the number of rows per table.
func (s *Store) Counts(ctx context.Context) (map[string]int, error) {
	counts := make(map[string]int, 4)
	err := s.db.WithTx(ctx, func(tx *sql.Tx) error {
		for _, table := range []string{"customers", "products", "orders", "order_items"} {
			var n int
			if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM "+table).Scan(&n); err != nil {
				return fmt.Errorf("count %s: %w", table, err)
			}
			counts[table] = n
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return counts, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func emptyPatch(entity string) error {
	return models.NewValidationError(entity, "patch", "has no fields to update")
}

func countRefs(ctx context.Context, tx *sql.Tx, query string, id int64) (int, error) {
	var n int
	if err := tx.QueryRowContext(ctx, query, id).Scan(&n); err != nil {
		return 0, fmt.Errorf("count references: %w", err)
	}
	return n, nil
}
