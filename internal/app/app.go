package app

import (
	"context"
	"io"

	"github.com/matthieukhl/orderdesk/internal/analyze"
	"github.com/matthieukhl/orderdesk/internal/events"
	"github.com/matthieukhl/orderdesk/internal/models"
	"github.com/matthieukhl/orderdesk/internal/store"
	"github.com/matthieukhl/orderdesk/internal/transfer"
	"github.com/sirupsen/logrus"
)

type Options struct {
	// TopN is the default ranking size for analysis.
	TopN int
}

// App turns user intents into store, analysis and transfer calls. It holds
// no rules of its own: validation and constraints live in models and store.
// Every committed change is announced through the publisher.
type App struct {
	store     *store.Store
	publisher events.Publisher
	logger    *logrus.Logger
	importer  *transfer.Importer
	topN      int
}

func New(s *store.Store, publisher events.Publisher, logger *logrus.Logger, opts Options) *App {
	if publisher == nil {
		publisher = events.Noop{}
	}
	return &App{
		store:     s,
		publisher: publisher,
		logger:    logger,
		importer:  transfer.NewImporter(transfer.FromStore(s), logger),
		topN:      opts.TopN,
	}
}

// publish announces a committed change. The change stays even if the
// announcement fails.
func (a *App) publish(ctx context.Context, entity, action string, id int64, payload any) {
	err := a.publisher.Publish(ctx, events.New(entity, action, id, payload))
	if err != nil {
		a.logger.WithError(err).WithFields(logrus.Fields{
			"entity": entity,
			"id":     id,
			"action": action,
		}).Warn("change saved but event was not published")
	}
}

// fail logs err at a level matching its kind and returns it unchanged.
func (a *App) fail(op string, err error) error {
	entry := a.logger.WithError(err).WithField("op", op)
	if IsUserError(err) {
		entry.Debug("request rejected")
	} else {
		entry.Error("operation failed")
	}
	return err
}

func (a *App) Health(ctx context.Context) error {
	if err := a.store.Health(ctx); err != nil {
		return a.fail("health", err)
	}
	return nil
}

func (a *App) Counts(ctx context.Context) (map[string]int, error) {
	counts, err := a.store.Counts(ctx)
	if err != nil {
		return nil, a.fail("counts", err)
	}
	return counts, nil
}

// Customers

func (a *App) AddCustomer(ctx context.Context, c models.Customer) (*models.Customer, error) {
	if _, err := a.store.Customers().Create(ctx, &c); err != nil {
		return nil, a.fail("add customer", err)
	}
	a.publish(ctx, models.EntityCustomer, events.ActionCreated, c.ID, c)
	return &c, nil
}

func (a *App) EditCustomer(ctx context.Context, id int64, patch models.CustomerPatch) (*models.Customer, error) {
	c, err := a.store.Customers().Update(ctx, id, patch)
	if err != nil {
		return nil, a.fail("edit customer", err)
	}
	a.publish(ctx, models.EntityCustomer, events.ActionUpdated, id, c)
	return c, nil
}

func (a *App) RemoveCustomer(ctx context.Context, id int64) error {
	if err := a.store.Customers().Delete(ctx, id); err != nil {
		return a.fail("remove customer", err)
	}
	a.publish(ctx, models.EntityCustomer, events.ActionDeleted, id, nil)
	return nil
}

func (a *App) Customer(ctx context.Context, id int64) (*models.Customer, error) {
	c, err := a.store.Customers().Get(ctx, id)
	if err != nil {
		return nil, a.fail("get customer", err)
	}
	return c, nil
}

func (a *App) Customers(ctx context.Context, filter store.CustomerFilter) ([]models.Customer, error) {
	customers, err := a.store.Customers().List(ctx, filter)
	if err != nil {
		return nil, a.fail("list customers", err)
	}
	return customers, nil
}

// Products

func (a *App) AddProduct(ctx context.Context, p models.Product) (*models.Product, error) {
	if _, err := a.store.Products().Create(ctx, &p); err != nil {
		return nil, a.fail("add product", err)
	}
	a.publish(ctx, models.EntityProduct, events.ActionCreated, p.ID, p)
	return &p, nil
}

func (a *App) EditProduct(ctx context.Context, id int64, patch models.ProductPatch) (*models.Product, error) {
	p, err := a.store.Products().Update(ctx, id, patch)
	if err != nil {
		return nil, a.fail("edit product", err)
	}
	a.publish(ctx, models.EntityProduct, events.ActionUpdated, id, p)
	return p, nil
}

func (a *App) RemoveProduct(ctx context.Context, id int64) error {
	if err := a.store.Products().Delete(ctx, id); err != nil {
		return a.fail("remove product", err)
	}
	a.publish(ctx, models.EntityProduct, events.ActionDeleted, id, nil)
	return nil
}

func (a *App) Product(ctx context.Context, id int64) (*models.Product, error) {
	p, err := a.store.Products().Get(ctx, id)
	if err != nil {
		return nil, a.fail("get product", err)
	}
	return p, nil
}

func (a *App) Products(ctx context.Context, filter store.ProductFilter) ([]models.Product, error) {
	products, err := a.store.Products().List(ctx, filter)
	if err != nil {
		return nil, a.fail("list products", err)
	}
	return products, nil
}

// Orders

func (a *App) PlaceOrder(ctx context.Context, o models.Order) (*models.Order, error) {
	if _, err := a.store.Orders().Create(ctx, &o); err != nil {
		return nil, a.fail("place order", err)
	}
	a.publish(ctx, models.EntityOrder, events.ActionCreated, o.ID, o)
	return &o, nil
}

func (a *App) EditOrder(ctx context.Context, id int64, patch models.OrderPatch) (*models.Order, error) {
	o, err := a.store.Orders().Update(ctx, id, patch)
	if err != nil {
		return nil, a.fail("edit order", err)
	}
	a.publish(ctx, models.EntityOrder, events.ActionUpdated, id, o)
	return o, nil
}

// CancelOrder sets the order status to cancelled, which returns its stock.
func (a *App) CancelOrder(ctx context.Context, id int64) (*models.Order, error) {
	status := models.OrderStatusCancelled
	o, err := a.store.Orders().Update(ctx, id, models.OrderPatch{Status: &status})
	if err != nil {
		return nil, a.fail("cancel order", err)
	}
	a.publish(ctx, models.EntityOrder, events.ActionCancelled, id, o)
	return o, nil
}

func (a *App) RemoveOrder(ctx context.Context, id int64) error {
	if err := a.store.Orders().Delete(ctx, id); err != nil {
		return a.fail("remove order", err)
	}
	a.publish(ctx, models.EntityOrder, events.ActionDeleted, id, nil)
	return nil
}

func (a *App) Order(ctx context.Context, id int64) (*models.Order, error) {
	o, err := a.store.Orders().Get(ctx, id)
	if err != nil {
		return nil, a.fail("get order", err)
	}
	return o, nil
}

func (a *App) Orders(ctx context.Context, filter store.OrderFilter) ([]models.Order, error) {
	orders, err := a.store.Orders().List(ctx, filter)
	if err != nil {
		return nil, a.fail("list orders", err)
	}
	return orders, nil
}

// Analysis and transfer

// Analyze builds the full report from one consistent snapshot. topN <= 0
// uses the configured default.
func (a *App) Analyze(ctx context.Context, topN int) (*analyze.Report, error) {
	if topN <= 0 {
		topN = a.topN
	}
	snap, err := a.store.Snapshot(ctx)
	if err != nil {
		return nil, a.fail("analyze", err)
	}
	report := analyze.NewEngine(topN).Report(analyze.Dataset{
		Customers: snap.Customers,
		Products:  snap.Products,
		Orders:    snap.Orders,
	})
	return &report, nil
}

func (a *App) Export(ctx context.Context, w io.Writer, format transfer.Format, entity string) error {
	snap, err := a.store.Snapshot(ctx)
	if err != nil {
		return a.fail("export", err)
	}
	if err := transfer.Export(w, format, entity, snap); err != nil {
		return a.fail("export", err)
	}
	return nil
}

// Import adds customers or products from r. Rejected records are reported
// in the result, not as an error. A failed import keeps nothing and
// announces nothing.
func (a *App) Import(ctx context.Context, r io.Reader, format transfer.Format, entity string) (*transfer.Result, error) {
	res, err := a.importer.Import(ctx, r, format, entity)
	if res != nil {
		for _, id := range res.Imported {
			a.publish(ctx, entity, events.ActionImported, id, nil)
		}
	}
	if err != nil {
		return res, a.fail("import", err)
	}
	return res, nil
}
