package transfer

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/matthieukhl/orderdesk/internal/models"
	"github.com/matthieukhl/orderdesk/internal/store"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Creator adds one record. Validation and constraint failures come back as
// *models.ValidationError or *models.ConstraintError and write nothing.
type Creator interface {
	CreateCustomer(ctx context.Context, c *models.Customer) (int64, error)
	CreateProduct(ctx context.Context, p *models.Product) (int64, error)
}

// Batcher runs fn in one transaction: what fn creates is kept only when fn
// returns nil.
type Batcher interface {
	Batch(ctx context.Context, fn func(Creator) error) error
}

type storeBatcher struct {
	s *store.Store
}

// FromStore imports into s, one transaction per file.
func FromStore(s *store.Store) Batcher {
	return storeBatcher{s: s}
}

func (b storeBatcher) Batch(ctx context.Context, fn func(Creator) error) error {
	return b.s.Batch(ctx, func(batch *store.Batch) error {
		return fn(batch)
	})
}

// Rejection explains why one input record was not imported. Record is
// 1-based and does not count the CSV header.
type Rejection struct {
	Record int    `json:"record" yaml:"record"`
	Reason string `json:"reason" yaml:"reason"`
	Err    error  `json:"-" yaml:"-"`
}

type Result struct {
	Entity   string      `json:"entity" yaml:"entity"`
	Imported []int64     `json:"imported" yaml:"imported"`
	Rejected []Rejection `json:"rejected" yaml:"rejected"`
}

// Importer adds records from a file through the normal create path, so every
// record is validated the same way as one typed in by hand.
type Importer struct {
	batcher Batcher
	logger  *logrus.Logger
}

func NewImporter(batcher Batcher, logger *logrus.Logger) *Importer {
	return &Importer{batcher: batcher, logger: logger}
}

// Import reads records of entity from r. Records that fail validation are
// collected in Result.Rejected. A malformed file or a storage failure stops
// the import, returns an error and leaves the database as it was.
func (im *Importer) Import(ctx context.Context, r io.Reader, format Format, entity string) (*Result, error) {
	switch entity {
	case models.EntityCustomer:
		customers, err := decodeCustomers(r, format)
		if err != nil {
			return nil, err
		}
		return run(ctx, im, entity, customers, Creator.CreateCustomer)
	case models.EntityProduct:
		products, err := decodeProducts(r, format)
		if err != nil {
			return nil, err
		}
		return run(ctx, im, entity, products, Creator.CreateProduct)
	default:
		return nil, inputError("importing %ss is not supported", entity)
	}
}

// decoded is one input record, or the reason it could not be read.
type decoded[T any] struct {
	value T
	err   error
}

func run[T any](ctx context.Context, im *Importer, entity string, records []decoded[T], create func(Creator, context.Context, *T) (int64, error)) (*Result, error) {
	var res *Result
	err := im.batcher.Batch(ctx, func(c Creator) error {
		res = &Result{Entity: entity, Imported: []int64{}, Rejected: []Rejection{}}
		for i, rec := range records {
			err := rec.err
			if err == nil {
				var id int64
				if id, err = create(c, ctx, &rec.value); err == nil {
					res.Imported = append(res.Imported, id)
					continue
				}
			}
			if !isRecordError(err) {
				return fmt.Errorf("import %s record %d: %w", entity, i+1, err)
			}
			res.Rejected = append(res.Rejected, Rejection{Record: i + 1, Reason: err.Error(), Err: err})
		}
		return nil
	})
	if err != nil {
		im.logger.WithError(err).WithField("entity", entity).Warn("import rolled back")
		return nil, err
	}

	im.logger.WithFields(logrus.Fields{
		"entity":   entity,
		"imported": len(res.Imported),
		"rejected": len(res.Rejected),
	}).Info("import finished")
	return res, nil
}

func isRecordError(err error) bool {
	var (
		verr *models.ValidationError
		cerr *models.ConstraintError
	)
	return errors.As(err, &verr) || errors.As(err, &cerr)
}

// decodeList reads a JSON or YAML list of records. A single record on its
// own is accepted as a list of one.
func decodeList[T any](r io.Reader, format Format) ([]decoded[T], error) {
	var list []T
	switch format {
	case FormatJSON:
		var raw json.RawMessage
		if err := json.NewDecoder(r).Decode(&raw); err != nil {
			return nil, inputError("decode json: %w", err)
		}
		if trimmed := bytes.TrimSpace(raw); len(trimmed) > 0 && trimmed[0] == '{' {
			var one T
			if err := json.Unmarshal(trimmed, &one); err != nil {
				return nil, inputError("decode json: %w", err)
			}
			list = []T{one}
		} else if err := json.Unmarshal(raw, &list); err != nil {
			return nil, inputError("decode json: %w", err)
		}
	case FormatYAML:
		var doc yaml.Node
		if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, inputError("decode yaml: %w", err)
		}
		node := &doc
		if node.Kind == yaml.DocumentNode && len(node.Content) == 1 {
			node = node.Content[0]
		}
		if node.Kind == yaml.MappingNode {
			var one T
			if err := node.Decode(&one); err != nil {
				return nil, inputError("decode yaml: %w", err)
			}
			list = []T{one}
		} else if err := node.Decode(&list); err != nil {
			return nil, inputError("decode yaml: %w", err)
		}
	default:
		return nil, inputError("unsupported format %q", format)
	}
	out := make([]decoded[T], len(list))
	for i := range list {
		out[i].value = list[i]
	}
	return out, nil
}

// csvRows reads a CSV file with a header line into maps keyed by column
// name. Unknown columns are ignored; missing required columns fail the file.
func csvRows(r io.Reader, required ...string) ([]map[string]string, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, nil
	}
	if err != nil {
		return nil, inputError("read csv header: %w", err)
	}
	for i := range header {
		header[i] = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(header[i], "\ufeff")))
	}
	for _, col := range required {
		if !slices.Contains(header, col) {
			return nil, inputError("csv header is missing column %q", col)
		}
	}

	var rows []map[string]string
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, inputError("read csv: %w", err)
		}
		row := make(map[string]string, len(header))
		for i, col := range header {
			if i < len(rec) {
				row[col] = rec[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func decodeCustomers(r io.Reader, format Format) ([]decoded[models.Customer], error) {
	if format != FormatCSV {
		return decodeList[models.Customer](r, format)
	}
	rows, err := csvRows(r, "first_name")
	if err != nil {
		return nil, err
	}
	out := make([]decoded[models.Customer], len(rows))
	for i, row := range rows {
		out[i].value = models.Customer{
			LastName:   row["last_name"],
			FirstName:  row["first_name"],
			MiddleName: row["middle_name"],
			Phone:      row["phone"],
			Email:      row["email"],
		}
	}
	return out, nil
}

func decodeProducts(r io.Reader, format Format) ([]decoded[models.Product], error) {
	if format != FormatCSV {
		return decodeList[models.Product](r, format)
	}
	rows, err := csvRows(r, "name", "price")
	if err != nil {
		return nil, err
	}
	out := make([]decoded[models.Product], len(rows))
	for i, row := range rows {
		p := models.Product{Name: row["name"], Unit: row["unit"]}
		verr := &models.ValidationError{Entity: models.EntityProduct, Fields: map[string]string{}}

		if p.Price, err = decimal.NewFromString(strings.TrimSpace(row["price"])); err != nil {
			verr.Fields["price"] = "is not a number"
		}
		if s := strings.TrimSpace(row["stock"]); s != "" {
			if p.Stock, err = strconv.Atoi(s); err != nil {
				verr.Fields["stock"] = "is not a whole number"
			}
		}

		out[i].value = p
		if len(verr.Fields) > 0 {
			out[i].err = verr
		}
	}
	return out, nil
}
