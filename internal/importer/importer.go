package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"
	"orderdesk/internal/backend"
	"orderdesk/internal/diffguard"
	"orderdesk/internal/domain"
	"orderdesk/internal/lookup"
	"orderdesk/internal/validation"
)

// OverrideWriter is the backend surface the importer needs.
type OverrideWriter interface {
	Overrides(ctx context.Context) ([]domain.ProductOverride, error)
	Products(ctx context.Context) ([]domain.Product, error)
	Create(ctx context.Context, in domain.OverrideInput) (domain.ProductOverride, error)
	Update(ctx context.Context, id domain.ID, in domain.OverrideInput) error
}

// Report counts what a run did.
type Report struct {
	Created   int `json:"created"`
	Updated   int `json:"updated"`
	Unchanged int `json:"unchanged"`
}

// CSVImporter reads productId,customerId,overridePrice rows and reconciles
// them with the overrides stored in the backend.
type CSVImporter struct {
	reader    *csv.Reader
	writer    OverrideWriter
	validator *validation.Validator
	// DryRun counts changes without writing them.
	DryRun bool
}

func NewCSVImporter(r io.Reader, w OverrideWriter, v *validation.Validator) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	csvr.TrimLeadingSpace = true
	return &CSVImporter{
		reader:    csvr,
		writer:    w,
		validator: v,
	}
}

type pairKey struct {
	product  domain.ID
	customer domain.ID
}

// Run creates missing overrides, updates changed ones and skips the rest.
// It stops at the first invalid row.
func (i *CSVImporter) Run(ctx context.Context) (Report, error) {
	var report Report

	headers, err := i.reader.Read()
	if err != nil {
		return report, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	for _, col := range []string{"productid", "customerid", "overrideprice"} {
		if _, ok := index[col]; !ok {
			return report, fmt.Errorf("missing column %q", col)
		}
	}

	existing, err := i.writer.Overrides(ctx)
	if err != nil {
		return report, fmt.Errorf("load overrides: %w", err)
	}
	products, err := i.writer.Products(ctx)
	if err != nil {
		return report, fmt.Errorf("load products: %w", err)
	}
	productIdx := lookup.Build(products, func(p domain.Product) domain.ID { return p.ID })
	byPair := make(map[pairKey]domain.ProductOverride, len(existing))
	for _, o := range existing {
		byPair[pairKey{o.ProductID, o.CustomerID}] = o
	}

	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return report, fmt.Errorf("read row: %w", err)
		}
		line, _ := i.reader.FieldPos(0)

		in, ok, err := parseRow(record, index)
		if err != nil {
			return report, fmt.Errorf("line %d: %w", line, err)
		}
		if !ok {
			continue
		}
		if p, found := productIdx.Get(in.ProductID); found {
			minimum := p.MinimumPrice
			in.MinimumPrice = &minimum
		} else {
			return report, fmt.Errorf("line %d: unknown product %s", line, in.ProductID)
		}
		if err := i.validator.Validate(in); err != nil {
			return report, fmt.Errorf("line %d: %w", line, err)
		}

		key := pairKey{in.ProductID, in.CustomerID}
		current, exists := byPair[key]
		edited := domain.ProductOverride{ID: current.ID, ProductID: in.ProductID, CustomerID: in.CustomerID, OverridePrice: in.OverridePrice}
		switch {
		case !exists:
			if !i.DryRun {
				created, err := i.writer.Create(ctx, in)
				if err != nil {
					return report, fmt.Errorf("line %d: create override: %w", line, err)
				}
				edited.ID = created.ID
			}
			report.Created++
		case diffguard.HasChanges(edited, current):
			if !i.DryRun && current.ID.IsZero() {
				return report, fmt.Errorf("line %d: override for product %s and customer %s has no id", line, in.ProductID, in.CustomerID)
			}
			if !i.DryRun {
				if err := i.writer.Update(ctx, current.ID, in); err != nil {
					return report, fmt.Errorf("line %d: update override %s: %w", line, current.ID, err)
				}
			}
			report.Updated++
		default:
			report.Unchanged++
		}
		byPair[key] = edited
	}

	return report, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		idx[strings.ReplaceAll(h, "_", "")] = i
	}
	return idx
}

// parseRow returns ok=false for blank rows.
func parseRow(record []string, index map[string]int) (domain.OverrideInput, bool, error) {
	productID := pick(record, index, "productid")
	customerID := pick(record, index, "customerid")
	price := pick(record, index, "overrideprice")
	if productID == "" && customerID == "" && price == "" {
		return domain.OverrideInput{}, false, nil
	}

	amount, err := decimal.NewFromString(price)
	if err != nil {
		return domain.OverrideInput{}, false, fmt.Errorf("invalid overridePrice %q", price)
	}
	return domain.OverrideInput{
		ProductID:     domain.ID(productID),
		CustomerID:    domain.ID(customerID),
		OverridePrice: amount,
	}, true, nil
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}

// BackendWriter writes overrides through the REST backend.
type BackendWriter struct {
	Client *backend.Client
}

func (w BackendWriter) Overrides(ctx context.Context) ([]domain.ProductOverride, error) {
	return backend.ListAll[domain.ProductOverride](ctx, w.Client, backend.Overrides, nil)
}

func (w BackendWriter) Products(ctx context.Context) ([]domain.Product, error) {
	return backend.ListAll[domain.Product](ctx, w.Client, backend.Products, nil)
}

func (w BackendWriter) Create(ctx context.Context, in domain.OverrideInput) (domain.ProductOverride, error) {
	created, _, err := backend.Create[domain.ProductOverride](ctx, w.Client, backend.Overrides, in)
	return created, err
}

func (w BackendWriter) Update(ctx context.Context, id domain.ID, in domain.OverrideInput) error {
	_, _, err := backend.Update[domain.ProductOverride](ctx, w.Client, backend.Overrides, id, in)
	return err
}
