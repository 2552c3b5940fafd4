package dashboard

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"
	"orderdesk/internal/backend"
	"orderdesk/internal/diffguard"
	"orderdesk/internal/domain"
	"orderdesk/internal/listview"
	"orderdesk/internal/lookup"
	"orderdesk/internal/validation"
)

// OverrideRow is an override joined with the product and customer it
// refers to.
type OverrideRow struct {
	domain.ProductOverride
	ProductName  string          `json:"productName"`
	CustomerName string          `json:"customerName"`
	MinimumPrice decimal.Decimal `json:"minimumPrice"`
	Price        decimal.Decimal `json:"price"`
}

// ProjectOverrides resolves names and prices through the indexes. Rows whose
// product or customer is unknown keep empty names.
func ProjectOverrides(overrides []domain.ProductOverride, products *lookup.Index[domain.Product], customers *lookup.Index[domain.Customer]) []OverrideRow {
	rows := make([]OverrideRow, 0, len(overrides))
	for _, o := range overrides {
		row := OverrideRow{ProductOverride: o}
		if p, ok := products.Get(o.ProductID); ok {
			row.ProductName = p.Name
			row.MinimumPrice = p.MinimumPrice
			row.Price = p.Price
		}
		if c, ok := customers.Get(o.CustomerID); ok {
			row.CustomerName = c.Name
		}
		rows = append(rows, row)
	}
	return rows
}

func overrideSpec(opts Options) listview.Spec[OverrideRow] {
	return listview.Spec[OverrideRow]{
		SearchFields: []func(OverrideRow) string{
			func(r OverrideRow) string { return r.ProductName },
			func(r OverrideRow) string { return r.CustomerName },
		},
		SortKey: func(r OverrideRow) string { return r.ProductName },
		Locale:  opts.Locale,
	}
}

type overrideSource struct {
	client *backend.Client

	mu       sync.RWMutex
	products *lookup.Index[domain.Product]
}

func (s *overrideSource) fetch(ctx context.Context, filters map[string]string) ([]OverrideRow, error) {
	var (
		overrides []domain.ProductOverride
		products  []domain.Product
		customers []domain.Customer
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		overrides, err = backend.ListAll[domain.ProductOverride](gctx, s.client, backend.Overrides, filters)
		return err
	})
	g.Go(func() (err error) {
		products, err = backend.ListAll[domain.Product](gctx, s.client, backend.Products, nil)
		return err
	})
	g.Go(func() (err error) {
		customers, err = backend.ListAll[domain.Customer](gctx, s.client, backend.Customers, nil)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	productIdx := lookup.Build(products, func(p domain.Product) domain.ID { return p.ID })
	customerIdx := lookup.Build(customers, func(c domain.Customer) domain.ID { return c.ID })

	s.mu.Lock()
	s.products = productIdx
	s.mu.Unlock()

	return ProjectOverrides(overrides, productIdx, customerIdx), nil
}

// attachMinimum fills the product's minimum price for validation, loading
// the products when no refresh has happened yet.
func (s *overrideSource) attachMinimum(ctx context.Context, in *domain.OverrideInput) error {
	s.mu.RLock()
	idx := s.products
	s.mu.RUnlock()

	if idx == nil {
		products, err := backend.ListAll[domain.Product](ctx, s.client, backend.Products, nil)
		if err != nil {
			return err
		}
		idx = lookup.Build(products, func(p domain.Product) domain.ID { return p.ID })
		s.mu.Lock()
		s.products = idx
		s.mu.Unlock()
	}

	if in.ProductID.IsZero() {
		return nil
	}
	p, ok := idx.Get(in.ProductID)
	if !ok {
		return validation.Field("productId", "is not a known product")
	}
	minimum := p.MinimumPrice
	in.MinimumPrice = &minimum
	return nil
}

// overrideUnchanged applies the price diff guard to an edit of the same
// product and customer.
func overrideUnchanged(in domain.OverrideInput, orig OverrideRow) bool {
	if in.ProductID != orig.ProductID || in.CustomerID != orig.CustomerID {
		return false
	}
	edited := orig.ProductOverride
	edited.OverridePrice = in.OverridePrice
	return !diffguard.HasChanges(edited, orig.ProductOverride)
}

// Overrides is the price-override screen. Its server filters are
// productId and customerId.
type Overrides = Manager[OverrideRow, domain.OverrideInput]

func NewOverrides(client *backend.Client, v *validation.Validator, opts Options) *Overrides {
	src := &overrideSource{client: client}
	coll := NewCollection("overrides", overrideSpec(opts),
		func(r OverrideRow) domain.ID { return r.ID },
		src.fetch, opts.PageSize, "productId", "customerId")
	m := NewManager[OverrideRow, domain.OverrideInput](coll, client, backend.Overrides, v)
	m.prepare = src.attachMinimum
	m.unchanged = overrideUnchanged
	return m
}
