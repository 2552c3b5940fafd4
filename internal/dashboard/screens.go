package dashboard

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"orderdesk/internal/backend"
	"orderdesk/internal/diffguard"
	"orderdesk/internal/domain"
	"orderdesk/internal/listview"
	"orderdesk/internal/lookup"
	"orderdesk/internal/validation"
)

type Options struct {
	PageSize int
	Locale   language.Tag
}

func fetchAll[T any](client *backend.Client, res backend.Resource) Fetcher[T] {
	return func(ctx context.Context, filters map[string]string) ([]T, error) {
		return backend.ListAll[T](ctx, client, res, filters)
	}
}

type (
	Brands     = Manager[domain.Brand, domain.BrandInput]
	Categories = Manager[domain.Category, domain.CategoryInput]
	Products   = Manager[domain.Product, domain.ProductInput]
	Customers  = Manager[domain.Customer, domain.CustomerInput]
	Agents     = Manager[domain.Agent, domain.AgentInput]
	Orders     = Manager[OrderRow, domain.OrderInput]
)

func NewBrands(client *backend.Client, v *validation.Validator, opts Options) *Brands {
	name := func(b domain.Brand) string { return b.Name }
	coll := NewCollection("brands", listview.Spec[domain.Brand]{
		SearchFields: []func(domain.Brand) string{name},
		SortKey:      name,
		Locale:       opts.Locale,
	}, func(b domain.Brand) domain.ID { return b.ID }, fetchAll[domain.Brand](client, backend.Brands), opts.PageSize)
	m := NewManager[domain.Brand, domain.BrandInput](coll, client, backend.Brands, v)
	m.unchanged = func(in domain.BrandInput, orig domain.Brand) bool {
		return !diffguard.NameChanged(in.Name, orig.Name)
	}
	return m
}

func NewCategories(client *backend.Client, v *validation.Validator, opts Options) *Categories {
	name := func(c domain.Category) string { return c.Name }
	coll := NewCollection("categories", listview.Spec[domain.Category]{
		SearchFields: []func(domain.Category) string{name},
		SortKey:      name,
		Locale:       opts.Locale,
	}, func(c domain.Category) domain.ID { return c.ID }, fetchAll[domain.Category](client, backend.Categories), opts.PageSize)
	m := NewManager[domain.Category, domain.CategoryInput](coll, client, backend.Categories, v)
	m.unchanged = func(in domain.CategoryInput, orig domain.Category) bool {
		return !diffguard.NameChanged(in.Name, orig.Name)
	}
	return m
}

func NewProducts(client *backend.Client, v *validation.Validator, opts Options) *Products {
	name := func(p domain.Product) string { return p.Name }
	coll := NewCollection("products", listview.Spec[domain.Product]{
		SearchFields: []func(domain.Product) string{name, func(p domain.Product) string { return p.Description }},
		SortKey:      name,
		Locale:       opts.Locale,
	}, func(p domain.Product) domain.ID { return p.ID }, fetchAll[domain.Product](client, backend.Products), opts.PageSize,
		"brandId", "categoryId")
	return NewManager[domain.Product, domain.ProductInput](coll, client, backend.Products, v)
}

func NewCustomers(client *backend.Client, v *validation.Validator, opts Options) *Customers {
	name := func(c domain.Customer) string { return c.Name }
	coll := NewCollection("customers", listview.Spec[domain.Customer]{
		SearchFields: []func(domain.Customer) string{
			name,
			func(c domain.Customer) string { return c.Email },
			func(c domain.Customer) string { return c.PhoneNumber },
		},
		SortKey: name,
		Locale:  opts.Locale,
	}, func(c domain.Customer) domain.ID { return c.ID }, fetchAll[domain.Customer](client, backend.Customers), opts.PageSize)
	m := NewManager[domain.Customer, domain.CustomerInput](coll, client, backend.Customers, v)
	m.unchanged = func(in domain.CustomerInput, orig domain.Customer) bool {
		return !diffguard.NameChanged(in.Name, orig.Name) &&
			strings.TrimSpace(orig.Email) == in.Email &&
			strings.TrimSpace(orig.PhoneNumber) == in.PhoneNumber
	}
	return m
}

func NewAgents(client *backend.Client, v *validation.Validator, opts Options) *Agents {
	name := func(a domain.Agent) string { return a.Name }
	coll := NewCollection("agents", listview.Spec[domain.Agent]{
		SearchFields: []func(domain.Agent) string{
			name,
			func(a domain.Agent) string { return a.Email },
			func(a domain.Agent) string { return a.PhoneNumber },
		},
		SortKey: name,
		Locale:  opts.Locale,
	}, func(a domain.Agent) domain.ID { return a.ID }, fetchAll[domain.Agent](client, backend.Agents), opts.PageSize)
	m := NewManager[domain.Agent, domain.AgentInput](coll, client, backend.Agents, v)
	m.unchanged = func(in domain.AgentInput, orig domain.Agent) bool {
		return !diffguard.NameChanged(in.Name, orig.Name) &&
			strings.TrimSpace(orig.Email) == in.Email &&
			strings.TrimSpace(orig.PhoneNumber) == in.PhoneNumber
	}
	return m
}

// OrderRow is an order with its customer resolved.
type OrderRow struct {
	domain.Order
	CustomerName string `json:"customerName"`
	Standalone   bool   `json:"standalone"`
}

func fetchOrders(client *backend.Client) Fetcher[OrderRow] {
	return func(ctx context.Context, filters map[string]string) ([]OrderRow, error) {
		var (
			orders    []domain.Order
			customers []domain.Customer
		)
		g, gctx := errgroup.WithContext(ctx)
		g.Go(func() (err error) {
			orders, err = backend.ListAll[domain.Order](gctx, client, backend.Orders, filters)
			return err
		})
		g.Go(func() (err error) {
			customers, err = backend.ListAll[domain.Customer](gctx, client, backend.Customers, nil)
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, err
		}

		idx := lookup.Build(customers, func(c domain.Customer) domain.ID { return c.ID })
		rows := make([]OrderRow, 0, len(orders))
		for _, o := range orders {
			row := OrderRow{Order: o, Standalone: o.Standalone()}
			if !row.Standalone {
				if c, ok := idx.Get(*o.CustomerID); ok {
					row.CustomerName = c.Name
				}
			}
			rows = append(rows, row)
		}
		return rows, nil
	}
}

// NewOrders sorts by creation time and filters by status on the server.
func NewOrders(client *backend.Client, v *validation.Validator, opts Options) *Orders {
	coll := NewCollection("orders", listview.Spec[OrderRow]{
		SearchFields: []func(OrderRow) string{
			func(r OrderRow) string { return r.ID.String() },
			func(r OrderRow) string { return r.CustomerName },
			func(r OrderRow) string { return string(r.Status) },
		},
		Compare: func(a, b OrderRow) int { return a.CreatedAt.Compare(b.CreatedAt) },
		Locale:  opts.Locale,
	}, func(r OrderRow) domain.ID { return r.ID }, fetchOrders(client), opts.PageSize,
		"status", "customerId")
	m := NewManager[OrderRow, domain.OrderInput](coll, client, backend.Orders, v)
	m.unchanged = func(in domain.OrderInput, orig OrderRow) bool {
		return in.Status == orig.Status && sameID(in.CustomerID, orig.CustomerID)
	}
	return m
}

func sameID(a, b *domain.ID) bool {
	if a == nil || b == nil {
		return (a == nil || a.IsZero()) && (b == nil || b.IsZero())
	}
	return *a == *b
}
