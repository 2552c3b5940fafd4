package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"orderdesk/internal/backend"
	"orderdesk/internal/backend/backendtest"
	"orderdesk/internal/domain"
	"orderdesk/internal/validation"
)

func newWriter(t *testing.T, srv *backendtest.Server) BackendWriter {
	t.Helper()
	c, err := backend.New(srv.URL, 5*time.Second, backend.StaticToken("tok"))
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return BackendWriter{Client: c}
}

func seed(srv *backendtest.Server) {
	srv.Seed("products",
		domain.Product{ID: "1", Name: "Kaffe", Price: decimal.NewFromInt(40), MinimumPrice: decimal.NewFromInt(20)},
		domain.Product{ID: "2", Name: "Te", Price: decimal.NewFromInt(30), MinimumPrice: decimal.NewFromInt(10)},
	)
	srv.Seed("product-overrides",
		domain.ProductOverride{ID: "7", ProductID: "1", CustomerID: "3", OverridePrice: decimal.NewFromInt(25)},
		domain.ProductOverride{ID: "8", ProductID: "2", CustomerID: "3", OverridePrice: decimal.NewFromInt(12)},
	)
}

func TestCSVImporter_Run(t *testing.T) {
	srv := backendtest.New(t)
	seed(srv)
	csvData := "customerId,overridePrice,productId\n" +
		"3,30,1\n" +
		"3,12.0004,2\n" +
		",,\n" +
		"4,11,2\n"

	imp := NewCSVImporter(strings.NewReader(csvData), newWriter(t, srv), validation.New())
	report, err := imp.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	want := Report{Created: 1, Updated: 1, Unchanged: 1}
	if report != want {
		t.Fatalf("report = %+v, want %+v", report, want)
	}
	if got := srv.Count("PUT", "/product-overrides/7"); got != 1 {
		t.Fatalf("expected one update of override 7, got %d", got)
	}
	if got := srv.Count("PUT", "/product-overrides/8"); got != 0 {
		t.Fatalf("unchanged override was written %d times", got)
	}
	if got := len(srv.Items("product-overrides")); got != 3 {
		t.Fatalf("expected 3 overrides stored, got %d", got)
	}
}

func TestCSVImporter_DryRunWritesNothing(t *testing.T) {
	srv := backendtest.New(t)
	seed(srv)
	csvData := "productId,customerId,overridePrice\n1,3,31\n2,9,15\n"

	imp := NewCSVImporter(strings.NewReader(csvData), newWriter(t, srv), validation.New())
	imp.DryRun = true
	report, err := imp.Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Created != 1 || report.Updated != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
	if srv.Count("POST", "/") != 0 || srv.Count("PUT", "/") != 0 {
		t.Fatalf("dry run wrote to the backend")
	}
}

func TestCSVImporter_DuplicateRowsCompareAgainstEarlierRow(t *testing.T) {
	srv := backendtest.New(t)
	seed(srv)
	csvData := "product_id,customer_id,override_price\n2,5,15\n2,5,15\n"

	report, err := NewCSVImporter(strings.NewReader(csvData), newWriter(t, srv), validation.New()).Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Created != 1 || report.Unchanged != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
}

func TestCSVImporter_LaterRowUpdatesOverrideCreatedEarlier(t *testing.T) {
	srv := backendtest.New(t)
	seed(srv)
	csvData := "productId,customerId,overridePrice\n2,5,15\n2,5,20\n"

	report, err := NewCSVImporter(strings.NewReader(csvData), newWriter(t, srv), validation.New()).Run(context.Background())
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if report.Created != 1 || report.Updated != 1 {
		t.Fatalf("unexpected report %+v", report)
	}
	created := srv.Items("product-overrides")[2]["id"]
	if got := srv.Count("PUT", fmt.Sprintf("/product-overrides/%v", created)); got != 1 {
		t.Fatalf("expected one update of created override %v, got %d", created, got)
	}
	items := srv.Items("product-overrides")
	if len(items) != 3 {
		t.Fatalf("expected 3 overrides stored, got %d", len(items))
	}
	if got := fmt.Sprint(items[2]["overridePrice"]); got != "20" {
		t.Fatalf("created override price = %s, want 20", got)
	}
}

func TestCSVImporter_RejectsInvalidRows(t *testing.T) {
	cases := map[string]string{
		"below minimum":   "productId,customerId,overridePrice\n1,3,5\n",
		"unknown product": "productId,customerId,overridePrice\n99,3,50\n",
		"bad price":       "productId,customerId,overridePrice\n1,3,abc\n",
		"missing column":  "productId,overridePrice\n1,50\n",
	}
	for name, data := range cases {
		t.Run(name, func(t *testing.T) {
			srv := backendtest.New(t)
			seed(srv)
			_, err := NewCSVImporter(strings.NewReader(data), newWriter(t, srv), validation.New()).Run(context.Background())
			if err == nil {
				t.Fatalf("expected error")
			}
			if srv.Count("POST", "/") != 0 {
				t.Fatalf("invalid row was written")
			}
		})
	}
}

func TestCSVImporter_BelowMinimumIsValidationError(t *testing.T) {
	srv := backendtest.New(t)
	seed(srv)
	data := "productId,customerId,overridePrice\n1,3,5\n"

	_, err := NewCSVImporter(strings.NewReader(data), newWriter(t, srv), validation.New()).Run(context.Background())
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}
