package seed

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/BradenHooton/bizadmin/internal/models"
	pkglogger "github.com/BradenHooton/bizadmin/pkg/logger"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore records created values and rejects duplicate keys with ErrConflict
type memStore[T any] struct {
	key   func(T) string
	seen  map[string]bool
	items []T
}

func newMemStore[T any](key func(T) string) *memStore[T] {
	return &memStore[T]{key: key, seen: map[string]bool{}}
}

func (s *memStore[T]) Create(ctx context.Context, v T) (T, error) {
	k := s.key(v)
	if s.seen[k] {
		var zero T
		return zero, models.ErrConflict
	}
	s.seen[k] = true
	s.items = append(s.items, v)
	return v, nil
}

func newStores() (Stores, *memStore[*models.Currency], *memStore[*models.Country], *memStore[*models.Product]) {
	currencies := newMemStore(func(c *models.Currency) string { return c.Code })
	countries := newMemStore(func(c *models.Country) string { return c.ISO2 })
	products := newMemStore(func(p *models.Product) string { return p.SKU })
	return Stores{Currencies: currencies, Countries: countries, Products: products}, currencies, countries, products
}

func TestLoad(t *testing.T) {
	file, err := ParseFile("testdata/reference.yaml")
	require.NoError(t, err)

	stores, currencies, countries, products := newStores()
	logger := pkglogger.NewWithWriter(io.Discard, "error")

	res, err := Load(context.Background(), file, stores, logger)
	require.NoError(t, err)
	assert.Equal(t, Result{Inserted: 5}, res)

	require.Len(t, currencies.items, 2)
	assert.Equal(t, "EUR", currencies.items[0].Code)
	assert.Equal(t, 0, currencies.items[1].DecimalPlaces)

	require.Len(t, countries.items, 2)
	de := countries.items[0]
	assert.Equal(t, "DE", de.ISO2)
	assert.Equal(t, "DEU", de.ISO3)
	require.NotNil(t, de.CurrencyCode)
	assert.Equal(t, "EUR", *de.CurrencyCode)
	assert.Nil(t, countries.items[1].PhoneCode)

	require.Len(t, products.items, 1)
	p := products.items[0]
	assert.True(t, decimal.RequireFromString("19.99").Equal(p.UnitPrice))
	assert.Equal(t, models.ProductActive, p.Status)
	require.NotNil(t, p.LaunchDate)
	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), *p.LaunchDate)
	assert.Nil(t, p.Description)

	// A second run finds everything already present
	res, err = Load(context.Background(), file, stores, logger)
	require.NoError(t, err)
	assert.Equal(t, Result{Skipped: 5}, res)
}

func TestParse(t *testing.T) {
	t.Run("empty document", func(t *testing.T) {
		file, err := Parse(strings.NewReader(""))
		require.NoError(t, err)
		assert.Empty(t, file.Countries)
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := Parse(strings.NewReader("planets:\n  - name: Mars\n"))
		assert.Error(t, err)
	})
}

func TestLoad_InvalidProduct(t *testing.T) {
	tests := []struct {
		name    string
		product Product
		wantErr string
	}{
		{"bad company", Product{CompanyID: "acme", SKU: "X", UnitPrice: "1"}, "companyId"},
		{"bad price", Product{CompanyID: "6f1c2b1e-3a4d-4e5f-8a9b-0c1d2e3f4a5b", SKU: "X", UnitPrice: "cheap"}, "unitPrice"},
		{"negative price", Product{CompanyID: "6f1c2b1e-3a4d-4e5f-8a9b-0c1d2e3f4a5b", SKU: "X", UnitPrice: "-1"}, "unitPrice"},
		{"bad status", Product{CompanyID: "6f1c2b1e-3a4d-4e5f-8a9b-0c1d2e3f4a5b", SKU: "X", UnitPrice: "1", Status: "Retired"}, "status"},
		{"bad date", Product{CompanyID: "6f1c2b1e-3a4d-4e5f-8a9b-0c1d2e3f4a5b", SKU: "X", UnitPrice: "1", LaunchDate: "May 1"}, "launchDate"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stores, _, _, products := newStores()
			_, err := Load(context.Background(), &File{Products: []Product{tt.product}}, stores, pkglogger.NewWithWriter(io.Discard, "error"))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.Contains(t, err.Error(), "products[0]")
			assert.Empty(t, products.items)
		})
	}
}
