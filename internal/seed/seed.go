// Package seed loads reference catalog data from YAML files.
package seed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/BradenHooton/bizadmin/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// File is the document layout of a seed file
type File struct {
	Currencies []Currency `yaml:"currencies"`
	Countries  []Country  `yaml:"countries"`
	Products   []Product  `yaml:"products"`
}

type Currency struct {
	Code          string `yaml:"code"`
	Name          string `yaml:"name"`
	Symbol        string `yaml:"symbol"`
	DecimalPlaces int    `yaml:"decimalPlaces"`
}

type Country struct {
	Name         string `yaml:"name"`
	ISO2         string `yaml:"iso2"`
	ISO3         string `yaml:"iso3"`
	PhoneCode    string `yaml:"phoneCode"`
	CurrencyCode string `yaml:"currencyCode"`
}

type Product struct {
	CompanyID   string  `yaml:"companyId"`
	SKU         string  `yaml:"sku"`
	Name        string  `yaml:"name"`
	Description string  `yaml:"description"`
	UnitPrice   string  `yaml:"unitPrice"`
	Weight      float64 `yaml:"weight"`
	Status      string  `yaml:"status"`
	LaunchDate  string  `yaml:"launchDate"`
	IsTaxable   bool    `yaml:"isTaxable"`
}

// Creator stores one catalog record
type Creator[T any] interface {
	Create(ctx context.Context, v T) (T, error)
}

// Stores are the repositories a seed run writes to
type Stores struct {
	Currencies Creator[*models.Currency]
	Countries  Creator[*models.Country]
	Products   Creator[*models.Product]
}

// Result counts the rows inserted and the rows skipped because they
// already exist
type Result struct {
	Inserted int
	Skipped  int
}

// ParseFile reads and parses a seed file
func ParseFile(path string) (*File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()
	return Parse(f)
}

// Parse decodes a seed document. Unknown keys are rejected.
func Parse(r io.Reader) (*File, error) {
	var file File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		if errors.Is(err, io.EOF) {
			return &file, nil
		}
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	return &file, nil
}

// Load inserts every record in file. Currencies go first so countries can
// reference them. Records that conflict with existing rows are skipped.
func Load(ctx context.Context, file *File, stores Stores, logger *slog.Logger) (Result, error) {
	var res Result

	for i, c := range file.Currencies {
		if err := insert(ctx, stores.Currencies, c.toModel(), &res); err != nil {
			return res, fmt.Errorf("currencies[%d] %s: %w", i, c.Code, err)
		}
	}
	for i, c := range file.Countries {
		if err := insert(ctx, stores.Countries, c.toModel(), &res); err != nil {
			return res, fmt.Errorf("countries[%d] %s: %w", i, c.ISO2, err)
		}
	}
	for i, p := range file.Products {
		m, err := p.toModel()
		if err != nil {
			return res, fmt.Errorf("products[%d] %s: %w", i, p.SKU, err)
		}
		if err := insert(ctx, stores.Products, m, &res); err != nil {
			return res, fmt.Errorf("products[%d] %s: %w", i, p.SKU, err)
		}
	}

	logger.Info("seed complete", slog.Int("inserted", res.Inserted), slog.Int("skipped", res.Skipped))
	return res, nil
}

func insert[T any](ctx context.Context, store Creator[T], v T, res *Result) error {
	if _, err := store.Create(ctx, v); err != nil {
		if errors.Is(err, models.ErrConflict) {
			res.Skipped++
			return nil
		}
		return err
	}
	res.Inserted++
	return nil
}

func (c Currency) toModel() *models.Currency {
	return &models.Currency{
		Code:          strings.ToUpper(c.Code),
		Name:          c.Name,
		Symbol:        c.Symbol,
		DecimalPlaces: c.DecimalPlaces,
	}
}

func (c Country) toModel() *models.Country {
	return &models.Country{
		Name:         c.Name,
		ISO2:         strings.ToUpper(c.ISO2),
		ISO3:         strings.ToUpper(c.ISO3),
		PhoneCode:    optional(c.PhoneCode),
		CurrencyCode: optional(strings.ToUpper(c.CurrencyCode)),
	}
}

func (p Product) toModel() (*models.Product, error) {
	companyID, err := uuid.Parse(p.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("invalid companyId: %w", err)
	}
	price, err := decimal.NewFromString(p.UnitPrice)
	if err != nil {
		return nil, fmt.Errorf("invalid unitPrice: %w", err)
	}
	if price.IsNegative() {
		return nil, fmt.Errorf("unitPrice must not be negative")
	}

	status := models.ProductDraft
	if p.Status != "" {
		s, ok := models.ParseProductStatus(p.Status)
		if !ok {
			return nil, fmt.Errorf("invalid status %q", p.Status)
		}
		status = s
	}

	var launch *time.Time
	if p.LaunchDate != "" {
		d, err := time.Parse(time.DateOnly, p.LaunchDate)
		if err != nil {
			return nil, fmt.Errorf("invalid launchDate: %w", err)
		}
		launch = &d
	}

	return &models.Product{
		CompanyID:   companyID,
		SKU:         p.SKU,
		Name:        p.Name,
		Description: optional(p.Description),
		UnitPrice:   price,
		Weight:      p.Weight,
		Status:      status,
		LaunchDate:  launch,
		IsTaxable:   p.IsTaxable,
	}, nil
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
