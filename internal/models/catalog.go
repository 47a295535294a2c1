package models

import (
	"strings"
	"time"

	"github.com/BradenHooton/bizadmin/internal/query"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Country struct {
	ID           uuid.UUID
	Name         string
	ISO2         string
	ISO3         string
	PhoneCode    *string
	CurrencyCode *string
	AuditFields
}

type Currency struct {
	ID            uuid.UUID
	Code          string
	Name          string
	Symbol        string
	DecimalPlaces int
	AuditFields
}

type ProductStatus int

const (
	ProductDraft ProductStatus = iota
	ProductActive
	ProductDiscontinued
)

var productStatuses = []string{"Draft", "Active", "Discontinued"}

func (s ProductStatus) String() string {
	if s < 0 || int(s) >= len(productStatuses) {
		return "Unknown"
	}
	return productStatuses[s]
}

// ParseProductStatus resolves a status name case-insensitively.
func ParseProductStatus(name string) (ProductStatus, bool) {
	for i, n := range productStatuses {
		if strings.EqualFold(n, name) {
			return ProductStatus(i), true
		}
	}
	return 0, false
}

type Product struct {
	ID          uuid.UUID
	CompanyID   uuid.UUID
	SKU         string
	Name        string
	Description *string
	UnitPrice   decimal.Decimal
	Weight      float64
	Status      ProductStatus
	LaunchDate  *time.Time
	IsTaxable   bool
	AuditFields
}

// TimeZone and DateFormat are static reference data served from memory.
type TimeZone struct {
	ID            string
	DisplayName   string
	OffsetMinutes int
	ObservesDST   bool
}

type DateFormat struct {
	Code      string
	Pattern   string
	Example   string
	IsDefault bool
}

var CountrySchema = withAudit(query.NewSchema[*Country]().
	UUID("id", "id", func(c *Country) uuid.UUID { return c.ID }).
	Text("name", "name", func(c *Country) string { return c.Name }).
	Text("iso2", "iso2", func(c *Country) string { return c.ISO2 }).
	Text("iso3", "iso3", func(c *Country) string { return c.ISO3 }).
	TextPtr("phoneCode", "phone_code", func(c *Country) *string { return c.PhoneCode }).
	TextPtr("currencyCode", "currency_code", func(c *Country) *string { return c.CurrencyCode }).
	Searchable("name", "iso2", "iso3"),
	func(c *Country) AuditFields { return c.AuditFields })

var CurrencySchema = withAudit(query.NewSchema[*Currency]().
	UUID("id", "id", func(c *Currency) uuid.UUID { return c.ID }).
	Text("code", "code", func(c *Currency) string { return c.Code }).
	Text("name", "name", func(c *Currency) string { return c.Name }).
	Text("symbol", "symbol", func(c *Currency) string { return c.Symbol }).
	Int("decimalPlaces", "decimal_places", func(c *Currency) int { return c.DecimalPlaces }).
	Searchable("code", "name"),
	func(c *Currency) AuditFields { return c.AuditFields })

var ProductSchema = withAudit(query.NewSchema[*Product]().
	UUID("id", "id", func(p *Product) uuid.UUID { return p.ID }).
	UUID("companyId", "company_id", func(p *Product) uuid.UUID { return p.CompanyID }).
	Text("sku", "sku", func(p *Product) string { return p.SKU }).
	Text("name", "name", func(p *Product) string { return p.Name }).
	TextPtr("description", "description", func(p *Product) *string { return p.Description }).
	Decimal("unitPrice", "unit_price", func(p *Product) decimal.Decimal { return p.UnitPrice }).
	Float64("weight", "weight", func(p *Product) float64 { return p.Weight }).
	Enum("status", "status", productStatuses, func(p *Product) int { return int(p.Status) }).
	DatePtr("launchDate", "launch_date", func(p *Product) *time.Time { return p.LaunchDate }).
	Bool("isTaxable", "is_taxable", func(p *Product) bool { return p.IsTaxable }).
	Searchable("sku", "name", "description"),
	func(p *Product) AuditFields { return p.AuditFields })

var TimeZoneSchema = query.NewSchema[TimeZone]().
	Text("id", "id", func(z TimeZone) string { return z.ID }).
	Text("displayName", "display_name", func(z TimeZone) string { return z.DisplayName }).
	Int("offsetMinutes", "offset_minutes", func(z TimeZone) int { return z.OffsetMinutes }).
	Bool("observesDst", "observes_dst", func(z TimeZone) bool { return z.ObservesDST }).
	Searchable("id", "displayName")

var DateFormatSchema = query.NewSchema[DateFormat]().
	Text("code", "code", func(f DateFormat) string { return f.Code }).
	Text("pattern", "pattern", func(f DateFormat) string { return f.Pattern }).
	Text("example", "example", func(f DateFormat) string { return f.Example }).
	Bool("isDefault", "is_default", func(f DateFormat) bool { return f.IsDefault }).
	Searchable("code", "pattern")
