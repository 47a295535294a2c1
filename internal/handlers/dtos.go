package handlers

import (
	"time"

	"github.com/BradenHooton/bizadmin/internal/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AuditResponse is embedded in every entity response
type AuditResponse struct {
	CreatedAt  time.Time  `json:"createdAt"`
	CreatedBy  *uuid.UUID `json:"createdBy,omitempty"`
	ModifiedAt *time.Time `json:"modifiedAt,omitempty"`
	ModifiedBy *uuid.UUID `json:"modifiedBy,omitempty"`
}

func auditResponse(a models.AuditFields) AuditResponse {
	return AuditResponse{
		CreatedAt:  a.CreatedAt,
		CreatedBy:  a.CreatedBy,
		ModifiedAt: a.ModifiedAt,
		ModifiedBy: a.ModifiedBy,
	}
}

// Principals

// CreatePrincipalRequest represents the request body for creating a principal
type CreatePrincipalRequest struct {
	Username    string `json:"username" validate:"required,min=3,max=50,excludes=@"`
	Email       string `json:"email" validate:"required,email,max=254"`
	DisplayName string `json:"displayName" validate:"omitempty,max=100"`
	Password    string `json:"password" validate:"required,max=128"`
	Role        string `json:"role" validate:"omitempty,oneof=user admin"`
}

// UpdateStatusRequest represents the request body for a status change
type UpdateStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=Active Inactive Suspended"`
}

// PrincipalResponse is the administrative view of a principal
type PrincipalResponse struct {
	ID                  uuid.UUID  `json:"id"`
	Username            string     `json:"username"`
	Email               string     `json:"email"`
	DisplayName         string     `json:"displayName"`
	Role                string     `json:"role"`
	Status              string     `json:"status"`
	FailedLoginAttempts int        `json:"failedLoginAttempts"`
	LockoutEnd          *time.Time `json:"lockoutEnd,omitempty"`
	LastLoginAt         *time.Time `json:"lastLoginAt,omitempty"`
	AuditResponse
}

func principalResponse(p *models.Principal) PrincipalResponse {
	return PrincipalResponse{
		ID:                  p.ID,
		Username:            p.Username,
		Email:               p.Email,
		DisplayName:         p.DisplayName,
		Role:                p.Role,
		Status:              string(p.Status),
		FailedLoginAttempts: p.FailedLoginAttempts,
		LockoutEnd:          p.LockoutEnd,
		LastLoginAt:         p.LastLoginAt,
		AuditResponse:       auditResponse(p.AuditFields),
	}
}

// Countries

type CreateCountryRequest struct {
	Name         string  `json:"name" validate:"required,max=100"`
	ISO2         string  `json:"iso2" validate:"required,len=2,alpha,uppercase"`
	ISO3         string  `json:"iso3" validate:"required,len=3,alpha,uppercase"`
	PhoneCode    *string `json:"phoneCode" validate:"omitempty,max=10"`
	CurrencyCode *string `json:"currencyCode" validate:"omitempty,len=3,alpha,uppercase"`
}

func (r CreateCountryRequest) toModel() (*models.Country, error) {
	return &models.Country{
		Name:         r.Name,
		ISO2:         r.ISO2,
		ISO3:         r.ISO3,
		PhoneCode:    r.PhoneCode,
		CurrencyCode: r.CurrencyCode,
	}, nil
}

type CountryResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	ISO2         string    `json:"iso2"`
	ISO3         string    `json:"iso3"`
	PhoneCode    *string   `json:"phoneCode,omitempty"`
	CurrencyCode *string   `json:"currencyCode,omitempty"`
	AuditResponse
}

func countryResponse(c *models.Country) CountryResponse {
	return CountryResponse{
		ID:            c.ID,
		Name:          c.Name,
		ISO2:          c.ISO2,
		ISO3:          c.ISO3,
		PhoneCode:     c.PhoneCode,
		CurrencyCode:  c.CurrencyCode,
		AuditResponse: auditResponse(c.AuditFields),
	}
}

// Currencies

type CreateCurrencyRequest struct {
	Code          string `json:"code" validate:"required,len=3,alpha,uppercase"`
	Name          string `json:"name" validate:"required,max=100"`
	Symbol        string `json:"symbol" validate:"required,max=8"`
	DecimalPlaces int    `json:"decimalPlaces" validate:"gte=0,lte=6"`
}

func (r CreateCurrencyRequest) toModel() (*models.Currency, error) {
	return &models.Currency{
		Code:          r.Code,
		Name:          r.Name,
		Symbol:        r.Symbol,
		DecimalPlaces: r.DecimalPlaces,
	}, nil
}

type CurrencyResponse struct {
	ID            uuid.UUID `json:"id"`
	Code          string    `json:"code"`
	Name          string    `json:"name"`
	Symbol        string    `json:"symbol"`
	DecimalPlaces int       `json:"decimalPlaces"`
	AuditResponse
}

func currencyResponse(c *models.Currency) CurrencyResponse {
	return CurrencyResponse{
		ID:            c.ID,
		Code:          c.Code,
		Name:          c.Name,
		Symbol:        c.Symbol,
		DecimalPlaces: c.DecimalPlaces,
		AuditResponse: auditResponse(c.AuditFields),
	}
}

// Products

type CreateProductRequest struct {
	CompanyID   string          `json:"companyId" validate:"required,uuid"`
	SKU         string          `json:"sku" validate:"required,max=64"`
	Name        string          `json:"name" validate:"required,max=200"`
	Description *string         `json:"description" validate:"omitempty,max=2000"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Weight      float64         `json:"weight" validate:"gte=0"`
	Status      string          `json:"status" validate:"omitempty,oneof=Draft Active Discontinued"`
	LaunchDate  *string         `json:"launchDate" validate:"omitempty,datetime=2006-01-02"`
	IsTaxable   bool            `json:"isTaxable"`
}

func (r CreateProductRequest) toModel() (*models.Product, error) {
	if r.UnitPrice.IsNegative() {
		return nil, models.NewValidationError("unitPrice", "must be greater than or equal to 0")
	}
	p := &models.Product{
		CompanyID:   uuid.MustParse(r.CompanyID),
		SKU:         r.SKU,
		Name:        r.Name,
		Description: r.Description,
		UnitPrice:   r.UnitPrice,
		Weight:      r.Weight,
		IsTaxable:   r.IsTaxable,
	}
	if r.Status != "" {
		p.Status, _ = models.ParseProductStatus(r.Status)
	}
	if r.LaunchDate != nil {
		d, err := time.Parse(time.DateOnly, *r.LaunchDate)
		if err != nil {
			return nil, models.NewValidationError("launchDate", "must be a date in YYYY-MM-DD format")
		}
		p.LaunchDate = &d
	}
	return p, nil
}

type ProductResponse struct {
	ID          uuid.UUID       `json:"id"`
	CompanyID   uuid.UUID       `json:"companyId"`
	SKU         string          `json:"sku"`
	Name        string          `json:"name"`
	Description *string         `json:"description,omitempty"`
	UnitPrice   decimal.Decimal `json:"unitPrice"`
	Weight      float64         `json:"weight"`
	Status      string          `json:"status"`
	LaunchDate  *string         `json:"launchDate,omitempty"`
	IsTaxable   bool            `json:"isTaxable"`
	AuditResponse
}

func productResponse(p *models.Product) ProductResponse {
	resp := ProductResponse{
		ID:            p.ID,
		CompanyID:     p.CompanyID,
		SKU:           p.SKU,
		Name:          p.Name,
		Description:   p.Description,
		UnitPrice:     p.UnitPrice,
		Weight:        p.Weight,
		Status:        p.Status.String(),
		IsTaxable:     p.IsTaxable,
		AuditResponse: auditResponse(p.AuditFields),
	}
	if p.LaunchDate != nil {
		d := p.LaunchDate.Format(time.DateOnly)
		resp.LaunchDate = &d
	}
	return resp
}

// Reference data

type TimeZoneResponse struct {
	ID            string `json:"id"`
	DisplayName   string `json:"displayName"`
	OffsetMinutes int    `json:"offsetMinutes"`
	ObservesDST   bool   `json:"observesDst"`
}

func timeZoneResponse(z models.TimeZone) TimeZoneResponse {
	return TimeZoneResponse{
		ID:            z.ID,
		DisplayName:   z.DisplayName,
		OffsetMinutes: z.OffsetMinutes,
		ObservesDST:   z.ObservesDST,
	}
}

type DateFormatResponse struct {
	Code      string `json:"code"`
	Pattern   string `json:"pattern"`
	Example   string `json:"example"`
	IsDefault bool   `json:"isDefault"`
}

func dateFormatResponse(f models.DateFormat) DateFormatResponse {
	return DateFormatResponse{Code: f.Code, Pattern: f.Pattern, Example: f.Example, IsDefault: f.IsDefault}
}
