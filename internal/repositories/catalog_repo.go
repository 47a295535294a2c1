package repositories

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/BradenHooton/bizadmin/internal/auth"
	"github.com/BradenHooton/bizadmin/internal/database"
	"github.com/BradenHooton/bizadmin/internal/models"
	"github.com/BradenHooton/bizadmin/internal/query"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

var auditColumns = []string{"created_at", "created_by", "modified_at", "modified_by", "is_deleted"}

func withAuditColumns(cols ...string) []string {
	return append(cols, auditColumns...)
}

func auditDest(a *models.AuditFields) []any {
	return []any{&a.CreatedAt, &a.CreatedBy, &a.ModifiedAt, &a.ModifiedBy, &a.IsDeleted}
}

// catalogStore holds the persistence shared by all catalog entities.
type catalogStore[T any] struct {
	pool    *pgxpool.Pool
	table   string
	columns []string
	scan    func(rowScanner) (T, error)
}

func (s *catalogStore[T]) Query(ctx context.Context, plan *query.Plan[T]) (query.PagedResult[T], error) {
	return queryPage(ctx, s.pool, s.table, s.columns, plan, s.scan)
}

func (s *catalogStore[T]) GetByID(ctx context.Context, id uuid.UUID) (T, error) {
	q := fmt.Sprintf("SELECT %s FROM %s WHERE id = $1 AND is_deleted = false", strings.Join(s.columns, ", "), s.table)
	return s.scan(s.pool.QueryRow(ctx, q, id))
}

// SoftDelete hides a row from every query and stamps modifiedAt/modifiedBy.
func (s *catalogStore[T]) SoftDelete(ctx context.Context, id uuid.UUID) error {
	q := fmt.Sprintf(`
		UPDATE %s SET is_deleted = true, modified_at = $2, modified_by = $3
		WHERE id = $1 AND is_deleted = false`, s.table)

	result, err := s.pool.Exec(ctx, q, id, time.Now().UTC(), auth.ActorRef(ctx))
	if err != nil {
		return database.MapPostgresError(err)
	}
	if result.RowsAffected() == 0 {
		return models.ErrNotFound
	}
	return nil
}

// insert writes the given columns plus id/created_at/created_by and
// returns the stored row.
func (s *catalogStore[T]) insert(ctx context.Context, id uuid.UUID, cols []string, values []any) (T, error) {
	cols = append([]string{"id", "created_at", "created_by"}, cols...)
	values = append([]any{id, time.Now().UTC(), auth.ActorRef(ctx)}, values...)

	placeholders := make([]string, len(cols))
	for i := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}

	q := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING %s",
		s.table, strings.Join(cols, ", "), strings.Join(placeholders, ", "), strings.Join(s.columns, ", "))
	return s.scan(s.pool.QueryRow(ctx, q, values...))
}

type CountryRepository struct {
	catalogStore[*models.Country]
}

func NewCountryRepository(db *database.DB) *CountryRepository {
	return &CountryRepository{catalogStore[*models.Country]{
		pool:    db.Pool,
		table:   "countries",
		columns: withAuditColumns("id", "name", "iso2", "iso3", "phone_code", "currency_code"),
		scan:    scanCountryRow,
	}}
}

func scanCountryRow(scanner rowScanner) (*models.Country, error) {
	var c models.Country
	dest := append([]any{&c.ID, &c.Name, &c.ISO2, &c.ISO3, &c.PhoneCode, &c.CurrencyCode}, auditDest(&c.AuditFields)...)
	if err := scanner.Scan(dest...); err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &c, nil
}

func (r *CountryRepository) Create(ctx context.Context, c *models.Country) (*models.Country, error) {
	return r.insert(ctx, uuid.New(),
		[]string{"name", "iso2", "iso3", "phone_code", "currency_code"},
		[]any{c.Name, c.ISO2, c.ISO3, c.PhoneCode, c.CurrencyCode},
	)
}

type CurrencyRepository struct {
	catalogStore[*models.Currency]
}

func NewCurrencyRepository(db *database.DB) *CurrencyRepository {
	return &CurrencyRepository{catalogStore[*models.Currency]{
		pool:    db.Pool,
		table:   "currencies",
		columns: withAuditColumns("id", "code", "name", "symbol", "decimal_places"),
		scan:    scanCurrencyRow,
	}}
}

func scanCurrencyRow(scanner rowScanner) (*models.Currency, error) {
	var c models.Currency
	dest := append([]any{&c.ID, &c.Code, &c.Name, &c.Symbol, &c.DecimalPlaces}, auditDest(&c.AuditFields)...)
	if err := scanner.Scan(dest...); err != nil {
		return nil, database.MapPostgresError(err)
	}
	return &c, nil
}

func (r *CurrencyRepository) Create(ctx context.Context, c *models.Currency) (*models.Currency, error) {
	return r.insert(ctx, uuid.New(),
		[]string{"code", "name", "symbol", "decimal_places"},
		[]any{c.Code, c.Name, c.Symbol, c.DecimalPlaces},
	)
}

type ProductRepository struct {
	catalogStore[*models.Product]
}

func NewProductRepository(db *database.DB) *ProductRepository {
	return &ProductRepository{catalogStore[*models.Product]{
		pool:  db.Pool,
		table: "products",
		columns: withAuditColumns("id", "company_id", "sku", "name", "description",
			"unit_price::text", "weight", "status", "launch_date", "is_taxable"),
		scan: scanProductRow,
	}}
}

func scanProductRow(scanner rowScanner) (*models.Product, error) {
	var p models.Product
	var unitPrice, status string

	dest := append([]any{
		&p.ID, &p.CompanyID, &p.SKU, &p.Name, &p.Description,
		&unitPrice, &p.Weight, &status, &p.LaunchDate, &p.IsTaxable,
	}, auditDest(&p.AuditFields)...)
	if err := scanner.Scan(dest...); err != nil {
		return nil, database.MapPostgresError(err)
	}

	price, err := decimal.NewFromString(unitPrice)
	if err != nil {
		return nil, fmt.Errorf("invalid unit_price %q: %w", unitPrice, err)
	}
	p.UnitPrice = price

	s, ok := models.ParseProductStatus(status)
	if !ok {
		return nil, fmt.Errorf("invalid product status %q", status)
	}
	p.Status = s

	return &p, nil
}

func (r *ProductRepository) Create(ctx context.Context, p *models.Product) (*models.Product, error) {
	return r.insert(ctx, uuid.New(),
		[]string{"company_id", "sku", "name", "description", "unit_price", "weight", "status", "launch_date", "is_taxable"},
		[]any{p.CompanyID, p.SKU, p.Name, p.Description, p.UnitPrice.String(), p.Weight, p.Status.String(), p.LaunchDate, p.IsTaxable},
	)
}
