package masterdata

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/TemirB/erp-order-bridge/internal/domain"
)

//go:embed schema.sql
var schemaSQL string

// Postgres reads master tables replicated from the ERP into one schema.
type Postgres struct {
	pool   *pgxpool.Pool
	schema string
}

func NewPostgres(pool *pgxpool.Pool, schema string) *Postgres {
	return &Postgres{pool: pool, schema: schema}
}

func (r *Postgres) qt(tbl string) string { return pgx.Identifier{r.schema, tbl}.Sanitize() }

// Migrate creates empty master tables. Used by development setups that
// load master data by hand instead of replicating it.
func (r *Postgres) Migrate(ctx context.Context) error {
	ddl := strings.ReplaceAll(schemaSQL, "{{schema}}", pgx.Identifier{r.schema}.Sanitize())
	for _, stmt := range strings.Split(ddl, ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := r.pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("migrate master data: %w", err)
		}
	}
	return nil
}

func (r *Postgres) CustomerByTaxID(ctx context.Context, taxID string) (string, error) {
	var code string
	err := r.pool.QueryRow(ctx, fmt.Sprintf(`
		SELECT card_code FROM %s
		WHERE tax_id = $1 AND card_type = 'C' AND NOT frozen
		ORDER BY card_code
		LIMIT 1
	`, r.qt("customers")), strings.TrimSpace(taxID)).Scan(&code)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", domain.ErrNotFound
	}
	return code, err
}

func (r *Postgres) CustomerActive(ctx context.Context, code string) (bool, error) {
	return r.exists(ctx, fmt.Sprintf(`
		SELECT 1 FROM %s WHERE card_code = $1 AND card_type = 'C' AND NOT frozen
	`, r.qt("customers")), strings.TrimSpace(code))
}

func (r *Postgres) SellerExists(ctx context.Context, code int) (bool, error) {
	return r.exists(ctx, fmt.Sprintf(`SELECT 1 FROM %s WHERE slp_code = $1`, r.qt("sellers")), code)
}

func (r *Postgres) WarehouseMappingByID(ctx context.Context, id int) (WarehouseMapping, error) {
	return r.mapping(ctx, "external_id = $1", id)
}

func (r *Postgres) WarehouseMappingByName(ctx context.Context, name string) (WarehouseMapping, error) {
	return r.mapping(ctx, "external_name = $1", strings.TrimSpace(name))
}

func (r *Postgres) mapping(ctx context.Context, where string, arg any) (WarehouseMapping, error) {
	var (
		m  WarehouseMapping
		id *int
	)
	err := r.pool.QueryRow(ctx, fmt.Sprintf(`
		SELECT external_id, external_name, whs_code, whs_name, active
		FROM %s WHERE %s
		LIMIT 1
	`, r.qt("warehouse_map"), where), arg).Scan(&id, &m.ExternalName, &m.WarehouseCode, &m.WarehouseName, &m.Active)
	if errors.Is(err, pgx.ErrNoRows) {
		return WarehouseMapping{}, domain.ErrNotFound
	}
	if err != nil {
		return WarehouseMapping{}, err
	}
	if id != nil {
		m.ExternalID = *id
	}
	return m, nil
}

func (r *Postgres) WarehouseMappings(ctx context.Context) ([]WarehouseMapping, error) {
	rows, err := r.pool.Query(ctx, fmt.Sprintf(`
		SELECT COALESCE(external_id, 0), external_name, whs_code, whs_name, active
		FROM %s
	`, r.qt("warehouse_map")))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []WarehouseMapping
	for rows.Next() {
		var m WarehouseMapping
		if err := rows.Scan(&m.ExternalID, &m.ExternalName, &m.WarehouseCode, &m.WarehouseName, &m.Active); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *Postgres) WarehouseActive(ctx context.Context, code string) (bool, error) {
	return r.exists(ctx, fmt.Sprintf(`
		SELECT 1 FROM %s WHERE whs_code = $1 AND NOT inactive
	`, r.qt("warehouses")), strings.TrimSpace(code))
}

func (r *Postgres) SellableItems(ctx context.Context, codes []string) ([]string, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	return r.codes(ctx, fmt.Sprintf(`
		SELECT item_code FROM %s
		WHERE upper(item_code) = ANY($1) AND valid AND sellable
	`, r.qt("items")), upperAll(codes))
}

func (r *Postgres) StockedItems(ctx context.Context, warehouse string, codes []string) ([]string, error) {
	if len(codes) == 0 {
		return nil, nil
	}
	return r.codes(ctx, fmt.Sprintf(`
		SELECT item_code FROM %s
		WHERE upper(item_code) = ANY($1) AND whs_code = $2
	`, r.qt("item_warehouses")), upperAll(codes), strings.TrimSpace(warehouse))
}

func (r *Postgres) Ping(ctx context.Context) error { return r.pool.Ping(ctx) }

func (r *Postgres) exists(ctx context.Context, query string, args ...any) (bool, error) {
	var one int
	err := r.pool.QueryRow(ctx, query, args...).Scan(&one)
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *Postgres) codes(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}
