package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type GetProductForSaleParams struct {
	ID       uuid.UUID
	TenantID uuid.UUID
}

type GetProductForSaleRow struct {
	ID       uuid.UUID
	TenantID uuid.UUID
	Name     string
	Code     string
	Price    pgtype.Numeric
}

func (q *Queries) GetProductForSale(ctx context.Context, arg GetProductForSaleParams) (GetProductForSaleRow, error) {
	row := q.db.QueryRow(ctx, `
		SELECT id, tenant_id, name, code, price
		FROM products
		WHERE id = $1 AND tenant_id = $2 AND active = true
	`, arg.ID, arg.TenantID)

	var p GetProductForSaleRow
	err := row.Scan(&p.ID, &p.TenantID, &p.Name, &p.Code, &p.Price)
	return p, err
}

type CustomerExistsParams struct {
	ID       uuid.UUID
	TenantID uuid.UUID
}

func (q *Queries) CustomerExists(ctx context.Context, arg CustomerExistsParams) (bool, error) {
	row := q.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM customers WHERE id = $1 AND tenant_id = $2
		)
	`, arg.ID, arg.TenantID)

	var exists bool
	err := row.Scan(&exists)
	return exists, err
}

type GetCustomerNameParams struct {
	ID       uuid.UUID
	TenantID uuid.UUID
}

func (q *Queries) GetCustomerName(ctx context.Context, arg GetCustomerNameParams) (string, error) {
	row := q.db.QueryRow(ctx, `
		SELECT name FROM customers WHERE id = $1 AND tenant_id = $2
	`, arg.ID, arg.TenantID)

	var name string
	err := row.Scan(&name)
	return name, err
}

func (q *Queries) GetUserName(ctx context.Context, id uuid.UUID) (string, error) {
	row := q.db.QueryRow(ctx, `
		SELECT name FROM users WHERE id = $1
	`, id)

	var name string
	err := row.Scan(&name)
	return name, err
}

type GetActiveTaxParams struct {
	ID       uuid.UUID
	TenantID uuid.UUID
}

func (q *Queries) GetActiveTax(ctx context.Context, arg GetActiveTaxParams) (Tax, error) {
	row := q.db.QueryRow(ctx, `
		SELECT id, tenant_id, name, tax_type, rate, amount, is_default, active
		FROM taxes
		WHERE id = $1 AND tenant_id = $2 AND active = true
	`, arg.ID, arg.TenantID)

	var t Tax
	err := row.Scan(&t.ID, &t.TenantID, &t.Name, &t.Type, &t.Rate, &t.Amount, &t.IsDefault, &t.Active)
	return t, err
}
