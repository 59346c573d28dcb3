package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

const saleColumns = `
	id, tenant_id, number, status, note, customer_id, created_by,
	subtotal, discount_total, tax_total, total,
	cancelled_at, cancel_reason, created_at, updated_at`

type CreateSaleParams struct {
	TenantID      uuid.UUID
	Number        string
	Status        string
	Note          pgtype.Text
	CustomerID    pgtype.UUID
	CreatedBy     uuid.UUID
	Subtotal      pgtype.Numeric
	DiscountTotal pgtype.Numeric
	TaxTotal      pgtype.Numeric
	Total         pgtype.Numeric
}

func (q *Queries) CreateSale(ctx context.Context, arg CreateSaleParams) (Sale, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO sales (
			tenant_id, number, status, note, customer_id, created_by,
			subtotal, discount_total, tax_total, total
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING`+saleColumns+`
	`, arg.TenantID, arg.Number, arg.Status, arg.Note, arg.CustomerID, arg.CreatedBy,
		arg.Subtotal, arg.DiscountTotal, arg.TaxTotal, arg.Total)
	return scanSale(row)
}

type CreateSaleItemParams struct {
	SaleID          uuid.UUID
	ProductID       uuid.UUID
	ProductName     string
	ProductCode     string
	Quantity        pgtype.Numeric
	UnitPrice       pgtype.Numeric
	Subtotal        pgtype.Numeric
	DiscountPercent pgtype.Numeric
	DiscountAmount  pgtype.Numeric
	TaxAmount       pgtype.Numeric
	Total           pgtype.Numeric
	Notes           pgtype.Text
}

func (q *Queries) CreateSaleItem(ctx context.Context, arg CreateSaleItemParams) (SaleItem, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO sale_items (
			sale_id, product_id, product_name, product_code, quantity, unit_price,
			subtotal, discount_percent, discount_amount, tax_amount, total, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING id, sale_id, product_id, product_name, product_code, quantity, unit_price,
			subtotal, discount_percent, discount_amount, tax_amount, total, notes
	`, arg.SaleID, arg.ProductID, arg.ProductName, arg.ProductCode, arg.Quantity, arg.UnitPrice,
		arg.Subtotal, arg.DiscountPercent, arg.DiscountAmount, arg.TaxAmount, arg.Total, arg.Notes)

	var it SaleItem
	err := row.Scan(&it.ID, &it.SaleID, &it.ProductID, &it.ProductName, &it.ProductCode,
		&it.Quantity, &it.UnitPrice, &it.Subtotal, &it.DiscountPercent, &it.DiscountAmount,
		&it.TaxAmount, &it.Total, &it.Notes)
	return it, err
}

type CreateSalePaymentParams struct {
	SaleID         uuid.UUID
	Method         string
	Amount         pgtype.Numeric
	ReceivedAmount pgtype.Numeric
	ChangeGiven    pgtype.Numeric
	Reference      pgtype.Text
	Bank           pgtype.Text
	CardBrand      pgtype.Text
	Notes          pgtype.Text
}

func (q *Queries) CreateSalePayment(ctx context.Context, arg CreateSalePaymentParams) (SalePayment, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO sale_payments (
			sale_id, method, amount, received_amount, change_given,
			reference, bank, card_brand, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, sale_id, method, amount, received_amount, change_given,
			reference, bank, card_brand, notes
	`, arg.SaleID, arg.Method, arg.Amount, arg.ReceivedAmount, arg.ChangeGiven,
		arg.Reference, arg.Bank, arg.CardBrand, arg.Notes)

	var p SalePayment
	err := row.Scan(&p.ID, &p.SaleID, &p.Method, &p.Amount, &p.ReceivedAmount,
		&p.ChangeGiven, &p.Reference, &p.Bank, &p.CardBrand, &p.Notes)
	return p, err
}

type GetSaleParams struct {
	ID       uuid.UUID
	TenantID uuid.UUID
}

func (q *Queries) GetSale(ctx context.Context, arg GetSaleParams) (Sale, error) {
	row := q.db.QueryRow(ctx, `
		SELECT`+saleColumns+`
		FROM sales
		WHERE id = $1 AND tenant_id = $2
	`, arg.ID, arg.TenantID)
	return scanSale(row)
}

// GetSaleForUpdate locks the sale row so concurrent cancellations serialize.
func (q *Queries) GetSaleForUpdate(ctx context.Context, arg GetSaleParams) (Sale, error) {
	row := q.db.QueryRow(ctx, `
		SELECT`+saleColumns+`
		FROM sales
		WHERE id = $1 AND tenant_id = $2
		FOR UPDATE
	`, arg.ID, arg.TenantID)
	return scanSale(row)
}

type CancelSaleParams struct {
	ID          uuid.UUID
	TenantID    uuid.UUID
	Reason      string
	CancelledAt time.Time
}

func (q *Queries) CancelSale(ctx context.Context, arg CancelSaleParams) (Sale, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE sales
		SET status = 'CANCELLED', cancelled_at = $3, cancel_reason = $4, updated_at = now()
		WHERE id = $1 AND tenant_id = $2
		RETURNING`+saleColumns+`
	`, arg.ID, arg.TenantID, arg.CancelledAt, arg.Reason)
	return scanSale(row)
}

type ListSalesParams struct {
	TenantID  uuid.UUID
	CreatedBy pgtype.UUID
	StartDate pgtype.Timestamptz
	EndDate   pgtype.Timestamptz
	Limit     int32
	Offset    int32
}

func (q *Queries) ListSales(ctx context.Context, arg ListSalesParams) ([]Sale, error) {
	rows, err := q.db.Query(ctx, `
		SELECT`+saleColumns+`
		FROM sales
		WHERE tenant_id = $1
		AND ($2::uuid IS NULL OR created_by = $2)
		AND ($3::timestamptz IS NULL OR created_at >= $3)
		AND ($4::timestamptz IS NULL OR created_at < $4)
		ORDER BY created_at DESC
		LIMIT $5 OFFSET $6
	`, arg.TenantID, arg.CreatedBy, arg.StartDate, arg.EndDate, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sales []Sale
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			return nil, err
		}
		sales = append(sales, s)
	}
	return sales, rows.Err()
}

func (q *Queries) ListSaleItems(ctx context.Context, saleID uuid.UUID) ([]SaleItem, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, sale_id, product_id, product_name, product_code, quantity, unit_price,
			subtotal, discount_percent, discount_amount, tax_amount, total, notes
		FROM sale_items
		WHERE sale_id = $1
		ORDER BY line_no
	`, saleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []SaleItem
	for rows.Next() {
		var it SaleItem
		if err := rows.Scan(&it.ID, &it.SaleID, &it.ProductID, &it.ProductName, &it.ProductCode,
			&it.Quantity, &it.UnitPrice, &it.Subtotal, &it.DiscountPercent, &it.DiscountAmount,
			&it.TaxAmount, &it.Total, &it.Notes); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

func (q *Queries) ListSalePayments(ctx context.Context, saleID uuid.UUID) ([]SalePayment, error) {
	rows, err := q.db.Query(ctx, `
		SELECT id, sale_id, method, amount, received_amount, change_given,
			reference, bank, card_brand, notes
		FROM sale_payments
		WHERE sale_id = $1
		ORDER BY line_no
	`, saleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payments []SalePayment
	for rows.Next() {
		var p SalePayment
		if err := rows.Scan(&p.ID, &p.SaleID, &p.Method, &p.Amount, &p.ReceivedAmount,
			&p.ChangeGiven, &p.Reference, &p.Bank, &p.CardBrand, &p.Notes); err != nil {
			return nil, err
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

type GetTodaySummaryParams struct {
	TenantID uuid.UUID
	DayStart time.Time
	DayEnd   time.Time
}

type GetTodaySummaryRow struct {
	TotalAmount pgtype.Numeric
	SaleCount   int64
}

// GetTodaySummary aggregates COMPLETED sales only; cancelled sales never count.
func (q *Queries) GetTodaySummary(ctx context.Context, arg GetTodaySummaryParams) (GetTodaySummaryRow, error) {
	row := q.db.QueryRow(ctx, `
		SELECT COALESCE(SUM(total), 0), COUNT(*)
		FROM sales
		WHERE tenant_id = $1 AND status = 'COMPLETED'
		AND created_at >= $2 AND created_at < $3
	`, arg.TenantID, arg.DayStart, arg.DayEnd)

	var r GetTodaySummaryRow
	err := row.Scan(&r.TotalAmount, &r.SaleCount)
	return r, err
}

func scanSale(row pgx.Row) (Sale, error) {
	var s Sale
	err := row.Scan(
		&s.ID, &s.TenantID, &s.Number, &s.Status, &s.Note, &s.CustomerID, &s.CreatedBy,
		&s.Subtotal, &s.DiscountTotal, &s.TaxTotal, &s.Total,
		&s.CancelledAt, &s.CancelReason, &s.CreatedAt, &s.UpdatedAt,
	)
	return s, err
}
