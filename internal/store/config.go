package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const posConfigColumns = `
	tenant_id, receipt_prefix, next_receipt_number, invoice_prefix, next_invoice_number,
	default_tax_id, max_discount_percent, discounts_allowed, cancel_window_minutes,
	cash_enabled, card_enabled, transfer_enabled, credit_enabled,
	currency_symbol, currency_decimals`

// EnsureDefaultPOSConfig lazily seeds a permissive config row for tenants that
// have never been configured, so a fresh tenant can transact immediately.
// Running it inside the sale transaction keeps the seed atomic with the sale.
func (q *Queries) EnsureDefaultPOSConfig(ctx context.Context, tenantID uuid.UUID) error {
	_, err := q.db.Exec(ctx, `
		INSERT INTO pos_config (
			tenant_id, receipt_prefix, next_receipt_number, invoice_prefix, next_invoice_number,
			max_discount_percent, discounts_allowed, cancel_window_minutes,
			cash_enabled, card_enabled, transfer_enabled, credit_enabled,
			currency_symbol, currency_decimals
		) VALUES ($1, 'REC', 1, 'FAC', 1, 100, true, 30, true, true, true, true, '$', 2)
		ON CONFLICT (tenant_id) DO NOTHING
	`, tenantID)
	return err
}

func (q *Queries) GetPOSConfig(ctx context.Context, tenantID uuid.UUID) (POSConfig, error) {
	row := q.db.QueryRow(ctx, `
		SELECT`+posConfigColumns+`
		FROM pos_config
		WHERE tenant_id = $1
	`, tenantID)
	return scanPOSConfig(row)
}

// GetPOSConfigForUpdate locks the tenant's config row for the duration of the
// enclosing transaction. Concurrent sale creations for the same tenant
// serialize on this lock, which is what keeps sequence numbers unique.
func (q *Queries) GetPOSConfigForUpdate(ctx context.Context, tenantID uuid.UUID) (POSConfig, error) {
	row := q.db.QueryRow(ctx, `
		SELECT`+posConfigColumns+`
		FROM pos_config
		WHERE tenant_id = $1
		FOR UPDATE
	`, tenantID)
	return scanPOSConfig(row)
}

func (q *Queries) IncrementReceiptSequence(ctx context.Context, tenantID uuid.UUID) error {
	_, err := q.db.Exec(ctx, `
		UPDATE pos_config
		SET next_receipt_number = next_receipt_number + 1, updated_at = now()
		WHERE tenant_id = $1
	`, tenantID)
	return err
}

func (q *Queries) IncrementInvoiceSequence(ctx context.Context, tenantID uuid.UUID) error {
	_, err := q.db.Exec(ctx, `
		UPDATE pos_config
		SET next_invoice_number = next_invoice_number + 1, updated_at = now()
		WHERE tenant_id = $1
	`, tenantID)
	return err
}

func scanPOSConfig(row pgx.Row) (POSConfig, error) {
	var c POSConfig
	err := row.Scan(
		&c.TenantID, &c.ReceiptPrefix, &c.NextReceiptNumber, &c.InvoicePrefix, &c.NextInvoiceNumber,
		&c.DefaultTaxID, &c.MaxDiscountPercent, &c.DiscountsAllowed, &c.CancelWindowMinutes,
		&c.CashEnabled, &c.CardEnabled, &c.TransferEnabled, &c.CreditEnabled,
		&c.CurrencySymbol, &c.CurrencyDecimals,
	)
	return c, err
}
