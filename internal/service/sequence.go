package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

const (
	defaultReceiptPrefix = "REC"
	defaultInvoicePrefix = "FAC"
)

// formatSequenceNumber renders a tenant-scoped document number, e.g.
// "REC-000042". Prefixes come from the tenant config; the defaults exist for
// tooling that formats numbers without a config row at hand.
func formatSequenceNumber(prefix string, n int64) string {
	return fmt.Sprintf("%s-%06d", prefix, n)
}

func receiptPrefixOrDefault(prefix string) string {
	if prefix == "" {
		return defaultReceiptPrefix
	}
	return prefix
}

func invoicePrefixOrDefault(prefix string) string {
	if prefix == "" {
		return defaultInvoicePrefix
	}
	return prefix
}

// IssueInvoiceNumber issues the tenant's next invoice number. The counter read
// and increment share one transaction with the config row locked, so the
// number either commits with the increment or neither happens. Receipt numbers
// are issued the same way inside CreateSale.
func (s *SaleService) IssueInvoiceNumber(ctx context.Context, tenantID uuid.UUID) (string, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	st := s.newStore(tx)

	if err := st.EnsureDefaultPOSConfig(ctx, tenantID); err != nil {
		return "", fmt.Errorf("ensure pos config: %w", err)
	}
	cfg, err := st.GetPOSConfigForUpdate(ctx, tenantID)
	if err != nil {
		return "", fmt.Errorf("lock pos config: %w", err)
	}

	number := formatSequenceNumber(invoicePrefixOrDefault(cfg.InvoicePrefix), cfg.NextInvoiceNumber)

	if err := st.IncrementInvoiceSequence(ctx, tenantID); err != nil {
		return "", fmt.Errorf("increment invoice sequence: %w", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return "", fmt.Errorf("commit tx: %w", err)
	}
	return number, nil
}
