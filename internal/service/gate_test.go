package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/vendopos/api/internal/enum"
	"github.com/vendopos/api/internal/store"
)

func TestPosGate_NilConfigIsPermissive(t *testing.T) {
	gate := posGate{}

	if !gate.discountsAllowed() {
		t.Error("nil config should allow discounts")
	}
	if !gate.maxDiscountPercent().Equal(decimal.NewFromInt(100)) {
		t.Errorf("nil config max discount = %v, want 100", gate.maxDiscountPercent())
	}
	if gate.cancelWindow() != 30*time.Minute {
		t.Errorf("nil config cancel window = %v, want 30m", gate.cancelWindow())
	}
	for _, m := range []string{enum.PaymentMethodCash, enum.PaymentMethodCard, enum.PaymentMethodTransfer, enum.PaymentMethodCredit} {
		if !gate.methodEnabled(m) {
			t.Errorf("nil config should enable %s", m)
		}
	}
	if _, ok := gate.defaultTaxID(); ok {
		t.Error("nil config should have no default tax")
	}
}

func TestPosGate_MethodFlags(t *testing.T) {
	cfg := store.POSConfig{
		CashEnabled:     true,
		CardEnabled:     false,
		TransferEnabled: true,
		CreditEnabled:   false,
	}
	gate := posGate{cfg: &cfg}

	if !gate.methodEnabled(enum.PaymentMethodCash) {
		t.Error("CASH should be enabled")
	}
	if gate.methodEnabled(enum.PaymentMethodCard) {
		t.Error("CARD should be disabled")
	}
	if !gate.methodEnabled(enum.PaymentMethodTransfer) {
		t.Error("TRANSFER should be enabled")
	}
	if gate.methodEnabled(enum.PaymentMethodCredit) {
		t.Error("CREDIT should be disabled")
	}
	if gate.methodEnabled("BARTER") {
		t.Error("unknown methods are never enabled")
	}
}

func TestPosGate_CancelWindowFromConfig(t *testing.T) {
	cfg := store.POSConfig{CancelWindowMinutes: 5}
	gate := posGate{cfg: &cfg}
	if gate.cancelWindow() != 5*time.Minute {
		t.Errorf("cancel window = %v, want 5m", gate.cancelWindow())
	}
}

func TestFormatSequenceNumber(t *testing.T) {
	tests := []struct {
		prefix string
		n      int64
		want   string
	}{
		{"REC", 1, "REC-000001"},
		{"REC", 42, "REC-000042"},
		{"TKT", 999999, "TKT-999999"},
		{"FAC", 1000000, "FAC-1000000"},
	}
	for _, tt := range tests {
		if got := formatSequenceNumber(tt.prefix, tt.n); got != tt.want {
			t.Errorf("formatSequenceNumber(%q, %d) = %q, want %q", tt.prefix, tt.n, got, tt.want)
		}
	}
}

func TestReceiptPrefixOrDefault(t *testing.T) {
	if got := receiptPrefixOrDefault(""); got != "REC" {
		t.Errorf("empty prefix = %q, want REC", got)
	}
	if got := receiptPrefixOrDefault("TKT"); got != "TKT" {
		t.Errorf("custom prefix = %q, want TKT", got)
	}
	if got := invoicePrefixOrDefault(""); got != "FAC" {
		t.Errorf("empty invoice prefix = %q, want FAC", got)
	}
}
