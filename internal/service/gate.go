package service

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/vendopos/api/internal/enum"
	"github.com/vendopos/api/internal/store"
)

const defaultCancelWindow = 30 * time.Minute

// posGate answers the operational-rule questions the engine asks of a
// tenant's configuration. A nil config means the tenant has never been
// configured; every answer is then permissive so a fresh tenant can
// transact immediately.
type posGate struct {
	cfg *store.POSConfig
}

func (g posGate) maxDiscountPercent() decimal.Decimal {
	if g.cfg == nil {
		return decimal.NewFromInt(100)
	}
	return numericToDecimal(g.cfg.MaxDiscountPercent)
}

func (g posGate) discountsAllowed() bool {
	if g.cfg == nil {
		return true
	}
	return g.cfg.DiscountsAllowed
}

func (g posGate) cancelWindow() time.Duration {
	if g.cfg == nil || g.cfg.CancelWindowMinutes <= 0 {
		return defaultCancelWindow
	}
	return time.Duration(g.cfg.CancelWindowMinutes) * time.Minute
}

func (g posGate) methodEnabled(method string) bool {
	if g.cfg == nil {
		return true
	}
	switch method {
	case enum.PaymentMethodCash:
		return g.cfg.CashEnabled
	case enum.PaymentMethodCard:
		return g.cfg.CardEnabled
	case enum.PaymentMethodTransfer:
		return g.cfg.TransferEnabled
	case enum.PaymentMethodCredit:
		return g.cfg.CreditEnabled
	}
	return false
}

func (g posGate) defaultTaxID() (uuid.UUID, bool) {
	if g.cfg == nil || !g.cfg.DefaultTaxID.Valid {
		return uuid.Nil, false
	}
	return uuid.UUID(g.cfg.DefaultTaxID.Bytes), true
}
