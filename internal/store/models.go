package store

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

// Sale is the aggregate header. Totals satisfy
// total = subtotal - discount_total + tax_total at all times.
type Sale struct {
	ID            uuid.UUID
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
	CancelledAt   pgtype.Timestamptz
	CancelReason  pgtype.Text
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// SaleItem denormalizes the product name and code at creation time so
// historical sales survive later product edits.
type SaleItem struct {
	ID              uuid.UUID
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

type SalePayment struct {
	ID             uuid.UUID
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

// POSConfig is one row per tenant. The sequence counters are mutated by sale
// creation under a row lock.
type POSConfig struct {
	TenantID            uuid.UUID
	ReceiptPrefix       string
	NextReceiptNumber   int64
	InvoicePrefix       string
	NextInvoiceNumber   int64
	DefaultTaxID        pgtype.UUID
	MaxDiscountPercent  pgtype.Numeric
	DiscountsAllowed    bool
	CancelWindowMinutes int32
	CashEnabled         bool
	CardEnabled         bool
	TransferEnabled     bool
	CreditEnabled       bool
	CurrencySymbol      string
	CurrencyDecimals    int32
}

type Tax struct {
	ID        uuid.UUID
	TenantID  uuid.UUID
	Name      string
	Type      string
	Rate      pgtype.Numeric
	Amount    pgtype.Numeric
	IsDefault bool
	Active    bool
}
