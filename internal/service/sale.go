package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"github.com/vendopos/api/internal/cache"
	"github.com/vendopos/api/internal/enum"
	"github.com/vendopos/api/internal/store"
)

// paymentTolerance absorbs currency rounding when comparing the payment sum
// against the sale total.
var paymentTolerance = decimal.NewFromFloat(0.01)

const maxCancelReasonLen = 500

// Errors returned by the sale service. Validation and business-rule failures
// are sentinels so handlers can map them to status codes.
var (
	ErrEmptyItems              = errors.New("items are required")
	ErrEmptyPayments           = errors.New("payments are required")
	ErrInvalidQuantity         = errors.New("quantity must be > 0")
	ErrInvalidUnitPrice        = errors.New("unit_price must be >= 0")
	ErrInvalidDiscountPercent  = errors.New("discount_percent must be between 0 and 100")
	ErrInvalidDiscountAmount   = errors.New("discount_amount must be >= 0")
	ErrInvalidProductID        = errors.New("invalid product_id")
	ErrInvalidCustomerID       = errors.New("invalid customer_id")
	ErrInvalidPaymentAmount    = errors.New("payment amount must be > 0")
	ErrInvalidPaymentMethod    = errors.New("invalid payment method")
	ErrCardDetailsRequired     = errors.New("CARD payments require card_brand and reference")
	ErrTransferDetailsRequired = errors.New("TRANSFER payments require bank and reference")
	ErrProductNotFound         = errors.New("product not found")
	ErrCustomerNotFound        = errors.New("customer not found")
	ErrSaleNotFound            = errors.New("sale not found")
	ErrDiscountsDisabled       = errors.New("discounts are disabled for this tenant")
	ErrDiscountOverLimit       = errors.New("discount_percent exceeds tenant maximum")
	ErrPaymentMethodDisabled   = errors.New("payment method is disabled for this tenant")
	ErrPaymentMismatch         = errors.New("payment total does not match sale total")
	ErrAlreadyCancelled        = errors.New("sale is already cancelled")
	ErrCancelWindowExceeded    = errors.New("cancellation window exceeded")
	ErrReasonRequired          = errors.New("cancellation reason is required")
	ErrReasonTooLong           = errors.New("cancellation reason exceeds 500 characters")
)

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// SaleStore defines the DB methods the sale engine needs.
// Satisfied by *store.Queries (pool- or tx-backed).
type SaleStore interface {
	EnsureDefaultPOSConfig(ctx context.Context, tenantID uuid.UUID) error
	GetPOSConfig(ctx context.Context, tenantID uuid.UUID) (store.POSConfig, error)
	GetPOSConfigForUpdate(ctx context.Context, tenantID uuid.UUID) (store.POSConfig, error)
	IncrementReceiptSequence(ctx context.Context, tenantID uuid.UUID) error
	IncrementInvoiceSequence(ctx context.Context, tenantID uuid.UUID) error
	GetActiveTax(ctx context.Context, arg store.GetActiveTaxParams) (store.Tax, error)
	GetProductForSale(ctx context.Context, arg store.GetProductForSaleParams) (store.GetProductForSaleRow, error)
	CustomerExists(ctx context.Context, arg store.CustomerExistsParams) (bool, error)
	GetCustomerName(ctx context.Context, arg store.GetCustomerNameParams) (string, error)
	GetUserName(ctx context.Context, id uuid.UUID) (string, error)
	CreateSale(ctx context.Context, arg store.CreateSaleParams) (store.Sale, error)
	CreateSaleItem(ctx context.Context, arg store.CreateSaleItemParams) (store.SaleItem, error)
	CreateSalePayment(ctx context.Context, arg store.CreateSalePaymentParams) (store.SalePayment, error)
	GetSale(ctx context.Context, arg store.GetSaleParams) (store.Sale, error)
	GetSaleForUpdate(ctx context.Context, arg store.GetSaleParams) (store.Sale, error)
	CancelSale(ctx context.Context, arg store.CancelSaleParams) (store.Sale, error)
	ListSales(ctx context.Context, arg store.ListSalesParams) ([]store.Sale, error)
	ListSaleItems(ctx context.Context, saleID uuid.UUID) ([]store.SaleItem, error)
	ListSalePayments(ctx context.Context, saleID uuid.UUID) ([]store.SalePayment, error)
	GetTodaySummary(ctx context.Context, arg store.GetTodaySummaryParams) (store.GetTodaySummaryRow, error)
}

// NewSaleStore creates a SaleStore from a DBTX (pool or tx), so the engine
// can run its query set inside its own transactions.
type NewSaleStore func(db store.DBTX) SaleStore

// SaleService implements the sale-creation and ledger-consistency workflow.
type SaleService struct {
	pool     TxBeginner
	newStore NewSaleStore
	store    SaleStore
	cache    cache.POSConfigCache
}

func NewSaleService(pool TxBeginner, newStore NewSaleStore, st SaleStore, c cache.POSConfigCache) *SaleService {
	if c == nil {
		c = cache.NoopPOSConfigCache{}
	}
	return &SaleService{pool: pool, newStore: newStore, store: st, cache: c}
}

// --- Request / result types ---

// CreateSaleRequest is the validated input for creating a sale. Monetary
// fields travel as decimal strings; empty means absent.
type CreateSaleRequest struct {
	TenantID   uuid.UUID
	CreatedBy  uuid.UUID
	Note       string
	CustomerID string
	Items      []CreateSaleItemRequest
	Payments   []CreateSalePaymentRequest
}

type CreateSaleItemRequest struct {
	ProductID       string
	Quantity        string
	UnitPrice       string
	DiscountPercent string
	DiscountAmount  string
	Notes           string
}

type CreateSalePaymentRequest struct {
	Method         string
	Amount         string
	ReceivedAmount string
	Reference      string
	Bank           string
	CardBrand      string
	Notes          string
}

// SaleDetail is a fully materialized sale: header, lines, payments, and the
// denormalized customer/user display names.
type SaleDetail struct {
	Sale         store.Sale
	Items        []store.SaleItem
	Payments     []store.SalePayment
	CustomerName string
	UserName     string
}

type CancelSaleRequest struct {
	TenantID uuid.UUID
	SaleID   uuid.UUID
	Reason   string
}

type ListSalesRequest struct {
	TenantID uuid.UUID
	UserID   *uuid.UUID
	Start    *time.Time
	End      *time.Time
	Page     int
	PageSize int
}

type TodaySummary struct {
	TotalAmount decimal.Decimal
	SaleCount   int64
	Date        time.Time
}

// --- CreateSale ---

// parsedItem carries an item request after shape validation.
type parsedItem struct {
	productID       uuid.UUID
	quantity        decimal.Decimal
	unitPrice       decimal.Decimal
	discountPercent decimal.Decimal
	discountAmount  decimal.Decimal
	notes           string
}

// parsedPayment carries a payment request after shape validation.
type parsedPayment struct {
	method   string
	amount   decimal.Decimal
	received decimal.Decimal
	hasRecv  bool
	req      CreateSalePaymentRequest
}

// CreateSale validates the request, computes discount/tax/totals per line under
// the tenant's rules, validates payments against the computed total, and
// persists the whole aggregate in one transaction. The receipt number is
// issued inside that transaction, so the counter increment commits or rolls
// back with the sale.
func (s *SaleService) CreateSale(ctx context.Context, req CreateSaleRequest) (*SaleDetail, error) {
	items, payments, err := parseCreateSaleRequest(req)
	if err != nil {
		return nil, err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	st := s.newStore(tx)

	// --- Tenant config, locked for the duration of the transaction ---
	if err := st.EnsureDefaultPOSConfig(ctx, req.TenantID); err != nil {
		return nil, fmt.Errorf("ensure pos config: %w", err)
	}
	cfg, err := st.GetPOSConfigForUpdate(ctx, req.TenantID)
	if err != nil {
		return nil, fmt.Errorf("lock pos config: %w", err)
	}
	gate := posGate{cfg: &cfg}

	// --- Customer, if given ---
	customerID := pgtype.UUID{}
	customerName := ""
	if req.CustomerID != "" {
		cid, err := uuid.Parse(req.CustomerID)
		if err != nil {
			return nil, ErrInvalidCustomerID
		}
		exists, err := st.CustomerExists(ctx, store.CustomerExistsParams{ID: cid, TenantID: req.TenantID})
		if err != nil {
			return nil, fmt.Errorf("check customer: %w", err)
		}
		if !exists {
			return nil, ErrCustomerNotFound
		}
		customerID = pgtype.UUID{Bytes: cid, Valid: true}
		customerName, err = st.GetCustomerName(ctx, store.GetCustomerNameParams{ID: cid, TenantID: req.TenantID})
		if err != nil {
			return nil, fmt.Errorf("get customer name: %w", err)
		}
	}

	// --- Receipt number from the locked counter ---
	number := formatSequenceNumber(receiptPrefixOrDefault(cfg.ReceiptPrefix), cfg.NextReceiptNumber)

	// --- Tenant default tax ---
	var defaultTax *store.Tax
	if taxID, ok := gate.defaultTaxID(); ok {
		t, err := st.GetActiveTax(ctx, store.GetActiveTaxParams{ID: taxID, TenantID: req.TenantID})
		if err != nil {
			if !errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("get default tax: %w", err)
			}
			// Configured tax was deactivated or removed: sell untaxed.
		} else {
			defaultTax = &t
		}
	}

	// --- Lines: resolve products, apply discount/tax math, accumulate totals ---
	subtotal := decimal.Zero
	discountTotal := decimal.Zero
	taxTotal := decimal.Zero

	var itemParams []store.CreateSaleItemParams
	for i, item := range items {
		product, err := st.GetProductForSale(ctx, store.GetProductForSaleParams{
			ID:       item.productID,
			TenantID: req.TenantID,
		})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("items[%d]: %w", i, ErrProductNotFound)
			}
			return nil, fmt.Errorf("items[%d]: get product: %w", i, err)
		}

		// All line figures are rounded to 2 decimals as they are computed,
		// and the header totals accumulate the rounded values. The persisted
		// header always equals the sum of the persisted lines.
		lineSubtotal := item.quantity.Mul(item.unitPrice).Round(2)

		// Percent discounts are checked against the tenant ceiling; amount
		// discounts are not.
		discount := decimal.Zero
		if item.discountPercent.IsPositive() {
			if !gate.discountsAllowed() {
				return nil, fmt.Errorf("items[%d]: %w", i, ErrDiscountsDisabled)
			}
			if item.discountPercent.GreaterThan(gate.maxDiscountPercent()) {
				return nil, fmt.Errorf("items[%d]: %w", i, ErrDiscountOverLimit)
			}
			discount = lineSubtotal.Mul(item.discountPercent).Div(decimal.NewFromInt(100)).Round(2)
		} else if item.discountAmount.IsPositive() {
			discount = item.discountAmount.Round(2)
		}

		taxable := lineSubtotal.Sub(discount)
		tax := ComputeTax(taxable, defaultTax).Round(2)
		lineTotal := taxable.Add(tax)

		subtotal = subtotal.Add(lineSubtotal)
		discountTotal = discountTotal.Add(discount)
		taxTotal = taxTotal.Add(tax)

		itemParams = append(itemParams, store.CreateSaleItemParams{
			ProductID:       item.productID,
			ProductName:     product.Name,
			ProductCode:     product.Code,
			Quantity:        decimalToNumeric(item.quantity),
			UnitPrice:       decimalToNumeric(item.unitPrice),
			Subtotal:        decimalToNumeric(lineSubtotal),
			DiscountPercent: decimalToNumeric(item.discountPercent),
			DiscountAmount:  decimalToNumeric(discount),
			TaxAmount:       decimalToNumeric(tax),
			Total:           decimalToNumeric(lineTotal),
			Notes:           textOrNull(item.notes),
		})
	}

	total := subtotal.Sub(discountTotal).Add(taxTotal)

	// --- Payments: method gate, then sum check against the computed total ---
	totalPaid := decimal.Zero
	var paymentParams []store.CreateSalePaymentParams
	for i, p := range payments {
		if !gate.methodEnabled(p.method) {
			return nil, fmt.Errorf("payments[%d]: %w: %s", i, ErrPaymentMethodDisabled, p.method)
		}

		received := pgtype.Numeric{}
		change := pgtype.Numeric{}
		if p.hasRecv {
			received = decimalToNumeric(p.received)
			if p.received.GreaterThanOrEqual(p.amount) {
				change = decimalToNumeric(p.received.Sub(p.amount))
			}
		}

		totalPaid = totalPaid.Add(p.amount)
		paymentParams = append(paymentParams, store.CreateSalePaymentParams{
			Method:         p.method,
			Amount:         decimalToNumeric(p.amount),
			ReceivedAmount: received,
			ChangeGiven:    change,
			Reference:      textOrNull(p.req.Reference),
			Bank:           textOrNull(p.req.Bank),
			CardBrand:      textOrNull(p.req.CardBrand),
			Notes:          textOrNull(p.req.Notes),
		})
	}

	if totalPaid.Sub(total).Abs().GreaterThan(paymentTolerance) {
		return nil, fmt.Errorf("%w: paid %s, due %s",
			ErrPaymentMismatch, totalPaid.StringFixed(2), total.StringFixed(2))
	}

	// --- Persist the aggregate ---
	sale, err := st.CreateSale(ctx, store.CreateSaleParams{
		TenantID:      req.TenantID,
		Number:        number,
		Status:        enum.SaleStatusCompleted,
		Note:          textOrNull(req.Note),
		CustomerID:    customerID,
		CreatedBy:     req.CreatedBy,
		Subtotal:      decimalToNumeric(subtotal),
		DiscountTotal: decimalToNumeric(discountTotal),
		TaxTotal:      decimalToNumeric(taxTotal),
		Total:         decimalToNumeric(total),
	})
	if err != nil {
		return nil, fmt.Errorf("create sale: %w", err)
	}

	var createdItems []store.SaleItem
	for _, ip := range itemParams {
		ip.SaleID = sale.ID
		it, err := st.CreateSaleItem(ctx, ip)
		if err != nil {
			return nil, fmt.Errorf("create sale item: %w", err)
		}
		createdItems = append(createdItems, it)
	}

	var createdPayments []store.SalePayment
	for _, pp := range paymentParams {
		pp.SaleID = sale.ID
		sp, err := st.CreateSalePayment(ctx, pp)
		if err != nil {
			return nil, fmt.Errorf("create sale payment: %w", err)
		}
		createdPayments = append(createdPayments, sp)
	}

	if err := st.IncrementReceiptSequence(ctx, req.TenantID); err != nil {
		return nil, fmt.Errorf("increment receipt sequence: %w", err)
	}

	userName, err := st.GetUserName(ctx, req.CreatedBy)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("get user name: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &SaleDetail{
		Sale:         sale,
		Items:        createdItems,
		Payments:     createdPayments,
		CustomerName: customerName,
		UserName:     userName,
	}, nil
}

// parseCreateSaleRequest validates request shape before any DB work.
func parseCreateSaleRequest(req CreateSaleRequest) ([]parsedItem, []parsedPayment, error) {
	if len(req.Items) == 0 {
		return nil, nil, ErrEmptyItems
	}
	if len(req.Payments) == 0 {
		return nil, nil, ErrEmptyPayments
	}

	items := make([]parsedItem, 0, len(req.Items))
	for i, item := range req.Items {
		productID, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, nil, fmt.Errorf("items[%d]: %w", i, ErrInvalidProductID)
		}

		qty, err := decimal.NewFromString(item.Quantity)
		if err != nil || !qty.IsPositive() {
			return nil, nil, fmt.Errorf("items[%d]: %w", i, ErrInvalidQuantity)
		}

		price, err := decimal.NewFromString(item.UnitPrice)
		if err != nil || price.IsNegative() {
			return nil, nil, fmt.Errorf("items[%d]: %w", i, ErrInvalidUnitPrice)
		}

		pct := decimal.Zero
		if item.DiscountPercent != "" {
			pct, err = decimal.NewFromString(item.DiscountPercent)
			if err != nil || pct.IsNegative() || pct.GreaterThan(decimal.NewFromInt(100)) {
				return nil, nil, fmt.Errorf("items[%d]: %w", i, ErrInvalidDiscountPercent)
			}
		}

		amt := decimal.Zero
		if item.DiscountAmount != "" {
			amt, err = decimal.NewFromString(item.DiscountAmount)
			if err != nil || amt.IsNegative() {
				return nil, nil, fmt.Errorf("items[%d]: %w", i, ErrInvalidDiscountAmount)
			}
		}

		items = append(items, parsedItem{
			productID:       productID,
			quantity:        qty,
			unitPrice:       price,
			discountPercent: pct,
			discountAmount:  amt,
			notes:           item.Notes,
		})
	}

	payments := make([]parsedPayment, 0, len(req.Payments))
	for i, p := range req.Payments {
		if !enum.IsValidPaymentMethod(p.Method) {
			return nil, nil, fmt.Errorf("payments[%d]: %w: %q", i, ErrInvalidPaymentMethod, p.Method)
		}

		amount, err := decimal.NewFromString(p.Amount)
		if err != nil || !amount.IsPositive() {
			return nil, nil, fmt.Errorf("payments[%d]: %w", i, ErrInvalidPaymentAmount)
		}

		// Method-specific required fields are request validation: they fail
		// before the tenant's enabled-method gate is even consulted.
		switch p.Method {
		case enum.PaymentMethodCard:
			if p.CardBrand == "" || p.Reference == "" {
				return nil, nil, fmt.Errorf("payments[%d]: %w", i, ErrCardDetailsRequired)
			}
		case enum.PaymentMethodTransfer:
			if p.Bank == "" || p.Reference == "" {
				return nil, nil, fmt.Errorf("payments[%d]: %w", i, ErrTransferDetailsRequired)
			}
		}

		pp := parsedPayment{method: p.Method, amount: amount, req: p}
		if p.ReceivedAmount != "" {
			recv, err := decimal.NewFromString(p.ReceivedAmount)
			if err != nil || recv.IsNegative() {
				return nil, nil, fmt.Errorf("payments[%d]: %w", i, ErrInvalidPaymentAmount)
			}
			pp.received = recv
			pp.hasRecv = true
		}
		payments = append(payments, pp)
	}

	return items, payments, nil
}

// --- CancelSale ---

// CancelSale transitions a sale to CANCELLED inside one transaction. The sale
// row is locked first, so two concurrent cancellations cannot interleave.
// Stock is deliberately untouched: cancellation is a pure status transition.
func (s *SaleService) CancelSale(ctx context.Context, req CancelSaleRequest) (*store.Sale, error) {
	if req.Reason == "" {
		return nil, ErrReasonRequired
	}
	if len(req.Reason) > maxCancelReasonLen {
		return nil, ErrReasonTooLong
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	st := s.newStore(tx)

	sale, err := st.GetSaleForUpdate(ctx, store.GetSaleParams{ID: req.SaleID, TenantID: req.TenantID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSaleNotFound
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}

	if sale.Status == enum.SaleStatusCancelled {
		return nil, ErrAlreadyCancelled
	}

	gate, err := s.configGate(ctx, req.TenantID)
	if err != nil {
		return nil, err
	}
	if time.Since(sale.CreatedAt) > gate.cancelWindow() {
		return nil, ErrCancelWindowExceeded
	}

	cancelled, err := st.CancelSale(ctx, store.CancelSaleParams{
		ID:          req.SaleID,
		TenantID:    req.TenantID,
		Reason:      req.Reason,
		CancelledAt: time.Now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("cancel sale: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &cancelled, nil
}

// configGate loads the tenant config for gate checks on the read path,
// consulting the cache first. Cancellation windows and method flags tolerate
// the short staleness; the sale transaction itself never reads through here.
func (s *SaleService) configGate(ctx context.Context, tenantID uuid.UUID) (posGate, error) {
	if cfg, ok, err := s.cache.Get(ctx, tenantID); err == nil && ok {
		return posGate{cfg: cfg}, nil
	}

	cfg, err := s.store.GetPOSConfig(ctx, tenantID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return posGate{}, nil
		}
		return posGate{}, fmt.Errorf("get pos config: %w", err)
	}

	_ = s.cache.Set(ctx, tenantID, &cfg, cache.POSConfigTTL)
	return posGate{cfg: &cfg}, nil
}

// --- Queries ---

func (s *SaleService) GetSale(ctx context.Context, tenantID, saleID uuid.UUID) (*SaleDetail, error) {
	sale, err := s.store.GetSale(ctx, store.GetSaleParams{ID: saleID, TenantID: tenantID})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSaleNotFound
		}
		return nil, fmt.Errorf("get sale: %w", err)
	}

	items, err := s.store.ListSaleItems(ctx, saleID)
	if err != nil {
		return nil, fmt.Errorf("list sale items: %w", err)
	}
	payments, err := s.store.ListSalePayments(ctx, saleID)
	if err != nil {
		return nil, fmt.Errorf("list sale payments: %w", err)
	}

	detail := &SaleDetail{Sale: sale, Items: items, Payments: payments}

	if sale.CustomerID.Valid {
		name, err := s.store.GetCustomerName(ctx, store.GetCustomerNameParams{
			ID:       uuid.UUID(sale.CustomerID.Bytes),
			TenantID: tenantID,
		})
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("get customer name: %w", err)
		}
		detail.CustomerName = name
	}

	name, err := s.store.GetUserName(ctx, sale.CreatedBy)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("get user name: %w", err)
	}
	detail.UserName = name

	return detail, nil
}

func (s *SaleService) ListSales(ctx context.Context, req ListSalesRequest) ([]store.Sale, error) {
	if req.Page < 1 {
		req.Page = 1
	}
	if req.PageSize < 1 {
		req.PageSize = 20
	}
	if req.PageSize > 100 {
		req.PageSize = 100
	}

	params := store.ListSalesParams{
		TenantID: req.TenantID,
		Limit:    int32(req.PageSize),
		Offset:   int32((req.Page - 1) * req.PageSize),
	}
	if req.UserID != nil {
		params.CreatedBy = pgtype.UUID{Bytes: *req.UserID, Valid: true}
	}
	if req.Start != nil {
		params.StartDate = pgtype.Timestamptz{Time: *req.Start, Valid: true}
	}
	if req.End != nil {
		params.EndDate = pgtype.Timestamptz{Time: *req.End, Valid: true}
	}

	sales, err := s.store.ListSales(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	return sales, nil
}

// TodaySummary aggregates COMPLETED sales for the current UTC calendar day.
// Day boundaries are UTC on purpose; reports elsewhere depend on it.
func (s *SaleService) TodaySummary(ctx context.Context, tenantID uuid.UUID) (TodaySummary, error) {
	now := time.Now().UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)

	row, err := s.store.GetTodaySummary(ctx, store.GetTodaySummaryParams{
		TenantID: tenantID,
		DayStart: dayStart,
		DayEnd:   dayStart.Add(24 * time.Hour),
	})
	if err != nil {
		return TodaySummary{}, fmt.Errorf("get today summary: %w", err)
	}

	return TodaySummary{
		TotalAmount: numericToDecimal(row.TotalAmount),
		SaleCount:   row.SaleCount,
		Date:        dayStart,
	}, nil
}

// --- Helpers ---

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}

func textOrNull(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{}
	}
	return pgtype.Text{String: s, Valid: true}
}
