package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/vendopos/api/internal/logger"
	"github.com/vendopos/api/internal/middleware"
	"github.com/vendopos/api/internal/service"
	"github.com/vendopos/api/internal/store"
	"github.com/vendopos/api/internal/ws"
)

// SaleServicer defines the service methods needed by sale handlers.
// Satisfied by *service.SaleService; narrow interface for testability.
type SaleServicer interface {
	CreateSale(ctx context.Context, req service.CreateSaleRequest) (*service.SaleDetail, error)
	CancelSale(ctx context.Context, req service.CancelSaleRequest) (*store.Sale, error)
	GetSale(ctx context.Context, tenantID, saleID uuid.UUID) (*service.SaleDetail, error)
	ListSales(ctx context.Context, req service.ListSalesRequest) ([]store.Sale, error)
	TodaySummary(ctx context.Context, tenantID uuid.UUID) (service.TodaySummary, error)
}

// Broadcaster pushes sale events to connected terminals.
// Satisfied by *ws.Hub; nil-safe via NoopBroadcaster.
type Broadcaster interface {
	BroadcastToTenant(tenantID uuid.UUID, event ws.Event)
}

type NoopBroadcaster struct{}

func (NoopBroadcaster) BroadcastToTenant(uuid.UUID, ws.Event) {}

// SaleHandler handles sale endpoints.
type SaleHandler struct {
	svc SaleServicer
	hub Broadcaster
}

func NewSaleHandler(svc SaleServicer, hub Broadcaster) *SaleHandler {
	if hub == nil {
		hub = NoopBroadcaster{}
	}
	return &SaleHandler{svc: svc, hub: hub}
}

// RegisterRoutes registers sale endpoints on the given Chi router.
// Expected to be mounted inside a tenant-scoped subrouter: /tenants/{tid}/sales
func (h *SaleHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/summary/today", h.TodaySummary)
	r.Get("/{id}", h.Get)
	r.Delete("/{id}", h.Cancel)
}

// --- Request / Response types ---

type createSaleRequest struct {
	Note       string                     `json:"note"`
	CustomerID string                     `json:"customer_id"`
	Items      []createSaleItemRequest    `json:"items"`
	Payments   []createSalePaymentRequest `json:"payments"`
}

type createSaleItemRequest struct {
	ProductID       string `json:"product_id"`
	Quantity        string `json:"quantity"`
	UnitPrice       string `json:"unit_price"`
	DiscountPercent string `json:"discount_percent"`
	DiscountAmount  string `json:"discount_amount"`
	Notes           string `json:"notes"`
}

type createSalePaymentRequest struct {
	Method         string `json:"method"`
	Amount         string `json:"amount"`
	ReceivedAmount string `json:"received_amount"`
	Reference      string `json:"reference"`
	Bank           string `json:"bank"`
	CardBrand      string `json:"card_brand"`
	Notes          string `json:"notes"`
}

type cancelSaleRequest struct {
	Reason string `json:"reason"`
}

type saleResponse struct {
	ID            uuid.UUID  `json:"id"`
	TenantID      uuid.UUID  `json:"tenant_id"`
	Number        string     `json:"number"`
	Status        string     `json:"status"`
	Note          *string    `json:"note"`
	CustomerID    *string    `json:"customer_id"`
	CreatedBy     uuid.UUID  `json:"created_by"`
	Subtotal      string     `json:"subtotal"`
	DiscountTotal string     `json:"discount_total"`
	TaxTotal      string     `json:"tax_total"`
	Total         string     `json:"total"`
	CancelledAt   *time.Time `json:"cancelled_at"`
	CancelReason  *string    `json:"cancel_reason"`
	CreatedAt     time.Time  `json:"created_at"`
}

type saleItemResponse struct {
	ID              uuid.UUID `json:"id"`
	ProductID       uuid.UUID `json:"product_id"`
	ProductName     string    `json:"product_name"`
	ProductCode     string    `json:"product_code"`
	Quantity        string    `json:"quantity"`
	UnitPrice       string    `json:"unit_price"`
	Subtotal        string    `json:"subtotal"`
	DiscountPercent string    `json:"discount_percent"`
	DiscountAmount  string    `json:"discount_amount"`
	TaxAmount       string    `json:"tax_amount"`
	Total           string    `json:"total"`
	Notes           *string   `json:"notes"`
}

type salePaymentResponse struct {
	ID             uuid.UUID `json:"id"`
	Method         string    `json:"method"`
	Amount         string    `json:"amount"`
	ReceivedAmount *string   `json:"received_amount"`
	ChangeGiven    *string   `json:"change_given"`
	Reference      *string   `json:"reference"`
	Bank           *string   `json:"bank"`
	CardBrand      *string   `json:"card_brand"`
}

// saleDetailResponse extends saleResponse with lines, payments, and names.
type saleDetailResponse struct {
	saleResponse
	Items        []saleItemResponse    `json:"items"`
	Payments     []salePaymentResponse `json:"payments"`
	CustomerName *string               `json:"customer_name"`
	UserName     *string               `json:"user_name"`
}

// saleListResponse wraps a page of sales with pagination metadata.
type saleListResponse struct {
	Sales    []saleResponse `json:"sales"`
	Page     int            `json:"page"`
	PageSize int            `json:"page_size"`
}

type todaySummaryResponse struct {
	Date        string `json:"date"`
	TotalAmount string `json:"total_amount"`
	SaleCount   int64  `json:"sale_count"`
}

// --- Handlers ---

// Create handles POST /tenants/{tid}/sales.
func (h *SaleHandler) Create(w http.ResponseWriter, r *http.Request) {
	tenantID, err := uuid.Parse(chi.URLParam(r, "tid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid tenant ID"})
		return
	}

	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}

	var req createSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if len(req.Items) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "items are required"})
		return
	}
	if len(req.Payments) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "payments are required"})
		return
	}
	for i, item := range req.Items {
		if item.ProductID == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": formatItemError(i, "product_id is required"),
			})
			return
		}
		if item.Quantity == "" {
			writeJSON(w, http.StatusBadRequest, map[string]string{
				"error": formatItemError(i, "quantity is required"),
			})
			return
		}
	}

	svcItems := make([]service.CreateSaleItemRequest, len(req.Items))
	for i, item := range req.Items {
		svcItems[i] = service.CreateSaleItemRequest{
			ProductID:       item.ProductID,
			Quantity:        item.Quantity,
			UnitPrice:       item.UnitPrice,
			DiscountPercent: item.DiscountPercent,
			DiscountAmount:  item.DiscountAmount,
			Notes:           item.Notes,
		}
	}
	svcPayments := make([]service.CreateSalePaymentRequest, len(req.Payments))
	for i, p := range req.Payments {
		svcPayments[i] = service.CreateSalePaymentRequest{
			Method:         p.Method,
			Amount:         p.Amount,
			ReceivedAmount: p.ReceivedAmount,
			Reference:      p.Reference,
			Bank:           p.Bank,
			CardBrand:      p.CardBrand,
			Notes:          p.Notes,
		}
	}

	detail, err := h.svc.CreateSale(r.Context(), service.CreateSaleRequest{
		TenantID:   tenantID,
		CreatedBy:  claims.UserID,
		Note:       req.Note,
		CustomerID: req.CustomerID,
		Items:      svcItems,
		Payments:   svcPayments,
	})
	if err != nil {
		writeServiceError(w, err, "create sale")
		return
	}

	resp := toSaleDetailResponse(detail)
	h.broadcast(tenantID, ws.EventSaleCreated, resp.saleResponse)
	writeJSON(w, http.StatusCreated, resp)
}

// List handles GET /tenants/{tid}/sales.
// Optional filters: user_id, start_date, end_date (YYYY-MM-DD), page, page_size.
func (h *SaleHandler) List(w http.ResponseWriter, r *http.Request) {
	tenantID, err := uuid.Parse(chi.URLParam(r, "tid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid tenant ID"})
		return
	}

	req := service.ListSalesRequest{TenantID: tenantID, Page: 1, PageSize: 20}

	if s := r.URL.Query().Get("page"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			req.Page = v
		}
	}
	if s := r.URL.Query().Get("page_size"); s != "" {
		if v, err := strconv.Atoi(s); err == nil && v > 0 {
			req.PageSize = v
		}
	}
	if s := r.URL.Query().Get("user_id"); s != "" {
		uid, err := uuid.Parse(s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid user_id"})
			return
		}
		req.UserID = &uid
	}
	if s := r.URL.Query().Get("start_date"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid start_date format, use YYYY-MM-DD"})
			return
		}
		req.Start = &t
	}
	if s := r.URL.Query().Get("end_date"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid end_date format, use YYYY-MM-DD"})
			return
		}
		end := t.Add(24 * time.Hour)
		req.End = &end
	}

	sales, err := h.svc.ListSales(r.Context(), req)
	if err != nil {
		writeServiceError(w, err, "list sales")
		return
	}

	resp := make([]saleResponse, len(sales))
	for i, s := range sales {
		resp[i] = toSaleResponse(s)
	}
	writeJSON(w, http.StatusOK, saleListResponse{
		Sales:    resp,
		Page:     req.Page,
		PageSize: req.PageSize,
	})
}

// Get handles GET /tenants/{tid}/sales/{id}.
func (h *SaleHandler) Get(w http.ResponseWriter, r *http.Request) {
	tenantID, err := uuid.Parse(chi.URLParam(r, "tid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid tenant ID"})
		return
	}
	saleID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid sale ID"})
		return
	}

	detail, err := h.svc.GetSale(r.Context(), tenantID, saleID)
	if err != nil {
		writeServiceError(w, err, "get sale")
		return
	}
	writeJSON(w, http.StatusOK, toSaleDetailResponse(detail))
}

// Cancel handles DELETE /tenants/{tid}/sales/{id}. A JSON body with a reason
// is required.
func (h *SaleHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	tenantID, err := uuid.Parse(chi.URLParam(r, "tid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid tenant ID"})
		return
	}
	saleID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid sale ID"})
		return
	}

	var req cancelSaleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	cancelled, err := h.svc.CancelSale(r.Context(), service.CancelSaleRequest{
		TenantID: tenantID,
		SaleID:   saleID,
		Reason:   req.Reason,
	})
	if err != nil {
		writeServiceError(w, err, "cancel sale")
		return
	}

	resp := toSaleResponse(*cancelled)
	h.broadcast(tenantID, ws.EventSaleCancelled, resp)
	writeJSON(w, http.StatusOK, resp)
}

// TodaySummary handles GET /tenants/{tid}/sales/summary/today.
func (h *SaleHandler) TodaySummary(w http.ResponseWriter, r *http.Request) {
	tenantID, err := uuid.Parse(chi.URLParam(r, "tid"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid tenant ID"})
		return
	}

	summary, err := h.svc.TodaySummary(r.Context(), tenantID)
	if err != nil {
		writeServiceError(w, err, "today summary")
		return
	}
	writeJSON(w, http.StatusOK, todaySummaryResponse{
		Date:        summary.Date.Format("2006-01-02"),
		TotalAmount: summary.TotalAmount.StringFixed(2),
		SaleCount:   summary.SaleCount,
	})
}

// --- Error mapping ---

// isValidationError covers malformed request shapes.
func isValidationError(err error) bool {
	return errors.Is(err, service.ErrEmptyItems) ||
		errors.Is(err, service.ErrEmptyPayments) ||
		errors.Is(err, service.ErrInvalidQuantity) ||
		errors.Is(err, service.ErrInvalidUnitPrice) ||
		errors.Is(err, service.ErrInvalidDiscountPercent) ||
		errors.Is(err, service.ErrInvalidDiscountAmount) ||
		errors.Is(err, service.ErrInvalidProductID) ||
		errors.Is(err, service.ErrInvalidCustomerID) ||
		errors.Is(err, service.ErrInvalidPaymentAmount) ||
		errors.Is(err, service.ErrInvalidPaymentMethod) ||
		errors.Is(err, service.ErrCardDetailsRequired) ||
		errors.Is(err, service.ErrTransferDetailsRequired) ||
		errors.Is(err, service.ErrReasonRequired) ||
		errors.Is(err, service.ErrReasonTooLong)
}

// isUnknownReferenceError covers ids in the request body that resolve to
// nothing. They are a bad request, not a missing resource: the URL's resource
// exists, a reference inside the payload does not.
func isUnknownReferenceError(err error) bool {
	return errors.Is(err, service.ErrProductNotFound) ||
		errors.Is(err, service.ErrCustomerNotFound)
}

// isBusinessRuleError covers requests that are well-formed but rejected by
// tenant configuration or the payment check.
func isBusinessRuleError(err error) bool {
	return errors.Is(err, service.ErrDiscountsDisabled) ||
		errors.Is(err, service.ErrDiscountOverLimit) ||
		errors.Is(err, service.ErrPaymentMethodDisabled) ||
		errors.Is(err, service.ErrPaymentMismatch)
}

func isConflictError(err error) bool {
	return errors.Is(err, service.ErrAlreadyCancelled) ||
		errors.Is(err, service.ErrCancelWindowExceeded)
}

func writeServiceError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, service.ErrSaleNotFound):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case isConflictError(err):
		writeJSON(w, http.StatusConflict, map[string]string{"error": err.Error()})
	case isValidationError(err), isUnknownReferenceError(err), isBusinessRuleError(err):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	default:
		logger.Get().Error(op, zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}

// --- Response mapping ---

func toSaleResponse(s store.Sale) saleResponse {
	resp := saleResponse{
		ID:            s.ID,
		TenantID:      s.TenantID,
		Number:        s.Number,
		Status:        s.Status,
		CreatedBy:     s.CreatedBy,
		Subtotal:      numericToString(s.Subtotal),
		DiscountTotal: numericToString(s.DiscountTotal),
		TaxTotal:      numericToString(s.TaxTotal),
		Total:         numericToString(s.Total),
		CreatedAt:     s.CreatedAt,
	}
	if s.Note.Valid {
		resp.Note = &s.Note.String
	}
	if s.CustomerID.Valid {
		cid := uuid.UUID(s.CustomerID.Bytes).String()
		resp.CustomerID = &cid
	}
	if s.CancelledAt.Valid {
		resp.CancelledAt = &s.CancelledAt.Time
	}
	if s.CancelReason.Valid {
		resp.CancelReason = &s.CancelReason.String
	}
	return resp
}

func toSaleDetailResponse(d *service.SaleDetail) saleDetailResponse {
	resp := saleDetailResponse{
		saleResponse: toSaleResponse(d.Sale),
		Items:        make([]saleItemResponse, len(d.Items)),
		Payments:     make([]salePaymentResponse, len(d.Payments)),
	}
	for i, item := range d.Items {
		resp.Items[i] = saleItemResponse{
			ID:              item.ID,
			ProductID:       item.ProductID,
			ProductName:     item.ProductName,
			ProductCode:     item.ProductCode,
			Quantity:        numericToString(item.Quantity),
			UnitPrice:       numericToString(item.UnitPrice),
			Subtotal:        numericToString(item.Subtotal),
			DiscountPercent: numericToString(item.DiscountPercent),
			DiscountAmount:  numericToString(item.DiscountAmount),
			TaxAmount:       numericToString(item.TaxAmount),
			Total:           numericToString(item.Total),
		}
		if item.Notes.Valid {
			resp.Items[i].Notes = &item.Notes.String
		}
	}
	for i, p := range d.Payments {
		pr := salePaymentResponse{
			ID:     p.ID,
			Method: p.Method,
			Amount: numericToString(p.Amount),
		}
		if p.ReceivedAmount.Valid {
			s := numericToString(p.ReceivedAmount)
			pr.ReceivedAmount = &s
		}
		if p.ChangeGiven.Valid {
			s := numericToString(p.ChangeGiven)
			pr.ChangeGiven = &s
		}
		if p.Reference.Valid {
			pr.Reference = &p.Reference.String
		}
		if p.Bank.Valid {
			pr.Bank = &p.Bank.String
		}
		if p.CardBrand.Valid {
			pr.CardBrand = &p.CardBrand.String
		}
		resp.Payments[i] = pr
	}
	if d.CustomerName != "" {
		resp.CustomerName = &d.CustomerName
	}
	if d.UserName != "" {
		resp.UserName = &d.UserName
	}
	return resp
}

// broadcast publishes a sale event to the tenant's room. Marshal errors are
// logged and swallowed; event delivery never fails a request.
func (h *SaleHandler) broadcast(tenantID uuid.UUID, eventType string, payload any) {
	raw, err := json.Marshal(payload)
	if err != nil {
		logger.Get().Error("marshal ws payload", zap.Error(err))
		return
	}
	h.hub.BroadcastToTenant(tenantID, ws.Event{Type: eventType, Payload: raw})
}

// --- Helpers ---

func formatItemError(idx int, msg string) string {
	return fmt.Sprintf("items[%d]: %s", idx, msg)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Get().Error("encode JSON response", zap.Error(err))
	}
}

func numericToString(n pgtype.Numeric) string {
	if !n.Valid {
		return "0.00"
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return "0.00"
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return "0.00"
	}
	return d.StringFixed(2)
}
