//go:build integration

package handler_test

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/lib/pq"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"golang.org/x/crypto/bcrypt"

	"github.com/vendopos/api/internal/auth"
	"github.com/vendopos/api/internal/cache"
	"github.com/vendopos/api/internal/config"
	"github.com/vendopos/api/internal/router"
	"github.com/vendopos/api/internal/store"
	"github.com/vendopos/api/internal/ws"
)

// TestIntegrationSaleFlow exercises sale creation, sequencing, retrieval,
// cancellation, and the daily summary against a real PostgreSQL database.
func TestIntegrationSaleFlow(t *testing.T) {
	ctx := context.Background()

	pgContainer, connStr, cleanup := setupPostgresContainer(t, ctx)
	defer cleanup()

	runMigrations(t, connStr)

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		t.Fatalf("create pool: %v", err)
	}
	defer pool.Close()

	cfg := &config.Config{
		Port:        "8081",
		DatabaseURL: connStr,
		JWTSecret:   "integration-test-secret",
	}
	queries := store.New(pool)
	hub := ws.NewHub()
	go hub.Run()

	r := router.New(cfg, queries, pool, hub, cache.NoopPOSConfigCache{})
	server := httptest.NewServer(r)
	defer server.Close()

	// Bootstrap tenant data directly: this surface has no tenant/user/product CRUD.
	tenantID := createTenant(t, ctx, pool)
	userID := createCashier(t, ctx, pool, tenantID)
	taxID := createDefaultTax(t, ctx, pool, tenantID)
	createPOSConfig(t, ctx, pool, tenantID, taxID)
	productID := createProduct(t, ctx, pool, tenantID, "Americano", "AMR-01", "10.00")

	token, err := auth.GenerateToken(cfg.JWTSecret, userID, tenantID, "CASHIER")
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}

	base := server.URL + "/tenants/" + tenantID.String()

	// --- 1. Create a sale: 2 x 10.00, 10% discount, 18% tax -> 21.24 ---
	saleBody := map[string]interface{}{
		"items": []map[string]interface{}{
			{"product_id": productID.String(), "quantity": "2", "unit_price": "10.00", "discount_percent": "10"},
		},
		"payments": []map[string]interface{}{
			{"method": "CASH", "amount": "21.24", "received_amount": "25.00"},
		},
	}
	sale1 := doJSON(t, token, http.MethodPost, base+"/sales", saleBody, http.StatusCreated)
	if sale1["total"] != "21.24" {
		t.Fatalf("total = %v, want 21.24", sale1["total"])
	}
	if sale1["number"] != "REC-000001" {
		t.Fatalf("number = %v, want REC-000001", sale1["number"])
	}
	if sale1["status"] != "COMPLETED" {
		t.Fatalf("status = %v, want COMPLETED", sale1["status"])
	}
	sale1ID := uuid.MustParse(sale1["id"].(string))

	// --- 2. Second sale gets the next consecutive number ---
	sale2 := doJSON(t, token, http.MethodPost, base+"/sales", saleBody, http.StatusCreated)
	if sale2["number"] != "REC-000002" {
		t.Fatalf("second number = %v, want REC-000002", sale2["number"])
	}

	// --- 3. Payment mismatch is rejected and does not burn a number ---
	badBody := map[string]interface{}{
		"items": []map[string]interface{}{
			{"product_id": productID.String(), "quantity": "1", "unit_price": "10.00"},
		},
		"payments": []map[string]interface{}{
			{"method": "CASH", "amount": "5.00"},
		},
	}
	doJSON(t, token, http.MethodPost, base+"/sales", badBody, http.StatusBadRequest)

	sale3 := doJSON(t, token, http.MethodPost, base+"/sales", saleBody, http.StatusCreated)
	if sale3["number"] != "REC-000003" {
		t.Fatalf("number after failed create = %v, want REC-000003", sale3["number"])
	}

	// --- 4. Detail endpoint returns lines and payments ---
	detail := doJSON(t, token, http.MethodGet, base+"/sales/"+sale1ID.String(), nil, http.StatusOK)
	items := detail["items"].([]interface{})
	if len(items) != 1 {
		t.Fatalf("detail items = %d, want 1", len(items))
	}
	line := items[0].(map[string]interface{})
	if line["product_name"] != "Americano" {
		t.Fatalf("product_name = %v, want Americano", line["product_name"])
	}
	if line["tax_amount"] != "3.24" {
		t.Fatalf("line tax = %v, want 3.24", line["tax_amount"])
	}
	payments := detail["payments"].([]interface{})
	if len(payments) != 1 {
		t.Fatalf("detail payments = %d, want 1", len(payments))
	}
	pay := payments[0].(map[string]interface{})
	if pay["change_given"] == nil || pay["change_given"].(string) != "3.76" {
		t.Fatalf("change_given = %v, want 3.76", pay["change_given"])
	}

	// --- 5. Cancel within the window, then cancel again -> conflict ---
	cancelled := doJSON(t, token, http.MethodDelete, base+"/sales/"+sale1ID.String(),
		map[string]string{"reason": "integration cleanup"}, http.StatusOK)
	if cancelled["status"] != "CANCELLED" {
		t.Fatalf("status after cancel = %v, want CANCELLED", cancelled["status"])
	}
	doJSON(t, token, http.MethodDelete, base+"/sales/"+sale1ID.String(),
		map[string]string{"reason": "again"}, http.StatusConflict)

	// --- 6. Summary counts COMPLETED only: sales 2 and 3 remain ---
	summary := doJSON(t, token, http.MethodGet, base+"/sales/summary/today", nil, http.StatusOK)
	if summary["sale_count"].(float64) != 2 {
		t.Fatalf("sale_count = %v, want 2", summary["sale_count"])
	}
	if summary["total_amount"] != "42.48" {
		t.Fatalf("total_amount = %v, want 42.48", summary["total_amount"])
	}

	// --- 7. List is newest-first and tenant-scoped ---
	list := doJSON(t, token, http.MethodGet, base+"/sales?page=1&page_size=10", nil, http.StatusOK)
	sales := list["sales"].([]interface{})
	if len(sales) != 3 {
		t.Fatalf("list = %d sales, want 3", len(sales))
	}

	// --- 8. Multi-line sale: detail preserves insertion order ---
	cappuccinoID := createProduct(t, ctx, pool, tenantID, "Cappuccino", "CAP-01", "12.50")
	croissantID := createProduct(t, ctx, pool, tenantID, "Croissant", "CRO-01", "6.00")
	multiBody := map[string]interface{}{
		"items": []map[string]interface{}{
			{"product_id": productID.String(), "quantity": "1", "unit_price": "10.00"},
			{"product_id": cappuccinoID.String(), "quantity": "1", "unit_price": "12.50"},
			{"product_id": croissantID.String(), "quantity": "1", "unit_price": "6.00"},
		},
		"payments": []map[string]interface{}{
			{"method": "CASH", "amount": "20.00", "received_amount": "20.00"},
			{"method": "CARD", "amount": "13.63", "card_brand": "VISA", "reference": "AUTH-42"},
		},
	}
	sale4 := doJSON(t, token, http.MethodPost, base+"/sales", multiBody, http.StatusCreated)
	sale4ID := uuid.MustParse(sale4["id"].(string))

	multiDetail := doJSON(t, token, http.MethodGet, base+"/sales/"+sale4ID.String(), nil, http.StatusOK)
	multiItems := multiDetail["items"].([]interface{})
	if len(multiItems) != 3 {
		t.Fatalf("multi-line detail items = %d, want 3", len(multiItems))
	}
	wantOrder := []string{"Americano", "Cappuccino", "Croissant"}
	for i, want := range wantOrder {
		got := multiItems[i].(map[string]interface{})["product_name"]
		if got != want {
			t.Fatalf("items[%d].product_name = %v, want %v", i, got, want)
		}
	}
	multiPayments := multiDetail["payments"].([]interface{})
	if len(multiPayments) != 2 {
		t.Fatalf("multi-line detail payments = %d, want 2", len(multiPayments))
	}
	if got := multiPayments[0].(map[string]interface{})["method"]; got != "CASH" {
		t.Fatalf("payments[0].method = %v, want CASH", got)
	}
	if got := multiPayments[1].(map[string]interface{})["method"]; got != "CARD" {
		t.Fatalf("payments[1].method = %v, want CARD", got)
	}

	t.Logf("Integration test passed: container=%s, tenant=%s", pgContainer.GetContainerID(), tenantID)
}

// --- Setup helpers ---

func setupPostgresContainer(t *testing.T, ctx context.Context) (testcontainers.Container, string, func()) {
	t.Helper()

	pgContainer, err := tcpostgres.Run(ctx,
		"postgres:16-alpine",
		tcpostgres.WithDatabase("pos_test"),
		tcpostgres.WithUsername("pos"),
		tcpostgres.WithPassword("pos"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(60*time.Second)),
	)
	if err != nil {
		t.Fatalf("start postgres container: %v", err)
	}

	connStr, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	if err != nil {
		t.Fatalf("get connection string: %v", err)
	}

	cleanup := func() {
		if err := pgContainer.Terminate(ctx); err != nil {
			t.Logf("terminate container: %v", err)
		}
	}

	return pgContainer, connStr, cleanup
}

func runMigrations(t *testing.T, connStr string) {
	t.Helper()

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		t.Fatalf("open db for migrations: %v", err)
	}
	defer db.Close()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		t.Fatalf("create migrate driver: %v", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://../../migrations",
		"postgres", driver)
	if err != nil {
		t.Fatalf("create migrate instance: %v", err)
	}

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		t.Fatalf("run migrations: %v", err)
	}
}

func createTenant(t *testing.T, ctx context.Context, pool *pgxpool.Pool) uuid.UUID {
	t.Helper()
	var id uuid.UUID
	err := pool.QueryRow(ctx,
		`INSERT INTO tenants (name, active) VALUES ($1, true) RETURNING id`,
		"Integration Tenant",
	).Scan(&id)
	if err != nil {
		t.Fatalf("create tenant: %v", err)
	}
	return id
}

func createCashier(t *testing.T, ctx context.Context, pool *pgxpool.Pool, tenantID uuid.UUID) uuid.UUID {
	t.Helper()
	hashed, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	var id uuid.UUID
	err = pool.QueryRow(ctx,
		`INSERT INTO users (tenant_id, name, email, password_hash, role, active)
		 VALUES ($1, $2, $3, $4, 'CASHIER', true)
		 RETURNING id`,
		tenantID, "Integration Cashier", "cashier@test.com", string(hashed),
	).Scan(&id)
	if err != nil {
		t.Fatalf("create cashier: %v", err)
	}
	return id
}

func createDefaultTax(t *testing.T, ctx context.Context, pool *pgxpool.Pool, tenantID uuid.UUID) uuid.UUID {
	t.Helper()
	var id uuid.UUID
	err := pool.QueryRow(ctx,
		`INSERT INTO taxes (tenant_id, name, tax_type, rate, is_default, active)
		 VALUES ($1, 'VAT 18%', 'PERCENTAGE', 18.00, true, true)
		 RETURNING id`,
		tenantID,
	).Scan(&id)
	if err != nil {
		t.Fatalf("create tax: %v", err)
	}
	return id
}

func createPOSConfig(t *testing.T, ctx context.Context, pool *pgxpool.Pool, tenantID, taxID uuid.UUID) {
	t.Helper()
	_, err := pool.Exec(ctx,
		`INSERT INTO pos_config (
			tenant_id, receipt_prefix, invoice_prefix, default_tax_id,
			max_discount_percent, discounts_allowed, cancel_window_minutes
		 ) VALUES ($1, 'REC', 'FAC', $2, 20.00, true, 30)`,
		tenantID, taxID,
	)
	if err != nil {
		t.Fatalf("create pos config: %v", err)
	}
}

func createProduct(t *testing.T, ctx context.Context, pool *pgxpool.Pool, tenantID uuid.UUID, name, code, price string) uuid.UUID {
	t.Helper()
	var id uuid.UUID
	err := pool.QueryRow(ctx,
		`INSERT INTO products (tenant_id, name, code, price, active)
		 VALUES ($1, $2, $3, $4, true)
		 RETURNING id`,
		tenantID, name, code, price,
	).Scan(&id)
	if err != nil {
		t.Fatalf("create product: %v", err)
	}
	return id
}

// doJSON performs an authenticated JSON request and decodes the response body.
func doJSON(t *testing.T, token, method, url string, body interface{}, wantStatus int) map[string]interface{} {
	t.Helper()

	var reqBody *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reqBody = bytes.NewReader(b)
	} else {
		reqBody = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	defer resp.Body.Close()

	var out map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.StatusCode != wantStatus {
		t.Fatalf("%s %s: status %d, want %d (body: %v)", method, url, resp.StatusCode, wantStatus, out)
	}
	return out
}
