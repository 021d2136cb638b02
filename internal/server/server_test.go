package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	apikeydomain "github.com/smallbiznis/faktura/internal/apikey/domain"
	settingsdomain "github.com/smallbiznis/faktura/internal/billingsettings/domain"
	settingsservice "github.com/smallbiznis/faktura/internal/billingsettings/service"
	"github.com/smallbiznis/faktura/internal/clock"
	"github.com/smallbiznis/faktura/internal/config"
	contactdomain "github.com/smallbiznis/faktura/internal/contact/domain"
	contactservice "github.com/smallbiznis/faktura/internal/contact/service"
	"github.com/smallbiznis/faktura/internal/events"
	"github.com/smallbiznis/faktura/internal/export"
	invoicedomain "github.com/smallbiznis/faktura/internal/invoice/domain"
	"github.com/smallbiznis/faktura/internal/invoice/render"
	invoiceservice "github.com/smallbiznis/faktura/internal/invoice/service"
	"github.com/smallbiznis/faktura/internal/orgcontext"
	"github.com/smallbiznis/faktura/internal/tax"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	testAPIKey    = "fk_test_1234567890"
	serverTestOrg = 99
)

func setupServerTestDB(t *testing.T, name string) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	if err := db.AutoMigrate(
		&apikeydomain.APIKey{},
		&contactdomain.Contact{},
		&settingsdomain.BillingSettings{},
		&invoicedomain.Invoice{},
		&invoicedomain.LineItem{},
		&invoicedomain.Payment{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	for _, stmt := range []string{
		`CREATE TABLE IF NOT EXISTS organizations (
			id BIGINT PRIMARY KEY,
			name TEXT NOT NULL,
			slug TEXT NOT NULL UNIQUE,
			country TEXT NOT NULL DEFAULT 'CH',
			created_at TIMESTAMP,
			updated_at TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS invoice_sequences (
			org_id BIGINT PRIMARY KEY,
			next_value BIGINT NOT NULL,
			updated_at TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS invoice_events (
			id BIGINT PRIMARY KEY,
			org_id BIGINT NOT NULL,
			event_type TEXT NOT NULL,
			payload TEXT,
			dedupe_key TEXT,
			published BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMP,
			UNIQUE (org_id, dedupe_key)
		)`,
	} {
		if err := db.Exec(stmt).Error; err != nil {
			t.Fatalf("create table: %v", err)
		}
	}
	return db
}

func setupTestServer(t *testing.T, name string) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := setupServerTestDB(t, name)
	node, err := snowflake.NewNode(4)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	log := zap.NewNop()

	now := time.Now().UTC()
	if err := db.Exec(
		`INSERT INTO organizations (id, name, slug, country, created_at, updated_at)
		 VALUES (?, 'Test', 'test', 'CH', ?, ?)`,
		serverTestOrg, now, now,
	).Error; err != nil {
		t.Fatalf("seed org: %v", err)
	}
	if err := db.Exec(
		`INSERT INTO api_keys (id, org_id, key_hash, is_active, created_at)
		 VALUES (?, ?, ?, true, ?)`,
		node.Generate(), serverTestOrg, apikeydomain.HashAPIKey(testAPIKey), now,
	).Error; err != nil {
		t.Fatalf("seed api key: %v", err)
	}

	ctx := orgcontext.WithOrgID(context.Background(), serverTestOrg)
	settingsSvc := settingsservice.NewService(settingsservice.ServiceParam{DB: db, Log: log})
	if _, err := settingsSvc.Update(ctx, settingsdomain.UpdateRequest{
		CompanyName: strPtr("Muster Treuhand AG"),
		IBAN:        strPtr("CH9300762011623852957"),
	}); err != nil {
		t.Fatalf("seed settings: %v", err)
	}

	contactSvc := contactservice.NewService(contactservice.ServiceParam{DB: db, Log: log, GenID: node})
	invoiceSvc := invoiceservice.NewService(invoiceservice.ServiceParam{
		DB:          db,
		Log:         log,
		GenID:       node,
		Clock:       clock.Fixed(time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)),
		Renderer:    render.NewRenderer(),
		Outbox:      events.NewOutbox(db, node),
		SettingsSvc: settingsSvc,
		ContactSvc:  contactSvc,
	})

	cfg := config.Config{Environment: "test"}
	cfg.HTTP.RateLimit = 1000
	cfg.HTTP.RateWindow = time.Minute

	server := NewServer(ServerParam{
		Config:      cfg,
		DB:          db,
		Log:         log,
		InvoiceSvc:  invoiceSvc,
		ContactSvc:  contactSvc,
		SettingsSvc: settingsSvc,
		TaxResolver: tax.NewResolver(),
		ExportSvc:   export.NewService(export.ServiceParam{DB: db, Log: log}),
	})

	engine := gin.New()
	server.RegisterRoutes(engine)
	return engine, db
}

func strPtr(s string) *string { return &s }

func doJSON(t *testing.T, engine *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func dataField(t *testing.T, rec *httptest.ResponseRecorder) json.RawMessage {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode envelope: %v (body %s)", err, rec.Body.String())
	}
	return envelope.Data
}

func TestAPIKeyRequired(t *testing.T) {
	engine, _ := setupTestServer(t, "srv_auth")

	req := httptest.NewRequest(http.MethodGet, "/api/invoices", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without key, got %d", rec.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/api/invoices", nil)
	req.Header.Set("Authorization", "Bearer wrong-key")
	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with bad key, got %d", rec.Code)
	}

	// Caller-supplied org identity is rejected outright.
	req = httptest.NewRequest(http.MethodGet, "/api/invoices", nil)
	req.Header.Set("Authorization", "Bearer "+testAPIKey)
	req.Header.Set(HeaderOrg, "123")
	rec = httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 with org header, got %d", rec.Code)
	}
}

func TestInvoiceLifecycleOverHTTP(t *testing.T) {
	engine, _ := setupTestServer(t, "srv_lifecycle")

	rec := doJSON(t, engine, http.MethodPost, "/api/contacts", map[string]any{
		"kind":         "ORGANIZATION",
		"company_name": "Beispiel GmbH",
		"street":       "Musterweg 5",
		"postal_code":  "3000",
		"city":         "Bern",
		"country":      "CH",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("create contact: %d %s", rec.Code, rec.Body.String())
	}
	var contact struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(dataField(t, rec), &contact); err != nil {
		t.Fatalf("decode contact: %v", err)
	}

	rec = doJSON(t, engine, http.MethodPost, "/api/invoices", map[string]any{
		"contact_id": contact.ID,
		"currency":   "CHF",
		"items": []map[string]any{
			{"description": "Consulting", "quantity": 10, "unit_price": 15000, "tax_rate": 8.1},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("create invoice: %d %s", rec.Code, rec.Body.String())
	}
	var invoice struct {
		ID            string `json:"id"`
		InvoiceNumber string `json:"invoice_number"`
		Status        string `json:"status"`
	}
	if err := json.Unmarshal(dataField(t, rec), &invoice); err != nil {
		t.Fatalf("decode invoice: %v", err)
	}
	if invoice.InvoiceNumber != "INV-0001" {
		t.Fatalf("unexpected invoice number %q", invoice.InvoiceNumber)
	}
	if invoice.Status != "DRAFT" {
		t.Fatalf("unexpected status %q", invoice.Status)
	}

	rec = doJSON(t, engine, http.MethodPost, "/api/invoices/"+invoice.ID+"/send", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("send invoice: %d %s", rec.Code, rec.Body.String())
	}

	rec = doJSON(t, engine, http.MethodGet, "/api/invoices/"+invoice.ID+"/pdf", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("download pdf: %d %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != "application/pdf" {
		t.Fatalf("unexpected content type %q", got)
	}
	disposition := rec.Header().Get("Content-Disposition")
	if !strings.Contains(disposition, "attachment") || !strings.Contains(disposition, "INV-0001.pdf") {
		t.Fatalf("unexpected disposition %q", disposition)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF")) {
		t.Fatal("expected PDF payload")
	}

	rec = doJSON(t, engine, http.MethodPost, "/api/invoices/"+invoice.ID+"/payments", map[string]any{
		"amount": 162150,
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("record payment: %d %s", rec.Code, rec.Body.String())
	}
	var updated struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(dataField(t, rec), &updated); err != nil {
		t.Fatalf("decode payment response: %v", err)
	}
	if updated.Status != "PAID" {
		t.Fatalf("expected PAID, got %q", updated.Status)
	}
}

func TestInvoiceValidationOverHTTP(t *testing.T) {
	engine, _ := setupTestServer(t, "srv_validation")

	rec := doJSON(t, engine, http.MethodPost, "/api/invoices", map[string]any{
		"currency": "CHF",
	})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without contact, got %d", rec.Code)
	}

	rec = doJSON(t, engine, http.MethodGet, "/api/invoices/999999/pdf", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown invoice, got %d", rec.Code)
	}
}

func TestSendUnrenderableInvoiceOverHTTP(t *testing.T) {
	engine, db := setupTestServer(t, "srv_unrenderable")

	// A checksum-broken creditor account can only enter through old rows;
	// the settings endpoint rejects it. Corrupt the row directly.
	if err := db.Exec(
		`UPDATE billing_settings SET iban = ? WHERE org_id = ?`,
		"CH00INVALID0000000000", serverTestOrg,
	).Error; err != nil {
		t.Fatalf("corrupt iban: %v", err)
	}

	rec := doJSON(t, engine, http.MethodPost, "/api/contacts", map[string]any{
		"kind":         "ORGANIZATION",
		"company_name": "Beispiel GmbH",
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("create contact: %d %s", rec.Code, rec.Body.String())
	}
	var contact struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(dataField(t, rec), &contact); err != nil {
		t.Fatalf("decode contact: %v", err)
	}

	rec = doJSON(t, engine, http.MethodPost, "/api/invoices", map[string]any{
		"contact_id": contact.ID,
		"currency":   "CHF",
		"items": []map[string]any{
			{"description": "Consulting", "quantity": 1, "unit_price": 10000, "tax_rate": 8.1},
		},
	})
	if rec.Code != http.StatusOK {
		t.Fatalf("create invoice: %d %s", rec.Code, rec.Body.String())
	}
	var invoice struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(dataField(t, rec), &invoice); err != nil {
		t.Fatalf("decode invoice: %v", err)
	}

	rec = doJSON(t, engine, http.MethodPost, "/api/invoices/"+invoice.ID+"/send", nil)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for invalid creditor IBAN, got %d %s", rec.Code, rec.Body.String())
	}
	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("decode error envelope: %v", err)
	}
	if envelope.Error.Code != "invalid_iban" {
		t.Fatalf("expected invalid_iban, got %q", envelope.Error.Code)
	}
}

func TestTaxRatesEndpoint(t *testing.T) {
	engine, _ := setupTestServer(t, "srv_tax")

	rec := doJSON(t, engine, http.MethodGet, "/api/tax-rates?country=CH", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("tax rates: %d %s", rec.Code, rec.Body.String())
	}
	var rates []tax.Rate
	if err := json.Unmarshal(dataField(t, rec), &rates); err != nil {
		t.Fatalf("decode rates: %v", err)
	}
	if len(rates) != 2 || rates[0].Percent != 8.1 {
		t.Fatalf("unexpected rates %+v", rates)
	}

	rec = doJSON(t, engine, http.MethodGet, "/api/tax-rates?country=XX", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("unknown country: %d", rec.Code)
	}
	if err := json.Unmarshal(dataField(t, rec), &rates); err != nil {
		t.Fatalf("decode rates: %v", err)
	}
	if len(rates) != 0 {
		t.Fatalf("expected empty rates, got %+v", rates)
	}

	rec = doJSON(t, engine, http.MethodGet, "/api/tax-rates", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without country, got %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	engine, _ := setupTestServer(t, "srv_health")

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("healthz: %d", rec.Code)
	}
}

func TestExportEndpoint(t *testing.T) {
	engine, _ := setupTestServer(t, "srv_export")

	rec := doJSON(t, engine, http.MethodGet, "/api/invoices/export", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("export: %d %s", rec.Code, rec.Body.String())
	}
	if got := rec.Header().Get("Content-Type"); got != xlsxContentType {
		t.Fatalf("unexpected content type %q", got)
	}
	// XLSX files are zip archives.
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("PK")) {
		t.Fatal("expected zip payload")
	}
}
