package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerline/ledgerline/internal/ingest"
	"github.com/ledgerline/ledgerline/internal/model"
	"github.com/ledgerline/ledgerline/internal/storage"
)

func newTestServer(t *testing.T) (*Server, *storage.SQLiteStorage) {
	t.Helper()

	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	require.NoError(t, store.Migrate(context.Background()))

	server := New(Config{
		Store:    store,
		Pipeline: ingest.NewPipeline(nil, store),
	})
	return server, store
}

func doJSON(t *testing.T, server *Server, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(out))
}

func TestSMSWebhookFormEncoded(t *testing.T) {
	server, store := newTestServer(t)

	form := url.Values{}
	form.Set("Body", "Debit of $23.45 at Corner Cafe, ref: TXN99887")
	form.Set("From", "+15551234567")
	form.Set("To", "+15559876543")

	req := httptest.NewRequest(http.MethodPost, "/api/sms", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]string
	decodeBody(t, rec, &resp)
	assert.Equal(t, "processed", resp["status"])

	txns, err := store.ListTransactions(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, model.SourceSMS, txns[0].Source)
	assert.Equal(t, 23.45, txns[0].Amount)
	assert.Equal(t, "Corner Cafe", txns[0].Vendor)
	assert.Equal(t, "TXN99887", txns[0].ReferenceID)
}

func TestSMSWebhookJSON(t *testing.T) {
	server, store := newTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/api/sms", map[string]string{
		"body": "payment of 150.00 to Landlord Props",
		"from": "+15550000000",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	txns, err := store.ListTransactions(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, 150.00, txns[0].Amount)
}

func TestSMSWebhookWithoutAmountAlwaysOK(t *testing.T) {
	server, store := newTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/api/sms", map[string]string{
		"body": "Your OTP is ABCD",
		"from": "+15550000000",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp map[string]string
	decodeBody(t, rec, &resp)
	assert.Equal(t, "skipped", resp["status"])

	count, err := store.CountTransactions(context.Background())
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestParseEndpoint(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/api/parse", map[string]string{
		"text": "Your receipt from Whole Foods: $45.67 on 2024-01-10, ref: TXN12345",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Amount      *float64 `json:"amount"`
		Currency    *string  `json:"currency"`
		Vendor      *string  `json:"vendor"`
		ReferenceID *string  `json:"reference_id"`
		Confidence  float64  `json:"confidence"`
	}
	decodeBody(t, rec, &resp)

	require.NotNil(t, resp.Amount)
	assert.Equal(t, 45.67, *resp.Amount)
	require.NotNil(t, resp.Currency)
	assert.Equal(t, "USD", *resp.Currency)
	require.NotNil(t, resp.Vendor)
	assert.Equal(t, "Whole Foods", *resp.Vendor)
	require.NotNil(t, resp.ReferenceID)
	assert.Equal(t, "TXN12345", *resp.ReferenceID)
	assert.Equal(t, 0.95, resp.Confidence)
}

func TestParseEndpointRequiresText(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/api/parse", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRuleCRUD(t *testing.T) {
	server, _ := newTestServer(t)

	// Create
	rec := doJSON(t, server, http.MethodPost, "/api/rules", map[string]any{
		"pattern":  "uber",
		"category": "Transport",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created ruleJSON
	decodeBody(t, rec, &created)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "uber", created.Pattern)
	assert.Equal(t, "Transport", created.Category)
	assert.True(t, created.Enabled)

	// Get
	rec = doJSON(t, server, http.MethodGet, "/api/rules/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	// Update
	disabled := false
	rec = doJSON(t, server, http.MethodPut, "/api/rules/"+created.ID, map[string]any{
		"enabled": disabled,
	})
	require.Equal(t, http.StatusOK, rec.Code)
	var updated ruleJSON
	decodeBody(t, rec, &updated)
	assert.False(t, updated.Enabled)
	assert.Equal(t, "uber", updated.Pattern, "unset fields are left alone")

	// List
	rec = doJSON(t, server, http.MethodGet, "/api/rules", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []ruleJSON
	decodeBody(t, rec, &listed)
	assert.Len(t, listed, 1)

	// Delete
	rec = doJSON(t, server, http.MethodDelete, "/api/rules/"+created.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, server, http.MethodGet, "/api/rules/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCreateRuleValidation(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/api/rules", map[string]any{"category": "Transport"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, server, http.MethodPost, "/api/rules", map[string]any{"pattern": "uber"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSMSAppliesRules(t *testing.T) {
	server, store := newTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/api/rules", map[string]any{
		"pattern":  "cafe",
		"category": "Dining Out",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	rec = doJSON(t, server, http.MethodPost, "/api/sms", map[string]string{
		"body": "spent 9.50 at Blue Bottle Cafe",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	txns, err := store.ListTransactions(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, "dining out", txns[0].Category)
}

func TestCreateAndListTransactions(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/api/transactions", map[string]any{
		"amount":   99.99,
		"vendor":   "Keyboard Shop",
		"category": "Shopping",
		"date":     "2024-03-01",
	})
	require.Equal(t, http.StatusCreated, rec.Code)

	var created transactionJSON
	decodeBody(t, rec, &created)
	assert.Equal(t, "manual", created.Source)
	assert.Equal(t, "USD", created.Currency, "currency defaults")
	assert.Equal(t, "Shopping", created.Category)
	assert.Equal(t, 1.0, created.Confidence)

	rec = doJSON(t, server, http.MethodGet, "/api/transactions", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var listed struct {
		Transactions []transactionJSON `json:"transactions"`
		Total        int               `json:"total"`
	}
	decodeBody(t, rec, &listed)
	assert.Equal(t, 1, listed.Total)
	require.Len(t, listed.Transactions, 1)
	assert.Equal(t, 99.99, listed.Transactions[0].Amount)
}

func TestCreateTransactionValidation(t *testing.T) {
	server, _ := newTestServer(t)

	rec := doJSON(t, server, http.MethodPost, "/api/transactions", map[string]any{"amount": 0})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, server, http.MethodPost, "/api/transactions", map[string]any{
		"amount": 10.0,
		"date":   "March 1st",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestImportCSVEndpoint(t *testing.T) {
	server, store := newTestServer(t)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "export.csv")
	require.NoError(t, err)
	_, err = fmt.Fprint(part, "date,amount,description\n2024-01-10,45.67,Whole Foods\n2024-01-11,12.30,Uber\n")
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/transactions/import", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]int
	decodeBody(t, rec, &resp)
	assert.Equal(t, 2, resp["imported"])

	count, err := store.CountTransactions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestImportCSVEndpointRequiresFile(t *testing.T) {
	server, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/transactions/import", nil)
	rec := httptest.NewRecorder()
	server.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
