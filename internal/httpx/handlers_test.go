package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ariefcatur/sparkleclean-booking/internal/bookings"
	"github.com/ariefcatur/sparkleclean-booking/internal/checkout"
	"github.com/ariefcatur/sparkleclean-booking/internal/dashboard"
	"github.com/ariefcatur/sparkleclean-booking/internal/invoices"
	"github.com/ariefcatur/sparkleclean-booking/internal/logging"
	"github.com/ariefcatur/sparkleclean-booking/internal/metrics"
	"github.com/ariefcatur/sparkleclean-booking/internal/payments"
)

type memStorage struct {
	mu  sync.Mutex
	raw []byte
}

func (m *memStorage) Load(context.Context) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.raw == nil {
		return nil, bookings.ErrNoData
	}
	return m.raw, nil
}

func (m *memStorage) Save(_ context.Context, b []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.raw = append([]byte(nil), b...)
	return nil
}

func newServer(t *testing.T, successRate float64) *httptest.Server {
	t.Helper()
	logger := logging.Discard()
	reg := prometheus.NewRegistry()
	m := metrics.NewBookingMetrics(reg)

	store := bookings.NewStore(&memStorage{}, logger)
	_, err := store.Load(context.Background())
	require.NoError(t, err)

	syncer := invoices.NewSyncer(invoices.LogPublisher{Logger: logger}, 0, logger, m)
	svc := checkout.NewService(checkout.Deps{
		Store:    store,
		IDs:      bookings.NewSequence(store.MaxID()),
		Payments: payments.NewSimulator(payments.SimulatorConfig{SuccessRate: successRate}, logger),
		Invoices: syncer,
		Metrics:  m,
		Logger:   logger,
		Now:      func() time.Time { return time.Date(2025, 3, 10, 10, 0, 0, 0, time.UTC) },
	})

	r := NewRouter(logger, reg)
	(&BookingsHandler{Checkout: svc, Store: store, Invoices: syncer, Logger: logger}).Register(r)
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func do(t *testing.T, srv *httptest.Server, method, path string, body any) (*http.Response, []byte) {
	t.Helper()
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequest(method, srv.URL+path, rd)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	out, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, out
}

func validDraft() bookings.Draft {
	return bookings.Draft{
		ServiceID:     "office",
		Date:          "2025-03-12",
		TimeSlot:      "11:00 AM",
		CustomerName:  "Ada Lovelace",
		CustomerEmail: "ada@example.com",
		CustomerPhone: "555-0100",
		Address:       "1 Analytical Way",
	}
}

func validCard() payments.CardInput {
	return payments.CardInput{CardNumber: "4111111111111111", ExpiryDate: "01/30", CVV: "999", CardName: "Ada L"}
}

func TestHealthz(t *testing.T) {
	srv := newServer(t, 1)
	resp, body := do(t, srv, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "ok", string(body))
}

func TestCatalog(t *testing.T) {
	srv := newServer(t, 1)
	resp, body := do(t, srv, http.MethodGet, "/api/v1/catalog", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var list []map[string]any
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list, 3)
	assert.Equal(t, "Home Cleaning", list[0]["name"])
}

func TestCheckoutFlow(t *testing.T) {
	srv := newServer(t, 1)

	resp, body := do(t, srv, http.MethodPost, "/api/v1/drafts", validDraft())
	require.Equal(t, http.StatusOK, resp.StatusCode, string(body))
	var dr DraftResp
	require.NoError(t, json.Unmarshal(body, &dr))
	assert.Equal(t, "Office Cleaning", dr.Quote.ServiceName)
	assert.Equal(t, 149, dr.Quote.Price)

	resp, _ = do(t, srv, http.MethodGet, "/api/v1/drafts/current", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body = do(t, srv, http.MethodPost, "/api/v1/payments", validCard())
	require.Equal(t, http.StatusCreated, resp.StatusCode, string(body))
	var b bookings.Booking
	require.NoError(t, json.Unmarshal(body, &b))
	assert.Equal(t, int64(4), b.ID)
	assert.Equal(t, bookings.PaymentPaid, b.PaymentStatus)

	resp, _ = do(t, srv, http.MethodGet, "/api/v1/drafts/current", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, body = do(t, srv, http.MethodGet, "/api/v1/bookings/4", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"customerName":"Ada Lovelace"`)

	resp, body = do(t, srv, http.MethodGet, "/api/v1/dashboard/stats", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var st dashboard.Summary
	require.NoError(t, json.Unmarshal(body, &st))
	assert.Equal(t, dashboard.Summary{TotalBookings: 4, PendingPayments: 1, TotalRevenue: 437}, st)

	resp, body = do(t, srv, http.MethodGet, "/api/v1/invoices/status", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"synced":true}`, string(body))
}

func TestSubmitDraftValidation(t *testing.T) {
	srv := newServer(t, 1)
	d := validDraft()
	d.CustomerName = ""
	d.TimeSlot = "8:00 PM"

	resp, body := do(t, srv, http.MethodPost, "/api/v1/drafts", d)
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	var er errorResponse
	require.NoError(t, json.Unmarshal(body, &er))
	assert.Equal(t, []string{"Please enter your name", "Please select a valid time slot"}, er.Errors)
}

func TestBadJSON(t *testing.T) {
	srv := newServer(t, 1)
	req, err := http.NewRequest(http.MethodPost, srv.URL+"/api/v1/drafts", strings.NewReader("{"))
	require.NoError(t, err)
	resp, err := srv.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestPayWithoutDraft(t *testing.T) {
	srv := newServer(t, 1)
	resp, _ := do(t, srv, http.MethodPost, "/api/v1/payments", validCard())
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestPayDeclined(t *testing.T) {
	srv := newServer(t, 0)
	resp, _ := do(t, srv, http.MethodPost, "/api/v1/drafts", validDraft())
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := do(t, srv, http.MethodPost, "/api/v1/payments", validCard())
	assert.Equal(t, http.StatusPaymentRequired, resp.StatusCode)
	assert.Contains(t, string(body), "Payment failed")

	resp, _ = do(t, srv, http.MethodGet, "/api/v1/drafts/current", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestPayInvalidCard(t *testing.T) {
	srv := newServer(t, 1)
	resp, _ := do(t, srv, http.MethodPost, "/api/v1/drafts", validDraft())
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := do(t, srv, http.MethodPost, "/api/v1/payments", payments.CardInput{})
	require.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
	var er errorResponse
	require.NoError(t, json.Unmarshal(body, &er))
	assert.Len(t, er.Errors, 4)
}

func TestDiscardDraft(t *testing.T) {
	srv := newServer(t, 1)
	do(t, srv, http.MethodPost, "/api/v1/drafts", validDraft())

	resp, _ := do(t, srv, http.MethodDelete, "/api/v1/drafts/current", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp, _ = do(t, srv, http.MethodGet, "/api/v1/drafts/current", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetBookingErrors(t *testing.T) {
	srv := newServer(t, 1)
	resp, _ := do(t, srv, http.MethodGet, "/api/v1/bookings/99", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp, _ = do(t, srv, http.MethodGet, "/api/v1/bookings/abc", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMarkPaid(t *testing.T) {
	srv := newServer(t, 1)
	resp, body := do(t, srv, http.MethodPost, "/api/v1/bookings/2/mark-paid", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"status":"confirmed"`)

	resp, _ = do(t, srv, http.MethodPost, "/api/v1/bookings/2/mark-paid", nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp, _ = do(t, srv, http.MethodPost, "/api/v1/bookings/42/mark-paid", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSearch(t *testing.T) {
	srv := newServer(t, 1)
	resp, body := do(t, srv, http.MethodGet, "/api/v1/dashboard/search?q=office", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list []bookings.Booking
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list, 1)
	assert.Equal(t, "Sarah Johnson", list[0].CustomerName)

	_, body = do(t, srv, http.MethodGet, "/api/v1/dashboard/search?q=nobody", nil)
	assert.JSONEq(t, `[]`, string(body))
}

func TestSyncInvoices(t *testing.T) {
	srv := newServer(t, 1)
	resp, body := do(t, srv, http.MethodGet, "/api/v1/invoices/status", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"synced":false}`, string(body))

	resp, body = do(t, srv, http.MethodPost, "/api/v1/invoices/sync", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var sr SyncResp
	require.NoError(t, json.Unmarshal(body, &sr))
	assert.Equal(t, 2, sr.Synced)
	assert.Equal(t, "Synced 2 invoices", sr.Message)

	_, body = do(t, srv, http.MethodGet, "/api/v1/invoices/status", nil)
	assert.JSONEq(t, `{"synced":true}`, string(body))
}

func TestMetricsEndpoint(t *testing.T) {
	srv := newServer(t, 1)
	do(t, srv, http.MethodPost, "/api/v1/drafts", validDraft())
	do(t, srv, http.MethodPost, "/api/v1/payments", validCard())

	resp, body := do(t, srv, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `sparkleclean_checkout_payment_attempts_total{outcome="authorized"} 1`)
	assert.Contains(t, string(body), `sparkleclean_bookings_created_total 1`)
}

func TestMapErrorToStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{&bookings.ValidationError{Problems: []string{"x"}}, http.StatusUnprocessableEntity},
		{payments.ErrDeclined, http.StatusPaymentRequired},
		{checkout.ErrNoDraft, http.StatusConflict},
		{checkout.ErrPaymentInProgress, http.StatusConflict},
		{bookings.ErrInvalidTransition, http.StatusConflict},
		{bookings.ErrNotFound, http.StatusNotFound},
		{io.ErrUnexpectedEOF, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, mapErrorToStatus(tt.err), tt.err.Error())
	}
}
