package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/ariefcatur/sparkleclean-booking/internal/bookings"
	"github.com/ariefcatur/sparkleclean-booking/internal/catalog"
	"github.com/ariefcatur/sparkleclean-booking/internal/checkout"
	"github.com/ariefcatur/sparkleclean-booking/internal/dashboard"
	"github.com/ariefcatur/sparkleclean-booking/internal/invoices"
	"github.com/ariefcatur/sparkleclean-booking/internal/logging"
	"github.com/ariefcatur/sparkleclean-booking/internal/payments"
)

type BookingsHandler struct {
	Checkout *checkout.Service
	Store    *bookings.Store
	Invoices *invoices.Syncer
	Logger   *logging.Logger
}

type DraftResp struct {
	Quote checkout.Quote `json:"quote"`
	Draft bookings.Draft `json:"draft"`
}

type SyncResp struct {
	Synced  int    `json:"synced"`
	Message string `json:"message"`
}

func (h *BookingsHandler) Register(r chi.Router) {
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/catalog", h.listCatalog)

		r.Post("/drafts", h.submitDraft)
		r.Get("/drafts/current", h.currentDraft)
		r.Delete("/drafts/current", h.discardDraft)
		r.Post("/payments", h.pay)

		r.Get("/bookings", h.listBookings)
		r.Get("/bookings/{id}", h.getBooking)
		r.Post("/bookings/{id}/mark-paid", h.markPaid)

		r.Get("/dashboard/stats", h.stats)
		r.Get("/dashboard/search", h.search)

		r.Post("/invoices/sync", h.syncInvoices)
		r.Get("/invoices/status", h.invoiceStatus)
	})
}

func (h *BookingsHandler) logger() *logging.Logger {
	if h.Logger == nil {
		return logging.Default()
	}
	return h.Logger
}

func (h *BookingsHandler) fail(w http.ResponseWriter, r *http.Request, err error) {
	if mapErrorToStatus(err) == http.StatusInternalServerError {
		h.logger().Error("request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	writeError(w, err)
}

func (h *BookingsHandler) listCatalog(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, catalog.All())
}

func (h *BookingsHandler) submitDraft(w http.ResponseWriter, r *http.Request) {
	var d bookings.Draft
	if err := json.NewDecoder(r.Body).Decode(&d); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json"})
		return
	}
	q, err := h.Checkout.SubmitDraft(r.Context(), d)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	cur, _ := h.Checkout.CurrentDraft()
	writeJSON(w, http.StatusOK, DraftResp{Quote: q, Draft: cur})
}

func (h *BookingsHandler) currentDraft(w http.ResponseWriter, _ *http.Request) {
	d, ok := h.Checkout.CurrentDraft()
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResponse{Error: checkout.ErrNoDraft.Error()})
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (h *BookingsHandler) discardDraft(w http.ResponseWriter, _ *http.Request) {
	h.Checkout.DiscardDraft()
	w.WriteHeader(http.StatusNoContent)
}

func (h *BookingsHandler) pay(w http.ResponseWriter, r *http.Request) {
	var card payments.CardInput
	if err := json.NewDecoder(r.Body).Decode(&card); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid json"})
		return
	}
	b, err := h.Checkout.Pay(r.Context(), card)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (h *BookingsHandler) listBookings(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.Store.All())
}

func bookingID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

func (h *BookingsHandler) getBooking(w http.ResponseWriter, r *http.Request) {
	id, err := bookingID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return
	}
	b, ok := h.Store.Find(id)
	if !ok {
		h.fail(w, r, fmt.Errorf("%w: %d", bookings.ErrNotFound, id))
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *BookingsHandler) markPaid(w http.ResponseWriter, r *http.Request) {
	id, err := bookingID(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid id"})
		return
	}
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	b, err := h.Store.MarkPaid(ctx, id)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *BookingsHandler) stats(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, dashboard.Stats(h.Store))
}

func (h *BookingsHandler) search(w http.ResponseWriter, r *http.Request) {
	list := dashboard.Search(h.Store, r.URL.Query().Get("q"))
	if list == nil {
		list = []bookings.Booking{}
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *BookingsHandler) syncInvoices(w http.ResponseWriter, r *http.Request) {
	n, err := h.Invoices.SyncAll(r.Context(), h.Store)
	switch {
	case errors.Is(err, invoices.ErrNothingToSync):
		writeJSON(w, http.StatusOK, SyncResp{Synced: 0, Message: "No new invoices to sync"})
	case err != nil:
		h.fail(w, r, err)
	default:
		writeJSON(w, http.StatusOK, SyncResp{Synced: n, Message: fmt.Sprintf("Synced %d invoices", n)})
	}
}

func (h *BookingsHandler) invoiceStatus(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"synced": h.Invoices.Synced()})
}
