package httpx

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/ariefcatur/sparkleclean-booking/internal/bookings"
	"github.com/ariefcatur/sparkleclean-booking/internal/checkout"
	"github.com/ariefcatur/sparkleclean-booking/internal/payments"
)

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func mapErrorToStatus(err error) int {
	var verr *bookings.ValidationError
	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	case errors.Is(err, payments.ErrDeclined):
		return http.StatusPaymentRequired
	case errors.Is(err, checkout.ErrNoDraft), errors.Is(err, checkout.ErrPaymentInProgress),
		errors.Is(err, bookings.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, bookings.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

type errorResponse struct {
	Error  string   `json:"error"`
	Errors []string `json:"errors,omitempty"`
}

func writeError(w http.ResponseWriter, err error) {
	code := mapErrorToStatus(err)
	resp := errorResponse{Error: err.Error()}
	switch code {
	case http.StatusUnprocessableEntity:
		resp.Error = "validation failed"
		resp.Errors = bookings.Problems(err)
	case http.StatusPaymentRequired:
		resp.Error = "Payment failed. Please try again or use a different card."
	case http.StatusInternalServerError:
		resp.Error = "internal error"
	}
	writeJSON(w, code, resp)
}
