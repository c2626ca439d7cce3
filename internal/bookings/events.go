package bookings

import (
	"encoding/json"
	"time"
)

const (
	EventPaymentAuthorized = "PaymentAuthorized"
	EventPaymentFailed     = "PaymentFailed"
	EventInvoiceSent       = "InvoiceSent"
)

type Envelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	EventVersion  int             `json:"event_version"`
	OccurredAt    time.Time       `json:"occurred_at"`
	Producer      string          `json:"producer"`
	CorrelationID string          `json:"correlation_id,omitempty"`
	Payload       json.RawMessage `json:"payload"`
}

type PaymentAuthorizedPayload struct {
	BookingID  int64  `json:"booking_id"`
	PaymentRef string `json:"payment_ref"`
	Amount     int    `json:"amount"`
}

type PaymentFailedPayload struct {
	ServiceID string `json:"service_id"`
	Reason    string `json:"reason"`
}
