// Package invoices forwards paid bookings to the accounting system. The accounting
// side is simulated: invoices go to a Publisher (log, Kafka or AMQP) and a ledger
// consumer records them.
package invoices

import (
	"time"

	"github.com/google/uuid"

	"github.com/ariefcatur/sparkleclean-booking/internal/bookings"
	"github.com/ariefcatur/sparkleclean-booking/internal/catalog"
)

type Customer struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type Invoice struct {
	InvoiceID string    `json:"invoiceId"`
	BookingID int64     `json:"bookingId"`
	Customer  Customer  `json:"customer"`
	Service   string    `json:"service"`
	Date      string    `json:"date"`
	Time      string    `json:"time"`
	Amount    int       `json:"amount"`
	Address   string    `json:"address"`
	Status    string    `json:"status"`
	DateSent  time.Time `json:"dateSent"`
}

// NewInvoice builds an invoice with a fresh id. Every call yields a new id even for
// the same booking.
func NewInvoice(b bookings.Booking, now time.Time) Invoice {
	return Invoice{
		InvoiceID: "INV-" + uuid.NewString(),
		BookingID: b.ID,
		Customer: Customer{
			Name:  b.CustomerName,
			Email: b.CustomerEmail,
			Phone: b.CustomerPhone,
		},
		Service:  catalog.NameOf(b.ServiceID),
		Date:     b.Date,
		Time:     b.TimeSlot,
		Amount:   b.Price,
		Address:  b.Address,
		Status:   string(b.PaymentStatus),
		DateSent: now.UTC(),
	}
}
