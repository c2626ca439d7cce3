package bookings

import (
	"strings"
	"time"
)

// DateLayout is the calendar-date format used for Draft.Date and the stored records.
const DateLayout = "2006-01-02"

// TimeSlots is the fixed set of bookable start times.
var TimeSlots = []string{"9:00 AM", "11:00 AM", "1:00 PM", "3:00 PM"}

// Draft is a booking request that has not been paid for yet. It lives only in the
// checkout session and is never persisted.
type Draft struct {
	ServiceID     string `json:"serviceId"`
	Date          string `json:"date"`
	TimeSlot      string `json:"timeSlot"`
	CustomerName  string `json:"customerName"`
	CustomerEmail string `json:"customerEmail"`
	CustomerPhone string `json:"customerPhone"`
	Address       string `json:"address"`
	Instructions  string `json:"instructions,omitempty"`
}

// Normalize trims every field.
func (d Draft) Normalize() Draft {
	return Draft{
		ServiceID:     strings.TrimSpace(d.ServiceID),
		Date:          strings.TrimSpace(d.Date),
		TimeSlot:      strings.TrimSpace(d.TimeSlot),
		CustomerName:  strings.TrimSpace(d.CustomerName),
		CustomerEmail: strings.TrimSpace(d.CustomerEmail),
		CustomerPhone: strings.TrimSpace(d.CustomerPhone),
		Address:       strings.TrimSpace(d.Address),
		Instructions:  strings.TrimSpace(d.Instructions),
	}
}

// Booking is the persisted record. Price is frozen when the draft is promoted.
type Booking struct {
	ID int64 `json:"id"`
	Draft
	Price         int           `json:"price"`
	Status        Status        `json:"status"`
	PaymentStatus PaymentStatus `json:"paymentStatus"`
	CreatedAt     time.Time     `json:"createdAt"`
}

// Promote turns a validated draft into an unpaid booking.
func Promote(d Draft, id int64, price int, now time.Time) Booking {
	return Booking{
		ID:            id,
		Draft:         d.Normalize(),
		Price:         price,
		Status:        StatusPending,
		PaymentStatus: PaymentPending,
		CreatedAt:     now.UTC(),
	}
}

func (b Booking) IsPaid() bool { return b.PaymentStatus == PaymentPaid }
