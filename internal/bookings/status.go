package bookings

import (
	"errors"
	"fmt"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusConfirmed Status = "confirmed"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "pending"
	PaymentPaid    PaymentStatus = "paid"
)

var ErrInvalidTransition = errors.New("bookings: invalid payment status transition")

var validNext = map[PaymentStatus]map[PaymentStatus]bool{
	PaymentPending: {PaymentPaid: true},
	PaymentPaid:    {},
}

func CanTransition(from, to PaymentStatus) bool {
	return validNext[from][to]
}

// statusFor keeps status=confirmed exactly when paymentStatus=paid.
func statusFor(p PaymentStatus) Status {
	if p == PaymentPaid {
		return StatusConfirmed
	}
	return StatusPending
}

// MarkPaid applies the one-way pending->paid transition.
func (b *Booking) MarkPaid() error {
	if !CanTransition(b.PaymentStatus, PaymentPaid) {
		return fmt.Errorf("%w: booking %d is %s", ErrInvalidTransition, b.ID, b.PaymentStatus)
	}
	b.PaymentStatus = PaymentPaid
	b.Status = statusFor(PaymentPaid)
	return nil
}
