// Package dashboard derives the admin statistics and free-text search over bookings.
package dashboard

import (
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/ariefcatur/sparkleclean-booking/internal/bookings"
	"github.com/ariefcatur/sparkleclean-booking/internal/catalog"
)

// Source is the read side of the booking store.
type Source interface {
	All() []bookings.Booking
	Filter(pred func(bookings.Booking) bool) []bookings.Booking
}

// Summary is the three dashboard counters.
type Summary struct {
	TotalBookings   int `json:"totalBookings"`
	PendingPayments int `json:"pendingPayments"`
	TotalRevenue    int `json:"totalRevenue"`
}

// Stats counts the bookings and unpaid bookings and sums the price of paid ones.
func Stats(src Source) Summary {
	var st Summary
	for _, b := range src.All() {
		st.TotalBookings++
		if b.IsPaid() {
			st.TotalRevenue += b.Price
		} else {
			st.PendingPayments++
		}
	}
	return st
}

// Search returns bookings with at least one displayed field containing q,
// case-insensitively. A match never spans two fields. An empty query matches
// everything. Store order is kept.
func Search(src Source, q string) []bookings.Booking {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return src.All()
	}
	return src.Filter(func(b bookings.Booking) bool {
		return slices.ContainsFunc(searchFields(b), func(f string) bool {
			return strings.Contains(strings.ToLower(f), q)
		})
	})
}

// searchFields is the text of one dashboard row plus contact details.
func searchFields(b bookings.Booking) []string {
	return []string{
		"#" + strconv.FormatInt(b.ID, 10),
		b.CustomerName,
		b.CustomerEmail,
		b.CustomerPhone,
		catalog.NameOf(b.ServiceID),
		b.Date,
		longDate(b.Date),
		b.TimeSlot,
		b.Address,
		"$" + strconv.Itoa(b.Price),
		string(b.Status),
		string(b.PaymentStatus),
	}
}

func longDate(s string) string {
	d, err := time.Parse(bookings.DateLayout, s)
	if err != nil {
		return ""
	}
	return d.Format("Monday, January 2, 2006")
}
